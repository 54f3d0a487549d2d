// Package phun holds the text transformations behind the meme commands.
package phun

import (
	"hash/fnv"
	"math/rand"
	"sort"
	"strings"
	"unicode"

	"github.com/haytac/cogbot/internal/reaction"
)

const (
	flipChars    = "!#$%&'()*+,-./0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_`abcdefghijklmnopqrstuvwxyz{|}"
	flipAltChars = "{|}zʎxʍʌnʇsɹbdouɯlʞɾᴉɥƃɟǝpɔqɐ,‾^[\\]Z⅄XMΛ∩┴SɹQԀONW˥ʞſIHפℲƎpƆq∀@¿<=>;:68ㄥ9ϛㄣƐᄅƖ0/˙-'+*(),⅋%$#¡"

	// MaxPP is the longest possible length, reserved for the bot and its owners.
	MaxPP = 30

	zeroWidthSpace = "\u200b"
)

var flipTable = buildFlipTable()

func buildFlipTable() map[rune]rune {
	chars := []rune(flipChars)
	alt := []rune(flipAltChars)
	table := make(map[rune]rune, len(chars)*2)
	for i, c := range chars {
		flipped := alt[len(alt)-1-i]
		table[c] = flipped
		table[flipped] = c
	}
	return table
}

// FlipText turns text upside down: every character is mapped through the
// flip table and the result is reversed.
func FlipText(text string) string {
	runes := []rune(text)
	out := make([]rune, len(runes))
	for i, r := range runes {
		if f, ok := flipTable[r]; ok {
			r = f
		}
		out[len(runes)-1-i] = r
	}
	return string(out)
}

// VowelReplace replaces every vowel of msg with replacement.
func VowelReplace(replacement, msg string) string {
	var sb strings.Builder
	for _, r := range msg {
		if strings.ContainsRune("aeiou", unicode.ToLower(r)) {
			sb.WriteString(replacement)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Regional spells letters with regional indicators. Symbols are joined by a
// zero width space so clients do not merge them into flags.
func Regional(msg string) string {
	parts := make([]string, 0, len(msg))
	for _, r := range msg {
		if s, ok := reaction.Regional(unicode.ToLower(r)); ok {
			parts = append(parts, s)
			continue
		}
		parts = append(parts, string(r))
	}
	return strings.Join(parts, zeroWidthSpace)
}

// Space puts n spaces between the characters of msg.
func Space(n int, msg string) string {
	if n < 1 {
		n = 1
	}
	runes := []rune(msg)
	parts := make([]string, len(runes))
	for i, r := range runes {
		parts[i] = string(r)
	}
	return strings.Join(parts, strings.Repeat(" ", n))
}

// ParseSpace splits "[n] text" as accepted by the space command.
func ParseSpace(raw string) (n int, text string) {
	raw = strings.TrimSpace(raw)
	first, rest, found := strings.Cut(raw, " ")
	if !found || first == "" {
		return 1, raw
	}
	for _, r := range first {
		if r < '0' || r > '9' {
			return 1, raw
		}
	}
	n = 0
	for _, r := range first {
		n = n*10 + int(r-'0')
		if n > 100 {
			n = 100
			break
		}
	}
	return n, strings.TrimSpace(rest)
}

// PPLength returns the stable length for userID in [0, MaxPP].
func PPLength(userID string) int {
	h := fnv.New64a()
	h.Write([]byte(userID))
	return rand.New(rand.NewSource(int64(h.Sum64()))).Intn(MaxPP + 1)
}

// PP is one measured user.
type PP struct {
	Name   string
	Length int
}

func (p PP) String() string {
	return "8" + strings.Repeat("=", p.Length) + "D"
}

// RankPP orders measurements longest first; equal lengths keep their order.
func RankPP(pps []PP) []PP {
	out := append([]PP(nil), pps...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Length > out[j].Length })
	return out
}

// FormatPP renders the ranking the way the pp command posts it.
func FormatPP(pps []PP) string {
	var sb strings.Builder
	for _, p := range RankPP(pps) {
		sb.WriteString("**" + p.Name + "'s size:**\n" + p.String() + "\n")
	}
	return sb.String()
}
