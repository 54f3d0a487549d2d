// Package reaction turns text into a sequence of distinct reaction emoji.
//
// Every character becomes one reaction. Because a message cannot carry the
// same reaction twice, repeated characters are rewritten with alternate
// renderings (🇦 then 🅰 for "aa") and common letter pairs are merged into a
// single symbol ("ng" becomes 🆖) before giving up.
package reaction

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var (
	// ErrUnresolvableDuplicate is returned when no strategy yields a plan
	// without repeated reactions.
	ErrUnresolvableDuplicate = errors.New("reaction: cannot remove duplicate reactions")
	// ErrEmptyResult is returned when nothing is left to react with.
	ErrEmptyResult = errors.New("reaction: nothing to react with")
)

var (
	customEmojiRegex = regexp.MustCompile(`<(a?):([a-z0-9_]+):([0-9]+)>`)
	singleEmojiRegex = regexp.MustCompile(`^<(a?):([A-Za-z0-9_]{2,32}):([0-9]+)>$`)
)

// Token is a single reaction: either a unicode symbol or a custom emoji.
type Token struct {
	Custom   bool
	ID       string
	Name     string
	Animated bool
	Symbol   string
}

// Unicode builds a unicode reaction token.
func Unicode(symbol string) Token {
	return Token{Symbol: symbol}
}

// APIName is the identifier expected by the Discord reaction endpoints.
func (t Token) APIName() string {
	if t.Custom {
		return t.Name + ":" + t.ID
	}
	return t.Symbol
}

// String renders the token the way it appears inside a message.
func (t Token) String() string {
	if !t.Custom {
		return t.Symbol
	}
	if t.Animated {
		return "<a:" + t.Name + ":" + t.ID + ">"
	}
	return "<:" + t.Name + ":" + t.ID + ">"
}

// ParseEmoji reads a single emoji argument: a custom emoji mention or a
// unicode symbol. Names keep their case.
func ParseEmoji(s string) (Token, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Token{}, false
	}
	if m := singleEmojiRegex.FindStringSubmatch(s); m != nil {
		return Token{Custom: true, Animated: m[1] == "a", Name: m[2], ID: m[3]}, true
	}
	if strings.ContainsAny(s, "<>: ") {
		return Token{}, false
	}
	return Unicode(s), true
}

func (t Token) key() string {
	if t.Custom {
		return "c:" + t.ID
	}
	return "u:" + t.Symbol
}

// EmojiResolver looks up a custom emoji the caller is able to use.
type EmojiResolver interface {
	ResolveEmoji(id string) (Token, bool)
}

// ResolverFunc adapts a function to EmojiResolver.
type ResolverFunc func(id string) (Token, bool)

// ResolveEmoji calls f(id).
func (f ResolverFunc) ResolveEmoji(id string) (Token, bool) { return f(id) }

// Strategy rewrites text in an attempt to remove duplicate symbols.
type Strategy struct {
	Name  string
	Apply func(text string) string
}

// DefaultStrategies are tried in order until one produces duplicate-free text.
var DefaultStrategies = []Strategy{
	{Name: "combine", Apply: func(text string) string { return SubstituteLetters(MergeCombinations(text)) }},
	{Name: "substitute", Apply: SubstituteLetters},
}

// Plan is the ordered, duplicate-free list of reactions for a text.
type Plan struct {
	Tokens []Token
	// Strategy names the rewrite that produced the plan; empty when the
	// text had no duplicates to begin with.
	Strategy string
}

// APINames returns the reaction identifiers in order.
func (p *Plan) APINames() []string {
	names := make([]string, len(p.Tokens))
	for i, t := range p.Tokens {
		names[i] = t.APIName()
	}
	return names
}

// String joins the tokens as they would appear in a message.
func (p *Plan) String() string {
	var sb strings.Builder
	for _, t := range p.Tokens {
		sb.WriteString(t.String())
	}
	return sb.String()
}

// Planner builds reaction plans. It holds no mutable state and may be shared.
type Planner struct {
	resolver   EmojiResolver
	strategies []Strategy
}

// NewPlanner creates a Planner. A nil resolver accepts every custom emoji as
// written in the text.
func NewPlanner(resolver EmojiResolver) *Planner {
	return &Planner{resolver: resolver, strategies: DefaultStrategies}
}

// Plan converts text into reactions.
func (p *Planner) Plan(text string) (*Plan, error) {
	text, customs := extractCustom(strings.ToLower(text))

	seen := make(map[string]struct{}, len(customs))
	for _, c := range customs {
		if _, dup := seen[c.ID]; dup {
			return nil, ErrUnresolvableDuplicate
		}
		seen[c.ID] = struct{}{}
	}

	plan := &Plan{}
	if !hasDuplicateText(text) {
		plan.Tokens = p.render(text, customs)
		if !hasDuplicateTokens(plan.Tokens) {
			return finish(plan)
		}
	}

	for _, s := range p.strategies {
		rewritten := s.Apply(text)
		if hasDuplicateText(rewritten) {
			continue
		}
		tokens := p.render(rewritten, customs)
		if hasDuplicateTokens(tokens) {
			continue
		}
		plan.Tokens, plan.Strategy = tokens, s.Name
		return finish(plan)
	}
	return nil, ErrUnresolvableDuplicate
}

func finish(plan *Plan) (*Plan, error) {
	if len(plan.Tokens) == 0 {
		return nil, ErrEmptyResult
	}
	return plan, nil
}

// extractCustom replaces custom emoji tokens by the placeholder and drops
// whitespace. The returned tokens are in text order.
func extractCustom(text string) (string, []Token) {
	text = strings.Map(func(r rune) rune {
		if r == placeholder || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)

	var customs []Token
	text = customEmojiRegex.ReplaceAllStringFunc(text, func(m string) string {
		sub := customEmojiRegex.FindStringSubmatch(m)
		customs = append(customs, Token{Custom: true, Animated: sub[1] == "a", Name: sub[2], ID: sub[3]})
		return string(placeholder)
	})
	return text, customs
}

func (p *Planner) render(text string, customs []Token) []Token {
	tokens := make([]Token, 0, len(text))
	next := 0
	for _, r := range text {
		switch {
		case r == placeholder:
			if next >= len(customs) {
				continue
			}
			c := customs[next]
			next++
			if p.resolver != nil {
				resolved, ok := p.resolver.ResolveEmoji(c.ID)
				if !ok {
					continue
				}
				c = resolved
			}
			if c.ID == "" || c.Name == "" {
				continue
			}
			tokens = append(tokens, c)
		case string(r) == Keycap, unicode.IsSpace(r), r == unicode.ReplacementChar:
			continue
		default:
			if d, ok := Default(r); ok {
				tokens = append(tokens, Unicode(d))
			} else {
				tokens = append(tokens, Unicode(string(r)))
			}
		}
	}
	return tokens
}

// HasDuplicate reports whether any symbol occurs more than once. The keycap
// joiner and the custom emoji placeholder are ignored.
func HasDuplicate(symbols []string) bool {
	seen := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		if s == Keycap || s == string(placeholder) {
			continue
		}
		if _, ok := seen[s]; ok {
			return true
		}
		seen[s] = struct{}{}
	}
	return false
}

func hasDuplicateText(text string) bool {
	symbols := make([]string, 0, len(text))
	for _, r := range text {
		symbols = append(symbols, string(r))
	}
	return HasDuplicate(symbols)
}

func hasDuplicateTokens(tokens []Token) bool {
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		k := t.key()
		if _, ok := seen[k]; ok {
			return true
		}
		seen[k] = struct{}{}
	}
	return false
}

// MergeCombinations replaces the first occurrence of every combination pair
// found in text, in table order.
func MergeCombinations(text string) string {
	for _, c := range combinations {
		if strings.Contains(text, c.pair) {
			text = strings.Replace(text, c.pair, c.symbol, 1)
		}
	}
	return text
}

// SubstituteLetters rewrites repeated characters with distinct candidates.
//
// Occurrences are assigned candidates left to right. A candidate already
// present somewhere in the text is skipped and the next one is tried, so a
// character can run out of candidates and stay duplicated. Characters with
// fewer candidates than occurrences are left untouched. A character occurring
// once becomes its default rendering. The result must be checked again.
func SubstituteLetters(text string) string {
	for _, ch := range substitutionOrder {
		c := string(ch)
		count := strings.Count(text, c)
		cands := candidates[ch]
		switch {
		case count == 1:
			text = strings.Replace(text, c, cands[0], 1)
		case count > 1 && len(cands) >= count:
			assigned := 0
			for i := 0; i < len(cands) && assigned < count; i++ {
				if strings.Contains(text, cands[i]) {
					continue
				}
				text = strings.Replace(text, c, cands[i], 1)
				assigned++
			}
		}
	}
	return text
}
