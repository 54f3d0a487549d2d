package bot

import (
	"strings"
	"unicode/utf8"
)

// MessageLimit is the maximum length of a Discord message.
const MessageLimit = 2000

// Paginate splits text into pages of at most pageLength bytes, preferring
// to break at newlines and never splitting a rune.
func Paginate(text string, pageLength int) []string {
	if pageLength <= 0 {
		pageLength = MessageLimit
	}
	var pages []string
	for len(text) > pageLength {
		cut := strings.LastIndex(text[:pageLength], "\n")
		if cut <= 0 {
			cut = pageLength
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}
		if page := strings.TrimRight(text[:cut], "\n"); page != "" {
			pages = append(pages, page)
		}
		text = strings.TrimLeft(text[cut:], "\n")
	}
	if strings.TrimSpace(text) != "" {
		pages = append(pages, text)
	}
	return pages
}
