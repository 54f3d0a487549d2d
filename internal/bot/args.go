package bot

import (
	"strings"
	"unicode"
)

type argument struct {
	value string
	end   int // byte offset just past the argument in the raw text
}

// splitArgs splits raw into whitespace separated arguments. Double quotes
// group words and are removed; an unterminated quote runs to the end.
func splitArgs(raw string) []argument {
	var (
		args    []argument
		current strings.Builder
		inWord  bool
		quoted  bool
	)
	for i, r := range raw {
		switch {
		case r == '"':
			quoted = !quoted
			inWord = true
		case unicode.IsSpace(r) && !quoted:
			if inWord {
				args = append(args, argument{value: current.String(), end: i})
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}
	if inWord {
		args = append(args, argument{value: current.String(), end: len(raw)})
	}
	return args
}
