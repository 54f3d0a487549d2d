// Package formatter renders user-facing text: templates, emoji shortcodes
// and HTML fragments coming from third-party APIs.
package formatter

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"
	"github.com/kyokomi/emoji/v2"
	"github.com/microcosm-cc/bluemonday"
)

var (
	stripPolicy = bluemonday.StrictPolicy()
	spaceRe     = regexp.MustCompile(`\s+`)
)

var funcs = template.FuncMap{
	"summarize": func(length int, s string) string {
		runes := []rune(s)
		if len(runes) < length {
			return s
		}
		return string(runes[:length]) + "..."
	},
	"comma":     func(n int64) string { return humanize.Comma(n) },
	"stripHTML": StripHTML,
	"emojize":   Emojize,
}

// RenderTemplate executes tmplStr against data. Emoji shortcodes in the
// output (":trophy:") are replaced by their unicode symbols.
func RenderTemplate(name, tmplStr string, data interface{}) (string, error) {
	tmpl, err := template.New(name).Funcs(funcs).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}
	return Emojize(buf.String()), nil
}

// Emojize replaces shortcodes such as ":white_check_mark:" with emoji.
func Emojize(s string) string {
	return emoji.Sprint(s)
}

// StripHTML removes all markup from an HTML fragment and unescapes entities.
func StripHTML(s string) string {
	text := html.UnescapeString(stripPolicy.Sanitize(s))
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}
