package bot

import (
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

const (
	embedLimitTitle       = 256
	embedLimitDescription = 4096
	embedLimitFieldValue  = 1024
	embedLimitFieldName   = 256
	embedLimitField       = 25
	embedLimitFooter      = 2048
	embedLimitAuthor      = 256
)

// Discord embed colours used across the cogs.
const (
	ColorDefault = 0xe74c3c
	ColorGreen   = 0x2ecc71
	ColorRed     = 0xe74c3c
)

// Embed is a wrapper around *discordgo.MessageEmbed
type Embed struct {
	*discordgo.MessageEmbed
}

// NewEmbed returns a new Embed with the default colour.
func NewEmbed() *Embed {
	return &Embed{&discordgo.MessageEmbed{Color: ColorDefault}}
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// SetTitle sets the Embed's Title, truncated to the Discord limit.
func (e *Embed) SetTitle(title string) *Embed {
	e.Title = truncate(title, embedLimitTitle)
	return e
}

// SetDescription sets the Embed's Description, truncated to the Discord limit.
func (e *Embed) SetDescription(description string) *Embed {
	e.Description = truncate(description, embedLimitDescription)
	return e
}

// AddField appends a field. Fields past the Discord maximum are dropped.
func (e *Embed) AddField(name, value string, inline bool) *Embed {
	if len(e.Fields) >= embedLimitField {
		return e
	}
	e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
		Name:   truncate(name, embedLimitFieldName),
		Value:  truncate(value, embedLimitFieldValue),
		Inline: inline,
	})
	return e
}

// SetFooter sets the footer text and optional icon.
func (e *Embed) SetFooter(text string, iconURL ...string) *Embed {
	e.Footer = &discordgo.MessageEmbedFooter{Text: truncate(text, embedLimitFooter)}
	if len(iconURL) > 0 {
		e.Footer.IconURL = iconURL[0]
	}
	return e
}

// SetImage sets the large image URL.
func (e *Embed) SetImage(url string) *Embed {
	e.Image = &discordgo.MessageEmbedImage{URL: url}
	return e
}

// SetThumbnail sets the thumbnail URL.
func (e *Embed) SetThumbnail(url string) *Embed {
	e.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: url}
	return e
}

// SetAuthor sets the author line.
// Parameters: name, iconURL, URL
func (e *Embed) SetAuthor(args ...string) *Embed {
	if len(args) == 0 {
		return e
	}
	e.Author = &discordgo.MessageEmbedAuthor{Name: truncate(args[0], embedLimitAuthor)}
	if len(args) > 1 {
		e.Author.IconURL = args[1]
	}
	if len(args) > 2 {
		e.Author.URL = args[2]
	}
	return e
}

// SetURL sets the URL of the Embed.
func (e *Embed) SetURL(url string) *Embed {
	e.URL = url
	return e
}

// SetColor sets the border color of the Embed.
func (e *Embed) SetColor(color int) *Embed {
	e.Color = color
	return e
}

// SetTimestamp sets the embed timestamp.
func (e *Embed) SetTimestamp(t time.Time) *Embed {
	e.Timestamp = t.UTC().Format(time.RFC3339)
	return e
}
