// Package bottest provides an in-memory Discord session for cog tests.
package bottest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/haytac/cogbot/internal/bot"
)

var _ bot.Session = (*Session)(nil)

// ErrNotFound mimics a Discord 404.
var ErrNotFound = errors.New("HTTP 404 Not Found")

// Reaction is one recorded reaction add.
type Reaction struct {
	ChannelID string
	MessageID string
	Emoji     string
}

// Session records what cogs send to Discord. Zero permissions mean none.
type Session struct {
	mu sync.Mutex

	Sent      []*discordgo.Message
	Embeds    []*discordgo.MessageEmbed
	Edits     []*discordgo.MessageEmbed
	Files     []*discordgo.File
	Reacts    []Reaction
	Deleted   []string
	Perms     map[string]int64 // "userID/channelID" or "userID"
	Messages  map[string]*discordgo.Message
	History   map[string][]*discordgo.Message // channelID -> newest first
	Users     map[string]*discordgo.User
	Channels  map[string]*discordgo.Channel
	FailEmoji map[string]bool

	// OnReact is called after a reaction is recorded, outside the lock.
	OnReact func(Reaction)

	nextID int
}

// NewSession creates an empty Session.
func NewSession() *Session {
	return &Session{
		Perms:     map[string]int64{},
		Messages:  map[string]*discordgo.Message{},
		History:   map[string][]*discordgo.Message{},
		Users:     map[string]*discordgo.User{},
		Channels:  map[string]*discordgo.Channel{},
		FailEmoji: map[string]bool{},
	}
}

// SetPerms grants perms to userID in channelID; an empty channelID applies everywhere.
func (s *Session) SetPerms(userID, channelID string, perms int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if channelID == "" {
		s.Perms[userID] = perms
		return
	}
	s.Perms[userID+"/"+channelID] = perms
}

// AddMessage makes m retrievable by ID and appends it to its channel history.
func (s *Session) AddMessage(m *discordgo.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages[m.ChannelID+"/"+m.ID] = m
	s.History[m.ChannelID] = append([]*discordgo.Message{m}, s.History[m.ChannelID]...)
}

func (s *Session) record(channelID string, m *discordgo.Message) *discordgo.Message {
	s.nextID++
	m.ID = fmt.Sprintf("bot-%d", s.nextID)
	m.ChannelID = channelID
	s.Sent = append(s.Sent, m)
	return m
}

func (s *Session) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record(channelID, &discordgo.Message{Content: content}), nil
}

func (s *Session) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Embeds = append(s.Embeds, embed)
	return s.record(channelID, &discordgo.Message{Embeds: []*discordgo.MessageEmbed{embed}}), nil
}

func (s *Session) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Embeds = append(s.Embeds, data.Embeds...)
	s.Files = append(s.Files, data.Files...)
	return s.record(channelID, &discordgo.Message{Content: data.Content, Embeds: data.Embeds}), nil
}

func (s *Session) ChannelMessageEditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Edits = append(s.Edits, embed)
	return &discordgo.Message{ID: messageID, ChannelID: channelID, Embeds: []*discordgo.MessageEmbed{embed}}, nil
}

func (s *Session) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, messageID)
	return nil
}

func (s *Session) ChannelMessage(channelID, messageID string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.Messages[channelID+"/"+messageID]; ok {
		return m, nil
	}
	return nil, ErrNotFound
}

// ChannelMessages returns history older than beforeID, newest first.
func (s *Session) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.History[channelID]
	if beforeID != "" {
		for i, m := range history {
			if m.ID == beforeID {
				history = history[i+1:]
				break
			}
		}
	}
	if len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

func (s *Session) MessageReactionAdd(channelID, messageID, emojiID string, _ ...discordgo.RequestOption) error {
	s.mu.Lock()
	if s.FailEmoji[emojiID] {
		s.mu.Unlock()
		return errors.New("HTTP 400 Bad Request, Unknown Emoji")
	}
	r := Reaction{ChannelID: channelID, MessageID: messageID, Emoji: emojiID}
	s.Reacts = append(s.Reacts, r)
	hook := s.OnReact
	s.mu.Unlock()
	if hook != nil {
		hook(r)
	}
	return nil
}

func (s *Session) UserChannelPermissions(userID, channelID string, _ ...discordgo.RequestOption) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.Perms[userID+"/"+channelID]; ok {
		return p, nil
	}
	return s.Perms[userID], nil
}

func (s *Session) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.Channels[channelID]; ok {
		return c, nil
	}
	return &discordgo.Channel{ID: channelID, Name: "channel-" + channelID}, nil
}

func (s *Session) Guild(guildID string, _ ...discordgo.RequestOption) (*discordgo.Guild, error) {
	return &discordgo.Guild{ID: guildID, Name: "Test Guild"}, nil
}

func (s *Session) User(userID string, _ ...discordgo.RequestOption) (*discordgo.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.Users[userID]; ok {
		return u, nil
	}
	return &discordgo.User{ID: userID, Username: "user" + userID}, nil
}

// Contents returns the text of every sent message.
func (s *Session) Contents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.Sent))
	for _, m := range s.Sent {
		out = append(out, m.Content)
	}
	return out
}

// LastContent returns the text of the most recent message, or "".
func (s *Session) LastContent() string {
	c := s.Contents()
	if len(c) == 0 {
		return ""
	}
	return c[len(c)-1]
}

// Emojis returns the recorded reaction identifiers in order.
func (s *Session) Emojis() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.Reacts))
	for _, r := range s.Reacts {
		out = append(out, r.Emoji)
	}
	return out
}

// LastEmbed returns the most recently sent embed, or nil.
func (s *Session) LastEmbed() *discordgo.MessageEmbed {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Embeds) == 0 {
		return nil
	}
	return s.Embeds[len(s.Embeds)-1]
}

// Message builds an incoming user message.
func Message(id, channelID, guildID, authorID, content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        id,
		ChannelID: channelID,
		GuildID:   guildID,
		Content:   content,
		Author:    &discordgo.User{ID: authorID, Username: "user" + authorID},
	}
}
