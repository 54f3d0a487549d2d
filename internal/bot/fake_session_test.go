package bot

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// fakeSession records what the framework sends to Discord.
type fakeSession struct {
	mu        sync.Mutex
	sent      []string
	embeds    []*discordgo.MessageEmbed
	reactions []string
	deleted   []string
	perms     map[string]int64 // userID -> permissions
	messages  map[string]*discordgo.Message
	history   []*discordgo.Message
	failEmoji map[string]bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		perms:     map[string]int64{},
		messages:  map[string]*discordgo.Message{},
		failEmoji: map[string]bool{},
	}
}

func (f *fakeSession) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, content)
	return &discordgo.Message{ID: fmt.Sprintf("sent-%d", len(f.sent)), ChannelID: channelID, Content: content}, nil
}

func (f *fakeSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embeds = append(f.embeds, embed)
	return &discordgo.Message{ID: fmt.Sprintf("embed-%d", len(f.embeds)), ChannelID: channelID}, nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embeds = append(f.embeds, data.Embeds...)
	return &discordgo.Message{ID: "complex", ChannelID: channelID}, nil
}

func (f *fakeSession) ChannelMessageEditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embeds = append(f.embeds, embed)
	return &discordgo.Message{ID: messageID, ChannelID: channelID}, nil
}

func (f *fakeSession) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeSession) ChannelMessage(channelID, messageID string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.messages[channelID+"/"+messageID]; ok {
		return m, nil
	}
	return nil, errors.New("404 Not Found")
}

func (f *fakeSession) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.history) > limit {
		return f.history[:limit], nil
	}
	return f.history, nil
}

func (f *fakeSession) MessageReactionAdd(channelID, messageID, emojiID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failEmoji[emojiID] {
		return errors.New("HTTP 403 Forbidden")
	}
	f.reactions = append(f.reactions, emojiID)
	return nil
}

func (f *fakeSession) UserChannelPermissions(userID, channelID string, _ ...discordgo.RequestOption) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.perms[userID], nil
}

func (f *fakeSession) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	return &discordgo.Channel{ID: channelID, Name: "general"}, nil
}

func (f *fakeSession) Guild(guildID string, _ ...discordgo.RequestOption) (*discordgo.Guild, error) {
	return &discordgo.Guild{ID: guildID, Name: "guild"}, nil
}

func (f *fakeSession) User(userID string, _ ...discordgo.RequestOption) (*discordgo.User, error) {
	return &discordgo.User{ID: userID, Username: "user" + userID}, nil
}

func (f *fakeSession) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func (f *fakeSession) Reactions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.reactions...)
}
