package cogs

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/haytac/cogbot/internal/bot"
	"github.com/haytac/cogbot/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReactLogHarness(t *testing.T) (*harness, *ReactLog) {
	h := newHarness(t, nil)
	rl := NewReactLog(h.settings)
	rl.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	h.add(rl)
	return h, rl
}

func TestReactLog_Settings(t *testing.T) {
	h, _ := newReactLogHarness(t)

	h.run(ownerID, "!reactlog set channel <#"+logChan+">")
	assert.Equal(t, "Set reaction log channel to: <#"+logChan+">", h.session.LastContent())
	v, ok, err := h.settings.Get(h.ctx(), database.ScopeGuild, guildID, keyReactLogChannel)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, logChan, v)

	h.run(ownerID, "!reactionlog set reactionadd on")
	assert.Equal(t, "I will log when reactions added.", h.session.LastContent())
	h.run(ownerID, "!reactlog set reactremove no")
	assert.Equal(t, "I won't log when reactions removed.", h.session.LastContent())

	on, err := h.settings.GetBool(h.ctx(), database.ScopeGuild, guildID, keyReactLogAdd, false)
	require.NoError(t, err)
	assert.True(t, on)

	h.run(ownerID, "!reactlog settings")
	embed := h.session.LastEmbed()
	require.NotNil(t, embed)
	assert.Equal(t, "Reaction Log Settings", embed.Title)
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "<#"+logChan+">", embed.Fields[0].Value)
	assert.Equal(t, "true", embed.Fields[1].Value)
	assert.Equal(t, "false", embed.Fields[2].Value)
	assert.Equal(t, "Test Guild", embed.Footer.Text)
}

func TestReactLog_ChannelNeedsSendPermission(t *testing.T) {
	h, _ := newReactLogHarness(t)
	h.session.SetPerms(selfID, logChan, discordgo.PermissionViewChannel)

	h.run(ownerID, "!reactlog set channel "+logChan)
	assert.Equal(t, "Please grant me permission to send message in that channel first.", h.session.LastContent())
	_, ok, err := h.settings.Get(h.ctx(), database.ScopeGuild, guildID, keyReactLogChannel)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReactLog_AdminAndGuildOnly(t *testing.T) {
	h, _ := newReactLogHarness(t)

	h.run(userID, "!reactlog set reactadd on")
	assert.Empty(t, h.session.Contents(), "non admins are ignored silently")

	h.run(userID, "!reactlog settings", func(m *discordgo.Message) { m.GuildID = "" })
	assert.Equal(t, "That command is not available in DMs.", h.session.LastContent())
}

func enableReactLog(t *testing.T, h *harness) {
	t.Helper()
	require.NoError(t, h.settings.Set(h.ctx(), database.ScopeGuild, guildID, keyReactLogChannel, logChan))
	require.NoError(t, h.settings.SetBool(h.ctx(), database.ScopeGuild, guildID, keyReactLogAdd, true))
	require.NoError(t, h.settings.SetBool(h.ctx(), database.ScopeGuild, guildID, keyReactLogRemove, true))
}

func reactionEvent(messageID string, emoji discordgo.Emoji) *discordgo.MessageReaction {
	return &discordgo.MessageReaction{
		UserID:    userID,
		MessageID: messageID,
		ChannelID: chanID,
		GuildID:   guildID,
		Emoji:     emoji,
	}
}

func TestReactLog_LogsFirstReaction(t *testing.T) {
	h, _ := newReactLogHarness(t)
	enableReactLog(t, h)

	msg := h.post(userID, "react to me")
	msg.Reactions = []*discordgo.MessageReactions{{Count: 1, Emoji: &discordgo.Emoji{Name: "🔥"}}}

	h.bot.HandleReactionAdd(&discordgo.MessageReactionAdd{
		MessageReaction: reactionEvent(msg.ID, discordgo.Emoji{Name: "🔥"}),
		Member:          &discordgo.Member{User: &discordgo.User{ID: userID, Username: "alice"}},
	})

	require.Len(t, h.session.Sent, 1)
	sent := h.session.Sent[0]
	assert.Equal(t, logChan, sent.ChannelID)
	embed := h.session.LastEmbed()
	assert.Equal(t, bot.ColorGreen, embed.Color)
	assert.Equal(t, "alice ("+userID+")", embed.Author.Name)
	assert.Contains(t, embed.Description, "**Channel:** <#"+chanID+">")
	assert.Contains(t, embed.Description, "**Emoji:** 🔥")
	assert.Contains(t, embed.Description, jumpURL(guildID, chanID, msg.ID))
	assert.Equal(t, "Reaction Added | #channel-"+chanID, embed.Footer.Text)
	assert.Equal(t, "2024-05-01T12:00:00Z", embed.Timestamp)
	assert.Nil(t, embed.Thumbnail)
}

func TestReactLog_IgnoresRepeatsAndBots(t *testing.T) {
	h, _ := newReactLogHarness(t)
	enableReactLog(t, h)

	msg := h.post(userID, "popular")
	msg.Reactions = []*discordgo.MessageReactions{{Count: 3, Emoji: &discordgo.Emoji{Name: "🔥"}}}
	h.bot.HandleReactionAdd(&discordgo.MessageReactionAdd{
		MessageReaction: reactionEvent(msg.ID, discordgo.Emoji{Name: "🔥"}),
		Member:          &discordgo.Member{User: &discordgo.User{ID: userID, Username: "alice"}},
	})
	assert.Empty(t, h.session.Sent, "only the first reaction is logged")

	msg.Reactions[0].Count = 1
	h.bot.HandleReactionAdd(&discordgo.MessageReactionAdd{
		MessageReaction: reactionEvent(msg.ID, discordgo.Emoji{Name: "🔥"}),
		Member:          &discordgo.Member{User: &discordgo.User{ID: userID, Username: "robot", Bot: true}},
	})
	assert.Empty(t, h.session.Sent, "bots are ignored")
}

func TestReactLog_LogsLastRemoval(t *testing.T) {
	h, _ := newReactLogHarness(t)
	enableReactLog(t, h)
	h.session.Users[userID] = &discordgo.User{ID: userID, Username: "alice"}

	msg := h.post(userID, "bye")
	emoji := discordgo.Emoji{ID: "555", Name: "blob", Animated: true}
	h.bot.HandleReactionRemove(&discordgo.MessageReactionRemove{MessageReaction: reactionEvent(msg.ID, emoji)})

	embed := h.session.LastEmbed()
	require.NotNil(t, embed)
	assert.Equal(t, bot.ColorRed, embed.Color)
	assert.Contains(t, embed.Description, "**Emoji:** blob (ID: 555)")
	assert.Equal(t, discordgo.EndpointEmojiAnimated("555"), embed.Thumbnail.URL)
	assert.Equal(t, "Reaction Removed | #channel-"+chanID, embed.Footer.Text)

	require.NoError(t, h.settings.SetBool(h.ctx(), database.ScopeGuild, guildID, keyReactLogRemove, false))
	h.bot.HandleReactionRemove(&discordgo.MessageReactionRemove{MessageReaction: reactionEvent(msg.ID, emoji)})
	assert.Len(t, h.session.Embeds, 1, "disabled events are not logged")
}
