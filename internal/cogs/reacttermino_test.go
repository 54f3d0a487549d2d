package cogs

import (
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/haytac/cogbot/internal/bot"
	"github.com/haytac/cogbot/internal/bot/bottest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exitCode(t *testing.T, b *bot.Bot) (int, bool) {
	t.Helper()
	select {
	case code := <-b.ShutdownRequested():
		return code, true
	default:
		return 0, false
	}
}

// answerWith makes the owner click emoji as soon as the bot offers it.
func answerWith(h *harness, emoji string) {
	h.session.OnReact = func(r bottest.Reaction) {
		if r.Emoji != emoji || !strings.HasPrefix(r.MessageID, "bot-") {
			return
		}
		h.bot.HandleReactionAdd(&discordgo.MessageReactionAdd{MessageReaction: &discordgo.MessageReaction{
			UserID:    ownerID,
			MessageID: r.MessageID,
			ChannelID: r.ChannelID,
			Emoji:     discordgo.Emoji{Name: emoji},
		}})
	}
}

func TestReactTermino_Directly(t *testing.T) {
	h := newHarness(t, nil)
	h.add(NewReactTermino(time.Second))

	h.run(ownerID, "!shutdown true")
	assert.Equal(t, "Shutting Down...", h.session.LastEmbed().Title)
	code, ok := exitCode(t, h.bot)
	require.True(t, ok)
	assert.Equal(t, bot.ExitShutdown, code)
}

func TestReactTermino_ConfirmRestart(t *testing.T) {
	h := newHarness(t, nil)
	h.add(NewReactTermino(5 * time.Second))
	answerWith(h, bot.YesEmoji)

	h.run(ownerID, "!restart")
	assert.Equal(t, "Are you sure you want to restart?", h.session.LastEmbed().Title)
	assert.Equal(t, []string{bot.YesEmoji, bot.NoEmoji}, h.session.Emojis())
	require.NotEmpty(t, h.session.Edits)
	assert.Equal(t, "Restarting...", h.session.Edits[len(h.session.Edits)-1].Title)

	code, ok := exitCode(t, h.bot)
	require.True(t, ok)
	assert.Equal(t, bot.ExitRestart, code)
	assert.Zero(t, h.bot.Waiter().Pending())
}

func TestReactTermino_Declined(t *testing.T) {
	h := newHarness(t, nil)
	h.add(NewReactTermino(5 * time.Second))
	answerWith(h, bot.NoEmoji)

	h.run(ownerID, "!shutdown")
	require.NotEmpty(t, h.session.Edits)
	assert.Equal(t, "Cancelling...", h.session.Edits[0].Title)
	_, ok := exitCode(t, h.bot)
	assert.False(t, ok)
}

func TestReactTermino_TimeoutCancels(t *testing.T) {
	h := newHarness(t, nil)
	h.add(NewReactTermino(20 * time.Millisecond))

	h.run(ownerID, "!shutdown")
	require.NotEmpty(t, h.session.Edits)
	assert.Equal(t, "Cancelling...", h.session.Edits[0].Title)
	_, ok := exitCode(t, h.bot)
	assert.False(t, ok)
}

func TestReactTermino_OwnerOnly(t *testing.T) {
	h := newHarness(t, nil)
	h.add(NewReactTermino(time.Second))

	h.run(userID, "!shutdown true")
	assert.Empty(t, h.session.Sent)
	_, ok := exitCode(t, h.bot)
	assert.False(t, ok)
}
