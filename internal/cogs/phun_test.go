package cogs

import (
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/haytac/cogbot/internal/bot"
	"github.com/haytac/cogbot/internal/reaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhun_TextCommands(t *testing.T) {
	h := newHarness(t, nil)
	h.add(NewPhun())

	h.run(userID, "!vowelreplace x hello world")
	assert.Equal(t, "hxllx wxrld", h.session.LastContent())

	h.run(userID, "!textflip hello")
	assert.Equal(t, "ollǝɥ", h.session.LastContent())

	h.run(userID, "!regional ab")
	assert.Equal(t, "🇦\u200b🇧", h.session.LastContent())

	h.run(userID, "!space 2 abc")
	assert.Equal(t, "a  b  c", h.session.LastContent())

	h.run(userID, "!space abc")
	assert.Equal(t, "a b c", h.session.LastContent())

	h.run(userID, "!space 100 "+strings.Repeat("x", 200))
	assert.Equal(t, "That message is too long.", h.session.LastContent())

	before := len(h.session.Embeds)
	h.run(userID, "!vowelreplace x")
	assert.Len(t, h.session.Embeds, before+1, "missing arguments show the help")
}

func TestPhun_React(t *testing.T) {
	h := newHarness(t, nil)
	h.add(NewPhun())

	target := h.post(userID, "nice message")
	inv := h.run(userID, "!react hello")

	require.Len(t, h.session.Reacts, 4)
	for _, r := range h.session.Reacts {
		assert.Equal(t, target.ID, r.MessageID)
	}
	assert.Equal(t, []string{"🇭", "🇪", "⏸", "🇴"}, h.session.Emojis())
	assert.Contains(t, h.session.Deleted, inv.ID, "invocation is deleted with Manage Messages")
}

func TestPhun_ReactExplicitTarget(t *testing.T) {
	h := newHarness(t, nil)
	h.add(NewPhun())

	target := h.post(userID, "first")
	h.post(userID, "second")
	h.run(userID, "!react hi "+target.ID)

	require.Len(t, h.session.Reacts, 2)
	assert.Equal(t, target.ID, h.session.Reacts[0].MessageID)

	h.run(userID, "!react hi 999999999999999999")
	assert.Equal(t, msgNoTarget, h.session.LastContent())
}

func TestPhun_ReactTicksWithoutManageMessages(t *testing.T) {
	h := newHarness(t, nil)
	h.add(NewPhun())
	h.session.SetPerms(selfID, "", discordgo.PermissionAddReactions)

	h.post(userID, "target")
	inv := h.run(userID, "!react ok")

	last := h.session.Reacts[len(h.session.Reacts)-1]
	assert.Equal(t, inv.ID, last.MessageID)
	assert.Equal(t, bot.TickEmoji, last.Emoji)
	assert.Empty(t, h.session.Deleted)
}

func TestPhun_ReactFailures(t *testing.T) {
	h := newHarness(t, reaction.ResolverFunc(func(id string) (reaction.Token, bool) {
		if id == "1" {
			return reaction.Token{Custom: true, ID: "1", Name: "Pog"}, true
		}
		return reaction.Token{}, false
	}))
	h.add(NewPhun())
	h.post(userID, "target")

	h.run(userID, "!react ppp")
	assert.Equal(t, msgUnresolvable, h.session.LastContent())

	h.run(userID, "!react <:pog:1><:pog:1>")
	assert.Equal(t, msgDuplicateCustom, h.session.LastContent())

	h.run(userID, "!react <:other:2>")
	assert.Equal(t, msgUnknownEmoji, h.session.LastContent())

	assert.Empty(t, h.session.Reacts)

	h.run(userID, "!react <:Pog:1>")
	assert.Equal(t, []string{"Pog:1"}, h.session.Emojis())
}

func TestPhun_Oof(t *testing.T) {
	h := newHarness(t, nil)
	h.add(NewPhun())

	target := h.post(userID, "I fell")
	h.run(userID, "!oof")
	assert.Equal(t, []string{"🇴", "🅾", "🇫"}, h.session.Emojis())
	assert.Equal(t, target.ID, h.session.Reacts[0].MessageID)

	h.session.SetPerms(selfID, "", discordgo.PermissionSendMessages)
	h.run(userID, "!oof")
	assert.Equal(t, msgNoAddReaction, h.session.LastContent())
}

func TestPhun_PP(t *testing.T) {
	h := newHarness(t, nil)
	h.add(NewPhun())

	h.run(ownerID, "!pp")
	assert.Equal(t, "**user"+ownerID+"'s size:**\n8"+strings.Repeat("=", 30)+"D\n", h.session.LastContent())

	other := &discordgo.User{ID: "100000000000000009", Username: "other"}
	h.run(userID, "!peepee <@100000000000000009> <@"+selfID+">", func(m *discordgo.Message) {
		m.Mentions = []*discordgo.User{other, {ID: selfID, Username: "cogbot"}}
	})
	out := h.session.LastContent()
	assert.Contains(t, out, "**cogbot's size:**\n8"+strings.Repeat("=", 30)+"D\n", "the bot always measures the maximum")
	assert.Contains(t, out, "**other's size:**")
}
