package cogs

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/haytac/cogbot/internal/bot"
	"github.com/haytac/cogbot/internal/bot/bottest"
	"github.com/haytac/cogbot/internal/database"
	"github.com/haytac/cogbot/internal/reaction"
	"github.com/stretchr/testify/require"
)

const (
	ownerID = "100000000000000001"
	userID  = "100000000000000002"
	selfID  = "100000000000000003"
	guildID = "200000000000000001"
	chanID  = "300000000000000001"
	logChan = "300000000000000002"

	allBotPerms = discordgo.PermissionAddReactions | discordgo.PermissionManageMessages |
		discordgo.PermissionSendMessages | discordgo.PermissionEmbedLinks | discordgo.PermissionUseExternalEmojis
)

type harness struct {
	t        *testing.T
	bot      *bot.Bot
	session  *bottest.Session
	settings *database.SettingsStore
	tokens   *database.APITokenStore
	n        int
}

func newHarness(t *testing.T, resolver reaction.EmojiResolver) *harness {
	t.Helper()
	db, err := database.Connect(filepath.Join(t.TempDir(), "cogs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	key, err := database.DeriveKey("test passphrase")
	require.NoError(t, err)

	s := bottest.NewSession()
	s.SetPerms(selfID, "", allBotPerms)
	s.SetPerms(ownerID, "", discordgo.PermissionAdministrator)

	b := bot.New(s, bot.Options{
		Prefix:   "!",
		OwnerIDs: []string{ownerID},
		Applier:  bot.NewReactionApplier(s, bot.ApplierConfig{GlobalPerSecond: 1000, ChannelPerSecond: 1000}),
		Resolver: resolver,
	})
	b.SetSelfID(selfID)

	return &harness{
		t:        t,
		bot:      b,
		session:  s,
		settings: database.NewSettingsStore(db),
		tokens:   database.NewAPITokenStore(db, key),
	}
}

func (h *harness) add(cogs ...bot.Cog) {
	h.t.Helper()
	for _, cog := range cogs {
		require.NoError(h.t, h.bot.AddCog(cog))
	}
}

func (h *harness) nextID() string {
	h.n++
	return fmt.Sprintf("4%017d", h.n)
}

// post stores a plain chat message without dispatching it.
func (h *harness) post(author, content string) *discordgo.Message {
	m := bottest.Message(h.nextID(), chanID, guildID, author, content)
	h.session.AddMessage(m)
	return m
}

// run dispatches content as a command sent by author. edit may adjust the
// message before dispatch.
func (h *harness) run(author, content string, edit ...func(*discordgo.Message)) *discordgo.Message {
	m := bottest.Message(h.nextID(), chanID, guildID, author, content)
	for _, fn := range edit {
		fn(m)
	}
	h.session.AddMessage(m)
	h.bot.HandleMessage(context.Background(), m)
	return m
}

func (h *harness) ctx() context.Context {
	return context.Background()
}
