package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/haytac/cogbot/internal/reaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginate(t *testing.T) {
	assert.Nil(t, Paginate("", 10))
	assert.Equal(t, []string{"short"}, Paginate("short", 10))
	assert.Equal(t, []string{"aaaa", "bbbb"}, Paginate("aaaa\nbbbb", 6))
	assert.Equal(t, []string{"abcde", "fghij", "k"}, Paginate("abcdefghijk", 5), "hard split without newline")

	pages := Paginate(strings.Repeat("🇦", 10), 9)
	for _, p := range pages {
		assert.LessOrEqual(t, len(p), 9)
		assert.True(t, strings.HasPrefix(p, "🇦"), "runes are never split")
	}
	assert.Equal(t, strings.Repeat("🇦", 10), strings.Join(pages, ""))
}

func TestEmbed_Limits(t *testing.T) {
	e := NewEmbed().SetTitle(strings.Repeat("é", 300)).AddField("n", strings.Repeat("v", 2000), true)
	assert.Equal(t, embedLimitTitle, len([]rune(e.Title)))
	assert.Len(t, e.Fields[0].Value, embedLimitFieldValue, "value limit applies to the value")
	assert.Equal(t, "n", e.Fields[0].Name)

	for i := 0; i < 30; i++ {
		e.AddField("x", "y", false)
	}
	assert.Len(t, e.Fields, embedLimitField)

	e.SetAuthor("me", "icon", "url").SetFooter("foot", "ficon").SetTimestamp(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	assert.Equal(t, "url", e.Author.URL)
	assert.Equal(t, "ficon", e.Footer.IconURL)
	assert.Equal(t, "2024-01-02T03:04:05Z", e.Timestamp)
}

func TestSplitArgs(t *testing.T) {
	vals := func(s string) []string {
		var out []string
		for _, a := range splitArgs(s) {
			out = append(out, a.value)
		}
		return out
	}
	assert.Nil(t, vals("   "))
	assert.Equal(t, []string{"a", "b"}, vals("a b"))
	assert.Equal(t, []string{"a b", "c"}, vals(`"a b" c`))
	assert.Equal(t, []string{""}, vals(`""`))
	assert.Equal(t, []string{"open quote"}, vals(`"open quote`))
}

func TestWaiter(t *testing.T) {
	w := NewWaiter()
	done := make(chan *discordgo.MessageReaction, 1)
	go func() {
		r, err := w.WaitForReaction(context.Background(), YesOrNo("m1", "u1"))
		assert.NoError(t, err)
		done <- r
	}()
	require.Eventually(t, func() bool { return w.Pending() == 1 }, time.Second, time.Millisecond)

	w.Dispatch(&discordgo.MessageReaction{MessageID: "m1", UserID: "u2", Emoji: discordgo.Emoji{Name: YesEmoji}})
	w.Dispatch(&discordgo.MessageReaction{MessageID: "m1", UserID: "u1", Emoji: discordgo.Emoji{Name: "🍕"}})
	assert.Equal(t, 1, w.Pending(), "non matching reactions are ignored")

	w.Dispatch(&discordgo.MessageReaction{MessageID: "m1", UserID: "u1", Emoji: discordgo.Emoji{Name: NoEmoji}})
	r := <-done
	assert.Equal(t, NoEmoji, r.Emoji.Name)
	assert.Equal(t, 0, w.Pending())
}

func TestWaiter_Timeout(t *testing.T) {
	w := NewWaiter()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := w.WaitForReaction(ctx, func(*discordgo.MessageReaction) bool { return true })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, w.Pending())
}

func TestReactionApplier(t *testing.T) {
	fs := newFakeSession()
	fs.failEmoji["🅰"] = true
	a := NewReactionApplier(fs, ApplierConfig{GlobalPerSecond: 1000, ChannelPerSecond: 1000})

	tokens := []reaction.Token{
		reaction.Unicode("🇦"),
		reaction.Unicode("🅰"),
		{Custom: true, ID: "42", Name: "blob"},
	}
	n := a.Apply(context.Background(), "c", "m", tokens)
	assert.Equal(t, 2, n, "a failed add is skipped")
	assert.Equal(t, []string{"🇦", "blob:42"}, fs.Reactions())
}

func TestReactionApplier_DryRunAndCancel(t *testing.T) {
	fs := newFakeSession()
	a := NewReactionApplier(fs, ApplierConfig{DryRun: true, GlobalPerSecond: 1000, ChannelPerSecond: 1000})
	n := a.Apply(context.Background(), "c", "m", []reaction.Token{reaction.Unicode("🇦")})
	assert.Equal(t, 1, n)
	assert.Empty(t, fs.Reactions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	live := NewReactionApplier(fs, ApplierConfig{})
	assert.Equal(t, 0, live.Apply(ctx, "c", "m", []reaction.Token{reaction.Unicode("🇦")}))
}

func TestStateEmojiResolver(t *testing.T) {
	state := discordgo.NewState()
	require.NoError(t, state.GuildAdd(&discordgo.Guild{ID: "g", Emojis: []*discordgo.Emoji{
		{ID: "42", Name: "blob", Animated: true},
	}}))
	r := NewStateEmojiResolver(state)

	tok, ok := r.ResolveEmoji("42")
	require.True(t, ok)
	assert.Equal(t, "<a:blob:42>", tok.String())

	_, ok = r.ResolveEmoji("43")
	assert.False(t, ok)
	_, ok = NewStateEmojiResolver(nil).ResolveEmoji("42")
	assert.False(t, ok)
}

func TestPermissionNames(t *testing.T) {
	assert.Equal(t, []string{"Add Reactions", "Embed Links"},
		PermissionNames(discordgo.PermissionEmbedLinks|discordgo.PermissionAddReactions))
}
