package cogs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/haytac/cogbot/internal/bot"
	"github.com/haytac/cogbot/internal/database"
	"github.com/haytac/cogbot/internal/formatter"
	"github.com/haytac/cogbot/internal/osu"
	"github.com/haytac/cogbot/internal/reaction"
	"github.com/haytac/cogbot/pkg/interfaces"
)

const (
	serviceOsu     = "osu"
	keyOsuUsername = "osu.username"
)

// rankEmoji lists the grades shown in the stats embed, best first.
var rankEmoji = []struct {
	name  string
	key   string
	label string
}{
	{"ssh", "osu.ssh_emoji", "SSH"},
	{"ss", "osu.ss_emoji", "SS"},
	{"sh", "osu.sh_emoji", "SH"},
	{"s", "osu.s_emoji", "S"},
	{"a", "osu.a_emoji", "A"},
}

// OsuAPI is the part of the osu! client used by the cog.
type OsuAPI interface {
	GetUser(ctx context.Context, apiKey, username string, mode osu.Mode) (*osu.User, error)
	Avatar(ctx context.Context, userID string) ([]byte, string, error)
	AvatarURL(userID string) string
}

// Osu shows osu! player statistics.
type Osu struct {
	api      OsuAPI
	tokens   interfaces.TokenStore
	settings interfaces.SettingsStore
	cardURL  string
	now      func() time.Time
}

// NewOsu creates the Osu cog. cardURL is a template with {username} and {mode}.
func NewOsu(api OsuAPI, tokens interfaces.TokenStore, settings interfaces.SettingsStore, cardURL string) *Osu {
	return &Osu{api: api, tokens: tokens, settings: settings, cardURL: cardURL, now: time.Now}
}

func (o *Osu) Name() string        { return "Osu" }
func (o *Osu) Description() string { return "Show osu! user stats with osu! API." }

func (o *Osu) Commands() []*bot.Command {
	embedLinks := bot.BotHasPermissions(discordgo.PermissionEmbedLinks)
	statsCooldown := &bot.Cooldown{Rate: 1, Per: 3 * time.Second, Bucket: bot.BucketUser}

	emojiCmds := []*bot.Command{
		{
			Name:        "multi",
			Description: "Set custom emoji for all ranks at once!",
			Usage:       "<ssh> <ss> <sh> <s> <a>",
			Checks:      []bot.Check{bot.BotHasPermissions(discordgo.PermissionAddReactions | discordgo.PermissionUseExternalEmojis)},
			Run:         o.setAllEmoji,
		},
	}
	for _, r := range rankEmoji {
		emojiCmds = append(emojiCmds, &bot.Command{
			Name:        r.name,
			Description: fmt.Sprintf("Set custom emoji for %s rank.", r.label),
			Usage:       "[emoji]",
			Checks:      []bot.Check{bot.BotHasPermissions(discordgo.PermissionAddReactions | discordgo.PermissionUseExternalEmojis)},
			Run:         o.setEmoji(r.key, r.label),
		})
	}
	emojiCmds = append(emojiCmds, &bot.Command{
		Name:        "clear",
		Description: "Clear all set custom emojis for ranks.",
		Run:         o.clearEmoji,
	})

	cmds := []*bot.Command{
		{
			Name:        "osuset",
			Description: "Settings for osu!",
			Subcommands: []*bot.Command{
				{
					Name:        "creds",
					Description: "Instructions to set osu! API Key.",
					Checks:      []bot.Check{bot.OwnerOnly},
					Run:         o.creds,
				},
				{
					Name:        "username",
					Aliases:     []string{"name"},
					Description: "Set your osu! username. Leave it empty to remove it.",
					Usage:       "[username]",
					Run:         o.setUsername,
				},
				{
					Name:        "emoji",
					Description: "Set custom emoji for ranks.",
					Checks:      []bot.Check{bot.OwnerOnly},
					Subcommands: emojiCmds,
				},
			},
		},
		{
			Name:        "osuavatar",
			Aliases:     []string{"osuav"},
			Description: "Shows your/another user osu! Avatar.",
			Usage:       "[username]",
			Checks:      []bot.Check{embedLinks},
			Cooldown:    &bot.Cooldown{Rate: 1, Per: 5 * time.Second, Bucket: bot.BucketUser},
			Run:         o.avatar,
		},
		{
			Name:        "osucard",
			Aliases:     []string{"osuc", "osuimage", "osuimg"},
			Description: "Shows an osu!standard User Card!",
			Usage:       "[username]",
			Checks:      []bot.Check{embedLinks},
			Cooldown:    &bot.Cooldown{Rate: 60, Per: time.Minute, Bucket: bot.BucketGlobal},
			Run:         o.card,
		},
	}

	for _, m := range []struct {
		mode    osu.Mode
		name    string
		aliases []string
	}{
		{osu.Standard, "standard", []string{"osu", "std"}},
		{osu.Taiko, "taiko", nil},
		{osu.Catch, "catch", []string{"ctb", "catchthebeat"}},
		{osu.Mania, "mania", nil},
	} {
		cmds = append(cmds, &bot.Command{
			Name:        m.name,
			Aliases:     m.aliases,
			Description: fmt.Sprintf("Shows an %s User Stats!", m.mode),
			Usage:       "[username]",
			Checks:      []bot.Check{embedLinks},
			Cooldown:    statsCooldown,
			Run:         o.stats(m.mode),
		})
	}
	return cmds
}

func (o *Osu) creds(c *bot.Context) error {
	p := c.Prefix
	_, err := c.SendEmbed(bot.NewEmbed().SetDescription(
		"How to set osu! API key:\n" +
			"1. Go to https://osu.ppy.sh/p/api/ and login.\n" +
			"2. Set App Name & App URL as https://osu.ppy.sh/api/v1\n(anything can do tho).\n" +
			"3. Copy the API Key and set it with `" + p + "setapi osu api_key <API_Key>`.\n" +
			"4. Set emojis (SSH, SS, SH, S, A) for the osu! user info (except card) with\n`" + p + "osuset emoji`"))
	return err
}

// apiKey returns the stored key or tells the user it is missing.
func (o *Osu) apiKey(c *bot.Context) (string, bool, error) {
	key, err := o.tokens.Get(c.Context(), serviceOsu, tokenAPIKey)
	if err != nil {
		return "", false, err
	}
	if key == "" {
		_, err := c.Sendf("The osu! API key hasn't been set yet! Run `%sosuset creds` for instructions!", c.Prefix)
		return "", false, err
	}
	return key, true, nil
}

func (o *Osu) setUsername(c *bot.Context) error {
	ctx := c.Context()
	key, ok, err := o.apiKey(c)
	if !ok {
		return err
	}
	authorID := c.Message.Author.ID
	username := c.Rest(0)
	if username == "" {
		if err := o.settings.Clear(ctx, database.ScopeUser, authorID, keyOsuUsername); err != nil {
			return err
		}
		c.Tick()
		_, err := c.Send("Your username has been removed.")
		return err
	}

	user, err := o.api.GetUser(ctx, key, username, osu.Standard)
	if errors.Is(err, osu.ErrUserNotFound) {
		_, err := c.Sendf("I can't find any player with the name `%s`.", username)
		return err
	}
	if err != nil {
		return err
	}
	if err := o.settings.Set(ctx, database.ScopeUser, authorID, keyOsuUsername, user.Username); err != nil {
		return err
	}
	c.Tick()
	_, err = c.Sendf("Your username has been set to `%s`.", user.Username)
	return err
}

// tryEmoji parses raw and reacts with it on the invocation to prove the bot can use it.
func tryEmoji(c *bot.Context, raw string) (reaction.Token, bool) {
	tok, ok := reaction.ParseEmoji(raw)
	if !ok {
		return tok, false
	}
	if err := c.Session.MessageReactionAdd(c.Message.ChannelID, c.Message.ID, tok.APIName()); err != nil {
		c.Logger.Debug().Err(err).Str("emoji", raw).Msg("Emoji rejected")
		return tok, false
	}
	return tok, true
}

func (o *Osu) setEmoji(key, label string) bot.HandlerFunc {
	return func(c *bot.Context) error {
		ctx := c.Context()
		raw := c.Arg(0)
		if raw == "" {
			if err := o.settings.Clear(ctx, database.ScopeGlobal, "", key); err != nil {
				return err
			}
			if _, err := c.Sendf("Custom emoji for %s Rank removed.", label); err != nil {
				return err
			}
			c.Tick()
			return nil
		}
		tok, ok := tryEmoji(c, raw)
		if !ok {
			_, err := c.Send("Uh oh, I cannot use that emoji.")
			return err
		}
		if err := o.settings.Set(ctx, database.ScopeGlobal, "", key, tok.String()); err != nil {
			return err
		}
		c.Tick()
		return nil
	}
}

func (o *Osu) setAllEmoji(c *bot.Context) error {
	if c.NArgs() < len(rankEmoji) {
		return c.SendHelp()
	}
	toks := make([]reaction.Token, len(rankEmoji))
	for i := range rankEmoji {
		tok, ok := tryEmoji(c, c.Arg(i))
		if !ok {
			_, err := c.Send("Uh oh, I cannot use that emoji.")
			return err
		}
		toks[i] = tok
	}
	for i, r := range rankEmoji {
		if err := o.settings.Set(c.Context(), database.ScopeGlobal, "", r.key, toks[i].String()); err != nil {
			return err
		}
	}
	c.Tick()
	return nil
}

func (o *Osu) clearEmoji(c *bot.Context) error {
	for _, r := range rankEmoji {
		if err := o.settings.Clear(c.Context(), database.ScopeGlobal, "", r.key); err != nil {
			return err
		}
	}
	c.Tick()
	_, err := c.Send("All custom emojis for ranks has been cleared.")
	return err
}

// lookup resolves the target player: an explicit name, a mentioned user's
// saved name or the author's saved name.
func (o *Osu) lookup(c *bot.Context, mode osu.Mode) (*osu.User, bool, error) {
	ctx := c.Context()
	key, ok, err := o.apiKey(c)
	if !ok {
		return nil, false, err
	}

	username := c.Rest(0)
	ownerID := c.Message.Author.ID
	if isUserMention(username) && len(c.Message.Mentions) > 0 {
		ownerID, username = c.Message.Mentions[0].ID, ""
	}
	if username == "" {
		saved, found, err := o.settings.Get(ctx, database.ScopeUser, ownerID, keyOsuUsername)
		if err != nil {
			return nil, false, err
		}
		if !found {
			_, err := c.Sendf("Please provide a username or set one with `%sosuset username <username>`.", c.Prefix)
			return nil, false, err
		}
		username = saved
	}

	user, err := o.api.GetUser(ctx, key, username, mode)
	if errors.Is(err, osu.ErrUserNotFound) {
		_, err := c.Sendf("I can't find any player with the name `%s`.", username)
		return nil, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (o *Osu) rankLine(ctx context.Context, u *osu.User) (string, error) {
	counts := []string{u.CountRankSSH, u.CountRankSS, u.CountRankSH, u.CountRankS, u.CountRankA}
	parts := make([]string, len(rankEmoji))
	for i, r := range rankEmoji {
		emoji, ok, err := o.settings.Get(ctx, database.ScopeGlobal, "", r.key)
		if err != nil {
			return "", err
		}
		if !ok {
			emoji = "**" + r.label + "**"
		}
		parts[i] = emoji + " " + osu.Comma(counts[i])
	}
	return strings.Join(parts, "  "), nil
}

func (o *Osu) stats(mode osu.Mode) bot.HandlerFunc {
	return func(c *bot.Context) error {
		u, ok, err := o.lookup(c, mode)
		if !ok {
			return err
		}
		ranks, err := o.rankLine(c.Context(), u)
		if err != nil {
			return err
		}

		events := make([]string, 0, len(u.Events))
		for _, ev := range u.Events {
			events = append(events, ev.DisplayHTML)
		}
		recent, err := formatter.RenderTemplate("osu_events", formatter.OsuEvents, map[string][]string{"Events": events})
		if err != nil {
			return err
		}

		embed := bot.NewEmbed().
			SetAuthor(fmt.Sprintf("%s | %s", u.Username, mode), osu.FlagURL(u.Country), osu.ProfileURL(u.UserID, mode)).
			SetThumbnail(o.api.AvatarURL(u.UserID)).
			AddField("Rank", fmt.Sprintf("%s (%s %s)", osu.Rank(u.PPRank), u.Country, osu.Rank(u.PPCountryRank)), true).
			AddField("Level", osu.Level(u.Level), true).
			AddField("PP", osu.Decimal(u.PPRaw), true).
			AddField("Accuracy", osu.Accuracy(u.Accuracy), true).
			AddField("Playcount", osu.Comma(u.PlayCount), true).
			AddField("Playtime", osu.Playtime(u.TotalSecondsPlayed), true).
			AddField("Ranked Score", osu.Comma(u.RankedScore), true).
			AddField("Total Score", osu.Comma(u.TotalScore), true).
			AddField("Ranks", ranks, false).
			AddField("Recent Events", recent, false).
			SetFooter("Joined " + osu.JoinedAgo(u.JoinDate, o.now()))
		_, err = c.SendEmbed(embed)
		return err
	}
}

func imageExtension(contentType string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return ".png"
	case strings.Contains(contentType, "gif"):
		return ".gif"
	default:
		return ".jpg"
	}
}

func (o *Osu) avatar(c *bot.Context) error {
	u, ok, err := o.lookup(c, osu.Standard)
	if !ok {
		return err
	}
	data, contentType, err := o.api.Avatar(c.Context(), u.UserID)
	if err != nil {
		return fmt.Errorf("downloading avatar of %s: %w", u.UserID, err)
	}
	filename := "avatar_" + u.UserID + imageExtension(contentType)
	embed := bot.NewEmbed().
		SetAuthor(u.Username+"'s osu! Avatar", "", o.api.AvatarURL(u.UserID)).
		SetImage("attachment://" + filename)
	_, err = c.SendComplex(&discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed.MessageEmbed},
		Files:  []*discordgo.File{{Name: filename, ContentType: contentType, Reader: bytes.NewReader(data)}},
	})
	return err
}

func (o *Osu) card(c *bot.Context) error {
	u, ok, err := o.lookup(c, osu.Standard)
	if !ok {
		return err
	}
	embed := bot.NewEmbed().
		SetAuthor(u.Username+"'s osu! Card", osu.FlagURL(u.Country), osu.ProfileURL(u.UserID, osu.Standard)).
		SetImage(osu.CardURL(o.cardURL, u.Username, osu.Standard))
	_, err = c.SendEmbed(embed)
	return err
}
