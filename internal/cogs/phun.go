package cogs

import (
	"errors"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/haytac/cogbot/internal/bot"
	"github.com/haytac/cogbot/internal/metrics"
	"github.com/haytac/cogbot/internal/phun"
	"github.com/haytac/cogbot/internal/reaction"
)

const maxSpacePages = 5

const (
	msgDuplicateCustom = "You requested that I react with at least two of the exact same specific emoji. " +
		"I'll try to find alternatives for alphanumeric text, but if you specify a specific emoji must be used, I can't help."
	msgUnresolvable  = "Failed to fix all duplicates. Cannot react with this string."
	msgUnknownEmoji  = "I'm not in the server where that emote is from."
	msgNoAddReaction = "I require add_reactions permission in that channel."
	msgNoTarget      = "I couldn't find that message."
)

var oofReaction = []reaction.Token{reaction.Unicode("🇴"), reaction.Unicode("🅾"), reaction.Unicode("🇫")}

// Phun holds the text and reaction toys.
type Phun struct{}

// NewPhun creates the Phun cog.
func NewPhun() *Phun {
	return &Phun{}
}

func (p *Phun) Name() string        { return "Phun" }
func (p *Phun) Description() string { return "Text and emoji toys." }

func (p *Phun) Commands() []*bot.Command {
	return []*bot.Command{
		{
			Name:        "vowelreplace",
			Description: "Replaces all vowels in a word with a letter.",
			Usage:       "<replace> <msg>",
			Run:         p.vowelReplace,
		},
		{
			Name:        "textflip",
			Description: "Flip given text.",
			Usage:       "<msg>",
			Run:         p.textFlip,
		},
		{
			Name:        "regional",
			Description: "Replace letters with regional indicator emojis.",
			Usage:       "<msg>",
			Run:         p.regional,
		},
		{
			Name:        "space",
			Description: "Add n spaces between each letter. Ex: \"space 2 thicc\".",
			Usage:       "[n] <msg>",
			Run:         p.space,
		},
		{
			Name: "oof",
			Description: "React 🇴🅾🇫 to a message.\n" +
				"`[message]` can be a message ID from the current channel, a jump URL, " +
				"or a channelID-messageID from shift + copying ID on the message.",
			Usage: "[message]",
			Run:   p.oof,
		},
		{
			Name: "react",
			Description: "Add letter(s) as reaction to the previous message.\n" +
				"`[message]` can be a message ID from the current channel, a jump URL, " +
				"or a channelID-messageID from shift + copying ID on the message.",
			Usage: "<text> [message]",
			Run:   p.react,
		},
		{
			Name:        "pp",
			Aliases:     []string{"peepee", "dingdong"},
			Description: "Get user's peepee size!",
			Usage:       "[@users...]",
			Run:         p.pp,
		},
	}
}

func (p *Phun) vowelReplace(c *bot.Context) error {
	if c.NArgs() < 2 {
		return c.SendHelp()
	}
	_, err := c.Send(phun.VowelReplace(c.Arg(0), c.Rest(1)))
	return err
}

func (p *Phun) textFlip(c *bot.Context) error {
	msg := c.Rest(0)
	if msg == "" {
		return c.SendHelp()
	}
	_, err := c.Send(phun.FlipText(msg))
	return err
}

func (p *Phun) regional(c *bot.Context) error {
	msg := c.Rest(0)
	if msg == "" {
		return c.SendHelp()
	}
	_, err := c.Send(phun.Regional(msg))
	return err
}

func (p *Phun) space(c *bot.Context) error {
	n, msg := phun.ParseSpace(c.Rest(0))
	if msg == "" {
		return c.SendHelp()
	}
	pages := bot.Paginate(phun.Space(n, msg), bot.MessageLimit)
	if len(pages) > maxSpacePages {
		_, err := c.Send("That message is too long.")
		return err
	}
	for _, page := range pages {
		if _, err := c.Send(page); err != nil {
			return err
		}
	}
	return nil
}

// target resolves the message a reaction command points at and replies when
// it cannot be found.
func target(c *bot.Context, ref string) (*discordgo.Message, bool, error) {
	msg, err := c.TargetMessage(ref)
	if errors.Is(err, bot.ErrMessageNotFound) {
		_, sendErr := c.Send(msgNoTarget)
		return nil, false, sendErr
	}
	if err != nil {
		return nil, false, err
	}
	return msg, true, nil
}

func canReact(c *bot.Context, channelID string) (bool, error) {
	if c.Message.GuildID == "" {
		return true, nil
	}
	perms, err := c.BotPermissions(channelID)
	if err != nil {
		return false, err
	}
	return perms&(discordgo.PermissionAddReactions|discordgo.PermissionAdministrator) != 0, nil
}

func canManageMessages(c *bot.Context) bool {
	if c.Message.GuildID == "" {
		return false
	}
	perms, err := c.BotPermissions(c.Message.ChannelID)
	if err != nil {
		c.Logger.Debug().Err(err).Msg("Could not read own permissions")
		return false
	}
	return perms&(discordgo.PermissionManageMessages|discordgo.PermissionAdministrator) != 0
}

func (p *Phun) oof(c *bot.Context) error {
	msg, ok, err := target(c, c.Arg(0))
	if !ok {
		return err
	}
	allowed, err := canReact(c, msg.ChannelID)
	if err != nil {
		return err
	}
	if !allowed {
		_, err := c.Send(msgNoAddReaction)
		return err
	}
	c.Bot.Applier().Apply(c.Context(), msg.ChannelID, msg.ID, oofReaction)
	if canManageMessages(c) {
		if err := c.DeleteInvocation(); err != nil {
			c.Logger.Debug().Err(err).Msg("Failed to delete invocation")
		}
	}
	return nil
}

func (p *Phun) react(c *bot.Context) error {
	text := c.Arg(0)
	if strings.TrimSpace(text) == "" {
		return c.SendHelp()
	}
	msg, ok, err := target(c, c.Arg(1))
	if !ok {
		return err
	}

	plan, err := c.Bot.Planner().Plan(text)
	switch {
	case errors.Is(err, reaction.ErrUnresolvableDuplicate):
		metrics.ReactionPlans.WithLabelValues("duplicate").Inc()
		if hasRepeatedCustom(text) {
			_, err = c.Send(msgDuplicateCustom)
		} else {
			_, err = c.Send(msgUnresolvable)
		}
		return err
	case errors.Is(err, reaction.ErrEmptyResult):
		metrics.ReactionPlans.WithLabelValues("empty").Inc()
		_, err = c.Send(msgUnknownEmoji)
		return err
	case err != nil:
		return err
	}
	outcome := plan.Strategy
	if outcome == "" {
		outcome = "direct"
	}
	metrics.ReactionPlans.WithLabelValues(outcome).Inc()
	c.Logger.Debug().Str("plan", plan.String()).Str("strategy", plan.Strategy).Msg("Reaction plan built")

	allowed, err := canReact(c, msg.ChannelID)
	if err != nil {
		return err
	}
	if allowed {
		c.Bot.Applier().Apply(c.Context(), msg.ChannelID, msg.ID, plan.Tokens)
	}
	if canManageMessages(c) {
		if err := c.DeleteInvocation(); err != nil {
			c.Logger.Debug().Err(err).Msg("Failed to delete invocation")
		}
		return nil
	}
	c.Tick()
	return nil
}

// hasRepeatedCustom reports whether text names the same custom emoji twice.
func hasRepeatedCustom(text string) bool {
	seen := map[string]bool{}
	for _, field := range strings.FieldsFunc(text, func(r rune) bool { return r == '<' || r == '>' }) {
		tok, ok := reaction.ParseEmoji("<" + field + ">")
		if !ok || !tok.Custom {
			continue
		}
		if seen[tok.ID] {
			return true
		}
		seen[tok.ID] = true
	}
	return false
}

func displayName(u *discordgo.User, m *discordgo.Member) string {
	if m != nil && m.Nick != "" {
		return m.Nick
	}
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

func (p *Phun) pp(c *bot.Context) error {
	users := c.Message.Mentions
	if len(users) == 0 {
		users = []*discordgo.User{c.Message.Author}
	}

	pps := make([]phun.PP, 0, len(users))
	seen := map[string]bool{}
	for _, u := range users {
		if seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		length := phun.PPLength(u.ID)
		if u.ID == c.Bot.SelfID() || c.Bot.IsOwner(u.ID) {
			length = phun.MaxPP
		}
		var member *discordgo.Member
		if u.ID == c.Message.Author.ID {
			member = c.Message.Member
		}
		pps = append(pps, phun.PP{Name: displayName(u, member), Length: length})
	}

	for _, page := range bot.Paginate(phun.FormatPP(pps), bot.MessageLimit) {
		if _, err := c.Send(page); err != nil {
			return err
		}
	}
	return nil
}
