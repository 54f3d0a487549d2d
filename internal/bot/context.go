package bot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TickEmoji is added to a command message to acknowledge it.
const TickEmoji = "✅"

// ErrMessageNotFound is returned by TargetMessage when nothing can be resolved.
var ErrMessageNotFound = errors.New("message not found")

var (
	jumpURLRe    = regexp.MustCompile(`^https?://(?:(?:ptb|canary)\.)?discord(?:app)?\.com/channels/(?:[0-9]+|@me)/([0-9]+)/([0-9]+)/?$`)
	channelMsgRe = regexp.MustCompile(`^([0-9]{15,21})-([0-9]{15,21})$`)
	snowflakeRe  = regexp.MustCompile(`^[0-9]{15,21}$`)
)

// Context carries one command invocation.
type Context struct {
	Bot     *Bot
	Session Session
	Message *discordgo.Message
	Command *Command
	Prefix  string
	Logger  zerolog.Logger

	ctx  context.Context
	raw  string
	args []argument
}

func newContext(ctx context.Context, b *Bot, m *discordgo.Message, cmd *Command, raw string) *Context {
	return &Context{
		Bot:     b,
		Session: b.session,
		Message: m,
		Command: cmd,
		Prefix:  b.prefix,
		Logger: log.With().
			Str("command", cmd.QualifiedName()).
			Str("author_id", m.Author.ID).
			Str("channel_id", m.ChannelID).
			Logger(),
		ctx:  ctx,
		raw:  raw,
		args: splitArgs(raw),
	}
}

// Context returns the invocation's context.Context.
func (c *Context) Context() context.Context {
	return c.ctx
}

// NArgs returns the number of arguments.
func (c *Context) NArgs() int {
	return len(c.args)
}

// Arg returns argument i or "" when absent.
func (c *Context) Arg(i int) string {
	if i < 0 || i >= len(c.args) {
		return ""
	}
	return c.args[i].value
}

// Rest returns the raw text starting at argument i, quotes included.
func (c *Context) Rest(i int) string {
	if i <= 0 {
		return strings.TrimSpace(c.raw)
	}
	if i > len(c.args) {
		return ""
	}
	return strings.TrimSpace(c.raw[c.args[i-1].end:])
}

// IsOwner reports whether the author owns the bot.
func (c *Context) IsOwner() bool {
	return c.Bot.IsOwner(c.Message.Author.ID)
}

// BotPermissions returns the bot's permissions in channelID.
func (c *Context) BotPermissions(channelID string) (int64, error) {
	return c.Session.UserChannelPermissions(c.Bot.SelfID(), channelID)
}

// Send posts content in the invoking channel.
func (c *Context) Send(content string) (*discordgo.Message, error) {
	msg, err := c.Session.ChannelMessageSend(c.Message.ChannelID, content)
	if err != nil {
		c.Logger.Error().Err(err).Msg("Failed to send message response")
	}
	return msg, err
}

// Sendf formats and posts content in the invoking channel.
func (c *Context) Sendf(format string, a ...interface{}) (*discordgo.Message, error) {
	return c.Send(fmt.Sprintf(format, a...))
}

// SendEmbed posts an embed in the invoking channel.
func (c *Context) SendEmbed(e *Embed) (*discordgo.Message, error) {
	msg, err := c.Session.ChannelMessageSendEmbed(c.Message.ChannelID, e.MessageEmbed)
	if err != nil {
		c.Logger.Error().Err(err).Msg("Failed to send embed message response")
	}
	return msg, err
}

// SendComplex posts a message with files or several embeds.
func (c *Context) SendComplex(ms *discordgo.MessageSend) (*discordgo.Message, error) {
	msg, err := c.Session.ChannelMessageSendComplex(c.Message.ChannelID, ms)
	if err != nil {
		c.Logger.Error().Err(err).Msg("Failed to send complex message response")
	}
	return msg, err
}

// Reply posts content mentioning the author.
func (c *Context) Reply(content string) (*discordgo.Message, error) {
	return c.Send(c.Message.Author.Mention() + " " + content)
}

// Tick acknowledges the command message with a check mark.
func (c *Context) Tick() {
	if err := c.Session.MessageReactionAdd(c.Message.ChannelID, c.Message.ID, TickEmoji); err != nil {
		c.Logger.Debug().Err(err).Msg("Failed to add tick reaction")
	}
}

// DeleteInvocation removes the command message.
func (c *Context) DeleteInvocation() error {
	return c.Session.ChannelMessageDelete(c.Message.ChannelID, c.Message.ID)
}

// SendHelp posts the help of the invoked command.
func (c *Context) SendHelp() error {
	_, err := c.SendEmbed(CommandHelp(c.Prefix, c.Command))
	return err
}

// TargetMessage resolves a message reference: a message ID from the current
// channel, a jump URL or "channelID-messageID". An empty ref selects the
// message sent just before the invocation.
func (c *Context) TargetMessage(ref string) (*discordgo.Message, error) {
	ref = strings.TrimSpace(ref)
	channelID := c.Message.ChannelID
	var messageID string

	switch {
	case ref == "":
		msgs, err := c.Session.ChannelMessages(channelID, 1, c.Message.ID, "", "")
		if err != nil {
			return nil, fmt.Errorf("fetching previous message: %w", err)
		}
		if len(msgs) == 0 {
			return nil, ErrMessageNotFound
		}
		return msgs[0], nil
	case jumpURLRe.MatchString(ref):
		m := jumpURLRe.FindStringSubmatch(ref)
		channelID, messageID = m[1], m[2]
	case channelMsgRe.MatchString(ref):
		m := channelMsgRe.FindStringSubmatch(ref)
		channelID, messageID = m[1], m[2]
	case snowflakeRe.MatchString(ref):
		messageID = ref
	default:
		return nil, ErrMessageNotFound
	}

	msg, err := c.Session.ChannelMessage(channelID, messageID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMessageNotFound, err)
	}
	if msg.ChannelID == "" {
		msg.ChannelID = channelID
	}
	return msg, nil
}

// IsMessageRef reports whether s looks like something TargetMessage accepts.
func IsMessageRef(s string) bool {
	return jumpURLRe.MatchString(s) || channelMsgRe.MatchString(s) || snowflakeRe.MatchString(s)
}
