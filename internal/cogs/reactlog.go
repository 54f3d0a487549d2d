package cogs

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/haytac/cogbot/internal/bot"
	"github.com/haytac/cogbot/internal/database"
	"github.com/haytac/cogbot/internal/formatter"
	"github.com/haytac/cogbot/pkg/interfaces"
	"github.com/rs/zerolog/log"
)

const (
	keyReactLogChannel = "reactlog.channel"
	keyReactLogAdd     = "reactlog.reaction_add"
	keyReactLogRemove  = "reactlog.reaction_remove"

	listenerTimeout = 10 * time.Second
)

// ReactLog posts an entry to a guild channel when a reaction appears on or
// disappears from a message.
type ReactLog struct {
	settings interfaces.SettingsStore
	now      func() time.Time
}

// NewReactLog creates the ReactLog cog.
func NewReactLog(settings interfaces.SettingsStore) *ReactLog {
	return &ReactLog{settings: settings, now: time.Now}
}

func (r *ReactLog) Name() string        { return "ReactLog" }
func (r *ReactLog) Description() string { return "Log when a reaction is added or removed!" }

func (r *ReactLog) Commands() []*bot.Command {
	return []*bot.Command{
		{
			Name:        "reactlog",
			Aliases:     []string{"reactlogs", "reactionlog", "reactionlogs"},
			Description: "ReactLog commands.",
			Checks:      []bot.Check{bot.GuildOnly, bot.AdminOnly},
			Subcommands: []*bot.Command{
				{
					Name:        "set",
					Description: "ReactLog settings.",
					Subcommands: []*bot.Command{
						{
							Name:        "channel",
							Description: "Set the reactions logging channel.",
							Usage:       "<channel>",
							Run:         r.setChannel,
						},
						{
							Name:        "reactadd",
							Aliases:     []string{"reactionadd"},
							Description: "Enable/disable logging when reactions added.",
							Usage:       "<on_or_off>",
							Run:         r.toggle(keyReactLogAdd, "added"),
						},
						{
							Name:        "reactremove",
							Aliases:     []string{"reactionremove"},
							Description: "Enable/disable logging when reactions removed.",
							Usage:       "<on_or_off>",
							Run:         r.toggle(keyReactLogRemove, "removed"),
						},
					},
				},
				{
					Name:        "showsettings",
					Aliases:     []string{"settings"},
					Description: "Show the current settings.",
					Checks:      []bot.Check{bot.BotHasPermissions(discordgo.PermissionEmbedLinks)},
					Run:         r.showSettings,
				},
			},
		},
	}
}

func (r *ReactLog) setChannel(c *bot.Context) error {
	channelID, ok := parseChannel(c.Arg(0))
	if !ok {
		return c.SendHelp()
	}
	perms, err := c.BotPermissions(channelID)
	if err != nil {
		return fmt.Errorf("reading permissions in %s: %w", channelID, err)
	}
	if perms&(discordgo.PermissionSendMessages|discordgo.PermissionAdministrator) == 0 {
		_, err := c.Send("Please grant me permission to send message in that channel first.")
		return err
	}
	if err := r.settings.Set(c.Context(), database.ScopeGuild, c.Message.GuildID, keyReactLogChannel, channelID); err != nil {
		return err
	}
	_, err = c.Sendf("Set reaction log channel to: <#%s>", channelID)
	return err
}

func (r *ReactLog) toggle(key, verb string) bot.HandlerFunc {
	return func(c *bot.Context) error {
		on, ok := parseBool(c.Arg(0))
		if !ok {
			return c.SendHelp()
		}
		if err := r.settings.SetBool(c.Context(), database.ScopeGuild, c.Message.GuildID, key, on); err != nil {
			return err
		}
		if on {
			_, err := c.Sendf("I will log when reactions %s.", verb)
			return err
		}
		_, err := c.Sendf("I won't log when reactions %s.", verb)
		return err
	}
}

func (r *ReactLog) showSettings(c *bot.Context) error {
	ctx := c.Context()
	guildID := c.Message.GuildID

	channel := "Not Set"
	if id, ok, err := r.settings.Get(ctx, database.ScopeGuild, guildID, keyReactLogChannel); err != nil {
		return err
	} else if ok {
		channel = "<#" + id + ">"
	}
	onAdd, err := r.settings.GetBool(ctx, database.ScopeGuild, guildID, keyReactLogAdd, false)
	if err != nil {
		return err
	}
	onRemove, err := r.settings.GetBool(ctx, database.ScopeGuild, guildID, keyReactLogRemove, false)
	if err != nil {
		return err
	}

	embed := bot.NewEmbed().
		SetTitle("Reaction Log Settings").
		AddField("Channel", channel, true).
		AddField("Log On Reaction Add", fmt.Sprint(onAdd), true).
		AddField("Log On Reaction Remove", fmt.Sprint(onRemove), true)
	if guild, err := c.Session.Guild(guildID); err == nil {
		embed.SetFooter(guild.Name, guild.IconURL(""))
	}
	_, err = c.SendEmbed(embed)
	return err
}

// OnReactionAdd logs the first reaction of an emoji on a message.
func (r *ReactLog) OnReactionAdd(b *bot.Bot, ev *discordgo.MessageReactionAdd) {
	var member *discordgo.User
	if ev.Member != nil {
		member = ev.Member.User
	}
	r.handle(b, ev.MessageReaction, member, true)
}

// OnReactionRemove logs the removal of the last reaction of an emoji.
func (r *ReactLog) OnReactionRemove(b *bot.Bot, ev *discordgo.MessageReactionRemove) {
	r.handle(b, ev.MessageReaction, nil, false)
}

func (r *ReactLog) handle(b *bot.Bot, ev *discordgo.MessageReaction, user *discordgo.User, added bool) {
	if ev.GuildID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), listenerTimeout)
	defer cancel()
	logger := log.With().Str("cog", r.Name()).Str("guild_id", ev.GuildID).Str("message_id", ev.MessageID).Logger()

	key := keyReactLogRemove
	if added {
		key = keyReactLogAdd
	}
	enabled, err := r.settings.GetBool(ctx, database.ScopeGuild, ev.GuildID, key, false)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to read reactlog settings")
		return
	}
	if !enabled {
		return
	}
	logChannel, ok, err := r.settings.Get(ctx, database.ScopeGuild, ev.GuildID, keyReactLogChannel)
	if err != nil || !ok {
		if err != nil {
			logger.Error().Err(err).Msg("Failed to read reactlog channel")
		}
		return
	}

	s := b.Session()
	if user == nil {
		if user, err = s.User(ev.UserID); err != nil {
			logger.Warn().Err(err).Str("user_id", ev.UserID).Msg("Failed to fetch reacting user")
			return
		}
	}
	if user.Bot {
		return
	}

	count := 0
	if msg, err := s.ChannelMessage(ev.ChannelID, ev.MessageID); err == nil {
		count = reactionCount(msg, &ev.Emoji)
	} else {
		logger.Debug().Err(err).Msg("Failed to fetch reacted message")
		if !added {
			return
		}
		count = 1
	}
	if (added && count != 1) || (!added && count != 0) {
		return
	}

	embed, err := r.entry(s, ev, user, added)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to build reactlog entry")
		return
	}
	if _, err := s.ChannelMessageSendEmbed(logChannel, embed.MessageEmbed); err != nil {
		logger.Error().Err(err).Str("log_channel", logChannel).Msg("Failed to send reactlog entry")
	}
}

// userTag is name#discriminator for legacy accounts and the plain username otherwise.
func userTag(u *discordgo.User) string {
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.Username + "#" + u.Discriminator
}

func reactionCount(msg *discordgo.Message, emoji *discordgo.Emoji) int {
	for _, mr := range msg.Reactions {
		if mr.Emoji == nil {
			continue
		}
		if emoji.ID != "" && mr.Emoji.ID == emoji.ID {
			return mr.Count
		}
		if emoji.ID == "" && mr.Emoji.ID == "" && mr.Emoji.Name == emoji.Name {
			return mr.Count
		}
	}
	return 0
}

func (r *ReactLog) entry(s bot.Session, ev *discordgo.MessageReaction, user *discordgo.User, added bool) (*bot.Embed, error) {
	emoji := ev.Emoji.Name
	if ev.Emoji.ID != "" {
		emoji = fmt.Sprintf("%s (ID: %s)", ev.Emoji.Name, ev.Emoji.ID)
	}
	description, err := formatter.RenderTemplate("reactlog", formatter.ReactLogDescription, map[string]string{
		"ChannelID": ev.ChannelID,
		"Emoji":     emoji,
		"JumpURL":   jumpURL(ev.GuildID, ev.ChannelID, ev.MessageID),
	})
	if err != nil {
		return nil, err
	}

	channelName := ev.ChannelID
	if ch, err := s.Channel(ev.ChannelID); err == nil {
		channelName = ch.Name
	}

	embed := bot.NewEmbed().
		SetAuthor(fmt.Sprintf("%s (%s)", userTag(user), user.ID), user.AvatarURL("")).
		SetDescription(description).
		SetTimestamp(r.now())
	if added {
		embed.SetColor(bot.ColorGreen).SetFooter("Reaction Added | #" + channelName)
	} else {
		embed.SetColor(bot.ColorRed).SetFooter("Reaction Removed | #" + channelName)
	}
	if ev.Emoji.ID != "" {
		if ev.Emoji.Animated {
			embed.SetThumbnail(discordgo.EndpointEmojiAnimated(ev.Emoji.ID))
		} else {
			embed.SetThumbnail(discordgo.EndpointEmoji(ev.Emoji.ID))
		}
	}
	return embed, nil
}
