package cogs

import (
	"context"
	"errors"
	"time"

	"github.com/haytac/cogbot/internal/bot"
)

// ReactTermino shuts the bot down or restarts it after a reaction confirmation.
type ReactTermino struct {
	timeout time.Duration
}

// NewReactTermino creates the ReactTermino cog. An unanswered confirmation
// counts as a cancel after timeout.
func NewReactTermino(timeout time.Duration) *ReactTermino {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &ReactTermino{timeout: timeout}
}

func (t *ReactTermino) Name() string        { return "ReactTermino" }
func (t *ReactTermino) Description() string { return "Shutdown and Restart with confirmation!" }

func (t *ReactTermino) Commands() []*bot.Command {
	return []*bot.Command{
		{
			Name: "restart",
			Description: "Attempts to restart the bot.\n" +
				"Makes the bot quit with exit code 26. The restart is not guaranteed: " +
				"it must be dealt with by the process manager in use.\n" +
				"`[directly]` skips the confirmation message.",
			Usage:  "[directly=false]",
			Checks: []bot.Check{bot.OwnerOnly},
			Run:    t.terminate(bot.ExitRestart, "Are you sure you want to restart?", "Restarting..."),
		},
		{
			Name: "shutdown",
			Description: "Shuts down the bot.\n" +
				"`[directly]` skips the confirmation message.",
			Usage:  "[directly=false]",
			Checks: []bot.Check{bot.OwnerOnly},
			Run:    t.terminate(bot.ExitShutdown, "Are you sure you want to shut down?", "Shutting Down..."),
		},
	}
}

func (t *ReactTermino) terminate(code int, question, progress string) bot.HandlerFunc {
	return func(c *bot.Context) error {
		directly, _ := parseBool(c.Arg(0))
		if directly {
			c.SendEmbed(bot.NewEmbed().SetTitle(progress))
			c.Bot.RequestShutdown(code)
			return nil
		}

		msg, err := c.SendEmbed(bot.NewEmbed().SetTitle(question))
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(c.Context(), t.timeout)
		defer cancel()
		wait := c.Bot.Waiter().Expect(bot.YesOrNo(msg.ID, c.Message.Author.ID))
		for _, emoji := range []string{bot.YesEmoji, bot.NoEmoji} {
			if err := c.Session.MessageReactionAdd(msg.ChannelID, msg.ID, emoji); err != nil {
				c.Logger.Debug().Err(err).Str("emoji", emoji).Msg("Failed to add confirmation reaction")
			}
		}

		yes := false
		r, err := wait.Wait(ctx)
		switch {
		case err == nil:
			yes = r.Emoji.Name == bot.YesEmoji
		case !errors.Is(err, context.DeadlineExceeded):
			return err
		}
		if !yes {
			_, err := c.Session.ChannelMessageEditEmbed(msg.ChannelID, msg.ID, bot.NewEmbed().SetTitle("Cancelling...").MessageEmbed)
			return err
		}
		if _, err := c.Session.ChannelMessageEditEmbed(msg.ChannelID, msg.ID, bot.NewEmbed().SetTitle(progress).MessageEmbed); err != nil {
			c.Logger.Warn().Err(err).Msg("Failed to edit confirmation message")
		}
		c.Bot.RequestShutdown(code)
		return nil
	}
}
