package cogs

import (
	"strings"

	"github.com/haytac/cogbot/internal/bot"
	"github.com/haytac/cogbot/pkg/interfaces"
)

// APIKeys lets owners store third-party credentials from chat.
type APIKeys struct {
	tokens interfaces.TokenStore
}

// NewAPIKeys creates the APIKeys cog.
func NewAPIKeys(tokens interfaces.TokenStore) *APIKeys {
	return &APIKeys{tokens: tokens}
}

func (a *APIKeys) Name() string        { return "APIKeys" }
func (a *APIKeys) Description() string { return "Manage third-party API keys." }

func (a *APIKeys) Commands() []*bot.Command {
	return []*bot.Command{
		{
			Name:        "setapi",
			Description: "Store an API key, e.g. `setapi osu api_key <key>`. The command message is deleted.",
			Usage:       "<service> <name> <value>",
			Checks:      []bot.Check{bot.OwnerOnly},
			Run:         a.set,
		},
	}
}

func (a *APIKeys) set(c *bot.Context) error {
	if c.NArgs() < 3 {
		return c.SendHelp()
	}
	service := strings.ToLower(c.Arg(0))
	name := strings.ToLower(c.Arg(1))
	if err := a.tokens.Set(c.Context(), service, name, c.Arg(2)); err != nil {
		return err
	}
	if c.Message.GuildID != "" {
		if err := c.DeleteInvocation(); err != nil {
			c.Logger.Warn().Err(err).Msg("Failed to delete message holding an API key")
		}
	}
	_, err := c.Sendf("`%s` `%s` has been saved.", service, name)
	return err
}
