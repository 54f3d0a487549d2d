package cogs

import "github.com/haytac/cogbot/internal/bot"

// Counter reports how many cogs and commands are loaded.
type Counter struct{}

// NewCounter creates the Counter cog.
func NewCounter() *Counter {
	return &Counter{}
}

func (cc *Counter) Name() string        { return "Counter" }
func (cc *Counter) Description() string { return "Count your cogs/commands." }

func (cc *Counter) Commands() []*bot.Command {
	return []*bot.Command{
		{
			Name:        "count",
			Description: "Count your cogs/commands.",
			Checks:      []bot.Check{bot.OwnerOnly},
			Subcommands: []*bot.Command{
				{
					Name:        "cogs",
					Description: "Count your cogs.",
					Run:         cc.cogs,
				},
				{
					Name:        "commands",
					Description: "Count your commands.\n\nYou can also provide a cog name to see how many commands is in that cog.",
					Usage:       "[cog]",
					Run:         cc.commands,
				},
			},
		},
	}
}

func (cc *Counter) cogs(c *bot.Context) error {
	_, err := c.Sendf("I have `%d` cogs loaded!", len(c.Bot.Cogs()))
	return err
}

func (cc *Counter) commands(c *bot.Context) error {
	name := c.Arg(0)
	if name == "" {
		_, err := c.Sendf("I have `%d` commands loaded!", len(c.Bot.Commands()))
		return err
	}
	cog := c.Bot.Cog(name)
	if cog == nil {
		_, err := c.Send("Please provide a valid cog name. (Example: `Core`)")
		return err
	}
	n := 0
	for _, cmd := range c.Bot.CogCommands(cog) {
		cmd.Walk(func(*bot.Command) { n++ })
	}
	_, err := c.Sendf("I have `%d` commands loaded on that cog!", n)
	return err
}
