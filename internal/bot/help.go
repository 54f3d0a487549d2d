package bot

import (
	"fmt"
	"sort"
	"strings"
)

// CommandHelp builds the help embed of one command.
func CommandHelp(prefix string, cmd *Command) *Embed {
	usage := prefix + cmd.QualifiedName()
	if cmd.Usage != "" {
		usage += " " + cmd.Usage
	}
	e := NewEmbed().SetTitle(usage)
	if cmd.Description != "" {
		e.SetDescription(cmd.Description)
	}
	if len(cmd.Aliases) > 0 {
		e.AddField("Aliases", strings.Join(cmd.Aliases, ", "), false)
	}
	if len(cmd.Subcommands) > 0 {
		var lines []string
		for _, sub := range cmd.Subcommands {
			lines = append(lines, fmt.Sprintf("`%s`: %s", sub.Name, firstLine(sub.Description)))
		}
		e.AddField("Subcommands", strings.Join(lines, "\n"), false)
	}
	return e
}

// OverviewHelp lists every cog with its top-level commands.
func OverviewHelp(b *Bot) *Embed {
	e := NewEmbed().SetTitle("Commands").
		SetFooter(fmt.Sprintf("Type %shelp <command> for more info on a command.", b.Prefix()))
	sorted := append([]Cog(nil), b.Cogs()...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name() < sorted[j].Name() })
	for _, cog := range sorted {
		var names []string
		for _, cmd := range b.CogCommands(cog) {
			names = append(names, "`"+cmd.Name+"`")
		}
		if len(names) == 0 {
			continue
		}
		e.AddField(cog.Name(), strings.Join(names, " "), false)
	}
	return e
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// coreCog carries the commands every bot has.
type coreCog struct {
	bot *Bot
}

func (c *coreCog) Name() string        { return "Core" }
func (c *coreCog) Description() string { return "Built-in commands." }

func (c *coreCog) Commands() []*Command {
	return []*Command{
		{
			Name:        "help",
			Usage:       "[command]",
			Description: "Show help for all commands or one command.",
			Run:         c.help,
		},
	}
}

func (c *coreCog) help(ctx *Context) error {
	if ctx.NArgs() == 0 {
		_, err := ctx.SendEmbed(OverviewHelp(c.bot))
		return err
	}
	cmd := c.bot.Command(ctx.Arg(0))
	for i := 1; cmd != nil && i < ctx.NArgs(); i++ {
		cmd = cmd.Sub(ctx.Arg(i))
	}
	if cmd == nil {
		_, err := ctx.Sendf("Command %q not found.", ctx.Rest(0))
		return err
	}
	_, err := ctx.SendEmbed(CommandHelp(ctx.Prefix, cmd))
	return err
}
