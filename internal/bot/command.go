package bot

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// HandlerFunc runs a command.
type HandlerFunc func(c *Context) error

// Command is a node of the command tree. A command with Subcommands and no
// Run acts as a group and answers with its help.
type Command struct {
	Name        string
	Aliases     []string
	Description string
	Usage       string
	Checks      []Check
	Cooldown    *Cooldown
	Subcommands []*Command
	Run         HandlerFunc

	parent *Command
	cog    Cog
}

// Matches reports whether name is the command name or one of its aliases.
func (cmd *Command) Matches(name string) bool {
	if strings.EqualFold(cmd.Name, name) {
		return true
	}
	for _, a := range cmd.Aliases {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}

// Sub returns the subcommand called name.
func (cmd *Command) Sub(name string) *Command {
	for _, sub := range cmd.Subcommands {
		if sub.Matches(name) {
			return sub
		}
	}
	return nil
}

// QualifiedName is the full invocation path, e.g. "reactlog set channel".
func (cmd *Command) QualifiedName() string {
	if cmd.parent == nil {
		return cmd.Name
	}
	return cmd.parent.QualifiedName() + " " + cmd.Name
}

// Cog returns the cog the command belongs to.
func (cmd *Command) Cog() Cog {
	return cmd.cog
}

// Walk calls fn for cmd and every command below it.
func (cmd *Command) Walk(fn func(*Command)) {
	fn(cmd)
	for _, sub := range cmd.Subcommands {
		sub.Walk(fn)
	}
}

// chain returns the commands from the root down to cmd.
func (cmd *Command) chain() []*Command {
	if cmd.parent == nil {
		return []*Command{cmd}
	}
	return append(cmd.parent.chain(), cmd)
}

func (cmd *Command) bind(cog Cog, parent *Command) {
	cmd.cog = cog
	cmd.parent = parent
	for _, sub := range cmd.Subcommands {
		sub.bind(cog, cmd)
	}
}

// Cog is a named group of commands.
type Cog interface {
	Name() string
	Description() string
	Commands() []*Command
}

// ReactionListener is implemented by cogs that observe reaction events.
type ReactionListener interface {
	OnReactionAdd(b *Bot, r *discordgo.MessageReactionAdd)
	OnReactionRemove(b *Bot, r *discordgo.MessageReactionRemove)
}
