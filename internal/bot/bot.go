// Package bot is a small prefix-command framework over discordgo: cogs own
// command trees, the bot dispatches messages to them and fans reaction events
// out to listeners and waiters.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/bwmarrin/discordgo"
	"github.com/haytac/cogbot/internal/metrics"
	"github.com/haytac/cogbot/internal/reaction"
	"github.com/rs/zerolog/log"
)

// Exit codes requested through RequestShutdown.
const (
	ExitShutdown = 0
	ExitRestart  = 26
)

// Options configures a Bot.
type Options struct {
	Prefix   string
	OwnerIDs []string
	Applier  *ReactionApplier
	Resolver reaction.EmojiResolver
}

// Bot routes Discord events to cogs.
type Bot struct {
	session Session
	prefix  string
	owners  map[string]bool

	selfMu sync.RWMutex
	selfID string

	cogs      []Cog
	commands  []*Command
	listeners []ReactionListener

	waiter    *Waiter
	cooldowns *cooldowns
	applier   *ReactionApplier
	planner   *reaction.Planner

	shutdownOnce sync.Once
	shutdownCh   chan int
}

// New creates a Bot with the built-in Core cog registered.
func New(session Session, opts Options) *Bot {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "!"
	}
	owners := make(map[string]bool, len(opts.OwnerIDs))
	for _, id := range opts.OwnerIDs {
		owners[id] = true
	}
	applier := opts.Applier
	if applier == nil {
		applier = NewReactionApplier(session, ApplierConfig{})
	}
	b := &Bot{
		session:    session,
		prefix:     prefix,
		owners:     owners,
		waiter:     NewWaiter(),
		cooldowns:  newCooldowns(),
		applier:    applier,
		planner:    reaction.NewPlanner(opts.Resolver),
		shutdownCh: make(chan int, 1),
	}
	if err := b.AddCog(&coreCog{bot: b}); err != nil {
		panic(err)
	}
	return b
}

// AddCog registers cog and its commands. Name or alias clashes with
// already registered commands are rejected.
func (b *Bot) AddCog(cog Cog) error {
	if b.Cog(cog.Name()) != nil {
		return fmt.Errorf("cog %q already loaded", cog.Name())
	}
	cmds := cog.Commands()
	for _, cmd := range cmds {
		for _, name := range append([]string{cmd.Name}, cmd.Aliases...) {
			if existing := b.Command(name); existing != nil {
				return fmt.Errorf("cog %q: command %q clashes with %q", cog.Name(), name, existing.QualifiedName())
			}
		}
	}
	for _, cmd := range cmds {
		cmd.bind(cog, nil)
		b.commands = append(b.commands, cmd)
	}
	b.cogs = append(b.cogs, cog)
	if l, ok := cog.(ReactionListener); ok {
		b.listeners = append(b.listeners, l)
	}
	log.Info().Str("cog", cog.Name()).Int("commands", len(cmds)).Msg("Cog loaded")
	return nil
}

// Cogs returns the loaded cogs in load order.
func (b *Bot) Cogs() []Cog {
	return b.cogs
}

// Cog returns the cog called name, ignoring case.
func (b *Bot) Cog(name string) Cog {
	for _, cog := range b.cogs {
		if strings.EqualFold(cog.Name(), name) {
			return cog
		}
	}
	return nil
}

// Commands returns the top-level commands.
func (b *Bot) Commands() []*Command {
	return b.commands
}

// CogCommands returns the top-level commands registered by cog.
func (b *Bot) CogCommands(cog Cog) []*Command {
	var cmds []*Command
	for _, cmd := range b.commands {
		if cmd.cog == cog {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// Command returns the top-level command called name.
func (b *Bot) Command(name string) *Command {
	for _, cmd := range b.commands {
		if cmd.Matches(name) {
			return cmd
		}
	}
	return nil
}

// Prefix returns the command prefix.
func (b *Bot) Prefix() string {
	return b.prefix
}

// IsOwner reports whether userID owns the bot.
func (b *Bot) IsOwner(userID string) bool {
	return b.owners[userID]
}

// SelfID returns the bot user's ID once the session is ready.
func (b *Bot) SelfID() string {
	b.selfMu.RLock()
	defer b.selfMu.RUnlock()
	return b.selfID
}

// SetSelfID records the bot user's ID.
func (b *Bot) SetSelfID(id string) {
	b.selfMu.Lock()
	b.selfID = id
	b.selfMu.Unlock()
}

// Session returns the Discord REST session.
func (b *Bot) Session() Session {
	return b.session
}

// Waiter returns the reaction waiter.
func (b *Bot) Waiter() *Waiter {
	return b.waiter
}

// Applier returns the reaction applier.
func (b *Bot) Applier() *ReactionApplier {
	return b.applier
}

// Planner returns the reaction planner bound to the bot's emoji resolver.
func (b *Bot) Planner() *reaction.Planner {
	return b.planner
}

// RequestShutdown asks the process to exit with code. Only the first request counts.
func (b *Bot) RequestShutdown(code int) {
	b.shutdownOnce.Do(func() {
		log.Info().Int("exit_code", code).Msg("Shutdown requested")
		b.shutdownCh <- code
	})
}

// ShutdownRequested delivers the exit code passed to RequestShutdown.
func (b *Bot) ShutdownRequested() <-chan int {
	return b.shutdownCh
}

// Handlers returns the discordgo event handlers bound to ctx.
func (b *Bot) Handlers(ctx context.Context) []interface{} {
	return []interface{}{
		func(s *discordgo.Session, r *discordgo.Ready) {
			b.SetSelfID(r.User.ID)
			log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("Discord session ready")
		},
		func(s *discordgo.Session, m *discordgo.MessageCreate) {
			b.HandleMessage(ctx, m.Message)
		},
		func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
			b.HandleReactionAdd(r)
		},
		func(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
			b.HandleReactionRemove(r)
		},
	}
}

// HandleReactionAdd feeds waiters and listeners.
func (b *Bot) HandleReactionAdd(r *discordgo.MessageReactionAdd) {
	if r.MessageReaction == nil {
		return
	}
	b.waiter.Dispatch(r.MessageReaction)
	for _, l := range b.listeners {
		l.OnReactionAdd(b, r)
	}
}

// HandleReactionRemove feeds listeners.
func (b *Bot) HandleReactionRemove(r *discordgo.MessageReactionRemove) {
	if r.MessageReaction == nil {
		return
	}
	for _, l := range b.listeners {
		l.OnReactionRemove(b, r)
	}
}

func cutWord(s string) (word, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}

// HandleMessage dispatches m when it starts with the prefix and names a command.
func (b *Bot) HandleMessage(ctx context.Context, m *discordgo.Message) {
	if m == nil || m.Author == nil || m.Author.Bot {
		return
	}
	if !strings.HasPrefix(m.Content, b.prefix) {
		return
	}

	name, rest := cutWord(m.Content[len(b.prefix):])
	if name == "" {
		return
	}
	cmd := b.Command(name)
	if cmd == nil {
		return
	}
	for {
		word, after := cutWord(rest)
		sub := cmd.Sub(word)
		if word == "" || sub == nil {
			break
		}
		cmd, rest = sub, after
	}

	b.invoke(newContext(ctx, b, m, cmd, rest))
}

func (b *Bot) invoke(c *Context) {
	metrics.ActiveCommands.Inc()
	defer metrics.ActiveCommands.Dec()

	cmd := c.Command
	name := cmd.QualifiedName()

	for _, node := range cmd.chain() {
		for _, check := range node.Checks {
			if err := check(c); err != nil {
				b.handleError(c, err)
				return
			}
		}
	}

	if cmd.Cooldown != nil {
		if wait := b.cooldowns.take(cmd.Cooldown.key(cmd, c.Message.Author.ID), cmd.Cooldown); wait > 0 {
			c.Sendf("This command is on cooldown. Try again in %.1fs.", wait.Seconds())
			metrics.CommandsTotal.WithLabelValues(name, "cooldown").Inc()
			return
		}
	}

	if cmd.Run == nil {
		if err := c.SendHelp(); err != nil {
			b.handleError(c, err)
		}
		return
	}

	c.Logger.Debug().Str("args", c.raw).Msg("Invoking command")
	if err := cmd.Run(c); err != nil {
		b.handleError(c, err)
		return
	}
	metrics.CommandsTotal.WithLabelValues(name, "success").Inc()
}

func (b *Bot) handleError(c *Context, err error) {
	name := c.Command.QualifiedName()
	var checkErr *CheckError
	if errors.As(err, &checkErr) {
		c.Logger.Debug().Err(err).Msg("Command check failed")
		metrics.CommandsTotal.WithLabelValues(name, "check_failed").Inc()
		if checkErr.Message != "" {
			c.Send(checkErr.Message)
		}
		return
	}
	c.Logger.Error().Err(err).Msg("Command failed")
	metrics.CommandsTotal.WithLabelValues(name, "error").Inc()
	c.Send("An error occurred while running that command.")
}
