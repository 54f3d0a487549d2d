package bot

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// ReactionFilter selects the reaction a waiter is interested in.
type ReactionFilter func(r *discordgo.MessageReaction) bool

// ReactionWait is a registered, not yet delivered, reaction wait.
type ReactionWait struct {
	w      *Waiter
	id     int
	filter ReactionFilter
	ch     chan *discordgo.MessageReaction
}

// Waiter delivers reaction add events to one-shot waits.
type Waiter struct {
	mu      sync.Mutex
	nextID  int
	pending map[int]*ReactionWait
}

// NewWaiter creates an empty Waiter.
func NewWaiter() *Waiter {
	return &Waiter{pending: make(map[int]*ReactionWait)}
}

// Expect registers a wait for a reaction matching filter. Events dispatched
// after Expect returns are kept until Wait is called.
func (w *Waiter) Expect(filter ReactionFilter) *ReactionWait {
	w.mu.Lock()
	defer w.mu.Unlock()
	wait := &ReactionWait{w: w, id: w.nextID, filter: filter, ch: make(chan *discordgo.MessageReaction, 1)}
	w.nextID++
	w.pending[wait.id] = wait
	return wait
}

// Wait blocks until the reaction arrives or ctx ends. The wait is
// unregistered either way.
func (rw *ReactionWait) Wait(ctx context.Context) (*discordgo.MessageReaction, error) {
	defer func() {
		rw.w.mu.Lock()
		delete(rw.w.pending, rw.id)
		rw.w.mu.Unlock()
	}()

	select {
	case r := <-rw.ch:
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// WaitForReaction blocks until a reaction matching filter is added or ctx ends.
func (w *Waiter) WaitForReaction(ctx context.Context, filter ReactionFilter) (*discordgo.MessageReaction, error) {
	return w.Expect(filter).Wait(ctx)
}

// Pending returns the number of active waits.
func (w *Waiter) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Dispatch hands r to every matching wait. Each wait fires at most once.
func (w *Waiter) Dispatch(r *discordgo.MessageReaction) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, wait := range w.pending {
		if !wait.filter(r) {
			continue
		}
		select {
		case wait.ch <- r:
		default:
		}
		delete(w.pending, id)
	}
}

// YesOrNo matches ✅ or ❎ added by userID to messageID.
func YesOrNo(messageID, userID string) ReactionFilter {
	return func(r *discordgo.MessageReaction) bool {
		if r.MessageID != messageID || r.UserID != userID {
			return false
		}
		return r.Emoji.Name == YesEmoji || r.Emoji.Name == NoEmoji
	}
}

// Confirmation emojis.
const (
	YesEmoji = "✅"
	NoEmoji  = "❎"
)
