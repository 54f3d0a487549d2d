package bot

import (
	"context"
	"sync"

	"github.com/haytac/cogbot/internal/metrics"
	"github.com/haytac/cogbot/internal/reaction"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	defaultGlobalReactionsPerSecond  = 4
	defaultChannelReactionsPerSecond = 1
)

// ApplierConfig paces reaction adds.
type ApplierConfig struct {
	GlobalPerSecond  float64
	ChannelPerSecond float64
	DryRun           bool // log instead of calling Discord
}

// ReactionApplier adds planned reactions to messages, one at a time, within
// a global and a per-channel rate budget.
type ReactionApplier struct {
	session Session
	dryRun  bool

	globalLimiter  *rate.Limiter
	channelRate    rate.Limit
	channelBurst   int
	channelLimiter map[string]*rate.Limiter
	mu             sync.Mutex
}

// NewReactionApplier creates a ReactionApplier.
func NewReactionApplier(session Session, cfg ApplierConfig) *ReactionApplier {
	global := cfg.GlobalPerSecond
	if global <= 0 {
		global = defaultGlobalReactionsPerSecond
	}
	perChannel := cfg.ChannelPerSecond
	if perChannel <= 0 {
		perChannel = defaultChannelReactionsPerSecond
	}
	return &ReactionApplier{
		session:        session,
		dryRun:         cfg.DryRun,
		globalLimiter:  rate.NewLimiter(rate.Limit(global), int(global*2)+1),
		channelRate:    rate.Limit(perChannel),
		channelBurst:   int(perChannel*4) + 1,
		channelLimiter: make(map[string]*rate.Limiter),
	}
}

func (a *ReactionApplier) getChannelLimiter(channelID string) *rate.Limiter {
	a.mu.Lock()
	defer a.mu.Unlock()
	limiter, exists := a.channelLimiter[channelID]
	if !exists {
		limiter = rate.NewLimiter(a.channelRate, a.channelBurst)
		a.channelLimiter[channelID] = limiter
	}
	return limiter
}

// Apply adds tokens to the message in order and returns how many succeeded.
// A failed add is logged and skipped. Cancelling ctx stops the walk.
func (a *ReactionApplier) Apply(ctx context.Context, channelID, messageID string, tokens []reaction.Token) int {
	logger := log.With().Str("channel_id", channelID).Str("message_id", messageID).Logger()
	added := 0
	for i, tok := range tokens {
		if err := a.globalLimiter.Wait(ctx); err != nil {
			logger.Debug().Err(err).Int("remaining", len(tokens)-i).Msg("Reaction walk stopped")
			return added
		}
		if err := a.getChannelLimiter(channelID).Wait(ctx); err != nil {
			logger.Debug().Err(err).Int("remaining", len(tokens)-i).Msg("Reaction walk stopped")
			return added
		}

		if a.dryRun {
			logger.Info().Str("emoji", tok.String()).Msg("Dry run: would add reaction")
			metrics.ReactionsAdded.WithLabelValues("dry_run").Inc()
			added++
			continue
		}

		if err := a.session.MessageReactionAdd(channelID, messageID, tok.APIName()); err != nil {
			logger.Warn().Err(err).Str("emoji", tok.String()).Msg("Failed to add reaction")
			metrics.ReactionsAdded.WithLabelValues("error").Inc()
			continue
		}
		metrics.ReactionsAdded.WithLabelValues("success").Inc()
		added++
	}
	return added
}
