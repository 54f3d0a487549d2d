package bot

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Bucket selects who shares a cooldown.
type Bucket int

const (
	BucketUser Bucket = iota
	BucketGlobal
)

// Cooldown allows Rate uses every Per.
type Cooldown struct {
	Rate   int
	Per    time.Duration
	Bucket Bucket
}

type cooldowns struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newCooldowns() *cooldowns {
	return &cooldowns{limiters: make(map[string]*rate.Limiter)}
}

// take consumes one use for key. When none is available it returns the
// time until the next one and consumes nothing.
func (cd *cooldowns) take(key string, c *Cooldown) time.Duration {
	cd.mu.Lock()
	limiter, exists := cd.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(rate.Every(c.Per/time.Duration(c.Rate)), c.Rate)
		cd.limiters[key] = limiter
	}
	cd.mu.Unlock()

	now := time.Now()
	r := limiter.ReserveN(now, 1)
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return d
	}
	return 0
}

func (c *Cooldown) key(cmd *Command, userID string) string {
	if c.Bucket == BucketGlobal {
		return cmd.QualifiedName()
	}
	return cmd.QualifiedName() + "/" + userID
}
