package cache

import (
	"errors"
	"sync"
	"time"
)

// Breaker keeps a flapping Redis from slowing every journal read down to
// its dial timeout. While open, cache calls fail fast and callers fall
// through to the database.
type Breaker struct {
	mu           sync.Mutex
	open         bool
	failures     int
	openedAt     time.Time
	maxFailures  int
	resetTimeout time.Duration
}

var ErrBreakerOpen = errors.New("cache circuit open")

func NewBreaker(maxFailures int, resetTimeout time.Duration) *Breaker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if resetTimeout <= 0 {
		resetTimeout = 30 * time.Second
	}
	return &Breaker{maxFailures: maxFailures, resetTimeout: resetTimeout}
}

// Do runs fn unless the breaker is open. A success closes the breaker; a
// failure past the threshold opens it until the reset timeout elapses.
func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	if b.open {
		if time.Since(b.openedAt) < b.resetTimeout {
			b.mu.Unlock()
			return ErrBreakerOpen
		}
		// Timeout elapsed; let one probe through.
		b.open = false
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.failures++
		if b.failures >= b.maxFailures {
			b.open = true
			b.openedAt = time.Now()
		}
		return err
	}
	b.failures = 0
	return nil
}

func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open && time.Since(b.openedAt) < b.resetTimeout
}

func (b *Breaker) Stats() map[string]interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	state := "closed"
	if b.open {
		state = "open"
	}
	return map[string]interface{}{
		"state":         state,
		"failure_count": b.failures,
		"max_failures":  b.maxFailures,
	}
}
