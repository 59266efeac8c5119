package backend

import (
	"context"
	"sync"
	"time"
)

// RateLimiter implements token bucket rate limiting. A zero rate never blocks.
type RateLimiter struct {
	rate       int // requests per minute
	tokens     chan struct{}
	mu         sync.Mutex
	resetTimer *time.Timer
	stopped    bool
}

func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	rl := &RateLimiter{rate: requestsPerMinute}
	if requestsPerMinute <= 0 {
		return rl
	}

	rl.tokens = make(chan struct{}, requestsPerMinute)
	rl.fill()
	rl.resetTimer = time.AfterFunc(time.Minute, rl.resetTokens)
	return rl
}

// Wait blocks until a token is available or ctx is done
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil || rl.tokens == nil {
		return nil
	}
	select {
	case <-rl.tokens:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop cancels the refill timer
func (rl *RateLimiter) Stop() {
	if rl == nil || rl.resetTimer == nil {
		return
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.stopped = true
	rl.resetTimer.Stop()
}

func (rl *RateLimiter) fill() {
	for i := 0; i < rl.rate; i++ {
		select {
		case rl.tokens <- struct{}{}:
		default:
			return
		}
	}
}

func (rl *RateLimiter) resetTokens() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.stopped {
		return
	}
	rl.fill()
	rl.resetTimer.Reset(time.Minute)
}
