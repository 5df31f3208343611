package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrCeilingExceeded is returned by Wait once a configured hard call
// ceiling has been exhausted. Pacing alone never produces this error;
// without a ceiling the limiter always eventually admits the caller.
var ErrCeilingExceeded = errors.New("rate limit ceiling exceeded")

// Limiter paces outbound API calls. All workers share one instance, so
// concurrent batches never exceed the provider quota regardless of pool
// size. Spacing between admissions is at least window/maxCalls (modulo
// the configured burst).
type Limiter struct {
	limiter *rate.Limiter

	mu       sync.Mutex
	ceiling  int // 0 means no hard ceiling
	admitted int
}

// NewLimiter creates a limiter admitting maxCalls per window. A ceiling > 0
// caps total admissions for the limiter's lifetime.
func NewLimiter(maxCalls int, window time.Duration, burst, ceiling int) *Limiter {
	if maxCalls <= 0 {
		maxCalls = 1
	}
	if window <= 0 {
		window = time.Second
	}
	if burst <= 0 {
		burst = 1
	}

	perSecond := float64(maxCalls) / window.Seconds()

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		ceiling: ceiling,
	}
}

// Wait blocks until the next call is permitted, or fails with
// ErrCeilingExceeded / the context's error. A call that fails does not
// consume a ceiling slot.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.reserve(); err != nil {
		return err
	}

	if err := l.limiter.Wait(ctx); err != nil {
		l.release()
		return err
	}

	return nil
}

// Allow reports whether a call would be admitted right now, consuming the
// slot if so.
func (l *Limiter) Allow() bool {
	if err := l.reserve(); err != nil {
		return false
	}
	if !l.limiter.Allow() {
		l.release()
		return false
	}
	return true
}

// Admitted returns the number of calls admitted so far
func (l *Limiter) Admitted() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.admitted
}

func (l *Limiter) reserve() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ceiling > 0 && l.admitted >= l.ceiling {
		return ErrCeilingExceeded
	}
	l.admitted++
	return nil
}

func (l *Limiter) release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.admitted--
}
