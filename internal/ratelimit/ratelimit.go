// Package ratelimit provides a local token bucket used to pace
// outbound web requests.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Limiter is a lazily refilled token bucket. The zero value is not
// usable; construct with PerMinute or New.
type Limiter struct {
	mu       sync.Mutex
	capacity float64
	tokens   float64
	perSec   float64
	last     time.Time

	// now is swappable for tests.
	now func() time.Time
}

// New creates a limiter holding capacity tokens refilled at perSec.
func New(capacity int, perSec float64) *Limiter {
	if capacity < 1 {
		capacity = 1
	}
	if perSec <= 0 {
		perSec = 1
	}
	limiter := &Limiter{
		capacity: float64(capacity),
		tokens:   float64(capacity),
		perSec:   perSec,
		now:      time.Now,
	}
	limiter.last = limiter.now()
	return limiter
}

// PerMinute creates a limiter allowing n requests per minute, with a
// burst of n.
func PerMinute(n int) *Limiter {
	if n < 1 {
		n = 1
	}
	return New(n, float64(n)/60)
}

// Reservation is one claimed token awaiting its completion report.
type Reservation struct {
	limiter   *Limiter
	completed bool
}

// Reserve claims a token ahead of an outbound request. The caller
// reports the outcome through Complete. When the bucket is empty the
// error carries a retry hint.
func (l *Limiter) Reserve() (*Reservation, error) {
	wait, ok := l.take()
	if !ok {
		return nil, fmt.Errorf("rate limit reached, retry in %s", wait.Round(time.Millisecond))
	}
	return &Reservation{limiter: l}, nil
}

// Complete reports whether the reserved request was actually sent.
// Tokens held for requests that never went out return to the bucket.
// Completing twice is a no-op.
func (r *Reservation) Complete(used bool) {
	if r == nil || r.completed {
		return
	}
	r.completed = true
	if !used {
		r.limiter.refund()
	}
}

// Allow reserves a token and immediately completes it as used, for
// callers pacing one-shot requests.
func (l *Limiter) Allow() error {
	res, err := l.Reserve()
	if err != nil {
		return err
	}
	res.Complete(true)
	return nil
}

// Wait blocks until a token is available or the context is done.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		wait, ok := l.take()
		if ok {
			return nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// take refills from elapsed time and claims one token. When the bucket
// is empty it returns the time until the next token.
func (l *Limiter) take() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	elapsed := now.Sub(l.last).Seconds()
	if elapsed > 0 {
		l.tokens += elapsed * l.perSec
		if l.tokens > l.capacity {
			l.tokens = l.capacity
		}
		l.last = now
	}

	if l.tokens >= 1 {
		l.tokens--
		return 0, true
	}
	missing := 1 - l.tokens
	return time.Duration(missing / l.perSec * float64(time.Second)), false
}

// refund returns one token to the bucket.
func (l *Limiter) refund() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens++
	if l.tokens > l.capacity {
		l.tokens = l.capacity
	}
}
