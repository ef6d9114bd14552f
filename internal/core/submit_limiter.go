package core

// submit_limiter.go bounds how many submits write to storage at once.
//
// A submit holds its session lock while it writes, so a slow backend would
// otherwise pile up blocked request goroutines. Waiters give up after
// maxWait with ErrTooManySubmits. WaitForDrain lets shutdown finish
// in-flight writes before the store is closed.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTooManySubmits is returned when no write slot frees up within the wait time.
var ErrTooManySubmits = errors.New("too many submits in progress, please try again later")

// DefaultMaxConcurrentSubmits is the default limit for parallel storage writes.
const DefaultMaxConcurrentSubmits = 8

// DefaultSubmitWait is how long a submit waits for a slot before failing.
const DefaultSubmitWait = 10 * time.Second

// SubmitLimiter is a weighted semaphore with a bounded wait.
type SubmitLimiter struct {
	sem     *semaphore.Weighted
	max     int
	maxWait time.Duration
	active  atomic.Int64
}

// NewSubmitLimiter allows at most maxConcurrent simultaneous writes.
func NewSubmitLimiter(maxConcurrent int, maxWait time.Duration) *SubmitLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentSubmits
	}
	if maxWait <= 0 {
		maxWait = DefaultSubmitWait
	}
	return &SubmitLimiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		max:     maxConcurrent,
		maxWait: maxWait,
	}
}

// Acquire waits for a slot. The caller must Release it.
func (l *SubmitLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManySubmits
	}
	l.active.Add(1)
	return nil
}

// Release returns a slot taken by Acquire.
func (l *SubmitLimiter) Release() {
	l.active.Add(-1)
	l.sem.Release(1)
}

// ActiveCount returns the number of writes in progress.
func (l *SubmitLimiter) ActiveCount() int { return int(l.active.Load()) }

// MaxConcurrent returns the slot count.
func (l *SubmitLimiter) MaxConcurrent() int { return l.max }

// WaitForDrain blocks until no write is in progress or ctx ends.
func (l *SubmitLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
