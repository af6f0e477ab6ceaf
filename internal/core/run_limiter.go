package core

// run_limiter.go caps how many pipeline evaluations run at once.
//
// Every evaluation holds a whole file and its derived tables in memory, so
// parallelism is bounded by a semaphore. A caller that cannot get a slot
// within maxWait fails with ErrTooManyRuns; the web layer answers 503.
// WaitForDrain lets shutdown wait for in-flight evaluations.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyRuns is returned when every evaluation slot stays busy for the
// whole wait timeout. Clients should retry after a short delay.
var ErrTooManyRuns = errors.New("too many concurrent evaluations, please try again later")

const (
	// DefaultMaxConcurrentRuns is the default number of parallel evaluations.
	DefaultMaxConcurrentRuns = 4

	// DefaultMaxRunWait is how long to wait for a slot before rejecting.
	DefaultMaxRunWait = 10 * time.Second

	drainPollInterval = 50 * time.Millisecond
)

// RunLimiter is a counting semaphore for pipeline evaluations.
type RunLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

// NewRunLimiter allows at most maxConcurrent evaluations, each waiting up to
// maxWait for a slot. Non-positive arguments select the defaults.
func NewRunLimiter(maxConcurrent int, maxWait time.Duration) *RunLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentRuns
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxRunWait
	}
	return &RunLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting at most maxWait. It returns ctx.Err() if ctx
// ends first. Each successful Acquire must be paired with Release.
func (l *RunLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyRuns
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *RunLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return true
	default:
		return false
	}
}

// Release frees a slot taken by Acquire or TryAcquire.
func (l *RunLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// Do runs fn while holding a slot.
func (l *RunLimiter) Do(ctx context.Context, fn func() error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn()
}

// ActiveCount returns the number of evaluations holding a slot.
func (l *RunLimiter) ActiveCount() int { return int(l.active.Load()) }

// MaxConcurrent returns the slot count.
func (l *RunLimiter) MaxConcurrent() int { return cap(l.slots) }

// Available returns the number of free slots.
func (l *RunLimiter) Available() int { return cap(l.slots) - len(l.slots) }

// WaitForDrain blocks until no evaluation is active or ctx ends.
func (l *RunLimiter) WaitForDrain(ctx context.Context) error {
	if l.ActiveCount() == 0 {
		return nil
	}
	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.ActiveCount() == 0 {
				return nil
			}
		}
	}
}

// RunLimiterStatus is a snapshot of the limiter for health checks.
type RunLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state.
func (l *RunLimiter) Status() RunLimiterStatus {
	return RunLimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: l.MaxConcurrent(),
	}
}
