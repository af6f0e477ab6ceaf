package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunLimiter_AcquireRelease(t *testing.T) {
	limiter := NewRunLimiter(2, time.Second)
	ctx := context.Background()

	if got := limiter.Available(); got != 2 {
		t.Errorf("initial Available = %d, want 2", got)
	}

	for i := 0; i < 2; i++ {
		if err := limiter.Acquire(ctx); err != nil {
			t.Fatalf("Acquire %d: %v", i, err)
		}
	}
	if got := limiter.ActiveCount(); got != 2 {
		t.Errorf("ActiveCount = %d, want 2", got)
	}
	if got := limiter.Available(); got != 0 {
		t.Errorf("Available = %d, want 0", got)
	}

	limiter.Release()
	limiter.Release()
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount after release = %d, want 0", got)
	}
}

func TestRunLimiter_TimesOutWhenFull(t *testing.T) {
	limiter := NewRunLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer limiter.Release()

	start := time.Now()
	err := limiter.Acquire(ctx)
	if !errors.Is(err, ErrTooManyRuns) {
		t.Fatalf("err = %v, want ErrTooManyRuns", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("returned after %v, expected to wait for the timeout", elapsed)
	}
}

func TestRunLimiter_ContextCancelled(t *testing.T) {
	limiter := NewRunLimiter(1, 5*time.Second)
	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire on empty limiter failed")
	}
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- limiter.Acquire(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Acquire did not return after cancel")
	}
}

func TestRunLimiter_TryAcquireDoesNotBlock(t *testing.T) {
	limiter := NewRunLimiter(1, time.Second)
	if !limiter.TryAcquire() {
		t.Fatal("first TryAcquire should succeed")
	}
	if limiter.TryAcquire() {
		t.Error("second TryAcquire should fail")
	}
	limiter.Release()
	if !limiter.TryAcquire() {
		t.Error("TryAcquire after Release should succeed")
	}
	limiter.Release()
}

func TestRunLimiter_DoNeverExceedsMax(t *testing.T) {
	const max = 3
	limiter := NewRunLimiter(max, time.Second)

	var (
		wg      sync.WaitGroup
		current atomic.Int64
		peak    atomic.Int64
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := limiter.Do(context.Background(), func() error {
				n := current.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				current.Add(-1)
				return nil
			})
			if err != nil {
				t.Errorf("Do: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := peak.Load(); got > max {
		t.Errorf("peak concurrency = %d, want <= %d", got, max)
	}
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount = %d, want 0", got)
	}
}

func TestRunLimiter_DoReturnsFnError(t *testing.T) {
	limiter := NewRunLimiter(1, time.Second)
	want := errors.New("boom")
	if err := limiter.Do(context.Background(), func() error { return want }); !errors.Is(err, want) {
		t.Errorf("Do err = %v, want %v", err, want)
	}
	if got := limiter.Available(); got != 1 {
		t.Errorf("slot not released: Available = %d", got)
	}
}

func TestRunLimiter_WaitForDrain(t *testing.T) {
	limiter := NewRunLimiter(2, time.Second)
	limiter.TryAcquire()

	done := make(chan error, 1)
	go func() { done <- limiter.WaitForDrain(context.Background()) }()

	select {
	case <-done:
		t.Fatal("WaitForDrain returned while a run was active")
	case <-time.After(100 * time.Millisecond):
	}

	limiter.Release()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WaitForDrain: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForDrain did not return after release")
	}
}

func TestRunLimiter_Defaults(t *testing.T) {
	limiter := NewRunLimiter(0, 0)
	status := limiter.Status()
	if status.MaxConcurrent != DefaultMaxConcurrentRuns {
		t.Errorf("MaxConcurrent = %d, want %d", status.MaxConcurrent, DefaultMaxConcurrentRuns)
	}
	if status.Available != DefaultMaxConcurrentRuns || status.Active != 0 {
		t.Errorf("Status = %+v", status)
	}
}
