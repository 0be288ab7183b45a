package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestIngestLimiter_AcquireRelease(t *testing.T) {
	limiter := NewIngestLimiter(2, time.Second)
	ctx := context.Background()

	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("initial ActiveCount = %d, want 0", got)
	}
	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}
	if got := limiter.ActiveCount(); got != 2 {
		t.Errorf("after two Acquires, ActiveCount = %d, want 2", got)
	}

	limiter.Release()
	if got := limiter.ActiveCount(); got != 1 {
		t.Errorf("after Release, ActiveCount = %d, want 1", got)
	}
	limiter.Release()
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("after second Release, ActiveCount = %d, want 0", got)
	}
}

func TestIngestLimiter_TimesOutWhenFull(t *testing.T) {
	limiter := NewIngestLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	start := time.Now()
	err := limiter.Acquire(ctx)
	if !errors.Is(err, ErrTooManyUploads) {
		t.Fatalf("Acquire on full limiter = %v, want ErrTooManyUploads", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Acquire returned after %v, expected to wait for maxWait", elapsed)
	}
}

func TestIngestLimiter_ContextCancellation(t *testing.T) {
	limiter := NewIngestLimiter(1, 5*time.Second)
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := limiter.Acquire(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Acquire with cancelled context = %v, want context.Canceled", err)
	}
}

func TestIngestLimiter_TryAcquire(t *testing.T) {
	limiter := NewIngestLimiter(1, time.Second)

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

func TestIngestLimiter_UnblocksWaiter(t *testing.T) {
	limiter := NewIngestLimiter(1, 2*time.Second)
	ctx := context.Background()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- limiter.Acquire(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	limiter.Release()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("waiting Acquire failed: %v", err)
		}
		limiter.Release()
	case <-time.After(time.Second):
		t.Fatal("waiter was not unblocked by Release")
	}
}

func TestIngestLimiter_ConcurrentAccess(t *testing.T) {
	const maxConcurrent = 3
	limiter := NewIngestLimiter(maxConcurrent, 5*time.Second)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		current int
		peak    int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			mu.Lock()
			current++
			peak = max(peak, current)
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			current--
			mu.Unlock()
			limiter.Release()
		}()
	}
	wg.Wait()

	if peak > maxConcurrent {
		t.Errorf("peak concurrency = %d, want <= %d", peak, maxConcurrent)
	}
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount after all done = %d, want 0", got)
	}
}

func TestIngestLimiter_WaitForDrain(t *testing.T) {
	limiter := NewIngestLimiter(2, time.Second)
	ctx := context.Background()
	_ = limiter.Acquire(ctx)
	_ = limiter.Acquire(ctx)

	drained := make(chan error, 1)
	go func() {
		drained <- limiter.WaitForDrain(context.Background())
	}()

	limiter.Release()
	select {
	case <-drained:
		t.Fatal("WaitForDrain returned with one ingest still active")
	case <-time.After(30 * time.Millisecond):
	}

	limiter.Release()
	select {
	case err := <-drained:
		if err != nil {
			t.Errorf("WaitForDrain returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForDrain did not complete after all released")
	}
}

func TestIngestLimiter_WaitForDrain_ContextCancelled(t *testing.T) {
	limiter := NewIngestLimiter(1, time.Second)
	_ = limiter.Acquire(context.Background())
	defer limiter.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.WaitForDrain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForDrain = %v, want context.DeadlineExceeded", err)
	}
}

func TestIngestLimiter_DefaultValues(t *testing.T) {
	limiter := NewIngestLimiter(0, 0)
	if got := limiter.MaxConcurrent(); got != DefaultMaxConcurrentIngests {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrentIngests)
	}
	if limiter.maxWait != DefaultMaxWaitTime {
		t.Errorf("maxWait = %v, want %v", limiter.maxWait, DefaultMaxWaitTime)
	}
}
