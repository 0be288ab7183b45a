package core

// ingest_limiter.go bounds the number of ingests processed at once.
//
// A weighted semaphore holds one unit per running ingest. When every slot is
// taken, new ingests wait up to maxWait before failing with ErrTooManyUploads.
// The limiter never holds dataset state, so ingests stay independent.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTooManyUploads is returned when all ingest slots are occupied and the
// wait timeout expires. Clients should retry after a short delay.
var ErrTooManyUploads = errors.New("too many concurrent uploads, please try again later")

// DefaultMaxConcurrentIngests is the default limit for parallel ingests.
const DefaultMaxConcurrentIngests = 5

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// IngestLimiter controls concurrent ingest processing.
type IngestLimiter struct {
	sem     *semaphore.Weighted
	max     int64
	maxWait time.Duration
	active  atomic.Int64
}

// NewIngestLimiter creates a limiter that allows at most maxConcurrent
// simultaneous ingests. Non-positive arguments select the defaults.
func NewIngestLimiter(maxConcurrent int, maxWait time.Duration) *IngestLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentIngests
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &IngestLimiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		max:     int64(maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire waits for a slot. It returns ErrTooManyUploads when maxWait
// expires and ctx.Err() when ctx is done first.
// The caller MUST call Release() when the ingest completes (use defer).
func (l *IngestLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyUploads
	}
	l.active.Add(1)
	return nil
}

// TryAcquire takes a slot without blocking and reports whether it succeeded.
func (l *IngestLimiter) TryAcquire() bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	l.active.Add(1)
	return true
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *IngestLimiter) Release() {
	l.active.Add(-1)
	l.sem.Release(1)
}

// ActiveCount returns the number of running ingests.
func (l *IngestLimiter) ActiveCount() int {
	return int(l.active.Load())
}

// MaxConcurrent returns the maximum allowed concurrent ingests.
func (l *IngestLimiter) MaxConcurrent() int {
	return int(l.max)
}

// WaitForDrain blocks until every running ingest has released its slot or
// ctx is done. New ingests are held off while it waits.
func (l *IngestLimiter) WaitForDrain(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, l.max); err != nil {
		return err
	}
	l.sem.Release(l.max)
	return nil
}
