// Package workerpool bounds how many units of work run at once. Callers
// bring their own goroutines; the pool only hands out slots.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrPoolClosed is returned by Do once Close has been called.
var ErrPoolClosed = errors.New("worker pool is closed")

// Pool is a fixed number of execution slots backed by a weighted semaphore.
type Pool struct {
	sem    *semaphore.Weighted
	size   int64
	inUse  atomic.Int64
	closed atomic.Bool
}

// New creates a pool with size slots.
func New(size int) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("worker pool size must be at least 1, got %d", size)
	}
	return &Pool{
		sem:  semaphore.NewWeighted(int64(size)),
		size: int64(size),
	}, nil
}

// Do blocks until a slot is free, then runs fn in the calling goroutine while
// holding it. It returns ctx.Err() if ctx ends first and ErrPoolClosed if
// the pool is closed; otherwise it returns fn's error.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("waiting for worker slot: %w", err)
	}
	defer p.sem.Release(1)

	if p.closed.Load() {
		return ErrPoolClosed
	}

	p.inUse.Add(1)
	defer p.inUse.Add(-1)
	return fn(ctx)
}

// Size returns the number of slots.
func (p *Pool) Size() int {
	return int(p.size)
}

// InUse returns the number of slots currently held.
func (p *Pool) InUse() int {
	return int(p.inUse.Load())
}

// Closed reports whether Close has been called.
func (p *Pool) Closed() bool {
	return p.closed.Load()
}

// Close stops the pool from accepting work and waits for running work to
// release its slots. Closing twice is a no-op.
func (p *Pool) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	// Acquiring every slot waits out in-flight work. Background context: this
	// cannot fail.
	_ = p.sem.Acquire(context.Background(), p.size)
	p.sem.Release(p.size)
}
