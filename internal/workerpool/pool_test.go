package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsEmptyPool(t *testing.T) {
	_, err := New(0)
	require.Error(t, err)

	p, err := New(3)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Size())
	assert.Equal(t, 0, p.InUse())
}

func TestDo_ReturnsWorkError(t *testing.T) {
	p, err := New(1)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = p.Do(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestDo_BoundsConcurrency(t *testing.T) {
	const size = 3
	p, err := New(size)
	require.NoError(t, err)

	var current, peak atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := p.Do(context.Background(), func(context.Context) error {
				n := current.Add(1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				current.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int64(size))
	assert.Equal(t, 0, p.InUse())
}

func TestDo_HonoursContextWhileWaiting(t *testing.T) {
	p, err := New(1)
	require.NoError(t, err)

	release := make(chan struct{})
	holding := make(chan struct{})
	go func() {
		_ = p.Do(context.Background(), func(context.Context) error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = p.Do(ctx, func(context.Context) error {
		t.Error("work must not run without a slot")
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(release)
}

func TestClose(t *testing.T) {
	p, err := New(2)
	require.NoError(t, err)

	started := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		_ = p.Do(context.Background(), func(context.Context) error {
			close(started)
			time.Sleep(20 * time.Millisecond)
			close(finished)
			return nil
		})
	}()
	<-started

	assert.False(t, p.Closed())
	p.Close()
	assert.True(t, p.Closed())
	select {
	case <-finished:
	default:
		t.Fatal("Close returned before in-flight work finished")
	}

	err = p.Do(context.Background(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrPoolClosed)
	p.Close()
}
