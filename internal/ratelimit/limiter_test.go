package ratelimit

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstCallDoesNotWait(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(DefaultInterval, clock)

	ran := false
	err := l.Do(context.Background(), func() error { ran = true; return nil })

	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, clock.Now(), l.LastCall())
}

func TestSecondCallWaitsForRemainder(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(DefaultInterval, clock)
	require.NoError(t, l.Do(context.Background(), func() error { return nil }))

	clock.Advance(500 * time.Millisecond)

	var ran atomic.Bool
	done := make(chan error, 1)
	go func() {
		done <- l.Do(context.Background(), func() error { ran.Store(true); return nil })
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	assert.False(t, ran.Load())

	clock.Advance(1499 * time.Millisecond)
	assert.False(t, ran.Load())

	clock.Advance(time.Millisecond)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("call did not run after the interval elapsed")
	}
	assert.True(t, ran.Load())
}

func TestNoWaitAfterIntervalElapsed(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(DefaultInterval, clock)
	require.NoError(t, l.Do(context.Background(), func() error { return nil }))

	clock.Advance(3 * time.Second)

	ran := false
	require.NoError(t, l.Do(context.Background(), func() error { ran = true; return nil }))
	assert.True(t, ran)
}

func TestTimestampRecordedAfterAttemptCompletes(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(DefaultInterval, clock)
	start := clock.Now()

	boom := errors.New("boom")
	err := l.Do(context.Background(), func() error {
		clock.Advance(10 * time.Second)
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, start.Add(10*time.Second), l.LastCall())
}

func TestCanceledWaitSkipsCall(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(DefaultInterval, clock)
	require.NoError(t, l.Do(context.Background(), func() error { return nil }))
	last := l.LastCall()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	err := l.Do(ctx, func() error { ran = true; return nil })

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
	assert.Equal(t, last, l.LastCall())
}

func TestAttemptsDoNotOverlap(t *testing.T) {
	l := New(0, nil)

	var active, maxActive atomic.Int32
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			_ = l.Do(context.Background(), func() error {
				n := active.Add(1)
				for {
					m := maxActive.Load()
					if n <= m || maxActive.CompareAndSwap(m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				active.Add(-1)
				return nil
			})
			done <- struct{}{}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	assert.Equal(t, int32(1), maxActive.Load())
}
