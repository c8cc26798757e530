package eventloop_test

import (
	"context"
	"testing"
	"time"

	"github.com/UnknownOlympus/hestia/internal/eventloop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startLoop(t *testing.T) *eventloop.Loop {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	loop := eventloop.New(16)
	go loop.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-loop.Done()
	})

	return loop
}

func TestLoop_RunsInPostOrder(t *testing.T) {
	loop := startLoop(t)

	var got []int
	for i := range 5 {
		require.True(t, loop.Post(func() { got = append(got, i) }))
	}
	require.NoError(t, loop.Do(func() {}))

	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestLoop_AfterFunc(t *testing.T) {
	loop := startLoop(t)

	fired := make(chan struct{})
	loop.AfterFunc(5*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestLoop_TimerStop(t *testing.T) {
	loop := startLoop(t)

	var fired bool
	var timer eventloop.Timer
	require.NoError(t, loop.Do(func() {
		timer = loop.AfterFunc(10*time.Millisecond, func() { fired = true })
	}))
	require.NoError(t, loop.Do(func() { assert.True(t, timer.Stop()) }))

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, loop.Do(func() {}))
	assert.False(t, fired)
	assert.False(t, timer.Stop(), "second stop reports nothing was cancelled")
}

func TestLoop_DoAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	loop := eventloop.New(1)
	go loop.Run(ctx)
	cancel()
	<-loop.Done()

	require.ErrorIs(t, loop.Do(func() {}), eventloop.ErrStopped)
	assert.False(t, loop.Post(func() {}))
}
