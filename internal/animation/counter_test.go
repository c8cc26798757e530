package animation_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/UnknownOlympus/hestia/internal/animation"
	"github.com/UnknownOlympus/hestia/internal/dom"
	"github.com/UnknownOlympus/hestia/internal/eventloop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFormat(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "0", animation.Format(0))
	assert.Equal(t, "999", animation.Format(999))
	assert.Equal(t, "1,500", animation.Format(1500))
	assert.Equal(t, "1,234,567", animation.Format(1234567))
}

func TestIncrement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		target   int
		duration time.Duration
		step     time.Duration
		want     int
	}{
		{"page default", 1500, 2 * time.Second, 10 * time.Millisecond, 8},
		{"small target", 10, 2 * time.Second, 10 * time.Millisecond, 1},
		{"exact division", 400, 2 * time.Second, 10 * time.Millisecond, 2},
		{"duration shorter than step", 50, time.Millisecond, 10 * time.Millisecond, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, animation.Increment(tt.target, tt.duration, tt.step))
		})
	}
}

type recorder struct {
	mu     sync.Mutex
	frames []string
}

func (r *recorder) render(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, s)
}

func (r *recorder) Frames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.frames...)
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

func TestCountUp_ReachesTarget(t *testing.T) {
	loop := startLoop(t)
	rec := &recorder{}

	var counter *animation.Counter
	require.NoError(t, loop.Do(func() {
		counter = animation.CountUp(t.Context(), loop, 1500, 20*time.Millisecond, time.Millisecond, rec.render)
	}))

	select {
	case <-counter.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("counter did not finish")
	}

	frames := rec.Frames()
	require.NotEmpty(t, frames)
	assert.Equal(t, "75", frames[0])
	assert.Equal(t, "1,500", frames[len(frames)-1])
	assert.Len(t, frames, 20)
	require.NoError(t, loop.Do(func() { assert.Equal(t, 1500, counter.Value()) }))
}

func TestCountUp_Cancelled(t *testing.T) {
	loop := startLoop(t)
	rec := &recorder{}
	ctx, cancel := context.WithCancel(t.Context())

	var counter *animation.Counter
	require.NoError(t, loop.Do(func() {
		counter = animation.CountUp(ctx, loop, 1000, time.Hour, 5*time.Millisecond, rec.render)
	}))

	require.Eventually(t, func() bool { return len(rec.Frames()) > 0 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-counter.Done():
	case <-time.After(time.Second):
		t.Fatal("counter ignored cancellation")
	}

	frames := rec.Frames()
	assert.NotEqual(t, "1,000", frames[len(frames)-1])
}

func TestCountUp_Stop(t *testing.T) {
	loop := startLoop(t)
	rec := &recorder{}

	var counter *animation.Counter
	require.NoError(t, loop.Do(func() {
		counter = animation.CountUp(t.Context(), loop, 1000, time.Hour, time.Hour, rec.render)
		counter.Stop()
	}))

	<-counter.Done()
	assert.Empty(t, rec.Frames())
}

func TestStartCounters(t *testing.T) {
	loop := startLoop(t)
	doc, err := dom.ParseString(`<span class="counter" data-target="1500">0</span>` +
		`<span class="counter" data-target="10">0</span>` +
		`<span class="counter" data-target="many">0</span><span class="counter">0</span>`)
	require.NoError(t, err)

	var counters []*animation.Counter
	require.NoError(t, loop.Do(func() {
		counters = animation.StartCounters(t.Context(), loop, doc, 10*time.Millisecond, time.Millisecond)
	}))
	require.Len(t, counters, 2)

	for _, counter := range counters {
		select {
		case <-counter.Done():
		case <-time.After(2 * time.Second):
			t.Fatal("counter did not finish")
		}
	}

	require.NoError(t, loop.Do(func() {
		spans := doc.FindByClass(animation.CounterClass)
		assert.Equal(t, "1,500", spans[0].Text())
		assert.Equal(t, "10", spans[1].Text())
		assert.Equal(t, "0", spans[2].Text())
	}))
}
