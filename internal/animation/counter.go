// Package animation counts numbers up to their target on the page.
package animation

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/UnknownOlympus/hestia/internal/dom"
	"github.com/UnknownOlympus/hestia/internal/eventloop"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Defaults of a page counter.
const (
	DefaultDuration = 2 * time.Second
	DefaultStep     = 10 * time.Millisecond
)

// CounterClass marks elements animated by StartCounters; their data-target
// attribute holds the final value.
const (
	CounterClass = "counter"
	TargetAttr   = "data-target"
)

var printer = message.NewPrinter(language.English)

// Format renders n with thousands separators.
func Format(n int) string {
	return printer.Sprintf("%d", n)
}

// Increment is how much the counter grows per tick so that it reaches target
// within duration. It is at least 1.
func Increment(target int, duration, step time.Duration) int {
	if step <= 0 || duration <= step {
		return max(target, 1)
	}
	ticks := int(duration / step)

	return max((target+ticks-1)/ticks, 1)
}

// Counter is a running count-up animation.
type Counter struct {
	ctx       context.Context
	loop      eventloop.Scheduler
	target    int
	step      time.Duration
	increment int
	render    func(string)

	count int
	timer eventloop.Timer
	done  chan struct{}
	once  sync.Once
}

// CountUp renders the values from zero to target on loop, one tick per step.
// The last value rendered is exactly target. Cancelling ctx or calling Stop
// ends the animation early. Must be called from the loop.
func CountUp(
	ctx context.Context,
	loop eventloop.Scheduler,
	target int,
	duration, step time.Duration,
	render func(string),
) *Counter {
	c := &Counter{
		ctx:       ctx,
		loop:      loop,
		target:    target,
		step:      step,
		increment: Increment(target, duration, step),
		render:    render,
		done:      make(chan struct{}),
	}
	if target <= 0 {
		render(Format(max(target, 0)))
		c.finish()
		return c
	}
	c.timer = loop.AfterFunc(step, c.tick)

	return c
}

// Done is closed when the animation finished or was stopped.
func (c *Counter) Done() <-chan struct{} {
	return c.done
}

// Value returns the last rendered value.
func (c *Counter) Value() int {
	return c.count
}

// Stop cancels the remaining ticks. Must be called from the loop.
func (c *Counter) Stop() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.finish()
}

func (c *Counter) tick() {
	c.timer = nil
	if c.ctx.Err() != nil {
		c.finish()
		return
	}

	c.count += c.increment
	if c.count >= c.target {
		c.count = c.target
		c.render(Format(c.target))
		c.finish()
		return
	}

	c.render(Format(c.count))
	c.timer = c.loop.AfterFunc(c.step, c.tick)
}

func (c *Counter) finish() {
	c.once.Do(func() { close(c.done) })
}

// StartCounters animates every element of doc carrying CounterClass with a
// numeric data-target. Must be called from the loop.
func StartCounters(ctx context.Context, loop eventloop.Scheduler, doc *dom.Document, duration, step time.Duration) []*Counter {
	var counters []*Counter
	for _, el := range doc.FindByClass(CounterClass) {
		raw, ok := el.Attr(TargetAttr)
		if !ok {
			continue
		}
		target, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		counters = append(counters, CountUp(ctx, loop, target, duration, step, el.SetText))
	}

	return counters
}
