// Package effect holds the animation units the engine arbitrates between.
// Every effect is independently clocked: Tick is a no-op until the effect's
// own deadline elapses, then it renders exactly one frame and reschedules.
package effect

import (
	"posterlights/internal/strip"
	"posterlights/internal/timebase"
)

// Effect is one unit of animation.
type Effect interface {
	// Reset restores the effect to its deterministic initial state. Called on
	// every activation so phase never leaks across mode switches.
	Reset()
	// Tick renders one frame if the effect's own cadence has elapsed.
	Tick(now timebase.Ticks)
}

// PlayState is the normalized playback state consumed by the progress bar.
type PlayState string

const (
	Playing PlayState = "playing"
	Paused  PlayState = "paused"
	Stopped PlayState = "stopped"
)

// ParseState maps a wire string to a PlayState, defaulting to Playing the way
// the control surface tolerates malformed input.
func ParseState(s string) PlayState {
	switch PlayState(s) {
	case Playing, Paused, Stopped:
		return PlayState(s)
	default:
		return Playing
	}
}

// Env is the shared render environment handed to every effect: the strip to
// draw on and the engine's global speed knob. Effects are only ever ticked
// from the render loop, so Env reads need no locking.
type Env struct {
	Strip *strip.Strip
	Speed func() float64
	// OnError receives flush failures; nil means drop them.
	OnError func(error)
}

func (e *Env) interval(base int32) int32 {
	sp := 1.0
	if e.Speed != nil {
		sp = e.Speed()
	}
	return timebase.Scaled(base, sp)
}

func (e *Env) flush() {
	if err := e.Strip.Flush(); err != nil && e.OnError != nil {
		e.OnError(err)
	}
}

// cadence is the per-effect next-fire deadline. Unprimed means fire on the
// next tick, which is what Reset leaves behind.
type cadence struct {
	next   timebase.Ticks
	primed bool
}

func (c *cadence) due(now timebase.Ticks) bool {
	return !c.primed || timebase.Elapsed(c.next, now)
}

func (c *cadence) schedule(now timebase.Ticks, interval int32) {
	c.next = timebase.Add(now, interval)
	c.primed = true
}

func (c *cadence) reset() {
	c.next = 0
	c.primed = false
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
