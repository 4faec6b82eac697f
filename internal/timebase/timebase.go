// Package timebase provides the monotonic millisecond tick space shared by
// every timer in the render engine. Ticks live on a uint32 ring, so all
// comparisons go through signed modular difference rather than raw subtraction.
package timebase

import "time"

// Ticks is a monotonic millisecond counter on a 32-bit ring.
type Ticks uint32

// Clock produces the current tick. The engine owns exactly one; tests swap in
// a Fake.
type Clock interface {
	Now() Ticks
}

// Diff returns a-b as a signed difference on the ring. Valid as long as the
// two ticks are within ~24 days of each other.
func Diff(a, b Ticks) int32 {
	return int32(a - b)
}

// Elapsed reports whether now has reached deadline.
func Elapsed(deadline, now Ticks) bool {
	return Diff(now, deadline) >= 0
}

// Add offsets t by delta milliseconds, wrapping on the ring.
func Add(t Ticks, delta int32) Ticks {
	return t + Ticks(delta)
}

// Scaled divides a base interval by the global speed multiplier, clamped to
// [0.2, 3.0], with a 5ms floor so the scheduler can never spin.
func Scaled(base int32, speed float64) int32 {
	if speed < 0.2 {
		speed = 0.2
	}
	if speed > 3.0 {
		speed = 3.0
	}
	v := int32(float64(base) / speed)
	if v < 5 {
		v = 5
	}
	return v
}

// Wall is the real clock, counting milliseconds since construction.
type Wall struct {
	start time.Time
}

func NewWall() *Wall {
	return &Wall{start: time.Now()}
}

func (w *Wall) Now() Ticks {
	return Ticks(time.Since(w.start).Milliseconds())
}

// Fake is a hand-advanced clock for tests.
type Fake struct {
	T Ticks
}

func (f *Fake) Now() Ticks { return f.T }

// Advance moves the fake clock forward by ms.
func (f *Fake) Advance(ms int32) { f.T = Add(f.T, ms) }
