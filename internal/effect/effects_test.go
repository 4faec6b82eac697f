package effect_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posterlights/internal/effect"
	"posterlights/internal/strip"
	"posterlights/internal/timebase"
)

func newEnv(pixels int, speed float64) (*effect.Env, *strip.Sim) {
	sim := strip.NewSim()
	s := strip.New(pixels, sim, func() float64 { return 1.0 })
	return &effect.Env{Strip: s, Speed: func() float64 { return speed }}, sim
}

func TestTwinkleHonorsOwnCadence(t *testing.T) {
	env, sim := newEnv(8, 1.0)
	p := effect.DefaultParams().Twinkle
	tw := effect.NewTwinkle(env, p, rand.New(rand.NewSource(7)))
	clk := &timebase.Fake{}

	tw.Tick(clk.Now())
	require.Equal(t, 1, sim.Frames())

	// Same tick again: deadline not elapsed, no frame.
	clk.Advance(1)
	tw.Tick(clk.Now())
	assert.Equal(t, 1, sim.Frames())

	clk.Advance(p.FrameMs)
	tw.Tick(clk.Now())
	assert.Equal(t, 2, sim.Frames())
}

func TestTwinkleResetRestoresBaseRange(t *testing.T) {
	env, sim := newEnv(8, 1.0)
	p := effect.DefaultParams().Twinkle
	tw := effect.NewTwinkle(env, p, rand.New(rand.NewSource(7)))
	tw.Tick(0)

	loByte := byte(float64(p.Color.R)*p.BaseMin + 0.5)
	for i := 0; i < 8; i++ {
		r, _, _ := sim.Pixel(i)
		assert.GreaterOrEqual(t, r, loByte-1, "pixel %d", i)
	}
}

func TestBreathFirstFrameIsMidpoint(t *testing.T) {
	env, sim := newEnv(4, 1.0)
	p := effect.DefaultParams().Breath
	b := effect.NewBreath(env, p)
	b.Reset()
	b.Tick(0)

	// sin(0) = 0 so the first frame sits at the midpoint of [min,max].
	level := p.MinS + (p.MaxS-p.MinS)*0.5
	want := byte(float64(p.Color.R)*level + 0.5)
	for i := 0; i < 4; i++ {
		r, _, _ := sim.Pixel(i)
		assert.Equal(t, want, r, "pixel %d", i)
	}
}

func TestSpeedScalesCadence(t *testing.T) {
	// At speed 2 the marquee steps twice as fast.
	env, sim := newEnv(6, 2.0)
	p := effect.DefaultParams().Marquee
	m := effect.NewMarquee(env, p)
	m.Reset()
	clk := &timebase.Fake{}

	m.Tick(clk.Now())
	require.Equal(t, 1, sim.Frames())

	clk.Advance(p.StepMs / 2)
	m.Tick(clk.Now())
	assert.Equal(t, 2, sim.Frames())
}

func TestWipeOnHoldsFinalFrame(t *testing.T) {
	env, sim := newEnv(4, 1.0)
	p := effect.DefaultParams().Wipe
	w := effect.NewWipeOn(env, p)
	w.Reset() // blanks + flushes
	require.Equal(t, 1, sim.Frames())

	clk := &timebase.Fake{}
	for i := 0; i < 4; i++ {
		clk.Advance(p.StepMs)
		w.Tick(clk.Now())
	}
	require.Equal(t, 5, sim.Frames())

	want := byte(float64(p.Color.R)*p.Level + 0.5)
	for i := 0; i < 4; i++ {
		r, _, _ := sim.Pixel(i)
		assert.Equal(t, want, r, "pixel %d", i)
	}

	// Sweep complete: further ticks hold the final frame without rewriting.
	clk.Advance(p.StepMs)
	w.Tick(clk.Now())
	clk.Advance(p.StepMs)
	w.Tick(clk.Now())
	assert.Equal(t, 5, sim.Frames())
}

func TestWipeOffClearsForward(t *testing.T) {
	env, sim := newEnv(3, 1.0)
	p := effect.DefaultParams().Wipe
	w := effect.NewWipeOff(env, p)
	w.Reset()

	lit := byte(float64(p.Color.R)*p.Level + 0.5)
	r, _, _ := sim.Pixel(0)
	require.Equal(t, lit, r, "reset must pre-light the strip")

	clk := &timebase.Fake{}
	clk.Advance(p.StepMs)
	w.Tick(clk.Now())
	// Reverse sweep clears the last pixel first.
	r, _, _ = sim.Pixel(2)
	assert.Equal(t, byte(0), r)
	r, _, _ = sim.Pixel(0)
	assert.Equal(t, lit, r)
}

func TestWipeHoldPopReachesHold(t *testing.T) {
	env, sim := newEnv(5, 1.0)
	p := effect.DefaultParams().WipeHoldPop
	w := effect.NewWipeHoldPop(env, p, rand.New(rand.NewSource(3)))
	w.Reset()

	clk := &timebase.Fake{}
	// Wipe on covers all 5 pixels, then one hold frame.
	for i := 0; i < 7; i++ {
		clk.Advance(p.StepMs)
		w.Tick(clk.Now())
	}
	lit := byte(float64(p.Color.R)*0.85 + 0.5)
	pop := byte(float64(p.PopColor.R) + 0.5)
	for i := 0; i < 5; i++ {
		r, _, _ := sim.Pixel(i)
		if r != lit && r != pop {
			t.Fatalf("pixel %d = %d, want lit (%d) or pop (%d)", i, r, lit, pop)
		}
	}
	assert.Greater(t, sim.Frames(), 5)
}
