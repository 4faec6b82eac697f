package effect

import (
	"math"

	"posterlights/internal/timebase"
)

// Breath renders one global brightness level following a sine phase
// accumulator; every pixel breathes together.
type Breath struct {
	env   *Env
	p     BreathParams
	phase float64
	cad   cadence
}

func NewBreath(env *Env, p BreathParams) *Breath {
	return &Breath{env: env, p: p}
}

func (b *Breath) Reset() {
	b.phase = 0
	b.cad.reset()
}

func (b *Breath) Tick(now timebase.Ticks) {
	if !b.cad.due(now) {
		return
	}
	b.cad.schedule(now, b.env.interval(b.p.FrameMs))

	w := (math.Sin(b.phase) + 1.0) * 0.5
	level := b.p.MinS + (b.p.MaxS-b.p.MinS)*w
	b.env.Strip.Fill(b.p.Color, level)
	b.env.flush()

	b.phase += b.p.PhaseStep
}
