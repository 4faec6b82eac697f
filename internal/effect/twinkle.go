package effect

import (
	"math/rand"

	"posterlights/internal/timebase"
)

// Twinkle keeps a slowly drifting base level per pixel plus transient boosts
// that decay geometrically each frame.
type Twinkle struct {
	env *Env
	p   TwinkleParams
	rng *rand.Rand

	base  []float64
	boost []float64
	cad   cadence
}

func NewTwinkle(env *Env, p TwinkleParams, rng *rand.Rand) *Twinkle {
	t := &Twinkle{
		env:   env,
		p:     p,
		rng:   rng,
		base:  make([]float64, env.Strip.Len()),
		boost: make([]float64, env.Strip.Len()),
	}
	t.Reset()
	return t
}

func (t *Twinkle) Reset() {
	for i := range t.base {
		t.base[i] = t.p.BaseMin + t.rng.Float64()*(t.p.BaseMax-t.p.BaseMin)
		t.boost[i] = 0
	}
	t.cad.reset()
}

func (t *Twinkle) Tick(now timebase.Ticks) {
	if !t.cad.due(now) {
		return
	}
	t.cad.schedule(now, t.env.interval(t.p.FrameMs))

	if t.rng.Float64() < t.p.Chance {
		j := t.rng.Intn(len(t.boost))
		b := t.p.BoostMin + t.rng.Float64()*(t.p.BoostMax-t.p.BoostMin)
		if b > t.boost[j] {
			t.boost[j] = b
		}
	}

	for i := range t.base {
		t.base[i] = clamp(t.base[i]+(t.rng.Float64()-0.5)*t.p.Drift, t.p.BaseMin, t.p.BaseMax)
		t.boost[i] *= t.p.Decay
		if t.boost[i] < 0.01 {
			t.boost[i] = 0
		}
		t.env.Strip.Set(i, t.p.Color, clamp(t.base[i]+t.boost[i], 0, 1))
	}
	t.env.flush()
}
