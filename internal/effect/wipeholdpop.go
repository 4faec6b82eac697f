package effect

import (
	"math/rand"

	"posterlights/internal/timebase"
)

const (
	stageWipeOn = iota
	stageHold
	stageWipeOff
)

// WipeHoldPop loops three stages until the engine's show timer stops it:
// wipe on pixel by pixel, hold with probabilistic single-pixel highlight
// pops, wipe off, repeat.
type WipeHoldPop struct {
	env *Env
	p   WipeHoldPopParams
	rng *rand.Rand

	stage     int
	idx       int
	holdUntil timebase.Ticks
	cad       cadence
}

func NewWipeHoldPop(env *Env, p WipeHoldPopParams, rng *rand.Rand) *WipeHoldPop {
	return &WipeHoldPop{env: env, p: p, rng: rng}
}

func (w *WipeHoldPop) Reset() {
	w.stage = stageWipeOn
	w.idx = 0
	w.holdUntil = 0
	w.cad.reset()
	for i := 0; i < w.env.Strip.Len(); i++ {
		w.env.Strip.Set(i, w.p.Color, 0)
	}
	w.env.flush()
}

func (w *WipeHoldPop) Tick(now timebase.Ticks) {
	if !w.cad.due(now) {
		return
	}
	w.cad.schedule(now, w.env.interval(w.p.StepMs))

	n := w.env.Strip.Len()
	switch w.stage {
	case stageWipeOn:
		if w.idx < n {
			w.env.Strip.Set(w.idx, w.p.Color, 0.85)
			w.env.flush()
			w.idx++
		} else {
			w.stage = stageHold
			w.holdUntil = timebase.Add(now, w.p.HoldMs)
		}

	case stageHold:
		for i := 0; i < n; i++ {
			w.env.Strip.Set(i, w.p.Color, 0.85)
		}
		if w.rng.Float64() < w.p.PopRate {
			w.env.Strip.Set(w.rng.Intn(n), w.p.PopColor, 1.0)
		}
		w.env.flush()
		if timebase.Elapsed(w.holdUntil, now) {
			w.stage = stageWipeOff
			w.idx = 0
		}

	default:
		if w.idx < n {
			w.env.Strip.Set(w.idx, w.p.Color, 0)
			w.env.flush()
			w.idx++
		} else {
			w.stage = stageWipeOn
			w.idx = 0
		}
	}
}
