package effect

import "posterlights/internal/timebase"

// Wipe is a single-run directional wipe used for discrete playback
// transitions: it sweeps once across the strip and then holds its final frame
// until the engine's show timer expires it.
type Wipe struct {
	env *Env
	p   WipeParams
	// On paints the strip lit; otherwise the sweep clears it.
	on      bool
	forward bool

	idx  int
	done bool
	cad  cadence
}

func NewWipeOn(env *Env, p WipeParams) *Wipe {
	return &Wipe{env: env, p: p, on: true, forward: true}
}

func NewWipeOff(env *Env, p WipeParams) *Wipe {
	return &Wipe{env: env, p: p, on: false, forward: false}
}

func (w *Wipe) Reset() {
	w.idx = 0
	w.done = false
	w.cad.reset()
	// The clearing variant starts from a fully lit strip so there is
	// something to sweep away.
	start := 0.0
	if !w.on {
		start = w.p.Level
	}
	w.env.Strip.Fill(w.p.Color, start)
	w.env.flush()
}

func (w *Wipe) Tick(now timebase.Ticks) {
	if w.done || !w.cad.due(now) {
		return
	}
	w.cad.schedule(now, w.env.interval(w.p.StepMs))

	n := w.env.Strip.Len()
	if w.idx >= n {
		w.done = true
		return
	}
	i := w.idx
	if !w.forward {
		i = n - 1 - w.idx
	}
	level := w.p.Level
	if !w.on {
		level = 0
	}
	w.env.Strip.Set(i, w.p.Color, level)
	w.env.flush()
	w.idx++
}
