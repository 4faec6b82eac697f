package effect

import (
	"math"
	"math/rand"

	"posterlights/internal/timebase"
)

// ProgressBar renders playback progress along a configured arc of the strip.
// It is push-driven: the control surface feeds it (fraction, state) updates
// and the engine treats it as inactive once updates go stale, so a dead
// tracker can never leave the lights frozen mid-movie.
type ProgressBar struct {
	env *Env
	p   ProgressParams
	rng *rand.Rand

	arc      []int
	arcStart int
	arcEnd   int

	pct        float64
	state      PlayState
	lastUpdate timebase.Ticks
	updated    bool

	noise []float64
	phase float64
	cad   cadence
}

func NewProgressBar(env *Env, p ProgressParams, rng *rand.Rand) *ProgressBar {
	b := &ProgressBar{
		env:   env,
		p:     p,
		rng:   rng,
		state: Stopped,
		noise: make([]float64, env.Strip.Len()),
	}
	b.SetArc(0, env.Strip.Len()-1)
	return b
}

// SetArc recomputes the arc pixel list for [start..end]. end < start wraps
// around the strip. Indices are clamped into range.
func (b *ProgressBar) SetArc(start, end int) {
	n := b.env.Strip.Len()
	start = clampInt(start, 0, n-1)
	end = clampInt(end, 0, n-1)
	b.arcStart, b.arcEnd = start, end
	b.arc = b.arc[:0]
	if start <= end {
		for i := start; i <= end; i++ {
			b.arc = append(b.arc, i)
		}
		return
	}
	for i := start; i < n; i++ {
		b.arc = append(b.arc, i)
	}
	for i := 0; i <= end; i++ {
		b.arc = append(b.arc, i)
	}
}

func (b *ProgressBar) Arc() (start, end int) { return b.arcStart, b.arcEnd }

func (b *ProgressBar) Reset() {
	b.updated = false
	b.phase = 0
	for i := range b.noise {
		b.noise[i] = 0
	}
	b.cad.reset()
}

// Update records a push. Fraction is clamped into [0,1].
func (b *ProgressBar) Update(now timebase.Ticks, pct float64, state PlayState) {
	b.pct = clamp(pct, 0, 1)
	b.state = state
	b.lastUpdate = now
	b.updated = true
}

// Active reports whether the most recent update is within the timeout window.
// Never-updated bars are inactive.
func (b *ProgressBar) Active(now timebase.Ticks) bool {
	if !b.updated {
		return false
	}
	return !timebase.Elapsed(timebase.Add(b.lastUpdate, b.p.TimeoutMs), now)
}

func (b *ProgressBar) Pct() float64     { return b.pct }
func (b *ProgressBar) State() PlayState { return b.state }

// Mapping maps the current fraction onto the arc: whole filled pixels plus
// the head pixel's fractional remainder.
func (b *ProgressBar) Mapping() (filled int, rem float64) {
	f := b.pct * float64(len(b.arc))
	filled = int(f + 1e-9)
	if filled > len(b.arc) {
		filled = len(b.arc)
	}
	rem = f - float64(filled)
	if rem < 0 {
		rem = 0
	}
	return filled, rem
}

func (b *ProgressBar) Tick(now timebase.Ticks) {
	if b.state == Stopped {
		return
	}
	if !b.cad.due(now) {
		return
	}
	b.cad.schedule(now, b.env.interval(b.p.FrameMs))

	filled, rem := b.Mapping()
	head := b.p.EmptyDim + (b.p.HeadDim-b.p.EmptyDim)*rem

	// Shared slow pulse for the paused look.
	w := (math.Sin(b.phase) + 1.0) * 0.5
	pausedLevel := b.p.FilledDim * (b.p.PauseFloor + (1.0-b.p.PauseFloor)*w)
	b.phase += b.p.PhaseStep

	inArc := make(map[int]bool, len(b.arc))
	for j, px := range b.arc {
		inArc[px] = true
		switch {
		case j < filled:
			if b.state == Paused {
				b.env.Strip.Set(px, b.p.FilledColor, pausedLevel)
				continue
			}
			// Bounded per-pixel noise, far gentler than full twinkle.
			b.noise[px] = clamp(b.noise[px]+(b.rng.Float64()-0.5)*0.02, -b.p.NoiseAmp, b.p.NoiseAmp)
			b.env.Strip.Set(px, b.p.FilledColor, clamp(b.p.FilledDim+b.noise[px], 0, 1))
		case j == filled:
			b.env.Strip.Set(px, b.p.FilledColor, head)
		default:
			b.env.Strip.Set(px, b.p.FilledColor, b.p.EmptyDim)
		}
	}

	// Pixels outside the arc keep a constant dim trim so the strip never
	// shows dead segments.
	for i := 0; i < b.env.Strip.Len(); i++ {
		if !inArc[i] {
			b.env.Strip.Set(i, b.p.TrimColor, b.p.TrimDim)
		}
	}
	b.env.flush()
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
