package effect

import "posterlights/internal/timebase"

// Marquee lights every Nth bulb at full duty and steps the pattern along the
// strip, theater-chase style.
type Marquee struct {
	env    *Env
	p      MarqueeParams
	offset int
	cad    cadence
}

func NewMarquee(env *Env, p MarqueeParams) *Marquee {
	if p.BulbEvery < 1 {
		p.BulbEvery = 1
	}
	return &Marquee{env: env, p: p}
}

func (m *Marquee) Reset() {
	m.offset = 0
	m.cad.reset()
}

func (m *Marquee) Tick(now timebase.Ticks) {
	if !m.cad.due(now) {
		return
	}
	m.cad.schedule(now, m.env.interval(m.p.StepMs))

	n := m.env.Strip.Len()
	for i := 0; i < n; i++ {
		level := m.p.BaseDim
		if (i+m.offset)%m.p.BulbEvery == 0 {
			level = m.p.Duty
		}
		m.env.Strip.Set(i, m.p.Color, level)
	}
	m.env.flush()
	m.offset = (m.offset + 1) % m.p.BulbEvery
}
