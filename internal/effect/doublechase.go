package effect

import "posterlights/internal/timebase"

// DoubleChase runs two fading comets in opposite directions around the strip.
type DoubleChase struct {
	env  *Env
	p    DoubleChaseParams
	a, b int
	cad  cadence
}

func NewDoubleChase(env *Env, p DoubleChaseParams) *DoubleChase {
	if p.Tail < 0 {
		p.Tail = 0
	}
	d := &DoubleChase{env: env, p: p}
	d.Reset()
	return d
}

func (d *DoubleChase) Reset() {
	d.a = 0
	d.b = d.env.Strip.Len() - 1
	d.cad.reset()
}

func (d *DoubleChase) Tick(now timebase.Ticks) {
	if !d.cad.due(now) {
		return
	}
	d.cad.schedule(now, d.env.interval(d.p.StepMs))

	n := d.env.Strip.Len()
	for i := 0; i < n; i++ {
		d.env.Strip.Set(i, d.p.Color, d.p.Bg)
	}
	for t := 0; t <= d.p.Tail; t++ {
		fade := 1.0 - float64(t)/float64(d.p.Tail+1)
		d.env.Strip.Set(mod(d.a-t, n), d.p.Color, 0.95*fade)
		d.env.Strip.Set(mod(d.b+t, n), d.p.Color, 0.95*fade)
	}
	d.env.flush()

	d.a = mod(d.a+1, n)
	d.b = mod(d.b-1, n)
}

// mod is a floored modulus; Go's % keeps the dividend's sign.
func mod(a, n int) int {
	return ((a % n) + n) % n
}
