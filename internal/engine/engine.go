// Package engine owns the render engine state and the per-frame arbitration
// between idle ambience, timed show overlays and the live progress bar.
package engine

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"posterlights/internal/effect"
	"posterlights/internal/strip"
	"posterlights/internal/timebase"
)

// Options wires an Engine. Driver and Pixels describe the strip; everything
// else has a usable default. Brightness defaults only when negative, so a
// configured 0 is honored as fully dark; Speed has no valid zero and
// defaults from there.
type Options struct {
	Clock  timebase.Clock
	Driver strip.Driver
	Pixels int
	Params effect.Params
	Events map[string]EventSpec
	Rand   *rand.Rand
	Logger zerolog.Logger

	Brightness float64
	Speed      float64
}

type showState struct {
	active bool
	name   string
	eff    effect.Effect
	until  timebase.Ticks
}

type demoState struct {
	enabled    bool
	intervalS  int
	lastSwitch timebase.Ticks
	primed     bool
	idx        int
}

// Engine is the single owner of all mutable visual state. Every mutation and
// every tick happens under one mutex, so multi-field updates are atomic with
// respect to the render pass.
type Engine struct {
	mu    sync.Mutex
	clock timebase.Clock
	strip *strip.Strip
	env   *effect.Env
	rng   *rand.Rand
	log   zerolog.Logger

	enabled    bool
	brightness float64
	speed      float64

	idles     map[string]effect.Effect
	idleOrder []string
	idleName  string

	shows     map[string]effect.Effect
	showOrder []string
	show      showState

	demo demoState

	progress     *effect.ProgressBar
	progressMode bool

	events   map[string]EventSpec
	rotation map[string]int
}

func New(o Options) *Engine {
	if o.Clock == nil {
		o.Clock = timebase.NewWall()
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(1))
	}
	if o.Events == nil {
		o.Events = DefaultEvents()
	}
	if o.Brightness < 0 {
		o.Brightness = 0.6
	}
	if o.Speed <= 0 {
		o.Speed = 1.0
	}

	e := &Engine{
		clock:      o.Clock,
		log:        o.Logger,
		enabled:    true,
		brightness: clamp(o.Brightness, 0, 1),
		speed:      clamp(o.Speed, 0.2, 3.0),
		events:     o.Events,
		rotation:   map[string]int{},
	}
	e.rng = o.Rand
	e.strip = strip.New(o.Pixels, o.Driver, func() float64 { return e.brightness })

	env := &effect.Env{
		Strip: e.strip,
		Speed: func() float64 { return e.speed },
		OnError: func(err error) {
			e.log.Warn().Err(err).Msg("strip write failed")
		},
	}
	e.env = env
	e.buildEffectsLocked(o.Params)

	e.idleName = "twinkle"
	e.idles[e.idleName].Reset()
	return e
}

func (e *Engine) buildEffectsLocked(p effect.Params) {
	e.idles = map[string]effect.Effect{
		"twinkle": effect.NewTwinkle(e.env, p.Twinkle, e.rng),
		"breath":  effect.NewBreath(e.env, p.Breath),
	}
	e.idleOrder = []string{"twinkle", "breath"}
	e.shows = map[string]effect.Effect{
		"wipe":     effect.NewWipeHoldPop(e.env, p.WipeHoldPop, e.rng),
		"double":   effect.NewDoubleChase(e.env, p.DoubleChase),
		"marquee":  effect.NewMarquee(e.env, p.Marquee),
		"wipe_on":  effect.NewWipeOn(e.env, p.Wipe),
		"wipe_off": effect.NewWipeOff(e.env, p.Wipe),
	}
	e.showOrder = []string{"wipe", "double", "marquee", "wipe_on", "wipe_off"}
	e.progress = effect.NewProgressBar(e.env, p.Progress, e.rng)
}

// SetParams rebuilds every effect with new tuning, used by config hot reload.
// A running show is dropped since its effect instance is replaced; idle and
// progress resume on the next tick.
func (e *Engine) SetParams(p effect.Params) {
	e.mu.Lock()
	defer e.mu.Unlock()
	start, end := e.progress.Arc()
	pct, state := e.progress.Pct(), e.progress.State()
	last := e.progress
	e.buildEffectsLocked(p)
	e.stopShowLocked()
	e.progress.SetArc(start, end)
	if last.Active(e.clock.Now()) {
		e.progress.Update(e.clock.Now(), pct, state)
	}
	e.idles[e.idleName].Reset()
}

// Result is the outcome of a control operation.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Show    string `json:"show,omitempty"`
	Seconds int    `json:"seconds,omitempty"`
	Event   string `json:"event,omitempty"`
}

func (e *Engine) progressActiveLocked(now timebase.Ticks) bool {
	return e.progressMode && e.progress.Active(now) && e.progress.State() != effect.Stopped
}

// Tick runs one arbitration pass: active progress beats an active show beats
// demo-cycled idle beats plain idle. Level-triggered, re-evaluated every pass.
func (e *Engine) Tick(now timebase.Ticks) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.enabled {
		return
	}

	if e.progressActiveLocked(now) {
		// Progress never continues silently behind an overlay.
		if e.show.active {
			e.stopShowLocked()
		}
		e.progress.Tick(now)
		return
	}

	if e.show.active {
		e.show.eff.Tick(now)
		if timebase.Elapsed(e.show.until, now) {
			e.stopShowLocked()
		}
		return
	}

	if e.demo.enabled {
		if !e.demo.primed {
			e.demo.lastSwitch = now
			e.demo.primed = true
		}
		if timebase.Elapsed(timebase.Add(e.demo.lastSwitch, int32(e.demo.intervalS)*1000), now) {
			e.demo.idx = (e.demo.idx + 1) % len(e.idleOrder)
			e.setIdleLocked(e.idleOrder[e.demo.idx])
			e.demo.lastSwitch = now
		}
	}

	e.idles[e.idleName].Tick(now)
}

func (e *Engine) setIdleLocked(name string) bool {
	eff, ok := e.idles[name]
	if !ok {
		return false
	}
	e.idleName = name
	eff.Reset()
	return true
}

func (e *Engine) stopShowLocked() {
	e.show = showState{}
}

// SetEnabled toggles global output. Disabling blanks the strip.
func (e *Engine) SetEnabled(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = on
	if !on {
		if err := e.strip.Blank(); err != nil {
			e.log.Warn().Err(err).Msg("blank failed")
		}
	}
}

// SetIdle selects the named idle effect, resetting it.
func (e *Engine) SetIdle(name string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.setIdleLocked(name) {
		return Result{OK: false, Message: "unknown idle mode"}
	}
	return Result{OK: true, Message: "OK"}
}

// StartShow schedules a timed show overlay. Rejected without mutation while
// active progress holds.
func (e *Engine) StartShow(name string, seconds int) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startShowLocked(name, seconds)
}

func (e *Engine) startShowLocked(name string, seconds int) Result {
	now := e.clock.Now()
	if e.progressActiveLocked(now) {
		return Result{OK: false, Message: "ignored, progress active"}
	}
	eff, ok := e.shows[name]
	if !ok {
		return Result{OK: false, Message: "unknown show"}
	}
	seconds = clampInt(seconds, 1, 60)
	eff.Reset()
	e.show = showState{
		active: true,
		name:   name,
		eff:    eff,
		until:  timebase.Add(now, int32(seconds)*1000),
	}
	return Result{OK: true, Message: "OK", Show: name, Seconds: seconds}
}

// StopShow clears any running show.
func (e *Engine) StopShow() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopShowLocked()
}

// SetDemo toggles idle-rotation demo mode. The interval clamps to [5,120]s.
func (e *Engine) SetDemo(on bool, intervalS int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !on {
		e.demo.enabled = false
		return e.demo.intervalS
	}
	e.demo.enabled = true
	e.demo.intervalS = clampInt(intervalS, 5, 120)
	e.demo.lastSwitch = e.clock.Now()
	e.demo.primed = true
	for i, n := range e.idleOrder {
		if n == e.idleName {
			e.demo.idx = i
		}
	}
	return e.demo.intervalS
}

// SetConfig applies global brightness and speed, clamped. Returns the values
// actually stored.
func (e *Engine) SetConfig(brightness, speed float64) (float64, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.brightness = clamp(brightness, 0, 1)
	e.speed = clamp(speed, 0.2, 3.0)
	return e.brightness, e.speed
}

// SetProgressMode gates whether active progress may preempt shows and idle.
func (e *Engine) SetProgressMode(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.progressMode = on
}

// SetArc reconfigures the progress arc pixel range.
func (e *Engine) SetArc(start, end int) (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.progress.SetArc(start, end)
	return e.progress.Arc()
}

// PushProgress records a progress update. pct < 0 keeps the current fraction.
func (e *Engine) PushProgress(pct float64, state effect.PlayState) (float64, effect.PlayState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock.Now()
	switch {
	case state == effect.Stopped:
		pct = 0
	case pct < 0:
		pct = e.progress.Pct()
	}
	e.progress.Update(now, pct, state)
	return e.progress.Pct(), e.progress.State()
}

// Brightness returns the current global brightness.
func (e *Engine) Brightness() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.brightness
}

// Speed returns the current global speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// Frame copies the current strip frame and its id for broadcasting.
func (e *Engine) Frame() ([]byte, uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.strip.Snapshot(), e.strip.FrameID()
}

// Blank turns all pixels off; used on shutdown.
func (e *Engine) Blank() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.strip.Blank()
}

// Status is the full engine snapshot plus capability lists.
type Status struct {
	Enabled             bool           `json:"enabled"`
	Count               int            `json:"count"`
	Brightness          float64        `json:"brightness"`
	Speed               float64        `json:"speed"`
	Idle                string         `json:"idle"`
	ShowActive          bool           `json:"show_active"`
	Show                string         `json:"show"`
	ShowMsRemaining     int32          `json:"show_ms_remaining"`
	Demo                bool           `json:"demo"`
	DemoIntervalS       int            `json:"demo_interval_s"`
	ProgressModeEnabled bool           `json:"progress_mode_enabled"`
	ProgressActive      bool           `json:"progress_active"`
	ProgressPct         float64        `json:"progress_pct"`
	ProgressState       string         `json:"progress_state"`
	ArcStart            int            `json:"arc_start"`
	ArcEnd              int            `json:"arc_end"`
	IdleModes           []string       `json:"idle_modes"`
	ShowModes           []string       `json:"show_modes"`
	Events              []string       `json:"events"`
	EventSeconds        map[string]int `json:"event_seconds"`
}

// Status assembles the current snapshot.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock.Now()

	var remaining int32
	if e.show.active {
		if d := timebase.Diff(e.show.until, now); d > 0 {
			remaining = d
		}
	}

	events := lo.Keys(e.events)
	sort.Strings(events)
	seconds := lo.MapValues(e.events, func(s EventSpec, _ string) int { return s.Seconds })
	arcStart, arcEnd := e.progress.Arc()

	return Status{
		Enabled:             e.enabled,
		Count:               e.strip.Len(),
		Brightness:          e.brightness,
		Speed:               e.speed,
		Idle:                e.idleName,
		ShowActive:          e.show.active,
		Show:                e.show.name,
		ShowMsRemaining:     remaining,
		Demo:                e.demo.enabled,
		DemoIntervalS:       e.demo.intervalS,
		ProgressModeEnabled: e.progressMode,
		ProgressActive:      e.progress.Active(now),
		ProgressPct:         e.progress.Pct(),
		ProgressState:       string(e.progress.State()),
		ArcStart:            arcStart,
		ArcEnd:              arcEnd,
		IdleModes:           append([]string(nil), e.idleOrder...),
		ShowModes:           append([]string(nil), e.showOrder...),
		Events:              events,
		EventSeconds:        seconds,
	}
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

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
