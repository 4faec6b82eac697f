// Package tracker polls Jellyfin for one device's playback and drives the
// light engine: lifecycle events on state changes, progress pushes every poll.
package tracker

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"posterlights/internal/engine"
	"posterlights/internal/jellyfin"
)

// Durations under one second are placeholders some clients report before the
// runtime is known; a fraction computed against them would be garbage.
const minDurationTicks = 10_000_000

// Snapshot is the tracker's reduced view of one poll.
type Snapshot struct {
	State    string
	Fraction float64
	ItemID   string
	Title    string
}

const (
	StatePlaying = "playing"
	StatePaused  = "paused"
	StateStopped = "stopped"
)

// Derive reduces a Jellyfin session to a Snapshot. Nil and idle sessions
// collapse to stopped. A zero or sub-second duration keeps the playback state
// and only forces the fraction to 0, since some clients report the item
// before its runtime is known.
func Derive(s *jellyfin.Session) Snapshot {
	if s == nil || s.NowPlayingItem == nil {
		return Snapshot{State: StateStopped}
	}
	item := s.NowPlayingItem
	snap := Snapshot{
		State:  StatePlaying,
		ItemID: item.Id,
		Title:  prettyTitle(item),
	}
	if s.PlayState != nil {
		if s.PlayState.IsPaused {
			snap.State = StatePaused
		}
		if item.RunTimeTicks >= minDurationTicks {
			f := float64(s.PlayState.PositionTicks) / float64(item.RunTimeTicks)
			if f < 0 {
				f = 0
			}
			if f > 1 {
				f = 1
			}
			snap.Fraction = f
		}
	}
	return snap
}

func prettyTitle(item *jellyfin.Item) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{item.SeriesName, item.SeasonName, item.Name} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " - ")
}

// SessionSource is the Jellyfin side of the tracker.
type SessionSource interface {
	Sessions(ctx context.Context) ([]jellyfin.Session, error)
}

// EngineAPI is the subset of the control surface the tracker drives.
type EngineAPI interface {
	Status(ctx context.Context) (engine.Status, error)
	TriggerEvent(ctx context.Context, name string, seconds int) (engine.Result, error)
	PushProgress(ctx context.Context, pct float64, state string) (engine.Result, error)
}

type Options struct {
	Source SessionSource
	Engine EngineAPI
	Device string

	PollInterval   time.Duration
	StatusInterval time.Duration
	Grace          time.Duration

	Logger zerolog.Logger
}

// Tracker is single-goroutine: Run (or Step in tests) is the only caller of
// its state, so there is no locking.
type Tracker struct {
	opt Options
	log zerolog.Logger

	last        Snapshot
	absentSince time.Time

	progressMode    bool
	statusChecked   bool
	lastStatusCheck time.Time
}

func New(opt Options) *Tracker {
	if opt.PollInterval <= 0 {
		opt.PollInterval = 2 * time.Second
	}
	if opt.StatusInterval <= 0 {
		opt.StatusInterval = 10 * time.Second
	}
	if opt.Grace <= 0 {
		opt.Grace = 10 * time.Second
	}
	return &Tracker{
		opt:  opt,
		log:  opt.Logger,
		last: Snapshot{State: StateStopped},
	}
}

// Run polls until ctx is cancelled. Every per-cycle failure is logged and the
// next cycle proceeds; the tracker never exits on a bad poll.
func (t *Tracker) Run(ctx context.Context) {
	tick := time.NewTicker(t.opt.PollInterval)
	defer tick.Stop()
	t.Step(ctx, time.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			t.Step(ctx, now)
		}
	}
}

// Step runs one poll cycle at the given wall time.
func (t *Tracker) Step(ctx context.Context, now time.Time) {
	t.refreshStatus(ctx, now)

	sessions, err := t.opt.Source.Sessions(ctx)
	if err != nil {
		t.log.Warn().Err(err).Msg("session poll failed")
		return
	}
	sess := jellyfin.FindDevice(sessions, t.opt.Device)

	// The grace window covers the session vanishing from the list, which
	// is routine during seeks and transcode restarts. A session that is
	// still listed but idle is the user pressing stop and lands at once.
	if sess == nil && t.last.State != StateStopped {
		if t.absentSince.IsZero() {
			t.absentSince = now
		}
		if now.Sub(t.absentSince) < t.opt.Grace {
			// Hold the last known snapshot and keep the engine fed
			// so the renderer's own staleness timeout stays armed.
			t.push(ctx, t.last)
			return
		}
	} else {
		t.absentSince = time.Time{}
	}

	snap := Derive(sess)
	changed := snap.State != t.last.State || snap.ItemID != t.last.ItemID
	t.last = snap

	// State is tracked regardless, but nothing goes out while the engine
	// has progress mode switched off.
	if !t.progressMode {
		if changed {
			t.log.Debug().Str("state", snap.State).Msg("change tracked, outbound suppressed")
		}
		return
	}
	if changed {
		t.emit(ctx, snap)
	}
	t.push(ctx, snap)
}

// push reports the snapshot on every successful poll, stopped included, so
// the engine never depends on a single event delivery to learn about a stop.
func (t *Tracker) push(ctx context.Context, snap Snapshot) {
	if !t.progressMode {
		return
	}
	if _, err := t.opt.Engine.PushProgress(ctx, snap.Fraction, snap.State); err != nil {
		t.log.Warn().Err(err).Msg("progress push failed")
	}
}

func (t *Tracker) refreshStatus(ctx context.Context, now time.Time) {
	if t.statusChecked && now.Sub(t.lastStatusCheck) < t.opt.StatusInterval {
		return
	}
	st, err := t.opt.Engine.Status(ctx)
	if err != nil {
		t.log.Warn().Err(err).Msg("engine status poll failed")
		return
	}
	t.statusChecked = true
	t.lastStatusCheck = now
	if st.ProgressModeEnabled != t.progressMode {
		t.log.Info().Bool("enabled", st.ProgressModeEnabled).Msg("remote progress mode changed")
	}
	t.progressMode = st.ProgressModeEnabled
}

func (t *Tracker) emit(ctx context.Context, snap Snapshot) {
	var event string
	switch snap.State {
	case StatePlaying:
		event = "movie_start"
	case StatePaused:
		event = "movie_pause"
	case StateStopped:
		event = "movie_stop"
	}
	log := t.log.Info().Str("event", event).Str("state", snap.State)
	if snap.Title != "" {
		log = log.Str("title", snap.Title)
	}
	log.Msg("playback change")

	res, err := t.opt.Engine.TriggerEvent(ctx, event, 0)
	if err != nil {
		t.log.Warn().Err(err).Str("event", event).Msg("event trigger failed")
		return
	}
	if !res.OK {
		t.log.Debug().Str("event", event).Str("reason", res.Message).Msg("event rejected")
	}
}
