package engine

// EventSpec binds a named external event to a pool of shows and a default
// duration. Events with more than one show rotate through the pool
// deterministically, one step per trigger.
type EventSpec struct {
	Shows   []string `yaml:"shows"`
	Seconds int      `yaml:"seconds"`
}

// DefaultEvents mirrors the stock event table.
func DefaultEvents() map[string]EventSpec {
	return map[string]EventSpec{
		"bulb_change": {Shows: []string{"wipe", "double", "marquee"}, Seconds: 8},
		"movie_start": {Shows: []string{"wipe_on"}, Seconds: 10},
		"movie_pause": {Shows: []string{"double"}, Seconds: 6},
		"movie_stop":  {Shows: []string{"wipe_off"}, Seconds: 6},
	}
}

// TriggerEvent resolves an event name to its next rotated show and starts it.
// secondsOverride <= 0 uses the event's configured duration. The rotation
// cursor only advances when the show actually starts, so rejected triggers
// replay the same show next time.
func (e *Engine) TriggerEvent(name string, secondsOverride int) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	spec, ok := e.events[name]
	if !ok || len(spec.Shows) == 0 {
		return Result{OK: false, Message: "unknown event"}
	}
	idx := e.rotation[name] % len(spec.Shows)
	show := spec.Shows[idx]
	seconds := spec.Seconds
	if secondsOverride > 0 {
		seconds = secondsOverride
	}

	res := e.startShowLocked(show, seconds)
	if res.OK {
		e.rotation[name] = (idx + 1) % len(spec.Shows)
		res.Event = name
	}
	return res
}

// SetEvents replaces the event table, keeping rotation cursors for events that
// survive the swap. Used by config hot reload.
func (e *Engine) SetEvents(events map[string]EventSpec) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(events) == 0 {
		return
	}
	e.events = events
	for name := range e.rotation {
		if _, ok := events[name]; !ok {
			delete(e.rotation, name)
		}
	}
}
