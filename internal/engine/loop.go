package engine

import (
	"context"
	"time"
)

// Sink receives frames as they are produced; used to feed websocket viewers.
type Sink interface {
	Frame(id uint64, rgb []byte)
}

// Run drives the engine at the given quantum until ctx is cancelled. A frame
// is pushed to sink only when the strip actually changed, so idle effects with
// slow cadences do not flood viewers.
func (e *Engine) Run(ctx context.Context, quantum time.Duration, sink Sink) {
	if quantum <= 0 {
		quantum = 10 * time.Millisecond
	}
	tick := time.NewTicker(quantum)
	defer tick.Stop()

	var lastID uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			e.Tick(e.clock.Now())
			if sink == nil {
				continue
			}
			frame, id := e.Frame()
			if id != lastID {
				lastID = id
				sink.Frame(id, frame)
			}
		}
	}
}
