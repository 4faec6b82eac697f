package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watch reloads the daemon config whenever the file changes and hands the
// result to onChange. The parent directory is watched because most editors
// and scp replace the file instead of writing in place.
func Watch(ctx context.Context, path string, log zerolog.Logger, onChange func(*Lightd)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return err
	}
	target := filepath.Clean(path)

	go func() {
		defer w.Close()
		var debounce *time.Timer
		reload := func() {
			c, err := LoadLightd(target)
			if err != nil {
				log.Warn().Err(err).Str("path", target).Msg("config reload failed; keeping current")
				return
			}
			log.Info().Str("path", target).Msg("config reloaded")
			onChange(c)
		}
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
					continue
				}
				// Writers often produce bursts of events; coalesce them.
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(200*time.Millisecond, reload)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("config watcher error")
			}
		}
	}()
	return nil
}
