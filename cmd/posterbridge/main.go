package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"posterlights/internal/apiclient"
	"posterlights/internal/config"
	"posterlights/internal/jellyfin"
	"posterlights/internal/tracker"
)

func main() {
	var (
		configPath = flag.String("config", "bridge.yaml", "path to bridge.yaml")
		jfURL      = flag.String("jellyfin-url", "", "Jellyfin base URL (overrides config)")
		device     = flag.String("device", "", "Jellyfin device name to track (overrides config)")
		engineURL  = flag.String("engine-url", "", "light engine base URL (overrides config)")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	cfg := config.DefaultBridge()
	if c, err := config.LoadBridge(*configPath); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	} else {
		cfg = *c
	}
	if *jfURL != "" {
		cfg.JellyfinURL = *jfURL
	}
	if *device != "" {
		cfg.Device = *device
	}
	if *engineURL != "" {
		cfg.EngineURL = *engineURL
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// One bridge per host; a second instance would double every event.
	lock := flock.New(cfg.LockFile)
	ok, err := lock.TryLock()
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.LockFile).Msg("lock failed")
	}
	if !ok {
		log.Fatal().Str("path", cfg.LockFile).Msg("another bridge instance is running")
	}
	defer lock.Unlock()

	tr := tracker.New(tracker.Options{
		Source:         jellyfin.NewClient(cfg.JellyfinURL, cfg.APIKey, 5*time.Second),
		Engine:         apiclient.New(cfg.EngineURL, 3*time.Second),
		Device:         cfg.Device,
		PollInterval:   cfg.PollInterval(),
		StatusInterval: cfg.StatusInterval(),
		Grace:          cfg.GraceWindow(),
		Logger:         log.Logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		s := <-ch
		log.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
	}()

	log.Info().
		Str("jellyfin", cfg.JellyfinURL).
		Str("device", cfg.Device).
		Str("engine", cfg.EngineURL).
		Dur("poll", cfg.PollInterval()).
		Msg("bridge starting")
	tr.Run(ctx)
}
