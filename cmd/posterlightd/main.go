package main

import (
	"context"
	"flag"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"posterlights/internal/config"
	"posterlights/internal/engine"
	"posterlights/internal/httpapi"
	"posterlights/internal/strip"
)

func main() {
	// ---- Flags (remain usable; config.yaml can override most) ----
	var (
		addr       = flag.String("addr", ":8090", "HTTP listen address")
		driver     = flag.String("driver", "spi", "driver: spi | sim")
		spiPort    = flag.String("spi-port", "", "SPI port name (empty = first registered)")
		pixels     = flag.Int("pixels", 20, "number of LEDs on the strip")
		brightness = flag.Float64("brightness", 0.6, "global brightness 0..1")
		speed      = flag.Float64("speed", 1.0, "global speed multiplier 0.2..3.0")
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		simOnly    = flag.Bool("sim-only", false, "force simulation (no hardware output)")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Load config.yaml (optional) ----
	cfg := config.DefaultLightd()
	cfg.Addr = *addr
	cfg.Driver = *driver
	cfg.SPIPort = *spiPort
	cfg.Pixels = *pixels
	cfg.Brightness = *brightness
	cfg.Speed = *speed
	if c, err := config.LoadLightd(*configPath); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	} else {
		cfg = *c
	}
	if *simOnly {
		cfg.Driver = "sim"
	}

	// ---- Driver selection ----
	var drv strip.Driver
	switch cfg.Driver {
	case "sim":
		drv = strip.NewSim()
	case "spi":
		p, err := strip.OpenNRZ(cfg.SPIPort, cfg.Pixels)
		if err != nil {
			log.Warn().Err(err).Str("port", cfg.SPIPort).Msg("SPI init failed; falling back to SIM")
			drv = strip.NewSim()
		} else {
			if !p.Spi {
				log.Warn().Msg("no SPI port found; drawing to console")
			}
			drv = p
		}
	default:
		log.Warn().Str("driver", cfg.Driver).Msg("unknown driver; using SIM")
		drv = strip.NewSim()
	}

	// ---- Engine ----
	eng := engine.New(engine.Options{
		Driver:     drv,
		Pixels:     cfg.Pixels,
		Params:     cfg.Effects,
		Events:     cfg.Events,
		Rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
		Logger:     log.Logger,
		Brightness: cfg.Brightness,
		Speed:      cfg.Speed,
	})
	if cfg.Idle != "" {
		if res := eng.SetIdle(cfg.Idle); !res.OK {
			log.Warn().Str("idle", cfg.Idle).Msg("unknown idle mode in config; keeping default")
		}
	}
	eng.SetArc(cfg.Arc.Start, cfg.Arc.End)
	if cfg.Demo.Enabled {
		eng.SetDemo(true, cfg.Demo.IntervalS)
	}

	api := httpapi.NewServer(eng, log.Logger)
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      api.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- Hot reload of tuning and event tables ----
	if err := config.Watch(ctx, *configPath, log.Logger, func(c *config.Lightd) {
		eng.SetParams(c.Effects)
		if c.Events != nil {
			eng.SetEvents(c.Events)
		}
		eng.SetConfig(c.Brightness, c.Speed)
		api.BroadcastStatus()
	}); err != nil {
		log.Warn().Err(err).Msg("config watch unavailable")
	}

	// ---- Run render loop & server ----
	go eng.Run(ctx, 10*time.Millisecond, api)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("driver", cfg.Driver).Int("pixels", cfg.Pixels).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	// ---- Graceful shutdown ----
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	s := <-ch
	log.Info().Str("signal", s.String()).Msg("shutting down")

	cancel()
	_ = srv.Close()
	if err := eng.Blank(); err != nil {
		log.Warn().Err(err).Msg("blank on shutdown failed")
	}
	_ = drv.Close()
}
