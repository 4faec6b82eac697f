// Package config holds the YAML config files for both daemons. Flags stay
// usable; config values override them where set.
package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"posterlights/internal/effect"
	"posterlights/internal/engine"
)

type Arc struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

type Demo struct {
	Enabled   bool `yaml:"enabled"`
	IntervalS int  `yaml:"interval_s"`
}

// Lightd configures the engine daemon.
type Lightd struct {
	Addr       string  `yaml:"addr"`   // e.g. :8090
	Driver     string  `yaml:"driver"` // "spi" | "sim"
	SPIPort    string  `yaml:"spi_port"`
	Pixels     int     `yaml:"pixels"`
	Brightness float64 `yaml:"brightness"`
	Speed      float64 `yaml:"speed"`
	Idle       string  `yaml:"idle"`

	Demo Demo `yaml:"demo"`
	Arc  Arc  `yaml:"arc"`

	Effects effect.Params               `yaml:"effects"`
	Events  map[string]engine.EventSpec `yaml:"events,omitempty"`
}

// DefaultLightd is the daemon config before any file or flag lands.
func DefaultLightd() Lightd {
	return Lightd{
		Addr:       ":8090",
		Driver:     "spi",
		SPIPort:    "",
		Pixels:     20,
		Brightness: 0.6,
		Speed:      1.0,
		Idle:       "twinkle",
		Demo:       Demo{Enabled: false, IntervalS: 30},
		Arc:        Arc{Start: 0, End: 19},
		Effects:    effect.DefaultParams(),
	}
}

// Bridge configures the Jellyfin poller.
type Bridge struct {
	JellyfinURL string `yaml:"jellyfin_url"`
	APIKey      string `yaml:"api_key"`
	Device      string `yaml:"device"`
	EngineURL   string `yaml:"engine_url"`

	PollS    int    `yaml:"poll_s"`
	StatusS  int    `yaml:"status_s"`
	GraceS   int    `yaml:"grace_s"`
	LockFile string `yaml:"lock_file"`
}

func DefaultBridge() Bridge {
	return Bridge{
		EngineURL: "http://127.0.0.1:8090",
		PollS:     2,
		StatusS:   10,
		GraceS:    10,
		LockFile:  "/tmp/posterbridge.lock",
	}
}

// Validate checks the bridge config has everything it cannot guess. The API
// key may come from the environment instead of the file.
func (b *Bridge) Validate() error {
	if b.APIKey == "" {
		b.APIKey = os.Getenv("JELLYFIN_API_KEY")
	}
	switch {
	case b.JellyfinURL == "":
		return errors.New("jellyfin_url is required")
	case b.APIKey == "":
		return errors.New("api_key is required (or set JELLYFIN_API_KEY)")
	case b.Device == "":
		return errors.New("device is required")
	}
	return nil
}

func (b *Bridge) PollInterval() time.Duration   { return time.Duration(b.PollS) * time.Second }
func (b *Bridge) StatusInterval() time.Duration { return time.Duration(b.StatusS) * time.Second }
func (b *Bridge) GraceWindow() time.Duration    { return time.Duration(b.GraceS) * time.Second }

func LoadLightd(path string) (*Lightd, error) {
	c := DefaultLightd()
	if err := load(path, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func LoadBridge(path string) (*Bridge, error) {
	c := DefaultBridge()
	if err := load(path, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func load(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, out)
}

func Save(path string, c any) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
