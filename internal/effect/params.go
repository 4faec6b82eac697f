package effect

import "posterlights/internal/strip"

// Stock palette, in plain RGB. Dimming is applied per pixel at render time.
var (
	Warm     = strip.Color{R: 255, G: 140, B: 20}
	SoftWarm = strip.Color{R: 255, G: 100, B: 10}
	Gold     = strip.Color{R: 255, G: 180, B: 30}
	Cool     = strip.Color{R: 50, G: 120, B: 255}
)

// Params collects every effect's tuning table. Loaded once at startup from
// yaml and only swapped wholesale on a config reload; effects copy what they
// need so a reload never mutates a running effect mid-frame.
type Params struct {
	Twinkle     TwinkleParams     `yaml:"twinkle"`
	Breath      BreathParams      `yaml:"breath"`
	Marquee     MarqueeParams     `yaml:"marquee"`
	WipeHoldPop WipeHoldPopParams `yaml:"wipe_show"`
	DoubleChase DoubleChaseParams `yaml:"double_show"`
	Wipe        WipeParams        `yaml:"sweep"`
	Progress    ProgressParams    `yaml:"progress"`
}

type TwinkleParams struct {
	Color    strip.Color `yaml:"color"`
	BaseMin  float64     `yaml:"base_min"`
	BaseMax  float64     `yaml:"base_max"`
	Chance   float64     `yaml:"twinkle_chance"`
	BoostMin float64     `yaml:"twinkle_boost_min"`
	BoostMax float64     `yaml:"twinkle_boost_max"`
	Decay    float64     `yaml:"twinkle_decay"`
	Drift    float64     `yaml:"base_drift"`
	FrameMs  int32       `yaml:"frame_ms"`
}

type BreathParams struct {
	Color     strip.Color `yaml:"color"`
	MinS      float64     `yaml:"min_s"`
	MaxS      float64     `yaml:"max_s"`
	PhaseStep float64     `yaml:"phase_step"`
	FrameMs   int32       `yaml:"frame_ms"`
}

type MarqueeParams struct {
	Color     strip.Color `yaml:"color"`
	BulbEvery int         `yaml:"bulb_every"`
	Duty      float64     `yaml:"duty"`
	BaseDim   float64     `yaml:"base_dim"`
	StepMs    int32       `yaml:"step_ms"`
}

type WipeHoldPopParams struct {
	Color    strip.Color `yaml:"color"`
	PopColor strip.Color `yaml:"pop_color"`
	HoldMs   int32       `yaml:"hold_ms"`
	PopRate  float64     `yaml:"pop_rate"`
	StepMs   int32       `yaml:"step_ms"`
}

type DoubleChaseParams struct {
	Color  strip.Color `yaml:"color"`
	Tail   int         `yaml:"tail"`
	Bg     float64     `yaml:"bg"`
	StepMs int32       `yaml:"step_ms"`
}

type WipeParams struct {
	Color  strip.Color `yaml:"color"`
	Level  float64     `yaml:"level"`
	StepMs int32       `yaml:"step_ms"`
}

type ProgressParams struct {
	FilledColor strip.Color `yaml:"filled_color"`
	TrimColor   strip.Color `yaml:"trim_color"`
	EmptyDim    float64     `yaml:"empty_dim"`
	FilledDim   float64     `yaml:"filled_dim"`
	HeadDim     float64     `yaml:"head_dim"`
	TrimDim     float64     `yaml:"trim_dim"`
	NoiseAmp    float64     `yaml:"noise_amp"`
	PauseFloor  float64     `yaml:"pause_floor"`
	PhaseStep   float64     `yaml:"phase_step"`
	FrameMs     int32       `yaml:"frame_ms"`
	TimeoutMs   int32       `yaml:"timeout_ms"`
}

// DefaultParams mirrors the tuning the fixtures shipped with.
func DefaultParams() Params {
	return Params{
		Twinkle: TwinkleParams{
			Color:    SoftWarm,
			BaseMin:  0.25,
			BaseMax:  0.55,
			Chance:   0.25,
			BoostMin: 0.35,
			BoostMax: 0.80,
			Decay:    0.82,
			Drift:    0.03,
			FrameMs:  60,
		},
		Breath: BreathParams{
			Color:     Warm,
			MinS:      0.06,
			MaxS:      0.70,
			PhaseStep: 0.06,
			FrameMs:   20,
		},
		Marquee: MarqueeParams{
			Color:     Warm,
			BulbEvery: 3,
			Duty:      0.90,
			BaseDim:   0.03,
			StepMs:    110,
		},
		WipeHoldPop: WipeHoldPopParams{
			Color:    Warm,
			PopColor: Gold,
			HoldMs:   900,
			PopRate:  0.22,
			StepMs:   20,
		},
		DoubleChase: DoubleChaseParams{
			Color:  Warm,
			Tail:   4,
			Bg:     0.03,
			StepMs: 50,
		},
		Wipe: WipeParams{
			Color:  Warm,
			Level:  0.85,
			StepMs: 20,
		},
		Progress: ProgressParams{
			FilledColor: Warm,
			TrimColor:   SoftWarm,
			EmptyDim:    0.04,
			FilledDim:   0.70,
			HeadDim:     0.95,
			TrimDim:     0.02,
			NoiseAmp:    0.06,
			PauseFloor:  0.45,
			PhaseStep:   0.05,
			FrameMs:     50,
			TimeoutMs:   30000,
		},
	}
}
