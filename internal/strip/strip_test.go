package strip_test

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spitest"
	"periph.io/x/devices/v3/nrzled"

	"posterlights/internal/strip"
)

var setCases = []struct {
	Color      strip.Color
	Level      float64
	Brightness float64
	Expect     [3]byte
}{
	{strip.Color{R: 255, G: 140, B: 20}, 1.0, 1.0, [3]byte{255, 140, 20}},
	{strip.Color{R: 255, G: 140, B: 20}, 0.5, 1.0, [3]byte{128, 70, 10}},
	{strip.Color{R: 255, G: 140, B: 20}, 1.0, 0.5, [3]byte{128, 70, 10}},
	{strip.Color{R: 200, G: 200, B: 200}, 2.0, 1.0, [3]byte{200, 200, 200}}, // level clamps
	{strip.Color{R: 200, G: 200, B: 200}, -1.0, 1.0, [3]byte{0, 0, 0}},
}

func TestSetScalesByLevelAndBrightness(t *testing.T) {
	for k, c := range setCases {
		t.Run("Case"+strconv.Itoa(k), func(t *testing.T) {
			sim := strip.NewSim()
			s := strip.New(4, sim, func() float64 { return c.Brightness })
			s.Set(1, c.Color, c.Level)
			require.NoError(t, s.Flush())
			r, g, b := sim.Pixel(1)
			assert.Equal(t, c.Expect, [3]byte{r, g, b})
		})
	}
}

func TestSetOutOfRangeIgnored(t *testing.T) {
	sim := strip.NewSim()
	s := strip.New(2, sim, nil)
	s.Set(-1, strip.Color{R: 255}, 1)
	s.Set(2, strip.Color{R: 255}, 1)
	require.NoError(t, s.Flush())
	assert.Equal(t, make([]byte, 6), sim.Last())
}

func TestBlankZeroesAndFlushes(t *testing.T) {
	sim := strip.NewSim()
	s := strip.New(3, sim, nil)
	s.Fill(strip.Color{R: 10, G: 10, B: 10}, 1)
	require.NoError(t, s.Flush())
	require.NoError(t, s.Blank())
	assert.Equal(t, make([]byte, 9), sim.Last())
	assert.Equal(t, 2, sim.Frames())
	assert.Equal(t, uint64(2), s.FrameID())
}

func TestSnapshotCopies(t *testing.T) {
	s := strip.New(2, strip.NewSim(), nil)
	s.Set(0, strip.Color{R: 9}, 1)
	snap := s.Snapshot()
	s.Set(0, strip.Color{R: 200}, 1)
	assert.Equal(t, byte(9), snap[0])
}

func TestNRZEncoderOverRecordedSPI(t *testing.T) {
	buf := bytes.Buffer{}
	o := nrzled.Opts{NumPixels: 0, Channels: 3, Freq: 2500 * physic.KiloHertz}
	d, err := nrzled.NewSPI(spitest.NewRecordRaw(&buf), &o)
	require.NoError(t, err)
	if n, err := d.Write([]byte{}); n != 0 || err != nil {
		t.Fatalf("%d %v", n, err)
	}
}
