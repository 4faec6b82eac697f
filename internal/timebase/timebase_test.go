package timebase_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"posterlights/internal/timebase"
)

var elapsedCases = []struct {
	Deadline timebase.Ticks
	Now      timebase.Ticks
	Expect   bool
}{
	{0, 0, true},
	{100, 99, false},
	{100, 100, true},
	{100, 101, true},
	// deadline just before the ring wraps, now just after
	{0xFFFFFFF0, 0x00000010, true},
	// now just before a deadline that sits across the wrap
	{0x00000010, 0xFFFFFFF0, false},
}

func TestElapsedAcrossWrap(t *testing.T) {
	for k, c := range elapsedCases {
		t.Run("Case"+strconv.Itoa(k), func(t *testing.T) {
			assert.Equal(t, c.Expect, timebase.Elapsed(c.Deadline, c.Now))
		})
	}
}

func TestAddWraps(t *testing.T) {
	d := timebase.Add(0xFFFFFF00, 0x200)
	assert.Equal(t, timebase.Ticks(0x100), d)
	assert.True(t, timebase.Elapsed(d, timebase.Add(d, 1)))
	assert.False(t, timebase.Elapsed(timebase.Add(d, 1), d))
}

func TestDiffSigned(t *testing.T) {
	assert.Equal(t, int32(16), timebase.Diff(8, 0xFFFFFFF8))
	assert.Equal(t, int32(-16), timebase.Diff(0xFFFFFFF8, 8))
}

var scaledCases = []struct {
	Base   int32
	Speed  float64
	Expect int32
}{
	{60, 1.0, 60},
	{60, 2.0, 30},
	{60, 0.5, 120},
	{60, 3.0, 20},
	{60, 99.0, 20},   // speed clamps to 3.0
	{60, 0.01, 300},  // speed clamps to 0.2
	{10, 3.0, 5},     // floor
	{5, 3.0, 5},
}

func TestScaled(t *testing.T) {
	for k, c := range scaledCases {
		t.Run("Case"+strconv.Itoa(k), func(t *testing.T) {
			assert.Equal(t, c.Expect, timebase.Scaled(c.Base, c.Speed))
		})
	}
}

func TestFakeAdvance(t *testing.T) {
	f := &timebase.Fake{}
	f.Advance(250)
	assert.Equal(t, timebase.Ticks(250), f.Now())
}
