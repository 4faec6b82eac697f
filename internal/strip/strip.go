// Package strip owns the LED framebuffer and the output drivers. The strip is
// single-owner state: the render loop is the only writer, so no locking here.
package strip

// Color is a full-scale RGB triple. Dimming happens at Set time via the level
// argument and the global brightness, never by mutating the palette.
type Color struct {
	R, G, B uint8
}

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes an RGB frame to hardware. len(rgb) must be 3*N.
	Write(rgb []byte) error
	// Close releases resources.
	Close() error
}

// Strip is the working framebuffer for one addressable run of pixels.
type Strip struct {
	drv        Driver
	rgb        []byte
	frameID    uint64
	brightness func() float64
}

// New allocates a framebuffer of n pixels writing to drv. brightness is read
// at every Set; it reports the engine's current global brightness in [0,1].
func New(n int, drv Driver, brightness func() float64) *Strip {
	if brightness == nil {
		brightness = func() float64 { return 1.0 }
	}
	return &Strip{
		drv:        drv,
		rgb:        make([]byte, n*3),
		brightness: brightness,
	}
}

func (s *Strip) Len() int { return len(s.rgb) / 3 }

// Set scales c by level and the global brightness and stores it at pixel i.
// Out-of-range indices are ignored.
func (s *Strip) Set(i int, c Color, level float64) {
	if i < 0 || i >= s.Len() {
		return
	}
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	b := s.brightness()
	if b < 0 {
		b = 0
	}
	if b > 1 {
		b = 1
	}
	f := level * b
	s.rgb[i*3+0] = byte(float64(c.R)*f + 0.5)
	s.rgb[i*3+1] = byte(float64(c.G)*f + 0.5)
	s.rgb[i*3+2] = byte(float64(c.B)*f + 0.5)
}

// Fill sets every pixel to c at level.
func (s *Strip) Fill(c Color, level float64) {
	for i := 0; i < s.Len(); i++ {
		s.Set(i, c, level)
	}
}

// Flush writes the current frame to the driver.
func (s *Strip) Flush() error {
	if s.drv == nil {
		return nil
	}
	if err := s.drv.Write(s.rgb); err != nil {
		return err
	}
	s.frameID++
	return nil
}

// Blank zeroes the frame and flushes it, turning the strip off.
func (s *Strip) Blank() error {
	for i := range s.rgb {
		s.rgb[i] = 0
	}
	return s.Flush()
}

// FrameID counts flushed frames since start.
func (s *Strip) FrameID() uint64 { return s.frameID }

// Snapshot copies the current frame.
func (s *Strip) Snapshot() []byte {
	out := make([]byte, len(s.rgb))
	copy(out, s.rgb)
	return out
}
