package strip

// Sim is a headless driver that records frames, used by tests and -driver=sim.
type Sim struct {
	frames int
	last   []byte
}

func NewSim() *Sim { return &Sim{} }

func (s *Sim) Write(rgb []byte) error {
	s.frames++
	if len(s.last) != len(rgb) {
		s.last = make([]byte, len(rgb))
	}
	copy(s.last, rgb)
	return nil
}

func (s *Sim) Close() error { return nil }

// Frames counts writes since start.
func (s *Sim) Frames() int { return s.frames }

// Last returns the most recent frame (not a copy; callers must not mutate).
func (s *Sim) Last() []byte { return s.last }

// Pixel returns the r,g,b bytes at index i of the last frame.
func (s *Sim) Pixel(i int) (byte, byte, byte) {
	if i < 0 || i*3+2 >= len(s.last) {
		return 0, 0, 0
	}
	return s.last[i*3], s.last[i*3+1], s.last[i*3+2]
}
