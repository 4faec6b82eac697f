package strip

import (
	"fmt"
	"io"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"
)

// NRZ strips latch at 800kHz; the SPI clock runs 3x plus margin so each LED
// bit expands to a clean 3-bit symbol.
const refreshRate physic.Frequency = 800

type device interface {
	io.Writer
	Halt() error
}

// Periph drives the strip through a periph.io device: NRZ-over-SPI on real
// hardware, an ANSI console drawer when no SPI port exists.
type Periph struct {
	dev device
	n   int

	// Spi reports whether a real SPI port was found.
	Spi bool
}

// OpenNRZ opens the named SPI port ("" picks the first registered one) and
// prepares an NRZ encoder for n pixels. If no port is available it falls back
// to the console drawer so the daemon stays usable off-target.
func OpenNRZ(port string, n int) (*Periph, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	p := &Periph{n: n}
	s, err := spireg.Open(port)
	if err != nil {
		p.dev = screen.New(n)
		return p, nil
	}
	opts := nrzled.Opts{
		NumPixels: n,
		Channels:  3,
		Freq:      ((refreshRate * 3) + 100) * physic.KiloHertz,
	}
	d, err := nrzled.NewSPI(s, &opts)
	if err != nil {
		return nil, fmt.Errorf("nrzled init: %w", err)
	}
	if err := d.Halt(); err != nil {
		return nil, fmt.Errorf("nrzled halt: %w", err)
	}
	p.dev = d
	p.Spi = true
	return p, nil
}

func (p *Periph) Write(rgb []byte) error {
	if len(rgb) != p.n*3 {
		return fmt.Errorf("rgb length %d does not match count %d", len(rgb), p.n)
	}
	if _, err := p.dev.Write(rgb); err != nil {
		return fmt.Errorf("strip write: %w", err)
	}
	return nil
}

func (p *Periph) Close() error {
	return p.dev.Halt()
}
