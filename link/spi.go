package link

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// DefaultSPISpeed stays under the 10 MHz serial clock limit of the controller.
const DefaultSPISpeed = 8 * physic.MegaHertz

// SPI sends streams over a 4-wire SPI port, selecting the stream with the
// D/C# pin.
type SPI struct {
	c  conn.Conn
	dc gpio.PinOut
}

// NewSPI connects to p in mode 0 with 8 bit words. A zero f selects
// DefaultSPISpeed.
func NewSPI(p spi.Port, dc gpio.PinOut, f physic.Frequency) (*SPI, error) {
	if dc == nil {
		return nil, errors.New("link: spi requires a D/C pin")
	}
	if f == 0 {
		f = DefaultSPISpeed
	}
	c, err := p.Connect(f, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("link: spi connect: %w", err)
	}
	return &SPI{c: c, dc: dc}, nil
}

// Send implements Transport.
func (t *SPI) Send(k Kind, b []byte) error {
	l := gpio.Low
	if k == Data {
		l = gpio.High
	}
	if err := t.dc.Out(l); err != nil {
		return fmt.Errorf("link: spi D/C: %w", err)
	}
	if err := t.c.Tx(b, nil); err != nil {
		return fmt.Errorf("link: spi %s write: %w", k, err)
	}
	return nil
}

func (t *SPI) String() string {
	return fmt.Sprintf("spi(%s)", t.c)
}
