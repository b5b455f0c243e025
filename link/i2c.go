package link

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// Control bytes prefixed to every I2C write (Co = 0, D/C# selects the stream).
const (
	i2cCommand = 0x00
	i2cData    = 0x40
)

// DefaultI2CAddr is the address with SA0 tied low.
const DefaultI2CAddr = 0x3C

// I2C sends streams over an I2C bus, one transaction per Send.
type I2C struct {
	d   i2c.Dev
	buf []byte
}

// NewI2C returns a transport for the controller at addr on bus.
func NewI2C(bus i2c.Bus, addr uint16) *I2C {
	return &I2C{d: i2c.Dev{Bus: bus, Addr: addr}}
}

// Send implements Transport.
func (t *I2C) Send(k Kind, b []byte) error {
	ctrl := byte(i2cCommand)
	if k == Data {
		ctrl = i2cData
	}
	t.buf = append(append(t.buf[:0], ctrl), b...)
	if err := t.d.Tx(t.buf, nil); err != nil {
		return fmt.Errorf("link: i2c %s write: %w", k, err)
	}
	return nil
}

func (t *I2C) String() string {
	return fmt.Sprintf("i2c(%s@0x%02X)", t.d.Bus, t.d.Addr)
}
