// Package link carries command and data byte streams to an SSD1306 controller.
//
// The controller distinguishes the two streams out of band: a control byte
// on I2C, the D/C# pin on SPI. A Transport hides that difference from the
// driver, which only ever sends whole streams of one kind.
package link

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Kind selects the stream a buffer belongs to.
type Kind int

const (
	// Command bytes are interpreted by the controller.
	Command Kind = iota
	// Data bytes are written to GDDRAM at the current address.
	Data
)

func (k Kind) String() string {
	switch k {
	case Command:
		return "command"
	case Data:
		return "data"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Transport sends a byte stream of one kind to the controller.
//
// Send is called from one goroutine at a time. It must not retain b.
type Transport interface {
	Send(k Kind, b []byte) error
	String() string
}

// Reset pulses the active low RST pin, holding each level for d.
func Reset(rst gpio.PinOut, d time.Duration) error {
	if err := rst.Out(gpio.Low); err != nil {
		return fmt.Errorf("link: failed to pull RST low: %w", err)
	}
	time.Sleep(d)
	if err := rst.Out(gpio.High); err != nil {
		return fmt.Errorf("link: failed to pull RST high: %w", err)
	}
	time.Sleep(d)
	return nil
}
