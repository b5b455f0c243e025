// Package ssd1306 controls a SSD1306 OLED display via I2C or SPI.
//
// The SSD1306 is a monochrome OLED controller supporting up to 128×64 pixels,
// organised in 8 pixel high pages. This driver keeps a copy of the panel in
// memory (the raster), applies every drawing operation to it, and sends only
// the changed region to the controller from a background goroutine.
//
// # Display Characteristics
//
// - 1 bit per pixel, 8 rows per byte ("page")
// - Common resolutions are 128×64 and 128×32
// - Adjustable contrast (0-255)
// - Display inversion and 180° rotation
//
// # Hardware Connection
//
// Most modules use I2C:
//
//	Display Pin → System Pin
//	GND         → GND
//	VCC         → 3.3V
//	SCL         → I2C Clock
//	SDA         → I2C Data
//	RES         → Optional: GPIO for hardware reset
//
// 4-wire SPI modules also need a D/C pin, see NewSPI.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"periph.io/x/conn/v3/i2c/i2creg"
//		"periph.io/x/host/v3"
//		"github.com/flavioheleno/ssd1306"
//	)
//
//	func main() {
//		host.Init()
//
//		bus, _ := i2creg.Open("")
//		defer bus.Close()
//
//		dev, _ := ssd1306.NewI2C(bus, 0x3C, &ssd1306.Opts{W: 128, H: 64})
//		defer dev.Halt()
//
//		dev.Text(nil, "Hello %s", "world")
//		dev.Status(ssd1306.StatusExt, "a status line longer than the panel scrolls")
//	}
//
// # Coordinates and Clipping
//
// Rectangles are geom.Bounds, half open and signed. Anything may be drawn
// partially or entirely outside the panel: the visible part is drawn, and a
// fully clipped operation is a silent no-op.
//
// # Atomic Updates
//
// Each Dev method takes the device lock for itself. To combine operations,
// hold the lock through a Frame:
//
//	f, err := dev.Acquire()
//	if err != nil {
//		return err
//	}
//	f.Clear(nil)
//	f.DrawCentered(logo)
//	return f.Release()
//
// The lock is taken with a timeout (Opts.LockTimeout); an operation that
// cannot get it returns ErrTimeout and changes nothing.
//
// # Deferred Updates
//
// AutoUpdate(false) suspends flushing; the damage of every operation is
// merged until the matching AutoUpdate(true), then sent once. Calls nest.
//
// # Status Lines
//
// Two 8 pixel high status lines sit at the top of the panel (the bottom when
// flipped). StatusExt is always the line next to the panel edge. Text wider
// than the panel scrolls left one pixel per Opts.Tick, pausing for
// Opts.ScrollDelay each time it is back at its start.
//
// # Compatibility with periph.io
//
// Dev implements the display.Drawer interface from periph.io:
// https://pkg.go.dev/periph.io/x/conn/v3/display
//
// Any image.Image can be drawn through it; colors are thresholded at half
// luminance.
package ssd1306
