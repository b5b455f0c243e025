package ssd1306

import (
	"errors"

	"github.com/flavioheleno/ssd1306/image1bit"
)

// ScrollSpeed is the number of frames between two hardware scroll steps.
type ScrollSpeed byte

const (
	Speed2Frames   ScrollSpeed = 0x07
	Speed3Frames   ScrollSpeed = 0x04
	Speed4Frames   ScrollSpeed = 0x05
	Speed5Frames   ScrollSpeed = 0x00
	Speed25Frames  ScrollSpeed = 0x06
	Speed64Frames  ScrollSpeed = 0x01
	Speed128Frames ScrollSpeed = 0x02
	Speed256Frames ScrollSpeed = 0x03
)

// ScrollHorizontal starts the controller's own horizontal scrolling of pages
// startPage to endPage. The raster is not affected; call StopScroll before
// drawing again, as the controller rewrites GDDRAM while scrolling.
func (d *Dev) ScrollHorizontal(startPage, endPage int, speed ScrollSpeed, right bool) error {
	pages := image1bit.Pages(d.rect.Height())
	if startPage < 0 || endPage >= pages || startPage > endPage {
		return errors.New("ssd1306: scroll page out of range")
	}

	// Select scroll direction command
	cmd := byte(0x27) // Left
	if right {
		cmd = 0x26 // Right
	}
	return d.command(
		0x2E, // Deactivate before setup
		cmd,
		0x00,            // Dummy byte
		byte(startPage), // Start page
		byte(speed),     // Frame interval
		byte(endPage),   // End page
		0x00, 0xFF,      // Dummy bytes
		0x2F,            // Activate scroll
	)
}

// StopScroll stops hardware scrolling. The panel then shows the raster again
// after a full update.
func (d *Dev) StopScroll() error {
	if err := d.command(0x2E); err != nil {
		return err
	}
	return d.Update()
}
