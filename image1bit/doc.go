// Package image1bit provides the packed monochrome bitmap used by the
// SSD1306 page-addressed display controller.
//
// Pixels are grouped in pages of 8 rows. Each byte holds the 8 vertical
// pixels of one column inside one page, bit 7 being the topmost row:
//
//	        col 0   col 1    col 2
//	page 0  Pix[0]  Pix[1]   Pix[2]   rows 0..7  (bit 7 = row 0)
//	page 1  Pix[W]  Pix[W+1] ...      rows 8..15 (bit 7 = row 8)
//
// A 16x24 bitmap therefore uses 16*3 = 48 bytes.
//
// This package provides:
//
// - Bit: the On/Off color type and BitModel
// - Bitmap: an image.Image / draw.Image backed by page-packed bytes
// - Draw and Clear: the page-crossing blit kernel shared by the driver
//
// Example usage:
//
//	// Create a 16x24 bitmap
//	bm := image1bit.New(geom.Size{W: 16, H: 24})
//
//	// Light a pixel
//	bm.SetBit(3, 10, image1bit.On)
//
//	// Copy it into another bitmap, 3 rows down
//	dst := image1bit.New(geom.Size{W: 16, H: 32})
//	image1bit.Draw(dst, geom.Rect(0, 3, 16, 24), bm, geom.Point{})
package image1bit
