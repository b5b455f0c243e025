// Package image1bit provides a page-packed 1-bit image format for the SSD1306.
//
// The controller stores pixels in vertical bytes: one byte covers 8 rows of
// one column. This package keeps bit 7 as the top row of a page.
package image1bit

import (
	"fmt"
	"image"
	"image/color"

	"github.com/flavioheleno/ssd1306/geom"
)

// PageHeight is the number of pixel rows packed in one byte.
const PageHeight = 8

// Bit is a monochrome color, either On or Off.
type Bit bool

const (
	// On is a lit pixel.
	On = Bit(true)
	// Off is a dark pixel.
	Off = Bit(false)
)

// RGBA converts the Bit to standard RGBA, On being white.
func (b Bit) RGBA() (r, g, bl, a uint32) {
	if b {
		return 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF
	}
	return 0, 0, 0, 0xFFFF
}

func (b Bit) String() string {
	if b {
		return "On"
	}
	return "Off"
}

// toBit converts any color.Color to Bit.
func toBit(c color.Color) color.Color {
	if b, ok := c.(Bit); ok {
		return b
	}
	r, g, b, _ := c.RGBA()
	// Same luma weights as the grayscale conversion, thresholded at half.
	y := (299*r + 587*g + 114*b + 500) / 1000
	return Bit(y >= 0x8000)
}

// BitModel converts colors to Bit.
var BitModel = color.ModelFunc(toBit)

// Pages returns the number of pages needed for h rows.
func Pages(h int) int {
	return (h + PageHeight - 1) / PageHeight
}

// Bitmap is a monochrome image packed in 8-row pages.
// Width and height never change after creation.
type Bitmap struct {
	W, H int
	Pix  []byte // W * Pages(H) bytes, page major
}

// New creates a zeroed bitmap of the given size.
func New(size geom.Size) *Bitmap {
	if size.W < 0 || size.H < 0 {
		panic(fmt.Sprintf("image1bit: invalid size %dx%d", size.W, size.H))
	}
	return &Bitmap{
		W:   size.W,
		H:   size.H,
		Pix: make([]byte, size.W*Pages(size.H)),
	}
}

// Size returns the bitmap extent.
func (b *Bitmap) Size() geom.Size {
	return geom.Size{W: b.W, H: b.H}
}

// Rect returns the bitmap bounds, always anchored at 0,0.
func (b *Bitmap) Rect() geom.Bounds {
	return geom.Bounds{X1: b.W, Y1: b.H}
}

// Pages returns the number of pages of the bitmap.
func (b *Bitmap) Pages() int {
	return Pages(b.H)
}

// Index returns the offset in Pix of column col in page page.
// It panics when the address is outside the bitmap.
func (b *Bitmap) Index(page, col int) int {
	if page < 0 || page >= b.Pages() || col < 0 || col >= b.W {
		panic(fmt.Sprintf("image1bit: page %d, column %d outside %dx%d pages", page, col, b.W, b.Pages()))
	}
	return page*b.W + col
}

// Page returns the bytes of page p.
func (b *Bitmap) Page(p int) []byte {
	if p < 0 || p >= b.Pages() {
		panic(fmt.Sprintf("image1bit: page %d outside [0,%d)", p, b.Pages()))
	}
	return b.Pix[p*b.W : (p+1)*b.W]
}

// BitAt returns the pixel at (x, y). Pixels outside the bitmap are Off.
func (b *Bitmap) BitAt(x, y int) Bit {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return Off
	}
	return Bit(b.Pix[b.Index(y/PageHeight, x)]&rowBit(y%PageHeight) != 0)
}

// SetBit sets the pixel at (x, y). Pixels outside the bitmap are ignored.
func (b *Bitmap) SetBit(x, y int, v Bit) {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return
	}
	i := b.Index(y/PageHeight, x)
	if v {
		b.Pix[i] |= rowBit(y % PageHeight)
	} else {
		b.Pix[i] &^= rowBit(y % PageHeight)
	}
}

// ColorModel returns the color model of the image.
func (b *Bitmap) ColorModel() color.Model {
	return BitModel
}

// Bounds returns the image bounds.
// It implements the image.Image interface.
func (b *Bitmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.W, b.H)
}

// At returns the color of the pixel at (x, y).
func (b *Bitmap) At(x, y int) color.Color {
	return b.BitAt(x, y)
}

// Set sets the color of the pixel at (x, y).
func (b *Bitmap) Set(x, y int, c color.Color) {
	b.SetBit(x, y, BitModel.Convert(c).(Bit))
}

// Clone returns a deep copy of b.
func (b *Bitmap) Clone() *Bitmap {
	c := &Bitmap{W: b.W, H: b.H, Pix: make([]byte, len(b.Pix))}
	copy(c.Pix, b.Pix)
	return c
}

// Equal reports whether both bitmaps have the same size and pixels.
// Padding rows of a partial last page are ignored.
func (b *Bitmap) Equal(o *Bitmap) bool {
	if b.W != o.W || b.H != o.H {
		return false
	}
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			if b.BitAt(x, y) != o.BitAt(x, y) {
				return false
			}
		}
	}
	return true
}

// Convert thresholds the r region of img, starting at sp, into a new bitmap
// of r's size.
func Convert(img image.Image, r image.Rectangle, sp image.Point) *Bitmap {
	bm := New(geom.Size{W: r.Dx(), H: r.Dy()})
	if src, ok := img.(*Bitmap); ok {
		Draw(bm, bm.Rect(), src, geom.Point{X: sp.X, Y: sp.Y})
		return bm
	}
	sb := img.Bounds()
	for y := 0; y < bm.H; y++ {
		for x := 0; x < bm.W; x++ {
			p := image.Point{X: sp.X + x, Y: sp.Y + y}
			if !p.In(sb) {
				continue
			}
			bm.SetBit(x, y, BitModel.Convert(img.At(p.X, p.Y)).(Bit))
		}
	}
	return bm
}

// rowBit returns the bit of row r inside a page byte.
func rowBit(r int) byte {
	return 0x80 >> uint(r)
}
