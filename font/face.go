package font

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/encoding/charmap"

	"github.com/flavioheleno/ssd1306/image1bit"
)

// FromFace rasterizes face into a glyph table for charset cs (nil means
// Windows-1252). Each glyph is clipped to an 8x8 cell whose baseline sits at
// the face ascent, capped at the cell height. Control bytes and runes the face
// lacks get no width.
func FromFace(face font.Face, cs *charmap.Charmap) *Table {
	t := &Table{Charset: cs}
	cs = t.charset()

	baseline := min(Height, face.Metrics().Ascent.Ceil())
	cellRect := image.Rect(0, 0, 8, Height)

	for c := 0x20; c < 256; c++ {
		r := cs.DecodeByte(byte(c))
		adv, ok := face.GlyphAdvance(r)
		if !ok {
			continue
		}

		img := image.NewGray(cellRect)
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(color.White),
			Face: face,
			Dot:  fixed.P(0, baseline),
		}
		d.DrawString(string(r))

		g := Glyph{W: uint8(min(8, max(0, adv.Ceil())))}
		for x := 0; x < 8; x++ {
			var col byte
			for y := 0; y < Height; y++ {
				if img.GrayAt(x, y).Y >= 0x80 {
					col |= 0x80 >> uint(y)
				}
			}
			g.Image[x] = col
		}
		t.Glyphs[c] = g
	}
	return t
}

// Bitmap returns glyph c as a standalone bitmap of its advance width.
func (t *Table) Bitmap(c byte) *image1bit.Bitmap {
	return t.Render([]byte{c})
}
