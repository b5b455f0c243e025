// Package font holds the fixed 8x8 glyph tables used to render text on a
// page-addressed panel.
//
// A table maps every byte value to a glyph. Go strings are turned into
// bytes through the table's charset, so any rune the code page knows can
// be printed; everything else becomes '?'.
package font

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/flavioheleno/ssd1306/geom"
	"github.com/flavioheleno/ssd1306/image1bit"
)

// Height is the pixel height of every glyph and of rendered text.
const Height = 8

// Invert toggles inverted rendering of the following glyphs. It takes no
// width.
const Invert = '\x01'

// Glyph is one 8x8 character cell. Image holds one byte per column in the
// image1bit page layout (bit 7 = top row); W is the advance width.
type Glyph struct {
	W     uint8
	Image [8]byte
}

// Table is an immutable 256 entry glyph table.
type Table struct {
	Glyphs  [256]Glyph
	Charset *charmap.Charmap // nil means Windows-1252
}

func (t *Table) charset() *charmap.Charmap {
	if t.Charset == nil {
		return charmap.Windows1252
	}
	return t.Charset
}

// Encode converts s to glyph indexes. Runes missing from the charset are
// replaced by '?'.
func (t *Table) Encode(s string) []byte {
	cs := t.charset()
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r == utf8.RuneError {
			out = append(out, '?')
			continue
		}
		b, ok := cs.EncodeRune(r)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	return out
}

// Width returns the pixel width of the encoded text.
func (t *Table) Width(text []byte) int {
	w := 0
	for _, c := range text {
		if c == Invert {
			continue
		}
		w += int(t.Glyphs[c].W)
	}
	return w
}

// Render composes the encoded text into a bitmap Width(text) pixels wide
// and Height pixels tall.
func (t *Table) Render(text []byte) *image1bit.Bitmap {
	bm := image1bit.New(geom.Size{W: t.Width(text), H: Height})
	invert := false
	offset := 0
	for _, c := range text {
		if c == Invert {
			invert = !invert
			continue
		}
		g := &t.Glyphs[c]
		for k := 0; k < int(g.W); k++ {
			v := g.Image[k]
			if invert {
				v = ^v
			}
			bm.Pix[offset+k] = v
		}
		offset += int(g.W)
	}
	return bm
}
