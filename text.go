package ssd1306

import (
	"fmt"

	"github.com/flavioheleno/ssd1306/font"
	"github.com/flavioheleno/ssd1306/geom"
	"github.com/flavioheleno/ssd1306/image1bit"
)

// Separator is appended to text wider than the panel, so the scrolling copy
// is visibly apart from the start of the next one.
const Separator = " • "

// TextWidth returns the pixel width of text in the device font.
func (d *Dev) TextWidth(text string) int {
	return d.font.Width(d.font.Encode(text))
}

// TextBitmap formats its arguments and renders the result one glyph row
// high. Text wider than the panel ends with Separator. font.Invert in the
// text toggles inverted glyphs.
func (d *Dev) TextBitmap(format string, args ...any) *image1bit.Bitmap {
	text := d.font.Encode(fmt.Sprintf(format, args...))
	if d.font.Width(text) > d.rect.Width() {
		text = append(text, d.font.Encode(Separator)...)
	}
	return d.font.Render(text)
}

// Text renders the formatted text at target, the panel origin when nil.
func (f *Frame) Text(target *geom.Bounds, format string, args ...any) {
	f.DrawBitmap(target, f.dev().TextBitmap(format, args...), nil)
}

// Text is Frame.Text under its own lock.
func (d *Dev) Text(target *geom.Bounds, format string, args ...any) error {
	bm := d.TextBitmap(format, args...)
	return d.with(func(f *Frame) { f.DrawBitmap(target, bm, nil) })
}

// LineHeight is the height of rendered text.
const LineHeight = font.Height
