package image1bit

import (
	"github.com/flavioheleno/ssd1306/geom"
)

// combineFunc merges a source byte into a destination byte. Rows set in
// keep belong to the destination and must survive.
type combineFunc func(d, s, keep byte) byte

func copyBits(d, s, keep byte) byte {
	return d&keep | s&^keep
}

func clearBits(d, _, keep byte) byte {
	return d & keep
}

// Draw copies src, starting at sp, into the r region of dst.
//
// r is clipped against dst and against src placed so that sp lands on r's
// origin; the clipped rectangle is returned together with whether anything
// was drawn. Vertical offsets need not be page aligned.
func Draw(dst *Bitmap, r geom.Bounds, src *Bitmap, sp geom.Point) (geom.Bounds, bool) {
	if dst == nil || src == nil {
		panic("image1bit: nil bitmap")
	}
	if dst == src {
		panic("image1bit: source and destination alias")
	}
	dx, dy := r.X0-sp.X, r.Y0-sp.Y
	sr := src.Rect()
	sr.MoveBy(geom.Point{X: dx, Y: dy})
	dr := dst.Rect()
	if !r.Intersect(&dr) || !r.Intersect(&sr) {
		return r, false
	}
	blit(dst, r, src, dx, dy, copyBits)
	return r, true
}

// Clear switches off every pixel of dst inside r and returns the clipped
// rectangle.
func Clear(dst *Bitmap, r geom.Bounds) (geom.Bounds, bool) {
	if dst == nil {
		panic("image1bit: nil bitmap")
	}
	dr := dst.Rect()
	if !r.Intersect(&dr) {
		return r, false
	}
	blit(dst, r, nil, 0, 0, clearBits)
	return r, true
}

// blit walks the destination pages covered by r, which must already be
// clipped to dst and src. Destination pixel (x, y) receives source pixel
// (x-dx, y-dy). A nil src feeds zero bytes.
func blit(dst *Bitmap, r geom.Bounds, src *Bitmap, dx, dy int, op combineFunc) {
	for p := r.Y0 / PageHeight; p*PageHeight < r.Y1; p++ {
		top := p * PageHeight
		keep := ^rowMask(max(r.Y0, top)-top, min(r.Y1, top+PageHeight)-top)
		row := dst.Page(p)[r.X0:r.X1]

		if src == nil {
			for i := range row {
				row[i] = op(row[i], 0, keep)
			}
			continue
		}

		// The first row of this page comes from source row base, which sits
		// at -sBits inside source page sp. The remaining rows spill over from
		// page sp+1.
		base := top - dy
		sp := floorDiv(base, PageHeight)
		sBits := sp*PageHeight - base
		upper := src.pageOrNil(sp)
		lower := src.pageOrNil(sp + 1)

		for i := range row {
			x := r.X0 + i - dx
			var v byte
			if upper != nil {
				v = shiftBits(upper[x], sBits)
			}
			if sBits != 0 && lower != nil {
				v |= shiftBits(lower[x], PageHeight+sBits)
			}
			row[i] = op(row[i], v, keep)
		}
	}
}

// pageOrNil returns page p, or nil when p lies outside the bitmap.
func (b *Bitmap) pageOrNil(p int) []byte {
	if p < 0 || p >= b.Pages() {
		return nil
	}
	return b.Page(p)
}

// shiftBits moves the rows of a page byte. Negative bits move rows up
// (left shift), positive bits move them down (right shift).
func shiftBits(v byte, bits int) byte {
	switch {
	case bits < 0:
		return v << uint(-bits)
	case bits > 0:
		return v >> uint(bits)
	}
	return v
}

// setBits returns the top k rows of a page for k > 0, the bottom -k rows
// for k < 0 and no row for 0.
func setBits(k int) byte {
	switch {
	case k > 0:
		return ^(byte(0xFF) >> uint(k))
	case k < 0:
		return ^(byte(0xFF) << uint(-k))
	}
	return 0
}

// rowMask returns the rows [top, bottom) of a page.
func rowMask(top, bottom int) byte {
	return setBits(bottom) &^ setBits(top)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
