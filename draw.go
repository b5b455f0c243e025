package ssd1306

import (
	"fmt"
	"math/rand/v2"

	"github.com/flavioheleno/ssd1306/geom"
	"github.com/flavioheleno/ssd1306/image1bit"
)

// trim shrinks r to at most size and clips it to the panel. It reports
// false when nothing is left.
func (d *Dev) trim(r geom.Bounds, size geom.Size) (geom.Bounds, bool) {
	r.Resize(geom.Size{W: min(r.Width(), size.W), H: min(r.Height(), size.H)})
	return geom.Intersection(r, d.rect)
}

// origin returns *r, or the panel rectangle when r is nil. Corrupted bounds
// panic.
func (d *Dev) origin(r *geom.Bounds) geom.Bounds {
	if r == nil {
		return d.rect
	}
	mustValid(*r)
	return *r
}

func mustValid(r geom.Bounds) {
	if r.X0 > r.X1 || r.Y0 > r.Y1 {
		panic(fmt.Sprintf("ssd1306: corrupted bounds %v", r))
	}
}

func mustBitmap(bm *image1bit.Bitmap) {
	if bm == nil {
		panic("ssd1306: nil bitmap")
	}
}

// Clear switches off every pixel inside r, or the whole panel when r is nil.
func (f *Frame) Clear(r *geom.Bounds) {
	d := f.dev()
	b, ok := image1bit.Clear(d.raster, d.origin(r))
	if !ok {
		d.log.Debug("clear not visible", "bounds", b)
		return
	}
	f.notify(b)
}

// DrawBitmap copies the source region of bm (all of it when source is nil)
// to target. A nil target places the bitmap at the panel origin. The copy is
// limited to the smaller of target and source.
func (f *Frame) DrawBitmap(target *geom.Bounds, bm *image1bit.Bitmap, source *geom.Bounds) {
	d := f.dev()
	mustBitmap(bm)

	src := bm.Rect()
	if source != nil {
		src = d.origin(source)
	}
	dst := src
	dst.MoveTo(geom.Point{})
	if target != nil {
		dst = d.origin(target)
	}

	r, ok := d.trim(dst, src.Size())
	if ok {
		// Clipping the left or top edge moves the source origin along.
		sp := geom.Point{X: src.X0 + r.X0 - dst.X0, Y: src.Y0 + r.Y0 - dst.Y0}
		r, ok = image1bit.Draw(d.raster, r, bm, sp)
	}
	if !ok {
		d.log.Debug("draw not visible", "target", dst, "source", src)
		return
	}
	f.notify(r)
}

// Grab copies the panel region at source into bm. A nil source grabs from
// the panel origin. Pixels outside the panel are left untouched in bm.
func (f *Frame) Grab(source *geom.Bounds, bm *image1bit.Bitmap) {
	d := f.dev()
	mustBitmap(bm)

	src := bm.Rect()
	if source != nil {
		src = d.origin(source)
	}
	r, ok := d.trim(src, bm.Size())
	if ok {
		dst := r
		dst.MoveBy(geom.Point{X: -src.X0, Y: -src.Y0})
		_, ok = image1bit.Draw(bm, dst, d.raster, r.Origin())
	}
	if !ok {
		d.log.Debug("grab not visible", "source", src)
	}
}

// CenterBounds returns a rectangle of the given size centered on the panel.
func (d *Dev) CenterBounds(size geom.Size) geom.Bounds {
	return geom.Rect((d.rect.Width()-size.W)/2, (d.rect.Height()-size.H)/2, size.W, size.H)
}

// DrawCentered draws bm in the middle of the panel.
func (f *Frame) DrawCentered(bm *image1bit.Bitmap) {
	mustBitmap(bm)
	r := f.dev().CenterBounds(bm.Size())
	f.DrawBitmap(&r, bm, nil)
}

// GrabCentered fills bm from the middle of the panel.
func (f *Frame) GrabCentered(bm *image1bit.Bitmap) {
	mustBitmap(bm)
	r := f.dev().CenterBounds(bm.Size())
	f.Grab(&r, bm)
}

// FillRandom sets every pixel inside r to a random value.
func (f *Frame) FillRandom(r *geom.Bounds) {
	d := f.dev()
	b, ok := d.trim(d.origin(r), d.rect.Size())
	if !ok {
		d.log.Debug("fill not visible", "bounds", b)
		return
	}
	bm := image1bit.New(b.Size())
	for i := range bm.Pix {
		bm.Pix[i] = byte(rand.Uint32())
	}
	f.DrawBitmap(&b, bm, nil)
}

// Raster returns page p of the raster for direct writes. Call Touch with
// the modified region once done.
func (f *Frame) Raster(p int) []byte {
	d := f.dev()
	if p < 0 || p >= d.raster.Pages() {
		panic(fmt.Sprintf("ssd1306: raster page %d outside [0,%d)", p, d.raster.Pages()))
	}
	return d.raster.Page(p)
}

// Touch marks r as changed.
func (f *Frame) Touch(r geom.Bounds) {
	d := f.dev()
	if !r.Intersect(&d.rect) {
		return
	}
	f.notify(r)
}

// Clear switches off every pixel inside r, or the whole panel when r is nil.
func (d *Dev) Clear(r *geom.Bounds) error {
	return d.with(func(f *Frame) { f.Clear(r) })
}

// DrawBitmap is Frame.DrawBitmap under its own lock.
func (d *Dev) DrawBitmap(target *geom.Bounds, bm *image1bit.Bitmap, source *geom.Bounds) error {
	mustBitmap(bm)
	return d.with(func(f *Frame) { f.DrawBitmap(target, bm, source) })
}

// Grab is Frame.Grab under its own lock.
func (d *Dev) Grab(source *geom.Bounds, bm *image1bit.Bitmap) error {
	mustBitmap(bm)
	return d.with(func(f *Frame) { f.Grab(source, bm) })
}

// DrawCentered is Frame.DrawCentered under its own lock.
func (d *Dev) DrawCentered(bm *image1bit.Bitmap) error {
	mustBitmap(bm)
	return d.with(func(f *Frame) { f.DrawCentered(bm) })
}

// GrabCentered is Frame.GrabCentered under its own lock.
func (d *Dev) GrabCentered(bm *image1bit.Bitmap) error {
	mustBitmap(bm)
	return d.with(func(f *Frame) { f.GrabCentered(bm) })
}

// FillRandom is Frame.FillRandom under its own lock.
func (d *Dev) FillRandom(r *geom.Bounds) error {
	return d.with(func(f *Frame) { f.FillRandom(r) })
}
