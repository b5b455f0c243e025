package ssd1306

import (
	"fmt"
	"time"

	"github.com/flavioheleno/ssd1306/geom"
	"github.com/flavioheleno/ssd1306/image1bit"
)

// Slot selects one of the two status lines.
type Slot int

const (
	Status0 Slot = iota // First line, top of the panel unless flipped
	Status1
	StatusExt // The line next to the panel edge, whatever the orientation
	StatusInt // The inner line
)

type animState int

const (
	stateInit animState = iota
	stateWait
	stateMove
)

// slot is a status line. It owns bitmap only while its text is wider than
// the panel and scrolls.
type slot struct {
	bounds geom.Bounds
	state  animState
	bitmap *image1bit.Bitmap
	offset int
	since  time.Time
}

// step advances the scroll animation to now and reports whether the slot
// must be redrawn.
func (s *slot) step(now time.Time, delay time.Duration) bool {
	if s.bitmap == nil {
		return false
	}
	switch s.state {
	case stateInit:
		s.offset = 0
		s.since = now
		s.state = stateWait
		return false
	case stateWait:
		if now.Sub(s.since) < delay {
			return false
		}
		s.since = now
		s.state = stateMove
		fallthrough
	case stateMove:
		s.offset--
		if s.offset <= -s.bitmap.W {
			s.offset = 0
		}
		if s.offset == 0 {
			s.since = now
			s.state = stateWait
		}
		return true
	}
	return false
}

// redraw paints the slot bitmap at its scroll offset, followed by a second
// copy filling the gap on the right. The device lock must be held.
func (d *Dev) redraw(s *slot) {
	image1bit.Clear(d.raster, s.bounds)
	r := geom.Rect(s.offset, s.bounds.Y0, s.bitmap.W, s.bitmap.H)
	image1bit.Draw(d.raster, r, s.bitmap, geom.Point{})
	r.MoveBy(geom.Point{X: s.bitmap.W})
	image1bit.Draw(d.raster, r, s.bitmap, geom.Point{})
}

func mustSlot(s Slot) {
	if s < Status0 || s > StatusInt {
		panic(fmt.Sprintf("ssd1306: invalid status slot %d", s))
	}
}

func (d *Dev) slotIndex(s Slot) int {
	mustSlot(s)
	if s < StatusExt {
		return int(s)
	}
	i := int(s - StatusExt)
	if d.flip {
		return 1 - i
	}
	return i
}

func (d *Dev) slotBounds(i int) geom.Bounds {
	y := i * LineHeight
	if d.flip {
		y = d.rect.Height() - LineHeight*(2-i)
	}
	return geom.Rect(0, y, d.rect.Width(), LineHeight)
}

// StatusBounds returns the rectangle of status line s.
func (d *Dev) StatusBounds(s Slot) geom.Bounds {
	return d.slots[d.slotIndex(s)].bounds
}

// Status replaces the text of status line s. An empty format clears it.
// Text wider than the panel scrolls after a pause of Opts.ScrollDelay.
func (f *Frame) Status(s Slot, format string, args ...any) {
	d := f.dev()
	sl := &d.slots[d.slotIndex(s)]
	sl.bitmap = nil
	sl.state = stateInit

	f.Clear(&sl.bounds)
	if format == "" {
		return
	}
	bm := d.TextBitmap(format, args...)
	r := sl.bounds
	f.DrawBitmap(&r, bm, nil)

	if bm.W > d.rect.Width() {
		sl.bitmap = bm
		sl.offset = 0
		select {
		case d.wake <- struct{}{}:
		default:
		}
	}
}

// Status is Frame.Status under its own lock.
func (d *Dev) Status(s Slot, format string, args ...any) error {
	mustSlot(s)
	return d.with(func(f *Frame) { f.Status(s, format, args...) })
}
