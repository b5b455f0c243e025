package ssd1306

import (
	"context"
	"encoding/hex"
	"log/slog"
	"math/bits"
	"time"

	"github.com/flavioheleno/ssd1306/geom"
	"github.com/flavioheleno/ssd1306/image1bit"
	"github.com/flavioheleno/ssd1306/link"
)

// notify records a raster change. The device lock must be held.
func (f *Frame) notify(changed geom.Bounds) {
	if b := f.dev().damage(changed); b != nil {
		f.merge(b)
	}
}

// damage accumulates changed while updates are deferred and returns nil.
// Otherwise it returns changed together with any damage left over from the
// last deferral.
func (d *Dev) damage(changed geom.Bounds) *geom.Bounds {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.deferCount > 0 {
		if d.dirty == nil {
			d.dirty = &changed
		} else {
			d.dirty.Union(&changed)
		}
		return nil
	}
	if d.dirty != nil {
		changed.Union(d.dirty)
		d.dirty = nil
	}
	return &changed
}

// AutoUpdate(false) suspends panel updates, AutoUpdate(true) resumes them.
// Calls nest: updates flow again once every AutoUpdate(false) is matched,
// and the damage collected meanwhile is flushed once. An unmatched
// AutoUpdate(true) panics.
//
// Do not call it while holding a Frame; use Frame.AutoUpdate instead.
func (d *Dev) AutoUpdate(on bool) error {
	if d.halted() {
		return ErrHalted
	}
	if b := d.autoUpdate(on); b != nil {
		return d.post(*b)
	}
	return nil
}

// AutoUpdate is Dev.AutoUpdate for a held frame. Pending damage is flushed
// on Release.
func (f *Frame) AutoUpdate(on bool) {
	if b := f.dev().autoUpdate(on); b != nil {
		f.merge(b)
	}
}

func (d *Dev) autoUpdate(on bool) *geom.Bounds {
	d.mu.Lock()
	defer d.mu.Unlock()
	if on {
		d.deferCount--
	} else {
		d.deferCount++
	}
	if d.deferCount < 0 {
		d.deferCount = 0
		panic("ssd1306: unbalanced AutoUpdate(true)")
	}
	if d.deferCount > 0 || d.dirty == nil {
		return nil
	}
	b := d.dirty
	d.dirty = nil
	return b
}

// Update flushes the whole panel, whether or not updates are suspended.
func (d *Dev) Update() error {
	if d.halted() {
		return ErrHalted
	}
	d.mu.Lock()
	d.dirty = nil
	d.mu.Unlock()
	return d.post(d.rect)
}

// post hands b to the worker. It blocks while the worker is busy with the
// previous request; a stalled transport therefore stalls every producer.
func (d *Dev) post(b geom.Bounds) error {
	if d.halted() {
		return ErrHalted
	}
	select {
	case d.queue <- b:
		return nil
	case <-d.stop:
		return ErrHalted
	}
}

// run is the update worker. It flushes queued regions and, while a status
// slot scrolls, advances the animation every tick.
func (d *Dev) run(ready chan<- struct{}) {
	defer close(d.done)

	ticker := time.NewTicker(d.tick)
	ticker.Stop()
	defer ticker.Stop()
	animating := false

	close(ready)
	for {
		var tick <-chan time.Time
		if animating {
			tick = ticker.C
		}

		var region *geom.Bounds
		select {
		case <-d.stop:
			return
		case b := <-d.queue:
			region = &b
		case <-d.wake:
		case <-tick:
		}

		select {
		case d.sem <- struct{}{}:
		case <-d.stop:
			return
		}
		scrolling := d.refresh(region)
		<-d.sem

		switch {
		case scrolling && !animating:
			ticker.Reset(d.tick)
		case !scrolling && animating:
			ticker.Stop()
		}
		animating = scrolling
	}
}

// refresh steps the status slots and flushes region together with any slot
// that moved. It reports whether a slot is still scrolling. The device lock
// must be held.
func (d *Dev) refresh(region *geom.Bounds) bool {
	now := d.now()
	scrolling := false
	for i := range d.slots {
		s := &d.slots[i]
		if s.step(now, d.scrollDelay) {
			d.redraw(s)
			if b := d.damage(s.bounds); b != nil {
				if region == nil {
					region = b
				} else {
					region.Union(b)
				}
			}
		}
		scrolling = scrolling || s.bitmap != nil
	}
	if region != nil {
		d.flush(*region)
	}
	return scrolling
}

// flush sends the raster bytes covering r. Whole pages are sent, as the
// controller cannot address single rows. The device lock must be held.
func (d *Dev) flush(r geom.Bounds) {
	if !r.Intersect(&d.rect) {
		d.log.Debug("flush not visible", "bounds", r)
		return
	}
	p0, p1 := r.Y0/image1bit.PageHeight, image1bit.Pages(r.Y1)
	cmds := []byte{
		0x21, byte(r.X0), byte(r.X1 - 1), // Column address
		0x22, byte(p0), byte(p1 - 1),     // Page address
	}

	data := make([]byte, 0, r.Width()*(p1-p0))
	for p := p0; p < p1; p++ {
		for _, v := range d.raster.Page(p)[r.X0:r.X1] {
			data = append(data, bits.Reverse8(v))
		}
	}

	if d.log.Enabled(context.Background(), slog.LevelDebug) {
		d.log.Debug("flush", "bounds", r, "cmd", hex.EncodeToString(cmds), "data", hex.EncodeToString(data))
	}
	if err := d.t.Send(link.Command, cmds); err != nil {
		d.log.Error("flush: address window", "bounds", r, "err", err)
		return
	}
	if err := d.t.Send(link.Data, data); err != nil {
		d.log.Error("flush: raster", "bounds", r, "err", err)
	}
}
