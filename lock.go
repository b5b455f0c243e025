package ssd1306

import (
	"time"

	"github.com/flavioheleno/ssd1306/geom"
)

// Frame is the held device lock. Its methods mutate the raster directly and
// never lock again, so several of them form one atomic update:
//
//	f, err := dev.Acquire()
//	if err != nil {
//		return err
//	}
//	f.Clear(nil)
//	f.Text(nil, "%d°C", temp)
//	return f.Release()
//
// A Frame must be released by the goroutine that acquired it and must not be
// used afterwards.
type Frame struct {
	d       *Dev
	pending *geom.Bounds
}

// Acquire takes the device lock, waiting at most Opts.LockTimeout.
func (d *Dev) Acquire() (*Frame, error) {
	if d.halted() {
		return nil, ErrHalted
	}
	t := time.NewTimer(d.lockTimeout)
	defer t.Stop()
	select {
	case d.sem <- struct{}{}:
		return &Frame{d: d}, nil
	case <-t.C:
		d.log.Warn("cannot acquire device", "after", d.lockTimeout)
		return nil, ErrTimeout
	case <-d.stop:
		return nil, ErrHalted
	}
}

// Release unlocks the device, then queues the damage collected while the
// frame was held. It blocks until the update worker takes the request.
func (f *Frame) Release() error {
	d := f.dev()
	pending := f.pending
	f.d, f.pending = nil, nil
	<-d.sem
	if pending == nil {
		return nil
	}
	return d.post(*pending)
}

func (f *Frame) dev() *Dev {
	if f.d == nil {
		panic("ssd1306: use of released frame")
	}
	return f.d
}

// merge adds b to the damage sent on Release.
func (f *Frame) merge(b *geom.Bounds) {
	if f.pending == nil {
		c := *b
		f.pending = &c
		return
	}
	f.pending.Union(b)
}

// with runs fn on a frame and releases it.
func (d *Dev) with(fn func(f *Frame)) (err error) {
	f, err := d.Acquire()
	if err != nil {
		return err
	}
	defer func() {
		if rerr := f.Release(); err == nil {
			err = rerr
		}
	}()
	fn(f)
	return nil
}
