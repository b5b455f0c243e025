package ssd1306

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/flavioheleno/ssd1306/geom"
	"github.com/flavioheleno/ssd1306/link"
	"github.com/flavioheleno/ssd1306/panelsim"
)

// gatedLink forwards to a panel, holding every data stream until the test
// lets it through.
type gatedLink struct {
	*panelsim.Panel
	entered  chan struct{}
	gate     chan struct{}
	openOnce sync.Once
}

func (l *gatedLink) Send(k link.Kind, b []byte) error {
	if k == link.Data {
		l.entered <- struct{}{}
		<-l.gate
	}
	return l.Panel.Send(k, b)
}

// open lets every pending and future data stream through.
func (l *gatedLink) open() {
	l.openOnce.Do(func() { close(l.gate) })
}

func (l *gatedLink) waitEntered(t *testing.T) {
	t.Helper()
	select {
	case <-l.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never reached the transport")
	}
}

// newGatedDev returns a device whose initial flush has gone through, with
// the gate closed again.
func newGatedDev(t *testing.T, opts *Opts) (*Dev, *gatedLink) {
	t.Helper()
	l := &gatedLink{
		Panel:   panelsim.New(geom.Size{W: 128, H: 64}),
		entered: make(chan struct{}, 64),
		gate:    make(chan struct{}),
	}
	d, err := New(l, opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		l.open()
		d.Halt()
	})
	l.waitEntered(t)
	l.gate <- struct{}{}
	waitFlush(t, l.Panel)
	return d, l
}

func TestQueueBackPressure(t *testing.T) {
	d, l := newGatedDev(t, &Opts{LockTimeout: 5 * time.Second})

	// Stall the worker inside a flush; it holds the device lock meanwhile.
	if err := d.Update(); err != nil {
		t.Fatal(err)
	}
	l.waitEntered(t)

	updates := make(chan error, 3)
	for i := 0; i < 3; i++ {
		go func() { updates <- d.Update() }()
	}
	clears := make(chan error, 1)
	go func() { clears <- d.Clear(nil) }()

	// The queue holds one request; the other producers wait for the worker.
	select {
	case err := <-updates:
		if err != nil {
			t.Fatalf("queued Update() = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no producer got into the queue")
	}
	select {
	case err := <-updates:
		t.Fatalf("second Update() returned %v while the worker is stalled", err)
	case err := <-clears:
		t.Fatalf("Clear() returned %v while the worker holds the lock", err)
	case <-time.After(100 * time.Millisecond):
	}

	halted := make(chan error, 1)
	go func() { halted <- d.Halt() }()

	for i := 0; i < 2; i++ {
		select {
		case err := <-updates:
			if !errors.Is(err, ErrHalted) {
				t.Errorf("blocked Update() = %v, want ErrHalted", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Update() still blocked after Halt")
		}
	}
	select {
	case err := <-clears:
		if !errors.Is(err, ErrHalted) {
			t.Errorf("blocked Clear() = %v, want ErrHalted", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Clear() still blocked after Halt")
	}

	l.open()
	select {
	case err := <-halted:
		if err != nil {
			t.Errorf("Halt() = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Halt() did not return once the transport recovered")
	}
}

func TestHaltWithStalledTransport(t *testing.T) {
	d, l := newGatedDev(t, &Opts{LockTimeout: 50 * time.Millisecond})

	if err := d.Update(); err != nil {
		t.Fatal(err)
	}
	l.waitEntered(t)

	start := time.Now()
	if err := d.Halt(); !errors.Is(err, ErrTimeout) {
		t.Errorf("Halt() = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Halt() took %v", elapsed)
	}
	if err := d.Clear(nil); !errors.Is(err, ErrHalted) {
		t.Errorf("Clear() after Halt = %v, want ErrHalted", err)
	}
}

func TestConcurrentProducers(t *testing.T) {
	d, p := newTestDev(t, &Opts{Tick: 2 * time.Millisecond, ScrollDelay: 5 * time.Millisecond})

	if err := d.Status(StatusExt, "%s", strings.Repeat("busy ", 10)); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bm := pattern(geom.Size{W: 9 + g, H: 5 + g})
			for i := 0; i < 20; i++ {
				r := geom.Rect((g*17+i*5)%140-6, (g*7+i*3)%70-3, bm.W, bm.H)
				corner := geom.Rect(r.X0, r.Y0, 3, 3)
				var err error
				switch i % 4 {
				case 0:
					err = d.DrawBitmap(&r, bm, nil)
				case 1:
					err = d.Clear(&r)
				case 2:
					d.AutoUpdate(false)
					d.DrawBitmap(&r, bm, nil)
					d.AutoUpdate(false)
					d.Clear(&corner)
					d.AutoUpdate(true)
					err = d.AutoUpdate(true)
				case 3:
					var f *Frame
					if f, err = d.Acquire(); err == nil {
						f.AutoUpdate(false)
						f.DrawBitmap(&r, bm, nil)
						f.Clear(&corner)
						f.AutoUpdate(true)
						err = f.Release()
					}
				}
				if err != nil {
					t.Errorf("producer %d step %d: %v", g, i, err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if err := d.Status(StatusExt, ""); err != nil {
		t.Fatal(err)
	}

	d.mu.Lock()
	count := d.deferCount
	d.mu.Unlock()
	if count != 0 {
		t.Fatalf("deferCount = %d after balanced calls", count)
	}

	deadline := time.After(2 * time.Second)
	for {
		snap, err := d.Snapshot()
		if err != nil {
			t.Fatal(err)
		}
		if p.Image().Equal(snap) {
			break
		}
		select {
		case <-p.Written():
		case <-time.After(20 * time.Millisecond):
		case <-deadline:
			t.Fatal("panel never caught up with the raster")
		}
	}
}
