package ssd1306

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/spi"

	"github.com/flavioheleno/ssd1306/font"
	"github.com/flavioheleno/ssd1306/geom"
	"github.com/flavioheleno/ssd1306/image1bit"
	"github.com/flavioheleno/ssd1306/link"
)

var (
	// ErrTimeout is returned when the device lock could not be taken within
	// Opts.LockTimeout. The raster is left untouched.
	ErrTimeout = errors.New("ssd1306: lock timeout")
	// ErrHalted is returned by every operation after Halt.
	ErrHalted = errors.New("ssd1306: halted")
)

// Opts is the configuration for the SSD1306 display.
type Opts struct {
	// Display dimensions in pixels
	W int // Width (default: 128, at most 128)
	H int // Height (default: 64, multiple of 8, at most 64)

	Flip     bool  // 180° rotation
	Invert   bool  // Lit pixels dark
	Contrast uint8 // Zero selects 0x7F; use SetContrast for 0

	// Glyph table used by Text and Status (default: font.Default)
	Font *font.Table

	LockTimeout time.Duration // Default: 1s
	Tick        time.Duration // Status scroll period (default: 1000/30 ms)
	ScrollDelay time.Duration // Pause between status scrolls (default: 2.5s)

	// Optional hardware reset pin
	RST gpio.PinOut

	// Logger receives driver diagnostics. Nil discards them.
	Logger *slog.Logger
}

// DefaultOpts is used when nil is passed to a constructor.
var DefaultOpts = Opts{
	W:           128,
	H:           64,
	Contrast:    0x7F,
	LockTimeout: time.Second,
	Tick:        time.Second / 30,
	ScrollDelay: 2500 * time.Millisecond,
}

const resetPulse = 10 * time.Millisecond

// Dev is the device handle for the SSD1306 display.
type Dev struct {
	t    link.Transport
	log  *slog.Logger
	rect geom.Bounds
	font *font.Table
	flip bool

	lockTimeout time.Duration
	tick        time.Duration
	scrollDelay time.Duration
	now         func() time.Time

	// sem is the device lock. It guards raster, slots and the transport.
	sem    chan struct{}
	raster *image1bit.Bitmap
	slots  [2]slot

	// mu guards the deferred update state.
	mu         sync.Mutex
	deferCount int
	dirty      *geom.Bounds

	queue    chan geom.Bounds
	wake     chan struct{} // a status line started scrolling
	stop     chan struct{}
	done     chan struct{}
	haltOnce sync.Once
}

// NewI2C returns a device driving the controller at addr on bus. A zero addr
// selects link.DefaultI2CAddr.
func NewI2C(bus i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	if addr == 0 {
		addr = link.DefaultI2CAddr
	}
	return New(link.NewI2C(bus, addr), opts)
}

// NewSPI returns a device on a 4-wire SPI port with dc as the D/C# pin.
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	t, err := link.NewSPI(p, dc, 0)
	if err != nil {
		return nil, fmt.Errorf("ssd1306: %w", err)
	}
	return New(t, opts)
}

// New initialises the controller behind t and starts the update worker.
//
// It returns once the worker is running and a full panel flush is queued.
// opts can be nil to use DefaultOpts.
func New(t link.Transport, opts *Opts) (*Dev, error) {
	o, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	d := &Dev{
		t:           t,
		log:         o.Logger.With("dev", t.String()),
		rect:        geom.Bounds{X1: o.W, Y1: o.H},
		font:        o.Font,
		flip:        o.Flip,
		lockTimeout: o.LockTimeout,
		tick:        o.Tick,
		scrollDelay: o.ScrollDelay,
		now:         time.Now,
		sem:         make(chan struct{}, 1),
		raster:      image1bit.New(geom.Size{W: o.W, H: o.H}),
		queue:       make(chan geom.Bounds, 1),
		wake:        make(chan struct{}, 1),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	for i := range d.slots {
		d.slots[i].bounds = d.slotBounds(i)
	}

	if o.RST != nil {
		if err := link.Reset(o.RST, resetPulse); err != nil {
			return nil, fmt.Errorf("ssd1306: %w", err)
		}
	}
	if err := d.t.Send(link.Command, initCommands(&o)); err != nil {
		return nil, fmt.Errorf("ssd1306: init: %w", err)
	}

	ready := make(chan struct{})
	go d.run(ready)
	<-ready

	d.log.Info("initialised", "size", d.rect.Size(), "flip", d.flip)
	if err := d.post(d.rect); err != nil {
		return nil, err
	}
	return d, nil
}

func (o *Opts) withDefaults() (Opts, error) {
	if o == nil {
		o = &DefaultOpts
	}
	r := *o
	if r.W == 0 {
		r.W = DefaultOpts.W
	}
	if r.H == 0 {
		r.H = DefaultOpts.H
	}
	if r.W < 0 || r.W > 128 {
		return r, errors.New("ssd1306: width must be between 1 and 128")
	}
	if r.H < 0 || r.H > 64 || r.H%image1bit.PageHeight != 0 {
		return r, errors.New("ssd1306: height must be a multiple of 8 between 8 and 64")
	}
	if r.Contrast == 0 {
		r.Contrast = DefaultOpts.Contrast
	}
	if r.Font == nil {
		r.Font = font.Default
	}
	if r.LockTimeout <= 0 {
		r.LockTimeout = DefaultOpts.LockTimeout
	}
	if r.Tick <= 0 {
		r.Tick = DefaultOpts.Tick
	}
	if r.ScrollDelay <= 0 {
		r.ScrollDelay = DefaultOpts.ScrollDelay
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.DiscardHandler)
	}
	return r, nil
}

// initCommands returns the power-on command sequence.
func initCommands(o *Opts) []byte {
	remap, scan := byte(0xA1), byte(0xC8)
	if o.Flip {
		remap, scan = 0xA0, 0xC0
	}
	comPins := byte(0x02)
	if o.H == 64 {
		comPins = 0x12
	}
	mode := byte(0xA6)
	if o.Invert {
		mode = 0xA7
	}
	return []byte{
		0xAE,                // Display OFF
		0xA8, byte(o.H - 1), // MUX ratio
		remap,               // Segment remap
		scan,                // COM scan direction
		0xD5, 0x80,          // Clock divider and oscillator frequency
		0xDA, comPins,       // COM pins configuration
		0xDB, 0x40,          // VCOMH deselect level
		0x8D, 0x14,          // Charge pump on
		0xD9, 0xF1,          // Pre-charge period
		0xA4,                // Resume to RAM content
		0xD3, 0x00,          // Display offset
		0x40,                // Start line
		0x20, 0x00,          // Horizontal addressing mode
		0x2E,                // Deactivate scroll
		0x81, o.Contrast,    // Contrast
		mode,                // Normal or inverse display
		0xAF,                // Display ON
	}
}

// command sends cmds under the device lock.
func (d *Dev) command(cmds ...byte) error {
	f, err := d.Acquire()
	if err != nil {
		return err
	}
	err = d.t.Send(link.Command, cmds)
	if rerr := f.Release(); err == nil {
		err = rerr
	}
	if err != nil {
		return fmt.Errorf("ssd1306: command %02X: %w", cmds[0], err)
	}
	return nil
}

// On switches the panel on or off. GDDRAM is kept while off.
func (d *Dev) On(on bool) error {
	if on {
		return d.command(0xAF)
	}
	return d.command(0xAE)
}

// Invert inverts the display colors (black becomes white and vice versa).
func (d *Dev) Invert(invert bool) error {
	mode := byte(0xA6) // Normal display
	if invert {
		mode = 0xA7 // Inverted display
	}
	return d.command(mode)
}

// SetContrast sets the display contrast (0-255).
func (d *Dev) SetContrast(contrast uint8) error {
	return d.command(0x81, contrast)
}

// Halt stops the update worker and powers off the display.
// Every other operation returns ErrHalted afterwards.
//
// A worker stuck in the transport cannot stop. Halt waits for it at most
// Opts.LockTimeout, then returns ErrTimeout with the display left on.
func (d *Dev) Halt() error {
	first := false
	d.haltOnce.Do(func() {
		first = true
		close(d.stop)
	})
	if !first {
		return nil
	}

	t := time.NewTimer(d.lockTimeout)
	defer t.Stop()
	select {
	case <-d.done:
	case <-t.C:
		d.log.Warn("halt: worker stalled, display left on", "after", d.lockTimeout)
		return ErrTimeout
	}

	select {
	case d.sem <- struct{}{}:
	case <-t.C:
		d.log.Warn("halt: lock timeout, display left on", "after", d.lockTimeout)
		return ErrTimeout
	}
	defer func() { <-d.sem }()

	d.log.Info("halted")
	if err := d.t.Send(link.Command, []byte{0xAE}); err != nil {
		return fmt.Errorf("ssd1306: halt: %w", err)
	}
	return nil
}

func (d *Dev) halted() bool {
	select {
	case <-d.stop:
		return true
	default:
		return false
	}
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("ssd1306.Dev{%s, %dx%d}", d.t, d.rect.Width(), d.rect.Height())
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect.Rect()
}

// Rect returns the panel bounds.
func (d *Dev) Rect() geom.Bounds {
	return d.rect
}

// Draw thresholds the dst region of src, starting at sp, and draws it at
// dst. It implements display.Drawer.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	r := dst.Intersect(d.Bounds())
	if r.Empty() {
		return nil
	}
	bm := image1bit.Convert(src, r, sp.Add(r.Min.Sub(dst.Min)))
	target := geom.FromRect(r)
	return d.DrawBitmap(&target, bm, nil)
}

// Snapshot returns a copy of the raster.
func (d *Dev) Snapshot() (*image1bit.Bitmap, error) {
	f, err := d.Acquire()
	if err != nil {
		return nil, err
	}
	bm := d.raster.Clone()
	return bm, f.Release()
}
