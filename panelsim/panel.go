// Package panelsim emulates an SSD1306 controller in software.
//
// A Panel is a link.Transport: it decodes the command stream the driver
// sends, writes the data stream into its own GDDRAM, and renders the result
// to a terminal through tcell or termenv. Tests use it as the reference the
// driver's raster must agree with.
package panelsim

import (
	"fmt"
	"math/bits"
	"sync"

	"github.com/flavioheleno/ssd1306/geom"
	"github.com/flavioheleno/ssd1306/image1bit"
	"github.com/flavioheleno/ssd1306/link"
)

const (
	modeHorizontal = 0x00
	modeVertical   = 0x01
	modePage       = 0x02
)

// Op is one recorded Send.
type Op struct {
	Kind  link.Kind
	Bytes []byte
}

// Panel is a software SSD1306 with W×H pixels of GDDRAM.
type Panel struct {
	w, h, pages int

	mu       sync.Mutex
	ram      []byte // wire order: bit 0 is the top row of a page
	on       bool
	inverted bool
	scroll   bool
	contrast byte
	mode     byte
	col      [2]int // column window, inclusive
	page     [2]int // page window, inclusive
	x, p     int    // write cursor
	pending  []byte // incomplete command
	ops      []Op
	notify   chan struct{}
}

// New returns a panel of the given size, in the controller's reset state.
func New(size geom.Size) *Panel {
	if size.W <= 0 || size.W > 128 || size.H <= 0 || size.H > 64 || size.H%image1bit.PageHeight != 0 {
		panic(fmt.Sprintf("panelsim: unsupported size %dx%d", size.W, size.H))
	}
	pages := size.H / image1bit.PageHeight
	return &Panel{
		w:        size.W,
		h:        size.H,
		pages:    pages,
		ram:      make([]byte, size.W*pages),
		contrast: 0x7F,
		mode:     modePage,
		col:      [2]int{0, size.W - 1},
		page:     [2]int{0, pages - 1},
		notify:   make(chan struct{}, 1),
	}
}

func (p *Panel) String() string {
	return fmt.Sprintf("panelsim(%dx%d)", p.w, p.h)
}

// Send implements link.Transport.
func (p *Panel) Send(k link.Kind, b []byte) error {
	p.mu.Lock()
	p.ops = append(p.ops, Op{Kind: k, Bytes: append([]byte(nil), b...)})
	switch k {
	case link.Command:
		for _, c := range b {
			p.pending = append(p.pending, c)
			if len(p.pending) > argCount(p.pending[0]) {
				p.exec(p.pending)
				p.pending = p.pending[:0]
			}
		}
	case link.Data:
		for _, v := range b {
			p.write(v)
		}
	}
	p.mu.Unlock()

	if k == link.Data {
		select {
		case p.notify <- struct{}{}:
		default:
		}
	}
	return nil
}

// Written is signalled, without blocking, after each data stream.
func (p *Panel) Written() <-chan struct{} {
	return p.notify
}

// argCount returns the number of parameter bytes following command c.
func argCount(c byte) int {
	switch c {
	case 0x21, 0x22, 0xA3:
		return 2
	case 0x20, 0x81, 0x8D, 0xA8, 0xD3, 0xD5, 0xD9, 0xDA, 0xDB:
		return 1
	case 0x26, 0x27:
		return 6
	case 0x29, 0x2A:
		return 5
	}
	return 0
}

func (p *Panel) exec(cmd []byte) {
	switch c := cmd[0]; {
	case c == 0x20:
		p.mode = cmd[1] & 0x03
	case c == 0x21:
		p.col = [2]int{int(cmd[1] & 0x7F), int(cmd[2] & 0x7F)}
		p.x = p.col[0]
	case c == 0x22:
		p.page = [2]int{int(cmd[1] & 0x07), int(cmd[2] & 0x07)}
		p.p = p.page[0]
	case c == 0x81:
		p.contrast = cmd[1]
	case c == 0xA6, c == 0xA7:
		p.inverted = c == 0xA7
	case c == 0xAE, c == 0xAF:
		p.on = c == 0xAF
	case c == 0x2E, c == 0x2F:
		p.scroll = c == 0x2F
	case c <= 0x0F && p.mode == modePage:
		p.x = p.x&0xF0 | int(c)
	case c >= 0x10 && c <= 0x1F && p.mode == modePage:
		p.x = p.x&0x0F | int(c&0x0F)<<4
	case c >= 0xB0 && c <= 0xB7 && p.mode == modePage:
		p.p = int(c & 0x07)
	}
}

// write stores one data byte at the cursor and advances it the way the
// controller does for the current addressing mode.
func (p *Panel) write(v byte) {
	if p.x < p.w && p.p < p.pages {
		p.ram[p.p*p.w+p.x] = v
	}
	switch p.mode {
	case modeHorizontal:
		if p.x++; p.x > p.col[1] {
			p.x = p.col[0]
			if p.p++; p.p > p.page[1] {
				p.p = p.page[0]
			}
		}
	case modeVertical:
		if p.p++; p.p > p.page[1] {
			p.p = p.page[0]
			if p.x++; p.x > p.col[1] {
				p.x = p.col[0]
			}
		}
	default:
		if p.x++; p.x > p.col[1] {
			p.x = p.col[0]
		}
	}
}

// Image returns a copy of GDDRAM in image1bit order, regardless of the
// display on and inverse settings.
func (p *Panel) Image() *image1bit.Bitmap {
	p.mu.Lock()
	defer p.mu.Unlock()
	bm := image1bit.New(geom.Size{W: p.w, H: p.h})
	for i, v := range p.ram {
		bm.Pix[i] = bits.Reverse8(v)
	}
	return bm
}

// GDDRAM returns a copy of the raw display memory.
func (p *Panel) GDDRAM() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.ram...)
}

// Pixel reports whether the pixel at (x, y) is lit, taking the display
// on and inverse settings into account.
func (p *Panel) Pixel(x, y int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pixel(x, y)
}

func (p *Panel) pixel(x, y int) bool {
	if !p.on || x < 0 || y < 0 || x >= p.w || y >= p.h {
		return false
	}
	lit := p.ram[(y/8)*p.w+x]&(1<<uint(y%8)) != 0
	return lit != p.inverted
}

// On reports whether the display is switched on.
func (p *Panel) On() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.on
}

// Inverted reports whether inverse display is selected.
func (p *Panel) Inverted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inverted
}

// Scrolling reports whether hardware scrolling is active.
func (p *Panel) Scrolling() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scroll
}

// Contrast returns the last contrast setting.
func (p *Panel) Contrast() byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.contrast
}

// Ops returns a copy of every Send so far.
func (p *Panel) Ops() []Op {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Op(nil), p.ops...)
}

// ResetOps forgets the recorded sends.
func (p *Panel) ResetOps() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ops = nil
}

// Bounds returns the panel rectangle.
func (p *Panel) Bounds() geom.Bounds {
	return geom.Bounds{X1: p.w, Y1: p.h}
}
