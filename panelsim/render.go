package panelsim

import (
	"bufio"
	"io"

	"github.com/gdamore/tcell/v2"
	"github.com/muesli/termenv"
)

// Lit pixels are drawn in the usual blue OLED tint.
const tint = "#5FD7FF"

// halfBlock returns the cell for a pair of vertically stacked pixels.
func halfBlock(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	}
	return ' '
}

// Draw paints the panel on s with its top left corner at (x0, y0). Each
// terminal cell holds two pixel rows, so the panel takes W×H/2 cells.
func (p *Panel) Draw(s tcell.Screen, x0, y0 int) {
	style := tcell.StyleDefault.Foreground(tcell.GetColor(tint)).Background(tcell.ColorBlack)

	p.mu.Lock()
	defer p.mu.Unlock()
	for y := 0; y < p.h; y += 2 {
		for x := 0; x < p.w; x++ {
			s.SetContent(x0+x, y0+y/2, halfBlock(p.pixel(x, y), p.pixel(x, y+1)), nil, style)
		}
	}
}

// Fprint writes the panel to w as H/2 lines of half blocks, coloured for
// profile.
func (p *Panel) Fprint(w io.Writer, profile termenv.Profile) error {
	fg := profile.Color(tint)
	bw := bufio.NewWriter(w)

	p.mu.Lock()
	line := make([]rune, p.w)
	for y := 0; y < p.h; y += 2 {
		for x := range line {
			line[x] = halfBlock(p.pixel(x, y), p.pixel(x, y+1))
		}
		bw.WriteString(profile.String(string(line)).Foreground(fg).String())
		bw.WriteByte('\n')
	}
	p.mu.Unlock()

	return bw.Flush()
}
