package panelsim

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/muesli/termenv"

	"github.com/flavioheleno/ssd1306/geom"
	"github.com/flavioheleno/ssd1306/image1bit"
	"github.com/flavioheleno/ssd1306/link"
)

func send(t *testing.T, p *Panel, k link.Kind, b ...byte) {
	t.Helper()
	if err := p.Send(k, b); err != nil {
		t.Fatalf("Send(%s) error = %v", k, err)
	}
}

func TestHorizontalWindow(t *testing.T) {
	p := New(geom.Size{W: 8, H: 24})
	send(t, p, link.Command, 0x20, 0x00, 0x21, 2, 3, 0x22, 1, 2)
	send(t, p, link.Data, 1, 2, 3, 4, 5)

	ram := p.GDDRAM()
	want := map[int]byte{
		1*8 + 2: 5, // wrapped back to the window origin
		1*8 + 3: 2,
		2*8 + 2: 3,
		2*8 + 3: 4,
	}
	for i, v := range ram {
		if v != want[i] {
			t.Errorf("ram[%d] = %d, want %d", i, v, want[i])
		}
	}
}

func TestVerticalWindow(t *testing.T) {
	p := New(geom.Size{W: 4, H: 16})
	send(t, p, link.Command, 0x20, 0x01, 0x21, 1, 2, 0x22, 0, 1)
	send(t, p, link.Data, 1, 2, 3, 4)

	want := []byte{0, 1, 3, 0, 0, 2, 4, 0}
	if got := p.GDDRAM(); !bytes.Equal(got, want) {
		t.Errorf("GDDRAM() = %v, want %v", got, want)
	}
}

func TestPageAddressing(t *testing.T) {
	p := New(geom.Size{W: 32, H: 16})
	send(t, p, link.Command, 0xB1, 0x05, 0x11)
	send(t, p, link.Data, 0xAA, 0xBB)

	ram := p.GDDRAM()
	if ram[32+21] != 0xAA || ram[32+22] != 0xBB {
		t.Errorf("page 1 columns 21-22 = %02X %02X, want AA BB", ram[32+21], ram[32+22])
	}
}

func TestSplitCommand(t *testing.T) {
	p := New(geom.Size{W: 8, H: 8})
	send(t, p, link.Command, 0x20, 0x00, 0x21)
	send(t, p, link.Command, 4)
	send(t, p, link.Command, 5, 0x22, 0, 0)
	send(t, p, link.Data, 9, 8)

	ram := p.GDDRAM()
	if ram[4] != 9 || ram[5] != 8 {
		t.Errorf("ram[4:6] = %v, want [9 8]", ram[4:6])
	}
}

func TestDisplaySettings(t *testing.T) {
	p := New(geom.Size{W: 8, H: 8})
	if p.On() {
		t.Error("panel should start switched off")
	}
	send(t, p, link.Command, 0xAF, 0xA7, 0x81, 0x10, 0xD5, 0x80)
	if !p.On() || !p.Inverted() || p.Contrast() != 0x10 {
		t.Errorf("On=%v Inverted=%v Contrast=0x%02X", p.On(), p.Inverted(), p.Contrast())
	}
	// Inverse display lights every cleared pixel.
	if !p.Pixel(0, 0) {
		t.Error("Pixel(0, 0) should be lit when inverted")
	}
	send(t, p, link.Command, 0xA6, 0xAE)
	if p.On() || p.Inverted() {
		t.Error("panel should be off and not inverted")
	}
}

func TestImageIsBitReversed(t *testing.T) {
	p := New(geom.Size{W: 2, H: 8})
	send(t, p, link.Command, 0x20, 0x00)
	send(t, p, link.Data, 0x01, 0x80)

	img := p.Image()
	if img.BitAt(0, 0) != image1bit.On || img.BitAt(1, 7) != image1bit.On {
		t.Error("bit 0 of GDDRAM should be the top row")
	}
	if img.BitAt(0, 7) != image1bit.Off {
		t.Error("unexpected lit pixel")
	}
}

func TestOpsAndWritten(t *testing.T) {
	p := New(geom.Size{W: 8, H: 8})
	send(t, p, link.Command, 0xAF)
	select {
	case <-p.Written():
		t.Fatal("commands should not signal Written")
	default:
	}
	send(t, p, link.Data, 1)
	select {
	case <-p.Written():
	default:
		t.Fatal("data should signal Written")
	}

	ops := p.Ops()
	if len(ops) != 2 || ops[0].Kind != link.Command || ops[1].Kind != link.Data {
		t.Fatalf("Ops() = %+v", ops)
	}
	p.ResetOps()
	if len(p.Ops()) != 0 {
		t.Error("ResetOps() did not clear the log")
	}
}

func litPanel(t *testing.T) *Panel {
	t.Helper()
	p := New(geom.Size{W: 4, H: 8})
	send(t, p, link.Command, 0xAF, 0x20, 0x00)
	send(t, p, link.Data, 0x01, 0x02, 0x03, 0x00)
	return p
}

func TestDrawScreen(t *testing.T) {
	p := litPanel(t)

	s := tcell.NewSimulationScreen("")
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	defer s.Fini()
	s.SetSize(8, 6)

	p.Draw(s, 1, 1)
	s.Show()

	want := []rune{'▀', '▄', '█', ' '}
	for x, r := range want {
		got, _, _, _ := s.GetContent(1+x, 1)
		if got != r {
			t.Errorf("cell %d = %q, want %q", x, got, r)
		}
	}
}

func TestFprintASCII(t *testing.T) {
	p := litPanel(t)

	var buf bytes.Buffer
	if err := p.Fprint(&buf, termenv.Ascii); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}
	if lines[0] != "▀▄█ " || lines[3] != "    " {
		t.Errorf("Fprint() = %q", lines)
	}
}

func TestFprintColour(t *testing.T) {
	p := litPanel(t)

	var buf bytes.Buffer
	if err := p.Fprint(&buf, termenv.TrueColor); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), termenv.CSI) {
		t.Error("true colour output should carry escape sequences")
	}
}

func TestNewRejectsBadSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New() with a height not multiple of 8 should panic")
		}
	}()
	New(geom.Size{W: 8, H: 12})
}
