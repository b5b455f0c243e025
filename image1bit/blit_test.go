package image1bit

import (
	"math/rand/v2"
	"testing"

	"github.com/flavioheleno/ssd1306/geom"
)

func randomBitmap(rng *rand.Rand, size geom.Size) *Bitmap {
	bm := New(size)
	for i := range bm.Pix {
		bm.Pix[i] = byte(rng.UintN(256))
	}
	return bm
}

// referenceDraw is the pixel by pixel definition of Draw.
func referenceDraw(dst *Bitmap, r geom.Bounds, src *Bitmap, sp geom.Point) {
	dx, dy := r.X0-sp.X, r.Y0-sp.Y
	for y := r.Y0; y < r.Y1; y++ {
		for x := r.X0; x < r.X1; x++ {
			if x < 0 || y < 0 || x >= dst.W || y >= dst.H {
				continue
			}
			sx, sy := x-dx, y-dy
			if sx < 0 || sy < 0 || sx >= src.W || sy >= src.H {
				continue
			}
			dst.SetBit(x, y, src.BitAt(sx, sy))
		}
	}
}

func TestShiftBits(t *testing.T) {
	tests := []struct {
		v    byte
		bits int
		want byte
	}{
		{0x81, 0, 0x81},
		{0x81, 1, 0x40},
		{0x81, -1, 0x02},
		{0xFF, 7, 0x01},
		{0xFF, -7, 0x80},
		{0x80, 3, 0x10}, // no sign extension
	}

	for _, tt := range tests {
		if got := shiftBits(tt.v, tt.bits); got != tt.want {
			t.Errorf("shiftBits(0x%02X, %+d) = 0x%02X, want 0x%02X", tt.v, tt.bits, got, tt.want)
		}
	}
}

func TestSetBits(t *testing.T) {
	tests := []struct {
		k    int
		want byte
	}{
		{0, 0x00},
		{1, 0x80},
		{3, 0xE0},
		{8, 0xFF},
		{-1, 0x01},
		{-5, 0x1F},
		{-8, 0xFF},
	}

	for _, tt := range tests {
		if got := setBits(tt.k); got != tt.want {
			t.Errorf("setBits(%+d) = 0x%02X, want 0x%02X", tt.k, got, tt.want)
		}
	}
}

func TestRowMask(t *testing.T) {
	tests := []struct {
		top, bottom int
		want        byte
	}{
		{0, 8, 0xFF},
		{3, 8, 0x1F},
		{0, 3, 0xE0},
		{2, 5, 0x38},
		{4, 4, 0x00},
	}

	for _, tt := range tests {
		if got := rowMask(tt.top, tt.bottom); got != tt.want {
			t.Errorf("rowMask(%d, %d) = 0x%02X, want 0x%02X", tt.top, tt.bottom, got, tt.want)
		}
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{7, 8, 0}, {8, 8, 1}, {-1, 8, -1}, {-8, 8, -1}, {-9, 8, -2}, {0, 8, 0},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestClearConcreteMask(t *testing.T) {
	dst := New(geom.Size{W: 128, H: 64})
	for i := range dst.Pix {
		dst.Pix[i] = 0xFF
	}

	r, ok := Clear(dst, geom.Bounds{X0: 10, Y0: 3, X1: 20, Y1: 11})
	if !ok {
		t.Fatal("Clear() reported nothing visible")
	}
	if r != (geom.Bounds{X0: 10, Y0: 3, X1: 20, Y1: 11}) {
		t.Errorf("Clear() bounds = %v", r)
	}

	for p := 0; p < dst.Pages(); p++ {
		for x := 0; x < dst.W; x++ {
			want := byte(0xFF)
			if x >= 10 && x < 20 {
				switch p {
				case 0:
					want = 0xE0 // low 5 bits cleared
				case 1:
					want = 0x1F // high 3 bits cleared
				}
			}
			if got := dst.Pix[dst.Index(p, x)]; got != want {
				t.Fatalf("page %d column %d = 0x%02X, want 0x%02X", p, x, got, want)
			}
		}
	}
}

func TestClearInsideOnePage(t *testing.T) {
	dst := New(geom.Size{W: 4, H: 8})
	for i := range dst.Pix {
		dst.Pix[i] = 0xFF
	}
	Clear(dst, geom.Bounds{X0: 1, Y0: 2, X1: 3, Y1: 5})
	want := []byte{0xFF, 0xC7, 0xC7, 0xFF}
	for i, b := range dst.Pix {
		if b != want[i] {
			t.Errorf("Pix[%d] = 0x%02X, want 0x%02X", i, b, want[i])
		}
	}
}

func TestClearNotVisible(t *testing.T) {
	dst := New(geom.Size{W: 8, H: 8})
	dst.Pix[0] = 0xFF
	if _, ok := Clear(dst, geom.Bounds{X0: -10, Y0: -10, X1: -1, Y1: -1}); ok {
		t.Error("Clear() off bitmap should report nothing visible")
	}
	if dst.Pix[0] != 0xFF {
		t.Error("Clear() off bitmap modified pixels")
	}
}

func TestDrawMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	sizes := []geom.Size{{W: 3, H: 1}, {W: 5, H: 8}, {W: 7, H: 13}, {W: 4, H: 17}}

	for _, size := range sizes {
		src := randomBitmap(rng, size)
		for y := -20; y <= 30; y++ {
			for _, x := range []int{-6, -1, 0, 2, 9} {
				got := randomBitmap(rng, geom.Size{W: 12, H: 24})
				want := got.Clone()

				r := geom.Rect(x, y, size.W, size.H)
				Draw(got, r, src, geom.Point{})
				referenceDraw(want, r, src, geom.Point{})

				if !got.Equal(want) {
					t.Fatalf("Draw(%v) of %dx%d differs from reference", r, size.W, size.H)
				}
			}
		}
	}
}

func TestDrawWithSourceOffset(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	src := randomBitmap(rng, geom.Size{W: 10, H: 20})

	for sy := -3; sy < 22; sy++ {
		for ty := -5; ty < 30; ty += 3 {
			got := randomBitmap(rng, geom.Size{W: 16, H: 32})
			want := got.Clone()
			r := geom.Rect(2, ty, 6, 9)
			sp := geom.Point{X: 3, Y: sy}

			Draw(got, r, src, sp)
			referenceDraw(want, r, src, sp)

			if !got.Equal(want) {
				t.Fatalf("Draw(%v, sp=%v) differs from reference", r, sp)
			}
		}
	}
}

func TestDrawGrabRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))

	tests := []struct {
		name string
		at   geom.Point
		size geom.Size
	}{
		{"page aligned", geom.Point{X: 0, Y: 8}, geom.Size{W: 16, H: 16}},
		{"unaligned three pages", geom.Point{X: 10, Y: 3}, geom.Size{W: 16, H: 13}},
		{"single row", geom.Point{X: 5, Y: 7}, geom.Size{W: 9, H: 1}},
		{"last page", geom.Point{X: 100, Y: 57}, geom.Size{W: 28, H: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raster := randomBitmap(rng, geom.Size{W: 128, H: 64})
			bm := randomBitmap(rng, tt.size)

			r := geom.Rect(tt.at.X, tt.at.Y, tt.size.W, tt.size.H)
			if _, ok := Draw(raster, r, bm, geom.Point{}); !ok {
				t.Fatal("Draw() reported nothing visible")
			}

			grabbed := New(tt.size)
			if _, ok := Draw(grabbed, grabbed.Rect(), raster, tt.at); !ok {
				t.Fatal("grab reported nothing visible")
			}
			if !grabbed.Equal(bm) {
				t.Error("grab(draw(bitmap)) != bitmap")
			}
		})
	}
}

func TestDrawOutsideIsNoop(t *testing.T) {
	dst := New(geom.Size{W: 16, H: 16})
	src := New(geom.Size{W: 4, H: 4})
	for i := range src.Pix {
		src.Pix[i] = 0xFF
	}

	for _, r := range []geom.Bounds{
		geom.Rect(-4, 0, 4, 4),
		geom.Rect(16, 0, 4, 4),
		geom.Rect(0, -4, 4, 4),
		geom.Rect(0, 16, 4, 4),
	} {
		if _, ok := Draw(dst, r, src, geom.Point{}); ok {
			t.Errorf("Draw(%v) should report nothing visible", r)
		}
	}
	for i, b := range dst.Pix {
		if b != 0 {
			t.Fatalf("Pix[%d] = 0x%02X, want untouched", i, b)
		}
	}
}

func TestDrawAliasPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Draw() with aliased bitmaps should panic")
		}
	}()
	bm := New(geom.Size{W: 4, H: 8})
	Draw(bm, bm.Rect(), bm, geom.Point{})
}
