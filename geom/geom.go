// Package geom provides the rectangle algebra used by the ssd1306 driver.
//
// Bounds are half-open rectangles [X0,X1) × [Y0,Y1) in panel pixel
// coordinates. Coordinates are signed so a rectangle may be requested
// partially (or entirely) off-panel; clipping is left to the caller.
package geom

import (
	"fmt"
	"image"
)

// Point is a signed pixel position.
type Point struct {
	X, Y int
}

// Size is a pixel extent.
type Size struct {
	W, H int
}

// Bounds is a half-open rectangle. X0 <= X1 and Y0 <= Y1 must hold.
type Bounds struct {
	X0, Y0, X1, Y1 int
}

// Rect returns the bounds with the given origin and size.
func Rect(x, y, w, h int) Bounds {
	return Bounds{X0: x, Y0: y, X1: x + w, Y1: y + h}
}

// FromRect converts an image.Rectangle.
func FromRect(r image.Rectangle) Bounds {
	return Bounds{X0: r.Min.X, Y0: r.Min.Y, X1: r.Max.X, Y1: r.Max.Y}
}

// Rect converts the bounds to an image.Rectangle.
func (b Bounds) Rect() image.Rectangle {
	return image.Rect(b.X0, b.Y0, b.X1, b.Y1)
}

// Origin returns the top left corner.
func (b Bounds) Origin() Point {
	return Point{X: b.X0, Y: b.Y0}
}

// Size returns the width and height.
func (b Bounds) Size() Size {
	return Size{W: b.Width(), H: b.Height()}
}

// Width returns X1-X0. It panics on corrupted bounds.
func (b Bounds) Width() int {
	if b.X1 < b.X0 {
		panic(fmt.Sprintf("geom: invalid coordinates x0 = %d, x1 = %d", b.X0, b.X1))
	}
	return b.X1 - b.X0
}

// Height returns Y1-Y0. It panics on corrupted bounds.
func (b Bounds) Height() int {
	if b.Y1 < b.Y0 {
		panic(fmt.Sprintf("geom: invalid coordinates y0 = %d, y1 = %d", b.Y0, b.Y1))
	}
	return b.Y1 - b.Y0
}

// Empty reports whether the bounds cover no pixel.
func (b Bounds) Empty() bool {
	return b.X0 >= b.X1 || b.Y0 >= b.Y1
}

// Center returns the middle point, rounded towards zero.
func (b Bounds) Center() Point {
	return Point{X: (b.X0 + b.X1) / 2, Y: (b.Y0 + b.Y1) / 2}
}

// Contains reports whether p lies inside b.
func (b Bounds) Contains(p Point) bool {
	return b.X0 <= p.X && p.X < b.X1 && b.Y0 <= p.Y && p.Y < b.Y1
}

// Union grows b to cover source. A nil source leaves b unchanged.
func (b *Bounds) Union(source *Bounds) {
	if b == nil {
		panic("geom: nil target")
	}
	if source == nil {
		return
	}
	b.X0 = min(b.X0, source.X0)
	b.Y0 = min(b.Y0, source.Y0)
	b.X1 = max(b.X1, source.X1)
	b.Y1 = max(b.Y1, source.Y1)
}

// Intersect shrinks b to its overlap with source and reports whether the
// result is non-empty. An empty result must be treated as "not visible".
// A nil source leaves b unchanged.
func (b *Bounds) Intersect(source *Bounds) bool {
	if source != nil {
		b.X0 = max(b.X0, source.X0)
		b.Y0 = max(b.Y0, source.Y0)
		b.X1 = min(b.X1, source.X1)
		b.Y1 = min(b.Y1, source.Y1)
	}
	return b.X0 < b.X1 && b.Y0 < b.Y1
}

// Resize keeps the origin and sets the extent to size.
func (b *Bounds) Resize(size Size) {
	b.X1 = b.X0 + size.W
	b.Y1 = b.Y0 + size.H
}

// MoveTo places the origin at p, keeping the extent.
func (b *Bounds) MoveTo(p Point) {
	w, h := b.Width(), b.Height()
	b.X0, b.Y0 = p.X, p.Y
	b.X1, b.Y1 = p.X+w, p.Y+h
}

// MoveBy translates b by offset.
func (b *Bounds) MoveBy(offset Point) {
	b.X0 += offset.X
	b.Y0 += offset.Y
	b.X1 += offset.X
	b.Y1 += offset.Y
}

// Intersection returns the overlap of a and c without modifying either.
func Intersection(a, c Bounds) (Bounds, bool) {
	ok := a.Intersect(&c)
	return a, ok
}

// String formats the bounds as [x0+y0, x1+y1).
func (b Bounds) String() string {
	return fmt.Sprintf("[%+d%+d, %+d%+d)", b.X0, b.Y0, b.X1, b.Y1)
}
