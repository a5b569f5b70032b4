// Package render burns box outlines into images.
//
// Drawing is stateless: every call works on the image it is given, and Compose always
// starts from a fresh copy of its source so strokes never accumulate on a shared layer.
package render

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Rect is a rectangle given by two corner points, both inclusive. Corners need not be
// normalized; a live drag preview is drawn from anchor to pointer as-is.
type Rect struct {
	X1, Y1, X2, Y2 int
}

// Normalized returns r with X1<=X2 and Y1<=Y2.
func (r Rect) Normalized() Rect {
	if r.X1 > r.X2 {
		r.X1, r.X2 = r.X2, r.X1
	}
	if r.Y1 > r.Y2 {
		r.Y1, r.Y2 = r.Y2, r.Y1
	}
	return r
}

// Style is the fixed visual style of an outline.
type Style struct {
	Color     color.Color
	Thickness int
}

// DefaultStyle is a 2px green stroke.
func DefaultStyle() Style {
	return Style{Color: color.NRGBA{0, 255, 0, 255}, Thickness: 2}
}

// DrawRect strokes the outline of r onto dst. Edges are axis-aligned bands, so the
// outline is 8-connected at any thickness. Parts outside dst are clipped.
func DrawRect(dst draw.Image, r Rect, s Style) {
	if dst == nil {
		return
	}
	t := s.Thickness
	if t < 1 {
		t = 1
	}
	c := s.Color
	if c == nil {
		c = DefaultStyle().Color
	}
	n := r.Normalized()
	half := t / 2
	src := image.NewUniform(c)
	bands := []image.Rectangle{
		image.Rect(n.X1-half, n.Y1-half, n.X2-half+t, n.Y1-half+t), // top
		image.Rect(n.X1-half, n.Y2-half, n.X2-half+t, n.Y2-half+t), // bottom
		image.Rect(n.X1-half, n.Y1-half, n.X1-half+t, n.Y2-half+t), // left
		image.Rect(n.X2-half, n.Y1-half, n.X2-half+t, n.Y2-half+t), // right
	}
	b := dst.Bounds()
	for _, band := range bands {
		clip := band.Intersect(b)
		if clip.Empty() {
			continue
		}
		draw.Draw(dst, clip, src, image.Point{}, draw.Src)
	}
}

// Clone returns a mutable copy of src with its origin moved to (0,0).
func Clone(src image.Image) *image.NRGBA {
	return imaging.Clone(src)
}

// Compose returns a copy of src with every rect in rects stroked in order, plus live
// when non-nil. src is never modified.
func Compose(src image.Image, rects []Rect, live *Rect, s Style) *image.NRGBA {
	dst := Clone(src)
	for _, r := range rects {
		DrawRect(dst, r, s)
	}
	if live != nil {
		DrawRect(dst, *live, s)
	}
	return dst
}
