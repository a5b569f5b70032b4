package annotation

import (
	"fmt"
	"image"
	"math"
)

// Mapper converts points between display space and original-image space with a fixed
// scale factor s (display = original * s). The zero value is the identity.
type Mapper struct {
	scale float64
}

// NewMapper validates 0 < scale <= 1.
func NewMapper(scale float64) (Mapper, error) {
	if scale <= 0 || scale > 1 || math.IsNaN(scale) {
		return Mapper{}, fmt.Errorf("scale %v outside (0, 1]", scale)
	}
	return Mapper{scale: scale}, nil
}

// Scale returns the display/original ratio.
func (m Mapper) Scale() float64 {
	if m.identity() {
		return 1
	}
	return m.scale
}

func (m Mapper) identity() bool { return m.scale == 0 || m.scale == 1 }

// ToOriginal maps a display point to original space: (round(x/s), round(y/s)).
func (m Mapper) ToOriginal(p image.Point) image.Point {
	if m.identity() {
		return p
	}
	return image.Pt(int(math.Round(float64(p.X)/m.scale)), int(math.Round(float64(p.Y)/m.scale)))
}

// ToDisplay maps an original point to display space: (round(x*s), round(y*s)).
func (m Mapper) ToDisplay(p image.Point) image.Point {
	if m.identity() {
		return p
	}
	return image.Pt(int(math.Round(float64(p.X)*m.scale)), int(math.Round(float64(p.Y)*m.scale)))
}

// BoxToOriginal maps both corners of a display box.
func (m Mapper) BoxToOriginal(b Box) Box {
	return NewBox(m.ToOriginal(image.Pt(b.X1, b.Y1)), m.ToOriginal(image.Pt(b.X2, b.Y2)), b.Label)
}

// BoxToDisplay maps both corners of an original box.
func (m Mapper) BoxToDisplay(b Box) Box {
	return NewBox(m.ToDisplay(image.Pt(b.X1, b.Y1)), m.ToDisplay(image.Pt(b.X2, b.Y2)), b.Label)
}
