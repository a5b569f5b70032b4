package images

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
)

// EncodePNG encodes an image to PNG bytes for a Tk photo. Errors are ignored and may
// return an empty slice.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	_ = imaging.Encode(&buf, img, imaging.PNG)
	return buf.Bytes()
}

// ClampPoint moves p inside b (inclusive of the last pixel). The pointer keeps reporting
// positions after it leaves the image widget mid-drag.
func ClampPoint(p image.Point, b image.Rectangle) image.Point {
	if b.Empty() {
		return b.Min
	}
	p.X = min(max(p.X, b.Min.X), b.Max.X-1)
	p.Y = min(max(p.Y, b.Min.Y), b.Max.Y-1)
	return p
}
