package images

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestDeriveDisplay(t *testing.T) {
	src := solid(101, 40, color.NRGBA{200, 10, 10, 255})
	assert.Same(t, src, DeriveDisplay(src, 1))

	half := DeriveDisplay(src, 0.5)
	assert.Equal(t, 51, half.Bounds().Dx(), "round(101*0.5)")
	assert.Equal(t, 20, half.Bounds().Dy())
	r, g, b, _ := half.At(10, 10).RGBA()
	assert.InDelta(t, 200, r>>8, 1)
	assert.InDelta(t, 10, g>>8, 1)
	assert.InDelta(t, 10, b>>8, 1)

	w, h := DisplaySize(image.Rect(0, 0, 3, 3), 0.1)
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	src := solid(16, 12, color.NRGBA{0, 255, 0, 255})
	dir := t.TempDir()
	for _, format := range []string{"png", "jpg", "webp"} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(dir, "nested", "boxed_car1."+format)
			require.NoError(t, Save(src, path, format, 95))
			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, src.Bounds().Size(), got.Bounds().Size())
			_, g, _, _ := got.At(8, 6).RGBA()
			assert.InDelta(t, 255, g>>8, 8)
		})
	}
}

func TestSave_UnsupportedFormat(t *testing.T) {
	err := Save(solid(1, 1, color.NRGBA{}), filepath.Join(t.TempDir(), "x.gif"), "gif", 90)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.jpg"))
	assert.Error(t, err)
}

func TestClampPoint(t *testing.T) {
	b := image.Rect(0, 0, 100, 80)
	assert.Equal(t, image.Pt(10, 20), ClampPoint(image.Pt(10, 20), b))
	assert.Equal(t, image.Pt(0, 0), ClampPoint(image.Pt(-5, -9), b))
	assert.Equal(t, image.Pt(99, 79), ClampPoint(image.Pt(300, 80), b))
	assert.Equal(t, image.Pt(0, 0), ClampPoint(image.Pt(3, 3), image.Rectangle{}))
}

func TestEncodePNG(t *testing.T) {
	assert.Nil(t, EncodePNG(nil))
	assert.NotEmpty(t, EncodePNG(solid(2, 2, color.NRGBA{A: 255})))
}
