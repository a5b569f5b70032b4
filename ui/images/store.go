package images

import (
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned by Save for an output format other than jpg, png or webp.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Load decodes the image at path. Registered decoders are tried first; WebP files that
// x/image cannot read (lossless with alpha variants) go through libwebp.
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err == nil {
		return img, nil
	}
	if !strings.EqualFold(filepath.Ext(path), ".webp") {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	f, ferr := os.Open(path)
	if ferr != nil {
		return nil, fmt.Errorf("load %s: %w", path, ferr)
	}
	defer f.Close()
	img, werr := webp.Decode(f)
	if werr != nil {
		return nil, fmt.Errorf("load %s: %w", path, errors.Join(err, werr))
	}
	return img, nil
}

// DisplaySize returns round(w*scale) x round(h*scale), at least 1x1.
func DisplaySize(b image.Rectangle, scale float64) (int, int) {
	w := int(math.Round(float64(b.Dx()) * scale))
	h := int(math.Round(float64(b.Dy()) * scale))
	return max(w, 1), max(h, 1)
}

// DeriveDisplay returns the copy shown on screen. Scale 1 returns img unchanged; smaller
// scales area-average with the box filter.
func DeriveDisplay(img image.Image, scale float64) image.Image {
	if img == nil || scale == 1 {
		return img
	}
	w, h := DisplaySize(img.Bounds(), scale)
	return imaging.Resize(img, w, h, imaging.Box)
}

// Save writes img to path, creating the parent directory. format is jpg, jpeg, png or
// webp; quality applies to jpg and webp.
func Save(img image.Image, path, format string, quality int) error {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	switch format {
	case "jpg", "jpeg", "png", "webp":
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	switch format {
	case "webp":
		err = webp.Encode(f, img, &webp.Options{Quality: float32(quality)})
	case "png":
		err = imaging.Encode(f, img, imaging.PNG)
	default:
		err = imaging.Encode(f, img, imaging.JPEG, imaging.JPEGQuality(quality))
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
