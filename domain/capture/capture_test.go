package capture

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScreen struct {
	bounds image.Rectangle
	err    error
	asked  []image.Rectangle
}

func (f *fakeScreen) Bounds() (image.Rectangle, error) { return f.bounds, nil }

func (f *fakeScreen) Grab(r image.Rectangle) (*image.RGBA, error) {
	f.asked = append(f.asked, r)
	if f.err != nil {
		return nil, f.err
	}
	return image.NewRGBA(r), nil
}

func TestCapture_FullScreen(t *testing.T) {
	fs := &fakeScreen{bounds: image.Rect(0, 0, 1920, 1080)}
	snap, err := NewServiceWithScreen(fs, nil).Capture(context.Background(), 0, image.Rectangle{})
	require.NoError(t, err)
	assert.Equal(t, fs.bounds, snap.Region)
	assert.Equal(t, fs.bounds, snap.Image.Bounds())
	assert.False(t, snap.CapturedAt.IsZero())
}

func TestCapture_RegionClipped(t *testing.T) {
	fs := &fakeScreen{bounds: image.Rect(0, 0, 800, 600)}
	snap, err := NewServiceWithScreen(fs, nil).Capture(context.Background(), 0, image.Rect(700, 500, 900, 700))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(700, 500, 800, 600), snap.Region)

	_, err = NewServiceWithScreen(fs, nil).Capture(context.Background(), 0, image.Rect(900, 900, 950, 950))
	assert.ErrorIs(t, err, ErrOutOfScreen)
}

func TestCapture_GrabError(t *testing.T) {
	boom := errors.New("no display")
	fs := &fakeScreen{bounds: image.Rect(0, 0, 10, 10), err: boom}
	_, err := NewServiceWithScreen(fs, nil).Capture(context.Background(), 0, image.Rectangle{})
	assert.ErrorIs(t, err, boom)
}

func TestCapture_DelayHonoursContext(t *testing.T) {
	fs := &fakeScreen{bounds: image.Rect(0, 0, 10, 10)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewServiceWithScreen(fs, nil).Capture(ctx, time.Hour, image.Rectangle{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fs.asked)
}
