package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/vova616/screenshot"
)

// ErrOutOfScreen is returned when a requested region does not overlap the screen.
var ErrOutOfScreen = errors.New("capture: region outside screen")

// Screen is the platform capture backend.
type Screen interface {
	Bounds() (image.Rectangle, error)
	Grab(r image.Rectangle) (*image.RGBA, error)
}

type systemScreen struct{}

func (systemScreen) Bounds() (image.Rectangle, error) { return screenshot.ScreenRect() }

func (systemScreen) Grab(r image.Rectangle) (*image.RGBA, error) {
	return screenshot.CaptureRect(r)
}

// FrameSnapshot is one captured frame and its metadata.
type FrameSnapshot struct {
	Image      *image.RGBA
	Region     image.Rectangle
	CapturedAt time.Time
	Took       time.Duration
}

// Service grabs single frames used as new input images.
type Service struct {
	screen Screen
	logger *slog.Logger
}

// NewService returns a service backed by the primary screen.
func NewService(logger *slog.Logger) *Service {
	return NewServiceWithScreen(systemScreen{}, logger)
}

// NewServiceWithScreen returns a service backed by screen.
func NewServiceWithScreen(screen Screen, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{screen: screen, logger: logger}
}

// Capture waits delay (so the operator can bring the target window forward), then grabs
// region clipped to the screen. An empty region grabs the full screen.
func (s *Service) Capture(ctx context.Context, delay time.Duration, region image.Rectangle) (FrameSnapshot, error) {
	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return FrameSnapshot{}, ctx.Err()
		case <-t.C:
		}
	}
	screen, err := s.screen.Bounds()
	if err != nil {
		return FrameSnapshot{}, fmt.Errorf("capture: screen bounds: %w", err)
	}
	r := screen
	if !region.Empty() {
		r = region.Intersect(screen)
		if r.Empty() {
			return FrameSnapshot{}, fmt.Errorf("%w: region=%v screen=%v", ErrOutOfScreen, region, screen)
		}
	}
	start := time.Now()
	img, err := s.screen.Grab(r)
	if err != nil {
		return FrameSnapshot{}, fmt.Errorf("capture: grab %v: %w", r, err)
	}
	snap := FrameSnapshot{Image: img, Region: r, CapturedAt: time.Now(), Took: time.Since(start)}
	s.logger.Info("screen captured", "region", r.String(), "took", snap.Took)
	return snap, nil
}
