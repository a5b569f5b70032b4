package annotation

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/soocke/pixel-labeler/domain/records"
	"github.com/soocke/pixel-labeler/domain/render"
)

// Options configure a Session.
type Options struct {
	ImageID    string
	Display    image.Image // display-space image, never mutated
	Mapper     Mapper
	Vocabulary Vocabulary
	Store      RecordStore
	Style      render.Style
	Existing   []Box // display-space boxes loaded from the store
	Logger     *slog.Logger
}

// Session is the box-editing state machine for one image. It owns the committed boxes
// (display space), the base layer and the in-progress drag. All methods run on the
// caller's goroutine; the UI event loop is the only caller.
type Session struct {
	imageID   string
	display   image.Image
	base      *image.NRGBA
	boxes     []Box
	state     State
	anchor    image.Point
	pending   Box
	mapper    Mapper
	vocab     Vocabulary
	store     RecordStore
	style     render.Style
	logger    *slog.Logger
	listeners []StateListener
}

// NewSession builds a session in StateIdle with the base layer rendered from Existing.
func NewSession(opts Options) (*Session, error) {
	if opts.ImageID == "" {
		return nil, errors.New("annotation: empty image id")
	}
	if opts.Display == nil {
		return nil, errors.New("annotation: nil display image")
	}
	if opts.Store == nil {
		return nil, errors.New("annotation: nil record store")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	style := opts.Style
	if style.Color == nil {
		style = render.DefaultStyle()
	}
	s := &Session{
		imageID: opts.ImageID,
		display: opts.Display,
		state:   StateIdle,
		mapper:  opts.Mapper,
		vocab:   opts.Vocabulary,
		store:   opts.Store,
		style:   style,
		logger:  logger,
	}
	for _, b := range opts.Existing {
		if !s.vocab.Contains(b.Label) {
			logger.Warn("dropping box with unknown label", "label", b.Label)
			continue
		}
		s.boxes = append(s.boxes, b)
	}
	s.rebuildBase()
	return s, nil
}

// ImageID returns the identifier rows are written under.
func (s *Session) ImageID() string { return s.imageID }

// State returns the current state.
func (s *Session) State() State { return s.state }

// Boxes returns a copy of the committed boxes in commit order.
func (s *Session) Boxes() []Box { return append([]Box(nil), s.boxes...) }

// Base returns the base layer: the display image with every committed box burned in,
// plus the pending box while a label is awaited. Callers must not modify it.
func (s *Session) Base() image.Image { return s.base }

// Display returns the untouched display image.
func (s *Session) Display() image.Image { return s.display }

// Pending returns the box awaiting a label.
func (s *Session) Pending() (Box, bool) {
	if s.state != StateAwaitingLabel {
		return Box{}, false
	}
	return s.pending, true
}

// Vocabulary returns the accepted labels.
func (s *Session) Vocabulary() Vocabulary { return s.vocab }

// AddListener registers l for every subsequent transition.
func (s *Session) AddListener(l StateListener) {
	if l != nil {
		s.listeners = append(s.listeners, l)
	}
}

// PointerDown anchors a new drag. It is ignored unless the session is idle.
func (s *Session) PointerDown(p image.Point) bool {
	if s.state != StateIdle {
		return false
	}
	s.anchor = p
	s.transition(StateDragging)
	return true
}

// PointerMove returns a preview frame of the base layer plus the live rectangle from
// the anchor to p. Nothing is committed or persisted.
func (s *Session) PointerMove(p image.Point) (image.Image, bool) {
	if s.state != StateDragging {
		return nil, false
	}
	live := render.Rect{X1: s.anchor.X, Y1: s.anchor.Y, X2: p.X, Y2: p.Y}
	return render.Compose(s.base, nil, &live, s.style), true
}

// PointerUp freezes the drag into a normalized box, draws it into the base layer so it
// stays visible while the label is typed, and moves to StateAwaitingLabel. A release
// without a preceding press is ignored.
func (s *Session) PointerUp(p image.Point) (Box, bool) {
	if s.state != StateDragging {
		return Box{}, false
	}
	s.pending = NewBox(s.anchor, p, "")
	render.DrawRect(s.base, s.pending.Rect(), s.style)
	if s.pending.Degenerate() {
		s.logger.Debug("degenerate box", "box", s.pending)
	}
	s.transition(StateAwaitingLabel)
	return s.pending, true
}

// Resolve applies the operator's answer for the pending box.
//
// Accept persists the box (original space) then commits it; Redo drops it; Clean drops it
// together with every committed box and every stored row of this image. Store failures
// roll the pending box back and are returned, so memory never holds what the file lacks.
// An unknown label or response kind leaves the session awaiting a label.
func (s *Session) Resolve(r Response) (Result, error) {
	if s.state != StateAwaitingLabel {
		return Result{}, ErrNotAwaitingLabel
	}
	switch r.Kind {
	case ResponseAccept:
		return s.accept(r.Label)
	case ResponseRedo:
		box := s.pending
		s.discardPending()
		s.logger.Info("box discarded", "image", s.imageID)
		return Result{Outcome: OutcomeDiscarded, Box: box}, nil
	case ResponseClean:
		return s.clean()
	default:
		return Result{}, fmt.Errorf("%w: kind %d", ErrInvalidResponse, r.Kind)
	}
}

func (s *Session) accept(label string) (Result, error) {
	if !s.vocab.Contains(label) {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	box := s.pending
	box.Label = label
	o := s.mapper.BoxToOriginal(box)
	row := records.Row{ImageID: s.imageID, X1: o.X1, Y1: o.Y1, X2: o.X2, Y2: o.Y2, Label: label}
	if err := s.store.Append(row); err != nil {
		s.discardPending()
		return Result{Outcome: OutcomeDiscarded, Box: box}, fmt.Errorf("persist box: %w", err)
	}
	s.boxes = append(s.boxes, box)
	s.pending = Box{}
	s.transition(StateIdle)
	s.logger.Info("box committed", "image", s.imageID, "label", label,
		"x1", o.X1, "y1", o.Y1, "x2", o.X2, "y2", o.Y2, "boxes", len(s.boxes))
	return Result{Outcome: OutcomeCommitted, Box: box}, nil
}

func (s *Session) clean() (Result, error) {
	box := s.pending
	removed, err := s.store.DeleteRowsFor(s.imageID)
	if err != nil {
		s.discardPending()
		return Result{Outcome: OutcomeDiscarded, Box: box}, fmt.Errorf("clean rows: %w", err)
	}
	s.boxes = nil
	s.pending = Box{}
	s.rebuildBase()
	s.transition(StateIdle)
	s.logger.Info("boxes cleaned", "image", s.imageID, "removed_rows", removed)
	return Result{Outcome: OutcomeCleaned, Box: box, Removed: removed}, nil
}

// discardPending rolls back the pointer-up draw by rebuilding the base layer.
func (s *Session) discardPending() {
	s.pending = Box{}
	s.rebuildBase()
	s.transition(StateIdle)
}

func (s *Session) rebuildBase() {
	s.base = render.Compose(s.display, rects(s.boxes), nil, s.style)
}

// Export returns a copy of original with every committed box mapped to original space.
func (s *Session) Export(original image.Image) *image.NRGBA {
	out := make([]render.Rect, len(s.boxes))
	for i, b := range s.boxes {
		out[i] = s.mapper.BoxToOriginal(b).Rect()
	}
	return render.Compose(original, out, nil, s.style)
}

func (s *Session) transition(next State) {
	prev := s.state
	if prev == next {
		return
	}
	s.state = next
	s.logger.Debug("annotation state transition", "from", prev.String(), "to", next.String())
	for _, l := range s.listeners {
		l(prev, next)
	}
}
