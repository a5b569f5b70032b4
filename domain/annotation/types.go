package annotation

import (
	"errors"
	"image"
	"sort"
	"strings"

	"github.com/soocke/pixel-labeler/domain/records"
	"github.com/soocke/pixel-labeler/domain/render"
)

// State enumerates the states of the box-editing cycle.
type State int

const (
	StateIdle State = iota
	StateDragging
	StateAwaitingLabel
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateAwaitingLabel:
		return "awaiting label"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidLabel     = errors.New("invalid label")
	ErrInvalidResponse  = errors.New("invalid response")
	ErrNotAwaitingLabel = errors.New("no box is awaiting a label")
)

// Box is a labeled rectangle with X1<=X2 and Y1<=Y2.
type Box struct {
	X1, Y1, X2, Y2 int
	Label          string
}

// NewBox builds a normalized box from two drag corners.
func NewBox(a, b image.Point, label string) Box {
	r := render.Rect{X1: a.X, Y1: a.Y, X2: b.X, Y2: b.Y}.Normalized()
	return Box{X1: r.X1, Y1: r.Y1, X2: r.X2, Y2: r.Y2, Label: label}
}

// Rect returns the drawable rectangle of b.
func (b Box) Rect() render.Rect { return render.Rect{X1: b.X1, Y1: b.Y1, X2: b.X2, Y2: b.Y2} }

// Degenerate reports a box with zero width or zero height.
func (b Box) Degenerate() bool { return b.X1 == b.X2 || b.Y1 == b.Y2 }

func rects(boxes []Box) []render.Rect {
	out := make([]render.Rect, len(boxes))
	for i, b := range boxes {
		out[i] = b.Rect()
	}
	return out
}

// Vocabulary is the closed set of labels a box may carry.
type Vocabulary struct {
	set    map[string]struct{}
	sorted []string
}

// NewVocabulary normalizes (trim, lowercase) and deduplicates labels.
func NewVocabulary(labels ...string) Vocabulary {
	v := Vocabulary{set: make(map[string]struct{}, len(labels))}
	for _, l := range labels {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" {
			continue
		}
		if _, ok := v.set[l]; ok {
			continue
		}
		v.set[l] = struct{}{}
		v.sorted = append(v.sorted, l)
	}
	sort.Strings(v.sorted)
	return v
}

// Contains reports whether label is an exact member.
func (v Vocabulary) Contains(label string) bool {
	_, ok := v.set[label]
	return ok
}

// Labels returns the members in sorted order.
func (v Vocabulary) Labels() []string {
	return append([]string(nil), v.sorted...)
}

// ResponseKind distinguishes the operator's answers to the label prompt.
type ResponseKind int

const (
	ResponseAccept ResponseKind = iota + 1
	ResponseRedo
	ResponseClean
)

func (k ResponseKind) String() string {
	switch k {
	case ResponseAccept:
		return "accept"
	case ResponseRedo:
		return "redo"
	case ResponseClean:
		return "clean"
	default:
		return "unknown"
	}
}

// Response is one resolved prompt answer. Label is set only for ResponseAccept.
type Response struct {
	Kind  ResponseKind
	Label string
}

func Accept(label string) Response { return Response{Kind: ResponseAccept, Label: label} }
func Redo() Response               { return Response{Kind: ResponseRedo} }
func Clean() Response              { return Response{Kind: ResponseClean} }

// Outcome is what a resolved response did to the session.
type Outcome int

const (
	OutcomeCommitted Outcome = iota + 1
	OutcomeDiscarded
	OutcomeCleaned
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCommitted:
		return "committed"
	case OutcomeDiscarded:
		return "discarded"
	case OutcomeCleaned:
		return "cleaned"
	default:
		return "unknown"
	}
}

// Result describes a Resolve call. Removed counts store rows dropped by a clean.
type Result struct {
	Outcome Outcome
	Box     Box
	Removed int
}

// StateListener is called on each successful state transition.
type StateListener func(prev, next State)

// RecordStore is the persistence side the session writes to.
type RecordStore interface {
	Append(records.Row) error
	DeleteRowsFor(imageID string) (int, error)
}

// RowSource supplies stored rows for session pre-population.
type RowSource interface {
	RowsFor(imageID string) ([]records.Row, error)
}

var (
	_ RecordStore = (*records.Store)(nil)
	_ RowSource   = (*records.Store)(nil)
)
