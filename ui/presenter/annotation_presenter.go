package presenter

import (
	"errors"
	"image"
	"io"
	"log/slog"
	"time"

	"github.com/soocke/pixel-labeler/domain/annotation"
	"github.com/soocke/pixel-labeler/ui/images"
)

// promptDelay gives Tk one paint cycle to show the frozen box before the prompt opens.
const promptDelay = 30 * time.Millisecond

// AnnotationSession narrows annotation.Session to what pointer handling needs.
type AnnotationSession interface {
	State() annotation.State
	Base() image.Image
	PointerDown(p image.Point) bool
	PointerMove(p image.Point) (image.Image, bool)
	PointerUp(p image.Point) (annotation.Box, bool)
	Resolve(r annotation.Response) (annotation.Result, error)
}

var _ AnnotationSession = (*annotation.Session)(nil)

// LabelAsker blocks until the operator answers the label prompt.
type LabelAsker interface {
	Ask() (annotation.Response, error)
}

// CanvasView shows annotation frames.
type CanvasView interface {
	Present(img image.Image)
	Bounds() image.Rectangle
}

// Scheduler runs fn on the UI thread after d.
type Scheduler func(d time.Duration, fn func())

type answer struct {
	resp annotation.Response
	err  error
}

// AnnotationPresenter routes pointer events into the session and the frames it produces
// into the canvas. The label prompt runs on its own goroutine; answers are applied to
// the session from Tick, on the UI thread.
type AnnotationPresenter struct {
	session     AnnotationSession
	asker       LabelAsker
	view        CanvasView
	schedule    Scheduler
	logger      *slog.Logger
	onResult    func(annotation.Result)
	answers     chan answer
	asking      bool
	inputClosed bool
}

// NewAnnotationPresenter returns a presenter. A nil schedule runs the prompt immediately.
func NewAnnotationPresenter(session AnnotationSession, asker LabelAsker, view CanvasView, schedule Scheduler, logger *slog.Logger) *AnnotationPresenter {
	if schedule == nil {
		schedule = func(_ time.Duration, fn func()) { fn() }
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AnnotationPresenter{
		session:  session,
		asker:    asker,
		view:     view,
		schedule: schedule,
		logger:   logger,
		answers:  make(chan answer, 1),
	}
}

// OnResult registers fn for every resolved prompt answer.
func (p *AnnotationPresenter) OnResult(fn func(annotation.Result)) {
	if p != nil {
		p.onResult = fn
	}
}

// Show presents the current base layer.
func (p *AnnotationPresenter) Show() {
	if p == nil || p.session == nil || p.view == nil {
		return
	}
	p.view.Present(p.session.Base())
}

// Asking reports whether a prompt answer is outstanding.
func (p *AnnotationPresenter) Asking() bool { return p != nil && p.asking }

func (p *AnnotationPresenter) clamp(pt image.Point) image.Point {
	return images.ClampPoint(pt, p.view.Bounds())
}

// OnPress starts a drag at pt and shows the single-point preview.
func (p *AnnotationPresenter) OnPress(pt image.Point) {
	if p == nil || p.session == nil || p.view == nil {
		return
	}
	pt = p.clamp(pt)
	if !p.session.PointerDown(pt) {
		return
	}
	if frame, ok := p.session.PointerMove(pt); ok {
		p.view.Present(frame)
	}
}

// OnDrag previews the rectangle from the drag anchor to pt.
func (p *AnnotationPresenter) OnDrag(pt image.Point) {
	if p == nil || p.session == nil || p.view == nil {
		return
	}
	if frame, ok := p.session.PointerMove(p.clamp(pt)); ok {
		p.view.Present(frame)
	}
}

// OnRelease freezes the box, shows it and schedules the label prompt.
func (p *AnnotationPresenter) OnRelease(pt image.Point) {
	if p == nil || p.session == nil || p.view == nil {
		return
	}
	box, ok := p.session.PointerUp(p.clamp(pt))
	if !ok {
		return
	}
	p.view.Present(p.session.Base())
	p.logger.Debug("box drawn", "x1", box.X1, "y1", box.Y1, "x2", box.X2, "y2", box.Y2)
	p.schedule(promptDelay, p.ask)
}

func (p *AnnotationPresenter) ask() {
	if p.asking || p.asker == nil {
		return
	}
	p.asking = true
	if p.inputClosed {
		p.answers <- answer{err: io.EOF}
		return
	}
	go func() {
		r, err := p.asker.Ask()
		p.answers <- answer{resp: r, err: err}
	}()
}

// Tick applies an answer that arrived since the last tick.
func (p *AnnotationPresenter) Tick() {
	if p == nil {
		return
	}
	select {
	case a := <-p.answers:
		p.asking = false
		p.resolve(a)
	default:
	}
}

func (p *AnnotationPresenter) resolve(a answer) {
	if a.err != nil {
		if errors.Is(a.err, io.EOF) {
			if !p.inputClosed {
				p.logger.Warn("label input closed; drawn boxes will be discarded")
				p.inputClosed = true
			}
		} else {
			p.logger.Error("read label", "error", a.err)
		}
		a.resp = annotation.Redo()
	}
	res, err := p.session.Resolve(a.resp)
	if errors.Is(err, annotation.ErrInvalidLabel) {
		p.logger.Warn("label rejected", "error", err)
		p.ask()
		return
	}
	if err != nil {
		p.logger.Error("apply label", "error", err)
	}
	if res.Outcome != 0 && p.onResult != nil {
		p.onResult(res)
	}
	p.view.Present(p.session.Base())
}
