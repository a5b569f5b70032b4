package view

import (
	"image"
	"log/slog"
	"time"

	"github.com/soocke/pixel-labeler/ui/model"
	"github.com/soocke/pixel-labeler/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// QuitHint is shown under the image and printed on startup.
const QuitHint = "Press 'q' to quit and save."

// Handlers receive user actions. Points are widget-relative display pixels.
type Handlers struct {
	OnPress   func(image.Point)
	OnDrag    func(image.Point)
	OnRelease func(image.Point)
	OnQuit    func()
}

// RootView composes the window: a status row above the annotation canvas.
type RootView struct {
	logger *slog.Logger

	// Subviews
	Session SessionStats
	Canvas  *CanvasView

	// Widgets
	StateLabel *TLabelWidget
}

func NewRootView(logger *slog.Logger) *RootView {
	return &RootView{logger: logger}
}

// Build constructs the layout around display and wires pointer and key bindings.
func (rv *RootView) Build(title string, display image.Image, h Handlers) {
	if rv == nil {
		return
	}
	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", h.OnQuit)

	// Row 0: stats, state label, quit button
	rv.Session = NewSessionStats(0, 0)
	rv.StateLabel = TLabel(Txt("State: idle"), Style(theme.StyleStateLabel))
	Grid(rv.StateLabel, Row(0), Column(3), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	quit := TButton(Txt("Quit [q]"), Style(theme.StyleDangerButton), Command(h.OnQuit))
	Grid(quit, Row(0), Column(4), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))

	// Row 1: canvas
	rv.Canvas = NewCanvasView(display, 1, 5)
	bindPointer(rv.Canvas.Widget(), h)

	// Row 2: hint
	hint := TLabel(Txt(QuitHint), Style(theme.StyleHintLabel))
	Grid(hint, Row(2), Column(0), Columnspan(5), Sticky("w"), Padx("0.4m"), Pady("0.3m"))

	Bind(App, "<KeyPress-q>", Command(h.OnQuit))
}

func bindPointer(w *LabelWidget, h Handlers) {
	Bind(w, "<ButtonPress-1>", Command(func(e *Event) { h.OnPress(eventPoint(e)) }))
	Bind(w, "<B1-Motion>", Command(func(e *Event) { h.OnDrag(eventPoint(e)) }))
	Bind(w, "<ButtonRelease-1>", Command(func(e *Event) { h.OnRelease(eventPoint(e)) }))
}

// eventPoint reads the widget-relative pointer position (%x %y).
func eventPoint(e *Event) image.Point { return image.Pt(e.X, e.Y) }

// SetStateLabel updates the state label text.
func (rv *RootView) SetStateLabel(text string) {
	if rv != nil && rv.StateLabel != nil {
		rv.StateLabel.Configure(Txt(text))
	}
}

// SetSession updates the elapsed and labeling clocks.
func (rv *RootView) SetSession(elapsed, labeling time.Duration) {
	if rv == nil || rv.Session == nil {
		return
	}
	rv.Session.SetElapsed(elapsed)
	rv.Session.SetLabeling(labeling)
}

// SetCounts updates the answer counters.
func (rv *RootView) SetCounts(c model.Counts) {
	if rv != nil && rv.Session != nil {
		rv.Session.SetCounts(c)
	}
}

// Present proxies to the canvas.
func (rv *RootView) Present(img image.Image) {
	if rv != nil {
		rv.Canvas.Present(img)
	}
}

// Bounds proxies to the canvas.
func (rv *RootView) Bounds() image.Rectangle {
	if rv == nil {
		return image.Rectangle{}
	}
	return rv.Canvas.Bounds()
}
