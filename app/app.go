package app

import (
	"fmt"
	"image"
	"io"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/pixel-labeler/export"
	"github.com/soocke/pixel-labeler/ui/presenter"
	"github.com/soocke/pixel-labeler/ui/theme"
	"github.com/soocke/pixel-labeler/ui/view"
)

const tick = 100 * time.Millisecond

// Labeler runs the annotation window for one image.
type Labeler struct {
	c       *AppContainer
	out     io.Writer
	afterID string
	quit    bool
	result  export.Result
}

func NewLabeler(c *AppContainer, out io.Writer) *Labeler {
	return &Labeler{c: c, out: out}
}

// Run shows the window and blocks until the operator quits. The export result is
// returned after the window is destroyed.
func (a *Labeler) Run() export.Result {
	c := a.c
	theme.Init(c.Config.DarkMode)
	c.RootView.Build("Labeler - "+c.ImageID, c.Display, view.Handlers{
		OnPress:   func(p image.Point) { c.AnnotationPresenter.OnPress(p) },
		OnDrag:    func(p image.Point) { c.AnnotationPresenter.OnDrag(p) },
		OnRelease: func(p image.Point) { c.AnnotationPresenter.OnRelease(p) },
		OnQuit:    a.exitHandler,
	})

	schedule := func(d time.Duration, fn func()) { TclAfter(d, fn) }
	c.AnnotationPresenter = presenter.NewAnnotationPresenter(c.Session, c.Prompter, c.RootView, schedule, c.Logger)
	c.FSMPresenter = presenter.NewFSMPresenter(c.RootView)
	c.SessionPresenter = presenter.NewSessionPresenter(c.Stats, c.Session, c.RootView)
	c.AnnotationPresenter.OnResult(c.SessionPresenter.OnResult)
	c.Session.AddListener(c.FSMPresenter.OnState)
	c.Loop = presenter.NewLoop(c.AnnotationPresenter, c.FSMPresenter, c.SessionPresenter, a.scheduleUpdate)

	c.AnnotationPresenter.Show()
	fmt.Fprintln(a.out, view.QuitHint)
	a.scheduleUpdate()

	App.Wait()
	return a.result
}

func (a *Labeler) scheduleUpdate() {
	// TclAfter keeps the loop on Tk's event thread.
	a.afterID = TclAfter(tick, func() { a.c.Loop.Tick() })
}

// exitHandler exports once, reports the result and closes the window.
func (a *Labeler) exitHandler() {
	if a.quit {
		return
	}
	a.quit = true
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	c := a.c
	if c.AnnotationPresenter.Asking() {
		c.Logger.Warn("quit while a label was pending; the box is not saved")
	}
	a.result = export.Write(c.Session, c.Original, export.Target{
		Path:    c.Config.OutputPath(c.ImageID),
		Format:  c.Config.OutputFormat,
		Quality: c.Config.OutputQuality,
	}, c.Logger)
	if err := export.Report(a.out, a.result); err != nil {
		c.Logger.Error("report export", "error", err)
	}
	Destroy(App)
}
