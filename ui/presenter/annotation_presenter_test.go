package presenter

import (
	"errors"
	"image"
	"image/color"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soocke/pixel-labeler/domain/annotation"
	"github.com/soocke/pixel-labeler/domain/records"
)

type scriptedAsker struct {
	mu      sync.Mutex
	answers []annotation.Response
	errs    []error
	calls   int
}

func (a *scriptedAsker) Ask() (annotation.Response, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	i := a.calls
	a.calls++
	if i < len(a.errs) && a.errs[i] != nil {
		return annotation.Response{}, a.errs[i]
	}
	if i < len(a.answers) {
		return a.answers[i], nil
	}
	return annotation.Response{}, io.EOF
}

func (a *scriptedAsker) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

type mockCanvas struct {
	bounds image.Rectangle
	frames []image.Image
}

func (c *mockCanvas) Present(img image.Image) { c.frames = append(c.frames, img) }
func (c *mockCanvas) Bounds() image.Rectangle { return c.bounds }
func (c *mockCanvas) last() image.Image       { return c.frames[len(c.frames)-1] }

func newAnnotationFixture(t *testing.T, asker LabelAsker) (*AnnotationPresenter, *annotation.Session, *records.Store, *mockCanvas) {
	t.Helper()
	display := image.NewNRGBA(image.Rect(0, 0, 100, 80))
	for i := 3; i < len(display.Pix); i += 4 {
		display.Pix[i] = 255
	}
	store := records.NewStore(filepath.Join(t.TempDir(), "annotations.csv"), nil)
	sess, err := annotation.NewSession(annotation.Options{
		ImageID:    "car1",
		Display:    display,
		Vocabulary: annotation.NewVocabulary("lp", "eo", "logo", "ss"),
		Store:      store,
	})
	require.NoError(t, err)
	canvas := &mockCanvas{bounds: display.Bounds()}
	p := NewAnnotationPresenter(sess, asker, canvas, nil, nil)
	return p, sess, store, canvas
}

// settle ticks until the outstanding answer has been applied.
func settle(t *testing.T, p *AnnotationPresenter) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for p.Asking() {
		require.True(t, time.Now().Before(deadline), "answer never arrived")
		time.Sleep(time.Millisecond)
		p.Tick()
	}
}

func TestAnnotationPresenter_DragPreviewAndCommit(t *testing.T) {
	asker := &scriptedAsker{answers: []annotation.Response{annotation.Accept("lp")}}
	p, sess, store, canvas := newAnnotationFixture(t, asker)
	var results []annotation.Result
	p.OnResult(func(r annotation.Result) { results = append(results, r) })

	p.Show()
	p.OnPress(image.Pt(10, 10))
	require.Len(t, canvas.frames, 2, "press shows a preview right away")
	assert.NotEqual(t, sess.Base(), canvas.last())
	p.OnDrag(image.Pt(30, 25))
	p.OnDrag(image.Pt(50, 40))
	assert.Len(t, canvas.frames, 4, "show, press and two previews")
	assert.Empty(t, sess.Boxes())

	p.OnRelease(image.Pt(50, 40))
	assert.True(t, p.Asking())
	assert.Equal(t, annotation.StateAwaitingLabel, sess.State())
	settle(t, p)

	rows, err := store.RowsFor("car1")
	require.NoError(t, err)
	assert.Equal(t, []records.Row{{ImageID: "car1", X1: 10, Y1: 10, X2: 50, Y2: 40, Label: "lp"}}, rows)
	require.Len(t, results, 1)
	assert.Equal(t, annotation.OutcomeCommitted, results[0].Outcome)
	assert.Equal(t, sess.Base(), canvas.last())
	assert.Equal(t, annotation.StateIdle, sess.State())
}

func TestAnnotationPresenter_PressPreviewsAnchorPixel(t *testing.T) {
	p, sess, _, canvas := newAnnotationFixture(t, &scriptedAsker{})
	p.OnPress(image.Pt(20, 30))
	require.Len(t, canvas.frames, 1)
	r, g, b, _ := canvas.last().At(20, 30).RGBA()
	assert.Equal(t, [3]uint32{0, 0xffff, 0}, [3]uint32{r, g, b})
	assert.Equal(t, annotation.StateDragging, sess.State())
	assert.Empty(t, sess.Boxes())
}

func TestAnnotationPresenter_PointerClampedToCanvas(t *testing.T) {
	asker := &scriptedAsker{answers: []annotation.Response{annotation.Accept("ss")}}
	p, sess, _, _ := newAnnotationFixture(t, asker)
	p.OnPress(image.Pt(-20, 70))
	p.OnRelease(image.Pt(400, -3))
	settle(t, p)
	assert.Equal(t, []annotation.Box{{X1: 0, Y1: 0, X2: 99, Y2: 70, Label: "ss"}}, sess.Boxes())
}

func TestAnnotationPresenter_PointerIgnoredWhileAsking(t *testing.T) {
	block := make(chan struct{})
	asker := &blockingAsker{release: block, resp: annotation.Redo()}
	p, sess, _, canvas := newAnnotationFixture(t, asker)

	p.OnPress(image.Pt(1, 1))
	p.OnRelease(image.Pt(9, 9))
	frames := len(canvas.frames)
	p.OnPress(image.Pt(20, 20))
	p.OnDrag(image.Pt(30, 30))
	p.OnRelease(image.Pt(30, 30))
	assert.Len(t, canvas.frames, frames)
	assert.Equal(t, annotation.StateAwaitingLabel, sess.State())

	close(block)
	settle(t, p)
	assert.Equal(t, annotation.StateIdle, sess.State())
	assert.Empty(t, sess.Boxes())
}

type blockingAsker struct {
	release chan struct{}
	resp    annotation.Response
}

func (a *blockingAsker) Ask() (annotation.Response, error) {
	<-a.release
	return a.resp, nil
}

func TestAnnotationPresenter_EOFDiscards(t *testing.T) {
	asker := &scriptedAsker{}
	p, sess, store, _ := newAnnotationFixture(t, asker)
	var outcomes []annotation.Outcome
	p.OnResult(func(r annotation.Result) { outcomes = append(outcomes, r.Outcome) })

	for i := 0; i < 2; i++ {
		p.OnPress(image.Pt(1, 1))
		p.OnRelease(image.Pt(9, 9))
		settle(t, p)
	}
	assert.Equal(t, 1, asker.Calls(), "closed input is not read again")
	assert.Equal(t, []annotation.Outcome{annotation.OutcomeDiscarded, annotation.OutcomeDiscarded}, outcomes)
	assert.Empty(t, sess.Boxes())
	rows, err := store.RowsFor("car1")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAnnotationPresenter_ReadErrorDiscards(t *testing.T) {
	asker := &scriptedAsker{
		errs:    []error{errors.New("tty gone")},
		answers: []annotation.Response{{}, annotation.Accept("eo")},
	}
	p, sess, _, _ := newAnnotationFixture(t, asker)
	p.OnPress(image.Pt(1, 1))
	p.OnRelease(image.Pt(9, 9))
	settle(t, p)
	assert.Empty(t, sess.Boxes())

	p.OnPress(image.Pt(1, 1))
	p.OnRelease(image.Pt(9, 9))
	settle(t, p)
	assert.Len(t, sess.Boxes(), 1)
}

func TestAnnotationPresenter_InvalidLabelAsksAgain(t *testing.T) {
	asker := &scriptedAsker{answers: []annotation.Response{annotation.Accept("car"), annotation.Accept("logo")}}
	p, sess, _, _ := newAnnotationFixture(t, asker)
	p.OnPress(image.Pt(1, 1))
	p.OnRelease(image.Pt(9, 9))
	settle(t, p)
	assert.Equal(t, 2, asker.Calls())
	require.Len(t, sess.Boxes(), 1)
	assert.Equal(t, "logo", sess.Boxes()[0].Label)
}

func TestAnnotationPresenter_CleanRedraws(t *testing.T) {
	asker := &scriptedAsker{answers: []annotation.Response{annotation.Accept("lp"), annotation.Clean()}}
	p, sess, _, canvas := newAnnotationFixture(t, asker)
	for i := 0; i < 2; i++ {
		p.OnPress(image.Pt(10, 10))
		p.OnRelease(image.Pt(40, 40))
		settle(t, p)
	}
	assert.Empty(t, sess.Boxes())
	got := canvas.last().(*image.NRGBA)
	assert.Equal(t, color.NRGBA{A: 255}, got.NRGBAAt(10, 10), "box outline removed")
}

func TestAnnotationPresenter_SchedulesPrompt(t *testing.T) {
	asker := &scriptedAsker{answers: []annotation.Response{annotation.Redo()}}
	p, _, _, _ := newAnnotationFixture(t, asker)
	var delays []time.Duration
	var queued []func()
	p.schedule = func(d time.Duration, fn func()) {
		delays = append(delays, d)
		queued = append(queued, fn)
	}
	p.OnPress(image.Pt(1, 1))
	p.OnRelease(image.Pt(9, 9))
	assert.False(t, p.Asking(), "prompt waits for the scheduler")
	require.Len(t, queued, 1)
	assert.Equal(t, []time.Duration{promptDelay}, delays)
	queued[0]()
	settle(t, p)
	assert.Equal(t, 1, asker.Calls())
}

func TestAnnotationPresenter_NilSafe(t *testing.T) {
	var p *AnnotationPresenter
	p.Show()
	p.OnPress(image.Pt(1, 1))
	p.OnDrag(image.Pt(1, 1))
	p.OnRelease(image.Pt(1, 1))
	p.Tick()
	assert.False(t, p.Asking())
}
