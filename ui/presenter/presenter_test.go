package presenter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/soocke/pixel-labeler/domain/annotation"
	"github.com/soocke/pixel-labeler/ui/model"
)

type mockStateView struct{ labels []string }

func (v *mockStateView) SetStateLabel(s string) { v.labels = append(v.labels, s) }

func TestFSMPresenter_ReflectsLatest(t *testing.T) {
	view := &mockStateView{}
	p := NewFSMPresenter(view)
	now := time.Now()

	p.Tick(now)
	assert.Empty(t, view.labels)

	p.OnState(annotation.StateIdle, annotation.StateDragging)
	p.OnState(annotation.StateDragging, annotation.StateAwaitingLabel)
	p.Tick(now)
	assert.Equal(t, []string{"State: awaiting label"}, view.labels)

	// same state again is not re-rendered
	p.OnState(annotation.StateDragging, annotation.StateAwaitingLabel)
	p.Tick(now)
	assert.Len(t, view.labels, 1)

	p.OnState(annotation.StateAwaitingLabel, annotation.StateIdle)
	p.Tick(now)
	assert.Equal(t, "State: idle", view.labels[len(view.labels)-1])
}

type fixedState struct{ s annotation.State }

func (f *fixedState) State() annotation.State { return f.s }

type mockSessionView struct {
	elapsed, labeling time.Duration
	counts            model.Counts
	calls             int
}

func (v *mockSessionView) SetSession(e, l time.Duration) { v.elapsed, v.labeling = e, l; v.calls++ }
func (v *mockSessionView) SetCounts(c model.Counts)      { v.counts = c }

func TestSessionPresenter_Tick(t *testing.T) {
	src := &fixedState{s: annotation.StateIdle}
	view := &mockSessionView{}
	p := NewSessionPresenter(model.NewSessionModel(), src, view)
	base := time.Unix(100, 0)

	p.Tick(base)
	src.s = annotation.StateAwaitingLabel
	p.Tick(base.Add(2 * time.Second))
	p.Tick(base.Add(5 * time.Second))
	src.s = annotation.StateIdle
	p.Tick(base.Add(6 * time.Second))
	p.OnResult(annotation.Result{Outcome: annotation.OutcomeCommitted})
	p.OnResult(annotation.Result{Outcome: annotation.OutcomeDiscarded})
	p.Tick(base.Add(7 * time.Second))

	assert.Equal(t, 7*time.Second, view.elapsed)
	assert.Equal(t, 4*time.Second, view.labeling)
	assert.Equal(t, model.Counts{Committed: 1, Discarded: 1}, view.counts)
	assert.Equal(t, 5, view.calls)
}

func TestLoop_TickNilSafe(t *testing.T) {
	var l *Loop
	l.Tick()

	scheduled := 0
	l = NewLoop(nil, nil, nil, func() { scheduled++ })
	l.Tick()
	assert.Equal(t, 1, scheduled)
}

func TestLoop_TickDrivesPresenters(t *testing.T) {
	stateView := &mockStateView{}
	sessView := &mockSessionView{}
	fsm := NewFSMPresenter(stateView)
	sess := NewSessionPresenter(model.NewSessionModel(), &fixedState{}, sessView)
	fsm.OnState(annotation.StateIdle, annotation.StateDragging)

	l := NewLoop(nil, fsm, sess, nil)
	l.Tick()
	assert.Equal(t, []string{"State: dragging"}, stateView.labels)
	assert.Equal(t, 1, sessView.calls)
}
