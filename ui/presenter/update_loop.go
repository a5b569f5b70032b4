package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// Answers are applied first so the state and counters shown reflect them on the same
// tick. The zero value is usable (methods are nil-safe).
type Loop struct {
	Annotate *AnnotationPresenter
	FSM      *FSMPresenter
	Session  *SessionPresenter
	Schedule func()
}

func NewLoop(annotate *AnnotationPresenter, fsm *FSMPresenter, sess *SessionPresenter, schedule func()) *Loop {
	return &Loop{Annotate: annotate, FSM: fsm, Session: sess, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	l.Annotate.Tick()
	l.FSM.Tick(now)
	l.Session.Tick(now)
	if l.Schedule != nil {
		l.Schedule()
	}
}
