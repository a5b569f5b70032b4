package presenter

import (
	"time"

	"github.com/soocke/pixel-labeler/domain/annotation"
	"github.com/soocke/pixel-labeler/ui/model"
)

// StateSource reports the session state.
type StateSource interface{ State() annotation.State }

// SessionView displays elapsed and labeling durations plus answer counters.
type SessionView interface {
	SetSession(elapsed, labeling time.Duration)
	SetCounts(c model.Counts)
}

// SessionPresenter feeds the session model from the annotation state and pushes its
// values to the view.
type SessionPresenter struct {
	sess *model.SessionModel
	src  StateSource
	view SessionView
}

// NewSessionPresenter returns a new SessionPresenter.
func NewSessionPresenter(sess *model.SessionModel, src StateSource, view SessionView) *SessionPresenter {
	return &SessionPresenter{sess: sess, src: src, view: view}
}

// OnResult counts a resolved prompt answer.
func (p *SessionPresenter) OnResult(res annotation.Result) {
	if p == nil || p.sess == nil {
		return
	}
	p.sess.Record(res.Outcome)
}

// Tick advances the model and refreshes the view.
func (p *SessionPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.src == nil || p.view == nil {
		return
	}
	p.sess.OnTick(p.src.State() == annotation.StateAwaitingLabel, now)
	p.view.SetSession(p.sess.Values())
	p.view.SetCounts(p.sess.Counts())
}
