package presenter

import (
	"time"

	"github.com/soocke/pixel-labeler/domain/annotation"
)

// StateView sets the state label in the view.
type StateView interface{ SetStateLabel(string) }

// FSMPresenter receives session state changes and reflects the latest on Tick.
type FSMPresenter struct {
	view    StateView
	latest  annotation.State
	pending []annotation.State
}

func NewFSMPresenter(view StateView) *FSMPresenter {
	return &FSMPresenter{view: view}
}

// OnState queues a transitioned state. It matches annotation.StateListener.
func (p *FSMPresenter) OnState(_, next annotation.State) {
	if p == nil {
		return
	}
	p.pending = append(p.pending, next)
}

// Tick pushes the most recent queued state to the view and clears the queue.
func (p *FSMPresenter) Tick(time.Time) {
	if p == nil || p.view == nil || len(p.pending) == 0 {
		return
	}
	last := p.pending[len(p.pending)-1]
	p.pending = p.pending[:0]
	if last != p.latest {
		p.latest = last
		p.view.SetStateLabel("State: " + last.String())
	}
}
