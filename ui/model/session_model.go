package model

import (
	"time"

	"github.com/soocke/pixel-labeler/domain/annotation"
)

// Counts tallies how prompt answers resolved.
type Counts struct {
	Committed int
	Discarded int
	Cleaned   int
}

// SessionModel tracks time spent on the image, time spent waiting for labels and the
// answer counters. Presenters poll Values and Counts; the zero value is ready to use and
// starts its clock on the first tick.
type SessionModel struct {
	started     time.Time
	elapsed     time.Duration
	labeling    bool
	promptStart time.Time
	lastPrompt  time.Duration
	accumulated time.Duration
	counts      Counts
}

// NewSessionModel returns a pointer to a ready-to-use SessionModel.
func NewSessionModel() *SessionModel { return &SessionModel{} }

// OnTick advances the clocks. labeling reports whether a label is currently awaited.
func (m *SessionModel) OnTick(labeling bool, now time.Time) {
	if m == nil {
		return
	}
	if m.started.IsZero() {
		m.started = now
	}
	m.elapsed = now.Sub(m.started)
	if labeling {
		if !m.labeling { // prompt opened
			m.labeling = true
			m.promptStart = now
		}
		m.lastPrompt = now.Sub(m.promptStart)
	} else if m.labeling { // prompt answered
		m.lastPrompt = now.Sub(m.promptStart)
		m.accumulated += m.lastPrompt
		m.labeling = false
	}
}

// Record counts one resolved answer.
func (m *SessionModel) Record(o annotation.Outcome) {
	if m == nil {
		return
	}
	switch o {
	case annotation.OutcomeCommitted:
		m.counts.Committed++
	case annotation.OutcomeDiscarded:
		m.counts.Discarded++
	case annotation.OutcomeCleaned:
		m.counts.Cleaned++
	}
}

// Values returns the time since the first tick and the total time spent waiting for
// labels, including an open prompt.
func (m *SessionModel) Values() (elapsed, labeling time.Duration) {
	if m == nil {
		return 0, 0
	}
	labeling = m.accumulated
	if m.labeling {
		labeling += m.lastPrompt
	}
	return m.elapsed, labeling
}

// Counts returns the answer counters.
func (m *SessionModel) Counts() Counts {
	if m == nil {
		return Counts{}
	}
	return m.counts
}
