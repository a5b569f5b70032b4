package view

import (
	"fmt"
	"time"

	"github.com/soocke/pixel-labeler/ui/model"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// SessionStats shows elapsed time, labeling time and answer counters.
type SessionStats interface {
	SetElapsed(d time.Duration)
	SetLabeling(d time.Duration)
	SetCounts(c model.Counts)
}

type sessionStats struct {
	elapsedLbl  *LabelWidget
	labelingLbl *LabelWidget
	countsLbl   *LabelWidget
}

// NewSessionStats creates the three labels at (row, startCol..startCol+2).
func NewSessionStats(row, startCol int) SessionStats {
	s := &sessionStats{elapsedLbl: Label(Width(14)), labelingLbl: Label(Width(15)), countsLbl: Label(Width(30))}
	Grid(s.elapsedLbl, Row(row), Column(startCol), Sticky("w"), Padx("0.2m"))
	Grid(s.labelingLbl, Row(row), Column(startCol+1), Sticky("w"), Padx("0.2m"))
	Grid(s.countsLbl, Row(row), Column(startCol+2), Sticky("w"), Padx("0.2m"))
	s.SetElapsed(0)
	s.SetLabeling(0)
	s.SetCounts(model.Counts{})
	return s
}

func clock(d time.Duration) string {
	seconds := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func (s *sessionStats) SetElapsed(d time.Duration) {
	if s == nil || s.elapsedLbl == nil {
		return
	}
	s.elapsedLbl.Configure(Txt("Elapsed: " + clock(d)))
}

func (s *sessionStats) SetLabeling(d time.Duration) {
	if s == nil || s.labelingLbl == nil {
		return
	}
	s.labelingLbl.Configure(Txt("Labeling: " + clock(d)))
}

func (s *sessionStats) SetCounts(c model.Counts) {
	if s == nil || s.countsLbl == nil {
		return
	}
	s.countsLbl.Configure(Txt(fmt.Sprintf("Boxes: %d  Redo: %d  Clean: %d", c.Committed, c.Discarded, c.Cleaned)))
}
