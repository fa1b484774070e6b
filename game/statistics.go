package game

import (
	"time"

	"github.com/samber/lo"

	"github.com/domino14/mnkgame/board"
	"github.com/domino14/mnkgame/move"
	"github.com/domino14/mnkgame/stats"
)

// Decision is one top-level search made for this game.
type Decision struct {
	Player  board.Player
	Move    move.Move
	Value   int
	States  uint64
	Cutoffs uint64
	Elapsed time.Duration
	// Line is the principal variation the engine expected to follow.
	Line []move.Move
}

// Statistics are the search statistics of one game instance. They are
// only reset by starting a new game.
type Statistics struct {
	// StatesVisited is the total over every search made for the game.
	StatesVisited uint64
	// LastSearchStates is the count for the most recent search.
	LastSearchStates uint64
	Decisions        []Decision
}

func (s *Statistics) record(d Decision) {
	s.StatesVisited += d.States
	s.LastSearchStates = d.States
	s.Decisions = append(s.Decisions, d)
}

func (s Statistics) clone() Statistics {
	s.Decisions = append([]Decision(nil), s.Decisions...)
	return s
}

// ElapsedTimes is the per-decision elapsed time sequence.
func (s Statistics) ElapsedTimes() []time.Duration {
	return lo.Map(s.Decisions, func(d Decision, _ int) time.Duration {
		return d.Elapsed
	})
}

// MeanDecisionTime is the mean search time per decision, in seconds.
func (s Statistics) MeanDecisionTime() float64 {
	return stats.MeanDuration(s.ElapsedTimes())
}

// TotalElapsed sums the time spent searching.
func (s Statistics) TotalElapsed() time.Duration {
	return lo.Sum(s.ElapsedTimes())
}

// StatesFor sums the states visited in searches made for p.
func (s Statistics) StatesFor(p board.Player) uint64 {
	return lo.SumBy(s.Decisions, func(d Decision) uint64 {
		if d.Player != p {
			return 0
		}
		return d.States
	})
}
