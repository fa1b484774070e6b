package game

import (
	"errors"
	"fmt"

	"github.com/domino14/mnkgame/solver"
	"github.com/domino14/mnkgame/solver/alphabeta"
	"github.com/domino14/mnkgame/solver/minimax"
)

var ErrUnknownEngine = errors.New("unknown engine")

// Engines lists the engine names NewSolver accepts.
var Engines = []string{solver.MinimaxName, solver.AlphaBetaName}

// NewSolver returns a fresh engine by name.
func NewSolver(name string) (solver.Solver, error) {
	switch name {
	case solver.MinimaxName:
		return minimax.NewSolver(), nil
	case solver.AlphaBetaName:
		return alphabeta.NewSolver(), nil
	}
	return nil, fmt.Errorf("%w: %q (want one of %v)", ErrUnknownEngine, name, Engines)
}
