// Package game holds one m,n,k game instance: its board, whose turn it is,
// the engine that recommends moves and the statistics of every search made
// for it. A Game doesn't care how it is played; the loop in loop.go and
// the shell drive it.
package game

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/domino14/mnkgame/board"
	"github.com/domino14/mnkgame/move"
	"github.com/domino14/mnkgame/solver"
)

var (
	ErrGameOver      = errors.New("game is over")
	ErrNothingToUndo = errors.New("no moves to undo")
)

// PlayState is the state of the game loop.
type PlayState int

const (
	AwaitingMin PlayState = iota
	AwaitingMax
	Finished
)

func (s PlayState) String() string {
	switch s {
	case AwaitingMin:
		return "awaiting MIN move"
	case AwaitingMax:
		return "awaiting MAX move"
	case Finished:
		return "finished"
	}
	return fmt.Sprintf("PlayState(%d)", int(s))
}

// Settings are what a game is initialized with.
type Settings struct {
	Rows int
	Cols int
	K    int
	// MaxAutomated and MinAutomated say whether the engine's
	// recommendation is applied directly for that side. Otherwise a
	// MoveSource is asked for the move.
	MaxAutomated bool
	MinAutomated bool
	Engine       string
}

type Game struct {
	settings Settings
	board    *board.Board
	engine   solver.Solver

	onturn  board.Player
	playing PlayState
	// value is the terminal value once playing is Finished.
	value int
	// fatal is set once an internal inconsistency has been seen; the game
	// can't be continued after that.
	fatal error

	stats Statistics
	// pending is the last recommendation, kept so it can be attached to
	// the turn that follows it.
	pending *Decision
	turns   []Turn
}

// NewGame initializes a game with an empty board. MIN moves first.
func NewGame(settings Settings) (*Game, error) {
	b, err := board.NewBoard(settings.Rows, settings.Cols, settings.K)
	if err != nil {
		return nil, err
	}
	if settings.Engine == "" {
		settings.Engine = solver.AlphaBetaName
	}
	engine, err := NewSolver(settings.Engine)
	if err != nil {
		return nil, err
	}
	return &Game{
		settings: settings,
		board:    b,
		engine:   engine,
		onturn:   board.MinPlayer,
		playing:  AwaitingMin,
	}, nil
}

func (g *Game) Settings() Settings {
	return g.settings
}

// Board returns the live board. Callers must not mutate it.
func (g *Game) Board() *board.Board {
	return g.board
}

func (g *Game) Engine() solver.Solver {
	return g.engine
}

func (g *Game) PlayerOnTurn() board.Player {
	return g.onturn
}

func (g *Game) Playing() PlayState {
	return g.playing
}

// Automated says whether p's moves are applied without asking a human.
func (g *Game) Automated(p board.Player) bool {
	if p == board.MaxPlayer {
		return g.settings.MaxAutomated
	}
	return g.settings.MinAutomated
}

// Value is the terminal value of a finished game: the winner's identity,
// or board.Draw.
func (g *Game) Value() int {
	return g.value
}

// Winner returns the winning player of a finished game, and false for a
// draw or a game still in progress.
func (g *Game) Winner() (board.Player, bool) {
	if g.playing != Finished || g.value == board.Draw {
		return 0, false
	}
	return board.Player(g.value), true
}

// OutcomeString describes how a finished game ended.
func (g *Game) OutcomeString() string {
	if g.playing != Finished {
		return "The game is not over"
	}
	if winner, ok := g.Winner(); ok {
		return fmt.Sprintf("The winner is player %v", winner)
	}
	return "The game is a draw"
}

func (g *Game) stateFor(p board.Player) PlayState {
	if p == board.MaxPlayer {
		return AwaitingMax
	}
	return AwaitingMin
}

func (g *Game) checkPlayable(p board.Player) error {
	if g.fatal != nil {
		return g.fatal
	}
	if g.playing == Finished {
		return ErrGameOver
	}
	if p != board.MaxPlayer && p != board.MinPlayer {
		return fmt.Errorf("%w: no such player %v", solver.ErrInternalInconsistency, p)
	}
	if p != g.onturn {
		return fmt.Errorf("%w: %v to move, not %v", board.ErrOutOfTurn, g.onturn, p)
	}
	return nil
}

// ComputeBestMove asks the engine for the value of the position and a move
// achieving it for p, who must be on turn. The board is not changed. The
// search is recorded in the game's statistics.
func (g *Game) ComputeBestMove(p board.Player) (int, move.Move, error) {
	if err := g.checkPlayable(p); err != nil {
		return 0, move.NoMove, err
	}
	res, err := g.engine.Solve(g.board, p)
	if err != nil {
		if errors.Is(err, solver.ErrInternalInconsistency) {
			g.fatal = err
		}
		return 0, move.NoMove, err
	}
	d := Decision{
		Player:  p,
		Move:    res.Move,
		Value:   res.Value,
		States:  res.Nodes,
		Cutoffs: res.Cutoffs,
		Elapsed: res.Elapsed,
		Line:    res.PV.Moves,
	}
	g.stats.record(d)
	g.pending = &d
	return res.Value, res.Move, nil
}

// ApplyMove commits p's move to the board, runs the terminal test and
// either finishes the game or hands the turn to the opponent. An invalid
// move leaves the game untouched and wraps board.ErrInvalidMove.
func (g *Game) ApplyMove(p board.Player, m move.Move) error {
	if err := g.checkPlayable(p); err != nil {
		return err
	}
	if err := g.board.ValidateMove(m); err != nil {
		return err
	}
	g.board.PlayMove(p, m)
	terminal, value, err := g.board.CheckTerminal(p)
	if err != nil {
		g.fatal = err
		return err
	}

	turn := Turn{Player: p, Move: m, Automated: g.Automated(p)}
	if g.pending != nil && g.pending.Player == p {
		turn.Recommendation = g.pending
	}
	g.pending = nil
	g.turns = append(g.turns, turn)

	if terminal {
		g.playing = Finished
		g.value = value
	} else {
		g.onturn = p.Opponent()
		g.playing = g.stateFor(g.onturn)
	}
	log.Debug().Stringer("player", p).Stringer("move", m).
		Bool("terminal", terminal).Int("value", value).Msg("move-applied")
	return nil
}

// UndoMove takes back the last committed move. The search statistics are
// not rolled back.
func (g *Game) UndoMove() error {
	if g.fatal != nil {
		return g.fatal
	}
	_, p, ok := g.board.LastMove()
	if !ok {
		return ErrNothingToUndo
	}
	g.board.UnplayLastMove()
	g.turns = g.turns[:len(g.turns)-1]
	g.pending = nil
	g.onturn = p
	g.playing = g.stateFor(p)
	g.value = board.Draw
	return nil
}

// CheckTerminal runs the terminal test relative to the last move, which
// must have been made by lastMover.
func (g *Game) CheckTerminal(lastMover board.Player) (bool, int, error) {
	return g.board.CheckTerminal(lastMover)
}

// Statistics returns a snapshot of the search statistics for this game.
func (g *Game) Statistics() Statistics {
	return g.stats.clone()
}

// Turns returns the committed moves so far.
func (g *Game) Turns() []Turn {
	return append([]Turn(nil), g.turns...)
}

func (g *Game) String() string {
	return fmt.Sprintf("%dx%d k=%d (%s), %v", g.settings.Rows, g.settings.Cols,
		g.settings.K, g.engine.Name(), g.playing)
}
