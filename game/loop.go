package game

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/domino14/mnkgame/board"
	"github.com/domino14/mnkgame/move"
)

var ErrNoMoveSource = errors.New("a human player needs a move source")

// MoveRequest is what a move source is given when a human is to move.
type MoveRequest struct {
	Board       *board.Board
	Player      board.Player
	Recommended move.Move
	Value       int
	// Rejected is the reason the previous answer was refused, if any.
	Rejected error
}

// MoveSource supplies moves for human-controlled sides. It is asked again
// with Rejected set until it supplies a valid move or returns an error.
type MoveSource interface {
	ChooseMove(ctx context.Context, req MoveRequest) (move.Move, error)
}

type MoveSourceFunc func(ctx context.Context, req MoveRequest) (move.Move, error)

func (f MoveSourceFunc) ChooseMove(ctx context.Context, req MoveRequest) (move.Move, error) {
	return f(ctx, req)
}

// TurnObserver is called after every committed move.
type TurnObserver func(g *Game, t Turn)

// PlayTurn runs one state of the loop for the player on turn: get the
// engine's recommendation, obtain the move (the recommendation itself for
// an automated side), and apply it.
func (g *Game) PlayTurn(ctx context.Context, human MoveSource) error {
	p := g.onturn
	if err := g.checkPlayable(p); err != nil {
		return err
	}
	value, rec, err := g.ComputeBestMove(p)
	if err != nil {
		return err
	}
	m := rec
	if g.Automated(p) {
		if err := g.ApplyMove(p, m); err != nil {
			return err
		}
	} else {
		if human == nil {
			return ErrNoMoveSource
		}
		req := MoveRequest{Board: g.board, Player: p, Recommended: rec, Value: value}
		for {
			m, err = human.ChooseMove(ctx, req)
			if err != nil {
				return err
			}
			err = g.ApplyMove(p, m)
			if err == nil {
				break
			}
			if !errors.Is(err, board.ErrInvalidMove) {
				return err
			}
			req.Rejected = err
		}
	}
	last := g.stats.Decisions[len(g.stats.Decisions)-1]
	log.Info().
		Stringer("player", p).
		Stringer("move", m).
		Stringer("recommended", rec).
		Int("value", value).
		Uint64("states", last.States).
		Dur("elapsed", last.Elapsed).
		Msg("move-committed")
	return nil
}

// Play runs the game loop until the game is finished. An internal
// inconsistency or a move source failure aborts it with that error.
func (g *Game) Play(ctx context.Context, human MoveSource, observe TurnObserver) error {
	for g.playing != Finished {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.PlayTurn(ctx, human); err != nil {
			if errors.Is(err, board.ErrInternalInconsistency) {
				log.Error().Err(err).Str("game", g.String()).Msg("game-aborted")
			}
			return err
		}
		if observe != nil {
			observe(g, g.turns[len(g.turns)-1])
		}
	}
	log.Info().
		Str("outcome", g.OutcomeString()).
		Int("value", g.value).
		Uint64("states-visited", g.stats.StatesVisited).
		Float64("mean-decision-sec", g.stats.MeanDecisionTime()).
		Msg("game-over")
	return nil
}
