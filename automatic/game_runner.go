// Package automatic plays fully automated games and runs batches of them
// over many board sizes, collecting search timings and state counts.
package automatic

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/domino14/mnkgame/game"
)

// GameRunner plays engine-vs-engine games on one board size.
type GameRunner struct {
	game     *game.Game
	settings game.Settings
	// gamechan, if set, receives the final board of every game.
	gamechan chan string
}

// GameSummary is what a finished automated game reports.
type GameSummary struct {
	Value int
	Turns int
	// MeanDecisionTime is the mean search time per move, in seconds.
	MeanDecisionTime float64
	StatesVisited    uint64
}

// NewGameRunner instantiates a runner; no game is created until PlayGame.
func NewGameRunner(c Configuration, engine string, gamechan chan string) *GameRunner {
	return &GameRunner{
		settings: game.Settings{
			Rows:         c.M,
			Cols:         c.N,
			K:            c.K,
			MaxAutomated: true,
			MinAutomated: true,
			Engine:       engine,
		},
		gamechan: gamechan,
	}
}

// Game returns the last game played.
func (r *GameRunner) Game() *game.Game {
	return r.game
}

// PlayGame starts a fresh game, so statistics never carry over, and plays
// it to the end.
func (r *GameRunner) PlayGame(ctx context.Context) (GameSummary, error) {
	g, err := game.NewGame(r.settings)
	if err != nil {
		return GameSummary{}, err
	}
	r.game = g
	if err := g.Play(ctx, nil, nil); err != nil {
		return GameSummary{}, err
	}
	st := g.Statistics()
	summary := GameSummary{
		Value:            g.Value(),
		Turns:            len(g.Turns()),
		MeanDecisionTime: st.MeanDecisionTime(),
		StatesVisited:    st.StatesVisited,
	}
	log.Debug().
		Str("game", g.String()).
		Int("value", summary.Value).
		Float64("mean-decision-sec", summary.MeanDecisionTime).
		Uint64("states-visited", summary.StatesVisited).
		Msg("automatic-game-over")
	if r.gamechan != nil {
		r.gamechan <- g.Board().ToDisplayText()
	}
	return summary, nil
}
