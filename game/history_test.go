package game

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/mnkgame/board"
	"github.com/domino14/mnkgame/solver"
)

func TestTranscriptReplay(t *testing.T) {
	is := is.New(t)
	g := newGame(t, 3, 3, 3, solver.AlphaBetaName)
	is.NoErr(g.Play(context.Background(), nil, nil))

	var buf bytes.Buffer
	is.NoErr(g.WriteTranscript(&buf))
	text := buf.String()
	is.True(strings.Contains(text, "outcome: The game is a draw"))
	is.True(strings.Contains(text, "engine: alphabeta"))

	tr, err := ReadTranscript(&buf)
	is.NoErr(err)
	is.Equal(tr.Rows, 3)
	is.Equal(tr.K, 3)
	is.Equal(len(tr.Turns), 9)
	is.Equal(tr.Turns[0].Player, "MIN")
	is.Equal(tr.Turns[1].Player, "MAX")
	is.True(tr.Turns[0].Value != nil)
	is.Equal(*tr.Turns[0].Value, 0)
	is.True(len(tr.Turns[0].Line) > 0)
	is.Equal(tr.Turns[0].Line[0], tr.Turns[0].Recommended)
	// Only one square is left for the last move.
	is.Equal(tr.Turns[8].Line, []string{tr.Turns[8].Recommended})
	is.Equal(tr.StatesVisited, g.Statistics().StatesVisited)

	replayed, err := NewFromTranscript(tr, Settings{MaxAutomated: true, MinAutomated: true})
	is.NoErr(err)
	is.Equal(replayed.Playing(), Finished)
	is.Equal(replayed.Value(), g.Value())
	is.Equal(replayed.Engine().Name(), solver.AlphaBetaName)

	wantMoves, wantPlayers := g.Board().History()
	gotMoves, gotPlayers := replayed.Board().History()
	assert.Equal(t, wantMoves, gotMoves)
	assert.Equal(t, wantPlayers, gotPlayers)
	is.Equal(replayed.Statistics().StatesVisited, uint64(0))
}

func TestTranscriptOfUnfinishedGame(t *testing.T) {
	is := is.New(t)
	g := newGame(t, 3, 3, 3, "")
	is.NoErr(g.PlayTurn(context.Background(), nil))
	tr := g.Transcript()
	is.Equal(tr.Outcome, "")
	is.Equal(len(tr.Turns), 1)
	is.True(tr.Turns[0].Automated)
	is.Equal(tr.Turns[0].Recommended, "(0, 0)")

	replayed, err := NewFromTranscript(tr, Settings{})
	is.NoErr(err)
	is.Equal(replayed.PlayerOnTurn(), board.MaxPlayer)
	is.Equal(replayed.Playing(), AwaitingMax)
}

func TestNewFromBadTranscript(t *testing.T) {
	is := is.New(t)
	tr := Transcript{Rows: 3, Cols: 3, K: 3, Turns: []TranscriptTurn{
		{Player: "MIN", Row: 0, Col: 0},
		{Player: "MAX", Row: 0, Col: 0},
	}}
	_, err := NewFromTranscript(tr, Settings{})
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "turn 2"))

	tr.Turns[1].Player = "nobody"
	_, err = NewFromTranscript(tr, Settings{})
	is.True(err != nil)
}

func TestSaveTranscript(t *testing.T) {
	is := is.New(t)
	g := newGame(t, 2, 2, 2, "")
	is.NoErr(g.Play(context.Background(), nil, nil))
	dir := filepath.Join(t.TempDir(), "transcripts")
	path, err := g.SaveTranscript(dir)
	is.NoErr(err)
	f, err := os.Open(path)
	is.NoErr(err)
	defer f.Close()
	tr, err := ReadTranscript(f)
	is.NoErr(err)
	is.Equal(tr.Outcome, "The winner is player MIN")
	is.Equal(tr.Value, -1)
}
