package game

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/domino14/mnkgame/board"
	"github.com/domino14/mnkgame/move"
)

// Turn is a committed move. Recommendation is the search made for it, if
// one was made.
type Turn struct {
	Player         board.Player
	Move           move.Move
	Automated      bool
	Recommendation *Decision
}

// Transcript is the serializable record of a game.
type Transcript struct {
	Rows          int              `yaml:"rows"`
	Cols          int              `yaml:"cols"`
	K             int              `yaml:"k"`
	Engine        string           `yaml:"engine"`
	Outcome       string           `yaml:"outcome,omitempty"`
	Value         int              `yaml:"value"`
	StatesVisited uint64           `yaml:"states_visited"`
	Turns         []TranscriptTurn `yaml:"turns"`
}

type TranscriptTurn struct {
	Player         string  `yaml:"player"`
	Row            int     `yaml:"row"`
	Col            int     `yaml:"col"`
	Automated      bool    `yaml:"automated"`
	Recommended    string  `yaml:"recommended,omitempty"`
	Value          *int    `yaml:"value,omitempty"`
	StatesVisited  uint64  `yaml:"states_visited,omitempty"`
	ElapsedSeconds float64 `yaml:"elapsed_seconds,omitempty"`
	// Line is the engine's expected continuation, starting with
	// Recommended.
	Line []string `yaml:"line,omitempty,flow"`
}

// Transcript exports the game so far.
func (g *Game) Transcript() Transcript {
	t := Transcript{
		Rows:          g.settings.Rows,
		Cols:          g.settings.Cols,
		K:             g.settings.K,
		Engine:        g.engine.Name(),
		Value:         g.value,
		StatesVisited: g.stats.StatesVisited,
	}
	if g.playing == Finished {
		t.Outcome = g.OutcomeString()
	}
	for _, turn := range g.turns {
		tt := TranscriptTurn{
			Player:    turn.Player.String(),
			Row:       turn.Move.Row,
			Col:       turn.Move.Col,
			Automated: turn.Automated,
		}
		if r := turn.Recommendation; r != nil {
			v := r.Value
			tt.Recommended = r.Move.String()
			tt.Value = &v
			tt.StatesVisited = r.States
			tt.ElapsedSeconds = r.Elapsed.Seconds()
			tt.Line = lo.Map(r.Line, func(m move.Move, _ int) string { return m.String() })
		}
		t.Turns = append(t.Turns, tt)
	}
	return t
}

// WriteTranscript writes the game as YAML.
func (g *Game) WriteTranscript(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(g.Transcript()); err != nil {
		return err
	}
	return enc.Close()
}

// SaveTranscript writes the transcript into dir under a name derived from
// the board size and the current time, and returns the path.
func (g *Game) SaveTranscript(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("mnk_%dx%dx%d_%s.yaml", g.settings.Rows, g.settings.Cols,
		g.settings.K, time.Now().Format("20060102T150405.000000000"))
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := g.WriteTranscript(f); err != nil {
		return "", err
	}
	return path, nil
}

// ReadTranscript parses a YAML transcript.
func ReadTranscript(r io.Reader) (Transcript, error) {
	var t Transcript
	if err := yaml.NewDecoder(r).Decode(&t); err != nil {
		return Transcript{}, err
	}
	return t, nil
}

// NewFromTranscript creates a game and replays the transcript's moves onto
// it. Searches are not re-run, so the new game has no statistics.
func NewFromTranscript(t Transcript, settings Settings) (*Game, error) {
	settings.Rows, settings.Cols, settings.K = t.Rows, t.Cols, t.K
	if settings.Engine == "" {
		settings.Engine = t.Engine
	}
	g, err := NewGame(settings)
	if err != nil {
		return nil, err
	}
	for i, tt := range t.Turns {
		p, err := board.PlayerFromString(tt.Player)
		if err != nil {
			return nil, fmt.Errorf("turn %d: %w", i+1, err)
		}
		if err := g.ApplyMove(p, move.New(tt.Row, tt.Col)); err != nil {
			return nil, fmt.Errorf("turn %d: %w", i+1, err)
		}
	}
	return g, nil
}
