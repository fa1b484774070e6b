package board

import (
	"strings"

	"github.com/domino14/mnkgame/move"
)

func (m Mark) DisplayString() string {
	switch m {
	case Mark(MaxPlayer):
		return "X"
	case Mark(MinPlayer):
		return "O"
	}
	return " "
}

// ToDisplayText renders the board as text, X for the maximizer and O for
// the minimizer.
func (b *Board) ToDisplayText() string {
	var sb strings.Builder
	sep := strings.Repeat(" ---", b.cols)
	for i := 0; i < b.rows; i++ {
		sb.WriteString(sep)
		sb.WriteString("\n")
		for j := 0; j < b.cols; j++ {
			sb.WriteString("| ")
			sb.WriteString(b.MarkAt(move.New(i, j)).DisplayString())
			sb.WriteString(" ")
		}
		sb.WriteString("|\n")
	}
	sb.WriteString(sep)
	sb.WriteString("\n")
	return sb.String()
}

// Rotate returns a copy of the board rotated 90 degrees clockwise, with the
// play order (and so the last move) carried over.
func (b *Board) Rotate() *Board {
	// Dimensions were validated when b was created.
	r, _ := NewBoard(b.cols, b.rows, b.k)
	moves, players := b.History()
	for i, m := range moves {
		r.PlayMove(players[i], move.New(m.Col, b.rows-1-m.Row))
	}
	return r
}
