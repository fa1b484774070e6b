package board

import "github.com/domino14/mnkgame/move"

// LegalMoves appends every empty square to dst in row-major order and
// returns the result. It walks only the empty squares, so the cost is
// proportional to the number of moves returned. Pass a reused buffer
// (sliced to zero length) to avoid allocating.
func (b *Board) LegalMoves(dst []move.Move) []move.Move {
	sentinel := len(b.squares)
	for i := b.next[sentinel]; i != sentinel; i = b.next[i] {
		dst = append(dst, move.Move{Row: i / b.cols, Col: i % b.cols})
	}
	return dst
}

// AllSquares returns the universe of coordinates on this board in
// row-major order.
func (b *Board) AllSquares() []move.Move {
	all := make([]move.Move, len(b.squares))
	for i := range all {
		all[i] = move.FromIndex(i, b.cols)
	}
	return all
}
