package board

import "fmt"

// Unit steps for the four scan axes: horizontal, vertical, diagonal "/"
// and diagonal "\". Each axis is walked in both senses.
var directions = [4][2]int{
	{0, 1},
	{1, 0},
	{-1, 1},
	{1, 1},
}

// Terminal reports whether lastMover's most recent move ended the game,
// and the terminal value if so: lastMover's value for a win, or Draw for a
// full board. Only lines through the last move are scanned, so this must
// be called with the player who made the last move.
func (b *Board) Terminal(lastMover Player) (bool, int) {
	if len(b.owned[lastMover.idx()]) == 0 {
		return false, Draw
	}
	last := b.history[len(b.history)-1].idx
	row, col := last/b.cols, last%b.cols
	mark := Mark(lastMover)

	for _, d := range directions {
		count := 0
		for step := 1; step < b.k; step++ {
			r, c := row+d[0]*step, col+d[1]*step
			if r < 0 || r >= b.rows || c < 0 || c >= b.cols || b.squares[r*b.cols+c] != mark {
				break
			}
			count++
		}
		for step := 1; step < b.k; step++ {
			r, c := row-d[0]*step, col-d[1]*step
			if r < 0 || r >= b.rows || c < 0 || c >= b.cols || b.squares[r*b.cols+c] != mark {
				break
			}
			count++
		}
		if count >= b.k-1 {
			return true, int(lastMover)
		}
	}
	// The win check has to come first; a board-filling move can also win.
	if len(b.history) == len(b.squares) {
		return true, Draw
	}
	return false, Draw
}

// CheckTerminal is Terminal with its precondition verified: if lastMover
// has any marks on the board, the last move must be theirs.
func (b *Board) CheckTerminal(lastMover Player) (bool, int, error) {
	if lastMover != MaxPlayer && lastMover != MinPlayer {
		return false, Draw, fmt.Errorf("%w: no such player %v", ErrInternalInconsistency, lastMover)
	}
	if len(b.owned[lastMover.idx()]) > 0 {
		if b.history[len(b.history)-1].player != lastMover {
			return false, Draw, fmt.Errorf("%w: last move was not made by %v",
				ErrInternalInconsistency, lastMover)
		}
	}
	terminal, value := b.Terminal(lastMover)
	return terminal, value, nil
}
