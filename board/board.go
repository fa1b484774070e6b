package board

import (
	"errors"
	"fmt"

	"github.com/domino14/mnkgame/move"
	"github.com/domino14/mnkgame/zobrist"
)

// Player is one of the two sides. Its value doubles as the terminal value
// of a position the player has won.
type Player int8

const (
	MinPlayer Player = -1
	MaxPlayer Player = 1
)

// Draw is the terminal value of a full board with no winner.
const Draw = 0

func (p Player) Opponent() Player {
	return -p
}

func (p Player) String() string {
	switch p {
	case MaxPlayer:
		return "MAX"
	case MinPlayer:
		return "MIN"
	}
	return fmt.Sprintf("Player(%d)", int8(p))
}

func (p Player) idx() int {
	if p == MaxPlayer {
		return 0
	}
	return 1
}

// PlayerFromString parses "max"/"min" (any case) or "1"/"-1".
func PlayerFromString(s string) (Player, error) {
	switch s {
	case "max", "MAX", "Max", "1", "+1", "X", "x":
		return MaxPlayer, nil
	case "min", "MIN", "Min", "-1", "O", "o":
		return MinPlayer, nil
	}
	return 0, fmt.Errorf("unrecognized player %q", s)
}

// Mark is the content of a square. A non-empty square holds the value of
// the player who occupies it.
type Mark int8

const Empty Mark = 0

var (
	ErrInvalidDimensions = errors.New("board dimensions and k must all be at least 1")
	// ErrInvalidMove is recoverable: whoever proposed the move should
	// supply another one.
	ErrInvalidMove = errors.New("invalid move")
	ErrOutOfBounds = fmt.Errorf("%w: out of bounds", ErrInvalidMove)
	ErrOccupied    = fmt.Errorf("%w: square is occupied", ErrInvalidMove)
	ErrOutOfTurn   = fmt.Errorf("%w: player is out of turn", ErrInvalidMove)
	// ErrInternalInconsistency means the move bookkeeping is broken. It is
	// not recoverable; the current game must be abandoned.
	ErrInternalInconsistency = errors.New("internal inconsistency")
)

type playedMove struct {
	idx    int
	player Player
}

// Board is an m x n grid together with the set of squares each player
// occupies. It is mutated in place by PlayMove and restored by
// UnplayLastMove; moves must be unplayed in the reverse order they were
// played.
type Board struct {
	rows int
	cols int
	k    int

	squares []Mark
	// owned holds each player's occupied squares in play order. Membership
	// is answered by squares; owned only backs sizes and listing.
	owned   [2][]int
	history []playedMove

	// Empty squares are kept in a doubly linked list threaded through the
	// row-major index space, with sentinel at index rows*cols. Removing and
	// restoring in LIFO order keeps the row-major ordering intact.
	next []int
	prev []int

	zobrist *zobrist.Zobrist
	hash    uint64
}

// NewBoard creates an empty rows x cols board requiring k in a row to win.
func NewBoard(rows, cols, k int) (*Board, error) {
	if rows < 1 || cols < 1 || k < 1 {
		return nil, fmt.Errorf("%w: got m=%d n=%d k=%d", ErrInvalidDimensions, rows, cols, k)
	}
	b := &Board{
		rows:    rows,
		cols:    cols,
		k:       k,
		squares: make([]Mark, rows*cols),
		history: make([]playedMove, 0, rows*cols),
		next:    make([]int, rows*cols+1),
		prev:    make([]int, rows*cols+1),
		zobrist: zobrist.ForSize(rows, cols),
	}
	b.owned[0] = make([]int, 0, (rows*cols+1)/2)
	b.owned[1] = make([]int, 0, (rows*cols+1)/2)
	b.Clear()
	return b, nil
}

// Clear empties the board.
func (b *Board) Clear() {
	n := len(b.squares)
	for i := range b.squares {
		b.squares[i] = Empty
	}
	b.owned[0] = b.owned[0][:0]
	b.owned[1] = b.owned[1][:0]
	b.history = b.history[:0]
	for i := 0; i <= n; i++ {
		b.next[i] = (i + 1) % (n + 1)
		b.prev[i] = (i + n) % (n + 1)
	}
	b.hash = 0
}

func (b *Board) Rows() int {
	return b.rows
}

func (b *Board) Cols() int {
	return b.cols
}

func (b *Board) K() int {
	return b.k
}

func (b *Board) NumSquares() int {
	return len(b.squares)
}

func (b *Board) InBounds(m move.Move) bool {
	return m.Row >= 0 && m.Row < b.rows && m.Col >= 0 && m.Col < b.cols
}

// MarkAt returns the mark at the given coordinates, which must be in bounds.
func (b *Board) MarkAt(m move.Move) Mark {
	return b.squares[m.Index(b.cols)]
}

// ValidateMove checks that the move is in bounds and on an empty square.
func (b *Board) ValidateMove(m move.Move) error {
	if !b.InBounds(m) {
		return fmt.Errorf("%w: %v on a %dx%d board", ErrOutOfBounds, m, b.rows, b.cols)
	}
	if b.squares[m.Index(b.cols)] != Empty {
		return fmt.Errorf("%w: %v", ErrOccupied, m)
	}
	return nil
}

// PlayMove places p's mark on m and makes m the last move. It does not
// validate; callers outside of search should call ValidateMove first.
func (b *Board) PlayMove(p Player, m move.Move) {
	idx := m.Index(b.cols)
	b.squares[idx] = Mark(p)
	b.owned[p.idx()] = append(b.owned[p.idx()], idx)
	b.history = append(b.history, playedMove{idx: idx, player: p})
	b.next[b.prev[idx]] = b.next[idx]
	b.prev[b.next[idx]] = b.prev[idx]
	b.hash = b.zobrist.AddMove(b.hash, m.Row, m.Col, p == MaxPlayer)
}

// UnplayLastMove undoes the most recent PlayMove, restoring the previous
// last move.
func (b *Board) UnplayLastMove() {
	last := b.history[len(b.history)-1]
	b.history = b.history[:len(b.history)-1]
	pi := last.player.idx()
	b.owned[pi] = b.owned[pi][:len(b.owned[pi])-1]
	b.squares[last.idx] = Empty
	b.next[b.prev[last.idx]] = last.idx
	b.prev[b.next[last.idx]] = last.idx
	b.hash = b.zobrist.AddMove(b.hash, last.idx/b.cols, last.idx%b.cols,
		last.player == MaxPlayer)
}

// LastMove returns the most recently played move and who played it.
func (b *Board) LastMove() (move.Move, Player, bool) {
	if len(b.history) == 0 {
		return move.NoMove, 0, false
	}
	last := b.history[len(b.history)-1]
	return move.FromIndex(last.idx, b.cols), last.player, true
}

// MovesMade returns the size of p's occupied set.
func (b *Board) MovesMade(p Player) int {
	return len(b.owned[p.idx()])
}

// TotalMoves returns the number of marks on the board.
func (b *Board) TotalMoves() int {
	return len(b.history)
}

// Occupied returns a copy of p's occupied squares in the order they were
// played.
func (b *Board) Occupied(p Player) []move.Move {
	out := make([]move.Move, len(b.owned[p.idx()]))
	for i, idx := range b.owned[p.idx()] {
		out[i] = move.FromIndex(idx, b.cols)
	}
	return out
}

// History returns all played moves in order, along with who played them.
func (b *Board) History() ([]move.Move, []Player) {
	moves := make([]move.Move, len(b.history))
	players := make([]Player, len(b.history))
	for i, h := range b.history {
		moves[i] = move.FromIndex(h.idx, b.cols)
		players[i] = h.player
	}
	return moves, players
}

func (b *Board) IsFull() bool {
	return len(b.history) == len(b.squares)
}

func (b *Board) NumEmpty() int {
	return len(b.squares) - len(b.history)
}

// Hash returns the zobrist key of the current position. It is maintained
// incrementally, so it is cheap to compare before and after a search.
func (b *Board) Hash() uint64 {
	return b.hash
}

// Copy returns a deep copy. The zobrist tables are shared by every board
// of the same size and are never written after they are built.
func (b *Board) Copy() *Board {
	c := &Board{
		rows:    b.rows,
		cols:    b.cols,
		k:       b.k,
		squares: append([]Mark(nil), b.squares...),
		history: append(make([]playedMove, 0, cap(b.history)), b.history...),
		next:    append([]int(nil), b.next...),
		prev:    append([]int(nil), b.prev...),
		zobrist: b.zobrist,
		hash:    b.hash,
	}
	for i := range b.owned {
		c.owned[i] = append(make([]int, 0, cap(b.owned[i])), b.owned[i]...)
	}
	return c
}

// Equals compares every piece of state, including the play order and the
// empty-square list.
func (b *Board) Equals(o *Board) bool {
	if b.rows != o.rows || b.cols != o.cols || b.k != o.k || b.hash != o.hash {
		return false
	}
	if len(b.history) != len(o.history) {
		return false
	}
	for i := range b.history {
		if b.history[i] != o.history[i] {
			return false
		}
	}
	for i := range b.squares {
		if b.squares[i] != o.squares[i] {
			return false
		}
	}
	for i := range b.owned {
		if len(b.owned[i]) != len(o.owned[i]) {
			return false
		}
		for j := range b.owned[i] {
			if b.owned[i][j] != o.owned[i][j] {
				return false
			}
		}
	}
	for i := range b.next {
		if b.next[i] != o.next[i] || b.prev[i] != o.prev[i] {
			return false
		}
	}
	return true
}
