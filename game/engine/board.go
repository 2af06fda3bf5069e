package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidSize is returned by NewBoard for sizes below 1.
var ErrInvalidSize = errors.New("board size must be at least 1")

// Board is an N×N tic-tac-toe grid. It validates move coordinates and
// occupancy but carries no turn state; the zero row/column is at the top
// left and all coordinates are zero-based.
type Board struct {
	size  int
	cells [][]Mark
}

// NewBoard returns an all-empty board of the given size.
func NewBoard(size int) (*Board, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	cells := make([][]Mark, size)
	for row := range cells {
		cells[row] = make([]Mark, size)
	}
	return &Board{size: size, cells: cells}, nil
}

// Size returns the board's side length.
func (b *Board) Size() int {
	return b.size
}

// Cell returns the mark at row, col. Out-of-range coordinates return Empty.
func (b *Board) Cell(row, col int) Mark {
	if row < 0 || row >= b.size || col < 0 || col >= b.size {
		return Empty
	}
	return b.cells[row][col]
}

// ApplyMove places player's mark at row, col. The grid is only mutated when
// the outcome is MoveAccepted.
func (b *Board) ApplyMove(row, col int, player Mark) MoveOutcome {
	if row < 0 || row >= b.size || col < 0 || col >= b.size {
		return MoveOutOfBounds
	}
	if b.cells[row][col] != Empty {
		return MoveOccupied
	}
	b.cells[row][col] = player
	return MoveAccepted
}

// Evaluate scans the board for a winning line, checking rows, then columns,
// then the forward diagonal, then the backward diagonal. With no winner it
// reports a draw on a full board, otherwise in-progress.
func (b *Board) Evaluate() Verdict {
	for row := 0; row < b.size; row++ {
		if winner := b.lineWinner(row, 0, 0, 1); winner != Empty {
			return Verdict{Status: StatusWon, Winner: winner}
		}
	}
	for col := 0; col < b.size; col++ {
		if winner := b.lineWinner(0, col, 1, 0); winner != Empty {
			return Verdict{Status: StatusWon, Winner: winner}
		}
	}
	if winner := b.lineWinner(0, 0, 1, 1); winner != Empty {
		return Verdict{Status: StatusWon, Winner: winner}
	}
	if winner := b.lineWinner(0, b.size-1, 1, -1); winner != Empty {
		return Verdict{Status: StatusWon, Winner: winner}
	}
	if b.full() {
		return Verdict{Status: StatusDraw}
	}
	return Verdict{Status: StatusInProgress}
}

// lineWinner walks a full-length line from (row, col) stepping by (dr, dc)
// and returns its owner, or Empty if the line is mixed or unclaimed.
func (b *Board) lineWinner(row, col, dr, dc int) Mark {
	first := b.cells[row][col]
	if first == Empty {
		return Empty
	}
	for i := 1; i < b.size; i++ {
		if b.cells[row+i*dr][col+i*dc] != first {
			return Empty
		}
	}
	return first
}

func (b *Board) full() bool {
	for _, row := range b.cells {
		for _, cell := range row {
			if cell == Empty {
				return false
			}
		}
	}
	return true
}
