// Package board implements the Connect-Four position: a 6x7 grid where
// pieces drop to the lowest empty row of a column.
//
// Each player's pieces are packed into a 64-bit bitboard. Column c owns
// bits c*7 through c*7+5 (row 0 is the bottom row); bit c*7+6 is a
// sentinel that is always empty, so shifted windows never wrap from one
// column into the next.
package board

import (
	"errors"
	"fmt"
)

const (
	NumRows    = 6
	NumColumns = 7
	ConnectN   = 4
	NumCells   = NumRows * NumColumns

	colStride = NumRows + 1
)

var (
	ErrIllegalColumn = errors.New("illegal column")
	ErrColumnFull    = errors.New("column is full")
	ErrInvalidPlayer = errors.New("invalid player")
	ErrFloatingPiece = errors.New("piece is not supported from below")
)

// Grid is the plain cell-array form of a board. Grid[0] is the bottom row.
type Grid [NumRows][NumColumns]Player

// Board is a value type; copying it copies the position.
type Board struct {
	pieces    [2]uint64
	heights   [NumColumns]uint8
	numPieces int
}

func NewBoard() Board {
	return Board{}
}

func bit(row, col int) uint64 {
	return 1 << uint(col*colStride+row)
}

// PlayMove drops a piece for p into col.
func (b *Board) PlayMove(col int, p Player) error {
	if col < 0 || col >= NumColumns {
		return fmt.Errorf("%w: %d", ErrIllegalColumn, col)
	}
	if !p.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidPlayer, p)
	}
	if int(b.heights[col]) >= NumRows {
		return fmt.Errorf("%w: %d", ErrColumnFull, col)
	}
	b.pieces[p-1] |= bit(int(b.heights[col]), col)
	b.heights[col]++
	b.numPieces++
	return nil
}

// UnplayMove takes back the topmost piece in col. It is a no-op on an
// empty column.
func (b *Board) UnplayMove(col int) {
	if b.heights[col] == 0 {
		return
	}
	b.heights[col]--
	m := ^bit(int(b.heights[col]), col)
	b.pieces[0] &= m
	b.pieces[1] &= m
	b.numPieces--
}

// ApplyMove returns a copy of b with p's piece dropped into col; b is
// left untouched.
func ApplyMove(b Board, col int, p Player) (Board, error) {
	err := b.PlayMove(col, p)
	return b, err
}

// LandingRow is the row a piece dropped into col would occupy, or
// NumRows if the column is full.
func (b *Board) LandingRow(col int) int {
	return int(b.heights[col])
}

func (b *Board) Height(col int) int {
	return int(b.heights[col])
}

func (b *Board) IsLegal(col int) bool {
	return col >= 0 && col < NumColumns && int(b.heights[col]) < NumRows
}

// LegalMoves lists the non-full columns in ascending order.
func (b *Board) LegalMoves() []int {
	moves := make([]int, 0, NumColumns)
	for c := 0; c < NumColumns; c++ {
		if int(b.heights[c]) < NumRows {
			moves = append(moves, c)
		}
	}
	return moves
}

func (b *Board) NumPieces() int {
	return b.numPieces
}

func (b *Board) Full() bool {
	return b.numPieces == NumCells
}

func (b *Board) At(row, col int) Player {
	m := bit(row, col)
	switch {
	case b.pieces[0]&m != 0:
		return Player1
	case b.pieces[1]&m != 0:
		return Player2
	}
	return NoPlayer
}

// Bitboard returns the packed pieces of p.
func (b *Board) Bitboard(p Player) uint64 {
	if !p.Valid() {
		return 0
	}
	return b.pieces[p-1]
}

func connected(pos uint64) bool {
	// vertical, horizontal, and the two diagonals.
	for _, d := range [4]uint{1, colStride, colStride - 1, colStride + 1} {
		m := pos & (pos >> d)
		if m&(m>>(2*d)) != 0 {
			return true
		}
	}
	return false
}

// IsConnectFour reports whether p has four in a row anywhere on the board.
func (b *Board) IsConnectFour(p Player) bool {
	if !p.Valid() {
		return false
	}
	return connected(b.pieces[p-1])
}

// Classify evaluates the position from the point of view of p. A win for
// p is checked before a win for the opponent, and both before a draw.
func (b *Board) Classify(p Player) Outcome {
	if b.IsConnectFour(p) {
		return Win
	}
	if b.IsConnectFour(p.Opponent()) {
		return Loss
	}
	if b.numPieces < NumCells {
		return StillPlaying
	}
	return Draw
}

func (b *Board) Grid() Grid {
	var g Grid
	for r := 0; r < NumRows; r++ {
		for c := 0; c < NumColumns; c++ {
			g[r][c] = b.At(r, c)
		}
	}
	return g
}

// FromGrid builds a board from a cell array, rejecting pieces that float
// above an empty cell.
func FromGrid(g Grid) (Board, error) {
	b := NewBoard()
	for c := 0; c < NumColumns; c++ {
		for r := 0; r < NumRows; r++ {
			p := g[r][c]
			if p == NoPlayer {
				continue
			}
			if !p.Valid() {
				return Board{}, fmt.Errorf("%w: %d at row %d column %d", ErrInvalidPlayer, p, r, c)
			}
			if int(b.heights[c]) != r {
				return Board{}, fmt.Errorf("%w: row %d column %d", ErrFloatingPiece, r, c)
			}
			if err := b.PlayMove(c, p); err != nil {
				return Board{}, err
			}
		}
	}
	return b, nil
}
