package zobrist

import (
	"lukechampine.com/frand"

	"github.com/domino14/fourconnect/board"
)

const bignum = 1<<63 - 2

// Zobrist hashes a Connect-Four position together with the side to move.
// https://en.wikipedia.org/wiki/Zobrist_hashing
type Zobrist struct {
	p2ToMove uint64
	posTable [board.NumCells][2]uint64
}

func (z *Zobrist) Initialize() {
	for i := 0; i < board.NumCells; i++ {
		z.posTable[i][0] = frand.Uint64n(bignum) + 1
		z.posTable[i][1] = frand.Uint64n(bignum) + 1
	}
	z.p2ToMove = frand.Uint64n(bignum) + 1
}

func cellIdx(row, col int) int {
	return row*board.NumColumns + col
}

// Hash computes the key of b from scratch.
func (z *Zobrist) Hash(b *board.Board, toMove board.Player) uint64 {
	key := uint64(0)
	for r := 0; r < board.NumRows; r++ {
		for c := 0; c < board.NumColumns; c++ {
			p := b.At(r, c)
			if p == board.NoPlayer {
				continue
			}
			key ^= z.posTable[cellIdx(r, c)][p-1]
		}
	}
	if toMove == board.Player2 {
		key ^= z.p2ToMove
	}
	return key
}

// AddMove toggles p's piece at (row, col) and flips the side to move.
// Calling it again with the same arguments undoes it.
func (z *Zobrist) AddMove(key uint64, row, col int, p board.Player) uint64 {
	key ^= z.posTable[cellIdx(row, col)][p-1]
	return key ^ z.p2ToMove
}
