// Package heuristic scores non-terminal positions reached at the search
// horizon.
package heuristic

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/domino14/fourconnect/board"
)

// Evaluator is a static evaluation of a position from p's point of view.
// lastMove is the column of the move that produced the position, or -1
// if unknown.
type Evaluator interface {
	Evaluate(b *board.Board, p board.Player, lastMove int) int16
	Type() string
}

// DefaultColumnWeights favors central columns, falling off symmetrically.
var DefaultColumnWeights = [board.NumColumns]int16{1, 2, 6, 12, 6, 2, 1}

// ColumnKernel sums the column weight of every one of p's pieces and
// subtracts the same sum for the opponent.
type ColumnKernel struct {
	Weights [board.NumColumns]int16
}

func NewColumnKernel() *ColumnKernel {
	return &ColumnKernel{Weights: DefaultColumnWeights}
}

func (k *ColumnKernel) Evaluate(b *board.Board, p board.Player, lastMove int) int16 {
	opp := p.Opponent()
	score := int16(0)
	for r := 0; r < board.NumRows; r++ {
		for c := 0; c < board.NumColumns; c++ {
			switch b.At(r, c) {
			case p:
				score += k.Weights[c]
			case opp:
				score -= k.Weights[c]
			}
		}
	}
	return score
}

func (k *ColumnKernel) Type() string {
	return "kernel"
}

// Null scores every position as even.
type Null struct{}

func (Null) Evaluate(b *board.Board, p board.Player, lastMove int) int16 {
	return 0
}

func (Null) Type() string {
	return "null"
}

// Sky rewards a last move played into a column that still has a lot of
// free space, relative to the free space on the whole board.
type Sky struct {
	Scale int16
}

func (s *Sky) Evaluate(b *board.Board, p board.Player, lastMove int) int16 {
	if lastMove < 0 || lastMove >= board.NumColumns {
		return 0
	}
	free := board.NumCells - b.NumPieces()
	if free == 0 {
		return 0
	}
	colFree := board.NumRows - b.Height(lastMove)
	return int16(int(s.Scale) * colFree / free)
}

func (s *Sky) Type() string {
	return "sky"
}

// Sum adds up the scores of several evaluators.
type Sum struct {
	evaluators []Evaluator
}

func NewSum(evaluators ...Evaluator) *Sum {
	return &Sum{evaluators: evaluators}
}

func (s *Sum) Evaluate(b *board.Board, p board.Player, lastMove int) int16 {
	return lo.SumBy(s.evaluators, func(e Evaluator) int16 {
		return e.Evaluate(b, p, lastMove)
	})
}

func (s *Sum) Type() string {
	return strings.Join(lo.Map(s.evaluators, func(e Evaluator, _ int) string {
		return e.Type()
	}), "+")
}

// FromName builds an evaluator from a name such as "kernel", "null", or
// a sum like "kernel+sky".
func FromName(name string) (Evaluator, error) {
	parts := strings.Split(name, "+")
	evals := make([]Evaluator, 0, len(parts))
	for _, part := range parts {
		switch strings.TrimSpace(part) {
		case "kernel":
			evals = append(evals, NewColumnKernel())
		case "null":
			evals = append(evals, Null{})
		case "sky":
			evals = append(evals, &Sky{Scale: 70})
		default:
			return nil, fmt.Errorf("unknown evaluator: %q", part)
		}
	}
	if len(evals) == 1 {
		return evals[0], nil
	}
	return NewSum(evals...), nil
}
