// Package mcts picks Connect-Four moves with Monte-Carlo Tree Search.
// Each iteration walks down the tree by UCB1 until it reaches a node with
// an unexpanded move, expands that move, plays a random game out from the
// new node, and credits the result back up the path.
//
// The tree lives in a flat arena. Children are referred to by index and
// each node keeps the index of its parent, so backpropagation walks up
// without the tree owning any cycles.
package mcts

import (
	"context"
	"errors"
	"math"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"lukechampine.com/frand"

	"github.com/domino14/fourconnect/board"
	"github.com/domino14/fourconnect/config"
)

var ErrNoMoves = errors.New("no moves to search")

const noParent = -1

type node struct {
	board  board.Board
	toMove board.Player
	// mover made the move into this node; wins are counted for it.
	mover   board.Player
	move    int
	outcome board.Outcome // relative to mover

	visits int
	wins   int
	depth  int

	parent   int32
	children []int32
	untried  []int
}

func (n *node) terminal() bool {
	return n.outcome != board.StillPlaying
}

// Tree is the search tree for one move decision.
type Tree struct {
	nodes       []node
	rng         *frand.RNG
	exploration float64
	maxDepth    int
}

// NewTree creates a tree whose root is b with toMove to play.
func NewTree(b board.Board, toMove board.Player, rng *frand.RNG) *Tree {
	if rng == nil {
		rng = frand.New()
	}
	t := &Tree{rng: rng, exploration: math.Sqrt2}
	t.nodes = append(t.nodes, t.newNode(b, toMove, -1, noParent, 0))
	return t
}

func (t *Tree) newNode(b board.Board, toMove board.Player, move int, parent int32, depth int) node {
	n := node{
		board:  b,
		toMove: toMove,
		mover:  toMove.Opponent(),
		move:   move,
		parent: parent,
		depth:  depth,
	}
	n.outcome = b.Classify(n.mover)
	if !n.terminal() {
		n.untried = b.LegalMoves()
	}
	return n
}

func (t *Tree) SetExploration(c float64) {
	t.exploration = c
}

// UCB1 is wins/visits + c*sqrt(ln(parentVisits)/visits), or 0 if any of
// visits, wins or parentVisits is 0.
func UCB1(wins, visits, parentVisits int, c float64) float64 {
	if visits == 0 || wins == 0 || parentVisits == 0 {
		return 0
	}
	v := float64(visits)
	return float64(wins)/v + c*math.Sqrt(math.Log(float64(parentVisits))/v)
}

// UCB scores node idx against its parent. The root scores 0.
func (t *Tree) UCB(idx int32) float64 {
	n := &t.nodes[idx]
	if n.parent == noParent {
		return 0
	}
	return UCB1(n.wins, n.visits, t.nodes[n.parent].visits, t.exploration)
}

// bestChild returns the child of idx with the highest UCB1, breaking ties
// uniformly at random.
func (t *Tree) bestChild(idx int32) int32 {
	best := int32(noParent)
	bestScore := math.Inf(-1)
	ties := 0
	for _, c := range t.nodes[idx].children {
		score := t.UCB(c)
		switch {
		case score > bestScore:
			best, bestScore, ties = c, score, 1
		case score == bestScore:
			ties++
			if t.rng.Intn(ties) == 0 {
				best = c
			}
		}
	}
	return best
}

// expand adds a child of idx for one of its untried moves, picked
// uniformly at random. The new child starts with one visit.
func (t *Tree) expand(idx int32) int32 {
	n := &t.nodes[idx]
	i := t.rng.Intn(len(n.untried))
	col := n.untried[i]
	n.untried[i] = n.untried[len(n.untried)-1]
	n.untried = n.untried[:len(n.untried)-1]

	b := n.board
	if err := b.PlayMove(col, n.toMove); err != nil {
		panic(err)
	}
	child := t.newNode(b, n.toMove.Opponent(), col, idx, n.depth+1)
	child.visits = 1
	t.nodes = append(t.nodes, child)
	ci := int32(len(t.nodes) - 1)
	// t.nodes may have moved.
	t.nodes[idx].children = append(t.nodes[idx].children, ci)
	t.maxDepth = max(t.maxDepth, child.depth)
	return ci
}

// selectAndExpand descends from the root, counting a visit on every node
// it passes, until it expands a new child or lands on a terminal node. It
// returns the parent and the node reached.
func (t *Tree) selectAndExpand() (int32, int32) {
	idx := int32(0)
	for {
		n := &t.nodes[idx]
		n.visits++
		if n.terminal() {
			return n.parent, idx
		}
		if len(n.untried) > 0 {
			return idx, t.expand(idx)
		}
		idx = t.bestChild(idx)
	}
}

// rollout plays uniformly random moves from node idx until the game ends
// and returns the winner, or NoPlayer for a draw.
func (t *Tree) rollout(idx int32) board.Player {
	n := &t.nodes[idx]
	switch n.outcome {
	case board.Win:
		return n.mover
	case board.Loss:
		return n.toMove
	case board.Draw:
		return board.NoPlayer
	}
	b := n.board
	p := n.toMove
	var buf [board.NumColumns]int
	for {
		moves := buf[:0]
		for c := 0; c < board.NumColumns; c++ {
			if b.IsLegal(c) {
				moves = append(moves, c)
			}
		}
		if err := b.PlayMove(moves[t.rng.Intn(len(moves))], p); err != nil {
			panic(err)
		}
		switch b.Classify(p) {
		case board.Win:
			return p
		case board.Draw:
			return board.NoPlayer
		}
		p = p.Opponent()
	}
}

// simulateAndPropagate plays out a random game from leaf and credits a
// win to every node on the path to the root whose mover won it. Draws
// credit nobody.
func (t *Tree) simulateAndPropagate(leaf int32) board.Player {
	winner := t.rollout(leaf)
	if winner == board.NoPlayer {
		return winner
	}
	for i := leaf; i != noParent; i = t.nodes[i].parent {
		if t.nodes[i].mover == winner {
			t.nodes[i].wins++
		}
	}
	return winner
}

// Run performs iters iterations, stopping early if ctx ends. It returns
// the number of iterations performed.
func (t *Tree) Run(ctx context.Context, iters int) (int, error) {
	if t.nodes[0].terminal() {
		return 0, ErrNoMoves
	}
	for i := 0; i < iters; i++ {
		if ctx.Err() != nil {
			log.Debug().Int("iterations", i).Msg("mcts-interrupted")
			return i, nil
		}
		_, leaf := t.selectAndExpand()
		t.simulateAndPropagate(leaf)
	}
	return iters, nil
}

// BestMove returns the move of the root child with the highest UCB1.
func (t *Tree) BestMove() (int, error) {
	if len(t.nodes[0].children) == 0 {
		return -1, ErrNoMoves
	}
	return t.nodes[t.bestChild(0)].move, nil
}

func (t *Tree) RootVisits() int {
	return t.nodes[0].visits
}

func (t *Tree) RootWins() int {
	return t.nodes[0].wins
}

// Children returns the arena indices of idx's children.
func (t *Tree) Children(idx int32) []int32 {
	return t.nodes[idx].children
}

// Stats returns the move, visits and wins of node idx.
func (t *Tree) Stats(idx int32) (move, visits, wins int) {
	n := &t.nodes[idx]
	return n.move, n.visits, n.wins
}

// Depth is the depth of the deepest node; the root is at depth 0.
func (t *Tree) Depth() int {
	return t.maxDepth
}

func (t *Tree) Size() int {
	return len(t.nodes)
}

// Searcher runs a fresh tree search per move request.
type Searcher struct {
	iterations  int
	exploration float64
	rng         *frand.RNG
	lastTree    *Tree
}

// NewSearcher builds a searcher from the mcts-* config keys.
func NewSearcher(cfg *config.Config, rng *frand.RNG) *Searcher {
	if rng == nil {
		rng = frand.New()
	}
	return &Searcher{
		iterations:  cfg.GetInt(config.ConfigMCTSIterations),
		exploration: cfg.GetFloat64(config.ConfigMCTSExploration),
		rng:         rng,
	}
}

func (s *Searcher) SetIterations(n int) {
	s.iterations = n
}

// Search returns the column to play for toMove.
func (s *Searcher) Search(ctx context.Context, b board.Board, toMove board.Player) (int, error) {
	t := NewTree(b, toMove, s.rng)
	t.SetExploration(s.exploration)
	s.lastTree = t
	n, err := t.Run(ctx, s.iterations)
	if err != nil {
		return -1, err
	}
	move, err := t.BestMove()
	if err != nil {
		if ctx.Err() != nil {
			return -1, ctx.Err()
		}
		return -1, err
	}
	log.Debug().Int("iterations", n).
		Int("tree-size", t.Size()).
		Int("tree-depth", t.Depth()).
		Int("root-wins", t.RootWins()).
		Ints("child-visits", lo.Map(t.Children(0), func(c int32, _ int) int {
			return t.nodes[c].visits
		})).
		Int("move", move).
		Msg("mcts-search-returning")
	return move, nil
}

// LastTree is the tree built by the most recent Search.
func (s *Searcher) LastTree() *Tree {
	return s.lastTree
}
