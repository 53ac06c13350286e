// Package alphabeta picks Connect-Four moves with a depth-limited
// minimax search using alpha-beta pruning, iterative deepening, history
// move ordering and a transposition table.
//
// Scores are always from the point of view of the player the search was
// started for. Terminal positions score WinScore, LossScore or DrawScore;
// positions at the depth limit are scored by a heuristic.Evaluator.
package alphabeta

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
	"lukechampine.com/frand"

	"github.com/domino14/fourconnect/board"
	"github.com/domino14/fourconnect/config"
	"github.com/domino14/fourconnect/heuristic"
	"github.com/domino14/fourconnect/zobrist"
)

const (
	WinScore  int16 = 1000
	LossScore int16 = -1000
	DrawScore int16 = -10

	Infinity int16 = 32000
)

// CenterColumn is the opening-book move.
const CenterColumn = board.NumColumns / 2

var ErrNoSolution = errors.New("no solution found")

// ScoredMoves is a group of root moves that all reached the same score.
type ScoredMoves struct {
	Score int16 `yaml:"score"`
	Moves []int `yaml:"moves"`
}

type Solver struct {
	maxDepth                int
	timeLimit               time.Duration
	ttCapacity              int
	ttMemoryFraction        float64
	transpositionTableOptim bool
	openingBook             bool

	evaluator heuristic.Evaluator
	zobrist   *zobrist.Zobrist
	rng       *frand.RNG

	nodes     atomic.Uint64
	logStream io.Writer

	// stats from the last search, for logging.
	lastTT *TranspositionTable
}

// NewSolver builds a solver from the ab-* config keys.
func NewSolver(cfg *config.Config, eval heuristic.Evaluator, rng *frand.RNG) *Solver {
	z := &zobrist.Zobrist{}
	z.Initialize()
	if rng == nil {
		rng = frand.New()
	}
	return &Solver{
		maxDepth:                cfg.GetInt(config.ConfigABMaxDepth),
		timeLimit:               time.Duration(cfg.GetFloat64(config.ConfigABTimeLimit) * float64(time.Second)),
		ttCapacity:              cfg.GetInt(config.ConfigABTTCapacity),
		ttMemoryFraction:        cfg.GetFloat64(config.ConfigABTTMemoryFraction),
		transpositionTableOptim: cfg.GetBool(config.ConfigABTranspositionTable),
		openingBook:             cfg.GetBool(config.ConfigABOpeningBook),
		evaluator:               eval,
		zobrist:                 z,
		rng:                     rng,
	}
}

// search holds everything owned by one IterativeDeepening call.
type search struct {
	s       *Solver
	b       board.Board
	player  board.Player
	limit   int
	ttable  *TranspositionTable
	history [board.NumColumns]int
}

func (s *Solver) newSearch(b board.Board, player board.Player) *search {
	srch := &search{s: s, b: b, player: player}
	if s.transpositionTableOptim {
		srch.ttable = NewTranspositionTable(ttCapacity(s.ttCapacity, s.ttMemoryFraction))
	}
	return srch
}

func terminalScore(o board.Outcome) int16 {
	switch o {
	case board.Win:
		return WinScore
	case board.Loss:
		return LossScore
	}
	return DrawScore
}

// orderedMoves fills buf with the legal moves, most successful (by the
// history table) first. Equal moves are in random order.
func (srch *search) orderedMoves(buf []int) []int {
	for c := 0; c < board.NumColumns; c++ {
		if srch.b.IsLegal(c) {
			buf = append(buf, c)
		}
	}
	srch.s.rng.Shuffle(len(buf), func(i, j int) {
		buf[i], buf[j] = buf[j], buf[i]
	})
	slices.SortStableFunc(buf, func(a, b int) int {
		return srch.history[b] - srch.history[a]
	})
	return buf
}

func (srch *search) play(col int, p board.Player) int {
	row := srch.b.LandingRow(col)
	if err := srch.b.PlayMove(col, p); err != nil {
		// moves come from the legal move list only.
		panic(err)
	}
	return row
}

// child scores the position reached by the move that was just played,
// consulting the transposition table before searching it.
func (srch *search) child(ctx context.Context, key uint64, depth int, α, β int16,
	lastMove int, maximizing bool) (int16, error) {

	remaining := uint8(srch.limit - depth)
	if srch.ttable != nil {
		if e, ok := srch.ttable.lookup(key); ok && e.depth >= remaining {
			switch {
			case e.flag == TTExact:
				return e.score, nil
			case e.flag == TTLower && e.score >= β:
				return e.score, nil
			case e.flag == TTUpper && e.score <= α:
				return e.score, nil
			}
		}
	}
	var v int16
	var err error
	if maximizing {
		v, err = srch.maxValue(ctx, key, depth, α, β, lastMove)
	} else {
		v, err = srch.minValue(ctx, key, depth, α, β, lastMove)
	}
	if err != nil {
		return 0, err
	}
	if srch.ttable != nil {
		flag := uint8(TTExact)
		if v <= α {
			flag = TTUpper
		} else if v >= β {
			flag = TTLower
		}
		srch.ttable.store(key, TableEntry{score: v, flag: flag, depth: remaining})
	}
	return v, nil
}

// leaf returns the score of a terminal or depth-limit position, and
// whether the position is one.
func (srch *search) leaf(depth, lastMove int) (int16, bool) {
	if o := srch.b.Classify(srch.player); o != board.StillPlaying {
		return terminalScore(o), true
	}
	if depth >= srch.limit {
		return srch.s.evaluator.Evaluate(&srch.b, srch.player, lastMove), true
	}
	return 0, false
}

// maxValue scores a position where the searching player is to move.
func (srch *search) maxValue(ctx context.Context, key uint64, depth int, α, β int16,
	lastMove int) (int16, error) {

	if srch.s.nodes.Add(1)&1023 == 0 && ctx.Err() != nil {
		return 0, ctx.Err()
	}
	if v, ok := srch.leaf(depth, lastMove); ok {
		return v, nil
	}
	var buf [board.NumColumns]int
	v := -Infinity
	for _, col := range srch.orderedMoves(buf[:0]) {
		row := srch.play(col, srch.player)
		childKey := srch.s.zobrist.AddMove(key, row, col, srch.player)
		score, err := srch.child(ctx, childKey, depth+1, α, β, col, false)
		srch.b.UnplayMove(col)
		if err != nil {
			return 0, err
		}
		v = max(v, score)
		if v >= β {
			srch.history[col] += (srch.limit - depth) * (srch.limit - depth)
			return v, nil
		}
		α = max(α, v)
	}
	return v, nil
}

// minValue scores a position where the opponent is to move.
func (srch *search) minValue(ctx context.Context, key uint64, depth int, α, β int16,
	lastMove int) (int16, error) {

	if srch.s.nodes.Add(1)&1023 == 0 && ctx.Err() != nil {
		return 0, ctx.Err()
	}
	if v, ok := srch.leaf(depth, lastMove); ok {
		return v, nil
	}
	opp := srch.player.Opponent()
	var buf [board.NumColumns]int
	v := Infinity
	for _, col := range srch.orderedMoves(buf[:0]) {
		row := srch.play(col, opp)
		childKey := srch.s.zobrist.AddMove(key, row, col, opp)
		score, err := srch.child(ctx, childKey, depth+1, α, β, col, true)
		srch.b.UnplayMove(col)
		if err != nil {
			return 0, err
		}
		v = min(v, score)
		if v <= α {
			srch.history[col] += (srch.limit - depth) * (srch.limit - depth)
			return v, nil
		}
		β = min(β, v)
	}
	return v, nil
}

// AlphaBeta scores b, with player to move, searching to a depth limit of
// depth plies.
func (s *Solver) AlphaBeta(ctx context.Context, b board.Board, player board.Player,
	α, β int16, depth int) (int16, error) {

	srch := s.newSearch(b, player)
	srch.limit = depth
	return srch.maxValue(ctx, s.zobrist.Hash(&b, player), 0, α, β, -1)
}

type moveScore struct {
	Column int   `yaml:"column"`
	Score  int16 `yaml:"score"`
}

type iterationTrace struct {
	Depth  int           `yaml:"depth"`
	Nodes  uint64        `yaml:"nodes"`
	Scores []moveScore   `yaml:"scores"`
	Best   []ScoredMoves `yaml:"best"`
}

func groupScores(scores []moveScore) []ScoredMoves {
	groups := lo.GroupBy(scores, func(m moveScore) int16 { return m.Score })
	out := make([]ScoredMoves, 0, len(groups))
	for score, ms := range groups {
		cols := lo.Map(ms, func(m moveScore, _ int) int { return m.Column })
		sort.Ints(cols)
		out = append(out, ScoredMoves{Score: score, Moves: cols})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// IterativeDeepening searches b with depth limits 1, 2, ... up to the
// configured maximum and returns the root moves grouped by score, best
// group first, from the deepest iteration that finished. It stops early
// once an iteration finds a forced win. If ctx ends during an iteration,
// that iteration's partial results are thrown away.
func (s *Solver) IterativeDeepening(ctx context.Context, b board.Board, player board.Player) ([]ScoredMoves, error) {
	if o := b.Classify(player); o != board.StillPlaying {
		return nil, fmt.Errorf("%w: position is already decided (%v)", ErrNoSolution, o)
	}
	srch := s.newSearch(b, player)
	s.lastTT = srch.ttable
	rootKey := s.zobrist.Hash(&b, player)
	var buf [board.NumColumns]int
	rootMoves := srch.orderedMoves(buf[:0])

	var enc *yaml.Encoder
	if s.logStream != nil {
		enc = yaml.NewEncoder(s.logStream)
		defer enc.Close()
	}

	var best []ScoredMoves
	for limit := 1; limit <= s.maxDepth; limit++ {
		log.Debug().Int("depth", limit).Msg("deepening-iteratively")
		srch.limit = limit
		scores := make([]moveScore, 0, len(rootMoves))
		for _, col := range rootMoves {
			err := ctx.Err()
			var v int16
			if err == nil {
				row := srch.play(col, player)
				childKey := s.zobrist.AddMove(rootKey, row, col, player)
				v, err = srch.child(ctx, childKey, 1, -Infinity, Infinity, col, false)
				srch.b.UnplayMove(col)
			}
			if err != nil {
				log.Debug().Err(err).Int("depth", limit).Msg("discarding-partial-iteration")
				if best == nil {
					return nil, fmt.Errorf("%w: %w", ErrNoSolution, err)
				}
				return best, nil
			}
			scores = append(scores, moveScore{Column: col, Score: v})
		}
		best = groupScores(scores)
		log.Debug().Int("depth", limit).Int16("score", best[0].Score).
			Ints("moves", best[0].Moves).Msg("best-val")
		if enc != nil {
			if err := enc.Encode(iterationTrace{Depth: limit, Nodes: s.nodes.Load(),
				Scores: scores, Best: best}); err != nil {
				log.Err(err).Msg("error-writing-trace")
			}
		}
		if best[0].Score >= WinScore {
			log.Debug().Int("depth", limit).Msg("forced-win-found")
			break
		}
		// Search the best root moves first next time around.
		sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
		rootMoves = lo.Map(scores, func(m moveScore, _ int) int { return m.Column })
	}
	if best == nil {
		return nil, ErrNoSolution
	}
	return best, nil
}

// Solve picks a move for player. It returns the chosen column along with
// every column that scored as well.
func (s *Solver) Solve(ctx context.Context, b board.Board, player board.Player) (int, []int, error) {
	if s.openingBook && b.NumPieces() < 2 && b.IsLegal(CenterColumn) {
		log.Debug().Msg("opening-book-move")
		return CenterColumn, []int{CenterColumn}, nil
	}
	log.Debug().Int("max-depth", s.maxDepth).
		Dur("time-limit", s.timeLimit).
		Str("evaluator", s.evaluator.Type()).
		Bool("ttable", s.transpositionTableOptim).
		Msg("alphabeta-solve-config")

	callerCtx := ctx
	if s.timeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeLimit)
		defer cancel()
	}
	tstart := time.Now()
	s.nodes.Store(0)

	g := &errgroup.Group{}
	done := make(chan bool)
	var best []ScoredMoves

	g.Go(func() error {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		var lastNodes uint64
		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
				nodes := s.nodes.Load()
				log.Debug().Uint64("nps", nodes-lastNodes).Msg("nodes-per-second")
				lastNodes = nodes
			}
		}
	})

	g.Go(func() error {
		var err error
		best, err = s.IterativeDeepening(ctx, b, player)
		close(done)
		return err
	})

	err := g.Wait()
	ev := log.Debug().
		Uint64("nodes", s.nodes.Load()).
		Float64("time-elapsed-sec", time.Since(tstart).Seconds())
	if s.lastTT != nil {
		ev = ev.Uint64("ttable-created", s.lastTT.created).
			Uint64("ttable-lookups", s.lastTT.lookups).
			Uint64("ttable-hits", s.lastTT.hits).
			Uint64("ttable-evictions", s.lastTT.evictions)
	}
	ev.Msg("solve-returning")
	if err != nil && errors.Is(err, context.DeadlineExceeded) && callerCtx.Err() == nil {
		// The time limit ran out before depth 1 finished.
		log.Info().Dur("time-limit", s.timeLimit).Msg("time-limit-before-first-iteration")
		best, err = s.shallowSearch(callerCtx, b, player)
	}
	if err != nil {
		return -1, nil, err
	}
	ties := best[0].Moves
	return ties[s.rng.Intn(len(ties))], ties, nil
}

// shallowSearch runs a single one-ply iteration without the time limit.
func (s *Solver) shallowSearch(ctx context.Context, b board.Board, player board.Player) ([]ScoredMoves, error) {
	maxDepth := s.maxDepth
	s.maxDepth = 1
	defer func() { s.maxDepth = maxDepth }()
	return s.IterativeDeepening(ctx, b, player)
}

func (s *Solver) SetMaxDepth(d int) {
	s.maxDepth = d
}

func (s *Solver) MaxDepth() int {
	return s.maxDepth
}

func (s *Solver) SetTimeLimit(d time.Duration) {
	s.timeLimit = d
}

func (s *Solver) SetTranspositionTableOptim(tt bool) {
	s.transpositionTableOptim = tt
}

func (s *Solver) SetOpeningBook(ob bool) {
	s.openingBook = ob
}

// SetLogStream makes the solver write a YAML document per completed
// iteration to w.
func (s *Solver) SetLogStream(w io.Writer) {
	s.logStream = w
}

func (s *Solver) Nodes() uint64 {
	return s.nodes.Load()
}

// LastTranspositionTable is the table used by the most recent search, or
// nil if it ran without one.
func (s *Solver) LastTranspositionTable() *TranspositionTable {
	return s.lastTT
}
