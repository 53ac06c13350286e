// Package bot is the single entry point callers use to get a move out of
// any of the engines.
package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/fourconnect/board"
	"github.com/domino14/fourconnect/config"
	"github.com/domino14/fourconnect/heuristic"
	"github.com/domino14/fourconnect/rng"
	"github.com/domino14/fourconnect/search/alphabeta"
	"github.com/domino14/fourconnect/search/mcts"
)

var (
	ErrGameOver   = errors.New("game is already over")
	ErrUnknownBot = errors.New("unknown bot")
)

// SavedState is carried from one GenerateMove call to the next. The
// current engines hand it back unchanged.
type SavedState any

// MoveGenerator picks a column for p to play on b.
type MoveGenerator interface {
	GenerateMove(ctx context.Context, b board.Board, p board.Player, saved SavedState) (int, SavedState, error)
}

type Bot struct {
	botType BotCode
	cfg     *config.Config
	rng     *frand.RNG

	solver   *alphabeta.Solver
	searcher *mcts.Searcher

	lastCalculatedDetails string
}

// NewBot builds a bot of the given type. A nil rng means one is built from
// the rng-seed config key.
func NewBot(cfg *config.Config, botType BotCode, r *frand.RNG) (*Bot, error) {
	if r == nil {
		r = rng.New(cfg.GetUint64(config.ConfigRNGSeed))
	}
	b := &Bot{botType: botType, cfg: cfg, rng: r}
	switch {
	case hasSolver(botType):
		eval, err := heuristic.FromName(cfg.GetString(config.ConfigABEvaluator))
		if err != nil {
			return nil, err
		}
		log.Debug().Str("evaluator", eval.Type()).Msg("adding fields for alphabeta")
		b.solver = alphabeta.NewSolver(cfg, eval, r)
	case hasSearcher(botType):
		log.Debug().Msg("adding fields for mcts")
		b.searcher = mcts.NewSearcher(cfg, r)
	case botType == RandomBot:
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownBot, botType)
	}
	return b, nil
}

// NewBotFromName is NewBot with the bot type given by name.
func NewBotFromName(cfg *config.Config, name string, r *frand.RNG) (*Bot, error) {
	code, err := BotCodeFromString(name)
	if err != nil {
		return nil, err
	}
	return NewBot(cfg, code, r)
}

func (bot *Bot) GenerateMove(ctx context.Context, b board.Board, p board.Player,
	saved SavedState) (int, SavedState, error) {

	if !p.Valid() {
		return -1, saved, fmt.Errorf("%w: %d", board.ErrInvalidPlayer, p)
	}
	// The position is judged from the side of the player who just moved.
	if o := b.Classify(p.Opponent()); o != board.StillPlaying {
		return -1, saved, fmt.Errorf("%w: %v", ErrGameOver, o)
	}
	var col int
	var err error
	switch bot.botType {
	case AlphaBetaBot:
		var ties []int
		col, ties, err = bot.solver.Solve(ctx, b, p)
		bot.lastCalculatedDetails = fmt.Sprintf("alphabeta picked %d from tied moves %v", col, ties)
	case MCTSBot:
		col, err = bot.searcher.Search(ctx, b, p)
		if err == nil {
			t := bot.searcher.LastTree()
			bot.lastCalculatedDetails = fmt.Sprintf("mcts picked %d after %d iterations (tree size %d, depth %d)",
				col, t.RootVisits(), t.Size(), t.Depth())
		}
	case RandomBot:
		moves := b.LegalMoves()
		col = moves[bot.rng.Intn(len(moves))]
		bot.lastCalculatedDetails = fmt.Sprintf("random picked %d from %v", col, moves)
	}
	if err != nil {
		return -1, saved, err
	}
	if !b.IsLegal(col) {
		// The engines only ever return legal columns.
		panic(fmt.Sprintf("%v bot returned illegal column %d", bot.botType, col))
	}
	log.Debug().Str("bot", bot.botType.String()).Int("column", col).Msg("generated-move")
	return col, saved, nil
}

func (bot *Bot) BotType() BotCode {
	return bot.botType
}

// BestMoveDetails summarizes how the last move was picked.
func (bot *Bot) BestMoveDetails() string {
	if bot.lastCalculatedDetails == "" {
		return "(No summary)"
	}
	return bot.lastCalculatedDetails
}

// Solver exposes the alpha-beta solver, or nil for other bot types.
func (bot *Bot) Solver() *alphabeta.Solver {
	return bot.solver
}
