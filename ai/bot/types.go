package bot

import (
	"fmt"
	"strings"
)

// BotCode selects the engine behind a Bot.
type BotCode int

const (
	AlphaBetaBot BotCode = iota
	MCTSBot
	RandomBot
)

func (c BotCode) String() string {
	switch c {
	case AlphaBetaBot:
		return "alphabeta"
	case MCTSBot:
		return "mcts"
	case RandomBot:
		return "random"
	}
	return fmt.Sprintf("BotCode(%d)", int(c))
}

func BotCodeFromString(s string) (BotCode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "alphabeta", "ab", "minimax":
		return AlphaBetaBot, nil
	case "mcts":
		return MCTSBot, nil
	case "random":
		return RandomBot, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBot, s)
}

func hasSolver(c BotCode) bool {
	return c == AlphaBetaBot
}

func hasSearcher(c BotCode) bool {
	return c == MCTSBot
}
