package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/domino14/fourconnect/automatic"
	"github.com/domino14/fourconnect/board"
	"github.com/domino14/fourconnect/config"
)

type Response struct {
	message string
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) Int(key string) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) Bool(key string) bool {
	v := c[key]
	if len(v) == 0 {
		return false
	}
	return strings.ToLower(v[0]) == "true"
}

func msg(message string) *Response {
	return &Response{message: message}
}

func (sc *ShellController) boardWithStatus() string {
	return sc.board.ToDisplayText() + sc.status()
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	sc.resetGame()
	return msg(sc.boardWithStatus()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	out := sc.boardWithStatus()
	if sc.lastPlay != "" {
		out += "\nLast play: " + sc.lastPlay
	}
	return msg(out), nil
}

func (sc *ShellController) commit(col int) error {
	if _, over := sc.gameOver(); over {
		return errors.New("game is over")
	}
	if err := sc.board.PlayMove(col, sc.onTurn); err != nil {
		return err
	}
	sc.history = append(sc.history, col)
	sc.lastPlay = fmt.Sprintf("%v in column %d", sc.onTurn, col)
	log.Debug().Int("column", col).Str("player", sc.onTurn.String()).Msg("committed-move")
	sc.onTurn = sc.onTurn.Opponent()
	return nil
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("play <column>")
	}
	col, err := strconv.Atoi(cmd.args[0])
	if err != nil {
		return nil, err
	}
	if err := sc.commit(col); err != nil {
		return nil, err
	}
	return msg(sc.boardWithStatus()), nil
}

// generate asks the current engine for a move. With -play true the move
// is also made on the board.
func (sc *ShellController) generate(cmd *shellcmd) (*Response, error) {
	col, saved, err := sc.engine.GenerateMove(context.Background(), sc.board, sc.onTurn, sc.saved)
	if err != nil {
		return nil, err
	}
	sc.saved = saved
	out := fmt.Sprintf("Best move for %v: column %d\n%s", sc.onTurn, col, sc.engine.BestMoveDetails())
	if cmd.options.Bool("play") {
		if err := sc.commit(col); err != nil {
			return nil, err
		}
		out += "\n" + sc.boardWithStatus()
	}
	return msg(out), nil
}

func (sc *ShellController) setEngineCmd(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg("Current engine: " + sc.engine.BotType().String()), nil
	}
	if err := sc.setEngine(cmd.args[0]); err != nil {
		return nil, err
	}
	return msg("Engine set to " + sc.engine.BotType().String()), nil
}

// load reads a board in display-text form. The player to move is inferred
// from the piece counts.
func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("load <file>")
	}
	dat, err := os.ReadFile(cmd.args[0])
	if err != nil {
		return nil, err
	}
	b, err := board.FromDisplayText(string(dat))
	if err != nil {
		return nil, err
	}
	var counts [3]int
	for _, row := range b.Grid() {
		for _, p := range row {
			counts[p]++
		}
	}
	switch counts[board.Player1] - counts[board.Player2] {
	case 0:
		sc.onTurn = board.Player1
	case 1:
		sc.onTurn = board.Player2
	default:
		return nil, fmt.Errorf("%w: piece counts %d and %d cannot come from alternating play",
			board.ErrBadDisplayText, counts[board.Player1], counts[board.Player2])
	}
	sc.board = b
	sc.history = sc.history[:0]
	sc.saved = nil
	sc.lastPlay = ""
	return msg(sc.boardWithStatus()), nil
}

// set changes a config key and rebuilds the engine so the change applies.
func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(sc.config.SanitizedSettings()), nil
	}
	key := cmd.args[0]
	if len(cmd.args) == 1 {
		if !sc.config.IsSet(key) {
			return nil, errors.New("no such setting: " + key)
		}
		return msg(fmt.Sprintf("%s: %v", key, sc.config.Get(key))), nil
	}
	if !sc.config.IsSet(key) {
		return nil, errors.New("no such setting: " + key)
	}
	sc.config.Set(key, strings.Join(cmd.args[1:], " "))
	if err := sc.setEngine(sc.engine.BotType().String()); err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("set %s to %v", key, sc.config.Get(key))), nil
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("autoplay <n> [-p1 kind] [-p2 kind]")
	}
	n, err := strconv.Atoi(cmd.args[0])
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, errors.New("number of games must be positive")
	}
	defaultBot := sc.config.GetString(config.ConfigDefaultBot)
	p1 := cmd.options.String("p1")
	if p1 == "" {
		p1 = defaultBot
	}
	p2 := cmd.options.String("p2")
	if p2 == "" {
		p2 = defaultBot
	}
	summary, err := automatic.PlayCompVsComp(context.Background(), sc.config, n, p1, p2, nil)
	if err != nil {
		return nil, err
	}
	return msg(summary.String()), nil
}
