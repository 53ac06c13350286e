package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/fourconnect/ai/bot"
	"github.com/domino14/fourconnect/board"
	"github.com/domino14/fourconnect/config"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errQuit              = errors.New("quit requested")
)

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

// extractFields splits a line into a command, positional arguments and
// -key value options.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}
	for idx := 1; idx < len(fields); idx++ {
		f := fields[idx]
		if strings.HasPrefix(f, "-") && len(f) > 1 {
			if idx == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			key := f[1:]
			options[key] = append(options[key], fields[idx+1])
			idx++
			continue
		}
		args = append(args, f)
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

type ShellController struct {
	l      *readline.Instance
	out    io.Writer
	config *config.Config

	board    board.Board
	onTurn   board.Player
	history  []int
	engine   *bot.Bot
	saved    bot.SavedState
	lastPlay string
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func writeln(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func (sc *ShellController) showMessage(msg string) {
	writeln(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// newController sets up game state without a terminal.
func newController(cfg *config.Config, out io.Writer) (*ShellController, error) {
	sc := &ShellController{config: cfg, out: out}
	sc.resetGame()
	if err := sc.setEngine(cfg.GetString(config.ConfigDefaultBot)); err != nil {
		return nil, err
	}
	return sc, nil
}

func NewShellController(cfg *config.Config) *ShellController {
	sc, err := newController(cfg, os.Stderr)
	if err != nil {
		panic(err)
	}
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[33mfourconnect>\033[0m ",
		HistoryFile:     "/tmp/fourconnect-readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    NewShellCompleter(sc),

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	sc.out = l.Stderr()
	return sc
}

func (sc *ShellController) resetGame() {
	sc.board = board.NewBoard()
	sc.onTurn = board.Player1
	sc.history = sc.history[:0]
	sc.saved = nil
	sc.lastPlay = ""
}

func (sc *ShellController) setEngine(name string) error {
	b, err := bot.NewBotFromName(sc.config, name, nil)
	if err != nil {
		return err
	}
	sc.engine = b
	sc.saved = nil
	return nil
}

// gameOver reports the outcome for the player who made the last move.
func (sc *ShellController) gameOver() (board.Outcome, bool) {
	o := sc.board.Classify(sc.onTurn.Opponent())
	return o, o != board.StillPlaying
}

func (sc *ShellController) status() string {
	if o, over := sc.gameOver(); over {
		switch o {
		case board.Win:
			return fmt.Sprintf("Game over: %v wins", sc.onTurn.Opponent())
		case board.Loss:
			return fmt.Sprintf("Game over: %v wins", sc.onTurn)
		default:
			return "Game over: draw"
		}
	}
	return fmt.Sprintf("%v to move", sc.onTurn)
}

func (sc *ShellController) standardModeSwitch(line string, sig chan os.Signal) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "exit", "bye":
		sig <- syscall.SIGINT
		return nil, errQuit
	case "help":
		return sc.help(cmd)
	case "new", "n":
		return sc.newGame(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "play", "p":
		return sc.play(cmd)
	case "gen", "g":
		return sc.generate(cmd)
	case "engine":
		return sc.setEngineCmd(cmd)
	case "load":
		return sc.load(cmd)
	case "set":
		return sc.set(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "script":
		return sc.script(cmd)
	default:
		msg := fmt.Sprintf("command %v not found", strconv.Quote(cmd.cmd))
		log.Info().Msg(msg)
		return nil, errors.New(msg)
	}
}

// Execute runs a single command line and prints its result.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	resp, err := sc.standardModeSwitch(line, sig)
	if errors.Is(err, errQuit) {
		return
	}
	if err != nil {
		sc.showError(err)
	} else if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		resp, err := sc.standardModeSwitch(line, sig)
		if errors.Is(err, errQuit) {
			break
		}
		if err != nil {
			sc.showError(err)
		} else if resp != nil && resp.message != "" {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

func (sc *ShellController) Cleanup() {
	log.Debug().Int("moves", len(sc.history)).Msg("shell-cleanup")
}
