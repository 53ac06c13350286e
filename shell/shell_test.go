package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domino14/fourconnect/board"
	"github.com/domino14/fourconnect/config"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"script \"my scripts/run.lua\"",
			&shellcmd{"script", []string{"my scripts/run.lua"}, CmdOptions{}},
			nil},
		{"play 3",
			&shellcmd{"play", []string{"3"}, CmdOptions{}},
			nil},
		{"autoplay 100 -p1 alphabeta -p2 mcts ",
			&shellcmd{"autoplay",
				[]string{"100"},
				CmdOptions{"p1": {"alphabeta"}, "p2": {"mcts"}}},
			nil,
		},
		{"autoplay 100 -p1",
			nil, errWrongOptionSyntax},
	}
	for _, tc := range cases {
		cmd, err := extractFields(tc.line)
		is.Equal(cmd, tc.expCmd)
		is.Equal(err, tc.expErr)
	}
}

func testController(t *testing.T) (*ShellController, *bytes.Buffer) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigRNGSeed, 11)
	cfg.Set(config.ConfigABMaxDepth, 4)
	cfg.Set(config.ConfigMCTSIterations, 200)
	var buf bytes.Buffer
	sc, err := newController(cfg, &buf)
	require.NoError(t, err)
	return sc, &buf
}

func TestPlayAndShow(t *testing.T) {
	is := is.New(t)
	sc, buf := testController(t)
	sig := make(chan os.Signal, 1)

	sc.Execute(sig, "play 3")
	sc.Execute(sig, "play 3")
	is.Equal(sc.history, []int{3, 3})
	is.Equal(sc.onTurn, board.Player1)
	is.Equal(sc.board.At(1, 3), board.Player2)

	buf.Reset()
	sc.Execute(sig, "show")
	is.True(strings.Contains(buf.String(), "X to move"))
	is.True(strings.Contains(buf.String(), "Last play: O in column 3"))

	buf.Reset()
	sc.Execute(sig, "play 9")
	is.True(strings.HasPrefix(buf.String(), "Error: "))

	buf.Reset()
	sc.Execute(sig, "frobnicate")
	is.True(strings.Contains(buf.String(), "not found"))
}

func TestGameOverBlocksPlay(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	for _, col := range []int{0, 1, 0, 1, 0, 1, 0} {
		_, err := sc.play(&shellcmd{cmd: "play", args: []string{string(rune('0' + col))}})
		is.NoErr(err)
	}
	is.Equal(sc.status(), "Game over: X wins")
	_, err := sc.play(&shellcmd{cmd: "play", args: []string{"5"}})
	is.True(err != nil)
	_, err = sc.generate(&shellcmd{cmd: "gen", options: CmdOptions{}})
	is.True(err != nil)

	_, err = sc.newGame(&shellcmd{cmd: "new"})
	is.NoErr(err)
	is.Equal(sc.board.NumPieces(), 0)
	is.Equal(sc.status(), "X to move")
}

func TestGenAndEngine(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)

	r, err := sc.generate(&shellcmd{cmd: "gen", options: CmdOptions{}})
	is.NoErr(err)
	// the opening book answers the first move.
	is.True(strings.Contains(r.message, "column 3"))
	is.Equal(sc.board.NumPieces(), 0)

	for _, engine := range []string{"mcts", "random", "alphabeta"} {
		_, err = sc.setEngineCmd(&shellcmd{cmd: "engine", args: []string{engine}})
		is.NoErr(err)
		is.Equal(sc.engine.BotType().String(), engine)
		_, err = sc.generate(&shellcmd{cmd: "gen", options: CmdOptions{"play": {"true"}}})
		is.NoErr(err)
	}
	is.Equal(sc.board.NumPieces(), 3)
	is.Equal(len(sc.history), 3)

	_, err = sc.setEngineCmd(&shellcmd{cmd: "engine", args: []string{"oracle"}})
	is.True(err != nil)
}

func TestSet(t *testing.T) {
	sc, _ := testController(t)
	_, err := sc.set(&shellcmd{cmd: "set", args: []string{"ab-max-depth", "2"}})
	require.NoError(t, err)
	assert.Equal(t, 2, sc.config.GetInt(config.ConfigABMaxDepth))
	assert.Equal(t, 2, sc.engine.Solver().MaxDepth())

	r, err := sc.set(&shellcmd{cmd: "set", args: []string{"ab-max-depth"}})
	require.NoError(t, err)
	assert.Equal(t, "ab-max-depth: 2", r.message)

	_, err = sc.set(&shellcmd{cmd: "set", args: []string{"no-such-key", "1"}})
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	b := board.NewBoard()
	is.NoErr(b.PlayMove(2, board.Player1))
	is.NoErr(b.PlayMove(4, board.Player2))
	is.NoErr(b.PlayMove(2, board.Player1))

	path := filepath.Join(t.TempDir(), "board.txt")
	is.NoErr(os.WriteFile(path, []byte(b.ToDisplayText()), 0644))
	_, err := sc.load(&shellcmd{cmd: "load", args: []string{path}})
	is.NoErr(err)
	is.Equal(sc.board, b)
	is.Equal(sc.onTurn, board.Player2)

	// two X pieces and no O pieces cannot happen.
	bad := board.NewBoard()
	is.NoErr(bad.PlayMove(0, board.Player1))
	is.NoErr(bad.PlayMove(1, board.Player1))
	is.NoErr(os.WriteFile(path, []byte(bad.ToDisplayText()), 0644))
	_, err = sc.load(&shellcmd{cmd: "load", args: []string{path}})
	is.True(err != nil)
	is.Equal(sc.board, b)
}

func TestAutoplayCommand(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	r, err := sc.autoplay(&shellcmd{cmd: "autoplay", args: []string{"6"},
		options: CmdOptions{"p1": {"random"}, "p2": {"random"}}})
	is.NoErr(err)
	is.True(strings.Contains(r.message, "Games played: 6"))

	_, err = sc.autoplay(&shellcmd{cmd: "autoplay", args: []string{"0"}, options: CmdOptions{}})
	is.True(err != nil)
}

func TestScript(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	path := filepath.Join(t.TempDir(), "game.lua")
	script := `
fc_set("mcts-iterations", "100")
fc_new()
fc_play(3)
local col, details = fc_gen()
assert(col >= 0 and col <= 6, details)
local out = fc_show()
assert(string.find(out, "X to move"), out)
local bad = fc_play(42)
assert(string.find(bad, "ERROR"), bad)
local json = require("json")
assert(json.encode(fc_history()) == "[3,3]", json.encode(fc_history()))
`
	is.NoErr(os.WriteFile(path, []byte(script), 0644))
	_, err := sc.script(&shellcmd{cmd: "script", args: []string{path}})
	is.NoErr(err)
	is.Equal(len(sc.history), 2)
	is.Equal(sc.history[0], 3)
	is.Equal(sc.config.GetInt(config.ConfigMCTSIterations), 100)

	_, err = sc.script(&shellcmd{cmd: "script", args: []string{filepath.Join(t.TempDir(), "missing.lua")}})
	is.True(err != nil)
}

func TestHelp(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	r, err := sc.help(&shellcmd{cmd: "help"})
	is.NoErr(err)
	is.True(strings.Contains(r.message, "autoplay"))
	_, err = sc.help(&shellcmd{cmd: "help", args: []string{"gen"}})
	is.NoErr(err)
	_, err = sc.help(&shellcmd{cmd: "help", args: []string{"xyzzy"}})
	is.True(err != nil)
}

func TestExitSignals(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	sig := make(chan os.Signal, 1)
	_, err := sc.standardModeSwitch("exit", sig)
	is.Equal(err, errQuit)
	is.Equal(len(sig), 1)
}

func TestCompleter(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	c := NewShellCompleter(sc)

	matches, n := c.Do([]rune("aut"), 3)
	is.Equal(n, 3)
	is.Equal(matches, [][]rune{[]rune("oplay")})

	line := []rune("autoplay 10 -p1 m")
	matches, _ = c.Do(line, len(line))
	is.Equal(matches, [][]rune{[]rune("cts")})

	line = []rune("set ab-max")
	matches, _ = c.Do(line, len(line))
	is.Equal(matches, [][]rune{[]rune("-depth")})
}
