package shell

import (
	"errors"
	"strconv"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
	luajson "layeh.com/gopher-json"
)

const luaShellGlobal = "fc_shell"

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal(luaShellGlobal)
	ud, ok := shell.(*lua.LUserData)
	if !ok {
		panic("luserdata not right type")
	}
	sc, ok := ud.Value.(*ShellController)
	if !ok {
		panic("shellcontroller not right type")
	}
	return sc
}

// pushResult pushes a command's message, or an ERROR string, and returns
// the number of results on the stack.
func pushResult(L *lua.LState, name string, r *Response, err error) int {
	if err != nil {
		log.Err(err).Msg("error-executing-" + name)
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
	L.Push(lua.LString(r.message))
	return 1
}

func New(L *lua.LState) int {
	sc := getShell(L)
	r, err := sc.newGame(&shellcmd{cmd: "new"})
	return pushResult(L, "new", r, err)
}

func Play(L *lua.LState) int {
	col := L.CheckInt(1)
	sc := getShell(L)
	r, err := sc.play(&shellcmd{cmd: "play", args: []string{strconv.Itoa(col)}})
	return pushResult(L, "play", r, err)
}

// Gen generates a move and plays it, returning the column (or -1 on
// error) and the engine's message.
func Gen(L *lua.LState) int {
	sc := getShell(L)
	before := len(sc.history)
	r, err := sc.generate(&shellcmd{cmd: "gen", options: CmdOptions{"play": {"true"}}})
	if err != nil {
		log.Err(err).Msg("error-executing-gen")
		L.Push(lua.LNumber(-1))
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 2
	}
	col := -1
	if len(sc.history) > before {
		col = sc.history[len(sc.history)-1]
	}
	L.Push(lua.LNumber(col))
	L.Push(lua.LString(r.message))
	return 2
}

func Show(L *lua.LState) int {
	sc := getShell(L)
	r, err := sc.show(&shellcmd{cmd: "show"})
	return pushResult(L, "show", r, err)
}

func Set(L *lua.LState) int {
	key := L.CheckString(1)
	val := L.ToString(2)
	sc := getShell(L)
	args := []string{key}
	if val != "" {
		args = append(args, val)
	}
	r, err := sc.set(&shellcmd{cmd: "set", args: args})
	return pushResult(L, "set", r, err)
}

func Autoplay(L *lua.LState) int {
	n := L.CheckInt(1)
	sc := getShell(L)
	opts := CmdOptions{}
	if p1 := L.OptString(2, ""); p1 != "" {
		opts["p1"] = []string{p1}
	}
	if p2 := L.OptString(3, ""); p2 != "" {
		opts["p2"] = []string{p2}
	}
	r, err := sc.autoplay(&shellcmd{cmd: "autoplay", args: []string{strconv.Itoa(n)}, options: opts})
	return pushResult(L, "autoplay", r, err)
}

// History returns the columns played so far as a Lua array.
func History(L *lua.LState) int {
	sc := getShell(L)
	t := L.NewTable()
	for _, col := range sc.history {
		t.Append(lua.LNumber(col))
	}
	L.Push(t)
	return 1
}

func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return nil, errors.New("need arguments for script")
	}

	filepath := cmd.args[0]

	L := lua.NewState()
	defer L.Close()

	lsc := L.NewUserData()
	lsc.Value = sc

	L.SetGlobal(luaShellGlobal, lsc)
	L.SetGlobal("fc_new", L.NewFunction(New))
	L.SetGlobal("fc_play", L.NewFunction(Play))
	L.SetGlobal("fc_gen", L.NewFunction(Gen))
	L.SetGlobal("fc_show", L.NewFunction(Show))
	L.SetGlobal("fc_set", L.NewFunction(Set))
	L.SetGlobal("fc_autoplay", L.NewFunction(Autoplay))
	L.SetGlobal("fc_history", L.NewFunction(History))
	luajson.Preload(L)

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Msg("there was a error")
		return nil, err
	}
	return msg("script " + filepath + " finished"), nil
}
