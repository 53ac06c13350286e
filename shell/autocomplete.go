package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

// ShellCompleter provides autocomplete for shell commands.
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string
	Args    []string
}

var engineNames = []string{"alphabeta", "mcts", "random"}

var commandMetadata = map[string]CommandMetadata{
	"gen":      {Options: []string{"-play"}},
	"autoplay": {Options: []string{"-p1", "-p2"}},
	"engine":   {Args: engineNames},
	"play":     {Args: []string{"0", "1", "2", "3", "4", "5", "6"}},
	"help":     {Args: []string{"gen", "autoplay", "set", "script", "load"}},
}

var commandNames = []string{
	"new", "show", "play", "gen", "engine", "load", "set", "autoplay",
	"script", "help", "exit",
}

// Do implements readline.AutoCompleter.
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}
		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}

		switch strings.TrimPrefix(lastCompleteField, "-") {
		case "p1", "p2":
			completions = engineNames
		case "play":
			if cmdName == "gen" {
				completions = []string{"true", "false"}
			}
		}
		completingKey := (len(fields) == 1 && endsWithSpace) || (len(fields) == 2 && !endsWithSpace)
		if cmdName == "set" && completingKey && completions == nil {
			completions = c.sc.config.AllKeys()
		}

		if completions == nil {
			if metadata, exists := commandMetadata[cmdName]; exists {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}
