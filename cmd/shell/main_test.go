package main

import (
	"testing"

	"github.com/matryer/is"
)

func TestSplitArgs(t *testing.T) {
	is := is.New(t)
	flags, cmd := splitArgs([]string{"--ab-max-depth=9", "autoplay", "10", "-p1", "mcts", "--debug"})
	is.Equal(flags, []string{"--ab-max-depth=9", "--debug"})
	is.Equal(cmd, []string{"autoplay", "10", "-p1", "mcts"})

	flags, cmd = splitArgs(nil)
	is.Equal(len(flags), 0)
	is.Equal(len(cmd), 0)
}
