package board

import (
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestToDisplayText(t *testing.T) {
	is := is.New(t)
	b := NewBoard()
	is.NoErr(b.PlayMove(3, Player1))
	is.NoErr(b.PlayMove(3, Player2))
	is.NoErr(b.PlayMove(0, Player1))

	expected := "|===============================|\n" +
		"|\t \t \t \t \t \t \t \t|\n" +
		"|\t \t \t \t \t \t \t \t|\n" +
		"|\t \t \t \t \t \t \t \t|\n" +
		"|\t \t \t \t \t \t \t \t|\n" +
		"|\t \t \t \tO\t \t \t \t|\n" +
		"|\tX\t \t \tX\t \t \t \t|\n" +
		"|===============================|\n" +
		"|\t0\t1\t2\t3\t4\t5\t6\t|\n"
	is.Equal(b.ToDisplayText(), expected)
}

func TestDisplayRoundTrip(t *testing.T) {
	is := is.New(t)
	for i := 0; i < 300; i++ {
		b := randomBoard(NumCells)
		parsed, err := FromDisplayText(b.ToDisplayText())
		is.NoErr(err)
		is.Equal(parsed, b)
	}
}

func TestFromDisplayTextErrors(t *testing.T) {
	is := is.New(t)
	b := NewBoard()
	good := b.ToDisplayText()

	_, err := FromDisplayText("")
	is.True(err != nil)

	bad := strings.Replace(good, "|\t \t \t \t \t \t \t \t|\n", "|\t \t \tQ\t \t \t \t \t|\n", 1)
	_, err = FromDisplayText(bad)
	is.True(err != nil)

	// a piece in the top row with nothing under it.
	floating := strings.Replace(good, "|\t \t \t \t \t \t \t \t|\n", "|\tX\t \t \t \t \t \t \t|\n", 1)
	_, err = FromDisplayText(floating)
	is.True(err != nil)

	noBorder := strings.Replace(good, borderLine, "|", 1)
	_, err = FromDisplayText(noBorder)
	is.True(err != nil)
}
