package board

import (
	"errors"
	"fmt"
	"strings"
)

var ErrBadDisplayText = errors.New("malformed board text")

var borderLine = "|" + strings.Repeat("=", 31) + "|"

// ToDisplayText renders the board with the top row first, framed by
// borders and followed by the column indices.
func (b *Board) ToDisplayText() string {
	var sb strings.Builder
	sb.WriteString(borderLine + "\n")
	for r := NumRows - 1; r >= 0; r-- {
		sb.WriteString("|")
		for c := 0; c < NumColumns; c++ {
			sb.WriteString("\t" + b.At(r, c).String())
		}
		sb.WriteString("\t|\n")
	}
	sb.WriteString(borderLine + "\n")
	sb.WriteString("|")
	for c := 0; c < NumColumns; c++ {
		fmt.Fprintf(&sb, "\t%d", c)
	}
	sb.WriteString("\t|\n")
	return sb.String()
}

func (b Board) String() string {
	return b.ToDisplayText()
}

// FromDisplayText parses the output of ToDisplayText.
func FromDisplayText(s string) (Board, error) {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) != NumRows+3 {
		return Board{}, fmt.Errorf("%w: expected %d lines, got %d", ErrBadDisplayText, NumRows+3, len(lines))
	}
	if lines[0] != borderLine || lines[NumRows+1] != borderLine {
		return Board{}, fmt.Errorf("%w: missing border", ErrBadDisplayText)
	}
	var g Grid
	for i := 1; i <= NumRows; i++ {
		line := lines[i]
		if !strings.HasPrefix(line, "|\t") || !strings.HasSuffix(line, "\t|") {
			return Board{}, fmt.Errorf("%w: line %d", ErrBadDisplayText, i)
		}
		cells := strings.Split(line[2:len(line)-2], "\t")
		if len(cells) != NumColumns {
			return Board{}, fmt.Errorf("%w: line %d has %d cells", ErrBadDisplayText, i, len(cells))
		}
		row := NumRows - i
		for c, cell := range cells {
			switch cell {
			case "X":
				g[row][c] = Player1
			case "O":
				g[row][c] = Player2
			case " ":
				g[row][c] = NoPlayer
			default:
				return Board{}, fmt.Errorf("%w: unknown cell %q", ErrBadDisplayText, cell)
			}
		}
	}
	return FromGrid(g)
}
