package automatic

import (
	"fmt"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/cespare/xxhash"

	"github.com/domino14/fourconnect/stats"
)

const (
	confidence    = 95.0
	histogramBins = 10
	histogramBars = 50
)

// Summary accumulates results over a match.
type Summary struct {
	names [2]string
	wins  [2]int
	draws int

	// seat-0 score per game: 1 win, 0.5 draw, 0 loss.
	score stats.Statistic
	// score of whoever moved first.
	firstMoverScore stats.Statistic
	lengths         stats.Statistic
	lengthSamples   []float64
	distinct        map[uint64]struct{}
}

func NewSummary(names [2]string) *Summary {
	return &Summary{names: names, distinct: map[uint64]struct{}{}}
}

func (s *Summary) Add(g *GameResult) {
	switch g.Winner {
	case -1:
		s.draws++
		s.score.Push(0.5)
		s.firstMoverScore.Push(0.5)
	default:
		s.wins[g.Winner]++
		if g.Winner == 0 {
			s.score.Push(1)
		} else {
			s.score.Push(0)
		}
		if g.Winner == g.FirstSeat {
			s.firstMoverScore.Push(1)
		} else {
			s.firstMoverScore.Push(0)
		}
	}
	n := float64(len(g.Moves))
	s.lengths.Push(n)
	s.lengthSamples = append(s.lengthSamples, n)
	s.distinct[xxhash.Sum64String(g.MoveString())] = struct{}{}
}

func (s *Summary) Games() int {
	return s.lengths.Iterations()
}

func (s *Summary) Wins(seat int) int {
	return s.wins[seat]
}

func (s *Summary) Draws() int {
	return s.draws
}

// DistinctGames counts games with different move sequences.
func (s *Summary) DistinctGames() int {
	return len(s.distinct)
}

func (s *Summary) MeanLength() float64 {
	return s.lengths.Mean()
}

// ScoreInterval is the confidence interval on seat 0's score per game.
func (s *Summary) ScoreInterval() (float64, float64) {
	return s.score.ConfidenceInterval(confidence)
}

func (s *Summary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Games played: %d\n", s.Games())
	if s.Games() == 0 {
		return sb.String()
	}
	fmt.Fprintf(&sb, "%s wins: %d (%.3f%%)\n", s.names[0], s.wins[0], 100*float64(s.wins[0])/float64(s.Games()))
	fmt.Fprintf(&sb, "%s wins: %d (%.3f%%)\n", s.names[1], s.wins[1], 100*float64(s.wins[1])/float64(s.Games()))
	fmt.Fprintf(&sb, "Draws: %d\n", s.draws)
	lo, hi := s.ScoreInterval()
	fmt.Fprintf(&sb, "%s score: %.3f (%.0f%% CI %.3f - %.3f)\n", s.names[0], s.score.Mean(), confidence, lo, hi)
	fmt.Fprintf(&sb, "Went-first score: %.3f\n", s.firstMoverScore.Mean())
	fmt.Fprintf(&sb, "Distinct games: %d\n", s.DistinctGames())
	fmt.Fprintf(&sb, "Game length: mean %.2f, stdev %.2f, min %.0f, max %.0f\n",
		s.lengths.Mean(), s.lengths.Stdev(), s.lengths.Min(), s.lengths.Max())
	sb.WriteString("Length histogram:\n")
	h := histogram.Hist(histogramBins, s.lengthSamples)
	if err := histogram.Fprint(&sb, h, histogram.Linear(histogramBars)); err != nil {
		fmt.Fprintf(&sb, "(histogram error: %v)\n", err)
	}
	return sb.String()
}
