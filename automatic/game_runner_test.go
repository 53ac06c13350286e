package automatic

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domino14/fourconnect/ai/bot"
	"github.com/domino14/fourconnect/board"
	"github.com/domino14/fourconnect/config"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

// columnPlayer plays the first legal column in its preference list.
type columnPlayer struct {
	prefs []int
}

func (c *columnPlayer) GenerateMove(ctx context.Context, b board.Board, p board.Player,
	saved bot.SavedState) (int, bot.SavedState, error) {

	for _, col := range c.prefs {
		if b.IsLegal(col) {
			return col, saved, nil
		}
	}
	return b.LegalMoves()[0], saved, nil
}

func TestPlayGameVerticalWin(t *testing.T) {
	is := is.New(t)
	logchan := make(chan string, 100)
	r := NewGameRunner(logchan, config.DefaultConfig())
	r.SetPlayers([2]bot.MoveGenerator{&columnPlayer{prefs: []int{0}}, &columnPlayer{prefs: []int{6}}},
		[2]string{"left", "right"})

	res, err := r.PlayGame(context.Background(), 0)
	is.NoErr(err)
	is.Equal(res.Winner, 0)
	is.Equal(res.Moves, []int{0, 6, 0, 6, 0, 6, 0})
	is.Equal(res.MoveString(), "0606060")
	is.Equal(res.FinalBoard.Classify(board.Player1), board.Win)
	close(logchan)

	var lines []string
	for l := range logchan {
		lines = append(lines, l)
	}
	is.Equal(len(lines), 7)
	is.Equal(lines[0], "1,1,0,left,X,0,1\n")
	is.Equal(lines[6], "1,7,0,left,X,0,7\n")

	// Seat 1 moving first now gets the win; the closed log is detached.
	r.logchan = nil
	res, err = r.PlayGame(context.Background(), 1)
	is.NoErr(err)
	is.Equal(res.GameID, 2)
	is.Equal(res.Winner, 1)
	is.Equal(res.FirstSeat, 1)
}

func TestPlayGameWithoutPlayers(t *testing.T) {
	r := NewGameRunner(nil, config.DefaultConfig())
	_, err := r.PlayGame(context.Background(), 0)
	assert.Error(t, err)
}

func TestPlayGameCancelled(t *testing.T) {
	r := NewGameRunner(nil, config.DefaultConfig())
	require.NoError(t, r.Init("random", "random"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.PlayGame(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlayCompVsCompRandom(t *testing.T) {
	is := is.New(t)
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigRNGSeed, 42)
	summary, err := PlayCompVsComp(context.Background(), cfg, 40, "random", "random", nil)
	is.NoErr(err)
	is.Equal(summary.Games(), 40)
	is.Equal(summary.Wins(0)+summary.Wins(1)+summary.Draws(), 40)
	is.True(summary.DistinctGames() > 30)
	is.True(summary.MeanLength() >= 7)
	is.Equal(CVCCounter.Value(), int64(40))
	is.Equal(IsPlaying.Value(), int64(0))

	lo, hi := summary.ScoreInterval()
	is.True(lo <= hi)

	out := summary.String()
	is.True(strings.Contains(out, "Games played: 40"))
	is.True(strings.Contains(out, "random-1 wins"))
	is.True(strings.Contains(out, "Length histogram"))
}

func TestSeededMatchesRepeat(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigRNGSeed, 7)
	cfg.Set(config.ConfigMCTSIterations, 200)
	first, err := PlayCompVsComp(context.Background(), cfg, 10, "random", "mcts", nil)
	require.NoError(t, err)
	second, err := PlayCompVsComp(context.Background(), cfg, 10, "random", "mcts", nil)
	require.NoError(t, err)
	assert.Equal(t, first.String(), second.String())
}

func TestUnknownBot(t *testing.T) {
	_, err := PlayCompVsComp(context.Background(), config.DefaultConfig(), 1, "random", "deep-blue", nil)
	assert.ErrorIs(t, err, bot.ErrUnknownBot)
}

func TestSummaryCounts(t *testing.T) {
	is := is.New(t)
	s := NewSummary([2]string{"a", "b"})
	s.Add(&GameResult{FirstSeat: 0, Winner: 0, Moves: []int{0, 1, 0, 1, 0, 1, 0}})
	s.Add(&GameResult{FirstSeat: 1, Winner: 1, Moves: []int{0, 1, 0, 1, 0, 1, 0}})
	s.Add(&GameResult{FirstSeat: 0, Winner: -1, Moves: make([]int, board.NumCells)})
	is.Equal(s.Games(), 3)
	is.Equal(s.Wins(0), 1)
	is.Equal(s.Wins(1), 1)
	is.Equal(s.Draws(), 1)
	is.Equal(s.DistinctGames(), 2)
	assert.InDelta(t, 0.5, s.score.Mean(), 1e-9)
	assert.InDelta(t, 2.5/3, s.firstMoverScore.Mean(), 1e-9)
	assert.InDelta(t, 56.0/3, s.MeanLength(), 1e-9)
}
