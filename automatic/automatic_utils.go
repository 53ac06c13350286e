package automatic

// Computer vs computer matches.

import (
	"context"
	"errors"
	"expvar"

	"github.com/rs/zerolog/log"

	"github.com/domino14/fourconnect/config"
)

var (
	CVCCounter *expvar.Int
	IsPlaying  *expvar.Int
)

func init() {
	CVCCounter = expvar.NewInt("cvcCounter")
	IsPlaying = expvar.NewInt("isPlaying")
}

// PlayCompVsComp plays numGames games between the bots named player1 and
// player2, alternating who moves first. Cancelling ctx stops the match
// and returns the games finished so far.
func PlayCompVsComp(ctx context.Context, cfg *config.Config, numGames int,
	player1, player2 string, logchan chan string) (*Summary, error) {

	if IsPlaying.Value() > 0 {
		return nil, errors.New("games are already being played, please wait till complete")
	}
	r := NewGameRunner(logchan, cfg)
	if err := r.Init(player1, player2); err != nil {
		return nil, err
	}
	return r.PlayMatch(ctx, numGames)
}

// PlayMatch plays numGames games with the runner's current players.
func (r *GameRunner) PlayMatch(ctx context.Context, numGames int) (*Summary, error) {
	IsPlaying.Add(1)
	defer IsPlaying.Add(-1)
	CVCCounter.Set(0)

	log.Debug().Int("games", numGames).Strs("players", r.names[:]).Msg("starting-match")
	summary := NewSummary(r.names)
	for i := 0; i < numGames; i++ {
		res, err := r.PlayGame(ctx, i%2)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			log.Info().Int("played", summary.Games()).Msg("match-stopped")
			break
		}
		if err != nil {
			return summary, err
		}
		summary.Add(res)
		CVCCounter.Add(1)
		if (i+1)%100 == 0 {
			log.Info().Int("played", i+1).Msg("games-finished")
		}
	}
	return summary, nil
}
