// Package automatic plays computer-vs-computer Connect Four games and
// collects statistics about them.
package automatic

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/domino14/fourconnect/ai/bot"
	"github.com/domino14/fourconnect/board"
	"github.com/domino14/fourconnect/config"
	"github.com/domino14/fourconnect/rng"
)

// LogHeader is the CSV header for the lines sent to a runner's log channel.
const LogHeader = "gameID,turn,seat,name,player,column,pieces\n"

// GameResult is the outcome of one finished game. Seats are the indices of
// the players passed to Init; Winner is -1 for a draw.
type GameResult struct {
	GameID     int
	FirstSeat  int
	Winner     int
	Moves      []int
	FinalBoard board.Board
}

// GameRunner plays games between two move generators.
type GameRunner struct {
	config  *config.Config
	logchan chan string

	players [2]bot.MoveGenerator
	names   [2]string
	saved   [2]bot.SavedState

	board  board.Board
	moves  []int
	gameID int
}

// NewGameRunner makes a runner. logchan may be nil; otherwise every move
// is sent to it as a CSV line.
func NewGameRunner(logchan chan string, cfg *config.Config) *GameRunner {
	return &GameRunner{logchan: logchan, config: cfg}
}

// Init builds the two bots by name. A non-zero rng-seed gives each seat its
// own reproducible stream.
func (r *GameRunner) Init(player1, player2 string) error {
	seed := r.config.GetUint64(config.ConfigRNGSeed)
	for idx, name := range []string{player1, player2} {
		var s uint64
		if seed != 0 {
			s = seed + uint64(idx)
		}
		b, err := bot.NewBotFromName(r.config, name, rng.New(s))
		if err != nil {
			return err
		}
		r.players[idx] = b
		r.names[idx] = b.BotType().String() + "-" + strconv.Itoa(idx+1)
	}
	return nil
}

// SetPlayers installs already-built move generators.
func (r *GameRunner) SetPlayers(players [2]bot.MoveGenerator, names [2]string) {
	r.players = players
	r.names = names
}

func (r *GameRunner) Names() [2]string {
	return r.names
}

// PlayGame plays one full game with the seat firstSeat moving first, as
// Player1.
func (r *GameRunner) PlayGame(ctx context.Context, firstSeat int) (*GameResult, error) {
	if r.players[0] == nil || r.players[1] == nil {
		return nil, errors.New("game runner has no players")
	}
	r.gameID++
	r.board = board.NewBoard()
	r.moves = r.moves[:0]
	r.saved = [2]bot.SavedState{}

	seat := firstSeat
	p := board.Player1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		col, err := r.playTurn(ctx, seat, p)
		if err != nil {
			return nil, err
		}
		log.Debug().Int("game", r.gameID).Str("name", r.names[seat]).Int("column", col).Msg("played-move")

		switch r.board.Classify(p) {
		case board.Win:
			return r.result(firstSeat, seat), nil
		case board.Draw:
			return r.result(firstSeat, -1), nil
		}
		seat = 1 - seat
		p = p.Opponent()
	}
}

func (r *GameRunner) playTurn(ctx context.Context, seat int, p board.Player) (int, error) {
	col, saved, err := r.players[seat].GenerateMove(ctx, r.board, p, r.saved[seat])
	if err != nil {
		return -1, fmt.Errorf("%s: %w", r.names[seat], err)
	}
	r.saved[seat] = saved
	if err := r.board.PlayMove(col, p); err != nil {
		return -1, fmt.Errorf("%s: %w", r.names[seat], err)
	}
	r.moves = append(r.moves, col)
	if r.logchan != nil {
		r.logchan <- fmt.Sprintf("%d,%d,%d,%s,%s,%d,%d\n",
			r.gameID, len(r.moves), seat, r.names[seat], p, col, r.board.NumPieces())
	}
	return col, nil
}

func (r *GameRunner) result(firstSeat, winner int) *GameResult {
	return &GameResult{
		GameID:     r.gameID,
		FirstSeat:  firstSeat,
		Winner:     winner,
		Moves:      append([]int(nil), r.moves...),
		FinalBoard: r.board,
	}
}

// MoveString is the column sequence of a game, e.g. "3342".
func (g *GameResult) MoveString() string {
	var sb strings.Builder
	for _, m := range g.Moves {
		sb.WriteByte(byte('0' + m))
	}
	return sb.String()
}
