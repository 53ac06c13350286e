package board

// Player is the owner of a cell, or of a move.
type Player uint8

const (
	NoPlayer Player = iota
	Player1
	Player2
)

// Opponent returns the other player. NoPlayer has no opponent.
func (p Player) Opponent() Player {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	}
	return NoPlayer
}

func (p Player) Valid() bool {
	return p == Player1 || p == Player2
}

func (p Player) String() string {
	switch p {
	case Player1:
		return "X"
	case Player2:
		return "O"
	}
	return " "
}

// Outcome is a game classification relative to one player, normally the
// player who just moved.
type Outcome uint8

const (
	StillPlaying Outcome = iota
	Win
	Loss
	Draw
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Loss:
		return "loss"
	case Draw:
		return "draw"
	}
	return "still-playing"
}
