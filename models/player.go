package models

// ByePlayerID is the sentinel id of the synthetic opponent given to the odd player out.
const (
	ByePlayerID     = "bye"
	ByePlayerHandle = "BYE"
)

// Player is a registered tournament participant. Only the id and the chess.com handle
// are needed for pairing; registration data lives elsewhere.
type Player struct {
	ID               string `json:"_id" db:"id"`
	ChesscomUsername string `json:"chesscomUsername" db:"chesscom_username"`
}

func ByePlayer() Player {
	return Player{ID: ByePlayerID, ChesscomUsername: ByePlayerHandle}
}

func (p Player) IsBye() bool {
	return p.ID == ByePlayerID
}
