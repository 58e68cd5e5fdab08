package models

import "time"

// Round is one round of a tournament schedule. Its structure never changes after creation;
// only the result of each match does.
type Round struct {
	ID           string    `json:"id" db:"id"`
	TournamentID string    `json:"tournamentId" db:"tournament_id"`
	Round        int       `json:"round" db:"round_number"`
	Matches      []Match   `json:"matches" db:"matches"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// FindMatch returns the index of the match between a and b.
func (r *Round) FindMatch(a, b string) (int, bool) {
	for i, m := range r.Matches {
		if m.Between(a, b) {
			return i, true
		}
	}
	return -1, false
}

// FindPlayer returns the seat of playerID in any match of the round.
func (r *Round) FindPlayer(playerID string) (Player, bool) {
	for _, m := range r.Matches {
		if p, ok := m.PlayerByID(playerID); ok {
			return p, true
		}
	}
	return Player{}, false
}
