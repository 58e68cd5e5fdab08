package models

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// Outcome is one round of a player's tournament record.
type Outcome struct {
	RoundNumber int         `json:"roundNumber"`
	Opponent    Player      `json:"opponent"`
	Result      MatchResult `json:"result"`
	Points      float64     `json:"points"`
	PlayedAt    time.Time   `json:"playedAt"`
}

// StandingRecord is a player's cumulative record in one tournament. The aggregate
// fields are a fold over Matches and are only ever changed through Recompute.
type StandingRecord struct {
	ID                string    `json:"id" db:"id"`
	TournamentID      string    `json:"tournamentId" db:"tournament_id"`
	PlayerID          string    `json:"playerId" db:"player_id"`
	PlayerName        string    `json:"playerName" db:"player_name"`
	Matches           []Outcome `json:"matches" db:"matches"`
	TotalPoints       float64   `json:"totalPoints" db:"total_points"`
	Wins              int       `json:"wins" db:"wins"`
	Losses            int       `json:"losses" db:"losses"`
	Draws             int       `json:"draws" db:"draws"`
	PerformanceRating int       `json:"performanceRating" db:"performance_rating"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`
}

// OutcomeForRound returns the index of the outcome recorded for round.
func (s *StandingRecord) OutcomeForRound(round int) (int, bool) {
	for i, o := range s.Matches {
		if o.RoundNumber == round {
			return i, true
		}
	}
	return -1, false
}

func (s *StandingRecord) Recompute() {
	s.TotalPoints = 0
	s.Wins, s.Losses, s.Draws = 0, 0, 0
	for _, o := range s.Matches {
		s.TotalPoints += o.Points
		switch o.Result {
		case ResultWin:
			s.Wins++
		case ResultLoss:
			s.Losses++
		case ResultDraw:
			s.Draws++
		}
	}
}

// Reset clears every outcome and zeroes the aggregates.
func (s *StandingRecord) Reset() {
	s.Matches = []Outcome{}
	s.Recompute()
}

// RecordOutcome stores o as the player's result for o.RoundNumber. A round that already
// has an outcome keeps its opponent and timestamp; only result and points are replaced.
func (s *StandingRecord) RecordOutcome(o Outcome) {
	if i, ok := s.OutcomeForRound(o.RoundNumber); ok {
		s.Matches[i].Result = o.Result
		s.Matches[i].Points = o.Points
	} else {
		s.Matches = append(s.Matches, o)
	}
	s.Recompute()
}

// CompareStandings orders by total points, then wins, both descending, then by name.
func CompareStandings(a, b *StandingRecord) int {
	if c := cmp.Compare(b.TotalPoints, a.TotalPoints); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Wins, a.Wins); c != 0 {
		return c
	}
	return strings.Compare(a.PlayerName, b.PlayerName)
}

func SortStandings(standings []*StandingRecord) {
	slices.SortStableFunc(standings, CompareStandings)
}
