package models

import "fmt"

// MatchResult is always expressed from player1's point of view.
type MatchResult string

const (
	ResultPending MatchResult = "pending"
	ResultWin     MatchResult = "win"
	ResultLoss    MatchResult = "loss"
	ResultDraw    MatchResult = "draw"
)

func ParseMatchResult(s string) (MatchResult, error) {
	switch r := MatchResult(s); r {
	case ResultWin, ResultLoss, ResultDraw:
		return r, nil
	default:
		return "", fmt.Errorf("unrecognized match result %q", s)
	}
}

// Mirror returns the same result seen from the opponent's side.
func (r MatchResult) Mirror() MatchResult {
	switch r {
	case ResultWin:
		return ResultLoss
	case ResultLoss:
		return ResultWin
	default:
		return r
	}
}

// Points returns the points awarded to the player this result belongs to.
func (r MatchResult) Points() float64 {
	switch r {
	case ResultWin:
		return 1
	case ResultDraw:
		return 0.5
	default:
		return 0
	}
}

type Match struct {
	Player1 Player      `json:"player1"`
	Player2 Player      `json:"player2"`
	Result  MatchResult `json:"result"`
}

func NewMatch(p1, p2 Player) Match {
	return Match{Player1: p1, Player2: p2, Result: ResultPending}
}

func (m Match) IsBye() bool {
	return m.Player1.IsBye() || m.Player2.IsBye()
}

func (m Match) Involves(playerID string) bool {
	return m.Player1.ID == playerID || m.Player2.ID == playerID
}

// Between reports whether the match is between a and b in either seat order.
func (m Match) Between(a, b string) bool {
	return (m.Player1.ID == a && m.Player2.ID == b) || (m.Player1.ID == b && m.Player2.ID == a)
}

// PlayerByID returns the seat holding playerID.
func (m Match) PlayerByID(playerID string) (Player, bool) {
	switch playerID {
	case m.Player1.ID:
		return m.Player1, true
	case m.Player2.ID:
		return m.Player2, true
	default:
		return Player{}, false
	}
}
