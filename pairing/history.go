package pairing

import (
	"maps"

	"github.com/Dosada05/chess-pairings/models"
)

// PairKey identifies an unordered pair of players.
type PairKey struct {
	Low  string
	High string
}

func NewPairKey(a, b string) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{Low: a, High: b}
}

// History tracks how often each pair has met and who each player has faced. It is a
// value: round pairing takes a history and hands back an updated copy.
type History struct {
	meetings  map[PairKey]int
	opponents map[string]map[string]struct{}
	byes      map[string]int
}

func NewHistory() History {
	return History{
		meetings:  make(map[PairKey]int),
		opponents: make(map[string]map[string]struct{}),
		byes:      make(map[string]int),
	}
}

// historyFromMatches rebuilds a history from already scheduled matches.
func historyFromMatches(matches []models.Match) History {
	h := NewHistory()
	for _, m := range matches {
		h.RecordMatch(m)
	}
	return h
}

func (h History) Clone() History {
	c := History{
		meetings:  maps.Clone(h.meetings),
		opponents: make(map[string]map[string]struct{}, len(h.opponents)),
		byes:      maps.Clone(h.byes),
	}
	for p, opps := range h.opponents {
		c.opponents[p] = maps.Clone(opps)
	}
	return c
}

// Record marks a and b as having been paired once more.
func (h *History) Record(a, b string) {
	if a == b || a == models.ByePlayerID || b == models.ByePlayerID {
		return
	}
	h.meetings[NewPairKey(a, b)]++
	h.addOpponent(a, b)
	h.addOpponent(b, a)
}

func (h *History) RecordBye(playerID string) {
	h.byes[playerID]++
}

func (h *History) RecordMatch(m models.Match) {
	switch {
	case m.Player2.IsBye():
		h.RecordBye(m.Player1.ID)
	case m.Player1.IsBye():
		h.RecordBye(m.Player2.ID)
	default:
		h.Record(m.Player1.ID, m.Player2.ID)
	}
}

func (h *History) addOpponent(p, opp string) {
	set, ok := h.opponents[p]
	if !ok {
		set = make(map[string]struct{})
		h.opponents[p] = set
	}
	set[opp] = struct{}{}
}

func (h History) Has(a, b string) bool {
	return h.meetings[NewPairKey(a, b)] > 0
}

func (h History) Meetings(a, b string) int {
	return h.meetings[NewPairKey(a, b)]
}

func (h History) Byes(playerID string) int {
	return h.byes[playerID]
}

// Opponents returns the distinct opponents playerID has faced, in no particular order.
func (h History) Opponents(playerID string) []string {
	res := make([]string, 0, len(h.opponents[playerID]))
	for opp := range h.opponents[playerID] {
		res = append(res, opp)
	}
	return res
}

func (h History) CommonOpponents(a, b string) int {
	oa, ob := h.opponents[a], h.opponents[b]
	if len(ob) < len(oa) {
		oa, ob = ob, oa
	}
	n := 0
	for opp := range oa {
		if _, ok := ob[opp]; ok {
			n++
		}
	}
	return n
}

// TotalRematches counts meetings beyond the first for every pair.
func (h History) TotalRematches() int {
	n := 0
	for _, c := range h.meetings {
		if c > 1 {
			n += c - 1
		}
	}
	return n
}

func (h *History) unrecord(a, b string) {
	k := NewPairKey(a, b)
	switch c := h.meetings[k]; {
	case c > 1:
		h.meetings[k] = c - 1
	case c == 1:
		delete(h.meetings, k)
		delete(h.opponents[a], b)
		delete(h.opponents[b], a)
	}
}
