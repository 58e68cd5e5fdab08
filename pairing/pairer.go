package pairing

import (
	"cmp"
	"log/slog"
	"math"
	"slices"

	"github.com/Dosada05/chess-pairings/models"
)

const defaultSearchBudget = 50_000

// RoundPlan is the outcome of pairing a single round.
type RoundPlan struct {
	Round           int            `json:"round"`
	Matches         []models.Match `json:"matches"`
	ForcedRematches int            `json:"forcedRematches"`
}

// Pairer builds one round at a time. The first remaining player is the anchor and gets
// the best scoring opponent, ties going to whoever comes first in the pool.
//
// Candidates are explored in score order with a bounded backtracking search so that a
// greedy choice early in the round does not leave the last players with a rematch. The
// first path tried is the plain greedy one. If no rematch-free pairing is found within
// SearchBudget steps, the round is paired greedily and repeats are reported as forced.
type Pairer struct {
	scorer       *Scorer
	log          *slog.Logger
	SearchBudget int
}

func NewPairer(scorer *Scorer, log *slog.Logger) *Pairer {
	return &Pairer{
		scorer:       scorer,
		log:          log,
		SearchBudget: defaultSearchBudget,
	}
}

// PairRound pairs pool for the given round. The history passed in is not modified; the
// returned one includes the new pairings and bye.
func (p *Pairer) PairRound(pool []models.Player, h History, rc RoundContext) (RoundPlan, History) {
	hist := h.Clone()
	remaining := slices.Clone(pool)
	plan := RoundPlan{Round: rc.Round, Matches: make([]models.Match, 0, (len(pool)+1)/2)}

	var bye *models.Player
	if len(remaining)%2 == 1 {
		idx := pickBye(remaining, hist)
		b := remaining[idx]
		bye = &b
		remaining = slices.Delete(remaining, idx, idx+1)
	}

	s := &search{scorer: p.scorer, hist: &hist, rc: rc, budget: p.SearchBudget}
	matches, ok := s.pair(remaining)
	if ok {
		plan.Matches = append(plan.Matches, matches...)
	} else {
		p.log.Warn("no rematch-free pairing found, pairing greedily",
			slog.Int("round", rc.Round),
			slog.Int("players", len(pool)),
			slog.Int("search_steps", s.steps))
		matches, forced := p.greedy(remaining, &hist, rc)
		plan.Matches = append(plan.Matches, matches...)
		plan.ForcedRematches = forced
	}

	if bye != nil {
		plan.Matches = append(plan.Matches, models.NewMatch(*bye, models.ByePlayer()))
		hist.RecordBye(bye.ID)
	}
	return plan, hist
}

// pickBye chooses the player with the fewest byes so far; the last one in pool order wins ties.
func pickBye(pool []models.Player, h History) int {
	best := len(pool) - 1
	for i := len(pool) - 2; i >= 0; i-- {
		if h.Byes(pool[i].ID) < h.Byes(pool[best].ID) {
			best = i
		}
	}
	return best
}

func (p *Pairer) greedy(remaining []models.Player, h *History, rc RoundContext) ([]models.Match, int) {
	remaining = slices.Clone(remaining)
	var matches []models.Match
	forced := 0
	for len(remaining) > 1 {
		anchor := remaining[0]
		best, bestIdx := math.Inf(-1), -1
		for j := 1; j < len(remaining); j++ {
			score := p.scorer.Score(anchor.ID, remaining[j].ID, *h, rc)
			if score > best {
				best, bestIdx = score, j
			}
		}
		if bestIdx < 0 {
			bestIdx = 1
		}
		opp := remaining[bestIdx]
		if h.Has(anchor.ID, opp.ID) {
			forced++
			p.log.Warn("forced rematch",
				slog.Int("round", rc.Round),
				slog.String("player1_id", anchor.ID),
				slog.String("player2_id", opp.ID),
				slog.Int("previous_meetings", h.Meetings(anchor.ID, opp.ID)))
		}
		matches = append(matches, models.NewMatch(anchor, opp))
		h.Record(anchor.ID, opp.ID)
		remaining = slices.Delete(remaining, bestIdx, bestIdx+1)
		remaining = remaining[1:]
	}
	return matches, forced
}

type candidate struct {
	idx   int
	score float64
}

type search struct {
	scorer *Scorer
	hist   *History
	rc     RoundContext
	budget int
	steps  int
}

func (s *search) exhausted() bool {
	return s.steps >= s.budget
}

// pair finds a pairing of remaining with no repeated pair. On failure the history is
// left as it was found.
func (s *search) pair(remaining []models.Player) ([]models.Match, bool) {
	if len(remaining) == 0 {
		return nil, true
	}
	if s.exhausted() {
		return nil, false
	}
	s.steps++

	anchor := remaining[0]
	cands := make([]candidate, 0, len(remaining)-1)
	for j := 1; j < len(remaining); j++ {
		if s.scorer.IsForbidden(anchor.ID, remaining[j].ID, *s.hist) {
			continue
		}
		score := s.scorer.Score(anchor.ID, remaining[j].ID, *s.hist, s.rc)
		cands = append(cands, candidate{idx: j, score: score})
	}
	slices.SortStableFunc(cands, func(a, b candidate) int {
		return cmp.Compare(b.score, a.score)
	})

	for _, c := range cands {
		opp := remaining[c.idx]
		rest := make([]models.Player, 0, len(remaining)-2)
		rest = append(rest, remaining[1:c.idx]...)
		rest = append(rest, remaining[c.idx+1:]...)

		s.hist.Record(anchor.ID, opp.ID)
		tail, ok := s.pair(rest)
		if ok {
			return append([]models.Match{models.NewMatch(anchor, opp)}, tail...), true
		}
		s.hist.unrecord(anchor.ID, opp.ID)
		if s.exhausted() {
			return nil, false
		}
	}
	return nil, false
}
