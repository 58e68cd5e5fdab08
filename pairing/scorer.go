package pairing

// ScoreWeights tunes the pairing heuristic. DirectMeeting is charged for every meeting
// beyond the first, so a double rematch ranks below a single one.
type ScoreWeights struct {
	Baseline       float64
	Forbidden      float64
	CommonOpponent float64
	DirectMeeting  float64
	RoundProgress  float64
}

func DefaultWeights() ScoreWeights {
	return ScoreWeights{
		Baseline:       100,
		Forbidden:      -1000,
		CommonOpponent: 10,
		DirectMeeting:  50,
		RoundProgress:  5,
	}
}

// RoundContext locates a round inside the schedule being generated.
type RoundContext struct {
	Round       int
	TotalRounds int
}

func (rc RoundContext) progress() float64 {
	if rc.TotalRounds <= 0 {
		return 0
	}
	return float64(rc.Round) / float64(rc.TotalRounds)
}

type Scorer struct {
	w ScoreWeights
}

func NewScorer(w ScoreWeights) *Scorer {
	return &Scorer{w: w}
}

// Score rates how desirable it is to pair a with b this round. Higher is better.
// Pairs that already met get the forbidden score rather than being excluded, so a
// small pool can still be paired in late rounds.
func (s *Scorer) Score(a, b string, h History, rc RoundContext) float64 {
	if meetings := h.Meetings(a, b); meetings > 0 {
		return s.w.Forbidden - s.w.DirectMeeting*float64(meetings-1)
	}
	score := s.w.Baseline
	score -= s.w.CommonOpponent * float64(h.CommonOpponents(a, b))
	score -= s.w.RoundProgress * rc.progress()
	return score
}

// IsForbidden reports whether a and b already played. It looks at the history, not the
// score: many common opponents can push a fresh pair below the forbidden sentinel.
func (s *Scorer) IsForbidden(a, b string, h History) bool {
	return h.Has(a, b)
}
