package pairing

import (
	"fmt"

	"github.com/Dosada05/chess-pairings/models"
)

// PairRounds pairs rounds 1..totalRounds in order, threading the history from one round
// into the next. each is called with every round as soon as it is paired; an error from
// it stops the run and is returned together with the history built so far.
func (p *Pairer) PairRounds(players []models.Player, totalRounds int, h History, each func(RoundPlan) error) (History, error) {
	for round := 1; round <= totalRounds; round++ {
		var plan RoundPlan
		plan, h = p.PairRound(players, h, RoundContext{Round: round, TotalRounds: totalRounds})
		if each == nil {
			continue
		}
		if err := each(plan); err != nil {
			return h, fmt.Errorf("round %d: %w", round, err)
		}
	}
	return h, nil
}

// plan pairs every round in memory without persisting anything.
func (p *Pairer) plan(players []models.Player, totalRounds int) []RoundPlan {
	plans := make([]RoundPlan, 0, totalRounds)
	_, _ = p.PairRounds(players, totalRounds, NewHistory(), func(rp RoundPlan) error {
		plans = append(plans, rp)
		return nil
	})
	return plans
}
