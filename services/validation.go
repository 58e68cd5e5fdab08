package services

import (
	"fmt"
	"strings"

	"github.com/Dosada05/chess-pairings/models"
)

func validateTournamentID(v *ValidationError, tournamentID string) {
	if strings.TrimSpace(tournamentID) == "" {
		v.Add("tournamentId", "must be provided")
	}
}

// validatePlayers checks the pool used for pairing: at least two players, ids present,
// unique and distinct from the bye sentinel.
func validatePlayers(v *ValidationError, players []models.Player) {
	if len(players) < 2 {
		v.Add("players", "at least two players are required")
		return
	}
	seen := make(map[string]int, len(players))
	for i, p := range players {
		field := fmt.Sprintf("players[%d]._id", i)
		switch {
		case strings.TrimSpace(p.ID) == "":
			v.Add(field, "must be provided")
		case p.IsBye():
			v.Add(field, fmt.Sprintf("%q is reserved", models.ByePlayerID))
		default:
			if j, dup := seen[p.ID]; dup {
				v.Add(field, fmt.Sprintf("duplicates players[%d]", j))
			}
			seen[p.ID] = i
		}
	}
}

func validateMatchPlayer(v *ValidationError, field, id string) {
	switch {
	case strings.TrimSpace(id) == "":
		v.Add(field, "must be provided")
	case id == models.ByePlayerID:
		v.Add(field, "results cannot be recorded against a bye")
	}
}
