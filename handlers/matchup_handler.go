package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/chess-pairings/services"
)

type MatchupHandler struct {
	errorResponder
	schedulerService services.SchedulerService
}

func NewMatchupHandler(ss services.SchedulerService, log *slog.Logger, development bool) *MatchupHandler {
	return &MatchupHandler{
		errorResponder:   errorResponder{log: log, development: development},
		schedulerService: ss,
	}
}

// GenerateRounds godoc
// @Summary Generate a full round schedule for a tournament
// @Tags matchups
// @Accept json
// @Produce json
// @Param input body services.GenerateRoundsInput true "players and round count"
// @Success 201 {array} models.Round
// @Router /api/matchups/generate-rounds [post]
func (h *MatchupHandler) GenerateRounds(w http.ResponseWriter, r *http.Request) {
	var input services.GenerateRoundsInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	rounds, err := h.schedulerService.GenerateRounds(r.Context(), input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, rounds, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *MatchupHandler) ListRounds(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParam(r, "tournamentID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	rounds, err := h.schedulerService.ListRounds(r.Context(), tournamentID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, rounds, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *MatchupHandler) GetRound(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParam(r, "tournamentID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	roundNumber, err := positiveIntFromURL(r, "round")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	round, err := h.schedulerService.GetRound(r.Context(), tournamentID, roundNumber)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, round, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
