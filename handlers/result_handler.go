package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/chess-pairings/services"
)

type ResultHandler struct {
	errorResponder
	resultService services.ResultService
}

func NewResultHandler(rs services.ResultService, log *slog.Logger, development bool) *ResultHandler {
	return &ResultHandler{
		errorResponder: errorResponder{log: log, development: development},
		resultService:  rs,
	}
}

type resetTournamentRequest struct {
	TournamentID string `json:"tournamentId"`
}

// InitializeStandings godoc
// @Summary Create empty standings for players that have none
// @Tags tournament-results
// @Accept json
// @Produce json
// @Param input body services.InitializeStandingsInput true "tournament and players"
// @Success 201 {array} models.StandingRecord
// @Router /api/tournament-results/initialize [post]
func (h *ResultHandler) InitializeStandings(w http.ResponseWriter, r *http.Request) {
	var input services.InitializeStandingsInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	standings, err := h.resultService.InitializeStandings(r.Context(), input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, standings, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// UpdateMatchResult godoc
// @Summary Record or correct the result of one match
// @Tags tournament-results
// @Accept json
// @Produce json
// @Param input body services.UpdateMatchInput true "match and result from player1's side"
// @Success 200 {object} map[string]string
// @Router /api/tournament-results/update-match [post]
func (h *ResultHandler) UpdateMatchResult(w http.ResponseWriter, r *http.Request) {
	var input services.UpdateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	if err := h.resultService.UpdateMatchResult(r.Context(), input); err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "match result updated"}, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *ResultHandler) ResetTournament(w http.ResponseWriter, r *http.Request) {
	var input resetTournamentRequest
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	if err := h.resultService.ResetTournament(r.Context(), input.TournamentID); err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "tournament results reset"}, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *ResultHandler) ListStandings(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParam(r, "tournamentID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	standings, err := h.resultService.ListStandings(r.Context(), tournamentID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, standings, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *ResultHandler) GetPlayerStanding(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParam(r, "tournamentID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	playerID, err := urlParam(r, "playerID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	standing, err := h.resultService.GetPlayerStanding(r.Context(), tournamentID, playerID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, standing, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ExportStandings uploads a standings snapshot to object storage and returns its URL.
func (h *ResultHandler) ExportStandings(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParam(r, "tournamentID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	result, err := h.resultService.ExportStandings(r.Context(), tournamentID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, result, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
