package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/chess-pairings/models"
	"github.com/Dosada05/chess-pairings/repositories"
	"github.com/Dosada05/chess-pairings/services"
	"github.com/Dosada05/chess-pairings/storage"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubScheduler struct {
	rounds []*models.Round
	err    error
	got    services.GenerateRoundsInput
}

func (s *stubScheduler) GenerateRounds(_ context.Context, input services.GenerateRoundsInput) ([]*models.Round, error) {
	s.got = input
	return s.rounds, s.err
}

func (s *stubScheduler) ListRounds(_ context.Context, _ string) ([]*models.Round, error) {
	return s.rounds, s.err
}

func (s *stubScheduler) GetRound(_ context.Context, _ string, roundNumber int) (*models.Round, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, r := range s.rounds {
		if r.Round == roundNumber {
			return r, nil
		}
	}
	return nil, services.ErrRoundNotFound
}

type stubResults struct {
	err         error
	standings   []*models.StandingRecord
	export      *storage.UploadResult
	gotUpdate   services.UpdateMatchInput
	resetCalled string
}

func (s *stubResults) InitializeStandings(_ context.Context, _ services.InitializeStandingsInput) ([]*models.StandingRecord, error) {
	return s.standings, s.err
}

func (s *stubResults) UpdateMatchResult(_ context.Context, input services.UpdateMatchInput) error {
	s.gotUpdate = input
	return s.err
}

func (s *stubResults) ResetTournament(_ context.Context, tournamentID string) error {
	s.resetCalled = tournamentID
	return s.err
}

func (s *stubResults) ListStandings(_ context.Context, _ string) ([]*models.StandingRecord, error) {
	return s.standings, s.err
}

func (s *stubResults) GetPlayerStanding(_ context.Context, _, playerID string) (*models.StandingRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, st := range s.standings {
		if st.PlayerID == playerID {
			return st, nil
		}
	}
	return nil, services.ErrStandingNotFound
}

func (s *stubResults) ExportStandings(_ context.Context, _ string) (*storage.UploadResult, error) {
	return s.export, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func serve(t *testing.T, pattern, method string, handler http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Method(method, pattern, handler)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGenerateRoundsCreated(t *testing.T) {
	stub := &stubScheduler{rounds: []*models.Round{{TournamentID: "t1", Round: 1}}}
	h := NewMatchupHandler(stub, discardLogger(), false)

	body := `{"tournamentId":"t1","numberOfRounds":1,"players":[{"_id":"A","chesscomUsername":"a"},{"_id":"B","chesscomUsername":"b"}]}`
	rec := serve(t, "/generate-rounds", http.MethodPost, h.GenerateRounds, "/generate-rounds", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"tournamentId": "t1"`)
	assert.Equal(t, 1, stub.got.NumberOfRounds)
	require.Len(t, stub.got.Players, 2)
	assert.Equal(t, "a", stub.got.Players[0].ChesscomUsername)
}

func TestGenerateRoundsBadJSON(t *testing.T) {
	h := NewMatchupHandler(&stubScheduler{}, discardLogger(), false)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed", `{"tournamentId":`, "badly-formed"},
		{"unknown field", `{"tournament":"t1"}`, "unknown key"},
		{"two values", `{"tournamentId":"t1"}{}`, "single JSON value"},
		{"wrong type", `{"numberOfRounds":"three"}`, "numberOfRounds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, "/g", http.MethodPost, h.GenerateRounds, "/g", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestServiceErrorMapping(t *testing.T) {
	validation := &services.ValidationError{Fields: map[string]string{"numberOfRounds": "must be at least 1"}}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"validation", validation, http.StatusUnprocessableEntity, "must be at least 1"},
		{"not found", fmt.Errorf("load: %w", services.ErrRoundNotFound), http.StatusNotFound, "could not be found"},
		{"conflict", fmt.Errorf("persist round 2: %w", repositories.ErrRoundDuplicate), http.StatusConflict, "already exists"},
		{"export unavailable", services.ErrExportUnavailable, http.StatusServiceUnavailable, "not configured"},
		{"partial", &services.PartialScheduleError{TournamentID: "t1", Requested: 5, Persisted: 2, Err: errors.New("db down")}, http.StatusInternalServerError, `"roundsPersisted": 2`},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "could not process"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewMatchupHandler(&stubScheduler{err: tt.err}, discardLogger(), false)
			rec := serve(t, "/t/{tournamentID}", http.MethodGet, h.ListRounds, "/t/t1", "")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			assert.NotContains(t, rec.Body.String(), "details")
		})
	}
}

func TestInternalErrorDetailsOnlyInDevelopment(t *testing.T) {
	h := NewMatchupHandler(&stubScheduler{err: errors.New("connection refused")}, discardLogger(), true)
	rec := serve(t, "/t/{tournamentID}", http.MethodGet, h.ListRounds, "/t/t1", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"details": "connection refused"`)
}

func TestGetRound(t *testing.T) {
	stub := &stubScheduler{rounds: []*models.Round{{TournamentID: "t1", Round: 1}, {TournamentID: "t1", Round: 2}}}
	h := NewMatchupHandler(stub, discardLogger(), false)
	pattern := "/t/{tournamentID}/rounds/{round}"

	rec := serve(t, pattern, http.MethodGet, h.GetRound, "/t/t1/rounds/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"round": 2`)

	rec = serve(t, pattern, http.MethodGet, h.GetRound, "/t/t1/rounds/9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	for _, bad := range []string{"zero", "0", "-1"} {
		rec = serve(t, pattern, http.MethodGet, h.GetRound, "/t/t1/rounds/"+bad, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestUpdateMatchResult(t *testing.T) {
	stub := &stubResults{}
	h := NewResultHandler(stub, discardLogger(), false)

	body := `{"tournamentId":"t1","roundNumber":2,"player1Id":"A","player2Id":"B","result":"draw"}`
	rec := serve(t, "/update-match", http.MethodPost, h.UpdateMatchResult, "/update-match", body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "match result updated")
	assert.Equal(t, services.UpdateMatchInput{
		TournamentID: "t1", RoundNumber: 2, Player1ID: "A", Player2ID: "B", Result: "draw",
	}, stub.gotUpdate)
}

func TestUpdateMatchResultMatchNotFound(t *testing.T) {
	h := NewResultHandler(&stubResults{err: services.ErrMatchNotFound}, discardLogger(), false)

	body := `{"tournamentId":"t1","roundNumber":1,"player1Id":"A","player2Id":"Z","result":"win"}`
	rec := serve(t, "/update-match", http.MethodPost, h.UpdateMatchResult, "/update-match", body)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResetTournament(t *testing.T) {
	stub := &stubResults{}
	h := NewResultHandler(stub, discardLogger(), false)

	rec := serve(t, "/reset", http.MethodPost, h.ResetTournament, "/reset", `{"tournamentId":"t9"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t9", stub.resetCalled)
}

func TestStandingsEndpoints(t *testing.T) {
	stub := &stubResults{standings: []*models.StandingRecord{
		{TournamentID: "t1", PlayerID: "A", PlayerName: "alice", TotalPoints: 2},
		{TournamentID: "t1", PlayerID: "B", PlayerName: "bob", TotalPoints: 1},
	}}
	h := NewResultHandler(stub, discardLogger(), false)

	rec := serve(t, "/standings/{tournamentID}", http.MethodGet, h.ListStandings, "/standings/t1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Less(t, strings.Index(body, "alice"), strings.Index(body, "bob"))

	pattern := "/player/{tournamentID}/{playerID}"
	rec = serve(t, pattern, http.MethodGet, h.GetPlayerStanding, "/player/t1/B", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"playerName": "bob"`)

	rec = serve(t, pattern, http.MethodGet, h.GetPlayerStanding, "/player/t1/Q", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportStandings(t *testing.T) {
	stub := &stubResults{export: &storage.UploadResult{Key: "standings/t1/x.json", Location: "https://cdn.example.com/standings/t1/x.json"}}
	h := NewResultHandler(stub, discardLogger(), false)

	rec := serve(t, "/standings/{tournamentID}/export", http.MethodPost, h.ExportStandings, "/standings/t1/export", "")

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"url": "https://cdn.example.com/standings/t1/x.json"`)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
