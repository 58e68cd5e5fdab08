package services

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/chess-pairings/metrics"
	"github.com/Dosada05/chess-pairings/models"
	"github.com/Dosada05/chess-pairings/pairing"
	"github.com/Dosada05/chess-pairings/storage"
)

type testEnv struct {
	store     *memStore
	rounds    *fakeRoundRepo
	standings *fakeStandingRepo
	tx        *fakeTransactor
	notifier  *fakeNotifier
	metrics   *metrics.Mock
	scheduler SchedulerService
	results   *resultService
}

func newTestEnv(t *testing.T, uploader storage.FileUploader) *testEnv {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	st := newMemStore()
	env := &testEnv{
		store:     st,
		rounds:    &fakeRoundRepo{st: st},
		standings: &fakeStandingRepo{st: st},
		tx:        &fakeTransactor{st: st},
		notifier:  &fakeNotifier{},
		metrics:   metrics.NewMock(),
	}
	pairer := pairing.NewPairer(pairing.NewScorer(pairing.DefaultWeights()), log)
	env.scheduler = NewSchedulerService(env.rounds, env.standings, pairer, env.notifier, env.metrics, log, 10)
	env.results = NewResultService(env.tx, env.rounds, env.standings, uploader, env.notifier, env.metrics, log).(*resultService)
	env.results.now = func() time.Time { return time.Date(2024, 5, 2, 18, 30, 0, 0, time.UTC) }
	return env
}

// players builds a pool whose handles are "h_" plus the lower-cased id.
func players(ids ...string) []models.Player {
	out := make([]models.Player, len(ids))
	for i, id := range ids {
		out[i] = models.Player{ID: id, ChesscomUsername: "h_" + strings.ToLower(id)}
	}
	return out
}
