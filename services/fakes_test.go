package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/Dosada05/chess-pairings/models"
	"github.com/Dosada05/chess-pairings/repositories"
	"github.com/Dosada05/chess-pairings/storage"
)

type roundKey struct {
	tournament string
	round      int
}

type standingKey struct {
	tournament string
	player     string
}

// memStore backs the fake repositories. The fake transactor snapshots it so that a
// failed transaction leaves no trace, like the Postgres one.
type memStore struct {
	mu        sync.Mutex
	rounds    map[roundKey]models.Round
	standings map[standingKey]models.StandingRecord
	clock     time.Time

	failCreateRound func(r *models.Round) error
	failSave        func(s *models.StandingRecord) error
	failDelete      error
}

func newMemStore() *memStore {
	return &memStore{
		rounds:    make(map[roundKey]models.Round),
		standings: make(map[standingKey]models.StandingRecord),
		clock:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func cloneRound(r models.Round) models.Round {
	r.Matches = slices.Clone(r.Matches)
	return r
}

func cloneStanding(s models.StandingRecord) models.StandingRecord {
	s.Matches = slices.Clone(s.Matches)
	if s.Matches == nil {
		s.Matches = []models.Outcome{}
	}
	return s
}

type fakeRoundRepo struct{ st *memStore }
type fakeStandingRepo struct {
	st     *memStore
	locked []string // player ids in GetForUpdate call order
}
type fakeTransactor struct {
	st      *memStore
	commits int
}

var (
	_ repositories.RoundRepository    = (*fakeRoundRepo)(nil)
	_ repositories.StandingRepository = (*fakeStandingRepo)(nil)
	_ repositories.Transactor         = (*fakeTransactor)(nil)
)

func (t *fakeTransactor) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	t.st.mu.Lock()
	rounds := make(map[roundKey]models.Round, len(t.st.rounds))
	for k, v := range t.st.rounds {
		rounds[k] = cloneRound(v)
	}
	standings := make(map[standingKey]models.StandingRecord, len(t.st.standings))
	for k, v := range t.st.standings {
		standings[k] = cloneStanding(v)
	}
	t.st.mu.Unlock()

	if err := fn(nil); err != nil {
		t.st.mu.Lock()
		t.st.rounds = rounds
		t.st.standings = standings
		t.st.mu.Unlock()
		return err
	}
	t.commits++
	return nil
}

func (r *fakeRoundRepo) DeleteByTournamentID(ctx context.Context, exec repositories.SQLExecutor, tournamentID string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if r.st.failDelete != nil {
		return r.st.failDelete
	}
	maps.DeleteFunc(r.st.rounds, func(k roundKey, _ models.Round) bool { return k.tournament == tournamentID })
	return nil
}

func (r *fakeRoundRepo) Create(ctx context.Context, exec repositories.SQLExecutor, round *models.Round) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if r.st.failCreateRound != nil {
		if err := r.st.failCreateRound(round); err != nil {
			return err
		}
	}
	k := roundKey{round.TournamentID, round.Round}
	if _, exists := r.st.rounds[k]; exists {
		return repositories.ErrRoundDuplicate
	}
	if round.ID == "" {
		round.ID = fmt.Sprintf("%s-r%d", round.TournamentID, round.Round)
	}
	round.CreatedAt = r.st.clock
	r.st.rounds[k] = cloneRound(*round)
	return nil
}

func (r *fakeRoundRepo) list(tournamentID string) []*models.Round {
	out := make([]*models.Round, 0)
	for k, v := range r.st.rounds {
		if k.tournament == tournamentID {
			c := cloneRound(v)
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *models.Round) int { return a.Round - b.Round })
	return out
}

func (r *fakeRoundRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID string) ([]*models.Round, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.list(tournamentID), nil
}

func (r *fakeRoundRepo) GetByTournamentAndRound(ctx context.Context, exec repositories.SQLExecutor, tournamentID string, roundNumber int) (*models.Round, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	v, ok := r.st.rounds[roundKey{tournamentID, roundNumber}]
	if !ok {
		return nil, repositories.ErrRoundNotFound
	}
	c := cloneRound(v)
	return &c, nil
}

func (r *fakeRoundRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, tournamentID string, roundNumber int) (*models.Round, error) {
	return r.GetByTournamentAndRound(ctx, exec, tournamentID, roundNumber)
}

func (r *fakeRoundRepo) FindRoundWithPlayer(ctx context.Context, exec repositories.SQLExecutor, tournamentID, playerID string) (*models.Round, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, round := range r.list(tournamentID) {
		if _, ok := round.FindPlayer(playerID); ok {
			return round, nil
		}
	}
	return nil, repositories.ErrRoundNotFound
}

func (r *fakeRoundRepo) UpdateMatches(ctx context.Context, exec repositories.SQLExecutor, round *models.Round) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	k := roundKey{round.TournamentID, round.Round}
	stored, ok := r.st.rounds[k]
	if !ok {
		return repositories.ErrRoundNotFound
	}
	stored.Matches = slices.Clone(round.Matches)
	r.st.rounds[k] = stored
	return nil
}

func (r *fakeRoundRepo) ResetResultsToPending(ctx context.Context, exec repositories.SQLExecutor, tournamentID string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for k, v := range r.st.rounds {
		if k.tournament != tournamentID {
			continue
		}
		v = cloneRound(v)
		for i := range v.Matches {
			v.Matches[i].Result = models.ResultPending
		}
		r.st.rounds[k] = v
	}
	return nil
}

func (r *fakeStandingRepo) DeleteByTournamentID(ctx context.Context, exec repositories.SQLExecutor, tournamentID string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if r.st.failDelete != nil {
		return r.st.failDelete
	}
	maps.DeleteFunc(r.st.standings, func(k standingKey, _ models.StandingRecord) bool { return k.tournament == tournamentID })
	return nil
}

func (r *fakeStandingRepo) insert(s *models.StandingRecord) error {
	k := standingKey{s.TournamentID, s.PlayerID}
	if _, exists := r.st.standings[k]; exists {
		return repositories.ErrStandingDuplicate
	}
	if s.ID == "" {
		s.ID = s.TournamentID + "/" + s.PlayerID
	}
	r.st.clock = r.st.clock.Add(time.Second)
	s.UpdatedAt = r.st.clock
	r.st.standings[k] = cloneStanding(*s)
	return nil
}

func (r *fakeStandingRepo) Create(ctx context.Context, exec repositories.SQLExecutor, s *models.StandingRecord) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.insert(s)
}

func (r *fakeStandingRepo) CreateIfMissing(ctx context.Context, exec repositories.SQLExecutor, s *models.StandingRecord) (bool, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	err := r.insert(s)
	if errors.Is(err, repositories.ErrStandingDuplicate) {
		return false, nil
	}
	return err == nil, err
}

func (r *fakeStandingRepo) GetByTournamentAndPlayer(ctx context.Context, exec repositories.SQLExecutor, tournamentID, playerID string) (*models.StandingRecord, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	v, ok := r.st.standings[standingKey{tournamentID, playerID}]
	if !ok {
		return nil, repositories.ErrStandingNotFound
	}
	c := cloneStanding(v)
	return &c, nil
}

func (r *fakeStandingRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, tournamentID, playerID string) (*models.StandingRecord, error) {
	r.st.mu.Lock()
	r.locked = append(r.locked, playerID)
	r.st.mu.Unlock()
	return r.GetByTournamentAndPlayer(ctx, exec, tournamentID, playerID)
}

func (r *fakeStandingRepo) GetByPlayerID(ctx context.Context, exec repositories.SQLExecutor, playerID string) (*models.StandingRecord, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var best *models.StandingRecord
	for k, v := range r.st.standings {
		if k.player != playerID || v.PlayerName == "" {
			continue
		}
		if best == nil || v.UpdatedAt.After(best.UpdatedAt) {
			c := cloneStanding(v)
			best = &c
		}
	}
	if best == nil {
		return nil, repositories.ErrStandingNotFound
	}
	return best, nil
}

func (r *fakeStandingRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID string) ([]*models.StandingRecord, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	out := make([]*models.StandingRecord, 0)
	for k, v := range r.st.standings {
		if k.tournament == tournamentID {
			c := cloneStanding(v)
			out = append(out, &c)
		}
	}
	models.SortStandings(out)
	return out, nil
}

func (r *fakeStandingRepo) Save(ctx context.Context, exec repositories.SQLExecutor, s *models.StandingRecord) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if r.st.failSave != nil {
		if err := r.st.failSave(s); err != nil {
			return err
		}
	}
	k := standingKey{s.TournamentID, s.PlayerID}
	if _, ok := r.st.standings[k]; !ok {
		return repositories.ErrStandingNotFound
	}
	r.st.clock = r.st.clock.Add(time.Second)
	s.UpdatedAt = r.st.clock
	r.st.standings[k] = cloneStanding(*s)
	return nil
}

func (r *fakeStandingRepo) ResetAggregates(ctx context.Context, exec repositories.SQLExecutor, tournamentID string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for k, v := range r.st.standings {
		if k.tournament == tournamentID {
			v = cloneStanding(v)
			v.Reset()
			r.st.standings[k] = v
		}
	}
	return nil
}

type publishedEvent struct {
	tournamentID string
	eventType    string
	payload      interface{}
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (n *fakeNotifier) Publish(tournamentID, eventType string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, publishedEvent{tournamentID, eventType, payload})
}

func (n *fakeNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, e := range n.events {
		out[i] = e.eventType
	}
	return out
}

type fakeUploader struct {
	key         string
	contentType string
	body        []byte
	err         error
}

func (u *fakeUploader) Upload(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if u.err != nil {
		return nil, u.err
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.key, u.contentType, u.body = key, contentType, body
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key), ETag: "etag"}, nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://files.example.com/" + key
}
