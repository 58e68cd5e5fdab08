package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/chess-pairings/live"
	"github.com/Dosada05/chess-pairings/metrics"
	"github.com/Dosada05/chess-pairings/models"
	"github.com/Dosada05/chess-pairings/pairing"
	"github.com/Dosada05/chess-pairings/repositories"
	"golang.org/x/sync/errgroup"
)

// parallelWrites bounds the concurrent standing inserts of one request.
const parallelWrites = 8

// Notifier receives tournament events for live subscribers.
type Notifier interface {
	Publish(tournamentID, eventType string, payload interface{})
}

type GenerateRoundsInput struct {
	TournamentID   string          `json:"tournamentId"`
	Players        []models.Player `json:"players"`
	NumberOfRounds int             `json:"numberOfRounds"`
}

type SchedulerService interface {
	GenerateRounds(ctx context.Context, input GenerateRoundsInput) ([]*models.Round, error)
	ListRounds(ctx context.Context, tournamentID string) ([]*models.Round, error)
	GetRound(ctx context.Context, tournamentID string, roundNumber int) (*models.Round, error)
}

type schedulerService struct {
	roundRepo    repositories.RoundRepository
	standingRepo repositories.StandingRepository
	pairer       *pairing.Pairer
	notifier     Notifier
	metrics      metrics.Metrics
	log          *slog.Logger
	maxRounds    int
}

func NewSchedulerService(
	roundRepo repositories.RoundRepository,
	standingRepo repositories.StandingRepository,
	pairer *pairing.Pairer,
	notifier Notifier,
	m metrics.Metrics,
	log *slog.Logger,
	maxRounds int,
) SchedulerService {
	return &schedulerService{
		roundRepo:    roundRepo,
		standingRepo: standingRepo,
		pairer:       pairer,
		notifier:     notifier,
		metrics:      m,
		log:          log,
		maxRounds:    maxRounds,
	}
}

func (s *schedulerService) validate(input GenerateRoundsInput) error {
	v := newValidationError()
	validateTournamentID(v, input.TournamentID)
	validatePlayers(v, input.Players)
	if input.NumberOfRounds < 1 || input.NumberOfRounds > s.maxRounds {
		v.Add("numberOfRounds", fmt.Sprintf("must be between 1 and %d", s.maxRounds))
	}
	return v.OrNil()
}

// GenerateRounds wipes the tournament and pairs every round from scratch. Rounds are
// stored as soon as they are paired; on failure the rounds already stored are kept and
// a *PartialScheduleError reports how far the run got.
func (s *schedulerService) GenerateRounds(ctx context.Context, input GenerateRoundsInput) ([]*models.Round, error) {
	const op = "GenerateRounds"
	if err := s.validate(input); err != nil {
		return nil, err
	}
	started := time.Now()
	tid := input.TournamentID
	logger := s.log.With(slog.String("op", op), slog.String("tournament_id", tid))

	if err := s.clearTournament(ctx, tid); err != nil {
		s.metrics.IncScheduleFailures()
		logger.Error("failed to clear tournament", slog.Any("error", err))
		return nil, fmt.Errorf("failed to clear tournament %s: %w", tid, err)
	}
	if err := s.createStandings(ctx, tid, input.Players); err != nil {
		s.metrics.IncScheduleFailures()
		logger.Error("failed to create standings", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create standings for tournament %s: %w", tid, err)
	}

	rounds := make([]*models.Round, 0, input.NumberOfRounds)
	forced := 0
	_, err := s.pairer.PairRounds(input.Players, input.NumberOfRounds, pairing.NewHistory(), func(plan pairing.RoundPlan) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		round := &models.Round{TournamentID: tid, Round: plan.Round, Matches: plan.Matches}
		if err := s.roundRepo.Create(ctx, nil, round); err != nil {
			return err
		}
		rounds = append(rounds, round)
		forced += plan.ForcedRematches
		return nil
	})
	s.metrics.AddRoundsPersisted(len(rounds))
	s.metrics.AddForcedRematches(forced)
	if err != nil {
		s.metrics.IncScheduleFailures()
		logger.Error("schedule generation stopped early",
			slog.Int("rounds_requested", input.NumberOfRounds),
			slog.Int("rounds_persisted", len(rounds)),
			slog.Any("error", err))
		return rounds, &PartialScheduleError{
			TournamentID: tid,
			Requested:    input.NumberOfRounds,
			Persisted:    len(rounds),
			Err:          err,
		}
	}

	s.metrics.IncSchedulesGenerated()
	s.metrics.ObserveScheduleDuration(time.Since(started).Seconds())
	logger.Info("schedule generated",
		slog.Int("players", len(input.Players)),
		slog.Int("rounds", len(rounds)),
		slog.Int("forced_rematches", forced))
	s.notifier.Publish(tid, live.EventRoundsGenerated, rounds)
	return rounds, nil
}

func (s *schedulerService) clearTournament(ctx context.Context, tournamentID string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.roundRepo.DeleteByTournamentID(gctx, nil, tournamentID)
	})
	g.Go(func() error {
		return s.standingRepo.DeleteByTournamentID(gctx, nil, tournamentID)
	})
	return g.Wait()
}

func (s *schedulerService) createStandings(ctx context.Context, tournamentID string, players []models.Player) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelWrites)
	for _, p := range players {
		g.Go(func() error {
			err := s.standingRepo.Create(gctx, nil, newStanding(tournamentID, p))
			if err != nil {
				return fmt.Errorf("player %s: %w", p.ID, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func newStanding(tournamentID string, p models.Player) *models.StandingRecord {
	return &models.StandingRecord{
		TournamentID: tournamentID,
		PlayerID:     p.ID,
		PlayerName:   p.ChesscomUsername,
		Matches:      []models.Outcome{},
	}
}

func (s *schedulerService) ListRounds(ctx context.Context, tournamentID string) ([]*models.Round, error) {
	v := newValidationError()
	validateTournamentID(v, tournamentID)
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	rounds, err := s.roundRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds for tournament %s: %w", tournamentID, err)
	}
	return rounds, nil
}

func (s *schedulerService) GetRound(ctx context.Context, tournamentID string, roundNumber int) (*models.Round, error) {
	v := newValidationError()
	validateTournamentID(v, tournamentID)
	if roundNumber < 1 {
		v.Add("round", "must be at least 1")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	round, err := s.roundRepo.GetByTournamentAndRound(ctx, nil, tournamentID, roundNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, fmt.Errorf("%w: tournament %s round %d", ErrRoundNotFound, tournamentID, roundNumber)
		}
		return nil, fmt.Errorf("failed to get round %d of tournament %s: %w", roundNumber, tournamentID, err)
	}
	return round, nil
}
