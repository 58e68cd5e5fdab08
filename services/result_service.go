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
	"github.com/Dosada05/chess-pairings/repositories"
	"github.com/Dosada05/chess-pairings/storage"
	"golang.org/x/sync/errgroup"
)

const unknownOpponentName = "Unknown"

type UpdateMatchInput struct {
	TournamentID string `json:"tournamentId"`
	RoundNumber  int    `json:"roundNumber"`
	Player1ID    string `json:"player1Id"`
	Player2ID    string `json:"player2Id"`
	Result       string `json:"result"`
}

type InitializeStandingsInput struct {
	TournamentID string          `json:"tournamentId"`
	Players      []models.Player `json:"players"`
}

// MatchUpdate is what subscribers receive after a result is recorded.
type MatchUpdate struct {
	RoundNumber int                      `json:"roundNumber"`
	Match       models.Match             `json:"match"`
	Standings   []*models.StandingRecord `json:"standings"`
}

type ResultService interface {
	InitializeStandings(ctx context.Context, input InitializeStandingsInput) ([]*models.StandingRecord, error)
	UpdateMatchResult(ctx context.Context, input UpdateMatchInput) error
	ResetTournament(ctx context.Context, tournamentID string) error
	ListStandings(ctx context.Context, tournamentID string) ([]*models.StandingRecord, error)
	GetPlayerStanding(ctx context.Context, tournamentID, playerID string) (*models.StandingRecord, error)
	ExportStandings(ctx context.Context, tournamentID string) (*storage.UploadResult, error)
}

type resultService struct {
	tx           repositories.Transactor
	roundRepo    repositories.RoundRepository
	standingRepo repositories.StandingRepository
	uploader     storage.FileUploader
	notifier     Notifier
	metrics      metrics.Metrics
	log          *slog.Logger
	now          func() time.Time
}

// NewResultService builds the result service. uploader may be nil, in which case
// exports fail with ErrExportUnavailable.
func NewResultService(
	tx repositories.Transactor,
	roundRepo repositories.RoundRepository,
	standingRepo repositories.StandingRepository,
	uploader storage.FileUploader,
	notifier Notifier,
	m metrics.Metrics,
	log *slog.Logger,
) ResultService {
	return &resultService{
		tx:           tx,
		roundRepo:    roundRepo,
		standingRepo: standingRepo,
		uploader:     uploader,
		notifier:     notifier,
		metrics:      m,
		log:          log,
		now:          time.Now,
	}
}

func validateUpdate(input UpdateMatchInput) (models.MatchResult, error) {
	v := newValidationError()
	validateTournamentID(v, input.TournamentID)
	if input.RoundNumber < 1 {
		v.Add("roundNumber", "must be at least 1")
	}
	validateMatchPlayer(v, "player1Id", input.Player1ID)
	validateMatchPlayer(v, "player2Id", input.Player2ID)
	if input.Player1ID != "" && input.Player1ID == input.Player2ID {
		v.Add("player2Id", "must differ from player1Id")
	}
	result, err := models.ParseMatchResult(input.Result)
	if err != nil {
		v.Add("result", "must be one of win, loss, draw")
	}
	return result, v.OrNil()
}

// UpdateMatchResult records a result given from player1's point of view. The round's
// match and both players' standings are written in one transaction, player1 first.
func (s *resultService) UpdateMatchResult(ctx context.Context, input UpdateMatchInput) error {
	const op = "UpdateMatchResult"
	result, err := validateUpdate(input)
	if err != nil {
		return err
	}
	logger := s.log.With(
		slog.String("op", op),
		slog.String("tournament_id", input.TournamentID),
		slog.Int("round", input.RoundNumber),
		slog.String("player1_id", input.Player1ID),
		slog.String("player2_id", input.Player2ID),
	)

	var update MatchUpdate
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		round, err := s.roundRepo.GetForUpdate(ctx, exec, input.TournamentID, input.RoundNumber)
		if err != nil {
			if errors.Is(err, repositories.ErrRoundNotFound) {
				return fmt.Errorf("%w: tournament %s round %d", ErrRoundNotFound, input.TournamentID, input.RoundNumber)
			}
			return err
		}
		idx, ok := round.FindMatch(input.Player1ID, input.Player2ID)
		if !ok {
			return fmt.Errorf("%w: %s vs %s in tournament %s round %d",
				ErrMatchNotFound, input.Player1ID, input.Player2ID, input.TournamentID, input.RoundNumber)
		}

		match := &round.Matches[idx]
		// Stored results are always from the stored player1's side.
		if match.Player1.ID == input.Player1ID {
			match.Result = result
		} else {
			match.Result = result.Mirror()
		}
		if err := s.roundRepo.UpdateMatches(ctx, exec, round); err != nil {
			return fmt.Errorf("failed to update round %d: %w", round.Round, err)
		}

		// Строки таблицы блокируются в порядке id игроков, иначе две партии
		// с общими игроками могут взаимно заблокироваться.
		locked := make(map[string]*models.StandingRecord, 2)
		for _, id := range lockOrder(input.Player1ID, input.Player2ID) {
			standing, err := s.standingFor(ctx, exec, input.TournamentID, id, logger)
			if err != nil {
				return err
			}
			locked[id] = standing
		}
		first, second := locked[input.Player1ID], locked[input.Player2ID]

		playedAt := s.now().UTC()
		sides := []struct {
			standing *models.StandingRecord
			opponent *models.StandingRecord
			result   models.MatchResult
		}{
			{first, second, result},
			{second, first, result.Mirror()},
		}
		for _, side := range sides {
			side.standing.RecordOutcome(models.Outcome{
				RoundNumber: input.RoundNumber,
				Opponent: models.Player{
					ID:               side.opponent.PlayerID,
					ChesscomUsername: s.opponentName(ctx, exec, side.opponent),
				},
				Result:   side.result,
				Points:   side.result.Points(),
				PlayedAt: playedAt,
			})
			if err := s.standingRepo.Save(ctx, exec, side.standing); err != nil {
				return fmt.Errorf("failed to save standing of player %s: %w", side.standing.PlayerID, err)
			}
		}

		update = MatchUpdate{
			RoundNumber: round.Round,
			Match:       *match,
			Standings:   []*models.StandingRecord{first, second},
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Error("failed to record match result", slog.Any("error", err))
		}
		return err
	}

	s.metrics.IncResultsRecorded()
	logger.Info("match result recorded", slog.String("result", string(result)))
	s.notifier.Publish(input.TournamentID, live.EventMatchUpdated, update)
	return nil
}

// lockOrder returns the two player ids in the order their standings are locked.
func lockOrder(a, b string) [2]string {
	if b < a {
		return [2]string{b, a}
	}
	return [2]string{a, b}
}

// standingFor loads and locks the player's standing, recreating it from the round records
// when it is missing. A player who was never scheduled in the tournament is an error.
func (s *resultService) standingFor(ctx context.Context, exec repositories.SQLExecutor, tournamentID, playerID string, logger *slog.Logger) (*models.StandingRecord, error) {
	standing, err := s.standingRepo.GetForUpdate(ctx, exec, tournamentID, playerID)
	if err == nil {
		return standing, nil
	}
	if !errors.Is(err, repositories.ErrStandingNotFound) {
		return nil, fmt.Errorf("failed to get standing of player %s: %w", playerID, err)
	}

	round, err := s.roundRepo.FindRoundWithPlayer(ctx, exec, tournamentID, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, fmt.Errorf("%w: player %s, tournament %s", ErrPlayerNotInTournament, playerID, tournamentID)
		}
		return nil, fmt.Errorf("failed to look up rounds of player %s: %w", playerID, err)
	}
	player, ok := round.FindPlayer(playerID)
	if !ok {
		return nil, fmt.Errorf("%w: player %s, tournament %s", ErrPlayerNotInTournament, playerID, tournamentID)
	}

	standing = newStanding(tournamentID, player)
	created, err := s.standingRepo.CreateIfMissing(ctx, exec, standing)
	if err != nil {
		return nil, fmt.Errorf("failed to recreate standing of player %s: %w", playerID, err)
	}
	if !created {
		// Another transaction recreated it first; lock its row instead.
		standing, err = s.standingRepo.GetForUpdate(ctx, exec, tournamentID, playerID)
		if err != nil {
			return nil, fmt.Errorf("failed to get standing of player %s: %w", playerID, err)
		}
		return standing, nil
	}
	s.metrics.IncStandingsHealed()
	logger.Warn("standing was missing and has been recreated from round records",
		slog.String("player_id", playerID), slog.Int("found_in_round", round.Round))
	return standing, nil
}

// opponentName resolves a display name for the opponent, falling back to their latest
// standing in any tournament and finally to "Unknown".
func (s *resultService) opponentName(ctx context.Context, exec repositories.SQLExecutor, opponent *models.StandingRecord) string {
	if opponent.PlayerName != "" {
		return opponent.PlayerName
	}
	if other, err := s.standingRepo.GetByPlayerID(ctx, exec, opponent.PlayerID); err == nil {
		return other.PlayerName
	}
	return unknownOpponentName
}

// ResetTournament clears every result and standing aggregate but keeps the pairings
// and the standing rows.
func (s *resultService) ResetTournament(ctx context.Context, tournamentID string) error {
	v := newValidationError()
	validateTournamentID(v, tournamentID)
	if err := v.OrNil(); err != nil {
		return err
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.standingRepo.ResetAggregates(ctx, exec, tournamentID); err != nil {
			return err
		}
		return s.roundRepo.ResetResultsToPending(ctx, exec, tournamentID)
	})
	if err != nil {
		s.log.Error("failed to reset tournament", slog.String("op", "ResetTournament"),
			slog.String("tournament_id", tournamentID), slog.Any("error", err))
		return fmt.Errorf("failed to reset tournament %s: %w", tournamentID, err)
	}

	s.metrics.IncTournamentResets()
	s.notifier.Publish(tournamentID, live.EventTournamentReset, nil)
	return nil
}

// InitializeStandings creates an empty standing for every listed player that does not
// have one yet. Existing standings are left untouched.
func (s *resultService) InitializeStandings(ctx context.Context, input InitializeStandingsInput) ([]*models.StandingRecord, error) {
	v := newValidationError()
	validateTournamentID(v, input.TournamentID)
	validatePlayers(v, input.Players)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelWrites)
	for _, p := range input.Players {
		g.Go(func() error {
			if _, err := s.standingRepo.CreateIfMissing(gctx, nil, newStanding(input.TournamentID, p)); err != nil {
				return fmt.Errorf("player %s: %w", p.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Error("failed to initialize standings", slog.String("op", "InitializeStandings"),
			slog.String("tournament_id", input.TournamentID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to initialize standings for tournament %s: %w", input.TournamentID, err)
	}

	standings, err := s.ListStandings(ctx, input.TournamentID)
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(input.TournamentID, live.EventStandingsInitialized, standings)
	return standings, nil
}

func (s *resultService) ListStandings(ctx context.Context, tournamentID string) ([]*models.StandingRecord, error) {
	v := newValidationError()
	validateTournamentID(v, tournamentID)
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	standings, err := s.standingRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings for tournament %s: %w", tournamentID, err)
	}
	models.SortStandings(standings)
	return standings, nil
}

func (s *resultService) GetPlayerStanding(ctx context.Context, tournamentID, playerID string) (*models.StandingRecord, error) {
	v := newValidationError()
	validateTournamentID(v, tournamentID)
	if playerID == "" {
		v.Add("playerId", "must be provided")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	standing, err := s.standingRepo.GetByTournamentAndPlayer(ctx, nil, tournamentID, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrStandingNotFound) {
			return nil, fmt.Errorf("%w: player %s, tournament %s", ErrStandingNotFound, playerID, tournamentID)
		}
		return nil, fmt.Errorf("failed to get standing of player %s: %w", playerID, err)
	}
	return standing, nil
}
