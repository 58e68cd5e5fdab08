package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/chess-pairings/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrStandingNotFound  = errors.New("tournament standing not found")
	ErrStandingDuplicate = errors.New("standing already exists for this player and tournament")
)

type StandingRepository interface {
	DeleteByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID string) error
	Create(ctx context.Context, exec SQLExecutor, standing *models.StandingRecord) error
	// CreateIfMissing inserts standing unless the player already has one in the tournament.
	CreateIfMissing(ctx context.Context, exec SQLExecutor, standing *models.StandingRecord) (bool, error)
	GetByTournamentAndPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID string) (*models.StandingRecord, error)
	// GetForUpdate is GetByTournamentAndPlayer with a row lock; exec should be a transaction.
	GetForUpdate(ctx context.Context, exec SQLExecutor, tournamentID, playerID string) (*models.StandingRecord, error)
	// GetByPlayerID returns the player's most recently updated named standing in any tournament.
	GetByPlayerID(ctx context.Context, exec SQLExecutor, playerID string) (*models.StandingRecord, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]*models.StandingRecord, error)
	Save(ctx context.Context, exec SQLExecutor, standing *models.StandingRecord) error
	ResetAggregates(ctx context.Context, exec SQLExecutor, tournamentID string) error
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStandingRepository) DeleteByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID string) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM tournament_standings WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return fmt.Errorf("DeleteByTournamentID: %w", err)
	}
	return nil
}

const insertStanding = `
	INSERT INTO tournament_standings
		(id, tournament_id, player_id, player_name, matches, total_points, wins, losses, draws, performance_rating)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

func (r *postgresStandingRepository) insertArgs(s *models.StandingRecord) ([]interface{}, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	matches, err := jsonColumn(s.Matches)
	if err != nil {
		return nil, err
	}
	return []interface{}{
		s.ID, s.TournamentID, s.PlayerID, s.PlayerName, matches,
		s.TotalPoints, s.Wins, s.Losses, s.Draws, s.PerformanceRating,
	}, nil
}

func (r *postgresStandingRepository) Create(ctx context.Context, exec SQLExecutor, standing *models.StandingRecord) error {
	executor := r.getExecutor(exec)
	args, err := r.insertArgs(standing)
	if err != nil {
		return err
	}
	err = executor.QueryRowContext(ctx, insertStanding+` RETURNING updated_at`, args...).Scan(&standing.UpdatedAt)
	return r.handleStandingError(err)
}

func (r *postgresStandingRepository) CreateIfMissing(ctx context.Context, exec SQLExecutor, standing *models.StandingRecord) (bool, error) {
	executor := r.getExecutor(exec)
	args, err := r.insertArgs(standing)
	if err != nil {
		return false, err
	}
	err = executor.QueryRowContext(ctx,
		insertStanding+` ON CONFLICT (tournament_id, player_id) DO NOTHING RETURNING updated_at`, args...,
	).Scan(&standing.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, r.handleStandingError(err)
	}
	return true, nil
}

const selectStandingColumns = `
	SELECT id, tournament_id, player_id, player_name, matches, total_points,
	       wins, losses, draws, performance_rating, updated_at
	FROM tournament_standings`

func (r *postgresStandingRepository) scanStanding(row rowScanner) (*models.StandingRecord, error) {
	var (
		s   models.StandingRecord
		raw []byte
	)
	err := row.Scan(
		&s.ID, &s.TournamentID, &s.PlayerID, &s.PlayerName, &raw, &s.TotalPoints,
		&s.Wins, &s.Losses, &s.Draws, &s.PerformanceRating, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStandingNotFound
		}
		return nil, err
	}
	s.Matches, err = scanJSONColumn[models.Outcome](raw)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *postgresStandingRepository) GetByTournamentAndPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID string) (*models.StandingRecord, error) {
	executor := r.getExecutor(exec)
	row := executor.QueryRowContext(ctx,
		selectStandingColumns+` WHERE tournament_id = $1 AND player_id = $2`, tournamentID, playerID)
	return r.scanStanding(row)
}

func (r *postgresStandingRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, tournamentID, playerID string) (*models.StandingRecord, error) {
	executor := r.getExecutor(exec)
	row := executor.QueryRowContext(ctx,
		selectStandingColumns+` WHERE tournament_id = $1 AND player_id = $2 FOR UPDATE`, tournamentID, playerID)
	return r.scanStanding(row)
}

func (r *postgresStandingRepository) GetByPlayerID(ctx context.Context, exec SQLExecutor, playerID string) (*models.StandingRecord, error) {
	executor := r.getExecutor(exec)
	row := executor.QueryRowContext(ctx,
		selectStandingColumns+` WHERE player_id = $1 AND player_name <> '' ORDER BY updated_at DESC LIMIT 1`, playerID)
	return r.scanStanding(row)
}

func (r *postgresStandingRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]*models.StandingRecord, error) {
	executor := r.getExecutor(exec)
	// Same order as idx_tournament_standings_ranking; player_name keeps ties stable.
	rows, err := executor.QueryContext(ctx, selectStandingColumns+`
		WHERE tournament_id = $1
		ORDER BY total_points DESC, wins DESC, player_name ASC`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]*models.StandingRecord, 0)
	for rows.Next() {
		s, errScan := r.scanStanding(rows)
		if errScan != nil {
			return nil, errScan
		}
		standings = append(standings, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return standings, nil
}

func (r *postgresStandingRepository) Save(ctx context.Context, exec SQLExecutor, standing *models.StandingRecord) error {
	executor := r.getExecutor(exec)
	matches, err := jsonColumn(standing.Matches)
	if err != nil {
		return err
	}
	query := `
		UPDATE tournament_standings SET
			player_name = $1, matches = $2, total_points = $3, wins = $4, losses = $5, draws = $6,
			performance_rating = $7, updated_at = NOW()
		WHERE tournament_id = $8 AND player_id = $9
		RETURNING updated_at`
	err = executor.QueryRowContext(ctx, query,
		standing.PlayerName, matches, standing.TotalPoints, standing.Wins, standing.Losses, standing.Draws,
		standing.PerformanceRating, standing.TournamentID, standing.PlayerID,
	).Scan(&standing.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrStandingNotFound
	}
	if err != nil {
		return fmt.Errorf("Save: standing %s/%s: %w", standing.TournamentID, standing.PlayerID, err)
	}
	return nil
}

func (r *postgresStandingRepository) ResetAggregates(ctx context.Context, exec SQLExecutor, tournamentID string) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournament_standings SET
			matches = '[]'::jsonb, total_points = 0, wins = 0, losses = 0, draws = 0, updated_at = NOW()
		WHERE tournament_id = $1`
	_, err := executor.ExecContext(ctx, query, tournamentID)
	if err != nil {
		return fmt.Errorf("ResetAggregates: %w", err)
	}
	return nil
}

func (r *postgresStandingRepository) handleStandingError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "tournament_standings_tournament_id_player_id_key":
			return ErrStandingDuplicate
		}
	}
	return err
}
