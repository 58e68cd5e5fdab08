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
	ErrRoundNotFound  = errors.New("round not found")
	ErrRoundDuplicate = errors.New("round already exists for this tournament")
)

type RoundRepository interface {
	DeleteByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID string) error
	Create(ctx context.Context, exec SQLExecutor, round *models.Round) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]*models.Round, error)
	GetByTournamentAndRound(ctx context.Context, exec SQLExecutor, tournamentID string, roundNumber int) (*models.Round, error)
	// GetForUpdate is GetByTournamentAndRound with a row lock; exec should be a transaction.
	GetForUpdate(ctx context.Context, exec SQLExecutor, tournamentID string, roundNumber int) (*models.Round, error)
	// FindRoundWithPlayer returns the earliest round of the tournament in which playerID is seated.
	FindRoundWithPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID string) (*models.Round, error)
	UpdateMatches(ctx context.Context, exec SQLExecutor, round *models.Round) error
	ResetResultsToPending(ctx context.Context, exec SQLExecutor, tournamentID string) error
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRoundRepository) DeleteByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID string) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM rounds WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return fmt.Errorf("DeleteByTournamentID: %w", err)
	}
	return nil
}

func (r *postgresRoundRepository) Create(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	executor := r.getExecutor(exec)
	if round.ID == "" {
		round.ID = uuid.NewString()
	}
	matches, err := jsonColumn(round.Matches)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO rounds (id, tournament_id, round_number, matches)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`
	err = executor.QueryRowContext(ctx, query,
		round.ID, round.TournamentID, round.Round, matches,
	).Scan(&round.CreatedAt)
	return r.handleRoundError(err)
}

const selectRoundColumns = `SELECT id, tournament_id, round_number, matches, created_at FROM rounds`

func (r *postgresRoundRepository) scanRound(row rowScanner) (*models.Round, error) {
	var (
		round models.Round
		raw   []byte
	)
	err := row.Scan(&round.ID, &round.TournamentID, &round.Round, &raw, &round.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	round.Matches, err = scanJSONColumn[models.Match](raw)
	if err != nil {
		return nil, err
	}
	return &round, nil
}

func (r *postgresRoundRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]*models.Round, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx,
		selectRoundColumns+` WHERE tournament_id = $1 ORDER BY round_number ASC`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rounds := make([]*models.Round, 0)
	for rows.Next() {
		round, errScan := r.scanRound(rows)
		if errScan != nil {
			return nil, errScan
		}
		rounds = append(rounds, round)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return rounds, nil
}

func (r *postgresRoundRepository) GetByTournamentAndRound(ctx context.Context, exec SQLExecutor, tournamentID string, roundNumber int) (*models.Round, error) {
	executor := r.getExecutor(exec)
	row := executor.QueryRowContext(ctx,
		selectRoundColumns+` WHERE tournament_id = $1 AND round_number = $2`, tournamentID, roundNumber)
	return r.scanRound(row)
}

func (r *postgresRoundRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, tournamentID string, roundNumber int) (*models.Round, error) {
	executor := r.getExecutor(exec)
	row := executor.QueryRowContext(ctx,
		selectRoundColumns+` WHERE tournament_id = $1 AND round_number = $2 FOR UPDATE`, tournamentID, roundNumber)
	return r.scanRound(row)
}

func (r *postgresRoundRepository) FindRoundWithPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID string) (*models.Round, error) {
	executor := r.getExecutor(exec)
	query := selectRoundColumns + `
		WHERE tournament_id = $1
		  AND EXISTS (
			SELECT 1 FROM jsonb_array_elements(matches) m
			WHERE m->'player1'->>'_id' = $2 OR m->'player2'->>'_id' = $2
		  )
		ORDER BY round_number ASC
		LIMIT 1`
	return r.scanRound(executor.QueryRowContext(ctx, query, tournamentID, playerID))
}

func (r *postgresRoundRepository) UpdateMatches(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	executor := r.getExecutor(exec)
	matches, err := jsonColumn(round.Matches)
	if err != nil {
		return err
	}
	result, err := executor.ExecContext(ctx,
		`UPDATE rounds SET matches = $1 WHERE tournament_id = $2 AND round_number = $3`,
		matches, round.TournamentID, round.Round)
	if err != nil {
		return fmt.Errorf("UpdateMatches: failed for round %d of %s: %w", round.Round, round.TournamentID, err)
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *postgresRoundRepository) ResetResultsToPending(ctx context.Context, exec SQLExecutor, tournamentID string) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE rounds SET matches = COALESCE((
			SELECT jsonb_agg(jsonb_set(m, '{result}', to_jsonb($2::text)) ORDER BY ord)
			FROM jsonb_array_elements(matches) WITH ORDINALITY AS e(m, ord)
		), '[]'::jsonb)
		WHERE tournament_id = $1`
	_, err := executor.ExecContext(ctx, query, tournamentID, string(models.ResultPending))
	if err != nil {
		return fmt.Errorf("ResetResultsToPending: %w", err)
	}
	return nil
}

func (r *postgresRoundRepository) handleRoundError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// 23505: unique_violation
		if pqErr.Constraint == "rounds_tournament_id_round_number_key" {
			return ErrRoundDuplicate
		}
	}
	return err
}
