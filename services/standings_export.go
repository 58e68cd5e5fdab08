package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/chess-pairings/models"
	"github.com/Dosada05/chess-pairings/storage"
)

type standingsSnapshot struct {
	TournamentID string                   `json:"tournamentId"`
	ExportedAt   time.Time                `json:"exportedAt"`
	Standings    []*models.StandingRecord `json:"standings"`
}

func exportKey(tournamentID string, at time.Time) string {
	return fmt.Sprintf("standings/%s/%s.json", tournamentID, at.UTC().Format("20060102T150405Z"))
}

// ExportStandings uploads the current standings as a JSON snapshot.
func (s *resultService) ExportStandings(ctx context.Context, tournamentID string) (*storage.UploadResult, error) {
	if s.uploader == nil {
		return nil, ErrExportUnavailable
	}
	standings, err := s.ListStandings(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	body, err := json.MarshalIndent(standingsSnapshot{
		TournamentID: tournamentID,
		ExportedAt:   now.UTC(),
		Standings:    standings,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode standings: %w", err)
	}

	res, err := s.uploader.Upload(ctx, exportKey(tournamentID, now), "application/json", bytes.NewReader(body))
	if err != nil {
		s.log.Error("failed to export standings", slog.String("op", "ExportStandings"),
			slog.String("tournament_id", tournamentID), slog.Any("error", err))
		return nil, err
	}
	s.log.Info("standings exported", slog.String("tournament_id", tournamentID), slog.String("key", res.Key))
	return res, nil
}
