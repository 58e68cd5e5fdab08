package services

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Общие ошибки, используемые в сервисах и маппинге HTTP.
var (
	ErrNotFound          = errors.New("requested resource not found")
	ErrValidationFailed  = errors.New("validation failed")
	ErrExportUnavailable = errors.New("standings export is not configured")

	// Уточнения ErrNotFound: errors.Is(err, ErrNotFound) для всех.
	ErrRoundNotFound         = fmt.Errorf("%w: round", ErrNotFound)
	ErrMatchNotFound         = fmt.Errorf("%w: match", ErrNotFound)
	ErrPlayerNotInTournament = fmt.Errorf("%w: player has no scheduled match in tournament", ErrNotFound)
	ErrStandingNotFound      = fmt.Errorf("%w: standing", ErrNotFound)
)

// ValidationError collects per-field problems with a request.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) Add(field, message string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// OrNil returns e when at least one field failed, so callers can `return v.OrNil()`.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidationFailed.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// PartialScheduleError is returned when generation failed after some rounds were
// already stored. Re-running generation from scratch is always safe.
type PartialScheduleError struct {
	TournamentID string
	Requested    int
	Persisted    int
	Err          error
}

func (e *PartialScheduleError) Error() string {
	return fmt.Sprintf("schedule for tournament %s is incomplete (%d of %d rounds stored): %v",
		e.TournamentID, e.Persisted, e.Requested, e.Err)
}

func (e *PartialScheduleError) Unwrap() error {
	return e.Err
}
