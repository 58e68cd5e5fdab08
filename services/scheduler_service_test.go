package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/chess-pairings/live"
	"github.com/Dosada05/chess-pairings/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRoundsValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	tests := []struct {
		name  string
		input GenerateRoundsInput
		field string
	}{
		{"missing tournament", GenerateRoundsInput{Players: players("A", "B"), NumberOfRounds: 1}, "tournamentId"},
		{"single player", GenerateRoundsInput{TournamentID: "t", Players: players("A"), NumberOfRounds: 1}, "players"},
		{"empty id", GenerateRoundsInput{TournamentID: "t", Players: append(players("A"), models.Player{}), NumberOfRounds: 1}, "players[1]._id"},
		{"duplicate id", GenerateRoundsInput{TournamentID: "t", Players: players("A", "B", "A"), NumberOfRounds: 1}, "players[2]._id"},
		{"bye id", GenerateRoundsInput{TournamentID: "t", Players: players("A", "bye"), NumberOfRounds: 1}, "players[1]._id"},
		{"zero rounds", GenerateRoundsInput{TournamentID: "t", Players: players("A", "B"), NumberOfRounds: 0}, "numberOfRounds"},
		{"too many rounds", GenerateRoundsInput{TournamentID: "t", Players: players("A", "B"), NumberOfRounds: 11}, "numberOfRounds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.scheduler.GenerateRounds(context.Background(), tt.input)
			require.ErrorIs(t, err, ErrValidationFailed)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
	assert.Empty(t, env.store.rounds)
}

func TestGenerateRoundsFivePlayers(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	rounds, err := env.scheduler.GenerateRounds(ctx, GenerateRoundsInput{
		TournamentID: "t1", Players: players("A", "B", "C", "D", "E"), NumberOfRounds: 3,
	})
	require.NoError(t, err)
	require.Len(t, rounds, 3)

	byes := make(map[string]bool)
	for i, r := range rounds {
		assert.Equal(t, i+1, r.Round)
		assert.Equal(t, "t1", r.TournamentID)
		require.Len(t, r.Matches, 3)
		last := r.Matches[2]
		require.True(t, last.Player2.IsBye())
		byes[last.Player1.ID] = true
		for _, m := range r.Matches {
			assert.Equal(t, models.ResultPending, m.Result)
		}
	}
	assert.Len(t, byes, 3, "no player gets a second bye")

	stored, err := env.scheduler.ListRounds(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, rounds, stored)

	standings, err := env.results.ListStandings(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, standings, 5)
	for _, s := range standings {
		assert.Empty(t, s.Matches)
		assert.Zero(t, s.TotalPoints)
	}

	assert.Equal(t, []string{live.EventRoundsGenerated}, env.notifier.types())
	assert.Equal(t, 1, env.metrics.SchedulesGenerated())
	assert.Equal(t, 3, env.metrics.RoundsPersisted())
	assert.Zero(t, env.metrics.ForcedRematches())
}

func TestGenerateRoundsIsDestructive(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.scheduler.GenerateRounds(ctx, GenerateRoundsInput{
		TournamentID: "t1", Players: players("A", "B", "C", "D", "E", "F"), NumberOfRounds: 4,
	})
	require.NoError(t, err)
	require.NoError(t, env.results.UpdateMatchResult(ctx, UpdateMatchInput{
		TournamentID: "t1", RoundNumber: 1, Player1ID: "A", Player2ID: "B", Result: "win",
	}))
	_, err = env.scheduler.GenerateRounds(ctx, GenerateRoundsInput{
		TournamentID: "other", Players: players("A", "B"), NumberOfRounds: 1,
	})
	require.NoError(t, err)

	rounds, err := env.scheduler.GenerateRounds(ctx, GenerateRoundsInput{
		TournamentID: "t1", Players: players("A", "B", "C", "D"), NumberOfRounds: 2,
	})
	require.NoError(t, err)
	assert.Len(t, rounds, 2)

	stored, err := env.scheduler.ListRounds(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	standings, err := env.results.ListStandings(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, standings, 4)
	for _, s := range standings {
		assert.Zero(t, s.TotalPoints, s.PlayerID)
	}

	other, err := env.scheduler.ListRounds(ctx, "other")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestGenerateRoundsIdenticalInputSameShape(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	input := GenerateRoundsInput{TournamentID: "t1", Players: players("A", "B", "C", "D", "E", "F", "G"), NumberOfRounds: 3}

	first, err := env.scheduler.GenerateRounds(ctx, input)
	require.NoError(t, err)
	second, err := env.scheduler.GenerateRounds(ctx, input)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Round, second[i].Round)
		assert.Equal(t, first[i].Matches, second[i].Matches)
	}
}

func TestGenerateRoundsPartialFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.store.failCreateRound = func(r *models.Round) error {
		if r.Round == 3 {
			return assert.AnError
		}
		return nil
	}

	rounds, err := env.scheduler.GenerateRounds(ctx, GenerateRoundsInput{
		TournamentID: "t1", Players: players("A", "B", "C", "D", "E", "F"), NumberOfRounds: 5,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)

	var partial *PartialScheduleError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, 5, partial.Requested)
	assert.Equal(t, 2, partial.Persisted)
	assert.Len(t, rounds, 2)

	stored, err := env.scheduler.ListRounds(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, 2, stored[1].Round)

	assert.Equal(t, 1, env.metrics.ScheduleFailures())
	assert.Zero(t, env.metrics.SchedulesGenerated())
	assert.Empty(t, env.notifier.types())

	env.store.failCreateRound = nil
	rounds, err = env.scheduler.GenerateRounds(ctx, GenerateRoundsInput{
		TournamentID: "t1", Players: players("A", "B", "C", "D", "E", "F"), NumberOfRounds: 5,
	})
	require.NoError(t, err)
	assert.Len(t, rounds, 5)
}

func TestGenerateRoundsClearFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.failDelete = assert.AnError

	_, err := env.scheduler.GenerateRounds(context.Background(), GenerateRoundsInput{
		TournamentID: "t1", Players: players("A", "B"), NumberOfRounds: 1,
	})
	require.ErrorIs(t, err, assert.AnError)
	var partial *PartialScheduleError
	assert.False(t, errors.As(err, &partial))
	assert.Empty(t, env.store.rounds)
}

func TestGenerateRoundsReportsForcedRematches(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.scheduler.GenerateRounds(context.Background(), GenerateRoundsInput{
		TournamentID: "t1", Players: players("A", "B"), NumberOfRounds: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, env.metrics.ForcedRematches())
}

func TestGetRound(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	_, err := env.scheduler.GenerateRounds(ctx, GenerateRoundsInput{
		TournamentID: "t1", Players: players("A", "B", "C"), NumberOfRounds: 2,
	})
	require.NoError(t, err)

	r, err := env.scheduler.GetRound(ctx, "t1", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Round)

	_, err = env.scheduler.GetRound(ctx, "t1", 3)
	assert.ErrorIs(t, err, ErrRoundNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.scheduler.GetRound(ctx, "t1", 0)
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = env.scheduler.ListRounds(ctx, " ")
	assert.ErrorIs(t, err, ErrValidationFailed)
}
