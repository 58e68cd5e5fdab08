package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/Dosada05/chess-pairings/models"
	"github.com/Dosada05/chess-pairings/services"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var host string

	root := &cobra.Command{
		Use:   "pairings-cli",
		Short: "Admin client for the chess pairings server",
		Long: `A command-line interface for generating round schedules, recording
results and reading standings through the pairings HTTP API.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "The host address of the server")

	client := func(cmd *cobra.Command) *apiClient {
		return newAPIClient(host, cmd.OutOrStdout())
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "health",
			Short: "Check the health of the server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return client(cmd).get("/api/health")
			},
		},
		newGenerateCmd(client),
		newInitializeCmd(client),
		&cobra.Command{
			Use:   "rounds TOURNAMENT [ROUND]",
			Short: "Show all rounds of a tournament, or a single one",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				endpoint := "/api/matchups/tournament/" + url.PathEscape(args[0])
				if len(args) == 2 {
					if _, err := strconv.Atoi(args[1]); err != nil {
						return fmt.Errorf("round must be a number: %q", args[1])
					}
					endpoint += "/rounds/" + args[1]
				}
				return client(cmd).get(endpoint)
			},
		},
		newResultCmd(client),
		&cobra.Command{
			Use:   "reset TOURNAMENT",
			Short: "Clear all results and standings, keeping the schedule",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return client(cmd).post("/api/tournament-results/reset-tournament", map[string]string{"tournamentId": args[0]})
			},
		},
		&cobra.Command{
			Use:   "standings TOURNAMENT",
			Short: "Show standings ordered by points",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return client(cmd).get("/api/tournament-results/standings/" + url.PathEscape(args[0]))
			},
		},
		&cobra.Command{
			Use:   "player TOURNAMENT PLAYER",
			Short: "Show the standing of one player",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return client(cmd).get("/api/tournament-results/player/" + url.PathEscape(args[0]) + "/" + url.PathEscape(args[1]))
			},
		},
		&cobra.Command{
			Use:   "export TOURNAMENT",
			Short: "Upload a standings snapshot to object storage",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return client(cmd).post("/api/tournament-results/standings/"+url.PathEscape(args[0])+"/export", nil)
			},
		},
		&cobra.Command{
			Use:   "metrics",
			Short: "Get application metrics",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return client(cmd).get("/metrics")
			},
		},
	)
	return root
}

func newGenerateCmd(client func(*cobra.Command) *apiClient) *cobra.Command {
	var (
		tournamentID string
		rounds       int
		playersFile  string
		playerSpecs  []string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the full round schedule, replacing any existing one",
		Example: `  pairings-cli generate -t spring-open -r 5 -p p1:magnus -p p2:hikaru -p p3:fabiano
  pairings-cli generate -t spring-open -r 5 --players-file players.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			players, err := loadPlayers(playersFile, playerSpecs)
			if err != nil {
				return err
			}
			return client(cmd).post("/api/matchups/generate-rounds", services.GenerateRoundsInput{
				TournamentID:   tournamentID,
				Players:        players,
				NumberOfRounds: rounds,
			})
		},
	}
	cmd.Flags().StringVarP(&tournamentID, "tournament", "t", "", "tournament id")
	cmd.Flags().IntVarP(&rounds, "rounds", "r", 0, "number of rounds")
	cmd.Flags().StringVar(&playersFile, "players-file", "", "JSON file with an array of {\"_id\",\"chesscomUsername\"}")
	cmd.Flags().StringArrayVarP(&playerSpecs, "player", "p", nil, "player as ID:HANDLE, repeatable")
	_ = cmd.MarkFlagRequired("tournament")
	_ = cmd.MarkFlagRequired("rounds")
	cmd.MarkFlagsOneRequired("players-file", "player")
	cmd.MarkFlagsMutuallyExclusive("players-file", "player")
	return cmd
}

func newInitializeCmd(client func(*cobra.Command) *apiClient) *cobra.Command {
	var (
		tournamentID string
		playersFile  string
		playerSpecs  []string
	)

	cmd := &cobra.Command{
		Use:   "initialize",
		Short: "Create empty standings for players that have none",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			players, err := loadPlayers(playersFile, playerSpecs)
			if err != nil {
				return err
			}
			return client(cmd).post("/api/tournament-results/initialize", services.InitializeStandingsInput{
				TournamentID: tournamentID,
				Players:      players,
			})
		},
	}
	cmd.Flags().StringVarP(&tournamentID, "tournament", "t", "", "tournament id")
	cmd.Flags().StringVar(&playersFile, "players-file", "", "JSON file with an array of {\"_id\",\"chesscomUsername\"}")
	cmd.Flags().StringArrayVarP(&playerSpecs, "player", "p", nil, "player as ID:HANDLE, repeatable")
	_ = cmd.MarkFlagRequired("tournament")
	cmd.MarkFlagsOneRequired("players-file", "player")
	cmd.MarkFlagsMutuallyExclusive("players-file", "player")
	return cmd
}

func newResultCmd(client func(*cobra.Command) *apiClient) *cobra.Command {
	var input services.UpdateMatchInput

	cmd := &cobra.Command{
		Use:   "result PLAYER1 PLAYER2 win|loss|draw",
		Short: "Record a match result from PLAYER1's side",
		Example: `  pairings-cli result p1 p2 win -t spring-open --round 3`,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			input.Player1ID, input.Player2ID = args[0], args[1]
			input.Result = strings.ToLower(args[2])
			if _, err := models.ParseMatchResult(input.Result); err != nil {
				return err
			}
			return client(cmd).post("/api/tournament-results/update-match", input)
		},
	}
	cmd.Flags().StringVarP(&input.TournamentID, "tournament", "t", "", "tournament id")
	cmd.Flags().IntVar(&input.RoundNumber, "round", 0, "round number")
	_ = cmd.MarkFlagRequired("tournament")
	_ = cmd.MarkFlagRequired("round")
	return cmd
}

// loadPlayers reads players either from a JSON file or from ID:HANDLE flags.
func loadPlayers(file string, specs []string) ([]models.Player, error) {
	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read players file: %w", err)
		}
		var players []models.Player
		if err := json.Unmarshal(raw, &players); err != nil {
			return nil, fmt.Errorf("parse players file %s: %w", file, err)
		}
		return players, nil
	}

	players := make([]models.Player, 0, len(specs))
	for _, spec := range specs {
		id, handle, ok := strings.Cut(spec, ":")
		if !ok || id == "" {
			return nil, fmt.Errorf("player %q must look like ID:HANDLE", spec)
		}
		players = append(players, models.Player{ID: id, ChesscomUsername: handle})
	}
	return players, nil
}
