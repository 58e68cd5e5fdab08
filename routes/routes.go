package routes

import (
	"log/slog"
	"net/http"
	"time"

	_ "github.com/Dosada05/chess-pairings/docs"
	"github.com/Dosada05/chess-pairings/handlers"
	"github.com/Dosada05/chess-pairings/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Deps struct {
	Matchups       *handlers.MatchupHandler
	Results        *handlers.ResultHandler
	WebSocket      *handlers.WebSocketHandler
	MetricsHandler http.Handler
	AllowedOrigins []string
	Logger         *slog.Logger
}

func SetupRoutes(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// websocket-соединения живут долго, таймаут только для API
	r.Get("/ws/tournaments/{tournamentID}", d.WebSocket.ServeWs)

	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(60 * time.Second))

		r.Get("/health", handlers.Health)

		r.Route("/matchups", func(r chi.Router) {
			r.Post("/generate-rounds", d.Matchups.GenerateRounds)
			r.Get("/tournament/{tournamentID}", d.Matchups.ListRounds)
			r.Get("/tournament/{tournamentID}/rounds/{round}", d.Matchups.GetRound)
		})

		r.Route("/tournament-results", func(r chi.Router) {
			r.Post("/initialize", d.Results.InitializeStandings)
			r.Post("/update-match", d.Results.UpdateMatchResult)
			r.Post("/reset-tournament", d.Results.ResetTournament)
			r.Get("/standings/{tournamentID}", d.Results.ListStandings)
			r.Post("/standings/{tournamentID}/export", d.Results.ExportStandings)
			r.Get("/player/{tournamentID}/{playerID}", d.Results.GetPlayerStanding)
		})
	})

	return r
}
