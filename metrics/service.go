package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

type Service struct {
	SchedulesGenerated prometheus.Counter
	ScheduleFailures   prometheus.Counter
	RoundsPersisted    prometheus.Counter
	ForcedRematches    prometheus.Counter
	ScheduleDuration   prometheus.Histogram
	ResultsRecorded    prometheus.Counter
	StandingsHealed    prometheus.Counter
	TournamentResets   prometheus.Counter
}

// NewMetricsHandler returns an http.Handler for the given Gatherer, or the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the collectors, on the default registerer unless one is given.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		SchedulesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pairings_schedules_generated_total",
			Help: "Schedules generated to completion.",
		}),
		ScheduleFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pairings_schedule_failures_total",
			Help: "Schedule generations that failed, including partially stored ones.",
		}),
		RoundsPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pairings_rounds_persisted_total",
			Help: "Rounds written to storage.",
		}),
		ForcedRematches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pairings_forced_rematches_total",
			Help: "Pairings that repeat an earlier game because no alternative existed.",
		}),
		ScheduleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pairings_schedule_duration_seconds",
			Help:    "Time to clear, pair and store a full schedule.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		ResultsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pairings_results_recorded_total",
			Help: "Match results reconciled into rounds and standings.",
		}),
		StandingsHealed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pairings_standings_healed_total",
			Help: "Standings recreated from round records during result updates.",
		}),
		TournamentResets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pairings_tournament_resets_total",
			Help: "Tournament result resets.",
		}),
	}

	reg.MustRegister(
		s.SchedulesGenerated,
		s.ScheduleFailures,
		s.RoundsPersisted,
		s.ForcedRematches,
		s.ScheduleDuration,
		s.ResultsRecorded,
		s.StandingsHealed,
		s.TournamentResets,
	)

	return s
}

func (s *Service) IncSchedulesGenerated() {
	s.SchedulesGenerated.Inc()
}

func (s *Service) IncScheduleFailures() {
	s.ScheduleFailures.Inc()
}

func (s *Service) AddRoundsPersisted(n int) {
	s.RoundsPersisted.Add(float64(n))
}

func (s *Service) AddForcedRematches(n int) {
	s.ForcedRematches.Add(float64(n))
}

func (s *Service) ObserveScheduleDuration(seconds float64) {
	s.ScheduleDuration.Observe(seconds)
}

func (s *Service) IncResultsRecorded() {
	s.ResultsRecorded.Inc()
}

func (s *Service) IncStandingsHealed() {
	s.StandingsHealed.Inc()
}

func (s *Service) IncTournamentResets() {
	s.TournamentResets.Inc()
}
