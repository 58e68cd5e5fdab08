package metrics

// Metrics decouples the services from the Prometheus client.
type Metrics interface {
	IncSchedulesGenerated()
	IncScheduleFailures()
	AddRoundsPersisted(n int)
	AddForcedRematches(n int)
	ObserveScheduleDuration(seconds float64)
	IncResultsRecorded()
	IncStandingsHealed()
	IncTournamentResets()
}
