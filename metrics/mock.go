package metrics

import "sync"

// Mock records calls in memory for tests. It is safe for concurrent use.
type Mock struct {
	mu                 sync.Mutex
	schedulesGenerated int
	scheduleFailures   int
	roundsPersisted    int
	forcedRematches    int
	durations          []float64
	resultsRecorded    int
	standingsHealed    int
	tournamentResets   int
}

func NewMock() *Mock {
	return &Mock{durations: make([]float64, 0)}
}

func (m *Mock) IncSchedulesGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedulesGenerated++
}

func (m *Mock) IncScheduleFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduleFailures++
}

func (m *Mock) AddRoundsPersisted(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roundsPersisted += n
}

func (m *Mock) AddForcedRematches(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forcedRematches += n
}

func (m *Mock) ObserveScheduleDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations = append(m.durations, seconds)
}

func (m *Mock) IncResultsRecorded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resultsRecorded++
}

func (m *Mock) IncStandingsHealed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.standingsHealed++
}

func (m *Mock) IncTournamentResets() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tournamentResets++
}

func (m *Mock) SchedulesGenerated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.schedulesGenerated
}

func (m *Mock) ScheduleFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scheduleFailures
}

func (m *Mock) RoundsPersisted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roundsPersisted
}

func (m *Mock) ForcedRematches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.forcedRematches
}

func (m *Mock) ResultsRecorded() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resultsRecorded
}

func (m *Mock) StandingsHealed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.standingsHealed
}

func (m *Mock) TournamentResets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tournamentResets
}
