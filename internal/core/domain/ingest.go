package domain

import "time"

// IngestStats aggregates the outcome of a range run.
type IngestStats struct {
	// Listings is the number of basic listing entries seen.
	Listings int

	// DetailsFetched is the number of successful detail fetches.
	DetailsFetched int

	// DetailsPending counts retryable detail failures; a later run will
	// re-attempt these tenders.
	DetailsPending int

	// Omitted counts items skipped by the title filter without an API
	// call.
	Omitted int

	// Errors counts hard failures (client errors, failed day batches).
	Errors int
}

// Add accumulates other into s.
func (s *IngestStats) Add(other IngestStats) {
	s.Listings += other.Listings
	s.DetailsFetched += other.DetailsFetched
	s.DetailsPending += other.DetailsPending
	s.Omitted += other.Omitted
	s.Errors += other.Errors
}

// Failed reports whether the run should be considered failed for retry
// purposes: hard errors, or pending fetches worth re-attempting.
func (s IngestStats) Failed() bool {
	return s.Errors > 0 || s.DetailsPending > 0
}

// IngestRun is one recorded execution of the range pipeline.
type IngestRun struct {
	ID        string
	StartedAt time.Time
	EndedAt   time.Time
	Success   bool
	Error     string
	Stats     IngestStats
}
