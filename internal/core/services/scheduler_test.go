package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atacama-labs/tenderwatch/internal/core/domain"
	"github.com/atacama-labs/tenderwatch/internal/core/ports/driving"
)

// --- Mock implementations for scheduler testing ---

// mockIngestor implements driving.Ingestor with scripted outcomes.
type mockIngestor struct {
	mu      sync.Mutex
	calls   []time.Time // the start day of each range call
	results []mockRunResult
}

type mockRunResult struct {
	stats domain.IngestStats
	err   error
}

func (m *mockIngestor) ProcessManual(_ context.Context, _ string, _ domain.Stage, _ driving.ProgressFunc) (bool, string) {
	return false, "not used"
}

func (m *mockIngestor) ProcessDateRange(_ context.Context, start, _ time.Time, _ driving.ProgressFunc) (domain.IngestStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, start)
	if len(m.results) == 0 {
		return domain.IngestStats{Listings: 1}, nil
	}
	result := m.results[0]
	m.results = m.results[1:]
	return result.stats, result.err
}

func (m *mockIngestor) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func newTestController(ingest driving.Ingestor) *RetryController {
	return NewRetryController(domain.ScheduleConfig{
		Hour:        20,
		Minute:      30,
		MaxRetries:  3,
		BackoffBase: 5 * time.Minute,
	}, ingest)
}

func at(day string, hour, minute int) time.Time {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return t.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func TestSchedulerFiresAtConfiguredTime(t *testing.T) {
	ingest := &mockIngestor{}
	c := newTestController(ingest)
	ctx := context.Background()

	c.onTick(ctx, at("2026-08-02", 20, 29))
	assert.Equal(t, 0, ingest.callCount(), "must not fire before the trigger time")

	c.onTick(ctx, at("2026-08-02", 20, 30))
	require.Equal(t, 1, ingest.callCount())

	// The run targets yesterday as a single-day range.
	assert.Equal(t, "2026-08-01", ingest.calls[0].Format("2006-01-02"))
}

func TestSchedulerDoesNotDoubleFire(t *testing.T) {
	ingest := &mockIngestor{}
	c := newTestController(ingest)
	ctx := context.Background()

	c.onTick(ctx, at("2026-08-02", 20, 30))
	c.onTick(ctx, at("2026-08-02", 20, 30))
	c.onTick(ctx, at("2026-08-02", 20, 31))
	assert.Equal(t, 1, ingest.callCount())
}

func TestSchedulerFiresAgainNextDay(t *testing.T) {
	ingest := &mockIngestor{}
	c := newTestController(ingest)
	ctx := context.Background()

	c.onTick(ctx, at("2026-08-02", 20, 30))
	c.onTick(ctx, at("2026-08-03", 20, 30))
	require.Equal(t, 2, ingest.callCount())
	assert.Equal(t, "2026-08-02", ingest.calls[1].Format("2006-01-02"))
}

func TestSchedulerBackoffProgression(t *testing.T) {
	ingest := &mockIngestor{results: []mockRunResult{
		{stats: domain.IngestStats{Errors: 1}},
		{stats: domain.IngestStats{Errors: 1}},
		{stats: domain.IngestStats{}},
	}}
	c := newTestController(ingest)
	ctx := context.Background()

	c.onTick(ctx, at("2026-08-02", 20, 30))
	require.Equal(t, 1, ingest.callCount())

	// First retry is due 5 minutes later, not before.
	c.onTick(ctx, at("2026-08-02", 20, 34))
	assert.Equal(t, 1, ingest.callCount())
	c.onTick(ctx, at("2026-08-02", 20, 35))
	require.Equal(t, 2, ingest.callCount())

	// Second retry doubles the delay to 10 minutes.
	c.onTick(ctx, at("2026-08-02", 20, 44))
	assert.Equal(t, 2, ingest.callCount())
	c.onTick(ctx, at("2026-08-02", 20, 45))
	require.Equal(t, 3, ingest.callCount())

	// Third attempt succeeded; nothing else fires today.
	c.onTick(ctx, at("2026-08-02", 21, 0))
	c.onTick(ctx, at("2026-08-02", 23, 59))
	assert.Equal(t, 3, ingest.callCount())
}

func TestSchedulerGivesUpAfterMaxRetries(t *testing.T) {
	ingest := &mockIngestor{results: []mockRunResult{
		{err: errors.New("api down")},
		{err: errors.New("api down")},
		{err: errors.New("api down")},
		{err: errors.New("api down")},
	}}
	c := newTestController(ingest)
	ctx := context.Background()

	// Trigger plus retries at +5, +10 and +20 minutes.
	c.onTick(ctx, at("2026-08-02", 20, 30))
	c.onTick(ctx, at("2026-08-02", 20, 35))
	c.onTick(ctx, at("2026-08-02", 20, 45))
	c.onTick(ctx, at("2026-08-02", 21, 5))
	require.Equal(t, 4, ingest.callCount())

	// Exhausted for today; no further attempts however long we wait.
	c.onTick(ctx, at("2026-08-02", 22, 0))
	c.onTick(ctx, at("2026-08-02", 23, 59))
	assert.Equal(t, 4, ingest.callCount())

	// A new day starts fresh.
	c.onTick(ctx, at("2026-08-03", 20, 30))
	assert.Equal(t, 5, ingest.callCount())
}

func TestSchedulerPendingDetailsCountAsFailure(t *testing.T) {
	ingest := &mockIngestor{results: []mockRunResult{
		{stats: domain.IngestStats{Listings: 5, DetailsPending: 2}},
		{stats: domain.IngestStats{Listings: 5, DetailsFetched: 2}},
	}}
	c := newTestController(ingest)
	ctx := context.Background()

	c.onTick(ctx, at("2026-08-02", 20, 30))
	require.Equal(t, 1, ingest.callCount())

	// Pending details schedule a retry like a hard failure.
	c.onTick(ctx, at("2026-08-02", 20, 35))
	assert.Equal(t, 2, ingest.callCount())

	// The retry succeeded; the day is done.
	c.onTick(ctx, at("2026-08-02", 20, 45))
	assert.Equal(t, 2, ingest.callCount())
}

func TestSchedulerRunStops(t *testing.T) {
	ingest := &mockIngestor{}
	c := newTestController(ingest)
	c.tick = time.Millisecond

	done := make(chan error, 1)
	go func() {
		done <- c.Run(context.Background())
	}()

	time.Sleep(20 * time.Millisecond)
	c.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestSchedulerRunHonoursContext(t *testing.T) {
	ingest := &mockIngestor{}
	c := newTestController(ingest)
	c.tick = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancellation")
	}
}
