package driving

import (
	"context"
	"time"

	"github.com/atacama-labs/tenderwatch/internal/core/domain"
)

// ProgressFunc receives human-readable progress lines. It is purely
// observational and must never affect control flow; a nil callback is
// always allowed.
type ProgressFunc func(message string)

// Ingestor drives the ingestion-and-scoring pipeline.
type Ingestor interface {
	// ProcessManual fetches, scores and stores one tender, then moves it
	// to the target stage. Returns success plus a human-readable message;
	// the stage move only happens after persistence succeeded.
	ProcessManual(ctx context.Context, code string, target domain.Stage, progress ProgressFunc) (bool, string)

	// ProcessDateRange ingests every day in the inclusive range. It never
	// fails the whole range on a bad day or item: partial statistics are
	// returned and errors are emitted per item. At most one range run may
	// be in flight; a concurrent call returns domain.ErrIngestRunning.
	// Otherwise the returned error is non-nil only when the context was
	// cancelled.
	ProcessDateRange(ctx context.Context, start, end time.Time, progress ProgressFunc) (domain.IngestStats, error)
}
