package driven

import (
	"context"

	"github.com/atacama-labs/tenderwatch/internal/core/domain"
)

// RunStore records range-run executions for later inspection.
type RunStore interface {
	// Record persists one run result.
	Record(ctx context.Context, run *domain.IngestRun) error

	// Recent returns the latest runs, newest first.
	Recent(ctx context.Context, limit int) ([]domain.IngestRun, error)

	// Prune keeps only the newest keep runs.
	Prune(ctx context.Context, keep int) error
}
