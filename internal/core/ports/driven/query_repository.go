package driven

import (
	"context"

	"github.com/atacama-labs/tenderwatch/internal/core/domain"
)

// QueryRepository serves the read side consumed by the presentation layer:
// paginated per-stage listings ordered by descending score, the stage
// transition mutation, and the joined single-record view.
type QueryRepository interface {
	// ListByStage returns tenders in a stage, highest score first.
	ListByStage(ctx context.Context, stage domain.Stage, limit, offset uint64) ([]domain.Tender, error)

	// ListActive returns tenders whose upstream state is still active.
	ListActive(ctx context.Context) ([]domain.Tender, error)

	// MoveStage transfers a tender to a new workflow stage.
	// Returns domain.ErrNotFound for an unknown code.
	MoveStage(ctx context.Context, code string, stage domain.Stage) error

	// GetByCode returns one tender with its organization and state joined,
	// or domain.ErrNotFound.
	GetByCode(ctx context.Context, code string) (*domain.TenderDetail, error)
}
