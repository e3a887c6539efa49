package driven

import (
	"context"

	"github.com/atacama-labs/tenderwatch/internal/core/domain"
)

// OrganizationStore manages purchasing institutions and their score bias.
type OrganizationStore interface {
	// Get returns one organization, or domain.ErrNotFound.
	Get(ctx context.Context, code string) (*domain.Organization, error)

	// BiasMap returns every organization keyed by code. The orchestrator
	// caches this once per run to avoid a store round-trip per tender.
	BiasMap(ctx context.Context) (map[string]domain.Organization, error)

	// SetBias updates an organization's score bias.
	SetBias(ctx context.Context, code string, score int) error
}
