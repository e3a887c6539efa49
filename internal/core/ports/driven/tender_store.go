package driven

import (
	"context"

	"github.com/atacama-labs/tenderwatch/internal/core/domain"
)

// TenderStore persists tender records idempotently.
type TenderStore interface {
	// Upsert stores a single record, creating referenced organization and
	// state rows as needed. Listing fields are always refreshed; detail
	// fields only when the record carries full detail. A tender in the
	// ignored stage is promoted to candidate when the record says so;
	// no other stage transition happens automatically.
	Upsert(ctx context.Context, rec domain.TenderRecord) error

	// UpsertBatch applies the same field rules to a whole day of records
	// in one transaction. Organizations and states must be pre-deduplicated
	// by the caller; they are flushed before the tender loop so foreign
	// keys resolve. A failure rolls back the entire batch and is returned.
	UpsertBatch(ctx context.Context, recs []domain.TenderRecord, orgs []domain.Organization, states []domain.State) error
}
