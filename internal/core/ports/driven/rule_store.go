package driven

import (
	"context"

	"github.com/atacama-labs/tenderwatch/internal/core/domain"
)

// RuleStore provides access to the keyword rules the scoring engine
// mirrors in memory.
type RuleStore interface {
	// List returns all rules.
	List(ctx context.Context) ([]domain.KeywordRule, error)

	// ReplaceAll swaps the full rule set in one transaction.
	ReplaceAll(ctx context.Context, rules []domain.KeywordRule) error
}
