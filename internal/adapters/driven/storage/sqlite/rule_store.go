package sqlite

import (
	"context"
	"fmt"

	"github.com/atacama-labs/tenderwatch/internal/core/domain"
	"github.com/atacama-labs/tenderwatch/internal/core/ports/driven"
)

// ruleStore implements driven.RuleStore.
type ruleStore struct {
	store *Store
}

var _ driven.RuleStore = (*ruleStore)(nil)

func (s *ruleStore) List(ctx context.Context) ([]domain.KeywordRule, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, phrase, category, title_weight, description_weight, product_weight
		FROM keyword_rules
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	defer rows.Close()

	var rules []domain.KeywordRule
	for rows.Next() {
		var r domain.KeywordRule
		if err := rows.Scan(&r.ID, &r.Phrase, &r.Category,
			&r.TitleWeight, &r.DescriptionWeight, &r.ProductWeight); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rules: %w", err)
	}
	return rules, nil
}

// ReplaceAll swaps the full rule set atomically so a reload never
// observes a half-imported table.
func (s *ruleStore) ReplaceAll(ctx context.Context, rules []domain.KeywordRule) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rule replace: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM keyword_rules"); err != nil {
		tx.Rollback()
		return fmt.Errorf("clearing rules: %w", err)
	}

	for _, r := range rules {
		if r.Phrase == "" {
			continue
		}
		category := r.Category
		if category == "" {
			category = "general"
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO keyword_rules
				(phrase, category, title_weight, description_weight, product_weight)
			VALUES (?, ?, ?, ?, ?)
		`, r.Phrase, category, r.TitleWeight, r.DescriptionWeight, r.ProductWeight)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting rule %q: %w", r.Phrase, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing rule replace: %w", err)
	}
	return nil
}
