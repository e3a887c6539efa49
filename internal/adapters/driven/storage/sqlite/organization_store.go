package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atacama-labs/tenderwatch/internal/core/domain"
	"github.com/atacama-labs/tenderwatch/internal/core/ports/driven"
)

// organizationStore implements driven.OrganizationStore.
type organizationStore struct {
	store *Store
}

var _ driven.OrganizationStore = (*organizationStore)(nil)

func (s *organizationStore) Get(ctx context.Context, code string) (*domain.Organization, error) {
	var org domain.Organization
	err := s.store.db.QueryRowContext(ctx,
		"SELECT code, name, score FROM organizations WHERE code = ?", code,
	).Scan(&org.Code, &org.Name, &org.Score)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("organization %s: %w", code, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting organization %s: %w", code, err)
	}
	return &org, nil
}

func (s *organizationStore) BiasMap(ctx context.Context) (map[string]domain.Organization, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT code, name, score FROM organizations")
	if err != nil {
		return nil, fmt.Errorf("loading organizations: %w", err)
	}
	defer rows.Close()

	orgs := make(map[string]domain.Organization)
	for rows.Next() {
		var org domain.Organization
		if err := rows.Scan(&org.Code, &org.Name, &org.Score); err != nil {
			return nil, fmt.Errorf("scanning organization: %w", err)
		}
		orgs[org.Code] = org
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating organizations: %w", err)
	}
	return orgs, nil
}

func (s *organizationStore) SetBias(ctx context.Context, code string, score int) error {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE organizations SET score = ? WHERE code = ?", score, code)
	if err != nil {
		return fmt.Errorf("setting bias for %s: %w", code, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking bias update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("organization %s: %w", code, domain.ErrNotFound)
	}
	return nil
}
