package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/atacama-labs/tenderwatch/internal/core/domain"
	"github.com/atacama-labs/tenderwatch/internal/core/ports/driven"
)

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

func (s *runStore) Record(ctx context.Context, run *domain.IngestRun) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO ingest_runs
			(id, started_at, ended_at, success, error,
			 listings, details, pending, omitted, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.EndedAt.UTC().Format(time.RFC3339),
		boolToInt(run.Success), run.Error,
		run.Stats.Listings, run.Stats.DetailsFetched, run.Stats.DetailsPending,
		run.Stats.Omitted, run.Stats.Errors)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", run.ID, err)
	}
	return nil
}

func (s *runStore) Recent(ctx context.Context, limit int) ([]domain.IngestRun, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, started_at, ended_at, success, error,
		       listings, details, pending, omitted, errors
		FROM ingest_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.IngestRun
	for rows.Next() {
		var (
			run            domain.IngestRun
			started, ended string
			success        int
		)
		if err := rows.Scan(&run.ID, &started, &ended, &success, &run.Error,
			&run.Stats.Listings, &run.Stats.DetailsFetched, &run.Stats.DetailsPending,
			&run.Stats.Omitted, &run.Stats.Errors); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.Success = success != 0
		if t, err := time.Parse(time.RFC3339, started); err == nil {
			run.StartedAt = t
		}
		if t, err := time.Parse(time.RFC3339, ended); err == nil {
			run.EndedAt = t
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// Prune deletes everything except the newest keep runs.
func (s *runStore) Prune(ctx context.Context, keep int) error {
	if keep <= 0 {
		keep = 50
	}
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM ingest_runs
		WHERE id NOT IN (
			SELECT id FROM ingest_runs ORDER BY started_at DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning runs: %w", err)
	}
	return nil
}
