package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/atacama-labs/tenderwatch/internal/core/domain"
	"github.com/atacama-labs/tenderwatch/internal/core/ports/driven"
	"github.com/atacama-labs/tenderwatch/internal/logger"
)

// tenderStore implements driven.TenderStore.
type tenderStore struct {
	store *Store
}

var _ driven.TenderStore = (*tenderStore)(nil)

// Upsert stores one record inside a single transaction: referenced
// organization and state rows are created first so the foreign keys
// resolve, then the tender row is inserted or updated under the
// field-level rules. Any failure rolls the whole transaction back.
func (s *tenderStore) Upsert(ctx context.Context, rec domain.TenderRecord) error {
	if rec.Code == "" {
		logger.Warnf("refusing to store tender without external code")
		return domain.ErrMissingCode
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}

	if err := ensureOrganization(ctx, tx, rec); err != nil {
		tx.Rollback()
		return fmt.Errorf("ensuring organization: %w", err)
	}
	if err := ensureState(ctx, tx, rec); err != nil {
		tx.Rollback()
		return fmt.Errorf("ensuring state: %w", err)
	}
	if err := upsertTender(ctx, tx, rec); err != nil {
		tx.Rollback()
		return fmt.Errorf("upserting tender %s: %w", rec.Code, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upsert %s: %w", rec.Code, err)
	}
	return nil
}

// UpsertBatch persists a whole day in one transaction. Organizations and
// states arrive pre-deduplicated and are flushed once before the tender
// loop. A failure rolls back the entire batch and is returned to the
// caller: losing a full day silently is not acceptable.
func (s *tenderStore) UpsertBatch(
	ctx context.Context,
	recs []domain.TenderRecord,
	orgs []domain.Organization,
	states []domain.State,
) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}

	for _, org := range orgs {
		if err := insertOrganization(ctx, tx, org.Code, org.Name); err != nil {
			tx.Rollback()
			return fmt.Errorf("flushing organization %s: %w", org.Code, err)
		}
	}
	for _, st := range states {
		if err := insertState(ctx, tx, st.Code, st.Description); err != nil {
			tx.Rollback()
			return fmt.Errorf("flushing state %d: %w", st.Code, err)
		}
	}

	for _, rec := range recs {
		if rec.Code == "" {
			logger.Warnf("skipping batch record without external code")
			continue
		}
		if err := upsertTender(ctx, tx, rec); err != nil {
			tx.Rollback()
			return fmt.Errorf("batch upsert %s: %w", rec.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

// ensureOrganization lazily creates the organization a detail record
// references. Listing records carry no trustworthy organization.
func ensureOrganization(ctx context.Context, tx *sql.Tx, rec domain.TenderRecord) error {
	if !rec.HasDetail || rec.OrgCode == "" {
		return nil
	}
	return insertOrganization(ctx, tx, rec.OrgCode, rec.OrgName)
}

// insertOrganization creates the row if unseen. The name is written only
// on first sighting; bias edits own the row afterwards.
func insertOrganization(ctx context.Context, tx *sql.Tx, code, name string) error {
	if name == "" {
		name = "Organismo desconocido"
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO organizations (code, name, score) VALUES (?, ?, 0)
		ON CONFLICT(code) DO NOTHING
	`, code, name)
	return err
}

func ensureState(ctx context.Context, tx *sql.Tx, rec domain.TenderRecord) error {
	if rec.StateCode == nil {
		return nil
	}
	return insertState(ctx, tx, *rec.StateCode, domain.StateDescription(*rec.StateCode, rec.StateName))
}

func insertState(ctx context.Context, tx *sql.Tx, code int, description string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO states (code, description) VALUES (?, ?)
		ON CONFLICT(code) DO NOTHING
	`, code, description)
	return err
}

// upsertTender applies the field-level update rules.
//
// Listing fields (name, state, dates, score, justification) are always
// refreshed. Detail fields (organization, description, product text, the
// has_detail flag) are refreshed only when the incoming record carries
// full detail, so a later partial re-listing never erases captured
// detail. The only automatic stage transition is ignored -> candidate.
func upsertTender(ctx context.Context, tx *sql.Tx, rec domain.TenderRecord) error {
	now := time.Now().UTC().Format(time.RFC3339)

	var (
		id    int64
		stage string
	)
	err := tx.QueryRowContext(ctx,
		"SELECT id, stage FROM tenders WHERE code = ?", rec.Code,
	).Scan(&id, &stage)

	if errors.Is(err, sql.ErrNoRows) {
		return insertTender(ctx, tx, rec, now)
	}
	if err != nil {
		return fmt.Errorf("looking up tender: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE tenders SET
			name = COALESCE(NULLIF(?, ''), name),
			state_code = ?,
			closes_at = COALESCE(?, closes_at),
			starts_at = ?,
			published_at = ?,
			awarded_at = ?,
			score = ?,
			score_reasons = ?,
			updated_at = ?
		WHERE id = ?
	`, rec.Name, nullInt(rec.StateCode), nullTime(rec.ClosesAt), nullTime(rec.StartsAt),
		nullTime(rec.PublishedAt), nullTime(rec.AwardedAt), rec.Score, rec.ScoreReasons,
		now, id)
	if err != nil {
		return fmt.Errorf("updating listing fields: %w", err)
	}

	if rec.HasDetail {
		_, err = tx.ExecContext(ctx, `
			UPDATE tenders SET
				org_code = ?,
				description = ?,
				product_text = ?,
				has_detail = 1
			WHERE id = ?
		`, nullString(rec.OrgCode), rec.Description, rec.ProductText, id)
		if err != nil {
			return fmt.Errorf("updating detail fields: %w", err)
		}
	}

	if domain.Stage(stage) == domain.StageIgnored && rec.Stage == domain.StageCandidate {
		_, err = tx.ExecContext(ctx,
			"UPDATE tenders SET stage = ? WHERE id = ?", string(domain.StageCandidate), id)
		if err != nil {
			return fmt.Errorf("promoting stage: %w", err)
		}
	}

	return nil
}

func insertTender(ctx context.Context, tx *sql.Tx, rec domain.TenderRecord, now string) error {
	stage := rec.Stage
	if !stage.Valid() {
		stage = domain.StageIgnored
	}

	// First sighting from a bare listing never populates detail fields.
	var orgCode, description, productText any
	if rec.HasDetail {
		orgCode = nullString(rec.OrgCode)
		description = rec.Description
		productText = rec.ProductText
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO tenders (
			code, name, description, product_text, score, score_reasons,
			stage, state_code, org_code,
			published_at, starts_at, closes_at, awarded_at,
			has_detail, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Code, rec.Name, description, productText, rec.Score, rec.ScoreReasons,
		string(stage), nullInt(rec.StateCode), orgCode,
		nullTime(rec.PublishedAt), nullTime(rec.StartsAt), nullTime(rec.ClosesAt),
		nullTime(rec.AwardedAt), boolToInt(rec.HasDetail), now, now)
	if err != nil {
		return fmt.Errorf("inserting tender: %w", err)
	}
	return nil
}
