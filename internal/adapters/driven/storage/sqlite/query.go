package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/atacama-labs/tenderwatch/internal/core/domain"
	"github.com/atacama-labs/tenderwatch/internal/core/ports/driven"
)

// queryRepository implements driven.QueryRepository with squirrel-built
// read queries over the tenders table.
type queryRepository struct {
	store *Store
}

var _ driven.QueryRepository = (*queryRepository)(nil)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// tenderColumns is the projection shared by the list queries.
var tenderColumns = []string{
	"id", "code", "name", "description", "product_text",
	"score", "score_reasons", "stage", "state_code", "org_code",
	"published_at", "starts_at", "closes_at", "awarded_at",
	"has_detail", "created_at", "updated_at",
}

func (r *queryRepository) ListByStage(ctx context.Context, stage domain.Stage, limit, offset uint64) ([]domain.Tender, error) {
	if !stage.Valid() {
		return nil, fmt.Errorf("%w: unknown stage %q", domain.ErrInvalidInput, stage)
	}

	query := qb.Select(tenderColumns...).
		From("tenders").
		Where(sq.Eq{"stage": string(stage)}).
		OrderBy("score DESC", "closes_at ASC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	return r.listTenders(ctx, query)
}

// ListActive returns tenders still open upstream, soonest deadline first.
func (r *queryRepository) ListActive(ctx context.Context) ([]domain.Tender, error) {
	query := qb.Select(tenderColumns...).
		From("tenders").
		Where(sq.Eq{"state_code": domain.StateActive}).
		OrderBy("closes_at ASC").
		Limit(200)

	return r.listTenders(ctx, query)
}

func (r *queryRepository) MoveStage(ctx context.Context, code string, stage domain.Stage) error {
	if !stage.Valid() {
		return fmt.Errorf("%w: unknown stage %q", domain.ErrInvalidInput, stage)
	}

	sqlStr, args, err := qb.Update("tenders").
		Set("stage", string(stage)).
		Where(sq.Eq{"code": code}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building stage update: %w", err)
	}

	res, err := r.store.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("moving tender %s to %s: %w", code, stage, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking stage update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("tender %s: %w", code, domain.ErrNotFound)
	}
	return nil
}

func (r *queryRepository) GetByCode(ctx context.Context, code string) (*domain.TenderDetail, error) {
	sqlStr, args, err := qb.Select(
		"t.id", "t.code", "t.name", "t.description", "t.product_text",
		"t.score", "t.score_reasons", "t.stage", "t.state_code", "t.org_code",
		"t.published_at", "t.starts_at", "t.closes_at", "t.awarded_at",
		"t.has_detail", "t.created_at", "t.updated_at",
		"o.name", "o.score", "s.description",
	).
		From("tenders t").
		LeftJoin("organizations o ON o.code = t.org_code").
		LeftJoin("states s ON s.code = t.state_code").
		Where(sq.Eq{"t.code": code}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building detail query: %w", err)
	}

	var (
		detail      domain.TenderDetail
		stage       string
		stateCode   sql.NullInt64
		orgCode     sql.NullString
		description sql.NullString
		productText sql.NullString
		name        sql.NullString
		published   sql.NullString
		starts      sql.NullString
		closes      sql.NullString
		awarded     sql.NullString
		created     sql.NullString
		updated     sql.NullString
		hasDetail   int
		orgName     sql.NullString
		orgScore    sql.NullInt64
		stateDesc   sql.NullString
	)
	err = r.store.db.QueryRowContext(ctx, sqlStr, args...).Scan(
		&detail.ID, &detail.Code, &name, &description, &productText,
		&detail.Score, &detail.ScoreReasons, &stage, &stateCode, &orgCode,
		&published, &starts, &closes, &awarded,
		&hasDetail, &created, &updated,
		&orgName, &orgScore, &stateDesc,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tender %s: %w", code, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting tender %s: %w", code, err)
	}

	detail.Name = name.String
	detail.Description = description.String
	detail.ProductText = productText.String
	detail.Stage = domain.Stage(stage)
	detail.StateCode = scanIntPtr(stateCode)
	if orgCode.Valid {
		detail.OrgCode = &orgCode.String
	}
	detail.PublishedAt = scanTime(published)
	detail.StartsAt = scanTime(starts)
	detail.ClosesAt = scanTime(closes)
	detail.AwardedAt = scanTime(awarded)
	detail.HasDetail = hasDetail != 0
	if t := scanTime(created); t != nil {
		detail.CreatedAt = *t
	}
	if t := scanTime(updated); t != nil {
		detail.UpdatedAt = *t
	}
	detail.OrgName = orgName.String
	detail.OrgScore = int(orgScore.Int64)
	if stateDesc.Valid {
		detail.StateDescription = stateDesc.String
	} else if detail.StateCode != nil {
		detail.StateDescription = domain.StateDescription(*detail.StateCode, "")
	}

	return &detail, nil
}

func (r *queryRepository) listTenders(ctx context.Context, query sq.SelectBuilder) ([]domain.Tender, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building tender query: %w", err)
	}

	rows, err := r.store.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tenders: %w", err)
	}
	defer rows.Close()

	var tenders []domain.Tender
	for rows.Next() {
		tender, err := scanTender(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning tender: %w", err)
		}
		tenders = append(tenders, tender)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tenders: %w", err)
	}
	return tenders, nil
}

func scanTender(rows *sql.Rows) (domain.Tender, error) {
	var (
		t           domain.Tender
		stage       string
		name        sql.NullString
		description sql.NullString
		productText sql.NullString
		stateCode   sql.NullInt64
		orgCode     sql.NullString
		published   sql.NullString
		starts      sql.NullString
		closes      sql.NullString
		awarded     sql.NullString
		created     sql.NullString
		updated     sql.NullString
		hasDetail   int
	)
	err := rows.Scan(
		&t.ID, &t.Code, &name, &description, &productText,
		&t.Score, &t.ScoreReasons, &stage, &stateCode, &orgCode,
		&published, &starts, &closes, &awarded,
		&hasDetail, &created, &updated,
	)
	if err != nil {
		return domain.Tender{}, err
	}

	t.Name = name.String
	t.Description = description.String
	t.ProductText = productText.String
	t.Stage = domain.Stage(stage)
	t.StateCode = scanIntPtr(stateCode)
	if orgCode.Valid {
		t.OrgCode = &orgCode.String
	}
	t.PublishedAt = scanTime(published)
	t.StartsAt = scanTime(starts)
	t.ClosesAt = scanTime(closes)
	t.AwardedAt = scanTime(awarded)
	t.HasDetail = hasDetail != 0
	if ts := scanTime(created); ts != nil {
		t.CreatedAt = *ts
	}
	if ts := scanTime(updated); ts != nil {
		t.UpdatedAt = *ts
	}
	return t, nil
}
