package postgres

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/brvnobarreto/activity-log-controller/internal/domain"
)

const actCols = `id, fiscal_id, description, severity, status, lat, lon, address,
has_photo, photo_mime, photo_size, storage_key, content_sha256, version, created_at, updated_at`

func scanActivity(row pgx.Row) (domain.Activity, error) {
	var a domain.Activity
	err := row.Scan(
		&a.ID, &a.FiscalID, &a.Description, &a.Severity, &a.Status,
		&a.Location.Lat, &a.Location.Lon, &a.Address,
		&a.HasPhoto, &a.PhotoMIME, &a.PhotoSize, &a.StorageKey, &a.SHA256,
		&a.Version, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

func (r *PGRepo) CreateActivity(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	q := r.qb().Insert(r.tbl("activities")).
		Columns("fiscal_id", "description", "severity", "status", "lat", "lon", "address",
			"has_photo", "photo_mime", "photo_size", "storage_key", "content_sha256").
		Values(a.FiscalID, a.Description, a.Severity, a.Status, a.Location.Lat, a.Location.Lon, a.Address,
			a.HasPhoto, a.PhotoMIME, a.PhotoSize, a.StorageKey, a.SHA256).
		Suffix("RETURNING " + actCols)

	sqlStr, args, _ := q.ToSql()
	r.logSQL("CreateActivity", sqlStr, args)

	start := time.Now()
	out, err := scanActivity(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		r.logger.Printf("CreateActivity scan error after %s: %v", time.Since(start), err)
		return domain.Activity{}, err
	}
	r.logger.Printf("CreateActivity ok in %s id=%s severity=%s", time.Since(start), out.ID, out.Severity)
	return out, nil
}

func (r *PGRepo) ActivityByID(ctx context.Context, id domain.ActivityID) (domain.Activity, error) {
	q := r.qb().Select(actCols).
		From(r.tbl("activities")).
		Where(sq.Eq{"id": id})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("ActivityByID", sqlStr, args)

	a, err := scanActivity(r.pool.QueryRow(ctx, sqlStr, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Activity{}, domain.ErrNotFound
	}
	if err != nil {
		r.logger.Printf("ActivityByID scan error: %v", err)
		return domain.Activity{}, err
	}
	return a, nil
}

// Список с учётом роли: фискал видит только свои записи, супервизор — по
// фильтру (в т.ч. по логину конкретного фискала).
func (r *PGRepo) ActivitiesList(ctx context.Context, me domain.User, f domain.ListFilter) ([]domain.Activity, error) {
	acts := r.tbl("activities") + " a"
	users := r.tbl("users") + " u"

	sb := r.qb().Select(
		"a.id", "a.fiscal_id", "a.description", "a.severity", "a.status",
		"a.lat", "a.lon", "a.address",
		"a.has_photo", "a.photo_mime", "a.photo_size", "a.storage_key", "a.content_sha256",
		"a.version", "a.created_at", "a.updated_at",
	).From(acts).
		Join(users + " ON u.id = a.fiscal_id")

	if !me.IsSupervisor() {
		sb = sb.Where(sq.Eq{"a.fiscal_id": me.ID})
	} else if f.FiscalLogin != "" {
		sb = sb.Where(sq.Eq{"u.login": f.FiscalLogin})
	}

	if f.Status != "" {
		sb = sb.Where(sq.Eq{"a.status": f.Status})
	}
	if f.Severity != "" {
		sb = sb.Where(sq.Eq{"a.severity": f.Severity})
	}
	if !f.From.IsZero() {
		sb = sb.Where(sq.GtOrEq{"a.created_at": f.From})
	}
	if !f.To.IsZero() {
		sb = sb.Where(sq.LtOrEq{"a.created_at": f.To})
	}

	switch f.Sort {
	case domain.SortByCreatedAsc:
		sb = sb.OrderBy("a.created_at ASC", "a.id ASC")
	case domain.SortBySeverityDesc:
		// high > medium > low
		sb = sb.OrderBy(
			"CASE a.severity WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END ASC",
			"a.created_at DESC",
		)
	case domain.SortByCreatedDesc, "":
		sb = sb.OrderBy("a.created_at DESC", "a.id DESC")
	}

	// кейсет-пагинация: направление сравнения согласовано с сортировкой
	// (для сортировки по серьёзности курсор не поддерживается — его
	// отсекает транспорт)
	if !f.AfterCreated.IsZero() || f.AfterID != uuid.Nil {
		if f.Sort == domain.SortByCreatedAsc {
			sb = sb.Where(
				sq.Or{
					sq.Gt{"a.created_at": f.AfterCreated},
					sq.And{
						sq.Eq{"a.created_at": f.AfterCreated},
						sq.Gt{"a.id": f.AfterID},
					},
				},
			)
		} else {
			sb = sb.Where(
				sq.Or{
					sq.Lt{"a.created_at": f.AfterCreated},
					sq.And{
						sq.Eq{"a.created_at": f.AfterCreated},
						sq.Lt{"a.id": f.AfterID},
					},
				},
			)
		}
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	sb = sb.Limit(uint64(limit))

	sqlStr, args, _ := sb.ToSql()
	r.logSQL("ActivitiesList", sqlStr, args)

	start := time.Now()
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("ActivitiesList query error after %s: %v", time.Since(start), err)
		return nil, err
	}
	defer rows.Close()

	var res []domain.Activity
	for rows.Next() {
		var a domain.Activity
		if err := rows.Scan(
			&a.ID, &a.FiscalID, &a.Description, &a.Severity, &a.Status,
			&a.Location.Lat, &a.Location.Lon, &a.Address,
			&a.HasPhoto, &a.PhotoMIME, &a.PhotoSize, &a.StorageKey, &a.SHA256,
			&a.Version, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			r.logger.Printf("ActivitiesList scan error: %v", err)
			return nil, err
		}
		res = append(res, a)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("ActivitiesList rows error: %v", err)
		return nil, err
	}
	r.logger.Printf("ActivitiesList ok in %s count=%d", time.Since(start), len(res))
	return res, nil
}

// UpdateStatus поднимает версию и updated_at — пригодится для ETag-кеша.
func (r *PGRepo) UpdateStatus(ctx context.Context, id domain.ActivityID, st domain.Status) (domain.Activity, error) {
	q := r.qb().Update(r.tbl("activities")).
		SetMap(map[string]any{
			"status":     st,
			"version":    sq.Expr("version + 1"),
			"updated_at": sq.Expr("now()"),
		}).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + actCols)

	sqlStr, args, _ := q.ToSql()
	r.logSQL("UpdateStatus", sqlStr, args)

	start := time.Now()
	a, err := scanActivity(r.pool.QueryRow(ctx, sqlStr, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Activity{}, domain.ErrNotFound
	}
	if err != nil {
		r.logger.Printf("UpdateStatus scan error after %s: %v", time.Since(start), err)
		return domain.Activity{}, err
	}
	r.logger.Printf("UpdateStatus ok in %s id=%s status=%s", time.Since(start), a.ID, a.Status)
	return a, nil
}

func (r *PGRepo) DeleteActivity(ctx context.Context, id domain.ActivityID) error {
	q := r.qb().Delete(r.tbl("activities")).
		Where(sq.Eq{"id": id})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("DeleteActivity", sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("DeleteActivity exec error after %s: %v", time.Since(start), err)
		return err
	}
	if tag.RowsAffected() == 0 {
		r.logger.Printf("DeleteActivity no rows affected in %s", time.Since(start))
		return domain.ErrNotFound
	}
	r.logger.Printf("DeleteActivity ok in %s id=%s", time.Since(start), id)
	return nil
}

// StatusSummary — агрегат для отчёта супервизора: счётчики по паре
// (status, severity).
func (r *PGRepo) StatusSummary(ctx context.Context) ([]domain.SummaryRow, error) {
	q := r.qb().Select("status", "severity", "COUNT(*)").
		From(r.tbl("activities")).
		GroupBy("status", "severity").
		OrderBy("status ASC", "severity ASC")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("StatusSummary", sqlStr, args)

	start := time.Now()
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("StatusSummary query error after %s: %v", time.Since(start), err)
		return nil, err
	}
	defer rows.Close()

	var res []domain.SummaryRow
	for rows.Next() {
		var row domain.SummaryRow
		if err := rows.Scan(&row.Status, &row.Severity, &row.Count); err != nil {
			r.logger.Printf("StatusSummary scan error: %v", err)
			return nil, err
		}
		res = append(res, row)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("StatusSummary rows error: %v", err)
		return nil, err
	}
	r.logger.Printf("StatusSummary ok in %s rows=%d", time.Since(start), len(res))
	return res, nil
}
