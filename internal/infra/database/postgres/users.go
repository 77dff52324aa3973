package postgres

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/brvnobarreto/activity-log-controller/internal/domain"
)

const userCols = "id, login, role, pass_hash, created_at"

func (r *PGRepo) scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Login, &u.Role, &u.PassHash, &u.CreatedAt)
	return u, err
}

func (r *PGRepo) CreateUser(ctx context.Context, login string, passHash []byte, role domain.Role) (domain.User, error) {
	q := r.qb().Insert(r.tbl("users")).
		Columns("login", "pass_hash", "role").
		Values(login, passHash, role).
		Suffix("RETURNING " + userCols)

	sqlStr, args, _ := q.ToSql()
	r.logSQL("CreateUser", sqlStr, args)

	start := time.Now()
	u, err := r.scanUser(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		r.logger.Printf("CreateUser scan error after %s: %v", time.Since(start), err)
		return domain.User{}, err
	}
	r.logger.Printf("CreateUser ok in %s id=%s login=%s role=%s", time.Since(start), u.ID, u.Login, u.Role)
	return u, nil
}

func (r *PGRepo) UserByLogin(ctx context.Context, login string) (domain.User, error) {
	q := r.qb().Select(userCols).
		From(r.tbl("users")).
		Where(sq.Eq{"login": login})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("UserByLogin", sqlStr, args)

	u, err := r.scanUser(r.pool.QueryRow(ctx, sqlStr, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		r.logger.Printf("UserByLogin scan error: %v", err)
		return domain.User{}, err
	}
	return u, nil
}

func (r *PGRepo) UserByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	q := r.qb().Select(userCols).
		From(r.tbl("users")).
		Where(sq.Eq{"id": id})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("UserByID", sqlStr, args)

	u, err := r.scanUser(r.pool.QueryRow(ctx, sqlStr, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		r.logger.Printf("UserByID scan error: %v", err)
		return domain.User{}, err
	}
	return u, nil
}

// Список сотрудников для экрана супервизора.
func (r *PGRepo) UsersList(ctx context.Context) ([]domain.User, error) {
	q := r.qb().Select(userCols).
		From(r.tbl("users")).
		OrderBy("login ASC")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("UsersList", sqlStr, args)

	start := time.Now()
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("UsersList query error after %s: %v", time.Since(start), err)
		return nil, err
	}
	defer rows.Close()

	var res []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Login, &u.Role, &u.PassHash, &u.CreatedAt); err != nil {
			r.logger.Printf("UsersList scan error: %v", err)
			return nil, err
		}
		res = append(res, u)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("UsersList rows error: %v", err)
		return nil, err
	}
	r.logger.Printf("UsersList ok in %s count=%d", time.Since(start), len(res))
	return res, nil
}

func (r *PGRepo) UpdateUserRole(ctx context.Context, id domain.UserID, role domain.Role) (domain.User, error) {
	q := r.qb().Update(r.tbl("users")).
		Set("role", role).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + userCols)

	sqlStr, args, _ := q.ToSql()
	r.logSQL("UpdateUserRole", sqlStr, args)

	start := time.Now()
	u, err := r.scanUser(r.pool.QueryRow(ctx, sqlStr, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		r.logger.Printf("UpdateUserRole scan error after %s: %v", time.Since(start), err)
		return domain.User{}, err
	}
	r.logger.Printf("UpdateUserRole ok in %s id=%s role=%s", time.Since(start), u.ID, u.Role)
	return u, nil
}

func (r *PGRepo) DeleteUser(ctx context.Context, id domain.UserID) error {
	q := r.qb().Delete(r.tbl("users")).
		Where(sq.Eq{"id": id})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("DeleteUser", sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("DeleteUser exec error after %s: %v", time.Since(start), err)
		return err
	}
	if tag.RowsAffected() == 0 {
		r.logger.Printf("DeleteUser no rows affected in %s", time.Since(start))
		return domain.ErrNotFound
	}
	r.logger.Printf("DeleteUser ok in %s id=%s", time.Since(start), id)
	return nil
}
