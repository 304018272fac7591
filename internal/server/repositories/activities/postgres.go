// Package activities provides the PostgreSQL-backed repository for
// activity sessions.
package activities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/worklog/internal/common"
	"github.com/dmitrijs2005/worklog/internal/dbx"
	"github.com/dmitrijs2005/worklog/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation = "23505"
	openConstraint  = "uq_atividades_open"
)

const selectColumns = `id, tipo_atividade, descricao, inicio, fim, user_id, ano, mes, dia, horas_trabalhadas`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts an open session and sets a.ID from the generated key. An
// insert refused by the one-open-session index yields
// common.ErrSessionInProgress.
func (r *PostgresRepository) Create(ctx context.Context, a *models.Activity) error {
	query := `
		INSERT INTO atividades (tipo_atividade, descricao, inicio, user_id, ano, mes, dia)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		a.ActivityType, a.Description, a.StartedAt, a.UserID, a.Year, a.Month, a.Day,
	).Scan(&a.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == openConstraint {
			return fmt.Errorf("%w: user %s", common.ErrSessionInProgress, a.UserID)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Close records the end of an open session. It returns common.ErrorNotFound
// when id does not exist or is already closed.
func (r *PostgresRepository) Close(ctx context.Context, id int64, endedAt time.Time, durationHours float64) error {
	query := `UPDATE atividades SET fim = $2, horas_trabalhadas = $3 WHERE id = $1 AND fim IS NULL`

	res, err := r.db.ExecContext(ctx, query, id, endedAt, durationHours)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// FindOpen returns the user's open session or common.ErrorNotFound.
func (r *PostgresRepository) FindOpen(ctx context.Context, userID string) (*models.Activity, error) {
	query := `SELECT ` + selectColumns + ` FROM atividades WHERE user_id = $1 AND fim IS NULL ORDER BY id DESC LIMIT 1`

	a, err := scanActivity(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

// List returns up to limit sessions of userID, newest first. A non-positive
// limit returns all of them.
func (r *PostgresRepository) List(ctx context.Context, userID string, limit int) ([]*models.Activity, error) {
	if limit <= 0 {
		query := `SELECT ` + selectColumns + ` FROM atividades WHERE user_id = $1 ORDER BY id DESC`
		return r.query(ctx, query, userID)
	}
	query := `SELECT ` + selectColumns + ` FROM atividades WHERE user_id = $1 ORDER BY id DESC LIMIT $2`
	return r.query(ctx, query, userID, limit)
}

// ListMonth returns the sessions of userID booked in the given calendar
// month, oldest first.
func (r *PostgresRepository) ListMonth(ctx context.Context, userID string, year, month int) ([]*models.Activity, error) {
	query := `SELECT ` + selectColumns + ` FROM atividades WHERE user_id = $1 AND ano = $2 AND mes = $3 ORDER BY inicio, id`
	return r.query(ctx, query, userID, year, month)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.Activity, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select sessions: %w", err)
	}
	defer rows.Close()

	var result []*models.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanActivity(s scanner) (*models.Activity, error) {
	var (
		a     models.Activity
		end   sql.NullTime
		hours sql.NullFloat64
	)
	if err := s.Scan(
		&a.ID, &a.ActivityType, &a.Description, &a.StartedAt, &end,
		&a.UserID, &a.Year, &a.Month, &a.Day, &hours,
	); err != nil {
		return nil, err
	}
	if end.Valid {
		t := end.Time
		a.EndedAt = &t
	}
	if hours.Valid {
		h := hours.Float64
		a.DurationHours = &h
	}
	return &a, nil
}
