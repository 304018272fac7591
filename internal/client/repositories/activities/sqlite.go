package activities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/worklog/internal/client/models"
	"github.com/dmitrijs2005/worklog/internal/common"
	"github.com/dmitrijs2005/worklog/internal/dbx"
)

const timeLayout = time.RFC3339Nano

const selectColumns = `id, tipo_atividade, descricao, inicio, fim, user_id, ano, mes, dia, horas_trabalhadas`

// SQLiteRepository implements Repository over a local SQLite database.
type SQLiteRepository struct {
	db  *sql.DB
	loc *time.Location
}

// NewSQLiteRepository returns a repository bound to db. loc is the reference
// timezone for the calendar fields; nil means UTC.
func NewSQLiteRepository(db *sql.DB, loc *time.Location) *SQLiteRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &SQLiteRepository{db: db, loc: loc}
}

// CreateSession inserts an open session inside a transaction that first
// checks the user has no open session.
func (r *SQLiteRepository) CreateSession(ctx context.Context, s models.NewSession) (models.ActivitySession, error) {
	if s.UserID == "" || !s.ActivityType.Valid() || s.StartedAt.IsZero() {
		return models.ActivitySession{}, fmt.Errorf("%w: invalid session", common.ErrBackendRejected)
	}

	year, month, day := models.CalendarDay(s.StartedAt, r.loc)
	out := models.ActivitySession{
		UserID:       s.UserID,
		ActivityType: s.ActivityType,
		Description:  s.Description,
		StartedAt:    s.StartedAt,
		Year:         year,
		Month:        month,
		Day:          day,
	}

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		open, err := findOpen(ctx, tx, s.UserID)
		if err != nil {
			return err
		}
		if open != nil {
			return fmt.Errorf("%w: user %q already has open session %d", common.ErrBackendRejected, s.UserID, open.ID)
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO atividades (tipo_atividade, descricao, inicio, user_id, ano, mes, dia)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			string(s.ActivityType), s.Description, s.StartedAt.Format(timeLayout), s.UserID, year, month, day)
		if err != nil {
			return unavailable("insert session", err)
		}

		out.ID, err = res.LastInsertId()
		if err != nil {
			return unavailable("last insert id", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrBackendRejected) || errors.Is(err, common.ErrBackendUnavailable) {
			return models.ActivitySession{}, err
		}
		return models.ActivitySession{}, unavailable("create session", err)
	}
	return out, nil
}

// CloseSession stamps the end of an open session.
func (r *SQLiteRepository) CloseSession(ctx context.Context, id int64, endedAt time.Time, durationHours float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE atividades SET fim = ?, horas_trabalhadas = ? WHERE id = ? AND fim IS NULL`,
		endedAt.Format(timeLayout), durationHours, id)
	if err != nil {
		return unavailable("close session", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("rows affected", err)
	}
	if n != 1 {
		return fmt.Errorf("%w: session %d not found or already closed", common.ErrBackendRejected, id)
	}
	return nil
}

// FindOpenSession returns the newest open session of userID, or nil.
func (r *SQLiteRepository) FindOpenSession(ctx context.Context, userID string) (*models.ActivitySession, error) {
	return findOpen(ctx, r.db, userID)
}

// ListSessions returns sessions of userID ordered by id descending.
func (r *SQLiteRepository) ListSessions(ctx context.Context, userID string, limit int) ([]models.ActivitySession, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM atividades WHERE user_id = ? ORDER BY id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, unavailable("list sessions", err)
	}
	defer rows.Close()

	var result []models.ActivitySession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list sessions", err)
	}
	return result, nil
}

func findOpen(ctx context.Context, db dbx.DBTX, userID string) (*models.ActivitySession, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM atividades WHERE user_id = ? AND fim IS NULL ORDER BY id DESC LIMIT 1`, userID)

	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(sc scanner) (models.ActivitySession, error) {
	var (
		s        models.ActivitySession
		kind     string
		inicio   string
		fim      sql.NullString
		duration sql.NullFloat64
	)

	err := sc.Scan(&s.ID, &kind, &s.Description, &inicio, &fim, &s.UserID, &s.Year, &s.Month, &s.Day, &duration)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s, err
		}
		return s, unavailable("scan session", err)
	}

	s.ActivityType = models.ActivityType(kind)
	if s.StartedAt, err = time.Parse(timeLayout, inicio); err != nil {
		return s, fmt.Errorf("%w: session %d: bad inicio %q", common.ErrBackendRejected, s.ID, inicio)
	}
	if fim.Valid {
		ended, err := time.Parse(timeLayout, fim.String)
		if err != nil {
			return s, fmt.Errorf("%w: session %d: bad fim %q", common.ErrBackendRejected, s.ID, fim.String)
		}
		s.EndedAt = &ended
	}
	if duration.Valid {
		h := duration.Float64
		s.DurationHours = &h
	}
	return s, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", common.ErrBackendUnavailable, op, err)
}
