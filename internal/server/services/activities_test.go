package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/worklog/internal/common"
	"github.com/dmitrijs2005/worklog/internal/server/repositories/repomanager"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	brt     = time.FixedZone("BRT", -3*60*60)
	columns = []string{"id", "tipo_atividade", "descricao", "inicio", "fim", "user_id", "ano", "mes", "dia", "horas_trabalhadas"}
)

func newActivitySvc(t *testing.T) (*ActivityService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewActivityService(db, repomanager.NewPostgresRepositoryManager(), brt), mock
}

func TestActivityService_Create(t *testing.T) {
	svc, mock := newActivitySvc(t)

	// 01:30 UTC on March 1st is still February 29th in BRT
	start := time.Date(2024, 3, 1, 1, 30, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM atividades WHERE user_id = \$1 AND fim IS NULL`).
		WithArgs("ana").
		WillReturnRows(sqlmock.NewRows(columns))
	mock.ExpectQuery(`INSERT INTO atividades`).
		WithArgs("Reuniões", "daily", start, "ana", 2024, 2, 29).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectCommit()

	a, err := svc.Create(context.Background(), " ana ", "Reuniões", "daily", start)
	require.NoError(t, err)
	assert.Equal(t, int64(7), a.ID)
	assert.Equal(t, []int{2024, 2, 29}, []int{a.Year, a.Month, a.Day})
	assert.True(t, a.IsOpen())
}

func TestActivityService_Create_RejectsUnknownActivityType(t *testing.T) {
	svc, _ := newActivitySvc(t)

	_, err := svc.Create(context.Background(), "ana", "Not A Category", "", time.Now())
	assert.ErrorIs(t, err, common.ErrUnknownActivityType)

	_, err = svc.Create(context.Background(), "ana", "reuniões", "", time.Now())
	assert.ErrorIs(t, err, common.ErrUnknownActivityType)
}

func TestActivityService_Create_RejectsSecondOpenSession(t *testing.T) {
	svc, mock := newActivitySvc(t)
	start := time.Date(2024, 3, 4, 13, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM atividades WHERE user_id = \$1 AND fim IS NULL`).
		WithArgs("ana").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(42), "Cadastro", "", start, nil, "ana", 2024, 3, 4, nil))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), "ana", "Reuniões", "", start.Add(time.Hour))
	assert.ErrorIs(t, err, common.ErrSessionInProgress)
	assert.ErrorContains(t, err, "session 42")
}

func TestActivityService_Create_ConcurrentInsertLosesToOpenIndex(t *testing.T) {
	svc, mock := newActivitySvc(t)
	start := time.Date(2024, 3, 4, 13, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM atividades WHERE user_id = \$1 AND fim IS NULL`).
		WithArgs("ana").
		WillReturnRows(sqlmock.NewRows(columns))
	mock.ExpectQuery(`INSERT INTO atividades`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uq_atividades_open"})
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), "ana", "Reuniões", "", start)
	assert.ErrorIs(t, err, common.ErrSessionInProgress)
}

func TestActivityService_Create_DBErrorRollsBack(t *testing.T) {
	svc, mock := newActivitySvc(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM atividades`).WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), "ana", "Reuniões", "", time.Now())
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NotErrorIs(t, err, common.ErrSessionInProgress)
}

func TestActivityService_Create_Validation(t *testing.T) {
	svc, _ := newActivitySvc(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "", "Reuniões", "", time.Now())
	assert.ErrorIs(t, err, common.ErrEmptyField)
	_, err = svc.Create(ctx, "ana", "  ", "", time.Now())
	assert.ErrorIs(t, err, common.ErrEmptyField)
	_, err = svc.Create(ctx, "ana", "Reuniões", "", time.Time{})
	assert.ErrorIs(t, err, common.ErrEmptyField)
}

func TestActivityService_Close(t *testing.T) {
	end := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)

	t.Run("ok", func(t *testing.T) {
		svc, mock := newActivitySvc(t)
		mock.ExpectExec(`UPDATE atividades SET fim`).WithArgs(int64(42), end, 1.5).WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, svc.Close(context.Background(), 42, end, 1.5))
	})

	t.Run("already closed", func(t *testing.T) {
		svc, mock := newActivitySvc(t)
		mock.ExpectExec(`UPDATE atividades SET fim`).WillReturnResult(sqlmock.NewResult(0, 0))
		err := svc.Close(context.Background(), 42, end, 1.5)
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("negative duration", func(t *testing.T) {
		svc, _ := newActivitySvc(t)
		assert.ErrorIs(t, svc.Close(context.Background(), 42, end, -0.1), ErrNegativeDuration)
	})

	t.Run("zero end", func(t *testing.T) {
		svc, _ := newActivitySvc(t)
		assert.ErrorIs(t, svc.Close(context.Background(), 42, time.Time{}, 1), common.ErrEmptyField)
	})
}

func TestActivityService_FindOpen(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		svc, mock := newActivitySvc(t)
		mock.ExpectQuery(`FROM atividades WHERE user_id = \$1 AND fim IS NULL`).WillReturnRows(sqlmock.NewRows(columns))

		a, err := svc.FindOpen(context.Background(), "ana")
		require.NoError(t, err)
		assert.Nil(t, a)
	})

	t.Run("found", func(t *testing.T) {
		svc, mock := newActivitySvc(t)
		start := time.Date(2024, 3, 4, 13, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`FROM atividades WHERE user_id = \$1 AND fim IS NULL`).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(int64(42), "Cadastro", "", start, nil, "ana", 2024, 3, 4, nil))

		a, err := svc.FindOpen(context.Background(), "ana")
		require.NoError(t, err)
		require.NotNil(t, a)
		assert.Equal(t, int64(42), a.ID)
	})

	t.Run("db error", func(t *testing.T) {
		svc, mock := newActivitySvc(t)
		mock.ExpectQuery(`FROM atividades`).WillReturnError(sql.ErrConnDone)

		_, err := svc.FindOpen(context.Background(), "ana")
		assert.ErrorIs(t, err, sql.ErrConnDone)
	})

	t.Run("blank user", func(t *testing.T) {
		svc, _ := newActivitySvc(t)
		_, err := svc.FindOpen(context.Background(), " ")
		assert.ErrorIs(t, err, common.ErrEmptyField)
	})
}

func TestActivityService_List(t *testing.T) {
	svc, mock := newActivitySvc(t)
	mock.ExpectQuery(`FROM atividades WHERE user_id = \$1 ORDER BY id DESC LIMIT \$2`).
		WithArgs("ana", 3).
		WillReturnRows(sqlmock.NewRows(columns))

	items, err := svc.List(context.Background(), "ana", 3)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = svc.List(context.Background(), "", 3)
	assert.ErrorIs(t, err, common.ErrEmptyField)
}
