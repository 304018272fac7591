// Package services contains server-side business logic: recording activity
// sessions and exporting monthly reports.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/worklog/internal/common"
	"github.com/dmitrijs2005/worklog/internal/dbx"
	"github.com/dmitrijs2005/worklog/internal/server/models"
	"github.com/dmitrijs2005/worklog/internal/server/repositories/repomanager"
)

var (
	ErrNegativeDuration = errors.New("duration must not be negative")
	ErrInvalidPeriod    = errors.New("invalid report period")
)

// ActivityService records sessions. A user has at most one open session;
// Create enforces that inside a transaction.
type ActivityService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	loc         *time.Location
}

// NewActivityService constructs an ActivityService. Calendar fields of new
// sessions are derived in loc.
func NewActivityService(db *sql.DB, m repomanager.RepositoryManager, loc *time.Location) *ActivityService {
	return &ActivityService{db: db, repomanager: m, loc: loc}
}

// Create opens a session for userID. It fails with common.ErrSessionInProgress
// when the user already has an open one and with common.ErrUnknownActivityType
// for a category outside common.ActivityTypeNames.
func (s *ActivityService) Create(ctx context.Context, userID, activityType, description string, startedAt time.Time) (*models.Activity, error) {
	userID, activityType = strings.TrimSpace(userID), strings.TrimSpace(activityType)
	if userID == "" || activityType == "" || startedAt.IsZero() {
		return nil, common.ErrEmptyField
	}
	if !common.IsActivityType(activityType) {
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownActivityType, activityType)
	}

	y, m, d := startedAt.In(s.loc).Date()
	a := &models.Activity{
		ActivityType: activityType,
		Description:  description,
		StartedAt:    startedAt,
		UserID:       userID,
		Year:         y,
		Month:        int(m),
		Day:          d,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Activities(tx)

		open, err := repo.FindOpen(ctx, userID)
		switch {
		case err == nil:
			return fmt.Errorf("%w: session %d", common.ErrSessionInProgress, open.ID)
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}

		return repo.Create(ctx, a)
	})
	if err != nil {
		return nil, fmt.Errorf("error creating session: %w", err)
	}

	return a, nil
}

// Close ends the open session id. Unknown or already closed ids yield
// common.ErrorNotFound.
func (s *ActivityService) Close(ctx context.Context, id int64, endedAt time.Time, durationHours float64) error {
	if durationHours < 0 {
		return ErrNegativeDuration
	}
	if endedAt.IsZero() {
		return common.ErrEmptyField
	}

	if err := s.repomanager.Activities(s.db).Close(ctx, id, endedAt, durationHours); err != nil {
		return fmt.Errorf("error closing session %d: %w", id, err)
	}
	return nil
}

// FindOpen returns the user's open session, or nil when there is none.
func (s *ActivityService) FindOpen(ctx context.Context, userID string) (*models.Activity, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, common.ErrEmptyField
	}

	a, err := s.repomanager.Activities(s.db).FindOpen(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// List returns the user's most recent sessions, newest first. A
// non-positive limit returns all of them.
func (s *ActivityService) List(ctx context.Context, userID string, limit int) ([]*models.Activity, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, common.ErrEmptyField
	}
	return s.repomanager.Activities(s.db).List(ctx, userID, limit)
}
