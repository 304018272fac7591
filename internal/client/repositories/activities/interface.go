package activities

import (
	"context"
	"time"

	"github.com/dmitrijs2005/worklog/internal/client/models"
)

// Repository persists activity sessions. Failures are reported as
// common.ErrBackendUnavailable when the store cannot be reached and as
// common.ErrBackendRejected when it refuses the request.
type Repository interface {
	// CreateSession inserts an open session and returns it with its
	// store-assigned id. A user that already has an open session is rejected.
	CreateSession(ctx context.Context, s models.NewSession) (models.ActivitySession, error)

	// CloseSession sets the end time and worked hours of an open session.
	// Unknown or already closed ids are rejected.
	CloseSession(ctx context.Context, id int64, endedAt time.Time, durationHours float64) error

	// FindOpenSession returns the most recent open session of userID, or nil.
	FindOpenSession(ctx context.Context, userID string) (*models.ActivitySession, error)

	// ListSessions returns up to limit sessions of userID, newest first.
	// A non-positive limit returns all of them.
	ListSessions(ctx context.Context, userID string, limit int) ([]models.ActivitySession, error)
}
