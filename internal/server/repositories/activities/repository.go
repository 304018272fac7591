package activities

import (
	"context"
	"time"

	"github.com/dmitrijs2005/worklog/internal/server/models"
)

// Repository is the persistence surface of the atividades table.
type Repository interface {
	Create(ctx context.Context, a *models.Activity) error
	Close(ctx context.Context, id int64, endedAt time.Time, durationHours float64) error
	FindOpen(ctx context.Context, userID string) (*models.Activity, error)
	List(ctx context.Context, userID string, limit int) ([]*models.Activity, error)
	ListMonth(ctx context.Context, userID string, year, month int) ([]*models.Activity, error)
}
