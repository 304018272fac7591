package client

import (
	"context"

	"github.com/dmitrijs2005/worklog/internal/client/repositories/activities"
)

// Report locates an exported monthly report.
type Report struct {
	Key  string
	URL  string
	Rows int
}

// Client is the remote backend: a session repository plus connectivity and
// report operations.
type Client interface {
	activities.Repository

	Ping(ctx context.Context) error
	ExportReport(ctx context.Context, userID string, year, month int) (Report, error)
	Close() error
}
