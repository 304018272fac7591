// Package models defines client-side data models used by the worklog CLI.
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/worklog/internal/common"
)

// ActivityType is one of the fixed work categories a session is booked under.
type ActivityType string

const (
	ActivityResearch       ActivityType = common.ActivityTypeResearch
	ActivityFactorySupport ActivityType = common.ActivityTypeFactorySupport
	ActivityDocumentation  ActivityType = common.ActivityTypeDocumentation
	ActivityJigs           ActivityType = common.ActivityTypeJigs
	ActivityRegistration   ActivityType = common.ActivityTypeRegistration
	ActivityMeetings       ActivityType = common.ActivityTypeMeetings
)

// ActivityTypes lists the categories in display order.
var ActivityTypes = func() []ActivityType {
	out := make([]ActivityType, len(common.ActivityTypeNames))
	for i, n := range common.ActivityTypeNames {
		out[i] = ActivityType(n)
	}
	return out
}()

// Valid reports whether t is one of ActivityTypes.
func (t ActivityType) Valid() bool {
	return common.IsActivityType(string(t))
}

// ParseActivityType accepts either the exact category name or its 1-based
// position in ActivityTypes.
func ParseActivityType(s string) (ActivityType, error) {
	s = strings.TrimSpace(s)
	if t := ActivityType(s); t.Valid() {
		return t, nil
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= len(ActivityTypes) {
		return ActivityTypes[n-1], nil
	}
	return "", fmt.Errorf("%w: %q", common.ErrUnknownActivityType, s)
}

// NewSession carries what is needed to open a session.
type NewSession struct {
	UserID       string
	ActivityType ActivityType
	Description  string
	StartedAt    time.Time
}

// ActivitySession is one timed work session. EndedAt and DurationHours are
// nil while the session is open.
type ActivitySession struct {
	ID           int64
	UserID       string
	ActivityType ActivityType
	Description  string
	StartedAt    time.Time
	EndedAt      *time.Time

	// DurationHours is EndedAt-StartedAt in hours, rounded to 10 places.
	DurationHours *float64

	// Year, Month and Day are derived from StartedAt in the reference
	// timezone when the session is created.
	Year  int
	Month int
	Day   int
}

// IsOpen reports whether the session has not been stopped yet.
func (s ActivitySession) IsOpen() bool {
	return s.EndedAt == nil
}

// CalendarDay returns the denormalized date fields for t in loc.
func CalendarDay(t time.Time, loc *time.Location) (year, month, day int) {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return y, int(m), d
}
