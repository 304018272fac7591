package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/worklog/internal/client/models"
	"github.com/dmitrijs2005/worklog/internal/client/repositories/activities"
	"github.com/dmitrijs2005/worklog/internal/common"
	"github.com/dmitrijs2005/worklog/internal/logging"
	"github.com/dmitrijs2005/worklog/internal/timex"
)

// State is the position of a SessionManager in its state machine.
type State int

const (
	StateNoSelection State = iota
	StateSelected
	StateInProgress
)

func (s State) String() string {
	switch s {
	case StateNoSelection:
		return "no selection"
	case StateSelected:
		return "selected"
	case StateInProgress:
		return "in progress"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Snapshot is a read-only copy of the manager state for display.
// SessionID, StartedAt and Description are set only in StateInProgress.
type Snapshot struct {
	State        State
	ActivityType models.ActivityType
	SessionID    int64
	StartedAt    time.Time
	Description  string
}

// SessionManager drives select/start/stop for one authenticated user and
// keeps its view consistent with the repository. All methods are safe for
// concurrent use; transitions are serialized.
type SessionManager struct {
	repo   activities.Repository
	user   models.UserIdentity
	clock  func() time.Time
	loc    *time.Location
	logger logging.Logger

	mu       sync.Mutex
	state    State
	selected models.ActivityType
	open     *models.ActivitySession
}

// SessionOption customizes a SessionManager.
type SessionOption func(*SessionManager)

// WithClock replaces time.Now as the source of start and end timestamps.
func WithClock(clock func() time.Time) SessionOption {
	return func(m *SessionManager) { m.clock = clock }
}

// WithLocation sets the reference timezone for duration arithmetic.
func WithLocation(loc *time.Location) SessionOption {
	return func(m *SessionManager) { m.loc = loc }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l logging.Logger) SessionOption {
	return func(m *SessionManager) { m.logger = l }
}

// NewSessionManager returns a manager in StateNoSelection. Call Reconcile
// before use to pick up a session left open by an earlier run.
func NewSessionManager(repo activities.Repository, user models.UserIdentity, opts ...SessionOption) *SessionManager {
	m := &SessionManager{
		repo:   repo,
		user:   user,
		clock:  time.Now,
		loc:    time.UTC,
		logger: logging.Discard(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// User returns the identity the manager acts for.
func (m *SessionManager) User() models.UserIdentity {
	return m.user
}

// State returns a copy of the current state.
func (m *SessionManager) State() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *SessionManager) snapshot() Snapshot {
	s := Snapshot{State: m.state, ActivityType: m.selected}
	if m.state == StateInProgress && m.open != nil {
		s.SessionID = m.open.ID
		s.StartedAt = m.open.StartedAt
		s.Description = m.open.Description
	}
	return s
}

// Select chooses the activity type for the next session, replacing any
// previous choice. It is refused while a session is in progress.
func (m *SessionManager) Select(t models.ActivityType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", common.ErrUnknownActivityType, t)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateInProgress {
		return common.ErrSessionInProgress
	}
	m.selected = t
	m.state = StateSelected
	return nil
}

// Deselect clears the selection. It is a no-op without one and refused while
// a session is in progress.
func (m *SessionManager) Deselect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateInProgress:
		return common.ErrSessionInProgress
	case StateSelected:
		m.selected = ""
		m.state = StateNoSelection
	}
	return nil
}

// Start opens a session of the selected type stamped with the current time.
//
// The repository is asked for an open session first. If one exists, the
// manager adopts it and returns common.ErrSessionInProgress instead of
// creating a second one. On any repository error the state is unchanged.
func (m *SessionManager) Start(ctx context.Context, description string) (models.ActivitySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateInProgress:
		return models.ActivitySession{}, common.ErrSessionInProgress
	case StateNoSelection:
		return models.ActivitySession{}, common.ErrStartWithoutSelection
	}

	existing, err := m.repo.FindOpenSession(ctx, m.user.Username)
	if err != nil {
		return models.ActivitySession{}, fmt.Errorf("check open session: %w", err)
	}
	if existing != nil {
		m.adopt(existing)
		m.logger.Warn(ctx, "adopted open session instead of starting a new one",
			"user", m.user.Username, "id", existing.ID, "type", existing.ActivityType)
		return *existing, fmt.Errorf("%w: session %d (%s)", common.ErrSessionInProgress, existing.ID, existing.ActivityType)
	}

	s, err := m.repo.CreateSession(ctx, models.NewSession{
		UserID:       m.user.Username,
		ActivityType: m.selected,
		Description:  description,
		StartedAt:    m.now(),
	})
	if err != nil {
		return models.ActivitySession{}, fmt.Errorf("start session: %w", err)
	}

	m.adopt(&s)
	m.logger.Info(ctx, "session started", "user", m.user.Username, "id", s.ID, "type", s.ActivityType)
	return s, nil
}

// Stop closes the session in progress with the current time and its worked
// hours. On failure the manager stays in progress on the same id, so a retry
// targets the same session.
//
// A rejected close is checked against the repository. If the session is no
// longer open there, the manager follows the repository state and returns
// common.ErrSessionClosedElsewhere.
func (m *SessionManager) Stop(ctx context.Context) (models.ActivitySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateInProgress || m.open == nil {
		return models.ActivitySession{}, common.ErrNoActiveSession
	}

	end := m.now()
	if end.Before(m.open.StartedAt) {
		m.logger.Warn(ctx, "session ends before it starts, recording zero hours",
			"id", m.open.ID, "start", m.open.StartedAt, "end", end)
	}
	hours := ComputeDurationHours(m.open.StartedAt, end, m.loc)

	if err := m.repo.CloseSession(ctx, m.open.ID, end, hours); err != nil {
		if errors.Is(err, common.ErrBackendRejected) {
			if serr := m.syncAfterRejectedClose(ctx); serr != nil {
				return models.ActivitySession{}, serr
			}
		}
		return models.ActivitySession{}, fmt.Errorf("stop session %d: %w", m.open.ID, err)
	}

	closed := *m.open
	closed.EndedAt = &end
	closed.DurationHours = &hours

	m.open = nil
	m.selected = ""
	m.state = StateNoSelection

	m.logger.Info(ctx, "session stopped", "user", m.user.Username, "id", closed.ID, "hours", hours)
	return closed, nil
}

// syncAfterRejectedClose returns a non-nil error when the open session is
// gone from the repository, after moving to the repository's state. It
// returns nil when the session is still open there or the lookup fails.
func (m *SessionManager) syncAfterRejectedClose(ctx context.Context) error {
	id := m.open.ID
	open, err := m.repo.FindOpenSession(ctx, m.user.Username)
	if err != nil {
		m.logger.Warn(ctx, "cannot check session after rejected close", "id", id, "error", err)
		return nil
	}
	if open != nil && open.ID == id {
		return nil
	}

	if open != nil {
		m.adopt(open)
	} else {
		m.open = nil
		m.selected = ""
		m.state = StateNoSelection
	}
	m.logger.Warn(ctx, "session no longer open on backend", "user", m.user.Username, "id", id)
	return fmt.Errorf("stop session %d: %w", id, common.ErrSessionClosedElsewhere)
}

// Reconcile replaces the in-memory state with what the repository holds:
// StateInProgress on the open session if there is one, StateNoSelection
// otherwise. It is safe to call at any time and repeatedly.
func (m *SessionManager) Reconcile(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	open, err := m.repo.FindOpenSession(ctx, m.user.Username)
	if err != nil {
		return m.snapshot(), fmt.Errorf("reconcile: %w", err)
	}

	if open != nil {
		m.adopt(open)
		m.logger.Info(ctx, "resumed open session", "user", m.user.Username, "id", open.ID, "type", open.ActivityType)
	} else {
		m.open = nil
		m.selected = ""
		m.state = StateNoSelection
	}
	return m.snapshot(), nil
}

// History lists the user's most recent sessions, newest first.
func (m *SessionManager) History(ctx context.Context, limit int) ([]models.ActivitySession, error) {
	return m.repo.ListSessions(ctx, m.user.Username, limit)
}

func (m *SessionManager) adopt(s *models.ActivitySession) {
	cp := *s
	m.open = &cp
	m.selected = s.ActivityType
	m.state = StateInProgress
}

func (m *SessionManager) now() time.Time {
	return m.clock().In(m.loc)
}

// ComputeDurationHours returns end-start in hours, rounded to
// timex.HoursPrecision places after converting both to loc. Negative spans
// yield 0.
func ComputeDurationHours(start, end time.Time, loc *time.Location) float64 {
	h := timex.Hours(start, end, loc)
	if h < 0 {
		return 0
	}
	return h
}
