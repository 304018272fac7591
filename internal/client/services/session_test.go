package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/worklog/internal/client/models"
	"github.com/dmitrijs2005/worklog/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fake repository ----

type closeCall struct {
	id    int64
	end   time.Time
	hours float64
}

// memRepo is an in-memory activities.Repository with failure injection.
type memRepo struct {
	mu       sync.Mutex
	nextID   int64
	sessions map[int64]*models.ActivitySession

	findErr   error
	createErr error
	closeErr  error
	// lostReply is returned once by a close that has already committed.
	lostReply error

	creates int
	closes  []closeCall
}

func newMemRepo() *memRepo {
	return &memRepo{nextID: 1, sessions: map[int64]*models.ActivitySession{}}
}

func (r *memRepo) put(s models.ActivitySession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := s
	r.sessions[s.ID] = &cp
	if s.ID >= r.nextID {
		r.nextID = s.ID + 1
	}
}

func (r *memRepo) CreateSession(_ context.Context, s models.NewSession) (models.ActivitySession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil {
		return models.ActivitySession{}, r.createErr
	}
	for _, e := range r.sessions {
		if e.UserID == s.UserID && e.IsOpen() {
			return models.ActivitySession{}, fmt.Errorf("%w: open session exists", common.ErrBackendRejected)
		}
	}
	out := models.ActivitySession{
		ID: r.nextID, UserID: s.UserID, ActivityType: s.ActivityType,
		Description: s.Description, StartedAt: s.StartedAt,
	}
	out.Year, out.Month, out.Day = models.CalendarDay(s.StartedAt, s.StartedAt.Location())
	r.nextID++
	cp := out
	r.sessions[out.ID] = &cp
	return out, nil
}

func (r *memRepo) CloseSession(_ context.Context, id int64, end time.Time, hours float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closes = append(r.closes, closeCall{id: id, end: end, hours: hours})
	if r.closeErr != nil {
		return r.closeErr
	}
	s, ok := r.sessions[id]
	if !ok || !s.IsOpen() {
		return fmt.Errorf("%w: session %d", common.ErrBackendRejected, id)
	}
	s.EndedAt = &end
	s.DurationHours = &hours
	if r.lostReply != nil {
		err := r.lostReply
		r.lostReply = nil
		return err
	}
	return nil
}

func (r *memRepo) FindOpenSession(_ context.Context, userID string) (*models.ActivitySession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	var found *models.ActivitySession
	for _, s := range r.sessions {
		if s.UserID == userID && s.IsOpen() && (found == nil || s.ID > found.ID) {
			found = s
		}
	}
	if found == nil {
		return nil, nil
	}
	cp := *found
	return &cp, nil
}

func (r *memRepo) ListSessions(_ context.Context, userID string, limit int) ([]models.ActivitySession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ActivitySession
	for _, s := range r.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) openCount(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sessions {
		if s.UserID == userID && s.IsOpen() {
			n++
		}
	}
	return n
}

// ---- helpers ----

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

var ana = models.UserIdentity{Username: "ana"}

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	return loc
}

func newManager(t *testing.T, repo *memRepo) (*SessionManager, *fakeClock) {
	t.Helper()
	loc := saoPaulo(t)
	clock := &fakeClock{now: time.Date(2025, 3, 3, 10, 0, 0, 0, loc)}
	return NewSessionManager(repo, ana, WithClock(clock.Now), WithLocation(loc)), clock
}

// ---- Select / Deselect ----

func TestSelect(t *testing.T) {
	m, _ := newManager(t, newMemRepo())

	assert.Equal(t, StateNoSelection, m.State().State)

	require.NoError(t, m.Select(models.ActivityDocumentation))
	assert.Equal(t, Snapshot{State: StateSelected, ActivityType: models.ActivityDocumentation}, m.State())

	require.NoError(t, m.Select(models.ActivityMeetings), "selection may be replaced")
	assert.Equal(t, models.ActivityMeetings, m.State().ActivityType)

	err := m.Select("Almoço")
	assert.ErrorIs(t, err, common.ErrUnknownActivityType)
	assert.Equal(t, models.ActivityMeetings, m.State().ActivityType, "bad input keeps selection")
}

func TestDeselect(t *testing.T) {
	m, _ := newManager(t, newMemRepo())

	require.NoError(t, m.Deselect(), "no-op without selection")
	assert.Equal(t, StateNoSelection, m.State().State)

	require.NoError(t, m.Select(models.ActivityJigs))
	require.NoError(t, m.Deselect())
	assert.Equal(t, Snapshot{State: StateNoSelection}, m.State())
}

func TestSelectAndDeselect_BlockedInProgress(t *testing.T) {
	m, _ := newManager(t, newMemRepo())
	require.NoError(t, m.Select(models.ActivityJigs))
	_, err := m.Start(context.Background(), "")
	require.NoError(t, err)

	assert.ErrorIs(t, m.Select(models.ActivityMeetings), common.ErrSessionInProgress)
	assert.ErrorIs(t, m.Deselect(), common.ErrSessionInProgress)
	assert.Equal(t, models.ActivityJigs, m.State().ActivityType)
}

// ---- Start ----

func TestStart_WithoutSelection(t *testing.T) {
	repo := newMemRepo()
	m, _ := newManager(t, repo)

	_, err := m.Start(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrStartWithoutSelection)
	assert.Zero(t, repo.creates)
}

func TestStart_CreatesSessionWithClientTimestamp(t *testing.T) {
	repo := newMemRepo()
	m, clock := newManager(t, repo)
	require.NoError(t, m.Select(models.ActivityResearch))

	s, err := m.Start(context.Background(), "prototype")
	require.NoError(t, err)

	assert.Equal(t, int64(1), s.ID)
	assert.True(t, clock.Now().Equal(s.StartedAt))
	assert.Equal(t, "ana", s.UserID)
	assert.Equal(t, Snapshot{
		State:        StateInProgress,
		ActivityType: models.ActivityResearch,
		SessionID:    1,
		StartedAt:    s.StartedAt,
		Description:  "prototype",
	}, m.State())
}

func TestStart_InProgressKeepsID(t *testing.T) {
	repo := newMemRepo()
	m, _ := newManager(t, repo)
	require.NoError(t, m.Select(models.ActivityResearch))
	first, err := m.Start(context.Background(), "")
	require.NoError(t, err)

	_, err = m.Start(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrSessionInProgress)
	assert.Equal(t, first.ID, m.State().SessionID)
	assert.Equal(t, 1, repo.creates)
}

func TestStart_AdoptsBackendOpenSession(t *testing.T) {
	repo := newMemRepo()
	repo.put(models.ActivitySession{ID: 7, UserID: "ana", ActivityType: models.ActivityMeetings, StartedAt: time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)})
	m, _ := newManager(t, repo)
	require.NoError(t, m.Select(models.ActivityResearch))

	got, err := m.Start(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrSessionInProgress)
	assert.Equal(t, int64(7), got.ID)
	assert.Zero(t, repo.creates, "no duplicate may be created")

	st := m.State()
	assert.Equal(t, StateInProgress, st.State)
	assert.Equal(t, int64(7), st.SessionID)
	assert.Equal(t, models.ActivityMeetings, st.ActivityType)
}

func TestStart_RepositoryFailureKeepsSelection(t *testing.T) {
	for name, setup := range map[string]func(r *memRepo){
		"find fails":   func(r *memRepo) { r.findErr = common.ErrBackendUnavailable },
		"create fails": func(r *memRepo) { r.createErr = fmt.Errorf("%w: schema", common.ErrBackendRejected) },
	} {
		t.Run(name, func(t *testing.T) {
			repo := newMemRepo()
			setup(repo)
			m, _ := newManager(t, repo)
			require.NoError(t, m.Select(models.ActivityRegistration))

			_, err := m.Start(context.Background(), "")
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrBackendUnavailable) || errors.Is(err, common.ErrBackendRejected))
			assert.Equal(t, Snapshot{State: StateSelected, ActivityType: models.ActivityRegistration}, m.State())
			assert.Zero(t, repo.openCount("ana"))
		})
	}
}

// ---- Stop ----

func TestStop_NoActiveSession(t *testing.T) {
	repo := newMemRepo()
	m, _ := newManager(t, repo)

	_, err := m.Stop(context.Background())
	assert.ErrorIs(t, err, common.ErrNoActiveSession)

	require.NoError(t, m.Select(models.ActivityJigs))
	_, err = m.Stop(context.Background())
	assert.ErrorIs(t, err, common.ErrNoActiveSession)
	assert.Empty(t, repo.closes)
}

func TestStop_ComputesDuration(t *testing.T) {
	repo := newMemRepo()
	m, clock := newManager(t, repo)
	require.NoError(t, m.Select(models.ActivityFactorySupport))
	s, err := m.Start(context.Background(), "")
	require.NoError(t, err)

	clock.Set(s.StartedAt.Add(90 * time.Minute))
	closed, err := m.Stop(context.Background())
	require.NoError(t, err)

	require.NotNil(t, closed.DurationHours)
	assert.Equal(t, 1.5, *closed.DurationHours)
	require.Len(t, repo.closes, 1)
	assert.Equal(t, s.ID, repo.closes[0].id)
	assert.Equal(t, 1.5, repo.closes[0].hours)
	assert.True(t, clock.Now().Equal(repo.closes[0].end))
	assert.Equal(t, Snapshot{State: StateNoSelection}, m.State())
}

func TestStop_FailureRetriesSameID(t *testing.T) {
	repo := newMemRepo()
	m, clock := newManager(t, repo)
	require.NoError(t, m.Select(models.ActivityFactorySupport))
	s, err := m.Start(context.Background(), "")
	require.NoError(t, err)

	repo.closeErr = common.ErrBackendUnavailable
	clock.Set(s.StartedAt.Add(time.Hour))
	_, err = m.Stop(context.Background())
	require.ErrorIs(t, err, common.ErrBackendUnavailable)
	assert.Equal(t, StateInProgress, m.State().State)
	assert.Equal(t, s.ID, m.State().SessionID)

	repo.closeErr = nil
	clock.Set(s.StartedAt.Add(2 * time.Hour))
	closed, err := m.Stop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2.0, *closed.DurationHours)

	require.Len(t, repo.closes, 2)
	assert.Equal(t, s.ID, repo.closes[0].id)
	assert.Equal(t, s.ID, repo.closes[1].id)
}

func TestStop_CommittedCloseWithLostReply(t *testing.T) {
	repo := newMemRepo()
	m, clock := newManager(t, repo)
	require.NoError(t, m.Select(models.ActivityFactorySupport))
	s, err := m.Start(context.Background(), "")
	require.NoError(t, err)

	repo.lostReply = fmt.Errorf("%w: %w", common.ErrBackendUnavailable, context.DeadlineExceeded)
	clock.Set(s.StartedAt.Add(time.Hour))
	_, err = m.Stop(context.Background())
	require.ErrorIs(t, err, common.ErrBackendUnavailable)
	assert.Equal(t, StateInProgress, m.State().State)
	assert.Equal(t, 0, repo.openCount("ana"))

	_, err = m.Stop(context.Background())
	require.ErrorIs(t, err, common.ErrSessionClosedElsewhere)
	assert.Equal(t, Snapshot{State: StateNoSelection}, m.State())

	require.NoError(t, m.Select(models.ActivityMeetings))
	_, err = m.Stop(context.Background())
	require.ErrorIs(t, err, common.ErrNoActiveSession)
}

func TestStop_RejectedCloseAdoptsOtherOpenSession(t *testing.T) {
	repo := newMemRepo()
	m, _ := newManager(t, repo)
	require.NoError(t, m.Select(models.ActivityFactorySupport))
	s, err := m.Start(context.Background(), "")
	require.NoError(t, err)

	end := s.StartedAt.Add(time.Hour)
	require.NoError(t, repo.CloseSession(context.Background(), s.ID, end, 1))
	other, err := repo.CreateSession(context.Background(), models.NewSession{
		UserID: "ana", ActivityType: models.ActivityDocumentation, StartedAt: end,
	})
	require.NoError(t, err)

	_, err = m.Stop(context.Background())
	require.ErrorIs(t, err, common.ErrSessionClosedElsewhere)
	st := m.State()
	assert.Equal(t, StateInProgress, st.State)
	assert.Equal(t, other.ID, st.SessionID)
	assert.Equal(t, models.ActivityDocumentation, st.ActivityType)
}

func TestStop_RejectedCloseStillOpenKeepsState(t *testing.T) {
	repo := newMemRepo()
	m, _ := newManager(t, repo)
	require.NoError(t, m.Select(models.ActivityFactorySupport))
	s, err := m.Start(context.Background(), "")
	require.NoError(t, err)

	repo.closeErr = fmt.Errorf("%w: bad duration", common.ErrBackendRejected)
	_, err = m.Stop(context.Background())
	require.ErrorIs(t, err, common.ErrBackendRejected)
	assert.NotErrorIs(t, err, common.ErrSessionClosedElsewhere)
	assert.Equal(t, StateInProgress, m.State().State)
	assert.Equal(t, s.ID, m.State().SessionID)
}

func TestStop_ClockSkewClampsToZero(t *testing.T) {
	repo := newMemRepo()
	m, clock := newManager(t, repo)
	require.NoError(t, m.Select(models.ActivityFactorySupport))
	s, err := m.Start(context.Background(), "")
	require.NoError(t, err)

	clock.Set(s.StartedAt.Add(-time.Minute))
	closed, err := m.Stop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, *closed.DurationHours)
}

// ---- Reconcile ----

func TestReconcile(t *testing.T) {
	repo := newMemRepo()
	m, _ := newManager(t, repo)
	ctx := context.Background()

	st, err := m.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateNoSelection, st.State)

	repo.put(models.ActivitySession{ID: 5, UserID: "ana", ActivityType: models.ActivityDocumentation, StartedAt: time.Now()})
	for i := 0; i < 2; i++ {
		st, err = m.Reconcile(ctx)
		require.NoError(t, err)
		assert.Equal(t, StateInProgress, st.State)
		assert.Equal(t, int64(5), st.SessionID)
		assert.Equal(t, models.ActivityDocumentation, st.ActivityType)
	}

	// closed elsewhere: backend wins
	require.NoError(t, repo.CloseSession(ctx, 5, time.Now(), 1))
	st, err = m.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, Snapshot{State: StateNoSelection}, st)
}

func TestReconcile_ErrorKeepsState(t *testing.T) {
	repo := newMemRepo()
	m, _ := newManager(t, repo)
	require.NoError(t, m.Select(models.ActivityJigs))

	repo.findErr = common.ErrBackendUnavailable
	st, err := m.Reconcile(context.Background())
	require.ErrorIs(t, err, common.ErrBackendUnavailable)
	assert.Equal(t, Snapshot{State: StateSelected, ActivityType: models.ActivityJigs}, st)
}

func TestReconcile_IgnoresOtherUsers(t *testing.T) {
	repo := newMemRepo()
	repo.put(models.ActivitySession{ID: 9, UserID: "bruno", ActivityType: models.ActivityJigs, StartedAt: time.Now()})
	m, _ := newManager(t, repo)

	st, err := m.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateNoSelection, st.State)
}

// ---- concurrency ----

func TestStart_ConcurrentCallsCreateOneSession(t *testing.T) {
	repo := newMemRepo()
	m, _ := newManager(t, repo)
	require.NoError(t, m.Select(models.ActivityMeetings))

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Start(context.Background(), "")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, common.ErrSessionInProgress)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, repo.openCount("ana"))
}

// ---- duration ----

func TestComputeDurationHours(t *testing.T) {
	loc := saoPaulo(t)
	tests := []struct {
		name       string
		start, end time.Time
		want       float64
	}{
		{name: "ten to half past eleven", start: time.Date(2025, 3, 3, 10, 0, 0, 0, loc), end: time.Date(2025, 3, 3, 11, 30, 0, 0, loc), want: 1.5},
		{name: "one second", start: time.Date(2025, 3, 3, 10, 0, 0, 0, loc), end: time.Date(2025, 3, 3, 10, 0, 1, 0, loc), want: 0.0002777778},
		{name: "mixed zones", start: time.Date(2025, 3, 3, 13, 0, 0, 0, time.UTC), end: time.Date(2025, 3, 3, 11, 0, 0, 0, loc), want: 1},
		{name: "negative clamps", start: time.Date(2025, 3, 3, 11, 0, 0, 0, loc), end: time.Date(2025, 3, 3, 10, 0, 0, 0, loc), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeDurationHours(tt.start, tt.end, loc))
		})
	}
}
