package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/worklog/internal/client/client"
	"github.com/dmitrijs2005/worklog/internal/client/config"
	"github.com/dmitrijs2005/worklog/internal/client/credentials"
	"github.com/dmitrijs2005/worklog/internal/client/repositories/activities"
	"github.com/dmitrijs2005/worklog/internal/client/services"
	"github.com/dmitrijs2005/worklog/internal/common"
	"github.com/dmitrijs2005/worklog/internal/cryptox"
	"github.com/dmitrijs2005/worklog/internal/logging"
)

type Mode string

const (
	ModeLocal   Mode = "local"
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// App wires the services behind the REPL. It holds at most one logged-in
// user and that user's session manager.
type App struct {
	config *config.Config
	logger logging.Logger
	loc    *time.Location

	authService services.AuthService
	repo        activities.Repository
	remote      client.Client

	reader *bufio.Reader
	out    io.Writer

	mu       sync.RWMutex
	mode     Mode
	sessions *services.SessionManager
	clock    func() time.Time

	exportDir string
	closers   []func() error
}

// NewApp builds the App for c: the credential store, and either the local
// SQLite repository or the remote gRPC client depending on c.Backend.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}

	store := credentials.NewFileStore(c.UsersFile, cryptox.NewHasher(cryptox.DefaultIterations))

	a := &App{
		config:      c,
		logger:      logger,
		loc:         loc,
		authService: services.NewAuthService(store, logger),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		clock:       time.Now,
		exportDir:   ".",
	}

	switch c.Backend {
	case config.BackendRemote:
		gc, err := client.NewGRPCClient(c.ServerEndpointAddr, c.AccessKey, c.RequestTimeout)
		if err != nil {
			return nil, err
		}
		a.repo, a.remote = gc, gc
		a.mode = ModeOffline
		a.closers = append(a.closers, gc.Close)
	default:
		db, err := client.InitDatabase(ctx, c.DBPath)
		if err != nil {
			return nil, fmt.Errorf("error initializing database: %w", err)
		}
		a.repo = activities.NewSQLiteRepository(db, loc)
		a.mode = ModeLocal
		a.closers = append(a.closers, db.Close)
	}

	logger.Debug(ctx, "app initialized", "backend", c.Backend, "env", c.EnvSource, "users", c.UsersFile)
	return a, nil
}

// Run starts the connectivity watcher (remote backend only) and blocks in
// the REPL until the user exits or stdin closes. The watcher has stopped
// before the backend is closed.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer a.Close()
	defer wg.Wait()
	defer cancel()

	if a.remote != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
		}()
	}

	fmt.Fprintln(a.out, "Registro de Atividades (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
}

// Close releases the database or connection.
func (a *App) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
	a.closers = nil
}

func (a *App) getMode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "backend connectivity changed", "mode", string(mode))
	}
}

func (a *App) isLoggedIn() bool {
	_, ok := a.authService.Current()
	return ok
}

func (a *App) manager() (*services.SessionManager, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.sessions == nil {
		return nil, common.ErrNotAuthenticated
	}
	return a.sessions, nil
}

// StartOnlineStatusWatcher pings the remote backend every interval and flips
// the mode between online and offline. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if a.remote == nil || interval <= 0 {
		return
	}

	check := func() {
		pctx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		if err := a.remote.Ping(pctx); err != nil {
			a.setMode(ModeOffline)
			return
		}
		a.setMode(ModeOnline)
	}

	check()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			check()
		case <-ctx.Done():
			return
		}
	}
}

// status renders the prompt prefix: user, backend mode and session state.
func (a *App) status() string {
	s := "-"
	if id, ok := a.authService.Current(); ok {
		s = id.Username
	}
	s += " " + string(a.getMode())

	if m, err := a.manager(); err == nil {
		snap := m.State()
		switch snap.State {
		case services.StateSelected:
			s += " [" + string(snap.ActivityType) + "]"
		case services.StateInProgress:
			s += fmt.Sprintf(" [%s #%d since %s]", snap.ActivityType, snap.SessionID, snap.StartedAt.In(a.loc).Format("15:04"))
		}
	}
	return fmt.Sprintf("(%s)", s)
}
