package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/worklog/internal/client/services"
	"github.com/dmitrijs2005/worklog/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username, a password and its confirmation and
// creates the account. It does not log the new user in.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	rec, err := a.authService.Register(ctx, userName, password, confirm)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "User %s registered\n", rec.Username)
	return nil
}

// Login authenticates the user and restores any session left open on the
// backend. A failed restore is reported but does not undo the login.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		return fmt.Errorf("already logged in, logout first")
	}

	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	id, err := a.authService.Login(ctx, userName, password)
	if err != nil {
		return err
	}

	m := services.NewSessionManager(a.repo, id,
		services.WithClock(a.clock),
		services.WithLocation(a.loc),
		services.WithLogger(a.logger),
	)

	a.mu.Lock()
	a.sessions = m
	a.mu.Unlock()

	fmt.Fprintf(a.out, "Welcome, %s\n", id.Username)

	snap, err := m.Reconcile(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Warning: could not check for an open activity: %v\n", err)
		return nil
	}
	if snap.State == services.StateInProgress {
		fmt.Fprintf(a.out, "Continuing: %s (since %s)\n", snap.ActivityType, snap.StartedAt.In(a.loc).Format("02/01/2006 15:04"))
	}
	return nil
}

// Logout forgets the current user. An activity in progress stays open on the
// backend and is picked up again at the next login.
func (a *App) Logout(ctx context.Context) error {
	m, err := a.manager()
	if err != nil {
		return err
	}

	if snap := m.State(); snap.State == services.StateInProgress {
		fmt.Fprintf(a.out, "Activity %s is still running and stays open\n", snap.ActivityType)
	}

	a.mu.Lock()
	a.sessions = nil
	a.mu.Unlock()

	a.authService.Logout()
	a.logger.Info(ctx, "logged out")
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
