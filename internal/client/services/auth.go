// Package services contains the application services behind the worklog
// CLI: local account authentication and the activity session state machine.
package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/dmitrijs2005/worklog/internal/client/credentials"
	"github.com/dmitrijs2005/worklog/internal/client/models"
	"github.com/dmitrijs2005/worklog/internal/common"
	"github.com/dmitrijs2005/worklog/internal/logging"
)

// AuthService authenticates users against the local credential store.
//
// Contract:
//   - Login: verify credentials and remember the identity.
//   - Register: create a new local account; does not log in.
//   - Logout: forget the identity; open sessions are left untouched.
//   - Current: the logged-in identity, if any.
type AuthService interface {
	Login(ctx context.Context, username string, password []byte) (models.UserIdentity, error)
	Register(ctx context.Context, username string, password, confirm []byte) (models.CredentialRecord, error)
	Logout()
	Current() (models.UserIdentity, bool)
}

type authService struct {
	store  credentials.Store
	logger logging.Logger

	mu      sync.RWMutex
	current *models.UserIdentity
}

// NewAuthService constructs an AuthService over store.
func NewAuthService(store credentials.Store, logger logging.Logger) AuthService {
	return &authService{store: store, logger: logger}
}

// Login trims both fields and checks them against the store. An unknown user
// and a wrong password both yield common.ErrInvalidCredentials.
func (a *authService) Login(ctx context.Context, username string, password []byte) (models.UserIdentity, error) {
	username = strings.TrimSpace(username)
	password = bytes.TrimSpace(password)
	if username == "" || len(password) == 0 {
		return models.UserIdentity{}, common.ErrEmptyField
	}

	ok, err := a.store.Verify(ctx, username, password)
	if err != nil {
		if errors.Is(err, common.ErrUnknownUser) {
			a.logger.Debug(ctx, "login for unknown user", "user", username)
			return models.UserIdentity{}, common.ErrInvalidCredentials
		}
		return models.UserIdentity{}, err
	}
	if !ok {
		a.logger.Debug(ctx, "login with wrong password", "user", username)
		return models.UserIdentity{}, common.ErrInvalidCredentials
	}

	id := models.UserIdentity{Username: username}
	a.mu.Lock()
	a.current = &id
	a.mu.Unlock()

	a.logger.Info(ctx, "logged in", "user", username)
	return id, nil
}

// Register validates the form and creates the account.
func (a *authService) Register(ctx context.Context, username string, password, confirm []byte) (models.CredentialRecord, error) {
	username = strings.TrimSpace(username)
	password = bytes.TrimSpace(password)
	confirm = bytes.TrimSpace(confirm)

	if username == "" || len(password) == 0 || len(confirm) == 0 {
		return models.CredentialRecord{}, common.ErrEmptyField
	}
	if !bytes.Equal(password, confirm) {
		return models.CredentialRecord{}, common.ErrPasswordMismatch
	}

	rec, err := a.store.Create(ctx, username, password)
	if err != nil {
		return models.CredentialRecord{}, err
	}

	a.logger.Info(ctx, "user registered", "user", rec.Username)
	return rec, nil
}

func (a *authService) Logout() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = nil
}

func (a *authService) Current() (models.UserIdentity, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.current == nil {
		return models.UserIdentity{}, false
	}
	return *a.current, true
}
