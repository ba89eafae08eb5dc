// Package auth verifies login credentials and issues opaque session tokens.
// Account storage is behind the Authenticator seam so deployments can plug
// their own user backend.
package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/lcx/garuda/msg"
)

// ErrBadCredentials covers every authentication failure. Callers never
// learn whether the account exists.
var ErrBadCredentials = errors.New("auth: bad credentials")

// Authenticator checks an email/password pair and returns the user profile.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*msg.UserSummary, error)
}

// Account is one registered user in the static backend.
type Account struct {
	Password string
	Profile  msg.UserSummary
}

// StaticAuthenticator serves a fixed account table. It backs development
// and test deployments; production plugs a real user store behind the
// Authenticator interface.
type StaticAuthenticator struct {
	mu       sync.RWMutex
	accounts map[string]Account
	nextID   int64
}

// NewStaticAuthenticator returns an authenticator over the given accounts,
// keyed by email.
func NewStaticAuthenticator(accounts map[string]Account) *StaticAuthenticator {
	if accounts == nil {
		accounts = make(map[string]Account)
	}
	var maxID int64
	for _, a := range accounts {
		if a.Profile.ID > maxID {
			maxID = a.Profile.ID
		}
	}
	return &StaticAuthenticator{accounts: accounts, nextID: maxID}
}

// AddAccount registers an account, assigning an id when the profile has
// none.
func (a *StaticAuthenticator) AddAccount(email string, acct Account) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if acct.Profile.ID == 0 {
		a.nextID++
		acct.Profile.ID = a.nextID
	}
	a.accounts[email] = acct
}

// Authenticate checks the pair against the account table.
func (a *StaticAuthenticator) Authenticate(ctx context.Context, email, password string) (*msg.UserSummary, error) {
	a.mu.RLock()
	acct, ok := a.accounts[email]
	a.mu.RUnlock()
	if !ok || acct.Password != password {
		return nil, ErrBadCredentials
	}
	profile := acct.Profile
	return &profile, nil
}
