package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lcx/garuda/balancer"
	"github.com/lcx/garuda/msg"
)

// ErrInvalidToken means the token is unknown, expired, or revoked.
var ErrInvalidToken = errors.New("auth: invalid token")

const (
	sessionTokenPrefix = "tokens/session/"
	gameTokenPrefix    = "tokens/game/"

	// SessionTokenTTL is how long a login token stays valid without use.
	SessionTokenTTL = 30 * time.Minute

	// GameTokenTTL bounds the window between game start and the client
	// handing the token to the game server.
	GameTokenTTL = 60 * time.Second
)

// TokenService issues opaque tokens backed by a TTL key-value store. Tokens
// carry no claims; the profile rides in the store under the token key.
type TokenService struct {
	store balancer.Store
}

// NewTokenService builds a token service over the given store.
func NewTokenService(store balancer.Store) *TokenService {
	return &TokenService{store: store}
}

// Issue mints a session token for profile, valid for SessionTokenTTL.
func (t *TokenService) Issue(ctx context.Context, profile *msg.UserSummary) (string, error) {
	token := uuid.NewString()
	data, err := json.Marshal(profile)
	if err != nil {
		return "", err
	}
	if err := t.store.Set(ctx, sessionTokenPrefix+token, data, SessionTokenTTL); err != nil {
		return "", err
	}
	return token, nil
}

// Validate resolves a session token back to the profile it was issued for.
func (t *TokenService) Validate(ctx context.Context, token string) (*msg.UserSummary, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	data, ok, err := t.store.Get(ctx, sessionTokenPrefix+token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidToken
	}
	var profile msg.UserSummary
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Revoke invalidates a session token.
func (t *TokenService) Revoke(ctx context.Context, token string) error {
	return t.store.Delete(ctx, sessionTokenPrefix+token)
}

// IssueGameToken mints the short-lived token a client presents to the game
// server it was routed to.
func (t *TokenService) IssueGameToken(ctx context.Context, roomID int64, userIDs []int64) (string, error) {
	token := uuid.NewString()
	data, err := json.Marshal(struct {
		RoomID  int64   `json:"roomId"`
		UserIDs []int64 `json:"userIds"`
	}{roomID, userIDs})
	if err != nil {
		return "", err
	}
	if err := t.store.Set(ctx, gameTokenPrefix+token, data, GameTokenTTL); err != nil {
		return "", err
	}
	return token, nil
}
