package handler

import (
	"context"

	"github.com/lcx/garuda/auth"
	"github.com/lcx/garuda/log"
	"github.com/lcx/garuda/metrics"
	"github.com/lcx/garuda/msg"
	"github.com/lcx/garuda/net"
)

// handleLogin authenticates the connection, either with credentials or a
// previously issued token. Success binds the user to the session; an
// existing session for the same user is evicted.
func (s *Service) handleLogin(ctx context.Context, sess *net.Session, req *msg.C2SLoginRequest) (any, error) {
	if sess.State() != net.StateConnected {
		return &msg.S2CLoginResponse{FailCode: msg.FailInvalidRequest}, nil
	}

	var (
		profile *msg.UserSummary
		err     error
	)
	if req.Token != "" {
		profile, err = s.tokens.Validate(ctx, req.Token)
	} else {
		profile, err = s.authn.Authenticate(ctx, req.Email, req.Password)
	}
	if err != nil {
		if err != auth.ErrBadCredentials && err != auth.ErrInvalidToken {
			return nil, err
		}
		metrics.IncrCounterWithGroup("auth", "login_failed", 1)
		log.Info().Str("session", sess.ID()).Str("email", req.Email).Msg("login rejected")
		return &msg.S2CLoginResponse{FailCode: msg.FailAuthenticationFailed}, nil
	}

	if !sess.Authenticate(profile) {
		return &msg.S2CLoginResponse{FailCode: msg.FailInvalidRequest}, nil
	}
	s.sessions.BindUser(profile.ID, sess)

	token, err := s.tokens.Issue(ctx, profile)
	if err != nil {
		return nil, err
	}

	metrics.IncrCounterWithGroup("auth", "login_ok", 1)
	log.Info().Str("session", sess.ID()).Int64("user", profile.ID).Str("nickname", profile.Nickname).Msg("user logged in")
	return &msg.S2CLoginResponse{
		Success: true,
		Token:   token,
		MyInfo:  profile,
	}, nil
}
