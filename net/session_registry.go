package net

import (
	"sync"
	"sync/atomic"

	"github.com/lcx/garuda/log"
	"github.com/lcx/garuda/metrics"
)

// SessionRegistry tracks live sessions by session id and, once
// authenticated, by user id. At most one live session exists per user: a
// second login disposes the older session before binding the new one.
type SessionRegistry struct {
	byID   sync.Map // session id -> *Session
	byUser sync.Map // user id    -> *Session
	count  atomic.Int64
}

// NewSessionRegistry returns an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{}
}

// Add registers a freshly accepted session.
func (r *SessionRegistry) Add(s *Session) {
	r.byID.Store(s.ID(), s)
	n := r.count.Add(1)
	metrics.UpdateGaugeWithGroup("net", "sessions", metrics.Value(n))
}

// BindUser maps userID to s after authentication. If another live session
// already holds that user, the older one is disposed first.
func (r *SessionRegistry) BindUser(userID int64, s *Session) {
	if prev, loaded := r.byUser.LoadOrStore(userID, s); loaded {
		old := prev.(*Session)
		if old != s {
			log.Info().Int64("user", userID).Str("old", old.ID()).Str("new", s.ID()).Msg("duplicate login, evicting older session")
			old.Dispose("duplicate login")
			r.byUser.Store(userID, s)
		}
	}
}

// Remove drops s from both indexes. The user index is only cleared when it
// still points at s, so an eviction race cannot unbind the newer session.
func (r *SessionRegistry) Remove(s *Session) {
	if _, loaded := r.byID.LoadAndDelete(s.ID()); loaded {
		n := r.count.Add(-1)
		metrics.UpdateGaugeWithGroup("net", "sessions", metrics.Value(n))
	}
	if uid := s.UserID(); uid != 0 {
		r.byUser.CompareAndDelete(uid, s)
	}
}

// Get returns the session with the given session id.
func (r *SessionRegistry) Get(sessionID string) (*Session, bool) {
	v, ok := r.byID.Load(sessionID)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

// GetByUserID returns the live session bound to userID.
func (r *SessionRegistry) GetByUserID(userID int64) (*Session, bool) {
	v, ok := r.byUser.Load(userID)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

// Count returns the number of registered sessions.
func (r *SessionRegistry) Count() int {
	return int(r.count.Load())
}

// Range calls fn for every registered session until fn returns false.
func (r *SessionRegistry) Range(fn func(*Session) bool) {
	r.byID.Range(func(_, v any) bool {
		return fn(v.(*Session))
	})
}
