package net

import (
	stdnet "net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcx/garuda/msg"
)

func newPipeSession(t *testing.T, hooks ...func(*Session)) *Session {
	t.Helper()
	client, server := stdnet.Pipe()
	t.Cleanup(func() { _ = client.Close() })
	s := NewSession(server, SessionOptions{}, hooks...)
	t.Cleanup(func() { s.Dispose("test cleanup") })
	return s
}

func TestSessionRegistryAddRemove(t *testing.T) {
	r := NewSessionRegistry()
	s := newPipeSession(t)

	r.Add(s)
	require.Equal(t, 1, r.Count())

	got, ok := r.Get(s.ID())
	require.True(t, ok)
	require.Same(t, s, got)

	r.Remove(s)
	assert.Equal(t, 0, r.Count())
	_, ok = r.Get(s.ID())
	assert.False(t, ok)
}

func TestSessionRegistryDuplicateLogin(t *testing.T) {
	r := NewSessionRegistry()
	s1 := newPipeSession(t)
	s2 := newPipeSession(t)
	r.Add(s1)
	r.Add(s2)

	profile := &msg.UserSummary{ID: 7, Nickname: "dup"}
	require.True(t, s1.Authenticate(profile))
	r.BindUser(7, s1)

	require.True(t, s2.Authenticate(profile))
	r.BindUser(7, s2)

	// Older session is gone, newer one owns the user.
	assert.Equal(t, StateClosed, s1.State())
	got, ok := r.GetByUserID(7)
	require.True(t, ok)
	assert.Same(t, s2, got)
}

func TestSessionRegistryRemoveKeepsNewerBinding(t *testing.T) {
	r := NewSessionRegistry()
	s1 := newPipeSession(t)
	s2 := newPipeSession(t)
	r.Add(s1)
	r.Add(s2)

	profile := &msg.UserSummary{ID: 9}
	s1.Authenticate(profile)
	r.BindUser(9, s1)
	s2.Authenticate(profile)
	r.BindUser(9, s2)

	// Removing the evicted session must not unbind the live one.
	r.Remove(s1)
	got, ok := r.GetByUserID(9)
	require.True(t, ok)
	assert.Same(t, s2, got)
}

func TestSessionAuthenticateOnce(t *testing.T) {
	s := newPipeSession(t)
	require.True(t, s.Authenticate(&msg.UserSummary{ID: 1}))
	require.False(t, s.Authenticate(&msg.UserSummary{ID: 2}))
	assert.Equal(t, int64(1), s.UserID())
}

func TestSessionDisposeRunsHooksOnce(t *testing.T) {
	var order []string
	s := newPipeSession(t,
		func(*Session) { order = append(order, "room") },
		func(*Session) { order = append(order, "registry") },
	)

	s.Dispose("first")
	s.Dispose("second")

	require.Equal(t, []string{"room", "registry"}, order)
	assert.Equal(t, StateClosed, s.State())
	assert.ErrorIs(t, s.SendRaw([]byte{1}), ErrSessionClosed)
}
