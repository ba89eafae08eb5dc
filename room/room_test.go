package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcx/garuda/msg"
)

func user(id int64) msg.UserSummary {
	return msg.UserSummary{ID: id}
}

func TestCreateRoomCapacityBounds(t *testing.T) {
	g := NewRegistry()

	for _, n := range []int32{1, 0, 9, -4} {
		_, err := g.Create("bad", n, user(1))
		assert.ErrorIs(t, err, ErrBadCapacity, "maxUsers=%d", n)
	}
	r, err := g.Create("ok", 2, user(1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.OwnerID())
}

func TestCreateRoomRequiresName(t *testing.T) {
	g := NewRegistry()

	_, err := g.Create("", 4, user(1))
	assert.ErrorIs(t, err, ErrEmptyName)
	assert.Zero(t, g.Count())
}

func TestRoomIDsAreMonotonic(t *testing.T) {
	g := NewRegistry()
	r1, err := g.Create("a", 4, user(1))
	require.NoError(t, err)
	r2, err := g.Create("b", 4, user(2))
	require.NoError(t, err)
	require.Greater(t, r2.ID(), r1.ID())

	// Deleting a room never frees its id.
	_, empty, err := g.Leave(r1.ID(), 1)
	require.NoError(t, err)
	require.True(t, empty)
	r3, err := g.Create("c", 4, user(3))
	require.NoError(t, err)
	require.Greater(t, r3.ID(), r2.ID())
}

func TestRoomJoinFullAndDuplicate(t *testing.T) {
	g := NewRegistry()
	r, err := g.Create("small", 2, user(1))
	require.NoError(t, err)

	require.NoError(t, r.Join(user(2)))
	assert.ErrorIs(t, r.Join(user(3)), ErrRoomFull)
	assert.ErrorIs(t, r.Join(user(2)), ErrRoomFull) // full wins before duplicate check matters

	_, _, err = g.Leave(r.ID(), 2)
	require.NoError(t, err)
	assert.ErrorIs(t, r.Join(user(1)), ErrAlreadyMember)
}

func TestRoomJoinResetsReadyFlags(t *testing.T) {
	g := NewRegistry()
	r, err := g.Create("reset", 4, user(1))
	require.NoError(t, err)
	require.NoError(t, r.Join(user(2)))
	require.NoError(t, r.SetReady(2, true))

	require.NoError(t, r.Join(user(3)))

	// A changed lineup must re-confirm, so the owner cannot prepare yet.
	assert.ErrorIs(t, r.Prepare(1), ErrNotAllReady)
}

func TestRoomOwnershipTransfer(t *testing.T) {
	g := NewRegistry()
	r, err := g.Create("transfer", 4, user(1))
	require.NoError(t, err)
	require.NoError(t, r.Join(user(2)))
	require.NoError(t, r.Join(user(3)))

	newOwner, empty, err := g.Leave(r.ID(), 1)
	require.NoError(t, err)
	assert.False(t, empty)
	assert.Equal(t, int64(2), newOwner)
	assert.Equal(t, int64(2), r.OwnerID())

	// A non-owner leaving does not move ownership.
	newOwner, empty, err = g.Leave(r.ID(), 3)
	require.NoError(t, err)
	assert.False(t, empty)
	assert.Zero(t, newOwner)
	assert.Equal(t, int64(2), r.OwnerID())
}

func TestRoomDeletedWhenEmpty(t *testing.T) {
	g := NewRegistry()
	r, err := g.Create("empty", 2, user(1))
	require.NoError(t, err)

	_, empty, err := g.Leave(r.ID(), 1)
	require.NoError(t, err)
	require.True(t, empty)

	_, ok := g.Get(r.ID())
	assert.False(t, ok)
	assert.Zero(t, g.Count())
}

func TestRoomStateMachineForwardOnly(t *testing.T) {
	g := NewRegistry()
	r, err := g.Create("states", 2, user(1))
	require.NoError(t, err)
	require.NoError(t, r.Join(user(2)))

	// Start before prepare is rejected.
	assert.ErrorIs(t, r.Start(1), ErrInvalidState)

	// Prepare needs every non-owner ready, and needs the owner.
	assert.ErrorIs(t, r.Prepare(1), ErrNotAllReady)
	require.NoError(t, r.SetReady(2, true))
	assert.ErrorIs(t, r.Prepare(2), ErrNotOwner)
	require.NoError(t, r.Prepare(1))
	assert.Equal(t, StatePrepare, r.State())

	// No joins, no ready changes, no second prepare once past Wait.
	assert.ErrorIs(t, r.Join(user(3)), ErrInvalidState)
	assert.ErrorIs(t, r.SetReady(2, false), ErrInvalidState)
	assert.ErrorIs(t, r.Prepare(1), ErrInvalidState)

	assert.ErrorIs(t, r.Start(2), ErrNotOwner)
	require.NoError(t, r.Start(1))
	assert.Equal(t, StateIngame, r.State())
	assert.ErrorIs(t, r.Start(1), ErrInvalidState)
}

func TestRoomPositionUpdates(t *testing.T) {
	g := NewRegistry()
	r, err := g.Create("pos", 2, user(1))
	require.NoError(t, err)
	require.NoError(t, r.Join(user(2)))

	assert.ErrorIs(t, r.UpdatePosition(1, 1, 1), ErrInvalidState)

	require.NoError(t, r.SetReady(2, true))
	require.NoError(t, r.Prepare(1))
	require.NoError(t, r.Start(1))

	require.NoError(t, r.UpdatePosition(1, 3.5, -1.25))
	assert.ErrorIs(t, r.UpdatePosition(99, 0, 0), ErrNotMember)
}

func TestRegistryListAndJoinRandom(t *testing.T) {
	g := NewRegistry()
	_, err := g.JoinRandom(user(10))
	assert.ErrorIs(t, err, ErrNoJoinable)

	r1, err := g.Create("a", 2, user(1))
	require.NoError(t, err)
	r2, err := g.Create("b", 2, user(2))
	require.NoError(t, err)

	list := g.List()
	require.Len(t, list, 2)
	assert.Equal(t, r1.ID(), list[0].ID)
	assert.Equal(t, r2.ID(), list[1].ID)

	// Fill both rooms; random join then has nowhere to go.
	_, err = g.JoinRandom(user(10))
	require.NoError(t, err)
	_, err = g.JoinRandom(user(11))
	require.NoError(t, err)
	_, err = g.JoinRandom(user(12))
	assert.ErrorIs(t, err, ErrNoJoinable)
}

func TestRoomReadyStates(t *testing.T) {
	g := NewRegistry()
	r, err := g.Create("ready", 4, user(1))
	require.NoError(t, err)
	require.NoError(t, r.Join(user(2)))
	require.NoError(t, r.Join(user(3)))
	require.NoError(t, r.SetReady(2, true))

	states := r.ReadyStates()
	require.Len(t, states, 3)
	assert.Equal(t, int64(1), states[0].UserID)
	assert.False(t, states[0].Ready)
	assert.Equal(t, int64(2), states[1].UserID)
	assert.True(t, states[1].Ready)
	assert.False(t, states[2].Ready)

	// The wire snapshot carries the same flags, parallel to Users.
	data := r.ToData()
	require.Len(t, data.ReadyStates, 3)
	assert.Equal(t, states, data.ReadyStates)

	// A new join resets the flags in the snapshot too.
	require.NoError(t, r.Join(user(4)))
	for _, s := range r.ToData().ReadyStates {
		assert.False(t, s.Ready, "user %d", s.UserID)
	}
}

func TestRoomToDataSnapshot(t *testing.T) {
	g := NewRegistry()
	r, err := g.Create("snap", 4, msg.UserSummary{ID: 1, Nickname: "owner"})
	require.NoError(t, err)
	require.NoError(t, r.Join(msg.UserSummary{ID: 2, Nickname: "guest"}))

	data := r.ToData()
	assert.Equal(t, r.ID(), data.ID)
	assert.Equal(t, int64(1), data.OwnerID)
	assert.Equal(t, int32(0), data.State)
	require.Len(t, data.Users, 2)
	assert.Equal(t, "owner", data.Users[0].Nickname)
	assert.Equal(t, "guest", data.Users[1].Nickname)
}
