// Package room implements lobby rooms: an ordered member list, ready
// flags, the Wait -> Prepare -> Ingame state machine, and the registry that
// owns room ids and random matchmaking.
package room

import (
	"errors"
	"sync"

	"github.com/lcx/garuda/msg"
)

// State is the room lifecycle. Transitions only move forward.
type State int32

const (
	StateWait State = iota
	StatePrepare
	StateIngame
)

const (
	// MinUsers and MaxUsers bound room capacity.
	MinUsers = 2
	MaxUsers = 8
)

var (
	ErrRoomFull      = errors.New("room: full")
	ErrRoomNotFound  = errors.New("room: not found")
	ErrInvalidState  = errors.New("room: invalid state for operation")
	ErrNotOwner      = errors.New("room: caller is not the owner")
	ErrNotMember     = errors.New("room: user is not a member")
	ErrAlreadyMember = errors.New("room: user already joined")
	ErrNotAllReady   = errors.New("room: not all members ready")
	ErrBadCapacity   = errors.New("room: capacity out of range")
	ErrEmptyName     = errors.New("room: name cannot be empty")
	ErrNoJoinable    = errors.New("room: no joinable room")
)

// Member is one user inside a room, with their ready flag and last known
// in-game position.
type Member struct {
	Summary msg.UserSummary
	Ready   bool
	X, Y    float64
}

// Room holds members in join order. All member and state access goes
// through the room's own mutex; the registry's map guard never protects
// room internals.
type Room struct {
	id       int64
	name     string
	maxUsers int32

	mu      sync.Mutex
	ownerID int64
	state   State
	members []*Member
}

// ID returns the room id.
func (r *Room) ID() int64 { return r.id }

// Name returns the room name.
func (r *Room) Name() string { return r.name }

// OwnerID returns the current owner.
func (r *Room) OwnerID() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ownerID
}

// State returns the current lifecycle state.
func (r *Room) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Join appends user to the member list. Only rooms still waiting accept
// joins, and every member's ready flag resets so the new lineup must
// re-confirm.
func (r *Room) Join(user msg.UserSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateWait {
		return ErrInvalidState
	}
	if int32(len(r.members)) >= r.maxUsers {
		return ErrRoomFull
	}
	for _, m := range r.members {
		if m.Summary.ID == user.ID {
			return ErrAlreadyMember
		}
	}
	for _, m := range r.members {
		m.Ready = false
	}
	r.members = append(r.members, &Member{Summary: user})
	return nil
}

// Leave removes userID preserving join order. When the owner leaves,
// ownership moves to the earliest remaining joiner; newOwnerID is zero if
// the owner did not change. empty reports that the room is now deserted
// and must be deleted.
func (r *Room) Leave(userID int64) (newOwnerID int64, empty bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, m := range r.members {
		if m.Summary.ID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, false, ErrNotMember
	}
	r.members = append(r.members[:idx], r.members[idx+1:]...)

	if len(r.members) == 0 {
		return 0, true, nil
	}
	if r.ownerID == userID {
		r.ownerID = r.members[0].Summary.ID
		newOwnerID = r.ownerID
	}
	return newOwnerID, false, nil
}

// SetReady flips userID's ready flag. Only meaningful while waiting.
func (r *Room) SetReady(userID int64, ready bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateWait {
		return ErrInvalidState
	}
	for _, m := range r.members {
		if m.Summary.ID == userID {
			m.Ready = ready
			return nil
		}
	}
	return ErrNotMember
}

// Prepare moves Wait -> Prepare. Only the owner may call it, and every
// other member must be ready.
func (r *Room) Prepare(callerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateWait {
		return ErrInvalidState
	}
	if r.ownerID != callerID {
		return ErrNotOwner
	}
	for _, m := range r.members {
		if m.Summary.ID != r.ownerID && !m.Ready {
			return ErrNotAllReady
		}
	}
	r.state = StatePrepare
	return nil
}

// Start moves Prepare -> Ingame. Owner only.
func (r *Room) Start(callerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StatePrepare {
		return ErrInvalidState
	}
	if r.ownerID != callerID {
		return ErrNotOwner
	}
	r.state = StateIngame
	return nil
}

// UpdatePosition records userID's position. Only valid in game.
func (r *Room) UpdatePosition(userID int64, x, y float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateIngame {
		return ErrInvalidState
	}
	for _, m := range r.members {
		if m.Summary.ID == userID {
			m.X, m.Y = x, y
			return nil
		}
	}
	return ErrNotMember
}

// MemberIDs returns the member user ids in join order.
func (r *Room) MemberIDs() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]int64, len(r.members))
	for i, m := range r.members {
		ids[i] = m.Summary.ID
	}
	return ids
}

// ReadyStates returns every member's ready flag in join order.
func (r *Room) ReadyStates() []msg.RoomUserReady {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readyStatesLocked()
}

func (r *Room) readyStatesLocked() []msg.RoomUserReady {
	states := make([]msg.RoomUserReady, len(r.members))
	for i, m := range r.members {
		states[i] = msg.RoomUserReady{UserID: m.Summary.ID, Ready: m.Ready}
	}
	return states
}

// Contains reports whether userID is a member.
func (r *Room) Contains(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.Summary.ID == userID {
			return true
		}
	}
	return false
}

// ToData snapshots the room for the wire.
func (r *Room) ToData() msg.RoomData {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]msg.UserSummary, len(r.members))
	for i, m := range r.members {
		users[i] = m.Summary
	}
	return msg.RoomData{
		ID:          r.id,
		OwnerID:     r.ownerID,
		Name:        r.name,
		MaxUsers:    r.maxUsers,
		State:       int32(r.state),
		Users:       users,
		ReadyStates: r.readyStatesLocked(),
	}
}

func (r *Room) joinable() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == StateWait && int32(len(r.members)) < r.maxUsers
}
