package room

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/lcx/garuda/metrics"
	"github.com/lcx/garuda/msg"
)

// Registry owns all live rooms and hands out monotonically increasing room
// ids. The registry mutex guards only the map; per-room state is guarded by
// each room's own mutex.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[int64]*Room
	nextID int64
}

// NewRegistry returns an empty room registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[int64]*Room)}
}

// Create makes a new waiting room with owner as its first member.
func (g *Registry) Create(name string, maxUsers int32, owner msg.UserSummary) (*Room, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if maxUsers < MinUsers || maxUsers > MaxUsers {
		return nil, ErrBadCapacity
	}

	g.mu.Lock()
	g.nextID++
	r := &Room{
		id:       g.nextID,
		name:     name,
		maxUsers: maxUsers,
		ownerID:  owner.ID,
		state:    StateWait,
		members:  []*Member{{Summary: owner}},
	}
	g.rooms[r.id] = r
	n := len(g.rooms)
	g.mu.Unlock()

	metrics.UpdateGaugeWithGroup("room", "count", metrics.Value(n))
	return r, nil
}

// Get returns the room with the given id.
func (g *Registry) Get(id int64) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.rooms[id]
	return r, ok
}

// List snapshots every live room, ordered by id.
func (g *Registry) List() []msg.RoomData {
	g.mu.RLock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		rooms = append(rooms, r)
	}
	g.mu.RUnlock()

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].id < rooms[j].id })
	out := make([]msg.RoomData, len(rooms))
	for i, r := range rooms {
		out[i] = r.ToData()
	}
	return out
}

// Join adds user to the room with the given id.
func (g *Registry) Join(id int64, user msg.UserSummary) (*Room, error) {
	r, ok := g.Get(id)
	if !ok {
		return nil, ErrRoomNotFound
	}
	if err := r.Join(user); err != nil {
		return nil, err
	}
	return r, nil
}

// JoinRandom picks a joinable room at random. The pick and the join are not
// atomic; when the chosen room fills in between, the join error surfaces to
// the caller rather than retrying.
func (g *Registry) JoinRandom(user msg.UserSummary) (*Room, error) {
	g.mu.RLock()
	candidates := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		candidates = append(candidates, r)
	}
	g.mu.RUnlock()

	joinable := candidates[:0]
	for _, r := range candidates {
		if r.joinable() {
			joinable = append(joinable, r)
		}
	}
	if len(joinable) == 0 {
		return nil, ErrNoJoinable
	}

	r := joinable[rand.Intn(len(joinable))]
	if err := r.Join(user); err != nil {
		return nil, err
	}
	return r, nil
}

// Leave removes userID from the room and deletes the room the moment it
// empties.
func (g *Registry) Leave(id, userID int64) (newOwnerID int64, empty bool, err error) {
	r, ok := g.Get(id)
	if !ok {
		return 0, false, ErrRoomNotFound
	}
	newOwnerID, empty, err = r.Leave(userID)
	if err != nil {
		return 0, false, err
	}
	if empty {
		g.mu.Lock()
		delete(g.rooms, id)
		n := len(g.rooms)
		g.mu.Unlock()
		metrics.UpdateGaugeWithGroup("room", "count", metrics.Value(n))
	}
	return newOwnerID, empty, nil
}

// Count returns the number of live rooms.
func (g *Registry) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}
