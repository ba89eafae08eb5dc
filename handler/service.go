package handler

import (
	"github.com/lcx/garuda/auth"
	"github.com/lcx/garuda/balancer"
	"github.com/lcx/garuda/log"
	"github.com/lcx/garuda/msg"
	"github.com/lcx/garuda/net"
	"github.com/lcx/garuda/room"
)

// Service bundles the collaborators every handler needs.
type Service struct {
	sessions *net.SessionRegistry
	rooms    *room.Registry
	lb       *balancer.LoadBalancer
	authn    auth.Authenticator
	tokens   *auth.TokenService
}

// New wires the handler service.
func New(sessions *net.SessionRegistry, rooms *room.Registry, lb *balancer.LoadBalancer, authn auth.Authenticator, tokens *auth.TokenService) *Service {
	return &Service{
		sessions: sessions,
		rooms:    rooms,
		lb:       lb,
		authn:    authn,
		tokens:   tokens,
	}
}

// RegisterAll installs every request handler on the dispatcher.
func (s *Service) RegisterAll(d *net.Dispatcher) {
	net.RegisterHandler(d, uint16(msg.LoginRequest), s.handleLogin)
	net.RegisterHandler(d, uint16(msg.GetRoomListRequest), s.handleGetRoomList)
	net.RegisterHandler(d, uint16(msg.CreateRoomRequest), s.handleCreateRoom)
	net.RegisterHandler(d, uint16(msg.JoinRoomRequest), s.handleJoinRoom)
	net.RegisterHandler(d, uint16(msg.JoinRandomRoomRequest), s.handleJoinRandomRoom)
	net.RegisterHandler(d, uint16(msg.LeaveRoomRequest), s.handleLeaveRoom)
	net.RegisterHandler(d, uint16(msg.GameReadyRequest), s.handleGameReady)
	net.RegisterHandler(d, uint16(msg.GamePrepareRequest), s.handleGamePrepare)
	net.RegisterHandler(d, uint16(msg.GameStartRequest), s.handleGameStart)
	net.RegisterHandler(d, uint16(msg.PositionUpdateRequest), s.handlePositionUpdate)
}

// OnSessionDispose is the session dispose hook: a vanished connection
// leaves its room immediately, with the same broadcast an explicit leave
// produces. Runs before registry removal.
func (s *Service) OnSessionDispose(sess *net.Session) {
	roomID := sess.RoomID()
	userID := sess.UserID()
	if roomID == 0 || userID == 0 {
		return
	}
	sess.SetRoomID(0)

	newOwnerID, empty, err := s.rooms.Leave(roomID, userID)
	if err != nil {
		log.Debug().Int64("room", roomID).Int64("user", userID).Err(err).Msg("room cleanup on dispose failed")
		return
	}
	if empty {
		return
	}
	if r, ok := s.rooms.Get(roomID); ok {
		s.notifyMembers(r, userID, msg.LeaveRoomNotification, &msg.S2CLeaveRoomNotification{
			UserID:     userID,
			NewOwnerID: newOwnerID,
		})
	}
}

// requireAuth returns the caller's profile, or nil when the session has not
// logged in yet.
func (s *Service) requireAuth(sess *net.Session) *msg.UserSummary {
	if sess.State() != net.StateAuthenticated {
		return nil
	}
	return sess.Profile()
}

// memberRoom resolves the caller's current room.
func (s *Service) memberRoom(sess *net.Session) (*room.Room, bool) {
	roomID := sess.RoomID()
	if roomID == 0 {
		return nil, false
	}
	return s.rooms.Get(roomID)
}
