package handler

import (
	"context"

	"github.com/lcx/garuda/balancer"
	"github.com/lcx/garuda/log"
	"github.com/lcx/garuda/metrics"
	"github.com/lcx/garuda/msg"
	"github.com/lcx/garuda/net"
	"github.com/lcx/garuda/room"
)

// handleGameStart moves the room in game, picks a game server for it, and
// pushes the endpoint, a one-time game token, and distinct spawn points to
// every member.
func (s *Service) handleGameStart(ctx context.Context, sess *net.Session, req *msg.C2SGameStartRequest) (any, error) {
	profile := s.requireAuth(sess)
	if profile == nil {
		return &msg.S2CGameStartResponse{FailCode: msg.FailAuthenticationFailed}, nil
	}
	r, ok := s.memberRoom(sess)
	if !ok {
		return &msg.S2CGameStartResponse{FailCode: msg.FailRoomNotFound}, nil
	}

	if r.State() != room.StatePrepare || r.OwnerID() != profile.ID {
		return &msg.S2CGameStartResponse{FailCode: msg.FailInvalidRoomState}, nil
	}

	memberIDs := r.MemberIDs()
	server, err := s.lb.Select(ctx, int32(len(memberIDs)))
	if err != nil {
		if err == balancer.ErrNoServer {
			log.Warn().Int64("room", r.ID()).Msg("no game server available for start")
			return &msg.S2CGameStartResponse{FailCode: msg.FailInvalidRequest}, nil
		}
		return nil, err
	}

	if err := r.Start(profile.ID); err != nil {
		return &msg.S2CGameStartResponse{FailCode: failCodeFor(err, msg.FailInvalidRoomState)}, nil
	}

	gameToken, err := s.tokens.IssueGameToken(ctx, r.ID(), memberIDs)
	if err != nil {
		return nil, err
	}

	points := room.RandomSpawnPoints(len(memberIDs))
	spawns := make([]msg.SpawnPoint, len(memberIDs))
	for i, uid := range memberIDs {
		spawns[i] = msg.SpawnPoint{UserID: uid, X: points[i][0], Y: points[i][1]}
	}

	ntf := &msg.S2CGameStartNotification{
		Host:      server.Host,
		Port:      server.Port,
		GameToken: gameToken,
		Spawns:    spawns,
	}
	for _, uid := range memberIDs {
		s.notifyUser(uid, msg.GameStartNotification, ntf)
	}

	metrics.IncrCounterWithGroup("game", "started", 1)
	log.Info().Int64("room", r.ID()).Str("server", server.Addr()).Int("members", len(memberIDs)).Msg("game started")
	return &msg.S2CGameStartResponse{Success: true}, nil
}

// handlePositionUpdate records the caller's position and relays it to the
// other members.
func (s *Service) handlePositionUpdate(ctx context.Context, sess *net.Session, req *msg.C2SPositionUpdateRequest) (any, error) {
	profile := s.requireAuth(sess)
	if profile == nil {
		return &msg.S2CPositionUpdateResponse{FailCode: msg.FailAuthenticationFailed}, nil
	}
	r, ok := s.memberRoom(sess)
	if !ok {
		return &msg.S2CPositionUpdateResponse{FailCode: msg.FailRoomNotFound}, nil
	}

	if err := r.UpdatePosition(profile.ID, req.X, req.Y); err != nil {
		return &msg.S2CPositionUpdateResponse{FailCode: failCodeFor(err, msg.FailInvalidRoomState)}, nil
	}

	s.notifyMembers(r, profile.ID, msg.PositionUpdateNotification, &msg.S2CPositionUpdateNotification{
		UserID: profile.ID,
		X:      req.X,
		Y:      req.Y,
	})
	return &msg.S2CPositionUpdateResponse{Success: true}, nil
}
