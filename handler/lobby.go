package handler

import (
	"context"

	"github.com/lcx/garuda/log"
	"github.com/lcx/garuda/metrics"
	"github.com/lcx/garuda/msg"
	"github.com/lcx/garuda/net"
	"github.com/lcx/garuda/room"
)

func (s *Service) handleGetRoomList(ctx context.Context, sess *net.Session, req *msg.C2SGetRoomListRequest) (any, error) {
	if s.requireAuth(sess) == nil {
		return &msg.S2CGetRoomListResponse{FailCode: msg.FailAuthenticationFailed}, nil
	}
	return &msg.S2CGetRoomListResponse{Success: true, Rooms: s.rooms.List()}, nil
}

func (s *Service) handleCreateRoom(ctx context.Context, sess *net.Session, req *msg.C2SCreateRoomRequest) (any, error) {
	profile := s.requireAuth(sess)
	if profile == nil {
		return &msg.S2CCreateRoomResponse{FailCode: msg.FailAuthenticationFailed}, nil
	}
	if sess.RoomID() != 0 {
		return &msg.S2CCreateRoomResponse{FailCode: msg.FailCreateRoomFailed}, nil
	}

	r, err := s.rooms.Create(req.Name, req.MaxUsers, *profile)
	if err != nil {
		return &msg.S2CCreateRoomResponse{FailCode: failCodeFor(err, msg.FailCreateRoomFailed)}, nil
	}
	sess.SetRoomID(r.ID())

	metrics.IncrCounterWithGroup("room", "created", 1)
	log.Info().Int64("room", r.ID()).Int64("owner", profile.ID).Str("name", r.Name()).Msg("room created")
	data := r.ToData()
	return &msg.S2CCreateRoomResponse{Success: true, Room: &data}, nil
}

func (s *Service) handleJoinRoom(ctx context.Context, sess *net.Session, req *msg.C2SJoinRoomRequest) (any, error) {
	profile := s.requireAuth(sess)
	if profile == nil {
		return &msg.S2CJoinRoomResponse{FailCode: msg.FailAuthenticationFailed}, nil
	}
	if sess.RoomID() != 0 {
		return &msg.S2CJoinRoomResponse{FailCode: msg.FailJoinRoomFailed}, nil
	}

	r, err := s.rooms.Join(req.RoomID, *profile)
	if err != nil {
		return &msg.S2CJoinRoomResponse{FailCode: failCodeFor(err, msg.FailJoinRoomFailed)}, nil
	}
	sess.SetRoomID(r.ID())

	s.notifyMembers(r, profile.ID, msg.JoinRoomNotification, &msg.S2CJoinRoomNotification{JoinUser: *profile})
	log.Info().Int64("room", r.ID()).Int64("user", profile.ID).Msg("user joined room")
	data := r.ToData()
	return &msg.S2CJoinRoomResponse{Success: true, Room: &data}, nil
}

func (s *Service) handleJoinRandomRoom(ctx context.Context, sess *net.Session, req *msg.C2SJoinRandomRoomRequest) (any, error) {
	profile := s.requireAuth(sess)
	if profile == nil {
		return &msg.S2CJoinRandomRoomResponse{FailCode: msg.FailAuthenticationFailed}, nil
	}
	if sess.RoomID() != 0 {
		return &msg.S2CJoinRandomRoomResponse{FailCode: msg.FailJoinRoomFailed}, nil
	}

	r, err := s.rooms.JoinRandom(*profile)
	if err != nil {
		if err == room.ErrNoJoinable {
			return &msg.S2CJoinRandomRoomResponse{FailCode: msg.FailRoomNotFound}, nil
		}
		return &msg.S2CJoinRandomRoomResponse{FailCode: failCodeFor(err, msg.FailJoinRoomFailed)}, nil
	}
	sess.SetRoomID(r.ID())

	s.notifyMembers(r, profile.ID, msg.JoinRoomNotification, &msg.S2CJoinRoomNotification{JoinUser: *profile})
	log.Info().Int64("room", r.ID()).Int64("user", profile.ID).Msg("user joined random room")
	data := r.ToData()
	return &msg.S2CJoinRandomRoomResponse{Success: true, Room: &data}, nil
}

func (s *Service) handleLeaveRoom(ctx context.Context, sess *net.Session, req *msg.C2SLeaveRoomRequest) (any, error) {
	profile := s.requireAuth(sess)
	if profile == nil {
		return &msg.S2CLeaveRoomResponse{FailCode: msg.FailAuthenticationFailed}, nil
	}
	roomID := sess.RoomID()
	if roomID == 0 {
		return &msg.S2CLeaveRoomResponse{FailCode: msg.FailLeaveRoomFailed}, nil
	}

	newOwnerID, empty, err := s.rooms.Leave(roomID, profile.ID)
	if err != nil {
		return &msg.S2CLeaveRoomResponse{FailCode: failCodeFor(err, msg.FailLeaveRoomFailed)}, nil
	}
	sess.SetRoomID(0)

	if !empty {
		if r, ok := s.rooms.Get(roomID); ok {
			s.notifyMembers(r, profile.ID, msg.LeaveRoomNotification, &msg.S2CLeaveRoomNotification{
				UserID:     profile.ID,
				NewOwnerID: newOwnerID,
			})
		}
	}
	log.Info().Int64("room", roomID).Int64("user", profile.ID).Bool("empty", empty).Msg("user left room")
	return &msg.S2CLeaveRoomResponse{Success: true}, nil
}

func (s *Service) handleGameReady(ctx context.Context, sess *net.Session, req *msg.C2SGameReadyRequest) (any, error) {
	profile := s.requireAuth(sess)
	if profile == nil {
		return &msg.S2CGameReadyResponse{FailCode: msg.FailAuthenticationFailed}, nil
	}
	r, ok := s.memberRoom(sess)
	if !ok {
		return &msg.S2CGameReadyResponse{FailCode: msg.FailRoomNotFound}, nil
	}

	if err := r.SetReady(profile.ID, req.Ready); err != nil {
		return &msg.S2CGameReadyResponse{FailCode: failCodeFor(err, msg.FailInvalidRoomState)}, nil
	}

	s.notifyMembers(r, profile.ID, msg.GameReadyNotification, &msg.S2CGameReadyNotification{
		UserID: profile.ID,
		Ready:  req.Ready,
	})
	return &msg.S2CGameReadyResponse{Success: true}, nil
}

func (s *Service) handleGamePrepare(ctx context.Context, sess *net.Session, req *msg.C2SGamePrepareRequest) (any, error) {
	profile := s.requireAuth(sess)
	if profile == nil {
		return &msg.S2CGamePrepareResponse{FailCode: msg.FailAuthenticationFailed}, nil
	}
	r, ok := s.memberRoom(sess)
	if !ok {
		return &msg.S2CGamePrepareResponse{FailCode: msg.FailRoomNotFound}, nil
	}

	if err := r.Prepare(profile.ID); err != nil {
		return &msg.S2CGamePrepareResponse{FailCode: failCodeFor(err, msg.FailInvalidRoomState)}, nil
	}

	data := r.ToData()
	s.notifyMembers(r, profile.ID, msg.GamePrepareNotification, &msg.S2CGamePrepareNotification{Room: data})
	log.Info().Int64("room", r.ID()).Msg("room entered prepare state")
	return &msg.S2CGamePrepareResponse{Success: true, Room: &data}, nil
}
