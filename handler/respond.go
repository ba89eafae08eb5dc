// Package handler implements the lobby's request handlers: login, room
// management, game start, and in-game position relay. Handlers run on the
// per-session receive queue, so packets from one client are processed in
// order.
package handler

import (
	"github.com/lcx/garuda/log"
	"github.com/lcx/garuda/msg"
	"github.com/lcx/garuda/net"
	"github.com/lcx/garuda/room"
)

// FailureResponse builds the generic failure payload for a response id. The
// dispatcher sends it when a handler errors or panics, so the client's
// pending request always resolves.
func FailureResponse(resID uint16) any {
	switch msg.PacketID(resID) {
	case msg.LoginResponse:
		return &msg.S2CLoginResponse{FailCode: msg.FailUnknownError}
	case msg.GetRoomListResponse:
		return &msg.S2CGetRoomListResponse{FailCode: msg.FailUnknownError}
	case msg.CreateRoomResponse:
		return &msg.S2CCreateRoomResponse{FailCode: msg.FailUnknownError}
	case msg.JoinRoomResponse:
		return &msg.S2CJoinRoomResponse{FailCode: msg.FailUnknownError}
	case msg.JoinRandomRoomResponse:
		return &msg.S2CJoinRandomRoomResponse{FailCode: msg.FailUnknownError}
	case msg.LeaveRoomResponse:
		return &msg.S2CLeaveRoomResponse{FailCode: msg.FailUnknownError}
	case msg.GameReadyResponse:
		return &msg.S2CGameReadyResponse{FailCode: msg.FailUnknownError}
	case msg.GamePrepareResponse:
		return &msg.S2CGamePrepareResponse{FailCode: msg.FailUnknownError}
	case msg.GameStartResponse:
		return &msg.S2CGameStartResponse{FailCode: msg.FailUnknownError}
	case msg.PositionUpdateResponse:
		return &msg.S2CPositionUpdateResponse{FailCode: msg.FailUnknownError}
	default:
		return nil
	}
}

// notifyMembers pushes m to every room member except excludeUserID. Dead or
// missing sessions are skipped; a push is best-effort.
func (s *Service) notifyMembers(r *room.Room, excludeUserID int64, typeID msg.PacketID, m any) {
	for _, uid := range r.MemberIDs() {
		if uid == excludeUserID {
			continue
		}
		s.notifyUser(uid, typeID, m)
	}
}

func (s *Service) notifyUser(userID int64, typeID msg.PacketID, m any) {
	sess, ok := s.sessions.GetByUserID(userID)
	if !ok {
		return
	}
	if err := sess.Send(uint16(typeID), net.NextSequence(), m); err != nil {
		log.Debug().Int64("user", userID).Uint16("type", uint16(typeID)).Err(err).Msg("notification send failed")
	}
}

// failCodeFor maps room errors to wire fail codes.
func failCodeFor(err error, fallback msg.FailCode) msg.FailCode {
	switch err {
	case nil:
		return msg.FailNone
	case room.ErrRoomNotFound:
		return msg.FailRoomNotFound
	case room.ErrRoomFull:
		return msg.FailRoomFull
	case room.ErrInvalidState, room.ErrNotOwner, room.ErrNotAllReady:
		return msg.FailInvalidRoomState
	case room.ErrBadCapacity, room.ErrEmptyName, room.ErrAlreadyMember, room.ErrNotMember:
		return msg.FailInvalidRequest
	default:
		return fallback
	}
}
