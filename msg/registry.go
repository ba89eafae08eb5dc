package msg

import "fmt"

// MsgReqType classifies a packet's direction on the wire.
type MsgReqType int

const (
	// MsgReqTypeReq is a client-to-server request.
	MsgReqTypeReq MsgReqType = iota
	// MsgReqTypeRes is a server-to-client response to one request.
	MsgReqTypeRes
	// MsgReqTypeNtf is a server push with no originating request.
	MsgReqTypeNtf
)

// MsgProtoInfo describes one packet type: its id, how to construct an empty
// payload for decoding, and for requests the id of the matching response.
type MsgProtoInfo struct {
	ID      PacketID
	ResID   PacketID
	ReqType MsgReqType
	New     func() any
}

// Registry is the id -> proto-info table. It is populated once by
// NewRegistry and never mutated afterwards, so lookups need no lock.
type Registry struct {
	infos map[PacketID]*MsgProtoInfo
}

// Register adds one proto info. Duplicate ids are a programming error.
func (r *Registry) Register(info *MsgProtoInfo) error {
	if info == nil || info.New == nil {
		return fmt.Errorf("msg: nil proto info")
	}
	if _, ok := r.infos[info.ID]; ok {
		return fmt.Errorf("msg: duplicate packet id %d", info.ID)
	}
	r.infos[info.ID] = info
	return nil
}

// Lookup returns the proto info for id.
func (r *Registry) Lookup(id PacketID) (*MsgProtoInfo, bool) {
	info, ok := r.infos[id]
	return info, ok
}

// CreateMsg constructs an empty payload for the given wire id.
func (r *Registry) CreateMsg(id uint16) (any, error) {
	info, ok := r.infos[PacketID(id)]
	if !ok {
		return nil, fmt.Errorf("msg: unknown packet id %d", id)
	}
	return info.New(), nil
}

// ResponseID maps a request wire id to its response wire id.
func (r *Registry) ResponseID(id uint16) (uint16, bool) {
	info, ok := r.infos[PacketID(id)]
	if !ok || info.ReqType != MsgReqTypeReq {
		return 0, false
	}
	return uint16(info.ResID), true
}

// NewRegistry builds the full packet table.
func NewRegistry() *Registry {
	r := &Registry{infos: make(map[PacketID]*MsgProtoInfo)}

	reg := func(id, resID PacketID, reqType MsgReqType, newFn func() any) {
		if err := r.Register(&MsgProtoInfo{ID: id, ResID: resID, ReqType: reqType, New: newFn}); err != nil {
			panic(err)
		}
	}

	reg(LoginRequest, LoginResponse, MsgReqTypeReq, func() any { return &C2SLoginRequest{} })
	reg(LoginResponse, 0, MsgReqTypeRes, func() any { return &S2CLoginResponse{} })
	reg(GetRoomListRequest, GetRoomListResponse, MsgReqTypeReq, func() any { return &C2SGetRoomListRequest{} })
	reg(GetRoomListResponse, 0, MsgReqTypeRes, func() any { return &S2CGetRoomListResponse{} })
	reg(CreateRoomRequest, CreateRoomResponse, MsgReqTypeReq, func() any { return &C2SCreateRoomRequest{} })
	reg(CreateRoomResponse, 0, MsgReqTypeRes, func() any { return &S2CCreateRoomResponse{} })
	reg(JoinRoomRequest, JoinRoomResponse, MsgReqTypeReq, func() any { return &C2SJoinRoomRequest{} })
	reg(JoinRoomResponse, 0, MsgReqTypeRes, func() any { return &S2CJoinRoomResponse{} })
	reg(JoinRoomNotification, 0, MsgReqTypeNtf, func() any { return &S2CJoinRoomNotification{} })
	reg(JoinRandomRoomRequest, JoinRandomRoomResponse, MsgReqTypeReq, func() any { return &C2SJoinRandomRoomRequest{} })
	reg(JoinRandomRoomResponse, 0, MsgReqTypeRes, func() any { return &S2CJoinRandomRoomResponse{} })
	reg(LeaveRoomRequest, LeaveRoomResponse, MsgReqTypeReq, func() any { return &C2SLeaveRoomRequest{} })
	reg(LeaveRoomResponse, 0, MsgReqTypeRes, func() any { return &S2CLeaveRoomResponse{} })
	reg(LeaveRoomNotification, 0, MsgReqTypeNtf, func() any { return &S2CLeaveRoomNotification{} })
	reg(GameReadyRequest, GameReadyResponse, MsgReqTypeReq, func() any { return &C2SGameReadyRequest{} })
	reg(GameReadyResponse, 0, MsgReqTypeRes, func() any { return &S2CGameReadyResponse{} })
	reg(GameReadyNotification, 0, MsgReqTypeNtf, func() any { return &S2CGameReadyNotification{} })
	reg(GamePrepareRequest, GamePrepareResponse, MsgReqTypeReq, func() any { return &C2SGamePrepareRequest{} })
	reg(GamePrepareResponse, 0, MsgReqTypeRes, func() any { return &S2CGamePrepareResponse{} })
	reg(GamePrepareNotification, 0, MsgReqTypeNtf, func() any { return &S2CGamePrepareNotification{} })
	reg(GameStartRequest, GameStartResponse, MsgReqTypeReq, func() any { return &C2SGameStartRequest{} })
	reg(GameStartResponse, 0, MsgReqTypeRes, func() any { return &S2CGameStartResponse{} })
	reg(GameStartNotification, 0, MsgReqTypeNtf, func() any { return &S2CGameStartNotification{} })
	reg(PositionUpdateRequest, PositionUpdateResponse, MsgReqTypeReq, func() any { return &C2SPositionUpdateRequest{} })
	reg(PositionUpdateResponse, 0, MsgReqTypeRes, func() any { return &S2CPositionUpdateResponse{} })
	reg(PositionUpdateNotification, 0, MsgReqTypeNtf, func() any { return &S2CPositionUpdateNotification{} })

	return r
}
