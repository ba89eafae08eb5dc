// Package msg defines the packet vocabulary the lobby speaks: packet ids,
// business fail codes, payload structs, and the compile-time registry that
// maps ids to constructors. Registration happens once at startup; the table
// is read-only afterwards.
package msg

// PacketID identifies a packet type on the wire.
type PacketID uint16

const (
	PacketNone PacketID = iota
	LoginRequest
	LoginResponse
	GetRoomListRequest
	GetRoomListResponse
	CreateRoomRequest
	CreateRoomResponse
	JoinRoomRequest
	JoinRoomResponse
	JoinRoomNotification
	JoinRandomRoomRequest
	JoinRandomRoomResponse
	LeaveRoomRequest
	LeaveRoomResponse
	LeaveRoomNotification
	GameReadyRequest
	GameReadyResponse
	GameReadyNotification
	GamePrepareRequest
	GamePrepareResponse
	GamePrepareNotification
	GameStartRequest
	GameStartResponse
	GameStartNotification
	PositionUpdateRequest
	PositionUpdateResponse
	PositionUpdateNotification
)

// FailCode enumerates business failures. They travel inside response
// payloads; transport-level errors never carry them.
type FailCode int32

const (
	FailNone FailCode = iota
	FailUnknownError
	FailInvalidRequest
	FailAuthenticationFailed
	FailCreateRoomFailed
	FailJoinRoomFailed
	FailLeaveRoomFailed
	FailRoomNotFound
	FailRoomFull
	FailInvalidRoomState
)
