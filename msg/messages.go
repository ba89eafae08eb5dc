package msg

// CharacterSummary is the in-game character attached to a user profile.
type CharacterSummary struct {
	CharacterType int32 `json:"characterType"`
	Hp            int32 `json:"hp"`
}

// UserSummary is the wire view of a connected user.
type UserSummary struct {
	ID        int64            `json:"id"`
	Nickname  string           `json:"nickname"`
	Character CharacterSummary `json:"character"`
}

// RoomUserReady is one member's ready flag.
type RoomUserReady struct {
	UserID int64 `json:"userId"`
	Ready  bool  `json:"isReady"`
}

// RoomData is the wire view of a room. State uses the numeric room state
// (0 wait, 1 prepare, 2 ingame); ReadyStates parallels Users in join order.
type RoomData struct {
	ID          int64           `json:"id"`
	OwnerID     int64           `json:"ownerId"`
	Name        string          `json:"name"`
	MaxUsers    int32           `json:"maxUserNum"`
	State       int32           `json:"state"`
	Users       []UserSummary   `json:"users"`
	ReadyStates []RoomUserReady `json:"readyStates"`
}

// SpawnPoint positions one user at game start.
type SpawnPoint struct {
	UserID int64   `json:"userId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// C2SLoginRequest authenticates a connection. Either an email/password pair
// or a previously issued token may be supplied.
type C2SLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Token    string `json:"token"`
}

type S2CLoginResponse struct {
	Success  bool         `json:"success"`
	Token    string       `json:"token"`
	FailCode FailCode     `json:"failCode"`
	MyInfo   *UserSummary `json:"myInfo,omitempty"`
}

type C2SGetRoomListRequest struct{}

type S2CGetRoomListResponse struct {
	Success  bool       `json:"success"`
	Rooms    []RoomData `json:"rooms"`
	FailCode FailCode   `json:"failCode"`
}

type C2SCreateRoomRequest struct {
	Name     string `json:"name"`
	MaxUsers int32  `json:"maxUserNum"`
}

type S2CCreateRoomResponse struct {
	Success  bool      `json:"success"`
	Room     *RoomData `json:"room,omitempty"`
	FailCode FailCode  `json:"failCode"`
}

type C2SJoinRoomRequest struct {
	RoomID int64 `json:"roomId"`
}

type S2CJoinRoomResponse struct {
	Success  bool      `json:"success"`
	Room     *RoomData `json:"room,omitempty"`
	FailCode FailCode  `json:"failCode"`
}

// S2CJoinRoomNotification tells existing members who just joined.
type S2CJoinRoomNotification struct {
	JoinUser UserSummary `json:"joinUser"`
}

type C2SJoinRandomRoomRequest struct{}

type S2CJoinRandomRoomResponse struct {
	Success  bool      `json:"success"`
	Room     *RoomData `json:"room,omitempty"`
	FailCode FailCode  `json:"failCode"`
}

type C2SLeaveRoomRequest struct{}

type S2CLeaveRoomResponse struct {
	Success  bool     `json:"success"`
	FailCode FailCode `json:"failCode"`
}

// S2CLeaveRoomNotification tells remaining members who left and, when
// ownership moved, who owns the room now. NewOwnerID is zero when the owner
// did not change.
type S2CLeaveRoomNotification struct {
	UserID     int64 `json:"userId"`
	NewOwnerID int64 `json:"newOwnerId"`
}

type C2SGameReadyRequest struct {
	Ready bool `json:"isReady"`
}

type S2CGameReadyResponse struct {
	Success  bool     `json:"success"`
	FailCode FailCode `json:"failCode"`
}

type S2CGameReadyNotification struct {
	UserID int64 `json:"userId"`
	Ready  bool  `json:"isReady"`
}

type C2SGamePrepareRequest struct{}

type S2CGamePrepareResponse struct {
	Success  bool      `json:"success"`
	Room     *RoomData `json:"room,omitempty"`
	FailCode FailCode  `json:"failCode"`
}

type S2CGamePrepareNotification struct {
	Room RoomData `json:"room"`
}

type C2SGameStartRequest struct{}

type S2CGameStartResponse struct {
	Success  bool     `json:"success"`
	FailCode FailCode `json:"failCode"`
}

// S2CGameStartNotification carries the selected game server endpoint, a
// one-time game token, and the spawn position of every member.
type S2CGameStartNotification struct {
	Host      string       `json:"host"`
	Port      int32        `json:"port"`
	GameToken string       `json:"gameToken"`
	Spawns    []SpawnPoint `json:"spawns"`
}

type C2SPositionUpdateRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type S2CPositionUpdateResponse struct {
	Success  bool     `json:"success"`
	FailCode FailCode `json:"failCode"`
}

type S2CPositionUpdateNotification struct {
	UserID int64   `json:"userId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}
