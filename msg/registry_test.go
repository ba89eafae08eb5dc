package msg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRequestResponsePairs(t *testing.T) {
	r := NewRegistry()

	pairs := map[PacketID]PacketID{
		LoginRequest:          LoginResponse,
		GetRoomListRequest:    GetRoomListResponse,
		CreateRoomRequest:     CreateRoomResponse,
		JoinRoomRequest:       JoinRoomResponse,
		JoinRandomRoomRequest: JoinRandomRoomResponse,
		LeaveRoomRequest:      LeaveRoomResponse,
		GameReadyRequest:      GameReadyResponse,
		GamePrepareRequest:    GamePrepareResponse,
		GameStartRequest:      GameStartResponse,
		PositionUpdateRequest: PositionUpdateResponse,
	}
	for req, want := range pairs {
		resID, ok := r.ResponseID(uint16(req))
		require.True(t, ok, "request %d", req)
		assert.Equal(t, uint16(want), resID)
	}
}

func TestRegistryNonRequestsHaveNoResponse(t *testing.T) {
	r := NewRegistry()
	for _, id := range []PacketID{LoginResponse, JoinRoomNotification, GameStartNotification} {
		_, ok := r.ResponseID(uint16(id))
		assert.False(t, ok, "id %d", id)
	}
}

func TestRegistryCreateMsg(t *testing.T) {
	r := NewRegistry()

	m, err := r.CreateMsg(uint16(CreateRoomRequest))
	require.NoError(t, err)
	_, ok := m.(*C2SCreateRoomRequest)
	assert.True(t, ok)

	// Two calls never share a payload instance.
	m2, err := r.CreateMsg(uint16(CreateRoomRequest))
	require.NoError(t, err)
	assert.NotSame(t, m, m2)

	_, err = r.CreateMsg(60000)
	assert.Error(t, err)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	err := r.Register(&MsgProtoInfo{ID: LoginRequest, New: func() any { return &C2SLoginRequest{} }})
	assert.Error(t, err)
}
