package net

import (
	"context"
	stdnet "net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lcx/garuda/codec"
	"github.com/lcx/garuda/msg"
)

// End to end over an in-memory pipe: client frames a request, the session
// reassembles and dispatches it, and the response comes back framed with
// the request's sequence.
func TestSessionRequestResponse(t *testing.T) {
	client, server := stdnet.Pipe()
	defer client.Close()

	d := NewDispatcher(msg.NewRegistry())
	RegisterHandler(d, uint16(msg.PositionUpdateRequest), func(ctx context.Context, sess *Session, req *msg.C2SPositionUpdateRequest) (any, error) {
		return &msg.S2CPositionUpdateResponse{Success: true}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewSession(server, SessionOptions{})
	defer s.Dispose("test cleanup")
	go s.Run(ctx, func(sess *Session, f *Frame) { d.Dispatch(ctx, sess, f) })

	payload, err := codec.Encode(&msg.C2SPositionUpdateRequest{X: 3, Y: 4}, nil)
	require.NoError(t, err)
	data, err := EncodeFrame(uint16(msg.PositionUpdateRequest), 77, payload)
	require.NoError(t, err)

	require.NoError(t, client.SetDeadline(time.Now().Add(2*time.Second)))
	_, err = client.Write(data)
	require.NoError(t, err)

	reasm := NewReassembler()
	buf := make([]byte, 4096)
	for {
		n, err := client.Read(buf)
		require.NoError(t, err)
		frames, err := reasm.Push(buf[:n])
		require.NoError(t, err)
		if len(frames) == 0 {
			continue
		}
		require.Len(t, frames, 1)
		require.Equal(t, uint16(msg.PositionUpdateResponse), frames[0].TypeID)
		require.Equal(t, uint32(77), frames[0].Sequence)

		var res msg.S2CPositionUpdateResponse
		require.NoError(t, codec.Decode(&res, frames[0].Payload))
		require.True(t, res.Success)
		break
	}
}

func TestSessionDisposesOnClientClose(t *testing.T) {
	client, server := stdnet.Pipe()

	d := NewDispatcher(msg.NewRegistry())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewSession(server, SessionOptions{})
	done := make(chan struct{})
	go func() {
		s.Run(ctx, func(sess *Session, f *Frame) { d.Dispatch(ctx, sess, f) })
		close(done)
	}()

	require.NoError(t, client.Close())
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not shut down after client close")
	}
	require.Equal(t, StateClosed, s.State())
}
