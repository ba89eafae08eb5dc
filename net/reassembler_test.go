package net

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReassemblerByteAtATime(t *testing.T) {
	payload := []byte(`{"x":1.5,"y":-2.25}`)
	data, err := EncodeFrame(24, 3, payload)
	require.NoError(t, err)

	r := NewReassembler()
	for i := 0; i < len(data)-1; i++ {
		frames, err := r.Push(data[i : i+1])
		require.NoError(t, err)
		require.Empty(t, frames)
	}
	frames, err := r.Push(data[len(data)-1:])
	require.NoError(t, err)
	require.Len(t, frames, 1)
	require.Equal(t, uint16(24), frames[0].TypeID)
	require.Equal(t, payload, frames[0].Payload)
	require.Zero(t, r.Pending())
}

func TestReassemblerMultipleFramesOnePush(t *testing.T) {
	a, err := EncodeFrame(1, 1, []byte("first"))
	require.NoError(t, err)
	b, err := EncodeFrame(2, 2, []byte("second"))
	require.NoError(t, err)

	r := NewReassembler()
	frames, err := r.Push(append(append([]byte{}, a...), b...))
	require.NoError(t, err)
	require.Len(t, frames, 2)
	require.Equal(t, uint16(1), frames[0].TypeID)
	require.Equal(t, uint16(2), frames[1].TypeID)
}

func TestReassemblerResyncAfterGarbage(t *testing.T) {
	data, err := EncodeFrame(300, 5, []byte("payload"))
	require.NoError(t, err)

	stream := append([]byte{0x00, 0x00, 0x00}, data...)
	r := NewReassembler()
	frames, err := r.Push(stream)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	require.Equal(t, uint16(300), frames[0].TypeID)
	require.True(t, bytes.Equal([]byte("payload"), frames[0].Payload))
}

func TestReassemblerGivesUpOnEndlessGarbage(t *testing.T) {
	r := NewReassembler()
	var lastErr error
	for i := 0; i < 40 && lastErr == nil; i++ {
		_, lastErr = r.Push(make([]byte, 4096))
	}
	require.Error(t, lastErr)
}
