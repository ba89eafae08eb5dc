package net

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	payload := []byte(`{"roomId":7}`)
	data, err := EncodeFrame(42, 9, payload)
	require.NoError(t, err)

	ok, total := TryGetFrameLength(data)
	require.True(t, ok)
	require.Equal(t, len(data), total)

	f, err := DecodeFrame(data)
	require.NoError(t, err)
	assert.Equal(t, uint16(42), f.TypeID)
	assert.Equal(t, ProtocolVersion, f.Version)
	assert.Equal(t, uint32(9), f.Sequence)
	assert.Equal(t, payload, f.Payload)
}

func TestEncodeFrameLimits(t *testing.T) {
	if _, err := EncodeFrame(1, 1, nil); err == nil {
		t.Fatal("expected error for empty payload")
	}
	if _, err := EncodeFrame(1, 1, make([]byte, MaxPayloadSize+1)); err == nil {
		t.Fatal("expected error for oversized payload")
	}
}

func TestTryGetFrameLength(t *testing.T) {
	valid, err := EncodeFrame(1, 1, []byte("x"))
	if err != nil {
		t.Fatal(err)
	}

	badVersionLen := make([]byte, len(valid))
	copy(badVersionLen, valid)
	badVersionLen[2] = 0

	hugeVersionLen := make([]byte, len(valid))
	copy(hugeVersionLen, valid)
	hugeVersionLen[2] = MaxVersionLen + 1

	zeroPayload := make([]byte, len(valid))
	copy(zeroPayload, valid)
	binary.BigEndian.PutUint32(zeroPayload[2+1+len(ProtocolVersion)+4:], 0)

	hugePayload := make([]byte, len(valid))
	copy(hugePayload, valid)
	binary.BigEndian.PutUint32(hugePayload[2+1+len(ProtocolVersion)+4:], MaxPayloadSize+1)

	tests := []struct {
		name      string
		buf       []byte
		wantOK    bool
		wantTotal int
	}{
		{"empty", nil, true, 0},
		{"two bytes", valid[:2], true, 0},
		{"header incomplete", valid[:8], true, 0},
		{"zero version length", badVersionLen, false, 0},
		{"huge version length", hugeVersionLen, false, 0},
		{"zero payload length", zeroPayload, false, 0},
		{"oversized payload length", hugePayload, false, 0},
		{"complete frame", valid, true, len(valid)},
		{"frame plus trailing bytes", append(append([]byte{}, valid...), 0xAA), true, len(valid)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, total := TryGetFrameLength(tt.buf)
			if ok != tt.wantOK || total != tt.wantTotal {
				t.Fatalf("TryGetFrameLength = (%v, %d), want (%v, %d)", ok, total, tt.wantOK, tt.wantTotal)
			}
		})
	}
}

func TestDecodeFrameVersionMismatch(t *testing.T) {
	data, err := EncodeFrame(3, 1, []byte("x"))
	require.NoError(t, err)
	data[3] = '9' // corrupt the version string in place

	_, err = DecodeFrame(data)
	require.Error(t, err)
}
