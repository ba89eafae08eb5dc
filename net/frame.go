// Package net implements the lobby's TCP transport: wire framing, stream
// reassembly, per-connection packet queues, sessions, and the dispatcher
// that routes decoded packets to registered handlers.
package net

import (
	"encoding/binary"
	"fmt"
)

// Wire layout, all integers big-endian:
//
//	typeId        uint16
//	versionLength uint8
//	version       versionLength bytes of UTF-8
//	sequence      uint32
//	payloadLength uint32
//	payload       payloadLength bytes
const (
	// ProtocolVersion travels in every frame and must match on receive.
	ProtocolVersion = "1.0.0"

	// MinHeaderSize is the smallest possible header (one-byte version).
	MinHeaderSize = 2 + 1 + 1 + 4 + 4

	// MaxVersionLen bounds the version field; anything longer is treated
	// as stream corruption.
	MaxVersionLen = 16

	// MaxPayloadSize bounds a single frame payload at 1 MiB.
	MaxPayloadSize = 1 << 20
)

// Frame is one decoded wire frame.
type Frame struct {
	TypeID   uint16
	Version  string
	Sequence uint32
	Payload  []byte
}

// EncodeFrame serializes one frame carrying the current protocol version.
func EncodeFrame(typeID uint16, sequence uint32, payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("net: empty payload for type %d", typeID)
	}
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("net: payload %d bytes exceeds limit %d", len(payload), MaxPayloadSize)
	}

	buf := make([]byte, 0, 2+1+len(ProtocolVersion)+4+4+len(payload))
	buf = binary.BigEndian.AppendUint16(buf, typeID)
	buf = append(buf, byte(len(ProtocolVersion)))
	buf = append(buf, ProtocolVersion...)
	buf = binary.BigEndian.AppendUint32(buf, sequence)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(payload)))
	buf = append(buf, payload...)
	return buf, nil
}

// TryGetFrameLength inspects the head of buf and reports whether a full
// frame length can be computed yet.
//
//	(true, 0)  not enough bytes to decide, read more
//	(false, 0) the head is structurally invalid, resynchronize
//	(true, n)  the next frame occupies exactly n bytes
func TryGetFrameLength(buf []byte) (bool, int) {
	if len(buf) < 3 {
		return true, 0
	}
	verLen := int(buf[2])
	if verLen == 0 || verLen > MaxVersionLen {
		return false, 0
	}
	headerLen := 2 + 1 + verLen + 4 + 4
	if len(buf) < headerLen {
		return true, 0
	}
	payloadLen := int(binary.BigEndian.Uint32(buf[2+1+verLen+4:]))
	if payloadLen == 0 || payloadLen > MaxPayloadSize {
		return false, 0
	}
	return true, headerLen + payloadLen
}

// DecodeFrame parses exactly one frame from buf. The buffer must hold the
// whole frame; use TryGetFrameLength first. The payload slice is copied so
// callers may retain it after the read buffer is reused.
func DecodeFrame(buf []byte) (*Frame, error) {
	ok, total := TryGetFrameLength(buf)
	if !ok || total == 0 || len(buf) < total {
		return nil, fmt.Errorf("net: short or invalid frame (%d bytes)", len(buf))
	}

	typeID := binary.BigEndian.Uint16(buf)
	verLen := int(buf[2])
	version := string(buf[3 : 3+verLen])
	if version != ProtocolVersion {
		return nil, fmt.Errorf("net: protocol version %q, want %q", version, ProtocolVersion)
	}
	seq := binary.BigEndian.Uint32(buf[3+verLen:])
	payloadLen := int(binary.BigEndian.Uint32(buf[3+verLen+4:]))

	payload := make([]byte, payloadLen)
	copy(payload, buf[3+verLen+8:total])
	return &Frame{TypeID: typeID, Version: version, Sequence: seq, Payload: payload}, nil
}
