package net

import (
	"fmt"

	"github.com/lcx/garuda/log"
	"github.com/lcx/garuda/metrics"
)

// maxResyncBytes bounds how much garbage a single connection may feed us
// before we give up on the stream entirely.
const maxResyncBytes = 64 * 1024

// Reassembler turns an arbitrary byte stream back into frames. Feed it
// whatever the socket produced; it buffers partial frames and skips over
// corrupted stretches one byte at a time until a valid header lines up.
// Not safe for concurrent use; each connection owns one.
type Reassembler struct {
	buf     []byte
	dropped int
}

// NewReassembler returns an empty reassembler.
func NewReassembler() *Reassembler {
	return &Reassembler{}
}

// Push appends data and returns every complete frame now available, in
// stream order. A non-nil error means the stream is beyond recovery and the
// connection should be closed.
func (r *Reassembler) Push(data []byte) ([]*Frame, error) {
	r.buf = append(r.buf, data...)

	var frames []*Frame
	for {
		ok, total := TryGetFrameLength(r.buf)
		if !ok {
			// Corrupted head: drop one byte and retry alignment.
			r.buf = r.buf[1:]
			r.dropped++
			metrics.IncrCounterWithGroup("net", "resync_bytes", 1)
			if r.dropped > maxResyncBytes {
				return frames, fmt.Errorf("net: dropped %d bytes without finding a frame boundary", r.dropped)
			}
			continue
		}
		if total == 0 || len(r.buf) < total {
			return frames, nil
		}

		frame, err := DecodeFrame(r.buf[:total])
		r.buf = r.buf[total:]
		if err != nil {
			// Structurally sound but unacceptable (version mismatch).
			// Skip the whole frame and keep going.
			log.Warn().Err(err).Msg("dropping frame")
			metrics.IncrCounterWithGroup("net", "frame_dropped", 1)
			continue
		}
		r.dropped = 0
		frames = append(frames, frame)
	}
}

// Pending reports how many buffered bytes await more data.
func (r *Reassembler) Pending() int {
	return len(r.buf)
}
