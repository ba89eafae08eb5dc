package net

import (
	"context"
	stdnet "net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/lcx/garuda/codec"
	"github.com/lcx/garuda/log"
	"github.com/lcx/garuda/metrics"
	"github.com/lcx/garuda/msg"
)

// SessionState tracks a connection through its lifecycle. Transitions only
// move forward: Connected -> Authenticated -> Closing -> Closed.
type SessionState int32

const (
	StateConnected SessionState = iota
	StateAuthenticated
	StateClosing
	StateClosed
)

// SessionOptions sizes the per-connection machinery.
type SessionOptions struct {
	ReadBufferSize int
	RecvQueueSize  int
	SendQueueSize  int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

func (o *SessionOptions) fillDefaults() {
	if o.ReadBufferSize <= 0 {
		o.ReadBufferSize = 4096
	}
	if o.RecvQueueSize <= 0 {
		o.RecvQueueSize = 256
	}
	if o.SendQueueSize <= 0 {
		o.SendQueueSize = 256
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10 * time.Second
	}
}

// Session owns one client connection: the socket, the reassembler, and the
// two packet queues. One goroutine reads the socket, one drains the receive
// queue into the dispatcher, one drains the send queue onto the socket.
type Session struct {
	id   string
	conn stdnet.Conn
	opts SessionOptions

	state  atomic.Int32
	userID atomic.Int64
	roomID atomic.Int64

	mu      sync.RWMutex
	profile *msg.UserSummary

	reasm *Reassembler
	recvQ *PacketQueue[*Frame]
	sendQ *PacketQueue[[]byte]

	disposeOnce sync.Once
	onDispose   []func(*Session)
}

// NewSession wraps an accepted connection. Dispose hooks run exactly once,
// in registration order, before the socket closes.
func NewSession(conn stdnet.Conn, opts SessionOptions, onDispose ...func(*Session)) *Session {
	opts.fillDefaults()
	s := &Session{
		id:        uuid.NewString(),
		conn:      conn,
		opts:      opts,
		reasm:     NewReassembler(),
		onDispose: onDispose,
	}
	s.recvQ = NewPacketQueue[*Frame]("recv:"+s.id, opts.RecvQueueSize)
	s.sendQ = NewPacketQueue[[]byte]("send:"+s.id, opts.SendQueueSize)
	return s
}

// ID returns the session's unique id.
func (s *Session) ID() string { return s.id }

// RemoteAddr returns the peer address for logging.
func (s *Session) RemoteAddr() string {
	if s.conn == nil {
		return ""
	}
	return s.conn.RemoteAddr().String()
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// UserID returns the bound user id, zero before authentication.
func (s *Session) UserID() int64 { return s.userID.Load() }

// RoomID returns the joined room id, zero when not in a room.
func (s *Session) RoomID() int64 { return s.roomID.Load() }

// SetRoomID records room membership on the session.
func (s *Session) SetRoomID(id int64) { s.roomID.Store(id) }

// Profile returns the authenticated user's summary, nil before login.
func (s *Session) Profile() *msg.UserSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Authenticate binds the user to this session and moves it to
// StateAuthenticated. Only valid from StateConnected.
func (s *Session) Authenticate(profile *msg.UserSummary) bool {
	if !s.state.CompareAndSwap(int32(StateConnected), int32(StateAuthenticated)) {
		return false
	}
	s.userID.Store(profile.ID)
	s.mu.Lock()
	s.profile = profile
	s.mu.Unlock()
	return true
}

// Send encodes m, frames it, and enqueues it for the writer goroutine.
func (s *Session) Send(typeID uint16, sequence uint32, m any) error {
	payload, err := codec.Encode(m, nil)
	if err != nil {
		return err
	}
	data, err := EncodeFrame(typeID, sequence, payload)
	if err != nil {
		return err
	}
	return s.SendRaw(data)
}

// SendRaw enqueues pre-framed bytes.
func (s *Session) SendRaw(data []byte) error {
	if s.State() >= StateClosing {
		return ErrSessionClosed
	}
	if err := s.sendQ.Enqueue(data); err != nil {
		// A full send queue means the client stopped reading.
		log.Warn().Str("session", s.id).Err(err).Msg("send queue overflow, disposing session")
		s.Dispose("send queue overflow")
		return err
	}
	metrics.IncrCounterWithGroup("net", "packets_sent", 1)
	return nil
}

// Run drives the session until the connection dies or ctx is cancelled.
// dispatch is called on the receive-queue goroutine, strictly in frame
// arrival order. Run blocks until the read loop exits.
func (s *Session) Run(ctx context.Context, dispatch func(*Session, *Frame)) {
	go s.recvQ.Start(ctx, func(f *Frame) { dispatch(s, f) })
	go s.sendQ.Start(ctx, s.writeFrame)
	s.readLoop(ctx)
}

func (s *Session) readLoop(ctx context.Context) {
	defer s.Dispose("read loop exit")

	buf := make([]byte, s.opts.ReadBufferSize)
	for {
		if ctx.Err() != nil {
			return
		}
		if s.opts.ReadTimeout > 0 {
			_ = s.conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
		}
		n, err := s.conn.Read(buf)
		if err != nil {
			if s.State() < StateClosing {
				log.Debug().Str("session", s.id).Err(err).Msg("connection read ended")
			}
			return
		}

		frames, err := s.reasm.Push(buf[:n])
		for _, f := range frames {
			metrics.IncrCounterWithGroup("net", "packets_received", 1)
			if qErr := s.recvQ.Enqueue(f); qErr != nil {
				log.Warn().Str("session", s.id).Err(qErr).Msg("receive queue overflow, disposing session")
				return
			}
		}
		if err != nil {
			log.Warn().Str("session", s.id).Err(err).Msg("unrecoverable stream corruption")
			return
		}
	}
}

func (s *Session) writeFrame(data []byte) {
	if s.opts.WriteTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
	}
	if _, err := s.conn.Write(data); err != nil {
		if s.State() < StateClosing {
			log.Debug().Str("session", s.id).Err(err).Msg("connection write failed")
		}
		s.Dispose("write failure")
	}
}

// Dispose tears the session down exactly once: dispose hooks first (room
// cleanup, registry removal), then the queues, then the socket.
func (s *Session) Dispose(reason string) {
	s.disposeOnce.Do(func() {
		s.state.Store(int32(StateClosing))
		log.Info().Str("session", s.id).Int64("user", s.UserID()).Str("reason", reason).Msg("session disposing")

		for _, hook := range s.onDispose {
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Error().Str("session", s.id).Interface("panic", r).Msg("dispose hook panicked")
					}
				}()
				hook(s)
			}()
		}

		s.recvQ.Close()
		s.sendQ.Close()
		if s.conn != nil {
			_ = s.conn.Close()
		}
		s.state.Store(int32(StateClosed))
		metrics.IncrCounterWithGroup("net", "sessions_closed", 1)
	})
}
