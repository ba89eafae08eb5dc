package net

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/lcx/garuda/codec"
	"github.com/lcx/garuda/log"
	"github.com/lcx/garuda/metrics"
)

// MsgCreator supplies empty payloads and request/response id pairing. The
// packet table implements it.
type MsgCreator interface {
	CreateMsg(id uint16) (any, error)
	ResponseID(id uint16) (uint16, bool)
}

// HandlerFunc processes one decoded request. A non-nil result is encoded
// and sent back under the request's response id and sequence. A non-nil
// error produces the generic failure response instead.
type HandlerFunc func(ctx context.Context, s *Session, req any) (any, error)

var sequence atomic.Uint32

// NextSequence returns a process-wide sequence number for server-initiated
// packets.
func NextSequence() uint32 {
	return sequence.Add(1)
}

// Dispatcher routes decoded frames to registered handlers. Registration
// happens once during startup; Dispatch runs on the per-session receive
// queue goroutines.
type Dispatcher struct {
	creator  MsgCreator
	handlers map[uint16]HandlerFunc
	limiter  *rate.Limiter
	onError  func(resID uint16) any
}

// DispatcherOption tweaks dispatcher construction.
type DispatcherOption func(*Dispatcher)

// WithRecvLimit caps dispatched packets per second across all sessions,
// with the given burst.
func WithRecvLimit(perSecond float64, burst int) DispatcherOption {
	return func(d *Dispatcher) {
		d.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithFailureFactory installs the builder for generic failure responses
// sent when a handler errors or panics.
func WithFailureFactory(fn func(resID uint16) any) DispatcherOption {
	return func(d *Dispatcher) { d.onError = fn }
}

// NewDispatcher builds a dispatcher over the given packet table.
func NewDispatcher(creator MsgCreator, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		creator:  creator,
		handlers: make(map[uint16]HandlerFunc),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register installs the handler for a wire id. Duplicate registration is a
// startup bug and panics.
func (d *Dispatcher) Register(id uint16, h HandlerFunc) {
	if _, ok := d.handlers[id]; ok {
		panic(fmt.Sprintf("net: handler for packet id %d registered twice", id))
	}
	d.handlers[id] = h
}

// RegisterHandler installs a typed handler for a wire id. The decoded
// payload is asserted to *T before the handler runs, so handlers never see
// the any-typed plumbing.
func RegisterHandler[T any](d *Dispatcher, id uint16, h func(ctx context.Context, s *Session, req *T) (any, error)) {
	d.Register(id, func(ctx context.Context, s *Session, req any) (any, error) {
		typed, ok := req.(*T)
		if !ok {
			return nil, fmt.Errorf("net: packet id %d decoded to %T", id, req)
		}
		return h(ctx, s, typed)
	})
}

// Dispatch decodes and routes one frame. Unknown ids and undecodable
// payloads are logged and dropped; the connection stays up. Handler errors
// and panics are answered with the generic failure response.
func (d *Dispatcher) Dispatch(ctx context.Context, s *Session, f *Frame) {
	if d.limiter != nil && !d.limiter.Allow() {
		metrics.IncrCounterWithGroup("dispatch", "rate_limited", 1)
		log.Warn().Str("session", s.ID()).Uint16("type", f.TypeID).Msg("receive rate limit exceeded, dropping packet")
		return
	}

	req, err := d.creator.CreateMsg(f.TypeID)
	if err != nil {
		metrics.IncrCounterWithGroup("dispatch", "unknown_packet", 1)
		log.Warn().Str("session", s.ID()).Uint16("type", f.TypeID).Msg("unknown packet id, dropping")
		return
	}
	if err := codec.Decode(req, f.Payload); err != nil {
		metrics.IncrCounterWithGroup("dispatch", "decode_failed", 1)
		log.Warn().Str("session", s.ID()).Uint16("type", f.TypeID).Err(err).Msg("payload decode failed, dropping")
		return
	}

	h, ok := d.handlers[f.TypeID]
	if !ok {
		metrics.IncrCounterWithGroup("dispatch", "no_handler", 1)
		log.Warn().Str("session", s.ID()).Uint16("type", f.TypeID).Msg("no handler registered, dropping")
		return
	}

	res, err := d.invoke(ctx, h, s, req)
	if err != nil {
		metrics.IncrCounterWithGroup("dispatch", "handler_failed", 1)
		log.Error().Str("session", s.ID()).Uint16("type", f.TypeID).Err(err).Msg("handler failed")
		d.respondFailure(s, f)
		return
	}
	if res == nil {
		return
	}

	resID, ok := d.creator.ResponseID(f.TypeID)
	if !ok {
		log.Error().Uint16("type", f.TypeID).Msg("handler returned a response for a packet with no response id")
		return
	}
	if err := s.Send(resID, f.Sequence, res); err != nil {
		log.Debug().Str("session", s.ID()).Uint16("type", resID).Err(err).Msg("response send failed")
	}
}

func (d *Dispatcher) invoke(ctx context.Context, h HandlerFunc, s *Session, req any) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("net: handler panic: %v", r)
		}
	}()
	return h(ctx, s, req)
}

func (d *Dispatcher) respondFailure(s *Session, f *Frame) {
	if d.onError == nil {
		return
	}
	resID, ok := d.creator.ResponseID(f.TypeID)
	if !ok {
		return
	}
	res := d.onError(resID)
	if res == nil {
		return
	}
	if err := s.Send(resID, f.Sequence, res); err != nil {
		log.Debug().Str("session", s.ID()).Uint16("type", resID).Err(err).Msg("failure response send failed")
	}
}
