package net

import (
	"context"
	"fmt"
	stdnet "net"
	"sync"
	"time"

	"go.uber.org/ratelimit"

	"github.com/lcx/garuda/config"
	"github.com/lcx/garuda/log"
	"github.com/lcx/garuda/metrics"
)

// TCPTransportCfg configures the listener. Loaded under the "tcp" config
// name; queue and buffer sizes apply to connections accepted after a
// reload, existing connections keep their sizes.
type TCPTransportCfg struct {
	Addr            string `mapstructure:"addr"`
	ReadBufferSize  int    `mapstructure:"readBufferSize"`
	RecvQueueSize   int    `mapstructure:"recvQueueSize"`
	SendQueueSize   int    `mapstructure:"sendQueueSize"`
	ReadTimeoutSec  int    `mapstructure:"readTimeoutSec"`
	WriteTimeoutSec int    `mapstructure:"writeTimeoutSec"`
	AcceptPerSec    int    `mapstructure:"acceptPerSec"`
}

// GetName returns the configuration name for TCPTransportCfg
func (c *TCPTransportCfg) GetName() string {
	return "tcp"
}

// Validate validates the TCPTransportCfg parameters
func (c *TCPTransportCfg) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr cannot be empty")
	}
	if c.AcceptPerSec < 0 {
		return fmt.Errorf("acceptPerSec cannot be negative")
	}
	return nil
}

func defaultTCPTransportCfg() *TCPTransportCfg {
	return &TCPTransportCfg{
		Addr:         ":5555",
		AcceptPerSec: 200,
	}
}

// TCPTransport accepts connections and runs a Session for each. Accepted
// sessions are registered immediately and removed through their dispose
// hooks.
type TCPTransport struct {
	mu       sync.RWMutex
	cfg      *TCPTransportCfg
	registry *SessionRegistry
	dispatch *Dispatcher
	hooks    []func(*Session)

	listener stdnet.Listener
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewTCPTransport wires the transport. extraDisposeHooks run on every
// session before registry removal (room cleanup goes here).
func NewTCPTransport(cfg *TCPTransportCfg, registry *SessionRegistry, dispatcher *Dispatcher, extraDisposeHooks ...func(*Session)) *TCPTransport {
	if cfg == nil {
		cfg = defaultTCPTransportCfg()
	}
	return &TCPTransport{
		cfg:      cfg,
		registry: registry,
		dispatch: dispatcher,
		hooks:    extraDisposeHooks,
	}
}

// GetConfigName returns the config this transport reloads on.
func (t *TCPTransport) GetConfigName() string { return "tcp" }

// OnConfigChanged applies a reloaded transport config. The listen address
// cannot change at runtime.
func (t *TCPTransport) OnConfigChanged(configName string, newConfig, oldConfig config.Config) error {
	cfg, ok := newConfig.(*TCPTransportCfg)
	if !ok {
		return nil
	}
	t.mu.Lock()
	if t.listener != nil && cfg.Addr != t.cfg.Addr {
		t.mu.Unlock()
		return fmt.Errorf("addr cannot change while listening")
	}
	t.cfg = cfg
	t.mu.Unlock()
	log.Info().Str("config", configName).Msg("tcp transport config reloaded")
	return nil
}

func (t *TCPTransport) snapshot() *TCPTransportCfg {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cfg
}

// Start begins listening and accepting. It returns once the listener is
// bound; the accept loop runs until ctx is cancelled or Stop is called.
func (t *TCPTransport) Start(ctx context.Context) error {
	cfg := t.snapshot()
	listener, err := stdnet.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("net: listen %s: %w", cfg.Addr, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	t.mu.Lock()
	t.listener = listener
	t.mu.Unlock()
	t.cancel = cancel

	log.Info().Str("addr", cfg.Addr).Msg("tcp transport listening")

	t.wg.Add(1)
	go t.acceptLoop(ctx, listener)
	return nil
}

func (t *TCPTransport) acceptLoop(ctx context.Context, listener stdnet.Listener) {
	defer t.wg.Done()

	var limiter ratelimit.Limiter
	if per := t.snapshot().AcceptPerSec; per > 0 {
		limiter = ratelimit.New(per)
	} else {
		limiter = ratelimit.NewUnlimited()
	}

	for {
		limiter.Take()
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Msg("accept failed")
			time.Sleep(50 * time.Millisecond)
			continue
		}
		t.wg.Add(1)
		go t.serve(ctx, conn)
	}
}

func (t *TCPTransport) serve(ctx context.Context, conn stdnet.Conn) {
	defer t.wg.Done()

	cfg := t.snapshot()
	opts := SessionOptions{
		ReadBufferSize: cfg.ReadBufferSize,
		RecvQueueSize:  cfg.RecvQueueSize,
		SendQueueSize:  cfg.SendQueueSize,
		ReadTimeout:    time.Duration(cfg.ReadTimeoutSec) * time.Second,
		WriteTimeout:   time.Duration(cfg.WriteTimeoutSec) * time.Second,
	}

	hooks := make([]func(*Session), 0, len(t.hooks)+1)
	hooks = append(hooks, t.hooks...)
	hooks = append(hooks, t.registry.Remove)

	s := NewSession(conn, opts, hooks...)
	t.registry.Add(s)
	metrics.IncrCounterWithGroup("net", "sessions_accepted", 1)
	log.Info().Str("session", s.ID()).Str("remote", s.RemoteAddr()).Msg("session accepted")

	s.Run(ctx, func(s *Session, f *Frame) {
		t.dispatch.Dispatch(ctx, s, f)
	})
}

// Stop closes the listener and disposes every live session, then waits for
// connection goroutines to drain.
func (t *TCPTransport) Stop() {
	if t.cancel != nil {
		t.cancel()
	}
	t.mu.Lock()
	if t.listener != nil {
		_ = t.listener.Close()
		t.listener = nil
	}
	t.mu.Unlock()

	t.registry.Range(func(s *Session) bool {
		s.Dispose("server shutdown")
		return true
	})
	t.wg.Wait()
	log.Info().Msg("tcp transport stopped")
}
