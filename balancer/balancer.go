package balancer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lcx/garuda/log"
	"github.com/lcx/garuda/metrics"
)

// ErrNoServer means no game server can host the match right now.
var ErrNoServer = errors.New("balancer: no eligible game server")

const recordPrefix = "gameservers/"

// GameServerRecord is one fleet member as stored in the Store.
type GameServerRecord struct {
	Host           string    `json:"host"`
	Port           int32     `json:"port"`
	CurrentPlayers int32     `json:"currentPlayers"`
	MaxPlayers     int32     `json:"maxPlayers"`
	IsAvailable    bool      `json:"isAvailable"`
	LastHeartbeat  time.Time `json:"lastHeartbeat"`
}

// Key returns the record's store key.
func (r *GameServerRecord) Key() string {
	return fmt.Sprintf("%s%s:%d", recordPrefix, r.Host, r.Port)
}

// Addr returns host:port for logging.
func (r *GameServerRecord) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Cfg configures the balancer. Loaded under the "balancer" name.
type Cfg struct {
	Strategy     string `mapstructure:"strategy"`
	StaleSec     int    `mapstructure:"staleSec"`
	SweepSec     int    `mapstructure:"sweepSec"`
	RecordTTLSec int    `mapstructure:"recordTtlSec"`
}

// GetName returns the configuration name for Cfg
func (c *Cfg) GetName() string {
	return "balancer"
}

// Validate validates the Cfg parameters
func (c *Cfg) Validate() error {
	if c.Strategy != "" {
		if _, err := NewStrategy(c.Strategy); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cfg) withDefaults() *Cfg {
	out := *c
	if out.Strategy == "" {
		out.Strategy = "round_robin"
	}
	if out.StaleSec <= 0 {
		out.StaleSec = 30
	}
	if out.SweepSec <= 0 {
		out.SweepSec = 10
	}
	if out.RecordTTLSec <= 0 {
		out.RecordTTLSec = 120
	}
	return &out
}

// LoadBalancer selects a game server for each starting match and evicts
// fleet members that stop heartbeating.
type LoadBalancer struct {
	store      Store
	strategy   Strategy
	staleAfter time.Duration
	sweepEvery time.Duration
	recordTTL  time.Duration
}

// New builds a balancer over the given store. A nil cfg selects defaults
// (round_robin, 30s staleness, 10s sweeps).
func New(store Store, cfg *Cfg) (*LoadBalancer, error) {
	if cfg == nil {
		cfg = &Cfg{}
	}
	cfg = cfg.withDefaults()
	strategy, err := NewStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	return &LoadBalancer{
		store:      store,
		strategy:   strategy,
		staleAfter: time.Duration(cfg.StaleSec) * time.Second,
		sweepEvery: time.Duration(cfg.SweepSec) * time.Second,
		recordTTL:  time.Duration(cfg.RecordTTLSec) * time.Second,
	}, nil
}

// Register upserts a fleet record, stamping the heartbeat time.
func (b *LoadBalancer) Register(ctx context.Context, rec *GameServerRecord) error {
	rec.LastHeartbeat = time.Now()
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return b.store.Set(ctx, rec.Key(), data, b.recordTTL)
}

// Heartbeat refreshes one server's record with its current player count.
func (b *LoadBalancer) Heartbeat(ctx context.Context, host string, port, currentPlayers int32) error {
	key := recordPrefix + fmt.Sprintf("%s:%d", host, port)
	data, ok, err := b.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("balancer: heartbeat for unregistered server %s:%d", host, port)
	}
	var rec GameServerRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	rec.CurrentPlayers = currentPlayers
	return b.Register(ctx, &rec)
}

// Deregister removes a server from the fleet.
func (b *LoadBalancer) Deregister(ctx context.Context, host string, port int32) error {
	return b.store.Delete(ctx, recordPrefix+fmt.Sprintf("%s:%d", host, port))
}

func (b *LoadBalancer) records(ctx context.Context) ([]*GameServerRecord, error) {
	raw, err := b.store.ScanPrefix(ctx, recordPrefix)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*GameServerRecord, 0, len(keys))
	for _, k := range keys {
		var rec GameServerRecord
		if err := json.Unmarshal(raw[k], &rec); err != nil {
			log.Warn().Str("key", k).Err(err).Msg("malformed fleet record, skipping")
			continue
		}
		out = append(out, &rec)
	}
	return out, nil
}

// Select picks a server with at least requiredSlots free seats.
func (b *LoadBalancer) Select(ctx context.Context, requiredSlots int32) (*GameServerRecord, error) {
	records, err := b.records(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	eligible := records[:0]
	for _, rec := range records {
		if !rec.IsAvailable {
			continue
		}
		if rec.MaxPlayers-rec.CurrentPlayers < requiredSlots {
			continue
		}
		if b.staleAfter > 0 && now.Sub(rec.LastHeartbeat) > b.staleAfter {
			continue
		}
		eligible = append(eligible, rec)
	}
	if len(eligible) == 0 {
		metrics.IncrCounterWithGroup("balancer", "select_empty", 1)
		return nil, ErrNoServer
	}

	picked, err := b.strategy.Select(eligible)
	if err != nil {
		return nil, err
	}
	metrics.IncrCounterWithDimGroup("balancer", "selected", 1, map[string]string{"server": picked.Addr()})
	return picked, nil
}

// HealthSweep deletes every record whose heartbeat went stale. It returns
// the number of evicted servers.
func (b *LoadBalancer) HealthSweep(ctx context.Context) (int, error) {
	records, err := b.records(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	evicted := 0
	for _, rec := range records {
		if now.Sub(rec.LastHeartbeat) <= b.staleAfter {
			continue
		}
		if err := b.store.Delete(ctx, rec.Key()); err != nil {
			log.Warn().Str("server", rec.Addr()).Err(err).Msg("stale record delete failed")
			continue
		}
		evicted++
		log.Info().Str("server", rec.Addr()).Time("lastHeartbeat", rec.LastHeartbeat).Msg("evicted stale game server")
	}
	if evicted > 0 {
		metrics.IncrCounterWithGroup("balancer", "evicted", float64(evicted))
	}
	return evicted, nil
}

// RunHealthSweep sweeps on a ticker until ctx is cancelled.
func (b *LoadBalancer) RunHealthSweep(ctx context.Context) {
	ticker := time.NewTicker(b.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := b.HealthSweep(ctx); err != nil {
				log.Warn().Err(err).Msg("health sweep failed")
			}
		}
	}
}
