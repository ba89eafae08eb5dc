package balancer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/consul/api"
)

// consulEnvelope wraps a stored value with its expiry. Consul KV has no
// per-key TTL, so expiry rides inside the value and expired envelopes are
// filtered on read.
type consulEnvelope struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt time.Time       `json:"expiresAt,omitempty"`
}

func (e consulEnvelope) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// ConsulStore keeps fleet records in consul KV so every lobby process sees
// the same fleet.
type ConsulStore struct {
	kv *api.KV
}

// NewConsulStore connects to the consul agent at addr. An empty addr uses
// the client defaults (local agent).
func NewConsulStore(addr string) (*ConsulStore, error) {
	cfg := api.DefaultConfig()
	if addr != "" {
		cfg.Address = addr
	}
	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("balancer: consul client: %w", err)
	}
	return &ConsulStore{kv: client.KV()}, nil
}

func (s *ConsulStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	pair, _, err := s.kv.Get(key, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, false, err
	}
	if pair == nil {
		return nil, false, nil
	}
	var env consulEnvelope
	if err := json.Unmarshal(pair.Value, &env); err != nil {
		return nil, false, err
	}
	if env.expired(time.Now()) {
		_, _ = s.kv.Delete(key, (&api.WriteOptions{}).WithContext(ctx))
		return nil, false, nil
	}
	return env.Value, true, nil
}

func (s *ConsulStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	env := consulEnvelope{Value: value}
	if ttl > 0 {
		env.ExpiresAt = time.Now().Add(ttl)
	}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	_, err = s.kv.Put(&api.KVPair{Key: key, Value: data}, (&api.WriteOptions{}).WithContext(ctx))
	return err
}

func (s *ConsulStore) Delete(ctx context.Context, key string) error {
	_, err := s.kv.Delete(key, (&api.WriteOptions{}).WithContext(ctx))
	return err
}

func (s *ConsulStore) ScanPrefix(ctx context.Context, prefix string) (map[string][]byte, error) {
	pairs, _, err := s.kv.List(prefix, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make(map[string][]byte, len(pairs))
	for _, pair := range pairs {
		var env consulEnvelope
		if err := json.Unmarshal(pair.Value, &env); err != nil {
			continue
		}
		if env.expired(now) {
			continue
		}
		out[pair.Key] = env.Value
	}
	return out, nil
}
