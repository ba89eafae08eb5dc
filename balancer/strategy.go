package balancer

import (
	"fmt"
	"sync"
)

// Strategy picks one server from the eligible records. The slice is already
// filtered (available, enough free slots, fresh heartbeat) and sorted by
// key, so stateful strategies see a stable order.
type Strategy interface {
	Name() string
	Select(records []*GameServerRecord) (*GameServerRecord, error)
}

// StrategyFactory builds a fresh strategy instance.
type StrategyFactory func() Strategy

var (
	strategyMu        sync.RWMutex
	strategyFactories = make(map[string]StrategyFactory)
)

// RegisterStrategy makes a strategy constructible by name. Duplicate names
// are a startup bug and panic.
func RegisterStrategy(name string, factory StrategyFactory) {
	strategyMu.Lock()
	defer strategyMu.Unlock()
	if _, ok := strategyFactories[name]; ok {
		panic(fmt.Sprintf("balancer: strategy %q registered twice", name))
	}
	strategyFactories[name] = factory
}

// NewStrategy instantiates the named strategy.
func NewStrategy(name string) (Strategy, error) {
	strategyMu.RLock()
	factory, ok := strategyFactories[name]
	strategyMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("balancer: unknown strategy %q", name)
	}
	return factory(), nil
}

func init() {
	RegisterStrategy("round_robin", func() Strategy { return &roundRobinStrategy{} })
	RegisterStrategy("least_loaded", func() Strategy { return &leastLoadedStrategy{} })
}

// roundRobinStrategy cycles through the eligible servers: pick the record
// under the cursor, then advance. Three servers and three picks yield three
// distinct servers.
type roundRobinStrategy struct {
	mu     sync.Mutex
	cursor int
}

func (s *roundRobinStrategy) Name() string { return "round_robin" }

func (s *roundRobinStrategy) Select(records []*GameServerRecord) (*GameServerRecord, error) {
	if len(records) == 0 {
		return nil, ErrNoServer
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	picked := records[s.cursor%len(records)]
	s.cursor++
	return picked, nil
}

// leastLoadedStrategy picks the server with the most free slots.
type leastLoadedStrategy struct{}

func (s *leastLoadedStrategy) Name() string { return "least_loaded" }

func (s *leastLoadedStrategy) Select(records []*GameServerRecord) (*GameServerRecord, error) {
	if len(records) == 0 {
		return nil, ErrNoServer
	}
	best := records[0]
	for _, r := range records[1:] {
		if r.MaxPlayers-r.CurrentPlayers > best.MaxPlayers-best.CurrentPlayers {
			best = r
		}
	}
	return best, nil
}
