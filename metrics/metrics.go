// Package metrics wraps prometheus collectors behind small group/name
// helpers so call sites stay one line. Collectors are created on first use
// and cached; registration conflicts fall back to the cached collector.
package metrics

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry = prometheus.NewRegistry()

	counters     sync.Map // key -> prometheus.Counter
	counterVecs  sync.Map // key -> *prometheus.CounterVec
	gauges       sync.Map // key -> prometheus.Gauge
	registerLock sync.Mutex
)

// Registry returns the process metric registry for exposition or testing.
func Registry() *prometheus.Registry {
	return registry
}

func metricName(group, name string) string {
	return "garuda_" + group + "_" + name
}

// IncrCounterWithGroup increments the counter group/name by v.
func IncrCounterWithGroup(group, name string, v float64) {
	key := metricName(group, name)
	c, ok := counters.Load(key)
	if !ok {
		registerLock.Lock()
		if c, ok = counters.Load(key); !ok {
			nc := prometheus.NewCounter(prometheus.CounterOpts{Name: key})
			registry.MustRegister(nc)
			counters.Store(key, nc)
			c = nc
		}
		registerLock.Unlock()
	}
	c.(prometheus.Counter).Add(v)
}

// IncrCounterWithDimGroup increments the counter group/name by v with the
// given dimensions as labels. The label set of the first call wins.
func IncrCounterWithDimGroup(group, name string, v float64, dims Dimension) {
	key := metricName(group, name)
	cv, ok := counterVecs.Load(key)
	if !ok {
		registerLock.Lock()
		if cv, ok = counterVecs.Load(key); !ok {
			labels := make([]string, 0, len(dims))
			for k := range dims {
				labels = append(labels, k)
			}
			sort.Strings(labels)
			ncv := prometheus.NewCounterVec(prometheus.CounterOpts{Name: key}, labels)
			registry.MustRegister(ncv)
			counterVecs.Store(key, ncv)
			cv = ncv
		}
		registerLock.Unlock()
	}
	cv.(*prometheus.CounterVec).With(prometheus.Labels(dims)).Add(v)
}

// UpdateGaugeWithGroup sets the gauge group/name to v.
func UpdateGaugeWithGroup(group, name string, v Value) {
	key := metricName(group, name)
	g, ok := gauges.Load(key)
	if !ok {
		registerLock.Lock()
		if g, ok = gauges.Load(key); !ok {
			ng := prometheus.NewGauge(prometheus.GaugeOpts{Name: key})
			registry.MustRegister(ng)
			gauges.Store(key, ng)
			g = ng
		}
		registerLock.Unlock()
	}
	g.(prometheus.Gauge).Set(float64(v))
}
