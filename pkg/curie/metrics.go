package curie

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Fetch results recorded by Metrics
const (
	fetchLoaded      = "loaded"
	fetchNotFound    = "not_found"
	fetchInvalid     = "invalid"
	fetchUnavailable = "error"
)

// Metrics holds the Prometheus collectors of an Engine. A nil *Metrics
// records nothing.
type Metrics struct {
	fetches *prometheus.CounterVec
	hits    prometheus.Counter
	misses  prometheus.Counter
	cached  prometheus.Gauge
}

// NewMetrics creates the engine collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "curie",
			Subsystem: "vocabulary",
			Name:      "fetches_total",
			Help:      "Total number of vocabulary fetches by result",
		}, []string{"result"}),
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "curie",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of vocabulary cache hits",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "curie",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of vocabulary cache misses",
		}),
		cached: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "curie",
			Subsystem: "cache",
			Name:      "prefixes",
			Help:      "Current number of cached prefixes",
		}),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.fetches, m.hits, m.misses, m.cached} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) recordHit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *Metrics) recordMiss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *Metrics) recordFetch(result string) {
	if m != nil {
		m.fetches.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) updateCached(n int) {
	if m != nil {
		m.cached.Set(float64(n))
	}
}
