package trail

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Fetch outcomes besides the FetchError kinds
const (
	outcomeOK       = "ok"
	outcomeCacheHit = "cache_hit"
)

// Metrics counts research trail reads by endpoint and outcome
type Metrics struct {
	fetches *prometheus.CounterVec
}

// NewMetrics registers the trail collectors with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studio_journal",
			Subsystem: "trail",
			Name:      "fetch_total",
			Help:      "Research trail requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
	}
	reg.MustRegister(m.fetches)
	return m
}

func (m *Metrics) observe(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(endpoint, outcome).Inc()
}
