package replica

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/expertlog/internal/record"
)

// Metrics counts writes per store and partial replications.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	writes   *prometheus.CounterVec
	partials *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "expertlog",
			Name:      "writes_total",
			Help:      "Store writes by entity, store and outcome.",
		}, []string{"entity", "store", "outcome"}),
		partials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "expertlog",
			Name:      "partial_replications_total",
			Help:      "Writes that reached the primary but not the secondary.",
		}, []string{"entity"}),
	}
	reg.MustRegister(m.writes, m.partials)
	return m
}

func (m *Metrics) write(entity record.Entity, backend string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.writes.WithLabelValues(string(entity), backend, outcome).Inc()
}

func (m *Metrics) partial(entity record.Entity) {
	if m == nil {
		return
	}
	m.partials.WithLabelValues(string(entity)).Inc()
}
