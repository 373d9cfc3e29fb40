package rainflow

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsInternal is the attached prometheus registry for one
// running counter, exposed on /metrics by the display mux.
type StatsInternal struct {
	Registry      *prometheus.Registry
	SamplesFed    prometheus.Counter
	TurningPoints prometheus.Counter
	CyclesClosed  prometheus.Counter
	Damage        prometheus.Gauge
	APIHits       *prometheus.CounterVec
}

// NewStatsInternal creates the registry and all counters.
func NewStatsInternal() *StatsInternal {
	reg := prometheus.NewRegistry()

	s := &StatsInternal{
		Registry: reg,
		SamplesFed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rainflow_samples_fed_total",
			Help: "Raw samples consumed by the counting session",
		}),
		TurningPoints: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rainflow_turning_points_total",
			Help: "Confirmed turning points emitted by the filter",
		}),
		CyclesClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rainflow_cycles_closed_total",
			Help: "Closed cycles in full-cycle units",
		}),
		Damage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rainflow_pseudo_damage",
			Help: "Cumulative pseudo-damage under Miner's rule",
		}),
		APIHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rainflow_api_hits_total",
			Help: "Display API requests by path",
		}, []string{"path"}),
	}

	reg.MustRegister(s.SamplesFed, s.TurningPoints, s.CyclesClosed, s.Damage, s.APIHits)
	return s
}

// Handler serves the registry for the /metrics endpoint.
func (s *StatsInternal) Handler() http.Handler {
	return promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{})
}
