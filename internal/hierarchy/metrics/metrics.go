package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles hierarchy run metrics.
type Metrics struct {
	RunsTotal    *prometheus.CounterVec
	RunDuration  prometheus.Histogram
	RowsUpdated  prometheus.Counter
	BatchesTotal prometheus.Counter
	PowerPasses  prometheus.Gauge
	Diagnostics  *prometheus.CounterVec
}

// New constructs and registers metrics.
func New() *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hierarchy_runs_total",
				Help: "Total hierarchy runs by status",
			},
			[]string{"status"},
		),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hierarchy_run_duration_seconds",
			Help:    "Hierarchy run duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		RowsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hierarchy_rows_updated_total",
			Help: "Total rows updated by the sink",
		}),
		BatchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hierarchy_sink_batches_total",
			Help: "Total sink batches delivered",
		}),
		PowerPasses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hierarchy_power_passes",
			Help: "Power fixpoint passes of the last run",
		}),
		Diagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hierarchy_diagnostics_total",
				Help: "Total recovered diagnostics by kind",
			},
			[]string{"kind"},
		),
	}
	prometheus.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.RowsUpdated,
		m.BatchesTotal,
		m.PowerPasses,
		m.Diagnostics,
	)
	return m
}
