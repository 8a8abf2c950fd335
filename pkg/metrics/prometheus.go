package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	ImportsTotal    *prometheus.CounterVec
	RowsTotal       *prometheus.CounterVec
	FlagsTotal      *prometheus.CounterVec
	ImportDuration  prometheus.Histogram
	StoredWaypoints prometheus.Gauge
	QueriesTotal    *prometheus.CounterVec
}

// NewMetrics creates the service metrics on the given registerer
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ImportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "The total number of tabular imports by status",
		}, []string{"status"}),
		RowsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "The total number of imported rows by outcome",
		}, []string{"outcome"}),
		FlagsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "waypoint_flags_total",
			Help:      "The total number of classification flags raised on imported waypoints",
		}, []string{"flag"}),
		ImportDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Time taken to classify and store an import",
			Buckets:   prometheus.DefBuckets,
		}),
		StoredWaypoints: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stored_waypoints",
			Help:      "The number of waypoints in the current dataset",
		}),
		QueriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "statistics_queries_total",
			Help:      "The total number of statistics queries by query and result",
		}, []string{"query", "result"}),
	}
}
