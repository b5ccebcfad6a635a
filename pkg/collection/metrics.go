package collection

import (
	m "github.com/josefjadrny/go-idb/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the prometheus collectors shared by every collection of a
// database. Each series is labelled with the collection name.
type Metrics struct {
	// all metrics fields must be exported
	// to be able to return them by Metrics()
	// using reflection
	OperationsTotal *prometheus.CounterVec
	ErrorsTotal     *prometheus.CounterVec
	SchemaResets    *prometheus.CounterVec
	Documents       *prometheus.GaugeVec
}

// NewMetrics creates unregistered collection metrics.
func NewMetrics() *Metrics {
	subsystem := "collection"

	return &Metrics{
		OperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "operations_total",
			Help:      "Number of collection operations by kind.",
		}, []string{"collection", "operation"}),
		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "errors_total",
			Help:      "Number of failed collection operations by kind.",
		}, []string{"collection", "operation"}),
		SchemaResets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "schema_resets_total",
			Help:      "Number of times stored data was reset because the schema changed.",
		}, []string{"collection"}),
		Documents: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: m.Namespace,
			Subsystem: subsystem,
			Name:      "documents",
			Help:      "Number of documents after the last commit.",
		}, []string{"collection"}),
	}
}

func (ms *Metrics) Metrics() []prometheus.Collector {
	return m.PrometheusCollectorsFromFields(ms)
}
