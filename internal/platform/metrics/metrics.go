package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RecordsWritten prometheus.Counter
	RecordReads    *prometheus.CounterVec
	GrantChanges   *prometheus.CounterVec
	EventsRelayed  prometheus.Counter
	RelayFailures  prometheus.Counter
	RequestLatency *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		RecordsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medledger_records_written_total",
			Help: "Total number of patient record upserts",
		}),
		RecordReads: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medledger_record_reads_total",
			Help: "Total number of record view attempts by outcome",
		}, []string{"outcome"}),
		GrantChanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medledger_grant_changes_total",
			Help: "Total number of access ledger mutations by action",
		}, []string{"action"}),
		EventsRelayed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medledger_events_relayed_total",
			Help: "Total number of notifications published to Kafka",
		}),
		RelayFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medledger_relay_failures_total",
			Help: "Total number of failed notification publish attempts",
		}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "medledger_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Read outcomes and grant actions used as label values.
const (
	ReadOutcomeOK     = "ok"
	ReadOutcomeDenied = "denied"

	GrantActionGrant  = "grant"
	GrantActionRevoke = "revoke"
)

// IncRecordsWritten increments the record upsert counter by 1.
func (m *Metrics) IncRecordsWritten() {
	m.RecordsWritten.Inc()
}

// IncRecordRead counts one view attempt with the given outcome.
func (m *Metrics) IncRecordRead(outcome string) {
	m.RecordReads.WithLabelValues(outcome).Inc()
}

// IncGrantChange counts one ledger mutation with the given action.
func (m *Metrics) IncGrantChange(action string) {
	m.GrantChanges.WithLabelValues(action).Inc()
}

// ObserveLatency records one request duration for the route.
func (m *Metrics) ObserveLatency(route string, seconds float64) {
	m.RequestLatency.WithLabelValues(route).Observe(seconds)
}
