package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	QueriesSubmitted prometheus.Counter
	QueriesCompleted prometheus.Counter
	QueriesFailed    prometheus.Counter
	AnalysisDuration prometheus.Histogram
	ErrorsCount      *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		QueriesSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_submitted_total",
			Help:      "The total number of queries persisted as pending",
		}),
		QueriesCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_completed_total",
			Help:      "The total number of queries that reached completed",
		}),
		QueriesFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_failed_total",
			Help:      "The total number of submissions that ended in failure",
		}),
		AnalysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time from pending persist to completed persist",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
