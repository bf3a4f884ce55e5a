// Package metrics holds the prometheus instrumentation for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	AssignmentRuns   prometheus.Counter
	AssignedFlights  prometheus.Counter
	OperatedFlights  prometheus.Counter
	OperateConflicts prometheus.Counter
	ImportedFlights  prometheus.Counter
	RequestDuration  *prometheus.HistogramVec
	ErrorsCount      *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		AssignmentRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assignment_runs_total",
			Help:      "The total number of completed auto-assignment runs",
		}),
		AssignedFlights: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assigned_flights_total",
			Help:      "The total number of flights relabeled by assignment runs",
		}),
		OperatedFlights: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operated_flights_total",
			Help:      "The total number of flights marked operated",
		}),
		OperateConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operate_conflicts_total",
			Help:      "Mark-operated attempts that lost to a concurrent operator",
		}),
		ImportedFlights: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imported_flights_total",
			Help:      "The total number of manifest flights inserted",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		ErrorsCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
