package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "clinicsched"

const (
	OutcomeReserved = "reserved"
	OutcomeConflict = "conflict"
	OutcomeSkipped  = "skipped"
	OutcomeCreated  = "created"
	OutcomeFailed   = "failed"
)

var (
	once sync.Once

	reservations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_total",
			Help:      "Count of reservation checks by outcome.",
		},
		[]string{"outcome"},
	)

	conflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conflicts_total",
			Help:      "Count of detected conflicts by type.",
		},
		[]string{"type"},
	)

	seriesInstances = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "series_instances_total",
			Help:      "Count of recurring series instances by outcome.",
		},
		[]string{"outcome"},
	)

	recurrenceCeiling = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recurrence_ceiling_hits_total",
			Help:      "Count of recurrence expansions stopped by the instance ceiling.",
		},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "working_hours_cache_total",
			Help:      "Count of working hours cache lookups by result.",
		},
		[]string{"result"},
	)

	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_messages_published_total",
			Help:      "Count of kafka messages published by topic and outcome.",
		},
		[]string{"topic", "outcome"},
	)

	publishDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_duration_seconds",
			Help:      "Kafka publish latency by topic.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"topic"},
	)

	httpRequests = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			reservations,
			conflicts,
			seriesInstances,
			recurrenceCeiling,
			cacheLookups,
			eventsPublished,
			publishDuration,
			httpRequests,
		)
	})
}

func IncReservation(outcome string) {
	reservations.WithLabelValues(outcome).Inc()
}

func IncConflict(conflictType string) {
	conflicts.WithLabelValues(conflictType).Inc()
}

func AddSeriesInstances(outcome string, n int) {
	if n <= 0 {
		return
	}
	seriesInstances.WithLabelValues(outcome).Add(float64(n))
}

func IncRecurrenceCeiling() {
	recurrenceCeiling.Inc()
}

func IncCacheLookup(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}

func ObservePublish(topic string, seconds float64, err error) {
	outcome := OutcomeCreated
	if err != nil {
		outcome = OutcomeFailed
	}
	eventsPublished.WithLabelValues(topic, outcome).Inc()
	publishDuration.WithLabelValues(topic).Observe(seconds)
}

func ObserveHTTPRequest(method, status string, seconds float64) {
	httpRequests.WithLabelValues(method, status).Observe(seconds)
}
