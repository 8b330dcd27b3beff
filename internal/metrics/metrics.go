package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "stayfinder"

// Booking outcome labels.
const (
	OutcomeConfirmed        = "confirmed"
	OutcomeDoubleBooked     = "double_booked"
	OutcomeInvalidRange     = "invalid_range"
	OutcomeCapacityExceeded = "capacity_exceeded"
	OutcomeNotFound         = "not_found"
	OutcomeError            = "error"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		},
		[]string{"route", "method", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	grpcRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_requests_total",
			Help:      "gRPC requests by method and status code.",
		},
		[]string{"method", "code"},
	)

	bookingRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_requests_total",
			Help:      "Booking requests by outcome.",
		},
		[]string{"outcome"},
	)

	cancellations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservation_cancellations_total",
			Help:      "Reservations moved to cancelled.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, grpcRequests, bookingRequests, cancellations)
	})
}

// ObserveHTTP records one served HTTP request.
func ObserveHTTP(route, method, status string, seconds float64) {
	httpRequests.WithLabelValues(route, method, status).Inc()
	httpDuration.WithLabelValues(route).Observe(seconds)
}

func IncGRPC(method, code string) {
	grpcRequests.WithLabelValues(method, code).Inc()
}

func IncBooking(outcome string) {
	bookingRequests.WithLabelValues(outcome).Inc()
}

func IncCancellation() {
	cancellations.Inc()
}
