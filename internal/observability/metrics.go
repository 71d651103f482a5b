// Package observability declares the Prometheus metrics exported on
// /metrics. Counters are package-level promauto values so any layer can
// increment them without plumbing a registry through constructors.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cupo",
		Name:      "bookings_created_total",
		Help:      "Bookings successfully created (seats held).",
	})
	BookingsConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cupo",
		Name:      "bookings_confirmed_total",
		Help:      "Bookings confirmed by the driver.",
	})
	BookingsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cupo",
		Name:      "bookings_rejected_total",
		Help:      "Bookings rejected by the driver (seats restored).",
	})
	BookingsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cupo",
		Name:      "bookings_cancelled_total",
		Help:      "Bookings cancelled by the requester (seats restored).",
	})
	BookingConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cupo",
		Name:      "booking_conflicts_total",
		Help:      "Booking attempts rejected by a precondition or a lost seat race.",
	})
	OffersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cupo",
		Name:      "offers_created_total",
		Help:      "Cupos posted by drivers.",
	})
	OffersCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cupo",
		Name:      "offers_cancelled_total",
		Help:      "Cupos cancelled by their driver.",
	})
	NotificationsEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cupo",
		Name:      "notifications_emitted_total",
		Help:      "Notifications persisted by the emitter.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cupo",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cupo",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and path.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})
)
