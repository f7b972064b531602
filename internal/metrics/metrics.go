package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BookingsCreated counts committed bookings (single and group).
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "frontdesk_bookings_created_total",
		Help: "Number of bookings committed successfully.",
	})

	// BookingConflicts counts bookings rejected by a date conflict or
	// stale write at commit time.
	BookingConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "frontdesk_booking_conflicts_total",
		Help: "Number of bookings that failed to commit.",
	})

	// ReservationTransitions counts lifecycle transitions by target status.
	ReservationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "frontdesk_reservation_transitions_total",
		Help: "Number of reservation status transitions applied.",
	}, []string{"to"})

	// ReconciliationCheckouts counts reservations auto-checked-out by the
	// overdue sweep.
	ReconciliationCheckouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "frontdesk_reconciliation_checkouts_total",
		Help: "Number of overdue reservations closed by the sweep.",
	})

	// SyncEventsPublished counts change events delivered to the broadcast
	// channel.
	SyncEventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "frontdesk_sync_events_published_total",
		Help: "Number of change events published to subscribers.",
	})

	// BookingDuration observes the end-to-end latency of group bookings.
	BookingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "frontdesk_booking_duration_seconds",
		Help:    "Latency of group booking creation.",
		Buckets: prometheus.DefBuckets,
	})
)
