package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReservationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_reservations_created_total",
		Help: "Reservations successfully created.",
	})
	ReservationsConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_reservations_confirmed_total",
		Help: "Reservations confirmed as sales.",
	})
	ReservationsReleased = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_reservations_released_total",
		Help: "Reservations released back to availability by callers.",
	})
	ReservationsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_reservations_expired_total",
		Help: "Reservations released by the expiration sweeper.",
	})
	InsufficientStockRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_insufficient_stock_total",
		Help: "Reservation attempts rejected for insufficient stock.",
	})
	OptimisticConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_optimistic_conflicts_total",
		Help: "Optimistic version conflicts observed, including retried ones.",
	})
	SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "inventory_sweep_duration_seconds",
		Help:    "Duration of one expiration sweep pass.",
		Buckets: prometheus.DefBuckets,
	})
)
