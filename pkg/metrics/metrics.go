package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsAssignedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pickup_requests_assigned_total",
		Help: "Pickup requests assigned to a collector, by trigger.",
	},
		[]string{"trigger"},
	)

	RequestsReassignedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pickup_requests_reassigned_total",
		Help: "Pickup requests moved to a different collector, by trigger.",
	},
		[]string{"trigger"},
	)

	AssignmentsClearedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pickup_assignments_cleared_total",
		Help: "Pickup requests left unassigned after their collector went inactive.",
	})

	RequestsMissedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pickup_requests_missed_total",
		Help: "Pickup requests marked as missed by the daily sweep.",
	})

	MarketplaceItemsDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_items_deleted_total",
		Help: "Sold or claimed marketplace items removed after their retention window.",
	})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_total",
		Help: "Push notifications attempted, by outcome.",
	},
		[]string{"outcome"},
	)

	DocumentErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pickup_document_errors_total",
		Help: "Per-document failures isolated during a batch pass, by operation.",
	},
		[]string{"operation"},
	)

	SweepErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pickup_sweep_errors_total",
		Help: "Invocations that ended with an error, by trigger kind.",
	},
		[]string{"kind"},
	)
)
