package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	persistenceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_persistence_failures_total",
			Help: "Failed saves of shopper store state, by store.",
		},
		[]string{"store"},
	)

	activeSessions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storefront_sessions_active",
			Help: "Shopper store instances held in memory, by store.",
		},
		[]string{"store"},
	)

	ordersPlaced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Orders placed, by payment method.",
		},
		[]string{"payment_method"},
	)

	paymentFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_payment_failures_total",
			Help: "Checkout submissions that did not result in a paid order, by reason.",
		},
		[]string{"reason"},
	)
)
