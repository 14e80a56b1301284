package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cartOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_operations_total",
		Help: "Cart mutations by operation.",
	}, []string{"op"})

	compareRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_compare_rejections_total",
		Help: "Rejected add-to-compare calls by reason.",
	}, []string{"reason"})

	favoriteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_favorite_failures_total",
		Help: "Failed remote favorite calls by operation.",
	}, []string{"op"})

	persistFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_persist_failures_total",
		Help: "Failed durable storage writes by slot.",
	}, []string{"slot"})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_sessions_active",
		Help: "Sessions currently held in memory.",
	})
)
