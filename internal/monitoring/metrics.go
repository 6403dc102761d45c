package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments exposed on the metrics server.
type Metrics struct {
	OrdersCreated       prometheus.Counter
	StatusTransitions   *prometheus.CounterVec
	InventoryRejections prometheus.Counter
	AdvisoryFailures    prometheus.Counter
	LowStockItems       prometheus.Gauge
}

// New registers the application metrics with reg. A nil registerer gets a
// private registry, which keeps tests isolated.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		OrdersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "grillhouse_orders_created_total",
			Help: "Number of orders accepted at checkout.",
		}),
		StatusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "grillhouse_order_transitions_total",
			Help: "Number of committed order status transitions.",
		}, []string{"status"}),
		InventoryRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "grillhouse_inventory_rejections_total",
			Help: "Number of transitions rejected for insufficient inventory.",
		}),
		AdvisoryFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "grillhouse_advisory_failures_total",
			Help: "Number of best-effort stats/loyalty updates that failed.",
		}),
		LowStockItems: factory.NewGauge(prometheus.GaugeOpts{
			Name: "grillhouse_low_stock_items",
			Help: "Number of inventory items at or below their restock threshold.",
		}),
	}
}
