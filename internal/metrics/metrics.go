package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	OrdersCreated      prometheus.Counter
	OrderFailures      *prometheus.CounterVec
	OrderStatusChanges *prometheus.CounterVec
	CartItemsAdded     prometheus.Counter
	CacheLookups       *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		OrdersCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "orders_created_total",
			Help:      "Orders committed successfully.",
		}),
		OrderFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "order_failures_total",
			Help:      "Order commits that were rejected or rolled back.",
		}, []string{"reason"}),
		OrderStatusChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "order_status_changes_total",
			Help:      "Order status transitions by target status.",
		}, []string{"status"}),
		CartItemsAdded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "cart_items_added_total",
			Help:      "Add-to-cart requests merged into a cart.",
		}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "product_cache_lookups_total",
			Help:      "Product cache lookups by result.",
		}, []string{"result"}),
	}
}

// NewNop returns metrics bound to a throwaway registry, for tests.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
