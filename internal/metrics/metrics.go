// Package metrics holds the prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "retailpos"

var (
	OrdersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Orders committed, by payment type.",
	}, []string{"payment_type"})

	OrdersRefunded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_refunded_total",
		Help:      "Orders moved to REFUNDED.",
	})

	StockRejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_rejections_total",
		Help:      "Stock decrements refused for insufficient quantity.",
	})

	ShiftsClosed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shifts_closed_total",
		Help:      "Shift reports closed.",
	})

	LowStockProducts = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "low_stock_products",
		Help:      "Products whose global stock is below the alert threshold.",
	})

	JobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_processed_total",
		Help:      "Background jobs handled, by type and result.",
	}, []string{"type", "result"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
