package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SyncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_sync_runs_total",
		Help: "Total number of order sync runs",
	}, []string{"mode"})

	SyncFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_sync_failures_total",
		Help: "Total number of failed order sync runs",
	}, []string{"kind"})

	OrderPagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_pages_fetched_total",
		Help: "Total number of order pages fetched from the API",
	})

	OrdersMergedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_merged_total",
		Help: "Total number of new orders merged into the snapshot",
	})

	OrdersEvictedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_evicted_total",
		Help: "Total number of orders evicted by the delete sweep",
	})

	DeleteSweepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_delete_sweeps_total",
		Help: "Total number of deleted-order sweeps performed",
	})

	InventoryRefreshTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_refresh_total",
		Help: "Total number of inventory refresh cycles started",
	})

	InventoryBatchesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_batches_failed_total",
		Help: "Total number of skipped product detail batches",
	})

	InventoryProductsLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "inventory_products_loaded",
		Help: "Number of products in the snapshot after the last refresh",
	})

	NewOrderEventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "new_order_events_published_total",
		Help: "Total number of new-order events published to the broker",
	})

	APICallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "baselinker_api_call_duration_seconds",
		Help:    "Latency of BaseLinker API calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	APICallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "baselinker_api_calls_total",
		Help: "Total number of BaseLinker API calls",
	}, []string{"method", "outcome"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
