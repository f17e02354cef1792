package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"baselinker-sync/internal/service"
	"baselinker-sync/internal/snapshot"
	"baselinker-sync/internal/summary"
	"baselinker-sync/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler contains HTTP handlers
type Handler struct {
	snap      *snapshot.Snapshot
	orders    *service.OrderSyncEngine
	inventory *service.InventorySyncEngine
	tracker   *summary.Tracker
}

// NewHandler creates a new HTTP handler
func NewHandler(
	snap *snapshot.Snapshot,
	orders *service.OrderSyncEngine,
	inventory *service.InventorySyncEngine,
	tracker *summary.Tracker,
) *Handler {
	return &Handler{
		snap:      snap,
		orders:    orders,
		inventory: inventory,
		tracker:   tracker,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/orders", h.listOrders)
		v1.GET("/orders/:id", h.getOrder)
		v1.GET("/products", h.listProducts)
		v1.GET("/products/low-stock", h.listLowStockProducts)
		v1.GET("/status", h.getStatus)
		v1.GET("/summary", h.getSummary)
		v1.GET("/statistics", h.getStatistics)
		v1.GET("/sales", h.getSales)
		v1.POST("/sync", h.triggerSync)
		v1.POST("/inventory/sync", h.triggerInventorySync)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// listOrders returns the snapshot order list, newest first.
func (h *Handler) listOrders(c *gin.Context) {
	orders := h.snap.Orders()
	c.JSON(http.StatusOK, gin.H{
		"count":  len(orders),
		"orders": orders,
	})
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	order, ok := h.snap.Order(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
		})
		return
	}

	c.JSON(http.StatusOK, order)
}

// listProducts returns the snapshot product list.
func (h *Handler) listProducts(c *gin.Context) {
	products := h.snap.Products()
	c.JSON(http.StatusOK, gin.H{
		"count":    len(products),
		"products": products,
	})
}

// listLowStockProducts returns the products at or below the low-stock
// threshold.
func (h *Handler) listLowStockProducts(c *gin.Context) {
	all := h.snap.Products()
	low := all[:0:0]
	for _, p := range all {
		if p.IsLowStock() {
			low = append(low, p)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(low),
		"products": low,
	})
}

// getStatus reports connection state and background work progress.
func (h *Handler) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connection":         h.snap.ConnectionStatus(),
		"orders":             h.snap.OrderCount(),
		"products":           len(h.snap.Products()),
		"inventory_progress": h.snap.ProductProgress(),
		"selected_inventory": h.inventory.SelectedInventory(),
		"syncing":            h.orders.Busy(),
		"refreshing":         h.inventory.Busy(),
	})
}

// getSummary returns the cached trailing-24h summary.
func (h *Handler) getSummary(c *gin.Context) {
	s, ok := h.tracker.Current()
	if !ok {
		s = summary.BuildDaily(h.snap.Orders(), h.snap.Products(), time.Now())
	}
	c.JSON(http.StatusOK, s)
}

// getStatistics returns whole-snapshot order statistics.
func (h *Handler) getStatistics(c *gin.Context) {
	c.JSON(http.StatusOK, summary.BuildStatistics(h.snap.Orders()))
}

// getSales returns per-day order value for the trailing week.
func (h *Handler) getSales(c *gin.Context) {
	days := 7
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 90 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid days parameter",
			})
			return
		}
		days = n
	}
	c.JSON(http.StatusOK, gin.H{
		"days": summary.SalesByDay(h.snap.Orders(), days, time.Now()),
	})
}

// triggerSync starts a full order sync in the background.
func (h *Handler) triggerSync(c *gin.Context) {
	if h.orders.Busy() {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Sync already in progress",
		})
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := h.orders.Sync(ctx, time.Time{}, time.Time{}, ""); err != nil && !errors.Is(err, service.ErrSyncInProgress) {
			util.GetLogger().Error("Manual sync failed", zap.Error(err))
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"status": "sync started",
	})
}

// triggerInventorySync starts an inventory refresh in the background. An
// inventory_id query parameter pins the catalog to refresh.
func (h *Handler) triggerInventorySync(c *gin.Context) {
	if h.inventory.Busy() {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Inventory refresh already in progress",
		})
		return
	}

	if id := c.Query("inventory_id"); id != "" {
		h.inventory.SelectInventory(id)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := h.inventory.Refresh(ctx); err != nil && !errors.Is(err, service.ErrSyncInProgress) {
			util.GetLogger().Error("Manual inventory refresh failed", zap.Error(err))
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"status": "inventory refresh started",
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
