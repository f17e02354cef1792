// Package summary derives read-only aggregates from the snapshot: order
// statistics, a trailing-24h daily summary and per-day sales. It never
// mutates sync state.
package summary

import (
	"sort"
	"sync"
	"time"

	"baselinker-sync/internal/models"

	"github.com/shopspring/decimal"
)

const topProductLimit = 5

// TopProduct is one entry of the best-seller list.
type TopProduct struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	ImageURL string `json:"image_url,omitempty"`
}

// DailySummary aggregates the orders of the trailing 24 hours.
type DailySummary struct {
	OrderCount    int             `json:"order_count"`
	TotalValue    decimal.Decimal `json:"total_value"`
	NewOrderCount int             `json:"new_order_count"`
	TopProducts   []TopProduct    `json:"top_products"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// Statistics aggregates the whole snapshot.
type Statistics struct {
	OrderCount        int             `json:"order_count"`
	TotalValue        decimal.Decimal `json:"total_value"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	CountByStatus     map[string]int  `json:"count_by_status"`
}

// DayRevenue is the order value attributed to one calendar day.
type DayRevenue struct {
	Day   time.Time       `json:"day"`
	Value decimal.Decimal `json:"value"`
}

// BuildDaily computes the trailing-24h summary as of now.
func BuildDaily(orders []models.Order, products []models.InventoryProduct, now time.Time) DailySummary {
	since := now.Add(-24 * time.Hour)

	var recent []models.Order
	for _, o := range orders {
		if !o.DateCreated.Before(since) && !o.DateCreated.After(now) {
			recent = append(recent, o)
		}
	}

	total := decimal.Zero
	newCount := 0
	for _, o := range recent {
		total = total.Add(o.TotalAmount)
		if o.StatusID == models.StatusIDNew {
			newCount++
		}
	}

	return DailySummary{
		OrderCount:    len(recent),
		TotalValue:    total,
		NewOrderCount: newCount,
		TopProducts:   topProducts(recent, products, topProductLimit),
		GeneratedAt:   now,
	}
}

// BuildStatistics computes whole-snapshot order statistics.
func BuildStatistics(orders []models.Order) Statistics {
	stats := Statistics{CountByStatus: make(map[string]int)}
	stats.OrderCount = len(orders)
	stats.TotalValue = decimal.Zero
	for _, o := range orders {
		stats.TotalValue = stats.TotalValue.Add(o.TotalAmount)
		stats.CountByStatus[o.StatusID]++
	}
	if stats.OrderCount > 0 {
		stats.AverageOrderValue = stats.TotalValue.Div(decimal.NewFromInt(int64(stats.OrderCount)))
	} else {
		stats.AverageOrderValue = decimal.Zero
	}
	return stats
}

// SalesByDay buckets order value into the trailing days calendar days,
// oldest first.
func SalesByDay(orders []models.Order, days int, now time.Time) []DayRevenue {
	startOf := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}

	out := make([]DayRevenue, days)
	index := make(map[time.Time]int, days)
	for i := 0; i < days; i++ {
		day := startOf(now.AddDate(0, 0, -(days - 1 - i)))
		out[i] = DayRevenue{Day: day, Value: decimal.Zero}
		index[day] = i
	}

	for _, o := range orders {
		if i, ok := index[startOf(o.DateCreated)]; ok {
			out[i].Value = out[i].Value.Add(o.TotalAmount)
		}
	}
	return out
}

// topProducts aggregates line quantities by product name and back-fills
// images from the warehouse where the order line has none.
func topProducts(orders []models.Order, products []models.InventoryProduct, limit int) []TopProduct {
	byName := make(map[string]TopProduct)
	skuByName := make(map[string]string)

	for _, o := range orders {
		for _, item := range o.Items {
			entry, ok := byName[item.Name]
			if !ok {
				entry = TopProduct{ID: item.ID, Name: item.Name}
				skuByName[item.Name] = item.SKU
			}
			entry.Quantity += item.Quantity
			if usableImage(item.ImageURL) {
				entry.ImageURL = item.ImageURL
			}
			byName[item.Name] = entry
		}
	}

	result := make([]TopProduct, 0, len(byName))
	for name, entry := range byName {
		if !usableImage(entry.ImageURL) {
			if img := lookupImage(products, skuByName[name], entry.ID); img != "" {
				entry.ImageURL = img
			}
		}
		result = append(result, entry)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Quantity != result[j].Quantity {
			return result[i].Quantity > result[j].Quantity
		}
		return result[i].Name < result[j].Name
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

// Tracker caches the most recent daily summary for the read surface.
type Tracker struct {
	mu      sync.RWMutex
	current *DailySummary
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Recompute rebuilds the daily summary from the given state.
func (t *Tracker) Recompute(orders []models.Order, products []models.InventoryProduct) DailySummary {
	s := BuildDaily(orders, products, time.Now())
	t.mu.Lock()
	t.current = &s
	t.mu.Unlock()
	return s
}

// Current returns the last computed summary, if any.
func (t *Tracker) Current() (DailySummary, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.current == nil {
		return DailySummary{}, false
	}
	return *t.current, true
}
