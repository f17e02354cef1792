// Package snapshot holds the process-wide in-memory copy of orders and
// inventory. It is the only state the presentation layer reads; the two
// sync engines are its only writers. Nothing here is persisted — the
// snapshot rebuilds from the API on restart.
package snapshot

import (
	"sort"
	"sync"
	"time"

	"baselinker-sync/internal/models"
)

// Snapshot is the mutable shared state. Every mutation happens atomically
// under one mutex so readers never observe a half-merged page.
type Snapshot struct {
	mu       sync.RWMutex
	orders   []models.Order
	products []models.InventoryProduct
	statuses models.StatusCatalog
	status   ConnectionStatus
	progress float64
}

// New creates an empty snapshot.
func New() *Snapshot {
	return &Snapshot{}
}

// Orders returns a copy of the current order list, newest first.
func (s *Snapshot) Orders() []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// Order returns the order with the given id.
func (s *Snapshot) Order(id string) (models.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == id {
			return o, true
		}
	}
	return models.Order{}, false
}

// OrderCount returns the number of orders currently held.
func (s *Snapshot) OrderCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

// ReplaceOrders replaces the whole order list (page 1 of a full sync).
func (s *Snapshot) ReplaceOrders(orders []models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = s.orders[:0]
	seen := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		if _, dup := seen[o.ID]; dup {
			continue
		}
		seen[o.ID] = struct{}{}
		s.annotateLocked(&o)
		s.orders = append(s.orders, o)
	}
	s.sortOrdersLocked()
}

// MergeOrders appends the incoming orders whose ids are not present yet
// and returns the ones that were actually added.
func (s *Snapshot) MergeOrders(incoming []models.Order) []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]struct{}, len(s.orders))
	for _, o := range s.orders {
		existing[o.ID] = struct{}{}
	}

	var added []models.Order
	for _, o := range incoming {
		if _, dup := existing[o.ID]; dup {
			continue
		}
		existing[o.ID] = struct{}{}
		s.annotateLocked(&o)
		s.orders = append(s.orders, o)
		added = append(added, o)
	}
	s.sortOrdersLocked()
	return added
}

// RemoveOrders drops the orders with the given ids and returns how many
// were actually removed.
func (s *Snapshot) RemoveOrders(ids map[string]struct{}) int {
	if len(ids) == 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.orders[:0]
	removed := 0
	for _, o := range s.orders {
		if _, drop := ids[o.ID]; drop {
			removed++
			continue
		}
		kept = append(kept, o)
	}
	s.orders = kept
	return removed
}

// MaxDateConfirmed returns the sync cursor: the maximum confirmation
// timestamp over all held orders. ok is false when the snapshot is empty.
func (s *Snapshot) MaxDateConfirmed() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var max time.Time
	for _, o := range s.orders {
		if o.DateConfirmed.After(max) {
			max = o.DateConfirmed
		}
	}
	return max, len(s.orders) > 0
}

// RecentByConfirmed returns up to n orders with the highest confirmation
// timestamps, used by the deleted-order sweep.
func (s *Snapshot) RecentByConfirmed(n int) []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Order, len(s.orders))
	copy(out, s.orders)
	sort.Slice(out, func(i, j int) bool {
		return out[i].DateConfirmed.After(out[j].DateConfirmed)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// SetStatusCatalog stores the status catalog and back-fills the display
// metadata of orders that were loaded before the catalog arrived.
func (s *Snapshot) SetStatusCatalog(catalog models.StatusCatalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = catalog
	for i := range s.orders {
		s.annotateLocked(&s.orders[i])
	}
}

// StatusCatalog returns the current status catalog.
func (s *Snapshot) StatusCatalog() models.StatusCatalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(models.StatusCatalog, len(s.statuses))
	for k, v := range s.statuses {
		out[k] = v
	}
	return out
}

// Products returns a copy of the current product list.
func (s *Snapshot) Products() []models.InventoryProduct {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.InventoryProduct, len(s.products))
	copy(out, s.products)
	return out
}

// SetProducts replaces the product list wholesale, deduplicating by id and
// sorting by name. Inventory refreshes never merge incrementally.
func (s *Snapshot) SetProducts(products []models.InventoryProduct) {
	unique := make([]models.InventoryProduct, 0, len(products))
	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		unique = append(unique, p)
	}
	sort.Slice(unique, func(i, j int) bool {
		return unique[i].Name < unique[j].Name
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = unique
}

// SetProductProgress publishes the inventory refresh progress fraction.
func (s *Snapshot) SetProductProgress(fraction float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = fraction
}

// ProductProgress returns the inventory refresh progress fraction.
func (s *Snapshot) ProductProgress() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

// SetConnectionStatus records the outcome of the last probe or sync.
func (s *Snapshot) SetConnectionStatus(status ConnectionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// ConnectionStatus returns the last recorded connection status.
func (s *Snapshot) ConnectionStatus() ConnectionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// annotateLocked fills the display status fields from the catalog.
func (s *Snapshot) annotateLocked(o *models.Order) {
	if st, ok := s.statuses[o.StatusID]; ok {
		o.StatusName = st.Name
		o.StatusColor = st.Color
	}
}

// sortOrdersLocked keeps the display ordering contract: newest first.
func (s *Snapshot) sortOrdersLocked() {
	sort.Slice(s.orders, func(i, j int) bool {
		return s.orders[i].DateCreated.After(s.orders[j].DateCreated)
	})
}
