package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"baselinker-sync/internal/baselinker"
	"baselinker-sync/internal/models"
	"baselinker-sync/internal/rategate"
	"baselinker-sync/internal/snapshot"
	"baselinker-sync/internal/util"

	"go.uber.org/zap"
)

// ErrSyncInProgress is returned when a sync is requested while another one
// is still running. Soft: the caller simply tries again on the next tick.
var ErrSyncInProgress = errors.New("sync already in progress")

// Notifier receives the orders a delta sync merged for the first time.
type Notifier interface {
	NotifyNewOrders(ctx context.Context, orders []models.Order) error
}

// OrderSyncEngine keeps the snapshot's order list consistent with the
// remote API: full sync, delta sync with a confirmation-timestamp cursor,
// and a heuristic deleted-order sweep.
type OrderSyncEngine struct {
	client     *baselinker.Client
	snap       *snapshot.Snapshot
	gate       *rategate.Gate
	notifier   Notifier
	logger     *zap.Logger
	pageSize   int
	sweepDepth int
	syncing    atomic.Bool
}

// NewOrderSyncEngine creates a new order sync engine. notifier may be nil.
func NewOrderSyncEngine(
	client *baselinker.Client,
	snap *snapshot.Snapshot,
	gate *rategate.Gate,
	notifier Notifier,
	pageSize, sweepDepth int,
) *OrderSyncEngine {
	return &OrderSyncEngine{
		client:     client,
		snap:       snap,
		gate:       gate,
		notifier:   notifier,
		logger:     util.GetLogger(),
		pageSize:   pageSize,
		sweepDepth: sweepDepth,
	}
}

// orderQuery is the getOrders parameter object.
type orderQuery struct {
	DateConfirmedFrom    int64  `json:"date_confirmed_from"`
	DateConfirmedTo      int64  `json:"date_confirmed_to,omitempty"`
	StatusID             string `json:"status_id,omitempty"`
	OrderID              string `json:"order_id,omitempty"`
	GetUnconfirmedOrders bool   `json:"get_unconfirmed_orders"`
	IncludeProductImages bool   `json:"include_product_images"`
}

// Busy reports whether a sync run is currently in flight.
func (e *OrderSyncEngine) Busy() bool {
	return e.syncing.Load()
}

// Connect probes connectivity and loads the status catalog. It must
// succeed once before the first full sync.
func (e *OrderSyncEngine) Connect(ctx context.Context) error {
	ctx, span := util.StartSpan(ctx, "OrderSyncEngine.Connect")
	defer span.End()

	e.snap.SetConnectionStatus(snapshot.ConnectionStatus{State: snapshot.StateConnecting})

	data, err := e.client.Call(ctx, "getOrderStatusList", nil)
	if err != nil {
		e.snap.SetConnectionStatus(snapshot.Failed(err.Error()))
		return err
	}
	catalog, err := baselinker.ParseStatusList(data)
	if err != nil {
		e.snap.SetConnectionStatus(snapshot.Failed(err.Error()))
		return err
	}

	e.snap.SetStatusCatalog(catalog)
	e.snap.SetConnectionStatus(snapshot.ConnectionStatus{State: snapshot.StateConnected})
	e.logger.Info("Connected to BaseLinker", zap.Int("statuses", len(catalog)))
	return nil
}

// Sync runs a full synchronization: the first page replaces the order
// list, later pages merge. from/to bound the confirmation timestamps;
// zero values mean unbounded. statusID optionally filters by status.
func (e *OrderSyncEngine) Sync(ctx context.Context, from, to time.Time, statusID string) error {
	if !e.syncing.CompareAndSwap(false, true) {
		return ErrSyncInProgress
	}
	defer e.syncing.Store(false)

	util.SyncRunsTotal.WithLabelValues("full").Inc()
	_, err := e.run(ctx, from, to, statusID, true)
	return err
}

// DeltaSync fetches only orders confirmed after the snapshot cursor, then
// sweeps for remotely deleted orders. With an empty snapshot it degrades
// to a full sync. No-op when another sync is in flight.
func (e *OrderSyncEngine) DeltaSync(ctx context.Context) error {
	if !e.syncing.CompareAndSwap(false, true) {
		return ErrSyncInProgress
	}
	defer e.syncing.Store(false)

	cursor, ok := e.snap.MaxDateConfirmed()
	if !ok {
		util.SyncRunsTotal.WithLabelValues("full").Inc()
		_, err := e.run(ctx, time.Time{}, time.Time{}, "", true)
		return err
	}

	util.SyncRunsTotal.WithLabelValues("delta").Inc()
	added, err := e.run(ctx, cursor.Add(time.Second), time.Time{}, "", false)
	if err != nil {
		return err
	}

	if len(added) > 0 && e.notifier != nil {
		if err := e.notifier.NotifyNewOrders(ctx, added); err != nil {
			e.logger.Error("Failed to publish new-order event", zap.Error(err))
		}
	}

	return e.sweepDeleted(ctx)
}

// run drives the batched fetch loop. The loop is an explicit iteration
// with cursor and page accumulators, serial per page: parse, merge,
// resort, then decide from the page size whether more data may exist.
// Errors abort the remaining pages but keep the pages already merged.
func (e *OrderSyncEngine) run(ctx context.Context, from, to time.Time, statusID string, replace bool) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderSyncEngine.run")
	defer span.End()

	e.gate.Reset()

	cursor := from
	firstPage := true
	var added []models.Order

	for page := 1; ; page++ {
		if err := e.gate.Wait(ctx); err != nil {
			return added, err
		}

		query := orderQuery{
			GetUnconfirmedOrders: false,
			IncludeProductImages: true,
			StatusID:             statusID,
		}
		if !cursor.IsZero() {
			query.DateConfirmedFrom = cursor.Unix()
		}
		if !to.IsZero() {
			query.DateConfirmedTo = to.Unix()
		}

		data, err := e.client.Call(ctx, "getOrders", query)
		if err != nil {
			return added, e.fail(err)
		}
		orders, err := baselinker.ParseOrders(data)
		if err != nil {
			return added, e.fail(err)
		}

		util.OrderPagesFetched.Inc()

		if replace && firstPage {
			e.snap.ReplaceOrders(orders)
		} else {
			merged := e.snap.MergeOrders(orders)
			added = append(added, merged...)
			util.OrdersMergedTotal.Add(float64(len(merged)))
		}
		firstPage = false

		e.logger.Info("Order page merged",
			zap.Int("page", page),
			zap.Int("fetched", len(orders)),
			zap.Int("snapshot_size", e.snap.OrderCount()))

		if len(orders) < e.pageSize {
			break
		}

		maxConf, ok := maxDateConfirmed(orders)
		if !ok {
			// A full page without a determinable cursor cannot
			// happen on a well-behaved API; stop rather than loop.
			e.logger.Warn("Full page without usable confirmation timestamps, stopping pagination")
			break
		}
		next := maxConf.Add(time.Second)
		if !next.After(cursor) {
			e.logger.Warn("Cursor did not advance, stopping pagination",
				zap.Time("cursor", cursor))
			break
		}
		cursor = next
	}

	e.snap.SetConnectionStatus(snapshot.ConnectionStatus{State: snapshot.StateConnected})
	return added, nil
}

// sweepDeleted reconciles remote deletions: it looks up the most recent
// orders in one call and evicts the ones the API no longer returns.
// Orders created today are retained even when absent, tolerating same-day
// eventual consistency in the remote system. Heuristic, not transactional.
func (e *OrderSyncEngine) sweepDeleted(ctx context.Context) error {
	recent := e.snap.RecentByConfirmed(e.sweepDepth)
	if len(recent) == 0 {
		return nil
	}

	ids := make([]string, len(recent))
	byID := make(map[string]models.Order, len(recent))
	for i, o := range recent {
		ids[i] = o.ID
		byID[o.ID] = o
	}

	if err := e.gate.Wait(ctx); err != nil {
		return err
	}
	data, err := e.client.Call(ctx, "getOrders", orderQuery{OrderID: strings.Join(ids, ",")})
	if err != nil {
		return e.fail(err)
	}
	returned, err := baselinker.ParseOrders(data)
	if err != nil {
		return e.fail(err)
	}
	util.DeleteSweepsTotal.Inc()

	present := make(map[string]struct{}, len(returned))
	for _, o := range returned {
		present[o.ID] = struct{}{}
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	evict := make(map[string]struct{})
	for _, id := range ids {
		if _, ok := present[id]; ok {
			continue
		}
		if byID[id].DateCreated.Before(startOfDay) {
			evict[id] = struct{}{}
		}
	}

	if removed := e.snap.RemoveOrders(evict); removed > 0 {
		util.OrdersEvictedTotal.Add(float64(removed))
		e.logger.Info("Evicted remotely deleted orders", zap.Int("count", removed))
	}
	return nil
}

// fail records the error on the connection status and counts it.
func (e *OrderSyncEngine) fail(err error) error {
	kind := "decode"
	var tErr *baselinker.TransportError
	var aErr *baselinker.APIError
	switch {
	case errors.As(err, &tErr):
		kind = "transport"
	case errors.As(err, &aErr):
		kind = "api"
	}
	util.SyncFailuresTotal.WithLabelValues(kind).Inc()
	e.snap.SetConnectionStatus(snapshot.Failed(err.Error()))
	return err
}

func maxDateConfirmed(orders []models.Order) (time.Time, bool) {
	var max time.Time
	for _, o := range orders {
		if o.DateConfirmed.After(max) {
			max = o.DateConfirmed
		}
	}
	return max, !max.IsZero()
}
