package service

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"baselinker-sync/internal/baselinker"
	"baselinker-sync/internal/models"
	"baselinker-sync/internal/rategate"
	"baselinker-sync/internal/snapshot"
	"baselinker-sync/internal/util"

	"go.uber.org/zap"
)

// InventorySyncEngine refreshes the snapshot's product list through a
// three-stage pipeline: catalog discovery, paginated id listing, and
// batched detail enrichment. A failed detail batch is skipped, never
// fatal — coverage over correctness-at-one-batch.
type InventorySyncEngine struct {
	client          *baselinker.Client
	snap            *snapshot.Snapshot
	gate            *rategate.Gate
	logger          *zap.Logger
	listPageSize    int
	detailBatchSize int
	selectedID      atomic.Value // string, the chosen catalog id
	refreshing      atomic.Bool
}

// NewInventorySyncEngine creates a new inventory sync engine.
func NewInventorySyncEngine(
	client *baselinker.Client,
	snap *snapshot.Snapshot,
	gate *rategate.Gate,
	listPageSize, detailBatchSize int,
) *InventorySyncEngine {
	return &InventorySyncEngine{
		client:          client,
		snap:            snap,
		gate:            gate,
		logger:          util.GetLogger(),
		listPageSize:    listPageSize,
		detailBatchSize: detailBatchSize,
	}
}

// Busy reports whether a refresh is currently in flight.
func (e *InventorySyncEngine) Busy() bool {
	return e.refreshing.Load()
}

// SelectedInventory returns the catalog the engine operates on, if any.
func (e *InventorySyncEngine) SelectedInventory() string {
	if v, ok := e.selectedID.Load().(string); ok {
		return v
	}
	return ""
}

// SelectInventory pins the catalog used by the next refresh.
func (e *InventorySyncEngine) SelectInventory(id string) {
	e.selectedID.Store(id)
}

// Refresh runs one complete inventory refresh cycle and replaces the
// snapshot product list wholesale at the end. No-op when a refresh is
// already running.
func (e *InventorySyncEngine) Refresh(ctx context.Context) error {
	if !e.refreshing.CompareAndSwap(false, true) {
		return ErrSyncInProgress
	}
	defer e.refreshing.Store(false)

	ctx, span := util.StartSpan(ctx, "InventorySyncEngine.Refresh")
	defer span.End()

	util.InventoryRefreshTotal.Inc()

	inventoryID, err := e.selectCatalog(ctx)
	if err != nil {
		return err
	}

	ids, err := e.listProductIDs(ctx, inventoryID)
	if err != nil {
		return err
	}

	products := e.fetchDetails(ctx, inventoryID, ids)

	e.snap.SetProducts(products)
	e.snap.SetProductProgress(1)
	util.InventoryProductsLoaded.Set(float64(len(e.snap.Products())))

	e.logger.Info("Inventory refresh completed",
		zap.String("inventory_id", inventoryID),
		zap.Int("ids_listed", len(ids)),
		zap.Int("products_loaded", len(e.snap.Products())))
	return nil
}

// selectCatalog lists the available catalogs and keeps the previously
// selected one when it still exists, otherwise picks the first.
func (e *InventorySyncEngine) selectCatalog(ctx context.Context) (string, error) {
	data, err := e.client.Call(ctx, "getInventories", nil)
	if err != nil {
		e.snap.SetConnectionStatus(snapshot.Failed(err.Error()))
		return "", err
	}
	inventories, err := baselinker.ParseInventories(data)
	if err != nil {
		e.snap.SetConnectionStatus(snapshot.Failed(err.Error()))
		return "", err
	}
	if len(inventories) == 0 {
		err := fmt.Errorf("no inventories available")
		e.snap.SetConnectionStatus(snapshot.Failed(err.Error()))
		return "", err
	}

	selected := e.SelectedInventory()
	for _, inv := range inventories {
		if inv.ID == selected {
			return selected, nil
		}
	}
	e.selectedID.Store(inventories[0].ID)
	return inventories[0].ID, nil
}

// listProductIDs pages through getInventoryProductsList accumulating ids.
// A page filled to the cap signals that more pages may exist.
func (e *InventorySyncEngine) listProductIDs(ctx context.Context, inventoryID string) ([]string, error) {
	e.gate.Reset()

	var ids []string
	for page := 1; ; page++ {
		if err := e.gate.Wait(ctx); err != nil {
			return nil, err
		}

		params := map[string]any{
			"inventory_id": inventoryParam(inventoryID),
			"page":         page,
			"filter_limit": e.listPageSize,
		}
		data, err := e.client.Call(ctx, "getInventoryProductsList", params)
		if err != nil {
			e.snap.SetConnectionStatus(snapshot.Failed(err.Error()))
			return nil, err
		}
		pageIDs, err := baselinker.ParseProductIDPage(data)
		if err != nil {
			e.snap.SetConnectionStatus(snapshot.Failed(err.Error()))
			return nil, err
		}

		ids = append(ids, pageIDs...)
		e.logger.Debug("Product id page listed",
			zap.Int("page", page),
			zap.Int("ids", len(pageIDs)),
			zap.Int("total", len(ids)))

		if len(pageIDs) < e.listPageSize {
			return ids, nil
		}
	}
}

// fetchDetails enriches the listed ids batch by batch. Failed batches are
// logged, counted and skipped; the pipeline always advances.
func (e *InventorySyncEngine) fetchDetails(ctx context.Context, inventoryID string, ids []string) []models.InventoryProduct {
	batches := partition(ids, e.detailBatchSize)
	e.snap.SetProductProgress(0)

	var products []models.InventoryProduct
	for i, batch := range batches {
		if err := e.gate.Wait(ctx); err != nil {
			e.logger.Warn("Detail fetch interrupted", zap.Error(err))
			break
		}

		params := map[string]any{
			"inventory_id": inventoryParam(inventoryID),
			"products":     batch,
		}
		data, err := e.client.Call(ctx, "getInventoryProductsData", params)
		if err != nil {
			util.InventoryBatchesFailed.Inc()
			e.logger.Warn("Product detail batch failed, skipping",
				zap.Int("batch", i+1),
				zap.Int("batches", len(batches)),
				zap.Error(err))
			e.snap.SetProductProgress(float64(i+1) / float64(len(batches)))
			continue
		}
		batchProducts, err := baselinker.ParseProductDetails(data)
		if err != nil {
			util.InventoryBatchesFailed.Inc()
			e.logger.Warn("Product detail batch undecodable, skipping",
				zap.Int("batch", i+1),
				zap.Error(err))
			e.snap.SetProductProgress(float64(i+1) / float64(len(batches)))
			continue
		}

		products = append(products, batchProducts...)
		e.snap.SetProductProgress(float64(i+1) / float64(len(batches)))
	}
	return products
}

// inventoryParam sends numeric catalog ids as numbers, as the API expects.
func inventoryParam(id string) any {
	if n, err := strconv.Atoi(id); err == nil {
		return n
	}
	return id
}

func partition(ids []string, size int) [][]string {
	if size <= 0 || len(ids) == 0 {
		return nil
	}
	batches := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}
