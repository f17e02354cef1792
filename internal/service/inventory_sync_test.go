package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"baselinker-sync/internal/rategate"
	"baselinker-sync/internal/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inventoriesBody(ids ...string) string {
	entries := make([]string, len(ids))
	for i, id := range ids {
		entries[i] = fmt.Sprintf(`{"inventory_id":%s,"name":"Catalog %s"}`, id, id)
	}
	return `{"status":"SUCCESS","inventories":[` + strings.Join(entries, ",") + `]}`
}

func productListBody(ids ...string) string {
	entries := make([]string, len(ids))
	for i, id := range ids {
		entries[i] = fmt.Sprintf(`"%s":{}`, id)
	}
	return `{"status":"SUCCESS","products":{` + strings.Join(entries, ",") + `}}`
}

func productDetailsBody(ids ...string) string {
	entries := make([]string, len(ids))
	for i, id := range ids {
		entries[i] = fmt.Sprintf(
			`"%s":{"text_fields":{"name":"Product %s"},"sku":"SKU-%s","prices":{"1":"9.99"},"stock":{"bl_1":3}}`,
			id, id, id)
	}
	return `{"status":"SUCCESS","products":{` + strings.Join(entries, ",") + `}}`
}

func batchIDs(params map[string]any) []string {
	raw, _ := params["products"].([]any)
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		ids = append(ids, fmt.Sprint(v))
	}
	return ids
}

func newInventoryEngine(api *fakeAPI, snap *snapshot.Snapshot, listPageSize, detailBatchSize int) *InventorySyncEngine {
	return NewInventorySyncEngine(api.client(), snap, rategate.New(0), listPageSize, detailBatchSize)
}

func TestRefreshRunsFullPipeline(t *testing.T) {
	api := newFakeAPI(t, func(method string, params map[string]any) string {
		switch method {
		case "getInventories":
			return inventoriesBody("307")
		case "getInventoryProductsList":
			page, _ := params["page"].(float64)
			// page cap is 2 in this test: a full first page signals more
			if page == 1 {
				return productListBody("b", "a")
			}
			return productListBody("c")
		case "getInventoryProductsData":
			return productDetailsBody(batchIDs(params)...)
		default:
			t.Fatalf("unexpected method %s", method)
			return ""
		}
	})

	snap := snapshot.New()
	engine := newInventoryEngine(api, snap, 2, 2)

	require.NoError(t, engine.Refresh(context.Background()))

	products := snap.Products()
	require.Len(t, products, 3)
	// snapshot sorts by name
	assert.Equal(t, "Product a", products[0].Name)
	assert.Equal(t, "Product b", products[1].Name)
	assert.Equal(t, "Product c", products[2].Name)
	assert.Equal(t, "SKU-a", products[0].SKU)
	assert.Equal(t, 3, products[0].Quantity)

	assert.Equal(t, "307", engine.SelectedInventory())
	assert.Equal(t, 1.0, snap.ProductProgress())

	assert.Len(t, api.callsFor("getInventoryProductsList"), 2)
	assert.Len(t, api.callsFor("getInventoryProductsData"), 2, "3 ids in batches of 2")
}

func TestRefreshStopsListingOnShortPage(t *testing.T) {
	api := newFakeAPI(t, func(method string, params map[string]any) string {
		switch method {
		case "getInventories":
			return inventoriesBody("307")
		case "getInventoryProductsList":
			return productListBody("a") // below the cap of 2: last page
		case "getInventoryProductsData":
			return productDetailsBody(batchIDs(params)...)
		default:
			return ""
		}
	})

	snap := snapshot.New()
	engine := newInventoryEngine(api, snap, 2, 2)

	require.NoError(t, engine.Refresh(context.Background()))
	assert.Len(t, api.callsFor("getInventoryProductsList"), 1)
	assert.Len(t, snap.Products(), 1)
}

func TestRefreshSkipsFailedDetailBatch(t *testing.T) {
	api := newFakeAPI(t, func(method string, params map[string]any) string {
		switch method {
		case "getInventories":
			return inventoriesBody("307")
		case "getInventoryProductsList":
			page, _ := params["page"].(float64)
			if page == 1 {
				return productListBody("a", "b")
			}
			return productListBody("c")
		case "getInventoryProductsData":
			ids := batchIDs(params)
			for _, id := range ids {
				if id == "a" || id == "b" {
					return `{"status":"ERROR","error_message":"Storage timeout"}`
				}
			}
			return productDetailsBody(ids...)
		default:
			return ""
		}
	})

	snap := snapshot.New()
	engine := newInventoryEngine(api, snap, 2, 2)

	require.NoError(t, engine.Refresh(context.Background()), "a failed batch is not fatal")

	products := snap.Products()
	require.Len(t, products, 1)
	assert.Equal(t, "Product c", products[0].Name)
	assert.Equal(t, 1.0, snap.ProductProgress(), "progress completes past the failed batch")
}

func TestRefreshKeepsSelectedInventoryWhenPresent(t *testing.T) {
	api := newFakeAPI(t, func(method string, params map[string]any) string {
		switch method {
		case "getInventories":
			return inventoriesBody("307", "308")
		case "getInventoryProductsList":
			return productListBody()
		default:
			return ""
		}
	})

	engine := newInventoryEngine(api, snapshot.New(), 100, 100)
	engine.SelectInventory("308")

	require.NoError(t, engine.Refresh(context.Background()))
	assert.Equal(t, "308", engine.SelectedInventory())

	listCalls := api.callsFor("getInventoryProductsList")
	require.Len(t, listCalls, 1)
	assert.Equal(t, float64(308), listCalls[0].params["inventory_id"], "numeric catalog ids go out as numbers")
}

func TestRefreshFallsBackToFirstInventory(t *testing.T) {
	api := newFakeAPI(t, func(method string, params map[string]any) string {
		switch method {
		case "getInventories":
			return inventoriesBody("307")
		case "getInventoryProductsList":
			return productListBody()
		default:
			return ""
		}
	})

	engine := newInventoryEngine(api, snapshot.New(), 100, 100)
	engine.SelectInventory("999") // no longer exists remotely

	require.NoError(t, engine.Refresh(context.Background()))
	assert.Equal(t, "307", engine.SelectedInventory())
}

func TestRefreshFailsWithoutInventories(t *testing.T) {
	api := newFakeAPI(t, func(method string, params map[string]any) string {
		return `{"status":"SUCCESS","inventories":[]}`
	})

	snap := snapshot.New()
	engine := newInventoryEngine(api, snap, 100, 100)

	require.Error(t, engine.Refresh(context.Background()))
	assert.Equal(t, snapshot.StateFailed, snap.ConnectionStatus().State)
}

func TestRefreshRejectsConcurrentRuns(t *testing.T) {
	api := newFakeAPI(t, func(method string, params map[string]any) string {
		return inventoriesBody("307")
	})

	engine := newInventoryEngine(api, snapshot.New(), 100, 100)
	engine.refreshing.Store(true)

	assert.ErrorIs(t, engine.Refresh(context.Background()), ErrSyncInProgress)
	assert.True(t, engine.Busy())
}
