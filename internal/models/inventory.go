package models

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// LowStockThreshold is the quantity at or below which a product counts as
// low on stock.
const LowStockThreshold = 5

// Inventory is one BaseLinker catalog (warehouse). The inventory engine
// operates on exactly one selected catalog at a time.
type Inventory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type inventoryWire struct {
	ID   json.RawMessage `json:"inventory_id"`
	Name json.RawMessage `json:"name"`
}

func (inv *Inventory) UnmarshalJSON(data []byte) error {
	var w inventoryWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	inv.ID = flexString(w.ID)
	inv.Name = flexString(w.Name)
	return nil
}

// InventoryProduct is one warehouse product enriched with detail data
// (price, stock, image). The ID comes from the response map key and is
// filled in by the parser.
type InventoryProduct struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	SKU            string          `json:"sku"`
	EAN            string          `json:"ean,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity"`
	ImageURL       string          `json:"image_url,omitempty"`
	LastUpdateDate *time.Time      `json:"last_update_date,omitempty"`
}

// IsLowStock reports whether the product is at or below the low-stock
// threshold.
func (p InventoryProduct) IsLowStock() bool {
	return p.Quantity <= LowStockThreshold
}

type productWire struct {
	SKU        json.RawMessage `json:"sku"`
	EAN        json.RawMessage `json:"ean"`
	TextFields struct {
		Name json.RawMessage `json:"name"`
	} `json:"text_fields"`
	Prices      map[string]json.RawMessage `json:"prices"`
	Stock       map[string]json.RawMessage `json:"stock"`
	Images      map[string]json.RawMessage `json:"images"`
	DateUpdated json.RawMessage            `json:"date_updated"`
}

// UnmarshalJSON decodes a product detail record. The price is taken from
// the first price group by sorted key, the quantity is summed over all
// stock locations, and the image prefers key "1" of the images object.
func (p *InventoryProduct) UnmarshalJSON(data []byte) error {
	var w productWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	p.Name = flexString(w.TextFields.Name)
	p.SKU = flexString(w.SKU)
	p.EAN = flexString(w.EAN)

	if raw, ok := firstByKey(w.Prices); ok {
		p.Price = flexDecimal(raw)
	} else {
		p.Price = decimal.Zero
	}

	p.Quantity = 0
	for _, raw := range w.Stock {
		p.Quantity += flexInt(raw, 0)
	}

	if raw, ok := w.Images["1"]; ok {
		p.ImageURL = flexString(raw)
	} else if raw, ok := firstByKey(w.Images); ok {
		p.ImageURL = flexString(raw)
	}

	if t := flexUnix(w.DateUpdated, time.Time{}); !t.IsZero() {
		p.LastUpdateDate = &t
	} else {
		p.LastUpdateDate = nil
	}
	return nil
}

// firstByKey returns the value under the smallest key so decoding stays
// deterministic across runs.
func firstByKey(m map[string]json.RawMessage) (json.RawMessage, bool) {
	if len(m) == 0 {
		return nil, false
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return m[keys[0]], true
}
