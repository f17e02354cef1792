package baselinker

import (
	"encoding/json"

	"baselinker-sync/internal/models"
)

const statusSuccess = "SUCCESS"

type envelope struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

// checkEnvelope validates the common {status, error_message} wrapper.
func checkEnvelope(data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return &DecodeError{Err: err}
	}
	if env.Status != statusSuccess {
		msg := env.ErrorMessage
		if msg == "" {
			msg = "unknown error"
		}
		return &APIError{Message: msg}
	}
	return nil
}

// ParseOrders decodes a getOrders response. Records that cannot be decoded
// or carry no id are skipped.
func ParseOrders(data []byte) ([]models.Order, error) {
	if err := checkEnvelope(data); err != nil {
		return nil, err
	}
	var resp struct {
		Orders []json.RawMessage `json:"orders"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &DecodeError{Err: err}
	}
	orders := make([]models.Order, 0, len(resp.Orders))
	for _, raw := range resp.Orders {
		var o models.Order
		if err := json.Unmarshal(raw, &o); err != nil {
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// ParseInventories decodes a getInventories response.
func ParseInventories(data []byte) ([]models.Inventory, error) {
	if err := checkEnvelope(data); err != nil {
		return nil, err
	}
	var resp struct {
		Inventories []json.RawMessage `json:"inventories"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &DecodeError{Err: err}
	}
	inventories := make([]models.Inventory, 0, len(resp.Inventories))
	for _, raw := range resp.Inventories {
		var inv models.Inventory
		if err := json.Unmarshal(raw, &inv); err != nil || inv.ID == "" {
			continue
		}
		inventories = append(inventories, inv)
	}
	return inventories, nil
}

// ParseProductIDPage decodes one getInventoryProductsList page into the
// product ids it lists. The payload keys products by id.
func ParseProductIDPage(data []byte) ([]string, error) {
	if err := checkEnvelope(data); err != nil {
		return nil, err
	}
	var resp struct {
		Products map[string]json.RawMessage `json:"products"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &DecodeError{Err: err}
	}
	ids := make([]string, 0, len(resp.Products))
	for id := range resp.Products {
		ids = append(ids, id)
	}
	return ids, nil
}

// ParseProductDetails decodes a getInventoryProductsData response. The
// product id lives in the map key and is injected into each record;
// undecodable records are skipped.
func ParseProductDetails(data []byte) ([]models.InventoryProduct, error) {
	if err := checkEnvelope(data); err != nil {
		return nil, err
	}
	var resp struct {
		Products map[string]json.RawMessage `json:"products"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &DecodeError{Err: err}
	}
	products := make([]models.InventoryProduct, 0, len(resp.Products))
	for id, raw := range resp.Products {
		var p models.InventoryProduct
		if err := json.Unmarshal(raw, &p); err != nil {
			continue
		}
		p.ID = id
		products = append(products, p)
	}
	return products, nil
}

// ParseStatusList decodes a getOrderStatusList response into a catalog.
func ParseStatusList(data []byte) (models.StatusCatalog, error) {
	if err := checkEnvelope(data); err != nil {
		return nil, err
	}
	var resp struct {
		Statuses []json.RawMessage `json:"statuses"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &DecodeError{Err: err}
	}
	catalog := make(models.StatusCatalog, len(resp.Statuses))
	for _, raw := range resp.Statuses {
		var s models.OrderStatus
		if err := json.Unmarshal(raw, &s); err != nil || s.ID == "" {
			continue
		}
		catalog[s.ID] = s
	}
	return catalog, nil
}
