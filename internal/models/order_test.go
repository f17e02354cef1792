package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderUnmarshalStringAndNumberEncodings(t *testing.T) {
	// The API sends the same fields as strings in some responses and as
	// numbers in others. Both must decode identically.
	asNumbers := `{
		"order_id": 1001,
		"order_number": 7788,
		"date_add": 1714500000,
		"date_confirmed": 1714503600,
		"order_status_id": 5,
		"price_total": 149.99,
		"currency": "EUR",
		"delivery_fullname": "Jan Kowalski",
		"email": "jan@example.com",
		"products": [
			{"product_id": 42, "name": "Widget", "sku": "W-42", "quantity": 2, "price_brutto": 74.995}
		]
	}`
	asStrings := `{
		"order_id": "1001",
		"order_number": "7788",
		"date_add": "1714500000",
		"date_confirmed": "1714503600",
		"order_status_id": "5",
		"price_total": "149.99",
		"currency": "EUR",
		"delivery_fullname": "Jan Kowalski",
		"email": "jan@example.com",
		"products": [
			{"product_id": "42", "name": "Widget", "sku": "W-42", "quantity": "2", "price_brutto": "74.995"}
		]
	}`

	var a, b Order
	require.NoError(t, json.Unmarshal([]byte(asNumbers), &a))
	require.NoError(t, json.Unmarshal([]byte(asStrings), &b))

	assert.Equal(t, "1001", a.ID)
	assert.Equal(t, "7788", a.OrderNumber)
	assert.Equal(t, "5", a.StatusID)
	assert.Equal(t, "EUR", a.Currency)
	assert.Equal(t, time.Unix(1714503600, 0), a.DateConfirmed)
	assert.True(t, a.TotalAmount.Equal(b.TotalAmount))
	require.Len(t, a.Items, 1)
	assert.Equal(t, "42", a.Items[0].ID)
	assert.Equal(t, 2, a.Items[0].Quantity)

	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, a.OrderNumber, b.OrderNumber)
	assert.Equal(t, a.StatusID, b.StatusID)
	assert.Equal(t, a.DateConfirmed, b.DateConfirmed)
}

func TestOrderUnmarshalMissingIDRejected(t *testing.T) {
	var o Order
	err := json.Unmarshal([]byte(`{"order_number": "X"}`), &o)
	assert.ErrorIs(t, err, ErrMissingOrderID)
}

func TestOrderUnmarshalDefaults(t *testing.T) {
	var o Order
	require.NoError(t, json.Unmarshal([]byte(`{"order_id": "55"}`), &o))

	assert.Equal(t, "BL-55", o.OrderNumber)
	assert.Equal(t, "0", o.StatusID)
	assert.Equal(t, "PLN", o.Currency)
	assert.False(t, o.DateCreated.IsZero())
	assert.False(t, o.DateConfirmed.IsZero())
	assert.True(t, o.TotalAmount.IsZero())
}

func TestOrderUnmarshalRecomputesZeroTotal(t *testing.T) {
	raw := `{
		"order_id": "9",
		"price_total": 0,
		"products": [
			{"product_id": "a", "quantity": 2, "price_brutto": "10.50"},
			{"product_id": "b", "quantity": 1, "price_brutto": "4.00"}
		]
	}`
	var o Order
	require.NoError(t, json.Unmarshal([]byte(raw), &o))
	assert.Equal(t, "25", o.TotalAmount.String())
}

func TestOrderUnmarshalKeepsNonZeroTotal(t *testing.T) {
	raw := `{
		"order_id": "9",
		"price_total": "99.00",
		"products": [{"product_id": "a", "quantity": 1, "price_brutto": "10.00"}]
	}`
	var o Order
	require.NoError(t, json.Unmarshal([]byte(raw), &o))
	assert.Equal(t, "99", o.TotalAmount.String())
}

func TestOrderItemUnmarshalDefaults(t *testing.T) {
	var item OrderItem
	require.NoError(t, json.Unmarshal([]byte(`{"name": "Bare"}`), &item))

	assert.NotEmpty(t, item.ID, "missing product id gets a generated one")
	assert.Equal(t, 1, item.Quantity)
	assert.True(t, item.UnitPrice.IsZero())

	require.NoError(t, json.Unmarshal([]byte(`{"product_id": "x", "quantity": -3}`), &item))
	assert.Equal(t, 1, item.Quantity, "negative quantity normalizes to 1")

	require.NoError(t, json.Unmarshal([]byte(`{"product_id": "x", "quantity": "garbage"}`), &item))
	assert.Equal(t, 1, item.Quantity, "malformed quantity defaults to 1")
}

func TestInventoryProductUnmarshal(t *testing.T) {
	raw := `{
		"sku": "SKU-1",
		"ean": "590123",
		"text_fields": {"name": "Mug"},
		"prices": {"3": 12.50, "1": "9.99"},
		"stock": {"bl_1": 3, "bl_2": "4"},
		"images": {"1": "https://img.example/main.jpg", "2": "https://img.example/alt.jpg"},
		"date_updated": "1714000000"
	}`
	var p InventoryProduct
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, "Mug", p.Name)
	assert.Equal(t, "SKU-1", p.SKU)
	assert.Equal(t, "9.99", p.Price.String(), "first price group by sorted key")
	assert.Equal(t, 7, p.Quantity, "quantity sums all stock locations")
	assert.Equal(t, "https://img.example/main.jpg", p.ImageURL)
	require.NotNil(t, p.LastUpdateDate)
	assert.Equal(t, time.Unix(1714000000, 0), *p.LastUpdateDate)
}

func TestInventoryProductUnmarshalEmpty(t *testing.T) {
	var p InventoryProduct
	require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
	assert.True(t, p.Price.IsZero())
	assert.Equal(t, 0, p.Quantity)
	assert.Nil(t, p.LastUpdateDate)
	assert.True(t, p.IsLowStock())
}

func TestOrderStatusUnmarshal(t *testing.T) {
	raw := `{"id": 5, "name": "Shipped", "name_for_customer": "On its way", "color": "#00ff00"}`
	var s OrderStatus
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	assert.Equal(t, "5", s.ID)
	assert.Equal(t, "Shipped", s.Name)
	assert.Equal(t, "On its way", s.CustomerName)
	assert.Equal(t, "#00ff00", s.Color)
}
