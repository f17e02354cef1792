package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrMissingOrderID marks an order record that cannot be identified.
// Such records are skipped at the parsing layer, never propagated.
var ErrMissingOrderID = errors.New("order record has no usable id")

// Customer holds the buyer details carried on an order.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Order is a confirmed BaseLinker order. Identity is the ID alone;
// the snapshot never holds two orders with the same ID.
type Order struct {
	ID            string          `json:"id"`
	OrderNumber   string          `json:"order_number"`
	DateCreated   time.Time       `json:"date_created"`
	DateConfirmed time.Time       `json:"date_confirmed"`
	StatusID      string          `json:"status_id"`
	StatusName    string          `json:"status_name,omitempty"`
	StatusColor   string          `json:"status_color,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Currency      string          `json:"currency"`
	Customer      Customer        `json:"customer"`
	Items         []OrderItem     `json:"items"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ImageURL  string          `json:"image_url,omitempty"`
}

type orderWire struct {
	ID            json.RawMessage   `json:"order_id"`
	OrderNumber   json.RawMessage   `json:"order_number"`
	DateCreated   json.RawMessage   `json:"date_add"`
	DateConfirmed json.RawMessage   `json:"date_confirmed"`
	StatusID      json.RawMessage   `json:"order_status_id"`
	TotalAmount   json.RawMessage   `json:"price_total"`
	Currency      json.RawMessage   `json:"currency"`
	CustomerName  json.RawMessage   `json:"delivery_fullname"`
	Email         json.RawMessage   `json:"email"`
	Products      []json.RawMessage `json:"products"`
}

// UnmarshalJSON decodes an order from the BaseLinker wire format. Every
// scalar tolerates string/number alternates; missing order numbers are
// synthesized from the id, and a missing or zero total is recomputed from
// the line items.
func (o *Order) UnmarshalJSON(data []byte) error {
	var w orderWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	o.ID = flexString(w.ID)
	if o.ID == "" {
		return ErrMissingOrderID
	}

	o.OrderNumber = flexString(w.OrderNumber)
	if o.OrderNumber == "" {
		o.OrderNumber = "BL-" + o.ID
	}

	now := time.Now()
	o.DateCreated = flexUnix(w.DateCreated, now)
	o.DateConfirmed = flexUnix(w.DateConfirmed, now)

	o.StatusID = flexString(w.StatusID)
	if o.StatusID == "" {
		o.StatusID = "0"
	}

	o.TotalAmount = flexDecimal(w.TotalAmount)

	o.Currency = flexString(w.Currency)
	if o.Currency == "" {
		o.Currency = "PLN"
	}

	o.Customer = Customer{
		Name:  flexString(w.CustomerName),
		Email: flexString(w.Email),
	}

	o.Items = o.Items[:0]
	for _, raw := range w.Products {
		var item OrderItem
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		o.Items = append(o.Items, item)
	}

	if o.TotalAmount.IsZero() {
		o.TotalAmount = itemsTotal(o.Items)
	}
	return nil
}

type orderItemWire struct {
	ID       json.RawMessage `json:"product_id"`
	Name     json.RawMessage `json:"name"`
	SKU      json.RawMessage `json:"sku"`
	Quantity json.RawMessage `json:"quantity"`
	Price    json.RawMessage `json:"price_brutto"`
	ImageURL json.RawMessage `json:"image_url"`
}

// UnmarshalJSON decodes an order line. Malformed quantities default to 1
// and malformed prices to 0 so one broken field never drops the line.
func (i *OrderItem) UnmarshalJSON(data []byte) error {
	var w orderItemWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	i.ID = flexString(w.ID)
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	i.Name = flexString(w.Name)
	i.SKU = flexString(w.SKU)
	i.Quantity = flexInt(w.Quantity, 1)
	if i.Quantity < 0 {
		i.Quantity = 1
	}
	i.UnitPrice = flexDecimal(w.Price)
	i.ImageURL = flexString(w.ImageURL)
	return nil
}

func itemsTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
