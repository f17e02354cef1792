package models

import "encoding/json"

// StatusIDNew is the BaseLinker status id a freshly placed order carries.
const StatusIDNew = "1"

// OrderStatus is one entry of the remote status catalog.
type OrderStatus struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CustomerName string `json:"customer_name"`
	Color        string `json:"color"`
}

type orderStatusWire struct {
	ID           json.RawMessage `json:"id"`
	Name         json.RawMessage `json:"name"`
	CustomerName json.RawMessage `json:"name_for_customer"`
	Color        json.RawMessage `json:"color"`
}

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var w orderStatusWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	s.ID = flexString(w.ID)
	s.Name = flexString(w.Name)
	s.CustomerName = flexString(w.CustomerName)
	s.Color = flexString(w.Color)
	return nil
}

// StatusCatalog maps a status id to its display metadata. It is fetched
// once per session and back-filled onto orders loaded before it arrived.
type StatusCatalog map[string]OrderStatus
