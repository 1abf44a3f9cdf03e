package model

import (
	"encoding/json"
	"time"
)

// Equipment is a snapshot of catalog data captured at add-to-cart time,
// not a live reference. Stock carries the backend's "quantity" field
// (units available at the club when the snapshot was taken).
type Equipment struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	SalePrice float64         `json:"sale_price"`
	Stock     int             `json:"quantity"`
	SurfClub  int64           `json:"surf_club"`
	Snapshot  json.RawMessage `json:"snapshot,omitempty"`
}

// CartItem is one line of the client-local pending order.
type CartItem struct {
	ID        int64     `json:"id"`
	Equipment Equipment `json:"equipment"`
	Quantity  int       `json:"quantity"`
	Position  int       `json:"-"`
	CreatedAt time.Time `json:"-"`
}

// Subtotal is the line total at the snapshot's unit price.
func (i CartItem) Subtotal() float64 {
	return float64(i.Quantity) * i.Equipment.SalePrice
}
