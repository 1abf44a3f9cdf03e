// Package cart implements the client-local pending order: an ordered
// list of equipment snapshots persisted durably on every mutation and
// converted to an order request at checkout.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/yalasurf/yalasurf/internal/api"
	"github.com/yalasurf/yalasurf/internal/model"
	"github.com/yalasurf/yalasurf/internal/store"
)

var (
	// ErrEmptyCart rejects checkout before any request is sent.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrMixedClubs rejects equipment from a second surf club: an order
	// is constrained to a single club.
	ErrMixedClubs = errors.New("cart items must belong to a single surf club")

	// ErrInvalidQuantity rejects add requests for zero or negative amounts.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrOutOfStock rejects adding equipment whose snapshot has no stock.
	ErrOutOfStock = errors.New("equipment is out of stock")
)

// Service applies cart rules on top of the durable CartStore.
type Service struct {
	store  *store.CartStore
	api    *api.Client
	logger *slog.Logger
}

func NewService(st *store.CartStore, client *api.Client, logger *slog.Logger) *Service {
	return &Service{store: st, api: client, logger: logger}
}

// Items returns the cart in insertion order (never nil).
func (s *Service) Items() ([]model.CartItem, error) {
	items, err := s.store.List()
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.CartItem{}
	}
	return items, nil
}

// Add puts equipment in the cart. An existing line for the same
// equipment id has its quantity increased, capped at the stock captured
// on the snapshot; a new line is appended otherwise, capped the same
// way. Equipment from a different club than the cart's is rejected.
func (s *Service) Add(eq model.Equipment, quantity int) (*model.CartItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if eq.Stock < 1 {
		return nil, ErrOutOfStock
	}

	items, err := s.store.List()
	if err != nil {
		return nil, err
	}
	if len(items) > 0 && items[0].Equipment.SurfClub != eq.SurfClub {
		return nil, fmt.Errorf("cart belongs to club %d: %w", items[0].Equipment.SurfClub, ErrMixedClubs)
	}

	existing, err := s.store.GetByEquipment(eq.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		merged := existing.Quantity + quantity
		if merged > existing.Equipment.Stock {
			merged = existing.Equipment.Stock
		}
		if err := s.store.SetQuantity(eq.ID, merged); err != nil {
			return nil, err
		}
		return s.store.GetByEquipment(eq.ID)
	}

	if quantity > eq.Stock {
		quantity = eq.Stock
	}
	return s.store.Insert(eq, quantity)
}

// Remove deletes the item at the given position. An out-of-range index
// is a silent no-op.
func (s *Service) Remove(index int) error {
	items, err := s.store.List()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(items) {
		return nil
	}
	return s.store.Delete(items[index].ID)
}

// SetQuantity sets a line's quantity directly. Values <= 0 are ignored.
// The stock cap is deliberately not re-applied here; Add is the only
// capped path, matching the shipped behavior.
func (s *Service) SetQuantity(equipmentID int64, quantity int) error {
	if quantity <= 0 {
		return nil
	}
	return s.store.SetQuantity(equipmentID, quantity)
}

// Total is the cart total at snapshot prices, rounded to 2 decimals.
func (s *Service) Total() (float64, error) {
	items, err := s.store.List()
	if err != nil {
		return 0, err
	}
	var total float64
	for _, it := range items {
		total += it.Subtotal()
	}
	return math.Round(total*100) / 100, nil
}

// Count is the total quantity across all lines (the header badge).
func (s *Service) Count() (int, error) {
	items, err := s.store.List()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, it := range items {
		count += it.Quantity
	}
	return count, nil
}

// Checkout converts the cart into an order for the first item's club.
// An empty cart returns ErrEmptyCart without touching the network. On
// success the cart is cleared; on failure it is left untouched.
func (s *Service) Checkout(ctx context.Context) (json.RawMessage, error) {
	items, err := s.store.List()
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	order := api.OrderRequest{
		SurfClub: items[0].Equipment.SurfClub,
		Items:    make([]api.OrderItem, 0, len(items)),
	}
	for _, it := range items {
		order.Items = append(order.Items, api.OrderItem{
			Equipment: it.Equipment.ID,
			Quantity:  it.Quantity,
		})
	}

	resp, err := s.api.AddOrder(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}

	if err := s.store.Clear(); err != nil {
		// The order went through; an unclearable cart is a local defect
		// worth logging, not a failed checkout.
		s.logger.Error("clear cart after order", "error", err)
	}
	return resp, nil
}
