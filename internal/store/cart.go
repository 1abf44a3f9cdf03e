package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/yalasurf/yalasurf/internal/model"
)

// CartStore persists the ordered cart line items. Every mutation writes
// the affected rows synchronously; position preserves insertion order.
type CartStore struct {
	db *sql.DB
}

func NewCartStore(db *sql.DB) *CartStore {
	return &CartStore{db: db}
}

func scanCartItem(scanner interface{ Scan(...any) error }) (*model.CartItem, error) {
	var (
		item     model.CartItem
		snapshot string
	)
	err := scanner.Scan(
		&item.ID, &item.Equipment.ID, &item.Equipment.Name, &item.Equipment.SalePrice,
		&item.Equipment.Stock, &item.Equipment.SurfClub, &item.Quantity,
		&snapshot, &item.Position, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Equipment.Snapshot = sanitizeJSON(snapshot)
	return &item, nil
}

const cartCols = `id, equipment_id, name, sale_price, stock, surf_club_id, quantity, snapshot_json, position, created_at`

// List returns all cart items in insertion order.
func (s *CartStore) List() ([]model.CartItem, error) {
	rows, err := s.db.Query(`SELECT ` + cartCols + ` FROM cart_items ORDER BY position ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	var items []model.CartItem
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// GetByEquipment returns the item holding the given equipment snapshot,
// or nil when the equipment is not in the cart.
func (s *CartStore) GetByEquipment(equipmentID int64) (*model.CartItem, error) {
	row := s.db.QueryRow(`SELECT `+cartCols+` FROM cart_items WHERE equipment_id = ?`, equipmentID)
	item, err := scanCartItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	return item, nil
}

// Insert appends a new line item after the current last position.
func (s *CartStore) Insert(eq model.Equipment, quantity int) (*model.CartItem, error) {
	snapshot := eq.Snapshot
	if len(snapshot) == 0 {
		snapshot = json.RawMessage(`{}`)
	}

	result, err := s.db.Exec(
		`INSERT INTO cart_items (equipment_id, name, sale_price, stock, surf_club_id, quantity, snapshot_json, position)
		 VALUES (?, ?, ?, ?, ?, ?, ?, COALESCE((SELECT MAX(position) + 1 FROM cart_items), 0))`,
		eq.ID, eq.Name, eq.SalePrice, eq.Stock, eq.SurfClub, quantity, string(snapshot),
	)
	if err != nil {
		return nil, fmt.Errorf("insert cart item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+cartCols+` FROM cart_items WHERE id = ?`, id)
	item, err := scanCartItem(row)
	if err != nil {
		return nil, fmt.Errorf("get inserted item: %w", err)
	}
	return item, nil
}

// SetQuantity updates the quantity for the given equipment id.
func (s *CartStore) SetQuantity(equipmentID int64, quantity int) error {
	_, err := s.db.Exec(`UPDATE cart_items SET quantity = ? WHERE equipment_id = ?`, quantity, equipmentID)
	if err != nil {
		return fmt.Errorf("set quantity: %w", err)
	}
	return nil
}

// Delete removes one line item by row id.
func (s *CartStore) Delete(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM cart_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	return nil
}

// Clear empties the cart.
func (s *CartStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM cart_items`); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
