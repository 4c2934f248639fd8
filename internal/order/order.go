// Package order holds the per-table order store and the derived totals that
// price each cart against the live menu.
package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Errors returned by the order repository.
var (
	ErrTableRequired = errors.New("table is required")
	ErrDishRequired  = errors.New("dish name is required")
	ErrOrderNotFound = errors.New("order not found")
	ErrItemNotFound  = errors.New("dish is not in this order")
	ErrTableHasOrder = errors.New("table already has an order")
	ErrInvalidStatus = errors.New("invalid status")
	ErrInvalidField  = errors.New("invalid order field")
)

// TableOccupiedError refuses a table removal while the table's cart has items.
type TableOccupiedError struct {
	Table string
	Items int
}

func (e *TableOccupiedError) Error() string {
	return fmt.Sprintf("table %s has an order with %d item(s); clear it before removing the table", e.Table, e.Items)
}

// Item is one cart line. Quantity is always >= 1 and Name is unique per order.
type Item struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Order is the cart and status of one table. A zero ID marks an unsaved draft.
type Order struct {
	ID        uuid.UUID `json:"id"`
	Table     string    `json:"table"`
	Customer  string    `json:"customer"`
	Employee  string    `json:"employee"`
	Items     []Item    `json:"items"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes"`
	Day       string    `json:"day"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsDraft reports whether o has never been written to the store.
func (o Order) IsDraft() bool {
	return o.ID == uuid.Nil
}

// ItemCount returns the number of distinct lines in the cart.
func (o Order) ItemCount() int {
	return len(o.Items)
}

// Clone returns a deep copy so callers never share the store's item slices.
func (o Order) Clone() Order {
	o.Items = append([]Item{}, o.Items...)
	return o
}

func (o Order) indexOf(dish string) int {
	for i, it := range o.Items {
		if it.Name == dish {
			return i
		}
	}
	return -1
}
