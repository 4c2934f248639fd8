package catalog

import (
	"github.com/restodash/api/internal/enum"
	"github.com/shopspring/decimal"
)

// DefaultMenu is loaded when the menu slot is missing or unreadable.
func DefaultMenu() Menu {
	m := Menu{}
	for _, day := range enum.Days {
		m[day] = DayMenu{}
	}
	m[enum.DayLunes] = DayMenu{{
		ID:          1,
		Name:        "Pollo a la brasa",
		Category:    "Plato principal",
		Subcategory: "Pollo",
		Price:       decimal.RequireFromString("12.50"),
		Description: "Pollo jugoso acompañado de papas y ensalada.",
		Active:      true,
		Special:     true,
		History: []HistoryEntry{
			{Date: "2025-07-01", Action: ActionCreated},
			{Date: "2025-07-10", Action: ActionUpdated},
		},
	}}
	m[enum.DayMartes] = DayMenu{{
		ID:          2,
		Name:        "Ceviche mixto",
		Category:    "Entrada",
		Subcategory: "Fría",
		Price:       decimal.RequireFromString("8.00"),
		Description: "Pescado y mariscos frescos en jugo de limón.",
		Active:      true,
		History:     []HistoryEntry{{Date: "2025-07-02", Action: ActionCreated}},
	}}
	return m
}
