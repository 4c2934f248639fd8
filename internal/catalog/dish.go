package catalog

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// HistoryEntry records a change to a dish, shown in the menu editor.
type HistoryEntry struct {
	Date   string `json:"date"`
	Action string `json:"action"`
}

// Dish is one orderable item on a day's menu. Name is unique within a day.
type Dish struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	Photo       string          `json:"photo,omitempty"`
	Active      bool            `json:"active"`
	Special     bool            `json:"special"`
	History     []HistoryEntry  `json:"history,omitempty"`
}

// UnmarshalJSON accepts prices as numbers, numeric strings, or the empty
// string the menu form used to save for a blank price (read as zero).
func (d *Dish) UnmarshalJSON(data []byte) error {
	type plain Dish
	var raw struct {
		plain
		Price json.RawMessage `json:"price"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = Dish(raw.plain)
	d.Price = parsePrice(raw.Price)
	return nil
}

func parsePrice(raw json.RawMessage) decimal.Decimal {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return decimal.Zero
	}
	p, err := decimal.NewFromString(s)
	if err != nil || p.IsNegative() {
		return decimal.Zero
	}
	return p
}

// DayMenu is the ordered list of dishes for one weekday.
type DayMenu []Dish

// Find returns the dish called name.
func (m DayMenu) Find(name string) (Dish, bool) {
	for _, d := range m {
		if d.Name == name {
			return d, true
		}
	}
	return Dish{}, false
}

// Price resolves the current price of a dish; totals join against this.
func (m DayMenu) Price(name string) (decimal.Decimal, bool) {
	d, ok := m.Find(name)
	if !ok {
		return decimal.Zero, false
	}
	return d.Price, true
}

// Active returns the orderable dishes, keeping menu order.
func (m DayMenu) Active() DayMenu {
	out := DayMenu{}
	for _, d := range m {
		if d.Active {
			out = append(out, d)
		}
	}
	return out
}

func (m DayMenu) clone() DayMenu {
	out := make(DayMenu, len(m))
	for i, d := range m {
		d.History = append([]HistoryEntry(nil), d.History...)
		out[i] = d
	}
	return out
}

// Menu maps weekday keys to that day's dishes.
type Menu map[string]DayMenu

func (m Menu) clone() Menu {
	out := make(Menu, len(m))
	for day, dishes := range m {
		out[day] = dishes.clone()
	}
	return out
}
