package order

import "github.com/shopspring/decimal"

// PriceLookup resolves the current price of a dish by name.
// Satisfied by catalog.DayMenu.
type PriceLookup interface {
	Price(name string) (decimal.Decimal, bool)
}

// Line is the priced view of one cart line.
type Line struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
	// Missing marks a dish no longer on the menu; it is priced at zero.
	Missing bool
}

// Totals is the priced view of a whole order.
type Totals struct {
	Lines   []Line
	Total   decimal.Decimal
	Missing int
}

// ComputeTotal prices o against prices. It is recomputed on every call, so a
// menu price change shows up in every open order that references the dish.
func ComputeTotal(o Order, prices PriceLookup) Totals {
	t := Totals{Lines: make([]Line, 0, len(o.Items)), Total: decimal.Zero}
	for _, it := range o.Items {
		line := Line{Name: it.Name, Quantity: it.Quantity, UnitPrice: decimal.Zero, Total: decimal.Zero}
		var price decimal.Decimal
		ok := false
		if prices != nil {
			price, ok = prices.Price(it.Name)
		}
		if ok {
			line.UnitPrice = price
			line.Total = price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		} else {
			line.Missing = true
			t.Missing++
		}
		t.Total = t.Total.Add(line.Total)
		t.Lines = append(t.Lines, line)
	}
	return t
}
