// Package report aggregates the order collection for the reports view. It is
// read-only: nothing here writes to a store.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/restodash/api/internal/catalog"
	"github.com/restodash/api/internal/enum"
	"github.com/restodash/api/internal/order"
	"github.com/shopspring/decimal"
)

// Filter narrows the orders a Summary covers. Zero values match everything.
type Filter struct {
	From     time.Time // inclusive
	To       time.Time // exclusive
	Table    string
	Dish     string
	Status   string
	Employee string
	// Period groups sales by enum.PeriodDay (default) or enum.PeriodMonth.
	Period string
	// DefaultDay prices orders that never recorded a menu day.
	DefaultDay string
	// Location is used for period keys and peak hours; nil means time.Local.
	Location *time.Location
}

// PeriodSales is the revenue of one day or month.
type PeriodSales struct {
	Period string
	Orders int
	Total  decimal.Decimal
}

// Count is a ranked tally.
type Count struct {
	Name  string
	Count int
}

// Revenue is a ranked money total.
type Revenue struct {
	Name  string
	Total decimal.Decimal
}

// StatusBreakdown splits the filtered orders into cancelled and the rest.
type StatusBreakdown struct {
	Cancelled int
	Completed int
	ByStatus  map[string]int
}

// Summary is every aggregate of the reports view.
type Summary struct {
	Orders    int
	Revenue   decimal.Decimal
	Sales     []PeriodSales
	TopDishes []Count
	Tables    []Count
	Employees []Revenue
	Status    StatusBreakdown
	PeakHours []Count
}

// Build aggregates orders. Each order is priced against its own day's menu;
// cancelled orders are counted but add no revenue.
func Build(orders []order.Order, menu catalog.Menu, f Filter) Summary {
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	layout := "2006-01-02"
	if f.Period == enum.PeriodMonth {
		layout = "2006-01"
	}

	s := Summary{
		Revenue: decimal.Zero,
		Status:  StatusBreakdown{ByStatus: map[string]int{}},
	}
	sales := map[string]*PeriodSales{}
	dishes := map[string]int{}
	tableUse := map[string]int{}
	employees := map[string]decimal.Decimal{}
	hours := map[string]int{}

	for _, o := range orders {
		if !f.matches(o) {
			continue
		}
		s.Orders++

		total := decimal.Zero
		if o.Status != enum.OrderStatusCancelled {
			day := o.Day
			if day == "" {
				day = f.DefaultDay
			}
			total = order.ComputeTotal(o, menu[day]).Total
		}
		s.Revenue = s.Revenue.Add(total)

		local := o.CreatedAt.In(loc)
		key := local.Format(layout)
		ps, ok := sales[key]
		if !ok {
			ps = &PeriodSales{Period: key, Total: decimal.Zero}
			sales[key] = ps
		}
		ps.Orders++
		ps.Total = ps.Total.Add(total)

		for _, it := range o.Items {
			dishes[it.Name] += it.Quantity
		}
		tableUse[o.Table]++
		if o.Employee != "" {
			employees[o.Employee] = employees[o.Employee].Add(total)
		}
		hours[local.Format("15")+":00"]++

		s.Status.ByStatus[o.Status]++
		if o.Status == enum.OrderStatusCancelled {
			s.Status.Cancelled++
		}
	}
	s.Status.Completed = s.Orders - s.Status.Cancelled

	s.Sales = make([]PeriodSales, 0, len(sales))
	for _, ps := range sales {
		s.Sales = append(s.Sales, *ps)
	}
	sort.Slice(s.Sales, func(i, j int) bool { return s.Sales[i].Period < s.Sales[j].Period })

	s.TopDishes = ranked(dishes)
	s.Tables = ranked(tableUse)
	s.PeakHours = ranked(hours)

	s.Employees = make([]Revenue, 0, len(employees))
	for name, total := range employees {
		s.Employees = append(s.Employees, Revenue{Name: name, Total: total})
	}
	sort.Slice(s.Employees, func(i, j int) bool {
		if c := s.Employees[i].Total.Cmp(s.Employees[j].Total); c != 0 {
			return c > 0
		}
		return s.Employees[i].Name < s.Employees[j].Name
	})
	return s
}

func (f Filter) matches(o order.Order) bool {
	if !f.From.IsZero() && o.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !o.CreatedAt.Before(f.To) {
		return false
	}
	if f.Table != "" && o.Table != f.Table {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.Employee != "" && !strings.EqualFold(o.Employee, f.Employee) {
		return false
	}
	if f.Dish != "" {
		for _, it := range o.Items {
			if it.Name == f.Dish {
				return true
			}
		}
		return false
	}
	return true
}

// ranked sorts a tally by count, descending, then by name.
func ranked(tally map[string]int) []Count {
	out := make([]Count, 0, len(tally))
	for name, n := range tally {
		out = append(out, Count{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
