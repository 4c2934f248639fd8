package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/restodash/api/internal/catalog"
	"github.com/restodash/api/internal/enum"
	"github.com/restodash/api/internal/order"
	"github.com/shopspring/decimal"
)

func fixtureMenu() catalog.Menu {
	return catalog.Menu{
		enum.DayLunes: {
			{Name: "Ceviche", Price: decimal.NewFromInt(9), Active: true},
		},
		enum.DayMartes: {
			{Name: "Ceviche", Price: decimal.NewFromInt(8), Active: true},
			{Name: "Lomo saltado", Price: decimal.RequireFromString("10.50"), Active: true},
		},
	}
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func fixtureOrders() []order.Order {
	mk := func(table, day, status, employee, created string, items ...order.Item) order.Order {
		return order.Order{
			ID: uuid.New(), Table: table, Day: day, Status: status,
			Employee: employee, Items: items, CreatedAt: at(created),
		}
	}
	return []order.Order{
		mk("1", enum.DayLunes, enum.OrderStatusPaid, "Juan Pérez", "2025-07-07T13:10:00Z",
			order.Item{Name: "Ceviche", Quantity: 2}),
		mk("2", enum.DayMartes, enum.OrderStatusPaid, "Juan Pérez", "2025-07-08T13:40:00Z",
			order.Item{Name: "Ceviche", Quantity: 1}, order.Item{Name: "Lomo saltado", Quantity: 2}),
		mk("1", enum.DayMartes, enum.OrderStatusCancelled, "Ana Gómez", "2025-07-08T20:05:00Z",
			order.Item{Name: "Lomo saltado", Quantity: 1}),
		mk("3", "", enum.OrderStatusServed, "", "2025-08-01T13:00:00Z",
			order.Item{Name: "Ceviche", Quantity: 1}, order.Item{Name: "Pisco sour", Quantity: 1}),
	}
}

func TestBuild_Totals(t *testing.T) {
	s := Build(fixtureOrders(), fixtureMenu(), Filter{DefaultDay: enum.DayMartes, Location: time.UTC})

	if s.Orders != 4 {
		t.Fatalf("orders = %d, want 4", s.Orders)
	}
	// 18 (lunes) + 29 (martes) + 0 (cancelled) + 8 (default martes, pisco missing)
	if want := decimal.NewFromInt(55); !s.Revenue.Equal(want) {
		t.Errorf("revenue = %s, want %s", s.Revenue, want)
	}
	if s.Status.Cancelled != 1 || s.Status.Completed != 3 {
		t.Errorf("status breakdown = %+v", s.Status)
	}
	if s.Status.ByStatus[enum.OrderStatusPaid] != 2 {
		t.Errorf("paid count = %d", s.Status.ByStatus[enum.OrderStatusPaid])
	}
}

func TestBuild_SalesByPeriod(t *testing.T) {
	s := Build(fixtureOrders(), fixtureMenu(), Filter{DefaultDay: enum.DayMartes, Location: time.UTC})
	want := []struct {
		period string
		orders int
		total  int64
	}{
		{"2025-07-07", 1, 18},
		{"2025-07-08", 2, 29},
		{"2025-08-01", 1, 8},
	}
	if len(s.Sales) != len(want) {
		t.Fatalf("sales = %+v", s.Sales)
	}
	for i, w := range want {
		got := s.Sales[i]
		if got.Period != w.period || got.Orders != w.orders || !got.Total.Equal(decimal.NewFromInt(w.total)) {
			t.Errorf("sales[%d] = %+v, want %+v", i, got, w)
		}
	}

	monthly := Build(fixtureOrders(), fixtureMenu(), Filter{Period: enum.PeriodMonth, DefaultDay: enum.DayMartes, Location: time.UTC})
	if len(monthly.Sales) != 2 || monthly.Sales[0].Period != "2025-07" || monthly.Sales[0].Orders != 3 {
		t.Fatalf("monthly sales = %+v", monthly.Sales)
	}
}

func TestBuild_Rankings(t *testing.T) {
	s := Build(fixtureOrders(), fixtureMenu(), Filter{DefaultDay: enum.DayMartes, Location: time.UTC})

	if s.TopDishes[0] != (Count{Name: "Ceviche", Count: 4}) || s.TopDishes[1] != (Count{Name: "Lomo saltado", Count: 3}) {
		t.Errorf("top dishes = %+v", s.TopDishes)
	}
	if s.Tables[0] != (Count{Name: "1", Count: 2}) {
		t.Errorf("tables = %+v", s.Tables)
	}
	if s.PeakHours[0] != (Count{Name: "13:00", Count: 3}) {
		t.Errorf("peak hours = %+v", s.PeakHours)
	}

	if len(s.Employees) != 2 {
		t.Fatalf("employees = %+v", s.Employees)
	}
	if s.Employees[0].Name != "Juan Pérez" || !s.Employees[0].Total.Equal(decimal.NewFromInt(47)) {
		t.Errorf("top employee = %+v", s.Employees[0])
	}
	if s.Employees[1].Name != "Ana Gómez" || !s.Employees[1].Total.IsZero() {
		t.Errorf("cancelled-only employee = %+v", s.Employees[1])
	}
}

func TestBuild_Filters(t *testing.T) {
	testCases := []struct {
		name   string
		filter Filter
		want   int
	}{
		{name: "table", filter: Filter{Table: "1"}, want: 2},
		{name: "dish", filter: Filter{Dish: "Lomo saltado"}, want: 2},
		{name: "status", filter: Filter{Status: enum.OrderStatusCancelled}, want: 1},
		{name: "employee case-insensitive", filter: Filter{Employee: "juan pérez"}, want: 2},
		{name: "from", filter: Filter{From: at("2025-07-08T00:00:00Z")}, want: 3},
		{name: "to exclusive", filter: Filter{To: at("2025-07-08T13:40:00Z")}, want: 1},
		{name: "range", filter: Filter{From: at("2025-07-08T00:00:00Z"), To: at("2025-07-09T00:00:00Z")}, want: 2},
		{name: "no match", filter: Filter{Table: "99"}, want: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.filter.Location = time.UTC
			s := Build(fixtureOrders(), fixtureMenu(), tc.filter)
			if s.Orders != tc.want {
				t.Errorf("orders = %d, want %d", s.Orders, tc.want)
			}
		})
	}
}

func TestBuild_Empty(t *testing.T) {
	s := Build(nil, nil, Filter{})
	if s.Orders != 0 || !s.Revenue.IsZero() {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.Sales == nil || s.TopDishes == nil || s.Employees == nil {
		t.Error("empty summaries should carry empty, non-nil slices")
	}
}
