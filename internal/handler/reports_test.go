package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/restodash/api/internal/catalog"
	"github.com/restodash/api/internal/enum"
	"github.com/restodash/api/internal/handler"
	"github.com/restodash/api/internal/order"
)

// --- Mock ReportSource ---

type mockReportSource struct {
	ordersFn func() ([]order.Order, catalog.Menu)
	day      string
}

func (m *mockReportSource) Orders() ([]order.Order, catalog.Menu) {
	return m.ordersFn()
}

func (m *mockReportSource) SelectedDay() string {
	return m.day
}

func reportFixture() ([]order.Order, catalog.Menu) {
	at := func(day, hour int) time.Time { return time.Date(2025, 7, day, hour, 15, 0, 0, time.UTC) }
	mk := func(table, employee, status string, created time.Time, items ...order.Item) order.Order {
		return order.Order{
			ID: uuid.New(), Table: table, Employee: employee, Status: status,
			Day: enum.DayMartes, CreatedAt: created, Items: items,
		}
	}
	orders := []order.Order{
		mk("1", "Juan", enum.OrderStatusPaid, at(8, 13), order.Item{Name: "Ceviche", Quantity: 2}),
		mk("2", "Ana", enum.OrderStatusServed, at(8, 20), order.Item{Name: "Ají de gallina", Quantity: 1}),
		mk("1", "juan", enum.OrderStatusCancelled, at(15, 13), order.Item{Name: "Ceviche", Quantity: 5}),
	}
	return orders, testMenu()
}

func setupReportsRouter(src handler.ReportSource) *chi.Mux {
	h := handler.NewReportsHandler(src, time.UTC)
	r := chi.NewRouter()
	r.Route("/reports", h.RegisterRoutes)
	return r
}

func TestReportSummary(t *testing.T) {
	router := setupReportsRouter(&mockReportSource{ordersFn: reportFixture, day: enum.DayMartes})

	rr := doRequest(t, router, "GET", "/reports", nil)
	expectStatus(t, rr, http.StatusOK)
	resp := decodeResponse(t, rr)

	if resp["orders"] != float64(3) {
		t.Errorf("orders: got %v, want 3", resp["orders"])
	}
	// 2 x 8.00 + 11.25; the cancelled order adds nothing.
	if resp["revenue"] != "27.25" {
		t.Errorf("revenue: got %v, want 27.25", resp["revenue"])
	}

	top := resp["topDishes"].([]interface{})[0].(map[string]interface{})
	if top["name"] != "Ceviche" || top["count"] != float64(7) {
		t.Errorf("top dish: got %v", top)
	}

	status := resp["status"].(map[string]interface{})
	if status["cancelled"] != float64(1) || status["completed"] != float64(2) {
		t.Errorf("status: got %v", status)
	}

	peak := resp["peakHours"].([]interface{})[0].(map[string]interface{})
	if peak["name"] != "13:00" || peak["count"] != float64(2) {
		t.Errorf("peak hour: got %v", peak)
	}
}

func TestReportFilters(t *testing.T) {
	testCases := []struct {
		name        string
		query       string
		wantOrders  float64
		wantRevenue string
	}{
		{name: "date range", query: "?start_date=2025-07-08&end_date=2025-07-08", wantOrders: 2, wantRevenue: "27.25"},
		{name: "open end", query: "?start_date=2025-07-09", wantOrders: 1, wantRevenue: "0.00"},
		{name: "table", query: "?table=2", wantOrders: 1, wantRevenue: "11.25"},
		{name: "employee ignores case", query: "?employee=JUAN", wantOrders: 2, wantRevenue: "16.00"},
		{name: "status", query: "?status=paid", wantOrders: 1, wantRevenue: "16.00"},
		{name: "dish", query: "?dish=Aj%C3%AD+de+gallina", wantOrders: 1, wantRevenue: "11.25"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := setupReportsRouter(&mockReportSource{ordersFn: reportFixture, day: enum.DayMartes})
			rr := doRequest(t, router, "GET", "/reports"+tc.query, nil)
			expectStatus(t, rr, http.StatusOK)
			resp := decodeResponse(t, rr)
			if resp["orders"] != tc.wantOrders {
				t.Errorf("orders: got %v, want %v", resp["orders"], tc.wantOrders)
			}
			if resp["revenue"] != tc.wantRevenue {
				t.Errorf("revenue: got %v, want %s", resp["revenue"], tc.wantRevenue)
			}
		})
	}
}

func TestReportSales_ByMonth(t *testing.T) {
	router := setupReportsRouter(&mockReportSource{ordersFn: reportFixture, day: enum.DayMartes})

	rr := doRequest(t, router, "GET", "/reports/sales?period=month", nil)
	expectStatus(t, rr, http.StatusOK)
	list := decodeListResponse(t, rr)
	if len(list) != 1 {
		t.Fatalf("periods: got %d, want 1", len(list))
	}
	if list[0]["period"] != "2025-07" || list[0]["orders"] != float64(3) || list[0]["total"] != "27.25" {
		t.Errorf("period: got %v", list[0])
	}

	rr = doRequest(t, router, "GET", "/reports/sales", nil)
	if list := decodeListResponse(t, rr); len(list) != 2 || list[0]["period"] != "2025-07-08" {
		t.Errorf("daily periods: got %v", list)
	}
}

func TestReport_InvalidQuery(t *testing.T) {
	router := setupReportsRouter(&mockReportSource{ordersFn: reportFixture})

	for _, q := range []string{
		"?start_date=08-07-2025",
		"?end_date=tomorrow",
		"?start_date=2025-07-10&end_date=2025-07-01",
		"?period=week",
		"?status=pendiente",
	} {
		expectStatus(t, doRequest(t, router, "GET", "/reports"+q, nil), http.StatusBadRequest)
	}
}

func TestReport_Empty(t *testing.T) {
	router := setupReportsRouter(&mockReportSource{ordersFn: func() ([]order.Order, catalog.Menu) {
		return nil, catalog.Menu{}
	}})

	rr := doRequest(t, router, "GET", "/reports", nil)
	expectStatus(t, rr, http.StatusOK)
	resp := decodeResponse(t, rr)
	if resp["revenue"] != "0.00" {
		t.Errorf("revenue: got %v", resp["revenue"])
	}
	if sales, ok := resp["sales"].([]interface{}); !ok || len(sales) != 0 {
		t.Errorf("sales: got %v, want []", resp["sales"])
	}
}
