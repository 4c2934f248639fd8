package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/restodash/api/internal/catalog"
	"github.com/restodash/api/internal/enum"
	"github.com/restodash/api/internal/order"
	"github.com/restodash/api/internal/service"
	"github.com/restodash/api/internal/storage"
	"github.com/restodash/api/internal/tables"
	"github.com/shopspring/decimal"
)

// failingKV reads from an embedded memory store and fails every write.
type failingKV struct {
	*storage.Memory
}

func (failingKV) Put(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func testMenu() catalog.Menu {
	m := catalog.Menu{}
	for _, day := range enum.Days {
		m[day] = catalog.DayMenu{}
	}
	m[enum.DayMartes] = catalog.DayMenu{
		{ID: 1, Name: "Ceviche", Category: "Entrada", Price: decimal.NewFromInt(8), Active: true},
		{ID: 2, Name: "Ají de gallina", Category: "Plato principal", Price: decimal.RequireFromString("11.25"), Active: true},
		{ID: 3, Name: "Anticuchos", Category: "Entrada", Price: decimal.NewFromInt(6), Active: false},
	}
	return m
}

// newTestDashboard builds a Dashboard on martes over an in-memory store.
// Orders are written to ordersKV when it is non-nil.
func newTestDashboard(t *testing.T, ordersKV storage.KV) *service.Dashboard {
	t.Helper()
	ctx := context.Background()
	kv := storage.NewMemory()
	if err := storage.SaveJSON(ctx, kv, enum.SlotMenuByDay, testMenu()); err != nil {
		t.Fatalf("seed menu: %v", err)
	}
	if ordersKV == nil {
		ordersKV = kv
	}
	orders := order.NewRepository(ctx, order.NewSlotStore(ordersKV, enum.SlotOrders))
	menu := catalog.NewRepository(ctx, kv)
	set := tables.Load(ctx, kv, 8)
	return service.NewDashboard(orders, menu, set, nil, enum.DayMartes)
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decodeListResponse(t *testing.T, rr *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, want, rr.Body.String())
	}
}
