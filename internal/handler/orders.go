package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/restodash/api/internal/enum"
	"github.com/restodash/api/internal/order"
	"github.com/restodash/api/internal/service"
)

// DashboardServicer defines the dashboard methods needed by table and order handlers.
// Satisfied by *service.Dashboard; narrow interface for testability.
type DashboardServicer interface {
	SelectedDay() string
	SelectDay(day string) (string, error)
	ListTables() []service.TableView
	GetOrderForTable(table string) (order.Order, bool)
	ListOrders(status string) ([]order.Order, error)
	ComputeTotal(o order.Order) order.Totals
	AddDishToTable(ctx context.Context, table, dish string) (order.Order, bool, error)
	ChangeQuantity(ctx context.Context, table, dish string, quantity int) (order.Order, error)
	RemoveDish(ctx context.Context, table, dish string) (order.Order, error)
	SetOrderFields(ctx context.Context, table string, f order.Fields) (order.Order, error)
	AdvanceStatus(ctx context.Context, table string) (order.Order, error)
	CancelOrder(ctx context.Context, table string) (order.Order, error)
	DeleteOrder(ctx context.Context, table string) error
	AddTable(ctx context.Context) string
	RemoveTable(ctx context.Context, table string) error
	PersistWarning(slots ...string) error
}

// OrderHandler handles the selected day, table and order endpoints.
type OrderHandler struct {
	svc DashboardServicer
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc DashboardServicer) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// RegisterRoutes registers day, table and order endpoints on the given Chi router.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/day", h.GetDay)
	r.Put("/day", h.SetDay)

	r.Get("/orders", h.ListOrders)

	r.Route("/tables", func(r chi.Router) {
		r.Get("/", h.ListTables)
		r.Post("/", h.AddTable)
		r.Delete("/{table}", h.RemoveTable)

		r.Route("/{table}/order", func(r chi.Router) {
			r.Get("/", h.GetOrder)
			r.Patch("/", h.UpdateFields)
			r.Delete("/", h.DeleteOrder)
			r.Post("/items", h.AddItem)
			r.Put("/items/{dish}", h.SetQuantity)
			r.Delete("/items/{dish}", h.RemoveItem)
			r.Post("/advance", h.Advance)
			r.Post("/cancel", h.Cancel)
		})
	})
}

// --- Request / Response types ---

type dayRequest struct {
	Day string `json:"day"`
}

type dayResponse struct {
	Day string `json:"day"`
}

type addItemRequest struct {
	Dish string `json:"dish"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

// updateFieldsRequest carries any subset of the editable fields.
type updateFieldsRequest struct {
	Customer *string `json:"customer"`
	Notes    *string `json:"notes"`
	Employee *string `json:"employee"`
	Status   *string `json:"status"`
}

type tableResponse struct {
	Table string         `json:"table"`
	Order *orderResponse `json:"order"`
}

// --- Handlers ---

// GetDay handles GET /day.
func (h *OrderHandler) GetDay(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dayResponse{Day: h.svc.SelectedDay()})
}

// SetDay handles PUT /day.
func (h *OrderHandler) SetDay(w http.ResponseWriter, r *http.Request) {
	var req dayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	day, err := h.svc.SelectDay(req.Day)
	if err != nil {
		writeError(w, err, "select day")
		return
	}
	writeJSON(w, http.StatusOK, dayResponse{Day: day})
}

// ListTables handles GET /tables.
func (h *OrderHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	views := h.svc.ListTables()
	resp := make([]tableResponse, len(views))
	for i, v := range views {
		resp[i] = tableResponse{Table: v.Table}
		if v.Order != nil {
			o := toOrderResponse(*v.Order, h.svc)
			resp[i].Order = &o
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// AddTable handles POST /tables.
func (h *OrderHandler) AddTable(w http.ResponseWriter, r *http.Request) {
	label := h.svc.AddTable(r.Context())
	writeCommand(w, http.StatusCreated, tableResponse{Table: label}, h.svc.PersistWarning(enum.SlotTables))
}

// RemoveTable handles DELETE /tables/{table}.
func (h *OrderHandler) RemoveTable(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveTable(r.Context(), pathParam(r, "table")); err != nil {
		writeError(w, err, "remove table")
		return
	}
	writeCommand(w, http.StatusNoContent, nil, h.svc.PersistWarning(enum.SlotOrders, enum.SlotTables))
}

// ListOrders handles GET /orders?status=.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListOrders(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err, "list orders")
		return
	}
	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o, h.svc)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetOrder handles GET /tables/{table}/order.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, ok := h.svc.GetOrderForTable(pathParam(r, "table"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": order.ErrOrderNotFound.Error()})
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o, h.svc))
}

// AddItem handles POST /tables/{table}/order/items. The order is opened on
// the first dish, so the response is 201 when it was created.
func (h *OrderHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Dish) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "dish is required"})
		return
	}

	o, created, err := h.svc.AddDishToTable(r.Context(), pathParam(r, "table"), req.Dish)
	if err != nil {
		writeError(w, err, "add dish")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeCommand(w, status, toOrderResponse(o, h.svc), h.svc.PersistWarning(enum.SlotOrders))
}

// SetQuantity handles PUT /tables/{table}/order/items/{dish}.
func (h *OrderHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Quantity == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity is required"})
		return
	}
	o, err := h.svc.ChangeQuantity(r.Context(), pathParam(r, "table"), pathParam(r, "dish"), *req.Quantity)
	if err != nil {
		writeError(w, err, "change quantity")
		return
	}
	writeCommand(w, http.StatusOK, toOrderResponse(o, h.svc), h.svc.PersistWarning(enum.SlotOrders))
}

// RemoveItem handles DELETE /tables/{table}/order/items/{dish}.
func (h *OrderHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.RemoveDish(r.Context(), pathParam(r, "table"), pathParam(r, "dish"))
	if err != nil {
		writeError(w, err, "remove dish")
		return
	}
	writeCommand(w, http.StatusOK, toOrderResponse(o, h.svc), h.svc.PersistWarning(enum.SlotOrders))
}

// UpdateFields handles PATCH /tables/{table}/order. The supplied fields are
// applied together or not at all.
func (h *OrderHandler) UpdateFields(w http.ResponseWriter, r *http.Request) {
	var req updateFieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	o, err := h.svc.SetOrderFields(r.Context(), pathParam(r, "table"), order.Fields{
		Customer: req.Customer,
		Notes:    req.Notes,
		Employee: req.Employee,
		Status:   req.Status,
	})
	if err != nil {
		writeError(w, err, "update order")
		return
	}
	writeCommand(w, http.StatusOK, toOrderResponse(o, h.svc), h.svc.PersistWarning(enum.SlotOrders))
}

// Advance handles POST /tables/{table}/order/advance.
func (h *OrderHandler) Advance(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.AdvanceStatus(r.Context(), pathParam(r, "table"))
	if err != nil {
		writeError(w, err, "advance status")
		return
	}
	writeCommand(w, http.StatusOK, toOrderResponse(o, h.svc), h.svc.PersistWarning(enum.SlotOrders))
}

// Cancel handles POST /tables/{table}/order/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.CancelOrder(r.Context(), pathParam(r, "table"))
	if err != nil {
		writeError(w, err, "cancel order")
		return
	}
	writeCommand(w, http.StatusOK, toOrderResponse(o, h.svc), h.svc.PersistWarning(enum.SlotOrders))
}

// DeleteOrder handles DELETE /tables/{table}/order.
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteOrder(r.Context(), pathParam(r, "table")); err != nil {
		writeError(w, err, "delete order")
		return
	}
	writeCommand(w, http.StatusNoContent, nil, h.svc.PersistWarning(enum.SlotOrders))
}
