package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/restodash/api/internal/editor"
	"github.com/restodash/api/internal/enum"
)

// EditorSession defines the popup operations needed by editor handlers.
// Satisfied by *editor.Editor; narrow interface for testability.
type EditorSession interface {
	Snapshot() editor.Snapshot
	SelectTable(table string) editor.Snapshot
	SwitchTab(tab string) (editor.Snapshot, error)
	AddDish(ctx context.Context, dish string) (editor.Snapshot, error)
	ChangeQuantity(ctx context.Context, dish string, quantity int) (editor.Snapshot, error)
	Increment(ctx context.Context, dish string) (editor.Snapshot, error)
	Decrement(ctx context.Context, dish string) (editor.Snapshot, error)
	RemoveDish(ctx context.Context, dish string) (editor.Snapshot, error)
	SetField(ctx context.Context, field, value string) (editor.Snapshot, error)
	Close() editor.Snapshot
}

// EditorPricer prices the working copy and reports save failures.
// Satisfied by *service.Dashboard.
type EditorPricer interface {
	Totaler
	PersistWarning(slots ...string) error
}

// EditorHandler exposes the order popup.
type EditorHandler struct {
	session EditorSession
	pricer  EditorPricer
}

// NewEditorHandler creates a new EditorHandler.
func NewEditorHandler(session EditorSession, pricer EditorPricer) *EditorHandler {
	return &EditorHandler{session: session, pricer: pricer}
}

// RegisterRoutes registers editor endpoints. Mounted at /editor.
func (h *EditorHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Post("/select", h.Select)
	r.Post("/tab", h.Tab)
	r.Post("/items", h.AddItem)
	r.Put("/items/{dish}", h.SetQuantity)
	r.Post("/items/{dish}/increment", h.Increment)
	r.Post("/items/{dish}/decrement", h.Decrement)
	r.Delete("/items/{dish}", h.RemoveItem)
	r.Patch("/fields", h.SetField)
	r.Post("/close", h.Close)
}

// --- Request / Response types ---

type selectTableRequest struct {
	Table string `json:"table"`
}

type tabRequest struct {
	Tab string `json:"tab"`
}

type fieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type snapshotResponse struct {
	State string         `json:"state"`
	Tab   string         `json:"tab,omitempty"`
	Table string         `json:"table,omitempty"`
	Draft bool           `json:"draft"`
	Order *orderResponse `json:"order"`
}

func (h *EditorHandler) toSnapshotResponse(s editor.Snapshot) snapshotResponse {
	resp := snapshotResponse{State: s.State, Tab: s.Tab, Table: s.Table, Draft: s.Draft}
	if s.Order != nil {
		o := toOrderResponse(*s.Order, h.pricer)
		resp.Order = &o
	}
	return resp
}

// --- Handlers ---

// Get handles GET /editor.
func (h *EditorHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.toSnapshotResponse(h.session.Snapshot()))
}

// Select handles POST /editor/select.
func (h *EditorHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req selectTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Table == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "table is required"})
		return
	}
	writeJSON(w, http.StatusOK, h.toSnapshotResponse(h.session.SelectTable(req.Table)))
}

// Tab handles POST /editor/tab.
func (h *EditorHandler) Tab(w http.ResponseWriter, r *http.Request) {
	var req tabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	s, err := h.session.SwitchTab(req.Tab)
	if err != nil {
		writeError(w, err, "switch tab")
		return
	}
	writeJSON(w, http.StatusOK, h.toSnapshotResponse(s))
}

// AddItem handles POST /editor/items.
func (h *EditorHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	s, err := h.session.AddDish(r.Context(), req.Dish)
	h.respond(w, s, err, "editor add dish")
}

// SetQuantity handles PUT /editor/items/{dish}.
func (h *EditorHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Quantity == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity is required"})
		return
	}
	s, err := h.session.ChangeQuantity(r.Context(), pathParam(r, "dish"), *req.Quantity)
	h.respond(w, s, err, "editor change quantity")
}

// Increment handles POST /editor/items/{dish}/increment.
func (h *EditorHandler) Increment(w http.ResponseWriter, r *http.Request) {
	s, err := h.session.Increment(r.Context(), pathParam(r, "dish"))
	h.respond(w, s, err, "editor increment")
}

// Decrement handles POST /editor/items/{dish}/decrement.
func (h *EditorHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	s, err := h.session.Decrement(r.Context(), pathParam(r, "dish"))
	h.respond(w, s, err, "editor decrement")
}

// RemoveItem handles DELETE /editor/items/{dish}.
func (h *EditorHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s, err := h.session.RemoveDish(r.Context(), pathParam(r, "dish"))
	h.respond(w, s, err, "editor remove dish")
}

// SetField handles PATCH /editor/fields.
func (h *EditorHandler) SetField(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	s, err := h.session.SetField(r.Context(), req.Field, req.Value)
	h.respond(w, s, err, "editor set field")
}

// Close handles POST /editor/close.
func (h *EditorHandler) Close(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.toSnapshotResponse(h.session.Close()))
}

func (h *EditorHandler) respond(w http.ResponseWriter, s editor.Snapshot, err error, action string) {
	if err != nil {
		writeError(w, err, action)
		return
	}
	writeCommand(w, http.StatusOK, h.toSnapshotResponse(s), h.pricer.PersistWarning(enum.SlotOrders))
}
