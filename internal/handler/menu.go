package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/restodash/api/internal/catalog"
	"github.com/restodash/api/internal/enum"
	"github.com/restodash/api/internal/middleware"
	"github.com/shopspring/decimal"
)

// MenuServicer defines the dashboard methods needed by menu handlers.
// Satisfied by *service.Dashboard; narrow interface for testability.
type MenuServicer interface {
	Menu(day string, activeOnly bool) catalog.DayMenu
	UpsertDish(ctx context.Context, day string, dish catalog.Dish) (catalog.Dish, error)
	RemoveMenuDish(ctx context.Context, day, name string) error
	SetDishActive(ctx context.Context, day, name string, active bool) (catalog.Dish, error)
	SetDishSpecial(ctx context.Context, day, name string, special bool) (catalog.Dish, error)
	PersistWarning(slots ...string) error
}

// MenuHandler handles the day-keyed menu endpoints.
type MenuHandler struct {
	svc MenuServicer
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(svc MenuServicer) *MenuHandler {
	return &MenuHandler{svc: svc}
}

// RegisterRoutes registers menu endpoints.
// Expected to be mounted behind middleware.RequireDay: /days/{day}/menu
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Upsert)
	r.Delete("/{name}", h.Remove)
	r.Patch("/{name}/active", h.SetActive)
	r.Patch("/{name}/special", h.SetSpecial)
}

// --- Request types ---

type dishRequest struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory"`
	Price       json.RawMessage `json:"price"`
	Description string          `json:"description"`
	Photo       string          `json:"photo"`
	Active      *bool           `json:"active"`
	Special     bool            `json:"special"`
}

type toggleRequest struct {
	Value *bool `json:"value"`
}

// --- Handlers ---

// List handles GET /days/{day}/menu. ?active=true hides disabled dishes.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly, _ := strconv.ParseBool(r.URL.Query().Get("active"))
	dishes := h.svc.Menu(middleware.DayFromContext(r.Context()), activeOnly)
	resp := make([]dishResponse, len(dishes))
	for i, d := range dishes {
		resp[i] = toDishResponse(d)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Upsert handles POST /days/{day}/menu. A body with a known id replaces that dish.
func (h *MenuHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req dishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	dish := catalog.Dish{
		ID:          req.ID,
		Name:        req.Name,
		Category:    strings.TrimSpace(req.Category),
		Subcategory: strings.TrimSpace(req.Subcategory),
		Price:       price,
		Description: req.Description,
		Photo:       req.Photo,
		Active:      active,
		Special:     req.Special,
	}

	saved, err := h.svc.UpsertDish(r.Context(), middleware.DayFromContext(r.Context()), dish)
	if err != nil {
		writeError(w, err, "upsert dish")
		return
	}
	status := http.StatusOK
	if req.ID == 0 {
		status = http.StatusCreated
	}
	writeCommand(w, status, toDishResponse(saved), h.svc.PersistWarning(enum.SlotMenuByDay))
}

// Remove handles DELETE /days/{day}/menu/{name}.
func (h *MenuHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveMenuDish(r.Context(), middleware.DayFromContext(r.Context()), pathParam(r, "name")); err != nil {
		writeError(w, err, "remove dish")
		return
	}
	writeCommand(w, http.StatusNoContent, nil, h.svc.PersistWarning(enum.SlotMenuByDay))
}

// SetActive handles PATCH /days/{day}/menu/{name}/active.
func (h *MenuHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "set dish active", h.svc.SetDishActive)
}

// SetSpecial handles PATCH /days/{day}/menu/{name}/special.
func (h *MenuHandler) SetSpecial(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "set dish special", h.svc.SetDishSpecial)
}

func (h *MenuHandler) toggle(w http.ResponseWriter, r *http.Request, action string,
	fn func(ctx context.Context, day, name string, v bool) (catalog.Dish, error)) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Value == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "value is required"})
		return
	}
	dish, err := fn(r.Context(), middleware.DayFromContext(r.Context()), pathParam(r, "name"), *req.Value)
	if err != nil {
		writeError(w, err, action)
		return
	}
	writeCommand(w, http.StatusOK, toDishResponse(dish), h.svc.PersistWarning(enum.SlotMenuByDay))
}

// parsePrice accepts a JSON number or numeric string. A missing price is zero.
func parsePrice(raw json.RawMessage) (decimal.Decimal, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return decimal.Zero, nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}
	return decimal.NewFromString(s)
}
