package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/restodash/api/internal/catalog"
	"github.com/restodash/api/internal/editor"
	"github.com/restodash/api/internal/enum"
	"github.com/restodash/api/internal/order"
	"github.com/restodash/api/internal/service"
	"github.com/restodash/api/internal/staff"
	"github.com/restodash/api/internal/tables"
	"github.com/shopspring/decimal"
)

// PersistWarningHeader is set on command responses whose change is held in
// memory but could not be written to the slot store.
const PersistWarningHeader = "X-Persist-Warning"

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// writeCommand writes the result of a mutating command. saveErr is the save
// state of the slots the command wrote; a failure is flagged without failing
// the request.
func writeCommand(w http.ResponseWriter, status int, v interface{}, saveErr error) {
	if saveErr != nil {
		w.Header().Set(PersistWarningHeader, "change kept in memory but not saved")
	}
	if v == nil {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, v)
}

// writeError maps domain errors to status codes. Unknown errors are logged
// under action and reported as 500.
func writeError(w http.ResponseWriter, err error, action string) {
	var occupied *order.TableOccupiedError
	switch {
	case errors.As(err, &occupied):
		writeJSON(w, http.StatusConflict, map[string]string{"error": occupied.Error()})
	case isNotFoundError(err):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case isConflictError(err):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case isValidationError(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", action, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// isValidationError checks if the error is a known validation error
// that should result in 400 Bad Request.
func isValidationError(err error) bool {
	return errors.Is(err, enum.ErrInvalidDay) ||
		errors.Is(err, order.ErrTableRequired) ||
		errors.Is(err, order.ErrDishRequired) ||
		errors.Is(err, order.ErrInvalidStatus) ||
		errors.Is(err, order.ErrInvalidField) ||
		errors.Is(err, service.ErrDishNotFound) ||
		errors.Is(err, service.ErrDishUnavailable) ||
		errors.Is(err, catalog.ErrDishName) ||
		errors.Is(err, catalog.ErrDishPrice) ||
		errors.Is(err, editor.ErrInvalidTab) ||
		errors.Is(err, staff.ErrNameRequired) ||
		errors.Is(err, staff.ErrInvalidCedula) ||
		errors.Is(err, staff.ErrPhoneRequired) ||
		errors.Is(err, staff.ErrRoleRequired) ||
		errors.Is(err, staff.ErrUnknownPrivilege)
}

func isNotFoundError(err error) bool {
	return errors.Is(err, order.ErrOrderNotFound) ||
		errors.Is(err, order.ErrItemNotFound) ||
		errors.Is(err, tables.ErrUnknownTable) ||
		errors.Is(err, catalog.ErrDishNotFound) ||
		errors.Is(err, staff.ErrEmployeeNotFound) ||
		errors.Is(err, staff.ErrRoleNotFound)
}

func isConflictError(err error) bool {
	return errors.Is(err, order.ErrTableHasOrder) ||
		errors.Is(err, catalog.ErrDuplicateDish) ||
		errors.Is(err, staff.ErrDuplicateRole) ||
		errors.Is(err, staff.ErrRoleInUse) ||
		errors.Is(err, editor.ErrNoTableSelected) ||
		errors.Is(err, editor.ErrNotBrowsing)
}

// pathParam returns an unescaped URL parameter. Dish names routinely carry
// spaces and accents; a name with an encoded slash arrives still escaped.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// --- Shared response types ---

type itemResponse struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	Total     string `json:"total"`
	Missing   bool   `json:"missing,omitempty"`
}

type orderResponse struct {
	ID           string         `json:"id,omitempty"`
	Table        string         `json:"table"`
	Customer     string         `json:"customer"`
	Employee     string         `json:"employee"`
	Items        []itemResponse `json:"items"`
	Status       string         `json:"status"`
	Notes        string         `json:"notes"`
	Day          string         `json:"day"`
	CreatedAt    *time.Time     `json:"createdAt,omitempty"`
	Total        string         `json:"total"`
	MissingItems int            `json:"missingItems"`
}

// Totaler prices an order against the live menu.
// Satisfied by *service.Dashboard.
type Totaler interface {
	ComputeTotal(o order.Order) order.Totals
}

func toOrderResponse(o order.Order, t Totaler) orderResponse {
	totals := t.ComputeTotal(o)
	resp := orderResponse{
		Table:        o.Table,
		Customer:     o.Customer,
		Employee:     o.Employee,
		Items:        make([]itemResponse, len(totals.Lines)),
		Status:       o.Status,
		Notes:        o.Notes,
		Day:          o.Day,
		Total:        money(totals.Total),
		MissingItems: totals.Missing,
	}
	if !o.IsDraft() {
		resp.ID = o.ID.String()
		created := o.CreatedAt
		resp.CreatedAt = &created
	}
	for i, line := range totals.Lines {
		resp.Items[i] = itemResponse{
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: money(line.UnitPrice),
			Total:     money(line.Total),
			Missing:   line.Missing,
		}
	}
	return resp
}

type dishResponse struct {
	ID          int64                  `json:"id"`
	Name        string                 `json:"name"`
	Category    string                 `json:"category"`
	Subcategory string                 `json:"subcategory,omitempty"`
	Price       string                 `json:"price"`
	Description string                 `json:"description,omitempty"`
	Photo       string                 `json:"photo,omitempty"`
	Active      bool                   `json:"active"`
	Special     bool                   `json:"special"`
	History     []catalog.HistoryEntry `json:"history"`
}

func toDishResponse(d catalog.Dish) dishResponse {
	history := d.History
	if history == nil {
		history = []catalog.HistoryEntry{}
	}
	return dishResponse{
		ID:          d.ID,
		Name:        d.Name,
		Category:    d.Category,
		Subcategory: d.Subcategory,
		Price:       money(d.Price),
		Description: d.Description,
		Photo:       d.Photo,
		Active:      d.Active,
		Special:     d.Special,
		History:     history,
	}
}
