package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/restodash/api/internal/staff"
)

// StaffStore defines the repository methods needed by staff handlers.
// Satisfied by *staff.Repository; narrow interface for testability.
type StaffStore interface {
	Employees(search string) []staff.Employee
	Employee(id int64) (staff.Employee, error)
	UpsertEmployee(ctx context.Context, e staff.Employee) (staff.Employee, error)
	DeleteEmployee(ctx context.Context, id int64) error
	ToggleActive(ctx context.Context, id int64) (staff.Employee, error)
	Roles() []staff.Role
	UpsertRole(ctx context.Context, name string, role staff.Role) (staff.Role, error)
	DeleteRole(ctx context.Context, name string) error
	PrivilegesFor(role string) ([]string, error)
	PersistWarning() error
}

// StaffHandler handles employee and role endpoints.
type StaffHandler struct {
	store StaffStore
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(store StaffStore) *StaffHandler {
	return &StaffHandler{store: store}
}

// RegisterRoutes registers staff endpoints. Mounted at /staff.
func (h *StaffHandler) RegisterRoutes(r chi.Router) {
	r.Get("/privileges", h.ListPrivileges)

	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.ListEmployees)
		r.Post("/", h.CreateEmployee)
		r.Get("/{id}", h.GetEmployee)
		r.Put("/{id}", h.UpdateEmployee)
		r.Delete("/{id}", h.DeleteEmployee)
		r.Post("/{id}/toggle", h.ToggleEmployee)
	})

	r.Route("/roles", func(r chi.Router) {
		r.Get("/", h.ListRoles)
		r.Post("/", h.CreateRole)
		r.Put("/{name}", h.UpdateRole)
		r.Delete("/{name}", h.DeleteRole)
		r.Get("/{name}/privileges", h.RolePrivileges)
	})
}

// --- Request types ---

type employeeRequest struct {
	Name   string `json:"name"`
	Cedula string `json:"cedula"`
	Role   string `json:"role"`
	Phone  string `json:"phone"`
	Active *bool  `json:"active"`
	Photo  string `json:"photo"`
	Notes  string `json:"notes"`
}

func (req employeeRequest) toEmployee(id int64) staff.Employee {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return staff.Employee{
		ID:     id,
		Name:   req.Name,
		Cedula: req.Cedula,
		Role:   req.Role,
		Phone:  req.Phone,
		Active: active,
		Photo:  req.Photo,
		Notes:  req.Notes,
	}
}

type roleRequest struct {
	Name       string   `json:"name"`
	Privileges []string `json:"privileges"`
}

type privilegesResponse struct {
	Role       string   `json:"role,omitempty"`
	Privileges []string `json:"privileges"`
}

// --- Employee handlers ---

// ListEmployees handles GET /staff/employees?search=.
func (h *StaffHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Employees(r.URL.Query().Get("search")))
}

// GetEmployee handles GET /staff/employees/{id}.
func (h *StaffHandler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEmployeeID(w, r)
	if !ok {
		return
	}
	e, err := h.store.Employee(id)
	if err != nil {
		writeError(w, err, "get employee")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// CreateEmployee handles POST /staff/employees.
func (h *StaffHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	e, err := h.store.UpsertEmployee(r.Context(), req.toEmployee(0))
	if err != nil {
		writeError(w, err, "create employee")
		return
	}
	writeCommand(w, http.StatusCreated, e, h.store.PersistWarning())
}

// UpdateEmployee handles PUT /staff/employees/{id}.
func (h *StaffHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEmployeeID(w, r)
	if !ok {
		return
	}
	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	e, err := h.store.UpsertEmployee(r.Context(), req.toEmployee(id))
	if err != nil {
		writeError(w, err, "update employee")
		return
	}
	writeCommand(w, http.StatusOK, e, h.store.PersistWarning())
}

// DeleteEmployee handles DELETE /staff/employees/{id}.
func (h *StaffHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEmployeeID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteEmployee(r.Context(), id); err != nil {
		writeError(w, err, "delete employee")
		return
	}
	writeCommand(w, http.StatusNoContent, nil, h.store.PersistWarning())
}

// ToggleEmployee handles POST /staff/employees/{id}/toggle.
func (h *StaffHandler) ToggleEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEmployeeID(w, r)
	if !ok {
		return
	}
	e, err := h.store.ToggleActive(r.Context(), id)
	if err != nil {
		writeError(w, err, "toggle employee")
		return
	}
	writeCommand(w, http.StatusOK, e, h.store.PersistWarning())
}

func parseEmployeeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid employee ID"})
		return 0, false
	}
	return id, true
}

// --- Role handlers ---

// ListPrivileges handles GET /staff/privileges.
func (h *StaffHandler) ListPrivileges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, privilegesResponse{Privileges: staff.Privileges})
}

// ListRoles handles GET /staff/roles.
func (h *StaffHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Roles())
}

// CreateRole handles POST /staff/roles.
func (h *StaffHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	h.upsertRole(w, r, "", http.StatusCreated)
}

// UpdateRole handles PUT /staff/roles/{name}. The body may rename the role.
func (h *StaffHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	h.upsertRole(w, r, pathParam(r, "name"), http.StatusOK)
}

func (h *StaffHandler) upsertRole(w http.ResponseWriter, r *http.Request, name string, status int) {
	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	role, err := h.store.UpsertRole(r.Context(), name, staff.Role{Name: req.Name, Privileges: req.Privileges})
	if err != nil {
		writeError(w, err, "upsert role")
		return
	}
	writeCommand(w, status, role, h.store.PersistWarning())
}

// DeleteRole handles DELETE /staff/roles/{name}.
func (h *StaffHandler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteRole(r.Context(), pathParam(r, "name")); err != nil {
		writeError(w, err, "delete role")
		return
	}
	writeCommand(w, http.StatusNoContent, nil, h.store.PersistWarning())
}

// RolePrivileges handles GET /staff/roles/{name}/privileges.
func (h *StaffHandler) RolePrivileges(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	privs, err := h.store.PrivilegesFor(name)
	if err != nil {
		writeError(w, err, "role privileges")
		return
	}
	writeJSON(w, http.StatusOK, privilegesResponse{Role: name, Privileges: privs})
}
