// Package staff keeps the employee and role collections. Neither feeds the
// order flow; reports only read employee names off the orders themselves.
package staff

import (
	"errors"
	"regexp"
	"strings"
)

// Privilege keys a role can grant.
const (
	PrivManageEmployees = "crud_empleados"
	PrivManageMenu      = "crud_menu"
	PrivManageTables    = "crud_mesas"
	PrivViewReports     = "ver_reportes"
	PrivViewOrders      = "ver_pedidos"
	PrivAdmin           = "admin"
)

// Privileges lists every key in display order.
var Privileges = []string{
	PrivManageEmployees,
	PrivManageMenu,
	PrivManageTables,
	PrivViewReports,
	PrivViewOrders,
	PrivAdmin,
}

// History actions.
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionEnabled  = "enabled"
	ActionDisabled = "disabled"
)

// Errors returned by the staff repository.
var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrNameRequired     = errors.New("name is required")
	ErrInvalidCedula    = errors.New("cedula must be 6 to 12 digits")
	ErrPhoneRequired    = errors.New("phone is required")
	ErrRoleRequired     = errors.New("role is required")
	ErrRoleNotFound     = errors.New("role not found")
	ErrDuplicateRole    = errors.New("a role with that name already exists")
	ErrRoleInUse        = errors.New("role is assigned to an employee")
	ErrUnknownPrivilege = errors.New("unknown privilege")
)

var cedulaPattern = regexp.MustCompile(`^\d{6,12}$`)

type HistoryEntry struct {
	Date   string `json:"date"`
	Action string `json:"action"`
}

type Employee struct {
	ID      int64          `json:"id"`
	Name    string         `json:"name"`
	Cedula  string         `json:"cedula"`
	Role    string         `json:"role"`
	Phone   string         `json:"phone"`
	Active  bool           `json:"active"`
	Photo   string         `json:"photo,omitempty"`
	Notes   string         `json:"notes,omitempty"`
	History []HistoryEntry `json:"history,omitempty"`
}

// matches reports whether term appears in the name, role or phone, or names
// the active state ("activo" / "inactivo").
func (e Employee) matches(term string) bool {
	state := "inactivo"
	if e.Active {
		state = "activo"
	}
	for _, field := range []string{e.Name, e.Role, e.Phone, state} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func (e *Employee) normalize() error {
	e.Name = strings.TrimSpace(e.Name)
	e.Cedula = strings.TrimSpace(e.Cedula)
	e.Role = strings.TrimSpace(e.Role)
	e.Phone = strings.TrimSpace(e.Phone)
	switch {
	case e.Name == "":
		return ErrNameRequired
	case !cedulaPattern.MatchString(e.Cedula):
		return ErrInvalidCedula
	case e.Role == "":
		return ErrRoleRequired
	case e.Phone == "":
		return ErrPhoneRequired
	}
	return nil
}

type Role struct {
	Name       string   `json:"name"`
	Privileges []string `json:"privileges"`
}

func (r *Role) normalize() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return ErrNameRequired
	}
	seen := map[string]bool{}
	privs := make([]string, 0, len(r.Privileges))
	for _, p := range r.Privileges {
		if !isPrivilege(p) {
			return ErrUnknownPrivilege
		}
		if !seen[p] {
			seen[p] = true
			privs = append(privs, p)
		}
	}
	r.Privileges = privs
	return nil
}

func isPrivilege(p string) bool {
	for _, k := range Privileges {
		if k == p {
			return true
		}
	}
	return false
}

// DefaultEmployees is loaded when the employees slot is missing or unreadable.
func DefaultEmployees() []Employee {
	return []Employee{
		{
			ID:     1,
			Name:   "Juan Pérez",
			Cedula: "12345678",
			Role:   "Mesero",
			Phone:  "555-1234",
			Active: true,
			Notes:  "Empleado destacado por atención al cliente.",
			History: []HistoryEntry{
				{Date: "2025-07-01", Action: ActionCreated},
				{Date: "2025-07-10", Action: ActionUpdated},
			},
		},
		{
			ID:      2,
			Name:    "Ana Gómez",
			Cedula:  "87654321",
			Role:    "Cocinero",
			Phone:   "555-5678",
			Active:  false,
			History: []HistoryEntry{{Date: "2025-07-02", Action: ActionCreated}},
		},
	}
}

// DefaultRoles is loaded when the roles slot is missing or unreadable.
func DefaultRoles() []Role {
	return []Role{
		{Name: "Administrador", Privileges: []string{PrivAdmin}},
		{Name: "Mesero", Privileges: []string{PrivViewOrders, PrivManageTables}},
		{Name: "Cocinero", Privileges: []string{PrivViewOrders}},
	}
}
