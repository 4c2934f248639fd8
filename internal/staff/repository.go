package staff

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/restodash/api/internal/enum"
	"github.com/restodash/api/internal/storage"
)

// Repository holds employees and roles, each mirrored to its own slot.
type Repository struct {
	mu        sync.RWMutex
	kv        storage.KV
	employees []Employee
	roles     []Role
	nextID    int64
	now       func() time.Time
	saveErr   error
}

// NewRepository loads both slots. Each falls back to its seed on its own.
func NewRepository(ctx context.Context, kv storage.KV) *Repository {
	r := &Repository{kv: kv, now: time.Now}

	if err := storage.LoadJSON(ctx, kv, enum.SlotEmployees, &r.employees); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("WARNING: employees slot unreadable, using defaults: %v", err)
		}
		r.employees = DefaultEmployees()
	}
	if err := storage.LoadJSON(ctx, kv, enum.SlotRoles, &r.roles); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("WARNING: roles slot unreadable, using defaults: %v", err)
		}
		r.roles = DefaultRoles()
	}

	r.nextID = 1
	for _, e := range r.employees {
		if e.ID >= r.nextID {
			r.nextID = e.ID + 1
		}
	}
	return r
}

// --- Employees ---

// Employees lists employees whose name, role, phone or active state contains
// search, case-insensitively. An empty search lists everyone.
func (r *Repository) Employees(search string) []Employee {
	r.mu.RLock()
	defer r.mu.RUnlock()

	term := strings.ToLower(strings.TrimSpace(search))
	out := make([]Employee, 0, len(r.employees))
	for _, e := range r.employees {
		if term == "" || e.matches(term) {
			out = append(out, cloneEmployee(e))
		}
	}
	return out
}

// Employee returns one employee by id.
func (r *Repository) Employee(id int64) (Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.employeeIndex(id); i >= 0 {
		return cloneEmployee(r.employees[i]), nil
	}
	return Employee{}, ErrEmployeeNotFound
}

// UpsertEmployee creates an employee (ID 0) or replaces an existing one,
// appending a history entry either way. The role must exist.
func (r *Repository) UpsertEmployee(ctx context.Context, e Employee) (Employee, error) {
	if err := e.normalize(); err != nil {
		return Employee{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.roleIndex(e.Role) < 0 {
		return Employee{}, ErrRoleNotFound
	}

	date := r.now().Format("2006-01-02")
	if e.ID == 0 {
		e.ID = r.nextID
		r.nextID++
		e.History = []HistoryEntry{{Date: date, Action: ActionCreated}}
		r.employees = append(r.employees, e)
		r.save(ctx)
		return cloneEmployee(e), nil
	}

	i := r.employeeIndex(e.ID)
	if i < 0 {
		return Employee{}, ErrEmployeeNotFound
	}
	e.History = append(append([]HistoryEntry(nil), r.employees[i].History...), HistoryEntry{Date: date, Action: ActionUpdated})
	r.employees[i] = e
	r.save(ctx)
	return cloneEmployee(e), nil
}

// DeleteEmployee removes an employee. Orders keep the name they were served under.
func (r *Repository) DeleteEmployee(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.employeeIndex(id)
	if i < 0 {
		return ErrEmployeeNotFound
	}
	r.employees = append(r.employees[:i:i], r.employees[i+1:]...)
	r.save(ctx)
	return nil
}

// ToggleActive flips an employee's active flag.
func (r *Repository) ToggleActive(ctx context.Context, id int64) (Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.employeeIndex(id)
	if i < 0 {
		return Employee{}, ErrEmployeeNotFound
	}
	e := &r.employees[i]
	e.Active = !e.Active
	action := ActionDisabled
	if e.Active {
		action = ActionEnabled
	}
	e.History = append(e.History, HistoryEntry{Date: r.now().Format("2006-01-02"), Action: action})
	r.save(ctx)
	return cloneEmployee(*e), nil
}

// --- Roles ---

// Roles lists every role.
func (r *Repository) Roles() []Role {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Role, len(r.roles))
	for i, role := range r.roles {
		out[i] = cloneRole(role)
	}
	return out
}

// UpsertRole creates a role when name is empty, otherwise replaces the role
// called name. Renaming a role carries its employees along.
func (r *Repository) UpsertRole(ctx context.Context, name string, role Role) (Role, error) {
	if err := role.normalize(); err != nil {
		return Role{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing := -1
	if name != "" {
		if existing = r.roleIndex(name); existing < 0 {
			return Role{}, ErrRoleNotFound
		}
	}
	if j := r.roleIndex(role.Name); j >= 0 && j != existing {
		return Role{}, ErrDuplicateRole
	}

	if existing < 0 {
		r.roles = append(r.roles, role)
	} else {
		old := r.roles[existing].Name
		r.roles[existing] = role
		for i := range r.employees {
			if strings.EqualFold(r.employees[i].Role, old) {
				r.employees[i].Role = role.Name
			}
		}
	}
	r.save(ctx)
	return cloneRole(role), nil
}

// DeleteRole removes a role no employee holds.
func (r *Repository) DeleteRole(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.roleIndex(name)
	if i < 0 {
		return ErrRoleNotFound
	}
	for _, e := range r.employees {
		if strings.EqualFold(e.Role, r.roles[i].Name) {
			return ErrRoleInUse
		}
	}
	r.roles = append(r.roles[:i:i], r.roles[i+1:]...)
	r.save(ctx)
	return nil
}

// PrivilegesFor returns what a role grants. The admin privilege grants every key.
func (r *Repository) PrivilegesFor(role string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.roleIndex(role)
	if i < 0 {
		return nil, ErrRoleNotFound
	}
	for _, p := range r.roles[i].Privileges {
		if p == PrivAdmin {
			return append([]string(nil), Privileges...), nil
		}
	}
	return append([]string(nil), r.roles[i].Privileges...), nil
}

// LastSaveError returns the most recent persistence failure.
func (r *Repository) LastSaveError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saveErr
}

// PersistWarning is LastSaveError under the name the HTTP layer checks.
func (r *Repository) PersistWarning() error {
	return r.LastSaveError()
}

// Seed writes the default employees and roles to kv unconditionally.
func Seed(ctx context.Context, kv storage.KV) error {
	if err := storage.SaveJSON(ctx, kv, enum.SlotEmployees, DefaultEmployees()); err != nil {
		return fmt.Errorf("seed employees: %w", err)
	}
	if err := storage.SaveJSON(ctx, kv, enum.SlotRoles, DefaultRoles()); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	return nil
}

// --- Internals (mu held) ---

func (r *Repository) employeeIndex(id int64) int {
	for i, e := range r.employees {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) roleIndex(name string) int {
	name = strings.TrimSpace(name)
	for i, role := range r.roles {
		if strings.EqualFold(role.Name, name) {
			return i
		}
	}
	return -1
}

// save writes both slots; the first failure is kept.
func (r *Repository) save(ctx context.Context) {
	r.saveErr = storage.SaveJSON(ctx, r.kv, enum.SlotEmployees, r.employees)
	if err := storage.SaveJSON(ctx, r.kv, enum.SlotRoles, r.roles); r.saveErr == nil {
		r.saveErr = err
	}
	if r.saveErr != nil {
		log.Printf("ERROR: persist staff: %v", r.saveErr)
	}
}

func cloneEmployee(e Employee) Employee {
	e.History = append([]HistoryEntry(nil), e.History...)
	return e
}

func cloneRole(r Role) Role {
	r.Privileges = append([]string(nil), r.Privileges...)
	return r
}
