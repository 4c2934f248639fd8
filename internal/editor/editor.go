// Package editor is the order popup of the dashboard: a per-session state
// machine over one table's working copy.
package editor

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/restodash/api/internal/enum"
	"github.com/restodash/api/internal/order"
)

// Editor states.
const (
	StateIdle            = "idle"
	StateTableSelected   = "table-selected"
	StateBrowsingCatalog = "browsing-catalog"
)

// Errors returned when an operation is called in the wrong state.
var (
	ErrNoTableSelected = errors.New("no table selected")
	ErrNotBrowsing     = errors.New("dishes can only be added from the catalog tab")
	ErrInvalidTab      = errors.New("invalid tab")
)

// Orders is the command surface the editor drives.
// Satisfied by *service.Dashboard.
type Orders interface {
	GetOrderForTable(table string) (order.Order, bool)
	AddDishToTable(ctx context.Context, table, dish string) (order.Order, bool, error)
	ChangeQuantity(ctx context.Context, table, dish string, quantity int) (order.Order, error)
	RemoveDish(ctx context.Context, table, dish string) (order.Order, error)
	SetOrderField(ctx context.Context, table, field, value string) (order.Order, error)
}

// Snapshot is what the popup renders.
type Snapshot struct {
	State string       `json:"state"`
	Tab   string       `json:"tab,omitempty"`
	Table string       `json:"table,omitempty"`
	Order *order.Order `json:"order,omitempty"`
	Draft bool         `json:"draft"`
}

// Editor holds the popup state. A draft (zero ID) lives only here until its
// first dish is added; closing the popup before that discards it.
type Editor struct {
	orders Orders

	mu      sync.Mutex
	state   string
	table   string
	working order.Order
}

// New returns an idle Editor.
func New(orders Orders) *Editor {
	return &Editor{orders: orders, state: StateIdle}
}

// SelectTable opens the popup on table's Detail tab. The table's order is
// loaded, or an unsaved draft is started when it has none. Any table that was
// open is closed first.
func (e *Editor) SelectTable(table string) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.table = strings.TrimSpace(table)
	e.state = StateTableSelected
	if o, ok := e.orders.GetOrderForTable(e.table); ok {
		e.working = o
	} else {
		e.working = newDraft(e.table)
	}
	return e.snapshot()
}

// SwitchTab moves between the Detail and Catalog tabs. It never touches the store.
func (e *Editor) SwitchTab(tab string) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateIdle {
		return Snapshot{}, ErrNoTableSelected
	}
	switch tab {
	case enum.TabDetail:
		e.state = StateTableSelected
	case enum.TabCatalog:
		e.state = StateBrowsingCatalog
	default:
		return Snapshot{}, ErrInvalidTab
	}
	e.refresh()
	return e.snapshot(), nil
}

// AddDish adds one unit of dish from the catalog. On a draft this is the
// promotion: the order is created and the fields typed into the draft are
// carried over.
func (e *Editor) AddDish(ctx context.Context, dish string) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateIdle {
		return Snapshot{}, ErrNoTableSelected
	}
	if e.state != StateBrowsingCatalog {
		return Snapshot{}, ErrNotBrowsing
	}
	e.refresh()

	draft := e.working
	o, _, err := e.orders.AddDishToTable(ctx, e.table, dish)
	if err != nil {
		return Snapshot{}, err
	}
	if draft.IsDraft() {
		o, err = e.carryDraftFields(ctx, draft, o)
		e.working = o
		if err != nil {
			return Snapshot{}, err
		}
		return e.snapshot(), nil
	}
	e.working = o
	return e.snapshot(), nil
}

func (e *Editor) carryDraftFields(ctx context.Context, draft, o order.Order) (order.Order, error) {
	fields := []struct{ name, value string }{
		{enum.FieldCustomer, draft.Customer},
		{enum.FieldNotes, draft.Notes},
		{enum.FieldEmployee, draft.Employee},
	}
	if draft.Status != enum.OrderStatusPending {
		fields = append(fields, struct{ name, value string }{enum.FieldStatus, draft.Status})
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		updated, err := e.orders.SetOrderField(ctx, e.table, f.name, f.value)
		if err != nil {
			return o, err
		}
		o = updated
	}
	return o, nil
}

// ChangeQuantity sets a line's quantity; below 1 removes the line.
func (e *Editor) ChangeQuantity(ctx context.Context, dish string, quantity int) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateIdle {
		return Snapshot{}, ErrNoTableSelected
	}
	e.refresh()
	return e.changeQuantity(ctx, dish, quantity)
}

// Increment adds one to an existing line.
func (e *Editor) Increment(ctx context.Context, dish string) (Snapshot, error) {
	return e.step(ctx, dish, 1)
}

// Decrement subtracts one from a line, removing it at zero.
func (e *Editor) Decrement(ctx context.Context, dish string) (Snapshot, error) {
	return e.step(ctx, dish, -1)
}

func (e *Editor) step(ctx context.Context, dish string, delta int) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateIdle {
		return Snapshot{}, ErrNoTableSelected
	}
	e.refresh()
	for _, it := range e.working.Items {
		if it.Name == dish {
			return e.changeQuantity(ctx, dish, it.Quantity+delta)
		}
	}
	return Snapshot{}, order.ErrItemNotFound
}

// RemoveDish drops a line. Removing from a draft or an absent line is a no-op.
func (e *Editor) RemoveDish(ctx context.Context, dish string) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateIdle {
		return Snapshot{}, ErrNoTableSelected
	}
	e.refresh()
	if e.working.IsDraft() {
		return e.snapshot(), nil
	}
	o, err := e.orders.RemoveDish(ctx, e.table, dish)
	if err != nil {
		return Snapshot{}, err
	}
	e.working = o
	return e.snapshot(), nil
}

// SetField edits customer, notes, employee or status. Draft edits stay in
// memory until the draft is promoted.
func (e *Editor) SetField(ctx context.Context, field, value string) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateIdle {
		return Snapshot{}, ErrNoTableSelected
	}
	e.refresh()
	if !e.working.IsDraft() {
		o, err := e.orders.SetOrderField(ctx, e.table, field, value)
		if err != nil {
			return Snapshot{}, err
		}
		e.working = o
		return e.snapshot(), nil
	}

	switch field {
	case enum.FieldCustomer:
		e.working.Customer = strings.TrimSpace(value)
	case enum.FieldNotes:
		e.working.Notes = value
	case enum.FieldEmployee:
		e.working.Employee = strings.TrimSpace(value)
	case enum.FieldStatus:
		if !enum.IsEditorStatus(value) {
			return Snapshot{}, order.ErrInvalidStatus
		}
		e.working.Status = value
	default:
		return Snapshot{}, order.ErrInvalidField
	}
	return e.snapshot(), nil
}

// Close returns to Idle. A draft that never received a dish is dropped.
func (e *Editor) Close() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = StateIdle
	e.table = ""
	e.working = order.Order{}
	return e.snapshot()
}

// Snapshot returns the current popup state, re-read from the store.
func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateIdle {
		e.refresh()
	}
	return e.snapshot()
}

// --- Internals (mu held) ---

func (e *Editor) changeQuantity(ctx context.Context, dish string, quantity int) (Snapshot, error) {
	if e.working.IsDraft() {
		return Snapshot{}, order.ErrItemNotFound
	}
	o, err := e.orders.ChangeQuantity(ctx, e.table, dish, quantity)
	if err != nil {
		return Snapshot{}, err
	}
	e.working = o
	return e.snapshot(), nil
}

// refresh re-reads the working copy so edits made outside the popup show up.
// A stored order that disappeared leaves a fresh draft behind.
func (e *Editor) refresh() {
	if o, ok := e.orders.GetOrderForTable(e.table); ok {
		e.working = o
		return
	}
	if !e.working.IsDraft() {
		e.working = newDraft(e.table)
	}
}

func (e *Editor) snapshot() Snapshot {
	s := Snapshot{State: e.state}
	if e.state == StateIdle {
		return s
	}
	s.Table = e.table
	s.Tab = enum.TabDetail
	if e.state == StateBrowsingCatalog {
		s.Tab = enum.TabCatalog
	}
	o := e.working.Clone()
	s.Order = &o
	s.Draft = o.IsDraft()
	return s
}

func newDraft(table string) order.Order {
	return order.Order{Table: table, Items: []order.Item{}, Status: enum.OrderStatusPending}
}
