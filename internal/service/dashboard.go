package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/restodash/api/internal/catalog"
	"github.com/restodash/api/internal/enum"
	"github.com/restodash/api/internal/order"
	"github.com/restodash/api/internal/tables"
	"github.com/restodash/api/internal/ws"
)

// Errors returned by the dashboard.
var (
	ErrDishNotFound    = errors.New("dish is not on the menu for this day")
	ErrDishUnavailable = errors.New("dish is not available today")
)

// Notifier publishes change events to connected dashboard views.
// Satisfied by *ws.Hub.
type Notifier interface {
	Broadcast(topic string, event ws.Event) bool
}

// TableView pairs a table label with its order, nil when the table is free.
type TableView struct {
	Table string       `json:"table"`
	Order *order.Order `json:"order"`
}

// Dashboard is the command surface the dashboard UI drives. It composes the
// order store, menu catalog and table set, and owns the selected menu day.
type Dashboard struct {
	orders   *order.Repository
	menu     *catalog.Repository
	tables   *tables.Set
	notifier Notifier

	// cmdMu serializes commands that check table membership and then write
	// orders or tables, so a table cannot lose its label while an order is
	// being opened on it.
	cmdMu sync.Mutex

	mu  sync.RWMutex
	day string
}

// NewDashboard creates a Dashboard. day is the initial menu day; empty or
// unknown values fall back to today's weekday. notifier may be nil.
func NewDashboard(orders *order.Repository, menu *catalog.Repository, set *tables.Set, notifier Notifier, day string) *Dashboard {
	selected, err := enum.ParseDay(day)
	if err != nil {
		if day != "" {
			log.Printf("WARNING: unknown menu day %q, using today", day)
		}
		selected = enum.DayOf(time.Now())
	}
	return &Dashboard{
		orders:   orders,
		menu:     menu,
		tables:   set,
		notifier: notifier,
		day:      selected,
	}
}

// --- Selected day ---

// SelectedDay returns the weekday key new orders are priced against.
func (d *Dashboard) SelectedDay() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.day
}

// SelectDay switches the menu day. Accents and case are ignored.
func (d *Dashboard) SelectDay(day string) (string, error) {
	key, err := enum.ParseDay(day)
	if err != nil {
		return "", err
	}
	d.mu.Lock()
	d.day = key
	d.mu.Unlock()
	return key, nil
}

// --- Queries ---

// ListTables returns every table in label order with its order, if any.
func (d *Dashboard) ListTables() []TableView {
	byTable := make(map[string]order.Order)
	for _, o := range d.orders.List() {
		byTable[o.Table] = o
	}

	labels := d.tables.List()
	views := make([]TableView, 0, len(labels))
	for _, label := range labels {
		v := TableView{Table: label}
		if o, ok := byTable[label]; ok {
			v.Order = &o
		}
		views = append(views, v)
	}
	return views
}

// GetOrderForTable returns the table's order. A free table is not an error.
func (d *Dashboard) GetOrderForTable(table string) (order.Order, bool) {
	return d.orders.FindByTable(table)
}

// ListOrders returns every order, or only those in status when it is set.
func (d *Dashboard) ListOrders(status string) ([]order.Order, error) {
	all := d.orders.List()
	if status == "" {
		return all, nil
	}
	if !enum.IsOrderStatus(status) {
		return nil, order.ErrInvalidStatus
	}
	out := make([]order.Order, 0, len(all))
	for _, o := range all {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

// ComputeTotal prices o against the menu of its own day, or the selected day
// for orders that never recorded one. Nothing is cached.
func (d *Dashboard) ComputeTotal(o order.Order) order.Totals {
	return order.ComputeTotal(o, d.menu.Day(d.pricingDay(o)))
}

// Orders returns every order with the menu each one is priced against, for
// reporting.
func (d *Dashboard) Orders() ([]order.Order, catalog.Menu) {
	return d.orders.List(), d.menu.Menu()
}

func (d *Dashboard) pricingDay(o order.Order) string {
	if o.Day != "" {
		return o.Day
	}
	return d.SelectedDay()
}

// --- Cart commands ---

// AddDishToTable adds one unit of dish to the table's cart, opening an order
// when the table is free; created reports which happened. The dish must be
// active on the cart's menu day.
func (d *Dashboard) AddDishToTable(ctx context.Context, table, dish string) (o order.Order, created bool, err error) {
	d.cmdMu.Lock()
	defer d.cmdMu.Unlock()

	table = strings.TrimSpace(table)
	if !d.tables.Contains(table) {
		return order.Order{}, false, tables.ErrUnknownTable
	}

	day := d.SelectedDay()
	if existing, ok := d.orders.FindByTable(table); ok && existing.Day != "" {
		day = existing.Day
	}

	found, ok := d.menu.Lookup(day, strings.TrimSpace(dish))
	if !ok {
		return order.Order{}, false, ErrDishNotFound
	}
	if !found.Active {
		return order.Order{}, false, ErrDishUnavailable
	}

	o, created, err = d.orders.AddItem(ctx, table, day, found.Name)
	if err != nil {
		return order.Order{}, false, fmt.Errorf("add dish: %w", err)
	}
	if created {
		d.publish(enum.TopicOrders, enum.EventOrderCreated, o)
	} else {
		d.publish(enum.TopicOrders, enum.EventOrderUpdated, o)
	}
	return o, created, nil
}

// ChangeQuantity sets a line's quantity. Zero or less removes the line but
// keeps the order.
func (d *Dashboard) ChangeQuantity(ctx context.Context, table, dish string, quantity int) (order.Order, error) {
	o, err := d.orders.SetItemQuantity(ctx, table, dish, quantity)
	if err != nil {
		return order.Order{}, err
	}
	d.publish(enum.TopicOrders, enum.EventOrderUpdated, o)
	return o, nil
}

// RemoveDish drops a line from the table's cart.
func (d *Dashboard) RemoveDish(ctx context.Context, table, dish string) (order.Order, error) {
	o, err := d.orders.RemoveItem(ctx, table, dish)
	if err != nil {
		return order.Order{}, err
	}
	d.publish(enum.TopicOrders, enum.EventOrderUpdated, o)
	return o, nil
}

// --- Order lifecycle ---

// SetOrderField edits customer, notes, employee or status. Only the editor
// progression is accepted for status; cancel has its own command.
func (d *Dashboard) SetOrderField(ctx context.Context, table, field, value string) (order.Order, error) {
	var f order.Fields
	switch field {
	case enum.FieldCustomer:
		f.Customer = &value
	case enum.FieldNotes:
		f.Notes = &value
	case enum.FieldEmployee:
		f.Employee = &value
	case enum.FieldStatus:
		f.Status = &value
	default:
		return order.Order{}, order.ErrInvalidField
	}
	return d.SetOrderFields(ctx, table, f)
}

// SetOrderFields applies several field edits as one command. Everything is
// checked before anything is written, so a rejected edit leaves the order as
// it was.
func (d *Dashboard) SetOrderFields(ctx context.Context, table string, f order.Fields) (order.Order, error) {
	if f.Status != nil && !enum.IsEditorStatus(*f.Status) {
		return order.Order{}, order.ErrInvalidStatus
	}
	cur, ok := d.orders.FindByTable(table)
	if !ok {
		return order.Order{}, order.ErrOrderNotFound
	}
	if f.Empty() {
		return cur, nil
	}
	if f.Customer != nil {
		v := strings.TrimSpace(*f.Customer)
		f.Customer = &v
	}
	if f.Employee != nil {
		v := strings.TrimSpace(*f.Employee)
		f.Employee = &v
	}

	o, err := d.orders.SetFields(ctx, cur.ID, f)
	if err != nil {
		return order.Order{}, err
	}
	d.publish(enum.TopicOrders, enum.EventOrderUpdated, o)
	return o, nil
}

// AdvanceStatus moves the order one step along pending, in-preparation,
// served, paid. Paid and cancelled orders are returned unchanged.
func (d *Dashboard) AdvanceStatus(ctx context.Context, table string) (order.Order, error) {
	cur, ok := d.orders.FindByTable(table)
	if !ok {
		return order.Order{}, order.ErrOrderNotFound
	}
	next := enum.NextStatus(cur.Status)
	if next == cur.Status {
		return cur, nil
	}
	o, err := d.orders.SetStatus(ctx, cur.ID, next)
	if err != nil {
		return order.Order{}, err
	}
	d.publish(enum.TopicOrders, enum.EventOrderUpdated, o)
	return o, nil
}

// CancelOrder marks the table's order cancelled. Paid orders cannot be cancelled.
func (d *Dashboard) CancelOrder(ctx context.Context, table string) (order.Order, error) {
	cur, ok := d.orders.FindByTable(table)
	if !ok {
		return order.Order{}, order.ErrOrderNotFound
	}
	switch cur.Status {
	case enum.OrderStatusCancelled:
		return cur, nil
	case enum.OrderStatusPaid:
		return order.Order{}, order.ErrInvalidStatus
	}
	o, err := d.orders.SetStatus(ctx, cur.ID, enum.OrderStatusCancelled)
	if err != nil {
		return order.Order{}, err
	}
	d.publish(enum.TopicOrders, enum.EventOrderUpdated, o)
	return o, nil
}

// DeleteOrder removes the table's order whatever its cart holds.
func (d *Dashboard) DeleteOrder(ctx context.Context, table string) error {
	o, err := d.orders.DeleteByTable(ctx, table)
	if err != nil {
		return err
	}
	d.publish(enum.TopicOrders, enum.EventOrderDeleted, deletedPayload{ID: o.ID, Table: o.Table})
	return nil
}

// --- Tables ---

// AddTable appends the next numeric label and returns it.
func (d *Dashboard) AddTable(ctx context.Context) string {
	d.cmdMu.Lock()
	defer d.cmdMu.Unlock()

	label := d.tables.Add(ctx)
	d.publish(enum.TopicOrders, enum.EventTableAdded, tablePayload{Table: label})
	return label
}

// RemoveTable removes a table. An empty-cart order goes with it; a table whose
// cart has items is refused with *order.TableOccupiedError and left as is.
func (d *Dashboard) RemoveTable(ctx context.Context, table string) error {
	d.cmdMu.Lock()
	defer d.cmdMu.Unlock()

	table = strings.TrimSpace(table)
	if !d.tables.Contains(table) {
		return tables.ErrUnknownTable
	}

	cur, hadOrder := d.orders.FindByTable(table)
	deleted, err := d.orders.DeleteEmptyForTable(ctx, table)
	if err != nil {
		return err
	}
	if err := d.tables.Remove(ctx, table); err != nil {
		return err
	}

	if deleted && hadOrder {
		d.publish(enum.TopicOrders, enum.EventOrderDeleted, deletedPayload{ID: cur.ID, Table: table})
	}
	d.publish(enum.TopicOrders, enum.EventTableRemoved, tablePayload{Table: table})
	return nil
}

// --- Menu ---

// Menu returns a day's dishes; activeOnly drops the ones that cannot be ordered.
func (d *Dashboard) Menu(day string, activeOnly bool) catalog.DayMenu {
	if activeOnly {
		return d.menu.Active(day)
	}
	return d.menu.Day(day)
}

// UpsertDish creates or replaces a dish on a day's menu.
func (d *Dashboard) UpsertDish(ctx context.Context, day string, dish catalog.Dish) (catalog.Dish, error) {
	saved, err := d.menu.Upsert(ctx, day, dish)
	if err != nil {
		return catalog.Dish{}, err
	}
	d.publish(enum.TopicMenu, enum.EventMenuUpdated, menuPayload{Day: day, Dish: saved.Name})
	return saved, nil
}

// RemoveMenuDish deletes a dish from a day's menu. Carts holding it keep the
// line and price it at zero.
func (d *Dashboard) RemoveMenuDish(ctx context.Context, day, name string) error {
	if err := d.menu.Remove(ctx, day, name); err != nil {
		return err
	}
	d.publish(enum.TopicMenu, enum.EventMenuUpdated, menuPayload{Day: day, Dish: name})
	return nil
}

// SetDishActive toggles whether a dish can be added to carts.
func (d *Dashboard) SetDishActive(ctx context.Context, day, name string, active bool) (catalog.Dish, error) {
	dish, err := d.menu.SetActive(ctx, day, name, active)
	if err != nil {
		return catalog.Dish{}, err
	}
	d.publish(enum.TopicMenu, enum.EventMenuUpdated, menuPayload{Day: day, Dish: name})
	return dish, nil
}

// SetDishSpecial toggles the "special of the day" flag.
func (d *Dashboard) SetDishSpecial(ctx context.Context, day, name string, special bool) (catalog.Dish, error) {
	dish, err := d.menu.SetSpecial(ctx, day, name, special)
	if err != nil {
		return catalog.Dish{}, err
	}
	d.publish(enum.TopicMenu, enum.EventMenuUpdated, menuPayload{Day: day, Dish: name})
	return dish, nil
}

// PersistWarning returns the latest unrecovered save failure among the named
// slots (enum.SlotOrders, enum.SlotMenuByDay, enum.SlotTables), or among all
// three when none is named.
func (d *Dashboard) PersistWarning(slots ...string) error {
	if len(slots) == 0 {
		slots = []string{enum.SlotOrders, enum.SlotMenuByDay, enum.SlotTables}
	}
	for _, slot := range slots {
		var err error
		switch slot {
		case enum.SlotOrders:
			err = d.orders.LastSaveError()
		case enum.SlotMenuByDay:
			err = d.menu.LastSaveError()
		case enum.SlotTables:
			err = d.tables.LastSaveError()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// --- Events ---

type tablePayload struct {
	Table string `json:"table"`
}

type deletedPayload struct {
	ID    uuid.UUID `json:"id"`
	Table string    `json:"table"`
}

type menuPayload struct {
	Day  string `json:"day"`
	Dish string `json:"dish"`
}

func (d *Dashboard) publish(topic, eventType string, payload any) {
	if d.notifier == nil {
		return
	}
	event, err := ws.NewEvent(eventType, payload)
	if err != nil {
		log.Printf("ERROR: encode %s event: %v", eventType, err)
		return
	}
	if !d.notifier.Broadcast(topic, event) {
		log.Printf("WARNING: change feed full, dropped %s event", eventType)
	}
}
