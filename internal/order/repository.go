package order

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/restodash/api/internal/enum"
)

// Repository is the canonical order collection for the process. Each command
// runs under one lock and ends with an explicit save, so commands on the same
// table apply in the order they arrive.
type Repository struct {
	mu      sync.Mutex
	store   Store
	orders  []Order
	now     func() time.Time
	newID   func() uuid.UUID
	saveErr error
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithIDGenerator overrides order id generation.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(r *Repository) { r.newID = fn }
}

// NewRepository loads the collection from store. A load failure is logged and
// the repository starts empty.
func NewRepository(ctx context.Context, store Store, opts ...Option) *Repository {
	r := &Repository{store: store, now: time.Now, newID: uuid.New}
	for _, opt := range opts {
		opt(r)
	}

	orders, err := store.Load(ctx)
	if err != nil {
		log.Printf("ERROR: load orders, starting empty: %v", err)
		orders = nil
	}
	r.orders = make([]Order, 0, len(orders))
	for _, o := range orders {
		if o.Items == nil {
			o.Items = []Item{}
		}
		r.orders = append(r.orders, o)
	}
	return r
}

// List returns a copy of every order, in creation order.
func (r *Repository) List() []Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Order, len(r.orders))
	for i, o := range r.orders {
		out[i] = o.Clone()
	}
	return out
}

// FindByTable returns the order of a table. A free table is not an error.
func (r *Repository) FindByTable(table string) (Order, bool) {
	table = strings.TrimSpace(table)
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexByTable(table); i >= 0 {
		return r.orders[i].Clone(), true
	}
	return Order{}, false
}

// FindByID returns the order with the given id.
func (r *Repository) FindByID(id uuid.UUID) (Order, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexByID(id); i >= 0 {
		return r.orders[i].Clone(), true
	}
	return Order{}, false
}

// CreateForTable opens a pending order holding firstItem. It fails with
// ErrTableHasOrder when the table already has one.
func (r *Repository) CreateForTable(ctx context.Context, table, day string, firstItem Item) (Order, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return Order{}, ErrTableRequired
	}
	firstItem.Name = strings.TrimSpace(firstItem.Name)
	if firstItem.Name == "" {
		return Order{}, ErrDishRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexByTable(table) >= 0 {
		return Order{}, ErrTableHasOrder
	}
	o := r.create(table, day, firstItem)
	r.save(ctx)
	return o.Clone(), nil
}

// AddItem adds one unit of dish to the table's order, opening a pending order
// when the table has none. created reports which of the two happened.
// Dish availability is the caller's concern.
func (r *Repository) AddItem(ctx context.Context, table, day, dish string) (o Order, created bool, err error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return Order{}, false, ErrTableRequired
	}
	dish = strings.TrimSpace(dish)
	if dish == "" {
		return Order{}, false, ErrDishRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByTable(table)
	if i < 0 {
		o := r.create(table, day, Item{Name: dish, Quantity: 1})
		r.save(ctx)
		return o.Clone(), true, nil
	}

	cur := &r.orders[i]
	if j := cur.indexOf(dish); j >= 0 {
		cur.Items[j].Quantity++
	} else {
		cur.Items = append(cur.Items, Item{Name: dish, Quantity: 1})
	}
	r.save(ctx)
	return cur.Clone(), false, nil
}

// SetItemQuantity replaces a line's quantity. Anything below 1 removes the line.
func (r *Repository) SetItemQuantity(ctx context.Context, table, dish string, quantity int) (Order, error) {
	if quantity < 1 {
		return r.RemoveItem(ctx, table, dish)
	}
	table = strings.TrimSpace(table)

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByTable(table)
	if i < 0 {
		return Order{}, ErrOrderNotFound
	}
	cur := &r.orders[i]
	j := cur.indexOf(dish)
	if j < 0 {
		return Order{}, ErrItemNotFound
	}
	if cur.Items[j].Quantity != quantity {
		cur.Items[j].Quantity = quantity
		r.save(ctx)
	}
	return cur.Clone(), nil
}

// RemoveItem drops a line. Removing an absent line is a no-op, and an order
// whose last line is removed stays in the store with an empty cart.
func (r *Repository) RemoveItem(ctx context.Context, table, dish string) (Order, error) {
	table = strings.TrimSpace(table)
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByTable(table)
	if i < 0 {
		return Order{}, ErrOrderNotFound
	}
	cur := &r.orders[i]
	if j := cur.indexOf(dish); j >= 0 {
		cur.Items = append(cur.Items[:j:j], cur.Items[j+1:]...)
		r.save(ctx)
	}
	return cur.Clone(), nil
}

// SetStatus changes an order's status. Any known status is accepted here;
// narrowing to the editor progression is the caller's policy.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status string) (Order, error) {
	if !enum.IsOrderStatus(status) {
		return Order{}, ErrInvalidStatus
	}
	return r.update(ctx, id, func(o *Order) { o.Status = status })
}

// SetCustomer sets the free-text customer name.
func (r *Repository) SetCustomer(ctx context.Context, id uuid.UUID, name string) (Order, error) {
	return r.update(ctx, id, func(o *Order) { o.Customer = name })
}

// SetNotes sets the free-text notes.
func (r *Repository) SetNotes(ctx context.Context, id uuid.UUID, text string) (Order, error) {
	return r.update(ctx, id, func(o *Order) { o.Notes = text })
}

// SetEmployee sets who is serving the table.
func (r *Repository) SetEmployee(ctx context.Context, id uuid.UUID, name string) (Order, error) {
	return r.update(ctx, id, func(o *Order) { o.Employee = name })
}

// Fields is a partial edit of an order. Nil members are left untouched.
type Fields struct {
	Customer *string
	Notes    *string
	Employee *string
	Status   *string
}

// Empty reports whether f changes nothing.
func (f Fields) Empty() bool {
	return f.Customer == nil && f.Notes == nil && f.Employee == nil && f.Status == nil
}

// SetFields applies every non-nil member of f in a single write. An unknown
// status rejects the whole edit.
func (r *Repository) SetFields(ctx context.Context, id uuid.UUID, f Fields) (Order, error) {
	if f.Status != nil && !enum.IsOrderStatus(*f.Status) {
		return Order{}, ErrInvalidStatus
	}
	return r.update(ctx, id, func(o *Order) {
		if f.Customer != nil {
			o.Customer = *f.Customer
		}
		if f.Notes != nil {
			o.Notes = *f.Notes
		}
		if f.Employee != nil {
			o.Employee = *f.Employee
		}
		if f.Status != nil {
			o.Status = *f.Status
		}
	})
}

// DeleteByTable removes the table's order whatever its cart holds.
func (r *Repository) DeleteByTable(ctx context.Context, table string) (Order, error) {
	table = strings.TrimSpace(table)
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByTable(table)
	if i < 0 {
		return Order{}, ErrOrderNotFound
	}
	return r.deleteAt(ctx, i), nil
}

// DeleteByID removes the order with the given id.
func (r *Repository) DeleteByID(ctx context.Context, id uuid.UUID) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByID(id)
	if i < 0 {
		return Order{}, ErrOrderNotFound
	}
	return r.deleteAt(ctx, i), nil
}

// DeleteEmptyForTable is the order half of removing a table: an empty-cart
// order is deleted, a non-empty one is refused with *TableOccupiedError.
// deleted is false when the table had no order.
func (r *Repository) DeleteEmptyForTable(ctx context.Context, table string) (deleted bool, err error) {
	table = strings.TrimSpace(table)
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByTable(table)
	if i < 0 {
		return false, nil
	}
	if n := len(r.orders[i].Items); n > 0 {
		return false, &TableOccupiedError{Table: table, Items: n}
	}
	r.deleteAt(ctx, i)
	return true, nil
}

// LastSaveError returns the most recent persistence failure, or nil once a
// later save succeeds.
func (r *Repository) LastSaveError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveErr
}

// --- Internals (mu held) ---

func (r *Repository) create(table, day string, firstItem Item) Order {
	if firstItem.Quantity < 1 {
		firstItem.Quantity = 1
	}
	o := Order{
		ID:        r.newID(),
		Table:     table,
		Items:     []Item{firstItem},
		Status:    enum.OrderStatusPending,
		Day:       day,
		CreatedAt: r.now().UTC().Truncate(time.Millisecond),
	}
	r.orders = append(r.orders, o)
	return o
}

func (r *Repository) update(ctx context.Context, id uuid.UUID, fn func(*Order)) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByID(id)
	if i < 0 {
		return Order{}, ErrOrderNotFound
	}
	fn(&r.orders[i])
	r.save(ctx)
	return r.orders[i].Clone(), nil
}

func (r *Repository) deleteAt(ctx context.Context, i int) Order {
	o := r.orders[i]
	r.orders = append(r.orders[:i:i], r.orders[i+1:]...)
	r.save(ctx)
	return o
}

func (r *Repository) indexByTable(table string) int {
	for i, o := range r.orders {
		if o.Table == table {
			return i
		}
	}
	return -1
}

func (r *Repository) indexByID(id uuid.UUID) int {
	for i, o := range r.orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// save is fire-and-forget: a failure is logged and remembered, never returned.
func (r *Repository) save(ctx context.Context) {
	r.saveErr = r.store.Save(ctx, r.orders)
	if r.saveErr != nil {
		log.Printf("ERROR: persist orders: %v", r.saveErr)
	}
}
