package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/restodash/api/internal/enum"
	"github.com/restodash/api/internal/order"
)

// --- Mock ---

// fakeOrders keeps one order per table in memory and counts writes.
type fakeOrders struct {
	byTable map[string]order.Order
	creates int
	writes  int

	addFn func(table, dish string) error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{byTable: map[string]order.Order{}}
}

func (f *fakeOrders) GetOrderForTable(table string) (order.Order, bool) {
	o, ok := f.byTable[table]
	return o.Clone(), ok
}

func (f *fakeOrders) AddDishToTable(_ context.Context, table, dish string) (order.Order, bool, error) {
	if f.addFn != nil {
		if err := f.addFn(table, dish); err != nil {
			return order.Order{}, false, err
		}
	}
	f.writes++
	o, ok := f.byTable[table]
	if !ok {
		f.creates++
		o = order.Order{ID: uuid.New(), Table: table, Status: enum.OrderStatusPending}
	}
	found := false
	for i := range o.Items {
		if o.Items[i].Name == dish {
			o.Items[i].Quantity++
			found = true
		}
	}
	if !found {
		o.Items = append(o.Items, order.Item{Name: dish, Quantity: 1})
	}
	f.byTable[table] = o
	return o.Clone(), !ok, nil
}

func (f *fakeOrders) ChangeQuantity(_ context.Context, table, dish string, quantity int) (order.Order, error) {
	o, ok := f.byTable[table]
	if !ok {
		return order.Order{}, order.ErrOrderNotFound
	}
	f.writes++
	items := o.Items[:0:0]
	found := false
	for _, it := range o.Items {
		if it.Name == dish {
			found = true
			if quantity < 1 {
				continue
			}
			it.Quantity = quantity
		}
		items = append(items, it)
	}
	if !found {
		return order.Order{}, order.ErrItemNotFound
	}
	o.Items = items
	f.byTable[table] = o
	return o.Clone(), nil
}

func (f *fakeOrders) RemoveDish(ctx context.Context, table, dish string) (order.Order, error) {
	o, err := f.ChangeQuantity(ctx, table, dish, 0)
	if errors.Is(err, order.ErrItemNotFound) {
		return f.byTable[table].Clone(), nil
	}
	return o, err
}

func (f *fakeOrders) SetOrderField(_ context.Context, table, field, value string) (order.Order, error) {
	o, ok := f.byTable[table]
	if !ok {
		return order.Order{}, order.ErrOrderNotFound
	}
	f.writes++
	switch field {
	case enum.FieldCustomer:
		o.Customer = value
	case enum.FieldNotes:
		o.Notes = value
	case enum.FieldEmployee:
		o.Employee = value
	case enum.FieldStatus:
		o.Status = value
	default:
		return order.Order{}, order.ErrInvalidField
	}
	f.byTable[table] = o
	return o.Clone(), nil
}

// --- Tests ---

func TestSelectFreeTableThenClose(t *testing.T) {
	orders := newFakeOrders()
	e := New(orders)

	s := e.SelectTable("2")
	if s.State != StateTableSelected || s.Tab != enum.TabDetail {
		t.Fatalf("unexpected state: %+v", s)
	}
	if !s.Draft || s.Order == nil || s.Order.Status != enum.OrderStatusPending {
		t.Fatalf("expected a pending draft, got %+v", s)
	}

	if _, err := e.SwitchTab(enum.TabCatalog); err != nil {
		t.Fatalf("switch tab: %v", err)
	}
	if _, err := e.SetField(context.Background(), enum.FieldCustomer, "Rosa"); err != nil {
		t.Fatalf("set field on draft: %v", err)
	}

	s = e.Close()
	if s.State != StateIdle || s.Order != nil {
		t.Fatalf("expected idle, got %+v", s)
	}
	if orders.writes != 0 || len(orders.byTable) != 0 {
		t.Fatalf("closing a draft must not touch the store (writes=%d)", orders.writes)
	}
}

func TestFirstAddPromotesDraft(t *testing.T) {
	ctx := context.Background()
	orders := newFakeOrders()
	e := New(orders)

	e.SelectTable("5")
	if _, err := e.SetField(ctx, enum.FieldCustomer, " Rosa "); err != nil {
		t.Fatalf("set customer: %v", err)
	}
	if _, err := e.SetField(ctx, enum.FieldNotes, "sin ají"); err != nil {
		t.Fatalf("set notes: %v", err)
	}

	if _, err := e.AddDish(ctx, "Ceviche"); !errors.Is(err, ErrNotBrowsing) {
		t.Fatalf("expected ErrNotBrowsing on detail tab, got %v", err)
	}
	if _, err := e.SwitchTab(enum.TabCatalog); err != nil {
		t.Fatalf("switch tab: %v", err)
	}

	s, err := e.AddDish(ctx, "Ceviche")
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	if s.Draft || s.Order.ID == uuid.Nil {
		t.Fatalf("draft should be promoted, got %+v", s)
	}
	if s.Order.Customer != "Rosa" || s.Order.Notes != "sin ají" {
		t.Errorf("draft fields not carried over: %+v", s.Order)
	}

	s, err = e.AddDish(ctx, "Ceviche")
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if orders.creates != 1 {
		t.Fatalf("expected exactly one order created, got %d", orders.creates)
	}
	if len(s.Order.Items) != 1 || s.Order.Items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %+v", s.Order.Items)
	}
}

func TestAddDishErrorKeepsDraft(t *testing.T) {
	orders := newFakeOrders()
	orders.addFn = func(table, dish string) error { return errors.New("dish is not available today") }
	e := New(orders)

	e.SelectTable("1")
	e.SwitchTab(enum.TabCatalog)
	if _, err := e.AddDish(context.Background(), "Anticuchos"); err == nil {
		t.Fatal("expected error")
	}
	if s := e.Snapshot(); !s.Draft {
		t.Fatalf("draft should survive a failed add, got %+v", s)
	}
}

func TestSelectExistingOrder(t *testing.T) {
	ctx := context.Background()
	orders := newFakeOrders()
	orders.AddDishToTable(ctx, "3", "Lomo saltado")
	orders.writes = 0

	e := New(orders)
	s := e.SelectTable("3")
	if s.Draft || len(s.Order.Items) != 1 {
		t.Fatalf("expected the stored order, got %+v", s)
	}

	if s, _ = e.SwitchTab(enum.TabCatalog); s.State != StateBrowsingCatalog || s.Tab != enum.TabCatalog {
		t.Fatalf("unexpected state after tab switch: %+v", s)
	}
	if s, _ = e.SwitchTab(enum.TabDetail); s.State != StateTableSelected {
		t.Fatalf("unexpected state after tab switch back: %+v", s)
	}
	if orders.writes != 0 {
		t.Fatalf("tab switches must not write, got %d writes", orders.writes)
	}
}

func TestQuantityControls(t *testing.T) {
	ctx := context.Background()
	orders := newFakeOrders()
	orders.AddDishToTable(ctx, "3", "Ceviche")

	e := New(orders)
	e.SelectTable("3")

	s, err := e.Increment(ctx, "Ceviche")
	if err != nil || s.Order.Items[0].Quantity != 2 {
		t.Fatalf("increment: %+v, %v", s.Order, err)
	}
	s, err = e.ChangeQuantity(ctx, "Ceviche", 5)
	if err != nil || s.Order.Items[0].Quantity != 5 {
		t.Fatalf("change quantity: %+v, %v", s.Order, err)
	}
	s, err = e.ChangeQuantity(ctx, "Ceviche", 1)
	if err != nil {
		t.Fatalf("change quantity: %v", err)
	}
	s, err = e.Decrement(ctx, "Ceviche")
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if len(s.Order.Items) != 0 || s.Draft {
		t.Fatalf("expected empty cart on a stored order, got %+v", s)
	}
	if _, err := e.Increment(ctx, "Ceviche"); !errors.Is(err, order.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestRemoveDish(t *testing.T) {
	ctx := context.Background()
	orders := newFakeOrders()
	orders.AddDishToTable(ctx, "3", "Ceviche")
	orders.AddDishToTable(ctx, "3", "Chicha")

	e := New(orders)
	e.SelectTable("3")
	s, err := e.RemoveDish(ctx, "Ceviche")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(s.Order.Items) != 1 || s.Order.Items[0].Name != "Chicha" {
		t.Fatalf("unexpected items: %+v", s.Order.Items)
	}

	e.SelectTable("7")
	writes := orders.writes
	if _, err := e.RemoveDish(ctx, "Ceviche"); err != nil {
		t.Fatalf("remove on draft: %v", err)
	}
	if orders.writes != writes {
		t.Fatal("removing from a draft must not write")
	}
}

func TestSetFieldValidation(t *testing.T) {
	ctx := context.Background()
	e := New(newFakeOrders())
	e.SelectTable("1")

	if _, err := e.SetField(ctx, enum.FieldStatus, enum.OrderStatusCancelled); !errors.Is(err, order.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := e.SetField(ctx, "total", "0"); !errors.Is(err, order.ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
	s, err := e.SetField(ctx, enum.FieldStatus, enum.OrderStatusServed)
	if err != nil || s.Order.Status != enum.OrderStatusServed {
		t.Fatalf("set status on draft: %+v, %v", s.Order, err)
	}
}

func TestDraftStatusCarriedOnPromotion(t *testing.T) {
	ctx := context.Background()
	e := New(newFakeOrders())
	e.SelectTable("1")
	e.SetField(ctx, enum.FieldStatus, enum.OrderStatusInPreparation)
	e.SwitchTab(enum.TabCatalog)

	s, err := e.AddDish(ctx, "Ceviche")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if s.Order.Status != enum.OrderStatusInPreparation {
		t.Errorf("status = %q", s.Order.Status)
	}
}

func TestIdleRejectsCommands(t *testing.T) {
	ctx := context.Background()
	e := New(newFakeOrders())

	checks := map[string]error{}
	_, checks["switch"] = e.SwitchTab(enum.TabCatalog)
	_, checks["add"] = e.AddDish(ctx, "Ceviche")
	_, checks["quantity"] = e.ChangeQuantity(ctx, "Ceviche", 2)
	_, checks["increment"] = e.Increment(ctx, "Ceviche")
	_, checks["remove"] = e.RemoveDish(ctx, "Ceviche")
	_, checks["field"] = e.SetField(ctx, enum.FieldNotes, "x")
	for name, err := range checks {
		if !errors.Is(err, ErrNoTableSelected) {
			t.Errorf("%s: expected ErrNoTableSelected, got %v", name, err)
		}
	}

	e.SelectTable("1")
	if _, err := e.SwitchTab("kitchen"); !errors.Is(err, ErrInvalidTab) {
		t.Errorf("expected ErrInvalidTab, got %v", err)
	}
}

func TestSnapshotSeesOutsideChanges(t *testing.T) {
	ctx := context.Background()
	orders := newFakeOrders()
	e := New(orders)
	e.SelectTable("4")

	// Another view opens an order on the same table.
	orders.AddDishToTable(ctx, "4", "Ceviche")
	s := e.Snapshot()
	if s.Draft || len(s.Order.Items) != 1 {
		t.Fatalf("expected the new stored order, got %+v", s)
	}

	// And deletes it again.
	delete(orders.byTable, "4")
	s = e.Snapshot()
	if !s.Draft || len(s.Order.Items) != 0 {
		t.Fatalf("expected a fresh draft, got %+v", s)
	}
}
