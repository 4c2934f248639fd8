package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/restodash/api/internal/enum"
	"github.com/restodash/api/internal/storage"
	"github.com/shopspring/decimal"
)

func newTestRepo(t *testing.T, kv storage.KV) *Repository {
	t.Helper()
	r := NewRepository(context.Background(), kv)
	r.now = func() time.Time { return time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC) }
	return r
}

func TestNewRepository_SeedsWhenMissing(t *testing.T) {
	r := newTestRepo(t, storage.NewMemory())

	d, ok := r.Lookup(enum.DayMartes, "Ceviche mixto")
	if !ok {
		t.Fatal("expected seeded dish")
	}
	if !d.Price.Equal(decimal.RequireFromString("8")) {
		t.Errorf("price: got %s, want 8", d.Price)
	}
	for _, day := range enum.Days {
		if r.Day(day) == nil {
			t.Errorf("day %q missing from menu", day)
		}
	}
}

func TestNewRepository_FallsBackOnCorruptSlot(t *testing.T) {
	kv := storage.NewMemory()
	_ = kv.Put(context.Background(), enum.SlotMenuByDay, []byte(`{"lunes": [`))

	r := newTestRepo(t, kv)
	if _, ok := r.Lookup(enum.DayLunes, "Pollo a la brasa"); !ok {
		t.Fatal("expected default menu after corrupt slot")
	}
}

func TestNewRepository_LenientPrices(t *testing.T) {
	kv := storage.NewMemory()
	doc := `{"viernes":[
		{"id":7,"name":"Lomo saltado","price":14.5,"active":true},
		{"id":8,"name":"Jugo de maracuyá","price":"3.25","active":true},
		{"id":9,"name":"Tarta","price":"","active":false}
	],"feriado":[{"id":1,"name":"x","price":1}]}`
	_ = kv.Put(context.Background(), enum.SlotMenuByDay, []byte(doc))

	r := newTestRepo(t, kv)
	menu := r.Day(enum.DayViernes)
	if len(menu) != 3 {
		t.Fatalf("expected 3 dishes, got %d", len(menu))
	}
	want := []string{"14.5", "3.25", "0"}
	for i, d := range menu {
		if !d.Price.Equal(decimal.RequireFromString(want[i])) {
			t.Errorf("%s: price got %s, want %s", d.Name, d.Price, want[i])
		}
	}
	if _, ok := r.Menu()["feriado"]; ok {
		t.Error("unknown day key should be dropped")
	}
	if len(r.Active(enum.DayViernes)) != 2 {
		t.Errorf("expected 2 active dishes")
	}
}

func TestUpsert_CreateUpdateAndPersist(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	r := newTestRepo(t, kv)

	created, err := r.Upsert(ctx, enum.DayJueves, Dish{Name: " Ceviche ", Price: decimal.NewFromInt(8), Active: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 || created.Name != "Ceviche" {
		t.Errorf("unexpected created dish: %+v", created)
	}
	if len(created.History) != 1 || created.History[0].Action != ActionCreated {
		t.Errorf("expected created history, got %+v", created.History)
	}

	created.Price = decimal.NewFromInt(10)
	updated, err := r.Upsert(ctx, enum.DayJueves, created)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.History) != 2 || updated.History[1].Action != ActionUpdated {
		t.Errorf("expected updated history, got %+v", updated.History)
	}

	// A second repository over the same slot sees the write.
	reloaded := NewRepository(ctx, kv)
	d, ok := reloaded.Lookup(enum.DayJueves, "Ceviche")
	if !ok || !d.Price.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("reloaded dish: %+v ok=%v", d, ok)
	}
}

func TestUpsert_Validation(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t, storage.NewMemory())

	if _, err := r.Upsert(ctx, enum.DayLunes, Dish{Name: "  "}); !errors.Is(err, ErrDishName) {
		t.Errorf("expected ErrDishName, got %v", err)
	}
	if _, err := r.Upsert(ctx, enum.DayLunes, Dish{Name: "x", Price: decimal.NewFromInt(-1)}); !errors.Is(err, ErrDishPrice) {
		t.Errorf("expected ErrDishPrice, got %v", err)
	}
	if _, err := r.Upsert(ctx, enum.DayLunes, Dish{Name: "Pollo a la brasa"}); !errors.Is(err, ErrDuplicateDish) {
		t.Errorf("expected ErrDuplicateDish, got %v", err)
	}
	if _, err := r.Upsert(ctx, "holiday", Dish{Name: "x"}); !errors.Is(err, enum.ErrInvalidDay) {
		t.Errorf("expected ErrInvalidDay, got %v", err)
	}
}

func TestRemoveAndToggles(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t, storage.NewMemory())

	d, err := r.SetActive(ctx, enum.DayLunes, "Pollo a la brasa", false)
	if err != nil || d.Active {
		t.Fatalf("SetActive: %+v %v", d, err)
	}
	if len(r.Active(enum.DayLunes)) != 0 {
		t.Error("inactive dish must not be listed as active")
	}
	if d, _ := r.SetSpecial(ctx, enum.DayLunes, "Pollo a la brasa", false); d.Special {
		t.Error("special flag not cleared")
	}

	if err := r.Remove(ctx, enum.DayLunes, "Pollo a la brasa"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := r.Remove(ctx, enum.DayLunes, "Pollo a la brasa"); !errors.Is(err, ErrDishNotFound) {
		t.Errorf("second remove: expected ErrDishNotFound, got %v", err)
	}
	if _, err := r.SetActive(ctx, enum.DayLunes, "nope", true); !errors.Is(err, ErrDishNotFound) {
		t.Errorf("expected ErrDishNotFound, got %v", err)
	}
}

func TestDay_ReturnsCopy(t *testing.T) {
	r := newTestRepo(t, storage.NewMemory())
	menu := r.Day(enum.DayLunes)
	menu[0].Price = decimal.NewFromInt(999)

	d, _ := r.Lookup(enum.DayLunes, "Pollo a la brasa")
	if d.Price.Equal(decimal.NewFromInt(999)) {
		t.Fatal("Day must not expose internal state")
	}
}

type failingKV struct{ storage.KV }

func (failingKV) Put(context.Context, string, []byte) error { return errors.New("quota exceeded") }

func TestSaveFailureIsRecorded(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t, failingKV{storage.NewMemory()})

	if _, err := r.SetActive(ctx, enum.DayLunes, "Pollo a la brasa", false); err != nil {
		t.Fatalf("command should succeed despite save failure: %v", err)
	}
	if r.LastSaveError() == nil {
		t.Fatal("expected LastSaveError to be set")
	}
}

func TestDayMenuPrice(t *testing.T) {
	m := DayMenu{{Name: "A", Price: decimal.NewFromInt(3)}}
	if p, ok := m.Price("A"); !ok || !p.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Price(A) = %s, %v", p, ok)
	}
	if p, ok := m.Price("B"); ok || !p.IsZero() {
		t.Errorf("Price(B) = %s, %v", p, ok)
	}
}

func TestSeed(t *testing.T) {
	kv := storage.NewMemory()
	if err := Seed(context.Background(), kv); err != nil {
		t.Fatal(err)
	}
	raw, _ := kv.Get(context.Background(), enum.SlotMenuByDay)
	var m Menu
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("seeded slot not decodable: %v", err)
	}
	if len(m[enum.DayLunes]) != 1 {
		t.Errorf("expected one Monday dish")
	}
}
