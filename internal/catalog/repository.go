package catalog

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

// History actions.
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionEnabled  = "enabled"
	ActionDisabled = "disabled"
)

// Errors returned by the catalog repository.
var (
	ErrDishNotFound  = errors.New("dish not found")
	ErrDishName      = errors.New("dish name is required")
	ErrDishPrice     = errors.New("price must be >= 0")
	ErrDuplicateDish = errors.New("a dish with that name already exists for this day")
)

// Repository holds the day-keyed menu and mirrors it to the menu slot after
// every write.
type Repository struct {
	mu      sync.RWMutex
	kv      storage.KV
	menu    Menu
	nextID  int64
	now     func() time.Time
	saveErr error
}

// NewRepository loads the menu slot, falling back to DefaultMenu when the slot
// is missing or cannot be decoded.
func NewRepository(ctx context.Context, kv storage.KV) *Repository {
	r := &Repository{kv: kv, now: time.Now}

	var menu Menu
	err := storage.LoadJSON(ctx, kv, enum.SlotMenuByDay, &menu)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		menu = DefaultMenu()
	case err != nil:
		log.Printf("WARNING: menu slot unreadable, using default menu: %v", err)
		menu = DefaultMenu()
	}
	r.menu = normalize(menu)

	for _, dishes := range r.menu {
		for _, d := range dishes {
			if d.ID >= r.nextID {
				r.nextID = d.ID + 1
			}
		}
	}
	if r.nextID == 0 {
		r.nextID = 1
	}
	return r
}

// normalize drops unknown day keys and adds empty lists for missing ones.
func normalize(m Menu) Menu {
	out := Menu{}
	for _, day := range enum.Days {
		out[day] = DayMenu{}
	}
	for day, dishes := range m {
		if !enum.IsDay(day) {
			log.Printf("WARNING: dropping menu for unknown day %q", day)
			continue
		}
		if dishes != nil {
			out[day] = dishes
		}
	}
	return out
}

// Menu returns a copy of the whole catalog.
func (r *Repository) Menu() Menu {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.menu.clone()
}

// Day returns a copy of one day's menu. Unknown days yield an empty menu.
func (r *Repository) Day(day string) DayMenu {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.menu[day].clone()
}

// Lookup finds a dish by (day, name).
func (r *Repository) Lookup(day, name string) (Dish, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.menu[day].Find(name)
}

// Active lists the orderable dishes of a day.
func (r *Repository) Active(day string) DayMenu {
	return r.Day(day).Active()
}

// Upsert creates or replaces a dish. A dish with a known ID is replaced in
// place (renames allowed); otherwise it is appended.
func (r *Repository) Upsert(ctx context.Context, day string, d Dish) (Dish, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return Dish{}, ErrDishName
	}
	if d.Price.IsNegative() {
		return Dish{}, ErrDishPrice
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dishes, ok := r.menu[day]
	if !ok {
		return Dish{}, enum.ErrInvalidDay
	}

	idx := -1
	for i, existing := range dishes {
		if d.ID != 0 && existing.ID == d.ID {
			idx = i
			continue
		}
		if existing.Name == d.Name {
			return Dish{}, ErrDuplicateDish
		}
	}

	date := r.now().Format("2006-01-02")
	if idx >= 0 {
		d.History = append(append([]HistoryEntry(nil), dishes[idx].History...), HistoryEntry{Date: date, Action: ActionUpdated})
		dishes[idx] = d
	} else {
		if d.ID == 0 {
			d.ID = r.nextID
		}
		if d.ID >= r.nextID {
			r.nextID = d.ID + 1
		}
		d.History = []HistoryEntry{{Date: date, Action: ActionCreated}}
		dishes = append(dishes, d)
	}
	r.menu[day] = dishes
	r.save(ctx)
	return d, nil
}

// Remove deletes a dish from a day. Open orders that reference it keep the
// line; their totals price it at zero from then on.
func (r *Repository) Remove(ctx context.Context, day, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dishes := r.menu[day]
	for i, d := range dishes {
		if d.Name == name {
			r.menu[day] = append(dishes[:i:i], dishes[i+1:]...)
			r.save(ctx)
			return nil
		}
	}
	return ErrDishNotFound
}

// SetActive toggles whether a dish can be ordered.
func (r *Repository) SetActive(ctx context.Context, day, name string, active bool) (Dish, error) {
	action := ActionDisabled
	if active {
		action = ActionEnabled
	}
	return r.mutate(ctx, day, name, action, func(d *Dish) { d.Active = active })
}

// SetSpecial toggles the cosmetic "special of the day" flag.
func (r *Repository) SetSpecial(ctx context.Context, day, name string, special bool) (Dish, error) {
	return r.mutate(ctx, day, name, ActionUpdated, func(d *Dish) { d.Special = special })
}

func (r *Repository) mutate(ctx context.Context, day, name, action string, fn func(*Dish)) (Dish, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dishes := r.menu[day]
	for i := range dishes {
		if dishes[i].Name != name {
			continue
		}
		fn(&dishes[i])
		dishes[i].History = append(dishes[i].History, HistoryEntry{Date: r.now().Format("2006-01-02"), Action: action})
		r.save(ctx)
		return dishes[i], nil
	}
	return Dish{}, ErrDishNotFound
}

// LastSaveError returns the most recent persistence failure, nil once a later
// write succeeds.
func (r *Repository) LastSaveError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saveErr
}

// save must be called with mu held. Failures are logged, not returned.
func (r *Repository) save(ctx context.Context) {
	r.saveErr = storage.SaveJSON(ctx, r.kv, enum.SlotMenuByDay, r.menu)
	if r.saveErr != nil {
		log.Printf("ERROR: persist menu: %v", r.saveErr)
	}
}

// Seed writes DefaultMenu to kv unconditionally.
func Seed(ctx context.Context, kv storage.KV) error {
	if err := storage.SaveJSON(ctx, kv, enum.SlotMenuByDay, DefaultMenu()); err != nil {
		return fmt.Errorf("seed menu: %w", err)
	}
	return nil
}
