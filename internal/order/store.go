package order

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/restodash/api/internal/enum"
	"github.com/restodash/api/internal/storage"
)

// Store is the persistence port of the repository: the whole collection is
// read once at start and written back after every command.
type Store interface {
	Load(ctx context.Context) ([]Order, error)
	Save(ctx context.Context, orders []Order) error
}

// SlotStore keeps the collection as one JSON array in a storage slot.
type SlotStore struct {
	kv  storage.KV
	key string
}

// NewSlotStore returns a Store over slot key of kv.
func NewSlotStore(kv storage.KV, key string) *SlotStore {
	return &SlotStore{kv: kv, key: key}
}

// Load reads and migrates the collection. A missing or corrupt slot yields an
// empty collection; records that cannot be read are skipped.
func (s *SlotStore) Load(ctx context.Context) ([]Order, error) {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return []Order{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read orders: %w", err)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		log.Printf("WARNING: orders slot unreadable, starting empty: %v", err)
		return []Order{}, nil
	}

	orders := make([]Order, 0, len(raws))
	for i, raw := range raws {
		o, err := decodeRecord(raw)
		if err != nil {
			log.Printf("WARNING: skipping order record %d: %v", i, err)
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// Save writes the collection in the canonical shape.
func (s *SlotStore) Save(ctx context.Context, orders []Order) error {
	return storage.SaveJSON(ctx, s.kv, s.key, orders)
}

// --- Legacy migration ---

// record accepts both the current field names and the ones older dashboards
// wrote (mesa, cliente, platillos, estado, notas, fecha, dia, empleado).
type record struct {
	ID        json.RawMessage `json:"id"`
	Table     json.RawMessage `json:"table"`
	Mesa      json.RawMessage `json:"mesa"`
	Customer  string          `json:"customer"`
	Cliente   string          `json:"cliente"`
	Employee  string          `json:"employee"`
	Empleado  string          `json:"empleado"`
	Items     json.RawMessage `json:"items"`
	Platillos json.RawMessage `json:"platillos"`
	Status    string          `json:"status"`
	Estado    string          `json:"estado"`
	Notes     string          `json:"notes"`
	Notas     string          `json:"notas"`
	Day       string          `json:"day"`
	Dia       string          `json:"dia"`
	CreatedAt string          `json:"createdAt"`
	Fecha     string          `json:"fecha"`
}

type legacyItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Cantidad int    `json:"cantidad"`
}

var legacyStatuses = map[string]string{
	"pendiente":   enum.OrderStatusPending,
	"preparacion": enum.OrderStatusInPreparation,
	"servido":     enum.OrderStatusServed,
	"pagado":      enum.OrderStatusPaid,
	"cancelado":   enum.OrderStatusCancelled,
}

var legacyTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func decodeRecord(raw json.RawMessage) (Order, error) {
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Order{}, err
	}

	items, err := decodeItems(firstRaw(rec.Items, rec.Platillos))
	if err != nil {
		return Order{}, fmt.Errorf("items: %w", err)
	}

	o := Order{
		ID:        decodeID(scalar(rec.ID)),
		Table:     scalar(firstRaw(rec.Table, rec.Mesa)),
		Customer:  first(rec.Customer, rec.Cliente),
		Employee:  first(rec.Employee, rec.Empleado),
		Items:     items,
		Status:    decodeStatus(first(rec.Status, rec.Estado)),
		Notes:     first(rec.Notes, rec.Notas),
		CreatedAt: decodeTime(first(rec.CreatedAt, rec.Fecha)),
	}
	if day, err := enum.ParseDay(first(rec.Day, rec.Dia)); err == nil {
		o.Day = day
	}
	return o, nil
}

// decodeItems normalizes string lists, comma-joined strings and
// {name, quantity|cantidad} objects into unique lines with quantity >= 1.
func decodeItems(raw json.RawMessage) ([]Item, error) {
	items := []Item{}
	if isNull(raw) {
		return items, nil
	}

	var joined string
	var elems []json.RawMessage
	switch {
	case json.Unmarshal(raw, &joined) == nil:
		for _, n := range strings.Split(joined, ",") {
			items = mergeItem(items, n, 1)
		}
	case json.Unmarshal(raw, &elems) == nil:
		for _, e := range elems {
			var name string
			if json.Unmarshal(e, &name) == nil {
				items = mergeItem(items, name, 1)
				continue
			}
			var li legacyItem
			if err := json.Unmarshal(e, &li); err != nil {
				return nil, err
			}
			qty := li.Quantity
			if qty == 0 {
				qty = li.Cantidad
			}
			items = mergeItem(items, li.Name, qty)
		}
	default:
		return nil, errors.New("unsupported items shape")
	}
	return items, nil
}

func mergeItem(items []Item, name string, qty int) []Item {
	name = strings.TrimSpace(name)
	if name == "" {
		return items
	}
	if qty < 1 {
		qty = 1
	}
	for i := range items {
		if items[i].Name == name {
			items[i].Quantity += qty
			return items
		}
	}
	return append(items, Item{Name: name, Quantity: qty})
}

func decodeID(s string) uuid.UUID {
	if s == "" {
		return uuid.New()
	}
	if id, err := uuid.Parse(s); err == nil {
		return id
	}
	// Stable across reloads so reports keep grouping the same order.
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(s))
}

func decodeStatus(s string) string {
	s = strings.TrimSpace(s)
	if enum.IsOrderStatus(s) {
		return s
	}
	if v, ok := legacyStatuses[strings.ToLower(s)]; ok {
		return v
	}
	return enum.OrderStatusPending
}

func decodeTime(s string) time.Time {
	for _, layout := range legacyTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// scalar renders a JSON string or number as a plain string.
func scalar(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func firstRaw(a, b json.RawMessage) json.RawMessage {
	if !isNull(a) {
		return a
	}
	return b
}

func first(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
