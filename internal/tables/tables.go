// Package tables keeps the dining-room table labels.
package tables

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/restodash/api/internal/enum"
	"github.com/restodash/api/internal/storage"
)

// ErrUnknownTable is returned when removing a label that is not in the set.
var ErrUnknownTable = errors.New("unknown table")

// Set is the ordered list of table labels, persisted in the tables slot.
type Set struct {
	mu      sync.Mutex
	kv      storage.KV
	labels  []string
	saveErr error
}

// Defaults returns the labels "1".."n".
func Defaults(n int) []string {
	labels := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		labels = append(labels, strconv.Itoa(i))
	}
	return labels
}

// Load reads the tables slot, falling back to Defaults(defaultCount) when it
// is missing or unreadable.
func Load(ctx context.Context, kv storage.KV, defaultCount int) *Set {
	var labels []string
	err := storage.LoadJSON(ctx, kv, enum.SlotTables, &labels)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		labels = Defaults(defaultCount)
	case err != nil:
		log.Printf("WARNING: tables slot unreadable, using defaults: %v", err)
		labels = Defaults(defaultCount)
	}
	return &Set{kv: kv, labels: dedupe(labels)}
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, l := range in {
		l = strings.TrimSpace(l)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

// List returns the labels in display order.
func (s *Set) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.labels...)
}

// Contains reports whether label is in the set.
func (s *Set) Contains(label string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index(label) >= 0
}

// Add appends the next numeric label: one past the highest numeric label.
func (s *Set) Add(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := 1
	for _, l := range s.labels {
		if n, err := strconv.Atoi(l); err == nil && n >= next {
			next = n + 1
		}
	}
	label := strconv.Itoa(next)
	s.labels = append(s.labels, label)
	s.save(ctx)
	return label
}

// Remove drops label. Checking the table's order is the caller's job.
func (s *Set) Remove(ctx context.Context, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(label)
	if i < 0 {
		return ErrUnknownTable
	}
	s.labels = append(s.labels[:i:i], s.labels[i+1:]...)
	s.save(ctx)
	return nil
}

// LastSaveError returns the most recent persistence failure.
func (s *Set) LastSaveError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveErr
}

func (s *Set) index(label string) int {
	for i, l := range s.labels {
		if l == label {
			return i
		}
	}
	return -1
}

func (s *Set) save(ctx context.Context) {
	s.saveErr = storage.SaveJSON(ctx, s.kv, enum.SlotTables, s.labels)
	if s.saveErr != nil {
		log.Printf("ERROR: persist tables: %v", s.saveErr)
	}
}
