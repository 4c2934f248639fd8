// Package storage is the slot persistence primitive shared by every
// collection: one named JSON document per key, no transactions across keys.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Errors returned by slot backends.
var (
	ErrNotFound   = errors.New("slot not found")
	ErrInvalidKey = errors.New("invalid slot key")
)

// KV reads and writes named slots.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Backend is a KV that owns a connection or file handle.
type Backend interface {
	KV
	Close() error
}

// LoadJSON decodes slot key into v. It returns ErrNotFound for a missing slot
// and a wrapped decode error for a corrupt one; callers pick their fallback.
func LoadJSON(ctx context.Context, kv KV, key string, v any) error {
	data, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode slot %q: %w", key, err)
	}
	return nil
}

// SaveJSON encodes v and writes it to slot key.
func SaveJSON(ctx context.Context, kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode slot %q: %w", key, err)
	}
	if err := kv.Put(ctx, key, data); err != nil {
		return fmt.Errorf("write slot %q: %w", key, err)
	}
	return nil
}

func validKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\.`) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
