package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fpalencia/prueba-tecnica-global66-pokedex/internal/domain"
)

// PersistedValue mirrors a value of type T into a single KV slot. Every Set or
// Update serializes the whole value and writes it back before returning.
//
// Values returned by Get are shared with the handle; mutate through Update,
// which receives the current value and returns the replacement.
type PersistedValue[T any] struct {
	kv  KV
	key string

	mu    sync.RWMutex
	value T
}

// Open reads key from kv, decoding the stored value if present and falling
// back to defaultValue otherwise. Undecodable data is an error wrapping
// domain.ErrMalformedValue; the slot is left untouched.
func Open[T any](kv KV, key string, defaultValue T) (*PersistedValue[T], error) {
	p := &PersistedValue[T]{kv: kv, key: key, value: defaultValue}
	if _, err := p.Resync(); err != nil {
		return nil, err
	}
	return p, nil
}

// Key returns the slot name.
func (p *PersistedValue[T]) Key() string {
	return p.key
}

// Get returns the current in-memory value.
func (p *PersistedValue[T]) Get() T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value
}

// Set replaces the value and writes it to the store. On a write failure the
// in-memory value is left unchanged.
func (p *PersistedValue[T]) Set(v T) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.write(v)
}

// Update applies fn to the current value and persists the result atomically
// with respect to other Set/Update calls on this handle.
func (p *PersistedValue[T]) Update(fn func(T) T) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.write(fn(p.value))
}

// Resync re-reads the slot and replaces the in-memory value when a stored
// value is present. It reports whether a stored value was found.
func (p *PersistedValue[T]) Resync() (bool, error) {
	raw, ok, err := p.kv.Get(p.key)
	if err != nil {
		return false, fmt.Errorf("read %q: %w", p.key, err)
	}
	if !ok || raw == "" {
		return false, nil
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return false, fmt.Errorf("%w: key %q: %v", domain.ErrMalformedValue, p.key, err)
	}

	p.mu.Lock()
	p.value = v
	p.mu.Unlock()
	return true, nil
}

// Follow resyncs whenever another process rewrites the slot, then calls
// onChange. It blocks until ctx is done. Backends without Watcher support
// return immediately.
func (p *PersistedValue[T]) Follow(ctx context.Context, logger *slog.Logger, onChange func()) error {
	w, ok := p.kv.(Watcher)
	if !ok {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return w.Watch(ctx, p.key, func() {
		if _, err := p.Resync(); err != nil {
			logger.Error("failed to resync persisted value", "key", p.key, "error", err)
			return
		}
		logger.Debug("resynced persisted value", "key", p.key)
		if onChange != nil {
			onChange()
		}
	})
}

func (p *PersistedValue[T]) write(v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", p.key, err)
	}
	if err := p.kv.Set(p.key, string(data)); err != nil {
		return fmt.Errorf("write %q: %w", p.key, err)
	}
	p.value = v
	return nil
}
