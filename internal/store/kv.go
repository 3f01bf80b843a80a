package store

import (
	"context"
	"fmt"
)

// Backend names accepted by New
const (
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// KV is a durable string-keyed slot store. Each key holds one serialized value.
type KV interface {
	// Get returns the raw value at key and whether it was present.
	Get(key string) (string, bool, error)

	// Set overwrites the value at key.
	Set(key, value string) error

	Close() error
}

// Watcher is implemented by backends that can observe writes made by other
// processes. fn is invoked after the value at key changes on disk.
type Watcher interface {
	Watch(ctx context.Context, key string, fn func()) error
}

// New opens the named backend rooted at dir.
func New(backend, dir string) (KV, error) {
	switch backend {
	case "", BackendBolt:
		return NewBoltStore(dir)
	case BackendSQLite:
		return NewSQLiteStore(dir)
	case BackendFile:
		return NewFileStore(dir)
	case BackendMemory:
		return NewBoltStore("")
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
