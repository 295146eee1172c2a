// Package storage provides the key-value persistence primitives behind the
// valuation history.
package storage

import (
	"context"
	"fmt"
	"strings"
)

// KV stores opaque values under string keys. Get returns common.ErrNotFound
// for absent keys; Delete of an absent key is not an error.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend selects a KV implementation.
type Backend string

// Supported backends.
const (
	BackendMemory Backend = "memory"
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
)

// Open creates the KV for backend. path is a directory for the file backend
// and a database file for sqlite; memory ignores it.
func Open(ctx context.Context, backend Backend, path string) (KV, error) {
	switch Backend(strings.ToLower(string(backend))) {
	case BackendMemory:
		return NewMemoryKV(), nil
	case BackendFile:
		return NewFileKV(path)
	case "", BackendSQLite:
		kv, err := NewSQLiteKV(path)
		if err != nil {
			return nil, err
		}
		if err := kv.Migrate(ctx); err != nil {
			_ = kv.Close()
			return nil, err
		}
		return kv, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
