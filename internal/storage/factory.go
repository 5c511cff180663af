package storage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedStore = errors.New("unsupported store backend")
	ErrStoreUnavailable = errors.New("store backend unavailable in this build")
)

// NewStore opens the named backend. Kind is case-insensitive; empty means
// memory.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(strings.TrimSpace(sqlitePath))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedStore, kind)
	}
}

// DefaultStoreKind is sqlite when the binary was built with -tags sqlite.
func DefaultStoreKind() string {
	return defaultStoreKind
}

// CloseIfSupported closes stores holding resources, such as SQLiteStore.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
