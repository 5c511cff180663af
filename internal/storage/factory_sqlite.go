//go:build sqlite

package storage

import "errors"

const defaultStoreKind = "sqlite"

func newSQLiteStore(path string) (Store, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	return NewSQLiteStore(path), nil
}
