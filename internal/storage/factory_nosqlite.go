//go:build !sqlite

package storage

import "fmt"

const defaultStoreKind = "memory"

func newSQLiteStore(_ string) (Store, error) {
	return nil, fmt.Errorf("%w: sqlite (rebuild with -tags sqlite)", ErrStoreUnavailable)
}
