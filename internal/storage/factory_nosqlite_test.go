//go:build !sqlite

package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteUnavailableWithoutTag(t *testing.T) {
	_, err := NewStore("sqlite", "scores.db")
	require.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, "memory", DefaultStoreKind())
}
