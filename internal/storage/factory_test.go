package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreMemory(t *testing.T) {
	for _, kind := range []string{"", "memory", " Memory "} {
		store, err := NewStore(kind, "")
		require.NoError(t, err, kind)
		assert.IsType(t, &MemoryStore{}, store)
		require.NoError(t, CloseIfSupported(store))
	}
}

func TestNewStoreUnsupported(t *testing.T) {
	_, err := NewStore("postgres", "")
	require.ErrorIs(t, err, ErrUnsupportedStore)
}

func TestCloseIfSupportedNil(t *testing.T) {
	require.NoError(t, CloseIfSupported(nil))
}
