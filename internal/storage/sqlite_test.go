//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreScoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "cerebunit.db"))
	require.NoError(t, store.Init(ctx))
	t.Cleanup(func() {
		_ = store.Close()
	})

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	first := scoreRecord("a", "spontaneous_firing", "PC2015", 0, base)
	second := scoreRecord("b", "no_dendrites", "PC2015", 1, base.Add(150*time.Millisecond))
	third := scoreRecord("c", "spontaneous_firing", "PC2007", 1, base.Add(time.Second))
	require.NoError(t, store.SaveScore(ctx, first))
	require.NoError(t, store.SaveScore(ctx, second))
	require.NoError(t, store.SaveScore(ctx, third))

	got, ok, err := store.GetScore(ctx, "b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second.Description, got.Description)
	assert.True(t, second.CreatedAtUTC.Equal(got.CreatedAtUTC))

	all, err := store.ListScores(ctx, ScoreFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, ids(all))

	spont, err := store.ListScores(ctx, ScoreFilter{Test: "spontaneous_firing", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids(spont))

	require.NoError(t, store.Reset(ctx))
	_, ok, err = store.GetScore(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "cerebunit.db"))
	_, _, err := store.GetScore(context.Background(), "a")
	require.Error(t, err)
	require.NoError(t, store.Close())
}

func TestNewStoreSQLite(t *testing.T) {
	store, err := NewStore("sqlite", filepath.Join(t.TempDir(), "cerebunit.db"))
	require.NoError(t, err)
	require.NoError(t, store.Init(context.Background()))
	require.NoError(t, CloseIfSupported(store))

	_, err = NewStore("sqlite", "")
	require.Error(t, err)
}
