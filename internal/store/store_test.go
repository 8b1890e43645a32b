package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type doc struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := NewMemory()

	var missing []doc
	err := backend.Load(ctx, "docs", &missing)
	require.ErrorIs(t, err, ErrNotFound)

	saved := []doc{{ID: "a", Name: "first"}, {ID: "b", Name: "second"}}
	require.NoError(t, backend.Save(ctx, "docs", saved))

	var loaded []doc
	require.NoError(t, backend.Load(ctx, "docs", &loaded))
	require.Equal(t, saved, loaded)

	// Loads hand out copies; mutating the result must not leak back.
	loaded[0].Name = "mutated"
	var again []doc
	require.NoError(t, backend.Load(ctx, "docs", &again))
	require.Equal(t, "first", again[0].Name)
}

func TestFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend, err := NewFile(t.TempDir())
	require.NoError(t, err)

	var missing []doc
	require.ErrorIs(t, backend.Load(ctx, "docs", &missing), ErrNotFound)

	saved := []doc{{ID: "a", Name: "first"}}
	require.NoError(t, backend.Save(ctx, "docs", saved))
	require.NoError(t, backend.Save(ctx, "docs", saved)) // overwrite is fine

	var loaded []doc
	require.NoError(t, backend.Load(ctx, "docs", &loaded))
	require.Equal(t, saved, loaded)
}

func TestFileRequiresDir(t *testing.T) {
	_, err := NewFile("  ")
	require.Error(t, err)
}

func TestCollectionOperations(t *testing.T) {
	ctx := context.Background()
	col := NewCollection(NewMemory(), "docs", func(d doc) string { return d.ID })

	items, err := col.List(ctx)
	require.NoError(t, err)
	require.Empty(t, items)

	require.NoError(t, col.Upsert(ctx, doc{ID: "a", Name: "first"}))
	require.NoError(t, col.Upsert(ctx, doc{ID: "b", Name: "second"}))
	require.NoError(t, col.Upsert(ctx, doc{ID: "a", Name: "renamed"}))

	got, err := col.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "renamed", got.Name)

	_, err = col.Get(ctx, "zzz")
	require.True(t, errors.Is(err, ErrNotFound))

	ids, err := col.IDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, ids)

	found, err := col.Delete(ctx, "a")
	require.NoError(t, err)
	require.True(t, found)

	found, err = col.Delete(ctx, "a")
	require.NoError(t, err)
	require.False(t, found)

	items, err = col.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "b", items[0].ID)
}

func TestRegistryBindsAllCollections(t *testing.T) {
	st := New(NewMemory())
	require.NotNil(t, st.Assets)
	require.NotNil(t, st.Requests)
	require.NotNil(t, st.LoanRequests)
	require.NotNil(t, st.Handovers)
	require.NotNil(t, st.Dismantles)
	require.NotNil(t, st.Maintenances)
	require.NotNil(t, st.Customers)
	require.NotNil(t, st.Categories)
	require.NotNil(t, st.Notifications)
	require.Equal(t, KeyAssets, st.Assets.Key())
}
