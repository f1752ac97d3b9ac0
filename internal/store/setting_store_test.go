package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingStoreSetMany(t *testing.T) {
	d := openTestDB(t)
	store := NewSettingStore(d)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "theme")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetMany(ctx, map[string]string{"theme": "dark", "default_zone": "4C"}))
	require.NoError(t, store.SetMany(ctx, map[string]string{"theme": "light"}))

	value, ok, err := store.Get(ctx, "theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "light", value)

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"theme": "light", "default_zone": "4C"}, all)
}
