package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type report struct {
	Total string `json:"total"`
}

func TestLRUGetSet(t *testing.T) {
	c := NewLRU(2, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", report{Total: "10.00"}))
	var got report
	found, err := c.Get(ctx, "a", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "10.00", got.Total)

	found, err = c.Get(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU(2, time.Minute)
	ctx := context.Background()
	var got report

	require.NoError(t, c.Set(ctx, "a", report{}))
	require.NoError(t, c.Set(ctx, "b", report{}))
	_, _ = c.Get(ctx, "a", &got)
	require.NoError(t, c.Set(ctx, "c", report{}))

	assert.Equal(t, 2, c.Size())
	found, _ := c.Get(ctx, "b", &got)
	assert.False(t, found)
	found, _ = c.Get(ctx, "a", &got)
	assert.True(t, found)
}

func TestLRUExpires(t *testing.T) {
	c := NewLRU(10, time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", report{}))
	now = now.Add(2 * time.Minute)

	var got report
	found, err := c.Get(ctx, "a", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, c.Size())
}

func TestLRUGenerations(t *testing.T) {
	c := NewLRU(10, time.Minute)
	ctx := context.Background()

	gen, err := c.Generation(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, gen)

	require.NoError(t, c.Bump(ctx, "user-1"))
	require.NoError(t, c.Bump(ctx, "user-1"))
	gen, _ = c.Generation(ctx, "user-1")
	assert.Equal(t, int64(2), gen)

	other, _ := c.Generation(ctx, "user-2")
	assert.Zero(t, other)
}
