package redisx

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedup_SeenAfterMark(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	d := NewDedup(rdb, "catalog")
	ctx := context.Background()

	seen, err := d.Seen(ctx, "o-1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, d.Mark(ctx, "o-1"))

	seen, err = d.Seen(ctx, "o-1")
	require.NoError(t, err)
	assert.True(t, seen)
	assert.True(t, mr.Exists("dedup:catalog:o-1"))

	mr.FastForward(TTLDedup)
	seen, err = d.Seen(ctx, "o-1")
	require.NoError(t, err)
	assert.False(t, seen)
}
