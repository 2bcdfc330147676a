package wishlist

import (
	"context"
	"math/rand"
	"testing"

	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(items []storefront.ProductSnapshot) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.ID)
	}
	return out
}

func TestToggleWishlist_Table(t *testing.T) {
	cases := []struct {
		name    string
		initial []string
		remove  bool
		want    []string
	}{
		{"absent add inserts", []string{"a"}, false, []string{"a", "p"}},
		{"absent remove is no-op", []string{"a"}, true, []string{"a"}},
		{"present remove deletes", []string{"a", "p"}, true, []string{"a"}},
		// A second ADD_TO_WISHLIST for a present product toggles it off; this
		// keeps the long-standing toggle behavior rather than treating the
		// add as an idempotent insert.
		{"present add toggles off", []string{"p", "a"}, false, []string{"a"}},
		{"empty add inserts", nil, false, []string{"p"}},
		{"empty remove is no-op", nil, true, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := NewMemoryStore()
			ctx := context.Background()
			var initial []storefront.ProductSnapshot
			for _, id := range tc.initial {
				initial = append(initial, storefront.ProductSnapshot{ID: id})
			}
			require.NoError(t, store.Put(ctx, "u1", initial))

			got, err := NewMutator(store, nil).ToggleWishlist(ctx, "u1", storefront.ProductSnapshot{ID: "p"}, tc.remove)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(got))

			stored, _ := store.Get(ctx, "u1")
			assert.Equal(t, tc.want, ids(stored))
		})
	}
}

func TestToggleWishlist_RemoveIsIdempotent(t *testing.T) {
	m := NewMutator(NewMemoryStore(), nil)
	ctx := context.Background()
	p := storefront.ProductSnapshot{ID: "p1"}

	_, err := m.ToggleWishlist(ctx, "u1", p, false)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		got, err := m.ToggleWishlist(ctx, "u1", p, true)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
}

func TestToggleWishlist_NoDuplicatesAfterRandomSequence(t *testing.T) {
	m := NewMutator(NewMemoryStore(), nil)
	ctx := context.Background()
	rnd := rand.New(rand.NewSource(42))
	products := []string{"a", "b", "c", "d"}

	for i := 0; i < 500; i++ {
		p := storefront.ProductSnapshot{ID: products[rnd.Intn(len(products))]}
		got, err := m.ToggleWishlist(ctx, "u1", p, rnd.Intn(2) == 0)
		require.NoError(t, err)

		seen := map[string]bool{}
		for _, id := range ids(got) {
			require.False(t, seen[id], "duplicate %s after step %d", id, i)
			seen[id] = true
		}
	}
}

func TestGetAndClear(t *testing.T) {
	m := NewMutator(NewMemoryStore(), nil)
	ctx := context.Background()

	_, err := m.ToggleWishlist(ctx, "u1", storefront.ProductSnapshot{ID: "p1", Name: "Kiwi"}, false)
	require.NoError(t, err)

	items, err := m.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Kiwi", items[0].Name)

	require.NoError(t, m.Clear(ctx, "u1"))
	items, err = m.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, items)
}
