package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id string) storefront.ProductSnapshot {
	return storefront.ProductSnapshot{ID: id, Name: "product " + id, Price: "10"}
}

func units(c *storefront.Cart) map[string]int {
	out := make(map[string]int, len(c.Items))
	for _, it := range c.Items {
		out[it.Product.ID] = it.Unit
	}
	return out
}

func TestApplyCartChange_CreatesCartLazily(t *testing.T) {
	store := NewMemoryStore()
	m := NewMutator(store, nil)
	ctx := context.Background()

	c, err := m.ApplyCartChange(ctx, "u1", product("p1"), 2, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"p1": 2}, units(c))
	assert.Equal(t, int64(1), c.Version)

	stored, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "product p1", stored.Items[0].Product.Name)
}

func TestApplyCartChange_OverwritesUnitInsteadOfAdding(t *testing.T) {
	m := NewMutator(NewMemoryStore(), nil)
	ctx := context.Background()

	_, err := m.ApplyCartChange(ctx, "u1", product("p1"), 2, false)
	require.NoError(t, err)
	c, err := m.ApplyCartChange(ctx, "u1", product("p1"), 5, false)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"p1": 5}, units(c))
	assert.Len(t, c.Items, 1)
}

func TestApplyCartChange_RemovePresentAndAbsent(t *testing.T) {
	store := NewMemoryStore()
	m := NewMutator(store, nil)
	ctx := context.Background()

	_, err := m.ApplyCartChange(ctx, "u1", product("p1"), 1, false)
	require.NoError(t, err)
	_, err = m.ApplyCartChange(ctx, "u1", product("p2"), 3, false)
	require.NoError(t, err)

	c, err := m.ApplyCartChange(ctx, "u1", product("p1"), 0, true)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"p2": 3}, units(c))

	before, _ := store.Get(ctx, "u1")
	c, err = m.ApplyCartChange(ctx, "u1", storefront.ProductSnapshot{ID: "p9"}, 0, true)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"p2": 3}, units(c))
	after, _ := store.Get(ctx, "u1")
	assert.Equal(t, before.Version, after.Version, "no-op remove must not write")
}

func TestApplyCartChange_RemoveWithoutCartDoesNotCreateOne(t *testing.T) {
	store := NewMemoryStore()
	m := NewMutator(store, nil)

	c, err := m.ApplyCartChange(context.Background(), "u1", product("p1"), 0, true)
	require.NoError(t, err)
	assert.Empty(t, c.Items)

	_, err = store.Get(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestApplyCartChange_InvalidQuantity(t *testing.T) {
	m := NewMutator(NewMemoryStore(), nil)
	_, err := m.ApplyCartChange(context.Background(), "u1", product("p1"), 0, false)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

type change struct {
	product string
	qty     int
	remove  bool
}

// Replaying any single change of a sequence, immediately after it ran,
// yields the same cart as running the sequence once.
func TestApplyCartChange_ReplayIsIdempotent(t *testing.T) {
	seq := []change{
		{"p1", 2, false},
		{"p2", 1, false},
		{"p1", 4, false},
		{"p3", 0, true},
		{"p2", 0, true},
		{"p2", 7, false},
		{"p1", 0, true},
	}
	ctx := context.Background()

	run := func(replayAt int) map[string]int {
		m := NewMutator(NewMemoryStore(), nil)
		var c *storefront.Cart
		var err error
		for i, ch := range seq {
			times := 1
			if i == replayAt {
				times = 2
			}
			for n := 0; n < times; n++ {
				c, err = m.ApplyCartChange(ctx, "u1", product(ch.product), ch.qty, ch.remove)
				require.NoError(t, err)
			}
		}
		return units(c)
	}

	want := run(-1)
	assert.Equal(t, map[string]int{"p2": 7}, want)
	for i := range seq {
		assert.Equal(t, want, run(i), "replaying change %d", i)
	}
}

func TestApplyCartChange_DirectCallThenBrokerReplay(t *testing.T) {
	store := NewMemoryStore()
	direct := NewMutator(store, nil)
	subscriber := NewMutator(store, nil)
	ctx := context.Background()

	once, err := direct.ApplyCartChange(ctx, "u1", product("p1"), 3, false)
	require.NoError(t, err)
	twice, err := subscriber.ApplyCartChange(ctx, "u1", product("p1"), 3, false)
	require.NoError(t, err)

	assert.Equal(t, units(once), units(twice))
	assert.Equal(t, once.Version, twice.Version)
}

// conflictStore fails the first n saves with a version conflict.
type conflictStore struct {
	*MemoryStore
	mu        sync.Mutex
	conflicts int
	saves     int
}

func (s *conflictStore) Save(ctx context.Context, c *storefront.Cart) error {
	s.mu.Lock()
	s.saves++
	if s.conflicts > 0 {
		s.conflicts--
		s.mu.Unlock()
		return ErrVersionConflict
	}
	s.mu.Unlock()
	return s.MemoryStore.Save(ctx, c)
}

func TestApplyCartChange_ReappliesOnVersionConflict(t *testing.T) {
	store := &conflictStore{MemoryStore: NewMemoryStore(), conflicts: 2}
	m := NewMutator(store, nil)

	c, err := m.ApplyCartChange(context.Background(), "u1", product("p1"), 1, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"p1": 1}, units(c))
	assert.Equal(t, 3, store.saves)
}

func TestApplyCartChange_GivesUpAfterRepeatedConflicts(t *testing.T) {
	store := &conflictStore{MemoryStore: NewMemoryStore(), conflicts: 100}
	m := NewMutator(store, nil)

	_, err := m.ApplyCartChange(context.Background(), "u1", product("p1"), 1, false)
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.Equal(t, maxSaveAttempts, store.saves)
}

func TestApplyCartChange_ConcurrentWritersConverge(t *testing.T) {
	store := NewMemoryStore()
	m := NewMutator(store, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := m.ApplyCartChange(ctx, "u1", product(id), 1, false)
			assert.NoError(t, err)
		}(string(rune('a' + i)))
	}
	wg.Wait()

	c, err := m.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, c.Items, 4)
}

type failingStore struct{ Store }

func (failingStore) Get(context.Context, string) (*storefront.Cart, error) {
	return nil, errors.New("connection reset")
}

func TestApplyCartChange_StoreErrorIsReturned(t *testing.T) {
	m := NewMutator(failingStore{}, nil)
	_, err := m.ApplyCartChange(context.Background(), "u1", product("p1"), 1, false)
	assert.ErrorContains(t, err, "connection reset")
}

func TestGetAndClear(t *testing.T) {
	m := NewMutator(NewMemoryStore(), nil)
	ctx := context.Background()

	c, err := m.Get(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, c.Items)

	_, err = m.ApplyCartChange(ctx, "u1", product("p1"), 1, false)
	require.NoError(t, err)
	require.NoError(t, m.Clear(ctx, "u1"))
	require.NoError(t, m.Clear(ctx, "u1"))

	c, err = m.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestMemoryStore_DeleteIfVersion(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	c, err := NewMutator(store, nil).ApplyCartChange(ctx, "u1", product("p1"), 1, false)
	require.NoError(t, err)

	assert.ErrorIs(t, store.DeleteIfVersion(ctx, "u1", c.Version-1), ErrVersionConflict)
	_, err = store.Get(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, store.DeleteIfVersion(ctx, "u1", c.Version))
	require.NoError(t, store.DeleteIfVersion(ctx, "u1", c.Version), "missing cart")
	_, err = store.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestRemoveOrdered_KeepsLinesChangedAfterTheOrder(t *testing.T) {
	store := NewMemoryStore()
	m := NewMutator(store, nil)
	ctx := context.Background()

	for _, ch := range []change{{"p1", 2, false}, {"p2", 1, false}} {
		_, err := m.ApplyCartChange(ctx, "u1", product(ch.product), ch.qty, false)
		require.NoError(t, err)
	}
	ordered, err := m.Get(ctx, "u1")
	require.NoError(t, err)

	_, err = m.ApplyCartChange(ctx, "u1", product("p2"), 5, false)
	require.NoError(t, err)
	_, err = m.ApplyCartChange(ctx, "u1", product("p3"), 1, false)
	require.NoError(t, err)

	assert.ErrorIs(t, m.ClearIfUnchanged(ctx, ordered), ErrVersionConflict)
	require.NoError(t, m.RemoveOrdered(ctx, "u1", ordered.Items))

	c, err := m.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"p2": 5, "p3": 1}, units(c))

	// again, nothing left to take
	require.NoError(t, m.RemoveOrdered(ctx, "u1", ordered.Items))
	c, _ = m.Get(ctx, "u1")
	assert.Len(t, c.Items, 2)
}

func TestRemoveOrdered_DeletesCartWhenNothingIsLeft(t *testing.T) {
	store := NewMemoryStore()
	m := NewMutator(store, nil)
	ctx := context.Background()

	c, err := m.ApplyCartChange(ctx, "u1", product("p1"), 2, false)
	require.NoError(t, err)
	require.NoError(t, m.RemoveOrdered(ctx, "u1", c.Items))

	_, err = store.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrCartNotFound)
	require.NoError(t, m.RemoveOrdered(ctx, "u1", c.Items), "no cart")
}
