package cart

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"family-store/internal/catalog"
	"family-store/internal/metrics"
	"family-store/internal/model"
	"family-store/internal/storage"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(t *testing.T, id string) model.Product {
	t.Helper()
	for _, p := range catalog.SeedProducts() {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("seed product %s not found", id)
	return model.Product{}
}

func newTestCart(t *testing.T, store storage.SnapshotStore, opts ...Option) *Cart {
	t.Helper()
	c, err := New(context.Background(), storage.DefaultCartKey, store, zerolog.Nop(), opts...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestCart_AddMergesSameProduct(t *testing.T) {
	c := newTestCart(t, storage.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, c.Add(ctx, product(t, "h1"), 1))
	require.NoError(t, c.Add(ctx, product(t, "h1"), 1))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 18, items[0].Subtotal())
	assert.Equal(t, 18, c.Total())
	assert.Equal(t, 2, c.Count())
}

func TestCart_AddKeepsInsertionOrder(t *testing.T) {
	c := newTestCart(t, storage.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, c.Add(ctx, product(t, "f1"), 1))
	require.NoError(t, c.Add(ctx, product(t, "h1"), 3))
	require.NoError(t, c.Add(ctx, product(t, "f1"), 2))

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "f1", items[0].ID)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, "h1", items[1].ID)
	assert.Equal(t, 3, items[1].Quantity)
	assert.Equal(t, 35*3+9*3, c.Total())
}

func TestCart_AddNonPositiveQuantity(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
	}{
		{name: "Zero", quantity: 0},
		{name: "Negative", quantity: -4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCart(t, storage.NewMemoryStore())
			require.NoError(t, c.Add(context.Background(), product(t, "c1"), tt.quantity))
			assert.Equal(t, 1, c.Items()[0].Quantity)
		})
	}
}

func TestCart_AddShowsNotification(t *testing.T) {
	c := newTestCart(t, storage.NewMemoryStore())

	require.NoError(t, c.Add(context.Background(), product(t, "h1"), 2))

	msg, ok := c.Notification()
	assert.True(t, ok)
	assert.Equal(t, "已加入 2 份 茶葉蛋", msg)
}

func TestCart_NotificationExpires(t *testing.T) {
	c := newTestCart(t, storage.NewMemoryStore(), WithNotifier(NewNotifier(10*time.Millisecond)))

	require.NoError(t, c.Add(context.Background(), product(t, "h1"), 1))

	assert.Eventually(t, func() bool {
		_, ok := c.Notification()
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestCart_UpdateQuantity(t *testing.T) {
	tests := []struct {
		name     string
		start    int
		delta    int
		expected int
	}{
		{name: "Increment", start: 1, delta: 1, expected: 2},
		{name: "Decrement", start: 3, delta: -1, expected: 2},
		{name: "Clamps at one", start: 1, delta: -5, expected: 1},
		{name: "Zero delta", start: 2, delta: 0, expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCart(t, storage.NewMemoryStore())
			ctx := context.Background()

			require.NoError(t, c.Add(ctx, product(t, "h1"), tt.start))
			require.NoError(t, c.UpdateQuantity(ctx, "h1", tt.delta))
			assert.Equal(t, tt.expected, c.Items()[0].Quantity)
		})
	}
}

func TestCart_RemoveThenAddStartsFresh(t *testing.T) {
	c := newTestCart(t, storage.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, c.Add(ctx, product(t, "w1"), 4))
	require.NoError(t, c.Remove(ctx, "w1"))
	assert.True(t, c.IsEmpty())

	require.NoError(t, c.Add(ctx, product(t, "w1"), 1))
	assert.Equal(t, 1, c.Items()[0].Quantity)
}

func TestCart_Clear(t *testing.T) {
	store := storage.NewMemoryStore()
	c := newTestCart(t, store)
	ctx := context.Background()

	require.NoError(t, c.Add(ctx, product(t, "h1"), 1))
	require.NoError(t, c.Add(ctx, product(t, "f2"), 1))
	require.NoError(t, c.Clear(ctx))

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.Total())

	data, err := store.Load(ctx, storage.DefaultCartKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestCart_OneSavePerMutation(t *testing.T) {
	store := storage.NewMemoryStore()
	c := newTestCart(t, store)
	ctx := context.Background()

	require.NoError(t, c.Add(ctx, product(t, "h1"), 1))
	require.NoError(t, c.Add(ctx, product(t, "h1"), 1))
	require.NoError(t, c.UpdateQuantity(ctx, "h1", 1))
	require.NoError(t, c.Remove(ctx, "h1"))

	assert.Equal(t, 4, store.Saves())
}

func TestCart_NoSaveForUnknownID(t *testing.T) {
	store := storage.NewMemoryStore()
	c := newTestCart(t, store)
	ctx := context.Background()

	require.NoError(t, c.UpdateQuantity(ctx, "missing", 1))
	require.NoError(t, c.Remove(ctx, "missing"))

	assert.Equal(t, 0, store.Saves())
}

func TestCart_PersistAndReload(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	first := newTestCart(t, store)
	require.NoError(t, first.Add(ctx, product(t, "f1"), 2))
	require.NoError(t, first.Add(ctx, product(t, "c2"), 1))

	second := newTestCart(t, store)
	assert.Equal(t, first.Items(), second.Items())
	assert.Equal(t, first.Total(), second.Total())
}

func TestCart_RehydrateMalformedSnapshot(t *testing.T) {
	tests := []struct {
		name     string
		snapshot string
	}{
		{name: "Not JSON", snapshot: `{broken`},
		{name: "Object instead of array", snapshot: `{"id":"h1"}`},
		{name: "Zero quantity", snapshot: `[{"id":"h1","name":"茶葉蛋","price":9,"category":"萊爾富便利商店","quantity":0}]`},
		{name: "Negative price", snapshot: `[{"id":"h1","name":"茶葉蛋","price":-9,"category":"萊爾富便利商店","quantity":1}]`},
		{name: "Duplicate ids", snapshot: `[{"id":"h1","name":"a","price":9,"category":"萊爾富便利商店","quantity":1},{"id":"h1","name":"b","price":9,"category":"萊爾富便利商店","quantity":1}]`},
		{name: "Unknown category", snapshot: `[{"id":"h1","name":"茶葉蛋","price":9,"category":"夜市","quantity":1}]`},
		{name: "Missing id", snapshot: `[{"name":"茶葉蛋","price":9,"category":"萊爾富便利商店","quantity":1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			store.Put(storage.DefaultCartKey, []byte(tt.snapshot))

			c := newTestCart(t, store)
			assert.True(t, c.IsEmpty())
			assert.Equal(t, 0, store.Saves())
		})
	}
}

func TestNew_LoadFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(store *storage.MemoryStore) context.Context
	}{
		{
			name: "Store error",
			setup: func(store *storage.MemoryStore) context.Context {
				store.LoadFn = func(string) error {
					return errors.New("connection refused")
				}
				return context.Background()
			},
		},
		{
			name: "Cancelled context",
			setup: func(store *storage.MemoryStore) context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			store.Put(storage.DefaultCartKey, []byte(`[{"id":"h1","name":"茶葉蛋","price":9,"category":"萊爾富便利商店","quantity":3}]`))
			ctx := tt.setup(store)

			c, err := New(ctx, storage.DefaultCartKey, store, zerolog.Nop())

			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to load cart snapshot")
			assert.Nil(t, c)
			assert.Equal(t, 0, store.Saves())
		})
	}
}

func TestCart_RehydrateEmptyArrayAndNull(t *testing.T) {
	for _, snapshot := range []string{`[]`, `null`} {
		store := storage.NewMemoryStore()
		store.Put(storage.DefaultCartKey, []byte(snapshot))

		c := newTestCart(t, store)
		assert.True(t, c.IsEmpty())
		assert.NotNil(t, c.Items())
	}
}

func TestCart_SaveFailureKeepsMutation(t *testing.T) {
	store := storage.NewMemoryStore()
	store.SaveFn = func(string, []byte) error {
		return errors.New("disk full")
	}
	m := metrics.New()
	c := newTestCart(t, store, WithMetrics(m))

	err := c.Add(context.Background(), product(t, "h1"), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CartMutations.WithLabelValues("add")))
}

func TestEncodeSnapshot_Nil(t *testing.T) {
	data, err := EncodeSnapshot(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

// expectedLine mirrors one cart line for the sequence test.
type expectedLine struct {
	id       string
	quantity int
}

func TestCart_RandomSequencesKeepInvariants(t *testing.T) {
	seeds := catalog.SeedProducts()
	prices := make(map[string]int, len(seeds))
	for _, p := range seeds {
		prices[p.ID] = p.Price
	}

	for seed := uint64(1); seed <= 20; seed++ {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(seed, seed*7919))
			store := storage.NewMemoryStore()
			c := newTestCart(t, store)
			ctx := context.Background()

			var want []expectedLine
			indexOf := func(id string) int {
				for i, l := range want {
					if l.id == id {
						return i
					}
				}
				return -1
			}

			for step := 0; step < 60; step++ {
				p := seeds[rng.IntN(len(seeds))]

				switch rng.IntN(4) {
				case 0, 1:
					qty := rng.IntN(5) - 1
					require.NoError(t, c.Add(ctx, p, qty))
					if qty <= 0 {
						qty = 1
					}
					if i := indexOf(p.ID); i >= 0 {
						want[i].quantity += qty
					} else {
						want = append(want, expectedLine{id: p.ID, quantity: qty})
					}
				case 2:
					delta := rng.IntN(9) - 4
					require.NoError(t, c.UpdateQuantity(ctx, p.ID, delta))
					if i := indexOf(p.ID); i >= 0 {
						want[i].quantity = max(1, want[i].quantity+delta)
					}
				case 3:
					require.NoError(t, c.Remove(ctx, p.ID))
					if i := indexOf(p.ID); i >= 0 {
						want = append(want[:i], want[i+1:]...)
					}
				}

				items := c.Items()
				require.Len(t, items, len(want), "step %d", step)

				seen := make(map[string]bool)
				count, total := 0, 0
				for i, item := range items {
					assert.False(t, seen[item.ID], "duplicate id %s at step %d", item.ID, step)
					seen[item.ID] = true
					assert.GreaterOrEqual(t, item.Quantity, 1)
					assert.Equal(t, want[i].id, item.ID, "order at step %d", step)
					assert.Equal(t, want[i].quantity, item.Quantity, "quantity of %s at step %d", item.ID, step)
					count += item.Quantity
					total += prices[item.ID] * item.Quantity
				}
				assert.Equal(t, count, c.Count())
				assert.Equal(t, total, c.Total())

				data, err := store.Load(ctx, storage.DefaultCartKey)
				if len(want) > 0 || err == nil {
					require.NoError(t, err)
					stored, err := DecodeSnapshot(data)
					require.NoError(t, err)
					assert.Equal(t, items, stored, "snapshot at step %d", step)
				}
			}
		})
	}
}
