package dataloader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockEntity is a test entity.
type mockEntity struct {
	ID   int
	Name string
}

// =============================================================================
// OrderByKeys Tests
// =============================================================================

func TestOrderByKeys(t *testing.T) {
	t.Parallel()

	keyFn := func(e *mockEntity) string { return Key(e.ID) }

	t.Run("all keys found", func(t *testing.T) {
		t.Parallel()
		values := []*mockEntity{
			{ID: 3, Name: "third"},
			{ID: 1, Name: "first"},
			{ID: 2, Name: "second"},
		}

		result, errs := OrderByKeys([]string{"1", "2", "3"}, values, keyFn)

		require.Len(t, result, 3)
		require.Len(t, errs, 3)
		assert.Equal(t, "first", result[0].Name)
		assert.Equal(t, "second", result[1].Name)
		assert.Equal(t, "third", result[2].Name)
		for _, err := range errs {
			assert.NoError(t, err)
		}
	})

	t.Run("some keys missing", func(t *testing.T) {
		t.Parallel()
		values := []*mockEntity{
			{ID: 3, Name: "third"},
			{ID: 1, Name: "first"},
		}

		result, errs := OrderByKeys([]string{"1", "2", "3", "4"}, values, keyFn)

		require.Len(t, result, 4)
		assert.Equal(t, "first", result[0].Name)
		assert.Nil(t, result[1])
		assert.Equal(t, "third", result[2].Name)
		assert.Nil(t, result[3])
		assert.NoError(t, errs[0])
		assert.ErrorIs(t, errs[1], ErrNotFound)
		assert.NoError(t, errs[2])
		assert.ErrorIs(t, errs[3], ErrNotFound)
	})

	t.Run("duplicate keys", func(t *testing.T) {
		t.Parallel()
		values := []*mockEntity{{ID: 1, Name: "first"}, {ID: 2, Name: "second"}}

		result := OrderByKeysNoError([]string{"1", "1", "2"}, values, keyFn)

		require.Len(t, result, 3)
		assert.Same(t, result[0], result[1])
		assert.Equal(t, "second", result[2].Name)
	})

	t.Run("empty keys", func(t *testing.T) {
		t.Parallel()
		result, errs := OrderByKeys([]string{}, []*mockEntity{}, keyFn)
		assert.Empty(t, result)
		assert.Empty(t, errs)
	})
}

// =============================================================================
// GroupByKey Tests
// =============================================================================

func TestGroupByKey(t *testing.T) {
	t.Parallel()

	type book struct {
		ID       int
		AuthorID any
	}
	keyFn := func(b *book) string { return Key(b.AuthorID) }

	t.Run("groups by canonical key", func(t *testing.T) {
		t.Parallel()
		books := []*book{
			{ID: 1, AuthorID: 10},
			{ID: 2, AuthorID: "10"},
			{ID: 3, AuthorID: int64(20)},
			{ID: 4, AuthorID: 10.0},
		}

		grouped := GroupByKey(books, keyFn)

		require.Len(t, grouped["10"], 3)
		require.Len(t, grouped["20"], 1)
		assert.Equal(t, 1, grouped["10"][0].ID)
		assert.Equal(t, 2, grouped["10"][1].ID)
		assert.Equal(t, 4, grouped["10"][2].ID)
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, GroupByKey([]*book{}, keyFn))
	})
}

// =============================================================================
// Context Tests
// =============================================================================

type testLoaders struct {
	Users string
}

func TestWithLoaders(t *testing.T) {
	t.Parallel()

	ctx := WithLoaders(context.Background(), &testLoaders{Users: "test"})

	retrieved := For[*testLoaders](ctx)
	require.NotNil(t, retrieved)
	assert.Equal(t, "test", retrieved.Users)
}

func TestFor_NotFound(t *testing.T) {
	t.Parallel()

	assert.Nil(t, For[*testLoaders](context.Background()))
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkOrderByKeys(b *testing.B) {
	keyFn := func(e *mockEntity) string { return Key(e.ID) }

	keys := make([]string, 100)
	values := make([]*mockEntity, 100)
	for i := 0; i < 100; i++ {
		keys[i] = Key(i)
		values[i] = &mockEntity{ID: i, Name: "entity"}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		OrderByKeys(keys, values, keyFn)
	}
}
