package graphcache_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/graphcache"
	"github.com/syssam/graphcache/dataloader"
)

func TestUnknownTypeError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := &graphcache.UnknownTypeError{Type: "Publisher"}
		assert.Equal(t, `graphcache: unknown entity type "Publisher"`, err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := &graphcache.UnknownTypeError{Type: "Publisher"}
		assert.True(t, errors.Is(err, graphcache.ErrUnknownType))
	})

	t.Run("IsUnknownType", func(t *testing.T) {
		err := &graphcache.UnknownTypeError{Type: "Publisher"}
		assert.True(t, graphcache.IsUnknownType(err))

		// Wrapped error
		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, graphcache.IsUnknownType(wrapped))

		// Sentinel error
		assert.True(t, graphcache.IsUnknownType(graphcache.ErrUnknownType))

		// Non-matching error
		assert.False(t, graphcache.IsUnknownType(errors.New("other error")))
		assert.False(t, graphcache.IsUnknownType(nil))
	})
}

func TestUnknownRelationshipError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := &graphcache.UnknownRelationshipError{Type: "Author", Name: "pets"}
		assert.Equal(t, `graphcache: Author has no relationship "pets"`, err.Error())
	})

	t.Run("IsUnknownRelationship", func(t *testing.T) {
		err := &graphcache.UnknownRelationshipError{Type: "Author", Name: "pets"}
		assert.True(t, graphcache.IsUnknownRelationship(err))
		assert.True(t, errors.Is(err, graphcache.ErrUnknownRelationship))
		assert.True(t, graphcache.IsUnknownRelationship(fmt.Errorf("wrapper: %w", err)))
		assert.False(t, graphcache.IsUnknownRelationship(errors.New("other error")))
		assert.False(t, graphcache.IsUnknownRelationship(nil))
	})
}

func TestCardinalityError(t *testing.T) {
	err := &graphcache.CardinalityError{Type: "Author", Name: "books"}
	assert.Equal(t, "graphcache: Author.books resolves to many entities", err.Error())
}

func TestFetchError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := &graphcache.FetchError{Type: "Author", Relationship: "books", Op: "FetchRelated", Err: errors.New("timeout")}
		assert.Equal(t, "graphcache: FetchRelated Author.books: timeout", err.Error())

		err = &graphcache.FetchError{Type: "Author", Op: "FetchByIDs", Err: errors.New("timeout")}
		assert.Equal(t, "graphcache: FetchByIDs Author: timeout", err.Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		underlying := errors.New("connection reset")
		err := &graphcache.FetchError{Type: "Book", Op: "CountRelated", Err: underlying}
		assert.True(t, errors.Is(err, underlying))
	})

	t.Run("IsFetchError", func(t *testing.T) {
		err := &graphcache.FetchError{Type: "Book", Op: "FetchRelated", Err: errors.New("x")}
		assert.True(t, graphcache.IsFetchError(err))
		assert.True(t, graphcache.IsFetchError(fmt.Errorf("wrapper: %w", err)))

		batch := &dataloader.BatchError{Loader: "Book", Keys: []string{"1"}, Err: errors.New("x")}
		assert.True(t, graphcache.IsFetchError(batch))

		assert.False(t, graphcache.IsFetchError(errors.New("other error")))
		assert.False(t, graphcache.IsFetchError(nil))
	})
}

func TestAggregateError(t *testing.T) {
	t.Run("NoErrors", func(t *testing.T) {
		err := graphcache.NewAggregateError()
		assert.Nil(t, err)
	})

	t.Run("NilErrors", func(t *testing.T) {
		err := graphcache.NewAggregateError(nil, nil, nil)
		assert.Nil(t, err)
	})

	t.Run("SingleError", func(t *testing.T) {
		single := errors.New("single error")
		err := graphcache.NewAggregateError(single)
		assert.Equal(t, single, err)
	})

	t.Run("MultipleErrors", func(t *testing.T) {
		err1 := errors.New("error 1")
		err2 := errors.New("error 2")
		err := graphcache.NewAggregateError(err1, err2)

		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "multiple errors")
		assert.Contains(t, err.Error(), "error 1")
		assert.Contains(t, err.Error(), "error 2")
		assert.True(t, errors.Is(err, err2))
	})

	t.Run("MixedNilAndErrors", func(t *testing.T) {
		err1 := errors.New("error 1")
		err := graphcache.NewAggregateError(nil, err1, nil)

		require.NotNil(t, err)
		assert.Equal(t, err1, err) // Single non-nil error returned directly
	})
}

func TestSentinelErrors(t *testing.T) {
	assert.Contains(t, graphcache.ErrUnknownType.Error(), "unknown entity type")
	assert.Contains(t, graphcache.ErrUnknownRelationship.Error(), "unknown relationship")
	assert.Contains(t, graphcache.ErrMissingID.Error(), "identifier")
}

// BenchmarkErrors benchmarks error creation and checking.
func BenchmarkErrors(b *testing.B) {
	b.Run("IsUnknownType", func(b *testing.B) {
		err := fmt.Errorf("wrapped: %w", &graphcache.UnknownTypeError{Type: "User"})
		for i := 0; i < b.N; i++ {
			_ = graphcache.IsUnknownType(err)
		}
	})

	b.Run("NewAggregateError_multiple", func(b *testing.B) {
		err1 := errors.New("err1")
		err2 := errors.New("err2")
		err3 := errors.New("err3")
		for i := 0; i < b.N; i++ {
			_ = graphcache.NewAggregateError(err1, err2, err3)
		}
	})
}
