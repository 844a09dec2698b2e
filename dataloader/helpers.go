// Package dataloader provides a batching, memoizing point-lookup cache.
//
// A Loader wraps a github.com/graph-gophers/dataloader/v7 batched loader.
// It coalesces every Load issued within a short window into a single call
// of its FetchFunc and remembers the settled results for its lifetime. On
// top of that it keeps a seen set for a non-triggering membership check
// (Has) and a Prime that reports whether it stored anything.
//
// # Basic Usage
//
// Define a fetch function for your entity:
//
//	func fetchUsers(ctx context.Context, ids []any) ([]*User, error) {
//	    return store.UsersByID(ctx, ids)
//	}
//
//	loader := dataloader.New(fetchUsers, func(u *User) any { return u.ID })
//	user, err := loader.Load(ctx, 42)
//
// Missing identifiers resolve to the zero value of V. Results of LoadMany
// keep the order (and duplicates) of the requested identifiers.
//
// # Keys
//
// Identifiers are compared by their canonical string form (see Key), so
// 42, int64(42) and "42" share one cache entry.
package dataloader

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an entity is not found in a batch result.
var ErrNotFound = errors.New("dataloader: entity not found")

// KeyFunc extracts a key from an entity.
type KeyFunc[K comparable, V any] func(V) K

// OrderByKeys reorders entities to match the order of requested keys.
// Missing entities are represented as zero values with corresponding errors.
//
// The result slice has the same length as keys and is aligned with it;
// duplicated keys receive the same value at every position.
func OrderByKeys[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) ([]V, []error) {
	lookup := make(map[K]V, len(values))
	for _, v := range values {
		lookup[keyFn(v)] = v
	}

	result := make([]V, len(keys))
	errs := make([]error, len(keys))
	for i, key := range keys {
		if v, ok := lookup[key]; ok {
			result[i] = v
		} else {
			errs[i] = ErrNotFound
		}
	}
	return result, errs
}

// OrderByKeysNoError reorders entities to match the order of requested keys.
// Returns zero values for missing entities without errors.
func OrderByKeysNoError[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) []V {
	result, _ := OrderByKeys(keys, values, keyFn)
	return result
}

// GroupByKey groups entities by a key function.
// Useful for one-to-many relationships where multiple entities share the same foreign key.
//
// Example:
//
//	books := store.AllBooks()
//	grouped := GroupByKey(books, func(b Book) string { return Key(b.AuthorID) })
//	// grouped["1"] contains all books of author 1
func GroupByKey[K comparable, V any](values []V, keyFn KeyFunc[K, V]) map[K][]V {
	result := make(map[K][]V)
	for _, v := range values {
		key := keyFn(v)
		result[key] = append(result[key], v)
	}
	return result
}

// ctxKey is the context key for storing loaders.
type ctxKey struct{}

// WithLoaders injects a set of loaders into the context.
// This is useful for GraphQL resolvers or any context-based request handling.
//
// Example:
//
//	func Middleware(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        ctx := dataloader.WithLoaders(r.Context(), newLoaders())
//	        next.ServeHTTP(w, r.WithContext(ctx))
//	    })
//	}
func WithLoaders[T any](ctx context.Context, loaders T) context.Context {
	return context.WithValue(ctx, ctxKey{}, loaders)
}

// For extracts loaders from context.
//
// Example:
//
//	loaders := dataloader.For[*Loaders](ctx)
//	user, err := loaders.User.Load(ctx, userID)
func For[T any](ctx context.Context) T {
	v, _ := ctx.Value(ctxKey{}).(T)
	return v
}
