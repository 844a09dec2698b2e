package graphcache

import (
	"context"
	"reflect"

	"github.com/syssam/graphcache/dataloader"
	"github.com/syssam/graphcache/dialect/sql"
	"github.com/syssam/graphcache/schema"
)

// Record is a raw entity as returned by a Store, keyed by field name.
type Record map[string]any

// Store is the backing data store of a registry.
type Store interface {
	// FetchByIDs returns the entities of type t whose identifier is in ids.
	// Results may come in any order and omit identifiers that do not exist.
	FetchByIDs(ctx context.Context, t *schema.Type, ids []any) ([]Record, error)
	// FetchRelated returns the entities related to r, an entity of type t,
	// through rel, optionally narrowed by predicates on the related type.
	FetchRelated(ctx context.Context, t *schema.Type, r Record, rel *schema.Relationship, preds ...*sql.Predicate) ([]Record, error)
	// CountRelated returns the number of entities FetchRelated would return
	// without predicates.
	CountRelated(ctx context.Context, t *schema.Type, r Record, rel *schema.Relationship) (int, error)
}

// Canonical returns the canonical form of an identifier. Two identifiers
// denote the same entity iff their canonical forms are equal.
func Canonical(id any) string {
	return dataloader.Key(id)
}

// ForeignKeys returns the identifiers held by a foreign-key value. A nil
// value holds none and a slice holds its non-nil elements. Anything else,
// including strings, byte slices and fixed-size arrays such as uuid.UUID,
// is a single identifier.
func ForeignKeys(v any) []any {
	switch v := v.(type) {
	case nil:
		return nil
	case []byte, string:
		return []any{v}
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return []any{v}
	}
	ids := make([]any, 0, rv.Len())
	for i := range rv.Len() {
		e := rv.Index(i)
		if (e.Kind() == reflect.Interface || e.Kind() == reflect.Pointer) && e.IsNil() {
			continue
		}
		ids = append(ids, e.Interface())
	}
	return ids
}
