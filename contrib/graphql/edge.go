package graphql

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	"github.com/99designs/gqlgen/graphql"

	"github.com/syssam/graphcache"
	"github.com/syssam/graphcache/dialect/sql"
)

// WhereArg is the field argument selecting the filtered access path.
const WhereArg = "where"

// Edge resolves the relationship name of e for the field being resolved.
// Without a "where" argument the cached path is used; otherwise the
// related entities are queried with the predicates of the argument and
// neither memoized nor primed.
func Edge(ctx context.Context, e *graphcache.Entity, name string) ([]*graphcache.Entity, error) {
	preds, err := fieldPredicates(ctx)
	if err != nil {
		return nil, err
	}
	if preds == nil {
		return e.Related(ctx, name)
	}
	return e.RelatedWhere(ctx, name, preds...)
}

// EdgeOne resolves a single relationship of e.
func EdgeOne(ctx context.Context, e *graphcache.Entity, name string) (*graphcache.Entity, error) {
	return e.RelatedOne(ctx, name)
}

// EdgeCount returns the number of entities a relationship of e points to.
func EdgeCount(ctx context.Context, e *graphcache.Entity, name string) (int, error) {
	return e.Count(ctx, name)
}

func fieldPredicates(ctx context.Context) ([]*sql.Predicate, error) {
	fc := graphql.GetFieldContext(ctx)
	if fc == nil {
		return nil, nil
	}
	v, ok := fc.Args[WhereArg]
	if !ok || v == nil {
		return nil, nil
	}
	return Predicates(v)
}

// Predicates converts a "where" argument into predicates. It accepts
// predicates as they are, or a map from field names to values: a list
// value matches any of its elements, a nil value matches NULL.
func Predicates(where any) ([]*sql.Predicate, error) {
	switch w := where.(type) {
	case *sql.Predicate:
		return []*sql.Predicate{w}, nil
	case []*sql.Predicate:
		return w, nil
	case map[string]any:
		fields := make([]string, 0, len(w))
		for f := range w {
			fields = append(fields, f)
		}
		slices.Sort(fields)
		preds := make([]*sql.Predicate, 0, len(fields))
		for _, f := range fields {
			preds = append(preds, fieldPredicate(f, w[f]))
		}
		return preds, nil
	}
	return nil, fmt.Errorf("graphql: unsupported %q argument of type %T", WhereArg, where)
}

func fieldPredicate(field string, v any) *sql.Predicate {
	if v == nil {
		return sql.IsNull(field)
	}
	switch v := v.(type) {
	case []byte, string:
		return sql.EQ(field, v)
	case []any:
		return sql.In(field, v...)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return sql.EQ(field, v)
	}
	vs := make([]any, rv.Len())
	for i := range vs {
		vs[i] = rv.Index(i).Interface()
	}
	return sql.In(field, vs...)
}
