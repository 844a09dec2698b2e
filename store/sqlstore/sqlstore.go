// Package sqlstore implements graphcache.Store on top of a SQL database.
//
// Every type maps to one table keyed by its ID field. Owned relationships
// are queried through the foreign-key column of the target table, owning
// relationships by the identifiers held in the source record:
//
//	drv, err := sql.Open(dialect.Postgres, dsn)
//	if err != nil {
//	    return err
//	}
//	reg := graphcache.NewRegistry(graph, sqlstore.New(drv, graph))
package sqlstore

import (
	"context"
	"fmt"

	"github.com/syssam/graphcache"
	"github.com/syssam/graphcache/dialect"
	"github.com/syssam/graphcache/dialect/sql"
	"github.com/syssam/graphcache/schema"
)

// Operation names tagged on the statements of each Store method, see
// sql.WithOperation.
const (
	OpFetchByIDs   = "FetchByIDs"
	OpFetchRelated = "FetchRelated"
	OpCountRelated = "CountRelated"
)

// Store is a graphcache.Store reading from a SQL database.
type Store struct {
	drv   dialect.Driver
	graph *schema.Graph
}

// New returns a store querying drv for the types of g.
func New(drv dialect.Driver, g *schema.Graph) *Store {
	return &Store{drv: drv, graph: g}
}

// Driver returns the underlying driver.
func (s *Store) Driver() dialect.Driver { return s.drv }

// FetchByIDs implements graphcache.Store.
func (s *Store) FetchByIDs(ctx context.Context, t *schema.Type, ids []any) ([]graphcache.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args := sql.Dialect(s.drv.Dialect()).
		Select().
		From(t.Table).
		Where(sql.In(t.ID, ids...)).
		Query()
	return s.query(sql.WithOperation(ctx, OpFetchByIDs), query, args)
}

// FetchRelated implements graphcache.Store.
func (s *Store) FetchRelated(ctx context.Context, t *schema.Type, r graphcache.Record, rel *schema.Relationship, preds ...*sql.Predicate) ([]graphcache.Record, error) {
	target, where, ok, err := s.related(t, r, rel)
	if err != nil || !ok {
		return nil, err
	}
	query, args := sql.Dialect(s.drv.Dialect()).
		Select().
		From(target.Table).
		Where(where).
		Where(preds...).
		OrderBy(target.ID).
		Query()
	return s.query(sql.WithOperation(ctx, OpFetchRelated), query, args)
}

// CountRelated implements graphcache.Store.
func (s *Store) CountRelated(ctx context.Context, t *schema.Type, r graphcache.Record, rel *schema.Relationship) (int, error) {
	target, where, ok, err := s.related(t, r, rel)
	if err != nil || !ok {
		return 0, err
	}
	query, args := sql.Dialect(s.drv.Dialect()).
		Count().
		From(target.Table).
		Where(where).
		Query()
	rows := &sql.Rows{}
	if err := s.drv.Query(sql.WithOperation(ctx, OpCountRelated), query, args, rows); err != nil {
		return 0, err
	}
	return sql.ScanInt(rows)
}

// related returns the target type of rel and the predicate selecting the
// rows related to r. It reports false when r cannot have related rows.
func (s *Store) related(t *schema.Type, r graphcache.Record, rel *schema.Relationship) (*schema.Type, *sql.Predicate, bool, error) {
	target, ok := s.graph.Type(rel.Target)
	if !ok {
		return nil, nil, false, fmt.Errorf("sqlstore: unknown type %q", rel.Target)
	}
	if rel.Direction == schema.Owning {
		refs := graphcache.ForeignKeys(r[rel.Field])
		if len(refs) == 0 {
			return target, nil, false, nil
		}
		return target, sql.In(target.ID, refs...), true, nil
	}
	id := r[t.ID]
	if id == nil {
		return target, nil, false, nil
	}
	return target, sql.EQ(rel.Field, id), true, nil
}

func (s *Store) query(ctx context.Context, query string, args []any) ([]graphcache.Record, error) {
	rows := &sql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	maps, err := sql.ScanMaps(rows)
	if err != nil {
		return nil, err
	}
	recs := make([]graphcache.Record, len(maps))
	for i, m := range maps {
		recs[i] = m
	}
	return recs, nil
}

var _ graphcache.Store = (*Store)(nil)
