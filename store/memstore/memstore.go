// Package memstore provides an in-memory graphcache.Store that records
// every call it receives.
//
// It serves as a reference implementation of the store contract and as a
// test double for code built on a registry:
//
//	s := memstore.New(graph)
//	s.Insert("Author", graphcache.Record{"id": 1, "name": "Le Guin"})
//	reg := graphcache.NewRegistry(graph, s)
//	...
//	fmt.Println(len(s.Calls()))
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/syssam/graphcache"
	"github.com/syssam/graphcache/dataloader"
	"github.com/syssam/graphcache/dialect/sql"
	"github.com/syssam/graphcache/schema"
)

// Store operations, as recorded in Call.Op.
const (
	OpFetchByIDs   = "FetchByIDs"
	OpFetchRelated = "FetchRelated"
	OpCountRelated = "CountRelated"
)

// Call is a recorded store call.
type Call struct {
	Op           string
	Type         string
	IDs          []any  // FetchByIDs only
	Relationship string // FetchRelated and CountRelated only
	Predicates   int    // Number of predicates of a FetchRelated call
}

// Store is an in-memory graphcache.Store. It is safe for concurrent use.
type Store struct {
	graph *schema.Graph

	mu     sync.RWMutex
	tables map[string][]graphcache.Record
	calls  []Call
	fail   map[string]error
	hook   func(Call)
}

// New returns an empty store for the types of g.
func New(g *schema.Graph) *Store {
	return &Store{
		graph:  g,
		tables: make(map[string][]graphcache.Record),
		fail:   make(map[string]error),
	}
}

// Insert appends records to the table of the named type.
func (s *Store) Insert(typeName string, recs ...graphcache.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[typeName] = append(s.tables[typeName], recs...)
}

// Fail makes every subsequent call of op return err. A nil err restores
// normal operation.
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, op)
		return
	}
	s.fail[op] = err
}

// OnCall registers a function called with every call, before it is served.
// Tests use it to block or observe the store.
func (s *Store) OnCall(fn func(Call)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = fn
}

// Calls returns the calls received so far, in order.
func (s *Store) Calls() []Call {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.calls)
}

// CallsOf returns the recorded calls of one operation.
func (s *Store) CallsOf(op string) []Call {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var calls []Call
	for _, c := range s.calls {
		if c.Op == op {
			calls = append(calls, c)
		}
	}
	return calls
}

// Reset forgets the recorded calls.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// record stores c and returns the failure configured for its operation.
func (s *Store) record(ctx context.Context, c Call) error {
	s.mu.Lock()
	s.calls = append(s.calls, c)
	hook, err := s.hook, s.fail[c.Op]
	s.mu.Unlock()
	if hook != nil {
		hook(c)
	}
	if err != nil {
		return err
	}
	return ctx.Err()
}

// FetchByIDs implements graphcache.Store. Records come back in table
// order, not in the order of ids.
func (s *Store) FetchByIDs(ctx context.Context, t *schema.Type, ids []any) ([]graphcache.Record, error) {
	if err := s.record(ctx, Call{Op: OpFetchByIDs, Type: t.Name, IDs: slices.Clone(ids)}); err != nil {
		return nil, err
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[dataloader.Key(id)] = struct{}{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []graphcache.Record
	for _, rec := range s.tables[t.Name] {
		if _, ok := want[dataloader.Key(rec[t.ID])]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// FetchRelated implements graphcache.Store.
func (s *Store) FetchRelated(ctx context.Context, t *schema.Type, r graphcache.Record, rel *schema.Relationship, preds ...*sql.Predicate) ([]graphcache.Record, error) {
	if err := s.record(ctx, Call{Op: OpFetchRelated, Type: t.Name, Relationship: rel.Name, Predicates: len(preds)}); err != nil {
		return nil, err
	}
	recs, err := s.related(t, r, rel)
	if err != nil {
		return nil, err
	}
	if len(preds) == 0 {
		return recs, nil
	}
	match := sql.And(preds...)
	out := recs[:0:0]
	for _, rec := range recs {
		if match.Match(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// CountRelated implements graphcache.Store.
func (s *Store) CountRelated(ctx context.Context, t *schema.Type, r graphcache.Record, rel *schema.Relationship) (int, error) {
	if err := s.record(ctx, Call{Op: OpCountRelated, Type: t.Name, Relationship: rel.Name}); err != nil {
		return 0, err
	}
	recs, err := s.related(t, r, rel)
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

// related returns the records of the target type of rel that relate to r.
func (s *Store) related(t *schema.Type, r graphcache.Record, rel *schema.Relationship) ([]graphcache.Record, error) {
	target, ok := s.graph.Type(rel.Target)
	if !ok {
		return nil, fmt.Errorf("memstore: unknown type %q", rel.Target)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	table := s.tables[target.Name]
	switch rel.Direction {
	case schema.Owning:
		want := make(map[string]struct{})
		for _, id := range graphcache.ForeignKeys(r[rel.Field]) {
			want[dataloader.Key(id)] = struct{}{}
		}
		var out []graphcache.Record
		for _, rec := range table {
			if _, ok := want[dataloader.Key(rec[target.ID])]; ok {
				out = append(out, rec)
			}
		}
		return out, nil
	default:
		if r[t.ID] == nil {
			return nil, nil
		}
		groups := dataloader.GroupByKey(table, func(rec graphcache.Record) string {
			return dataloader.Key(rec[rel.Field])
		})
		return groups[dataloader.Key(r[t.ID])], nil
	}
}

var _ graphcache.Store = (*Store)(nil)
