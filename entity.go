package graphcache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/syssam/graphcache/dialect/sql"
	"github.com/syssam/graphcache/schema"
)

// Entity is an entity bound to a registry. Its attributes are read-only;
// its relationships resolve through the registry loaders and are memoized
// on first resolution.
type Entity struct {
	reg   *Registry
	typ   *schema.Type
	id    any
	attrs Record

	mu    sync.Mutex
	memo  map[string][]any
	group singleflight.Group
}

// Type returns the entity type.
func (e *Entity) Type() *schema.Type { return e.typ }

// ID returns the raw identifier of the entity.
func (e *Entity) ID() any { return e.id }

// Get returns the value of a field.
func (e *Entity) Get(field string) (any, bool) {
	v, ok := e.attrs[field]
	return v, ok
}

// Attrs returns a copy of the entity attributes.
func (e *Entity) Attrs() Record {
	attrs := make(Record, len(e.attrs))
	for k, v := range e.attrs {
		attrs[k] = v
	}
	return attrs
}

// String implements the fmt.Stringer interface.
func (e *Entity) String() string {
	return fmt.Sprintf("%s(%v)", e.typ.Name, e.id)
}

// Memoized returns the identifiers a relationship resolved to, if it was
// resolved already. It never triggers a fetch.
func (e *Entity) Memoized(name string) ([]any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids, ok := e.memo[name]
	return ids, ok
}

// memoize stores ids for name unless a value is already stored, and
// returns the stored value.
func (e *Entity) memoize(name string, ids []any) []any {
	e.mu.Lock()
	defer e.mu.Unlock()
	if prev, ok := e.memo[name]; ok {
		return prev
	}
	if e.memo == nil {
		e.memo = make(map[string][]any)
	}
	e.memo[name] = ids
	return ids
}

// relationship returns the declared relationship called name.
func (e *Entity) relationship(name string) (*schema.Relationship, error) {
	rel, ok := e.typ.Relationship(name)
	if !ok {
		return nil, &UnknownRelationshipError{Type: e.typ.Name, Name: name}
	}
	return rel, nil
}

// Resolve returns the entities a relationship points to: an *Entity (nil
// when absent) for single relationships, a []*Entity for many.
func (e *Entity) Resolve(ctx context.Context, name string) (any, error) {
	rel, err := e.relationship(name)
	if err != nil {
		return nil, err
	}
	entities, err := e.resolve(ctx, rel)
	if err != nil {
		return nil, err
	}
	if rel.Unique() {
		return first(entities), nil
	}
	return entities, nil
}

// Related returns the entities a relationship points to, whatever its
// cardinality.
func (e *Entity) Related(ctx context.Context, name string) ([]*Entity, error) {
	rel, err := e.relationship(name)
	if err != nil {
		return nil, err
	}
	return e.resolve(ctx, rel)
}

// RelatedOne returns the entity a single relationship points to, or nil.
func (e *Entity) RelatedOne(ctx context.Context, name string) (*Entity, error) {
	rel, err := e.relationship(name)
	if err != nil {
		return nil, err
	}
	if !rel.Unique() {
		return nil, &CardinalityError{Type: e.typ.Name, Name: name}
	}
	entities, err := e.resolve(ctx, rel)
	if err != nil {
		return nil, err
	}
	return first(entities), nil
}

// Count returns the number of entities a relationship points to. A
// memoized relationship is counted without a store call.
func (e *Entity) Count(ctx context.Context, name string) (int, error) {
	rel, err := e.relationship(name)
	if err != nil {
		return 0, err
	}
	if ids, ok := e.Memoized(name); ok {
		return len(ids), nil
	}
	e.reg.stats.CountRelated.Add(1)
	n, err := e.reg.store.CountRelated(ctx, e.typ, e.attrs, rel)
	if err != nil {
		e.reg.stats.Errors.Add(1)
		return 0, &FetchError{Type: e.typ.Name, Relationship: name, Op: "CountRelated", Err: err}
	}
	return n, nil
}

// RelatedWhere returns the related entities matching preds. It always
// queries the store: results are neither memoized nor primed into the
// loaders, and a memoized relationship is ignored.
func (e *Entity) RelatedWhere(ctx context.Context, name string, preds ...*sql.Predicate) ([]*Entity, error) {
	rel, err := e.relationship(name)
	if err != nil {
		return nil, err
	}
	target, err := e.target(rel)
	if err != nil {
		return nil, err
	}
	recs, err := e.fetchRelated(ctx, rel, preds...)
	if err != nil {
		return nil, err
	}
	entities := make([]*Entity, 0, len(recs))
	for _, rec := range recs {
		ent, err := e.reg.wrap(target, rec)
		if err != nil {
			return nil, err
		}
		entities = append(entities, ent)
	}
	return entities, nil
}

// Preload resolves the named relationships concurrently, or all declared
// relationships when names is empty. Failures are collected into an
// AggregateError; relationships that resolved stay memoized.
func (e *Entity) Preload(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		for _, rel := range e.typ.Relationships {
			names = append(names, rel.Name)
		}
	}
	errs := make([]error, len(names))
	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			_, errs[i] = e.Related(ctx, name)
			return nil
		})
	}
	_ = g.Wait()
	return NewAggregateError(errs...)
}

// resolve returns the related entities, resolving and memoizing their
// identifiers on first use.
func (e *Entity) resolve(ctx context.Context, rel *schema.Relationship) ([]*Entity, error) {
	ids, err := e.ids(ctx, rel)
	if err != nil {
		return nil, err
	}
	loader, err := e.reg.From(rel.Target)
	if err != nil {
		return nil, err
	}
	loaded, err := loader.LoadMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	entities := make([]*Entity, 0, len(loaded))
	for _, ent := range loaded {
		if ent != nil {
			entities = append(entities, ent)
		}
	}
	return entities, nil
}

// ids returns the memoized identifiers of rel. Concurrent first
// resolutions of the same relationship share one store round trip.
func (e *Entity) ids(ctx context.Context, rel *schema.Relationship) ([]any, error) {
	if ids, ok := e.Memoized(rel.Name); ok {
		return ids, nil
	}
	v, err, _ := e.group.Do(rel.Name, func() (any, error) {
		if ids, ok := e.Memoized(rel.Name); ok {
			return ids, nil
		}
		var (
			ids []any
			err error
		)
		switch rel.Direction {
		case schema.Owning:
			ids, err = e.resolveOwning(ctx, rel)
		default:
			ids, err = e.resolveOwned(ctx, rel)
		}
		if err != nil {
			return nil, err
		}
		ids = e.memoize(rel.Name, ids)
		e.reg.opts.logger.DebugContext(ctx, "graphcache: relationship resolved",
			"type", e.typ.Name, "id", e.id, "relationship", rel.Name,
			"direction", rel.Direction.String(), "count", len(ids))
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]any), nil
}

// resolveOwning loads the entities referenced by the foreign-key field and
// returns the identifiers of those that exist.
func (e *Entity) resolveOwning(ctx context.Context, rel *schema.Relationship) ([]any, error) {
	refs := ForeignKeys(e.attrs[rel.Field])
	if len(refs) == 0 {
		return []any{}, nil
	}
	loader, err := e.reg.From(rel.Target)
	if err != nil {
		return nil, err
	}
	loaded, err := loader.LoadMany(ctx, refs)
	if err != nil {
		return nil, err
	}
	ids := make([]any, 0, len(loaded))
	for _, ent := range loaded {
		if ent != nil {
			ids = append(ids, ent.ID())
		}
	}
	return ids, nil
}

// resolveOwned queries the related entities and primes the target loader
// with those it has not seen yet. Entities the loader already knows keep
// their cached instance.
func (e *Entity) resolveOwned(ctx context.Context, rel *schema.Relationship) ([]any, error) {
	target, err := e.target(rel)
	if err != nil {
		return nil, err
	}
	loader, err := e.reg.From(rel.Target)
	if err != nil {
		return nil, err
	}
	recs, err := e.fetchRelated(ctx, rel)
	if err != nil {
		return nil, err
	}
	ids := make([]any, 0, len(recs))
	for _, rec := range recs {
		ent, err := e.reg.wrap(target, rec)
		if err != nil {
			return nil, err
		}
		if !loader.Has(ent.ID()) {
			loader.Prime(ent.ID(), ent)
		}
		ids = append(ids, ent.ID())
	}
	return ids, nil
}

func (e *Entity) fetchRelated(ctx context.Context, rel *schema.Relationship, preds ...*sql.Predicate) ([]Record, error) {
	e.reg.stats.FetchRelated.Add(1)
	recs, err := e.reg.store.FetchRelated(ctx, e.typ, e.attrs, rel, preds...)
	if err != nil {
		e.reg.stats.Errors.Add(1)
		return nil, &FetchError{Type: e.typ.Name, Relationship: rel.Name, Op: "FetchRelated", Err: err}
	}
	return recs, nil
}

func (e *Entity) target(rel *schema.Relationship) (*schema.Type, error) {
	t, ok := e.reg.graph.Type(rel.Target)
	if !ok {
		return nil, &UnknownTypeError{Type: rel.Target}
	}
	return t, nil
}

func first(entities []*Entity) *Entity {
	if len(entities) == 0 {
		return nil
	}
	return entities[0]
}

// document is the encoded form of an entity.
type document struct {
	Type  string `json:"type" msgpack:"type"`
	ID    any    `json:"id" msgpack:"id"`
	Attrs Record `json:"attrs" msgpack:"attrs"`
}

func (e *Entity) document() document {
	return document{Type: e.typ.Name, ID: e.id, Attrs: e.attrs}
}

// MarshalJSON implements the json.Marshaler interface.
func (e *Entity) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.document())
}

// EncodeMsgpack implements the msgpack.CustomEncoder interface.
func (e *Entity) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(e.document())
}

var (
	_ json.Marshaler        = (*Entity)(nil)
	_ msgpack.CustomEncoder = (*Entity)(nil)
	_ fmt.Stringer          = (*Entity)(nil)
)
