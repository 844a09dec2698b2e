package graphcache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/syssam/graphcache/dataloader"
	"github.com/syssam/graphcache/schema"
)

// Option configures a Registry.
type Option func(*options)

type options struct {
	wait     time.Duration
	maxBatch int
	logger   *slog.Logger
}

// WithWait sets the batching window of the loaders. Default is 1ms.
func WithWait(d time.Duration) Option {
	return func(o *options) {
		o.wait = d
	}
}

// WithMaxBatch caps the number of identifiers per FetchByIDs call.
// Zero means unlimited.
func WithMaxBatch(n int) Option {
	return func(o *options) {
		o.maxBatch = n
	}
}

// WithLogger sets the logger of the registry and its loaders.
// Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Registry maps entity types to their loaders. It is meant to live for
// one request or session and is safe for concurrent use.
type Registry struct {
	graph *schema.Graph
	store Store
	opts  options
	stats Stats

	mu      sync.Mutex
	loaders map[string]*dataloader.Loader[*Entity]
}

// NewRegistry returns an empty registry over the given schema graph and store.
func NewRegistry(g *schema.Graph, s Store, opts ...Option) *Registry {
	r := &Registry{
		graph: g,
		store: s,
		opts: options{
			wait:   dataloader.DefaultWait,
			logger: slog.Default(),
		},
		loaders: make(map[string]*dataloader.Loader[*Entity]),
	}
	for _, opt := range opts {
		opt(&r.opts)
	}
	return r
}

// Graph returns the schema graph of the registry.
func (r *Registry) Graph() *schema.Graph { return r.graph }

// From returns the loader of the named type, creating it on first use.
// Every call with the same name returns the same loader.
func (r *Registry) From(typeName string) (*dataloader.Loader[*Entity], error) {
	t, ok := r.graph.Type(typeName)
	if !ok {
		return nil, &UnknownTypeError{Type: typeName}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.loaders[t.Name]; ok {
		return l, nil
	}
	l := dataloader.New(r.fetcher(t), (*Entity).ID,
		dataloader.WithName(t.Name),
		dataloader.WithWait(r.opts.wait),
		dataloader.WithMaxBatch(r.opts.maxBatch),
		dataloader.WithLogger(r.opts.logger),
	)
	r.loaders[t.Name] = l
	return l, nil
}

// Load is a shorthand for loading one entity of the named type.
// A nil id is rejected with an error wrapping ErrMissingID.
func (r *Registry) Load(ctx context.Context, typeName string, id any) (*Entity, error) {
	l, err := r.From(typeName)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, fmt.Errorf("%w: nil %s identifier", ErrMissingID, typeName)
	}
	return l.Load(ctx, id)
}

// LoadMany is a shorthand for loading entities of the named type. The
// result is aligned with ids; missing entities are nil. A nil id is
// rejected with an error wrapping ErrMissingID, and nothing is loaded.
func (r *Registry) LoadMany(ctx context.Context, typeName string, ids []any) ([]*Entity, error) {
	l, err := r.From(typeName)
	if err != nil {
		return nil, err
	}
	for i, id := range ids {
		if id == nil {
			return nil, fmt.Errorf("%w: nil %s identifier at index %d", ErrMissingID, typeName, i)
		}
	}
	return l.LoadMany(ctx, ids)
}

// Wrap wraps a raw record of the named type into an Entity bound to the
// registry. The record is copied.
func (r *Registry) Wrap(typeName string, rec Record) (*Entity, error) {
	t, ok := r.graph.Type(typeName)
	if !ok {
		return nil, &UnknownTypeError{Type: typeName}
	}
	return r.wrap(t, rec)
}

func (r *Registry) wrap(t *schema.Type, rec Record) (*Entity, error) {
	id := rec[t.ID]
	if id == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrMissingID, t.Name, t.ID)
	}
	attrs := make(Record, len(rec))
	for k, v := range rec {
		attrs[k] = v
	}
	return &Entity{reg: r, typ: t, id: id, attrs: attrs}, nil
}

// fetcher returns the batch function of the loader of t.
func (r *Registry) fetcher(t *schema.Type) dataloader.FetchFunc[*Entity] {
	return func(ctx context.Context, ids []any) ([]*Entity, error) {
		r.stats.FetchByIDs.Add(1)
		recs, err := r.store.FetchByIDs(ctx, t, ids)
		if err != nil {
			r.stats.Errors.Add(1)
			return nil, err
		}
		entities := make([]*Entity, 0, len(recs))
		for _, rec := range recs {
			e, err := r.wrap(t, rec)
			if err != nil {
				return nil, err
			}
			entities = append(entities, e)
		}
		return entities, nil
	}
}

// Stats returns a snapshot of the store interaction counters.
func (r *Registry) Stats() StatsSnapshot {
	return r.stats.Snapshot()
}

// LoaderStats returns a snapshot of the counters of every loader created
// so far, keyed by type name.
func (r *Registry) LoaderStats() map[string]dataloader.StatsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]dataloader.StatsSnapshot, len(r.loaders))
	for name, l := range r.loaders {
		out[name] = l.Stats()
	}
	return out
}

// Stats holds the store interaction counters of a registry.
type Stats struct {
	// FetchByIDs is the number of batched point lookups.
	FetchByIDs atomic.Int64
	// FetchRelated is the number of relationship queries, filtered or not.
	FetchRelated atomic.Int64
	// CountRelated is the number of relationship counts.
	CountRelated atomic.Int64
	// Errors is the number of failed store calls.
	Errors atomic.Int64
}

// Snapshot returns a point-in-time copy of the counters.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		FetchByIDs:   s.FetchByIDs.Load(),
		FetchRelated: s.FetchRelated.Load(),
		CountRelated: s.CountRelated.Load(),
		Errors:       s.Errors.Load(),
	}
}

// StatsSnapshot is a point-in-time snapshot of store interaction counters.
type StatsSnapshot struct {
	FetchByIDs   int64
	FetchRelated int64
	CountRelated int64
	Errors       int64
}

// Interactions returns the total number of store calls.
func (s StatsSnapshot) Interactions() int64 {
	return s.FetchByIDs + s.FetchRelated + s.CountRelated
}

// String returns a human-readable summary of the counters.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf("interactions=%d fetch_by_ids=%d fetch_related=%d count_related=%d errors=%d",
		s.Interactions(), s.FetchByIDs, s.FetchRelated, s.CountRelated, s.Errors)
}

// NewContext returns a copy of ctx carrying r.
func NewContext(ctx context.Context, r *Registry) context.Context {
	return dataloader.WithLoaders(ctx, r)
}

// FromContext returns the registry carried by ctx, or nil.
func FromContext(ctx context.Context) *Registry {
	return dataloader.For[*Registry](ctx)
}
