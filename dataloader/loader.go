package dataloader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	dl "github.com/graph-gophers/dataloader/v7"
)

// DefaultWait is the default batching window of a Loader.
const DefaultWait = time.Millisecond

// ErrNilID is returned for a nil identifier. nil never names an entity.
var ErrNilID = errors.New("dataloader: nil identifier")

// FetchFunc loads the entities identified by ids. The returned slice may
// be in any order and may omit identifiers that do not exist.
type FetchFunc[V any] func(ctx context.Context, ids []any) ([]V, error)

// Thunk blocks until the value it was created for is settled.
type Thunk[V any] func() (V, error)

// ThunkMany blocks until all values it was created for are settled.
type ThunkMany[V any] func() ([]V, error)

// Option configures a Loader.
type Option func(*options)

type options struct {
	name     string
	wait     time.Duration
	maxBatch int
	logger   *slog.Logger
}

// WithWait sets how long a batch collects keys before it is dispatched.
// Default is 1ms.
func WithWait(d time.Duration) Option {
	return func(o *options) {
		o.wait = d
	}
}

// WithMaxBatch caps the number of distinct keys per fetch. A batch that
// reaches the cap is dispatched without waiting. Zero means unlimited.
func WithMaxBatch(n int) Option {
	return func(o *options) {
		o.maxBatch = n
	}
}

// WithLogger sets the logger used for batch dispatch events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithName labels the loader in logs and errors.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// Loader batches and memoizes point lookups of one kind of value on top of
// a graph-gophers batched loader keyed by canonical identifiers. It adds a
// seen set, so callers can tell whether an identifier was ever requested
// or primed without triggering a fetch.
//
// A Loader is safe for concurrent use; it never evicts entries on its own.
type Loader[V any] struct {
	fetch  FetchFunc[V]
	idOf   func(V) any
	opts   options
	stats  Stats
	cache  *dl.InMemoryCache[string, V]
	loader *dl.Loader[string, V]

	// mu guards the maps below and orders each cache lookup with the load
	// or prime that follows it.
	mu      sync.Mutex
	seen    map[string]struct{}
	settled map[string]struct{}
	ids     map[string]any // raw identifier of each key awaiting a fetch
}

// New returns a Loader that fetches with fetch and identifies fetched
// values with idOf.
func New[V any](fetch FetchFunc[V], idOf func(V) any, opts ...Option) *Loader[V] {
	l := &Loader[V]{
		fetch: fetch,
		idOf:  idOf,
		opts: options{
			wait:   DefaultWait,
			logger: slog.Default(),
		},
		cache:   dl.NewCache[string, V](),
		seen:    make(map[string]struct{}),
		settled: make(map[string]struct{}),
		ids:     make(map[string]any),
	}
	for _, opt := range opts {
		opt(&l.opts)
	}
	batchOpts := []dl.Option[string, V]{
		dl.WithCache[string, V](l.cache),
		dl.WithWait[string, V](l.opts.wait),
	}
	if l.opts.maxBatch > 0 {
		batchOpts = append(batchOpts, dl.WithBatchCapacity[string, V](l.opts.maxBatch))
	}
	l.loader = dl.NewBatchedLoader(l.batch, batchOpts...)
	return l
}

// Load returns the value identified by id, or the zero value if the
// fetch did not return it.
func (l *Loader[V]) Load(ctx context.Context, id any) (V, error) {
	return l.LoadThunk(ctx, id)()
}

// LoadThunk registers id for loading and returns a Thunk that waits for
// it. Several thunks created before the batch window closes share one fetch.
func (l *Loader[V]) LoadThunk(ctx context.Context, id any) Thunk[V] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.request(ctx, id)
}

// LoadMany returns the values identified by ids, aligned with ids.
// Duplicated identifiers get the same value at every position.
func (l *Loader[V]) LoadMany(ctx context.Context, ids []any) ([]V, error) {
	return l.LoadManyThunk(ctx, ids)()
}

// LoadManyThunk registers all ids in the same batch and returns a
// ThunkMany that waits for them. The first error wins.
func (l *Loader[V]) LoadManyThunk(ctx context.Context, ids []any) ThunkMany[V] {
	thunks := make([]Thunk[V], len(ids))
	l.mu.Lock()
	for i, id := range ids {
		thunks[i] = l.request(ctx, id)
	}
	l.mu.Unlock()
	return func() ([]V, error) {
		values := make([]V, len(thunks))
		for i, thunk := range thunks {
			v, err := thunk()
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		return values, nil
	}
}

// Prime stores value for id without fetching it. It is a no-op when id
// already has a pending or settled entry, so the first primed or fetched
// value wins. It reports whether value was stored.
func (l *Loader[V]) Prime(id any, value V) bool {
	if id == nil {
		return false
	}
	key := Key(id)
	ctx := context.Background()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[key] = struct{}{}
	if _, ok := l.cache.Get(ctx, key); ok {
		return false
	}
	l.loader.Prime(ctx, key, value)
	l.settled[key] = struct{}{}
	l.stats.Primes.Add(1)
	return true
}

// Has reports whether id was ever requested or primed, whether or not
// its lookup has settled. It never triggers a fetch.
func (l *Loader[V]) Has(id any) bool {
	if id == nil {
		return false
	}
	key := Key(id)
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.seen[key]
	return ok
}

// Clear drops the entry of id, so the next Load fetches it again.
func (l *Loader[V]) Clear(id any) {
	if id == nil {
		return
	}
	key := Key(id)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loader.Clear(context.Background(), key)
	delete(l.seen, key)
	delete(l.settled, key)
}

// ClearAll drops every entry of the loader.
func (l *Loader[V]) ClearAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loader.ClearAll()
	clear(l.seen)
	clear(l.settled)
}

// Stats returns a snapshot of the loader counters.
func (l *Loader[V]) Stats() StatsSnapshot {
	return l.stats.Snapshot()
}

// request marks id as seen and returns a Thunk for it, joining the
// current batch if id has no entry yet. l.mu must be held.
func (l *Loader[V]) request(ctx context.Context, id any) Thunk[V] {
	if id == nil {
		return func() (V, error) {
			var zero V
			return zero, ErrNilID
		}
	}
	key := Key(id)
	l.seen[key] = struct{}{}
	_, settled := l.settled[key]
	if _, ok := l.cache.Get(ctx, key); ok {
		l.stats.Hits.Add(1)
	} else {
		l.ids[key] = id
		settled = false
	}
	return await(ctx, l.loader.Load(ctx, key), settled)
}

// batch is the batch function of the underlying loader. The fetch ignores
// the cancellation of the request that opened the batch.
func (l *Loader[V]) batch(ctx context.Context, keys []string) []*dl.Result[V] {
	ctx = context.WithoutCancel(ctx)
	start := time.Now()
	ids := make([]any, len(keys))
	l.mu.Lock()
	for i, key := range keys {
		if id, ok := l.ids[key]; ok {
			ids[i] = id
		} else {
			ids[i] = key
		}
	}
	l.mu.Unlock()

	values, err := l.safeFetch(ctx, ids)
	l.stats.Batches.Add(1)
	l.stats.Keys.Add(int64(len(keys)))
	results := make([]*dl.Result[V], len(keys))
	if err != nil {
		l.stats.Errors.Add(1)
		err = &BatchError{Loader: l.opts.name, Keys: slices.Clone(keys), Err: err}
		l.opts.logger.Warn("dataloader: batch failed",
			"loader", l.opts.name, "keys", len(keys), "error", err)
		// Failed keys stay seen but are fetched again on the next Load.
		l.mu.Lock()
		for i, key := range keys {
			l.cache.Delete(ctx, key)
			delete(l.ids, key)
			results[i] = &dl.Result[V]{Error: err}
		}
		l.mu.Unlock()
		return results
	}
	ordered := OrderByKeysNoError(keys, values, func(v V) string {
		return Key(l.idOf(v))
	})
	l.mu.Lock()
	for i, key := range keys {
		results[i] = &dl.Result[V]{Data: ordered[i]}
		l.settled[key] = struct{}{}
		delete(l.ids, key)
	}
	l.mu.Unlock()
	l.opts.logger.Debug("dataloader: batch dispatched",
		"loader", l.opts.name, "keys", len(keys), "found", len(values), "duration", time.Since(start))
	return results
}

// safeFetch converts a panicking fetch into an error, so waiters are
// always released.
func (l *Loader[V]) safeFetch(ctx context.Context, ids []any) (values []V, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in fetch: %v", r)
		}
	}()
	return l.fetch(ctx, ids)
}

// await returns a Thunk that stops waiting for thunk once ctx is done.
// A value already settled when the thunk was requested is returned even
// when ctx is done.
func await[V any](ctx context.Context, thunk dl.Thunk[V], settled bool) Thunk[V] {
	if settled || ctx.Done() == nil {
		return Thunk[V](thunk)
	}
	return func() (V, error) {
		type result struct {
			value V
			err   error
		}
		done := make(chan result, 1)
		go func() {
			v, err := thunk()
			done <- result{v, err}
		}()
		select {
		case r := <-done:
			return r.value, r.err
		case <-ctx.Done():
			select {
			case r := <-done:
				return r.value, r.err
			default:
			}
			var zero V
			return zero, ctx.Err()
		}
	}
}
