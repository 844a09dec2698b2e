// Package graphcache is a request-scoped entity cache that batches point
// lookups and primes itself while traversing relationships.
//
// A Registry holds one dataloader.Loader per entity type of a schema graph.
// Lookups issued in the same short window are coalesced into one
// Store.FetchByIDs call, and every resolved entity is remembered for the
// lifetime of the registry. Entities returned by the loaders are wrapped
// into Entity values whose relationships resolve through the registry:
//
//	reg := graphcache.NewRegistry(graph, store)
//	authors, _ := reg.From("Author")
//	a, _ := authors.Load(ctx, 1)
//	books, _ := a.Related(ctx, "books")    // one FetchRelated, primes the Book loader
//	author, _ := books[0].RelatedOne(ctx, "author") // served from the Author loader
//
// # Relationships
//
// Owning relationships (the entity stores the foreign key) resolve with a
// batched lookup on the target loader. Owned relationships (the related
// entities store the key) query the store once and prime the target loader
// with the entities it returned, unless the loader already saw them, so a
// later traversal back into those entities costs nothing. The resolved
// identifiers are memoized per entity and relationship.
//
// Filtered access (Entity.RelatedWhere) bypasses both the memo and the
// loaders.
//
// # Scope
//
// A Registry never evicts and never invalidates. Create one per request
// (see NewContext and the contrib/graphql extension) and drop it after.
package graphcache
