// Package graphql integrates graphcache with gqlgen servers.
//
// Every GraphQL operation gets its own registry, so entities loaded while
// resolving one query are shared by all of its resolvers and never leak
// into another request:
//
//	srv := handler.New(generated.NewExecutableSchema(cfg))
//	srv.Use(graphql.NewExtension(func(context.Context) *graphcache.Registry {
//	    return graphcache.NewRegistry(graph, store)
//	}))
//	srv.SetErrorPresenter(graphql.ErrorPresenter)
//
// Edge resolvers then read the registry from the context:
//
//	func (r *authorResolver) Books(ctx context.Context, obj *graphcache.Entity, where map[string]any) ([]*graphcache.Entity, error) {
//	    return graphql.Edge(ctx, obj, "books")
//	}
//
// Edge follows the cached path unless the field carries a "where"
// argument, in which case the filtered access path is used and nothing is
// memoized.
//
// # Error codes
//
// ErrorPresenter adds a "code" extension to errors raised by graphcache:
//
//   - UNKNOWN_TYPE
//   - UNKNOWN_RELATIONSHIP
//   - CARDINALITY
//   - FETCH_FAILED
package graphql
