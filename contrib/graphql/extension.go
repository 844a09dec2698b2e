package graphql

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/99designs/gqlgen/graphql"

	"github.com/syssam/graphcache"
)

// RegistryFunc returns the registry of one operation or request.
type RegistryFunc func(context.Context) *graphcache.Registry

// Extension is a gqlgen handler extension attaching a fresh registry to
// every operation.
type Extension struct {
	newRegistry RegistryFunc
	logger      *slog.Logger
}

// ExtensionOption configures the Extension.
type ExtensionOption func(*Extension)

// WithLogger sets the logger receiving per-operation statistics at the
// debug level. Default is slog.Default().
func WithLogger(l *slog.Logger) ExtensionOption {
	return func(e *Extension) {
		e.logger = l
	}
}

// NewExtension returns an extension creating registries with fn.
func NewExtension(fn RegistryFunc, opts ...ExtensionOption) *Extension {
	e := &Extension{newRegistry: fn, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtensionName implements the graphql.HandlerExtension interface.
func (*Extension) ExtensionName() string { return "GraphCache" }

// Validate implements the graphql.HandlerExtension interface.
func (*Extension) Validate(graphql.ExecutableSchema) error { return nil }

// InterceptOperation implements the graphql.OperationInterceptor interface.
// A registry already present in the context, for example one attached by
// Middleware, is kept.
func (e *Extension) InterceptOperation(ctx context.Context, next graphql.OperationHandler) graphql.ResponseHandler {
	reg := graphcache.FromContext(ctx)
	if reg == nil {
		reg = e.newRegistry(ctx)
		ctx = graphcache.NewContext(ctx, reg)
	}
	name := ""
	if graphql.HasOperationContext(ctx) {
		name = graphql.GetOperationContext(ctx).OperationName
	}
	h := next(ctx)
	return func(ctx context.Context) *graphql.Response {
		resp := h(ctx)
		e.logger.DebugContext(ctx, "graphcache: operation",
			"operation", name, "stats", reg.Stats().String())
		return resp
	}
}

// Middleware returns an HTTP middleware attaching a registry created by fn
// to every request.
func Middleware(fn RegistryFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := graphcache.NewContext(r.Context(), fn(r.Context()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

var (
	_ graphql.HandlerExtension     = (*Extension)(nil)
	_ graphql.OperationInterceptor = (*Extension)(nil)
)
