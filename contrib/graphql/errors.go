package graphql

import (
	"context"
	"errors"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/syssam/graphcache"
)

// Error codes set in the "code" extension by ErrorPresenter.
const (
	CodeUnknownType         = "UNKNOWN_TYPE"
	CodeUnknownRelationship = "UNKNOWN_RELATIONSHIP"
	CodeCardinality         = "CARDINALITY"
	CodeFetchFailed         = "FETCH_FAILED"
)

// ErrorCode returns the code of a graphcache error, or "" for other errors.
func ErrorCode(err error) string {
	var ce *graphcache.CardinalityError
	switch {
	case graphcache.IsUnknownType(err):
		return CodeUnknownType
	case graphcache.IsUnknownRelationship(err):
		return CodeUnknownRelationship
	case errors.As(err, &ce):
		return CodeCardinality
	case graphcache.IsFetchError(err):
		return CodeFetchFailed
	}
	return ""
}

// ErrorPresenter is a graphql.ErrorPresenterFunc adding the graphcache
// error code to the extensions of the presented error.
func ErrorPresenter(ctx context.Context, err error) *gqlerror.Error {
	gqlErr := graphql.DefaultErrorPresenter(ctx, err)
	code := ErrorCode(err)
	if code == "" {
		return gqlErr
	}
	if gqlErr.Extensions == nil {
		gqlErr.Extensions = make(map[string]any)
	}
	gqlErr.Extensions["code"] = code
	return gqlErr
}

var _ graphql.ErrorPresenterFunc = ErrorPresenter
