package graphcache

import (
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/graphcache/dataloader"
)

// Standard sentinel errors.
var (
	// ErrUnknownType is returned when a type name is not declared in the
	// schema graph of a registry.
	ErrUnknownType = errors.New("graphcache: unknown entity type")

	// ErrUnknownRelationship is returned when a relationship name is not
	// declared by the entity type.
	ErrUnknownRelationship = errors.New("graphcache: unknown relationship")

	// ErrMissingID is returned when a record has no value for the
	// identifier field of its type.
	ErrMissingID = errors.New("graphcache: record has no identifier")
)

// UnknownTypeError is returned by Registry.From and Registry.Wrap for a
// type name the schema graph does not declare.
type UnknownTypeError struct {
	Type string
}

// Error returns the error string.
func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("graphcache: unknown entity type %q", e.Type)
}

// Is reports whether the target error matches UnknownTypeError.
// This allows errors.Is(err, ErrUnknownType) to return true.
func (e *UnknownTypeError) Is(err error) bool {
	return err == ErrUnknownType
}

// IsUnknownType returns true if the error is an UnknownTypeError.
func IsUnknownType(err error) bool {
	if err == nil {
		return false
	}
	var e *UnknownTypeError
	return errors.As(err, &e) || errors.Is(err, ErrUnknownType)
}

// UnknownRelationshipError is returned when traversing a relationship the
// entity type does not declare.
type UnknownRelationshipError struct {
	Type string
	Name string
}

// Error returns the error string.
func (e *UnknownRelationshipError) Error() string {
	return fmt.Sprintf("graphcache: %s has no relationship %q", e.Type, e.Name)
}

// Is reports whether the target error matches UnknownRelationshipError.
func (e *UnknownRelationshipError) Is(err error) bool {
	return err == ErrUnknownRelationship
}

// IsUnknownRelationship returns true if the error is an UnknownRelationshipError.
func IsUnknownRelationship(err error) bool {
	if err == nil {
		return false
	}
	var e *UnknownRelationshipError
	return errors.As(err, &e) || errors.Is(err, ErrUnknownRelationship)
}

// CardinalityError is returned by Entity.RelatedOne for a relationship
// that resolves to many entities.
type CardinalityError struct {
	Type string
	Name string
}

// Error returns the error string.
func (e *CardinalityError) Error() string {
	return fmt.Sprintf("graphcache: %s.%s resolves to many entities", e.Type, e.Name)
}

// FetchError wraps a store failure during relationship traversal.
type FetchError struct {
	Type         string // Entity type the traversal started from
	Relationship string // Relationship being resolved, if any
	Op           string // Store operation (e.g. "FetchRelated", "CountRelated")
	Err          error  // Underlying error
}

// Error returns the error string.
func (e *FetchError) Error() string {
	if e.Relationship != "" {
		return fmt.Sprintf("graphcache: %s %s.%s: %v", e.Op, e.Type, e.Relationship, e.Err)
	}
	return fmt.Sprintf("graphcache: %s %s: %v", e.Op, e.Type, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError returns true if the error is a FetchError or a failed
// batch of a loader.
func IsFetchError(err error) bool {
	if err == nil {
		return false
	}
	var fe *FetchError
	var be *dataloader.BatchError
	return errors.As(err, &fe) || errors.As(err, &be)
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "graphcache: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("graphcache: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}
