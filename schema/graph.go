package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Graph is a validated set of entity types.
type Graph struct {
	types map[string]*Type
	order []*Type
}

// NewGraph builds a graph from types. It fills defaults (table name,
// identifier field), resolves the foreign-key field of owned relationships
// declared without one, and validates the result.
func NewGraph(types ...*Type) (*Graph, error) {
	g := &Graph{types: make(map[string]*Type, len(types))}
	var errs []error
	for _, t := range types {
		if t == nil || t.Name == "" {
			errs = append(errs, errors.New("type with empty name"))
			continue
		}
		if _, ok := g.types[t.Name]; ok {
			errs = append(errs, fmt.Errorf("type %q declared twice", t.Name))
			continue
		}
		if t.Table == "" {
			t.Table = defaultTable(t.Name)
		}
		if t.ID == "" {
			t.ID = DefaultID
		}
		g.types[t.Name] = t
		g.order = append(g.order, t)
	}
	for _, t := range g.order {
		errs = append(errs, g.link(t)...)
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return g, nil
}

// MustGraph is like NewGraph but panics on error.
func MustGraph(types ...*Type) *Graph {
	g, err := NewGraph(types...)
	if err != nil {
		panic(err)
	}
	return g
}

// Type returns the type with the given name.
func (g *Graph) Type(name string) (*Type, bool) {
	t, ok := g.types[name]
	return t, ok
}

// Types returns the types in declaration order.
func (g *Graph) Types() []*Type {
	return g.order
}

// link resolves and validates the relationships of t.
func (g *Graph) link(t *Type) []error {
	var errs []error
	seen := make(map[string]struct{}, len(t.Relationships))
	for _, r := range t.Relationships {
		where := fmt.Sprintf("%s.%s", t.Name, r.Name)
		if r.Name == "" {
			errs = append(errs, fmt.Errorf("%s: relationship with empty name", t.Name))
			continue
		}
		if _, ok := seen[r.Name]; ok {
			errs = append(errs, fmt.Errorf("%s: declared twice", where))
			continue
		}
		seen[r.Name] = struct{}{}
		if r.Cardinality != Single && r.Cardinality != Many {
			errs = append(errs, fmt.Errorf("%s: invalid cardinality %d", where, r.Cardinality))
		}
		target, ok := g.types[r.Target]
		if !ok {
			errs = append(errs, fmt.Errorf("%s: unknown target type %q", where, r.Target))
			continue
		}
		switch r.Direction {
		case Owning:
			if r.Field == "" {
				errs = append(errs, fmt.Errorf("%s: owning relationship requires a foreign-key field", where))
			}
		case Owned:
			if r.Field == "" {
				r.Field = inverseField(t, r, target)
			}
			if r.Field == "" {
				errs = append(errs, fmt.Errorf("%s: cannot resolve the foreign-key field on %s", where, target.Name))
			}
		default:
			errs = append(errs, fmt.Errorf("%s: invalid direction %d", where, r.Direction))
		}
	}
	return errs
}

// inverseField returns the field of the owning relationship on target that
// points back to r.
func inverseField(t *Type, r *Relationship, target *Type) string {
	for _, inv := range target.Relationships {
		if inv.Direction != Owning || inv.Target != t.Name {
			continue
		}
		if inv.Ref == r.Name || (r.Ref != "" && inv.Name == r.Ref) {
			return inv.Field
		}
	}
	return ""
}

// ValidationError is returned by NewGraph for an invalid set of types.
type ValidationError struct {
	Errors []error
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "schema: " + e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("schema: invalid graph:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors.
func (e *ValidationError) Unwrap() []error {
	return e.Errors
}
