package schema

import (
	"github.com/go-openapi/inflect"

	"github.com/syssam/graphcache/schema/edge"
)

// DefaultID is the identifier field used when a type does not set one.
const DefaultID = "id"

// Cardinality is the number of entities a relationship resolves to.
type Cardinality uint8

// Cardinality values.
const (
	Single Cardinality = iota + 1
	Many
)

// String returns the cardinality name.
func (c Cardinality) String() string {
	switch c {
	case Single:
		return "single"
	case Many:
		return "many"
	default:
		return "invalid"
	}
}

// Direction tells which side of a relationship stores the foreign key.
type Direction uint8

// Direction values.
const (
	// Owning relationships store the identifier of the related entity in
	// a field of the declaring entity.
	Owning Direction = iota + 1
	// Owned relationships are stored by the related entities, which must
	// be queried to resolve the relationship.
	Owned
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Owning:
		return "owning"
	case Owned:
		return "owned"
	default:
		return "invalid"
	}
}

// Relationship is a relationship declared by an entity type.
type Relationship struct {
	Name        string
	Target      string // Target type name
	Cardinality Cardinality
	Direction   Direction
	// Field is the foreign-key attribute: on the declaring type for Owning
	// relationships, on the target type for Owned ones.
	Field   string
	Ref     string // Inverse relationship name on the target type
	Comment string
}

// Unique reports whether the relationship resolves to at most one entity.
func (r *Relationship) Unique() bool { return r.Cardinality == Single }

// Type describes an entity type: its identifier field, its scalar fields
// and its relationships.
type Type struct {
	Name          string
	Table         string
	ID            string
	Fields        []string
	Relationships []*Relationship
}

// Relationship returns the relationship with the given name.
func (t *Type) Relationship(name string) (*Relationship, bool) {
	for _, r := range t.Relationships {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// Option configures a Type.
type Option func(*Type)

// Table sets the storage table of the type.
// Default is the pluralized snake case of the type name.
func Table(name string) Option {
	return func(t *Type) {
		t.Table = name
	}
}

// ID sets the identifier field of the type. Default is "id".
func ID(field string) Option {
	return func(t *Type) {
		t.ID = field
	}
}

// Fields appends scalar fields to the type.
func Fields(names ...string) Option {
	return func(t *Type) {
		t.Fields = append(t.Fields, names...)
	}
}

// Edges appends relationships declared with the edge builders.
func Edges(edges ...*edge.Builder) Option {
	return func(t *Type) {
		for _, e := range edges {
			t.Relationships = append(t.Relationships, FromDescriptor(e.Descriptor()))
		}
	}
}

// NewType returns a type with the given name and options applied.
//
//	schema.NewType("Book",
//	    schema.Fields("title", "author_id"),
//	    schema.Edges(edge.From("author", "Author").Ref("books").Field("author_id").Unique()),
//	)
func NewType(name string, opts ...Option) *Type {
	t := &Type{Name: name}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// FromDescriptor converts an edge descriptor into a relationship.
func FromDescriptor(d *edge.Descriptor) *Relationship {
	r := &Relationship{
		Name:        d.Name,
		Target:      d.Type,
		Cardinality: Many,
		Direction:   Owned,
		Field:       d.Field,
		Ref:         d.RefName,
		Comment:     d.Comment,
	}
	if d.Unique {
		r.Cardinality = Single
	}
	if d.Inverse {
		r.Direction = Owning
	}
	return r
}

// defaultTable derives a table name from a type name: "OrderItem" becomes
// "order_items".
func defaultTable(name string) string {
	return inflect.Pluralize(inflect.Underscore(name))
}
