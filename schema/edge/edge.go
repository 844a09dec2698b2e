package edge

// Descriptor holds the edge configuration collected by a Builder.
type Descriptor struct {
	Name    string // Edge name
	Type    string // Target type name
	Field   string // Foreign-key attribute
	RefName string // Name of the inverse edge on the target type
	Unique  bool   // Single related entity
	Inverse bool   // Declared with From
	Comment string
}

// Builder configures an edge.
type Builder struct {
	desc *Descriptor
}

// To declares an edge whose related entities reference this entity.
func To(name, typ string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: typ}}
}

// From declares an edge whose related entity is referenced by a field of
// this entity.
func From(name, typ string) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: typ, Inverse: true}}
}

// Unique marks the edge as pointing to at most one entity.
func (b *Builder) Unique() *Builder {
	b.desc.Unique = true
	return b
}

// Field sets the foreign-key attribute of the edge.
func (b *Builder) Field(name string) *Builder {
	b.desc.Field = name
	return b
}

// Ref names the inverse edge on the target type.
func (b *Builder) Ref(name string) *Builder {
	b.desc.RefName = name
	return b
}

// Comment sets a comment on the edge.
func (b *Builder) Comment(c string) *Builder {
	b.desc.Comment = c
	return b
}

// Descriptor returns the edge descriptor.
func (b *Builder) Descriptor() *Descriptor {
	return b.desc
}
