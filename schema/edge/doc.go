// Package edge provides fluent builders for declaring relationships between
// entity types.
//
// # Edge Types
//
// There are two edge builders, mirroring where the foreign key lives:
//
//   - edge.To: the related entities reference this one; resolving the edge
//     queries the target store (owned direction).
//   - edge.From: this entity stores the identifier of the related one;
//     resolving the edge is a point lookup by identifier (owning direction).
//
// # Relationship Cardinality
//
// Cardinality is determined by the Unique() modifier:
//
//	// One-to-Many (default): Author has many Books
//	edge.To("books", "Book").Field("author_id")
//
//	// One-to-One: User has one Profile
//	edge.To("profile", "Profile").Field("user_id").Unique()
//
//	// Many-to-One: Book belongs to Author
//	edge.From("author", "Author").Ref("books").Field("author_id").Unique()
//
// # Foreign Keys
//
// Field names the attribute holding the foreign key. For edge.From it is an
// attribute of the declaring type; for edge.To it is an attribute of the
// target type. An edge.To without Field takes the field of the inverse
// edge.From whose Ref points back to it:
//
//	// Author schema
//	edge.To("books", "Book")
//
//	// Book schema
//	edge.From("author", "Author").Ref("books").Field("author_id").Unique()
//
// A non-unique edge.From reads a list of identifiers from its field, for
// example a JSON array column of tag ids.
package edge
