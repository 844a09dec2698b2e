// Package schema describes entity types and their relationships.
//
// The description is read-only metadata consumed by the cache: for each
// entity type, its identifier field, its scalar fields and its ordered
// relationship declarations. A relationship has a cardinality (Single or
// Many), a direction (Owning: this entity stores the foreign key; Owned:
// the related entities do) and a target type.
//
// # Quick Start
//
//	g, err := schema.NewGraph(
//	    schema.NewType("Author",
//	        schema.Fields("name"),
//	        schema.Edges(edge.To("books", "Book")),
//	    ),
//	    schema.NewType("Book",
//	        schema.Fields("title", "author_id"),
//	        schema.Edges(edge.From("author", "Author").Ref("books").Field("author_id").Unique()),
//	    ),
//	)
//
// # Files
//
// The same graph can be loaded from YAML with Load or LoadFile, and Watch
// reloads a schema file when it changes. See File for the format.
package schema
