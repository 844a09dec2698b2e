// Package sql implements the dialect.Driver interface on database/sql and
// the small statement builder used by the SQL store.
//
// # Builder
//
// Builder writes identifiers and placeholders in the style of a dialect:
//
//	query, args := sql.Dialect(dialect.Postgres).
//	    Select().
//	    From("books").
//	    Where(sql.In("author_id", 1, 2, 3)).
//	    Query()
//	// SELECT * FROM "books" WHERE "author_id" IN ($1, $2, $3)
//
// # Predicates
//
// Predicates narrow a filtered relationship access. They render to SQL and
// also evaluate against in-memory records (Predicate.Match):
//
//	sql.EQ("status", "published")    // "status" = ?
//	sql.GT("rating", 3)              // "rating" > ?
//	sql.Contains("title", "go")      // "title" LIKE '%go%'
//	sql.IsNull("deleted_at")         // "deleted_at" IS NULL
//	sql.In("lang", "en", "fr")       // "lang" IN (?, ?)
//	sql.Or(sql.LT("year", 1990), sql.GT("year", 2020))
//
// Typed columns avoid mixing up value types:
//
//	var Rating = sql.Field[int]("rating")
//	book.RelatedWhere(ctx, "reviews", Rating.GTE(4))
//
// # Statistics
//
// StatsDriver counts statements and reports slow ones; DebugDriver logs
// every statement with log/slog.
package sql
