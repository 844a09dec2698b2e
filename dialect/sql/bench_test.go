package sql

import (
	"testing"

	"github.com/syssam/graphcache/dialect"
)

func BenchmarkSelector_In(b *testing.B) {
	ids := make([]any, 100)
	for i := range ids {
		ids[i] = i
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Dialect(dialect.Postgres).Select().From("books").Where(In("id", ids...)).Query()
	}
}

func BenchmarkSelector_Filtered(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Dialect(dialect.MySQL).Select().From("reviews").
			Where(
				EQ("book_id", 1),
				Or(GT("rating", 3), IsNull("rating")),
				Contains("body", "great"),
			).
			Query()
	}
}

func BenchmarkPredicates_Match(b *testing.B) {
	p := And(
		EQ("status", "active"),
		Or(
			GT("age", 18),
			EQ("role", "admin"),
		),
		In("department", "eng", "product"),
		NotNull("email"),
		Contains("name", "John"),
	)
	record := map[string]any{
		"status":     "active",
		"age":        30,
		"department": "eng",
		"email":      "john@example.com",
		"name":       "John Doe",
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = p.Match(record)
	}
}
