package sql

import (
	"testing"
	"time"

	"github.com/syssam/graphcache/dialect"

	"github.com/stretchr/testify/assert"
)

func TestPredicateSQL(t *testing.T) {
	tests := []struct {
		name     string
		dialect  string
		pred     *Predicate
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "eq_postgres",
			dialect:  dialect.Postgres,
			pred:     EQ("status", "published"),
			wantSQL:  `"status" = $1`,
			wantArgs: []any{"published"},
		},
		{
			name:     "neq_mysql",
			dialect:  dialect.MySQL,
			pred:     NEQ("status", "draft"),
			wantSQL:  "`status` <> ?",
			wantArgs: []any{"draft"},
		},
		{
			name:     "comparisons",
			dialect:  dialect.SQLite,
			pred:     And(GT("a", 1), GTE("b", 2), LT("c", 3), LTE("d", 4)),
			wantSQL:  `"a" > ? AND "b" >= ? AND "c" < ? AND "d" <= ?`,
			wantArgs: []any{1, 2, 3, 4},
		},
		{
			name:     "in",
			dialect:  dialect.Postgres,
			pred:     In("lang", "en", "fr"),
			wantSQL:  `"lang" IN ($1, $2)`,
			wantArgs: []any{"en", "fr"},
		},
		{
			name:    "empty_in",
			dialect: dialect.Postgres,
			pred:    In("lang"),
			wantSQL: "1 = 0",
		},
		{
			name:     "not_in",
			dialect:  dialect.MySQL,
			pred:     NotIn("lang", "de"),
			wantSQL:  "`lang` NOT IN (?)",
			wantArgs: []any{"de"},
		},
		{
			name:    "empty_not_in",
			dialect: dialect.MySQL,
			pred:    NotIn("lang"),
			wantSQL: "1 = 1",
		},
		{
			name:     "contains_escaped",
			dialect:  dialect.SQLite,
			pred:     Contains("title", "50%_off"),
			wantSQL:  `"title" LIKE ? ESCAPE '\'`,
			wantArgs: []any{`%50\%\_off%`},
		},
		{
			name:     "prefix_mysql",
			dialect:  dialect.MySQL,
			pred:     HasPrefix("title", "Go"),
			wantSQL:  "`title` LIKE ?",
			wantArgs: []any{"Go%"},
		},
		{
			name:     "suffix",
			dialect:  dialect.Postgres,
			pred:     HasSuffix("title", "!"),
			wantSQL:  `"title" LIKE $1 ESCAPE '\'`,
			wantArgs: []any{"%!"},
		},
		{
			name:    "null_checks",
			dialect: dialect.Postgres,
			pred:    Or(IsNull("deleted_at"), NotNull("archived_at")),
			wantSQL: `"deleted_at" IS NULL OR "archived_at" IS NOT NULL`,
		},
		{
			name:     "nested",
			dialect:  dialect.Postgres,
			pred:     And(EQ("a", 1), Or(EQ("b", 2), EQ("c", 3)), Not(EQ("d", 4))),
			wantSQL:  `"a" = $1 AND ("b" = $2 OR "c" = $3) AND NOT ("d" = $4)`,
			wantArgs: []any{1, 2, 3, 4},
		},
		{
			name:    "empty_and",
			dialect: dialect.Postgres,
			pred:    And(),
			wantSQL: "1 = 1",
		},
		{
			name:    "empty_or",
			dialect: dialect.Postgres,
			pred:    Or(),
			wantSQL: "1 = 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Dialect(tt.dialect)
			tt.pred.write(b)
			query, args := b.Query()
			assert.Equal(t, tt.wantSQL, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestPredicateMatch(t *testing.T) {
	published := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	record := map[string]any{
		"id":        int64(1),
		"title":     "The Go Programming Language",
		"rating":    4,
		"price":     32.5,
		"published": published,
		"isbn":      []byte("978-0134190440"),
		"hidden":    false,
		"deleted":   nil,
	}

	tests := []struct {
		name string
		pred *Predicate
		want bool
	}{
		{"eq_int", EQ("rating", 4), true},
		{"eq_cross_numeric", EQ("id", 1.0), true},
		{"eq_string", EQ("title", "The Go Programming Language"), true},
		{"eq_kind_mismatch", EQ("rating", "4"), false},
		{"neq", NEQ("rating", 5), true},
		{"neq_null", NEQ("deleted", 1), false},
		{"gt", GT("price", 30), true},
		{"gte_equal", GTE("rating", 4), true},
		{"lt", LT("rating", 4), false},
		{"lte", LTE("price", 32.5), true},
		{"time_gt", GT("published", published.Add(-time.Hour)), true},
		{"time_lt", LT("published", published.Add(-time.Hour)), false},
		{"bool_eq", EQ("hidden", false), true},
		{"bytes_as_string", HasPrefix("isbn", "978"), true},
		{"in", In("rating", 3, 4, 5), true},
		{"in_miss", In("rating", 1, 2), false},
		{"in_empty", In("rating"), false},
		{"not_in", NotIn("rating", 1, 2), true},
		{"not_in_hit", NotIn("rating", 4), false},
		{"contains", Contains("title", "Go"), true},
		{"contains_case_sensitive", Contains("title", "go "), false},
		{"has_suffix", HasSuffix("title", "Language"), true},
		{"contains_non_string", Contains("rating", "4"), false},
		{"is_null", IsNull("deleted"), true},
		{"is_null_missing", IsNull("nope"), true},
		{"not_null", NotNull("title"), true},
		{"missing_column", EQ("nope", 1), false},
		{"and", And(EQ("rating", 4), GT("price", 10)), true},
		{"and_short", And(EQ("rating", 4), GT("price", 100)), false},
		{"or", Or(EQ("rating", 1), EQ("rating", 4)), true},
		{"not", Not(EQ("rating", 1)), true},
		{"empty_and", And(), true},
		{"empty_or", Or(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pred.Match(record))
		})
	}
}

func TestField(t *testing.T) {
	rating := Field[int]("rating")
	title := Field[string]("title")

	assert.Equal(t, "rating", rating.Name())
	assert.Equal(t, OpEQ, rating.EQ(1).Op())
	assert.Equal(t, "rating", rating.EQ(1).Column())

	record := map[string]any{"rating": 4, "title": "Dune"}
	assert.True(t, rating.In(3, 4).Match(record))
	assert.False(t, rating.NotIn(3, 4).Match(record))
	assert.True(t, rating.GT(3).Match(record))
	assert.True(t, rating.GTE(4).Match(record))
	assert.False(t, rating.LT(4).Match(record))
	assert.True(t, rating.LTE(4).Match(record))
	assert.True(t, rating.NEQ(5).Match(record))
	assert.True(t, title.HasPrefix("Du").Match(record))
	assert.True(t, title.HasSuffix("ne").Match(record))
	assert.True(t, title.Contains("un").Match(record))
	assert.False(t, title.IsNull().Match(record))
	assert.True(t, title.NotNull().Match(record))
}

func TestPredicateString(t *testing.T) {
	assert.Equal(t, `"rating" >= ? [4]`, GTE("rating", 4).String())
}
