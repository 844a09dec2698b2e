package sql

import (
	"strconv"
	"strings"

	"github.com/syssam/graphcache/dialect"
)

// Builder is the low-level SQL string builder. It quotes identifiers and
// writes placeholders in the style of its dialect, and collects the
// arguments bound to them.
type Builder struct {
	sb      strings.Builder
	dialect string
	args    []any
}

// Dialect returns a Builder for the given dialect.
func Dialect(name string) *Builder {
	return &Builder{dialect: name}
}

// Quote quotes an identifier. Identifiers with a dot are quoted per part.
func (b *Builder) Quote(ident string) string {
	q := `"`
	if b.dialect == dialect.MySQL {
		q = "`"
	}
	parts := strings.Split(ident, ".")
	for i, p := range parts {
		parts[i] = q + strings.ReplaceAll(p, q, q+q) + q
	}
	return strings.Join(parts, ".")
}

// Ident writes a quoted identifier.
func (b *Builder) Ident(ident string) *Builder {
	b.sb.WriteString(b.Quote(ident))
	return b
}

// WriteString writes raw SQL.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// Arg binds v and writes its placeholder.
func (b *Builder) Arg(v any) *Builder {
	b.args = append(b.args, v)
	if b.dialect == dialect.Postgres {
		b.sb.WriteString("$" + strconv.Itoa(len(b.args)))
	} else {
		b.sb.WriteByte('?')
	}
	return b
}

// Args binds vs as a comma-separated list of placeholders.
func (b *Builder) Args(vs ...any) *Builder {
	for i, v := range vs {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.Arg(v)
	}
	return b
}

// Query returns the statement and its arguments.
func (b *Builder) Query() (string, []any) {
	return b.sb.String(), b.args
}

// Selector is a SELECT statement over a single table.
//
//	query, args := sql.Dialect(dialect.Postgres).
//	    Select("id", "title").
//	    From("books").
//	    Where(sql.EQ("author_id", 1)).
//	    Query()
//	// SELECT "id", "title" FROM "books" WHERE "author_id" = $1
type Selector struct {
	b       *Builder
	columns []string
	count   bool
	table   string
	where   []*Predicate
	order   []string
}

// Select starts a SELECT statement. No columns means all columns.
func (b *Builder) Select(columns ...string) *Selector {
	return &Selector{b: b, columns: columns}
}

// Count starts a SELECT COUNT(*) statement.
func (b *Builder) Count() *Selector {
	return &Selector{b: b, count: true}
}

// From sets the table of the selector.
func (s *Selector) From(table string) *Selector {
	s.table = table
	return s
}

// Where appends predicates, joined with AND.
func (s *Selector) Where(ps ...*Predicate) *Selector {
	s.where = append(s.where, ps...)
	return s
}

// OrderBy appends ascending ordering columns.
func (s *Selector) OrderBy(columns ...string) *Selector {
	s.order = append(s.order, columns...)
	return s
}

// Query returns the statement and its arguments.
func (s *Selector) Query() (string, []any) {
	b := s.b
	b.WriteString("SELECT ")
	switch {
	case s.count:
		b.WriteString("COUNT(*)")
	case len(s.columns) == 0:
		b.WriteString("*")
	default:
		for i, c := range s.columns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Ident(c)
		}
	}
	b.WriteString(" FROM ").Ident(s.table)
	if len(s.where) > 0 {
		b.WriteString(" WHERE ")
		And(s.where...).write(b)
	}
	if len(s.order) > 0 {
		b.WriteString(" ORDER BY ")
		for i, c := range s.order {
			if i > 0 {
				b.WriteString(", ")
			}
			b.Ident(c)
		}
	}
	return b.Query()
}
