package sql

import (
	"fmt"
	"strings"
	"time"

	"github.com/syssam/graphcache/dialect"
)

// Op is a predicate operator.
type Op uint8

// Predicate operators.
const (
	OpEQ Op = iota + 1
	OpNEQ
	OpGT
	OpGTE
	OpLT
	OpLTE
	OpIn
	OpNotIn
	OpContains
	OpHasPrefix
	OpHasSuffix
	OpIsNull
	OpNotNull
	OpAnd
	OpOr
	OpNot
)

var opSQL = [...]string{
	OpEQ:  " = ",
	OpNEQ: " <> ",
	OpGT:  " > ",
	OpGTE: " >= ",
	OpLT:  " < ",
	OpLTE: " <= ",
}

// Predicate is a condition on the columns of a row. It renders to SQL
// through a Builder and evaluates against in-memory records with Match,
// so a filtered relationship behaves the same on every store.
type Predicate struct {
	op       Op
	column   string
	args     []any
	children []*Predicate
}

// EQ returns a "column = v" predicate.
func EQ(column string, v any) *Predicate { return &Predicate{op: OpEQ, column: column, args: []any{v}} }

// NEQ returns a "column <> v" predicate.
func NEQ(column string, v any) *Predicate { return &Predicate{op: OpNEQ, column: column, args: []any{v}} }

// GT returns a "column > v" predicate.
func GT(column string, v any) *Predicate { return &Predicate{op: OpGT, column: column, args: []any{v}} }

// GTE returns a "column >= v" predicate.
func GTE(column string, v any) *Predicate { return &Predicate{op: OpGTE, column: column, args: []any{v}} }

// LT returns a "column < v" predicate.
func LT(column string, v any) *Predicate { return &Predicate{op: OpLT, column: column, args: []any{v}} }

// LTE returns a "column <= v" predicate.
func LTE(column string, v any) *Predicate { return &Predicate{op: OpLTE, column: column, args: []any{v}} }

// In returns a "column IN (vs...)" predicate. An empty list matches nothing.
func In(column string, vs ...any) *Predicate {
	return &Predicate{op: OpIn, column: column, args: vs}
}

// NotIn returns a "column NOT IN (vs...)" predicate. An empty list matches
// every row.
func NotIn(column string, vs ...any) *Predicate {
	return &Predicate{op: OpNotIn, column: column, args: vs}
}

// Contains returns a "column LIKE '%s%'" predicate.
func Contains(column, s string) *Predicate {
	return &Predicate{op: OpContains, column: column, args: []any{s}}
}

// HasPrefix returns a "column LIKE 's%'" predicate.
func HasPrefix(column, s string) *Predicate {
	return &Predicate{op: OpHasPrefix, column: column, args: []any{s}}
}

// HasSuffix returns a "column LIKE '%s'" predicate.
func HasSuffix(column, s string) *Predicate {
	return &Predicate{op: OpHasSuffix, column: column, args: []any{s}}
}

// IsNull returns a "column IS NULL" predicate.
func IsNull(column string) *Predicate { return &Predicate{op: OpIsNull, column: column} }

// NotNull returns a "column IS NOT NULL" predicate.
func NotNull(column string) *Predicate { return &Predicate{op: OpNotNull, column: column} }

// And joins predicates with AND. And() matches every row.
func And(ps ...*Predicate) *Predicate { return &Predicate{op: OpAnd, children: ps} }

// Or joins predicates with OR. Or() matches nothing.
func Or(ps ...*Predicate) *Predicate { return &Predicate{op: OpOr, children: ps} }

// Not negates p.
func Not(p *Predicate) *Predicate { return &Predicate{op: OpNot, children: []*Predicate{p}} }

// Op returns the operator of the predicate.
func (p *Predicate) Op() Op { return p.op }

// Column returns the column of a leaf predicate.
func (p *Predicate) Column() string { return p.column }

// String renders the predicate with "?" placeholders, for logs.
func (p *Predicate) String() string {
	b := Dialect("")
	p.write(b)
	query, args := b.Query()
	return fmt.Sprintf("%s %v", query, args)
}

// write renders the predicate into b.
func (p *Predicate) write(b *Builder) {
	switch p.op {
	case OpAnd, OpOr:
		if len(p.children) == 0 {
			if p.op == OpAnd {
				b.WriteString("1 = 1")
			} else {
				b.WriteString("1 = 0")
			}
			return
		}
		sep := " AND "
		if p.op == OpOr {
			sep = " OR "
		}
		for i, c := range p.children {
			if i > 0 {
				b.WriteString(sep)
			}
			if len(p.children) > 1 && (c.op == OpAnd || c.op == OpOr) {
				b.WriteString("(")
				c.write(b)
				b.WriteString(")")
			} else {
				c.write(b)
			}
		}
	case OpNot:
		b.WriteString("NOT (")
		p.children[0].write(b)
		b.WriteString(")")
	case OpIn, OpNotIn:
		if len(p.args) == 0 {
			if p.op == OpIn {
				b.WriteString("1 = 0")
			} else {
				b.WriteString("1 = 1")
			}
			return
		}
		b.Ident(p.column)
		if p.op == OpNotIn {
			b.WriteString(" NOT")
		}
		b.WriteString(" IN (").Args(p.args...).WriteString(")")
	case OpContains, OpHasPrefix, OpHasSuffix:
		s := escapeLike(p.args[0].(string))
		switch p.op {
		case OpContains:
			s = "%" + s + "%"
		case OpHasPrefix:
			s += "%"
		default:
			s = "%" + s
		}
		b.Ident(p.column).WriteString(" LIKE ").Arg(s)
		// MySQL escapes with a backslash by default and does not accept
		// the single backslash literal.
		if b.dialect != dialect.MySQL {
			b.WriteString(` ESCAPE '\'`)
		}
	case OpIsNull:
		b.Ident(p.column).WriteString(" IS NULL")
	case OpNotNull:
		b.Ident(p.column).WriteString(" IS NOT NULL")
	default:
		b.Ident(p.column).WriteString(opSQL[p.op]).Arg(p.args[0])
	}
}

func escapeLike(s string) string {
	if !strings.ContainsAny(s, `\%_`) {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Match evaluates the predicate against a record. Comparisons follow SQL:
// a NULL or missing column satisfies only IsNull, and values of different
// kinds never match.
func (p *Predicate) Match(r map[string]any) bool {
	switch p.op {
	case OpAnd:
		for _, c := range p.children {
			if !c.Match(r) {
				return false
			}
		}
		return true
	case OpOr:
		for _, c := range p.children {
			if c.Match(r) {
				return true
			}
		}
		return false
	case OpNot:
		return !p.children[0].Match(r)
	}
	v := r[p.column]
	switch p.op {
	case OpIsNull:
		return v == nil
	case OpNotNull:
		return v != nil
	}
	if v == nil {
		return false
	}
	switch p.op {
	case OpIn:
		for _, a := range p.args {
			if c, ok := compare(v, a); ok && c == 0 {
				return true
			}
		}
		return false
	case OpNotIn:
		for _, a := range p.args {
			if c, ok := compare(v, a); ok && c == 0 {
				return false
			}
		}
		return true
	case OpContains, OpHasPrefix, OpHasSuffix:
		s, ok := asString(v)
		if !ok {
			return false
		}
		sub := p.args[0].(string)
		switch p.op {
		case OpContains:
			return strings.Contains(s, sub)
		case OpHasPrefix:
			return strings.HasPrefix(s, sub)
		default:
			return strings.HasSuffix(s, sub)
		}
	}
	c, ok := compare(v, p.args[0])
	if !ok {
		return false
	}
	switch p.op {
	case OpEQ:
		return c == 0
	case OpNEQ:
		return c != 0
	case OpGT:
		return c > 0
	case OpGTE:
		return c >= 0
	case OpLT:
		return c < 0
	case OpLTE:
		return c <= 0
	}
	return false
}

// compare orders a and b. It reports false when they are not comparable.
func compare(a, b any) (int, bool) {
	if b == nil {
		return 0, false
	}
	if x, ok := a.(time.Time); ok {
		y, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return x.Compare(y), true
	}
	if x, ok := asFloat(a); ok {
		y, ok := asFloat(b)
		if !ok {
			return 0, false
		}
		return cmp3(x < y, x > y), true
	}
	if x, ok := asString(a); ok {
		y, ok := asString(b)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	}
	if x, ok := a.(bool); ok {
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		return cmp3(!x && y, x && !y), true
	}
	if fmt.Sprint(a) == fmt.Sprint(b) {
		return 0, true
	}
	return 0, false
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	default:
		return 0
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	case fmt.Stringer:
		return s.String(), true
	}
	return "", false
}

// Field is a typed column that provides type-safe predicate methods.
//
//	var Title = sql.Field[string]("title")
//	book.RelatedWhere(ctx, "reviews", Title.HasPrefix("Re"))
type Field[T any] string

// Name returns the column name.
func (f Field[T]) Name() string { return string(f) }

// EQ returns a predicate that checks if the field equals the given value.
func (f Field[T]) EQ(v T) *Predicate { return EQ(string(f), v) }

// NEQ returns a predicate that checks if the field does not equal the given value.
func (f Field[T]) NEQ(v T) *Predicate { return NEQ(string(f), v) }

// GT returns a predicate that checks if the field is greater than the given value.
func (f Field[T]) GT(v T) *Predicate { return GT(string(f), v) }

// GTE returns a predicate that checks if the field is greater than or equal to the given value.
func (f Field[T]) GTE(v T) *Predicate { return GTE(string(f), v) }

// LT returns a predicate that checks if the field is less than the given value.
func (f Field[T]) LT(v T) *Predicate { return LT(string(f), v) }

// LTE returns a predicate that checks if the field is less than or equal to the given value.
func (f Field[T]) LTE(v T) *Predicate { return LTE(string(f), v) }

// In returns a predicate that checks if the field value is in the given list.
func (f Field[T]) In(vs ...T) *Predicate { return In(string(f), toAny(vs)...) }

// NotIn returns a predicate that checks if the field value is not in the given list.
func (f Field[T]) NotIn(vs ...T) *Predicate { return NotIn(string(f), toAny(vs)...) }

// IsNull returns a predicate that checks if the field is NULL.
func (f Field[T]) IsNull() *Predicate { return IsNull(string(f)) }

// NotNull returns a predicate that checks if the field is not NULL.
func (f Field[T]) NotNull() *Predicate { return NotNull(string(f)) }

// Contains returns a predicate that checks if the field contains the given substring.
func (f Field[T]) Contains(s string) *Predicate { return Contains(string(f), s) }

// HasPrefix returns a predicate that checks if the field has the given prefix.
func (f Field[T]) HasPrefix(s string) *Predicate { return HasPrefix(string(f), s) }

// HasSuffix returns a predicate that checks if the field has the given suffix.
func (f Field[T]) HasSuffix(s string) *Predicate { return HasSuffix(string(f), s) }

func toAny[T any](vs []T) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}
