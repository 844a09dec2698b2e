package graphcache_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/syssam/graphcache"
)

func TestForeignKeys(t *testing.T) {
	t.Parallel()
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	n := 7
	tests := []struct {
		name string
		in   any
		want []any
	}{
		{"nil", nil, nil},
		{"scalar", 42, []any{42}},
		{"string", "42", []any{"42"}},
		{"bytes", []byte("abc"), []any{[]byte("abc")}},
		{"uuid", id, []any{id}},
		{"array", [2]int{1, 2}, []any{[2]int{1, 2}}},
		{"any_slice", []any{1, nil, "2"}, []any{1, "2"}},
		{"typed_slice", []int64{3, 4}, []any{int64(3), int64(4)}},
		{"uuid_slice", []uuid.UUID{id}, []any{id}},
		{"pointer_slice", []*int{&n, nil}, []any{&n}},
		{"empty_slice", []int{}, []any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, graphcache.ForeignKeys(tt.in))
		})
	}
}
