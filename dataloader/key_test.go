package dataloader

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	const canonical = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"int", 42, "42"},
		{"int64", int64(42), "42"},
		{"uint8", uint8(42), "42"},
		{"string", "42", "42"},
		{"bytes", []byte("42"), "42"},
		{"integral_float", 42.0, "42"},
		{"fraction", 4.5, "4.5"},
		{"bool", true, "true"},
		{"uuid", id, canonical},
		{"uuid_upper", "6BA7B810-9DAD-11D1-80B4-00C04FD430C8", canonical},
		{"uuid_braces", "{6ba7b810-9dad-11d1-80b4-00c04fd430c8}", canonical},
		{"uuid_urn", "urn:uuid:6ba7b810-9dad-11d1-80b4-00c04fd430c8", canonical},
		{"uuid_hex", "6ba7b8109dad11d180b400c04fd430c8", canonical},
		{"uuid_binary", id[:], canonical},
		{"uuid_text_bytes", []byte("6BA7B810-9DAD-11D1-80B4-00C04FD430C8"), canonical},
		{"not_uuid", "6ba7b810-9dad-11d1-80b4-00c04fd430cz", "6ba7b810-9dad-11d1-80b4-00c04fd430cz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Key(tt.in))
		})
	}
}

func TestLoader_UUIDKeysShareEntry(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	var calls int
	l := New(func(_ context.Context, ids []any) ([]uuid.UUID, error) {
		calls++
		return []uuid.UUID{id}, nil
	}, func(u uuid.UUID) any { return u })

	got, err := l.LoadMany(context.Background(), []any{
		id,
		"6BA7B810-9DAD-11D1-80B4-00C04FD430C8",
		id[:],
	})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{id, id, id}, got)
	assert.Equal(t, 1, calls)
	assert.EqualValues(t, 2, l.Stats().Hits)
}
