package dataloader

import (
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
)

// Key returns the canonical form of an identifier. Two identifiers denote
// the same entity iff their keys are equal, so a numeric primary key and
// its string rendering share one cache entry.
//
// UUIDs are keyed by their lowercase hyphenated form, whether they come as
// uuid.UUID, as any string uuid.Parse accepts, or as the 16 raw bytes
// MySQL returns for BINARY(16) columns.
func Key(id any) string {
	switch v := id.(type) {
	case string:
		return uuidKey(v)
	case []byte:
		if len(v) == 16 {
			if u, err := uuid.FromBytes(v); err == nil {
				return u.String()
			}
		}
		return uuidKey(string(v))
	case int:
		return strconv.Itoa(v)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return formatFloat(float64(v), 32)
	case float64:
		return formatFloat(v, 64)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// formatFloat renders integral floats as integers; JSON decoders and some
// drivers hand back 1.0 for a key stored as 1.
func formatFloat(f float64, bitSize int) string {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, bitSize)
}

// uuidKey returns the canonical form of s if it is a UUID, or s.
func uuidKey(s string) string {
	switch len(s) {
	case 32, 36, 38, 45:
		if u, err := uuid.Parse(s); err == nil {
			return u.String()
		}
	}
	return s
}
