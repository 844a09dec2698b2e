package dataloader

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Stats holds loader counters.
type Stats struct {
	// Batches is the number of fetch calls made.
	Batches atomic.Int64
	// Keys is the number of distinct keys sent to fetch calls.
	Keys atomic.Int64
	// Hits is the number of requests served by a pending or settled entry.
	Hits atomic.Int64
	// Primes is the number of values stored by Prime.
	Primes atomic.Int64
	// Errors is the number of failed fetch calls.
	Errors atomic.Int64
}

// Snapshot returns a point-in-time copy of the counters.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Batches: s.Batches.Load(),
		Keys:    s.Keys.Load(),
		Hits:    s.Hits.Load(),
		Primes:  s.Primes.Load(),
		Errors:  s.Errors.Load(),
	}
}

// StatsSnapshot is a point-in-time snapshot of loader counters.
type StatsSnapshot struct {
	Batches int64
	Keys    int64
	Hits    int64
	Primes  int64
	Errors  int64
}

// String returns a human-readable summary of the counters.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf("batches=%d keys=%d hits=%d primes=%d errors=%d",
		s.Batches, s.Keys, s.Hits, s.Primes, s.Errors)
}

// BatchError is returned to every caller waiting on a batch whose fetch
// failed. Keys that were part of other batches are not affected.
type BatchError struct {
	Loader string   // Loader name, if any
	Keys   []string // Canonical keys of the failed batch
	Err    error    // Underlying fetch error
}

// Error returns the error string.
func (e *BatchError) Error() string {
	var sb strings.Builder
	sb.WriteString("dataloader: ")
	if e.Loader != "" {
		sb.WriteString(e.Loader)
		sb.WriteString(": ")
	}
	fmt.Fprintf(&sb, "fetching %d keys: %v", len(e.Keys), e.Err)
	return sb.String()
}

// Unwrap returns the underlying error.
func (e *BatchError) Unwrap() error {
	return e.Err
}
