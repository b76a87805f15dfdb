// Package id provides sortable ID generation utilities.
package id

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewULID generates a ULID (Universally Unique Lexicographically Sortable Identifier).
// Returns a 26-character Crockford Base32 string. IDs generated within the same
// millisecond increase monotonically, so they sort by creation order.
func NewULID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// ParseULID reports whether s is a well-formed ULID and returns its timestamp.
func ParseULID(s string) (time.Time, bool) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, false
	}
	return ulid.Time(u.Time()), true
}
