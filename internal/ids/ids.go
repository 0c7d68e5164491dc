// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ids generates lexicographically sortable identifiers for events,
// runs and history records.
package ids

import (
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid/v2"
)

// Source produces monotonic ULIDs. It is safe for concurrent use.
type Source struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewSource creates a source seeded from crypto/rand.
func NewSource() *Source {
	return &Source{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// New returns the next ULID as a string.
func (s *Source) New() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Now(), s.entropy).String()
}

var defaultSource = NewSource()

// New returns a ULID from the package-wide source.
func New() string {
	return defaultSource.New()
}
