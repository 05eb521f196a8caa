// Package idgen provides the engine's sole source of non-determinism: a
// unique identifier generator for claims, findings and runs. It is injected explicitly so golden tests can supply a
// deterministic double instead of real UUIDs.
package idgen

import (
	"strconv"

	"github.com/google/uuid"
)

// Generator produces opaque, unique string identifiers.
type Generator interface {
	NewID() string
}

// UUIDGenerator generates RFC 4122 version 4 UUIDs.
type UUIDGenerator struct{}

// NewID returns a freshly generated UUID string.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// Counter is a deterministic generator for tests: it emits "id-1",
// "id-2", ... in call order. Not safe for concurrent use, matching the
// core's single-threaded-per-invocation contract.
type Counter struct {
	prefix string
	n      int
}

// NewCounter creates a deterministic counter-based generator with the
// given ID prefix (e.g. "claim" -> "claim-1", "claim-2", ...).
func NewCounter(prefix string) *Counter {
	return &Counter{prefix: prefix}
}

// NewID returns the next sequential ID.
func (c *Counter) NewID() string {
	c.n++
	return c.prefix + "-" + strconv.Itoa(c.n)
}
