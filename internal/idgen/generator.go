package idgen

import (
	"sync"

	"github.com/google/uuid"
)

// Generator mints identifier tokens.
type Generator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, so tokens sort by
// creation time in both stores.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined tokens for testing.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that returns tokens in order.
//
//	gen := NewFixedGenerator("log-1", "log-2")
//	gen.Generate() // "log-1"
//	gen.Generate() // "log-2"
//	gen.Generate() // panic: all tokens exhausted
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next predetermined token.
//
// Panics if all tokens have been consumed, so a test that saves more records
// than it planned for fails loudly.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.tokens) {
		panic("FixedGenerator: all tokens exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}
