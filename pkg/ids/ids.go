// Package ids produces node identifiers for documents edited in a builder
// session. Identifiers must stay unique across every node of a tree, including
// nodes cloned by duplicate and paste.
package ids

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/maruel/ksid"
)

// Generator returns a fresh identifier on every call.
type Generator interface {
	NewID() string
}

// GeneratorFunc adapts a function into a Generator.
type GeneratorFunc func() string

// NewID calls fn.
func (fn GeneratorFunc) NewID() string {
	return fn()
}

// KSID combines a time-ordered ksid with a short random suffix so ids created
// by concurrent sessions on different machines do not collide.
type KSID struct {
	Prefix string
}

// NewKSID returns a ksid-backed generator using prefix (e.g. "field").
func NewKSID(prefix string) KSID {
	return KSID{Prefix: strings.TrimSpace(prefix)}
}

// NewID implements Generator.
func (g KSID) NewID() string {
	id := fmt.Sprintf("%s%04x", ksid.NewID().String(), rand.N(0x10000))
	if g.Prefix == "" {
		return id
	}
	return g.Prefix + "_" + id
}

// Sequence is a deterministic generator for tests and fixtures: prefix-1,
// prefix-2, and so on.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequence returns a Sequence starting at 1.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// NewID implements Generator.
func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("%s-%d", s.prefix, s.next)
}

// Default is the generator used when callers do not supply one.
func Default() Generator {
	return NewKSID("field")
}
