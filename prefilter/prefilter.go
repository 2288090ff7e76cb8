// Package prefilter provides fast candidate scanning for literal prefixes.
//
// When a program's matches must all begin with one of a known set of literal
// byte strings, the DFA can skip from a start state directly to the next
// occurrence of any of those literals instead of feeding every byte through
// the transition table. A prefilter match is only a candidate: the DFA still
// verifies it, so prefilters must never miss a real match but may report
// false positives.
//
// The constructor picks a strategy from the shape of the literals:
//   - one single-byte literal -> IndexByte scan
//   - one literal             -> substring scan
//   - several literals        -> Aho-Corasick automaton
package prefilter

import (
	"bytes"

	"github.com/coregx/ahocorasick"
)

// Prefilter finds candidate positions where a literal prefix occurs.
//
// Implementations are immutable and safe for concurrent use.
type Prefilter interface {
	// Find returns the index of the first literal occurrence at or after
	// start, or -1 if none remains.
	Find(haystack []byte, start int) int

	// HeapBytes returns the approximate heap memory held by the prefilter.
	// The DFA counts this against its cache budget.
	HeapBytes() int
}

// NewLiterals builds a Prefilter for the given literal prefixes.
// Returns nil if lits is empty or contains an empty literal (an empty
// literal occurs everywhere, so scanning for it is useless).
func NewLiterals(lits [][]byte) (Prefilter, error) {
	if len(lits) == 0 {
		return nil, nil
	}
	for _, lit := range lits {
		if len(lit) == 0 {
			return nil, nil
		}
	}
	if len(lits) == 1 {
		if len(lits[0]) == 1 {
			return &byteSearcher{b: lits[0][0]}, nil
		}
		lit := make([]byte, len(lits[0]))
		copy(lit, lits[0])
		return &memmemSearcher{lit: lit}, nil
	}

	builder := ahocorasick.NewBuilder()
	for _, lit := range lits {
		builder.AddPattern(lit)
	}
	auto, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return &acSearcher{auto: auto, heapBytes: heapEstimate(lits)}, nil
}

// byteSearcher scans for a single byte.
type byteSearcher struct {
	b byte
}

func (s *byteSearcher) Find(haystack []byte, start int) int {
	if start >= len(haystack) {
		return -1
	}
	i := bytes.IndexByte(haystack[start:], s.b)
	if i == -1 {
		return -1
	}
	return start + i
}

func (s *byteSearcher) HeapBytes() int {
	return 0
}

// memmemSearcher scans for a single multi-byte literal.
type memmemSearcher struct {
	lit []byte
}

func (s *memmemSearcher) Find(haystack []byte, start int) int {
	if start >= len(haystack) {
		return -1
	}
	i := bytes.Index(haystack[start:], s.lit)
	if i == -1 {
		return -1
	}
	return start + i
}

func (s *memmemSearcher) HeapBytes() int {
	return len(s.lit)
}

// acSearcher scans for many literals with an Aho-Corasick automaton.
type acSearcher struct {
	auto      *ahocorasick.Automaton
	heapBytes int
}

func (s *acSearcher) Find(haystack []byte, start int) int {
	if start >= len(haystack) {
		return -1
	}
	m := s.auto.Find(haystack, start)
	if m == nil {
		return -1
	}
	return m.Start
}

func (s *acSearcher) HeapBytes() int {
	return s.heapBytes
}

// heapEstimate approximates automaton memory from its pattern bytes.
func heapEstimate(lits [][]byte) int {
	total := 0
	for _, lit := range lits {
		total += len(lit)
	}
	// Aho-Corasick nodes cost far more than one byte per pattern byte.
	return 16 * total
}
