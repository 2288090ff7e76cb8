// Package nfa defines the compiled byte-oriented NFA program consumed by the
// lazy DFA engine.
//
// A Program is an immutable, ordered list of instructions together with the
// derived byte equivalence classes and a handful of configuration flags. It
// is produced once (by a compiler front end, or by the Builder in this
// package) and then shared read-only between any number of searches.
//
// The instruction set is deliberately small:
//   - Bytes: consume one input byte if it falls in [lo, hi]
//   - Split: epsilon transition to two alternatives (leftmost preferred)
//   - Save: capture slot marker, an epsilon passthrough for the DFA
//   - EmptyLook: zero-width assertion (^, $, \b, ...)
//   - Match: accept, tagged with the pattern slot that matched
package nfa

import (
	"fmt"

	"github.com/coregx/lazydfa/prefilter"
)

// InstPtr indexes an instruction in a Program.
// This is a 32-bit unsigned integer for compact representation; the DFA packs
// these into delta-encoded state payloads.
type InstPtr uint32

// InstKind identifies the type of an instruction.
type InstKind uint8

const (
	// InstMatch marks an accepting position. Slot identifies which pattern
	// of a multi-pattern program matched.
	InstMatch InstKind = iota

	// InstBytes consumes one byte in the inclusive range [Lo, Hi].
	InstBytes

	// InstSplit is an epsilon transition to two alternatives. Goto1 is
	// preferred over Goto2 (leftmost-first semantics).
	InstSplit

	// InstSave records a capture slot boundary. The DFA treats it as a
	// transparent epsilon transition.
	InstSave

	// InstEmptyLook is a zero-width assertion that succeeds only when the
	// assertion holds at the current position.
	InstEmptyLook
)

// String returns a human-readable representation of the InstKind
func (k InstKind) String() string {
	switch k {
	case InstMatch:
		return "Match"
	case InstBytes:
		return "Bytes"
	case InstSplit:
		return "Split"
	case InstSave:
		return "Save"
	case InstEmptyLook:
		return "EmptyLook"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Look identifies a zero-width assertion.
type Look uint8

const (
	// LookStartText is \A - start of input
	LookStartText Look = iota

	// LookEndText is \z - end of input
	LookEndText

	// LookStartLine is ^ - start of line (position 0 or just after \n)
	LookStartLine

	// LookEndLine is $ - end of line (end of input or just before \n)
	LookEndLine

	// LookWordBoundaryASCII is \b with ASCII-only word characters
	LookWordBoundaryASCII

	// LookNotWordBoundaryASCII is \B with ASCII-only word characters
	LookNotWordBoundaryASCII

	// LookWordBoundary is Unicode-aware \b. The DFA cannot resolve it for
	// non-ASCII input and quits when such a byte is seen.
	LookWordBoundary

	// LookNotWordBoundary is Unicode-aware \B.
	LookNotWordBoundary
)

// String returns a human-readable representation of the Look
func (l Look) String() string {
	switch l {
	case LookStartText:
		return `\A`
	case LookEndText:
		return `\z`
	case LookStartLine:
		return "^"
	case LookEndLine:
		return "$"
	case LookWordBoundaryASCII:
		return `\b-ascii`
	case LookNotWordBoundaryASCII:
		return `\B-ascii`
	case LookWordBoundary:
		return `\b`
	case LookNotWordBoundary:
		return `\B`
	default:
		return fmt.Sprintf("Unknown(%d)", l)
	}
}

// IsWordBoundary returns true for any of the four word boundary assertions.
func (l Look) IsWordBoundary() bool {
	switch l {
	case LookWordBoundaryASCII, LookNotWordBoundaryASCII,
		LookWordBoundary, LookNotWordBoundary:
		return true
	}
	return false
}

// Inst is a single NFA instruction. The kind determines which fields are
// meaningful.
type Inst struct {
	kind InstKind

	// For Bytes: inclusive byte range
	lo, hi byte

	// Target for Bytes/Save/EmptyLook, and first (preferred) branch of Split
	next InstPtr

	// Second branch of Split
	alt InstPtr

	// Assertion for EmptyLook
	look Look

	// Pattern index for Match, capture slot for Save
	slot uint32
}

// Kind returns the instruction's type
func (in *Inst) Kind() InstKind {
	return in.kind
}

// ByteRange returns the byte range and target for Bytes instructions.
func (in *Inst) ByteRange() (lo, hi byte, next InstPtr) {
	return in.lo, in.hi, in.next
}

// Matches returns true if a Bytes instruction matches the given byte.
func (in *Inst) Matches(b byte) bool {
	return in.lo <= b && b <= in.hi
}

// Split returns the two branches of a Split instruction, preferred first.
func (in *Inst) Split() (goto1, goto2 InstPtr) {
	return in.next, in.alt
}

// Next returns the target of a Bytes, Save or EmptyLook instruction.
func (in *Inst) Next() InstPtr {
	return in.next
}

// Look returns the assertion of an EmptyLook instruction.
func (in *Inst) Look() Look {
	return in.look
}

// MatchSlot returns the pattern index of a Match instruction.
func (in *Inst) MatchSlot() uint32 {
	return in.slot
}

// SaveSlot returns the capture slot of a Save instruction.
func (in *Inst) SaveSlot() uint32 {
	return in.slot
}

// String returns a human-readable representation of the instruction
func (in *Inst) String() string {
	switch in.kind {
	case InstMatch:
		return fmt.Sprintf("Match(%d)", in.slot)
	case InstBytes:
		return fmt.Sprintf("Bytes(%q-%q) -> %d", in.lo, in.hi, in.next)
	case InstSplit:
		return fmt.Sprintf("Split(%d, %d)", in.next, in.alt)
	case InstSave:
		return fmt.Sprintf("Save(%d) -> %d", in.slot, in.next)
	case InstEmptyLook:
		return fmt.Sprintf("EmptyLook(%s) -> %d", in.look, in.next)
	default:
		return fmt.Sprintf("Unknown(%d)", in.kind)
	}
}

// Program is an immutable compiled NFA.
//
// The DFA never mutates a Program; one Program may be shared by concurrent
// searches as long as each search uses its own DFA cache.
type Program struct {
	insts      []Inst
	start      InstPtr
	numMatches int

	// byteClasses maps each byte to its equivalence class. Two bytes in the
	// same class are indistinguishable to every instruction in the program.
	// Class byteClasses[255]+1 is reserved for the synthetic EOF sentinel,
	// so the DFA's transition stride is byteClasses[255]+2.
	byteClasses [256]byte

	isReverse              bool
	isAnchoredStart        bool
	hasUnicodeWordBoundary bool

	// dfaSizeLimit bounds the approximate heap bytes the DFA cache may hold
	// before it is flushed.
	dfaSizeLimit int

	// prefixes finds occurrences of the program's literal prefixes, when any
	// were extracted. May be nil.
	prefixes prefilter.Prefilter
}

// Len returns the number of instructions in the program
func (p *Program) Len() int {
	return len(p.insts)
}

// Inst returns the instruction at the given index.
// The returned pointer aliases the program and must not be mutated.
func (p *Program) Inst(ip InstPtr) *Inst {
	return &p.insts[ip]
}

// Start returns the entry instruction of the program
func (p *Program) Start() InstPtr {
	return p.start
}

// NumMatches returns the number of patterns compiled into this program.
// It is 1 for a single regex and >1 for a regex set.
func (p *Program) NumMatches() int {
	return p.numMatches
}

// ByteClass returns the equivalence class of the given byte
func (p *Program) ByteClass(b byte) byte {
	return p.byteClasses[b]
}

// NumByteClasses returns the transition stride of the program: the number of
// byte equivalence classes plus one for the synthetic EOF class.
func (p *Program) NumByteClasses() int {
	return int(p.byteClasses[255]) + 2
}

// EOFClass returns the equivalence class reserved for the EOF sentinel
func (p *Program) EOFClass() int {
	return p.NumByteClasses() - 1
}

// IsReverse returns true if this program matches its input back to front.
// Reverse programs are used to find the start of a match after a forward
// pass has located its end.
func (p *Program) IsReverse() bool {
	return p.isReverse
}

// IsAnchoredStart returns true if the program only matches at its start
// position (no implicit leading .*?).
func (p *Program) IsAnchoredStart() bool {
	return p.isAnchoredStart
}

// HasUnicodeWordBoundary returns true if the program contains a
// Unicode-aware \b or \B assertion.
func (p *Program) HasUnicodeWordBoundary() bool {
	return p.hasUnicodeWordBoundary
}

// DFASizeLimit returns the cache size budget, in approximate heap bytes,
// granted to a DFA running this program.
func (p *Program) DFASizeLimit() int {
	return p.dfaSizeLimit
}

// Prefixes returns the literal-prefix searcher for this program, or nil if
// no usable prefixes were provided.
func (p *Program) Prefixes() prefilter.Prefilter {
	return p.prefixes
}

// ApproximateSize returns the approximate heap bytes held by the program
// itself. The DFA counts this against its cache budget so that the budget
// reflects total engine memory, not just cached states.
func (p *Program) ApproximateSize() int {
	const instSize = 16 // packed Inst footprint
	size := len(p.insts)*instSize + len(p.byteClasses)
	if p.prefixes != nil {
		size += p.prefixes.HeapBytes()
	}
	return size
}
