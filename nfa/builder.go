package nfa

import (
	"math"

	"github.com/coregx/lazydfa/prefilter"
)

// MaxInsts is the largest number of instructions a Program may hold. The DFA
// packs instruction pointers into signed 32-bit deltas, so the limit is
// enforced here, once, at build time.
const MaxInsts = math.MaxInt32

// DefaultDFASizeLimit is the default cache budget granted to a DFA, in
// approximate heap bytes.
const DefaultDFASizeLimit = 2 * (1 << 20)

// Builder assembles a Program instruction by instruction.
//
// Instructions are appended in order and refer to each other by index, which
// allows forward references: emit a placeholder target and fix it up with
// Patch once the target's index is known. Build validates the result and
// derives the byte equivalence classes.
//
// The Builder stands in for a regex compiler front end; it performs no
// parsing of its own.
type Builder struct {
	insts         []Inst
	start         InstPtr
	numMatches    int
	reverse       bool
	anchoredStart bool
	sizeLimit     int
	prefixes      prefilter.Prefilter
	unicodeWord   bool
	classes       *ByteClassSet
}

// NewBuilder creates an empty Builder with the default cache budget.
func NewBuilder() *Builder {
	return &Builder{
		sizeLimit: DefaultDFASizeLimit,
		classes:   NewByteClassSet(),
	}
}

// Bytes appends an instruction consuming one byte in [lo, hi], continuing at
// next. Returns the new instruction's index.
func (b *Builder) Bytes(lo, hi byte, next InstPtr) InstPtr {
	b.classes.SetRange(lo, hi)
	return b.push(Inst{kind: InstBytes, lo: lo, hi: hi, next: next})
}

// Byte appends an instruction consuming exactly the byte c.
func (b *Builder) Byte(c byte, next InstPtr) InstPtr {
	return b.Bytes(c, c, next)
}

// Split appends an epsilon split. goto1 is preferred over goto2.
func (b *Builder) Split(goto1, goto2 InstPtr) InstPtr {
	return b.push(Inst{kind: InstSplit, next: goto1, alt: goto2})
}

// Save appends a capture slot marker continuing at next.
func (b *Builder) Save(slot uint32, next InstPtr) InstPtr {
	return b.push(Inst{kind: InstSave, slot: slot, next: next})
}

// EmptyLook appends a zero-width assertion continuing at next.
func (b *Builder) EmptyLook(look Look, next InstPtr) InstPtr {
	if look == LookWordBoundary || look == LookNotWordBoundary {
		b.unicodeWord = true
		// Every transition on a non-ASCII byte becomes a quit transition,
		// so non-ASCII bytes must not share a class with ASCII ones.
		b.classes.SetRange(0x80, 0xFF)
	}
	if look.IsWordBoundary() {
		// Word boundary resolution distinguishes word bytes from everything
		// else, so the word class must survive alphabet reduction.
		b.classes.SetRange('a', 'z')
		b.classes.SetRange('A', 'Z')
		b.classes.SetRange('0', '9')
		b.classes.SetByte('_')
	}
	if look == LookStartLine || look == LookEndLine {
		b.classes.SetByte('\n')
	}
	return b.push(Inst{kind: InstEmptyLook, look: look, next: next})
}

// Match appends an accepting instruction for the given pattern slot.
func (b *Builder) Match(slot uint32) InstPtr {
	if int(slot)+1 > b.numMatches {
		b.numMatches = int(slot) + 1
	}
	return b.push(Inst{kind: InstMatch, slot: slot})
}

// Patch rewrites the primary target of the instruction at ip. For Split
// instructions goto2 patches the second branch; it is ignored otherwise.
func (b *Builder) Patch(ip InstPtr, goto1 InstPtr, goto2 InstPtr) {
	in := &b.insts[ip]
	in.next = goto1
	if in.kind == InstSplit {
		in.alt = goto2
	}
}

// SetStart marks the entry instruction of the program.
func (b *Builder) SetStart(ip InstPtr) {
	b.start = ip
}

// SetReverse marks the program as matching input back to front.
func (b *Builder) SetReverse(reverse bool) {
	b.reverse = reverse
}

// SetAnchoredStart marks the program as matching only at the search's start
// position.
func (b *Builder) SetAnchoredStart(anchored bool) {
	b.anchoredStart = anchored
}

// SetDFASizeLimit overrides the cache budget, in approximate heap bytes.
// A limit of zero disables the DFA for this program (CanExec reports false).
func (b *Builder) SetDFASizeLimit(limit int) {
	b.sizeLimit = limit
}

// SetPrefixes attaches a literal-prefix searcher used by the DFA's
// start-state fast path. pf may be nil.
func (b *Builder) SetPrefixes(pf prefilter.Prefilter) {
	b.prefixes = pf
}

// DotStar prepends nothing but returns the instructions for a lazy (?s:.)*?
// self-loop entering pattern at the given index. Unanchored programs start
// here so that the DFA can begin a match at any position in O(n) total time.
func (b *Builder) DotStar(pattern InstPtr) InstPtr {
	// loop: Split(pattern, any)
	// any:  Bytes(0x00, 0xFF) -> loop
	loop := b.Split(pattern, 0)
	any := b.Bytes(0x00, 0xFF, loop)
	b.Patch(loop, pattern, any)
	return loop
}

func (b *Builder) push(in Inst) InstPtr {
	ip := InstPtr(len(b.insts))
	b.insts = append(b.insts, in)
	return ip
}

// Build validates the assembled instructions and returns the immutable
// Program. The builder must not be reused afterwards.
func (b *Builder) Build() (*Program, error) {
	if len(b.insts) == 0 {
		return nil, &BuildError{Kind: EmptyProgram, Message: "program has no instructions"}
	}
	if len(b.insts) > MaxInsts {
		return nil, &BuildError{Kind: TooManyInsts, Message: "program exceeds the maximum instruction count"}
	}
	if int(b.start) >= len(b.insts) {
		return nil, &BuildError{Kind: BadTarget, Message: "start points past the last instruction"}
	}
	n := InstPtr(len(b.insts))
	for i := range b.insts {
		in := &b.insts[i]
		switch in.kind {
		case InstMatch:
		case InstSplit:
			if in.next >= n || in.alt >= n {
				return nil, &BuildError{Kind: BadTarget, Message: "split target out of range"}
			}
		default:
			if in.next >= n {
				return nil, &BuildError{Kind: BadTarget, Message: "instruction target out of range"}
			}
		}
	}
	if b.numMatches == 0 {
		return nil, &BuildError{Kind: NoMatchInst, Message: "program has no match instruction"}
	}

	p := &Program{
		insts:                  b.insts,
		start:                  b.start,
		numMatches:             b.numMatches,
		byteClasses:            b.classes.ByteClasses(),
		isReverse:              b.reverse,
		isAnchoredStart:        b.anchoredStart,
		hasUnicodeWordBoundary: b.unicodeWord,
		dfaSizeLimit:           b.sizeLimit,
		prefixes:               b.prefixes,
	}
	return p, nil
}
