package lazy

import "github.com/coregx/lazydfa/nfa"

// emptyFlags is the set of zero-width assertions that hold at one input
// position. The DFA resolves assertion instructions against these flags
// during epsilon closure.
//
// If the position corresponds to the empty string, then only the end line
// and/or end text flags may be set. If the position corresponds to a real
// byte in the input, then only the start line and/or start text flags may be
// set. The one exception is initial-state computation, where any combination
// can hold at once (e.g. both start and end of text on empty input).
type emptyFlags struct {
	start           bool
	end             bool
	startLine       bool
	endLine         bool
	wordBoundary    bool
	notWordBoundary bool
}

// satisfies reports whether the given assertion holds under these flags.
func (f emptyFlags) satisfies(look nfa.Look) bool {
	switch look {
	case nfa.LookStartText:
		return f.start
	case nfa.LookEndText:
		return f.end
	case nfa.LookStartLine:
		return f.startLine
	case nfa.LookEndLine:
		return f.endLine
	case nfa.LookWordBoundaryASCII, nfa.LookWordBoundary:
		return f.wordBoundary
	case nfa.LookNotWordBoundaryASCII, nfa.LookNotWordBoundary:
		return f.notWordBoundary
	default:
		return false
	}
}

// index packs the flags (plus the word flag of the state) into the 7-bit
// start-state table index.
func (f emptyFlags) index(sf stateFlags) int {
	i := 0
	if f.start {
		i |= 1 << 0
	}
	if f.end {
		i |= 1 << 1
	}
	if f.startLine {
		i |= 1 << 2
	}
	if f.endLine {
		i |= 1 << 3
	}
	if f.wordBoundary {
		i |= 1 << 4
	}
	if f.notWordBoundary {
		i |= 1 << 5
	}
	if sf.isWord() {
		i |= 1 << 6
	}
	return i
}

// numStartStates is the size of the start-state table: one slot per
// combination of the 7 start flags.
const numStartStates = 128

// inputByte is a haystack byte in spirit, widened so that it can also
// represent the synthetic EOF sentinel consumed by the final transition of a
// search.
type inputByte uint16

// eofByte is the logical end-of-input sentinel. It maps to the byte class
// reserved past the real 256 byte values.
const eofByte inputByte = 256

func newInputByte(b byte) inputByte {
	return inputByte(b)
}

func (b inputByte) isEOF() bool {
	return b == eofByte
}

// asByte returns the concrete byte value, or false for the EOF sentinel.
func (b inputByte) asByte() (byte, bool) {
	if b.isEOF() {
		return 0, false
	}
	return byte(b), true
}

// isASCIIWord reports whether the byte is in [a-zA-Z0-9_].
// The EOF sentinel is never a word byte.
func (b inputByte) isASCIIWord() bool {
	c, ok := b.asByte()
	if !ok {
		return false
	}
	return isWordByte(c)
}

// isWordByte reports whether c is an ASCII word byte.
func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '_'
}
