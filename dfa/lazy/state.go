package lazy

import (
	"fmt"
	"strconv"
	"strings"
)

// statePtr is a 32 bit pointer to the start of a row in the transition
// table.
//
// It has many special values. There are two types of special values:
// sentinels and flags.
//
// Sentinels correspond to special states that carry some kind of
// significance. There are three such states: unknown, dead and quit states.
//
// Unknown states are states that haven't been computed yet. They indicate
// that a transition should be filled in that points to either an existing
// cached state or a new state altogether. In general, an unknown state means
// "follow the NFA's epsilon transitions."
//
// Dead states are states that can never lead to a match, no matter what
// subsequent input is observed. This means that the DFA should quit
// immediately and return the longest match it has found thus far.
//
// Quit states are states that imply the DFA is not capable of matching the
// regex correctly. Currently, this is only used when a Unicode word boundary
// exists in the regex and a non-ASCII byte is observed.
//
// The other type of state pointer is a state pointer with special flag bits.
// There are two flags: a start flag and a match flag. The lower bits of both
// kinds always contain a valid row offset (recoverable with the stateMax
// mask).
//
// The start flag means that the state is a start state, and therefore may be
// subject to prefix scanning optimizations.
//
// The match flag means that the state is a match state, and therefore the
// current position in the input (while searching) should be recorded.
//
// The layout exists mostly in the service of making the inner loop fast:
// a single `si <= stateMax` comparison keeps the optimistic path free of
// per-sentinel branching.
type statePtr uint32

const (
	// stateUnknown means the state has not been computed yet; the only way
	// to progress is to compute it.
	stateUnknown statePtr = 1 << 31

	// stateDead means it is known that once this state is entered, no
	// future match can ever occur.
	stateDead statePtr = stateUnknown + 1

	// stateQuit means the DFA came across input it cannot process
	// correctly. The DFA should quit and another matching engine should be
	// run in its place.
	stateQuit statePtr = stateDead + 1

	// stateStart tags a pointer whose target is also a valid start state,
	// eligible for literal-prefix scanning. The lower bits still hold the
	// row offset.
	stateStart statePtr = 1 << 30

	// stateMatch tags a pointer whose target corresponds to an NFA state
	// set containing a completed match. The match is reported one byte
	// late, upon transitioning out of the tagged state, which is what makes
	// the EOF sentinel transition work. The lower bits still hold the row
	// offset.
	stateMatch statePtr = 1 << 29

	// stateMax is the maximum valid row offset, and doubles as the mask
	// recovering the row offset from a tagged pointer. It never applies to
	// the sentinels, whose lower bits are meaningless.
	stateMax statePtr = stateMatch - 1
)

// showStatePtr renders a state pointer with its tags and sentinels spelled
// out. Debug helper only.
func showStatePtr(si statePtr) string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatUint(uint64(si&stateMax), 10))
	switch si {
	case stateUnknown:
		sb.WriteString(" (unknown)")
	case stateDead:
		sb.WriteString(" (dead)")
	case stateQuit:
		sb.WriteString(" (quit)")
	}
	if si < stateUnknown {
		if si&stateStart != 0 {
			sb.WriteString(" (start)")
		}
		if si&stateMatch != 0 {
			sb.WriteString(" (match)")
		}
	}
	return sb.String()
}

// stateFlags is a set of flags describing a DFA state, packed into the first
// byte of its payload.
type stateFlags uint8

const (
	// flagMatch: the previous state set contained a match instruction, so
	// entering this state completes a match.
	flagMatch stateFlags = 1 << 0

	// flagWord: the byte consumed to enter this state was an ASCII word
	// byte. Needed to resolve word boundary assertions one byte later.
	flagWord stateFlags = 1 << 1

	// flagEmpty: the state set contains zero-width assertions that must be
	// re-resolved against the next input byte before it is consumed.
	flagEmpty stateFlags = 1 << 2
)

func (f stateFlags) isMatch() bool  { return f&flagMatch != 0 }
func (f stateFlags) isWord() bool   { return f&flagWord != 0 }
func (f stateFlags) hasEmpty() bool { return f&flagEmpty != 0 }

func (f *stateFlags) setMatch() { *f |= flagMatch }
func (f *stateFlags) setWord()  { *f |= flagWord }
func (f *stateFlags) setEmpty() { *f |= flagEmpty }

// State is a DFA state. It contains an ordered set of NFA instruction
// pointers (not necessarily complete) and a smattering of flags.
//
// The flags are packed into the first byte of data; the instruction pointers
// follow, delta-encoded (see encoding.go).
//
// States don't carry their transitions. Instead, transitions are stored in a
// single row-major table owned by the cache.
//
// A State's payload is immutable and shared: the state map and any caller
// holding a State value alias the same backing bytes. Equality (and
// therefore cache deduplication) is structural, on the exact byte content.
type State struct {
	data []byte
}

func (s State) flags() stateFlags {
	return stateFlags(s.data[0])
}

func (s State) instPtrs() instPtrIter {
	return instPtrIter{data: s.data[1:]}
}

// key returns the payload as a map key. The conversion copies, so keys never
// alias mutable memory.
func (s State) key() string {
	return string(s.data)
}

// String renders the state's flags and decoded instruction pointers.
func (s State) String() string {
	var ips []string
	for it := s.instPtrs(); ; {
		ip, ok := it.next()
		if !ok {
			break
		}
		ips = append(ips, strconv.FormatUint(uint64(ip), 10))
	}
	return fmt.Sprintf("State(match=%v, word=%v, empty=%v, insts=[%s])",
		s.flags().isMatch(), s.flags().isWord(), s.flags().hasEmpty(),
		strings.Join(ips, ","))
}

// instPtrIter decodes a state's delta-encoded instruction pointers in order.
type instPtrIter struct {
	base int32
	data []byte
}

// next returns the next instruction pointer, or false when exhausted.
func (it *instPtrIter) next() (uint32, bool) {
	if len(it.data) == 0 {
		return 0, false
	}
	delta, n := readVari32(it.data)
	it.data = it.data[n:]
	it.base += delta
	return uint32(it.base), true
}
