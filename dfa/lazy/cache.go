package lazy

import (
	"github.com/coregx/lazydfa/internal/conv"
	"github.com/coregx/lazydfa/internal/sparse"
	"github.com/coregx/lazydfa/nfa"
)

// Heap accounting constants. These only need to be close enough for the
// size-budget heuristic, not exact.
const (
	statePtrSize  = 4  // one transition table cell
	stateOverhead = 24 // one State value (slice header)
)

// Cache is a reusable store of lazily determinized DFA states.
//
// A Cache is built once per compiled Program and handed to each search over
// that program, amortizing state construction across searches. It is not
// safe for concurrent use: concurrent searches over the same Program must
// each hold their own Cache (or check one out of a pool with exclusive
// ownership). The epsilon-closure scratch sets live here precisely because
// they are reused across calls and must never be shared by two in-flight
// searches.
type Cache struct {
	// inner groups the persistent DFA cache state that search functions
	// thread through as a unit.
	inner cacheInner

	// qcur and qnext are ordered sets with constant time addition,
	// membership and clearing, and linear time iteration. They hold the
	// sets of NFA instructions while computing uncached DFA states. The
	// order matters for leftmost-first matching: when computing a cached
	// state, the set stops growing as soon as the first Match instruction
	// is observed.
	qcur  *sparse.SparseSet
	qnext *sparse.SparseSet
}

// cacheInner is logically just part of Cache, but groups the fields that are
// not passed as function parameters throughout search.
type cacheInner struct {
	// compiled caches DFA states keyed by their exact payload: the set of
	// NFA instructions and the flags observed when the state was built.
	compiled stateMap

	// trans is the row-major transition table. One row per cached state,
	// one column per byte equivalence class (including the EOF class).
	trans transitions

	// startStates caches start states, indexed by the 7-bit combination of
	// zero-width assertion flags holding at the search's start position.
	// A start state can itself be dead, so slots hold full statePtrs.
	startStates []statePtr

	// stack is scratch space used to follow epsilon transitions without
	// native recursion. Its maximum depth is the instruction count.
	stack []uint32

	// flushCount is the number of times this cache has been wiped for
	// exceeding its size budget.
	flushCount uint64

	// size is the approximate heap usage of the cached states, compared
	// against the program's budget to decide when to flush.
	size int

	// instsScratch amortizes allocation while building state payloads.
	instsScratch []byte

	// config carries the thrash-detection thresholds.
	config Config
}

// NewCache creates an empty cache for searches over the given program, with
// default thrash-detection thresholds.
func NewCache(prog *nfa.Program) *Cache {
	return NewCacheWithConfig(prog, DefaultConfig())
}

// NewCacheWithConfig creates an empty cache with explicit configuration.
// Out-of-range configuration values are replaced with defaults.
func NewCacheWithConfig(prog *nfa.Program, config Config) *Cache {
	config = config.sanitize()
	n := prog.NumByteClasses()
	c := &Cache{
		inner: cacheInner{
			compiled:    newStateMap(n),
			trans:       transitions{numByteClasses: n},
			startStates: make([]statePtr, numStartStates),
			config:      config,
		},
		qcur:  sparse.NewSparseSet(conv.IntToUint32(prog.Len())),
		qnext: sparse.NewSparseSet(conv.IntToUint32(prog.Len())),
	}
	for i := range c.inner.startStates {
		c.inner.startStates[i] = stateUnknown
	}
	c.inner.resetSize()
	return c
}

// NumStates returns how many DFA states are currently cached.
// Useful for tests and diagnostics.
func (c *Cache) NumStates() int {
	return c.inner.compiled.len()
}

// FlushCount returns how many times the cache has been wiped for exceeding
// its size budget.
func (c *Cache) FlushCount() uint64 {
	return c.inner.flushCount
}

// resetSize resets the size accounting to the fixed costs: the start-state
// table and the epsilon stack.
func (ci *cacheInner) resetSize() {
	ci.size = len(ci.startStates)*statePtrSize + len(ci.stack)*statePtrSize
}

// stateMap supports two ways of looking up a state: constant time access via
// a state pointer, and a hash lookup keyed by the state's payload. The
// payload bytes are shared between both indexes.
type stateMap struct {
	m              map[string]statePtr
	states         []State
	numByteClasses int
}

func newStateMap(numByteClasses int) stateMap {
	return stateMap{
		m:              make(map[string]statePtr),
		numByteClasses: numByteClasses,
	}
}

func (sm *stateMap) len() int {
	return len(sm.states)
}

func (sm *stateMap) getPtr(state State) (statePtr, bool) {
	si, ok := sm.m[string(state.data)]
	return si, ok
}

// getState returns the state stored at the given row pointer.
// The pointer must be a plain row offset (no tags, no sentinels).
func (sm *stateMap) getState(si statePtr) State {
	return sm.states[int(si)/sm.numByteClasses]
}

func (sm *stateMap) insert(state State, si statePtr) {
	sm.m[state.key()] = si
	sm.states = append(sm.states, state)
}

func (sm *stateMap) clear() {
	sm.m = make(map[string]statePtr)
	sm.states = sm.states[:0]
}

// transitions is the row-major transition table. A statePtr is a byte-class
// scaled offset to the start of a row, which removes a multiplication from
// the inner loop when indexing.
type transitions struct {
	table          []statePtr
	numByteClasses int
}

// numStates returns the total number of rows currently in the table.
func (t *transitions) numStates() int {
	return len(t.table) / t.numByteClasses
}

// add allocates a row for one additional state, with every cell initialized
// to unknown, and returns a pointer to it. Returns false if the row offset
// would exceed the pointer encoding's addressable range.
func (t *transitions) add() (statePtr, bool) {
	si := len(t.table)
	if si > int(stateMax) {
		return 0, false
	}
	for i := 0; i < t.numByteClasses; i++ {
		t.table = append(t.table, stateUnknown)
	}
	return statePtr(conv.IntToUint32(si)), true
}

// clear drops all rows but keeps the allocation for reuse.
func (t *transitions) clear() {
	t.table = t.table[:0]
}

// next returns the transition for (si, cls).
func (t *transitions) next(si statePtr, cls int) statePtr {
	return t.table[int(si)+cls]
}

// setNext sets the transition for (si, cls).
func (t *transitions) setNext(si statePtr, cls int, next statePtr) {
	t.table[int(si)+cls] = next
}

// stateHeapSize is the heap size, in bytes, of a single row.
func (t *transitions) stateHeapSize() int {
	return t.numByteClasses * statePtrSize
}
