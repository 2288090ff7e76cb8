// Package lazy implements a lazily determinized DFA over a byte-oriented NFA
// program.
//
// Instead of building the full DFA up front (whose size can be exponential in
// the size of the NFA), states are computed on demand as input is consumed
// and memoized in a size-bounded cache. On most inputs each byte costs a
// single transition-table lookup; the NFA is consulted only the first time a
// (state, byte class) pair is seen.
//
// The engine is strictly a searcher: it reports whether and where a match
// ends (or, run over a reverse program, where it starts), never capture
// groups. It can also give up. A Quit result means the DFA cannot answer for
// this program and input, currently only because a Unicode word boundary met
// a non-ASCII byte or because the state cache thrashed, and the caller must
// fall back to a different engine.
package lazy

import (
	"math"

	"github.com/coregx/lazydfa/internal/sparse"
	"github.com/coregx/lazydfa/nfa"
)

// CanExec reports whether the lazy DFA can run the given program at all.
// The program must have a positive cache budget and fit the 32-bit
// instruction pointer encoding used by state payloads.
func CanExec(prog *nfa.Program) bool {
	return prog.DFASizeLimit() > 0 && prog.Len() <= math.MaxInt32
}

// Fsm is one in-flight search. It borrows the program and the cache and is
// discarded when the search returns.
type Fsm struct {
	// prog is the NFA program being executed.
	prog *nfa.Program

	// start is the start state pointer for this search, possibly tagged
	// with stateStart when literal-prefix scanning applies.
	start statePtr

	// at is the position in the input where the most recent uncached
	// transition was taken. clearCache uses it to measure cache
	// productivity.
	at int

	// quitAfterMatch, when set, makes the search return the moment a match
	// is seen instead of continuing to find where the match ends. Used when
	// the caller only needs existence.
	quitAfterMatch bool

	// lastMatchSi is the most recent match state entered, or stateUnknown.
	// ForwardMany reads the pattern indexes out of it after the search.
	lastMatchSi statePtr

	// lastCacheFlush is the input position at the time of the last cache
	// flush, for thrash detection.
	lastCacheFlush int

	cache *cacheInner

	qcur  *sparse.SparseSet
	qnext *sparse.SparseSet
}

// Forward searches text from at for the end of the leftmost-first match.
//
// On a match, the result's offset is the end of the match. On no-match, the
// offset is where the search stopped; a quit result means the DFA cannot run
// this program on this input. The program must be a forward program; running
// a reverse program here quits.
func Forward(prog *nfa.Program, cache *Cache, quitAfterMatch bool, text []byte, at int) Result {
	if prog.IsReverse() {
		return Quit()
	}
	d := newFsm(prog, cache, quitAfterMatch, at)
	empty, flags := d.startFlags(text, at)
	si, ok := d.startState(empty, flags)
	if !ok {
		return Quit()
	}
	if si == stateDead {
		return NoMatchAt(at)
	}
	d.start = si
	return d.execAt(text)
}

// Reverse searches text backward from at for the start of a match ending at
// at. The program must be a reverse program (the same pattern compiled with
// its concatenations flipped); running a forward program here quits.
//
// Reverse searches always use longest-match semantics, so the offset
// returned is the leftmost position at which the reversed match begins.
func Reverse(prog *nfa.Program, cache *Cache, quitAfterMatch bool, text []byte, at int) Result {
	if !prog.IsReverse() {
		return Quit()
	}
	d := newFsm(prog, cache, quitAfterMatch, at)
	empty, flags := d.startFlagsReverse(text, at)
	si, ok := d.startState(empty, flags)
	if !ok {
		return Quit()
	}
	if si == stateDead {
		return NoMatchAt(at)
	}
	d.start = si
	return d.execAtReverse(text)
}

// ForwardMany runs a forward search for a multi-pattern program and records
// which patterns matched in matches, which must have one slot per pattern.
// The result's offset is the end of the last match found.
func ForwardMany(prog *nfa.Program, cache *Cache, matches []bool, text []byte, at int) Result {
	if prog.IsReverse() || len(matches) != prog.NumMatches() {
		return Quit()
	}
	d := newFsm(prog, cache, false, at)
	empty, flags := d.startFlags(text, at)
	si, ok := d.startState(empty, flags)
	if !ok {
		return Quit()
	}
	if si == stateDead {
		return NoMatchAt(at)
	}
	d.start = si
	result := d.execAt(text)
	if result.IsMatch() {
		if len(matches) == 1 {
			matches[0] = true
		} else {
			for it := d.state(d.lastMatchSi).instPtrs(); ; {
				ip, ipok := it.next()
				if !ipok {
					break
				}
				inst := d.prog.Inst(nfa.InstPtr(ip))
				if inst.Kind() == nfa.InstMatch {
					matches[inst.MatchSlot()] = true
				}
			}
		}
	}
	return result
}

func newFsm(prog *nfa.Program, cache *Cache, quitAfterMatch bool, at int) *Fsm {
	return &Fsm{
		prog:           prog,
		at:             at,
		quitAfterMatch: quitAfterMatch,
		lastMatchSi:    stateUnknown,
		lastCacheFlush: at,
		cache:          &cache.inner,
		qcur:           cache.qcur,
		qnext:          cache.qnext,
	}
}

// execAt is the forward search loop.
//
// The hot path is the inner loop: as long as the current state pointer has
// no tags and no sentinel (si <= stateMax), each input byte costs one table
// lookup. The loop is unrolled four ways, ping-ponging between prevSi and
// nextSi so that when a special pointer surfaces, the pointer of the state
// that PRECEDED it is still at hand in prevSi (required to recompute an
// unknown transition). The unroll keeps at least two bytes of lookahead so
// that a match, which is reported one byte late, can always be attributed to
// at-1.
func (d *Fsm) execAt(text []byte) Result {
	result := NoMatchAt(d.at)
	prevSi, nextSi := d.start, d.start
	at := d.at
	for at < len(text) {
		for nextSi <= stateMax && at < len(text) {
			prevSi = d.nextSi(nextSi, text, at)
			at++
			if prevSi > stateMax || at+2 >= len(text) {
				prevSi, nextSi = nextSi, prevSi
				break
			}
			nextSi = d.nextSi(prevSi, text, at)
			at++
			if nextSi > stateMax {
				break
			}
			prevSi = d.nextSi(nextSi, text, at)
			at++
			if prevSi > stateMax {
				prevSi, nextSi = nextSi, prevSi
				break
			}
			nextSi = d.nextSi(prevSi, text, at)
			at++
		}
		if nextSi&stateMatch > 0 {
			// Matches are delayed by one byte, so the match ended at
			// the position before the byte that moved us here.
			nextSi &^= stateMatch
			result = MatchedAt(at - 1)
			if d.quitAfterMatch {
				return result
			}
			d.lastMatchSi = nextSi
			prevSi = nextSi

			// For regex sets, a state holding nothing but match
			// instructions can never be extended, so stop here with
			// the full set of matches in hand.
			if d.prog.NumMatches() > 1 {
				justMatches := true
				for it := d.state(nextSi).instPtrs(); ; {
					ip, ok := it.next()
					if !ok {
						break
					}
					if d.prog.Inst(nfa.InstPtr(ip)).Kind() != nfa.InstMatch {
						justMatches = false
						break
					}
				}
				if justMatches {
					return result
				}
			}

			// Greedily extend the match while the state keeps
			// transitioning to itself. Common for .* suffixes.
			cur := at
			for nextSi&^stateMatch == prevSi && at+2 < len(text) {
				nextSi = d.nextSi(nextSi&^stateMatch, text, at)
				at++
			}
			if at > cur {
				result = MatchedAt(at - 2)
			}
		} else if nextSi&stateStart > 0 {
			nextSi &^= stateStart
			prevSi = nextSi
			i := d.prefixAt(text, at)
			if i < 0 {
				return NoMatchAt(len(text))
			}
			at = i
		} else if nextSi >= stateUnknown {
			if nextSi == stateQuit {
				return Quit()
			}
			// The transition out of prevSi on at-1 was never computed.
			// Build it now; prevSi may carry tags from the unrolled loop.
			b := newInputByte(text[at-1])
			prevSi &= stateMax
			d.at = at
			nextSi = d.nextState(prevSi, b)
			switch nextSi {
			case stateQuit:
				return Quit()
			case stateDead:
				result.setNonMatch(at)
				return result
			}
			if nextSi&stateMatch > 0 {
				nextSi &^= stateMatch
				result = MatchedAt(at - 1)
				if d.quitAfterMatch {
					return result
				}
				d.lastMatchSi = nextSi
			}
			prevSi = nextSi
		} else {
			prevSi = nextSi
		}
	}

	// Run the EOF sentinel through the DFA so that assertions anchored at
	// the end of input can complete a match.
	prevSi &= stateMax
	prevSi = d.nextState(prevSi, eofByte)
	switch prevSi {
	case stateQuit:
		return Quit()
	case stateDead:
		result.setNonMatch(len(text))
		return result
	}
	prevSi &^= stateStart
	if prevSi&stateMatch > 0 {
		prevSi &^= stateMatch
		d.lastMatchSi = prevSi
		result = MatchedAt(len(text))
	}
	return result
}

// execAtReverse is the backward search loop. It mirrors execAt with the
// input consumed back to front and no prefix scanning (literal prefixes only
// anchor the front of a match). Position bookkeeping differs by one because
// transitions consume text[at] after decrementing rather than text[at]
// before incrementing.
func (d *Fsm) execAtReverse(text []byte) Result {
	result := NoMatchAt(d.at)
	prevSi, nextSi := d.start, d.start
	at := d.at
	for at > 0 {
		for nextSi <= stateMax && at > 0 {
			at--
			prevSi = d.nextSi(nextSi, text, at)
			if prevSi > stateMax || at <= 4 {
				prevSi, nextSi = nextSi, prevSi
				break
			}
			at--
			nextSi = d.nextSi(prevSi, text, at)
			if nextSi > stateMax {
				break
			}
			at--
			prevSi = d.nextSi(nextSi, text, at)
			if prevSi > stateMax {
				prevSi, nextSi = nextSi, prevSi
				break
			}
			at--
			nextSi = d.nextSi(prevSi, text, at)
		}
		if nextSi&stateMatch > 0 {
			nextSi &^= stateMatch
			result = MatchedAt(at + 1)
			if d.quitAfterMatch {
				return result
			}
			d.lastMatchSi = nextSi
			prevSi = nextSi
			cur := at
			for nextSi&^stateMatch == prevSi && at >= 2 {
				at--
				nextSi = d.nextSi(nextSi&^stateMatch, text, at)
			}
			if at < cur {
				result = MatchedAt(at + 2)
			}
		} else if nextSi >= stateUnknown {
			if nextSi == stateQuit {
				return Quit()
			}
			b := newInputByte(text[at])
			prevSi &= stateMax
			d.at = at
			nextSi = d.nextState(prevSi, b)
			switch nextSi {
			case stateQuit:
				return Quit()
			case stateDead:
				result.setNonMatch(at)
				return result
			}
			if nextSi&stateMatch > 0 {
				nextSi &^= stateMatch
				result = MatchedAt(at + 1)
				if d.quitAfterMatch {
					return result
				}
				d.lastMatchSi = nextSi
			}
			prevSi = nextSi
		} else {
			prevSi = nextSi
		}
	}

	prevSi = d.nextState(prevSi, eofByte)
	switch prevSi {
	case stateQuit:
		return Quit()
	case stateDead:
		result.setNonMatch(0)
		return result
	}
	if prevSi&stateMatch > 0 {
		prevSi &^= stateMatch
		d.lastMatchSi = prevSi
		result = MatchedAt(0)
	}
	return result
}

// nextSi is the hot-path transition: one table lookup for text[i]. The
// caller guarantees si is a plain row offset.
func (d *Fsm) nextSi(si statePtr, text []byte, i int) statePtr {
	cls := d.prog.ByteClass(text[i])
	return d.cache.trans.next(si, int(cls))
}

// nextState returns the transition for (si, b), computing and caching it if
// it is still unknown. It returns a real state pointer, stateDead or
// stateQuit, never stateUnknown.
func (d *Fsm) nextState(si statePtr, b inputByte) statePtr {
	if si == stateDead {
		return stateDead
	}
	switch nsi := d.cache.trans.next(si, d.byteClass(b)); nsi {
	case stateUnknown:
		return d.execByte(si, b)
	case stateQuit:
		return stateQuit
	default:
		return nsi
	}
}

// prefixAt skips from a start state to the next candidate position reported
// by the literal prefilter, or -1 if no candidate remains.
func (d *Fsm) prefixAt(text []byte, at int) int {
	return d.prog.Prefixes().Find(text, at)
}

// hasPrefix reports whether start states should scan for literal prefixes.
// Reverse programs scan nothing (prefixes anchor the front of a match), and
// anchored programs cannot skip ahead at all.
func (d *Fsm) hasPrefix() bool {
	return !d.prog.IsReverse() &&
		d.prog.Prefixes() != nil &&
		!d.prog.IsAnchoredStart()
}

// startPtr tags si as a start state when prefix scanning applies. Without a
// prefix there is nothing special about being in a start state, and the tag
// would only slow the inner loop down.
func (d *Fsm) startPtr(si statePtr) statePtr {
	if d.hasPrefix() {
		return si | stateStart
	}
	return si
}

// byteClass maps an input byte, possibly EOF, to its equivalence class.
func (d *Fsm) byteClass(b inputByte) int {
	c, ok := b.asByte()
	if !ok {
		return d.prog.EOFClass()
	}
	return int(d.prog.ByteClass(c))
}

// state returns the cached state at si, which must be a plain row offset.
func (d *Fsm) state(si statePtr) State {
	return d.cache.compiled.getState(si)
}

// approximateSize is the heap usage charged against the program's cache
// budget. It includes the program itself, so the budget bounds the whole
// engine's footprint.
func (d *Fsm) approximateSize() int {
	return d.cache.size + d.prog.ApproximateSize()
}

// continuePastFirstMatch reports whether NFA exploration keeps going after
// the first match instruction is seen while building a state. Stopping at
// the first match is what gives forward single-pattern searches
// leftmost-first semantics; reverse searches want the longest match and
// regex sets want all matches.
func (d *Fsm) continuePastFirstMatch() bool {
	return d.prog.IsReverse() || d.prog.NumMatches() > 1
}
