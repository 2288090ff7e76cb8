package lazy

import (
	"github.com/coregx/lazydfa/internal/sparse"
	"github.com/coregx/lazydfa/nfa"
)

// execByte computes the transition out of si on b, caches it and returns the
// resulting (possibly tagged) pointer. Returns stateQuit when the DFA must
// give up, either because the transition leads through input it cannot
// handle or because the cache refused to grow.
//
// Transitions on the EOF sentinel are never written into the transition
// table: they depend on where the search ends, and the EOF class cell must
// stay free for a subsequent search over the same cache to resolve its own
// end position.
func (d *Fsm) execByte(si statePtr, b inputByte) statePtr {
	d.qcur.Clear()
	for it := d.state(si).instPtrs(); ; {
		ip, ok := it.next()
		if !ok {
			break
		}
		d.qcur.Insert(ip)
	}

	// If the state needs zero-width assertions resolved, do it now that the
	// next byte is known, and rebuild the closure under those flags.
	isWordLast := d.state(si).flags().isWord()
	isWord := b.isASCIIWord()
	if d.state(si).flags().hasEmpty() {
		var flags emptyFlags
		if b.isEOF() {
			flags.end = true
			flags.endLine = true
		} else if c, ok := b.asByte(); ok && c == '\n' {
			flags.endLine = true
		}
		if isWordLast == isWord {
			flags.notWordBoundary = true
		} else {
			flags.wordBoundary = true
		}
		d.qnext.Clear()
		for _, ip := range d.qcur.Values() {
			d.followEpsilons(nfa.InstPtr(ip), d.qnext, flags)
		}
		d.qcur, d.qnext = d.qnext, d.qcur
	}

	var empty emptyFlags
	var flags stateFlags
	if c, ok := b.asByte(); ok && c == '\n' {
		empty.startLine = true
	}
	if isWord {
		flags.setWord()
	}

	// Take the byte transition out of every NFA state in the closure. The
	// iteration order is the closure's discovery order, so stopping at the
	// first match preserves leftmost-first semantics.
	d.qnext.Clear()
scan:
	for _, ip := range d.qcur.Values() {
		inst := d.prog.Inst(nfa.InstPtr(ip))
		switch inst.Kind() {
		case nfa.InstSave, nfa.InstSplit, nfa.InstEmptyLook:
			// Epsilon instructions carry no byte transition.
		case nfa.InstMatch:
			flags.setMatch()
			if !d.continuePastFirstMatch() {
				break scan
			}
			if d.prog.NumMatches() > 1 && !d.qnext.Contains(ip) {
				d.qnext.Insert(ip)
			}
		case nfa.InstBytes:
			if c, ok := b.asByte(); ok && inst.Matches(c) {
				d.followEpsilons(inst.Next(), d.qnext, empty)
			}
		}
	}

	// At EOF, a multi-pattern state must be keyed on the full closure, not
	// the (empty) transitioned set, so that every pattern's match
	// instruction survives into the final state.
	q := d.qnext
	if b.isEOF() && d.prog.NumMatches() > 1 {
		q = d.qcur
	}

	next, ok := d.cachedState(q, flags, &si)
	if !ok {
		return stateQuit
	}
	if d.start&^stateStart == next {
		next = d.startPtr(next)
	}
	if next <= stateMax && d.state(next).flags().isMatch() {
		next |= stateMatch
	}
	if !b.isEOF() {
		d.cache.trans.setNext(si, d.byteClass(b), next)
	}
	return next
}

// followEpsilons inserts ip and every instruction reachable from it without
// consuming input into q, in discovery order. Assertions are followed only
// when satisfied by flags.
//
// An explicit stack replaces recursion; Split pushes its second branch and
// continues down the first, so the preferred alternative is always
// discovered first.
func (d *Fsm) followEpsilons(ip nfa.InstPtr, q *sparse.SparseSet, flags emptyFlags) {
	d.cache.stack = append(d.cache.stack, uint32(ip))
	for len(d.cache.stack) > 0 {
		n := len(d.cache.stack) - 1
		ip := d.cache.stack[n]
		d.cache.stack = d.cache.stack[:n]
		for {
			if q.Contains(ip) {
				break
			}
			q.Insert(ip)
			inst := d.prog.Inst(nfa.InstPtr(ip))
			switch inst.Kind() {
			case nfa.InstMatch, nfa.InstBytes:
				// Terminal for closure purposes.
			case nfa.InstEmptyLook:
				if flags.satisfies(inst.Look()) {
					ip = uint32(inst.Next())
					continue
				}
			case nfa.InstSave:
				ip = uint32(inst.Next())
				continue
			case nfa.InstSplit:
				goto1, goto2 := inst.Split()
				d.cache.stack = append(d.cache.stack, uint32(goto2))
				ip = uint32(goto1)
				continue
			}
			break
		}
	}
}

// cachedState returns a pointer to the state described by the closure q and
// flags, deduplicating against the cache and inserting it if new.
//
// flags.isMatch must be set if and only if the PRECEDING state's closure
// contained a match instruction; the state built here then reports the match
// one byte late, which is what makes the EOF sentinel transition work.
//
// If inserting would blow the cache budget, the cache is wiped first;
// currentState, when non-nil, is re-inserted and updated in place since its
// row moves. (Start states are always preserved separately and must not be
// passed here.) Returns ok=false when the cache was wiped too recently to
// make progress and the DFA should give up.
func (d *Fsm) cachedState(q *sparse.SparseSet, flags stateFlags, currentState *statePtr) (statePtr, bool) {
	state, dead := d.cachedStateKey(q, &flags)
	if dead {
		return stateDead, true
	}
	if si, ok := d.cache.compiled.getPtr(state); ok {
		return si, true
	}
	if d.approximateSize() > d.prog.DFASizeLimit() && !d.clearCacheAndSave(currentState) {
		return 0, false
	}
	return d.addState(state)
}

// cachedStateKey builds the canonical payload for the closure q: the flags
// byte followed by the delta-encoded pointers of the instructions that
// discriminate future matches. Split and Save instructions never do, so they
// are dropped; two closures differing only in those produce the same state.
//
// Returns dead=true when the closure can neither match now nor ever progress
// (no instructions survive and no delayed match is pending).
func (d *Fsm) cachedStateKey(q *sparse.SparseSet, flags *stateFlags) (state State, dead bool) {
	insts := d.cache.instsScratch[:0]
	insts = append(insts, 0) // flags placeholder
	var prev uint32
	for _, ip := range q.Values() {
		inst := d.prog.Inst(nfa.InstPtr(ip))
		switch inst.Kind() {
		case nfa.InstSave, nfa.InstSplit:
		case nfa.InstBytes:
			insts = pushInstPtr(insts, &prev, ip)
		case nfa.InstEmptyLook:
			flags.setEmpty()
			insts = pushInstPtr(insts, &prev, ip)
		case nfa.InstMatch:
			insts = pushInstPtr(insts, &prev, ip)
			if !d.continuePastFirstMatch() {
				goto done
			}
		}
	}
done:
	d.cache.instsScratch = insts
	if len(insts) == 1 && !flags.isMatch() {
		return State{}, true
	}
	insts[0] = byte(*flags)
	data := make([]byte, len(insts))
	copy(data, insts)
	return State{data: data}, false
}

// clearCacheAndSave wipes the cache while preserving currentState, updating
// the pointer in place since its row changes. Returns false if the DFA
// should give up instead.
func (d *Fsm) clearCacheAndSave(currentState *statePtr) bool {
	if d.cache.compiled.len() == 0 {
		// Nothing cached; the budget is just too small for the fixed
		// costs. Proceed and let the next insert try again.
		return true
	}
	if currentState == nil {
		return d.clearCache()
	}
	cur := d.state(*currentState)
	if !d.clearCache() {
		return false
	}
	si, ok := d.restoreState(cur)
	if !ok {
		return false
	}
	*currentState = si
	return true
}

// clearCache wipes all cached states and transitions, preserving the current
// start state and the last match state across the wipe.
//
// It refuses, returning false, when the cache has already been flushed
// MaxCacheClears times and the input covered since the previous flush
// averages out to less than MinBytesPerState per cached state. At that rate
// the lazy DFA is slower than an NFA simulation would be, so it gives up.
func (d *Fsm) clearCache() bool {
	nstates := d.cache.compiled.len()
	if d.cache.flushCount >= d.cache.config.MaxCacheClears &&
		d.at >= d.lastCacheFlush &&
		d.at-d.lastCacheFlush <= d.cache.config.MinBytesPerState*nstates {
		return false
	}
	d.lastCacheFlush = d.at
	d.cache.flushCount++

	// State values alias their payload bytes, so copies taken before the
	// wipe stay valid and can be re-inserted after.
	start := d.state(d.start &^ stateStart)
	var lastMatch State
	haveLastMatch := d.lastMatchSi <= stateMax
	if haveLastMatch {
		lastMatch = d.state(d.lastMatchSi)
	}

	d.cache.resetSize()
	d.cache.trans.clear()
	d.cache.compiled.clear()
	for i := range d.cache.startStates {
		d.cache.startStates[i] = stateUnknown
	}

	sp, ok := d.restoreState(start)
	if !ok {
		return false
	}
	d.start = d.startPtr(sp)
	if haveLastMatch {
		si, ok := d.restoreState(lastMatch)
		if !ok {
			return false
		}
		d.lastMatchSi = si
	}
	return true
}

// restoreState re-inserts a state captured before a cache wipe and returns
// its new pointer.
func (d *Fsm) restoreState(state State) (statePtr, bool) {
	if si, ok := d.cache.compiled.getPtr(state); ok {
		return si, true
	}
	return d.addState(state)
}

// addState inserts a new state, allocates its transition row and returns a
// pointer to it. Returns ok=false when the row offset would overflow the
// pointer encoding.
func (d *Fsm) addState(state State) (statePtr, bool) {
	si, ok := d.cache.trans.add()
	if !ok {
		return 0, false
	}
	// When the program contains a Unicode word boundary, any non-ASCII byte
	// makes the assertion undecidable without decoding, so every such
	// transition is born a quit transition.
	if d.prog.HasUnicodeWordBoundary() {
		for b := 128; b < 256; b++ {
			cls := int(d.prog.ByteClass(byte(b)))
			d.cache.trans.setNext(si, cls, stateQuit)
		}
	}
	d.cache.size += d.cache.trans.stateHeapSize() +
		len(state.data) + 2*stateOverhead + statePtrSize
	d.cache.compiled.insert(state, si)
	return si, true
}

// startState returns the start state for the given flag combination,
// computing and caching it on first use. Returns ok=false when the DFA
// should quit. The returned pointer may be stateDead.
func (d *Fsm) startState(empty emptyFlags, flags stateFlags) (statePtr, bool) {
	flagi := empty.index(flags)
	switch si := d.cache.startStates[flagi]; si {
	case stateUnknown:
	case stateDead:
		return stateDead, true
	default:
		return si, true
	}
	d.qcur.Clear()
	d.followEpsilons(d.prog.Start(), d.qcur, empty)
	sp, ok := d.cachedState(d.qcur, flags, nil)
	if !ok {
		return 0, false
	}
	sp = d.startPtr(sp)
	d.cache.startStates[flagi] = sp
	return sp, true
}

// startFlags computes the assertion flags holding at position at for a
// forward search.
func (d *Fsm) startFlags(text []byte, at int) (emptyFlags, stateFlags) {
	var empty emptyFlags
	var flags stateFlags
	empty.start = at == 0
	empty.end = len(text) == 0
	empty.startLine = at == 0 || text[at-1] == '\n'
	empty.endLine = len(text) == 0
	isWordLast := at > 0 && isWordByte(text[at-1])
	isWord := at < len(text) && isWordByte(text[at])
	if isWordLast {
		flags.setWord()
	}
	if isWord == isWordLast {
		empty.notWordBoundary = true
	} else {
		empty.wordBoundary = true
	}
	return empty, flags
}

// startFlagsReverse computes the assertion flags holding at position at for
// a reverse search, where "previous byte" means text[at] and the search
// consumes toward the front.
func (d *Fsm) startFlagsReverse(text []byte, at int) (emptyFlags, stateFlags) {
	var empty emptyFlags
	var flags stateFlags
	empty.start = at == len(text)
	empty.end = len(text) == 0
	empty.startLine = at == len(text) || text[at] == '\n'
	empty.endLine = len(text) == 0
	isWordLast := at < len(text) && isWordByte(text[at])
	isWord := at > 0 && isWordByte(text[at-1])
	if isWordLast {
		flags.setWord()
	}
	if isWord == isWordLast {
		empty.notWordBoundary = true
	} else {
		empty.wordBoundary = true
	}
	return empty, flags
}
