package lazy

import "fmt"

// resultKind discriminates the three ways a search can end.
type resultKind uint8

const (
	resultMatch resultKind = iota
	resultNoMatch
	resultQuit
)

// Result is the outcome of one DFA search.
//
// A match result carries the offset of the end of the match for forward
// searches, or the start of the match for reverse searches. A no-match
// result carries the offset at which the search gave up, which callers
// running a set of overlapping searches can use to resume. A quit result
// means the DFA cannot answer at all and the caller must fall back to
// another engine.
type Result struct {
	kind resultKind
	at   int
}

// MatchedAt returns a match result ending (or, in reverse, starting) at the
// given offset.
func MatchedAt(at int) Result {
	return Result{kind: resultMatch, at: at}
}

// NoMatchAt returns a no-match result that scanned up to the given offset.
func NoMatchAt(at int) Result {
	return Result{kind: resultNoMatch, at: at}
}

// Quit returns a quit result.
func Quit() Result {
	return Result{kind: resultQuit}
}

// IsMatch reports whether the search found a match.
func (r Result) IsMatch() bool { return r.kind == resultMatch }

// IsNoMatch reports whether the search completed without finding a match.
func (r Result) IsNoMatch() bool { return r.kind == resultNoMatch }

// IsQuit reports whether the DFA gave up.
func (r Result) IsQuit() bool { return r.kind == resultQuit }

// At returns the result's offset. It is meaningless for quit results.
func (r Result) At() int { return r.at }

// setNonMatch downgrades a non-match result's offset while preserving a
// match already found. Used when the DFA hits a dead state: the position is
// informative only if no match was seen.
func (r *Result) setNonMatch(at int) {
	if r.kind == resultNoMatch {
		r.at = at
	}
}

func (r Result) String() string {
	switch r.kind {
	case resultMatch:
		return fmt.Sprintf("Match(%d)", r.at)
	case resultNoMatch:
		return fmt.Sprintf("NoMatch(%d)", r.at)
	default:
		return "Quit"
	}
}
