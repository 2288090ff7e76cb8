package lazy

import (
	"testing"

	"github.com/coregx/lazydfa/nfa"
)

// mustBuild builds the program or fails the test.
func mustBuild(t *testing.T, b *nfa.Builder) *nfa.Program {
	t.Helper()
	prog, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return prog
}

// literalProgram builds a program matching the literal lit. When anchored is
// false the program gets a leading byte self-loop so it matches anywhere.
func literalProgram(t *testing.T, lit string, anchored bool) *nfa.Program {
	t.Helper()
	b := nfa.NewBuilder()
	for i := 0; i < len(lit); i++ {
		b.Byte(lit[i], nfa.InstPtr(i+1))
	}
	b.Match(0)
	if anchored {
		b.SetStart(0)
		b.SetAnchoredStart(true)
	} else {
		b.SetStart(b.DotStar(0))
	}
	return mustBuild(t, b)
}

// reverseLiteralProgram builds a reverse program for the literal lit: the
// bytes are consumed back to front.
func reverseLiteralProgram(t *testing.T, lit string) *nfa.Program {
	t.Helper()
	b := nfa.NewBuilder()
	for i := 0; i < len(lit); i++ {
		b.Byte(lit[len(lit)-1-i], nfa.InstPtr(i+1))
	}
	b.Match(0)
	b.SetStart(b.DotStar(0))
	b.SetReverse(true)
	return mustBuild(t, b)
}

// abStarProgram builds an unanchored ab* program:
//
//	0: Bytes(a) -> 1
//	1: Split(2, 3)
//	2: Bytes(b) -> 1
//	3: Match(0)
func abStarProgram(t *testing.T) *nfa.Program {
	t.Helper()
	b := nfa.NewBuilder()
	b.Byte('a', 1)
	b.Split(2, 3)
	b.Byte('b', 1)
	b.Match(0)
	b.SetStart(b.DotStar(0))
	return mustBuild(t, b)
}

// lookProgram builds an unanchored program matching the assertion followed
// by a single byte:
//
//	0: EmptyLook(look) -> 1
//	1: Bytes(c) -> 2
//	2: Match(0)
func lookProgram(t *testing.T, look nfa.Look, c byte) *nfa.Program {
	t.Helper()
	b := nfa.NewBuilder()
	b.EmptyLook(look, 1)
	b.Byte(c, 2)
	b.Match(0)
	b.SetStart(b.DotStar(0))
	return mustBuild(t, b)
}

// checkResult asserts a match ending at want, or a no-match when want < 0.
func checkResult(t *testing.T, res Result, want int) {
	t.Helper()
	if res.IsQuit() {
		t.Fatalf("unexpected quit")
	}
	if want < 0 {
		if !res.IsNoMatch() {
			t.Fatalf("got %v, want no match", res)
		}
		return
	}
	if !res.IsMatch() {
		t.Fatalf("got %v, want match at %d", res, want)
	}
	if res.At() != want {
		t.Errorf("match at %d, want %d", res.At(), want)
	}
}
