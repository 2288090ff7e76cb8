package lazy

import (
	"strings"
	"testing"

	"github.com/coregx/lazydfa/nfa"
)

// TestReverseLiteral locates the start of a match whose end is already
// known, the way a forward pass hands off to a reverse pass.
func TestReverseLiteral(t *testing.T) {
	tests := []struct {
		name  string
		lit   string
		input string
		at    int
		want  int
	}{
		{"middle of text", "abc", "xxabcyy", 5, 2},
		{"at start", "abc", "abcyy", 3, 0},
		{"at end", "abc", "xxabc", 5, 2},
		{"no match", "abc", "xxabyy", 4, -1},
		{"single byte", "a", "xya", 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := reverseLiteralProgram(t, tt.lit)
			res := Reverse(prog, NewCache(prog), false, []byte(tt.input), tt.at)
			checkResult(t, res, tt.want)
		})
	}
}

// TestReverseLongest verifies longest-match semantics: searching backward
// over a run of a's from its end reports the leftmost start.
func TestReverseLongest(t *testing.T) {
	// Reverse a+: 0: Bytes(a) -> 1; 1: Split(0, 2); 2: Match(0)
	b := nfa.NewBuilder()
	b.Byte('a', 1)
	b.Split(0, 2)
	b.Match(0)
	b.SetStart(b.DotStar(0))
	b.SetReverse(true)
	prog := mustBuild(t, b)

	text := []byte("zz" + strings.Repeat("a", 50))
	res := Reverse(prog, NewCache(prog), false, text, len(text))
	checkResult(t, res, 2)
}

// TestReverseWholeInput checks a reverse match that extends to position 0.
func TestReverseWholeInput(t *testing.T) {
	prog := reverseLiteralProgram(t, "abc")
	res := Reverse(prog, NewCache(prog), false, []byte("abc"), 3)
	checkResult(t, res, 0)
}

// TestReverseRejectsForwardProgram checks the direction guard.
func TestReverseRejectsForwardProgram(t *testing.T) {
	prog := literalProgram(t, "abc", false)
	res := Reverse(prog, NewCache(prog), false, []byte("abc"), 3)
	if !res.IsQuit() {
		t.Errorf("Reverse on a forward program = %v, want quit", res)
	}
}

// TestReverseLongInput pushes the reverse search through the unrolled loop
// far from the at<=4 slow-path boundary.
func TestReverseLongInput(t *testing.T) {
	prog := reverseLiteralProgram(t, "needle")
	text := []byte(strings.Repeat("x", 200) + "needle" + strings.Repeat("y", 200))
	res := Reverse(prog, NewCache(prog), false, text, 206)
	checkResult(t, res, 200)
}
