package lazy

import (
	"testing"

	"github.com/coregx/lazydfa/nfa"
)

// twoPatternProgram builds an unanchored two-pattern set: pattern 0 is "a",
// pattern 1 is "b".
//
//	0: Split(1, 3)
//	1: Bytes(a) -> 2
//	2: Match(0)
//	3: Bytes(b) -> 4
//	4: Match(1)
func twoPatternProgram(t *testing.T) *nfa.Program {
	t.Helper()
	b := nfa.NewBuilder()
	b.Split(1, 3)
	b.Byte('a', 2)
	b.Match(0)
	b.Byte('b', 4)
	b.Match(1)
	b.SetStart(b.DotStar(0))
	return mustBuild(t, b)
}

// TestForwardManyRecordsPatterns checks which pattern slots get marked.
func TestForwardManyRecordsPatterns(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [2]bool
	}{
		{"only first", "xax", [2]bool{true, false}},
		{"only second", "xbx", [2]bool{false, true}},
		{"both", "ab", [2]bool{true, true}},
		{"neither", "xyz", [2]bool{false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := twoPatternProgram(t)
			matches := make([]bool, 2)
			res := ForwardMany(prog, NewCache(prog), matches, []byte(tt.input), 0)
			if res.IsQuit() {
				t.Fatal("unexpected quit")
			}
			wantMatch := tt.want[0] || tt.want[1]
			if res.IsMatch() != wantMatch {
				t.Fatalf("got %v, want match=%v", res, wantMatch)
			}
			for i, want := range tt.want {
				if matches[i] != want {
					t.Errorf("matches[%d] = %v, want %v", i, matches[i], want)
				}
			}
		})
	}
}

// TestForwardManySinglePattern checks the single-slot shortcut.
func TestForwardManySinglePattern(t *testing.T) {
	prog := literalProgram(t, "ab", false)
	matches := make([]bool, 1)
	res := ForwardMany(prog, NewCache(prog), matches, []byte("xxab"), 0)
	if !res.IsMatch() || !matches[0] {
		t.Errorf("got %v, matches=%v", res, matches)
	}
}

// TestForwardManySlotMismatch checks the slot-count guard.
func TestForwardManySlotMismatch(t *testing.T) {
	prog := twoPatternProgram(t)
	res := ForwardMany(prog, NewCache(prog), make([]bool, 1), []byte("ab"), 0)
	if !res.IsQuit() {
		t.Errorf("mismatched slot count = %v, want quit", res)
	}
}
