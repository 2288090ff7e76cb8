package lazy

import (
	"strings"
	"testing"
)

// TestStatePtrLayout pins the relationships the inner loop depends on: every
// tagged pointer is above stateMax, sentinels are above every tagged pointer,
// and masking with stateMax recovers the row offset.
func TestStatePtrLayout(t *testing.T) {
	if stateMatch >= stateStart || stateStart >= stateUnknown {
		t.Fatal("tag and sentinel bits out of order")
	}
	if stateMax != stateMatch-1 {
		t.Fatalf("stateMax = %x, want %x", stateMax, stateMatch-1)
	}

	si := statePtr(1234)
	if si > stateMax {
		t.Fatal("plain offset above stateMax")
	}
	for _, tagged := range []statePtr{si | stateMatch, si | stateStart, si | stateMatch | stateStart} {
		if tagged <= stateMax {
			t.Errorf("tagged pointer %x not above stateMax", tagged)
		}
		if tagged >= stateUnknown {
			t.Errorf("tagged pointer %x collides with sentinels", tagged)
		}
		if tagged&stateMax != si {
			t.Errorf("masking %x lost the offset", tagged)
		}
	}
	for _, sentinel := range []statePtr{stateUnknown, stateDead, stateQuit} {
		if sentinel < stateUnknown {
			t.Errorf("sentinel %x below stateUnknown", sentinel)
		}
	}
}

// TestStateFlags exercises the flag accessors on the packed byte.
func TestStateFlags(t *testing.T) {
	var f stateFlags
	if f.isMatch() || f.isWord() || f.hasEmpty() {
		t.Fatal("zero flags should be unset")
	}
	f.setMatch()
	f.setWord()
	if !f.isMatch() || !f.isWord() || f.hasEmpty() {
		t.Errorf("flags = %b after setMatch+setWord", f)
	}
	f.setEmpty()
	if !f.hasEmpty() {
		t.Errorf("flags = %b after setEmpty", f)
	}
}

// TestStateKeyEquality verifies that states with identical payloads share a
// key and differing payloads do not.
func TestStateKeyEquality(t *testing.T) {
	a := State{data: []byte{byte(flagMatch), 2, 4}}
	b := State{data: []byte{byte(flagMatch), 2, 4}}
	c := State{data: []byte{0, 2, 4}}
	if a.key() != b.key() {
		t.Error("identical payloads produced different keys")
	}
	if a.key() == c.key() {
		t.Error("different flags produced the same key")
	}
}

// TestShowStatePtr smoke-tests the debug rendering.
func TestShowStatePtr(t *testing.T) {
	tests := []struct {
		si   statePtr
		want string
	}{
		{stateUnknown, "unknown"},
		{stateDead, "dead"},
		{stateQuit, "quit"},
		{42 | stateStart, "start"},
		{42 | stateMatch, "match"},
	}
	for _, tt := range tests {
		if got := showStatePtr(tt.si); !strings.Contains(got, tt.want) {
			t.Errorf("showStatePtr(%x) = %q, want substring %q", tt.si, got, tt.want)
		}
	}
	if got := showStatePtr(42 | stateMatch); !strings.Contains(got, "42") {
		t.Errorf("showStatePtr lost the offset: %q", got)
	}
}

// TestStateString smoke-tests state rendering with a decoded pointer list.
func TestStateString(t *testing.T) {
	data := []byte{byte(flagMatch)}
	var prev uint32
	data = pushInstPtr(data, &prev, 7)
	data = pushInstPtr(data, &prev, 3)
	s := State{data: data}
	got := s.String()
	if !strings.Contains(got, "7,3") {
		t.Errorf("State.String() = %q, want pointers 7,3", got)
	}
	if !strings.Contains(got, "match=true") {
		t.Errorf("State.String() = %q, want match=true", got)
	}
}
