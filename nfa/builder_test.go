package nfa

import (
	"errors"
	"testing"
)

// TestBuilderLiteral assembles a small program and checks its shape.
func TestBuilderLiteral(t *testing.T) {
	b := NewBuilder()
	b.Byte('a', 1)
	b.Byte('b', 2)
	b.Match(0)
	b.SetStart(0)

	prog, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if prog.Len() != 3 {
		t.Fatalf("Len = %d, want 3", prog.Len())
	}
	if prog.Start() != 0 {
		t.Errorf("Start = %d, want 0", prog.Start())
	}
	if prog.NumMatches() != 1 {
		t.Errorf("NumMatches = %d, want 1", prog.NumMatches())
	}

	in := prog.Inst(0)
	if in.Kind() != InstBytes {
		t.Fatalf("inst 0 kind = %v, want Bytes", in.Kind())
	}
	lo, hi, next := in.ByteRange()
	if lo != 'a' || hi != 'a' || next != 1 {
		t.Errorf("inst 0 = [%q, %q] -> %d", lo, hi, next)
	}
	if !in.Matches('a') || in.Matches('b') {
		t.Error("inst 0 byte matching wrong")
	}
}

// TestBuilderErrors covers each build validation failure.
func TestBuilderErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(*Builder)
		kind  ErrorKind
	}{
		{
			"empty program",
			func(b *Builder) {},
			EmptyProgram,
		},
		{
			"no match instruction",
			func(b *Builder) {
				b.Byte('a', 0)
				b.SetStart(0)
			},
			NoMatchInst,
		},
		{
			"target out of range",
			func(b *Builder) {
				b.Byte('a', 99)
				b.Match(0)
				b.SetStart(0)
			},
			BadTarget,
		},
		{
			"split target out of range",
			func(b *Builder) {
				b.Split(1, 99)
				b.Match(0)
				b.SetStart(0)
			},
			BadTarget,
		},
		{
			"start out of range",
			func(b *Builder) {
				b.Match(0)
				b.SetStart(5)
			},
			BadTarget,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			tt.build(b)
			_, err := b.Build()
			if err == nil {
				t.Fatal("Build() succeeded, want error")
			}
			if !errors.Is(err, &BuildError{Kind: tt.kind}) {
				t.Errorf("Build() error = %v, want kind %v", err, tt.kind)
			}
		})
	}
}

// TestBuilderPatch verifies forward-reference fixups.
func TestBuilderPatch(t *testing.T) {
	b := NewBuilder()
	split := b.Split(0, 0)
	lhs := b.Byte('a', 3)
	rhs := b.Byte('b', 3)
	b.Match(0)
	b.Patch(split, lhs, rhs)
	b.SetStart(split)

	prog, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	g1, g2 := prog.Inst(split).Split()
	if g1 != lhs || g2 != rhs {
		t.Errorf("Split = (%d, %d), want (%d, %d)", g1, g2, lhs, rhs)
	}
}

// TestBuilderDotStar checks the unanchored prefix loop structure.
func TestBuilderDotStar(t *testing.T) {
	b := NewBuilder()
	b.Byte('a', 1)
	b.Match(0)
	loop := b.DotStar(0)
	b.SetStart(loop)

	prog, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	split := prog.Inst(loop)
	if split.Kind() != InstSplit {
		t.Fatalf("loop kind = %v, want Split", split.Kind())
	}
	pattern, any := split.Split()
	if pattern != 0 {
		t.Errorf("loop prefers %d, want the pattern at 0", pattern)
	}
	anyInst := prog.Inst(any)
	lo, hi, next := anyInst.ByteRange()
	if anyInst.Kind() != InstBytes || lo != 0 || hi != 0xFF || next != loop {
		t.Errorf("any inst = %v", anyInst)
	}
}

// TestBuilderUnicodeWordBoundary checks the flags and class split a Unicode
// \b imposes.
func TestBuilderUnicodeWordBoundary(t *testing.T) {
	b := NewBuilder()
	b.EmptyLook(LookWordBoundary, 1)
	b.Byte('a', 2)
	b.Match(0)
	b.SetStart(0)
	prog, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if !prog.HasUnicodeWordBoundary() {
		t.Error("HasUnicodeWordBoundary = false")
	}
	if prog.ByteClass(0x7F) == prog.ByteClass(0x80) {
		t.Error("ASCII and non-ASCII share a byte class")
	}
	if prog.ByteClass(0x80) != prog.ByteClass(0xC3) {
		t.Error("non-ASCII bytes split into several classes")
	}
}

// TestBuilderASCIIWordBoundaryNotUnicode checks that the ASCII assertions do
// not force the quit path.
func TestBuilderASCIIWordBoundaryNotUnicode(t *testing.T) {
	b := NewBuilder()
	b.EmptyLook(LookWordBoundaryASCII, 1)
	b.Byte('a', 2)
	b.Match(0)
	b.SetStart(0)
	prog, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if prog.HasUnicodeWordBoundary() {
		t.Error("ASCII \\b flagged as Unicode")
	}
}

// TestBuilderMultiPattern checks match slot accounting.
func TestBuilderMultiPattern(t *testing.T) {
	b := NewBuilder()
	b.Split(1, 3)
	b.Byte('a', 2)
	b.Match(0)
	b.Byte('b', 4)
	b.Match(1)
	b.SetStart(0)
	prog, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if prog.NumMatches() != 2 {
		t.Errorf("NumMatches = %d, want 2", prog.NumMatches())
	}
	if prog.Inst(4).MatchSlot() != 1 {
		t.Errorf("MatchSlot = %d, want 1", prog.Inst(4).MatchSlot())
	}
}
