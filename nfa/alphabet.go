package nfa

// ByteClassSet tracks byte boundaries during program construction.
//
// Each Bytes instruction [lo, hi] marks lo-1 and hi as boundary bytes.
// Bytes between two consecutive boundaries can never discriminate a distinct
// path through the program, so they share one equivalence class. This shrinks
// the DFA transition stride from 257 (256 bytes + EOF) to typically 4-16.
type ByteClassSet struct {
	// bits is a 256-bit bitset where bit i is set if byte i is a class boundary
	bits [4]uint64
}

// NewByteClassSet creates an empty ByteClassSet with no boundaries.
// With no boundaries every byte falls into class 0.
func NewByteClassSet() *ByteClassSet {
	return &ByteClassSet{}
}

// SetRange marks a byte range [start, end] as having distinct transitions.
// This sets boundary bits at start-1 and end.
func (bcs *ByteClassSet) SetRange(start, end byte) {
	if start > 0 {
		bcs.setBit(start - 1)
	}
	bcs.setBit(end)
}

// SetByte marks a single byte as having a distinct transition.
// Equivalent to SetRange(b, b).
func (bcs *ByteClassSet) SetByte(b byte) {
	bcs.SetRange(b, b)
}

// setBit sets bit b in the bitset
func (bcs *ByteClassSet) setBit(b byte) {
	bcs.bits[b/64] |= 1 << (b % 64)
}

// getBit returns true if bit b is set
func (bcs *ByteClassSet) getBit(b byte) bool {
	return bcs.bits[b/64]&(1<<(b%64)) != 0
}

// ByteClasses converts the boundary set into a 256-entry class table.
//
// Walks all 256 bytes, incrementing the class number each time a boundary
// byte is crossed. The resulting table satisfies classes[255]+1 == number of
// classes (the invariant the DFA relies on to size its transition rows).
func (bcs *ByteClassSet) ByteClasses() [256]byte {
	var classes [256]byte
	class := byte(0)

	for b := 0; b < 256; b++ {
		classes[b] = class
		if bcs.getBit(byte(b)) && b < 255 {
			class++
		}
	}

	return classes
}
