package lazy

// Variable-width integer encoding for DFA state payloads.
//
// A state's instruction pointers are stored delta-encoded: the first pointer
// is a delta from zero and each subsequent pointer is a delta from the
// previous one. Deltas are signed (closures are ordered by discovery, not by
// value) and encoded with the protobuf varint scheme, zigzagged so small
// negative deltas stay small:
// https://developers.google.com/protocol-buffers/docs/encoding#varints

// writeVaru32 appends n as an unsigned varint and returns the extended slice.
func writeVaru32(data []byte, n uint32) []byte {
	for n >= 0x80 {
		data = append(data, byte(n)|0x80)
		n >>= 7
	}
	return append(data, byte(n))
}

// readVaru32 decodes an unsigned varint, returning the value and the number
// of bytes read. Returns (0, 0) on truncated input.
func readVaru32(data []byte) (uint32, int) {
	var n uint32
	var shift uint
	for i, b := range data {
		if b < 0x80 {
			return n | uint32(b)<<shift, i + 1
		}
		n |= uint32(b&0x7F) << shift
		shift += 7
	}
	return 0, 0
}

// writeVari32 appends n as a zigzag-encoded varint and returns the extended
// slice.
func writeVari32(data []byte, n int32) []byte {
	un := uint32(n) << 1
	if n < 0 {
		un = ^un
	}
	return writeVaru32(data, un)
}

// readVari32 decodes a zigzag-encoded varint, returning the value and the
// number of bytes read.
func readVari32(data []byte) (int32, int) {
	un, i := readVaru32(data)
	n := int32(un >> 1)
	if un&1 != 0 {
		n = ^n
	}
	return n, i
}

// pushInstPtr appends ip to data using delta encoding with respect to *prev.
// After completion, data contains ip's delta and *prev is set to ip.
func pushInstPtr(data []byte, prev *uint32, ip uint32) []byte {
	delta := int32(ip) - int32(*prev)
	data = writeVari32(data, delta)
	*prev = ip
	return data
}
