package conv

import (
	"math"
	"testing"
)

// TestIntToUint32 covers in-range conversion and overflow panics.
func TestIntToUint32(t *testing.T) {
	if got := IntToUint32(0); got != 0 {
		t.Errorf("IntToUint32(0) = %d", got)
	}
	if got := IntToUint32(math.MaxUint32); got != math.MaxUint32 {
		t.Errorf("IntToUint32(MaxUint32) = %d", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("IntToUint32(-1) did not panic")
		}
	}()
	IntToUint32(-1)
}

// TestIntToInt32 covers in-range conversion and overflow panics.
func TestIntToInt32(t *testing.T) {
	if got := IntToInt32(math.MinInt32); got != math.MinInt32 {
		t.Errorf("IntToInt32(MinInt32) = %d", got)
	}
	if got := IntToInt32(math.MaxInt32); got != math.MaxInt32 {
		t.Errorf("IntToInt32(MaxInt32) = %d", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("IntToInt32(MaxInt32+1) did not panic")
		}
	}()
	IntToInt32(math.MaxInt32 + 1)
}
