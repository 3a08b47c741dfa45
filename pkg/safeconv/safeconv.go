// Package safeconv centralizes the int/uint conversions that git2go's C
// bindings force on every caller: libgit2 counts things (parents, entries,
// hunks) in C's size_t/uint, while Go's scm package hands callers plain int.
// Converting inline at every call site invites a silently-wrong cast; these
// helpers make the bounds check explicit and give every caller the same
// failure mode.
package safeconv

import "math"

// MaxInt is the largest value an int can hold on the build platform.
const MaxInt = int(^uint(0) >> 1)

// MaxUint32 is the largest value a uint32 can hold.
const MaxUint32 = uint32(math.MaxUint32)

// MustUintToInt converts v to int. It panics if v exceeds MaxInt, which
// indicates a counted quantity (e.g. a libgit2 entry count) has grown beyond
// what the platform's int can represent — a condition callers should treat
// as a programming error, not a recoverable one.
func MustUintToInt(v uint) int {
	if v > uint(MaxInt) {
		panic("safeconv: uint to int overflow")
	}

	return int(v)
}

// MustIntToUint converts v to uint. It panics on a negative v, the shape
// libgit2's index-typed parameters (e.g. a parent-commit position) never
// take from a caller that has already bounds-checked against ParentCount.
func MustIntToUint(v int) uint {
	if v < 0 {
		panic("safeconv: negative int to uint conversion")
	}

	return uint(v)
}

// MustIntToUint32 converts v to uint32. It panics when v falls outside
// [0, MaxUint32], the range libgit2's 32-bit fields (file mode, some flag
// words) are defined over.
func MustIntToUint32(v int) uint32 {
	if v < 0 || v > int(MaxUint32) {
		panic("safeconv: int to uint32 out of bounds")
	}

	return uint32(v)
}

// SafeInt64 converts uint64 to int64, clamping to MaxInt64 on overflow.
func SafeInt64(v uint64) int64 {
	if v > uint64(math.MaxInt64) {
		return math.MaxInt64
	}

	return int64(v)
}

// SafeInt converts uint64 to int, clamping to MaxInt on overflow.
func SafeInt(v uint64) int {
	if v > uint64(MaxInt) {
		return MaxInt
	}

	return int(v)
}

// ToInt converts value to int when it holds an int, int32, int64, or
// float64, truncating floats toward zero. The second return is false for
// any other type.
func ToInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// ToFloat64 converts value to float64 when it holds a float64, int, int32,
// or int64. The second return is false for any other type.
func ToFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
