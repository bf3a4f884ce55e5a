package assign

import "math"

// RequiredCount computes the minimum number of flights that must be marked
// ATENDER for a category: ceil(total * targetPercent / 100), clamped to
// total. Ceiling rounding means a non-zero target on a non-empty group
// always requires at least one flight.
//
// targetPercent must already be within [0, 100] with at most two decimals;
// that is the caller's responsibility and is not re-validated here. The
// percentage is converted to integer basis points before the ceiling
// division so float rounding can never flip a boundary case.
func RequiredCount(total int, targetPercent float64) int {
	if total <= 0 {
		return 0
	}

	basisPoints := int64(math.Round(targetPercent * 100))
	if basisPoints <= 0 {
		return 0
	}

	required := int((int64(total)*basisPoints + 9999) / 10000)
	if required > total {
		return total
	}
	return required
}
