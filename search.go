// Copyright 2019 Yegor Myskin. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tailsafe

import (
	"cmp"
)

// SearchFloor returns the index of the greatest element of sorted that is less
// than or equal to needle, or -1 when sorted is empty or needle precedes its
// first element. The slice must be sorted in ascending order, which is the
// caller's responsibility.
func SearchFloor[T cmp.Ordered](sorted []T, needle T) int {
	lo, hi := 0, len(sorted)-1
	floor := -1

	for lo <= hi {
		mid := int(uint(lo+hi) >> 1)
		if sorted[mid] <= needle {
			floor = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}

	return floor
}

// IndexSeq returns the lowest index >= from at which pattern occurs
// element-wise inside buf, or -1. It returns -1 when buf or pattern is empty,
// pattern is longer than buf or from points past the end of buf. A negative
// from is treated as 0.
func IndexSeq[T comparable](buf, pattern []T, from int) int {
	if len(buf) == 0 || len(pattern) == 0 || len(pattern) > len(buf) || from > len(buf) {
		return -1
	}
	if from < 0 {
		from = 0
	}

	for i := from; i <= len(buf)-len(pattern); i++ {
		if matchesAt(buf, pattern, i) {
			return i
		}
	}

	return -1
}

// LastIndexSeq returns the highest index <= from at which pattern occurs
// element-wise inside buf, or -1. The contract mirrors IndexSeq from the high
// end; a from beyond the last viable start is clamped down to it.
func LastIndexSeq[T comparable](buf, pattern []T, from int) int {
	if len(buf) == 0 || len(pattern) == 0 || len(pattern) > len(buf) || from < 0 {
		return -1
	}
	if last := len(buf) - len(pattern); from > last {
		from = last
	}

	for i := from; i >= 0; i-- {
		if matchesAt(buf, pattern, i) {
			return i
		}
	}

	return -1
}

func matchesAt[T comparable](buf, pattern []T, at int) bool {
	for j := range pattern {
		if buf[at+j] != pattern[j] {
			return false
		}
	}
	return true
}
