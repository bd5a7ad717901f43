// Copyright (C) 2024 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package u64 provides unsigned 64-bit arithmetic and mask helpers.
package u64

import "math/bits"

// Min returns the minimum value of a and b.
func Min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum value of a and b.
func Max(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

// AlignUp returns the result of aligning up the given value to the given alignment.
func AlignUp(value, alignment uint64) uint64 {
	if value%alignment != 0 {
		return value + alignment - (value % alignment)
	}
	return value
}

// Mask returns a value with the low n bits set. n must be in [0, 64].
func Mask(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(n)) - 1
}

// Reverse returns the low n bits of v in reversed bit order.
func Reverse(v uint64, n int) uint64 {
	return bits.Reverse64(v) >> uint(64-n)
}

// Fits reports whether v is representable in n bits. n must be in [0, 64].
func Fits(v uint64, n int) bool {
	if n >= 64 {
		return true
	}
	return v <= Mask(n)
}
