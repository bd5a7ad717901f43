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

// Package sint provides signed integer arithmetic helpers.
package sint

func Abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

func Clamp(x, min, max int) int {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

// Min returns the minimum value of a and b.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum value of a and b.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Fits reports whether v is representable as an n bit two's-complement value.
// n must be in [1, 64].
func Fits(v int64, n int) bool {
	if n >= 64 {
		return true
	}
	return v >= -(int64(1)<<uint(n-1)) && v < int64(1)<<uint(n-1)
}
