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

// Package f16 provides conversion between 16-bit and 32-bit floating point
// numbers. It covers the IEEE-754 binary16 format (Number) and the truncated
// binary32 format known as bfloat16 (BFloat).
package f16

import "math"

// Number represents an IEEE-754 binary16 floating point number:
// 1 sign bit, 5 exponent bits (bias 15) and 10 fraction bits.
type Number uint16

const (
	// PosInf is the binary16 positive infinity.
	PosInf = Number(0x7c00)
	// NegInf is the binary16 negative infinity.
	NegInf = Number(0xfc00)
	// NaN is a binary16 quiet not-a-number.
	NaN = Number(0x7e00)
	// MaxValue is the largest finite binary16 value (65504).
	MaxValue = Number(0x7bff)
)

// From32 converts a float32 to the nearest binary16 value, rounding to
// nearest with ties to even. Values beyond the finite range become
// infinities, NaN payloads are narrowed but kept NaN.
func From32(f float32) Number {
	b := math.Float32bits(f)
	sign := uint16((b >> 16) & 0x8000)
	exp := int((b >> 23) & 0xff)
	man := b & 0x7fffff

	if exp == 0xff { // infinity or NaN
		if man == 0 {
			return Number(sign | 0x7c00)
		}
		n := Number(sign | 0x7c00 | uint16(man>>13))
		if n&0x3ff == 0 {
			n |= 1 // NaN must stay NaN after narrowing
		}
		return n
	}

	e := exp - 127 + 15
	switch {
	case e >= 0x1f: // too large, round to infinity
		return Number(sign | 0x7c00)

	case e <= 0: // binary16 subnormal or zero
		if e < -10 {
			return Number(sign)
		}
		man |= 0x800000
		shift := uint(14 - e)
		half := uint32(1) << (shift - 1)
		v := man >> shift
		if man&half != 0 && (man&(half-1) != 0 || v&1 != 0) {
			v++
		}
		return Number(sign | uint16(v))

	default:
		v := uint32(e)<<10 | man>>13
		// Round to nearest even. A carry out of the fraction increments the
		// exponent, which is the correct result, including a carry to infinity.
		if man&0x1000 != 0 && (man&0xfff != 0 || v&1 != 0) {
			v++
		}
		return Number(sign | uint16(v))
	}
}

// Float32 expands the binary16 number to a float32. The conversion is exact.
func (n Number) Float32() float32 {
	sign := uint32(n&0x8000) << 16
	exp := uint32(n>>10) & 0x1f
	man := uint32(n & 0x3ff)
	switch exp {
	case 0:
		if man == 0 {
			return math.Float32frombits(sign)
		}
		// Normalize the subnormal fraction.
		e := uint32(127 - 15 + 1)
		for man&0x400 == 0 {
			man <<= 1
			e--
		}
		return math.Float32frombits(sign | e<<23 | (man&0x3ff)<<13)
	case 0x1f:
		if man == 0 {
			return math.Float32frombits(sign | 0x7f800000)
		}
		return math.Float32frombits(sign | 0x7f800000 | man<<13)
	default:
		return math.Float32frombits(sign | (exp+112)<<23 | man<<13)
	}
}

// IsNaN reports whether the number is a not-a-number value.
func (n Number) IsNaN() bool {
	return n&0x7c00 == 0x7c00 && n&0x3ff != 0
}

// BFloat represents a bfloat16 floating point number: the most significant
// 16 bits of an IEEE-754 binary32 pattern (1 sign bit, 8 exponent bits,
// 7 fraction bits).
type BFloat uint16

// BFloatFrom32 converts a float32 to bfloat16 by truncating the low 16
// fraction bits. Truncation rounds toward zero; it never rounds to nearest.
func BFloatFrom32(f float32) BFloat {
	return BFloat(math.Float32bits(f) >> 16)
}

// Float32 expands the bfloat16 number to a float32. The conversion is exact.
func (n BFloat) Float32() float32 {
	return math.Float32frombits(uint32(n) << 16)
}

// IsNaN reports whether the bfloat16 number is a not-a-number value.
func (n BFloat) IsNaN() bool {
	return n&0x7f80 == 0x7f80 && n&0x7f != 0
}
