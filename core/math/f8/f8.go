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

// Package f8 provides conversion for the two 8-bit minifloat formats used in
// machine-learning codecs, both following the FNUZ convention: a single zero
// pattern (0x00), a single NaN pattern (0x80) and no infinities.
//
// E4M3 is the 1-4-3 layout (1 sign, 4 exponent, 3 fraction bits, bias 8).
// E5M2 is the 1-5-2 layout (1 sign, 5 exponent, 2 fraction bits, bias 16).
package f8

import "math"

type (
	// E4M3 is an 8-bit float in the 1-4-3 FNUZ layout.
	E4M3 uint8
	// E5M2 is an 8-bit float in the 1-5-2 FNUZ layout.
	E5M2 uint8
)

const (
	// E4M3Max is the largest finite E4M3 magnitude.
	E4M3Max = 240.0
	// E5M2Max is the largest finite E5M2 magnitude.
	E5M2Max = 57344.0

	nanCode = 0x80
)

// layout describes one of the 8-bit formats and caches its decoded positive
// half. Positive codes 0x00..0x7f decode to strictly increasing values, which
// the encoder relies on.
type layout struct {
	mbits uint
	bias  int
	pos   [128]float64
}

func newLayout(mbits uint, bias int) *layout {
	l := &layout{mbits: mbits, bias: bias}
	scale := float64(uint(1) << mbits)
	for c := 1; c < 128; c++ {
		e := c >> mbits
		m := float64(c & int(scale-1))
		if e == 0 {
			l.pos[c] = m / scale * math.Pow(2, float64(1-bias))
		} else {
			l.pos[c] = (1 + m/scale) * math.Pow(2, float64(e-bias))
		}
	}
	return l
}

var (
	e4m3 = newLayout(3, 8)
	e5m2 = newLayout(2, 16)
)

// decode returns the value of a code in this layout.
func (l *layout) decode(c uint8) float64 {
	if c == nanCode {
		return math.NaN()
	}
	v := l.pos[c&0x7f]
	if c&0x80 != 0 {
		return -v
	}
	return v
}

// encode returns the code whose value is nearest to f, with ties toward
// zero. NaN maps to the single NaN pattern; any magnitude at or beyond the
// largest finite value (infinities included) saturates to the largest finite
// code of matching sign.
func (l *layout) encode(f float64) uint8 {
	if math.IsNaN(f) {
		return nanCode
	}
	neg := math.Signbit(f)
	a := math.Abs(f)
	if a >= l.pos[127] {
		if neg {
			return 0xff
		}
		return 0x7f
	}
	// Binary search the monotonic positive half for the last code <= a.
	lo, hi := 0, 127
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if l.pos[mid] <= a {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	c := uint8(lo)
	if lo < 127 && l.pos[lo+1]-a < a-l.pos[lo] {
		c++
	}
	if c == 0 {
		return 0 // signless zero, even for negative inputs
	}
	if neg {
		c |= 0x80
	}
	return c
}

// E4M3From32 converts a float32 to the nearest E4M3 value.
func E4M3From32(f float32) E4M3 { return E4M3(e4m3.encode(float64(f))) }

// Float32 returns the value of the E4M3 code.
func (n E4M3) Float32() float32 { return float32(e4m3.decode(uint8(n))) }

// IsNaN reports whether the code is the single E4M3 NaN pattern.
func (n E4M3) IsNaN() bool { return n == nanCode }

// E5M2From32 converts a float32 to the nearest E5M2 value.
func E5M2From32(f float32) E5M2 { return E5M2(e5m2.encode(float64(f))) }

// Float32 returns the value of the E5M2 code.
func (n E5M2) Float32() float32 { return float32(e5m2.decode(uint8(n))) }

// IsNaN reports whether the code is the single E5M2 NaN pattern.
func (n E5M2) IsNaN() bool { return n == nanCode }
