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

package f16_test

import (
	"math"
	"testing"

	"github.com/google/bitbox/core/math/f16"
)

var checks = []struct {
	f16 f16.Number
	f32 float32
}{
	{0x0000, 0.0},
	{0x3c00, 1.0},
	{0x4000, 2.0},
	{0x4200, 3.0},
	{0x4400, 4.0},
	{0x4500, 5.0},
	{0x3555, 0.333251953125},
	{0xbc00, -1.0},
	{0xc000, -2.0},
	{0xc200, -3.0},
	{0xc400, -4.0},
	{0xc500, -5.0},
	{0xb555, -0.333251953125},
	{0x7a1a, 5e4},
	{0x068d, 1e-4},
	{0x0346, 4.995e-5},
	{0x0053, 4.95e-6},
	{0x0008, 4.77e-7},
}

func TestFloat16To32(t *testing.T) {
	for _, c := range checks {
		expected, got := float64(c.f32), float64(c.f16.Float32())
		esign, gsign := math.Signbit(expected), math.Signbit(got)
		expected, got = math.Abs(expected), math.Abs(got)
		if esign != gsign || got > expected*1.001 || got < expected*0.999 {
			t.Errorf("Expansion of float16(0x%04x) to float32 gave unexpected value.\n"+
				"Expected: %g, got: %g", uint16(c.f16), expected, got)
		}
	}
}

func TestFloat32To16(t *testing.T) {
	exact := []struct {
		f32 float32
		f16 f16.Number
	}{
		{0.0, 0x0000},
		{1.0, 0x3c00},
		{2.0, 0x4000},
		{-1.0, 0xbc00},
		{-2.0, 0xc000},
		{65504, 0x7bff}, // largest finite value
		{0.5, 0x3800},
		{0.25, 0x3400},
	}
	for _, c := range exact {
		if got := f16.From32(c.f32); got != c.f16 {
			t.Errorf("From32(%g) = 0x%04x, expected 0x%04x", c.f32, uint16(got), uint16(c.f16))
		}
	}
}

func TestFloat16RoundTrip(t *testing.T) {
	// Every finite binary16 pattern must survive a 16 -> 32 -> 16 round trip.
	for i := 0; i < 0x10000; i++ {
		n := f16.Number(i)
		if n&0x7c00 == 0x7c00 {
			continue // infinity or NaN
		}
		if got := f16.From32(n.Float32()); got != n {
			t.Fatalf("Round trip of 0x%04x gave 0x%04x", uint16(n), uint16(got))
		}
	}
}

func TestFloat16Specials(t *testing.T) {
	if got := f16.From32(float32(math.Inf(1))); got != f16.PosInf {
		t.Errorf("From32(+Inf) = 0x%04x", uint16(got))
	}
	if got := f16.From32(float32(math.Inf(-1))); got != f16.NegInf {
		t.Errorf("From32(-Inf) = 0x%04x", uint16(got))
	}
	if got := f16.From32(1e30); got != f16.PosInf {
		t.Errorf("From32(1e30) did not overflow to infinity, got 0x%04x", uint16(got))
	}
	if !f16.From32(float32(math.NaN())).IsNaN() {
		t.Errorf("From32(NaN) is not NaN")
	}
	if f16.MaxValue.Float32() != 65504 {
		t.Errorf("MaxValue = %g, expected 65504", f16.MaxValue.Float32())
	}
}

func TestBFloat(t *testing.T) {
	// Truncation toward zero: the low 16 bits of the binary32 pattern are
	// dropped, never rounded up.
	if got := f16.BFloatFrom32(4.5e23); got != 0x66be {
		t.Errorf("BFloatFrom32(4.5e23) = 0x%04x, expected 0x66be", uint16(got))
	}
	back := float64(f16.BFloat(0x66be).Float32())
	if back > 4.5e23 || back < 4.5e23*(1-1.0/128) {
		t.Errorf("BFloat(0x66be) = %g, outside the rounding error of 4.5e23", back)
	}
	exact := []struct {
		f32 float32
		bf  f16.BFloat
	}{
		{0.0, 0x0000},
		{1.0, 0x3f80},
		{-2.0, 0xc000},
		{0.5, 0x3f00},
	}
	for _, c := range exact {
		if got := f16.BFloatFrom32(c.f32); got != c.bf {
			t.Errorf("BFloatFrom32(%g) = 0x%04x, expected 0x%04x", c.f32, uint16(got), uint16(c.bf))
		}
		if got := c.bf.Float32(); got != c.f32 {
			t.Errorf("BFloat(0x%04x) = %g, expected %g", uint16(c.bf), got, c.f32)
		}
	}
	if !f16.BFloatFrom32(float32(math.NaN())).IsNaN() {
		t.Errorf("BFloatFrom32(NaN) is not NaN")
	}
}
