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

package bits_test

import (
	"testing"

	"github.com/google/bitbox/bits"
	"github.com/google/bitbox/core/assert"
)

func TestBitwise(t *testing.T) {
	assert := assert.To(t)
	a := parse(t, "0b1100")
	b := parse(t, "0b1010")
	and, err := a.And(b)
	assert.For("and").ThatError(err).Succeeded()
	assert.For("and").That(and.String()).Equals("0x8")
	or, err := a.Or(b)
	assert.For("or").ThatError(err).Succeeded()
	assert.For("or").That(or.String()).Equals("0xe")
	xor, err := a.Xor(b)
	assert.For("xor").ThatError(err).Succeeded()
	assert.For("xor").That(xor.String()).Equals("0x6")

	_, err = a.And(parse(t, "0b11000"))
	assert.For("mismatch").ThatError(err).HasCause(bits.ErrValue)
}

func TestNot(t *testing.T) {
	assert := assert.To(t)
	n, err := parse(t, "0b10110").Not()
	assert.For("not").ThatError(err).Succeeded()
	assert.For("not").That(n.String()).Equals("0b01001")
	_, err = bits.Empty.Not()
	assert.For("empty").ThatError(err).HasCause(bits.ErrValue)
}

func TestShifts(t *testing.T) {
	assert := assert.To(t)
	b := parse(t, "0b10011000")
	left, err := b.ShiftLeft(3)
	assert.For("left").ThatError(err).Succeeded()
	assert.For("left").That(left.String()).Equals("0xc0")
	right, err := b.ShiftRight(3)
	assert.For("right").ThatError(err).Succeeded()
	assert.For("right").That(right.String()).Equals("0x13")
	far, err := b.ShiftLeft(100)
	assert.For("overshift").ThatError(err).Succeeded()
	assert.For("overshift").That(far.Count(true)).Equals(0)
	_, err = b.ShiftLeft(-1)
	assert.For("negative").ThatError(err).HasCause(bits.ErrValue)
	_, err = bits.Empty.ShiftLeft(1)
	assert.For("empty").ThatError(err).HasCause(bits.ErrValue)
}

func TestRotates(t *testing.T) {
	assert := assert.To(t)
	b := parse(t, "0b10011000")
	left, err := b.RotateLeft(3)
	assert.For("left").ThatError(err).Succeeded()
	assert.For("left").That(left.String()).Equals("0xc4")
	right, err := b.RotateRight(3)
	assert.For("right").ThatError(err).Succeeded()
	assert.For("right").That(right.String()).Equals("0x13")
	full, err := b.RotateLeft(8)
	assert.For("full turn").ThatError(err).Succeeded()
	assert.For("full turn").That(full.Equal(b)).Equals(true)
}

func TestReverse(t *testing.T) {
	assert := assert.To(t)
	b := parse(t, "0b1101000")
	assert.For("reverse").That(b.Reverse().String()).Equals("0b0001011")
	assert.For("involution").That(b.Reverse().Reverse().Equal(b)).Equals(true)

	r, err := b.ReverseRange(0, 4)
	assert.For("range").ThatError(err).Succeeded()
	assert.For("range").That(r.String()).Equals("0b1011000")
	_, err = b.ReverseRange(4, 2)
	assert.For("bad range").ThatError(err).HasCause(bits.ErrValue)
}
