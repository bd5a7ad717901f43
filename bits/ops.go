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

package bits

import "github.com/pkg/errors"

// And returns the bitwise AND of b and o. The operands must have equal
// length, else the operation fails with ErrValue.
func (b *Bits) And(o *Bits) (*Bits, error) {
	return b.bitwise(o, func(x, y byte) byte { return x & y })
}

// Or returns the bitwise OR of b and o. The operands must have equal length.
func (b *Bits) Or(o *Bits) (*Bits, error) {
	return b.bitwise(o, func(x, y byte) byte { return x | y })
}

// Xor returns the bitwise XOR of b and o. The operands must have equal
// length.
func (b *Bits) Xor(o *Bits) (*Bits, error) {
	return b.bitwise(o, func(x, y byte) byte { return x ^ y })
}

func (b *Bits) bitwise(o *Bits, op func(x, y byte) byte) (*Bits, error) {
	if b.length != o.length {
		return nil, errors.WithMessagef(ErrValue,
			"bitwise operation on mismatched lengths %d and %d", b.length, o.length)
	}
	out := newBits(b.length)
	for i := range out.data {
		out.data[i] = op(b.data[i], o.data[i])
	}
	return out, nil
}

// Not returns the bitwise complement of b. The empty sequence has no
// complement and fails with ErrValue.
func (b *Bits) Not() (*Bits, error) {
	if b.length == 0 {
		return nil, errors.WithMessage(ErrValue, "bitwise NOT of an empty sequence")
	}
	out := newBits(b.length)
	for i := range out.data {
		out.data[i] = ^b.data[i]
	}
	clearTail(out.data, out.length)
	return out, nil
}

// ShiftLeft returns b logically shifted left by n bits, zero-filling on the
// right. A negative count fails with ErrValue; shifting an empty sequence
// fails with ErrValue.
func (b *Bits) ShiftLeft(n int) (*Bits, error) {
	if err := b.checkShift(n); err != nil {
		return nil, err
	}
	out := newBits(b.length)
	if n < b.length {
		copyBits(out.data, 0, b.data, n, b.length-n)
	}
	return out, nil
}

// ShiftRight returns b logically shifted right by n bits, zero-filling on
// the left.
func (b *Bits) ShiftRight(n int) (*Bits, error) {
	if err := b.checkShift(n); err != nil {
		return nil, err
	}
	out := newBits(b.length)
	if n < b.length {
		copyBits(out.data, n, b.data, 0, b.length-n)
	}
	return out, nil
}

func (b *Bits) checkShift(n int) error {
	if n < 0 {
		return errors.WithMessagef(ErrValue, "shift by negative count %d", n)
	}
	if b.length == 0 {
		return errors.WithMessage(ErrValue, "shift of an empty sequence")
	}
	return nil
}

// RotateLeft returns b rotated left by n bits, wrapping around. A negative
// count or an empty sequence fails with ErrValue.
func (b *Bits) RotateLeft(n int) (*Bits, error) {
	if err := b.checkShift(n); err != nil {
		return nil, err
	}
	n %= b.length
	out := newBits(b.length)
	copyBits(out.data, 0, b.data, n, b.length-n)
	copyBits(out.data, b.length-n, b.data, 0, n)
	return out, nil
}

// RotateRight returns b rotated right by n bits, wrapping around.
func (b *Bits) RotateRight(n int) (*Bits, error) {
	if err := b.checkShift(n); err != nil {
		return nil, err
	}
	n %= b.length
	return b.RotateLeft(b.length - n)
}

// Reverse returns b with all bits in reverse order.
func (b *Bits) Reverse() *Bits {
	out := b.copy()
	reverseRange(out.data, 0, out.length)
	return out
}

// ReverseRange returns b with the bits of [start, end) in reverse order.
// Bounds must satisfy 0 <= start <= end <= length, else ErrValue.
func (b *Bits) ReverseRange(start, end int) (*Bits, error) {
	if err := b.checkRange(start, end); err != nil {
		return nil, err
	}
	out := b.copy()
	reverseRange(out.data, start, end)
	return out, nil
}

func (b *Bits) checkRange(start, end int) error {
	if start < 0 || end > b.length || start > end {
		return errors.WithMessagef(ErrValue,
			"range [%d, %d) invalid for length %d", start, end, b.length)
	}
	return nil
}

// reverseRange reverses bits [start, end) of the packed buffer in place.
func reverseRange(data []byte, start, end int) {
	for i, j := start, end-1; i < j; i, j = i+1, j-1 {
		bi, bj := bitAt(data, i), bitAt(data, j)
		setBit(data, i, bj)
		setBit(data, j, bi)
	}
}
