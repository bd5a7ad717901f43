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

// Mutable is the mutable variant of Bits. All the immutable views and
// operators remain available; the methods below change the sequence in
// place. Mutable performs no locking: sharing one across goroutines needs
// caller-provided exclusive access.
//
// Mutable tracks a generation counter that advances whenever the length
// changes by anything other than a pure trailing append. Stream readers use
// it to decide when their position is stale.
type Mutable struct {
	Bits
	gen uint64
}

// View returns a read-only view of the current content. The view tracks
// later mutations; Freeze returns a detached snapshot instead.
func (m *Mutable) View() *Bits { return &m.Bits }

// Freeze returns an immutable snapshot of the current content.
func (m *Mutable) Freeze() *Bits { return m.Bits.copy() }

// Generation returns the invalidation counter. It advances on every
// length-changing operation other than pure trailing extension.
func (m *Mutable) Generation() uint64 { return m.gen }

// Hash shadows Bits.Hash: the mutable variant is not hashable.
func (m *Mutable) Hash() (uint64, error) {
	return 0, errors.WithMessage(ErrValue, "mutable sequences are not hashable")
}

// grow extends the length by n bits, preserving existing content. The buffer
// grows amortized, as in an append.
func (m *Mutable) grow(n int) {
	req := (m.length + n + 7) / 8
	if req > len(m.data) {
		if req <= cap(m.data) {
			old := len(m.data)
			m.data = m.data[:req]
			// The spare capacity may hold bytes from a deleted tail.
			for i := old; i < req; i++ {
				m.data[i] = 0
			}
		} else {
			buf := make([]byte, req, req*2)
			copy(buf, m.data)
			m.data = buf
		}
	}
	m.length += n
}

// replace swaps in entirely new content. bump controls whether the
// invalidation counter advances.
func (m *Mutable) replace(b *Bits, bump bool) {
	m.data = b.data
	m.length = b.length
	if bump {
		m.gen++
	}
}

// Append extends the sequence with the bits of o. Pure trailing extension:
// it never invalidates stream positions.
func (m *Mutable) Append(o *Bits) {
	if o == &m.Bits {
		o = m.Freeze() // self-append reads a snapshot
	}
	at := m.length
	m.grow(o.length)
	copyBits(m.data, at, o.data, 0, o.length)
}

// Prepend inserts the bits of o at the front.
func (m *Mutable) Prepend(o *Bits) {
	m.replace(o.Concat(&m.Bits), true)
}

// Insert inserts the bits of o at bit position at. An at of the current
// length is a pure append. Positions outside [0, length] fail with ErrValue.
func (m *Mutable) Insert(at int, o *Bits) error {
	if at < 0 || at > m.length {
		return errors.WithMessagef(ErrValue, "insert position %d with length %d", at, m.length)
	}
	if at == m.length {
		m.Append(o)
		return nil
	}
	out := newBits(m.length + o.length)
	copyBits(out.data, 0, m.data, 0, at)
	copyBits(out.data, at, o.data, 0, o.length)
	copyBits(out.data, at+o.length, m.data, at, m.length-at)
	m.replace(out, true)
	return nil
}

// Overwrite writes the bits of o over the range starting at at, extending
// the sequence if the range runs past the end. Only an overwrite that
// changes the length other than by pure trailing extension invalidates
// stream positions.
func (m *Mutable) Overwrite(at int, o *Bits) error {
	if at < 0 || at > m.length {
		return errors.WithMessagef(ErrValue, "overwrite position %d with length %d", at, m.length)
	}
	if o == &m.Bits {
		o = m.Freeze()
	}
	oldLen := m.length
	if at+o.length > m.length {
		m.grow(at + o.length - m.length)
	}
	copyBits(m.data, at, o.data, 0, o.length)
	if m.length != oldLen && at != oldLen {
		m.gen++
	}
	return nil
}

// Delete removes the bits of [start, end). Bounds must satisfy
// 0 <= start <= end <= length, else ErrValue.
func (m *Mutable) Delete(start, end int) error {
	if err := m.checkRange(start, end); err != nil {
		return err
	}
	if start == end {
		return nil
	}
	// Shift the tail left in place; forward copy is safe for this overlap.
	copyBits(m.data, start, m.data, end, m.length-end)
	m.length -= end - start
	m.data = m.data[:(m.length+7)/8]
	clearTail(m.data, m.length)
	m.gen++
	return nil
}

// Set sets the given bit positions to value. Positions may be negative;
// positions outside [-length, length) fail with ErrIndex before any bit is
// changed.
func (m *Mutable) Set(value bool, positions ...int) error {
	resolved := make([]int, len(positions))
	for i, p := range positions {
		r, err := m.position(p)
		if err != nil {
			return err
		}
		resolved[i] = r
	}
	for _, p := range resolved {
		setBit(m.data, p, value)
	}
	return nil
}

// SetAll sets every bit to value.
func (m *Mutable) SetAll(value bool) {
	fill := byte(0)
	if value {
		fill = 0xff
	}
	for i := range m.data {
		m.data[i] = fill
	}
	clearTail(m.data, m.length)
}

// Invert flips the given bit positions, with the same position rules as Set.
func (m *Mutable) Invert(positions ...int) error {
	resolved := make([]int, len(positions))
	for i, p := range positions {
		r, err := m.position(p)
		if err != nil {
			return err
		}
		resolved[i] = r
	}
	for _, p := range resolved {
		setBit(m.data, p, !bitAt(m.data, p))
	}
	return nil
}

// InvertAll flips every bit.
func (m *Mutable) InvertAll() {
	for i := range m.data {
		m.data[i] = ^m.data[i]
	}
	clearTail(m.data, m.length)
}

// ReverseInPlace reverses the whole sequence in place.
func (m *Mutable) ReverseInPlace() {
	reverseRange(m.data, 0, m.length)
}

// ReverseRangeInPlace reverses the bits of [start, end) in place.
func (m *Mutable) ReverseRangeInPlace(start, end int) error {
	if err := m.checkRange(start, end); err != nil {
		return err
	}
	reverseRange(m.data, start, end)
	return nil
}

// RotateLeftInPlace rotates the sequence left by n bits, wrapping around.
func (m *Mutable) RotateLeftInPlace(n int) error {
	out, err := m.Bits.RotateLeft(n)
	if err != nil {
		return err
	}
	m.replace(out, false)
	return nil
}

// RotateRightInPlace rotates the sequence right by n bits, wrapping around.
func (m *Mutable) RotateRightInPlace(n int) error {
	out, err := m.Bits.RotateRight(n)
	if err != nil {
		return err
	}
	m.replace(out, false)
	return nil
}

// ShiftLeftInPlace shifts the sequence left by n bits, zero-filling.
func (m *Mutable) ShiftLeftInPlace(n int) error {
	out, err := m.Bits.ShiftLeft(n)
	if err != nil {
		return err
	}
	m.replace(out, false)
	return nil
}

// ShiftRightInPlace shifts the sequence right by n bits, zero-filling.
func (m *Mutable) ShiftRightInPlace(n int) error {
	out, err := m.Bits.ShiftRight(n)
	if err != nil {
		return err
	}
	m.replace(out, false)
	return nil
}
