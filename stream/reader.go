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

// Package stream layers a sequential read cursor over a bit sequence. A
// Reader holds a position, never a copy: reading decodes at the position and
// advances by the bits consumed. Multi-token reads are atomic, and peeks
// never move the cursor. A reader over a mutable sequence watches its
// generation counter: any length change other than pure trailing extension
// resets the position to zero.
package stream

import (
	"github.com/google/bitbox/bits"
	"github.com/google/bitbox/format"
	"github.com/pkg/errors"
)

// ErrExhausted is the cause of every read past the end of the sequence.
const ErrExhausted = bits.ErrExhausted

// Reader is a sequential cursor over one bit sequence. It is not safe for
// concurrent use.
type Reader struct {
	seq *bits.Bits
	mut *bits.Mutable
	gen uint64
	pos int
}

// NewReader returns a cursor at position zero over an immutable sequence.
func NewReader(b *bits.Bits) *Reader {
	return &Reader{seq: b}
}

// NewMutableReader returns a cursor at position zero over a mutable
// sequence. The reader follows the sequence as it changes; it never owns it.
func NewMutableReader(m *bits.Mutable) *Reader {
	return &Reader{seq: m.View(), mut: m, gen: m.Generation()}
}

// sync resets the position when the underlying sequence was reshaped since
// the last operation.
func (r *Reader) sync() {
	if r.mut != nil && r.mut.Generation() != r.gen {
		r.gen = r.mut.Generation()
		r.pos = 0
	}
}

// Len returns the current bit length of the underlying sequence.
func (r *Reader) Len() int { return r.seq.Len() }

// Pos returns the cursor position.
func (r *Reader) Pos() int {
	r.sync()
	return r.pos
}

// SetPos moves the cursor. Positions outside [0, length] fail with
// bits.ErrValue.
func (r *Reader) SetPos(p int) error {
	r.sync()
	if p < 0 || p > r.seq.Len() {
		return errors.WithMessagef(bits.ErrValue, "position %d with length %d", p, r.seq.Len())
	}
	r.pos = p
	return nil
}

// Remaining returns the bits left between the cursor and the end.
func (r *Reader) Remaining() int {
	r.sync()
	return r.seq.Len() - r.pos
}

// Read decodes one value through the format string and advances the
// cursor. The format must yield exactly one value. A failed read
// leaves the cursor where it was.
func (r *Reader) Read(src string) (interface{}, error) {
	values, err := r.ReadList(src)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, errors.WithMessagef(bits.ErrValue,
			"%q yields %d values, want one", src, len(values))
	}
	return values[0], nil
}

// ReadList decodes all values of the format string and advances the
// cursor past them. The read is atomic: if any token fails the cursor does
// not move and no values are returned.
func (r *Reader) ReadList(src string) ([]interface{}, error) {
	values, end, err := r.run(src)
	if err != nil {
		return nil, err
	}
	r.pos = end
	return values, nil
}

// Peek decodes like Read but leaves the cursor in place.
func (r *Reader) Peek(src string) (interface{}, error) {
	values, err := r.PeekList(src)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, errors.WithMessagef(bits.ErrValue,
			"%q yields %d values, want one", src, len(values))
	}
	return values[0], nil
}

// PeekList decodes like ReadList but leaves the cursor in place.
func (r *Reader) PeekList(src string) ([]interface{}, error) {
	values, _, err := r.run(src)
	return values, err
}

func (r *Reader) run(src string) ([]interface{}, int, error) {
	r.sync()
	p, err := format.CompileCached(src)
	if err != nil {
		return nil, 0, err
	}
	return p.UnpackFrom(r.seq, r.pos)
}

// ReadProgram decodes through a compiled program and advances the cursor,
// with the same atomicity as ReadList.
func (r *Reader) ReadProgram(p *format.Program) ([]interface{}, error) {
	r.sync()
	values, end, err := p.UnpackFrom(r.seq, r.pos)
	if err != nil {
		return nil, err
	}
	r.pos = end
	return values, nil
}

// ReadBits returns the next n raw bits and advances the cursor.
func (r *Reader) ReadBits(n int) (*bits.Bits, error) {
	b, err := r.PeekBits(n)
	if err != nil {
		return nil, err
	}
	r.pos += n
	return b, nil
}

// PeekBits returns the next n raw bits without moving the cursor.
func (r *Reader) PeekBits(n int) (*bits.Bits, error) {
	r.sync()
	if n < 0 {
		return nil, errors.WithMessagef(bits.ErrValue, "bit count %d", n)
	}
	if r.pos+n > r.seq.Len() {
		return nil, errors.WithMessagef(ErrExhausted,
			"%d bits at position %d with %d remaining", n, r.pos, r.seq.Len()-r.pos)
	}
	return r.seq.Slice(r.pos, r.pos+n), nil
}

// ByteAlign advances the cursor to the next byte boundary and returns the
// number of bits skipped.
func (r *Reader) ByteAlign() int {
	r.sync()
	gap := bits.AlignGap(r.pos)
	if r.pos+gap > r.seq.Len() {
		gap = r.seq.Len() - r.pos
	}
	r.pos += gap
	return gap
}

// Find searches the underlying sequence within opt's window. On a match the
// cursor moves to the match start.
func (r *Reader) Find(needle *bits.Bits, opt bits.FindOptions) (int, bool, error) {
	r.sync()
	p, found, err := r.seq.Find(needle, opt)
	if err != nil || !found {
		return 0, found, err
	}
	r.pos = p
	return p, true, nil
}

// RFind searches backward; on a match the cursor moves to the match start.
func (r *Reader) RFind(needle *bits.Bits, opt bits.FindOptions) (int, bool, error) {
	r.sync()
	p, found, err := r.seq.RFind(needle, opt)
	if err != nil || !found {
		return 0, found, err
	}
	r.pos = p
	return p, true, nil
}
