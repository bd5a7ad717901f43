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

import (
	"bytes"
	"hash/fnv"
	"io"

	"github.com/pkg/errors"
)

// Bits is an immutable sequence of bits. Bits are stored packed in a byte
// slice, most-significant-bit first: bit i of the sequence is bit (7 - i%8)
// of byte i/8. The trailing unused bits of the final byte are always zero,
// so byte-wise comparison decides equality.
//
// Every operation on Bits returns an independent value; no method mutates or
// aliases the receiver's storage in a caller-visible way.
type Bits struct {
	data   []byte
	length int
}

// Empty is the zero-length bit sequence.
var Empty = &Bits{}

func newBits(length int) *Bits {
	return &Bits{data: make([]byte, (length+7)/8), length: length}
}

// Len returns the number of bits in the sequence.
func (b *Bits) Len() int { return b.length }

// Bit returns the bit at position i. Negative positions index from the end.
// Positions outside [-length, length) fail with ErrIndex.
func (b *Bits) Bit(i int) (bool, error) {
	p, err := b.position(i)
	if err != nil {
		return false, err
	}
	return bitAt(b.data, p), nil
}

// position resolves a possibly-negative bit position against the length.
func (b *Bits) position(i int) (int, error) {
	if i < -b.length || i >= b.length {
		return 0, errors.WithMessagef(ErrIndex, "position %d with length %d", i, b.length)
	}
	if i < 0 {
		i += b.length
	}
	return i, nil
}

// resolveBound resolves a possibly-negative slice bound, clamped to
// [0, length].
func (b *Bits) resolveBound(i int) int {
	if i < 0 {
		i += b.length
	}
	if i < 0 {
		return 0
	}
	if i > b.length {
		return b.length
	}
	return i
}

// Slice returns the sub-sequence [start, end). Bounds may be negative to
// index from the end and are clamped to the sequence; an inverted range
// yields the empty sequence. The result never shares storage with b.
func (b *Bits) Slice(start, end int) *Bits {
	s, e := b.resolveBound(start), b.resolveBound(end)
	if s >= e {
		return Empty
	}
	return b.slice(s, e)
}

// slice copies out [s, e) with bounds already resolved.
func (b *Bits) slice(s, e int) *Bits {
	out := newBits(e - s)
	copyBits(out.data, 0, b.data, s, e-s)
	return out
}

// SliceStep returns the bits visited starting at start and stepping by step
// while inside the half-open interval toward end. Unlike Slice, the bounds
// are not negative-resolved (an end of -1 with a negative step walks down to
// position 0 inclusive, so SliceStep(b.Len()-1, -1, -1) reverses b). A zero
// step fails with ErrValue.
func (b *Bits) SliceStep(start, end, step int) (*Bits, error) {
	if step == 0 {
		return nil, errors.WithMessage(ErrValue, "slice step cannot be zero")
	}
	var picked []bool
	if step > 0 {
		if start < 0 {
			start = 0
		}
		if end > b.length {
			end = b.length
		}
		for i := start; i < end; i += step {
			picked = append(picked, bitAt(b.data, i))
		}
	} else {
		if start >= b.length {
			start = b.length - 1
		}
		if end < -1 {
			end = -1
		}
		for i := start; i > end; i += step {
			picked = append(picked, bitAt(b.data, i))
		}
	}
	return FromBools(picked), nil
}

// Concat returns the concatenation of b and o.
func (b *Bits) Concat(o *Bits) *Bits {
	out := newBits(b.length + o.length)
	copyBits(out.data, 0, b.data, 0, b.length)
	copyBits(out.data, b.length, o.data, 0, o.length)
	return out
}

// Repeat returns b repeated n times. A negative count fails with ErrValue.
func (b *Bits) Repeat(n int) (*Bits, error) {
	if n < 0 {
		return nil, errors.WithMessagef(ErrValue, "repeat count %d", n)
	}
	out := newBits(b.length * n)
	for i := 0; i < n; i++ {
		copyBits(out.data, i*b.length, b.data, 0, b.length)
	}
	return out, nil
}

// Equal reports whether b and o have the same length and bit content.
func (b *Bits) Equal(o *Bits) bool {
	return b.length == o.length && bytes.Equal(b.data, o.data)
}

// Hash returns a hash of the length and bit content. Two equal sequences
// hash identically. Only the immutable variant is hashable; Mutable shadows
// this method.
func (b *Bits) Hash() uint64 {
	h := fnv.New64a()
	var l [8]byte
	for i := 0; i < 8; i++ {
		l[i] = byte(b.length >> (8 * i))
	}
	h.Write(l[:])
	h.Write(b.data)
	return h.Sum64()
}

// String returns the sequence as a hex literal when the length is a multiple
// of four, else as a binary literal.
func (b *Bits) String() string {
	if b.length == 0 {
		return ""
	}
	if b.length%4 == 0 {
		s, _ := b.Hex()
		return "0x" + s
	}
	s, _ := b.Bin()
	return "0b" + s
}

// Bytes returns the content as bytes. Fails with ErrValue unless the length
// is a multiple of eight.
func (b *Bits) Bytes() ([]byte, error) {
	if b.length%8 != 0 {
		return nil, errors.WithMessagef(ErrValue, "cannot convert %d bits to bytes without padding", b.length)
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out, nil
}

// BytesPadded returns the content as bytes, padding the final byte with zero
// bits. This is the only implicit padding the package performs.
func (b *Bits) BytesPadded() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// WriteTo writes the content to w. Like Bytes, it fails with ErrValue unless
// the length is a multiple of eight. It never closes w.
func (b *Bits) WriteTo(w io.Writer) (int64, error) {
	if b.length%8 != 0 {
		return 0, errors.WithMessagef(ErrValue, "cannot export %d bits without padding", b.length)
	}
	n, err := w.Write(b.data)
	return int64(n), err
}

// WriteToPadded writes the content to w, zero-padding the final byte.
func (b *Bits) WriteToPadded(w io.Writer) (int64, error) {
	n, err := w.Write(b.data)
	return int64(n), err
}

// ToMutable returns a mutable copy of b.
func (b *Bits) ToMutable() *Mutable {
	m := &Mutable{}
	m.length = b.length
	m.data = make([]byte, len(b.data))
	copy(m.data, b.data)
	return m
}

// copy returns an independent copy of b.
func (b *Bits) copy() *Bits {
	out := &Bits{data: make([]byte, len(b.data)), length: b.length}
	copy(out.data, b.data)
	return out
}

// AlignGap returns the number of bits to skip to advance offset to the next
// multiple of eight. An already aligned offset needs no skip.
func AlignGap(offset int) int {
	return (8 - offset%8) % 8
}

// FromBytes returns a sequence over a copy of the given bytes.
func FromBytes(data []byte) *Bits {
	b := newBits(len(data) * 8)
	copy(b.data, data)
	return b
}

// FromBytesWindow returns the bitLength bits of data starting at bit
// bitOffset (counted most-significant-first from the start of the buffer).
// The window is copied and normalized, never aliased.
func FromBytesWindow(data []byte, bitOffset, bitLength int) (*Bits, error) {
	if bitOffset < 0 || bitLength < 0 || bitOffset+bitLength > len(data)*8 {
		return nil, errors.WithMessagef(ErrValue,
			"window [%d, %d+%d) outside buffer of %d bits", bitOffset, bitOffset, bitLength, len(data)*8)
	}
	b := newBits(bitLength)
	copyBits(b.data, 0, data, bitOffset, bitLength)
	return b, nil
}

// FromBools returns a sequence with one bit per element of v.
func FromBools(v []bool) *Bits {
	b := newBits(len(v))
	for i, bit := range v {
		if bit {
			b.data[i>>3] |= 0x80 >> uint(i&7)
		}
	}
	return b
}

// Zeros returns n zero bits. A negative count fails with ErrValue.
func Zeros(n int) (*Bits, error) {
	if n < 0 {
		return nil, errors.WithMessagef(ErrValue, "length %d", n)
	}
	return newBits(n), nil
}

// Ones returns n one bits. A negative count fails with ErrValue.
func Ones(n int) (*Bits, error) {
	if n < 0 {
		return nil, errors.WithMessagef(ErrValue, "length %d", n)
	}
	b := newBits(n)
	for i := range b.data {
		b.data[i] = 0xff
	}
	clearTail(b.data, n)
	return b, nil
}

// FromReader reads r to EOF and returns the bytes read as a sequence. The
// reader is an external collaborator: it is read, never opened or closed.
func FromReader(r io.Reader) (*Bits, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WithMessage(err, "reading bit sequence source")
	}
	return FromBytes(data), nil
}

// FromReaderAt reads byteCount bytes at byteOffset from r. Like FromReader
// it never owns the handle lifecycle.
func FromReaderAt(r io.ReaderAt, byteOffset int64, byteCount int) (*Bits, error) {
	if byteCount < 0 {
		return nil, errors.WithMessagef(ErrValue, "byte count %d", byteCount)
	}
	data := make([]byte, byteCount)
	if _, err := io.ReadFull(io.NewSectionReader(r, byteOffset, int64(byteCount)), data); err != nil {
		return nil, errors.WithMessage(err, "reading bit sequence source")
	}
	return FromBytes(data), nil
}

// Source is one accepted construction shape for New. The set of shapes is
// closed: a literal string, a byte buffer, a boolean list, a zero-filled
// size, or a fully-read byte source.
type Source interface {
	sequence() (*Bits, error)
}

type (
	literalSource string
	bufferSource  []byte
	boolsSource   []bool
	sizeSource    int
	fileSource    struct{ r io.Reader }
)

// Literal makes a Source from a literal string (0x…, 0o…, 0b…, hex=…,
// oct=…, bin=… forms).
func Literal(s string) Source { return literalSource(s) }

// Buffer makes a Source from a byte buffer.
func Buffer(data []byte) Source { return bufferSource(data) }

// Bools makes a Source from a boolean list.
func Bools(v []bool) Source { return boolsSource(v) }

// Size makes a Source of n zero bits.
func Size(n int) Source { return sizeSource(n) }

// File makes a Source that reads a byte stream to EOF.
func File(r io.Reader) Source { return fileSource{r} }

func (s literalSource) sequence() (*Bits, error) { return Parse(string(s)) }
func (s bufferSource) sequence() (*Bits, error)  { return FromBytes(s), nil }
func (s boolsSource) sequence() (*Bits, error)   { return FromBools(s), nil }
func (s sizeSource) sequence() (*Bits, error)    { return Zeros(int(s)) }
func (s fileSource) sequence() (*Bits, error)    { return FromReader(s.r) }

// New builds an immutable sequence from one construction source.
func New(src Source) (*Bits, error) {
	return src.sequence()
}

// NewMutable builds a mutable sequence from one construction source.
func NewMutable(src Source) (*Mutable, error) {
	b, err := src.sequence()
	if err != nil {
		return nil, err
	}
	return &Mutable{Bits: *b}, nil
}

// bitAt returns bit i of the packed buffer.
func bitAt(data []byte, i int) bool {
	return data[i>>3]&(0x80>>uint(i&7)) != 0
}

// setBit sets or clears bit i of the packed buffer.
func setBit(data []byte, i int, v bool) {
	if v {
		data[i>>3] |= 0x80 >> uint(i&7)
	} else {
		data[i>>3] &^= 0x80 >> uint(i&7)
	}
}

// readUint reads n bits (n <= 64) at pos as a big-endian unsigned value.
func readUint(data []byte, pos, n int) uint64 {
	var v uint64
	for n > 0 {
		byteIdx, bitIdx := pos>>3, pos&7
		take := 8 - bitIdx
		if take > n {
			take = n
		}
		chunk := uint64(data[byteIdx]>>uint(8-bitIdx-take)) & (1<<uint(take) - 1)
		v = v<<uint(take) | chunk
		pos += take
		n -= take
	}
	return v
}

// writeUint writes the low n bits (n <= 64) of v at pos, big-endian.
func writeUint(data []byte, pos, n int, v uint64) {
	for n > 0 {
		byteIdx, bitIdx := pos>>3, pos&7
		take := 8 - bitIdx
		if take > n {
			take = n
		}
		chunk := byte(v >> uint(n-take) & (1<<uint(take) - 1))
		shift := uint(8 - bitIdx - take)
		mask := byte(1<<uint(take)-1) << shift
		data[byteIdx] = data[byteIdx]&^mask | chunk<<shift
		pos += take
		n -= take
	}
}

// copyBits copies n bits from src at srcPos to dst at dstPos, front to back.
// The ranges must not overlap with dst ahead of src.
func copyBits(dst []byte, dstPos int, src []byte, srcPos, n int) {
	for n >= 64 {
		writeUint(dst, dstPos, 64, readUint(src, srcPos, 64))
		dstPos += 64
		srcPos += 64
		n -= 64
	}
	if n > 0 {
		writeUint(dst, dstPos, n, readUint(src, srcPos, n))
	}
}

// clearTail zeroes every bit at or beyond length in the packed buffer.
func clearTail(data []byte, length int) {
	byteIdx := length >> 3
	if length&7 != 0 {
		data[byteIdx] &= 0xff << uint(8-length&7)
		byteIdx++
	}
	for ; byteIdx < len(data); byteIdx++ {
		data[byteIdx] = 0
	}
}
