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
	mbits "math/bits"

	"github.com/pkg/errors"
)

// FindOptions narrows a search. The zero value searches the whole haystack
// at every bit offset with no match limit.
type FindOptions struct {
	// Start and End bound the window searched. Negative values count back
	// from the end of the haystack; an End of zero means the end. Both are
	// clamped to the haystack.
	Start, End int
	// ByteAligned restricts matches to positions that are a multiple of 8.
	ByteAligned bool
	// Count bounds the number of matches for FindAll, the number of chunks
	// for Split and the number of substitutions for Replace. Zero means
	// unlimited.
	Count int
}

func (o FindOptions) window(length int) (int, int) {
	s, e := o.Start, o.End
	if s < 0 {
		s += length
	}
	if e == 0 {
		e = length
	} else if e < 0 {
		e += length
	}
	if s < 0 {
		s = 0
	}
	if s > length {
		s = length
	}
	if e < s {
		e = s
	}
	if e > length {
		e = length
	}
	return s, e
}

// matchAt reports whether needle occurs at bit position p, comparing in
// 64-bit chunks.
func matchAt(h, n *Bits, p int) bool {
	for off := 0; off < n.length; {
		c := n.length - off
		if c > 64 {
			c = 64
		}
		if readUint(h.data, p+off, c) != readUint(n.data, off, c) {
			return false
		}
		off += c
	}
	return true
}

// scan returns the smallest match position in [from, end-len(needle)],
// stepping 8 when aligned.
func (b *Bits) scan(needle *Bits, from, end int, aligned bool) (int, bool) {
	step := 1
	if aligned {
		from = (from + 7) / 8 * 8
		step = 8
	}
	for p := from; p+needle.length <= end; p += step {
		if matchAt(b, needle, p) {
			return p, true
		}
	}
	return 0, false
}

// Find returns the smallest position of needle within the window, or false
// when there is no match. An empty needle fails with ErrValue.
func (b *Bits) Find(needle *Bits, opt FindOptions) (int, bool, error) {
	if needle.length == 0 {
		return 0, false, errors.WithMessage(ErrValue, "find of an empty pattern")
	}
	start, end := opt.window(b.length)
	p, ok := b.scan(needle, start, end, opt.ByteAligned)
	return p, ok, nil
}

// RFind returns the largest position of needle within the window, scanning
// backwards so the first hit wins.
func (b *Bits) RFind(needle *Bits, opt FindOptions) (int, bool, error) {
	if needle.length == 0 {
		return 0, false, errors.WithMessage(ErrValue, "find of an empty pattern")
	}
	start, end := opt.window(b.length)
	last := end - needle.length
	step := 1
	if opt.ByteAligned {
		if last >= 0 {
			last = last / 8 * 8
		}
		step = 8
	}
	for p := last; p >= start; p -= step {
		if matchAt(b, needle, p) {
			return p, true, nil
		}
	}
	return 0, false, nil
}

// FindIter is a lazy single-pass cursor over the match positions of one
// pattern, ascending, overlapping matches included.
type FindIter struct {
	haystack *Bits
	needle   *Bits
	pos, end int
	aligned  bool
	left     int // matches still allowed; -1 is unlimited
}

// FindAll returns an iterator over every match position within the window.
// An empty needle fails with ErrValue.
func (b *Bits) FindAll(needle *Bits, opt FindOptions) (*FindIter, error) {
	if needle.length == 0 {
		return nil, errors.WithMessage(ErrValue, "find of an empty pattern")
	}
	start, end := opt.window(b.length)
	left := -1
	if opt.Count > 0 {
		left = opt.Count
	}
	return &FindIter{
		haystack: b.copy(),
		needle:   needle.copy(),
		pos:      start,
		end:      end,
		aligned:  opt.ByteAligned,
		left:     left,
	}, nil
}

// Next returns the next match position, or false when the matches are
// exhausted.
func (it *FindIter) Next() (int, bool) {
	if it.left == 0 {
		return 0, false
	}
	p, ok := it.haystack.scan(it.needle, it.pos, it.end, it.aligned)
	if !ok {
		it.left = 0
		return 0, false
	}
	it.pos = p + 1 // overlapping matches allowed
	if it.left > 0 {
		it.left--
	}
	return p, true
}

// Split cuts the window at each non-overlapping match of the delimiter.
// Every chunk after the first begins with the delimiter; the chunk before
// the first match is always yielded, even when empty. An empty delimiter
// fails with ErrValue.
func (b *Bits) Split(needle *Bits, opt FindOptions) ([]*Bits, error) {
	if needle.length == 0 {
		return nil, errors.WithMessage(ErrValue, "split on an empty delimiter")
	}
	start, end := opt.window(b.length)
	var out []*Bits
	prev := start
	from := start
	for {
		if opt.Count > 0 && len(out)+1 >= opt.Count {
			break
		}
		p, ok := b.scan(needle, from, end, opt.ByteAligned)
		if !ok {
			break
		}
		out = append(out, b.slice(prev, p))
		prev = p
		from = p + needle.length
	}
	out = append(out, b.slice(prev, end))
	return out, nil
}

// Replace substitutes repl for each non-overlapping left-to-right match of
// needle within the window, returning the new sequence and the substitution
// count. The scan resumes after each replacement, so a needle never matches
// inside the bits it just produced.
func (b *Bits) Replace(needle, repl *Bits, opt FindOptions) (*Bits, int, error) {
	if needle.length == 0 {
		return nil, 0, errors.WithMessage(ErrValue, "replace of an empty pattern")
	}
	start, end := opt.window(b.length)
	out := b.slice(0, start).ToMutable()
	prev := start
	count := 0
	for {
		if opt.Count > 0 && count >= opt.Count {
			break
		}
		p, ok := b.scan(needle, prev, end, opt.ByteAligned)
		if !ok {
			break
		}
		out.Append(b.slice(prev, p))
		out.Append(repl)
		count++
		prev = p + needle.length
	}
	out.Append(b.slice(prev, b.length))
	return out.Freeze(), count, nil
}

// ReplaceInPlace performs Replace on the mutable sequence itself. Stream
// positions are invalidated only when the substitution changes the length.
func (m *Mutable) ReplaceInPlace(needle, repl *Bits, opt FindOptions) (int, error) {
	out, count, err := m.Bits.Replace(needle, repl, opt)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		m.replace(out, out.length != m.length)
	}
	return count, nil
}

// Count returns the number of bits equal to value.
func (b *Bits) Count(value bool) int {
	ones := 0
	for _, x := range b.data {
		ones += mbits.OnesCount8(x)
	}
	if value {
		return ones
	}
	return b.length - ones
}

// Any reports whether any of the given bit positions holds value. With no
// positions the whole sequence is tested. Positions may be negative;
// positions outside [-length, length) fail with ErrIndex.
func (b *Bits) Any(value bool, positions ...int) (bool, error) {
	if len(positions) == 0 {
		return b.Count(value) > 0, nil
	}
	for _, p := range positions {
		r, err := b.position(p)
		if err != nil {
			return false, err
		}
		if bitAt(b.data, r) == value {
			return true, nil
		}
	}
	return false, nil
}

// All reports whether every one of the given bit positions holds value.
// With no positions the whole sequence is tested; the empty sequence is
// vacuously true.
func (b *Bits) All(value bool, positions ...int) (bool, error) {
	if len(positions) == 0 {
		return b.Count(value) == b.length, nil
	}
	for _, p := range positions {
		r, err := b.position(p)
		if err != nil {
			return false, err
		}
		if bitAt(b.data, r) != value {
			return false, nil
		}
	}
	return true, nil
}
