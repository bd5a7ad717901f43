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
	"math"
	"math/bits"

	"github.com/pkg/errors"
)

// Exponential-Golomb codes, the four H.26x flavors: ue and se prefix the
// binary form of x+1 with a zero run of equal width, uie and sie interleave
// the continuation bits with the payload. All four are self-delimiting, so
// the decoders report the number of bits consumed alongside the value.

// FromUE encodes x as an unsigned Exponential-Golomb code.
func FromUE(x uint64) (*Bits, error) {
	if x == math.MaxUint64 {
		return nil, errors.WithMessagef(ErrValue, "%d overflows the ue code", x)
	}
	w := x + 1
	k := bits.Len64(w) - 1 // zero-run width
	out := newBits(2*k + 1)
	writeUint(out.data, k, k+1, w)
	return out, nil
}

// FromSE encodes v as a signed Exponential-Golomb code: positive v maps to
// 2v-1, the rest to -2v.
func FromSE(v int64) (*Bits, error) {
	if v == math.MinInt64 {
		return nil, errors.WithMessagef(ErrValue, "%d overflows the se code", v)
	}
	var u uint64
	if v > 0 {
		u = uint64(v)*2 - 1
	} else {
		u = uint64(-v) * 2
	}
	return FromUE(u)
}

// FromUIE encodes x as an unsigned interleaved Exponential-Golomb code: a
// lone 1 for zero, otherwise each payload bit of x+1 below the leading 1 is
// preceded by a 0 continuation bit, and a final 1 terminates the code.
func FromUIE(x uint64) (*Bits, error) {
	if x == math.MaxUint64 {
		return nil, errors.WithMessagef(ErrValue, "%d overflows the uie code", x)
	}
	w := x + 1
	k := bits.Len64(w) - 1
	out := newBits(2*k + 1)
	pos := 0
	for i := k - 1; i >= 0; i-- {
		setBit(out.data, pos+1, w>>uint(i)&1 == 1)
		pos += 2
	}
	setBit(out.data, pos, true)
	return out, nil
}

// FromSIE encodes v as a signed interleaved Exponential-Golomb code: the uie
// code of the magnitude, followed by a sign bit for nonzero values.
func FromSIE(v int64) (*Bits, error) {
	if v == math.MinInt64 {
		return nil, errors.WithMessagef(ErrValue, "%d overflows the sie code", v)
	}
	if v == 0 {
		return FromUIE(0)
	}
	mag := v
	if mag < 0 {
		mag = -mag
	}
	out, err := FromUIE(uint64(mag))
	if err != nil {
		return nil, err
	}
	m := out.ToMutable()
	m.Append(FromBool(v < 0))
	return m.Freeze(), nil
}

// ReadUE decodes an unsigned Exponential-Golomb code at bit position pos,
// returning the value and the bits consumed. A truncated code fails with
// ErrExhausted.
func ReadUE(b *Bits, pos int) (uint64, int, error) {
	k := 0
	for {
		if pos+k >= b.length {
			return 0, 0, errors.WithMessagef(ErrExhausted,
				"ue code at position %d runs past the end", pos)
		}
		if bitAt(b.data, pos+k) {
			break
		}
		k++
	}
	if k > 63 {
		return 0, 0, errors.WithMessagef(ErrInterpretation,
			"ue code at position %d overflows 64 bits", pos)
	}
	if pos+2*k+1 > b.length {
		return 0, 0, errors.WithMessagef(ErrExhausted,
			"ue code at position %d runs past the end", pos)
	}
	w := readUint(b.data, pos+k, k+1)
	return w - 1, 2*k + 1, nil
}

// ReadSE decodes a signed Exponential-Golomb code at bit position pos.
func ReadSE(b *Bits, pos int) (int64, int, error) {
	u, n, err := ReadUE(b, pos)
	if err != nil {
		return 0, 0, err
	}
	if u&1 == 1 {
		return int64(u/2 + 1), n, nil
	}
	return -int64(u / 2), n, nil
}

// ReadUIE decodes an unsigned interleaved Exponential-Golomb code at bit
// position pos.
func ReadUIE(b *Bits, pos int) (uint64, int, error) {
	w, n := uint64(1), 0
	for {
		if pos+n >= b.length {
			return 0, 0, errors.WithMessagef(ErrExhausted,
				"uie code at position %d runs past the end", pos)
		}
		if bitAt(b.data, pos+n) {
			n++
			return w - 1, n, nil
		}
		if pos+n+1 >= b.length {
			return 0, 0, errors.WithMessagef(ErrExhausted,
				"uie code at position %d runs past the end", pos)
		}
		if w>>63 != 0 {
			return 0, 0, errors.WithMessagef(ErrInterpretation,
				"uie code at position %d overflows 64 bits", pos)
		}
		w = w << 1
		if bitAt(b.data, pos+n+1) {
			w |= 1
		}
		n += 2
	}
}

// ReadSIE decodes a signed interleaved Exponential-Golomb code at bit
// position pos.
func ReadSIE(b *Bits, pos int) (int64, int, error) {
	u, n, err := ReadUIE(b, pos)
	if err != nil {
		return 0, 0, err
	}
	if u == 0 {
		return 0, n, nil
	}
	if u > math.MaxInt64 {
		return 0, 0, errors.WithMessagef(ErrInterpretation,
			"sie code at position %d overflows a signed value", pos)
	}
	if pos+n >= b.length {
		return 0, 0, errors.WithMessagef(ErrExhausted,
			"sie code at position %d is missing its sign bit", pos)
	}
	neg := bitAt(b.data, pos+n)
	n++
	if neg {
		return -int64(u), n, nil
	}
	return int64(u), n, nil
}

// readGolomb dispatches the self-delimiting kinds for ReadKind.
func readGolomb(b *Bits, pos int, k Kind) (interface{}, int, error) {
	switch k {
	case KindUE:
		v, n, err := ReadUE(b, pos)
		return v, n, err
	case KindSE:
		v, n, err := ReadSE(b, pos)
		return v, n, err
	case KindUIE:
		v, n, err := ReadUIE(b, pos)
		return v, n, err
	default:
		v, n, err := ReadSIE(b, pos)
		return v, n, err
	}
}
