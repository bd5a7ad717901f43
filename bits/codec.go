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
	eb "encoding/binary"
	"math"
	"math/big"
	"strings"

	"github.com/google/bitbox/core/math/f16"
	"github.com/google/bitbox/core/math/f8"
	"github.com/google/bitbox/core/math/sint"
	"github.com/google/bitbox/core/math/u64"
	"github.com/pkg/errors"
)

// hostBigEndian is the process-wide host byte order, resolved once at link
// time. The ne interpretation kinds dispatch on it and nothing else does.
var hostBigEndian = eb.NativeEndian.Uint16([]byte{0x12, 0x34}) == 0x1234

// Uint interprets the whole sequence as a big-endian unsigned integer.
// Lengths outside [1, 64] fail with ErrInterpretation; UintBig has no upper
// bound.
func (b *Bits) Uint() (uint64, error) {
	if b.length < 1 || b.length > 64 {
		return 0, errors.WithMessagef(ErrInterpretation, "uint of %d bits", b.length)
	}
	return readUint(b.data, 0, b.length), nil
}

// Int interprets the whole sequence as a two's-complement signed integer.
func (b *Bits) Int() (int64, error) {
	u, err := b.Uint()
	if err != nil {
		return 0, errors.WithMessagef(ErrInterpretation, "int of %d bits", b.length)
	}
	if b.length < 64 && u>>(uint(b.length)-1)&1 == 1 {
		u |= ^u64.Mask(b.length)
	}
	return int64(u), nil
}

// UintBig interprets a sequence of any positive length as an unsigned
// integer.
func (b *Bits) UintBig() (*big.Int, error) {
	if b.length < 1 {
		return nil, errors.WithMessage(ErrInterpretation, "uint of an empty sequence")
	}
	v := new(big.Int).SetBytes(b.data)
	return v.Rsh(v, uint(len(b.data)*8-b.length)), nil
}

// IntBig interprets a sequence of any positive length as a two's-complement
// signed integer.
func (b *Bits) IntBig() (*big.Int, error) {
	v, err := b.UintBig()
	if err != nil {
		return nil, err
	}
	if bitAt(b.data, 0) {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(b.length)))
	}
	return v, nil
}

// byteSwapped returns the sequence with its byte order reversed. The length
// must be a positive multiple of eight.
func (b *Bits) byteSwapped(kind string) (*Bits, error) {
	if b.length < 8 || b.length%8 != 0 {
		return nil, errors.WithMessagef(ErrInterpretation, "%s of %d bits", kind, b.length)
	}
	out := newBits(b.length)
	n := len(b.data)
	for i := 0; i < n; i++ {
		out.data[i] = b.data[n-1-i]
	}
	return out, nil
}

// UintBE interprets the sequence as a byte-wise big-endian unsigned integer.
// The length must be a multiple of eight, at most 64.
func (b *Bits) UintBE() (uint64, error) {
	if b.length%8 != 0 {
		return 0, errors.WithMessagef(ErrInterpretation, "uintbe of %d bits", b.length)
	}
	return b.Uint()
}

// IntBE interprets the sequence as a byte-wise big-endian signed integer.
func (b *Bits) IntBE() (int64, error) {
	if b.length%8 != 0 {
		return 0, errors.WithMessagef(ErrInterpretation, "intbe of %d bits", b.length)
	}
	return b.Int()
}

// UintLE interprets the sequence as a byte-wise little-endian unsigned
// integer: the big-endian read of the byte-reversed buffer.
func (b *Bits) UintLE() (uint64, error) {
	r, err := b.byteSwapped("uintle")
	if err != nil {
		return 0, err
	}
	return r.Uint()
}

// IntLE interprets the sequence as a byte-wise little-endian signed integer.
func (b *Bits) IntLE() (int64, error) {
	r, err := b.byteSwapped("intle")
	if err != nil {
		return 0, err
	}
	return r.Int()
}

// UintNE interprets the sequence in the host byte order.
func (b *Bits) UintNE() (uint64, error) {
	if hostBigEndian {
		return b.UintBE()
	}
	return b.UintLE()
}

// IntNE interprets the sequence in the host byte order.
func (b *Bits) IntNE() (int64, error) {
	if hostBigEndian {
		return b.IntBE()
	}
	return b.IntLE()
}

// Float interprets the sequence as a big-endian IEEE-754 value of 16, 32 or
// 64 bits.
func (b *Bits) Float() (float64, error) {
	if err := KindFloat.LengthOK(b.length); err != nil {
		return 0, err
	}
	return decodeFloat(readUint(b.data, 0, b.length), b.length), nil
}

// FloatLE interprets the sequence as a little-endian IEEE-754 value.
func (b *Bits) FloatLE() (float64, error) {
	if err := KindFloatLE.LengthOK(b.length); err != nil {
		return 0, err
	}
	r, err := b.byteSwapped("floatle")
	if err != nil {
		return 0, err
	}
	return decodeFloat(readUint(r.data, 0, r.length), r.length), nil
}

// FloatNE interprets the sequence as a host-order IEEE-754 value.
func (b *Bits) FloatNE() (float64, error) {
	if hostBigEndian {
		return b.Float()
	}
	return b.FloatLE()
}

// BFloat interprets the 16-bit sequence as a bfloat16 value.
func (b *Bits) BFloat() (float64, error) {
	if b.length != 16 {
		return 0, errors.WithMessagef(ErrInterpretation, "bfloat of %d bits", b.length)
	}
	return float64(f16.BFloat(readUint(b.data, 0, 16)).Float32()), nil
}

// Float8E4M3 interprets the 8-bit sequence as a 1-4-3 FNUZ minifloat.
func (b *Bits) Float8E4M3() (float64, error) {
	if b.length != 8 {
		return 0, errors.WithMessagef(ErrInterpretation, "float8_143 of %d bits", b.length)
	}
	return float64(f8.E4M3(b.data[0]).Float32()), nil
}

// Float8E5M2 interprets the 8-bit sequence as a 1-5-2 FNUZ minifloat.
func (b *Bits) Float8E5M2() (float64, error) {
	if b.length != 8 {
		return 0, errors.WithMessagef(ErrInterpretation, "float8_152 of %d bits", b.length)
	}
	return float64(f8.E5M2(b.data[0]).Float32()), nil
}

// Bool interprets the single-bit sequence as a boolean.
func (b *Bits) Bool() (bool, error) {
	if b.length != 1 {
		return false, errors.WithMessagef(ErrInterpretation, "bool of %d bits", b.length)
	}
	return bitAt(b.data, 0), nil
}

// Hex returns the sequence as lowercase hex digits, most-significant nibble
// first. The length must be a multiple of four.
func (b *Bits) Hex() (string, error) {
	return b.digits(4, "hex", "0123456789abcdef")
}

// Oct returns the sequence as octal digits. The length must be a multiple of
// three.
func (b *Bits) Oct() (string, error) {
	return b.digits(3, "oct", "01234567")
}

// Bin returns the sequence as binary digits.
func (b *Bits) Bin() (string, error) {
	return b.digits(1, "bin", "01")
}

func (b *Bits) digits(width int, kind, alphabet string) (string, error) {
	if b.length%width != 0 {
		return "", errors.WithMessagef(ErrInterpretation,
			"%s of %d bits (not a multiple of %d)", kind, b.length, width)
	}
	var sb strings.Builder
	sb.Grow(b.length / width)
	for pos := 0; pos < b.length; pos += width {
		sb.WriteByte(alphabet[readUint(b.data, pos, width)])
	}
	return sb.String(), nil
}

func decodeFloat(pattern uint64, length int) float64 {
	switch length {
	case 16:
		return float64(f16.Number(pattern).Float32())
	case 32:
		return float64(math.Float32frombits(uint32(pattern)))
	default:
		return math.Float64frombits(pattern)
	}
}

func encodeFloat(v float64, length int) uint64 {
	switch length {
	case 16:
		return uint64(f16.From32(float32(v)))
	case 32:
		return uint64(math.Float32bits(float32(v)))
	default:
		return math.Float64bits(v)
	}
}

// FromUint encodes v as a big-endian unsigned integer of the given bit
// length. The length is mandatory and must be large enough to hold v.
func FromUint(v uint64, length int) (*Bits, error) {
	if length < 1 {
		return nil, errors.WithMessagef(ErrValue, "uint length %d", length)
	}
	if !u64.Fits(v, length) {
		return nil, errors.WithMessagef(ErrValue, "%d does not fit in %d bits", v, length)
	}
	b := newBits(length)
	n := length
	if n > 64 {
		n = 64
	}
	writeUint(b.data, length-n, n, v)
	return b, nil
}

// FromInt encodes v as a two's-complement signed integer of the given bit
// length.
func FromInt(v int64, length int) (*Bits, error) {
	if length < 1 {
		return nil, errors.WithMessagef(ErrValue, "int length %d", length)
	}
	if !sint.Fits(v, length) {
		return nil, errors.WithMessagef(ErrValue, "%d does not fit in %d signed bits", v, length)
	}
	b := newBits(length)
	n := length
	if n > 64 {
		n = 64
	}
	writeUint(b.data, length-n, n, uint64(v))
	if v < 0 && length > 64 {
		// Sign-extend the bits above the written word.
		for i := 0; i < length-64; i++ {
			setBit(b.data, i, true)
		}
	}
	return b, nil
}

// FromUintBig encodes a non-negative big integer of the given bit length.
func FromUintBig(v *big.Int, length int) (*Bits, error) {
	if length < 1 {
		return nil, errors.WithMessagef(ErrValue, "uint length %d", length)
	}
	if v.Sign() < 0 {
		return nil, errors.WithMessagef(ErrValue, "%v is negative", v)
	}
	if v.BitLen() > length {
		return nil, errors.WithMessagef(ErrValue, "%v does not fit in %d bits", v, length)
	}
	b := newBits(length)
	tmp := new(big.Int).Set(v)
	word := new(big.Int)
	mask := new(big.Int)
	pos := length
	for pos > 0 && tmp.Sign() != 0 {
		n := 32
		if pos < 32 {
			n = pos
		}
		mask.SetUint64(1<<uint(n) - 1)
		word.And(tmp, mask)
		writeUint(b.data, pos-n, n, word.Uint64())
		tmp.Rsh(tmp, uint(n))
		pos -= n
	}
	return b, nil
}

// FromIntBig encodes a big integer as two's complement of the given bit
// length.
func FromIntBig(v *big.Int, length int) (*Bits, error) {
	if length < 1 {
		return nil, errors.WithMessagef(ErrValue, "int length %d", length)
	}
	if v.Sign() >= 0 {
		if v.BitLen() >= length {
			return nil, errors.WithMessagef(ErrValue, "%v does not fit in %d signed bits", v, length)
		}
		return FromUintBig(v, length)
	}
	// -2^(length-1) <= v < 0: encode v + 2^length.
	min := new(big.Int).Lsh(big.NewInt(1), uint(length-1))
	min.Neg(min)
	if v.Cmp(min) < 0 {
		return nil, errors.WithMessagef(ErrValue, "%v does not fit in %d signed bits", v, length)
	}
	wrapped := new(big.Int).Lsh(big.NewInt(1), uint(length))
	wrapped.Add(wrapped, v)
	return FromUintBig(wrapped, length)
}

// FromUintBE encodes v byte-wise big-endian; the length must be a multiple
// of eight.
func FromUintBE(v uint64, length int) (*Bits, error) {
	if length < 8 || length%8 != 0 {
		return nil, errors.WithMessagef(ErrValue, "uintbe length %d", length)
	}
	return FromUint(v, length)
}

// FromIntBE encodes v byte-wise big-endian.
func FromIntBE(v int64, length int) (*Bits, error) {
	if length < 8 || length%8 != 0 {
		return nil, errors.WithMessagef(ErrValue, "intbe length %d", length)
	}
	return FromInt(v, length)
}

// FromUintLE encodes v byte-wise little-endian.
func FromUintLE(v uint64, length int) (*Bits, error) {
	b, err := FromUintBE(v, length)
	if err != nil {
		return nil, err
	}
	return b.byteSwapped("uintle")
}

// FromIntLE encodes v byte-wise little-endian.
func FromIntLE(v int64, length int) (*Bits, error) {
	b, err := FromIntBE(v, length)
	if err != nil {
		return nil, err
	}
	return b.byteSwapped("intle")
}

// FromUintNE encodes v in the host byte order.
func FromUintNE(v uint64, length int) (*Bits, error) {
	if hostBigEndian {
		return FromUintBE(v, length)
	}
	return FromUintLE(v, length)
}

// FromIntNE encodes v in the host byte order.
func FromIntNE(v int64, length int) (*Bits, error) {
	if hostBigEndian {
		return FromIntBE(v, length)
	}
	return FromIntLE(v, length)
}

// FromFloat encodes v as a big-endian IEEE-754 value of 16, 32 or 64 bits.
func FromFloat(v float64, length int) (*Bits, error) {
	if err := KindFloat.LengthOK(length); err != nil {
		return nil, errors.WithMessagef(ErrValue, "float length %d", length)
	}
	b := newBits(length)
	writeUint(b.data, 0, length, encodeFloat(v, length))
	return b, nil
}

// FromFloatLE encodes v as a little-endian IEEE-754 value.
func FromFloatLE(v float64, length int) (*Bits, error) {
	b, err := FromFloat(v, length)
	if err != nil {
		return nil, err
	}
	return b.byteSwapped("floatle")
}

// FromFloatNE encodes v in the host byte order.
func FromFloatNE(v float64, length int) (*Bits, error) {
	if hostBigEndian {
		return FromFloat(v, length)
	}
	return FromFloatLE(v, length)
}

// FromBFloat encodes v as a 16-bit bfloat16 value, truncating toward zero.
func FromBFloat(v float64) *Bits {
	b := newBits(16)
	writeUint(b.data, 0, 16, uint64(f16.BFloatFrom32(float32(v))))
	return b
}

// FromFloat8E4M3 encodes v as a 1-4-3 FNUZ minifloat, saturating at the
// finite range.
func FromFloat8E4M3(v float64) *Bits {
	b := newBits(8)
	b.data[0] = byte(f8.E4M3From32(float32(v)))
	return b
}

// FromFloat8E5M2 encodes v as a 1-5-2 FNUZ minifloat, saturating at the
// finite range.
func FromFloat8E5M2(v float64) *Bits {
	b := newBits(8)
	b.data[0] = byte(f8.E5M2From32(float32(v)))
	return b
}

// FromBool encodes v as a single bit.
func FromBool(v bool) *Bits {
	b := newBits(1)
	if v {
		b.data[0] = 0x80
	}
	return b
}

// ReadKind decodes one value of kind k at bit position pos. It returns the
// decoded value and the number of bits consumed; for the self-delimiting
// kinds the width is reported by the decoder, for every other kind it equals
// length. Reading past the end fails with ErrExhausted. Pad consumes its
// width and yields no value (nil).
func ReadKind(b *Bits, pos int, k Kind, length int) (interface{}, int, error) {
	if k.SelfDelimiting() {
		return readGolomb(b, pos, k)
	}
	if pos+length > b.length {
		return nil, 0, errors.WithMessagef(ErrExhausted,
			"%v:%d at position %d with %d bits remaining", k, length, pos, b.length-pos)
	}
	if k == KindPad {
		return nil, length, nil
	}
	sub := b.slice(pos, pos+length)
	v, err := decodeKind(sub, k)
	if err != nil {
		return nil, 0, err
	}
	return v, length, nil
}

func decodeKind(sub *Bits, k Kind) (interface{}, error) {
	switch k {
	case KindUint:
		if sub.length > 64 {
			return sub.UintBig()
		}
		return sub.Uint()
	case KindInt:
		if sub.length > 64 {
			return sub.IntBig()
		}
		return sub.Int()
	case KindUintBE:
		return sub.UintBE()
	case KindIntBE:
		return sub.IntBE()
	case KindUintLE:
		return sub.UintLE()
	case KindIntLE:
		return sub.IntLE()
	case KindUintNE:
		return sub.UintNE()
	case KindIntNE:
		return sub.IntNE()
	case KindFloat:
		return sub.Float()
	case KindFloatLE:
		return sub.FloatLE()
	case KindFloatNE:
		return sub.FloatNE()
	case KindBFloat:
		return sub.BFloat()
	case KindFloat8E4M3:
		return sub.Float8E4M3()
	case KindFloat8E5M2:
		return sub.Float8E5M2()
	case KindHex:
		return sub.Hex()
	case KindOct:
		return sub.Oct()
	case KindBin:
		return sub.Bin()
	case KindBool:
		return sub.Bool()
	case KindBits:
		return sub, nil
	}
	return nil, errors.WithMessagef(ErrInterpretation, "cannot decode kind %v", k)
}

// EncodeKind encodes one value as kind k with the given bit length. For the
// self-delimiting kinds and the implied-length kinds the length argument is
// ignored where the kind fixes it.
func EncodeKind(k Kind, length int, v interface{}) (*Bits, error) {
	switch k {
	case KindUint, KindUintBE, KindUintLE, KindUintNE:
		if bv, ok := v.(*big.Int); ok {
			return FromUintBig(bv, length)
		}
		u, err := toUint64(v)
		if err != nil {
			return nil, err
		}
		switch k {
		case KindUintBE:
			return FromUintBE(u, length)
		case KindUintLE:
			return FromUintLE(u, length)
		case KindUintNE:
			return FromUintNE(u, length)
		}
		return FromUint(u, length)
	case KindInt, KindIntBE, KindIntLE, KindIntNE:
		if bv, ok := v.(*big.Int); ok {
			return FromIntBig(bv, length)
		}
		i, err := toInt64(v)
		if err != nil {
			return nil, err
		}
		switch k {
		case KindIntBE:
			return FromIntBE(i, length)
		case KindIntLE:
			return FromIntLE(i, length)
		case KindIntNE:
			return FromIntNE(i, length)
		}
		return FromInt(i, length)
	case KindFloat, KindFloatLE, KindFloatNE:
		f, err := toFloat64(v)
		if err != nil {
			return nil, err
		}
		switch k {
		case KindFloatLE:
			return FromFloatLE(f, length)
		case KindFloatNE:
			return FromFloatNE(f, length)
		}
		return FromFloat(f, length)
	case KindBFloat:
		f, err := toFloat64(v)
		if err != nil {
			return nil, err
		}
		return FromBFloat(f), nil
	case KindFloat8E4M3:
		f, err := toFloat64(v)
		if err != nil {
			return nil, err
		}
		return FromFloat8E4M3(f), nil
	case KindFloat8E5M2:
		f, err := toFloat64(v)
		if err != nil {
			return nil, err
		}
		return FromFloat8E5M2(f), nil
	case KindHex, KindOct, KindBin:
		s, ok := v.(string)
		if !ok {
			return nil, errors.WithMessagef(ErrValue, "%v wants a digit string, got %T", k, v)
		}
		var b *Bits
		var err error
		switch k {
		case KindHex:
			b, err = FromHex(stripRadix(s, "0x"))
		case KindOct:
			b, err = FromOct(stripRadix(s, "0o"))
		default:
			b, err = FromBin(stripRadix(s, "0b"))
		}
		if err != nil {
			return nil, err
		}
		if length > 0 && b.length != length {
			return nil, errors.WithMessagef(ErrValue,
				"%v value %q is %d bits, token wants %d", k, s, b.length, length)
		}
		return b, nil
	case KindBool:
		switch t := v.(type) {
		case bool:
			return FromBool(t), nil
		}
		u, err := toUint64(v)
		if err != nil || u > 1 {
			return nil, errors.WithMessagef(ErrValue, "bool value %v", v)
		}
		return FromBool(u == 1), nil
	case KindUE:
		u, err := toUint64(v)
		if err != nil {
			return nil, err
		}
		return FromUE(u)
	case KindSE:
		i, err := toInt64(v)
		if err != nil {
			return nil, err
		}
		return FromSE(i)
	case KindUIE:
		u, err := toUint64(v)
		if err != nil {
			return nil, err
		}
		return FromUIE(u)
	case KindSIE:
		i, err := toInt64(v)
		if err != nil {
			return nil, err
		}
		return FromSIE(i)
	case KindPad:
		return Zeros(length)
	case KindBits:
		b, err := toBits(v)
		if err != nil {
			return nil, err
		}
		if length > 0 && b.Len() != length {
			return nil, errors.WithMessagef(ErrValue,
				"bits value is %d bits, token wants %d", b.Len(), length)
		}
		return b, nil
	}
	return nil, errors.WithMessagef(ErrValue, "cannot encode kind %v", k)
}

// stripRadix drops an optional radix prefix from a digit-string value.
func stripRadix(s, prefix string) string {
	if hasPrefixFold(s, prefix) {
		return s[len(prefix):]
	}
	return s
}

func toUint64(v interface{}) (uint64, error) {
	switch t := v.(type) {
	case uint64:
		return t, nil
	case uint:
		return uint64(t), nil
	case uint32:
		return uint64(t), nil
	case int:
		if t < 0 {
			return 0, errors.WithMessagef(ErrValue, "negative value %d for unsigned kind", t)
		}
		return uint64(t), nil
	case int64:
		if t < 0 {
			return 0, errors.WithMessagef(ErrValue, "negative value %d for unsigned kind", t)
		}
		return uint64(t), nil
	case int32:
		if t < 0 {
			return 0, errors.WithMessagef(ErrValue, "negative value %d for unsigned kind", t)
		}
		return uint64(t), nil
	}
	return 0, errors.WithMessagef(ErrValue, "cannot use %T as an unsigned integer", v)
}

func toInt64(v interface{}) (int64, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case int32:
		return int64(t), nil
	case uint:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return 0, errors.WithMessagef(ErrValue, "%d overflows a signed value", t)
		}
		return int64(t), nil
	}
	return 0, errors.WithMessagef(ErrValue, "cannot use %T as a signed integer", v)
}

func toFloat64(v interface{}) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	}
	return 0, errors.WithMessagef(ErrValue, "cannot use %T as a float", v)
}

func toBits(v interface{}) (*Bits, error) {
	switch t := v.(type) {
	case *Bits:
		return t, nil
	case *Mutable:
		return t.Freeze(), nil
	case string:
		return Parse(t)
	}
	return nil, errors.WithMessagef(ErrValue, "cannot use %T as a bit sequence", v)
}
