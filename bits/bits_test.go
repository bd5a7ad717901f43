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
	"bytes"
	"testing"

	"github.com/google/bitbox/bits"
	"github.com/google/bitbox/core/assert"
)

func parse(t *testing.T, s string) *bits.Bits {
	b, err := bits.Parse(s)
	assert.For(t, "parse %q", s).ThatError(err).Succeeded()
	return b
}

func TestParseForms(t *testing.T) {
	assert := assert.To(t)
	for _, test := range []struct {
		literal string
		length  int
		str     string
	}{
		{"0x4f8e220", 28, "0x4f8e220"},
		{"0Xff", 8, "0xff"},
		{"hex=de_ad", 16, "0xdead"},
		{"0b0110", 4, "0x6"},
		{"0b01101", 5, "0b01101"},
		{"bin=111", 3, "0b111"},
		{"0o17", 6, "0b001111"},
		{"oct=7", 3, "0b111"},
		{"0x", 0, ""},
		{"0b", 0, ""},
	} {
		b := parse(t, test.literal)
		assert.For("%q length", test.literal).That(b.Len()).Equals(test.length)
		assert.For("%q string", test.literal).That(b.String()).Equals(test.str)
	}
}

func TestParseRejects(t *testing.T) {
	assert := assert.To(t)
	for _, literal := range []string{"", "ff", "0xfg", "0b012", "0o8", "hex=zz", "12"} {
		_, err := bits.Parse(literal)
		assert.For("parse %q", literal).ThatError(err).HasCause(bits.ErrValue)
	}
}

func TestBitIndexing(t *testing.T) {
	assert := assert.To(t)
	b := parse(t, "0b10010")
	for _, test := range []struct {
		pos  int
		want bool
	}{
		{0, true}, {1, false}, {3, true}, {4, false},
		{-1, false}, {-2, true}, {-5, true},
	} {
		got, err := b.Bit(test.pos)
		assert.For("bit %d", test.pos).ThatError(err).Succeeded()
		assert.For("bit %d", test.pos).That(got).Equals(test.want)
	}
	for _, pos := range []int{5, -6, 100} {
		_, err := b.Bit(pos)
		assert.For("bit %d", pos).ThatError(err).HasCause(bits.ErrIndex)
	}
}

func TestSlice(t *testing.T) {
	assert := assert.To(t)
	b := parse(t, "0b00010010")
	assert.For("middle").That(b.Slice(3, 6).String()).Equals("0b100")
	assert.For("negative").That(b.Slice(-4, -1).String()).Equals("0b001")
	assert.For("clamped").That(b.Slice(4, 100).String()).Equals("0x2")
	assert.For("inverted").That(b.Slice(6, 3).Len()).Equals(0)
}

func TestSliceConcatIdentity(t *testing.T) {
	assert := assert.To(t)
	b := parse(t, "0x4f8e220")
	for i := 0; i <= b.Len(); i++ {
		joined := b.Slice(0, i).Concat(b.Slice(i, b.Len()))
		assert.For("split at %d", i).That(joined.Equal(b)).Equals(true)
	}
}

func TestSliceStep(t *testing.T) {
	assert := assert.To(t)
	b := parse(t, "0b10010011")
	every2, err := b.SliceStep(0, b.Len(), 2)
	assert.For("step 2").ThatError(err).Succeeded()
	assert.For("step 2").That(every2.String()).Equals("0x9")
	rev, err := b.SliceStep(b.Len()-1, -1, -1)
	assert.For("reverse").ThatError(err).Succeeded()
	assert.For("reverse").That(rev.String()).Equals("0xc9")
	_, err = b.SliceStep(0, 8, 0)
	assert.For("zero step").ThatError(err).HasCause(bits.ErrValue)
}

func TestRepeat(t *testing.T) {
	assert := assert.To(t)
	b := parse(t, "0b101")
	r, err := b.Repeat(3)
	assert.For("repeat").ThatError(err).Succeeded()
	assert.For("repeat").That(r.String()).Equals("0b101101101")
	empty, err := b.Repeat(0)
	assert.For("repeat 0").ThatError(err).Succeeded()
	assert.For("repeat 0").That(empty.Len()).Equals(0)
	_, err = b.Repeat(-1)
	assert.For("repeat -1").ThatError(err).HasCause(bits.ErrValue)
}

func TestEqualAndHash(t *testing.T) {
	assert := assert.To(t)
	a := parse(t, "0b0110")
	b := parse(t, "0b0110")
	c := parse(t, "0b00110") // same value bits, longer
	assert.For("equal").That(a.Equal(b)).Equals(true)
	assert.For("length differs").That(a.Equal(c)).Equals(false)
	assert.For("hash equal").That(a.Hash()).Equals(b.Hash())
	assert.For("hash differs").That(a.Hash() == c.Hash()).Equals(false)
}

func TestBytesExport(t *testing.T) {
	assert := assert.To(t)
	whole := parse(t, "0xdead")
	raw, err := whole.Bytes()
	assert.For("whole bytes").ThatError(err).Succeeded()
	assert.For("whole bytes").ThatSlice(raw).Equals([]byte{0xde, 0xad})

	ragged := parse(t, "0b110")
	_, err = ragged.Bytes()
	assert.For("ragged bytes").ThatError(err).HasCause(bits.ErrValue)
	assert.For("ragged padded").ThatSlice(ragged.BytesPadded()).Equals([]byte{0xc0})

	buf := &bytes.Buffer{}
	n, err := whole.WriteTo(buf)
	assert.For("write").ThatError(err).Succeeded()
	assert.For("write count").That(n).Equals(int64(2))
	assert.For("write content").ThatSlice(buf.Bytes()).Equals([]byte{0xde, 0xad})
	_, err = ragged.WriteTo(buf)
	assert.For("ragged write").ThatError(err).HasCause(bits.ErrValue)
}

func TestConstructors(t *testing.T) {
	assert := assert.To(t)
	assert.For("bytes").That(bits.FromBytes([]byte{0x0f}).String()).Equals("0x0f")
	assert.For("bools").That(bits.FromBools([]bool{true, false, true}).String()).Equals("0b101")

	window, err := bits.FromBytesWindow([]byte{0x4f, 0x8e}, 4, 8)
	assert.For("window").ThatError(err).Succeeded()
	assert.For("window").That(window.String()).Equals("0xf8")
	_, err = bits.FromBytesWindow([]byte{0x4f}, 4, 8)
	assert.For("window overrun").ThatError(err).HasCause(bits.ErrValue)

	z, err := bits.Zeros(10)
	assert.For("zeros").ThatError(err).Succeeded()
	assert.For("zeros").That(z.Count(false)).Equals(10)
	o, err := bits.Ones(10)
	assert.For("ones").ThatError(err).Succeeded()
	assert.For("ones").That(o.Count(true)).Equals(10)
}

func TestSources(t *testing.T) {
	assert := assert.To(t)
	for _, test := range []struct {
		name string
		src  bits.Source
		str  string
	}{
		{"literal", bits.Literal("0b101"), "0b101"},
		{"buffer", bits.Buffer([]byte{0xab}), "0xab"},
		{"bools", bits.Bools([]bool{true, true, false, false}), "0xc"},
		{"size", bits.Size(8), "0x00"},
		{"file", bits.File(bytes.NewReader([]byte{0x12, 0x34})), "0x1234"},
	} {
		b, err := bits.New(test.src)
		assert.For(test.name).ThatError(err).Succeeded()
		assert.For(test.name).That(b.String()).Equals(test.str)
	}
}

func TestFromReaderAt(t *testing.T) {
	assert := assert.To(t)
	r := bytes.NewReader([]byte{0x00, 0x11, 0x22, 0x33})
	b, err := bits.FromReaderAt(r, 1, 2)
	assert.For("window read").ThatError(err).Succeeded()
	assert.For("window read").That(b.String()).Equals("0x1122")
	_, err = bits.FromReaderAt(r, 3, 4)
	assert.For("short read").ThatError(err).Failed()
}

func TestAlignGap(t *testing.T) {
	assert := assert.To(t)
	for _, test := range []struct{ offset, gap int }{
		{0, 0}, {1, 7}, {7, 1}, {8, 0}, {13, 3},
	} {
		assert.For("gap at %d", test.offset).That(bits.AlignGap(test.offset)).Equals(test.gap)
	}
}
