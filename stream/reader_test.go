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

package stream_test

import (
	"testing"

	"github.com/google/bitbox/bits"
	"github.com/google/bitbox/core/assert"
	"github.com/google/bitbox/stream"
)

func parse(t *testing.T, s string) *bits.Bits {
	b, err := bits.Parse(s)
	assert.For(t, "parse %q", s).ThatError(err).Succeeded()
	return b
}

func TestReadAdvancesAndExhausts(t *testing.T) {
	assert := assert.To(t)
	r := stream.NewReader(parse(t, "0x64"))
	v, err := r.Read("uint8")
	assert.For("read").ThatError(err).Succeeded()
	assert.For("value").That(v).Equals(uint64(100))
	assert.For("position").That(r.Pos()).Equals(8)

	_, err = r.Read("uint8")
	assert.For("exhausted").ThatError(err).HasCause(stream.ErrExhausted)
	assert.For("position held").That(r.Pos()).Equals(8)
}

func TestReadListAtomic(t *testing.T) {
	assert := assert.To(t)
	r := stream.NewReader(parse(t, "0x1234"))
	_, err := r.ReadList("uint:8, uint:8, uint:8")
	assert.For("fails").ThatError(err).HasCause(stream.ErrExhausted)
	assert.For("no partial advance").That(r.Pos()).Equals(0)

	got, err := r.ReadList("uint:8, uint:8")
	assert.For("succeeds").ThatError(err).Succeeded()
	assert.For("values").ThatSlice(got).Equals([]interface{}{uint64(0x12), uint64(0x34)})
	assert.For("advanced").That(r.Pos()).Equals(16)
}

func TestPeekHoldsPosition(t *testing.T) {
	assert := assert.To(t)
	r := stream.NewReader(parse(t, "0x1234"))
	v, err := r.Peek("uint8")
	assert.For("peek").ThatError(err).Succeeded()
	assert.For("peek value").That(v).Equals(uint64(0x12))
	assert.For("held").That(r.Pos()).Equals(0)

	again, err := r.Peek("uint8")
	assert.For("repeat peek").ThatError(err).Succeeded()
	assert.For("repeat value").That(again).Equals(uint64(0x12))
}

func TestReadSelfDelimiting(t *testing.T) {
	assert := assert.To(t)
	a, _ := bits.FromUE(7)
	b, _ := bits.FromUE(2)
	r := stream.NewReader(a.Concat(b))
	v, err := r.Read("ue")
	assert.For("first").ThatError(err).Succeeded()
	assert.For("first").That(v).Equals(uint64(7))
	v, err = r.Read("ue")
	assert.For("second").ThatError(err).Succeeded()
	assert.For("second").That(v).Equals(uint64(2))
	assert.For("consumed all").That(r.Remaining()).Equals(0)
}

func TestReadBitsAndAlign(t *testing.T) {
	assert := assert.To(t)
	r := stream.NewReader(parse(t, "0xabcd"))
	b, err := r.ReadBits(4)
	assert.For("read bits").ThatError(err).Succeeded()
	assert.For("read bits").That(b.String()).Equals("0xa")
	assert.For("align").That(r.ByteAlign()).Equals(4)
	assert.For("aligned").That(r.Pos()).Equals(8)
	assert.For("align at boundary").That(r.ByteAlign()).Equals(0)

	_, err = r.ReadBits(100)
	assert.For("past end").ThatError(err).HasCause(stream.ErrExhausted)
}

func TestFindMovesCursor(t *testing.T) {
	assert := assert.To(t)
	r := stream.NewReader(parse(t, "0x0023122"))
	p, found, err := r.Find(parse(t, "0b000100"), bits.FindOptions{ByteAligned: true})
	assert.For("find").ThatError(err).Succeeded()
	assert.For("found").That(found).Equals(true)
	assert.For("position").That(p).Equals(16)
	assert.For("cursor follows").That(r.Pos()).Equals(16)

	_, found, err = r.Find(parse(t, "0xff"), bits.FindOptions{})
	assert.For("miss").ThatError(err).Succeeded()
	assert.For("miss").That(found).Equals(false)
	assert.For("cursor held").That(r.Pos()).Equals(16)
}

func TestAppendKeepsCursor(t *testing.T) {
	assert := assert.To(t)
	m, err := bits.NewMutable(bits.Literal("0x64"))
	assert.For("new").ThatError(err).Succeeded()
	r := stream.NewMutableReader(m)
	_, err = r.Read("uint8")
	assert.For("read").ThatError(err).Succeeded()
	assert.For("exhausted").That(r.Remaining()).Equals(0)

	m.Append(parse(t, "0x65"))
	assert.For("append keeps cursor").That(r.Pos()).Equals(8)
	v, err := r.Read("uint8")
	assert.For("read appended").ThatError(err).Succeeded()
	assert.For("read appended").That(v).Equals(uint64(0x65))
}

func TestReshapeResetsCursor(t *testing.T) {
	assert := assert.To(t)
	m, err := bits.NewMutable(bits.Literal("0x6465"))
	assert.For("new").ThatError(err).Succeeded()
	r := stream.NewMutableReader(m)
	_, err = r.Read("uint8")
	assert.For("read").ThatError(err).Succeeded()
	assert.For("position").That(r.Pos()).Equals(8)

	m.Prepend(parse(t, "0xff"))
	assert.For("prepend resets").That(r.Pos()).Equals(0)
	v, err := r.Read("uint8")
	assert.For("read from start").ThatError(err).Succeeded()
	assert.For("read from start").That(v).Equals(uint64(0xff))
}

func TestSetPos(t *testing.T) {
	assert := assert.To(t)
	r := stream.NewReader(parse(t, "0x1234"))
	assert.For("set").ThatError(r.SetPos(8)).Succeeded()
	v, err := r.Read("uint8")
	assert.For("read").ThatError(err).Succeeded()
	assert.For("read").That(v).Equals(uint64(0x34))
	assert.For("set past end").ThatError(r.SetPos(17)).HasCause(bits.ErrValue)
	assert.For("set to end").ThatError(r.SetPos(16)).Succeeded()
}
