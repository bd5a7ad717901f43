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

func mutable(t *testing.T, s string) *bits.Mutable {
	m, err := bits.NewMutable(bits.Literal(s))
	assert.For(t, "mutable %q", s).ThatError(err).Succeeded()
	return m
}

func TestAppendGrowth(t *testing.T) {
	assert := assert.To(t)
	m, err := bits.NewMutable(bits.Size(0))
	assert.For("new").ThatError(err).Succeeded()
	chunk := parse(t, "0x01")
	for i := 0; i < 1000; i++ {
		m.Append(chunk)
	}
	assert.For("length").That(m.Len()).Equals(8000)
	assert.For("ones").That(m.View().Count(true)).Equals(1000)
	assert.For("generation").That(m.Generation()).Equals(uint64(0))
}

func TestSelfAppend(t *testing.T) {
	assert := assert.To(t)
	m := mutable(t, "0b101")
	m.Append(m.View())
	assert.For("doubled").That(m.View().String()).Equals("0b101101")
}

func TestPrependInsert(t *testing.T) {
	assert := assert.To(t)
	m := mutable(t, "0b0011")
	m.Prepend(parse(t, "0b11"))
	assert.For("prepend").That(m.View().String()).Equals("0b110011")
	assert.For("prepend invalidates").That(m.Generation()).Equals(uint64(1))

	err := m.Insert(2, parse(t, "0b00"))
	assert.For("insert").ThatError(err).Succeeded()
	assert.For("insert").That(m.View().String()).Equals("0xc3") // 11000011
	assert.For("insert invalidates").That(m.Generation()).Equals(uint64(2))

	err = m.Insert(m.Len(), parse(t, "0b1"))
	assert.For("insert at end").ThatError(err).Succeeded()
	assert.For("insert at end keeps positions").That(m.Generation()).Equals(uint64(2))

	err = m.Insert(100, parse(t, "0b1"))
	assert.For("insert out of range").ThatError(err).HasCause(bits.ErrValue)
}

func TestOverwrite(t *testing.T) {
	assert := assert.To(t)
	m := mutable(t, "0x00ff")
	err := m.Overwrite(4, parse(t, "0xf"))
	assert.For("inside").ThatError(err).Succeeded()
	assert.For("inside").That(m.View().String()).Equals("0x0fff")
	assert.For("same length keeps positions").That(m.Generation()).Equals(uint64(0))

	err = m.Overwrite(12, parse(t, "0x00"))
	assert.For("extending").ThatError(err).Succeeded()
	assert.For("extending").That(m.Len()).Equals(20)
	assert.For("mid-sequence extension invalidates").That(m.Generation()).Equals(uint64(1))

	err = m.Overwrite(m.Len(), parse(t, "0b1"))
	assert.For("pure append").ThatError(err).Succeeded()
	assert.For("pure append keeps positions").That(m.Generation()).Equals(uint64(1))
}

func TestDelete(t *testing.T) {
	assert := assert.To(t)
	m := mutable(t, "0b11001010")
	err := m.Delete(2, 5)
	assert.For("delete").ThatError(err).Succeeded()
	assert.For("delete").That(m.View().String()).Equals("0b11010")
	assert.For("delete invalidates").That(m.Generation()).Equals(uint64(1))

	err = m.Delete(3, 3)
	assert.For("empty delete").ThatError(err).Succeeded()
	assert.For("empty delete keeps positions").That(m.Generation()).Equals(uint64(1))

	err = m.Delete(3, 100)
	assert.For("bad range").ThatError(err).HasCause(bits.ErrValue)
}

func TestSetInvert(t *testing.T) {
	assert := assert.To(t)
	m := mutable(t, "0b0000")
	err := m.Set(true, 0, -1)
	assert.For("set").ThatError(err).Succeeded()
	assert.For("set").That(m.View().String()).Equals("0x9")

	err = m.Set(true, 100)
	assert.For("set out of range").ThatError(err).HasCause(bits.ErrIndex)
	assert.For("failed set changes nothing").That(m.View().String()).Equals("0x9")

	err = m.Invert(1, 2)
	assert.For("invert").ThatError(err).Succeeded()
	assert.For("invert").That(m.View().String()).Equals("0xf")

	m.InvertAll()
	assert.For("invert all").That(m.View().String()).Equals("0x0")
	m.SetAll(true)
	assert.For("set all").That(m.View().String()).Equals("0xf")
}

func TestInPlaceReorders(t *testing.T) {
	assert := assert.To(t)
	m := mutable(t, "0b10011000")
	m.ReverseInPlace()
	assert.For("reverse").That(m.View().String()).Equals("0x19")
	err := m.RotateLeftInPlace(4)
	assert.For("rotate").ThatError(err).Succeeded()
	assert.For("rotate").That(m.View().String()).Equals("0x91")
	err = m.ShiftRightInPlace(4)
	assert.For("shift").ThatError(err).Succeeded()
	assert.For("shift").That(m.View().String()).Equals("0x09")
	assert.For("reorders keep positions").That(m.Generation()).Equals(uint64(0))
}

func TestFreezeDetaches(t *testing.T) {
	assert := assert.To(t)
	m := mutable(t, "0b1010")
	snap := m.Freeze()
	view := m.View()
	m.SetAll(true)
	assert.For("snapshot").That(snap.String()).Equals("0xa")
	assert.For("view is live").That(view.String()).Equals("0xf")
}

func TestMutableNotHashable(t *testing.T) {
	assert := assert.To(t)
	m := mutable(t, "0b1010")
	_, err := m.Hash()
	assert.For("hash").ThatError(err).HasCause(bits.ErrValue)
}
