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
	"math/big"

	"github.com/pkg/errors"
)

// Array is a fixed-width element collection over one bit sequence. Element i
// occupies bits [i*width, (i+1)*width); any trailing bits short of a whole
// element stay in storage but are not addressable as elements.
type Array struct {
	kind  Kind
	width int
	data  *Mutable
}

// NewArray returns an empty array of the given element descriptor. The kind
// must be fixed-width: the self-delimiting codes and pad are not element
// kinds, and the width must satisfy the kind's length rule.
func NewArray(k Kind, width int) (*Array, error) {
	return NewArrayOf(k, width, Empty)
}

// NewArrayOf returns an array of the given element descriptor over a copy of
// the initial content.
func NewArrayOf(k Kind, width int, initial *Bits) (*Array, error) {
	if k.SelfDelimiting() || k == KindPad {
		return nil, errors.WithMessagef(ErrValue, "%v is not a fixed-width element kind", k)
	}
	if width < 1 {
		return nil, errors.WithMessagef(ErrValue, "element width %d", width)
	}
	if err := k.LengthOK(width); err != nil {
		return nil, err
	}
	return &Array{kind: k, width: width, data: initial.ToMutable()}, nil
}

// Kind returns the element interpretation.
func (a *Array) Kind() Kind { return a.kind }

// Width returns the element bit width.
func (a *Array) Width() int { return a.width }

// Len returns the element count: floor of the bit length over the width.
func (a *Array) Len() int { return a.data.Len() / a.width }

// Data returns a snapshot of the full backing sequence, trailing bits
// included.
func (a *Array) Data() *Bits { return a.data.Freeze() }

// index resolves a possibly-negative element index.
func (a *Array) index(i int) (int, error) {
	n := a.Len()
	if i < -n || i >= n {
		return 0, errors.WithMessagef(ErrIndex, "element %d with %d elements", i, n)
	}
	if i < 0 {
		i += n
	}
	return i, nil
}

// At decodes element i. Negative indices count from the end.
func (a *Array) At(i int) (interface{}, error) {
	r, err := a.index(i)
	if err != nil {
		return nil, err
	}
	v, _, err := ReadKind(&a.data.Bits, r*a.width, a.kind, a.width)
	return v, err
}

// SetAt encodes v into element i.
func (a *Array) SetAt(i int, v interface{}) error {
	r, err := a.index(i)
	if err != nil {
		return err
	}
	enc, err := EncodeKind(a.kind, a.width, v)
	if err != nil {
		return err
	}
	return a.data.Overwrite(r*a.width, enc)
}

// Append encodes v as a new trailing element. Appending fails with ErrValue
// when trailing bits leave the storage off an element boundary.
func (a *Array) Append(v interface{}) error {
	if a.data.Len()%a.width != 0 {
		return errors.WithMessagef(ErrValue,
			"append to %d stored bits, not a multiple of width %d", a.data.Len(), a.width)
	}
	enc, err := EncodeKind(a.kind, a.width, v)
	if err != nil {
		return err
	}
	a.data.Append(enc)
	return nil
}

// Extend appends each value in turn. Values are all encoded before any is
// written, so a bad value leaves the array unchanged.
func (a *Array) Extend(vs ...interface{}) error {
	if a.data.Len()%a.width != 0 {
		return errors.WithMessagef(ErrValue,
			"extend of %d stored bits, not a multiple of width %d", a.data.Len(), a.width)
	}
	encoded := make([]*Bits, len(vs))
	for i, v := range vs {
		enc, err := EncodeKind(a.kind, a.width, v)
		if err != nil {
			return err
		}
		encoded[i] = enc
	}
	for _, enc := range encoded {
		a.data.Append(enc)
	}
	return nil
}

// Values decodes every element.
func (a *Array) Values() ([]interface{}, error) {
	n := a.Len()
	out := make([]interface{}, n)
	for i := 0; i < n; i++ {
		v, _, err := ReadKind(&a.data.Bits, i*a.width, a.kind, a.width)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Slice returns a new array over a copy of the elements [start, end).
// Bounds may be negative and are clamped, as with Bits.Slice.
func (a *Array) Slice(start, end int) *Array {
	n := a.Len()
	s, e := resolveElement(start, n), resolveElement(end, n)
	if s >= e {
		out, _ := NewArray(a.kind, a.width)
		return out
	}
	out, _ := NewArrayOf(a.kind, a.width, a.data.Slice(s*a.width, e*a.width))
	return out
}

func resolveElement(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

// SetSlice assigns vs to the elements visited from start toward end with the
// given positive step. The index count must equal len(vs); everything is
// encoded before anything is written.
func (a *Array) SetSlice(start, end, step int, vs []interface{}) error {
	if step < 1 {
		return errors.WithMessagef(ErrValue, "slice step %d", step)
	}
	n := a.Len()
	s, e := resolveElement(start, n), resolveElement(end, n)
	var idx []int
	for i := s; i < e; i += step {
		idx = append(idx, i)
	}
	if len(idx) != len(vs) {
		return errors.WithMessagef(ErrValue,
			"assigning %d values to %d elements", len(vs), len(idx))
	}
	encoded := make([]*Bits, len(vs))
	for i, v := range vs {
		enc, err := EncodeKind(a.kind, a.width, v)
		if err != nil {
			return err
		}
		encoded[i] = enc
	}
	for i, at := range idx {
		if err := a.data.Overwrite(at*a.width, encoded[i]); err != nil {
			return err
		}
	}
	return nil
}

// AsType reinterprets a copy of the backing bits under a new element
// descriptor. The element count truncates to whole elements of the new
// width.
func (a *Array) AsType(k Kind, width int) (*Array, error) {
	return NewArrayOf(k, width, a.data.Freeze())
}

// Copy returns a deep copy sharing no storage with the receiver.
func (a *Array) Copy() *Array {
	return &Array{kind: a.kind, width: a.width, data: a.data.Freeze().ToMutable()}
}

// Equal reports whether two arrays share descriptor and backing bits.
func (a *Array) Equal(o *Array) bool {
	return a.kind == o.kind && a.width == o.width && a.data.View().Equal(o.data.View())
}

// mapElements rewrites every element through f. All elements are decoded and
// re-encoded before any storage is touched, so a rejected result leaves the
// array unchanged. Trailing bits beyond the last whole element survive.
func (a *Array) mapElements(f func(interface{}) (interface{}, error)) error {
	n := a.Len()
	encoded := make([]*Bits, n)
	for i := 0; i < n; i++ {
		v, _, err := ReadKind(&a.data.Bits, i*a.width, a.kind, a.width)
		if err != nil {
			return err
		}
		nv, err := f(v)
		if err != nil {
			return err
		}
		encoded[i], err = EncodeKind(a.kind, a.width, nv)
		if err != nil {
			return err
		}
	}
	for i, enc := range encoded {
		if err := a.data.Overwrite(i*a.width, enc); err != nil {
			return err
		}
	}
	return nil
}

// MulScalar multiplies every element value by n. Integer elements whose
// product leaves the representable range fail with ErrValue and leave the
// array unchanged.
func (a *Array) MulScalar(n int64) error {
	return a.mapElements(func(v interface{}) (interface{}, error) {
		switch t := v.(type) {
		case uint64:
			if n < 0 {
				return nil, errors.WithMessagef(ErrValue, "scalar %d for unsigned elements", n)
			}
			p := t * uint64(n)
			if t != 0 && p/t != uint64(n) {
				return nil, errors.WithMessagef(ErrValue, "%d * %d overflows", t, n)
			}
			return p, nil
		case int64:
			p := t * n
			if t != 0 && p/t != n {
				return nil, errors.WithMessagef(ErrValue, "%d * %d overflows", t, n)
			}
			return p, nil
		case *big.Int:
			return new(big.Int).Mul(t, big.NewInt(n)), nil
		case float64:
			return t * float64(n), nil
		}
		return nil, errors.WithMessagef(ErrValue, "cannot multiply %v elements", a.kind)
	})
}

// AddScalar adds n to every element value. Integer elements whose sum leaves
// the representable range fail with ErrValue and leave the array unchanged.
func (a *Array) AddScalar(n int64) error {
	return a.mapElements(func(v interface{}) (interface{}, error) {
		switch t := v.(type) {
		case uint64:
			if n >= 0 {
				s := t + uint64(n)
				if s < t {
					return nil, errors.WithMessagef(ErrValue, "%d + %d overflows", t, n)
				}
				return s, nil
			}
			d := uint64(-n)
			if d > t {
				return nil, errors.WithMessagef(ErrValue, "%d %d underflows", t, n)
			}
			return t - d, nil
		case int64:
			s := t + n
			if (n > 0 && s < t) || (n < 0 && s > t) {
				return nil, errors.WithMessagef(ErrValue, "%d + %d overflows", t, n)
			}
			return s, nil
		case *big.Int:
			return new(big.Int).Add(t, big.NewInt(n)), nil
		case float64:
			return t + float64(n), nil
		}
		return nil, errors.WithMessagef(ErrValue, "cannot add to %v elements", a.kind)
	})
}

// ShiftLeftScalar shifts every element value left by n. Only integer element
// kinds shift; an overflowing result fails with ErrValue.
func (a *Array) ShiftLeftScalar(n int) error {
	if n < 0 {
		return errors.WithMessagef(ErrValue, "shift by negative count %d", n)
	}
	return a.mapElements(func(v interface{}) (interface{}, error) {
		switch t := v.(type) {
		case uint64:
			r := t << uint(n)
			if t != 0 && r>>uint(n) != t {
				return nil, errors.WithMessagef(ErrValue, "%d << %d overflows", t, n)
			}
			return r, nil
		case int64:
			r := t << uint(n)
			if t != 0 && r>>uint(n) != t {
				return nil, errors.WithMessagef(ErrValue, "%d << %d overflows", t, n)
			}
			return r, nil
		case *big.Int:
			return new(big.Int).Lsh(t, uint(n)), nil
		}
		return nil, errors.WithMessagef(ErrValue, "cannot shift %v elements", a.kind)
	})
}

// ShiftRightScalar shifts every element value right by n; signed elements
// shift arithmetically.
func (a *Array) ShiftRightScalar(n int) error {
	if n < 0 {
		return errors.WithMessagef(ErrValue, "shift by negative count %d", n)
	}
	return a.mapElements(func(v interface{}) (interface{}, error) {
		switch t := v.(type) {
		case uint64:
			return t >> uint(n), nil
		case int64:
			return t >> uint(n), nil
		case *big.Int:
			return new(big.Int).Rsh(t, uint(n)), nil
		}
		return nil, errors.WithMessagef(ErrValue, "cannot shift %v elements", a.kind)
	})
}

// AndScalar ANDs every element value with n.
func (a *Array) AndScalar(n uint64) error {
	return a.bitwiseScalar(n, func(x, y uint64) uint64 { return x & y })
}

// OrScalar ORs every element value with n.
func (a *Array) OrScalar(n uint64) error {
	return a.bitwiseScalar(n, func(x, y uint64) uint64 { return x | y })
}

// XorScalar XORs every element value with n.
func (a *Array) XorScalar(n uint64) error {
	return a.bitwiseScalar(n, func(x, y uint64) uint64 { return x ^ y })
}

func (a *Array) bitwiseScalar(n uint64, op func(x, y uint64) uint64) error {
	return a.mapElements(func(v interface{}) (interface{}, error) {
		switch t := v.(type) {
		case uint64:
			return op(t, n), nil
		case int64:
			return int64(op(uint64(t), n)), nil
		}
		return nil, errors.WithMessagef(ErrValue, "cannot apply a bitwise scalar to %v elements", a.kind)
	})
}
