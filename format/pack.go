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

package format

import (
	"github.com/google/bitbox/bits"
	"github.com/pkg/errors"
)

// resolved fails with ErrUnresolved when the program still carries deferred
// names.
func (p *Program) resolved() error {
	for _, t := range p.tokens {
		if t.deferred() {
			return errors.WithMessagef(ErrUnresolved, "token %v", t)
		}
	}
	return nil
}

// Pack encodes the given values through the program. Literals, pads and
// value-bound tokens consume no argument; every other token consumes exactly
// one, and the argument count must match. Packing is atomic: any error
// yields no sequence.
func (p *Program) Pack(values ...interface{}) (*bits.Bits, error) {
	if err := p.resolved(); err != nil {
		return nil, err
	}
	out, _ := bits.NewMutable(bits.Size(0))
	vi := 0
	for _, t := range p.tokens {
		switch {
		case t.Literal != nil:
			out.Append(t.Literal)
		case t.Kind == bits.KindPad:
			z, err := bits.Zeros(t.Length)
			if err != nil {
				return nil, err
			}
			out.Append(z)
		default:
			v := t.Value
			if !t.HasValue {
				if vi >= len(values) {
					return nil, errors.WithMessagef(bits.ErrValue,
						"%d values for %d value slots", len(values), p.slots())
				}
				v = values[vi]
				vi++
			}
			enc, err := encodeToken(t, v)
			if err != nil {
				return nil, err
			}
			out.Append(enc)
		}
	}
	if vi != len(values) {
		return nil, errors.WithMessagef(bits.ErrValue,
			"%d values for %d value slots", len(values), vi)
	}
	return out.Freeze(), nil
}

// slots counts the tokens that consume a Pack argument.
func (p *Program) slots() int {
	n := 0
	for _, t := range p.tokens {
		if t.Literal == nil && t.Kind != bits.KindPad && !t.HasValue {
			n++
		}
	}
	return n
}

// encodeToken encodes one value for one token, deriving the width from the
// value for a consume-the-rest token.
func encodeToken(t Token, v interface{}) (*bits.Bits, error) {
	if t.Kind.SelfDelimiting() {
		return bits.EncodeKind(t.Kind, 0, v)
	}
	if t.Length != remainder {
		return bits.EncodeKind(t.Kind, t.Length, v)
	}
	if t.Kind.BitsPerChar() > 0 {
		if s, ok := v.(string); ok {
			return encodeDigits(t.Kind, s)
		}
	}
	if t.Kind == bits.KindBits {
		return bits.EncodeKind(t.Kind, 0, v)
	}
	return nil, errors.WithMessagef(bits.ErrValue,
		"cannot derive a width for %v from %T", t.Kind, v)
}

// Unpack decodes the whole of b through the program.
func (p *Program) Unpack(b *bits.Bits) ([]interface{}, error) {
	out, _, err := p.UnpackFrom(b, 0)
	return out, err
}

// UnpackFrom decodes through the program starting at bit position pos,
// returning the decoded values and the position after the last token.
// Literals, pads and value-bound tokens are consumed and yield no value; a
// literal whose bits differ from the input fails with bits.ErrValue.
// Running past the end of b fails with bits.ErrExhausted and yields nothing.
func (p *Program) UnpackFrom(b *bits.Bits, pos int) ([]interface{}, int, error) {
	if err := p.resolved(); err != nil {
		return nil, 0, err
	}
	if pos < 0 || pos > b.Len() {
		return nil, 0, errors.WithMessagef(bits.ErrValue,
			"position %d with length %d", pos, b.Len())
	}
	var out []interface{}
	for i, t := range p.tokens {
		emit := !t.HasValue
		var v interface{}
		var n int
		var err error
		switch {
		case t.Literal != nil:
			if pos+t.Literal.Len() > b.Len() {
				return nil, 0, errors.WithMessagef(bits.ErrExhausted,
					"literal %v at position %d", t.Literal, pos)
			}
			if !b.Slice(pos, pos+t.Literal.Len()).Equal(t.Literal) {
				return nil, 0, errors.WithMessagef(bits.ErrValue,
					"input at position %d does not match literal %v", pos, t.Literal)
			}
			n, emit = t.Literal.Len(), false
		case t.Kind.SelfDelimiting():
			v, n, err = bits.ReadKind(b, pos, t.Kind, 0)
		case t.Length == remainder:
			width := b.Len() - pos - p.fixedAfter(i)
			if width < 0 {
				return nil, 0, errors.WithMessagef(bits.ErrExhausted,
					"%v token at position %d", t.Kind, pos)
			}
			v, n, err = bits.ReadKind(b, pos, t.Kind, width)
		default:
			v, n, err = bits.ReadKind(b, pos, t.Kind, t.Length)
			if t.Kind == bits.KindPad {
				emit = false
			}
		}
		if err != nil {
			return nil, 0, err
		}
		pos += n
		if emit {
			out = append(out, v)
		}
	}
	return out, pos, nil
}

// fixedAfter sums the widths of the tokens after index i. Everything after
// the remainder token is statically sized.
func (p *Program) fixedAfter(i int) int {
	total := 0
	for _, t := range p.tokens[i+1:] {
		if t.Literal != nil {
			total += t.Literal.Len()
		} else {
			total += t.Length
		}
	}
	return total
}

// Pack compiles src through the shared cache and packs the values.
func Pack(src string, values ...interface{}) (*bits.Bits, error) {
	p, err := CompileCached(src)
	if err != nil {
		return nil, err
	}
	return p.Pack(values...)
}

// Unpack compiles src through the shared cache and unpacks b.
func Unpack(src string, b *bits.Bits) ([]interface{}, error) {
	p, err := CompileCached(src)
	if err != nil {
		return nil, err
	}
	return p.Unpack(b)
}

// Build packs a specification whose tokens all carry their values inline.
func Build(src string) (*bits.Bits, error) {
	return Pack(src)
}
