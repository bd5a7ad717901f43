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
	"strconv"
	"strings"

	"github.com/google/bitbox/bits"
	"github.com/pkg/errors"
)

// Compile parses a format specification into an executable Program. Every
// rejection has cause ErrCompile.
func Compile(src string) (*Program, error) {
	c := &compiler{src: src}
	tokens, err := c.program()
	if err != nil {
		return nil, err
	}
	c.skipSpace()
	if !c.eof() {
		return nil, c.fail("unexpected %q", c.src[c.pos:])
	}
	return finalize(src, tokens)
}

type compiler struct {
	src string
	pos int
}

func (c *compiler) fail(msg string, args ...interface{}) error {
	return errors.WithMessagef(ErrCompile, "at offset %d: "+msg,
		append([]interface{}{c.pos}, args...)...)
}

func (c *compiler) eof() bool { return c.pos >= len(c.src) }

func (c *compiler) peek() byte {
	if c.eof() {
		return 0
	}
	return c.src[c.pos]
}

func (c *compiler) skipSpace() {
	for !c.eof() && (c.src[c.pos] == ' ' || c.src[c.pos] == '\t' || c.src[c.pos] == '\n') {
		c.pos++
	}
}

// expect consumes ch or fails.
func (c *compiler) expect(ch byte) error {
	c.skipSpace()
	if c.peek() != ch {
		return c.fail("expected %q", string(ch))
	}
	c.pos++
	return nil
}

// optional consumes ch when present.
func (c *compiler) optional(ch byte) bool {
	c.skipSpace()
	if c.peek() == ch {
		c.pos++
		return true
	}
	return false
}

func isWordChar(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' ||
		ch >= '0' && ch <= '9' || ch == '_'
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isLetter(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_'
}

// word consumes a maximal identifier-or-digits run.
func (c *compiler) word() string {
	start := c.pos
	for !c.eof() && isWordChar(c.src[c.pos]) {
		c.pos++
	}
	return c.src[start:c.pos]
}

// digits consumes a maximal decimal run.
func (c *compiler) digits() string {
	start := c.pos
	for !c.eof() && isDigit(c.src[c.pos]) {
		c.pos++
	}
	return c.src[start:c.pos]
}

// program parses comma-separated terms.
func (c *compiler) program() ([]Token, error) {
	tokens, err := c.term()
	if err != nil {
		return nil, err
	}
	for c.optional(',') {
		more, err := c.term()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, more...)
	}
	return tokens, nil
}

// term parses one optionally repeated literal, token, group or struct
// string.
func (c *compiler) term() ([]Token, error) {
	c.skipSpace()
	if c.eof() {
		return nil, c.fail("expected a term")
	}

	// A leading integer followed by '*' is a repeat factor.
	if isDigit(c.peek()) {
		save := c.pos
		factor := c.digits()
		if c.optional('*') {
			n, err := strconv.Atoi(factor)
			if err != nil || n < 1 {
				return nil, c.fail("repeat count %q", factor)
			}
			sub, err := c.term()
			if err != nil {
				return nil, err
			}
			out := make([]Token, 0, n*len(sub))
			for i := 0; i < n; i++ {
				out = append(out, sub...)
			}
			return out, nil
		}
		c.pos = save
	}

	switch ch := c.peek(); {
	case ch == '(':
		c.pos++
		tokens, err := c.program()
		if err != nil {
			return nil, err
		}
		if err := c.expect(')'); err != nil {
			return nil, err
		}
		return tokens, nil
	case ch == '>' || ch == '<' || ch == '=' || ch == '@':
		return c.structTerm()
	default:
		t, err := c.token()
		if err != nil {
			return nil, err
		}
		return []Token{t}, nil
	}
}

// token parses a literal or one kind token.
func (c *compiler) token() (Token, error) {
	w := c.word()
	if w == "" {
		return Token{}, c.fail("expected a token")
	}
	lower := strings.ToLower(w)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0o") || strings.HasPrefix(lower, "0b") {
		b, err := bits.Parse(w)
		if err != nil {
			return Token{}, errors.WithMessagef(ErrCompile, "bad literal %q", w)
		}
		return Token{Literal: b}, nil
	}

	t := Token{Length: remainder}
	if k, ok := bits.ParseKind(lower); ok {
		t.Kind = k
	} else {
		base := strings.TrimRight(lower, "0123456789")
		k, ok := bits.ParseKind(base)
		if !ok || base == lower {
			return Token{}, c.fail("unknown kind %q", w)
		}
		n, err := strconv.Atoi(lower[len(base):])
		if err != nil {
			return Token{}, c.fail("bad length in %q", w)
		}
		t.Kind, t.Length = k, n
	}

	if c.optional(':') {
		if t.Length != remainder {
			return Token{}, c.fail("duplicate length in %q", w)
		}
		c.skipSpace()
		l := c.word()
		switch {
		case l == "":
			return Token{}, c.fail("expected a length after %q", w)
		case isDigit(l[0]):
			n, err := strconv.Atoi(l)
			if err != nil {
				return Token{}, c.fail("bad length %q", l)
			}
			t.Length = n
		default:
			t.Length, t.LengthName = 0, l
		}
	}

	if c.optional('=') {
		c.skipSpace()
		raw := c.value()
		if raw == "" {
			return Token{}, c.fail("expected a value for %q", w)
		}
		if err := c.bindValue(&t, raw); err != nil {
			return Token{}, err
		}
	}

	return c.normalize(t)
}

// value consumes a value word, permitting sign, dot and exponent characters.
func (c *compiler) value() string {
	start := c.pos
	for !c.eof() {
		ch := c.src[c.pos]
		if !isWordChar(ch) && ch != '.' && ch != '+' && ch != '-' {
			break
		}
		c.pos++
	}
	return c.src[start:c.pos]
}

// bindValue interprets a textual value for the token's kind, deferring to a
// name when the text is not a value of that kind.
func (c *compiler) bindValue(t *Token, raw string) error {
	switch t.Kind {
	case bits.KindHex, bits.KindOct, bits.KindBin:
		if _, err := parseDigits(t.Kind, raw); err == nil {
			t.HasValue, t.Value = true, raw
			return nil
		}
	case bits.KindFloat, bits.KindFloatLE, bits.KindFloatNE,
		bits.KindBFloat, bits.KindFloat8E4M3, bits.KindFloat8E5M2:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			t.HasValue, t.Value = true, f
			return nil
		}
	case bits.KindBool:
		switch raw {
		case "true", "1":
			t.HasValue, t.Value = true, true
			return nil
		case "false", "0":
			t.HasValue, t.Value = true, false
			return nil
		}
	case bits.KindBits:
		if b, err := bits.Parse(raw); err == nil {
			t.HasValue, t.Value = true, b
			return nil
		}
	case bits.KindPad:
		return c.fail("pad takes no value")
	default:
		if i, err := strconv.ParseInt(raw, 0, 64); err == nil {
			t.HasValue, t.Value = true, i
			return nil
		}
		if u, err := strconv.ParseUint(raw, 0, 64); err == nil {
			t.HasValue, t.Value = true, u
			return nil
		}
	}
	if !isLetter(raw[0]) {
		return c.fail("bad value %q for %v", raw, t.Kind)
	}
	t.ValueName = raw
	return nil
}

// normalize applies per-kind length rules once a token is fully parsed.
func (c *compiler) normalize(t Token) (Token, error) {
	k := t.Kind
	switch {
	case k.SelfDelimiting():
		if t.Length != remainder || t.LengthName != "" {
			return Token{}, c.fail("%v carries its own length", k)
		}
		t.Length = 0
		return t, nil
	case k.ImpliedLength() > 0:
		if t.LengthName != "" {
			return Token{}, c.fail("%v has a fixed length", k)
		}
		if t.Length == remainder {
			t.Length = k.ImpliedLength()
		}
		if t.Length != k.ImpliedLength() {
			return Token{}, c.fail("%v must be %d bits", k, k.ImpliedLength())
		}
		return t, nil
	case k == bits.KindPad:
		if t.Length == remainder && t.LengthName == "" {
			return Token{}, c.fail("pad needs a length")
		}
	}
	// A digit-kind value with no explicit length fixes the length.
	if t.Length == remainder && t.HasValue && k.BitsPerChar() > 0 {
		if s, ok := t.Value.(string); ok {
			n, err := parseDigits(k, s)
			if err != nil {
				return Token{}, c.fail("bad value %q for %v", s, k)
			}
			t.Length = n
		}
	}
	if t.Length != remainder {
		if err := k.LengthOK(t.Length); err != nil {
			return Token{}, errors.WithMessagef(ErrCompile, "%v cannot have length %d", k, t.Length)
		}
	}
	return t, nil
}

// parseDigits validates a digit-string value, stripping an optional radix
// prefix and underscores, and returns its bit length.
func parseDigits(k bits.Kind, s string) (int, error) {
	b, err := encodeDigits(k, s)
	if err != nil {
		return 0, err
	}
	return b.Len(), nil
}

func encodeDigits(k bits.Kind, s string) (*bits.Bits, error) {
	switch k {
	case bits.KindHex:
		s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
		return bits.FromHex(s)
	case bits.KindOct:
		s = strings.TrimPrefix(strings.TrimPrefix(s, "0o"), "0O")
		return bits.FromOct(s)
	default:
		s = strings.TrimPrefix(strings.TrimPrefix(s, "0b"), "0B")
		return bits.FromBin(s)
	}
}

// typeChar describes one struct-string element letter.
var typeChars = map[byte]struct {
	signed bool
	float  bool
	width  int
}{
	'b': {signed: true, width: 8},
	'B': {width: 8},
	'h': {signed: true, width: 16},
	'H': {width: 16},
	'l': {signed: true, width: 32},
	'L': {width: 32},
	'q': {signed: true, width: 64},
	'Q': {width: 64},
	'e': {float: true, width: 16},
	'f': {float: true, width: 32},
	'd': {float: true, width: 64},
}

// structTerm parses the compact struct sub-grammar: a byte-order character
// followed by repeat-count and type-character pairs.
func (c *compiler) structTerm() ([]Token, error) {
	order := c.src[c.pos]
	c.pos++
	var out []Token
	for {
		c.skipSpace()
		count := 1
		if isDigit(c.peek()) {
			n, err := strconv.Atoi(c.digits())
			if err != nil || n < 1 {
				return nil, c.fail("struct repeat count")
			}
			count = n
		}
		tc, ok := typeChars[c.peek()]
		if !ok {
			if count != 1 {
				return nil, c.fail("expected a struct type character")
			}
			break
		}
		c.pos++
		k := structKind(order, tc.signed, tc.float, tc.width)
		for i := 0; i < count; i++ {
			out = append(out, Token{Kind: k, Length: tc.width})
		}
	}
	if len(out) == 0 {
		return nil, c.fail("empty struct token")
	}
	return out, nil
}

func structKind(order byte, signed, float bool, width int) bits.Kind {
	if float {
		switch order {
		case '>':
			return bits.KindFloat
		case '<':
			return bits.KindFloatLE
		default:
			return bits.KindFloatNE
		}
	}
	if width == 8 {
		// Byte order is irrelevant for single bytes.
		if signed {
			return bits.KindInt
		}
		return bits.KindUint
	}
	switch {
	case order == '>' && signed:
		return bits.KindIntBE
	case order == '>':
		return bits.KindUintBE
	case order == '<' && signed:
		return bits.KindIntLE
	case order == '<':
		return bits.KindUintLE
	case signed:
		return bits.KindIntNE
	default:
		return bits.KindUintNE
	}
}

// finalize enforces the whole-program invariants and builds the Program.
func finalize(src string, tokens []Token) (*Program, error) {
	remainderAt := -1
	for i, t := range tokens {
		if t.Literal != nil {
			continue
		}
		if t.Length == remainder {
			if remainderAt >= 0 {
				return nil, errors.WithMessagef(ErrCompile,
					"two tokens (%v and %v) both consume the remainder", tokens[remainderAt], t)
			}
			remainderAt = i
		}
		if remainderAt >= 0 && i > remainderAt && t.Kind.SelfDelimiting() {
			return nil, errors.WithMessagef(ErrCompile,
				"%v after the remainder token makes its width unknowable", t)
		}
	}
	return &Program{tokens: tokens, remainderAt: remainderAt, src: src}, nil
}

// Bind resolves the deferred length and value names against the given map,
// returning a new resolved Program. A name the map lacks fails with
// ErrUnresolved.
func (p *Program) Bind(names map[string]interface{}) (*Program, error) {
	tokens := make([]Token, len(p.tokens))
	copy(tokens, p.tokens)
	for i := range tokens {
		t := &tokens[i]
		if t.LengthName != "" {
			v, ok := names[t.LengthName]
			if !ok {
				return nil, errors.WithMessagef(ErrUnresolved, "length %q", t.LengthName)
			}
			n, err := lengthValue(v)
			if err != nil {
				return nil, errors.WithMessagef(ErrCompile, "length %q: %v", t.LengthName, err)
			}
			if err := t.Kind.LengthOK(n); err != nil {
				return nil, errors.WithMessagef(ErrCompile, "%v cannot have length %d", t.Kind, n)
			}
			t.Length, t.LengthName = n, ""
		}
		if t.ValueName != "" {
			v, ok := names[t.ValueName]
			if !ok {
				return nil, errors.WithMessagef(ErrUnresolved, "value %q", t.ValueName)
			}
			t.HasValue, t.Value, t.ValueName = true, v, ""
		}
	}
	return finalize(p.src, tokens)
}

func lengthValue(v interface{}) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case uint64:
		return int(t), nil
	}
	return 0, errors.Errorf("%T is not a length", v)
}
