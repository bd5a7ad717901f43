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

package format_test

import (
	"testing"

	"github.com/google/bitbox/bits"
	"github.com/google/bitbox/core/assert"
	"github.com/google/bitbox/format"
)

func compile(t *testing.T, src string) *format.Program {
	p, err := format.Compile(src)
	assert.For(t, "compile %q", src).ThatError(err).Succeeded()
	return p
}

func kinds(p *format.Program) []bits.Kind {
	tokens := p.Tokens()
	out := make([]bits.Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestCompileShorthand(t *testing.T) {
	assert := assert.To(t)
	p := compile(t, "uint12, hex8, bin")
	tokens := p.Tokens()
	assert.For("count").That(len(tokens)).Equals(3)
	assert.For("uint12").That(tokens[0].Kind).Equals(bits.KindUint)
	assert.For("uint12 length").That(tokens[0].Length).Equals(12)
	assert.For("hex8").That(tokens[1].Kind).Equals(bits.KindHex)
	assert.For("hex8 length").That(tokens[1].Length).Equals(8)
	assert.For("bin").That(tokens[2].Kind).Equals(bits.KindBin)
	assert.For("bin is remainder").That(tokens[2].Length).Equals(-1)
}

func TestCompileColonForms(t *testing.T) {
	assert := assert.To(t)
	p := compile(t, "uint:12, float:32, pad:4, bool, ue")
	tokens := p.Tokens()
	assert.For("count").That(len(tokens)).Equals(5)
	assert.For("bool implied").That(tokens[3].Length).Equals(1)
	assert.For("ue").That(tokens[4].Kind).Equals(bits.KindUE)
}

func TestCompileLiterals(t *testing.T) {
	assert := assert.To(t)
	p := compile(t, "0x000001b3, uint:12=352")
	tokens := p.Tokens()
	assert.For("literal").That(tokens[0].Literal.String()).Equals("0x000001b3")
	assert.For("bound value").That(tokens[1].HasValue).Equals(true)
	assert.For("bound value").That(tokens[1].Value).Equals(int64(352))
}

func TestCompileRepeats(t *testing.T) {
	assert := assert.To(t)
	p := compile(t, "3*uint8")
	assert.For("flat repeat").That(len(p.Tokens())).Equals(3)

	p = compile(t, "2*(uint4, 2*bool)")
	tokens := p.Tokens()
	assert.For("group repeat").That(len(tokens)).Equals(6)
	assert.For("group order").ThatSlice(kinds(p)).Equals([]bits.Kind{
		bits.KindUint, bits.KindBool, bits.KindBool,
		bits.KindUint, bits.KindBool, bits.KindBool,
	})
}

func TestCompileStructGrammar(t *testing.T) {
	assert := assert.To(t)
	p := compile(t, ">2H4b")
	tokens := p.Tokens()
	assert.For("count").That(len(tokens)).Equals(6)
	assert.For("kinds").ThatSlice(kinds(p)).Equals([]bits.Kind{
		bits.KindUintBE, bits.KindUintBE,
		bits.KindInt, bits.KindInt, bits.KindInt, bits.KindInt,
	})
	assert.For("widths").That(tokens[0].Length).Equals(16)

	p = compile(t, "<h, uint4")
	assert.For("mixed").ThatSlice(kinds(p)).Equals([]bits.Kind{bits.KindIntLE, bits.KindUint})

	p = compile(t, "=Q")
	assert.For("native").That(p.Tokens()[0].Kind).Equals(bits.KindUintNE)
	p = compile(t, "@q")
	assert.For("native alias").That(p.Tokens()[0].Kind).Equals(bits.KindIntNE)
}

func TestCompileDeferredNames(t *testing.T) {
	assert := assert.To(t)
	p := compile(t, "uint:n, bin:m")
	bound, err := p.Bind(map[string]interface{}{"n": 12, "m": 4})
	assert.For("bind").ThatError(err).Succeeded()
	tokens := bound.Tokens()
	assert.For("n").That(tokens[0].Length).Equals(12)
	assert.For("m").That(tokens[1].Length).Equals(4)

	_, err = p.Bind(map[string]interface{}{"n": 12})
	assert.For("missing name").ThatError(err).HasCause(format.ErrUnresolved)
	_, err = p.Bind(map[string]interface{}{"n": 12, "m": "wide"})
	assert.For("bad length value").ThatError(err).HasCause(format.ErrCompile)
}

func TestCompileRejects(t *testing.T) {
	assert := assert.To(t)
	for _, src := range []string{
		"",
		"quux:8",
		"uint:12:4",
		"uint12:4",
		"bin, hex",   // two remainder tokens
		"bin, ue",    // dynamic width after the remainder
		"ue:3",       // self-delimiting with a length
		"pad",        // pad needs a length
		"float:24",   // invalid float width
		"bool:2",     // implied length mismatch
		"uint:0",     // zero length
		"0*uint8",    // zero repeat
		"0xfg", // bad literal
		">",    // empty struct token
		">3",   // struct count without type
	} {
		_, err := format.Compile(src)
		assert.For("compile %q", src).ThatError(err).HasCause(format.ErrCompile)
	}
}

func TestCompileRemainderPosition(t *testing.T) {
	compile(t, "ue, bin")      // dynamic before the remainder is fine
	compile(t, "bin, uint8")   // static after the remainder is fine
	compile(t, "uint:n, bits") // deferred length plus remainder is fine
}
