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

// Package format compiles the textual token mini-language into executable
// programs that pack values into bit sequences and unpack them back out.
//
// A program is a comma-separated list of terms. A term is a literal
// (0x…, 0o…, 0b…), an interpretation token (kind, optional :length,
// optional =value, e.g. "uint:12", "hex8", "bool=true"), a repeated term or
// group ("3*uint8", "2*(uint4, pad:4)"), or a compact struct string with a
// leading byte-order character (">2H4b"). Lengths and values may also be
// names, resolved later through Bind. One token per program may omit its
// length to consume whatever remains at unpack time.
package format

import (
	"fmt"

	"github.com/google/bitbox/bits"
	"github.com/google/bitbox/core/fault"
)

const (
	// ErrCompile is the cause of every mini-language rejection.
	ErrCompile = fault.Const("invalid format specification")
	// ErrUnresolved is the cause when a program still carries deferred
	// names at execution, or a Bind call cannot resolve one.
	ErrUnresolved = fault.Const("unresolved name in format")
)

// remainder marks the one token allowed to consume whatever input remains.
const remainder = -1

// Token is one compiled step of a format program.
type Token struct {
	// Kind is the interpretation; KindInvalid for literal tokens.
	Kind bits.Kind
	// Literal is emitted verbatim on pack and skipped on unpack.
	Literal *bits.Bits
	// Length is the bit width, remainder for a consume-the-rest token, and
	// zero while LengthName is deferred or the kind is self-delimiting.
	Length int
	// LengthName defers the width to a Bind-time name.
	LengthName string
	// Value is the bound value for packing, when HasValue.
	HasValue bool
	Value    interface{}
	// ValueName defers the value to a Bind-time name.
	ValueName string
}

func (t Token) String() string {
	switch {
	case t.Literal != nil:
		return t.Literal.String()
	case t.LengthName != "":
		return fmt.Sprintf("%v:%s", t.Kind, t.LengthName)
	case t.Length == remainder:
		return t.Kind.String()
	default:
		return fmt.Sprintf("%v:%d", t.Kind, t.Length)
	}
}

// deferred reports whether the token still needs a Bind.
func (t Token) deferred() bool {
	return t.LengthName != "" || t.ValueName != ""
}

// Program is a compiled, flattened token list.
type Program struct {
	tokens []Token
	// remainderAt is the index of the consume-the-rest token, or -1.
	remainderAt int
	src         string
}

// Tokens returns the compiled tokens in execution order.
func (p *Program) Tokens() []Token {
	out := make([]Token, len(p.tokens))
	copy(out, p.tokens)
	return out
}

// String returns the source the program was compiled from.
func (p *Program) String() string { return p.src }
