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

import "github.com/pkg/errors"

// Kind identifies one interpretation of a bit range.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUint         // big-endian bit-order unsigned integer, any length >= 1
	KindInt          // two's-complement signed integer, any length >= 1
	KindUintBE       // byte-wise big-endian unsigned, length multiple of 8
	KindIntBE        // byte-wise big-endian signed, length multiple of 8
	KindUintLE       // byte-wise little-endian unsigned, length multiple of 8
	KindIntLE        // byte-wise little-endian signed, length multiple of 8
	KindUintNE       // host-order unsigned, length multiple of 8
	KindIntNE        // host-order signed, length multiple of 8
	KindFloat        // IEEE-754 binary16/32/64, big-endian
	KindFloatLE      // IEEE-754, little-endian byte order
	KindFloatNE      // IEEE-754, host byte order
	KindBFloat       // bfloat16, length 16
	KindFloat8E4M3   // 1-4-3 FNUZ minifloat, length 8
	KindFloat8E5M2   // 1-5-2 FNUZ minifloat, length 8
	KindHex          // hex digit string, length multiple of 4
	KindOct          // octal digit string, length multiple of 3
	KindBin          // binary digit string, any length
	KindBool         // single bit
	KindUE           // unsigned Exponential-Golomb, self-delimiting
	KindSE           // signed Exponential-Golomb, self-delimiting
	KindUIE          // unsigned interleaved Exponential-Golomb
	KindSIE          // signed interleaved Exponential-Golomb
	KindPad          // write-only zero padding
	KindBits         // raw bit passthrough
)

var kindNames = map[Kind]string{
	KindUint:       "uint",
	KindInt:        "int",
	KindUintBE:     "uintbe",
	KindIntBE:      "intbe",
	KindUintLE:     "uintle",
	KindIntLE:      "intle",
	KindUintNE:     "uintne",
	KindIntNE:      "intne",
	KindFloat:      "float",
	KindFloatLE:    "floatle",
	KindFloatNE:    "floatne",
	KindBFloat:     "bfloat",
	KindFloat8E4M3: "float8_143",
	KindFloat8E5M2: "float8_152",
	KindHex:        "hex",
	KindOct:        "oct",
	KindBin:        "bin",
	KindBool:       "bool",
	KindUE:         "ue",
	KindSE:         "se",
	KindUIE:        "uie",
	KindSIE:        "sie",
	KindPad:        "pad",
	KindBits:       "bits",
}

var namedKinds = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames)+2)
	for k, n := range kindNames {
		m[n] = k
	}
	// Aliases.
	m["floatbe"] = KindFloat
	m["floatne"] = KindFloatNE
	return m
}()

// ParseKind resolves an interpretation name. The second result reports
// whether the name is known.
func ParseKind(name string) (Kind, bool) {
	k, ok := namedKinds[name]
	return k, ok
}

// String returns the canonical name of the kind.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "invalid"
}

// SelfDelimiting reports whether values of this kind carry their own length
// on the wire, so a decoder must report the bits it consumed.
func (k Kind) SelfDelimiting() bool {
	switch k {
	case KindUE, KindSE, KindUIE, KindSIE:
		return true
	}
	return false
}

// ImpliedLength returns the fixed bit length a kind carries implicitly, or
// zero when a length must be given.
func (k Kind) ImpliedLength() int {
	switch k {
	case KindBool:
		return 1
	case KindBFloat:
		return 16
	case KindFloat8E4M3, KindFloat8E5M2:
		return 8
	}
	return 0
}

// BitsPerChar returns the storage width of one digit for the digit-string
// kinds, or zero for every other kind.
func (k Kind) BitsPerChar() int {
	switch k {
	case KindHex:
		return 4
	case KindOct:
		return 3
	case KindBin:
		return 1
	}
	return 0
}

// LengthOK validates a concrete bit length against the kind's precondition,
// failing with ErrInterpretation.
func (k Kind) LengthOK(n int) error {
	bad := false
	switch k {
	case KindUint, KindInt:
		bad = n < 1
	case KindUintBE, KindIntBE, KindUintLE, KindIntLE, KindUintNE, KindIntNE:
		bad = n < 8 || n%8 != 0
	case KindFloat, KindFloatLE, KindFloatNE:
		bad = n != 16 && n != 32 && n != 64
	case KindBFloat:
		bad = n != 16
	case KindFloat8E4M3, KindFloat8E5M2:
		bad = n != 8
	case KindHex:
		bad = n%4 != 0
	case KindOct:
		bad = n%3 != 0
	case KindBin, KindBits, KindPad:
		bad = n < 0
	case KindBool:
		bad = n != 1
	case KindUE, KindSE, KindUIE, KindSIE:
		bad = true // self-delimiting kinds take no length
	default:
		bad = true
	}
	if bad {
		return errors.WithMessagef(ErrInterpretation, "%v cannot have length %d", k, n)
	}
	return nil
}
