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
	"strings"

	"github.com/pkg/errors"
)

// Parse builds a sequence from a single literal. The accepted forms are
// 0x…/0X… (hex), 0o…/0O… (octal), 0b…/0B… (binary) and the keyword forms
// hex=…, oct=…, bin=…. Underscores may separate digits. A bare prefix with
// no digits is the empty sequence. Anything else fails with ErrValue.
func Parse(s string) (*Bits, error) {
	t := strings.TrimSpace(s)
	switch {
	case hasPrefixFold(t, "0x"):
		return FromHex(t[2:])
	case hasPrefixFold(t, "0o"):
		return FromOct(t[2:])
	case hasPrefixFold(t, "0b"):
		return FromBin(t[2:])
	case strings.HasPrefix(t, "hex="):
		return FromHex(t[4:])
	case strings.HasPrefix(t, "oct="):
		return FromOct(t[4:])
	case strings.HasPrefix(t, "bin="):
		return FromBin(t[4:])
	}
	return nil, errors.WithMessagef(ErrValue, "unrecognized literal %q", s)
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// FromHex builds a sequence from bare hex digits, four bits per digit,
// most-significant nibble first.
func FromHex(digits string) (*Bits, error) {
	return fromDigits(digits, 4, func(c byte) (uint64, bool) {
		switch {
		case c >= '0' && c <= '9':
			return uint64(c - '0'), true
		case c >= 'a' && c <= 'f':
			return uint64(c-'a') + 10, true
		case c >= 'A' && c <= 'F':
			return uint64(c-'A') + 10, true
		}
		return 0, false
	})
}

// FromOct builds a sequence from bare octal digits, three bits per digit.
func FromOct(digits string) (*Bits, error) {
	return fromDigits(digits, 3, func(c byte) (uint64, bool) {
		if c >= '0' && c <= '7' {
			return uint64(c - '0'), true
		}
		return 0, false
	})
}

// FromBin builds a sequence from bare binary digits, one bit per digit.
func FromBin(digits string) (*Bits, error) {
	return fromDigits(digits, 1, func(c byte) (uint64, bool) {
		if c == '0' || c == '1' {
			return uint64(c - '0'), true
		}
		return 0, false
	})
}

func fromDigits(digits string, width int, value func(byte) (uint64, bool)) (*Bits, error) {
	clean := make([]uint64, 0, len(digits))
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if c == '_' {
			continue
		}
		v, ok := value(c)
		if !ok {
			return nil, errors.WithMessagef(ErrValue, "invalid digit %q in literal %q", c, digits)
		}
		clean = append(clean, v)
	}
	b := newBits(len(clean) * width)
	for i, v := range clean {
		writeUint(b.data, i*width, width, v)
	}
	return b, nil
}
