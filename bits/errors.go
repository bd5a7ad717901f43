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

import "github.com/google/bitbox/core/fault"

const (
	// ErrValue is the cause of every malformed-argument failure: bad literal
	// syntax, mismatched lengths for equal-length bitwise operations,
	// negative or out-of-range length arguments, empty search needles.
	ErrValue = fault.Const("invalid value")

	// ErrInterpretation is the cause of every failure to interpret a bit
	// range as a requested kind, such as a hex view of a length that is not
	// a multiple of four.
	ErrInterpretation = fault.Const("bits cannot be interpreted as requested")

	// ErrIndex is the cause of every bit-position failure: a position
	// outside [-length, length).
	ErrIndex = fault.Const("bit position out of range")

	// ErrExhausted is the cause of every attempt to read more bits than
	// remain in a sequence.
	ErrExhausted = fault.Const("reading past the end of the bit sequence")
)
