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

// Package bits provides a bit-exact binary container and the interpretations
// that give its content meaning.
//
// The container comes in two variants: Bits is immutable and hashable,
// Mutable adds the mutation algebra (append, prepend, insert, overwrite,
// delete and in-place transforms). Both hold a contiguous sequence of bits
// with a defined length; bits are stored most-significant-first, so the hex,
// octal and binary views map digits directly onto storage order.
//
// Interpretations are stateless views: integers of either endianness and
// signedness, IEEE-754 and reduced-precision floating point formats, digit
// strings, booleans and the two Exponential-Golomb code families. A view
// never mutates or aliases its source; violating a view's length
// precondition fails with ErrInterpretation.
//
// The package also carries the bit-pattern search engine (Find, RFind,
// FindAll, Split, Replace, Count, All, Any) and Array, a fixed-width element
// collection layered on the interpretation codec.
package bits
