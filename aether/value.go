//
// Copyright (c) 2018, Přemysl Janouch <p@janouch.name>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
// WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY
// SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
// WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION
// OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN
// CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
//

// Package aether implements an interactive evaluation shell for the Aether
// language: tagged values exchanged with an embedded evaluator, the evaluator
// bridge, line sources and the session loop driving them.
package aether

import (
	"fmt"
	"io"
	"strconv"
)

// --- Values ------------------------------------------------------------------

// VType denotes the type of a value.
type VType int

const (
	// VTypeInt denotes a 64-bit signed integer value.
	VTypeInt VType = iota
	// VTypeFloat denotes a double-precision floating-point value.
	VTypeFloat
	// VTypeString denotes a string value.
	VTypeString
)

func (t VType) String() string {
	switch t {
	case VTypeInt:
		return "int"
	case VTypeFloat:
		return "float"
	case VTypeString:
		return "string"
	}
	panic("unknown value type")
}

// V is a value exchanged with the evaluator. The only implementations are
// Int, Float and String, values are immutable once made.
type V interface {
	Type() VType
	sealed()
}

// Int is the integer variant of V.
type Int int64

// Float is the floating-point variant of V.
type Float float64

// String is the string variant of V.
type String string

func (Int) Type() VType    { return VTypeInt }
func (Float) Type() VType  { return VTypeFloat }
func (String) Type() VType { return VTypeString }

func (Int) sealed()    {}
func (Float) sealed()  {}
func (String) sealed() {}

// MakeInt creates a new integer value.
func MakeInt(n int64) V { return Int(n) }

// MakeFloat creates a new floating-point value.
func MakeFloat(f float64) V { return Float(f) }

// MakeString creates a new string value.
func MakeString(s string) V { return String(s) }

// IsInt tells whether v holds an integer. It is false for nil.
func IsInt(v V) bool {
	_, ok := v.(Int)
	return ok
}

// IsFloat tells whether v holds a floating-point number. It is false for nil.
func IsFloat(v V) bool {
	_, ok := v.(Float)
	return ok
}

// IsString tells whether v holds a string. It is false for nil.
func IsString(v V) bool {
	_, ok := v.(String)
	return ok
}

// AsInt returns the integer held by v, if that is what it holds.
func AsInt(v V) (int64, bool) {
	n, ok := v.(Int)
	return int64(n), ok
}

// AsFloat returns the number held by v, if it is a Float.
func AsFloat(v V) (float64, bool) {
	f, ok := v.(Float)
	return float64(f), ok
}

// AsString returns the string held by v, if it is a String.
func AsString(v V) (string, bool) {
	s, ok := v.(String)
	return string(s), ok
}

func takeMismatch(want VType, v V) string {
	if v == nil {
		return fmt.Sprintf("aether: take %s from a nil value", want)
	}
	return fmt.Sprintf("aether: take %s from a %s value", want, v.Type())
}

// TakeInt returns the integer held by v. Calling it on any other variant
// is a programming error and panics.
func TakeInt(v V) int64 {
	n, ok := AsInt(v)
	if !ok {
		panic(takeMismatch(VTypeInt, v))
	}
	return n
}

// TakeFloat returns the number held by v and panics on other variants.
func TakeFloat(v V) float64 {
	f, ok := AsFloat(v)
	if !ok {
		panic(takeMismatch(VTypeFloat, v))
	}
	return f
}

// TakeString returns the string held by v and panics on other variants.
func TakeString(v V) string {
	s, ok := AsString(v)
	if !ok {
		panic(takeMismatch(VTypeString, v))
	}
	return s
}

// --- Printing ----------------------------------------------------------------

// FormatV renders a value: integers in decimal, floats in the shortest form
// that reads back to the same number (exponent form for large magnitudes,
// infinities as +Inf and -Inf), strings as they are.
func FormatV(v V) string {
	switch v := v.(type) {
	case Int:
		return strconv.FormatInt(int64(v), 10)
	case Float:
		return strconv.FormatFloat(float64(v), 'g', -1, 64)
	case String:
		return string(v)
	case nil:
		return ""
	}
	panic("unknown value type")
}

// PrintV serializes a value to the given writer, ignoring I/O errors.
func PrintV(w io.Writer, v V) {
	_, _ = io.WriteString(w, FormatV(v))
}
