// Package attrmap implements the engine-side typed attribute store: an
// ordered map from attribute keys to values of one of eight primitive types.
package attrmap

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// PrimitiveType is the declared type of an attribute value.
type PrimitiveType uint8

const (
	Undefined PrimitiveType = iota
	Bool
	Int
	Float
	String
	BoolArray
	IntArray
	FloatArray
	StringArray
)

var typeNames = [...]string{
	Undefined:   "undefined",
	Bool:        "bool",
	Int:         "int",
	Float:       "float",
	String:      "string",
	BoolArray:   "bool[]",
	IntArray:    "int[]",
	FloatArray:  "float[]",
	StringArray: "string[]",
}

func (t PrimitiveType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "PrimitiveType(" + strconv.Itoa(int(t)) + ")"
}

// IsArray reports whether t is one of the array types.
func (t PrimitiveType) IsArray() bool {
	return t >= BoolArray && t <= StringArray
}

// Element returns the scalar type of an array type, or t itself.
func (t PrimitiveType) Element() PrimitiveType {
	if t.IsArray() {
		return t - BoolArray + Bool
	}
	return t
}

// Value is a tagged union over the primitive types. The zero Value is
// Undefined. Array payloads are owned by the Value and never shared with
// the caller.
type Value struct {
	typ PrimitiveType
	b   bool
	i   int32
	f   float64
	s   string
	bs  []bool
	is  []int32
	fs  []float64
	ss  []string
}

// BoolValue returns a Bool value.
func BoolValue(v bool) Value { return Value{typ: Bool, b: v} }

// IntValue returns an Int value.
func IntValue(v int32) Value { return Value{typ: Int, i: v} }

// FloatValue returns a Float value.
func FloatValue(v float64) Value { return Value{typ: Float, f: v} }

// StringValue returns a String value.
func StringValue(v string) Value { return Value{typ: String, s: v} }

// BoolArrayValue returns a BoolArray value holding a copy of v.
func BoolArrayValue(v []bool) Value { return Value{typ: BoolArray, bs: slices.Clone(v)} }

// IntArrayValue returns an IntArray value holding a copy of v.
func IntArrayValue(v []int32) Value { return Value{typ: IntArray, is: slices.Clone(v)} }

// FloatArrayValue returns a FloatArray value holding a copy of v.
func FloatArrayValue(v []float64) Value { return Value{typ: FloatArray, fs: slices.Clone(v)} }

// StringArrayValue returns a StringArray value holding a copy of v.
func StringArrayValue(v []string) Value { return Value{typ: StringArray, ss: slices.Clone(v)} }

// Type returns the declared type of v.
func (v Value) Type() PrimitiveType { return v.typ }

// IsDefined reports whether v carries a value.
func (v Value) IsDefined() bool { return v.typ != Undefined }

// AsBool returns the bool held by v and whether v is a Bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.typ == Bool }

// AsInt returns the int32 held by v and whether v is an Int.
func (v Value) AsInt() (int32, bool) { return v.i, v.typ == Int }

// AsFloat returns the float64 held by v and whether v is a Float.
func (v Value) AsFloat() (float64, bool) { return v.f, v.typ == Float }

// AsString returns the string held by v and whether v is a String.
func (v Value) AsString() (string, bool) { return v.s, v.typ == String }

// AsBoolArray returns a copy of the elements held by v and whether v is a BoolArray.
func (v Value) AsBoolArray() ([]bool, bool) { return slices.Clone(v.bs), v.typ == BoolArray }

// AsIntArray returns a copy of the elements held by v and whether v is an IntArray.
func (v Value) AsIntArray() ([]int32, bool) { return slices.Clone(v.is), v.typ == IntArray }

// AsFloatArray returns a copy of the elements held by v and whether v is a FloatArray.
func (v Value) AsFloatArray() ([]float64, bool) { return slices.Clone(v.fs), v.typ == FloatArray }

// AsStringArray returns a copy of the elements held by v and whether v is a StringArray.
func (v Value) AsStringArray() ([]string, bool) { return slices.Clone(v.ss), v.typ == StringArray }

// Len returns 1 for scalars, the element count for arrays and 0 for
// undefined values.
func (v Value) Len() int {
	switch v.typ {
	case Bool, Int, Float, String:
		return 1
	case BoolArray:
		return len(v.bs)
	case IntArray:
		return len(v.is)
	case FloatArray:
		return len(v.fs)
	case StringArray:
		return len(v.ss)
	default:
		return 0
	}
}

// Equal reports whether v and o have the same type and contents.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case Bool:
		return v.b == o.b
	case Int:
		return v.i == o.i
	case Float:
		return v.f == o.f
	case String:
		return v.s == o.s
	case BoolArray:
		return slices.Equal(v.bs, o.bs)
	case IntArray:
		return slices.Equal(v.is, o.is)
	case FloatArray:
		return slices.Equal(v.fs, o.fs)
	case StringArray:
		return slices.Equal(v.ss, o.ss)
	default:
		return true
	}
}

// Format renders v for logs and diagnostics.
func (v Value) Format() string {
	switch v.typ {
	case Bool:
		return strconv.FormatBool(v.b)
	case Int:
		return strconv.FormatInt(int64(v.i), 10)
	case Float:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case String:
		return strconv.Quote(v.s)
	case BoolArray:
		return formatSlice(v.bs, strconv.FormatBool)
	case IntArray:
		return formatSlice(v.is, func(i int32) string { return strconv.FormatInt(int64(i), 10) })
	case FloatArray:
		return formatSlice(v.fs, func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) })
	case StringArray:
		return formatSlice(v.ss, strconv.Quote)
	default:
		return "<undefined>"
	}
}

func formatSlice[T any](s []T, f func(T) string) string {
	parts := make([]string, len(s))
	for i, e := range s {
		parts[i] = f(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// GoString implements fmt.GoStringer so %#v stays readable in test failures.
func (v Value) GoString() string {
	return fmt.Sprintf("attrmap.Value{%s: %s}", v.typ, v.Format())
}
