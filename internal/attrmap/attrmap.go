package attrmap

import (
	"errors"
	"fmt"
	"slices"
)

// ErrTypeMismatch is returned when a key is rewritten with a different type.
var ErrTypeMismatch = errors.New("attribute type mismatch")

// Builder accumulates attributes. Keys keep the order of their first write.
// A key's type is fixed by its first write.
type Builder struct {
	keys   []string
	values map[string]Value
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{values: make(map[string]Value)}
}

// Set stores v under key.
func (b *Builder) Set(key string, v Value) error {
	if old, ok := b.values[key]; ok {
		if old.typ != v.typ {
			return fmt.Errorf("%w: %q is %s, cannot set %s", ErrTypeMismatch, key, old.typ, v.typ)
		}
	} else {
		b.keys = append(b.keys, key)
	}
	b.values[key] = v
	return nil
}

// SetBool is Set with a BoolValue.
func (b *Builder) SetBool(key string, v bool) error {
	return b.Set(key, BoolValue(v))
}

// SetInt is Set with an IntValue.
func (b *Builder) SetInt(key string, v int32) error {
	return b.Set(key, IntValue(v))
}

// SetFloat is Set with a FloatValue.
func (b *Builder) SetFloat(key string, v float64) error {
	return b.Set(key, FloatValue(v))
}

// SetString is Set with a StringValue.
func (b *Builder) SetString(key string, v string) error {
	return b.Set(key, StringValue(v))
}

// SetBoolArray is Set with a BoolArrayValue.
func (b *Builder) SetBoolArray(key string, v []bool) error {
	return b.Set(key, BoolArrayValue(v))
}

// SetIntArray is Set with an IntArrayValue.
func (b *Builder) SetIntArray(key string, v []int32) error {
	return b.Set(key, IntArrayValue(v))
}

// SetFloatArray is Set with a FloatArrayValue.
func (b *Builder) SetFloatArray(key string, v []float64) error {
	return b.Set(key, FloatArrayValue(v))
}

// SetStringArray is Set with a StringArrayValue.
func (b *Builder) SetStringArray(key string, v []string) error {
	return b.Set(key, StringArrayValue(v))
}

// Len returns the number of keys.
func (b *Builder) Len() int {
	return len(b.keys)
}

// Has reports whether key was written.
func (b *Builder) Has(key string) bool {
	_, ok := b.values[key]
	return ok
}

// Type returns the type of key, Undefined if absent.
func (b *Builder) Type(key string) PrimitiveType {
	return b.values[key].typ
}

// CreateAttributeMap returns an immutable snapshot of the current contents.
func (b *Builder) CreateAttributeMap() *Map {
	m := &Map{
		keys:   slices.Clone(b.keys),
		values: make(map[string]Value, len(b.values)),
	}
	for k, v := range b.values {
		m.values[k] = v
	}
	return m
}

// CreateAttributeMapAndReset returns a snapshot and empties the builder.
func (b *Builder) CreateAttributeMapAndReset() *Map {
	m := &Map{keys: b.keys, values: b.values}
	b.keys = nil
	b.values = make(map[string]Value)
	return m
}

// Map is an immutable attribute map.
type Map struct {
	keys   []string
	values map[string]Value
}

// Empty is a map without keys.
var Empty = &Map{values: map[string]Value{}}

// Keys returns all keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// Len returns the number of keys.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// HasKey reports whether key is present.
func (m *Map) HasKey(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.values[key]
	return ok
}

// Type returns the declared type of key, Undefined if absent.
func (m *Map) Type(key string) PrimitiveType {
	if m == nil {
		return Undefined
	}
	return m.values[key].typ
}

// Value returns the value for key.
func (m *Map) Value(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Bool returns the value of key and whether it is a bool.
func (m *Map) Bool(key string) (bool, bool) {
	v, _ := m.Value(key)
	return v.AsBool()
}

// Int returns the value of key and whether it is an int32.
func (m *Map) Int(key string) (int32, bool) {
	v, _ := m.Value(key)
	return v.AsInt()
}

// Float returns the value of key and whether it is a float64.
func (m *Map) Float(key string) (float64, bool) {
	v, _ := m.Value(key)
	return v.AsFloat()
}

// String returns the value of key and whether it is a string.
func (m *Map) String(key string) (string, bool) {
	v, _ := m.Value(key)
	return v.AsString()
}

// BoolArray returns a copy of the bool array stored under key and whether it exists.
func (m *Map) BoolArray(key string) ([]bool, bool) {
	v, _ := m.Value(key)
	return v.AsBoolArray()
}

// IntArray returns a copy of the int32 array stored under key and whether it exists.
func (m *Map) IntArray(key string) ([]int32, bool) {
	v, _ := m.Value(key)
	return v.AsIntArray()
}

// FloatArray returns a copy of the float64 array stored under key and whether it exists.
func (m *Map) FloatArray(key string) ([]float64, bool) {
	v, _ := m.Value(key)
	return v.AsFloatArray()
}

// StringArray returns a copy of the string array stored under key and whether it exists.
func (m *Map) StringArray(key string) ([]string, bool) {
	v, _ := m.Value(key)
	return v.AsStringArray()
}

// ToBuilder returns a builder seeded with the contents of m.
func (m *Map) ToBuilder() *Builder {
	b := NewBuilder()
	for _, k := range m.Keys() {
		_ = b.Set(k, m.values[k])
	}
	return b
}
