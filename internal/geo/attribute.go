package geo

import "fmt"

// Owner is the element class an attribute is attached to.
type Owner uint8

const (
	OwnerPrimitive Owner = iota
	OwnerVertex
)

func (o Owner) String() string {
	if o == OwnerVertex {
		return "vertex"
	}
	return "primitive"
}

// Storage is the concrete element storage of an attribute.
type Storage uint8

const (
	StorageInt8 Storage = iota
	StorageInt32
	StorageFloat32
	StorageString
)

func (s Storage) String() string {
	switch s {
	case StorageInt8:
		return "int8"
	case StorageInt32:
		return "int32"
	case StorageFloat32:
		return "float32"
	case StorageString:
		return "string"
	default:
		return fmt.Sprintf("Storage(%d)", uint8(s))
	}
}

// StorageClass groups storages the way readers care about them.
type StorageClass uint8

const (
	ClassInt StorageClass = iota
	ClassFloat
	ClassString
)

// Class returns the storage class of s.
func (s Storage) Class() StorageClass {
	switch s {
	case StorageInt8, StorageInt32:
		return ClassInt
	case StorageFloat32:
		return ClassFloat
	default:
		return ClassString
	}
}

// Attribute is a named tuple array with one tuple per element. Components
// outside the tuple size are ignored on write and read as zero, so writers
// with a longer array truncate and writers with a shorter one leave zeros.
type Attribute struct {
	name    string
	owner   Owner
	storage Storage
	tuple   int
	n       int

	i8  []int8
	i32 []int32
	f32 []float32
	str []string
}

func newAttribute(name string, owner Owner, storage Storage, tuple, n int) *Attribute {
	if tuple < 1 {
		tuple = 1
	}
	a := &Attribute{name: name, owner: owner, storage: storage, tuple: tuple}
	a.resize(n)
	return a
}

func (a *Attribute) resize(n int) {
	size := n * a.tuple
	switch a.storage {
	case StorageInt8:
		a.i8 = grow(a.i8, size)
	case StorageInt32:
		a.i32 = grow(a.i32, size)
	case StorageFloat32:
		a.f32 = grow(a.f32, size)
	case StorageString:
		a.str = grow(a.str, size)
	}
	a.n = n
}

func grow[T any](s []T, size int) []T {
	if size <= len(s) {
		return s[:size]
	}
	return append(s, make([]T, size-len(s))...)
}

func (a *Attribute) Name() string         { return a.name }
func (a *Attribute) Owner() Owner         { return a.owner }
func (a *Attribute) Storage() Storage     { return a.storage }
func (a *Attribute) Class() StorageClass  { return a.storage.Class() }
func (a *Attribute) TupleSize() int       { return a.tuple }
func (a *Attribute) Len() int             { return a.n }

func (a *Attribute) index(off Offset, comp int) (int, bool) {
	if off < 0 || int(off) >= a.n || comp < 0 || comp >= a.tuple {
		return 0, false
	}
	return int(off)*a.tuple + comp, true
}

// Int reads an integer component. Float storage is truncated.
func (a *Attribute) Int(off Offset, comp int) int32 {
	i, ok := a.index(off, comp)
	if !ok {
		return 0
	}
	switch a.storage {
	case StorageInt8:
		return int32(a.i8[i])
	case StorageInt32:
		return a.i32[i]
	case StorageFloat32:
		return int32(a.f32[i])
	}
	return 0
}

// Float reads a numeric component as float64.
func (a *Attribute) Float(off Offset, comp int) float64 {
	i, ok := a.index(off, comp)
	if !ok {
		return 0
	}
	switch a.storage {
	case StorageInt8:
		return float64(a.i8[i])
	case StorageInt32:
		return float64(a.i32[i])
	case StorageFloat32:
		return float64(a.f32[i])
	}
	return 0
}

// String reads a string component.
func (a *Attribute) String(off Offset, comp int) string {
	i, ok := a.index(off, comp)
	if !ok || a.storage != StorageString {
		return ""
	}
	return a.str[i]
}

// SetInt writes one integer component.
func (a *Attribute) SetInt(off Offset, comp int, v int32) {
	a.SetIntBlock(off, 1, comp, v)
}

// SetFloat writes one float component.
func (a *Attribute) SetFloat(off Offset, comp int, v float32) {
	a.SetFloatBlock(off, 1, comp, v)
}

// SetString writes one string component.
func (a *Attribute) SetString(off Offset, comp int, v string) {
	a.SetStringRange(off, 1, comp, v)
}

// SetInt8Block broadcasts v into component comp of size elements starting at start.
func (a *Attribute) SetInt8Block(start Offset, size, comp int, v int8) {
	if a.storage != StorageInt8 {
		a.SetIntBlock(start, size, comp, int32(v))
		return
	}
	a.each(start, size, comp, func(i int) { a.i8[i] = v })
}

// SetIntBlock broadcasts v into component comp of size elements starting at start.
func (a *Attribute) SetIntBlock(start Offset, size, comp int, v int32) {
	switch a.storage {
	case StorageInt8:
		a.each(start, size, comp, func(i int) { a.i8[i] = int8(v) })
	case StorageInt32:
		a.each(start, size, comp, func(i int) { a.i32[i] = v })
	case StorageFloat32:
		a.each(start, size, comp, func(i int) { a.f32[i] = float32(v) })
	}
}

// SetFloatBlock broadcasts v into component comp of size elements starting at start.
func (a *Attribute) SetFloatBlock(start Offset, size, comp int, v float32) {
	if a.storage != StorageFloat32 {
		a.SetIntBlock(start, size, comp, int32(v))
		return
	}
	a.each(start, size, comp, func(i int) { a.f32[i] = v })
}

// SetStringRange writes v into component comp of size elements starting at start.
func (a *Attribute) SetStringRange(start Offset, size, comp int, v string) {
	if a.storage != StorageString {
		return
	}
	a.each(start, size, comp, func(i int) { a.str[i] = v })
}

func (a *Attribute) each(start Offset, size, comp int, f func(i int)) {
	if comp < 0 || comp >= a.tuple {
		return
	}
	end := int(start) + size
	if end > a.n {
		end = a.n
	}
	for off := max(int(start), 0); off < end; off++ {
		f(off*a.tuple + comp)
	}
}

func (a *Attribute) clone() *Attribute {
	c := *a
	c.i8 = append([]int8(nil), a.i8...)
	c.i32 = append([]int32(nil), a.i32...)
	c.f32 = append([]float32(nil), a.f32...)
	c.str = append([]string(nil), a.str...)
	return &c
}

// attrSet keeps attributes of one owner in creation order.
type attrSet struct {
	owner Owner
	order []string
	byKey map[string]*Attribute
}

func newAttrSet(owner Owner) *attrSet {
	return &attrSet{owner: owner, byKey: make(map[string]*Attribute)}
}

func (s *attrSet) find(name string) *Attribute {
	return s.byKey[name]
}

// add returns the existing attribute if it matches storage and tuple size,
// otherwise it replaces it with a fresh zeroed one.
func (s *attrSet) add(name string, storage Storage, tuple, n int) *Attribute {
	if tuple < 1 {
		tuple = 1
	}
	if a, ok := s.byKey[name]; ok {
		if a.storage == storage && a.tuple == tuple {
			return a
		}
		replaced := newAttribute(name, s.owner, storage, tuple, n)
		s.byKey[name] = replaced
		return replaced
	}
	a := newAttribute(name, s.owner, storage, tuple, n)
	s.byKey[name] = a
	s.order = append(s.order, name)
	return a
}

func (s *attrSet) remove(name string) {
	if _, ok := s.byKey[name]; !ok {
		return
	}
	delete(s.byKey, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *attrSet) all() []*Attribute {
	out := make([]*Attribute, 0, len(s.order))
	for _, n := range s.order {
		out = append(out, s.byKey[n])
	}
	return out
}

func (s *attrSet) resize(n int) {
	for _, a := range s.byKey {
		a.resize(n)
	}
}

func (s *attrSet) clone() *attrSet {
	c := newAttrSet(s.owner)
	c.order = append([]string(nil), s.order...)
	for k, a := range s.byKey {
		c.byKey[k] = a.clone()
	}
	return c
}
