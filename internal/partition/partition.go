// Package partition groups detail primitives into initial shapes by the
// value of a classifier attribute.
package partition

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/specialistvlad/palladiogo/internal/geo"
)

const (
	// DefaultClassifierName is the primitive attribute used when no
	// classifier name is configured.
	DefaultClassifierName = "primCls"
	// NameAttr is a string primitive attribute naming the classifier
	// attribute of each primitive. It overrides Classifier.Name where set.
	NameAttr = "pldPrimClsName"
)

// Key is a classifier value. String keys order before int keys.
type Key struct {
	isInt bool
	str   string
	num   int32
}

// StringKey returns a string classifier value.
func StringKey(s string) Key { return Key{str: s} }

// IntKey returns an integer classifier value.
func IntKey(i int32) Key { return Key{isInt: true, num: i} }

// IsInt reports whether k holds an integer.
func (k Key) IsInt() bool { return k.isInt }

// Str returns the string value; empty for int keys.
func (k Key) Str() string { return k.str }

// Int returns the integer value; zero for string keys.
func (k Key) Int() int32 { return k.num }

// Compare orders keys: all string keys before all int keys, then by value.
func (k Key) Compare(o Key) int {
	if k.isInt != o.isInt {
		if k.isInt {
			return 1
		}
		return -1
	}
	if k.isInt {
		return cmp.Compare(k.num, o.num)
	}
	return cmp.Compare(k.str, o.str)
}

func (k Key) String() string {
	if k.isInt {
		return strconv.FormatInt(int64(k.num), 10)
	}
	return strconv.Quote(k.str)
}

// Classifier derives a Key per primitive from the attribute Name.
type Classifier struct {
	Name string
}

// NewClassifier returns a classifier for name, or for DefaultClassifierName
// if name is empty.
func NewClassifier(name string) Classifier {
	if name == "" {
		name = DefaultClassifierName
	}
	return Classifier{Name: name}
}

// NameFor returns the classifier attribute name used for p.
func (c Classifier) NameFor(d *geo.Detail, p *geo.Primitive) string {
	if na := d.FindPrimitiveAttribute(NameAttr); na != nil {
		if n := na.String(p.Offset(), 0); n != "" {
			return n
		}
	}
	return c.Name
}

// ForPrimitive returns the classifier value of p. String and int attributes
// are used as is. Without a usable attribute every primitive is its own
// class, keyed by its offset.
func (c Classifier) ForPrimitive(d *geo.Detail, p *geo.Primitive) Key {
	attr := d.FindPrimitiveAttribute(c.NameFor(d, p))
	if attr == nil {
		return IntKey(int32(p.Offset()))
	}
	switch attr.Class() {
	case geo.ClassString:
		return StringKey(attr.String(p.Offset(), 0))
	case geo.ClassInt:
		return IntKey(attr.Int(p.Offset(), 0))
	default:
		return IntKey(int32(p.Offset()))
	}
}

// Put writes key and the classifier name onto the given primitives,
// creating the classifier attribute with the matching storage.
func (c Classifier) Put(d *geo.Detail, prims []geo.Offset, key Key) {
	names := d.AddStringTuple(geo.OwnerPrimitive, NameAttr, 1)
	var attr *geo.Attribute
	if key.isInt {
		attr = d.AddIntTuple(geo.OwnerPrimitive, c.Name, 1, geo.StorageInt32)
	} else {
		attr = d.AddStringTuple(geo.OwnerPrimitive, c.Name, 1)
	}
	for _, r := range geo.Ranges(prims) {
		names.SetStringRange(r.Start, r.Size, 0, c.Name)
		if key.isInt {
			attr.SetIntBlock(r.Start, r.Size, 0, key.num)
		} else {
			attr.SetStringRange(r.Start, r.Size, 0, key.str)
		}
	}
}

// Class is one equivalence class of primitives.
type Class struct {
	Key        Key
	Primitives []geo.Offset
}

// Partition is the set of classes of one detail, ordered by key.
type Partition struct {
	classes []Class
}

// New partitions all primitives of d in one scan. Primitives keep their
// offset order inside a class.
func New(d *geo.Detail, c Classifier) *Partition {
	index := make(map[Key]int)
	var classes []Class
	for _, p := range d.Primitives() {
		k := c.ForPrimitive(d, p)
		i, ok := index[k]
		if !ok {
			i = len(classes)
			index[k] = i
			classes = append(classes, Class{Key: k})
		}
		classes[i].Primitives = append(classes[i].Primitives, p.Offset())
	}
	slices.SortFunc(classes, func(a, b Class) int { return a.Key.Compare(b.Key) })
	return &Partition{classes: classes}
}

// Classes returns the classes in key order.
func (p *Partition) Classes() []Class {
	return p.classes
}

// Len returns the number of classes.
func (p *Partition) Len() int {
	return len(p.classes)
}
