// Package attrconv writes engine attribute maps onto detail primitives.
//
// A HandleMap is built once per batch of shapes from the keys of the first
// attribute map, bound to typed detail attributes by CreateAttributeHandles
// and then used for one broadcast write per key and primitive range.
package attrconv

import (
	"context"
	"log/slog"
	"slices"

	"github.com/specialistvlad/palladiogo/internal/attrmap"
	"github.com/specialistvlad/palladiogo/internal/ctxlog"
	"github.com/specialistvlad/palladiogo/internal/geo"
	"github.com/specialistvlad/palladiogo/internal/nameconv"
)

// HandleKind is the storage a ProtoHandle writes to.
type HandleKind uint8

const (
	NoHandle HandleKind = iota
	Int8Handle
	Int32Handle
	Float32Handle
	StringHandle
)

func (k HandleKind) String() string {
	switch k {
	case Int8Handle:
		return "int8"
	case Int32Handle:
		return "int32"
	case Float32Handle:
		return "float32"
	case StringHandle:
		return "string"
	default:
		return "none"
	}
}

// ProtoHandle is one cached accessor. Key is the first key mapped to the
// attribute and fixes its type; Keys lists every key mapping to it, in the
// order they were seen. Cardinality is 1 for scalars and the array length of
// the first map the key was seen in for arrays.
type ProtoHandle struct {
	Kind        HandleKind
	Attr        *geo.Attribute
	Key         string
	Keys        []string
	Type        attrmap.PrimitiveType
	Cardinality int
}

// HandleMap maps primitive attribute names to their handles.
type HandleMap map[string]*ProtoHandle

// names returns the primitive attribute names in sorted order.
func (hm HandleMap) names() []string {
	out := make([]string, 0, len(hm))
	for n := range hm {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// ExtractAttributeNames adds one unbound handle per primitive attribute name
// of the keys of m. The first key mapping to a name fixes type and
// cardinality; further keys of other styles, like Default$height and
// Night$height, are appended to Keys.
func ExtractAttributeNames(hm HandleMap, m *attrmap.Map, names *nameconv.Converter) {
	for _, key := range m.Keys() {
		primName := names.ToPrimAttr(key)
		if ph, ok := hm[primName]; ok {
			if !slices.Contains(ph.Keys, key) {
				ph.Keys = append(ph.Keys, key)
			}
			continue
		}
		v, _ := m.Value(key)
		hm[primName] = &ProtoHandle{
			Key:         key,
			Keys:        []string{key},
			Type:        v.Type(),
			Cardinality: cardinality(v),
		}
	}
}

func cardinality(v attrmap.Value) int {
	switch v.Type() {
	case attrmap.BoolArray, attrmap.IntArray, attrmap.FloatArray, attrmap.StringArray:
		return v.Len()
	default:
		return 1
	}
}

// CreateAttributeHandles binds every unbound handle to a primitive attribute
// of d, creating it if needed. Bound handles are left as they are. Float
// values are narrowed to single precision. Handles of unknown type stay
// unbound.
func CreateAttributeHandles(d *geo.Detail, hm HandleMap) {
	for _, name := range hm.names() {
		ph := hm[name]
		if ph.Kind != NoHandle {
			continue
		}
		switch ph.Type {
		case attrmap.Bool, attrmap.BoolArray:
			ph.Kind, ph.Attr = Int8Handle, d.AddIntTuple(geo.OwnerPrimitive, name, ph.Cardinality, geo.StorageInt8)
		case attrmap.Float, attrmap.FloatArray:
			ph.Kind, ph.Attr = Float32Handle, d.AddFloatTuple(geo.OwnerPrimitive, name, ph.Cardinality)
		case attrmap.Int, attrmap.IntArray:
			ph.Kind, ph.Attr = Int32Handle, d.AddIntTuple(geo.OwnerPrimitive, name, ph.Cardinality, geo.StorageInt32)
		case attrmap.String, attrmap.StringArray:
			ph.Kind, ph.Attr = StringHandle, d.AddStringTuple(geo.OwnerPrimitive, name, ph.Cardinality)
		default:
			ph.Kind, ph.Attr = NoHandle, nil
		}
	}
}

// SetAttributeValues writes the value of every handled key present in m to
// all primitives in [start, start+size). Keys sharing one attribute are
// written in order, so the last one present in m wins; values of another
// type than the handle are skipped. String values go through the host
// string cache of names and empty strings are not written. Int and bool
// arrays are not supported and are logged.
func SetAttributeValues(ctx context.Context, hm HandleMap, m *attrmap.Map, names *nameconv.Converter, start geo.Offset, size int) {
	logger := ctxlog.FromContext(ctx)
	for _, name := range hm.names() {
		ph := hm[name]
		if ph.Kind == NoHandle || ph.Attr == nil {
			continue
		}
		keys := ph.Keys
		if len(keys) == 0 {
			keys = []string{ph.Key}
		}
		for _, key := range keys {
			v, ok := m.Value(key)
			if !ok {
				continue
			}
			ph.write(logger, name, v, names, start, size)
		}
	}
}

func (ph *ProtoHandle) write(logger *slog.Logger, name string, v attrmap.Value, names *nameconv.Converter, start geo.Offset, size int) {
	switch ph.Kind {
	case Int8Handle:
		switch ph.Type {
		case attrmap.Bool:
			if b, ok := v.AsBool(); ok {
				ph.Attr.SetInt8Block(start, size, 0, boolToInt8(b))
			}
		case attrmap.BoolArray:
			logger.Error("Bool array attributes are not supported.", "attribute", name)
		}
	case Int32Handle:
		switch ph.Type {
		case attrmap.Int:
			if i, ok := v.AsInt(); ok {
				ph.Attr.SetIntBlock(start, size, 0, i)
			}
		case attrmap.IntArray:
			logger.Error("Int array attributes are not supported.", "attribute", name)
		}
	case Float32Handle:
		switch ph.Type {
		case attrmap.Float:
			if f, ok := v.AsFloat(); ok {
				ph.Attr.SetFloatBlock(start, size, 0, float32(f))
			}
		case attrmap.FloatArray:
			fs, _ := v.AsFloatArray()
			for i, f := range fs {
				ph.Attr.SetFloatBlock(start, size, i, float32(f))
			}
		}
	case StringHandle:
		switch ph.Type {
		case attrmap.String:
			if s, ok := v.AsString(); ok && s != "" {
				ph.Attr.SetStringRange(start, size, 0, names.HostString(s))
			}
		case attrmap.StringArray:
			ss, _ := v.AsStringArray()
			for i, s := range ss {
				if s != "" {
					ph.Attr.SetStringRange(start, size, i, names.HostString(s))
				}
			}
		}
	}
}

func boolToInt8(b bool) int8 {
	if b {
		return 1
	}
	return 0
}
