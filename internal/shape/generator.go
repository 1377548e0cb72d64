package shape

import (
	"context"

	"github.com/specialistvlad/palladiogo/internal/attrmap"
	"github.com/specialistvlad/palladiogo/internal/ctxlog"
	"github.com/specialistvlad/palladiogo/internal/geo"
	"github.com/specialistvlad/palladiogo/internal/partition"
	"github.com/specialistvlad/palladiogo/internal/prt"
)

// ResolveMapProvider returns the resolve map of a rule package.
type ResolveMapProvider interface {
	ResolveMap(ctx context.Context, rpkPath string) (prt.ResolveMap, error)
}

// Generator extends Converter by harvesting primitive attributes as rule
// attributes and finalizing the initial shapes.
type Generator struct {
	Converter
	ResolveMaps ResolveMapProvider
}

// isMainAttribute reports whether name is one of the main attributes or the
// classifier name attribute.
func isMainAttribute(name string) bool {
	switch name {
	case AttrRPK, AttrRuleFile, AttrStartRule, AttrStyle, AttrRandomSeed, partition.NameAttr:
		return true
	}
	return false
}

// Get extracts the geometry of every class and finalizes one initial shape
// per class. Main attributes and rule attributes are read from the first
// primitive of each class. Shapes that cannot be created keep a nil slot.
func (g *Generator) Get(ctx context.Context, d *geo.Detail, cls partition.Classifier, sd *Data) {
	logger := ctxlog.FromContext(ctx)
	first := sd.Len()
	g.Converter.Get(ctx, d, cls, sd)

	excluded := make(map[string]bool)
	for _, p := range d.Primitives() {
		excluded[cls.NameFor(d, p)] = true
	}
	var attrs []*geo.Attribute
	for _, a := range d.PrimitiveAttributes() {
		if isMainAttribute(a.Name()) || excluded[a.Name()] {
			continue
		}
		attrs = append(attrs, a)
	}

	for i := first; i < sd.Len(); i++ {
		name := sd.Name(i)
		fail := func(msg string, args ...any) {
			logger.Warn(msg, append([]any{"shape", i, "name", name}, args...)...)
			sd.AddShape(nil, attrmap.NewBuilder(), attrmap.Empty)
		}

		prims := sd.Primitives(i)
		if len(prims) == 0 {
			fail("Shape has no primitives.")
			continue
		}
		firstPrim := prims[0]
		ma, ok := ReadMainAttributes(d, firstPrim, g.Names)
		if !ok {
			fail("Shape has no main attributes.")
			continue
		}
		rm, err := g.ResolveMaps.ResolveMap(ctx, ma.RPK)
		if err != nil {
			fail("Could not get resolve map.", "rpk", ma.RPK, "error", err)
			continue
		}

		amb := attrmap.NewBuilder()
		style := ma.StyleOrDefault()
		for _, a := range attrs {
			g.harvest(ctx, amb, g.Names.ToRuleAttr(style, a.Name()), a, firstPrim)
		}
		ruleAttrs := amb.CreateAttributeMap()

		b := sd.Builder(i)
		b.SetAttributes(ma.RuleFile, ma.FullyQualifiedStartRule(), sd.Seed(i), name, ruleAttrs, rm)
		is, err := b.CreateInitialShapeAndReset()
		if err != nil {
			logger.Warn("Failed to create initial shape.", "shape", i, "name", name, "error", err)
			sd.AddShape(nil, amb, ruleAttrs)
			continue
		}
		sd.AddShape(is, amb, ruleAttrs)
	}
}

// harvest converts one primitive attribute value: floats stay floats, ints
// become bools (v > 0) and strings are decoded from the host encoding.
// Tuples of more than one component become arrays.
func (g *Generator) harvest(ctx context.Context, amb *attrmap.Builder, key string, a *geo.Attribute, off geo.Offset) {
	n := a.TupleSize()
	var err error
	switch a.Class() {
	case geo.ClassFloat:
		if n == 1 {
			err = amb.SetFloat(key, a.Float(off, 0))
			break
		}
		vs := make([]float64, n)
		for c := range vs {
			vs[c] = a.Float(off, c)
		}
		err = amb.SetFloatArray(key, vs)
	case geo.ClassInt:
		if n == 1 {
			err = amb.SetBool(key, a.Int(off, 0) > 0)
			break
		}
		vs := make([]bool, n)
		for c := range vs {
			vs[c] = a.Int(off, c) > 0
		}
		err = amb.SetBoolArray(key, vs)
	case geo.ClassString:
		if n == 1 {
			err = amb.SetString(key, g.Names.FromHost(a.String(off, 0)))
			break
		}
		vs := make([]string, n)
		for c := range vs {
			vs[c] = g.Names.FromHost(a.String(off, c))
		}
		err = amb.SetStringArray(key, vs)
	default:
		ctxlog.FromContext(ctx).Warn("Unsupported primitive attribute storage.", "attribute", a.Name(), "storage", a.Storage().String())
		return
	}
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Could not convert primitive attribute.", "attribute", a.Name(), "error", err)
	}
}
