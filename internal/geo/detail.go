// Package geo is the host-side polygon mesh: points, primitives with
// vertices, typed tuple attributes on primitives and vertices, and
// primitive groups. Offsets are dense indices; primitives added together
// occupy a contiguous offset range.
package geo

import (
	"fmt"
	"slices"

	"cogentcore.org/core/math32"
)

// Offset addresses a primitive or a vertex.
type Offset int

// PrimType is the kind of a primitive.
type PrimType uint8

const (
	PrimPoly PrimType = iota
	PrimPolySoup
	PrimCurve
)

func (t PrimType) String() string {
	switch t {
	case PrimPoly:
		return "Poly"
	case PrimPolySoup:
		return "PolySoup"
	case PrimCurve:
		return "Curve"
	default:
		return fmt.Sprintf("PrimType(%d)", uint8(t))
	}
}

// IsPolygonal reports whether the primitive contributes faces.
func (t PrimType) IsPolygonal() bool {
	return t == PrimPoly || t == PrimPolySoup
}

// Primitive is a sequence of vertices, each referencing a point.
type Primitive struct {
	offset   Offset
	typ      PrimType
	vertices []Offset
}

func (p *Primitive) Offset() Offset       { return p.offset }
func (p *Primitive) Type() PrimType       { return p.typ }
func (p *Primitive) VertexCount() int     { return len(p.vertices) }
func (p *Primitive) Vertex(i int) Offset  { return p.vertices[i] }
func (p *Primitive) Vertices() []Offset   { return slices.Clone(p.vertices) }

// Detail is the mesh container.
type Detail struct {
	points      []math32.Vector3
	vertexPoint []int
	prims       []*Primitive

	primAttrs   *attrSet
	vertexAttrs *attrSet

	groups     map[string]*PrimitiveGroup
	groupOrder []string
}

// NewDetail returns an empty detail.
func NewDetail() *Detail {
	return &Detail{
		primAttrs:   newAttrSet(OwnerPrimitive),
		vertexAttrs: newAttrSet(OwnerVertex),
		groups:      make(map[string]*PrimitiveGroup),
	}
}

// AddPoint appends a point and returns its index.
func (d *Detail) AddPoint(p math32.Vector3) int {
	d.points = append(d.points, p)
	return len(d.points) - 1
}

// AddPoints appends points and returns the index of the first one.
func (d *Detail) AddPoints(ps ...math32.Vector3) int {
	first := len(d.points)
	d.points = append(d.points, ps...)
	return first
}

func (d *Detail) NumPoints() int                { return len(d.points) }
func (d *Detail) Pos3(i int) math32.Vector3     { return d.points[i] }
func (d *Detail) Points() []math32.Vector3      { return slices.Clone(d.points) }
func (d *Detail) NumPrimitives() int            { return len(d.prims) }
func (d *Detail) NumVertices() int              { return len(d.vertexPoint) }
func (d *Detail) Primitive(off Offset) *Primitive { return d.prims[off] }

// Primitives returns all primitives in offset order.
func (d *Detail) Primitives() []*Primitive {
	return slices.Clone(d.prims)
}

// AddPrimitive appends a primitive whose vertices reference pointIdx.
func (d *Detail) AddPrimitive(t PrimType, pointIdx ...int) (Offset, error) {
	for _, pi := range pointIdx {
		if pi < 0 || pi >= len(d.points) {
			return -1, fmt.Errorf("point index %d out of range [0, %d)", pi, len(d.points))
		}
	}
	p := &Primitive{offset: Offset(len(d.prims)), typ: t}
	for _, pi := range pointIdx {
		p.vertices = append(p.vertices, Offset(len(d.vertexPoint)))
		d.vertexPoint = append(d.vertexPoint, pi)
	}
	d.prims = append(d.prims, p)
	d.primAttrs.resize(len(d.prims))
	d.vertexAttrs.resize(len(d.vertexPoint))
	return p.offset, nil
}

// AddPolygon appends a closed polygon.
func (d *Detail) AddPolygon(pointIdx ...int) (Offset, error) {
	return d.AddPrimitive(PrimPoly, pointIdx...)
}

// PointIndex returns the point referenced by vertex i of p.
func (d *Detail) PointIndex(p *Primitive, i int) int {
	return d.vertexPoint[p.vertices[i]]
}

// VertexPoint returns the point referenced by a vertex offset.
func (d *Detail) VertexPoint(v Offset) int {
	return d.vertexPoint[v]
}

// AddIntTuple adds (or reuses) an integer attribute.
func (d *Detail) AddIntTuple(owner Owner, name string, size int, storage Storage) *Attribute {
	if storage != StorageInt8 {
		storage = StorageInt32
	}
	return d.set(owner).add(name, storage, size, d.count(owner))
}

// AddFloatTuple adds (or reuses) a single precision float attribute.
func (d *Detail) AddFloatTuple(owner Owner, name string, size int) *Attribute {
	return d.set(owner).add(name, StorageFloat32, size, d.count(owner))
}

// AddStringTuple adds (or reuses) a string attribute.
func (d *Detail) AddStringTuple(owner Owner, name string, size int) *Attribute {
	return d.set(owner).add(name, StorageString, size, d.count(owner))
}

// FindPrimitiveAttribute returns nil if name does not exist.
func (d *Detail) FindPrimitiveAttribute(name string) *Attribute {
	return d.primAttrs.find(name)
}

// FindVertexAttribute returns nil if name does not exist.
func (d *Detail) FindVertexAttribute(name string) *Attribute {
	return d.vertexAttrs.find(name)
}

// PrimitiveAttributes returns primitive attributes in creation order.
func (d *Detail) PrimitiveAttributes() []*Attribute {
	return d.primAttrs.all()
}

// VertexAttributes returns vertex attributes in creation order.
func (d *Detail) VertexAttributes() []*Attribute {
	return d.vertexAttrs.all()
}

// DestroyPrimitiveAttribute removes name if present.
func (d *Detail) DestroyPrimitiveAttribute(name string) {
	d.primAttrs.remove(name)
}

func (d *Detail) set(owner Owner) *attrSet {
	if owner == OwnerVertex {
		return d.vertexAttrs
	}
	return d.primAttrs
}

func (d *Detail) count(owner Owner) int {
	if owner == OwnerVertex {
		return len(d.vertexPoint)
	}
	return len(d.prims)
}

// Clone returns a deep copy of d.
func (d *Detail) Clone() *Detail {
	c := &Detail{
		points:      slices.Clone(d.points),
		vertexPoint: slices.Clone(d.vertexPoint),
		primAttrs:   d.primAttrs.clone(),
		vertexAttrs: d.vertexAttrs.clone(),
		groups:      make(map[string]*PrimitiveGroup, len(d.groups)),
		groupOrder:  slices.Clone(d.groupOrder),
	}
	c.prims = make([]*Primitive, len(d.prims))
	for i, p := range d.prims {
		c.prims[i] = &Primitive{offset: p.offset, typ: p.typ, vertices: slices.Clone(p.vertices)}
	}
	for k, g := range d.groups {
		c.groups[k] = &PrimitiveGroup{name: g.name, members: slices.Clone(g.members)}
	}
	return c
}

// Bounds returns the bounding box of all points.
func (d *Detail) Bounds() math32.Box3 {
	var b math32.Box3
	b.SetFromPoints(d.points)
	return b
}
