package prt

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/palladiogo/internal/attrmap"
)

// Geometry is the merged polygon soup of one initial shape. Coords holds
// x,y,z triples; Indices refers to coordinate triples; FaceCounts holds the
// vertex count of each face.
type Geometry struct {
	Coords     []float64
	Indices    []uint32
	FaceCounts []uint32
	Holes      []uint32
}

// NumPoints returns the number of coordinate triples.
func (g Geometry) NumPoints() int { return len(g.Coords) / 3 }

func (g Geometry) validate() error {
	if len(g.Coords)%3 != 0 {
		return fmt.Errorf("coordinate count %d is not a multiple of 3", len(g.Coords))
	}
	var total uint64
	for _, c := range g.FaceCounts {
		total += uint64(c)
	}
	if total != uint64(len(g.Indices)) {
		return fmt.Errorf("face counts sum to %d but there are %d indices", total, len(g.Indices))
	}
	n := uint32(g.NumPoints())
	for _, i := range g.Indices {
		if i >= n {
			return fmt.Errorf("index %d out of range for %d points", i, n)
		}
	}
	return nil
}

// InitialShape is a finalized shape ready to be passed to Generate.
type InitialShape struct {
	Name       string
	RuleFile   string
	StartRule  string
	RandomSeed int32
	Attributes *attrmap.Map
	ResolveMap ResolveMap
	Geometry   Geometry
}

// InitialShapeBuilder collects geometry and attributes of one initial shape.
// It can be reused after CreateInitialShapeAndReset.
type InitialShapeBuilder struct {
	geo      Geometry
	geoSet   bool
	attrsSet bool

	ruleFile   string
	startRule  string
	seed       int32
	name       string
	attributes *attrmap.Map
	resolveMap ResolveMap
}

func NewInitialShapeBuilder() *InitialShapeBuilder {
	return &InitialShapeBuilder{}
}

// SetGeometry copies the given buffers into the builder.
func (b *InitialShapeBuilder) SetGeometry(coords []float64, indices, faceCounts, holes []uint32) error {
	g := Geometry{
		Coords:     slices.Clone(coords),
		Indices:    slices.Clone(indices),
		FaceCounts: slices.Clone(faceCounts),
		Holes:      slices.Clone(holes),
	}
	if err := g.validate(); err != nil {
		return fmt.Errorf("set geometry: %w", err)
	}
	b.geo = g
	b.geoSet = true
	return nil
}

// Geometry returns the geometry currently held by the builder.
func (b *InitialShapeBuilder) Geometry() Geometry { return b.geo }

// SetAttributes binds the shape to a rule file, start rule and resolve map.
func (b *InitialShapeBuilder) SetAttributes(ruleFile, startRule string, seed int32, name string, attrs *attrmap.Map, rm ResolveMap) {
	b.ruleFile = ruleFile
	b.startRule = startRule
	b.seed = seed
	b.name = name
	b.attributes = attrs
	b.resolveMap = rm
	b.attrsSet = true
}

// CreateInitialShapeAndReset finalizes the shape. The attributes are reset on
// success, the geometry is kept so that the builder can be bound again.
func (b *InitialShapeBuilder) CreateInitialShapeAndReset() (*InitialShape, error) {
	const op = "create initial shape"
	if !b.geoSet || !b.attrsSet || b.ruleFile == "" || b.startRule == "" {
		return nil, Errorf(op, StatusNotAllArgumentsSet)
	}
	if b.resolveMap == nil {
		return nil, Errorf(op, StatusResolveMapProviderNotFound)
	}
	if !b.resolveMap.HasKey(b.ruleFile) {
		return nil, Errorf(op, StatusRuleFileNotFound)
	}
	attrs := b.attributes
	if attrs == nil {
		attrs = attrmap.Empty
	}
	is := &InitialShape{
		Name:       b.name,
		RuleFile:   b.ruleFile,
		StartRule:  b.startRule,
		RandomSeed: b.seed,
		Attributes: attrs,
		ResolveMap: b.resolveMap,
		Geometry:   b.geo,
	}
	b.attrsSet = false
	b.ruleFile, b.startRule, b.name = "", "", ""
	b.seed = 0
	b.attributes, b.resolveMap = nil, nil
	return is, nil
}
