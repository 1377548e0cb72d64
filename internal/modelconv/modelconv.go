// Package modelconv writes models generated by the rule engine back into a
// host detail.
package modelconv

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"sync"

	"cogentcore.org/core/math32"
	"github.com/specialistvlad/palladiogo/internal/attrconv"
	"github.com/specialistvlad/palladiogo/internal/attrmap"
	"github.com/specialistvlad/palladiogo/internal/ctxlog"
	"github.com/specialistvlad/palladiogo/internal/geo"
	"github.com/specialistvlad/palladiogo/internal/nameconv"
	"github.com/specialistvlad/palladiogo/internal/prt"
	"github.com/specialistvlad/palladiogo/internal/shape"
)

// Vertex attribute names.
const (
	AttrNormal = "N"
	AttrUV     = "uv"
)

// NoUV marks a vertex without texture coordinates in a UV set.
const NoUV = math.MaxUint32

type shapeKey struct {
	isIndex int
	shapeID int32
}

// ModelConverter is the callback sink of the geometry encoder. Every model
// is appended to the detail as new points and polygons; materials, reports
// and rule attributes become primitive attributes on the face ranges they
// belong to.
type ModelConverter struct {
	prt.NopCallbacks

	ctx    context.Context
	logger *slog.Logger
	names  *nameconv.Converter
	gc     shape.GroupCreation

	mu       sync.Mutex
	d        *geo.Detail
	handles  attrconv.HandleMap
	statuses []prt.Status
	builders map[shapeKey]*attrmap.Builder
}

var _ prt.ModelSink = (*ModelConverter)(nil)

// New returns a converter writing into d. numShapes sizes the status slice.
func New(ctx context.Context, d *geo.Detail, gc shape.GroupCreation, names *nameconv.Converter, numShapes int) *ModelConverter {
	statuses := make([]prt.Status, numShapes)
	return &ModelConverter{
		ctx:      ctx,
		logger:   ctxlog.FromContext(ctx),
		names:    names,
		gc:       gc,
		d:        d,
		handles:  make(attrconv.HandleMap),
		statuses: statuses,
		builders: make(map[shapeKey]*attrmap.Builder),
	}
}

// Statuses returns the generate status of every initial shape.
func (c *ModelConverter) Statuses() []prt.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]prt.Status, len(c.statuses))
	copy(out, c.statuses)
	return out
}

// Add creates the primitives of m and transfers its per face range data.
func (c *ModelConverter) Add(isIndex int, m *prt.GeneratedModel) {
	c.mu.Lock()
	defer c.mu.Unlock()

	primStart := c.createPrimitives(m)

	for fr := 0; fr < m.NumFaceRanges(); fr++ {
		start := primStart + geo.Offset(m.FaceRanges[fr])
		size := int(m.FaceRanges[fr+1] - m.FaceRanges[fr])

		if fr < len(m.Materials) {
			c.write(m.Materials[fr], start, size)
		}
		if fr < len(m.Reports) {
			c.write(m.Reports[fr], start, size)
		}
		if fr < len(m.ShapeIDs) {
			if b, ok := c.builders[shapeKey{isIndex, m.ShapeIDs[fr]}]; ok {
				c.write(b.CreateAttributeMap(), start, size)
			}
		}
	}
	c.logger.Debug("Model added.", "shape", isIndex, "name", m.Name, "faces", len(m.FaceCounts), "face_ranges", m.NumFaceRanges())
}

func (c *ModelConverter) write(am *attrmap.Map, start geo.Offset, size int) {
	if am == nil {
		return
	}
	attrconv.ExtractAttributeNames(c.handles, am, c.names)
	attrconv.CreateAttributeHandles(c.d, c.handles)
	attrconv.SetAttributeValues(c.ctx, c.handles, am, c.names, start, size)
}

// createPrimitives appends the points and polygons of m together with
// vertex normals and UV sets and returns the offset of the first polygon.
func (c *ModelConverter) createPrimitives(m *prt.GeneratedModel) geo.Offset {
	d := c.d
	primStart := geo.Offset(d.NumPrimitives())
	vtxStart := geo.Offset(d.NumVertices())

	pts := make([]math32.Vector3, 0, len(m.Coords)/3)
	for i := 0; i+2 < len(m.Coords); i += 3 {
		pts = append(pts, math32.Vec3(float32(m.Coords[i]), float32(m.Coords[i+1]), float32(m.Coords[i+2])))
	}
	first := d.AddPoints(pts...)

	pos := 0
	for _, cnt := range m.FaceCounts {
		idx := make([]int, cnt)
		for v := range idx {
			idx[v] = first + int(m.Indices[pos+v])
		}
		pos += int(cnt)
		if _, err := d.AddPolygon(idx...); err != nil {
			c.logger.Error("Could not create polygon.", "name", m.Name, "error", err)
		}
	}

	if len(m.Normals) > 0 {
		n := d.AddFloatTuple(geo.OwnerVertex, AttrNormal, 3)
		for vi, idx := range m.Indices {
			p := 3 * int(idx)
			if p+2 >= len(m.Normals) {
				continue
			}
			off := vtxStart + geo.Offset(vi)
			for comp := range 3 {
				n.SetFloat(off, comp, float32(m.Normals[p+comp]))
			}
		}
	}

	for set := 0; set < m.UVSets(); set++ {
		uvh := d.AddFloatTuple(geo.OwnerVertex, uvSetName(set), 3)
		perVertex := UVSet(m.FaceCounts, m.UVCounts[set], m.UVIndices[set])
		uvs := m.UVs[set]
		for vi, uvi := range perVertex {
			if uvi == NoUV || 2*int(uvi)+1 >= len(uvs) {
				continue
			}
			off := vtxStart + geo.Offset(vi)
			uvh.SetFloat(off, 0, float32(uvs[2*uvi]))
			uvh.SetFloat(off, 1, float32(uvs[2*uvi+1]))
			uvh.SetFloat(off, 2, 0)
		}
	}

	if c.gc == shape.GroupPrimCls {
		g := d.NewPrimitiveGroup(m.Name)
		g.AddRange(primStart, d.NumPrimitives()-int(primStart))
	}
	return primStart
}

func uvSetName(set int) string {
	if set == 0 {
		return AttrUV
	}
	return AttrUV + strconv.Itoa(set)
}

// UVSet expands the UV indices of one set to one entry per face vertex.
// uvCounts holds per face either the face vertex count or 0; faces without
// UVs get NoUV entries.
func UVSet(counts, uvCounts, uvIndices []uint32) []uint32 {
	var out []uint32
	base := 0
	for f, cnt := range counts {
		var uvCnt uint32
		if f < len(uvCounts) {
			uvCnt = uvCounts[f]
		}
		if uvCnt == cnt && base+int(cnt) <= len(uvIndices) {
			out = append(out, uvIndices[base:base+int(cnt)]...)
		} else {
			for range cnt {
				out = append(out, NoUV)
			}
		}
		base += int(uvCnt)
	}
	return out
}

func (c *ModelConverter) GenerateError(isIndex int, status prt.Status, message string) prt.Status {
	c.logger.Warn(message, "shape", isIndex, "status", status.Description())
	c.mu.Lock()
	if isIndex >= 0 && isIndex < len(c.statuses) {
		c.statuses[isIndex] = status
	}
	c.mu.Unlock()
	return prt.StatusOK
}

func (c *ModelConverter) AssetError(isIndex int, _ prt.CGAErrorLevel, key, uri, message string) prt.Status {
	c.logger.Warn(key+": "+message, "shape", isIndex, "uri", uri)
	return prt.StatusOK
}

func (c *ModelConverter) CGAError(isIndex int, shapeID int32, _ prt.CGAErrorLevel, _, _ int32, message string) prt.Status {
	c.logger.Warn(message, "shape", isIndex, "shape_id", shapeID)
	return prt.StatusOK
}

func (c *ModelConverter) builder(isIndex int, shapeID int32) *attrmap.Builder {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := shapeKey{isIndex, shapeID}
	b, ok := c.builders[k]
	if !ok {
		b = attrmap.NewBuilder()
		c.builders[k] = b
	}
	return b
}

func (c *ModelConverter) setAttr(isIndex int, shapeID int32, key string, v attrmap.Value) prt.Status {
	if err := c.builder(isIndex, shapeID).Set(key, v); err != nil {
		c.logger.Warn("Could not store generated attribute.", "shape", isIndex, "key", key, "error", err)
	}
	return prt.StatusOK
}

func (c *ModelConverter) AttrBool(isIndex int, shapeID int32, key string, value bool) prt.Status {
	return c.setAttr(isIndex, shapeID, key, attrmap.BoolValue(value))
}

func (c *ModelConverter) AttrInt(isIndex int, shapeID int32, key string, value int32) prt.Status {
	return c.setAttr(isIndex, shapeID, key, attrmap.IntValue(value))
}

func (c *ModelConverter) AttrFloat(isIndex int, shapeID int32, key string, value float64) prt.Status {
	return c.setAttr(isIndex, shapeID, key, attrmap.FloatValue(value))
}

func (c *ModelConverter) AttrString(isIndex int, shapeID int32, key string, value string) prt.Status {
	return c.setAttr(isIndex, shapeID, key, attrmap.StringValue(value))
}
