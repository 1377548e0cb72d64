package memprt

import (
	"fmt"
	"slices"

	"cogentcore.org/core/math32"
	"github.com/specialistvlad/palladiogo/internal/attrmap"
	"github.com/specialistvlad/palladiogo/internal/nameconv"
	"github.com/specialistvlad/palladiogo/internal/prt"
	"golang.org/x/sync/errgroup"
)

// reportFaceArea is added to every report map.
const reportFaceArea = "faceArea"

// ruleAttr is one evaluated rule attribute.
type ruleAttr struct {
	key   string
	value attrmap.Value
}

// shapeResult is the outcome of evaluating one initial shape.
type shapeResult struct {
	status  prt.Status
	message string
	attrs   []ruleAttr
	model   *prt.GeneratedModel
}

type encoderSet struct {
	attrEval  bool
	geometry  bool
	emitAttrs bool
	emitMats  bool
	emitReps  bool
}

// Generate evaluates all shapes and reports through cb. Shapes are
// evaluated concurrently, callbacks are delivered in shape order from the
// calling goroutine.
func (e *Engine) Generate(shapes []*prt.InitialShape, encoders []string, encoderOptions []*attrmap.Map, cb prt.Callbacks, cache prt.Cache) prt.Status {
	if cb == nil {
		return prt.StatusIllegalCallbackObject
	}
	encs, status := e.encoders(encoders, encoderOptions)
	if status != prt.StatusOK {
		return status
	}
	sink, isSink := cb.(prt.ModelSink)
	if encs.geometry && !isSink {
		return prt.StatusIllegalCallbackObject
	}

	mc := asCache(cache)
	results := make([]shapeResult, len(shapes))
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, is := range shapes {
		g.Go(func() error {
			results[i] = e.evaluate(is, encs, mc)
			return nil
		})
	}
	_ = g.Wait()

	for i, r := range results {
		if r.status != prt.StatusOK {
			e.logger.Debug("Shape generation failed.", "index", i, "status", r.status.Description(), "message", r.message)
			if s := cb.GenerateError(i, r.status, r.message); s == prt.StatusCanceled {
				return prt.StatusCanceled
			}
			continue
		}
		if encs.attrEval {
			reportAttrs(cb, i, 0, r.attrs)
		}
		if encs.geometry {
			if encs.emitAttrs {
				styled := inStyle(r.attrs, shapes[i].StartRule)
				for _, id := range r.model.ShapeIDs {
					reportAttrs(cb, i, id, styled)
				}
			}
			sink.Add(i, r.model)
		}
	}
	return prt.StatusOK
}

func (e *Engine) encoders(ids []string, opts []*attrmap.Map) (encoderSet, prt.Status) {
	var set encoderSet
	if len(ids) == 0 {
		return set, prt.StatusNotAllArgumentsSet
	}
	for i, id := range ids {
		var o *attrmap.Map
		if i < len(opts) {
			o = opts[i]
		}
		vo, err := e.ValidatedEncoderOptions(id, o)
		if err != nil {
			return set, prt.StatusOf(err)
		}
		switch id {
		case prt.EncoderAttributeEval:
			set.attrEval = true
		case prt.EncoderGeometry:
			set.geometry = true
			set.emitAttrs, _ = vo.Bool(prt.OptionEmitAttributes)
			set.emitMats, _ = vo.Bool(prt.OptionEmitMaterials)
			set.emitReps, _ = vo.Bool(prt.OptionEmitReports)
		}
	}
	return set, prt.StatusOK
}

func (e *Engine) evaluate(is *prt.InitialShape, encs encoderSet, cache *Cache) shapeResult {
	if is == nil {
		return shapeResult{status: prt.StatusInitialShapeFailed, message: "nil initial shape"}
	}
	if is.ResolveMap == nil {
		return shapeResult{status: prt.StatusResolveMapProviderNotFound, message: is.Name + ": no resolve map"}
	}
	uri, ok := is.ResolveMap.String(is.RuleFile)
	if !ok {
		return shapeResult{status: prt.StatusRuleFileNotFound, message: is.Name + ": rule file " + is.RuleFile + " not in resolve map"}
	}
	rf, err := e.ruleFile(uri, cache)
	if err != nil {
		return shapeResult{status: prt.StatusOf(err), message: err.Error()}
	}
	if !rf.hasRule(is.StartRule) {
		return shapeResult{status: prt.StatusStartRuleNotFound, message: fmt.Sprintf("%s: start rule %s not found in %s", is.Name, is.StartRule, rf.key)}
	}

	r := shapeResult{attrs: evaluateAttributes(rf, is.Attributes)}
	if encs.geometry {
		r.model = buildModel(is, rf, encs)
	}
	return r
}

// evaluateAttributes returns every declared attribute in declaration order,
// taking the value of the shape attribute map where its type matches.
func evaluateAttributes(rf *ruleFile, overrides *attrmap.Map) []ruleAttr {
	attrs := make([]ruleAttr, 0, len(rf.info.Attributes))
	for _, a := range rf.info.Attributes {
		v := rf.defaults[a.Name]
		if ov, ok := overrides.Value(a.Name); ok && ov.Type() == a.ReturnType {
			v = ov
		}
		attrs = append(attrs, ruleAttr{key: a.Name, value: v})
	}
	return attrs
}

// inStyle returns the attributes of the default style and of the style of
// the fully qualified startRule, in declaration order.
func inStyle(attrs []ruleAttr, startRule string) []ruleAttr {
	style, name := nameconv.DefaultStyle, ""
	nameconv.Separate(startRule, &style, &name)
	out := make([]ruleAttr, 0, len(attrs))
	for _, a := range attrs {
		if nameconv.MatchesStyle(a.key, style) {
			out = append(out, a)
		}
	}
	return out
}

// reportAttrs calls the attribute callback matching each value type. Array
// attributes have no callback and are not reported.
func reportAttrs(cb prt.Callbacks, isIndex int, shapeID int32, attrs []ruleAttr) {
	for _, a := range attrs {
		switch a.value.Type() {
		case attrmap.Bool:
			v, _ := a.value.AsBool()
			cb.AttrBool(isIndex, shapeID, a.key, v)
		case attrmap.Int:
			v, _ := a.value.AsInt()
			cb.AttrInt(isIndex, shapeID, a.key, v)
		case attrmap.Float:
			v, _ := a.value.AsFloat()
			cb.AttrFloat(isIndex, shapeID, a.key, v)
		case attrmap.String:
			v, _ := a.value.AsString()
			cb.AttrString(isIndex, shapeID, a.key, v)
		}
	}
}

// buildModel turns every face of the initial shape into one derived shape.
// Initial shapes carry reversed winding which is undone here. Only points
// referenced by faces are emitted.
func buildModel(is *prt.InitialShape, rf *ruleFile, encs encoderSet) *prt.GeneratedModel {
	geo := is.Geometry
	m := &prt.GeneratedModel{Name: is.Name}

	remap := make(map[uint32]uint32)
	var points []math32.Vector3
	pointIndex := func(src uint32) uint32 {
		if dst, ok := remap[src]; ok {
			return dst
		}
		dst := uint32(len(points))
		remap[src] = dst
		p := math32.Vec3(float32(geo.Coords[3*src]), float32(geo.Coords[3*src+1]), float32(geo.Coords[3*src+2]))
		points = append(points, p)
		m.Coords = append(m.Coords, geo.Coords[3*src], geo.Coords[3*src+1], geo.Coords[3*src+2])
		return dst
	}

	var faceNormals []math32.Vector3
	start := 0
	for f, cnt := range geo.FaceCounts {
		face := slices.Clone(geo.Indices[start : start+int(cnt)])
		start += int(cnt)
		slices.Reverse(face)
		for i := range face {
			face[i] = pointIndex(face[i])
		}
		m.FaceCounts = append(m.FaceCounts, cnt)
		m.Indices = append(m.Indices, face...)
		m.FaceRanges = append(m.FaceRanges, uint32(f))
		m.ShapeIDs = append(m.ShapeIDs, int32(f+1))
		faceNormals = append(faceNormals, newellNormal(points, face))
	}
	m.FaceRanges = append(m.FaceRanges, uint32(len(geo.FaceCounts)))

	m.Normals = pointNormals(len(points), m.FaceCounts, m.Indices, faceNormals)
	addPlanarUVs(m, points, rf.uvSets)

	if encs.emitMats {
		for range m.ShapeIDs {
			m.Materials = append(m.Materials, materialOrEmpty(rf.material))
		}
	}
	if encs.emitReps {
		start := 0
		for _, cnt := range m.FaceCounts {
			b := rf.report.ToBuilder()
			area := faceArea(points, m.Indices[start:start+int(cnt)])
			start += int(cnt)
			_ = b.SetFloat(reportFaceArea, float64(area))
			m.Reports = append(m.Reports, b.CreateAttributeMap())
		}
	}
	return m
}

func materialOrEmpty(m *attrmap.Map) *attrmap.Map {
	if m == nil {
		return attrmap.Empty
	}
	return m
}

// newellSum returns the unnormalized Newell vector of a polygon. Its length
// is twice the polygon area.
func newellSum(points []math32.Vector3, face []uint32) math32.Vector3 {
	var n math32.Vector3
	for i := range face {
		a := points[face[i]]
		b := points[face[(i+1)%len(face)]]
		n = n.Add(a.Cross(b))
	}
	return n
}

func newellNormal(points []math32.Vector3, face []uint32) math32.Vector3 {
	n := newellSum(points, face)
	if l := n.LengthSquared(); l > 0 {
		return n.MulScalar(1 / math32.Sqrt(l))
	}
	return math32.Vector3{}
}

func faceArea(points []math32.Vector3, face []uint32) float32 {
	return math32.Sqrt(newellSum(points, face).LengthSquared()) / 2
}

// pointNormals averages the normals of all faces using a point.
func pointNormals(numPoints int, counts, indices []uint32, faceNormals []math32.Vector3) []float64 {
	acc := make([]math32.Vector3, numPoints)
	start := 0
	for f, cnt := range counts {
		for _, idx := range indices[start : start+int(cnt)] {
			acc[idx] = acc[idx].Add(faceNormals[f])
		}
		start += int(cnt)
	}
	out := make([]float64, 0, 3*numPoints)
	for _, n := range acc {
		if l := n.LengthSquared(); l > 0 {
			n = n.MulScalar(1 / math32.Sqrt(l))
		}
		out = append(out, float64(n.X), float64(n.Y), float64(n.Z))
	}
	return out
}

// addPlanarUVs projects the points onto the xz plane of their bounding box.
// UV set s is scaled by s+1.
func addPlanarUVs(m *prt.GeneratedModel, points []math32.Vector3, sets int) {
	if sets == 0 || len(points) == 0 {
		return
	}
	var box math32.Box3
	box.SetFromPoints(points)
	size := box.Size()
	norm := func(v, lo, extent float32) float64 {
		if extent == 0 {
			return 0
		}
		return float64((v - lo) / extent)
	}
	for s := 0; s < sets; s++ {
		scale := float64(s + 1)
		uvs := make([]float64, 0, 2*len(points))
		for _, p := range points {
			uvs = append(uvs, scale*norm(p.X, box.Min.X, size.X), scale*norm(p.Z, box.Min.Z, size.Z))
		}
		m.UVs = append(m.UVs, uvs)
		m.UVCounts = append(m.UVCounts, slices.Clone(m.FaceCounts))
		m.UVIndices = append(m.UVIndices, slices.Clone(m.Indices))
	}
}
