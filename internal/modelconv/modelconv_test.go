package modelconv

import (
	"testing"

	"github.com/specialistvlad/palladiogo/internal/attrmap"
	"github.com/specialistvlad/palladiogo/internal/geo"
	"github.com/specialistvlad/palladiogo/internal/nameconv"
	"github.com/specialistvlad/palladiogo/internal/prt"
	"github.com/specialistvlad/palladiogo/internal/shape"
	"github.com/specialistvlad/palladiogo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoQuads returns a model of two unit quads sharing an edge, each in its
// own face range.
func twoQuads() *prt.GeneratedModel {
	mat := attrmap.NewBuilder()
	_ = mat.SetString("colormap", "brick.png")
	_ = mat.SetFloatArray("diffuseColor", []float64{0.5, 0.25, 1})
	rep := attrmap.NewBuilder()
	_ = rep.SetFloat("faceArea", 1)

	return &prt.GeneratedModel{
		Name:       "lot_a",
		Coords:     []float64{0, 0, 0, 0, 0, 1, 1, 0, 1, 1, 0, 0, 2, 0, 1, 2, 0, 0},
		Normals:    []float64{0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0},
		FaceCounts: []uint32{4, 4},
		Indices:    []uint32{0, 1, 2, 3, 3, 2, 4, 5},
		UVs:        [][]float64{{0, 0, 0, 1, 1, 1, 1, 0, 2, 1, 2, 0}},
		UVCounts:   [][]uint32{{4, 0}},
		UVIndices:  [][]uint32{{0, 1, 2, 3}},
		FaceRanges: []uint32{0, 1, 2},
		Materials:  []*attrmap.Map{mat.CreateAttributeMap(), mat.CreateAttributeMap()},
		Reports:    []*attrmap.Map{rep.CreateAttributeMap(), rep.CreateAttributeMap()},
		ShapeIDs:   []int32{1, 2},
	}
}

func TestUVSet(t *testing.T) {
	testCases := []struct {
		name      string
		counts    []uint32
		uvCounts  []uint32
		uvIndices []uint32
		want      []uint32
	}{
		{name: "all faces", counts: []uint32{3, 4}, uvCounts: []uint32{3, 4}, uvIndices: []uint32{0, 1, 2, 3, 4, 5, 6}, want: []uint32{0, 1, 2, 3, 4, 5, 6}},
		{name: "first face without uvs", counts: []uint32{3, 3}, uvCounts: []uint32{0, 3}, uvIndices: []uint32{7, 8, 9}, want: []uint32{NoUV, NoUV, NoUV, 7, 8, 9}},
		{name: "missing counts", counts: []uint32{2}, uvCounts: nil, uvIndices: nil, want: []uint32{NoUV, NoUV}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, UVSet(tc.counts, tc.uvCounts, tc.uvIndices))
		})
	}
}

func TestModelConverter_Add(t *testing.T) {
	// --- Arrange ---
	ctx, _ := testutil.LogContext(t)
	d := testutil.QuadRow(t, 1)
	mc := New(ctx, d, shape.GroupPrimCls, nameconv.NewConverter(nil, 16), 1)
	mc.AttrFloat(0, 2, "Default$height", 3.5)
	mc.AttrString(0, 2, "Default$facade.material", "stone")

	// --- Act ---
	mc.Add(0, twoQuads())

	// --- Assert ---
	require.Equal(t, 3, d.NumPrimitives())
	assert.Equal(t, 4+6, d.NumPoints())
	assert.Equal(t, 4+8, d.NumVertices())
	assert.Equal(t, 8, d.PointIndex(d.Primitive(2), 2), "indices are offset by the existing points")

	n := d.FindVertexAttribute(AttrNormal)
	require.NotNil(t, n)
	assert.Equal(t, 0.0, n.Float(3, 1), "existing vertices keep their default")
	assert.Equal(t, 1.0, n.Float(4, 1))

	uv := d.FindVertexAttribute(AttrUV)
	require.NotNil(t, uv)
	assert.Equal(t, 3, uv.TupleSize())
	assert.Equal(t, 1.0, uv.Float(6, 0))
	assert.Equal(t, 1.0, uv.Float(6, 1))
	assert.Equal(t, 0.0, uv.Float(9, 0))
	assert.Equal(t, 0.0, uv.Float(10, 0), "second face has no uvs")

	g := d.FindPrimitiveGroup("lot_a")
	require.NotNil(t, g)
	assert.Equal(t, []geo.Offset{1, 2}, g.Members())

	cm := d.FindPrimitiveAttribute("colormap")
	require.NotNil(t, cm)
	assert.Equal(t, "", cm.String(0, 0))
	assert.Equal(t, "brick.png", cm.String(1, 0))
	dc := d.FindPrimitiveAttribute("diffuseColor")
	require.NotNil(t, dc)
	assert.Equal(t, 3, dc.TupleSize())
	assert.Equal(t, 0.25, dc.Float(2, 1))
	assert.Equal(t, 1.0, d.FindPrimitiveAttribute("faceArea").Float(2, 0))

	height := d.FindPrimitiveAttribute("height")
	require.NotNil(t, height)
	assert.Equal(t, 0.0, height.Float(1, 0), "attributes of shape 1 were never reported")
	assert.Equal(t, 3.5, height.Float(2, 0))
	assert.Equal(t, "stone", d.FindPrimitiveAttribute("facade__material").String(2, 0))
}

func TestModelConverter_NoGroups(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	d := geo.NewDetail()
	mc := New(ctx, d, shape.GroupNone, nameconv.NewConverter(nil, 16), 1)

	mc.Add(0, twoQuads())

	assert.Equal(t, 2, d.NumPrimitives())
	assert.Empty(t, d.PrimitiveGroups())
}

func TestModelConverter_Statuses(t *testing.T) {
	ctx, buf := testutil.LogContext(t)
	mc := New(ctx, geo.NewDetail(), shape.GroupNone, nil, 2)

	mc.GenerateError(1, prt.StatusStartRuleNotFound, "start rule not found")
	mc.GenerateError(7, prt.StatusStartRuleNotFound, "out of range")

	assert.Equal(t, []prt.Status{prt.StatusOK, prt.StatusStartRuleNotFound}, mc.Statuses())
	assert.Contains(t, buf.String(), "start rule not found")
}
