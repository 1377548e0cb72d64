package scene

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/palladiogo/internal/geo"
	"github.com/specialistvlad/palladiogo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lots = `
points:
  - [0, 0, 0]
  - [0, 0, 1]
  - [1, 0, 1]
  - [1, 0, 0]
  - [2, 0, 1]
  - [2, 0, 0]
primitives:
  - points: [0, 1, 2, 3]
  - type: polysoup
    points: [3, 2, 4, 5]
attributes:
  primitive:
    - name: primCls
      storage: string
      strings: [[a], [b]]
    - name: color
      storage: float32
      size: 3
      floats: [[1, 0, 0], [0, 1]]
    - name: flat
      storage: int8
      ints: [[1]]
  vertex:
    - name: w
      storage: int32
      ints: [[1], [2], [3], [4], [5], [6], [7], [8]]
groups:
  - name: first
    members: [0]
`

func TestRead(t *testing.T) {
	d, err := Read(strings.NewReader(lots))

	require.NoError(t, err)
	assert.Equal(t, 6, d.NumPoints())
	require.Equal(t, 2, d.NumPrimitives())
	assert.Equal(t, geo.PrimPolySoup, d.Primitive(1).Type())
	assert.Equal(t, 4, d.PointIndex(d.Primitive(1), 2))

	assert.Equal(t, "b", d.FindPrimitiveAttribute("primCls").String(1, 0))
	color := d.FindPrimitiveAttribute("color")
	require.NotNil(t, color)
	assert.Equal(t, 3, color.TupleSize())
	assert.Equal(t, 1.0, color.Float(1, 1))
	assert.Equal(t, 0.0, color.Float(1, 2), "short rows leave zeros")
	flat := d.FindPrimitiveAttribute("flat")
	assert.Equal(t, geo.StorageInt8, flat.Storage())
	assert.Equal(t, int32(0), flat.Int(1, 0))
	assert.Equal(t, int32(8), d.FindVertexAttribute("w").Int(7, 0))
	assert.Equal(t, []geo.Offset{0}, d.FindPrimitiveGroup("first").Members())
}

func TestRead_Errors(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
		want string
	}{
		{name: "unknown field", doc: "pts: []", want: "field pts not found"},
		{name: "short point", doc: "points: [[0, 1]]", want: "point 0"},
		{name: "bad point index", doc: "points: [[0, 0, 0]]\nprimitives: [{points: [0, 1]}]", want: "primitive 0"},
		{name: "bad type", doc: "points: [[0, 0, 0]]\nprimitives: [{type: nurbs, points: [0]}]", want: `unknown type "nurbs"`},
		{name: "bad storage", doc: "attributes: {primitive: [{name: x, storage: int64}]}", want: `unknown storage "int64"`},
		{name: "too many values", doc: "attributes: {primitive: [{name: x, storage: string, strings: [[a]]}]}", want: "1 values for 0 elements"},
		{name: "bad group member", doc: "groups: [{name: g, members: [3]}]", want: "out of range"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tc.doc))
			assert.ErrorContains(t, err, tc.want)
		})
	}

	t.Run("empty document", func(t *testing.T) {
		d, err := Read(strings.NewReader(""))
		require.NoError(t, err)
		assert.Zero(t, d.NumPrimitives())
	})
}

func TestWriteRead(t *testing.T) {
	d, err := Read(strings.NewReader(lots))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, d))
	again, err := Read(&buf)
	require.NoError(t, err)

	assert.Equal(t, d.Points(), again.Points())
	assert.Equal(t, d.NumVertices(), again.NumVertices())
	assert.Equal(t, geo.PrimPolySoup, again.Primitive(1).Type())
	assert.Equal(t, "a", again.FindPrimitiveAttribute("primCls").String(0, 0))
	assert.Equal(t, 1.0, again.FindPrimitiveAttribute("color").Float(0, 0))
	assert.Equal(t, geo.StorageInt8, again.FindPrimitiveAttribute("flat").Storage())
	assert.Equal(t, []geo.Offset{0}, again.FindPrimitiveGroup("first").Members())
}

func TestLoadSave(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{"lots.yaml": lots})
	d, err := Load(filepath.Join(dir, "lots.yaml"))
	require.NoError(t, err)

	out := filepath.Join(dir, "out", "copy.yaml")
	require.NoError(t, Save(out, d))

	again, err := Load(out)
	require.NoError(t, err)
	assert.Equal(t, d.NumPrimitives(), again.NumPrimitives())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
