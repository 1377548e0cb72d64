package partition

import (
	"testing"

	"github.com/specialistvlad/palladiogo/internal/geo"
	"github.com/specialistvlad/palladiogo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_Compare(t *testing.T) {
	assert.Negative(t, StringKey("z").Compare(IntKey(-5)))
	assert.Positive(t, IntKey(0).Compare(StringKey("")))
	assert.Negative(t, StringKey("a").Compare(StringKey("b")))
	assert.Negative(t, IntKey(-1).Compare(IntKey(2)))
	assert.Zero(t, IntKey(3).Compare(IntKey(3)))
	assert.Equal(t, `"a"`, StringKey("a").String())
	assert.Equal(t, "7", IntKey(7).String())
}

func TestNew_StringClassifier(t *testing.T) {
	d := testutil.QuadRow(t, 5)
	testutil.SetPrimStrings(t, d, DefaultClassifierName, "B", "A", "B", "", "A")

	p := New(d, NewClassifier(""))

	require.Equal(t, 3, p.Len())
	got := p.Classes()
	assert.Equal(t, StringKey(""), got[0].Key)
	assert.Equal(t, []geo.Offset{3}, got[0].Primitives)
	assert.Equal(t, StringKey("A"), got[1].Key)
	assert.Equal(t, []geo.Offset{1, 4}, got[1].Primitives)
	assert.Equal(t, StringKey("B"), got[2].Key)
	assert.Equal(t, []geo.Offset{0, 2}, got[2].Primitives)
}

func TestNew_IntClassifier(t *testing.T) {
	d := testutil.QuadRow(t, 4)
	testutil.SetPrimInts(t, d, "lot", 9, -1, 9, 2)

	p := New(d, NewClassifier("lot"))

	keys := make([]Key, 0, p.Len())
	for _, c := range p.Classes() {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []Key{IntKey(-1), IntKey(2), IntKey(9)}, keys)
}

func TestNew_MissingClassifier(t *testing.T) {
	d := testutil.QuadRow(t, 3)

	p := New(d, NewClassifier("nope"))

	require.Equal(t, 3, p.Len())
	for i, c := range p.Classes() {
		assert.Equal(t, IntKey(int32(i)), c.Key)
		assert.Equal(t, []geo.Offset{geo.Offset(i)}, c.Primitives)
	}
}

func TestNew_PerPrimitiveClassifierName(t *testing.T) {
	d := testutil.QuadRow(t, 4)
	testutil.SetPrimStrings(t, d, NameAttr, "", "block", "block", "")
	testutil.SetPrimStrings(t, d, DefaultClassifierName, "a", "x", "y", "a")
	testutil.SetPrimStrings(t, d, "block", "q", "b", "b", "q")

	p := New(d, NewClassifier(""))

	require.Equal(t, 2, p.Len())
	assert.Equal(t, StringKey("a"), p.Classes()[0].Key)
	assert.Equal(t, []geo.Offset{0, 3}, p.Classes()[0].Primitives)
	assert.Equal(t, StringKey("b"), p.Classes()[1].Key)
	assert.Equal(t, []geo.Offset{1, 2}, p.Classes()[1].Primitives)
}

func TestNew_FloatClassifierFallsBackToOffset(t *testing.T) {
	d := testutil.QuadRow(t, 2)
	testutil.SetPrimFloats(t, d, DefaultClassifierName, 1, 1)

	p := New(d, NewClassifier(""))

	assert.Equal(t, 2, p.Len())
}

func TestNew_TotalAndExclusive(t *testing.T) {
	d := testutil.QuadRow(t, 6)
	testutil.SetPrimStrings(t, d, DefaultClassifierName, "x", "y", "x", "z", "y", "x")

	p := New(d, NewClassifier(""))

	seen := map[geo.Offset]int{}
	for _, c := range p.Classes() {
		for _, off := range c.Primitives {
			seen[off]++
		}
	}
	require.Len(t, seen, d.NumPrimitives())
	for off, n := range seen {
		assert.Equal(t, 1, n, "primitive %d", off)
	}
}

func TestClassifier_Put(t *testing.T) {
	d := testutil.QuadRow(t, 3)
	c := NewClassifier("")

	c.Put(d, []geo.Offset{0, 2}, StringKey("lot"))

	attr := d.FindPrimitiveAttribute(DefaultClassifierName)
	require.NotNil(t, attr)
	assert.Equal(t, "lot", attr.String(0, 0))
	assert.Equal(t, "", attr.String(1, 0))
	assert.Equal(t, "lot", attr.String(2, 0))
	assert.Equal(t, DefaultClassifierName, d.FindPrimitiveAttribute(NameAttr).String(2, 0))

	t.Run("int keys", func(t *testing.T) {
		d := testutil.QuadRow(t, 2)
		c.Put(d, []geo.Offset{1}, IntKey(4))
		attr := d.FindPrimitiveAttribute(DefaultClassifierName)
		require.NotNil(t, attr)
		assert.Equal(t, geo.StorageInt32, attr.Storage())
		assert.Equal(t, int32(4), attr.Int(1, 0))
	})
}
