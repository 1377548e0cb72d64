package shape

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"cogentcore.org/core/math32"
	"github.com/cespare/xxhash/v2"
	"github.com/specialistvlad/palladiogo/internal/attrmap"
	"github.com/specialistvlad/palladiogo/internal/geo"
	"github.com/specialistvlad/palladiogo/internal/nameconv"
	"github.com/specialistvlad/palladiogo/internal/partition"
	"github.com/specialistvlad/palladiogo/internal/prt"
	"github.com/specialistvlad/palladiogo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolveMaps map[string]prt.ResolveMap

func (f fakeResolveMaps) ResolveMap(_ context.Context, path string) (prt.ResolveMap, error) {
	if rm, ok := f[path]; ok {
		return rm, nil
	}
	return nil, errors.New("no such package")
}

func lotResolveMaps() fakeResolveMaps {
	return fakeResolveMaps{"/lots.rpk": prt.MapResolveMap{"bin/lot.cgb": "rpk:file:/lots.rpk!/bin/lot.cgb"}}
}

func setMain(t *testing.T, d *geo.Detail, rpk, ruleFile, startRule, style string) {
	t.Helper()
	n := d.NumPrimitives()
	fill := func(v string) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = v
		}
		return out
	}
	testutil.SetPrimStrings(t, d, AttrRPK, fill(rpk)...)
	testutil.SetPrimStrings(t, d, AttrRuleFile, fill(ruleFile)...)
	testutil.SetPrimStrings(t, d, AttrStartRule, fill(startRule)...)
	testutil.SetPrimStrings(t, d, AttrStyle, fill(style)...)
}

func TestGroupName(t *testing.T) {
	testCases := []struct {
		name string
		key  partition.Key
		want string
	}{
		{name: "legal string", key: partition.StringKey("lot_1"), want: "lot_1"},
		{name: "illegal chars", key: partition.StringKey("a b-c"), want: "a_b_c"},
		{name: "empty string", key: partition.StringKey(""), want: "_invalid_"},
		{name: "int", key: partition.IntKey(7), want: "assign1_7"},
		{name: "negative int", key: partition.IntKey(-7), want: "assign1__7"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, groupName(tc.key, "assign1"))
		})
	}
}

func TestParseGroupCreation(t *testing.T) {
	gc, err := ParseGroupCreation("PRIMCLS")
	require.NoError(t, err)
	assert.Equal(t, GroupPrimCls, gc)
	gc, err = ParseGroupCreation("")
	require.NoError(t, err)
	assert.Equal(t, GroupNone, gc)
	_, err = ParseGroupCreation("all")
	assert.Error(t, err)
}

func TestData(t *testing.T) {
	sd := NewData(GroupNone, "n")
	assert.True(t, sd.IsValid())

	sd.AddBuilder(prt.NewInitialShapeBuilder(), 1, []geo.Offset{0}, partition.IntKey(0))
	sd.AddBuilder(prt.NewInitialShapeBuilder(), 2, []geo.Offset{1}, partition.IntKey(1))
	assert.True(t, sd.IsValid())
	assert.Equal(t, DefaultShapeName, sd.Name(1))

	sd.AddShape(nil, attrmap.NewBuilder(), attrmap.Empty)
	assert.True(t, sd.IsValid())
	assert.Len(t, sd.Shapes(), 1)
	assert.Nil(t, sd.Shapes()[0])

	sd.attrMaps = sd.attrMaps[:0]
	assert.False(t, sd.IsValid())

	t.Run("named shapes", func(t *testing.T) {
		sd := NewData(GroupPrimCls, "n")
		sd.AddBuilder(prt.NewInitialShapeBuilder(), 1, nil, partition.StringKey("lot a"))
		assert.Equal(t, "lot_a", sd.Name(0))
		assert.True(t, sd.IsValid())
	})
}

func TestMainAttributes(t *testing.T) {
	assert.Equal(t, "Default$Lot", MainAttributes{StartRule: "Lot"}.FullyQualifiedStartRule())
	assert.Equal(t, "Night$Lot", MainAttributes{StartRule: "Lot", Style: "Night"}.FullyQualifiedStartRule())
	assert.Equal(t, "Day$Lot", MainAttributes{StartRule: "Day$Lot", Style: "Night"}.FullyQualifiedStartRule())

	d := testutil.QuadRow(t, 1)
	names := nameconv.NewConverter(nil, 16)
	_, ok := ReadMainAttributes(d, 0, names)
	assert.False(t, ok)

	setMain(t, d, "/lots.rpk", "bin/lot.cgb", "Lot", "Night")
	ma, ok := ReadMainAttributes(d, 0, names)
	require.True(t, ok)
	assert.Equal(t, MainAttributes{RPK: "/lots.rpk", RuleFile: "bin/lot.cgb", StartRule: "Lot", Style: "Night"}, ma)
}

func TestConverter_MainAttributesFor(t *testing.T) {
	d := testutil.QuadRow(t, 2)
	names := nameconv.NewConverter(nil, 16)
	c := &Converter{
		Main:  MainAttributes{RPK: "/node.rpk", RuleFile: "bin/node.cgb", StartRule: "Init", Style: "Default"},
		Names: names,
	}
	assert.Equal(t, c.Main, c.MainAttributesFor(d, 0))

	testutil.SetPrimStrings(t, d, AttrRPK, "", "/prim.rpk")
	testutil.SetPrimStrings(t, d, AttrRuleFile, "", "bin/prim.cgb")
	testutil.SetPrimStrings(t, d, AttrStartRule, "", "Lot")
	testutil.SetPrimStrings(t, d, AttrStyle, "", "Night")

	assert.Equal(t, c.Main, c.MainAttributesFor(d, 0))
	assert.Equal(t, c.Main, c.MainAttributesFor(d, 1), "set fields take precedence over the primitive")

	testCases := []struct {
		name string
		main MainAttributes
		want MainAttributes
	}{
		{
			name: "nothing set",
			want: MainAttributes{RPK: "/prim.rpk", RuleFile: "bin/prim.cgb", StartRule: "Lot", Style: "Night"},
		},
		{
			name: "rule file only",
			main: MainAttributes{RuleFile: "bin/node.cgb"},
			want: MainAttributes{RPK: "/prim.rpk", RuleFile: "bin/node.cgb", StartRule: "Lot", Style: "Night"},
		},
		{
			name: "start rule replaces the style",
			main: MainAttributes{StartRule: "Init"},
			want: MainAttributes{RPK: "/prim.rpk", RuleFile: "bin/prim.cgb", StartRule: "Init"},
		},
		{
			name: "style only",
			main: MainAttributes{Style: "Day"},
			want: MainAttributes{RPK: "/prim.rpk", RuleFile: "bin/prim.cgb", StartRule: "Lot", Style: "Day"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conv := &Converter{Main: tc.main, Names: names}
			assert.Equal(t, tc.want, conv.MainAttributesFor(d, 1))
		})
	}
}

func TestConverter_Get(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	d := testutil.QuadRow(t, 3)
	testutil.SetPrimStrings(t, d, partition.DefaultClassifierName, "B", "B", "A")
	c := &Converter{Names: nameconv.NewConverter(nil, 16)}
	sd := NewData(GroupPrimCls, "assign1")

	c.Get(ctx, d, partition.NewClassifier(""), sd)

	require.Equal(t, 2, sd.Len())
	require.True(t, sd.IsValid())
	assert.Equal(t, "A", sd.Name(0))
	assert.Equal(t, []geo.Offset{0, 1}, sd.Primitives(1))

	g := sd.Builder(1).Geometry()
	assert.Len(t, g.Coords, 3*d.NumPoints())
	assert.Equal(t, []uint32{4, 4}, g.FaceCounts)
	assert.Equal(t, []uint32{3, 2, 1, 0, 7, 6, 5, 4}, g.Indices)

	t.Run("seeds are reproducible", func(t *testing.T) {
		again := NewData(GroupNone, "")
		c.Get(ctx, d, partition.NewClassifier(""), again)
		assert.Equal(t, sd.Seed(0), again.Seed(0))
		assert.Equal(t, sd.Seed(1), again.Seed(1))
		assert.NotEqual(t, sd.Seed(0), sd.Seed(1))
	})

	t.Run("seed attribute wins", func(t *testing.T) {
		testutil.SetPrimInts(t, d, AttrRandomSeed, 11, 22, 33)
		seeded := NewData(GroupNone, "")
		c.Get(ctx, d, partition.NewClassifier(""), seeded)
		assert.Equal(t, int32(33), seeded.Seed(0))
		assert.Equal(t, int32(11), seeded.Seed(1))
	})
}

func TestConverter_CentroidSeed(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	d := geo.NewDetail()
	first := d.AddPoints(math32.Vec3(0, 2, 3), math32.Vec3(2, 2, 3), math32.Vec3(1, 2, 3))
	for range 3 {
		_, err := d.AddPolygon(first, first+1, first+2)
		require.NoError(t, err)
	}
	testutil.SetPrimStrings(t, d, partition.DefaultClassifierName, "A", "A", "A")
	sd := NewData(GroupNone, "")

	(&Converter{}).Get(ctx, d, partition.NewClassifier(""), sd)

	var buf [24]byte
	for i, v := range []float64{1, 2, 3} {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	require.Equal(t, 1, sd.Len())
	assert.Equal(t, int32(uint32(xxhash.Sum64(buf[:]))), sd.Seed(0))
}

func TestConverter_Put(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	d := testutil.QuadRow(t, 3)
	testutil.SetPrimStrings(t, d, partition.DefaultClassifierName, "B", "A", "B")
	names := nameconv.NewConverter(nil, 16)
	c := &Converter{
		Main:  MainAttributes{RPK: "/lots.rpk", RuleFile: "bin/lot.cgb", StartRule: "Lot", Style: "Default"},
		Names: names,
	}
	cls := partition.NewClassifier("")
	sd := NewData(GroupNone, "")
	c.Get(ctx, d, cls, sd)
	for i := 0; i < sd.Len(); i++ {
		amb := attrmap.NewBuilder()
		require.NoError(t, amb.SetFloat("Default$height", float64(10*(i+1))))
		require.NoError(t, amb.SetString("Default$facade.material", "brick"))
		sd.AddShape(nil, amb, attrmap.Empty)
	}

	c.Put(ctx, d, cls, sd)

	for off, want := range []float64{20, 10, 20} {
		o := geo.Offset(off)
		assert.Equal(t, "/lots.rpk", d.FindPrimitiveAttribute(AttrRPK).String(o, 0))
		assert.Equal(t, "bin/lot.cgb", d.FindPrimitiveAttribute(AttrRuleFile).String(o, 0))
		assert.Equal(t, "Lot", d.FindPrimitiveAttribute(AttrStartRule).String(o, 0))
		assert.Equal(t, "Default", d.FindPrimitiveAttribute(AttrStyle).String(o, 0))
		assert.Equal(t, want, d.FindPrimitiveAttribute("height").Float(o, 0))
		assert.Equal(t, "brick", d.FindPrimitiveAttribute("facade__material").String(o, 0))
	}
	assert.Equal(t, sd.Seed(1), d.FindPrimitiveAttribute(AttrRandomSeed).Int(2, 0))
	assert.Equal(t, "B", d.FindPrimitiveAttribute(partition.DefaultClassifierName).String(2, 0))
}

func TestConverter_Put_StyledKeys(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	d := testutil.QuadRow(t, 2)
	names := nameconv.NewConverter(nil, 16)
	c := &Converter{
		Main:  MainAttributes{RPK: "/lots.rpk", RuleFile: "bin/lot.cgb", StartRule: "Lot", Style: "Night"},
		Names: names,
	}
	cls := partition.NewClassifier("")
	sd := NewData(GroupNone, "")
	c.Get(ctx, d, cls, sd)

	night := attrmap.NewBuilder()
	require.NoError(t, night.SetFloat("Default$height", 10))
	require.NoError(t, night.SetFloat("Night$height", 20))
	sd.AddShape(nil, night, attrmap.Empty)
	plain := attrmap.NewBuilder()
	require.NoError(t, plain.SetFloat("Default$height", 10))
	sd.AddShape(nil, plain, attrmap.Empty)

	c.Put(ctx, d, cls, sd)

	height := d.FindPrimitiveAttribute("height")
	require.NotNil(t, height)
	assert.Equal(t, 20.0, height.Float(0, 0), "the later style key wins")
	assert.Equal(t, 10.0, height.Float(1, 0))
	assert.Equal(t, "Night", d.FindPrimitiveAttribute(AttrStyle).String(0, 0))
}

func TestConverter_Put_ReplacesEarlierMainAttributes(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	d := testutil.QuadRow(t, 1)
	setMain(t, d, "/lots.rpk", "bin/lot.cgb", "Lot", "Night")
	c := &Converter{
		Main:  MainAttributes{RPK: "/lots.rpk", RuleFile: "bin/empty.cgb", StartRule: "Init"},
		Names: nameconv.NewConverter(nil, 16),
	}
	cls := partition.NewClassifier("")
	sd := NewData(GroupNone, "")
	c.Get(ctx, d, cls, sd)
	sd.AddShape(nil, attrmap.NewBuilder(), attrmap.Empty)

	c.Put(ctx, d, cls, sd)

	ma, ok := ReadMainAttributes(d, 0, c.Names)
	require.True(t, ok)
	assert.Equal(t, MainAttributes{RPK: "/lots.rpk", RuleFile: "bin/empty.cgb", StartRule: "Init"}, ma)
}

func TestGenerator_Get(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	d := testutil.QuadRow(t, 2)
	testutil.SetPrimStrings(t, d, partition.DefaultClassifierName, "A", "B")
	setMain(t, d, "/lots.rpk", "bin/lot.cgb", "Lot", "")
	testutil.SetPrimFloats(t, d, "height", 12.5, 30)
	testutil.SetPrimInts(t, d, "flat", 0, 3)
	testutil.SetPrimStrings(t, d, "facade__material", "glass", "wood")
	testutil.SetPrimInts(t, d, AttrRandomSeed, 5, 6)
	color := d.AddFloatTuple(geo.OwnerPrimitive, "color", 3)
	color.SetFloat(0, 1, 0.5)

	g := &Generator{
		Converter:   Converter{Names: nameconv.NewConverter(nil, 16)},
		ResolveMaps: lotResolveMaps(),
	}
	sd := NewData(GroupPrimCls, "gen")

	g.Get(ctx, d, partition.NewClassifier(""), sd)

	require.True(t, sd.IsValid())
	require.Len(t, sd.Shapes(), 2)
	is := sd.Shapes()[0]
	require.NotNil(t, is)
	assert.Equal(t, "A", is.Name)
	assert.Equal(t, "bin/lot.cgb", is.RuleFile)
	assert.Equal(t, "Default$Lot", is.StartRule)
	assert.Equal(t, int32(5), is.RandomSeed)

	assert.Equal(t, []string{"Default$height", "Default$flat", "Default$facade.material", "Default$color"}, is.Attributes.Keys())
	h, _ := is.Attributes.Float("Default$height")
	assert.Equal(t, 12.5, h)
	flat, ok := is.Attributes.Bool("Default$flat")
	assert.True(t, ok)
	assert.False(t, flat)
	mat, _ := is.Attributes.String("Default$facade.material")
	assert.Equal(t, "glass", mat)
	c, _ := is.Attributes.FloatArray("Default$color")
	assert.Equal(t, []float64{0, 0.5, 0}, c)

	flat, _ = sd.Shapes()[1].Attributes.Bool("Default$flat")
	assert.True(t, flat)
	assert.Same(t, is.Attributes, sd.AttributeMap(0))
}

func TestGenerator_Get_Failures(t *testing.T) {
	ctx, logs := testutil.LogContext(t)

	t.Run("missing main attributes", func(t *testing.T) {
		d := testutil.QuadRow(t, 2)
		g := &Generator{Converter: Converter{Names: nameconv.NewConverter(nil, 16)}, ResolveMaps: lotResolveMaps()}
		sd := NewData(GroupNone, "")

		g.Get(ctx, d, partition.NewClassifier(""), sd)

		require.True(t, sd.IsValid())
		assert.Equal(t, []*prt.InitialShape{nil, nil}, sd.Shapes())
		assert.Contains(t, logs.String(), "Shape has no main attributes.")
	})

	t.Run("unknown package and rule file keep their slots", func(t *testing.T) {
		d := testutil.QuadRow(t, 3)
		testutil.SetPrimStrings(t, d, AttrRPK, "/lots.rpk", "/missing.rpk", "/lots.rpk")
		testutil.SetPrimStrings(t, d, AttrRuleFile, "bin/lot.cgb", "bin/lot.cgb", "bin/none.cgb")
		testutil.SetPrimStrings(t, d, AttrStartRule, "Lot", "Lot", "Lot")
		testutil.SetPrimStrings(t, d, AttrStyle, "", "", "")
		g := &Generator{Converter: Converter{Names: nameconv.NewConverter(nil, 16)}, ResolveMaps: lotResolveMaps()}
		sd := NewData(GroupNone, "")

		g.Get(ctx, d, partition.NewClassifier("none"), sd)

		require.True(t, sd.IsValid())
		require.Len(t, sd.Shapes(), 3)
		assert.NotNil(t, sd.Shapes()[0])
		assert.Nil(t, sd.Shapes()[1])
		assert.Nil(t, sd.Shapes()[2])
		assert.Contains(t, logs.String(), "Could not get resolve map.")
		assert.Contains(t, logs.String(), "Failed to create initial shape.")
	})
}
