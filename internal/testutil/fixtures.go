package testutil

import (
	"testing"

	"cogentcore.org/core/math32"
	"github.com/specialistvlad/palladiogo/internal/geo"
	"github.com/stretchr/testify/require"
)

// LotPackage is a rule package with one rule file exercising every
// attribute kind, a hidden attribute and a non-default style.
const LotPackage = `
rule_file "bin/lot.cgb" {
  rule "Lot" {
    start = true
  }
  rule "Roof" {
    parameters = 1
  }
  rule "Lot" {
    style = "Night"
    start = true
  }

  attr "height" {
    type    = number
    default = 10
  }
  attr "floors" {
    type    = int
    default = 3
  }
  attr "flat" {
    default = true
  }
  attr "facade.material" {
    default = "brick"
  }
  attr "secret" {
    default = "hidden"
    hidden  = true
  }
  attr "color" {
    type    = list(number)
    default = [1, 0, 0]
  }
  attr "height" {
    style   = "Night"
    default = 20
  }

  material = {
    colormap     = "brick.png"
    diffuseColor = [0.5, 0.25, 1]
  }
  report = {
    kind = "lot"
  }
  uv_sets = 2
}

rule_file "bin/empty.cgb" {
  rule "Init" {
    start = true
  }
}

asset "assets/brick.png" {}
`

// QuadRow returns a detail with n unit quads in the xz plane, quad i
// spanning x in [i, i+1]. Each quad has its own four points.
func QuadRow(t *testing.T, n int) *geo.Detail {
	t.Helper()

	d := geo.NewDetail()
	for i := 0; i < n; i++ {
		x := float32(i)
		first := d.AddPoints(
			math32.Vec3(x, 0, 0),
			math32.Vec3(x, 0, 1),
			math32.Vec3(x+1, 0, 1),
			math32.Vec3(x+1, 0, 0),
		)
		_, err := d.AddPolygon(first, first+1, first+2, first+3)
		require.NoError(t, err)
	}
	return d
}

// SetPrimStrings adds a string primitive attribute with one value per
// primitive.
func SetPrimStrings(t *testing.T, d *geo.Detail, name string, values ...string) {
	t.Helper()

	require.Len(t, values, d.NumPrimitives())
	a := d.AddStringTuple(geo.OwnerPrimitive, name, 1)
	for i, v := range values {
		a.SetString(geo.Offset(i), 0, v)
	}
}

// SetPrimInts adds an int32 primitive attribute with one value per
// primitive.
func SetPrimInts(t *testing.T, d *geo.Detail, name string, values ...int32) {
	t.Helper()

	require.Len(t, values, d.NumPrimitives())
	a := d.AddIntTuple(geo.OwnerPrimitive, name, 1, geo.StorageInt32)
	for i, v := range values {
		a.SetInt(geo.Offset(i), 0, v)
	}
}

// SetPrimFloats adds a float primitive attribute with one value per
// primitive.
func SetPrimFloats(t *testing.T, d *geo.Detail, name string, values ...float32) {
	t.Helper()

	require.Len(t, values, d.NumPrimitives())
	a := d.AddFloatTuple(geo.OwnerPrimitive, name, 1)
	for i, v := range values {
		a.SetFloat(geo.Offset(i), 0, v)
	}
}
