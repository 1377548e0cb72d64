// Package shape turns partitions of a detail into initial shapes and writes
// shape level attributes back onto the primitives.
package shape

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/specialistvlad/palladiogo/internal/attrconv"
	"github.com/specialistvlad/palladiogo/internal/attrmap"
	"github.com/specialistvlad/palladiogo/internal/ctxlog"
	"github.com/specialistvlad/palladiogo/internal/geo"
	"github.com/specialistvlad/palladiogo/internal/nameconv"
	"github.com/specialistvlad/palladiogo/internal/partition"
	"github.com/specialistvlad/palladiogo/internal/prt"
)

// Converter extracts shape geometry and writes shape attributes. Main holds
// the main attributes written by Put.
type Converter struct {
	Main  MainAttributes
	Names *nameconv.Converter
}

// Get partitions d and appends one builder per class to sd. Every builder
// shares the full coordinate buffer of d; faces are merged per class with
// reversed winding.
func (c *Converter) Get(ctx context.Context, d *geo.Detail, cls partition.Classifier, sd *Data) {
	logger := ctxlog.FromContext(ctx)
	part := partition.New(d, cls)

	coords := make([]float64, 0, 3*d.NumPoints())
	for _, p := range d.Points() {
		coords = append(coords, float64(p.X), float64(p.Y), float64(p.Z))
	}

	seedAttr := d.FindPrimitiveAttribute(AttrRandomSeed)
	if seedAttr != nil && seedAttr.Class() != geo.ClassInt {
		seedAttr = nil
	}

	for i, class := range part.Classes() {
		var indices, faceCounts []uint32
		var centroid [3]float64
		for _, off := range class.Primitives {
			p := d.Primitive(off)
			if !p.Type().IsPolygonal() {
				continue
			}
			n := p.VertexCount()
			faceCounts = append(faceCounts, uint32(n))
			for v := n - 1; v >= 0; v-- {
				pi := d.PointIndex(p, v)
				indices = append(indices, uint32(pi))
				centroid[0] += coords[3*pi]
				centroid[1] += coords[3*pi+1]
				centroid[2] += coords[3*pi+2]
			}
		}

		b := prt.NewInitialShapeBuilder()
		if err := b.SetGeometry(coords, indices, faceCounts, nil); err != nil {
			logger.Warn("Could not set shape geometry.", "shape", i, "error", err)
		}

		var seed int32
		if seedAttr != nil {
			seed = seedAttr.Int(class.Primitives[0], 0)
		} else {
			seed = centroidSeed(centroid, len(indices))
		}
		logger.Debug("Created shape builder.", "shape", i, "key", class.Key.String(), "primitives", len(class.Primitives), "faces", len(faceCounts), "seed", seed)
		sd.AddBuilder(b, seed, class.Primitives, class.Key)
	}
}

// centroidSeed hashes the centroid of the summed coordinates and truncates
// the hash to 32 bits.
func centroidSeed(sum [3]float64, n int) int32 {
	var buf [24]byte
	for i, v := range sum {
		if n > 0 {
			v /= float64(n)
		}
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return int32(uint32(xxhash.Sum64(buf[:])))
}

// Put writes the classifier, the main attributes, the seed and the rule
// attributes of every shape onto its primitives. The main attributes are the
// ones MainAttributesFor resolves for the first primitive of the shape. Rule
// attribute handles are created once from the keys of all shapes.
func (c *Converter) Put(ctx context.Context, d *geo.Detail, cls partition.Classifier, sd *Data) {
	mh := newMainHandles(d)

	maps := make([]*attrmap.Map, len(sd.AttributeBuilders()))
	hm := attrconv.HandleMap{}
	for i, amb := range sd.AttributeBuilders() {
		if amb == nil {
			continue
		}
		maps[i] = amb.CreateAttributeMap()
		attrconv.ExtractAttributeNames(hm, maps[i], c.Names)
	}
	attrconv.CreateAttributeHandles(d, hm)

	for i := 0; i < sd.Len(); i++ {
		prims := sd.Primitives(i)
		if len(prims) == 0 {
			continue
		}
		ma := c.MainAttributesFor(d, prims[0])
		cls.Put(d, prims, sd.Key(i))
		for _, r := range geo.Ranges(prims) {
			mh.put(ma, sd.Seed(i), r, c.Names)
			if i < len(maps) && maps[i] != nil {
				attrconv.SetAttributeValues(ctx, hm, maps[i], c.Names, r.Start, r.Size)
			}
		}
	}
}
