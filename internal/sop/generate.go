package sop

import (
	"context"
	"fmt"

	"github.com/specialistvlad/palladiogo/internal/attrmap"
	"github.com/specialistvlad/palladiogo/internal/ctxlog"
	"github.com/specialistvlad/palladiogo/internal/geo"
	"github.com/specialistvlad/palladiogo/internal/modelconv"
	"github.com/specialistvlad/palladiogo/internal/partition"
	"github.com/specialistvlad/palladiogo/internal/prt"
	"github.com/specialistvlad/palladiogo/internal/rulectx"
	"github.com/specialistvlad/palladiogo/internal/shape"
)

// DefaultGroupPrefix names primitive groups of integer classifier values.
const DefaultGroupPrefix = "generate"

// GenerateParams are the parameters of the generate operation.
type GenerateParams struct {
	Classifier     string
	GroupCreation  shape.GroupCreation
	GroupPrefix    string
	EmitAttributes bool
	EmitMaterials  bool
	EmitReports    bool
}

// GenerateResult holds the generated geometry and the per shape outcome.
type GenerateResult struct {
	Detail *geo.Detail
	// Statuses is indexed like the shapes of the input detail. Shapes that
	// could not be created report StatusInitialShapeFailed.
	Statuses []prt.Status
	Names    []string
}

// Failed returns the number of shapes that did not generate.
func (r GenerateResult) Failed() int {
	n := 0
	for _, s := range r.Statuses {
		if s != prt.StatusOK {
			n++
		}
	}
	return n
}

// Generate turns the assigned primitives of d into initial shapes, runs the
// rules and collects the resulting models into a new detail.
func Generate(ctx context.Context, rc *rulectx.Context, d *geo.Detail, p GenerateParams) (GenerateResult, error) {
	logger := ctxlog.FromContext(ctx)
	prefix := p.GroupPrefix
	if prefix == "" {
		prefix = DefaultGroupPrefix
	}

	sd := shape.NewData(p.GroupCreation, prefix)
	g := &shape.Generator{Converter: shape.Converter{Names: rc.Names}, ResolveMaps: rc}
	g.Get(ctx, d, partition.NewClassifier(p.Classifier), sd)

	res := GenerateResult{
		Detail:   geo.NewDetail(),
		Statuses: make([]prt.Status, sd.Len()),
		Names:    make([]string, sd.Len()),
	}
	var shapes []*prt.InitialShape
	var index []int
	for i, is := range sd.Shapes() {
		res.Names[i] = sd.Name(i)
		if is == nil {
			res.Statuses[i] = prt.StatusInitialShapeFailed
			continue
		}
		shapes = append(shapes, is)
		index = append(index, i)
	}
	if len(shapes) == 0 {
		logger.Warn("No initial shapes to generate.", "shapes", sd.Len())
		return res, nil
	}

	b := attrmap.NewBuilder()
	_ = b.SetBool(prt.OptionEmitAttributes, p.EmitAttributes)
	_ = b.SetBool(prt.OptionEmitMaterials, p.EmitMaterials)
	_ = b.SetBool(prt.OptionEmitReports, p.EmitReports)
	opts, err := rc.Engine.ValidatedEncoderOptions(prt.EncoderGeometry, b.CreateAttributeMap())
	if err != nil {
		return res, fmt.Errorf("generate: encoder options: %w", err)
	}

	mc := modelconv.New(ctx, res.Detail, p.GroupCreation, rc.Names, len(shapes))
	status := rc.Engine.Generate(shapes, []string{prt.EncoderGeometry}, []*attrmap.Map{opts}, mc, rc.Cache)
	for j, s := range mc.Statuses() {
		res.Statuses[index[j]] = s
	}
	if status != prt.StatusOK {
		return res, fmt.Errorf("generate: %w", status.Err())
	}

	logger.Debug("Generate finished.", "shapes", len(shapes), "failed", res.Failed(), "primitives", res.Detail.NumPrimitives())
	return res, nil
}
