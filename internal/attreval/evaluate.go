package attreval

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/specialistvlad/palladiogo/internal/attrmap"
	"github.com/specialistvlad/palladiogo/internal/ctxlog"
	"github.com/specialistvlad/palladiogo/internal/geo"
	"github.com/specialistvlad/palladiogo/internal/nameconv"
	"github.com/specialistvlad/palladiogo/internal/prt"
	"github.com/specialistvlad/palladiogo/internal/rulectx"
	"github.com/specialistvlad/palladiogo/internal/shape"
)

// ErrNoResolveMap aborts the evaluation when a shape's rule package cannot
// be resolved.
var ErrNoResolveMap = errors.New("could not create resolve map")

// EvaluateDefaultRuleAttributes finalizes every builder slot of sd with an
// empty attribute set and runs the attribute evaluation encoder over them.
// The reported defaults end up in the attribute builders of sd. Shapes whose
// rule file cannot be described or whose shape cannot be created keep a nil
// slot. A failing generate call is logged and leaves the defaults empty.
func EvaluateDefaultRuleAttributes(ctx context.Context, rc *rulectx.Context, d *geo.Detail, conv *shape.Converter, sd *shape.Data) error {
	logger := ctxlog.FromContext(ctx)
	if !sd.IsValid() {
		return errors.New("evaluate default rule attributes: inconsistent shape data")
	}

	first := len(sd.Shapes())
	n := sd.Len() - first
	builders := make([]*attrmap.Builder, 0, n)
	infos := make([]*prt.RuleFileInfo, 0, n)
	styles := make([]string, 0, n)
	var shapes []*prt.InitialShape

	for i := first; i < sd.Len(); i++ {
		ma := conv.MainAttributesFor(d, sd.Primitives(i)[0])

		rm, err := rc.ResolveMap(ctx, ma.RPK)
		if err != nil {
			return fmt.Errorf("%w from rule package %q: %w", ErrNoResolveMap, ma.RPK, err)
		}

		amb := attrmap.NewBuilder()
		info, err := rc.RuleFileInfo(rm, ma.RuleFile)
		if err != nil {
			logger.Warn("Could not get rule file info, skipping shape.", "shape", i, "rule_file", ma.RuleFile, "error", err)
			sd.AddShape(nil, amb, attrmap.Empty)
			continue
		}

		name := "shape_" + strconv.Itoa(i)
		b := sd.Builder(i)
		b.SetAttributes(ma.RuleFile, ma.FullyQualifiedStartRule(), sd.Seed(i), name, attrmap.Empty, rm)
		is, err := b.CreateInitialShapeAndReset()
		if err != nil {
			logger.Warn("Failed to create initial shape.", "shape", name, "error", err)
			sd.AddShape(nil, amb, attrmap.Empty)
			continue
		}
		sd.AddShape(is, amb, attrmap.Empty)

		shapes = append(shapes, is)
		builders = append(builders, amb)
		infos = append(infos, info)
		styles = append(styles, ma.StyleOrDefault())
	}

	if len(shapes) == 0 {
		return nil
	}

	opts, err := rc.Engine.ValidatedEncoderOptions(prt.EncoderAttributeEval, nil)
	if err != nil {
		logger.Error("Could not validate attribute evaluation encoder options.", "error", err)
		return nil
	}
	cb := NewCallbacks(logger, builders, infos, styles)
	status := rc.Engine.Generate(shapes, []string{prt.EncoderAttributeEval}, []*attrmap.Map{opts}, cb, rc.Cache)
	if status != prt.StatusOK {
		logger.Error("Default rule attribute evaluation failed.", "status", status.Description(), "code", int(status))
	}
	return nil
}

// Overrides maps style-less rule attribute names to override candidates.
type Overrides map[string]attrmap.Value

// Names returns the attribute names in sorted order.
func (o Overrides) Names() []string {
	names := make([]string, 0, len(o))
	for n := range o {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// CaptureOverridableAttributes snapshots the default attribute builders of
// sd. Array and undefined values are skipped. The first shape declaring a
// name provides its value; within that shape a later key of another style
// replaces an earlier one, so Night$height wins over Default$height.
func CaptureOverridableAttributes(sd *shape.Data) Overrides {
	out := make(Overrides)
	for _, amb := range sd.AttributeBuilders() {
		if amb == nil {
			continue
		}
		m := amb.CreateAttributeMap()
		shapeValues := make(Overrides)
		for _, key := range m.Keys() {
			v, _ := m.Value(key)
			switch v.Type() {
			case attrmap.Bool, attrmap.Int, attrmap.Float, attrmap.String:
				shapeValues[nameconv.RemoveStyle(key)] = v
			}
		}
		for name, v := range shapeValues {
			if _, ok := out[name]; !ok {
				out[name] = v
			}
		}
	}
	return out
}
