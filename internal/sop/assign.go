// Package sop implements the two cook operations of the pipeline. Assign
// binds primitives to a rule package and writes the default rule attributes
// onto them, Generate runs the rules and returns the generated geometry.
package sop

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/palladiogo/internal/attreval"
	"github.com/specialistvlad/palladiogo/internal/attrmap"
	"github.com/specialistvlad/palladiogo/internal/ctxlog"
	"github.com/specialistvlad/palladiogo/internal/geo"
	"github.com/specialistvlad/palladiogo/internal/nameconv"
	"github.com/specialistvlad/palladiogo/internal/partition"
	"github.com/specialistvlad/palladiogo/internal/rulectx"
	"github.com/specialistvlad/palladiogo/internal/shape"
	"github.com/zclconf/go-cty/cty"
)

// ErrAssignAborted is returned when the default rule attributes could not be
// evaluated.
var ErrAssignAborted = errors.New("assign aborted")

// AssignParams are the parameters of the assign operation.
type AssignParams struct {
	// Classifier is the primitive attribute grouping primitives into shapes.
	Classifier string
	Main       shape.MainAttributes
	// Overrides replace default rule attribute values. Keys are style-less
	// rule attribute names, values are converted to the type of the default.
	Overrides map[string]cty.Value
}

// AssignResult reports what Assign wrote.
type AssignResult struct {
	Shapes int
	// Defaults holds the evaluated defaults before overrides were applied.
	Defaults attreval.Overrides
}

// Assign groups the primitives of d, evaluates the default rule attributes
// of every group and writes the classifier, the main attributes, the seed
// and the (possibly overridden) rule attributes onto the primitives.
func Assign(ctx context.Context, rc *rulectx.Context, d *geo.Detail, p AssignParams) (AssignResult, error) {
	logger := ctxlog.FromContext(ctx)
	cls := partition.NewClassifier(p.Classifier)
	conv := &shape.Converter{Main: p.Main, Names: rc.Names}

	sd := shape.NewData(shape.GroupNone, "")
	conv.Get(ctx, d, cls, sd)
	if err := attreval.EvaluateDefaultRuleAttributes(ctx, rc, d, conv, sd); err != nil {
		return AssignResult{}, fmt.Errorf("%w: %w", ErrAssignAborted, err)
	}
	defaults := attreval.CaptureOverridableAttributes(sd)

	if err := applyOverrides(sd, p.Overrides); err != nil {
		return AssignResult{}, err
	}
	conv.Put(ctx, d, cls, sd)

	logger.Debug("Rule attributes assigned.", "shapes", sd.Len(), "defaults", len(defaults), "overrides", len(p.Overrides))
	return AssignResult{Shapes: sd.Len(), Defaults: defaults}, nil
}

// applyOverrides replaces the value of every default whose style-less name
// has an override. An override that matches no default of any shape is an
// error, as is a value that cannot be converted to the default's type.
func applyOverrides(sd *shape.Data, overrides map[string]cty.Value) error {
	if len(overrides) == 0 {
		return nil
	}
	used := make(map[string]bool, len(overrides))
	for _, amb := range sd.AttributeBuilders() {
		if amb == nil {
			continue
		}
		m := amb.CreateAttributeMap()
		for _, key := range m.Keys() {
			name := nameconv.RemoveStyle(key)
			ov, ok := overrides[name]
			if !ok {
				continue
			}
			v, err := attrmap.FromCty(ov, m.Type(key))
			if err != nil {
				return fmt.Errorf("override %q: %w", name, err)
			}
			if err := amb.Set(key, v); err != nil {
				return fmt.Errorf("override %q: %w", name, err)
			}
			used[name] = true
		}
	}
	for name := range overrides {
		if !used[name] {
			return fmt.Errorf("override %q: no such rule attribute", name)
		}
	}
	return nil
}
