// Package jobconfig loads job files describing which scene to read, how to
// assign rule packages to it and how to generate the result.
package jobconfig

import (
	"github.com/specialistvlad/palladiogo/internal/shape"
	"github.com/specialistvlad/palladiogo/internal/sop"
	"github.com/zclconf/go-cty/cty"
)

// Job is the format-agnostic representation of one or more job files.
type Job struct {
	// Scene is the input scene file. Relative paths in job files are
	// resolved against the directory of the file.
	Scene string
	// Output is the scene file the result is written to.
	Output   string
	Assign   []*Assign
	Generate *Generate
}

// Assign is one assign pass. Passes run in declaration order.
type Assign struct {
	Name       string
	Classifier string
	RPK        string
	RuleFile   string
	StartRule  string
	Style      string
	Overrides  map[string]cty.Value
}

// Params converts the pass into operation parameters.
func (a *Assign) Params() sop.AssignParams {
	return sop.AssignParams{
		Classifier: a.Classifier,
		Main: shape.MainAttributes{
			RPK:       a.RPK,
			RuleFile:  a.RuleFile,
			StartRule: a.StartRule,
			Style:     a.Style,
		},
		Overrides: a.Overrides,
	}
}

// Generate configures the generate pass.
type Generate struct {
	Classifier     string
	GroupCreation  shape.GroupCreation
	GroupPrefix    string
	EmitAttributes bool
	EmitMaterials  bool
	EmitReports    bool
}

func (g *Generate) Params() sop.GenerateParams {
	return sop.GenerateParams{
		Classifier:     g.Classifier,
		GroupCreation:  g.GroupCreation,
		GroupPrefix:    g.GroupPrefix,
		EmitAttributes: g.EmitAttributes,
		EmitMaterials:  g.EmitMaterials,
		EmitReports:    g.EmitReports,
	}
}
