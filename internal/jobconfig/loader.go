package jobconfig

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/palladiogo/internal/ctxlog"
	"github.com/specialistvlad/palladiogo/internal/fsutil"
	"github.com/specialistvlad/palladiogo/internal/shape"
	"github.com/zclconf/go-cty/cty"
)

// ErrNoJobFiles is returned when none of the given paths holds a job file.
var ErrNoJobFiles = errors.New("no job files found")

// fileRoot decodes all top-level attributes and blocks of one job file.
type fileRoot struct {
	Scene    *string        `hcl:"scene,optional"`
	Output   *string        `hcl:"output,optional"`
	Assign   []*assignBlock `hcl:"assign,block"`
	Generate *generateBlock `hcl:"generate,block"`
}

type assignBlock struct {
	Name       string    `hcl:"name,label"`
	Classifier string    `hcl:"classifier,optional"`
	RPK        string    `hcl:"rpk"`
	RuleFile   string    `hcl:"rule_file,optional"`
	StartRule  string    `hcl:"start_rule,optional"`
	Style      string    `hcl:"style,optional"`
	Overrides  cty.Value `hcl:"overrides,optional"`
}

type generateBlock struct {
	Classifier     string `hcl:"classifier,optional"`
	GroupCreation  string `hcl:"group_creation,optional"`
	GroupPrefix    string `hcl:"group_prefix,optional"`
	EmitAttributes bool   `hcl:"emit_attributes,optional"`
	EmitMaterials  bool   `hcl:"emit_materials,optional"`
	EmitReports    bool   `hcl:"emit_reports,optional"`
}

// Load parses every job file (*.hcl) found in paths, walking directories,
// and merges them into one job. scene, output and generate may be set by
// one file only.
func Load(ctx context.Context, paths ...string) (*Job, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Job loader started.", "path_count", len(paths))

	files, err := fsutil.FindFiles(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrNoJobFiles, paths)
	}
	logger.Debug("Discovered job files.", "count", len(files))

	job := &Job{}
	parser := hclparse.NewParser()
	for _, file := range files {
		f, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse job file %s: %w", file, diags)
		}
		dir := filepath.Dir(file)
		evalCtx := &hcl.EvalContext{Variables: map[string]cty.Value{
			"job_dir": cty.StringVal(dir),
		}}

		var root fileRoot
		if diags := gohcl.DecodeBody(f.Body, evalCtx, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode job file %s: %w", file, diags)
		}
		if err := merge(job, &root, dir); err != nil {
			return nil, fmt.Errorf("job file %s: %w", file, err)
		}
	}

	logger.Debug("Job loading complete.", "scene", job.Scene, "assign_passes", len(job.Assign), "generate", job.Generate != nil)
	return job, nil
}

func merge(job *Job, root *fileRoot, dir string) error {
	if root.Scene != nil {
		if job.Scene != "" {
			return errors.New("scene is already set")
		}
		job.Scene = resolve(dir, *root.Scene)
	}
	if root.Output != nil {
		if job.Output != "" {
			return errors.New("output is already set")
		}
		job.Output = resolve(dir, *root.Output)
	}
	for _, ab := range root.Assign {
		if slices.ContainsFunc(job.Assign, func(a *Assign) bool { return a.Name == ab.Name }) {
			return fmt.Errorf("assign %q is declared twice", ab.Name)
		}
		a, err := translateAssign(ab, dir)
		if err != nil {
			return err
		}
		job.Assign = append(job.Assign, a)
	}
	if root.Generate != nil {
		if job.Generate != nil {
			return errors.New("generate is already declared")
		}
		g, err := translateGenerate(root.Generate)
		if err != nil {
			return err
		}
		job.Generate = g
	}
	return nil
}

func translateAssign(b *assignBlock, dir string) (*Assign, error) {
	a := &Assign{
		Name:       b.Name,
		Classifier: b.Classifier,
		RPK:        resolve(dir, b.RPK),
		RuleFile:   b.RuleFile,
		StartRule:  b.StartRule,
		Style:      b.Style,
	}
	if b.Overrides.IsNull() {
		return a, nil
	}
	t := b.Overrides.Type()
	if !t.IsObjectType() && !t.IsMapType() {
		return nil, fmt.Errorf("assign %q: overrides must be an object, got %s", b.Name, t.FriendlyName())
	}
	a.Overrides = make(map[string]cty.Value, b.Overrides.LengthInt())
	for it := b.Overrides.ElementIterator(); it.Next(); {
		k, v := it.Element()
		a.Overrides[k.AsString()] = v
	}
	return a, nil
}

func translateGenerate(b *generateBlock) (*Generate, error) {
	gc, err := shape.ParseGroupCreation(b.GroupCreation)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return &Generate{
		Classifier:     b.Classifier,
		GroupCreation:  gc,
		GroupPrefix:    b.GroupPrefix,
		EmitAttributes: b.EmitAttributes,
		EmitMaterials:  b.EmitMaterials,
		EmitReports:    b.EmitReports,
	}, nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
