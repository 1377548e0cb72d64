package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/palladiogo/internal/ctxlog"
	"github.com/specialistvlad/palladiogo/internal/geo"
	"github.com/specialistvlad/palladiogo/internal/jobconfig"
	"github.com/specialistvlad/palladiogo/internal/scene"
	"github.com/specialistvlad/palladiogo/internal/sop"
	"gopkg.in/yaml.v3"
)

// ErrNoOutput is returned when neither the job nor the configuration name
// an output scene.
var ErrNoOutput = errors.New("no output scene configured")

// Run loads the job files of the configuration and runs the job.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	a.setStage("loading")
	job, err := jobconfig.Load(ctx, a.config.JobPaths...)
	if err != nil {
		return fmt.Errorf("failed to load job: %w", err)
	}
	return a.RunJob(ctx, job)
}

// RunJob reads the scene of job, runs its assign passes in order followed
// by the generate pass if one is configured and writes the result.
func (a *App) RunJob(ctx context.Context, job *jobconfig.Job) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := a.logger

	if a.config.HealthcheckPort > 0 && a.httpServer == nil {
		if _, err := a.startHealthcheckServer(a.config.HealthcheckPort); err != nil {
			return err
		}
	}
	defer a.setStage("idle")

	in, out := job.Scene, job.Output
	if a.config.Scene != "" {
		in = a.config.Scene
	}
	if a.config.Output != "" {
		out = a.config.Output
	}
	if out == "" {
		return ErrNoOutput
	}

	a.setStage("reading")
	d, err := scene.Load(in)
	if err != nil {
		return err
	}
	logger.Info("Scene loaded.", "path", in, "points", d.NumPoints(), "primitives", d.NumPrimitives())

	for _, pass := range job.Assign {
		a.setStage("assign " + pass.Name)
		if err := a.assign(ctx, d, pass); err != nil {
			return fmt.Errorf("assign %q: %w", pass.Name, err)
		}
	}

	result := d
	if job.Generate != nil {
		a.setStage("generate")
		res, err := sop.Generate(ctx, a.rc, d, job.Generate.Params())
		if err != nil {
			return fmt.Errorf("generate: %w", err)
		}
		if n := res.Failed(); n > 0 {
			logger.Warn("Some shapes failed to generate.", "failed", n, "total", len(res.Statuses))
		}
		result = res.Detail
	}

	a.setStage("writing")
	if err := scene.Save(out, result); err != nil {
		return err
	}
	logger.Info("Scene written.", "path", out, "primitives", result.NumPrimitives())
	return nil
}

// assign runs one pass. A pass without rule file binds the first rule file
// of the package and its first start rule.
func (a *App) assign(ctx context.Context, d *geo.Detail, pass *jobconfig.Assign) error {
	p := pass.Params()
	if p.Main.RuleFile == "" {
		ma, err := sop.DefaultMainAttributes(ctx, a.rc, p.Main.RPK)
		if err != nil {
			return err
		}
		if p.Main.StartRule == "" {
			p.Main.StartRule, p.Main.Style = ma.StartRule, ma.Style
		}
		p.Main.RuleFile = ma.RuleFile
		a.logger.Debug("Using default rule file.", "rule_file", ma.RuleFile, "start_rule", p.Main.StartRule)
	}
	res, err := sop.Assign(ctx, a.rc, d, p)
	if err != nil {
		return err
	}
	a.logger.Info("Rule package assigned.", "pass", pass.Name, "shapes", res.Shapes, "attributes", len(res.Defaults))
	return nil
}

type inspectDoc struct {
	RuleFiles  []string        `yaml:"rule_files"`
	RuleFile   string          `yaml:"rule_file"`
	Styles     []string        `yaml:"styles"`
	StartRules []string        `yaml:"start_rules"`
	Attributes []inspectAttrib `yaml:"attributes,omitempty"`
}

type inspectAttrib struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Annotations []string `yaml:"annotations,omitempty,flow"`
}

// Inspect writes a description of the rule package at rpk to the output
// writer of the App.
func (a *App) Inspect(ctx context.Context, rpk, ruleFile string) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	desc, err := sop.DescribeRulePackage(ctx, a.rc, rpk, ruleFile)
	if err != nil {
		return err
	}

	doc := inspectDoc{
		RuleFiles:  desc.RuleFiles,
		RuleFile:   desc.RuleFile,
		Styles:     desc.Styles,
		StartRules: desc.StartRules,
	}
	for _, attr := range desc.Attributes {
		ia := inspectAttrib{Name: attr.Name, Type: attr.ReturnType.String()}
		for _, an := range attr.Annotations {
			ia.Annotations = append(ia.Annotations, an.Name)
		}
		doc.Attributes = append(doc.Attributes, ia)
	}

	enc := yaml.NewEncoder(a.outW)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode rule package description: %w", err)
	}
	return enc.Close()
}
