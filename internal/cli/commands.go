package cli

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/palladiogo/internal/app"
	"github.com/specialistvlad/palladiogo/internal/jobconfig"
	"github.com/specialistvlad/palladiogo/internal/shape"
	"github.com/spf13/cobra"
	"github.com/zclconf/go-cty/cty"
)

func newRunCommand(g *globalFlags) *cobra.Command {
	var scene, out string

	cmd := &cobra.Command{
		Use:   "run [JOB_PATH...]",
		Short: "Run the jobs described by job files",
		Long: `Run loads every .hcl job file found in the given files and directories,
merges them into one job and runs its assign and generate passes.`,
		Args: checkArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config{JobPaths: args, Scene: scene, Output: out}
			return withApp(cmd, g, cfg, func(a *app.App) error {
				return a.Run(cmd.Context())
			})
		},
	}
	cmd.Flags().StringVar(&scene, "scene", "", "Input scene, overriding the scene of the job.")
	cmd.Flags().StringVar(&out, "out", "", "Output scene, overriding the output of the job.")
	return cmd
}

func newAssignCommand(g *globalFlags) *cobra.Command {
	var (
		scene, out string
		pass       jobconfig.Assign
		overrides  []string
	)

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign a rule package to the primitives of a scene",
		Long: `Assign writes the rule package, rule file, start rule and style to every
primitive of the scene together with the default values of the rule
attributes. Without --rule-file the first rule file of the package and its
first start rule are used.`,
		Args: checkArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseOverrides(overrides)
			if err != nil {
				return usageError(err)
			}
			pass.Name = "cli"
			pass.Overrides = parsed
			job := &jobconfig.Job{Scene: scene, Output: out, Assign: []*jobconfig.Assign{&pass}}
			return withApp(cmd, g, app.Config{}, func(a *app.App) error {
				return a.RunJob(cmd.Context(), job)
			})
		},
	}
	cmd.Flags().StringVar(&scene, "scene", "", "Input scene.")
	cmd.Flags().StringVar(&out, "out", "", "Output scene.")
	cmd.Flags().StringVar(&pass.RPK, "rpk", "", "Rule package to assign.")
	cmd.Flags().StringVar(&pass.RuleFile, "rule-file", "", "Rule file inside the rule package.")
	cmd.Flags().StringVar(&pass.StartRule, "start-rule", "", "Start rule, without style.")
	cmd.Flags().StringVar(&pass.Style, "style", "", "Style of the start rule.")
	cmd.Flags().StringVar(&pass.Classifier, "classifier", "", "Primitive attribute naming the primitive classifier.")
	cmd.Flags().StringArrayVar(&overrides, "override", nil, "Rule attribute override as NAME=VALUE. May be repeated.")
	_ = cmd.MarkFlagRequired("scene")
	_ = cmd.MarkFlagRequired("out")
	_ = cmd.MarkFlagRequired("rpk")
	return cmd
}

func newGenerateCommand(g *globalFlags) *cobra.Command {
	var (
		scene, out, groupCreation string
		gen                       jobconfig.Generate
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate models from the assigned primitives of a scene",
		Args:  checkArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			gc, err := shape.ParseGroupCreation(groupCreation)
			if err != nil {
				return usageError(err)
			}
			gen.GroupCreation = gc
			job := &jobconfig.Job{Scene: scene, Output: out, Generate: &gen}
			return withApp(cmd, g, app.Config{}, func(a *app.App) error {
				return a.RunJob(cmd.Context(), job)
			})
		},
	}
	cmd.Flags().StringVar(&scene, "scene", "", "Input scene.")
	cmd.Flags().StringVar(&out, "out", "", "Output scene.")
	cmd.Flags().StringVar(&gen.Classifier, "classifier", "", "Primitive attribute naming the primitive classifier.")
	cmd.Flags().StringVar(&groupCreation, "group-creation", "none", "Primitive groups to create. Options: 'none' or 'primcls'.")
	cmd.Flags().StringVar(&gen.GroupPrefix, "group-prefix", "", "Prefix of groups named after integer classifier values.")
	cmd.Flags().BoolVar(&gen.EmitAttributes, "emit-attributes", false, "Write rule attributes to the generated primitives.")
	cmd.Flags().BoolVar(&gen.EmitMaterials, "emit-materials", false, "Write materials to the generated primitives.")
	cmd.Flags().BoolVar(&gen.EmitReports, "emit-reports", false, "Write reports to the generated primitives.")
	_ = cmd.MarkFlagRequired("scene")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newInspectCommand(g *globalFlags) *cobra.Command {
	var rpk, ruleFile string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Describe the rule files, start rules and attributes of a rule package",
		Args:  checkArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, app.Config{}, func(a *app.App) error {
				return a.Inspect(cmd.Context(), rpk, ruleFile)
			})
		},
	}
	cmd.Flags().StringVar(&rpk, "rpk", "", "Rule package to inspect.")
	cmd.Flags().StringVar(&ruleFile, "rule-file", "", "Rule file to describe. Defaults to the first one.")
	_ = cmd.MarkFlagRequired("rpk")
	return cmd
}

// parseOverrides parses NAME=VALUE pairs. Values are HCL expressions
// without variables; anything that is not one is taken as a string.
func parseOverrides(pairs []string) (map[string]cty.Value, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]cty.Value, len(pairs))
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid override %q: expected NAME=VALUE", p)
		}
		out[name] = parseValue(raw)
	}
	return out, nil
}

func parseValue(raw string) cty.Value {
	expr, diags := hclsyntax.ParseExpression([]byte(raw), "override", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.StringVal(raw)
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() || !v.IsWhollyKnown() || v.IsNull() {
		return cty.StringVal(raw)
	}
	return v
}
