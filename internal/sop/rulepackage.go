package sop

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/specialistvlad/palladiogo/internal/nameconv"
	"github.com/specialistvlad/palladiogo/internal/prt"
	"github.com/specialistvlad/palladiogo/internal/rulectx"
	"github.com/specialistvlad/palladiogo/internal/shape"
)

var (
	ErrNoRuleFiles = errors.New("no rule files found in rule package")
	ErrNoRules     = errors.New("rule file does not contain any rules")
)

// RulePackage describes a rule package and one of its rule files.
type RulePackage struct {
	RuleFiles  []string
	RuleFile   string
	Styles     []string
	StartRules []string
	Attributes []prt.RuleAttribute
}

// DescribeRulePackage lists the rule files of the package at rpk and the
// styles, start rules and visible attributes of ruleFile. An empty ruleFile
// selects the first rule file.
func DescribeRulePackage(ctx context.Context, rc *rulectx.Context, rpk, ruleFile string) (RulePackage, error) {
	rm, err := rc.ResolveMap(ctx, rpk)
	if err != nil {
		return RulePackage{}, err
	}
	var out RulePackage
	for _, rf := range prt.RuleFiles(rm) {
		out.RuleFiles = append(out.RuleFiles, rf.Key)
	}
	if len(out.RuleFiles) == 0 {
		return RulePackage{}, fmt.Errorf("%s: %w", rpk, ErrNoRuleFiles)
	}
	if ruleFile == "" {
		ruleFile = out.RuleFiles[0]
	}
	out.RuleFile = ruleFile

	info, err := rc.RuleFileInfo(rm, ruleFile)
	if err != nil {
		return RulePackage{}, err
	}
	out.Styles = info.Styles()
	out.StartRules = info.StartRules()
	for _, a := range info.Attributes {
		if !a.HasAnnotation(prt.AnnotationHidden) {
			out.Attributes = append(out.Attributes, a)
		}
	}
	return out, nil
}

// DefaultMainAttributes returns main attributes bound to the first rule file
// of the package at rpk and its first start rule.
func DefaultMainAttributes(ctx context.Context, rc *rulectx.Context, rpk string) (shape.MainAttributes, error) {
	rm, err := rc.ResolveMap(ctx, rpk)
	if err != nil {
		return shape.MainAttributes{}, err
	}
	rfs := prt.RuleFiles(rm)
	if len(rfs) == 0 {
		return shape.MainAttributes{}, fmt.Errorf("%s: %w", rpk, ErrNoRuleFiles)
	}
	info, err := rc.Engine.CreateRuleFileInfo(rfs[0].URI, rc.Cache)
	if err != nil {
		return shape.MainAttributes{}, err
	}
	if len(info.Rules) == 0 {
		return shape.MainAttributes{}, fmt.Errorf("%s: %w", rfs[0].Key, ErrNoRules)
	}

	ma := shape.MainAttributes{RPK: rpk, RuleFile: rfs[0].Key}
	var style, name string
	nameconv.Separate(firstStartRule(info), &style, &name)
	ma.Style, ma.StartRule = style, name
	return ma, nil
}

// firstStartRule returns the first parameterless rule annotated as start
// rule, falling back to the first rule.
func firstStartRule(info *prt.RuleFileInfo) string {
	for _, r := range info.Rules {
		if r.NumParameters == 0 && slices.ContainsFunc(r.Annotations, func(a prt.Annotation) bool {
			return a.Name == prt.AnnotationStartRule
		}) {
			return r.Name
		}
	}
	return info.Rules[0].Name
}
