package memprt

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/palladiogo/internal/attrmap"
	"github.com/specialistvlad/palladiogo/internal/ctxlog"
	"github.com/specialistvlad/palladiogo/internal/nameconv"
	"github.com/specialistvlad/palladiogo/internal/prt"
	"github.com/zclconf/go-cty/cty"
)

// manifestRoot is decoded from every rule package file.
type manifestRoot struct {
	RuleFiles []*ruleFileBlock `hcl:"rule_file,block"`
	Assets    []*assetBlock    `hcl:"asset,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

type ruleFileBlock struct {
	Key      string       `hcl:"key,label"`
	Rules    []*ruleBlock `hcl:"rule,block"`
	Attrs    []*attrBlock `hcl:"attr,block"`
	Material cty.Value    `hcl:"material,optional"`
	Report   cty.Value    `hcl:"report,optional"`
	UVSets   int          `hcl:"uv_sets,optional"`
}

type ruleBlock struct {
	Name       string `hcl:"name,label"`
	Style      string `hcl:"style,optional"`
	Start      bool   `hcl:"start,optional"`
	Parameters int    `hcl:"parameters,optional"`
}

type attrBlock struct {
	Name    string         `hcl:"name,label"`
	Type    hcl.Expression `hcl:"type,optional"`
	Default cty.Value      `hcl:"default"`
	Style   string         `hcl:"style,optional"`
	Hidden  bool           `hcl:"hidden,optional"`
}

type assetBlock struct {
	Key string `hcl:"key,label"`
}

// rulePackage is a parsed rule package.
type rulePackage struct {
	path      string
	ruleFiles map[string]*ruleFile
	assets    []string
}

// ruleFile is a parsed rule_file block.
type ruleFile struct {
	key      string
	info     *prt.RuleFileInfo
	defaults map[string]attrmap.Value // keyed by fully qualified name
	material *attrmap.Map
	report   *attrmap.Map
	uvSets   int
}

func (r *ruleFile) hasRule(fqName string) bool {
	for _, rl := range r.info.Rules {
		if rl.Name == fqName {
			return true
		}
	}
	return false
}

// loadPackage parses the rule package manifest at path.
func loadPackage(ctx context.Context, path string) (*rulePackage, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading rule package.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse rule package %s: %w", path, diags)
	}

	var root manifestRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode rule package %s: %w", path, diags)
	}

	pkg := &rulePackage{path: path, ruleFiles: make(map[string]*ruleFile)}
	for _, rb := range root.RuleFiles {
		if _, dup := pkg.ruleFiles[rb.Key]; dup {
			return nil, fmt.Errorf("rule package %s: duplicate rule file %q", path, rb.Key)
		}
		rf, err := translateRuleFile(ctx, rb)
		if err != nil {
			return nil, fmt.Errorf("rule package %s: %w", path, err)
		}
		pkg.ruleFiles[rb.Key] = rf
	}
	for _, a := range root.Assets {
		pkg.assets = append(pkg.assets, a.Key)
	}

	logger.Debug("Rule package loaded.", "path", path, "rule_files", len(pkg.ruleFiles), "assets", len(pkg.assets))
	return pkg, nil
}

func translateRuleFile(ctx context.Context, rb *ruleFileBlock) (*ruleFile, error) {
	rf := &ruleFile{
		key:      rb.Key,
		info:     &prt.RuleFileInfo{},
		defaults: make(map[string]attrmap.Value),
		uvSets:   rb.UVSets,
	}
	if rf.uvSets < 0 {
		return nil, fmt.Errorf("rule file %q: uv_sets must not be negative", rb.Key)
	}

	for _, r := range rb.Rules {
		rule := prt.Rule{
			Name:          nameconv.AddStyle(r.Name, styleOrDefault(r.Style)),
			NumParameters: r.Parameters,
		}
		if r.Start {
			rule.Annotations = append(rule.Annotations, prt.Annotation{Name: prt.AnnotationStartRule})
		}
		rf.info.Rules = append(rf.info.Rules, rule)
	}

	for _, a := range rb.Attrs {
		typ, err := attrType(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("rule file %q, attr %q: %w", rb.Key, a.Name, err)
		}
		def, err := attrmap.FromCty(a.Default, typ)
		if err != nil {
			return nil, fmt.Errorf("rule file %q, attr %q: invalid default: %w", rb.Key, a.Name, err)
		}
		fq := nameconv.AddStyle(a.Name, styleOrDefault(a.Style))
		ra := prt.RuleAttribute{Name: fq, ReturnType: typ}
		if a.Hidden {
			ra.Annotations = append(ra.Annotations, prt.Annotation{Name: prt.AnnotationHidden})
		}
		rf.info.Attributes = append(rf.info.Attributes, ra)
		rf.defaults[fq] = def
	}

	var err error
	if rf.material, err = objectToMap(rb.Material); err != nil {
		return nil, fmt.Errorf("rule file %q: material: %w", rb.Key, err)
	}
	if rf.report, err = objectToMap(rb.Report); err != nil {
		return nil, fmt.Errorf("rule file %q: report: %w", rb.Key, err)
	}
	return rf, nil
}

// attrType returns the declared type of an attribute or the type implied by
// its default value.
func attrType(ctx context.Context, a *attrBlock) (attrmap.PrimitiveType, error) {
	if isExprDefined(ctx, a.Type, "type") {
		return typeExprToPrimitiveType(ctx, a.Type)
	}
	return attrmap.ImpliedType(a.Default)
}

// objectToMap converts an HCL object or map literal into an attribute map.
// Keys are added in lexical order.
func objectToMap(v cty.Value) (*attrmap.Map, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.Type().IsObjectType() && !v.Type().IsMapType() {
		return nil, fmt.Errorf("expected an object, got %s", v.Type().FriendlyName())
	}
	b := attrmap.NewBuilder()
	for it := v.ElementIterator(); it.Next(); {
		k, ev := it.Element()
		typ, err := attrmap.ImpliedType(ev)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k.AsString(), err)
		}
		val, err := attrmap.FromCty(ev, typ)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k.AsString(), err)
		}
		if err := b.Set(k.AsString(), val); err != nil {
			return nil, err
		}
	}
	return b.CreateAttributeMap(), nil
}

func styleOrDefault(style string) string {
	if style == "" {
		return nameconv.DefaultStyle
	}
	return style
}
