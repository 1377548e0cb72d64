package prt

import (
	"slices"

	"github.com/specialistvlad/palladiogo/internal/attrmap"
	"github.com/specialistvlad/palladiogo/internal/nameconv"
)

// AnnotationHidden marks attributes that must not be exposed to users.
const AnnotationHidden = "@Hidden"

// AnnotationStartRule marks rules that can start a generation.
const AnnotationStartRule = "@StartRule"

// Annotation is a rule file annotation with optional arguments.
type Annotation struct {
	Name      string
	Arguments []attrmap.Value
}

// RuleAttribute is an attribute declared by a rule file. Name is fully
// qualified ("style$name").
type RuleAttribute struct {
	Name        string
	ReturnType  attrmap.PrimitiveType
	Annotations []Annotation
}

// HasAnnotation reports whether the attribute carries the annotation.
func (a RuleAttribute) HasAnnotation(name string) bool {
	return slices.ContainsFunc(a.Annotations, func(an Annotation) bool { return an.Name == name })
}

// Rule is a rule declared by a rule file. Name is fully qualified.
type Rule struct {
	Name          string
	NumParameters int
	Annotations   []Annotation
}

// RuleFileInfo describes the attributes and rules of a compiled rule file.
type RuleFileInfo struct {
	Attributes []RuleAttribute
	Rules      []Rule
}

// Attribute returns the attribute with the fully qualified name key.
func (r *RuleFileInfo) Attribute(key string) (RuleAttribute, bool) {
	if r == nil {
		return RuleAttribute{}, false
	}
	for _, a := range r.Attributes {
		if a.Name == key {
			return a, true
		}
	}
	return RuleAttribute{}, false
}

// IsHidden reports whether key is declared and annotated hidden. Only the
// first declaration of key is considered.
func (r *RuleFileInfo) IsHidden(key string) bool {
	a, ok := r.Attribute(key)
	return ok && a.HasAnnotation(AnnotationHidden)
}

// Styles returns the distinct styles of all attributes and rules in
// declaration order.
func (r *RuleFileInfo) Styles() []string {
	if r == nil {
		return nil
	}
	var styles []string
	add := func(fq string) {
		var style, name string
		nameconv.Separate(fq, &style, &name)
		if style != "" && !slices.Contains(styles, style) {
			styles = append(styles, style)
		}
	}
	for _, a := range r.Attributes {
		add(a.Name)
	}
	for _, rl := range r.Rules {
		add(rl.Name)
	}
	return styles
}

// StartRules returns the style-less names of all parameterless rules
// annotated as start rules.
func (r *RuleFileInfo) StartRules() []string {
	if r == nil {
		return nil
	}
	var out []string
	for _, rl := range r.Rules {
		if rl.NumParameters > 0 {
			continue
		}
		if slices.ContainsFunc(rl.Annotations, func(a Annotation) bool { return a.Name == AnnotationStartRule }) {
			out = append(out, nameconv.RemoveStyle(rl.Name))
		}
	}
	return out
}
