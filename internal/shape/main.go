package shape

import (
	"strings"

	"github.com/specialistvlad/palladiogo/internal/geo"
	"github.com/specialistvlad/palladiogo/internal/nameconv"
)

// Main attribute names stored on every processed primitive.
const (
	AttrRPK        = "pldRPK"
	AttrRuleFile   = "pldRuleFile"
	AttrStartRule  = "pldStartRule"
	AttrStyle      = "pldStyle"
	AttrRandomSeed = "pldRandomSeed"
)

// MainAttributes binds a shape to its rule package, rule file, start rule
// and style.
type MainAttributes struct {
	RPK       string
	RuleFile  string
	StartRule string
	Style     string
}

// StyleOrDefault returns Style, or the default style if it is empty.
func (m MainAttributes) StyleOrDefault() string {
	if m.Style == "" {
		return nameconv.DefaultStyle
	}
	return m.Style
}

// FullyQualifiedStartRule returns StartRule prefixed with the style unless
// it already carries one.
func (m MainAttributes) FullyQualifiedStartRule() string {
	if strings.ContainsRune(m.StartRule, nameconv.StyleSeparator) {
		return m.StartRule
	}
	return nameconv.AddStyle(m.StartRule, m.StyleOrDefault())
}

// ReadMainAttributes reads the main attributes of primitive off. It reports
// false if any of the four string attributes is missing.
func ReadMainAttributes(d *geo.Detail, off geo.Offset, names *nameconv.Converter) (MainAttributes, bool) {
	var attrs [4]*geo.Attribute
	for i, n := range []string{AttrRPK, AttrRuleFile, AttrStartRule, AttrStyle} {
		a := d.FindPrimitiveAttribute(n)
		if a == nil || a.Class() != geo.ClassString {
			return MainAttributes{}, false
		}
		attrs[i] = a
	}
	return MainAttributes{
		RPK:       names.FromHost(attrs[0].String(off, 0)),
		RuleFile:  names.FromHost(attrs[1].String(off, 0)),
		StartRule: names.FromHost(attrs[2].String(off, 0)),
		Style:     names.FromHost(attrs[3].String(off, 0)),
	}, true
}

// mainHandles are the bound main attributes of a detail.
type mainHandles struct {
	rpk, ruleFile, startRule, style, seed *geo.Attribute
}

func newMainHandles(d *geo.Detail) mainHandles {
	return mainHandles{
		rpk:       d.AddStringTuple(geo.OwnerPrimitive, AttrRPK, 1),
		ruleFile:  d.AddStringTuple(geo.OwnerPrimitive, AttrRuleFile, 1),
		startRule: d.AddStringTuple(geo.OwnerPrimitive, AttrStartRule, 1),
		style:     d.AddStringTuple(geo.OwnerPrimitive, AttrStyle, 1),
		seed:      d.AddIntTuple(geo.OwnerPrimitive, AttrRandomSeed, 1, geo.StorageInt32),
	}
}

func (h mainHandles) put(m MainAttributes, seed int32, r geo.Range, names *nameconv.Converter) {
	h.rpk.SetStringRange(r.Start, r.Size, 0, names.HostString(m.RPK))
	h.ruleFile.SetStringRange(r.Start, r.Size, 0, names.HostString(m.RuleFile))
	h.startRule.SetStringRange(r.Start, r.Size, 0, names.HostString(m.StartRule))
	h.style.SetStringRange(r.Start, r.Size, 0, names.HostString(m.Style))
	h.seed.SetIntBlock(r.Start, r.Size, 0, seed)
}

// MainAttributesFor returns the main attributes the shape whose first
// primitive is off is evaluated and written with: every non-empty field of
// c.Main, the value stored on the primitive otherwise. The style goes with
// the start rule it qualifies.
func (c *Converter) MainAttributesFor(d *geo.Detail, off geo.Offset) MainAttributes {
	ma, ok := ReadMainAttributes(d, off, c.Names)
	if !ok {
		return c.Main
	}
	if c.Main.RPK != "" {
		ma.RPK = c.Main.RPK
	}
	if c.Main.RuleFile != "" {
		ma.RuleFile = c.Main.RuleFile
	}
	switch {
	case c.Main.StartRule != "":
		ma.StartRule, ma.Style = c.Main.StartRule, c.Main.Style
	case c.Main.Style != "":
		ma.Style = c.Main.Style
	}
	return ma
}
