package geo

import "slices"

// PrimitiveGroup is a named, ordered set of primitive offsets.
type PrimitiveGroup struct {
	name    string
	members []Offset
}

func (g *PrimitiveGroup) Name() string { return g.name }

// Members returns the group's offsets in insertion order.
func (g *PrimitiveGroup) Members() []Offset { return slices.Clone(g.members) }

// Contains reports whether off is a member.
func (g *PrimitiveGroup) Contains(off Offset) bool {
	return slices.Contains(g.members, off)
}

// AddRange adds size offsets starting at start.
func (g *PrimitiveGroup) AddRange(start Offset, size int) {
	for off := start; off < start+Offset(size); off++ {
		if !g.Contains(off) {
			g.members = append(g.members, off)
		}
	}
}

// NewPrimitiveGroup returns the group called name, creating it if needed.
func (d *Detail) NewPrimitiveGroup(name string) *PrimitiveGroup {
	if g, ok := d.groups[name]; ok {
		return g
	}
	g := &PrimitiveGroup{name: name}
	d.groups[name] = g
	d.groupOrder = append(d.groupOrder, name)
	return g
}

// FindPrimitiveGroup returns nil if name does not exist.
func (d *Detail) FindPrimitiveGroup(name string) *PrimitiveGroup {
	return d.groups[name]
}

// PrimitiveGroups returns all groups in creation order.
func (d *Detail) PrimitiveGroups() []*PrimitiveGroup {
	out := make([]*PrimitiveGroup, 0, len(d.groupOrder))
	for _, n := range d.groupOrder {
		out = append(out, d.groups[n])
	}
	return out
}
