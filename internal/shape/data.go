package shape

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/specialistvlad/palladiogo/internal/attrmap"
	"github.com/specialistvlad/palladiogo/internal/geo"
	"github.com/specialistvlad/palladiogo/internal/partition"
	"github.com/specialistvlad/palladiogo/internal/prt"
)

// DefaultShapeName names shapes when no groups are created.
const DefaultShapeName = "pldShape"

const invalidGroupName = "_invalid_"

// GroupCreation selects whether output primitives are grouped per shape.
type GroupCreation int

const (
	GroupNone GroupCreation = iota
	GroupPrimCls
)

func (g GroupCreation) String() string {
	if g == GroupPrimCls {
		return "primcls"
	}
	return "none"
}

// ParseGroupCreation parses "none" or "primcls", ignoring case.
func ParseGroupCreation(s string) (GroupCreation, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return GroupNone, nil
	case "primcls":
		return GroupPrimCls, nil
	default:
		return GroupNone, fmt.Errorf("unknown group creation %q", s)
	}
}

// Data holds per shape state in parallel slices indexed by shape index.
// Builders, seeds, primitives and keys are appended together by AddBuilder;
// finalized shapes and their attribute builders and maps by AddShape.
type Data struct {
	groupCreation GroupCreation
	namePrefix    string

	builders   []*prt.InitialShapeBuilder
	seeds      []int32
	primitives [][]geo.Offset
	keys       []partition.Key
	names      []string

	attrBuilders []*attrmap.Builder
	attrMaps     []*attrmap.Map
	shapes       []*prt.InitialShape
}

// NewData returns empty shape data. namePrefix is used for shapes keyed by
// integer classifier values.
func NewData(gc GroupCreation, namePrefix string) *Data {
	return &Data{groupCreation: gc, namePrefix: namePrefix}
}

// GroupCreation returns the grouping mode.
func (sd *Data) GroupCreation() GroupCreation { return sd.groupCreation }

// AddBuilder appends a new shape slot.
func (sd *Data) AddBuilder(b *prt.InitialShapeBuilder, seed int32, prims []geo.Offset, key partition.Key) {
	sd.builders = append(sd.builders, b)
	sd.seeds = append(sd.seeds, seed)
	sd.primitives = append(sd.primitives, prims)
	sd.keys = append(sd.keys, key)
	if sd.groupCreation == GroupPrimCls {
		sd.names = append(sd.names, groupName(key, sd.namePrefix))
	}
}

// AddShape finalizes the next shape slot. is may be nil if the shape could
// not be created; the slot is kept so indices stay aligned.
func (sd *Data) AddShape(is *prt.InitialShape, amb *attrmap.Builder, m *attrmap.Map) {
	sd.shapes = append(sd.shapes, is)
	sd.attrBuilders = append(sd.attrBuilders, amb)
	sd.attrMaps = append(sd.attrMaps, m)
}

// Len returns the number of shape slots.
func (sd *Data) Len() int { return len(sd.builders) }

func (sd *Data) Builder(i int) *prt.InitialShapeBuilder { return sd.builders[i] }
func (sd *Data) Seed(i int) int32                       { return sd.seeds[i] }
func (sd *Data) Primitives(i int) []geo.Offset          { return sd.primitives[i] }
func (sd *Data) Key(i int) partition.Key                { return sd.keys[i] }

// Name returns the shape name, which is also its primitive group name.
func (sd *Data) Name(i int) string {
	if len(sd.names) == 0 {
		return DefaultShapeName
	}
	return sd.names[i]
}

// AttributeBuilders returns the attribute builders of finalized slots.
func (sd *Data) AttributeBuilders() []*attrmap.Builder { return sd.attrBuilders }

// AttributeMap returns the rule attributes the shape was created with.
func (sd *Data) AttributeMap(i int) *attrmap.Map { return sd.attrMaps[i] }

// Shapes returns the finalized shapes; failed slots are nil.
func (sd *Data) Shapes() []*prt.InitialShape { return sd.shapes }

// IsValid reports whether the parallel slices are consistent.
func (sd *Data) IsValid() bool {
	n := len(sd.builders)
	if len(sd.seeds) != n || len(sd.primitives) != n || len(sd.keys) != n {
		return false
	}
	if len(sd.names) > 0 && len(sd.names) != n {
		return false
	}
	return len(sd.shapes) == len(sd.attrBuilders) && len(sd.shapes) == len(sd.attrMaps)
}

// groupName turns a classifier value into a primitive group name.
func groupName(key partition.Key, prefix string) string {
	if key.IsInt() {
		return legalize(prefix + "_" + strconv.FormatInt(int64(key.Int()), 10))
	}
	if n := legalize(key.Str()); n != "" {
		return n
	}
	return invalidGroupName
}

// legalize replaces every character outside [A-Za-z0-9_] with '_'.
func legalize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
