package prt

import "github.com/specialistvlad/palladiogo/internal/attrmap"

// CGAErrorLevel classifies rule evaluation errors.
type CGAErrorLevel int

const (
	CGAErrorLevelError CGAErrorLevel = iota
	CGAErrorLevelWarning
	CGAErrorLevelInfo
)

func (l CGAErrorLevel) String() string {
	switch l {
	case CGAErrorLevelError:
		return "error"
	case CGAErrorLevelWarning:
		return "warning"
	case CGAErrorLevelInfo:
		return "info"
	}
	return "unknown"
}

// Callbacks receives results of Generate. The engine calls them
// synchronously from the goroutine that called Generate. isIndex is the
// index of the initial shape in the slice passed to Generate, shapeID
// identifies the derived shape inside the shape tree.
type Callbacks interface {
	GenerateError(isIndex int, status Status, message string) Status
	AssetError(isIndex int, level CGAErrorLevel, key, uri, message string) Status
	CGAError(isIndex int, shapeID int32, level CGAErrorLevel, methodID, pc int32, message string) Status
	CGAPrint(isIndex int, shapeID int32, txt string) Status

	CGAReportBool(isIndex int, shapeID int32, key string, value bool) Status
	CGAReportFloat(isIndex int, shapeID int32, key string, value float64) Status
	CGAReportString(isIndex int, shapeID int32, key string, value string) Status

	AttrBool(isIndex int, shapeID int32, key string, value bool) Status
	AttrInt(isIndex int, shapeID int32, key string, value int32) Status
	AttrFloat(isIndex int, shapeID int32, key string, value float64) Status
	AttrString(isIndex int, shapeID int32, key string, value string) Status
}

// GeneratedModel is one geometry result of the geometry encoder. Face range
// i spans faces [FaceRanges[i], FaceRanges[i+1]) and carries Materials[i],
// Reports[i] and ShapeIDs[i].
type GeneratedModel struct {
	Name       string
	Coords     []float64
	Normals    []float64
	FaceCounts []uint32
	Indices    []uint32

	// Per UV set. UVCounts[s] holds per face either 0 or the face vertex
	// count, UVIndices[s] the concatenated per vertex indices into UVs[s].
	UVs       [][]float64
	UVCounts  [][]uint32
	UVIndices [][]uint32

	FaceRanges []uint32
	Materials  []*attrmap.Map
	Reports    []*attrmap.Map
	ShapeIDs   []int32
}

// UVSets returns the number of UV sets.
func (m *GeneratedModel) UVSets() int { return len(m.UVs) }

// NumFaceRanges returns the number of face ranges.
func (m *GeneratedModel) NumFaceRanges() int {
	if len(m.FaceRanges) < 2 {
		return 0
	}
	return len(m.FaceRanges) - 1
}

// ModelSink is implemented by callbacks that accept geometry. The attribute
// callbacks of a shape are always delivered before Add is called with the
// model containing it.
type ModelSink interface {
	Callbacks
	Add(isIndex int, model *GeneratedModel)
}

// NopCallbacks implements Callbacks by ignoring everything. Embed it to
// implement only a subset.
type NopCallbacks struct{}

var _ Callbacks = NopCallbacks{}

func (NopCallbacks) GenerateError(int, Status, string) Status                       { return StatusOK }
func (NopCallbacks) AssetError(int, CGAErrorLevel, string, string, string) Status   { return StatusOK }
func (NopCallbacks) CGAError(int, int32, CGAErrorLevel, int32, int32, string) Status { return StatusOK }
func (NopCallbacks) CGAPrint(int, int32, string) Status                             { return StatusOK }
func (NopCallbacks) CGAReportBool(int, int32, string, bool) Status                  { return StatusOK }
func (NopCallbacks) CGAReportFloat(int, int32, string, float64) Status              { return StatusOK }
func (NopCallbacks) CGAReportString(int, int32, string, string) Status              { return StatusOK }
func (NopCallbacks) AttrBool(int, int32, string, bool) Status                       { return StatusOK }
func (NopCallbacks) AttrInt(int, int32, string, int32) Status                       { return StatusOK }
func (NopCallbacks) AttrFloat(int, int32, string, float64) Status                   { return StatusOK }
func (NopCallbacks) AttrString(int, int32, string, string) Status                   { return StatusOK }
