package prt

import "github.com/specialistvlad/palladiogo/internal/attrmap"

const (
	// EncoderAttributeEval routes every rule attribute of a shape through
	// the Attr callbacks and produces no geometry.
	EncoderAttributeEval = "com.esri.prt.core.AttributeEvalEncoder"
	// EncoderGeometry delivers generated models to a ModelSink.
	EncoderGeometry = "HoudiniEncoder"
)

// Options understood by EncoderGeometry.
const (
	OptionEmitAttributes = "emitAttributes"
	OptionEmitMaterials  = "emitMaterials"
	OptionEmitReports    = "emitReports"
)

// Cache holds engine side state shared between Generate calls, e.g. parsed
// rule files.
type Cache interface {
	FlushAll()
}

// Engine is the procedural rule engine.
type Engine interface {
	// CreateResolveMap opens the rule package at uri, unpacking it below
	// unpackDir if required.
	CreateResolveMap(uri, unpackDir string) (ResolveMap, error)
	// CreateRuleFileInfo describes the compiled rule file at uri.
	CreateRuleFileInfo(uri string, cache Cache) (*RuleFileInfo, error)
	// ValidatedEncoderOptions completes opts with the defaults of the
	// encoder and drops unknown keys.
	ValidatedEncoderOptions(encoderID string, opts *attrmap.Map) (*attrmap.Map, error)
	// NewCache creates an empty engine cache.
	NewCache() Cache
	// Generate runs encoders on shapes and reports through cb. It blocks
	// until all shapes are processed and cannot be interrupted.
	Generate(shapes []*InitialShape, encoders []string, encoderOptions []*attrmap.Map, cb Callbacks, cache Cache) Status
}
