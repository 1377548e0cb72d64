// Package attreval evaluates the default rule attributes of initial shapes
// and captures them as override candidates.
package attreval

import (
	"log/slog"

	"github.com/specialistvlad/palladiogo/internal/attrmap"
	"github.com/specialistvlad/palladiogo/internal/nameconv"
	"github.com/specialistvlad/palladiogo/internal/prt"
)

// Callbacks collects the attribute values reported by the attribute
// evaluation encoder into one builder per shape. Hidden attributes and
// attributes of other styles are dropped.
type Callbacks struct {
	prt.NopCallbacks

	builders []*attrmap.Builder
	infos    []*prt.RuleFileInfo
	styles   []string
	logger   *slog.Logger
}

var _ prt.Callbacks = (*Callbacks)(nil)

// NewCallbacks returns callbacks writing into builders. infos and styles are
// indexed like builders; a nil info drops every value of that shape.
func NewCallbacks(logger *slog.Logger, builders []*attrmap.Builder, infos []*prt.RuleFileInfo, styles []string) *Callbacks {
	return &Callbacks{builders: builders, infos: infos, styles: styles, logger: logger}
}

// target returns the builder for key if the value should be kept.
func (c *Callbacks) target(isIndex int, key string) *attrmap.Builder {
	if isIndex < 0 || isIndex >= len(c.builders) || c.builders[isIndex] == nil {
		c.logger.Warn("Attribute reported for unknown shape.", "shape", isIndex, "key", key)
		return nil
	}
	info := c.infos[isIndex]
	if info == nil || info.IsHidden(key) || !nameconv.MatchesStyle(key, c.styles[isIndex]) {
		return nil
	}
	return c.builders[isIndex]
}

func (c *Callbacks) set(isIndex int, key string, v attrmap.Value) prt.Status {
	if b := c.target(isIndex, key); b != nil {
		if err := b.Set(key, v); err != nil {
			c.logger.Warn("Could not store default attribute.", "shape", isIndex, "key", key, "error", err)
		}
	}
	return prt.StatusOK
}

func (c *Callbacks) GenerateError(isIndex int, status prt.Status, message string) prt.Status {
	c.logger.Warn("Default attribute evaluation failed for shape.", "shape", isIndex, "status", status.Description(), "message", message)
	return prt.StatusOK
}

func (c *Callbacks) CGAError(isIndex int, shapeID int32, level prt.CGAErrorLevel, methodID, pc int32, message string) prt.Status {
	c.logger.Error(message, "shape", isIndex, "shape_id", shapeID, "level", level.String())
	return prt.StatusOK
}

func (c *Callbacks) AttrBool(isIndex int, _ int32, key string, value bool) prt.Status {
	return c.set(isIndex, key, attrmap.BoolValue(value))
}

func (c *Callbacks) AttrInt(isIndex int, _ int32, key string, value int32) prt.Status {
	return c.set(isIndex, key, attrmap.IntValue(value))
}

func (c *Callbacks) AttrFloat(isIndex int, _ int32, key string, value float64) prt.Status {
	return c.set(isIndex, key, attrmap.FloatValue(value))
}

func (c *Callbacks) AttrString(isIndex int, _ int32, key string, value string) prt.Status {
	return c.set(isIndex, key, attrmap.StringValue(value))
}
