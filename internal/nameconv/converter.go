package nameconv

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/specialistvlad/palladiogo/internal/lru"
)

// Converter converts between engine strings and host strings. Host strings
// are stored in the host's narrow text encoding. A Converter is safe for
// concurrent use and is meant to be shared by all cooks of one session.
type Converter struct {
	enc     encoding.Encoding
	names   *lru.Cache[string, string]
	values  *lru.Cache[string, string]
	encName string
}

// NewConverter creates a converter for the given encoding with two caches of
// the given capacity, one for attribute names and one for string values.
func NewConverter(enc encoding.Encoding, capacity int) *Converter {
	if enc == nil {
		enc = unicode.UTF8
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = "unknown"
	}
	return &Converter{
		enc:     enc,
		names:   lru.New[string, string](capacity),
		values:  lru.New[string, string](capacity),
		encName: name,
	}
}

// NewConverterForName looks up a host encoding by its WHATWG label, for
// example "utf-8" or "windows-1252".
func NewConverterForName(label string, capacity int) (*Converter, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown host encoding %q: %w", label, err)
	}
	return NewConverter(enc, capacity), nil
}

// Encoding returns the canonical name of the host encoding.
func (c *Converter) Encoding() string {
	return c.encName
}

// ToHost encodes s into the host encoding. Characters the host encoding
// cannot represent are replaced.
func (c *Converter) ToHost(s string) string {
	if c.enc == unicode.UTF8 {
		return s
	}
	out, err := encoding.ReplaceUnsupported(c.enc.NewEncoder()).String(s)
	if err != nil {
		return s
	}
	return out
}

// FromHost decodes a host encoded string.
func (c *Converter) FromHost(s string) string {
	if c.enc == unicode.UTF8 {
		return s
	}
	out, err := c.enc.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return out
}

// ToPrimAttr converts a rule attribute name into a primitive attribute name:
// the style is removed, reserved sequences are substituted and the result is
// host encoded. Results are cached per input name.
func (c *Converter) ToPrimAttr(name string) string {
	return c.names.GetOrCreate(name, func(n string) string {
		return c.ToHost(substituteRuleToPrim(RemoveStyle(n)))
	})
}

// ToRuleAttr is the inverse of ToPrimAttr for the given style. It is not
// cached; it runs once per distinct primitive attribute name.
func (c *Converter) ToRuleAttr(style, primName string) string {
	return AddStyle(substitutePrimToRule(c.FromHost(primName)), style)
}

// HostString returns the host encoded form of an engine string value,
// converting each distinct value only once.
func (c *Converter) HostString(value string) string {
	return c.values.GetOrCreate(value, c.ToHost)
}

// CacheStats returns the statistics of the name and value caches.
func (c *Converter) CacheStats() (names, values lru.Stats) {
	return c.names.Stats(), c.values.Stats()
}
