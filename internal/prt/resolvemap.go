package prt

import (
	"path"
	"slices"
	"strings"
)

// ResolveMap maps rule package keys (e.g. "bin/lot.cgb") to URIs.
type ResolveMap interface {
	HasKey(key string) bool
	// String returns the URI for key.
	String(key string) (string, bool)
	// Keys returns all keys in a stable order.
	Keys() []string
}

// MapResolveMap is a ResolveMap backed by a Go map.
type MapResolveMap map[string]string

func (m MapResolveMap) HasKey(key string) bool {
	_, ok := m[key]
	return ok
}

func (m MapResolveMap) String(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m MapResolveMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SearchKeys returns the keys of rm matching a shell pattern such as "*.cgb".
// The pattern is matched against the base name of each key.
func SearchKeys(rm ResolveMap, pattern string) []string {
	var out []string
	for _, k := range rm.Keys() {
		if ok, _ := path.Match(pattern, path.Base(k)); ok {
			out = append(out, k)
		}
	}
	return out
}

// RuleFileKey is a resolve map entry pointing at a compiled rule file.
type RuleFileKey struct {
	Key string
	URI string
}

// RuleFiles lists all compiled rule files (*.cgb) of a resolve map.
func RuleFiles(rm ResolveMap) []RuleFileKey {
	var out []RuleFileKey
	for _, k := range SearchKeys(rm, "*.cgb") {
		if uri, ok := rm.String(k); ok && strings.TrimSpace(uri) != "" {
			out = append(out, RuleFileKey{Key: k, URI: uri})
		}
	}
	return out
}
