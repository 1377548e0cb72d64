// Package nameconv maps style-scoped rule attribute names ("style$name") to
// flat primitive attribute names and back, and converts engine strings to
// the host's narrow text encoding.
package nameconv

import (
	"strings"
	"unicode/utf8"
)

const (
	// StyleSeparator separates the style prefix from the attribute name.
	StyleSeparator = '$'

	// DefaultStyle is the style every rule file provides.
	DefaultStyle = "Default"
)

// ruleToPrim lists the substitutions applied when turning a rule attribute
// name into a primitive attribute name. The reverse conversion applies them
// backwards.
var ruleToPrim = [][2]string{
	{".", "__"},
}

// AddStyle prefixes name with style and the separator.
func AddStyle(name, style string) string {
	return style + string(StyleSeparator) + name
}

// RemoveStyle strips everything up to and including the first separator.
func RemoveStyle(name string) string {
	if p := strings.IndexRune(name, StyleSeparator); p >= 0 {
		return name[p+1:]
	}
	return name
}

// Separate splits a fully qualified name into style and name. Outputs that
// the policy does not assign keep their previous value:
//
//	one rune or less  both untouched
//	"name"             name set, style untouched
//	"$name"            style cleared, name set
//	"style$"           style set, name untouched
//	"style$name"       both set, split at the first separator
func Separate(fqName string, style, name *string) {
	if utf8.RuneCountInString(fqName) <= 1 {
		return
	}

	p := strings.IndexRune(fqName, StyleSeparator)
	switch {
	case p < 0:
		*name = fqName
	case p == 0:
		*style = ""
		*name = fqName[1:]
	case p == len(fqName)-1:
		// name keeps whatever the caller passed in
		*style = fqName[:p]
	default:
		*style = fqName[:p]
		*name = fqName[p+1:]
	}
}

// MatchesStyle reports whether key is scoped to the default style or to style.
func MatchesStyle(key, style string) bool {
	return strings.HasPrefix(key, DefaultStyle+string(StyleSeparator)) ||
		strings.HasPrefix(key, style+string(StyleSeparator))
}

func substituteRuleToPrim(s string) string {
	for _, r := range ruleToPrim {
		s = strings.ReplaceAll(s, r[0], r[1])
	}
	return s
}

func substitutePrimToRule(s string) string {
	for _, r := range ruleToPrim {
		s = strings.ReplaceAll(s, r[1], r[0])
	}
	return s
}
