package nameconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRemoveStyle(t *testing.T) {
	assert.Equal(t, "Default$height", AddStyle("height", "Default"))
	assert.Equal(t, "$height", AddStyle("height", ""))
	assert.Equal(t, "height", RemoveStyle("Default$height"))
	assert.Equal(t, "height", RemoveStyle("height"))
	assert.Equal(t, "b$c", RemoveStyle("a$b$c"))
}

func TestSeparate(t *testing.T) {
	testCases := []struct {
		name      string
		fqName    string
		wantStyle string
		wantName  string
	}{
		{name: "default case", fqName: "foo$bar", wantStyle: "foo", wantName: "bar"},
		{name: "no style", fqName: "foo", wantStyle: "", wantName: "foo"},
		{name: "empty style", fqName: "$foo", wantStyle: "", wantName: "foo"},
		{name: "empty name", fqName: "foo$", wantStyle: "foo", wantName: ""},
		{name: "separator only", fqName: "$", wantStyle: "", wantName: ""},
		{name: "empty", fqName: "", wantStyle: "", wantName: ""},
		{name: "two separators", fqName: "foo$bar$baz", wantStyle: "foo", wantName: "bar$baz"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var style, name string
			Separate(tc.fqName, &style, &name)
			assert.Equal(t, tc.wantStyle, style)
			assert.Equal(t, tc.wantName, name)
		})
	}
}

func TestSeparate_UntouchedOutputs(t *testing.T) {
	t.Run("no separator keeps style", func(t *testing.T) {
		style, name := "keep", "old"
		Separate("height", &style, &name)
		assert.Equal(t, "keep", style)
		assert.Equal(t, "height", name)
	})

	t.Run("trailing separator keeps pre-seeded name", func(t *testing.T) {
		// The name is left as the caller seeded it, not cleared.
		style, name := "", "seeded"
		Separate("foo$", &style, &name)
		assert.Equal(t, "foo", style)
		assert.Equal(t, "seeded", name)
	})

	t.Run("single character is a no-op", func(t *testing.T) {
		style, name := "s", "n"
		Separate("x", &style, &name)
		assert.Equal(t, "s", style)
		assert.Equal(t, "n", name)
	})

	t.Run("single multi-byte character is a no-op", func(t *testing.T) {
		style, name := "s", "n"
		Separate("é", &style, &name)
		assert.Equal(t, "s", style)
		assert.Equal(t, "n", name)
	})
}

func TestSeparate_RoundTrip(t *testing.T) {
	pairs := [][2]string{{"Default", "height"}, {"Night", "a.b"}, {"s", "x$y"}}
	for _, p := range pairs {
		var style, name string
		Separate(AddStyle(p[1], p[0]), &style, &name)
		assert.Equal(t, p[0], style)
		assert.Equal(t, p[1], name)
	}
}

func TestMatchesStyle(t *testing.T) {
	assert.True(t, MatchesStyle("Default$height", "Night"))
	assert.True(t, MatchesStyle("Night$height", "Night"))
	assert.False(t, MatchesStyle("Day$height", "Night"))
	assert.False(t, MatchesStyle("height", "Night"))
}

func TestConverter_PrimAttrRoundTrip(t *testing.T) {
	c := NewConverter(nil, 16)
	assert.Equal(t, "utf-8", c.Encoding())

	prim := c.ToPrimAttr("Default$roof.height")
	assert.Equal(t, "roof__height", prim)
	assert.Equal(t, "Default$roof.height", c.ToRuleAttr("Default", prim))

	for _, key := range []string{"Default$height", "Night$a.b.c", "Default$name"} {
		var style, name string
		Separate(key, &style, &name)
		assert.Equal(t, key, c.ToRuleAttr(style, c.ToPrimAttr(key)))
	}
}

func TestConverter_CachesNames(t *testing.T) {
	c := NewConverter(nil, 16)
	_ = c.ToPrimAttr("Default$height")
	_ = c.ToPrimAttr("Default$height")

	names, values := c.CacheStats()
	assert.Equal(t, uint64(1), names.Hits)
	assert.Equal(t, 1, names.Len)
	assert.Equal(t, 0, values.Len)

	assert.Equal(t, "brick", c.HostString("brick"))
	assert.Equal(t, "brick", c.HostString("brick"))
	_, values = c.CacheStats()
	assert.Equal(t, uint64(1), values.Hits)
}

func TestConverter_HostEncoding(t *testing.T) {
	c, err := NewConverterForName("iso-8859-1", 16)
	require.NoError(t, err)

	host := c.HostString("façade")
	assert.Equal(t, "fa\xe7ade", host)
	assert.Equal(t, "façade", c.FromHost(host))

	_, err = NewConverterForName("no-such-encoding", 16)
	assert.Error(t, err)
}
