package pathpattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimParam(t *testing.T) {
	assert.Equal(t, "foo", TrimParam("{foo}"))
	assert.Equal(t, "foo", TrimParam("{foo=*}"))
	assert.Equal(t, "path", TrimParam("{path=**}"))
}

func TestPathParts(t *testing.T) {
	assert.Empty(t, PathParts(""))
	assert.Empty(t, PathParts("/"))
	assert.Equal(t, []string{"a", "b"}, PathParts("/a/b/"))
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "users/alice/posts", JoinPath("/users/alice/", "/posts"))
	assert.Equal(t, "posts", JoinPath("", "posts"))
}

func TestParseSegments(t *testing.T) {
	p := Parse("/users/{uid}/{rest=**}/x*/{one=*}/")
	require.Equal(t, "users/{uid}/{rest=**}/x*/{one=*}", p.Value())

	segs := p.Segments()
	require.Len(t, segs, 5)
	assert.Equal(t, Literal, segs[0].Kind)
	assert.Equal(t, SingleCapture, segs[1].Kind)
	assert.Equal(t, "uid", segs[1].Name)
	assert.Equal(t, MultiCapture, segs[2].Kind)
	assert.Equal(t, "rest", segs[2].Name)
	assert.Equal(t, Literal, segs[3].Kind)
	assert.True(t, segs[3].IsSingleSegmentWildcard())
	assert.Equal(t, SingleCapture, segs[4].Kind)
	assert.Equal(t, "one", segs[4].Name)
}

func TestParseEmpty(t *testing.T) {
	p := Parse("")
	assert.Empty(t, p.Segments())
	assert.False(t, p.HasWildcards())
	assert.False(t, p.HasCaptures())
	assert.Empty(t, p.ExtractMatches("anything/at/all"))
}

func TestHasWildcardsAndCaptures(t *testing.T) {
	tests := []struct {
		template  string
		wildcards bool
		captures  bool
	}{
		{"foo/bar", false, false},
		{"foo/*", true, false},
		{"foo/**", true, false},
		{"foo/{bar}", true, true},
		{"foo/{bar=**}", true, true},
		{"{a}-something-{b}", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			p := Parse(tt.template)
			assert.Equal(t, tt.wildcards, p.HasWildcards())
			assert.Equal(t, tt.captures, p.HasCaptures())
		})
	}
}

func TestExtractMatches(t *testing.T) {
	tests := []struct {
		name     string
		template string
		path     string
		expected map[string]string
	}{
		{
			name:     "single capture",
			template: "hello/{foo}/bar",
			path:     "hello/baz/bar",
			expected: map[string]string{"foo": "baz"},
		},
		{
			name:     "capture before and after multi capture",
			template: "{a}/something/{path=**}/{b}/end",
			path:     "match_a/something/thing/else/nothing/hello/user/match_b/end",
			expected: map[string]string{"a": "match_a", "b": "match_b", "path": "thing/else/nothing/hello/user"},
		},
		{
			name:     "capture after multi capture",
			template: "{path=**}/{b}",
			path:     "a/b/c/last",
			expected: map[string]string{"path": "a/b/c", "b": "last"},
		},
		{
			name:     "capture before multi capture",
			template: "{a}/{rest=**}",
			path:     "first/x/y",
			expected: map[string]string{"a": "first", "rest": "x/y"},
		},
		{
			name:     "multi capture of zero segments",
			template: "{a}/{rest=**}/end",
			path:     "first/end",
			expected: map[string]string{"a": "first", "rest": ""},
		},
		{
			name:     "captures around non-capturing wildcard",
			template: "{a}/**/{b}",
			path:     "one/two/three/four",
			expected: map[string]string{"a": "one", "b": "four"},
		},
		{
			name:     "single capture with explicit star",
			template: "users/{uid=*}",
			path:     "/users/alice/",
			expected: map[string]string{"uid": "alice"},
		},
		{
			name:     "multiple groups in one token are literal",
			template: "{a}-something-{b}-else-{c}",
			path:     "match_a-something-match_b-else-match_c",
			expected: map[string]string{},
		},
		{
			name:     "no captures",
			template: "foo/*/bar",
			path:     "foo/x/bar",
			expected: map[string]string{},
		},
		{
			name:     "path shorter than pattern",
			template: "a/{b}/{c}",
			path:     "a",
			expected: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parse(tt.template)
			assert.Equal(t, tt.expected, p.ExtractMatches(tt.path))
		})
	}
}

func TestExtractMatchesIdempotent(t *testing.T) {
	p := Parse("users/{uid}/docs/{rest=**}")
	first := p.ExtractMatches("users/u1/docs/a/b")
	second := p.ExtractMatches("users/u1/docs/a/b")
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}

func TestSegmentKindString(t *testing.T) {
	assert.Equal(t, "segment", Literal.String())
	assert.Equal(t, "single-capture", SingleCapture.String())
	assert.Equal(t, "multi-capture", MultiCapture.String())
}
