package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompilePattern(t *testing.T) {
	tests := []struct {
		raw      string
		expected []PathSegment
	}{
		{"/:uid/:filename", []PathSegment{Placeholder("uid"), Placeholder("filename")}},
		{"/assets/:uid/:filename", []PathSegment{Literal("assets"), Placeholder("uid"), Placeholder("filename")}},
		{"//assets///:uid//:filename/", []PathSegment{Literal("assets"), Placeholder("uid"), Placeholder("filename")}},
		{":uid", []PathSegment{Placeholder("uid")}},
		{"", []PathSegment{}},
		{"///", []PathSegment{}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			p := CompilePattern(tt.raw)
			assert.Equal(t, tt.raw, p.Raw)
			assert.Equal(t, tt.expected, p.Segments)
		})
	}
}

func TestCompilePattern_NeverEmitsEmptySegments(t *testing.T) {
	for _, raw := range []string{"/a//b", "////:x////", "a/b/c/", "/:/x", "/ /x"} {
		for _, s := range CompilePattern(raw).Segments {
			assert.NotEqual(t, Literal(""), s, raw)
		}
	}
}

func TestPathPattern_Placeholders(t *testing.T) {
	p := CompilePattern("/v3/:locale/assets/:uid/:filename")
	assert.Equal(t, []string{"locale", "uid", "filename"}, p.Placeholders())
	assert.Equal(t, "/v3/:locale/assets/:uid/:filename", p.String())
}
