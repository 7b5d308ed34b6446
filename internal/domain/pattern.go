package domain

import "strings"

// SegmentKind tags a path segment as literal text or a placeholder.
type SegmentKind int

const (
	SegmentLiteral SegmentKind = iota
	SegmentPlaceholder
)

// PathSegment is one slash-delimited piece of a compiled pattern.
// For placeholders Value is the key without the leading colon.
type PathSegment struct {
	Kind  SegmentKind
	Value string
}

// Literal builds a literal segment.
func Literal(text string) PathSegment {
	return PathSegment{Kind: SegmentLiteral, Value: text}
}

// Placeholder builds a placeholder segment.
func Placeholder(key string) PathSegment {
	return PathSegment{Kind: SegmentPlaceholder, Value: key}
}

// IsPlaceholder reports whether the segment is substituted from metadata.
func (s PathSegment) IsPlaceholder() bool {
	return s.Kind == SegmentPlaceholder
}

func (s PathSegment) String() string {
	if s.IsPlaceholder() {
		return ":" + s.Value
	}
	return s.Value
}

// PathPattern is a compiled path template such as "/assets/:uid/:filename".
type PathPattern struct {
	Raw      string
	Segments []PathSegment
}

// CompilePattern splits raw on "/" and classifies every non-empty token.
// Tokens starting with ':' become placeholders.
func CompilePattern(raw string) PathPattern {
	tokens := strings.Split(raw, "/")
	segments := make([]PathSegment, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if strings.HasPrefix(tok, ":") {
			segments = append(segments, Placeholder(tok[1:]))
			continue
		}
		segments = append(segments, Literal(tok))
	}
	return PathPattern{Raw: raw, Segments: segments}
}

// Placeholders returns the placeholder keys in pattern order.
func (p PathPattern) Placeholders() []string {
	var keys []string
	for _, s := range p.Segments {
		if s.IsPlaceholder() {
			keys = append(keys, s.Value)
		}
	}
	return keys
}

func (p PathPattern) String() string {
	parts := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		parts[i] = s.String()
	}
	return "/" + strings.Join(parts, "/")
}
