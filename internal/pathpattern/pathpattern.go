// Package pathpattern parses slash-delimited path templates and extracts
// named captures from concrete paths.
//
// A template such as "users/{uid}/posts/{rest=**}" is split into segments.
// A segment is a capture when it holds exactly one {name} or {name=spec}
// group; a spec of ** makes it a multi-segment capture. Anything else is a
// literal, even when it contains a bare * or **.
package pathpattern

import (
	"regexp"
	"strings"
)

// SegmentKind identifies the variant of a Segment.
type SegmentKind int

const (
	// Literal matches one path segment exactly. It may contain * or ** as a
	// non-capturing wildcard.
	Literal SegmentKind = iota
	// SingleCapture binds exactly one path segment: {name} or {name=*}.
	SingleCapture
	// MultiCapture binds zero or more contiguous segments: {name=**}.
	MultiCapture
)

func (k SegmentKind) String() string {
	switch k {
	case Literal:
		return "segment"
	case SingleCapture:
		return "single-capture"
	case MultiCapture:
		return "multi-capture"
	default:
		return "unknown"
	}
}

var captureRegex = regexp.MustCompile(`{[^/{}]+}`)

// Segment is one slash-delimited token of a template.
type Segment struct {
	Kind SegmentKind
	// Value is the raw token, braces included.
	Value string
	// Name is the capture name for capture segments and the raw token for literals.
	Name string
}

func (s Segment) String() string {
	return s.Value
}

// IsMultiSegmentWildcard reports whether the segment may span several path
// segments: a multi-capture or a literal containing **.
func (s Segment) IsMultiSegmentWildcard() bool {
	switch s.Kind {
	case MultiCapture:
		return true
	case Literal:
		return strings.Contains(s.Value, "**")
	default:
		return false
	}
}

// IsSingleSegmentWildcard reports whether the segment matches any single
// path segment: a single capture or a literal containing * but not **.
func (s Segment) IsSingleSegmentWildcard() bool {
	switch s.Kind {
	case SingleCapture:
		return true
	case Literal:
		return strings.Contains(s.Value, "*") && !s.IsMultiSegmentWildcard()
	default:
		return false
	}
}

// IsCapture reports whether the segment binds a name.
func (s Segment) IsCapture() bool {
	return s.Kind == SingleCapture || s.Kind == MultiCapture
}

// PathPattern is an immutable parsed template.
type PathPattern struct {
	raw          string
	segments     []Segment
	hasWildcards bool
	hasCaptures  bool
}

// Parse splits template into typed segments. It never fails: malformed
// templates parse into literal segments.
func Parse(template string) *PathPattern {
	p := &PathPattern{raw: strings.Trim(template, "/")}
	if p.raw == "" {
		return p
	}
	for _, part := range strings.Split(p.raw, "/") {
		seg := parseSegment(part)
		p.segments = append(p.segments, seg)
		if seg.IsCapture() {
			p.hasCaptures = true
		}
		if seg.IsSingleSegmentWildcard() || seg.IsMultiSegmentWildcard() {
			p.hasWildcards = true
		}
	}
	return p
}

func parseSegment(part string) Segment {
	groups := captureRegex.FindAllString(part, -1)
	if len(groups) != 1 {
		return Segment{Kind: Literal, Value: part, Name: part}
	}
	kind := SingleCapture
	if strings.Contains(part, "**") {
		kind = MultiCapture
	}
	return Segment{Kind: kind, Value: part, Name: TrimParam(groups[0])}
}

// Value returns the template with leading and trailing slashes removed.
func (p *PathPattern) Value() string {
	return p.raw
}

func (p *PathPattern) String() string {
	return p.raw
}

// Segments returns a copy of the parsed segments.
func (p *PathPattern) Segments() []Segment {
	out := make([]Segment, len(p.segments))
	copy(out, p.segments)
	return out
}

// HasWildcards reports whether any segment is a capture or contains * or **.
func (p *PathPattern) HasWildcards() bool {
	return p.hasWildcards
}

// HasCaptures reports whether any segment is a single or multi capture.
func (p *PathPattern) HasCaptures() bool {
	return p.hasCaptures
}

// ExtractMatches binds the pattern's captures against a concrete path.
//
// The pattern is walked left to right with a cursor into the path. Each
// pattern segment may claim path segments up to len(path) minus the number
// of pattern segments still to its right. A single capture claims the
// segment at the cursor; a multi capture claims the whole claimable slice.
// The cursor jumps to the end of that slice after any multi-segment
// wildcard and advances by one otherwise.
//
// The slice arithmetic assumes at most one multi-segment wildcard per
// pattern. With more than one, the result is whatever the positional walk
// produces. A single capture whose cursor runs past the end of the path is
// not recorded.
func (p *PathPattern) ExtractMatches(path string) map[string]string {
	matches := map[string]string{}
	if !p.hasCaptures {
		return matches
	}

	parts := PathParts(path)
	cursor := 0
	for i, seg := range p.segments {
		remaining := len(p.segments) - 1 - i
		next := len(parts) - remaining

		switch seg.Kind {
		case SingleCapture:
			if cursor >= 0 && cursor < len(parts) {
				matches[seg.Name] = parts[cursor]
			}
		case MultiCapture:
			matches[seg.Name] = strings.Join(sliceParts(parts, cursor, next), "/")
		}

		if seg.IsMultiSegmentWildcard() {
			cursor = next
		} else {
			cursor++
		}
	}
	return matches
}

// sliceParts clamps [from, to) to parts, yielding an empty slice when the
// range is inverted.
func sliceParts(parts []string, from, to int) []string {
	from = max(0, min(from, len(parts)))
	to = max(0, min(to, len(parts)))
	if to <= from {
		return nil
	}
	return parts[from:to]
}

// PathParts trims leading and trailing slashes and splits the remainder.
// An empty path or "/" yields no parts.
func PathParts(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// JoinPath joins base and child, normalising slashes.
func JoinPath(base, child string) string {
	return strings.Join(append(PathParts(base), PathParts(child)...), "/")
}

// TrimParam strips the braces and any =spec suffix from a capture token:
// "{path=**}" becomes "path".
func TrimParam(param string) string {
	inner := strings.TrimSuffix(strings.TrimPrefix(param, "{"), "}")
	name, _, _ := strings.Cut(inner, "=")
	return name
}
