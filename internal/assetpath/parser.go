package assetpath

import (
	"fmt"
	"regexp"
	"strings"
)

// segmentRegex validates a single path segment.
var segmentRegex = regexp.MustCompile(`^[a-zA-Z0-9_.$-]+$`)

// isValidSegmentName checks for undesirable but technically valid names.
func isValidSegmentName(name string) bool {
	if name == "." || name == ".." || name == "-" {
		return false
	}
	return true
}

// Parse creates a Path from its canonical string. The leading slash is
// optional.
func Parse(raw string) (Path, error) {
	if raw == "" {
		return Path{}, fmt.Errorf("asset path cannot be empty")
	}

	var p Path
	for _, segment := range strings.Split(strings.TrimPrefix(raw, "/"), "/") {
		if segment == "" {
			return Path{}, fmt.Errorf("asset path %q contains an empty segment", raw)
		}
		if !segmentRegex.MatchString(segment) {
			return Path{}, fmt.Errorf("invalid asset path segment: %q", segment)
		}
		if !isValidSegmentName(segment) {
			return Path{}, fmt.Errorf("invalid segment name: %q", segment)
		}
		p.Segments = append(p.Segments, segment)
	}
	return p, nil
}

// MustParse is Parse for constant paths; it panics on error.
func MustParse(raw string) Path {
	p, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// Sanitize turns an arbitrary label into a valid segment name.
func Sanitize(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "_"
	}
	return sb.String()
}
