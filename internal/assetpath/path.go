package assetpath

import "strings"

// String serializes the Path into its canonical representation.
func (p Path) String() string {
	if p.IsZero() {
		return ""
	}
	return "/" + strings.Join(p.Segments, "/")
}

// Equal checks segment-wise equality.
func (p Path) Equal(other Path) bool {
	if len(p.Segments) != len(other.Segments) {
		return false
	}
	for i := range p.Segments {
		if p.Segments[i] != other.Segments[i] {
			return false
		}
	}
	return true
}
