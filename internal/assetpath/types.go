package assetpath

// Path is a parsed asset object path.
type Path struct {
	Segments []string
}

// New builds a path from already-valid segments.
func New(segments ...string) Path {
	return Path{Segments: append([]string(nil), segments...)}
}

// IsZero reports whether the path has no segments.
func (p Path) IsZero() bool {
	return len(p.Segments) == 0
}

// Name returns the object name, the last segment.
func (p Path) Name() string {
	if p.IsZero() {
		return ""
	}
	return p.Segments[len(p.Segments)-1]
}

// Dir returns the path of the enclosing package directory.
func (p Path) Dir() Path {
	if len(p.Segments) <= 1 {
		return Path{}
	}
	return New(p.Segments[:len(p.Segments)-1]...)
}

// Join appends a child object name.
func (p Path) Join(name string) Path {
	return New(append(append([]string(nil), p.Segments...), name)...)
}

// WithName replaces the object name, keeping the directory.
func (p Path) WithName(name string) Path {
	return p.Dir().Join(name)
}
