package graph

import (
	"github.com/google/uuid"
)

// Package is a loaded procedural material package.
type Package struct {
	ID         uuid.UUID
	Name       string
	SourcePath string
	Graphs     []*Desc

	linkData        []byte
	loadedInstances int
	retired         map[uuid.UUID]struct{}
}

// NewPackage creates an empty package with a fresh id.
func NewPackage(name, sourcePath string, linkData []byte) *Package {
	return &Package{
		ID:         uuid.New(),
		Name:       name,
		SourcePath: sourcePath,
		linkData:   linkData,
	}
}

// AddGraph appends d to the package and makes the package its parent.
func (p *Package) AddGraph(d *Desc) {
	check(d.parent == nil, "graph %q already belongs to a package", d.URL)
	d.parent = p
	p.Graphs = append(p.Graphs, d)
}

// LinkData returns the compiled backend-ready form of the package.
func (p *Package) LinkData() []byte { return p.linkData }

// HasLinkData reports whether the package can be rendered.
func (p *Package) HasLinkData() bool { return len(p.linkData) > 0 }

// IsValid reports whether the package holds at least one graph.
func (p *Package) IsValid() bool { return len(p.Graphs) > 0 }

// LoadedInstances returns how many instances are currently subscribed to the
// package's graphs.
func (p *Package) LoadedInstances() int { return p.loadedInstances }

// KnownInstanceCount returns how many instances created from the package's
// graphs have not been destroyed. When it exceeds LoadedInstances some
// instance exists without being loaded.
func (p *Package) KnownInstanceCount() int {
	n := 0
	for _, d := range p.Graphs {
		for _, id := range d.instanceIDs {
			if _, gone := p.retired[id]; !gone {
				n++
			}
		}
	}
	return n
}

func (p *Package) retire(id uuid.UUID) {
	if p.retired == nil {
		p.retired = make(map[uuid.UUID]struct{})
	}
	p.retired[id] = struct{}{}
}

// Instances lists every subscribed instance across the package's graphs.
func (p *Package) Instances() []*Instance {
	var out []*Instance
	for _, d := range p.Graphs {
		out = append(out, d.loaded...)
	}
	return out
}

// FindGraph returns the graph with the given url, nil when absent.
func (p *Package) FindGraph(url string) *Desc {
	for _, d := range p.Graphs {
		if d.URL == url {
			return d
		}
	}
	return nil
}

// Destroy detaches every instance from every graph. Instances themselves are
// left alive.
func (p *Package) Destroy() {
	for _, d := range p.Graphs {
		d.Destroy()
	}
	p.Graphs = nil
}

func (p *Package) instanceSubscribed() { p.loadedInstances++ }

func (p *Package) instanceUnsubscribed() {
	check(p.loadedInstances > 0, "package %s: unsubscribe with no loaded instance", p.Name)
	p.loadedInstances--
}
