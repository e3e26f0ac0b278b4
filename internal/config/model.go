package config

import (
	"time"

	"github.com/zclconf/go-cty/cty"
)

// Project is the unified, format-agnostic representation of what the
// application loads and renders.
type Project struct {
	Renderer  *Renderer
	Images    []*ImageInput
	Packages  []*PackageRef
	Materials []*Material
}

// Renderer selects and configures the compute backend.
type Renderer struct {
	Backend            string
	Workers            int
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// ImageInput is an image file imported as an image-input asset.
type ImageInput struct {
	Name   string
	Source string
}

// PackageRef is a package to load plus the instances to create from it.
type PackageRef struct {
	Name      string
	Source    string
	Instances []*Instance
}

// Instance describes one graph instance of a package.
type Instance struct {
	Name    string
	Graph   string
	Dynamic bool
	// Values overrides input defaults, keyed by input identifier.
	Values map[string]cty.Value
	// Images maps image input identifiers to ImageInput names.
	Images map[string]string
	// Outputs lists the output identifiers to enable. Empty means all.
	Outputs []string
}

// Material stands for an engine object outside the graph that references
// textures by name.
type Material struct {
	Name     string
	Textures []string
}

// --- Package Manifest Models ---

// PackageManifest is the decoded form of a material package.
type PackageManifest struct {
	FormatVersion string
	SourcePath    string
	// LinkData is the compiled graph payload. Empty when the manifest has
	// none.
	LinkData []byte
	Graphs   []*GraphDefinition
}

// GraphDefinition defines one graph of a package.
type GraphDefinition struct {
	URL         string
	Label       string
	Description string
	Inputs      []*InputDefinition
	Outputs     []*OutputDefinition
}

// InputDefinition defines one graph input.
type InputDefinition struct {
	Identifier string
	UID        uint32
	Label      string
	Group      string
	Type       string
	Widget     string
	Min        *cty.Value
	Max        *cty.Value
	Clamped    bool
	Default    *cty.Value
	Heavy      bool
	Alters     []uint32
	Items      map[int32]string
}

// OutputDefinition defines one graph output.
type OutputDefinition struct {
	Identifier string
	UID        uint32
	Label      string
	Format     string
	Channel    string
}
