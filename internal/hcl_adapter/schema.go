package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// projectRoot decodes every top-level block a project file may contain.
type projectRoot struct {
	Renderers []*rendererBlock `hcl:"renderer,block"`
	Images    []*imageBlock    `hcl:"image_input,block"`
	Packages  []*packageBlock  `hcl:"package,block"`
	Materials []*materialBlock `hcl:"material,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

type rendererBlock struct {
	Backend            string `hcl:"backend,optional"`
	Workers            int    `hcl:"workers,optional"`
	URL                string `hcl:"url,optional"`
	Namespace          string `hcl:"namespace,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
	Timeout            string `hcl:"timeout,optional"`
}

type imageBlock struct {
	Name   string `hcl:"name,label"`
	Source string `hcl:"source"`
}

type packageBlock struct {
	Name      string           `hcl:"name,label"`
	Source    string           `hcl:"source"`
	Instances []*instanceBlock `hcl:"instance,block"`
}

type instanceBlock struct {
	Name    string            `hcl:"name,label"`
	Graph   string            `hcl:"graph,optional"`
	Dynamic *bool             `hcl:"dynamic,optional"`
	Values  hcl.Expression    `hcl:"values,optional"`
	Images  map[string]string `hcl:"images,optional"`
	Outputs []string          `hcl:"outputs,optional"`
}

type materialBlock struct {
	Name     string   `hcl:"name,label"`
	Textures []string `hcl:"textures"`
}

// manifestRoot is the schema of a package manifest.
type manifestRoot struct {
	FormatVersion string        `hcl:"format_version"`
	LinkData      string        `hcl:"link_data,optional"`
	Graphs        []*graphBlock `hcl:"graph,block"`
}

type graphBlock struct {
	Name        string         `hcl:"name,label"`
	URL         string         `hcl:"url,optional"`
	Label       string         `hcl:"label,optional"`
	Description string         `hcl:"description,optional"`
	Inputs      []*inputBlock  `hcl:"input,block"`
	Outputs     []*outputBlock `hcl:"output,block"`
}

type inputBlock struct {
	Identifier string            `hcl:"identifier,label"`
	UID        int               `hcl:"uid"`
	Label      string            `hcl:"label,optional"`
	Group      string            `hcl:"group,optional"`
	Type       string            `hcl:"type"`
	Widget     string            `hcl:"widget,optional"`
	Min        hcl.Expression    `hcl:"min,optional"`
	Max        hcl.Expression    `hcl:"max,optional"`
	Clamped    bool              `hcl:"clamped,optional"`
	Default    hcl.Expression    `hcl:"default,optional"`
	Heavy      bool              `hcl:"heavy,optional"`
	Alters     []int             `hcl:"alters,optional"`
	Items      map[string]string `hcl:"items,optional"`
}

type outputBlock struct {
	Identifier string `hcl:"identifier,label"`
	UID        int    `hcl:"uid"`
	Label      string `hcl:"label,optional"`
	Format     string `hcl:"format,optional"`
	Channel    string `hcl:"channel,optional"`
}
