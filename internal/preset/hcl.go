package preset

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/texgraphgo/internal/value"
	"github.com/zclconf/go-cty/cty"
)

type fileHCL struct {
	Presets []presetHCL `hcl:"preset,block"`
}

type presetHCL struct {
	Label       string     `hcl:"label,label"`
	PackageURL  string     `hcl:"package_url"`
	Description string     `hcl:"description,optional"`
	Values      []valueHCL `hcl:"value,block"`
}

type valueHCL struct {
	Identifier string    `hcl:"identifier,label"`
	UID        uint32    `hcl:"uid"`
	Type       string    `hcl:"type"`
	Value      cty.Value `hcl:"value,optional"`
	Image      string    `hcl:"image,optional"`
}

// Encode renders presets as an HCL document.
func Encode(presets ...*Preset) []byte {
	f := hclwrite.NewEmptyFile()
	root := f.Body()
	for i, p := range presets {
		if i > 0 {
			root.AppendNewline()
		}
		block := root.AppendNewBlock("preset", []string{p.Label})
		body := block.Body()
		body.SetAttributeValue("package_url", cty.StringVal(p.PackageURL))
		if p.Description != "" {
			body.SetAttributeValue("description", cty.StringVal(p.Description))
		}
		for _, v := range p.Values {
			vb := body.AppendNewBlock("value", []string{v.Identifier}).Body()
			vb.SetAttributeValue("uid", cty.NumberUIntVal(uint64(v.UID)))
			vb.SetAttributeValue("type", cty.StringVal(v.Kind.String()))
			if v.Kind.IsNumerical() {
				vb.SetAttributeValue("value", value.ToCty(v.Value))
			} else if v.Image != "" {
				vb.SetAttributeValue("image", cty.StringVal(v.Image))
			}
		}
	}
	return f.Bytes()
}

// Decode parses an HCL document written by Encode.
func Decode(src []byte, filename string) ([]*Preset, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}
	var raw fileHCL
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, diags
	}

	out := make([]*Preset, 0, len(raw.Presets))
	for _, rp := range raw.Presets {
		p := &Preset{PackageURL: rp.PackageURL, Label: rp.Label, Description: rp.Description}
		for _, rv := range rp.Values {
			k, err := value.ParseKind(rv.Type)
			if err != nil {
				return nil, fmt.Errorf("preset %q, value %q: %w", rp.Label, rv.Identifier, err)
			}
			v := Value{Identifier: rv.Identifier, UID: rv.UID, Kind: k, Image: rv.Image}
			if k.IsNumerical() {
				v.Value, err = value.FromCty(rv.Value, k)
				if err != nil {
					return nil, fmt.Errorf("preset %q, value %q: %w", rp.Label, rv.Identifier, err)
				}
			}
			p.Values = append(p.Values, v)
		}
		out = append(out, p)
	}
	return out, nil
}
