// This file translates a decoded package manifest into the format-agnostic
// config.PackageManifest.

package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/specialistvlad/texgraphgo/internal/config"
)

// packageName derives the package name from its manifest file name.
func packageName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), PackageExt)
}

func (l *Loader) translateManifest(ctx context.Context, path string, root *manifestRoot) (*config.PackageManifest, error) {
	m := &config.PackageManifest{FormatVersion: root.FormatVersion, SourcePath: path}
	if root.LinkData != "" {
		data, err := os.ReadFile(resolvePath(path, root.LinkData))
		if err != nil {
			return nil, fmt.Errorf("failed to read link data: %w", err)
		}
		m.LinkData = data
	}

	urls := make(map[string]struct{})
	for _, g := range root.Graphs {
		def, err := translateGraph(ctx, packageName(path), g)
		if err != nil {
			return nil, err
		}
		if _, dup := urls[def.URL]; dup {
			return nil, fmt.Errorf("duplicate graph url %q", def.URL)
		}
		urls[def.URL] = struct{}{}
		m.Graphs = append(m.Graphs, def)
	}
	return m, nil
}

func translateGraph(ctx context.Context, pkgName string, g *graphBlock) (*config.GraphDefinition, error) {
	def := &config.GraphDefinition{
		URL:         g.URL,
		Label:       g.Label,
		Description: g.Description,
	}
	if def.URL == "" {
		def.URL = fmt.Sprintf("pkg://%s/%s", pkgName, g.Name)
	}
	if def.Label == "" {
		def.Label = g.Name
	}

	uids := make(map[int]string)
	claim := func(uid int, what string) error {
		if uid <= 0 {
			return fmt.Errorf("graph '%s': %s has invalid uid %d", g.Name, what, uid)
		}
		if prev, dup := uids[uid]; dup {
			return fmt.Errorf("graph '%s': %s reuses uid %d of %s", g.Name, what, uid, prev)
		}
		uids[uid] = what
		return nil
	}

	for _, in := range g.Inputs {
		if err := claim(in.UID, "input '"+in.Identifier+"'"); err != nil {
			return nil, err
		}
		input, err := translateInput(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("graph '%s', input '%s': %w", g.Name, in.Identifier, err)
		}
		def.Inputs = append(def.Inputs, input)
	}
	for _, out := range g.Outputs {
		if err := claim(out.UID, "output '"+out.Identifier+"'"); err != nil {
			return nil, err
		}
		def.Outputs = append(def.Outputs, &config.OutputDefinition{
			Identifier: out.Identifier,
			UID:        uint32(out.UID),
			Label:      out.Label,
			Format:     out.Format,
			Channel:    out.Channel,
		})
	}
	return def, nil
}

func translateInput(ctx context.Context, in *inputBlock) (*config.InputDefinition, error) {
	def := &config.InputDefinition{
		Identifier: in.Identifier,
		UID:        uint32(in.UID),
		Label:      in.Label,
		Group:      in.Group,
		Type:       in.Type,
		Widget:     in.Widget,
		Clamped:    in.Clamped,
		Heavy:      in.Heavy,
	}
	var err error
	if def.Default, err = literalValue(ctx, in.Default, "default"); err != nil {
		return nil, err
	}
	if def.Min, err = literalValue(ctx, in.Min, "min"); err != nil {
		return nil, err
	}
	if def.Max, err = literalValue(ctx, in.Max, "max"); err != nil {
		return nil, err
	}
	for _, uid := range in.Alters {
		if uid <= 0 {
			return nil, fmt.Errorf("invalid altered output uid %d", uid)
		}
		def.Alters = append(def.Alters, uint32(uid))
	}
	if len(in.Items) > 0 {
		def.Items = make(map[int32]string, len(in.Items))
		for k, label := range in.Items {
			n, err := strconv.ParseInt(k, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("combobox item key %q is not an integer", k)
			}
			def.Items[int32(n)] = label
		}
	}
	return def, nil
}
