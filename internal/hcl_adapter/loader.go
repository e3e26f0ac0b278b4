package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/texgraphgo/internal/config"
	"github.com/specialistvlad/texgraphgo/internal/ctxlog"
)

// PackageExt is the file extension of package manifests. Every other .hcl
// file is a project file.
const PackageExt = ".pkg.hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// IsPackageFile implements config.Loader.
func (l *Loader) IsPackageFile(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), PackageExt)
}

// LoadProject parses every project file under paths and merges the blocks
// into one model. Relative sources are resolved against the directory of the
// file naming them.
func (l *Loader) LoadProject(ctx context.Context, paths ...string) (*config.Project, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL project loader started.", "path_count", len(paths))

	files, err := l.findProjectFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no project files found in %v", paths)
	}
	logger.Debug("Discovered project files.", "count", len(files))

	project := &config.Project{}
	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root projectRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		if err := l.mergeProject(ctx, project, file, &root); err != nil {
			return nil, err
		}
	}

	if project.Renderer == nil {
		project.Renderer = &config.Renderer{}
	}
	logger.Debug("HCL loading complete.", "packages", len(project.Packages), "images", len(project.Images), "materials", len(project.Materials))
	return project, nil
}

// LoadPackage implements config.Loader.
func (l *Loader) LoadPackage(ctx context.Context, path string) (*config.PackageManifest, error) {
	logger := ctxlog.FromContext(ctx).With("package_file", path)
	if !l.IsPackageFile(path) {
		return nil, fmt.Errorf("%s is not a package manifest (want *%s)", path, PackageExt)
	}

	hclFile, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse package %s: %w", path, diags)
	}
	var root manifestRoot
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode package %s: %w", path, diags)
	}
	if err := checkFormatVersion(root.FormatVersion); err != nil {
		return nil, fmt.Errorf("package %s: %w", path, err)
	}

	m, err := l.translateManifest(ctx, path, &root)
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", path, err)
	}
	logger.Debug("Package manifest loaded.", "graphs", len(m.Graphs), "link_data_bytes", len(m.LinkData))
	return m, nil
}

// findProjectFiles walks all given paths and returns a flat list of project
// files, skipping package manifests.
func (l *Loader) findProjectFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if filepath.Ext(p) != ".hcl" || l.IsPackageFile(p) {
			return
		}
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			add(path)
			continue
		}
		err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return allFiles, nil
}
