package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// LoadProject reads every project file found under paths and merges them
	// into one Project.
	LoadProject(ctx context.Context, paths ...string) (*Project, error)

	// LoadPackage reads a single package manifest.
	LoadPackage(ctx context.Context, path string) (*PackageManifest, error)

	// IsPackageFile reports whether path names a package manifest this loader
	// understands.
	IsPackageFile(path string) bool
}
