// Package config defines the format-agnostic configuration model of the
// application: the Project (which packages to load and which instances to
// create from them) and the PackageManifest (a decoded material package),
// along with the Loader interface that produces them.
//
// Concrete loaders, such as the HCL one, live in separate packages.
package config
