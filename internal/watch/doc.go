// Package watch reports changes to package manifests and image source files
// on disk so the owner loop can reimport them.
package watch
