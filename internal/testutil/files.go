package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFiles writes files, keyed by slash-separated relative path, under dir
// and returns dir.
func WriteFiles(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// WoodManifest is a one-graph package with a float, an output size, a seed
// and an image input feeding two outputs.
const WoodManifest = `
format_version = "1.1.0"
link_data      = "wood.bin"

graph "main" {
  url   = "pkg://wood/main"
  label = "Wood"

  input "$outputsize" {
    uid     = 1
    type    = "int2"
    widget  = "outputsize"
    default = [4, 4]
    alters  = [101, 102]
  }

  input "$randomseed" {
    uid    = 2
    type   = "int"
    alters = [101, 102]
  }

  input "roughness" {
    uid     = 11
    type    = "float"
    widget  = "slider"
    min     = 0
    max     = 1
    clamped = true
    default = 0.5
    alters  = [101, 102]
  }

  input "mask" {
    uid    = 13
    type   = "image"
    widget = "image"
    alters = [101]
  }

  output "basecolor" {
    uid     = 101
    format  = "rgba8"
    channel = "basecolor"
  }

  output "normal" {
    uid     = 102
    format  = "rgba8"
    channel = "normal"
  }
}
`

// WoodManifestV2 is WoodManifest after an edit: the normal output is gone,
// basecolor became 16 bit and a height output was added.
const WoodManifestV2 = `
format_version = "1.1.0"
link_data      = "wood.bin"

graph "main" {
  url   = "pkg://wood/main"
  label = "Wood"

  input "$outputsize" {
    uid     = 1
    type    = "int2"
    widget  = "outputsize"
    default = [4, 4]
    alters  = [101, 103]
  }

  input "roughness" {
    uid     = 11
    type    = "float"
    min     = 0
    max     = 1
    clamped = true
    default = 0.5
    alters  = [101, 103]
  }

  input "mask" {
    uid    = 13
    type   = "image"
    alters = [101]
  }

  output "basecolor" {
    uid     = 101
    format  = "rgba16"
    channel = "basecolor"
  }

  output "height" {
    uid     = 103
    format  = "l8"
    channel = "height"
  }
}
`

// WoodFiles is a workspace holding the wood package and its link data.
func WoodFiles(manifest string) map[string]string {
	return map[string]string{
		"packages/wood.pkg.hcl": manifest,
		"packages/wood.bin":     "compiled-wood",
	}
}
