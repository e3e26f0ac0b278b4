package integration_tests

import (
	"strings"
	"testing"

	"github.com/specialistvlad/texgraphgo/internal/integration_tests/harness"
	"github.com/specialistvlad/texgraphgo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrorHandling_InvalidHCL_IsRejected checks that a project with a
// syntax error stops the app before anything is imported.
func TestErrorHandling_InvalidHCL_IsRejected(t *testing.T) {
	t.Parallel()

	res := harness.Run(t, map[string]string{harness.ProjectFile: `
		package "wood" {
			source = "wood.pkg.hcl"
		// Missing closing brace here
	`}, nil)

	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "application startup panicked")
	assert.Contains(t, res.Err.Error(), "failed to parse")
}

func TestErrorHandling_ManifestErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		manifest string
		want     string
	}{
		{
			name:     "unsupported format version",
			manifest: `format_version = "2.0.0"`,
			want:     "format_version",
		},
		{
			name: "alters an unknown output",
			manifest: `
format_version = "1.0.0"
graph "g" {
  input "x" {
    uid    = 1
    type   = "float"
    alters = [99]
  }
  output "o" {
    uid = 10
  }
}`,
			want: "alters unknown output",
		},
		{
			name: "duplicate uid",
			manifest: `
format_version = "1.0.0"
graph "g" {
  input "x" {
    uid  = 10
    type = "float"
  }
  output "o" {
    uid = 10
  }
}`,
			want: "reuses uid",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res := harness.Run(t, harness.WoodProject(tc.manifest, `
package "wood" {
  source = "packages/wood.pkg.hcl"
}`), nil)
			require.Error(t, res.Err)
			assert.Contains(t, res.Err.Error(), "package 'wood'")
			assert.Contains(t, res.Err.Error(), tc.want)
		})
	}
}

// TestErrorHandling_MissingLinkData_SkipsInstance checks that instances of
// a package without link data are skipped with a log entry instead of
// failing the run.
func TestErrorHandling_MissingLinkData_SkipsInstance(t *testing.T) {
	t.Parallel()

	files := harness.WoodProject(testutil.WoodManifest, `
package "wood" {
  source = "packages/wood.pkg.hcl"
  instance "wood_INST" {}
}`)
	delete(files, "packages/wood.bin")
	files["packages/wood.pkg.hcl"] = stripLinkData(testutil.WoodManifest)

	res := harness.Run(t, files, nil)
	require.NoError(t, res.Err)

	require.Len(t, res.App.Instances(), 1)
	inst := res.App.Instances()[0]
	assert.Len(t, inst.DirtyOutputs(), 2, "nothing was rendered")
	assert.Empty(t, res.Backend.Jobs())
	assert.Contains(t, res.Logs.String(), "its package has no link data")
}

func stripLinkData(manifest string) string {
	return strings.Replace(manifest, `link_data      = "wood.bin"`, "", 1)
}
