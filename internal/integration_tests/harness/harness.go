// Package harness runs a whole app against a project written into a
// temporary directory, with a deterministic fake backend.
package harness

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/texgraphgo/internal/app"
	"github.com/specialistvlad/texgraphgo/internal/testutil"
)

// ProjectFile is where Run expects the project within the files it writes.
const ProjectFile = "project.hcl"

// Result holds everything a test may inspect after a run.
type Result struct {
	App     *app.App
	Backend *testutil.FakeBackend
	Dir     string
	Logs    *testutil.SafeBuffer
	Err     error
}

// Load writes files into a temp dir and builds an app over them without
// running it. The backend is registered as "fake" and selected unless
// configure picks another one. A startup panic becomes Result.Err.
func Load(t *testing.T, files map[string]string, configure func(*app.Config)) (res *Result) {
	t.Helper()
	res = &Result{Backend: &testutil.FakeBackend{}, Logs: &testutil.SafeBuffer{}}
	res.Dir = testutil.WriteFiles(t, t.TempDir(), files)

	cfg := &app.Config{ProjectPath: filepath.Join(res.Dir, ProjectFile), Backend: "fake"}
	if configure != nil {
		configure(cfg)
	}

	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()
	res.App, res.Logs = app.SetupAppTest(t, cfg, app.TestModules(res.Backend)...)
	return res
}

// Run is Load followed by App.Run.
func Run(t *testing.T, files map[string]string, configure func(*app.Config)) *Result {
	t.Helper()
	res := Load(t, files, configure)
	if res.Err != nil {
		return res
	}
	res.Err = res.App.Run(context.Background())
	return res
}

// Path joins a slash-separated name onto the workspace directory.
func (r *Result) Path(name string) string {
	return filepath.Join(r.Dir, filepath.FromSlash(name))
}

// WoodProject returns the wood package files plus project as ProjectFile.
func WoodProject(manifest, project string) map[string]string {
	files := testutil.WoodFiles(manifest)
	files[ProjectFile] = project
	return files
}
