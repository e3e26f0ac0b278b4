package app

import (
	"os"
	"testing"

	"github.com/specialistvlad/texgraphgo/internal/hcl_adapter"
	"github.com/specialistvlad/texgraphgo/internal/registry"
	"github.com/specialistvlad/texgraphgo/internal/testutil"
)

// SetupAppTest creates an app with debug logging captured in a buffer. The
// buffer is printed when TEXGRAPH_TEST_LOGS=true.
func SetupAppTest(t *testing.T, cfg *Config, modules ...registry.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	testApp := NewApp(logBuffer, cfg, hcl_adapter.NewLoader(), modules...)

	t.Cleanup(func() {
		if os.Getenv("TEXGRAPH_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})
	return testApp, logBuffer
}

// TestModules returns the core codecs plus backend registered as "fake".
func TestModules(backend *testutil.FakeBackend) []registry.Module {
	mods := []registry.Module{&testutil.BackendModule{Name: "fake", Backend: backend}}
	return append(mods, coreModules...)
}
