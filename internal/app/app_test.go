package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	stdjpeg "image/jpeg"
	stdpng "image/png"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/texgraphgo/internal/assetpath"
	"github.com/specialistvlad/texgraphgo/internal/hcl_adapter"
	"github.com/specialistvlad/texgraphgo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const interactiveProject = `
renderer {
  backend = "fake"
}

package "wood" {
  source = "packages/wood.pkg.hcl"
}
`

const declaredProject = `
renderer {
  backend = "fake"
}

image_input "mask" {
  source = "mask.jpg"
}

package "wood" {
  source = "packages/wood.pkg.hcl"

  instance "wood_INST" {
    values  = { roughness = 0.25 }
    images  = { mask = "mask" }
    outputs = ["basecolor"]
  }
}

material "wood_MAT" {
  textures = ["wood_INST_basecolor"]
}
`

func jpegFile(t *testing.T, shade byte) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		img.Pix[i] = shade
	}
	var buf bytes.Buffer
	require.NoError(t, stdjpeg.Encode(&buf, img, nil))
	return buf.String()
}

func workspace(t *testing.T, project string) string {
	t.Helper()
	files := testutil.WoodFiles(testutil.WoodManifest)
	files["project.hcl"] = project
	files["mask.jpg"] = jpegFile(t, 200)
	return testutil.WriteFiles(t, t.TempDir(), files)
}

func TestNewConfig(t *testing.T) {
	_, err := NewConfig(Config{})
	require.Error(t, err)

	_, err = NewConfig(Config{ProjectPath: "p", Workers: -1})
	require.Error(t, err)

	cfg, err := NewConfig(Config{ProjectPath: "p"})
	require.NoError(t, err)
	assert.Equal(t, DefaultTickInterval, cfg.TickInterval)
}

func TestNewApp_PanicsOnBrokenProject(t *testing.T) {
	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{"project.hcl": `package "wood" {`})
	assert.Panics(t, func() {
		NewApp(&testutil.SafeBuffer{}, &Config{ProjectPath: filepath.Join(dir, "project.hcl")}, hcl_adapter.NewLoader())
	})
}

func TestRun_InteractiveImportExports(t *testing.T) {
	dir := workspace(t, interactiveProject)
	out := filepath.Join(dir, "out")
	backend := &testutil.FakeBackend{}
	a, logs := SetupAppTest(t, &Config{ProjectPath: filepath.Join(dir, "project.hcl"), OutDir: out}, TestModules(backend)...)

	require.NoError(t, a.Run(context.Background()))

	require.Len(t, a.Instances(), 1)
	inst := a.Instances()[0]
	assert.Equal(t, "/Game/wood/Wood_INST", inst.Container().Path().String())
	assert.Len(t, backend.Jobs(), 1)
	assert.Contains(t, logs.String(), "Package imported.")

	f, err := os.Open(filepath.Join(out, "Wood_INST_basecolor.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := stdpng.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 16), img.Bounds())
	px := color.NRGBAModel.Convert(img.At(3, 3)).(color.NRGBA)
	assert.Equal(t, color.NRGBA{R: 101, G: 101, B: 101, A: 101}, px)

	assert.FileExists(t, filepath.Join(out, "Wood_INST_normal.png"))
}

func TestRun_DeclaredInstances(t *testing.T) {
	dir := workspace(t, declaredProject)
	backend := &testutil.FakeBackend{}
	a, _ := SetupAppTest(t, &Config{ProjectPath: filepath.Join(dir, "project.hcl")}, TestModules(backend)...)

	require.NoError(t, a.Run(context.Background()))

	require.Len(t, a.Instances(), 1)
	inst := a.Instances()[0]
	assert.Equal(t, "0.25", inst.GetValueString("roughness"))

	src, ok := a.Image("mask")
	require.True(t, ok)
	assert.Equal(t, []string{inst.Container().Path().String()}, a.Store().Referencers(src.Object().Path()))

	base := inst.GetOutputByName("basecolor")
	require.NotNil(t, base.Texture.Get())
	assert.False(t, base.Dirty)
	assert.False(t, inst.GetOutputByName("normal").Enabled)

	texPath := base.Texture.Get().Path()
	assert.True(t, a.Store().IsReferenced(texPath))
	assert.True(t, a.Store().Exists(assetpath.MustParse("/Game/Materials/wood_MAT")))

	jobs := backend.Jobs()
	require.Len(t, jobs, 1)
	require.Len(t, jobs[0].Outputs, 1)
	assert.Equal(t, uint32(101), jobs[0].Outputs[0].UID)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name    string
		project string
		backend string
		fail    bool
		want    string
	}{
		{name: "unknown backend", project: interactiveProject, backend: "nope", want: `"nope" backend`},
		{name: "render failure", project: declaredProject, fail: true, want: "initial render failed"},
		{
			name:    "unknown material texture",
			project: interactiveProject + `
material "m" {
  textures = ["missing"]
}`,
			want:    `unknown texture "missing"`,
		},
		{
			name:    "unknown image",
			project: `
package "wood" {
  source = "packages/wood.pkg.hcl"
  instance "a" {
    images = { mask = "nope" }
  }
}`,
			want:    `unknown image input "nope"`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := workspace(t, tc.project)
			backend := &testutil.FakeBackend{}
			if tc.fail {
				backend.SetError(errors.New("farm down"))
			}
			cfg := &Config{ProjectPath: filepath.Join(dir, "project.hcl"), Backend: tc.backend}
			if cfg.Backend == "" {
				cfg.Backend = "fake"
			}
			a, _ := SetupAppTest(t, cfg, TestModules(backend)...)

			err := a.Run(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestBackendOptions(t *testing.T) {
	dir := testutil.WriteFiles(t, t.TempDir(), map[string]string{"project.hcl": `
renderer {
  backend = "socketio"
  workers = 2
  url     = "http://farm:3000/render"
  timeout = "3s"
}`})
	a, _ := SetupAppTest(t, &Config{ProjectPath: filepath.Join(dir, "project.hcl"), Workers: 8})

	name, opts := a.backendOptions()
	assert.Equal(t, "socketio", name)
	assert.Equal(t, 8, opts.Workers)
	assert.Equal(t, "http://farm:3000/render", opts.URL)
	assert.Equal(t, 3*time.Second, opts.Timeout)

	a.config.Backend = "local"
	name, _ = a.backendOptions()
	assert.Equal(t, "local", name)
}

func TestStatusEndpoints(t *testing.T) {
	dir := workspace(t, interactiveProject)
	a, _ := SetupAppTest(t, &Config{ProjectPath: filepath.Join(dir, "project.hcl")}, TestModules(&testutil.FakeBackend{})...)
	srv := httptest.NewServer(a.statusMux())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"loaded":false,"held":false,"queue_length":0,"pending_runs":[],"assets":0,"pending_deletions":0}`, body.String())

	require.NoError(t, a.Load(context.Background()))
	st := a.Status()
	assert.True(t, st.Loaded)
	assert.Positive(t, st.Assets)

	health, err := srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, 200, health.StatusCode)
	require.NoError(t, a.shutdown(context.Background()))
}

func TestRun_WatchReimports(t *testing.T) {
	dir := workspace(t, declaredProject)
	backend := &testutil.FakeBackend{}
	a, logs := SetupAppTest(t, &Config{
		ProjectPath:  filepath.Join(dir, "project.hcl"),
		Watch:        true,
		TickInterval: 10 * time.Millisecond,
	}, TestModules(backend)...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool { return len(backend.Jobs()) == 1 && a.watcherReady() }, 5*time.Second, 10*time.Millisecond)

	testutil.WriteFiles(t, dir, map[string]string{"mask.jpg": jpegFile(t, 40)})
	require.Eventually(t, func() bool { return len(backend.Jobs()) >= 2 }, 5*time.Second, 10*time.Millisecond, "image reimport renders the consumer")

	testutil.WriteFiles(t, dir, map[string]string{"packages/wood.pkg.hcl": testutil.WoodManifestV2})
	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(logs.String()), []byte("Package reimported."))
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
