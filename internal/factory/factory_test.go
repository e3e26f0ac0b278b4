package factory

import (
	"bytes"
	"context"
	"image"
	"image/color"
	stdjpeg "image/jpeg"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/texgraphgo/internal/assetpath"
	"github.com/specialistvlad/texgraphgo/internal/assets"
	"github.com/specialistvlad/texgraphgo/internal/config"
	"github.com/specialistvlad/texgraphgo/internal/graph"
	"github.com/specialistvlad/texgraphgo/internal/hcl_adapter"
	"github.com/specialistvlad/texgraphgo/internal/imageinput"
	"github.com/specialistvlad/texgraphgo/internal/render"
	"github.com/specialistvlad/texgraphgo/internal/testutil"
	"github.com/specialistvlad/texgraphgo/internal/value"
	"github.com/specialistvlad/texgraphgo/modules/jpeg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type env struct {
	ctx      context.Context
	dir      string
	store    *assets.Store
	backend  *testutil.FakeBackend
	renderer *render.Renderer
	factory  *Factory
}

func newEnv(t *testing.T, prompter Prompter) *env {
	t.Helper()
	ctx, _ := testutil.LogContext()
	dir := testutil.WriteFiles(t, t.TempDir(), testutil.WoodFiles(testutil.WoodManifest))
	store := assets.NewStore()
	backend := &testutil.FakeBackend{}
	r := render.New(ctx, backend)
	r.SetRenderCallbacks(render.TextureSink{})
	t.Cleanup(func() { _ = r.Close(ctx) })
	return &env{
		ctx:      ctx,
		dir:      dir,
		store:    store,
		backend:  backend,
		renderer: r,
		factory:  New(store, hcl_adapter.NewLoader(), r, prompter),
	}
}

func (e *env) woodFile() string { return filepath.Join(e.dir, "packages", "wood.pkg.hcl") }

type declineAll struct{ asked int }

func (d *declineAll) ConfirmGraph(context.Context, *graph.Desc) bool {
	d.asked++
	return false
}

func TestImportPackage_Interactive(t *testing.T) {
	e := newEnv(t, nil)

	pkg, created, err := e.factory.ImportPackage(e.ctx, "wood", e.woodFile(), ImportModeInteractive)
	require.NoError(t, err)
	require.Len(t, created, 1)

	inst := created[0]
	assert.Equal(t, "/Game/wood/Wood_INST", inst.Container().Path().String())
	assert.Same(t, pkg.Graphs[0], inst.Desc())
	assert.Equal(t, 1, pkg.LoadedInstances())
	assert.True(t, e.store.Exists(assetpath.MustParse("/Game/wood/wood.pkg")))

	got, ok := e.factory.Package("wood")
	require.True(t, ok)
	assert.Same(t, pkg, got)
	got, ok = e.factory.PackageByFile(e.woodFile())
	require.True(t, ok)
	assert.Same(t, pkg, got)

	require.Len(t, e.backend.Jobs(), 1)
	for _, out := range inst.Outputs {
		assert.True(t, out.Enabled)
		assert.False(t, out.Dirty, "output %s rendered", out.Identifier())
		tex := out.Texture.Get()
		require.NotNil(t, tex)
		w, h := tex.Size()
		assert.Equal(t, 16, w)
		assert.Equal(t, 16, h)
		assert.Equal(t, byte(out.UID), tex.Pixels()[0])
	}
	assert.Equal(t, "/Game/wood/Wood_INST_basecolor", inst.GetOutput(101).Texture.Get().Path().String())
}

func TestImportPackage_Cancelled(t *testing.T) {
	prompter := &declineAll{}
	e := newEnv(t, prompter)

	_, _, err := e.factory.ImportPackage(e.ctx, "wood", e.woodFile(), ImportModeInteractive)
	assert.ErrorIs(t, err, ErrImportCancelled)
	assert.Equal(t, 1, prompter.asked)
	_, ok := e.factory.Package("wood")
	assert.False(t, ok)
	assert.Empty(t, e.backend.Jobs())
}

func TestImportPackage_ReimportModeSkipsInstances(t *testing.T) {
	prompter := &declineAll{}
	e := newEnv(t, prompter)

	pkg, created, err := e.factory.ImportPackage(e.ctx, "wood", e.woodFile(), ImportModeReimport)
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Zero(t, prompter.asked)
	assert.Zero(t, pkg.LoadedInstances())
	assert.Empty(t, e.backend.Jobs())
}

func TestImportPackage_Errors(t *testing.T) {
	e := newEnv(t, nil)
	_, _, err := e.factory.ImportPackage(e.ctx, "wood", filepath.Join(e.dir, "missing.pkg.hcl"), ImportModeInteractive)
	assert.Error(t, err)

	empty := testutil.WriteFiles(t, t.TempDir(), map[string]string{"empty.pkg.hcl": `format_version = "1.0.0"`})
	_, _, err = e.factory.ImportPackage(e.ctx, "empty", filepath.Join(empty, "empty.pkg.hcl"), ImportModeInteractive)
	assert.ErrorContains(t, err, "has no graphs")
}

func writeJPEG(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.Set(0, 0, color.RGBA{A: 255})
	var buf bytes.Buffer
	require.NoError(t, stdjpeg.Encode(&buf, img, nil))
	return testutil.WriteFiles(t, dir, map[string]string{"mask.jpg": buf.String()})
}

func TestCreateInstance(t *testing.T) {
	e := newEnv(t, nil)
	pkg, _, err := e.factory.ImportPackage(e.ctx, "wood", e.woodFile(), ImportModeReimport)
	require.NoError(t, err)

	codec := jpeg.Codec{Quality: jpeg.DefaultQuality}
	importer := imageinput.NewImporter(e.store, map[string]imageinput.Decoder{".jpg": codec}, codec)
	src, err := importer.Import(e.ctx, assetpath.MustParse("/Game/images/mask"), filepath.Join(writeJPEG(t, t.TempDir()), "mask.jpg"))
	require.NoError(t, err)
	resolve := func(name string) (*imageinput.Source, bool) {
		if name == "mask" {
			return src, true
		}
		return nil, false
	}

	def := &config.Instance{
		Name:    "oak",
		Graph:   "pkg://wood/main",
		Dynamic: false,
		Values:  map[string]cty.Value{"roughness": cty.NumberFloatVal(2)},
		Images:  map[string]string{"mask": "mask"},
		Outputs: []string{"basecolor"},
	}
	inst, err := e.factory.CreateInstance(e.ctx, pkg, def, resolve)
	require.NoError(t, err)

	assert.True(t, inst.IsFrozen())
	assert.Equal(t, "1", inst.GetValueString("roughness"), "override clamped and applied while frozen")
	assert.True(t, inst.GetOutput(101).Enabled)
	assert.False(t, inst.GetOutput(102).Enabled)
	assert.Nil(t, inst.GetOutput(102).Texture.Get())

	mask := inst.GetInputByName("mask").(*graph.ImageInput)
	assert.Same(t, src, mask.Source)
	assert.Equal(t, []*graph.Instance{inst}, src.Consumers())
	assert.True(t, e.store.IsReferenced(src.Object().Path()))
}

func TestCreateInstance_Errors(t *testing.T) {
	e := newEnv(t, nil)
	pkg, _, err := e.factory.ImportPackage(e.ctx, "wood", e.woodFile(), ImportModeReimport)
	require.NoError(t, err)
	none := func(string) (*imageinput.Source, bool) { return nil, false }
	before := e.store.Paths()

	testCases := []struct {
		name     string
		def      *config.Instance
		expected string
	}{
		{name: "unknown graph", def: &config.Instance{Name: "a", Graph: "pkg://wood/other"}, expected: "has no graph"},
		{name: "unknown input", def: &config.Instance{Name: "b", Values: map[string]cty.Value{"gloss": cty.Zero}}, expected: `has no input "gloss"`},
		{name: "bad value", def: &config.Instance{Name: "c", Values: map[string]cty.Value{"roughness": cty.StringVal("x")}}, expected: "expected a number"},
		{name: "unknown output", def: &config.Instance{Name: "d", Outputs: []string{"albedo"}}, expected: `has no output "albedo"`},
		{name: "unknown image", def: &config.Instance{Name: "e", Images: map[string]string{"mask": "nope"}}, expected: `unknown image input "nope"`},
		{name: "numerical as image", def: &config.Instance{Name: "f", Images: map[string]string{"roughness": "nope"}}, expected: `no image input "roughness"`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.factory.CreateInstance(e.ctx, pkg, tc.def, none)
			assert.ErrorContains(t, err, tc.expected)
		})
	}
	assert.Zero(t, pkg.LoadedInstances(), "failed instances are destroyed")
	assert.ElementsMatch(t, before, e.store.Paths(), "containers and textures of failed instances are removed")
	assert.Zero(t, e.store.CollectGarbage(e.ctx))
}

func TestCreateInstance_NamedAfterPackage(t *testing.T) {
	e := newEnv(t, nil)
	pkg, _, err := e.factory.ImportPackage(e.ctx, "wood", e.woodFile(), ImportModeReimport)
	require.NoError(t, err)
	none := func(string) (*imageinput.Source, bool) { return nil, false }

	inst, err := e.factory.CreateInstance(e.ctx, pkg, &config.Instance{Name: "wood", Dynamic: true}, none)
	require.NoError(t, err)
	assert.Equal(t, "/Game/wood/wood", inst.Container().Path().String())
	assert.Equal(t, "wood", inst.Label())
	assert.True(t, e.store.Exists(PackageObjectPath("wood")))
}

func TestDuplicateInstance(t *testing.T) {
	e := newEnv(t, nil)
	_, created, err := e.factory.ImportPackage(e.ctx, "wood", e.woodFile(), ImportModeInteractive)
	require.NoError(t, err)
	src := created[0]
	_, err = src.SetInputValueByName("roughness", value.Floats(0.8))
	require.NoError(t, err)

	dup, err := e.factory.DuplicateInstance(e.ctx, src, "Wood_copy", true)
	require.NoError(t, err)

	assert.NotEqual(t, src.ID(), dup.ID())
	assert.Equal(t, "/Game/wood/Wood_copy", dup.Container().Path().String())
	assert.True(t, sameValue(src, dup, "roughness"))
	for _, out := range dup.Outputs {
		assert.True(t, out.Enabled)
		assert.NotSame(t, src.GetOutput(out.UID).Texture.Get(), out.Texture.Get())
	}
	assert.Equal(t, 2, src.Desc().Package().LoadedInstances())

	src.Detach()
	_, err = e.factory.DuplicateInstance(e.ctx, src, "again", false)
	assert.ErrorContains(t, err, "detached")
}

func sameValue(a, b *graph.Instance, identifier string) bool {
	return graph.AreInputValuesEqual(a.GetInputByName(identifier), b.GetInputByName(identifier))
}

func TestNaming(t *testing.T) {
	d := &graph.Desc{Label: "Old Wood"}
	assert.Equal(t, "Old_Wood_INST", DefaultInstanceName(d))
	assert.Equal(t, "Old_Wood", StripInstanceSuffix(DefaultInstanceName(d)))
	assert.Equal(t, "reimport", ImportModeReimport.String())
}
