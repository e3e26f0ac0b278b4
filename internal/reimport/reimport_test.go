package reimport

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/texgraphgo/internal/assets"
	"github.com/specialistvlad/texgraphgo/internal/factory"
	"github.com/specialistvlad/texgraphgo/internal/graph"
	"github.com/specialistvlad/texgraphgo/internal/hcl_adapter"
	"github.com/specialistvlad/texgraphgo/internal/render"
	"github.com/specialistvlad/texgraphgo/internal/testutil"
	"github.com/specialistvlad/texgraphgo/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImage struct{ name string }

func (f *fakeImage) FullName() string { return "image_input " + f.name }

func (f *fakeImage) Prepare() (*image.RGBA, error) {
	return image.NewRGBA(image.Rect(0, 0, 16, 16)), nil
}

type env struct {
	ctx      context.Context
	dir      string
	store    *assets.Store
	backend  *testutil.FakeBackend
	renderer *render.Renderer
	factory  *factory.Factory
	inst     *graph.Instance
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx, _ := testutil.LogContext()
	dir := testutil.WriteFiles(t, t.TempDir(), testutil.WoodFiles(testutil.WoodManifest))
	store := assets.NewStore()
	backend := &testutil.FakeBackend{}
	r := render.New(ctx, backend)
	r.SetRenderCallbacks(render.TextureSink{})
	t.Cleanup(func() { _ = r.Close(ctx) })

	f := factory.New(store, hcl_adapter.NewLoader(), r, nil)
	_, created, err := f.ImportPackage(ctx, "wood", filepath.Join(dir, "packages", "wood.pkg.hcl"), factory.ImportModeInteractive)
	require.NoError(t, err)
	require.Len(t, created, 1)

	return &env{ctx: ctx, dir: dir, store: store, backend: backend, renderer: r, factory: f, inst: created[0]}
}

func (e *env) rewrite(t *testing.T, manifest string) {
	testutil.WriteFiles(t, e.dir, map[string]string{"packages/wood.pkg.hcl": manifest})
}

func TestReimport_PreservesIdentity(t *testing.T) {
	e := newEnv(t)
	old := e.inst
	oldPkg := old.Desc().Package()
	c := old.Container()
	_, err := old.SetInputValueByName("roughness", value.Floats(0.8))
	require.NoError(t, err)
	mask := &fakeImage{name: "mask"}
	old.UpdateInputByName(e.ctx, "mask", mask)

	baseSlot := old.GetOutput(101).Texture
	basePath := baseSlot.Get().Path()
	normalTex := old.GetOutput(102).Texture.Get()

	e.rewrite(t, testutil.WoodManifestV2)
	rc := New(e.factory, e.renderer, Options{})
	report, err := rc.Reimport(e.ctx, "wood")
	require.NoError(t, err)

	assert.False(t, report.Partial())
	require.Len(t, report.Rebuilt, 1)
	inst := report.Rebuilt[0]

	assert.NotEqual(t, old.ID(), inst.ID())
	assert.Same(t, c, inst.Container())
	assert.Same(t, inst, c.Instance())
	assert.Same(t, report.Package, inst.Desc().Package())
	assert.False(t, oldPkg.IsValid(), "old package destroyed")
	got, _ := e.factory.Package("wood")
	assert.Same(t, report.Package, got)
	assert.Equal(t, "0.8", inst.GetValueString("roughness"))

	base := inst.GetOutput(101)
	assert.True(t, base.Enabled)
	assert.False(t, base.Dirty, "rendered after reimport")
	assert.Same(t, baseSlot, base.Texture)
	assert.Equal(t, basePath, base.Texture.Get().Path())
	assert.Equal(t, assets.FormatRGBA16, base.Format)
	assert.Equal(t, assets.FormatRGBA16, base.Texture.Get().Format())
	assert.Len(t, base.Texture.Get().Pixels(), 16*16*8)

	height := inst.GetOutput(103)
	assert.False(t, height.Enabled)
	assert.Nil(t, height.Texture.Get())

	assert.Equal(t, []string{normalTex.Path().String()}, report.DeletedTextures)
	assert.Equal(t, 1, e.store.PendingDeletions())

	img := inst.GetInputByName("mask").(*graph.ImageInput)
	assert.Same(t, mask, img.Source)
	assert.NotNil(t, img.Prepared)

	require.NotZero(t, report.RunID)
	require.NoError(t, report.RenderErr)
}

func TestReimport_ReferencedOutputIsKept(t *testing.T) {
	e := newEnv(t)
	normalTex := e.inst.GetOutput(102).Texture.Get()
	e.store.AddReference(assetsPath(t, "/Game/wood_MAT"), normalTex.Path())

	e.rewrite(t, testutil.WoodManifestV2)
	report, err := New(e.factory, e.renderer, Options{}).Reimport(e.ctx, "wood")
	require.NoError(t, err)

	assert.Empty(t, report.DeletedTextures)
	assert.Zero(t, e.store.PendingDeletions())
	assert.False(t, normalTex.IsDestroyed())
}

func TestReimport_Detached(t *testing.T) {
	e := newEnv(t)
	c := e.inst.Container()

	e.rewrite(t, `
format_version = "1.0.0"
link_data      = "wood.bin"

graph "stone" {
  output "albedo" {
    uid = 900
  }
}
`)
	report, err := New(e.factory, e.renderer, Options{}).Reimport(e.ctx, "wood")
	require.NoError(t, err)
	assert.True(t, report.Partial())
	assert.Equal(t, []string{c.Path().String()}, report.Detached)
	assert.Empty(t, report.Rebuilt)
	assert.Nil(t, e.inst.Desc())
	assert.Same(t, e.inst, c.Instance(), "detached instances stay in their container")
	assert.True(t, c.IsStandalone())
	assert.True(t, c.IsModified())
}

func TestReimport_StrictDetachedFails(t *testing.T) {
	e := newEnv(t)
	e.rewrite(t, `
format_version = "1.0.0"
graph "stone" {}
`)
	report, err := New(e.factory, e.renderer, Options{Strict: true}).Reimport(e.ctx, "wood")
	assert.ErrorIs(t, err, ErrUnmatchedInstances)
	require.NotNil(t, report)
	assert.Len(t, report.Detached, 1)
}

func TestReimport_Gates(t *testing.T) {
	e := newEnv(t)
	rc := New(e.factory, e.renderer, Options{})

	_, err := rc.Reimport(e.ctx, "stone")
	assert.ErrorContains(t, err, "is not loaded")

	// An instance that exists but is not loaded blocks the reimport.
	e.inst.Desc().UnSubscribe(e.inst)
	_, err = rc.Reimport(e.ctx, "wood")
	assert.ErrorIs(t, err, ErrInstancesMissing)

	require.NoError(t, os.Remove(filepath.Join(e.dir, "packages", "wood.pkg.hcl")))
	pkg, _ := e.factory.Package("wood")
	assert.False(t, rc.CanReimport(pkg))
	_, err = rc.Reimport(e.ctx, "wood")
	assert.ErrorIs(t, err, ErrCannotReimport)
}

func TestReimport_BrokenManifestKeepsOldPackage(t *testing.T) {
	e := newEnv(t)
	e.rewrite(t, `format_version = "9.0.0"`)
	_, err := New(e.factory, e.renderer, Options{}).Reimport(e.ctx, "wood")
	assert.ErrorContains(t, err, "not supported")

	pkg, _ := e.factory.Package("wood")
	assert.Same(t, pkg, e.inst.Desc().Package())
	assert.Equal(t, 1, pkg.LoadedInstances())
}

func TestReimport_WithoutRenderer(t *testing.T) {
	e := newEnv(t)
	e.rewrite(t, testutil.WoodManifestV2)
	report, err := New(e.factory, nil, Options{}).Reimport(e.ctx, "wood")
	require.NoError(t, err)
	require.Len(t, report.Rebuilt, 1)
	assert.True(t, report.Rebuilt[0].GetOutput(101).Dirty)
	assert.Zero(t, report.RunID)
}
