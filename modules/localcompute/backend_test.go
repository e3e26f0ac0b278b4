package localcompute

import (
	"context"
	"image"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/specialistvlad/texgraphgo/internal/assets"
	"github.com/specialistvlad/texgraphgo/internal/registry"
	"github.com/specialistvlad/texgraphgo/internal/render"
	"github.com/specialistvlad/texgraphgo/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleJob(roughness float32) render.Job {
	return render.Job{
		InstanceID: uuid.New(),
		GraphURL:   "pkg://wood/main",
		LinkData:   []byte("link"),
		Inputs: []render.InputValue{
			{UID: 11, Identifier: "roughness", Kind: value.Float, Value: value.Floats(roughness)},
		},
		Outputs: []render.OutputRequest{
			{UID: 101, Format: assets.FormatRGBA8, Width: 8, Height: 8},
			{UID: 102, Format: assets.FormatL16, Width: 8, Height: 4},
			{UID: 103, Format: assets.FormatRGBA16F, Width: 2, Height: 2},
		},
	}
}

type collector struct {
	mu      sync.Mutex
	results map[uint32]render.Result
}

func (c *collector) emit(r render.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.results == nil {
		c.results = make(map[uint32]render.Result)
	}
	c.results[r.OutputUID] = r
}

func TestRender(t *testing.T) {
	b := New(2)
	var c collector
	require.NoError(t, b.Render(context.Background(), []render.Job{sampleJob(0.5)}, c.emit))

	require.Len(t, c.results, 3)
	assert.Len(t, c.results[101].Pixels, 8*8*4)
	assert.Len(t, c.results[102].Pixels, 8*4*2)
	assert.Len(t, c.results[103].Pixels, 2*2*8)
	// Opaque alpha in RGBA8.
	assert.Equal(t, uint8(0xff), c.results[101].Pixels[3])
}

func TestRender_DeterministicAndCached(t *testing.T) {
	b := New(4)
	var first, second, changed collector
	ctx := context.Background()
	require.NoError(t, b.Render(ctx, []render.Job{sampleJob(0.5)}, first.emit))
	require.NoError(t, b.Render(ctx, []render.Job{sampleJob(0.5)}, second.emit))

	assert.Equal(t, first.results[101].Pixels, second.results[101].Pixels)
	hits, misses := b.Stats()
	assert.Equal(t, 3, hits)
	assert.Equal(t, 3, misses)

	require.NoError(t, b.Render(ctx, []render.Job{sampleJob(0.1)}, changed.emit))
	assert.NotEqual(t, first.results[101].Pixels, changed.results[101].Pixels)

	b.ClearCache()
	var again collector
	require.NoError(t, b.Render(ctx, []render.Job{sampleJob(0.5)}, again.emit))
	_, misses = b.Stats()
	assert.Equal(t, 9, misses)
	assert.Equal(t, first.results[101].Pixels, again.results[101].Pixels)
}

func TestRender_ImageInputChangesResult(t *testing.T) {
	b := New(1)
	job := sampleJob(0.5)
	var plain, withImage collector
	require.NoError(t, b.Render(context.Background(), []render.Job{job}, plain.emit))

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	job.Inputs = append(job.Inputs, render.InputValue{UID: 13, Identifier: "mask", Kind: value.Image, Image: img})
	require.NoError(t, b.Render(context.Background(), []render.Job{job}, withImage.emit))

	assert.NotEqual(t, plain.results[101].Pixels, withImage.results[101].Pixels)
}

func TestRender_Cancelled(t *testing.T) {
	b := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := b.Render(ctx, []render.Job{sampleJob(0.5)}, func(render.Result) {})
	assert.ErrorIs(t, err, context.Canceled)
	require.NoError(t, b.Flush(context.Background()))
}

func TestFloat16(t *testing.T) {
	assert.Equal(t, uint16(0x0000), float16(0))
	assert.Equal(t, uint16(0x3c00), float16(1))
	assert.Equal(t, uint16(0x3800), float16(0.5))
}

func TestRegister(t *testing.T) {
	r := registry.New()
	(&Module{}).Register(r)
	b, err := r.NewBackend(context.Background(), "local", registry.BackendOptions{Workers: 3})
	require.NoError(t, err)
	assert.IsType(t, &Backend{}, b)

	_, err = r.NewBackend(context.Background(), "gpu", registry.BackendOptions{})
	assert.ErrorContains(t, err, "registered: local")
}
