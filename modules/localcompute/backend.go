// Package localcompute is the in-process compute backend. It evaluates
// graphs deterministically from their link data and input values, spreading
// outputs over a bounded worker pool and memoizing computed bitmaps.
package localcompute

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"image"
	"math"
	"sync"

	"github.com/specialistvlad/texgraphgo/internal/assets"
	"github.com/specialistvlad/texgraphgo/internal/render"
	"golang.org/x/sync/errgroup"
)

// Backend implements render.Backend.
type Backend struct {
	workers int

	mu     sync.Mutex
	cache  map[uint64][]byte
	hits   int
	misses int
	active sync.WaitGroup
}

// New creates a backend evaluating at most workers outputs at once.
func New(workers int) *Backend {
	if workers < 1 {
		workers = 1
	}
	return &Backend{workers: workers, cache: make(map[uint64][]byte)}
}

// Render implements render.Backend.
func (b *Backend) Render(ctx context.Context, jobs []render.Job, emit func(render.Result)) error {
	b.active.Add(1)
	defer b.active.Done()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for _, job := range jobs {
		jobKey := jobHash(job)
		for _, out := range job.Outputs {
			g.Go(func() error {
				pixels, err := b.output(gctx, job, jobKey, out)
				if err != nil {
					return err
				}
				emit(render.Result{
					InstanceID: job.InstanceID,
					OutputUID:  out.UID,
					Format:     out.Format,
					Width:      out.Width,
					Height:     out.Height,
					Pixels:     pixels,
				})
				return nil
			})
		}
	}
	return g.Wait()
}

func (b *Backend) output(ctx context.Context, job render.Job, jobKey uint64, out render.OutputRequest) ([]byte, error) {
	key := outputHash(jobKey, out)
	b.mu.Lock()
	if px, ok := b.cache[key]; ok {
		b.hits++
		b.mu.Unlock()
		return append([]byte(nil), px...), nil
	}
	b.misses++
	b.mu.Unlock()

	px, err := evaluate(ctx, job, key, out)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.cache[key] = px
	b.mu.Unlock()
	return append([]byte(nil), px...), nil
}

// Stats returns cache hits and misses.
func (b *Backend) Stats() (hits, misses int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits, b.misses
}

// ClearCache implements render.Backend.
func (b *Backend) ClearCache() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cache = make(map[uint64][]byte)
}

// Flush implements render.Backend. It waits for running evaluations.
func (b *Backend) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.active.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements render.Backend.
func (b *Backend) Close() error {
	b.ClearCache()
	return nil
}

// jobHash folds everything that changes what a job computes.
func jobHash(job render.Job) uint64 {
	h := fnv.New64a()
	h.Write(job.LinkData)
	h.Write([]byte(job.GraphURL))
	h.Write([]byte(job.HeavyHash))
	var buf [8]byte
	for _, in := range job.Inputs {
		binary.LittleEndian.PutUint32(buf[:4], in.UID)
		h.Write(buf[:4])
		if in.Kind.IsNumerical() {
			h.Write([]byte(in.Value.HashString()))
			continue
		}
		if in.Image != nil {
			h.Write(in.Image.Pix)
		}
	}
	return h.Sum64()
}

func outputHash(jobKey uint64, out render.OutputRequest) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], jobKey)
	h.Write(buf[:])
	binary.LittleEndian.PutUint32(buf[:4], out.UID)
	h.Write(buf[:4])
	binary.LittleEndian.PutUint32(buf[:4], uint32(out.Format))
	h.Write(buf[:4])
	binary.LittleEndian.PutUint32(buf[:4], uint32(out.Width))
	h.Write(buf[:4])
	binary.LittleEndian.PutUint32(buf[:4], uint32(out.Height))
	h.Write(buf[:4])
	return h.Sum64()
}

// evaluate produces the bitmap of one output: a seeded value-noise field,
// tinted by the job's first float input and blended with its first image
// input when there is one.
func evaluate(ctx context.Context, job render.Job, seed uint64, out render.OutputRequest) ([]byte, error) {
	tint := 1.0
	var img *image.RGBA
	for _, in := range job.Inputs {
		if in.Kind.IsNumerical() && !in.Kind.IsInteger() && tint == 1.0 {
			tint = 0.5 + 0.5*math.Max(0, math.Min(1, in.Value.Float(0)))
		}
		if in.Image != nil && img == nil {
			img = in.Image
		}
	}

	ch := out.Format.Channels()
	bpp := out.Format.BytesPerPixel()
	px := make([]byte, out.Width*out.Height*bpp)
	var sample [4]float64
	for y := 0; y < out.Height; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for x := 0; x < out.Width; x++ {
			n := splitmix(seed ^ uint64(y*out.Width+x))
			for c := 0; c < 4; c++ {
				noise := float64((n>>(16*c))&0xffff) / 0xffff
				grad := (float64(x) + float64(y)) / float64(out.Width+out.Height)
				sample[c] = tint * (0.5*noise + 0.5*grad)
			}
			if img != nil {
				b := img.Rect
				ix := b.Min.X + x*b.Dx()/out.Width
				iy := b.Min.Y + y*b.Dy()/out.Height
				col := img.RGBAAt(ix, iy)
				sample[0] = 0.5*sample[0] + 0.5*float64(col.R)/0xff
				sample[1] = 0.5*sample[1] + 0.5*float64(col.G)/0xff
				sample[2] = 0.5*sample[2] + 0.5*float64(col.B)/0xff
			}
			if ch == 4 {
				sample[3] = 1
			}
			writePixel(px[(y*out.Width+x)*bpp:], out.Format, sample)
		}
	}
	return px, nil
}

func writePixel(dst []byte, f assets.PixelFormat, s [4]float64) {
	switch f {
	case assets.FormatRGBA8:
		for c := 0; c < 4; c++ {
			dst[c] = uint8(math.Round(s[c] * 0xff))
		}
	case assets.FormatRGBA16:
		for c := 0; c < 4; c++ {
			binary.LittleEndian.PutUint16(dst[2*c:], uint16(math.Round(s[c]*0xffff)))
		}
	case assets.FormatRGBA16F:
		for c := 0; c < 4; c++ {
			binary.LittleEndian.PutUint16(dst[2*c:], float16(float32(s[c])))
		}
	case assets.FormatL8:
		dst[0] = uint8(math.Round(luma(s) * 0xff))
	case assets.FormatL16:
		binary.LittleEndian.PutUint16(dst, uint16(math.Round(luma(s)*0xffff)))
	}
}

func luma(s [4]float64) float64 {
	return 0.299*s[0] + 0.587*s[1] + 0.114*s[2]
}

func splitmix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// float16 converts a value in [0, 1] to IEEE 754 half precision. Subnormals
// flush to zero.
func float16(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16(bits>>16) & 0x8000
	exp := int32((bits>>23)&0xff) - 127 + 15
	mant := bits & 0x7fffff
	switch {
	case exp <= 0:
		return sign
	case exp >= 0x1f:
		return sign | 0x7c00
	}
	return sign | uint16(exp)<<10 | uint16(mant>>13)
}
