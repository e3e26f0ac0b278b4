package app

import (
	"context"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/specialistvlad/texgraphgo/internal/assets"
	"github.com/specialistvlad/texgraphgo/internal/ctxlog"
	"github.com/specialistvlad/texgraphgo/internal/graph"
	"github.com/specialistvlad/texgraphgo/internal/render"
)

// exporter writes every computed texture to dir as "<texture name>.png"
// after storing it.
type exporter struct {
	render.TextureSink
	dir string
}

func newExporter(dir string) *exporter {
	return &exporter{dir: dir}
}

// OutputComputed implements render.Callbacks.
func (e *exporter) OutputComputed(ctx context.Context, out *graph.OutputInstance, res render.Result) error {
	if err := e.TextureSink.OutputComputed(ctx, out, res); err != nil {
		return err
	}
	tex := out.Texture.Get()
	if tex == nil {
		return nil
	}
	file := filepath.Join(e.dir, tex.Name()+".png")
	if err := writePNG(file, tex); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Texture exported.", "file", file, "output_uid", out.UID)
	return nil
}

func writePNG(file string, tex *assets.Texture) error {
	img, err := textureImage(tex)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", file, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", file, err)
	}
	return f.Close()
}

// textureImage converts texture storage into an image. Sixteen-bit channels
// are stored little-endian; half floats are clamped to [0, 1].
func textureImage(tex *assets.Texture) (image.Image, error) {
	w, h := tex.Size()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("texture %s is empty", tex.Name())
	}
	rect := image.Rect(0, 0, w, h)
	pix := tex.Pixels()

	switch format := tex.Format(); format {
	case assets.FormatRGBA8:
		return &image.NRGBA{Pix: pix, Stride: 4 * w, Rect: rect}, nil
	case assets.FormatL8:
		return &image.Gray{Pix: pix, Stride: w, Rect: rect}, nil
	case assets.FormatRGBA16:
		return &image.NRGBA64{Pix: swap16(pix), Stride: 8 * w, Rect: rect}, nil
	case assets.FormatL16:
		return &image.Gray16{Pix: swap16(pix), Stride: 2 * w, Rect: rect}, nil
	case assets.FormatRGBA16F:
		out := make([]byte, len(pix))
		for i := 0; i+1 < len(pix); i += 2 {
			f := halfToFloat(binary.LittleEndian.Uint16(pix[i:]))
			v := uint16(math.Round(math.Max(0, math.Min(1, float64(f))) * 0xffff))
			binary.BigEndian.PutUint16(out[i:], v)
		}
		return &image.NRGBA64{Pix: out, Stride: 8 * w, Rect: rect}, nil
	default:
		return nil, fmt.Errorf("texture %s: cannot export %s", tex.Name(), format)
	}
}

func swap16(pix []byte) []byte {
	out := make([]byte, len(pix))
	for i := 0; i+1 < len(pix); i += 2 {
		out[i], out[i+1] = pix[i+1], pix[i]
	}
	return out
}

func halfToFloat(h uint16) float32 {
	sign := uint32(h&0x8000) << 16
	exp := uint32(h>>10) & 0x1f
	mant := uint32(h & 0x3ff)
	switch {
	case exp == 0:
		// subnormal or zero
		f := float32(mant) / 1024 * float32(math.Pow(2, -14))
		if sign != 0 {
			f = -f
		}
		return f
	case exp == 0x1f:
		return math.Float32frombits(sign | 0x7f800000 | mant<<13)
	}
	return math.Float32frombits(sign | (exp+112)<<23 | mant<<13)
}
