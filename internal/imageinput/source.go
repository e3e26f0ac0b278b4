package imageinput

import (
	"fmt"
	"image"
	"image/color"
	"slices"
	"sync"

	"github.com/specialistvlad/texgraphgo/internal/assets"
	"github.com/specialistvlad/texgraphgo/internal/graph"
	"golang.org/x/image/draw"
)

// Source is an image-input asset. It implements graph.ImageSource.
type Source struct {
	obj   *assets.Object
	codec Codec

	mu         sync.RWMutex
	sourceFile string
	width      int
	height     int
	color      []byte
	alpha      []byte
	consumers  []*graph.Instance
}

// Object returns the stored object of the source.
func (s *Source) Object() *assets.Object { return s.obj }

// FullName implements graph.ImageSource.
func (s *Source) FullName() string { return s.obj.FullName() }

// SourceFile returns the file the picture was imported from.
func (s *Source) SourceFile() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sourceFile
}

// Size returns the imported picture size.
func (s *Source) Size() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height
}

// HasAlpha reports whether an alpha plane is stored.
func (s *Source) HasAlpha() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alpha) > 0
}

// AddConsumer records that inst uses the source.
func (s *Source) AddConsumer(inst *graph.Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.consumers, inst) {
		s.consumers = append(s.consumers, inst)
	}
}

// RemoveConsumer forgets inst.
func (s *Source) RemoveConsumer(inst *graph.Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consumers = slices.DeleteFunc(s.consumers, func(x *graph.Instance) bool { return x == inst })
}

// Consumers returns the instances using the source.
func (s *Source) Consumers() []*graph.Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.consumers)
}

// setPlanes splits img into compressed color and alpha planes.
func (s *Source) setPlanes(file string, img image.Image) error {
	b := img.Bounds()
	rgb := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	var alpha *image.Gray
	if hasAlpha(img) {
		alpha = image.NewGray(rgb.Rect)
	}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			rgb.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
			if alpha != nil {
				alpha.SetGray(x, y, color.Gray{Y: c.A})
			}
		}
	}

	colorData, err := s.codec.Encode(rgb)
	if err != nil {
		return fmt.Errorf("compressing color plane: %w", err)
	}
	var alphaData []byte
	if alpha != nil {
		if alphaData, err = s.codec.Encode(alpha); err != nil {
			return fmt.Errorf("compressing alpha plane: %w", err)
		}
	}

	s.mu.Lock()
	s.sourceFile = file
	s.width, s.height = b.Dx(), b.Dy()
	s.color = colorData
	s.alpha = alphaData
	s.mu.Unlock()
	s.obj.MarkModified()
	return nil
}

// Prepare implements graph.ImageSource: it decompresses the planes, merges
// alpha back in and resamples to a power-of-two size of at most 2048.
func (s *Source) Prepare() (*image.RGBA, error) {
	s.mu.RLock()
	colorData, alphaData := s.color, s.alpha
	s.mu.RUnlock()

	if len(colorData) == 0 {
		return nil, ErrEmptyImage
	}
	colorImg, err := s.codec.Decode(colorData)
	if err != nil {
		return nil, fmt.Errorf("decompressing color plane: %w", err)
	}
	b := colorImg.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}
	merged := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(merged, merged.Rect, colorImg, b.Min, draw.Src)

	if len(alphaData) > 0 {
		alphaImg, err := s.codec.Decode(alphaData)
		if err != nil {
			return nil, fmt.Errorf("decompressing alpha plane: %w", err)
		}
		ab := alphaImg.Bounds()
		for y := 0; y < b.Dy() && y < ab.Dy(); y++ {
			for x := 0; x < b.Dx() && x < ab.Dx(); x++ {
				a := color.GrayModel.Convert(alphaImg.At(ab.Min.X+x, ab.Min.Y+y)).(color.Gray).Y
				c := merged.RGBAAt(x, y)
				// Stored color is straight; RGBA wants premultiplied.
				c.R = uint8(uint16(c.R) * uint16(a) / 0xff)
				c.G = uint8(uint16(c.G) * uint16(a) / 0xff)
				c.B = uint8(uint16(c.B) * uint16(a) / 0xff)
				c.A = a
				merged.SetRGBA(x, y, c)
			}
		}
	}

	w, h := PreparedSize(b.Dx(), b.Dy())
	if w == b.Dx() && h == b.Dy() {
		return merged, nil
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(out, out.Rect, merged, merged.Rect, draw.Src, nil)
	return out, nil
}

// PreparedSize rounds each dimension up to a power of two, capped at
// MaxSize.
func PreparedSize(w, h int) (int, int) {
	return pow2(w), pow2(h)
}

func pow2(n int) int {
	p := 1
	for p < n && p < MaxSize {
		p <<= 1
	}
	return p
}

func hasAlpha(img image.Image) bool {
	switch m := img.(type) {
	case *image.Gray, *image.Gray16, *image.YCbCr, *image.CMYK:
		return false
	case interface{ Opaque() bool }:
		return !m.Opaque()
	}
	return true
}
