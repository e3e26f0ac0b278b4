package assets

import (
	"fmt"
	"strings"
	"sync"
)

// PixelFormat is the storage format of a texture.
type PixelFormat int

const (
	FormatRGBA8 PixelFormat = iota
	FormatRGBA16
	FormatRGBA16F
	FormatL8
	FormatL16
)

var formatNames = [...]string{
	FormatRGBA8:   "rgba8",
	FormatRGBA16:  "rgba16",
	FormatRGBA16F: "rgba16f",
	FormatL8:      "l8",
	FormatL16:     "l16",
}

func (f PixelFormat) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("format(%d)", int(f))
	}
	return formatNames[f]
}

// ParseFormat is the inverse of String.
func ParseFormat(s string) (PixelFormat, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, name := range formatNames {
		if name == s {
			return PixelFormat(f), nil
		}
	}
	return 0, fmt.Errorf("unknown pixel format %q", s)
}

// Channels returns the number of channels per pixel.
func (f PixelFormat) Channels() int {
	switch f {
	case FormatL8, FormatL16:
		return 1
	default:
		return 4
	}
}

// BytesPerPixel returns the storage size of one pixel.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatRGBA8:
		return 4
	case FormatRGBA16, FormatRGBA16F:
		return 8
	case FormatL8:
		return 1
	case FormatL16:
		return 2
	}
	return 4
}

// Texture is a texture asset. Its pixel storage is replaced wholesale by
// Write; readers get a copy.
type Texture struct {
	*Object

	mu     sync.RWMutex
	format PixelFormat
	width  int
	height int
	pixels []byte
}

// Format returns the current pixel format.
func (t *Texture) Format() PixelFormat {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.format
}

// Size returns the texture dimensions; 0x0 until the first Write.
func (t *Texture) Size() (int, int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.width, t.height
}

// Pixels returns a copy of the pixel storage.
func (t *Texture) Pixels() []byte {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]byte(nil), t.pixels...)
}

// Write replaces the texture content. The buffer length must match the
// format and dimensions.
func (t *Texture) Write(format PixelFormat, width, height int, pixels []byte) error {
	if want := width * height * format.BytesPerPixel(); len(pixels) != want {
		return fmt.Errorf("texture %s: got %d bytes for %dx%d %s, want %d", t.Name(), len(pixels), width, height, format, want)
	}
	t.mu.Lock()
	t.format = format
	t.width, t.height = width, height
	t.pixels = append(t.pixels[:0], pixels...)
	t.mu.Unlock()
	t.MarkModified()
	return nil
}

// TextureSlot is a shared handle to a texture. Every holder of the same slot
// observes Set and Clear, so a texture rebuilt in place or released is seen
// by all of them.
type TextureSlot struct {
	mu  sync.RWMutex
	tex *Texture
}

// NewSlot returns a slot holding t (which may be nil).
func NewSlot(t *Texture) *TextureSlot {
	return &TextureSlot{tex: t}
}

// Get returns the held texture, nil if the slot is empty.
func (s *TextureSlot) Get() *Texture {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tex
}

// Set replaces the held texture.
func (s *TextureSlot) Set(t *Texture) {
	s.mu.Lock()
	s.tex = t
	s.mu.Unlock()
}

// Clear empties the slot and returns what it held.
func (s *TextureSlot) Clear() *Texture {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tex
	s.tex = nil
	return t
}
