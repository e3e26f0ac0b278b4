package tga

import (
	"bytes"
	"image"

	"github.com/ftrvxmtrx/tga"
	"github.com/specialistvlad/texgraphgo/internal/registry"
)

// Decoder decodes Truevision TGA pictures.
type Decoder struct{}

// Decode implements imageinput.Decoder.
func (Decoder) Decode(data []byte) (image.Image, error) {
	return tga.Decode(bytes.NewReader(data))
}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the decoder for .tga files.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterDecoder(".tga", Decoder{})
}
