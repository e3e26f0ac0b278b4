package jpeg

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/specialistvlad/texgraphgo/internal/registry"
)

// DefaultQuality is the compression quality of stored image planes.
const DefaultQuality = 90

// Codec decodes and compresses JPEG pictures.
type Codec struct {
	Quality int
}

// Decode implements imageinput.Decoder.
func (c Codec) Decode(data []byte) (image.Image, error) {
	return jpeg.Decode(bytes.NewReader(data))
}

// Encode implements imageinput.Codec.
func (c Codec) Encode(img image.Image) ([]byte, error) {
	q := c.Quality
	if q == 0 {
		q = DefaultQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the codec as "jpeg" and as decoder of .jpg and .jpeg.
func (m *Module) Register(r *registry.Registry) {
	c := Codec{Quality: DefaultQuality}
	r.RegisterCodec("jpeg", c)
	r.RegisterDecoder(".jpg", c)
	r.RegisterDecoder(".jpeg", c)
}
