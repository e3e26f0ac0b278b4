package imageinput

import (
	"errors"
	"image"
)

// Decoder decodes an image file.
type Decoder interface {
	Decode(data []byte) (image.Image, error)
}

// Codec is a Decoder that can also compress. Image inputs store their planes
// with it.
type Codec interface {
	Decoder
	Encode(img image.Image) ([]byte, error)
}

// Size limits of imported pictures.
const (
	MinSize = 16
	MaxSize = 2048
)

var (
	ErrImageTooSmall     = errors.New("image is smaller than 16 pixels")
	ErrImageTooLarge     = errors.New("image is larger than 2048 pixels")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrUnsupportedDepth  = errors.New("only 24 and 32 bits per pixel are supported")
	ErrEmptyImage        = errors.New("image decoded to nothing")
)
