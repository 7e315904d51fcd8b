package color

import (
	"bytes"
	"image"

	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder

	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Codec is the image decoding capability the sampler depends on. Runtimes
// without one report Available() == false and sampling is skipped.
type Codec interface {
	Available() bool
	Decode(data []byte) (image.Image, error)
}

// StdCodec decodes through the image package registry.
type StdCodec struct{}

func (StdCodec) Available() bool {
	return true
}

func (StdCodec) Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// NoCodec stands in for a runtime without decoders.
type NoCodec struct{}

func (NoCodec) Available() bool {
	return false
}

func (NoCodec) Decode(data []byte) (image.Image, error) {
	return nil, image.ErrFormat
}
