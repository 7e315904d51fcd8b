package probe

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/url"

	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/rohmanhakim/lazyload/internal/fetcher"
)

// Strategy is one way of reading image dimensions.
type Strategy interface {
	Name() string
	// Available reports whether the strategy can run in this process.
	Available() bool
	Dimensions(ctx context.Context, imageURL url.URL, policy fetcher.Policy) (Dimensions, *ProbeError)
}

// HeaderStrategy streams the response and stops once the image header has
// been decoded, so large images cost only a few kilobytes.
type HeaderStrategy struct {
	fetcher fetcher.Fetcher
}

func NewHeaderStrategy(f fetcher.Fetcher) *HeaderStrategy {
	return &HeaderStrategy{fetcher: f}
}

func (s *HeaderStrategy) Name() string {
	return "header"
}

func (s *HeaderStrategy) Available() bool {
	return s.fetcher != nil
}

func (s *HeaderStrategy) Dimensions(ctx context.Context, imageURL url.URL, policy fetcher.Policy) (Dimensions, *ProbeError) {
	stream, err := s.fetcher.Open(ctx, policy.Param(imageURL))
	if err != nil {
		return Dimensions{}, &ProbeError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseFetchFailed,
		}
	}
	defer stream.Close()

	cfg, _, derr := image.DecodeConfig(stream)
	if derr != nil {
		return Dimensions{}, &ProbeError{
			Message:   fmt.Sprintf("read header: %v", derr),
			Retryable: true,
			Cause:     ErrCauseDecodeFailed,
		}
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

// DecodeStrategy downloads the whole body and decodes every pixel. It is the
// fallback for images whose header alone does not yield a size.
type DecodeStrategy struct {
	fetcher fetcher.Fetcher
}

func NewDecodeStrategy(f fetcher.Fetcher) *DecodeStrategy {
	return &DecodeStrategy{fetcher: f}
}

func (s *DecodeStrategy) Name() string {
	return "decode"
}

func (s *DecodeStrategy) Available() bool {
	return s.fetcher != nil
}

func (s *DecodeStrategy) Dimensions(ctx context.Context, imageURL url.URL, policy fetcher.Policy) (Dimensions, *ProbeError) {
	result, err := s.fetcher.Fetch(ctx, policy.Param(imageURL), policy.Retry)
	if err != nil {
		return Dimensions{}, &ProbeError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseFetchFailed,
		}
	}

	img, _, derr := image.Decode(bytes.NewReader(result.Body()))
	if derr != nil {
		return Dimensions{}, &ProbeError{
			Message:   fmt.Sprintf("decode: %v", derr),
			Retryable: false,
			Cause:     ErrCauseDecodeFailed,
		}
	}
	bounds := img.Bounds()
	return Dimensions{Width: bounds.Dx(), Height: bounds.Dy()}, nil
}
