package color

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rohmanhakim/lazyload/internal/fetcher"
	"github.com/rohmanhakim/lazyload/internal/metadata"
	"github.com/rohmanhakim/lazyload/pkg/failure"
	"github.com/rohmanhakim/lazyload/pkg/urlutil"
)

// Sampler computes the average color of an image by resampling it to a
// single pixel with a box filter.
type Sampler struct {
	metadataSink metadata.MetadataSink
	codec        Codec
	fetcher      fetcher.Fetcher
}

func NewSampler(metadataSink metadata.MetadataSink, codec Codec, f fetcher.Fetcher) *Sampler {
	if codec == nil {
		codec = NoCodec{}
	}
	return &Sampler{
		metadataSink: metadataSink,
		codec:        codec,
		fetcher:      f,
	}
}

// IsSampleable reports whether rawURL points at a JPEG. Only JPEGs are
// sampled; other formats never cost a network round trip.
func IsSampleable(rawURL string) bool {
	switch urlutil.Extension(rawURL) {
	case "jpg", "jpeg":
		return true
	}
	return false
}

// Sample decodes data and returns its average color as "#RRGGBB".
func (s *Sampler) Sample(data []byte) (string, failure.ClassifiedError) {
	if !s.codec.Available() {
		return "", &SampleError{Message: "no image codec loaded", Cause: ErrCauseCodecUnavailable}
	}

	img, err := s.codec.Decode(data)
	if err != nil {
		return "", &SampleError{Message: err.Error(), Cause: ErrCauseDecodeFailed}
	}

	pixel := imaging.Resize(img, 1, 1, imaging.Box)
	c, ok := colorful.MakeColor(pixel.At(0, 0))
	if !ok {
		return "", &SampleError{Message: "average alpha is zero", Cause: ErrCauseTransparent}
	}
	return strings.ToUpper(c.Hex()), nil
}

// SampleURL applies the JPEG-only policy, fetches rawURL and samples it.
func (s *Sampler) SampleURL(ctx context.Context, rawURL string, base *url.URL, policy fetcher.Policy) (string, failure.ClassifiedError) {
	if !IsSampleable(rawURL) {
		return "", &SampleError{Message: rawURL, Cause: ErrCauseNotSampleable}
	}
	if !s.codec.Available() || s.fetcher == nil {
		return "", &SampleError{Message: "no image codec loaded", Cause: ErrCauseCodecUnavailable}
	}

	imageURL, err := urlutil.Resolve(rawURL, base)
	if err != nil {
		serr := &SampleError{Message: err.Error(), Cause: ErrCauseFetchFailed}
		s.recordError(rawURL, serr)
		return "", serr
	}

	result, ferr := s.fetcher.Fetch(ctx, policy.Param(imageURL), policy.Retry)
	if ferr != nil {
		serr := &SampleError{Message: ferr.Error(), Cause: ErrCauseFetchFailed}
		s.recordError(imageURL.String(), serr)
		return "", serr
	}

	hex, cerr := s.Sample(result.Body())
	if cerr != nil {
		var serr *SampleError
		if errors.As(cerr, &serr) {
			s.recordError(imageURL.String(), serr)
		}
		return "", cerr
	}
	return hex, nil
}

func (s *Sampler) recordError(imageURL string, err *SampleError) {
	s.metadataSink.RecordError(
		time.Now(),
		"color",
		"Sampler.SampleURL",
		mapSampleErrorToMetadataCause(err),
		fmt.Sprint(err),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, imageURL),
		},
	)
}
