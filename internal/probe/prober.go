package probe

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/rohmanhakim/lazyload/internal/fetcher"
	"github.com/rohmanhakim/lazyload/internal/metadata"
	"github.com/rohmanhakim/lazyload/pkg/failure"
	"github.com/rohmanhakim/lazyload/pkg/urlutil"
	"golang.org/x/sync/singleflight"
)

/*
Prober answers "how big is this image" for placeholder sizing.

Strategies run in order. A strategy that cannot decode the bytes hands
over to the next one; a strategy that cannot reach the host ends the
probe, so an unreachable URL costs at most one timeout.

Concurrent probes of the same resolved URL share one flight and its result.
*/
type Prober struct {
	metadataSink metadata.MetadataSink
	strategies   []Strategy
	flights      *singleflight.Group
}

type outcome struct {
	dims Dimensions
	err  *ProbeError
}

// NewProber wires the header strategy first and the full-decode strategy
// as fallback.
func NewProber(metadataSink metadata.MetadataSink, f fetcher.Fetcher) *Prober {
	return NewProberWithStrategies(metadataSink, NewHeaderStrategy(f), NewDecodeStrategy(f))
}

func NewProberWithStrategies(metadataSink metadata.MetadataSink, strategies ...Strategy) *Prober {
	return &Prober{
		metadataSink: metadataSink,
		strategies:   strategies,
		flights:      &singleflight.Group{},
	}
}

// Probe resolves rawURL against base and returns its pixel dimensions.
func (p *Prober) Probe(ctx context.Context, rawURL string, base *url.URL, policy fetcher.Policy) (Dimensions, failure.ClassifiedError) {
	imageURL, err := urlutil.Resolve(rawURL, base)
	if err != nil {
		perr := &ProbeError{Message: err.Error(), Cause: ErrCauseInvalidURL}
		p.recordError(rawURL, perr)
		return Dimensions{}, perr
	}

	v, _, _ := p.flights.Do(imageURL.String(), func() (any, error) {
		dims, perr := p.probe(ctx, imageURL, policy)
		return outcome{dims: dims, err: perr}, nil
	})
	res := v.(outcome)
	if res.err != nil {
		return Dimensions{}, res.err
	}
	return res.dims, nil
}

func (p *Prober) probe(ctx context.Context, imageURL url.URL, policy fetcher.Policy) (Dimensions, *ProbeError) {
	var lastErr *ProbeError
	for _, strategy := range p.strategies {
		if !strategy.Available() {
			continue
		}

		dims, perr := strategy.Dimensions(ctx, imageURL, policy)
		if perr == nil {
			if !dims.Valid() {
				perr = &ProbeError{
					Message: "non-positive size " + dims.String(),
					Cause:   ErrCauseInvalidDimensions,
				}
				p.recordError(imageURL.String(), perr)
				return Dimensions{}, perr
			}
			return dims, nil
		}

		lastErr = perr
		if perr.Cause == ErrCauseFetchFailed || errors.Is(ctx.Err(), context.Canceled) {
			break
		}
	}

	if lastErr == nil {
		lastErr = &ProbeError{Message: "no usable strategy", Cause: ErrCauseNoStrategy}
	}
	p.recordError(imageURL.String(), lastErr)
	return Dimensions{}, lastErr
}

func (p *Prober) recordError(imageURL string, err *ProbeError) {
	p.metadataSink.RecordError(
		time.Now(),
		"probe",
		"Prober.Probe",
		mapProbeErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, imageURL),
		},
	)
}
