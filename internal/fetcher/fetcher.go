package fetcher

import (
	"context"

	"github.com/rohmanhakim/lazyload/pkg/failure"
	"github.com/rohmanhakim/lazyload/pkg/retry"
)

// Fetcher is the injected HTTP capability shared by the prober, the color
// sampler and the video resolver.
type Fetcher interface {
	// Fetch downloads the whole body, retrying per retryParam.
	Fetch(
		ctx context.Context,
		fetchParam FetchParam,
		retryParam retry.RetryParam,
	) (FetchResult, failure.ClassifiedError)

	// Open starts a single request and hands back the body for incremental
	// reads. The caller must Close the stream.
	Open(
		ctx context.Context,
		fetchParam FetchParam,
	) (*Stream, failure.ClassifiedError)
}
