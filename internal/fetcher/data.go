package fetcher

import (
	"io"
	"net/url"
	"time"

	"github.com/rohmanhakim/lazyload/internal/config"
	"github.com/rohmanhakim/lazyload/pkg/retry"
	"github.com/rohmanhakim/lazyload/pkg/timeutil"
)

// HTTP boundary

type FetchParam struct {
	fetchUrl  url.URL
	userAgent string
	// per-attempt deadline
	timeout time.Duration
	// response bodies larger than this are rejected
	maxBytes int64
}

func NewFetchParam(fetchUrl url.URL, userAgent string, timeout time.Duration, maxBytes int64) FetchParam {
	return FetchParam{
		fetchUrl:  fetchUrl,
		userAgent: userAgent,
		timeout:   timeout,
		maxBytes:  maxBytes,
	}
}

func (p FetchParam) URL() url.URL {
	return p.fetchUrl
}

// Policy carries the limits every outbound request of one Process call
// shares. Collaborators stamp a URL onto it with Param.
type Policy struct {
	UserAgent string
	Timeout   time.Duration
	MaxBytes  int64
	Retry     retry.RetryParam
}

func PolicyFromConfig(cfg config.Config) Policy {
	return Policy{
		UserAgent: cfg.UserAgent(),
		Timeout:   cfg.FetchTimeout(),
		MaxBytes:  cfg.MaxImageBytes(),
		Retry: retry.NewRetryParam(
			cfg.BackoffInitialDuration(),
			cfg.Jitter(),
			cfg.RandomSeed(),
			cfg.FetchMaxAttempts(),
			timeutil.NewBackoffParam(
				cfg.BackoffInitialDuration(),
				cfg.BackoffMultiplier(),
				cfg.BackoffMaxDuration(),
			),
		),
	}
}

func (p Policy) Param(u url.URL) FetchParam {
	return NewFetchParam(u, p.UserAgent, p.Timeout, p.MaxBytes)
}

type FetchResult struct {
	url  url.URL
	body []byte
	meta ResponseMeta
}

func (f *FetchResult) URL() url.URL {
	return f.url
}

func (f *FetchResult) Body() []byte {
	return f.body
}

func (f *FetchResult) Code() int {
	return f.meta.statusCode
}

func (f *FetchResult) SizeByte() uint64 {
	return f.meta.transferredSizeByte
}

func (f *FetchResult) ContentType() string {
	return f.meta.contentType
}

type ResponseMeta struct {
	statusCode          int
	transferredSizeByte uint64
	contentType         string
}

// NewFetchResultForTest creates a FetchResult for testing purposes.
// This allows test packages to construct FetchResult values without
// accessing unexported fields directly.
func NewFetchResultForTest(
	url url.URL,
	body []byte,
	statusCode int,
	contentType string,
) FetchResult {
	return FetchResult{
		url:  url,
		body: body,
		meta: ResponseMeta{
			statusCode:          statusCode,
			transferredSizeByte: uint64(len(body)),
			contentType:         contentType,
		},
	}
}

// Stream is an open response body. Reads past the configured byte limit
// fail. Close releases the connection and the request deadline.
type Stream struct {
	io.Reader
	closeFn func() error
}

func NewStreamForTest(r io.Reader) *Stream {
	return &Stream{Reader: r, closeFn: func() error { return nil }}
}

func (s *Stream) Close() error {
	return s.closeFn()
}
