package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rohmanhakim/lazyload/internal/metadata"
	"github.com/rohmanhakim/lazyload/pkg/failure"
	"github.com/rohmanhakim/lazyload/pkg/retry"
)

/*
Responsibilities

- Perform HTTP GET requests for images and embed metadata
- Apply headers, per-attempt timeouts and a body size cap
- Classify responses

Fetch Semantics

- Only 2xx responses yield bytes
- Redirect chains are bounded by the client
- Every completed Fetch is reported to the metadata sink

The fetcher never decodes content; it only returns bytes and metadata.
*/

const maxRedirects = 5

type HTTPFetcher struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
}

// NewHTTPFetcher builds a fetcher around client. A nil client gets a
// default one with a bounded redirect chain.
func NewHTTPFetcher(
	metadataSink metadata.MetadataSink,
	client *http.Client,
) *HTTPFetcher {
	if client == nil {
		client = &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}
	return &HTTPFetcher{
		metadataSink: metadataSink,
		httpClient:   client,
	}
}

func (h *HTTPFetcher) Fetch(
	ctx context.Context,
	fetchParam FetchParam,
	retryParam retry.RetryParam,
) (FetchResult, failure.ClassifiedError) {
	callerMethod := "HTTPFetcher.Fetch"
	startTime := time.Now()

	result, err := retry.Retry(ctx, retryParam, func() (FetchResult, failure.ClassifiedError) {
		return h.performFetch(ctx, fetchParam)
	})

	duration := time.Since(startTime)

	var statusCode int
	var size int
	if err == nil {
		statusCode = result.Code()
		size = len(result.Body())
	}

	h.metadataSink.RecordFetch(
		fetchParam.fetchUrl.String(),
		statusCode,
		duration,
		size,
	)

	if err != nil {
		h.recordError(callerMethod, fetchParam.fetchUrl, err)
		return FetchResult{}, err
	}

	return result, nil
}

func (h *HTTPFetcher) Open(
	ctx context.Context,
	fetchParam FetchParam,
) (*Stream, failure.ClassifiedError) {
	attemptCtx, cancel := withTimeout(ctx, fetchParam.timeout)

	resp, err := h.do(attemptCtx, fetchParam)
	if err != nil {
		cancel()
		h.recordError("HTTPFetcher.Open", fetchParam.fetchUrl, err)
		return nil, err
	}

	return &Stream{
		Reader: &limitedReader{r: resp.Body, limit: fetchParam.maxBytes},
		closeFn: func() error {
			defer cancel()
			return resp.Body.Close()
		},
	}, nil
}

func (h *HTTPFetcher) recordError(callerMethod string, fetchUrl url.URL, err failure.ClassifiedError) {
	var fetchError *FetchError
	if errors.As(err, &fetchError) {
		h.metadataSink.RecordError(
			time.Now(),
			"fetcher",
			callerMethod,
			mapFetchErrorToMetadataCause(fetchError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
			},
		)
		return
	}

	var retryError *retry.RetryError
	if errors.As(err, &retryError) {
		h.metadataSink.RecordError(
			time.Now(),
			"fetcher",
			callerMethod,
			metadata.CauseNetworkFailure,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrMessage, retryError.Message),
				metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
			},
		)
	}
}

func (h *HTTPFetcher) performFetch(ctx context.Context, fetchParam FetchParam) (FetchResult, failure.ClassifiedError) {
	attemptCtx, cancel := withTimeout(ctx, fetchParam.timeout)
	defer cancel()

	resp, ferr := h.do(attemptCtx, fetchParam)
	if ferr != nil {
		return FetchResult{}, ferr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(&limitedReader{r: resp.Body, limit: fetchParam.maxBytes})
	if err != nil {
		var tooLarge *FetchError
		if errors.As(err, &tooLarge) {
			return FetchResult{}, tooLarge
		}
		return FetchResult{}, classifyTransportError(err, ErrCauseReadResponseBodyError)
	}

	return FetchResult{
		url:  fetchParam.fetchUrl,
		body: body,
		meta: ResponseMeta{
			statusCode:          resp.StatusCode,
			transferredSizeByte: uint64(len(body)),
			contentType:         resp.Header.Get("Content-Type"),
		},
	}, nil
}

// do sends the request and classifies the status. On success the caller
// owns resp.Body.
func (h *HTTPFetcher) do(ctx context.Context, fetchParam FetchParam) (*http.Response, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchParam.fetchUrl.String(), nil)
	if err != nil {
		return nil, &FetchError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseInvalidURL,
		}
	}

	for key, value := range requestHeaders(fetchParam.userAgent) {
		req.Header.Set(key, value)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err, ErrCauseNetworkFailure)
	}

	if ferr := classifyStatus(resp.StatusCode); ferr != nil {
		resp.Body.Close()
		return nil, ferr
	}
	return resp, nil
}

func classifyStatus(code int) *FetchError {
	switch {
	case code >= 500:
		// Server errors (5xx) are retryable
		return &FetchError{
			Message:   fmt.Sprintf("server error: %d", code),
			Retryable: true,
			Cause:     ErrCauseRequest5xx,
		}
	case code == http.StatusTooManyRequests:
		return &FetchError{
			Message:   "rate limited (429)",
			Retryable: true,
			Cause:     ErrCauseRequestTooMany,
		}
	case code >= 400:
		return &FetchError{
			Message:   fmt.Sprintf("client error: %d", code),
			Retryable: false,
			Cause:     ErrCauseRequest4xx,
		}
	case code >= 300:
		// the client follows redirects; landing here means the chain was cut
		return &FetchError{
			Message:   fmt.Sprintf("redirect error: %d", code),
			Retryable: false,
			Cause:     ErrCauseRedirectLimitExceeded,
		}
	}
	return nil
}

func classifyTransportError(err error, fallback FetchErrorCause) *FetchError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &FetchError{
			Message:   fmt.Sprintf("request timed out: %v", err),
			Retryable: true,
			Cause:     ErrCauseTimeout,
		}
	}
	if errors.Is(err, context.Canceled) {
		return &FetchError{
			Message:   fmt.Sprintf("request cancelled: %v", err),
			Retryable: false,
			Cause:     ErrCauseNetworkFailure,
		}
	}
	return &FetchError{
		Message:   fmt.Sprintf("request failed: %v", err),
		Retryable: true,
		Cause:     fallback,
	}
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// limitedReader fails once more than limit bytes are read.
// A non-positive limit disables the cap.
type limitedReader struct {
	r     io.Reader
	limit int64
	read  int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.read += int64(n)
	if l.limit > 0 && l.read > l.limit {
		return 0, &FetchError{
			Message:   fmt.Sprintf("body exceeds %d bytes", l.limit),
			Retryable: false,
			Cause:     ErrCauseBodyTooLarge,
		}
	}
	return n, err
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "image/avif,image/webp,image/*,application/json;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
	}
}
