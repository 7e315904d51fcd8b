package video

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rohmanhakim/lazyload/internal/fetcher"
	"github.com/rohmanhakim/lazyload/internal/metadata"
	"github.com/rohmanhakim/lazyload/pkg/failure"
	"github.com/tidwall/gjson"
)

var (
	youtubePattern = regexp.MustCompile(`^((?:https?:)?//)?((?:www|m)\.)?(youtube\.com|youtu\.be)(/(?:[\w\-]+\?v=|embed/|v/)?)([\w\-]+)(\S+)?$`)
	vimeoPattern   = regexp.MustCompile(`(https?://)?(www\.)?(player\.)?vimeo\.com/([a-z]*/)*([0-9]{6,11})[?]?.*`)
)

const (
	youtubeThumbnailFormat = "https://img.youtube.com/vi/%s/default.jpg"
	defaultVimeoAPI        = "https://vimeo.com/api/v2/video/"
)

// Provider names a recognized embed host.
type Provider string

const (
	ProviderYouTube Provider = "youtube"
	ProviderVimeo   Provider = "vimeo"
)

// Resolver maps an embed src to a small thumbnail usable for color
// sampling. YouTube thumbnails are derived from the id; Vimeo needs one
// metadata request.
type Resolver struct {
	metadataSink metadata.MetadataSink
	fetcher      fetcher.Fetcher
	vimeoAPI     string
}

func NewResolver(metadataSink metadata.MetadataSink, f fetcher.Fetcher) *Resolver {
	return &Resolver{
		metadataSink: metadataSink,
		fetcher:      f,
		vimeoAPI:     defaultVimeoAPI,
	}
}

// WithVimeoAPI points Vimeo lookups at base, which must end with '/'.
func (r *Resolver) WithVimeoAPI(base string) *Resolver {
	r.vimeoAPI = base
	return r
}

// Identify returns the provider and video id of src. YouTube is tried
// first; the first match wins.
func Identify(src string) (Provider, string, bool) {
	src = strings.TrimSpace(src)
	if m := youtubePattern.FindStringSubmatch(src); m != nil {
		return ProviderYouTube, m[5], true
	}
	if m := vimeoPattern.FindStringSubmatch(src); m != nil {
		return ProviderVimeo, m[5], true
	}
	return "", "", false
}

// Resolve returns the thumbnail URL for src. Any failure, including an
// unknown provider, is reported as a recoverable error.
func (r *Resolver) Resolve(ctx context.Context, src string, policy fetcher.Policy) (string, failure.ClassifiedError) {
	provider, id, ok := Identify(src)
	if !ok {
		return "", &ResolveError{Message: src, Cause: ErrCauseUnrecognized}
	}

	switch provider {
	case ProviderYouTube:
		return fmt.Sprintf(youtubeThumbnailFormat, id), nil
	default:
		thumb, err := r.vimeoThumbnail(ctx, id, policy)
		if err != nil {
			r.recordError(src, err)
			return "", err
		}
		return thumb, nil
	}
}

func (r *Resolver) vimeoThumbnail(ctx context.Context, id string, policy fetcher.Policy) (string, *ResolveError) {
	if r.fetcher == nil {
		return "", &ResolveError{Message: "vimeo lookup needs a fetcher", Cause: ErrCauseNoFetcher}
	}

	endpoint, err := url.Parse(r.vimeoAPI + id + ".json")
	if err != nil {
		return "", &ResolveError{Message: err.Error(), Cause: ErrCauseLookupFailed}
	}

	result, ferr := r.fetcher.Fetch(ctx, policy.Param(*endpoint), policy.Retry)
	if ferr != nil {
		return "", &ResolveError{Message: ferr.Error(), Cause: ErrCauseLookupFailed}
	}

	thumb := gjson.GetBytes(result.Body(), "0.thumbnail_small")
	if !thumb.Exists() || thumb.String() == "" {
		return "", &ResolveError{Message: "video " + id, Cause: ErrCauseMissingThumb}
	}
	return thumb.String(), nil
}

func (r *Resolver) recordError(src string, err *ResolveError) {
	r.metadataSink.RecordError(
		time.Now(),
		"video",
		"Resolver.Resolve",
		mapResolveErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, src),
		},
	)
}
