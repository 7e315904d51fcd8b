package lazyload

import (
	"context"
	"encoding/base64"
	"math"
	"strconv"
	"strings"

	"github.com/rohmanhakim/lazyload/internal/markup"
	"github.com/rohmanhakim/lazyload/internal/metadata"
	"github.com/rohmanhakim/lazyload/internal/probe"
	"github.com/rohmanhakim/lazyload/pkg/urlutil"
)

var imageSources = []string{"src", "srcset", "sizes"}

func (e *Engine) transformImage(ctx context.Context, r *run, tag markup.Tag) string {
	if !e.extension.AllowMatch(KindImage, tag.Raw) {
		return tag.Raw
	}

	fingerprint, cached, done := e.lookup(r, KindImage, tag.Raw)
	if done {
		return cached
	}

	attrs, ok := tag.Attributes()
	if !ok {
		e.metadataSink.RecordTransform(string(KindImage), metadata.OutcomeDegraded)
		return tag.Raw
	}
	attrs = e.extension.FilterAttributes(KindImage, attrs.Clone())

	src := strings.TrimSpace(attrs.Value("src"))
	if src == "" || attrs.Has(r.names.deferred("src")) {
		return e.reject(r, KindImage, fingerprint, tag.Raw, metadata.OutcomeSkipped)
	}

	var (
		style Style
		lqip  string
	)
	if !r.cfg.PlaceholdersDisable() {
		dims, err := e.prober.Probe(ctx, src, r.cfg.BaseURL(), r.policy)
		if err != nil || !dims.Valid() {
			return e.reject(r, KindImage, fingerprint, tag.Raw, metadata.OutcomeDegraded)
		}
		style = imageBox(attrs, dims)

		colorSource := src
		if lqipURL, ok := e.lqipAsset(r, attrs); ok {
			colorSource = lqipURL
			lqip = e.lqipBlock(ctx, r, lqipURL)
		}
		if r.cfg.ImageAverageColorBgEnable() {
			if hex, err := e.sampler.SampleURL(ctx, colorSource, r.cfg.BaseURL(), r.policy); err == nil {
				style.Set("background-color", hex)
			}
		}

		attrs.Remove("width", "height")
		style = e.extension.FilterStyle(KindImage, style)
	}

	out := lqip + "<img " + deferSources(r.names, attrs, imageSources...).String() + " />"
	if r.cfg.NoscriptEnable() {
		fallback := attrs.Clone()
		fallback.Set("loading", "lazy")
		out += "<noscript><img " + fallback.String() + " /></noscript>"
	}
	if !r.cfg.PlaceholdersDisable() {
		out = wrap(r.names, KindImage, style, out)
	}
	out = e.extension.FilterOutput(KindImage, out)

	return e.accept(r, KindImage, fingerprint, out)
}

// imageBox sizes the placeholder: literal pixels when the tag declares both
// width and height, otherwise an aspect-ratio padding box.
func imageBox(attrs markup.Attributes, dims probe.Dimensions) Style {
	var style Style
	width, hasWidth := attrs.Get("width")
	height, hasHeight := attrs.Get("height")
	if hasWidth && hasHeight {
		style.Set("width", strconv.Itoa(leadingInt(width))+"px")
		style.Set("height", strconv.Itoa(leadingInt(height))+"px")
		return style
	}
	style.Set("padding-bottom", AspectPadding(dims.Width, dims.Height))
	return style
}

// AspectPadding returns height/width as a percentage rounded to two
// decimals, without trailing zeros: 800x400 gives "50%", 1000x333 "33.3%".
func AspectPadding(width, height int) string {
	ratio := float64(height) / float64(width) * 100
	rounded := math.Round(ratio*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64) + "%"
}

// leadingInt reads the leading decimal digits of s, so "300px" is 300 and
// anything without leading digits is 0.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	n := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
		if n > math.MaxInt32 {
			return 0
		}
	}
	return n
}

func (e *Engine) lqipAsset(r *run, attrs markup.Attributes) (string, bool) {
	if !r.cfg.LQIPEnable() {
		return "", false
	}
	id, ok := e.attachments.ResolveAttachmentID(attrs.Value("class"), r.ownerID)
	if !ok {
		return "", false
	}
	asset, ok := e.attachments.ResolveLQIP(id)
	if !ok || asset.URL == "" {
		return "", false
	}
	return asset.URL, true
}

func (e *Engine) lqipBlock(ctx context.Context, r *run, lqipURL string) string {
	shown := lqipURL
	if r.cfg.LQIPBase64Enable() {
		if uri, ok := e.inlineImage(ctx, r, lqipURL); ok {
			shown = uri
		}
	}
	img := markup.NewAttributes(markup.Attribute{Name: "src", Value: shown})
	return `<div class="` + r.names.class("lazylqip") + `"><img ` + img.String() + ` /></div>`
}

// inlineImage fetches rawURL and encodes it as a data URI. The media type
// comes from the URL's extension; URLs without one are not inlined.
func (e *Engine) inlineImage(ctx context.Context, r *run, rawURL string) (string, bool) {
	ext := urlutil.Extension(rawURL)
	if ext == "" || e.fetcher == nil {
		return "", false
	}
	if ext == "jpg" {
		ext = "jpeg"
	}
	u, err := urlutil.Resolve(rawURL, r.cfg.BaseURL())
	if err != nil {
		return "", false
	}
	result, ferr := e.fetcher.Fetch(ctx, r.policy.Param(u), r.policy.Retry)
	if ferr != nil {
		return "", false
	}
	return "data:image/" + ext + ";base64," + base64.StdEncoding.EncodeToString(result.Body()), true
}
