package lazyload

import (
	"context"
	"strconv"
	"strings"

	"github.com/rohmanhakim/lazyload/internal/markup"
	"github.com/rohmanhakim/lazyload/internal/metadata"
)

func (e *Engine) transformIframe(ctx context.Context, r *run, tag markup.Tag) string {
	if !e.extension.AllowMatch(KindIframe, tag.Raw) {
		return tag.Raw
	}

	fingerprint, cached, done := e.lookup(r, KindIframe, tag.Raw)
	if done {
		return cached
	}

	attrs, ok := tag.Attributes()
	if !ok {
		e.metadataSink.RecordTransform(string(KindIframe), metadata.OutcomeDegraded)
		return tag.Raw
	}
	attrs = e.extension.FilterAttributes(KindIframe, attrs.Clone())

	src := strings.TrimSpace(attrs.Value("src"))
	if src == "" || attrs.Has(r.names.deferred("src")) {
		return e.reject(r, KindIframe, fingerprint, tag.Raw, metadata.OutcomeSkipped)
	}

	var style Style
	if !r.cfg.PlaceholdersDisable() {
		if r.cfg.IframeAverageColorBgEnable() {
			if hex, ok := e.videoColor(ctx, r, src); ok {
				style.Set("background-color", hex)
			}
		}
		if responsiveFix(r) {
			style.Set("position", "relative")
			if w := leadingInt(attrs.Value("width")); w > 0 {
				style.Set("width", strconv.Itoa(w)+"px")
			}
			if h := leadingInt(attrs.Value("height")); h > 0 {
				style.Set("height", strconv.Itoa(h)+"px")
			}
		}
		attrs.Remove("width", "height")
		style = e.extension.FilterStyle(KindIframe, style)
	}

	out := "<iframe " + deferSources(r.names, attrs, "src").String() + "></iframe>"
	if r.cfg.NoscriptEnable() {
		fallback := attrs.Clone()
		fallback.Set("loading", "lazy")
		out += "<noscript><iframe " + fallback.String() + "></iframe></noscript>"
	}
	if !r.cfg.PlaceholdersDisable() {
		out = wrap(r.names, KindIframe, style, out)
	}
	out = e.extension.FilterOutput(KindIframe, out)

	return e.accept(r, KindIframe, fingerprint, out)
}

// responsiveFix reports whether iframes need literal pixel sizing: only
// when neither the host stylesheet nor the theme sizes embeds and the
// feature is switched on.
func responsiveFix(r *run) bool {
	return !r.env.BlockLibraryStyled && !r.env.ResponsiveEmbeds && r.cfg.IframeResponsiveFix()
}

// videoColor samples the thumbnail of a recognized video embed. Other
// providers never get a background color.
func (e *Engine) videoColor(ctx context.Context, r *run, src string) (string, bool) {
	thumb, err := e.videos.Resolve(ctx, src, r.policy)
	if err != nil {
		return "", false
	}
	hex, err := e.sampler.SampleURL(ctx, thumb, r.cfg.BaseURL(), r.policy)
	if err != nil {
		return "", false
	}
	return hex, true
}
