package lazyload_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rohmanhakim/lazyload/internal/cache"
	"github.com/rohmanhakim/lazyload/internal/config"
	"github.com/rohmanhakim/lazyload/internal/lazyload"
	"github.com/rohmanhakim/lazyload/internal/markup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const mixedContent = `<h1>Post</h1>
<p><img src="/img/800x400.jpg" class="wp-image-5 alignnone" alt="hero"></p>
<p><img src="/img/1000x333.png" srcset="/img/1000x333.png 1x, /img/800x400.png 2x"></p>
<img alt="no source">
<img src="/missing.png">
<iframe src="https://player.vimeo.com/video/123456789" width="640" height="360"></iframe>
<iframe width="1" height="1"></iframe>
<noscript><img src="/img/800x400.png"></noscript>`

func TestProcess_Idempotent(t *testing.T) {
	f := newFixture(t, nil)

	for _, tc := range []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{"defaults", func(c *config.Config) {}},
		{"placeholders disabled", func(c *config.Config) { c.WithPlaceholdersDisable(true) }},
		{"noscript disabled", func(c *config.Config) { c.WithNoscriptEnable(false) }},
		{"cache disabled", func(c *config.Config) { c.WithCacheEnable(false) }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := baseConfig(t, f.srv)
			tc.mutate(c)
			cfg := build(t, c)

			once := f.process(t, mixedContent, cfg, "idem-"+tc.name)
			require.NotEqual(t, mixedContent, once)

			assert.Equal(t, once, f.process(t, once, cfg, "idem-"+tc.name))
			assert.Equal(t, once, f.process(t, once, cfg, ""))
		})
	}
}

func TestProcess_CacheHitSkipsWork(t *testing.T) {
	f := newFixture(t, nil)
	cfg := build(t, baseConfig(t, f.srv))
	ctx := context.Background()

	first := f.process(t, mixedContent, cfg, "post-9")
	requests := f.srv.total()
	require.Greater(t, requests, 0)

	raw, ok, err := f.store.Get(ctx, cache.Key("post-9"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(raw), `"configFingerprint":"`+cfg.Fingerprint()+`"`)
	assert.Contains(t, string(raw), `"tombstone":true`)

	second := f.process(t, mixedContent, cfg, "post-9")
	assert.Equal(t, first, second)
	assert.Equal(t, requests, f.srv.total(), "a warm cache makes no requests")
}

func TestProcess_ConfigChangeMisses(t *testing.T) {
	f := newFixture(t, nil)
	in := `<img src="/img/800x400.png">`

	cfg := build(t, baseConfig(t, f.srv))
	f.process(t, in, cfg, "post-1")
	require.Equal(t, 1, f.srv.count("/img/800x400.png"))

	changed := build(t, baseConfig(t, f.srv).WithNoscriptEnable(false))
	require.NotEqual(t, cfg.Fingerprint(), changed.Fingerprint())

	out := f.process(t, in, changed, "post-1")
	assert.NotContains(t, out, "<noscript>")
	assert.Equal(t, 2, f.srv.count("/img/800x400.png"))
}

func TestProcess_TombstoneStable(t *testing.T) {
	f := newFixture(t, nil)
	cfg := build(t, baseConfig(t, f.srv))
	in := `<img src="/missing.png"><img alt="x">`

	assert.Equal(t, in, f.process(t, in, cfg, "post-2"))
	require.Equal(t, 1, f.srv.count("/missing.png"))

	for i := 0; i < 3; i++ {
		assert.Equal(t, in, f.process(t, in, cfg, "post-2"))
	}
	assert.Equal(t, 1, f.srv.count("/missing.png"), "tombstones are never re-probed")
}

func TestProcess_TombstoneFromOtherConfigIsRetried(t *testing.T) {
	f := newFixture(t, nil)
	in := `<img src="/missing.png">`

	cfg := build(t, baseConfig(t, f.srv))
	assert.Equal(t, in, f.process(t, in, cfg, "post-x"))

	changed := build(t, baseConfig(t, f.srv).WithPlaceholdersDisable(true))
	require.NotEqual(t, cfg.Fingerprint(), changed.Fingerprint())

	uncached := f.process(t, in, changed, "")
	out := f.process(t, in, changed, "post-x")
	assert.Equal(t, uncached, out)
	assert.Contains(t, out, `data-sarvarov-src="/missing.png"`)
	assert.Equal(t, 1, f.srv.count("/missing.png"))
}

func TestProcess_NoCachingWithoutOwnerOrInPreview(t *testing.T) {
	f := newFixture(t, nil)
	cfg := build(t, baseConfig(t, f.srv))
	ctx := context.Background()

	f.process(t, `<img src="/img/800x400.png">`, cfg, "")
	assert.Equal(t, 0, f.store.Size())

	f.engine.ProcessWithEnvironment(ctx, `<img src="/img/800x400.png">`, cfg, "post-3", lazyload.Environment{Preview: true})
	assert.Equal(t, 0, f.store.Size())

	f.process(t, `<img src="/img/800x400.png">`, cfg, "post-3")
	assert.Equal(t, 1, f.store.Size())
}

func TestInvalidateOwnerAndDeactivate(t *testing.T) {
	f := newFixture(t, nil)
	cfg := build(t, baseConfig(t, f.srv))
	ctx := context.Background()

	f.process(t, `<img src="/img/800x400.png">`, cfg, "a")
	f.process(t, `<img src="/img/800x400.png">`, cfg, "b")
	require.Equal(t, 2, f.store.Size())

	f.engine.InvalidateOwner(ctx, "a")
	assert.Equal(t, 1, f.store.Size())

	f.process(t, `<img src="/img/800x400.png">`, cfg, "a")
	before := f.srv.count("/img/800x400.png")
	assert.Equal(t, 3, before, "owner a was recomputed after invalidation")

	require.NotEmpty(t, f.engine.Stylesheet(cfg))
	f.engine.Deactivate(ctx)
	assert.Equal(t, 0, f.store.Size())
}

func TestSnippetsThroughEngine(t *testing.T) {
	f := newFixture(t, nil)
	cfg := build(t, baseConfig(t, f.srv).WithPreloadEnable(true))

	assert.True(t, strings.HasPrefix(f.engine.Stylesheet(cfg), ".sarvarov-lazy-image,.sarvarov-lazy-iframe{"))
	assert.Equal(t,
		"window.lazySizesConfig = window.lazySizesConfig || {}; \nwindow.lazySizesConfig.preloadAfterLoad = true;",
		f.engine.Script(cfg),
	)
}

// recordingExtension exercises every seam.
type recordingExtension struct {
	lazyload.NopExtension
}

func (recordingExtension) AllowMatch(kind lazyload.Kind, raw string) bool {
	return !strings.Contains(raw, "skip-lazy")
}

func (recordingExtension) FilterAttributes(kind lazyload.Kind, attrs markup.Attributes) markup.Attributes {
	attrs.Set("data-kind", string(kind))
	return attrs
}

func (recordingExtension) FilterStyle(kind lazyload.Kind, style lazyload.Style) lazyload.Style {
	style.Set("min-height", "1px")
	return style
}

func (recordingExtension) FilterOutput(kind lazyload.Kind, html string) string {
	return "<!-- lazy -->" + html
}

func TestExtensionSeams(t *testing.T) {
	f := newFixture(t, func(d *lazyload.Deps) {
		d.Extension = recordingExtension{}
	})
	cfg := build(t, baseConfig(t, f.srv))

	skipped := `<img src="/img/800x400.png" class="skip-lazy">`
	assert.Equal(t, skipped, f.process(t, skipped, cfg, ""))
	assert.Equal(t, 0, f.srv.total())

	out := f.process(t, `<img src="/img/800x400.png">`, cfg, "")
	assert.True(t, strings.HasPrefix(out, "<!-- lazy --><div "))
	assert.Contains(t, out, `style="padding-bottom: 50%; min-height: 1px;"`)
	assert.Contains(t, out, `data-kind="img"`)
}

func TestProcess_EmitsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	f := newFixture(t, func(d *lazyload.Deps) {
		d.Tracer = provider.Tracer("test")
	})
	cfg := build(t, baseConfig(t, f.srv))

	f.process(t, `<img src="/img/800x400.png"><img alt="x"><iframe src="https://maps.example.com/e"></iframe>`, cfg, "post-7")

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "lazyload.Process", spans[0].Name())

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "post-7", attrs["lazyload.owner"].AsString())
	assert.True(t, attrs["lazyload.cache"].AsBool())
	assert.Equal(t, int64(2), attrs["lazyload.images"].AsInt64())
	assert.Equal(t, int64(1), attrs["lazyload.iframes"].AsInt64())
	assert.Equal(t, int64(2), attrs["lazyload.rewritten"].AsInt64())
}

func TestProcess_ConcurrentOwners(t *testing.T) {
	f := newFixture(t, nil)
	cfg := build(t, baseConfig(t, f.srv))
	want := f.process(t, `<img src="/img/800x400.png">`, cfg, "")

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.engine.Process(context.Background(), `<img src="/img/800x400.png">`, cfg, fmt.Sprintf("owner-%d", i%3))
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestProcess_EmptyContent(t *testing.T) {
	f := newFixture(t, nil)
	cfg := build(t, baseConfig(t, f.srv))
	assert.Equal(t, "", f.process(t, "", cfg, "x"))
	assert.Equal(t, 0, f.store.Size())
}
