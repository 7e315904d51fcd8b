package lazyload

import (
	"context"

	"github.com/rohmanhakim/lazyload/internal/attachment"
	"github.com/rohmanhakim/lazyload/internal/build"
	"github.com/rohmanhakim/lazyload/internal/cache"
	"github.com/rohmanhakim/lazyload/internal/cache/store"
	"github.com/rohmanhakim/lazyload/internal/color"
	"github.com/rohmanhakim/lazyload/internal/config"
	"github.com/rohmanhakim/lazyload/internal/fetcher"
	"github.com/rohmanhakim/lazyload/internal/markup"
	"github.com/rohmanhakim/lazyload/internal/metadata"
	"github.com/rohmanhakim/lazyload/internal/probe"
	"github.com/rohmanhakim/lazyload/internal/snippet"
	"github.com/rohmanhakim/lazyload/internal/video"
	"github.com/rohmanhakim/lazyload/pkg/hashutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html/atom"
)

/*
Engine rewrites <img> and <iframe> tags for lazy loading.

Pipeline per Process call
 1. Load the owner's fragment table (only when caching applies)
 2. Rewrite every <img>, then every <iframe>
 3. Flush the table once

Per tag
 Matched -> CacheCheck -> Hit: cached html | Tombstone: original text
                       -> Miss: AttributeExtract -> SourceValidate
                              -> Invalid: tombstone, original text
                              -> Valid: placeholders -> rewrite -> serialize -> record

No failure escapes Process. A tag that cannot be rewritten is returned
exactly as it was found.

The engine holds only collaborators set up before first use; every piece of
per-call state lives in a run. Concurrent Process calls are safe.
*/
type Engine struct {
	metadataSink metadata.MetadataSink
	cache        *cache.FragmentCache
	snippets     *snippet.Snippets
	fetcher      fetcher.Fetcher
	prober       *probe.Prober
	sampler      *color.Sampler
	videos       *video.Resolver
	attachments  attachment.Resolver
	extension    Extension
	env          Environment
	tracer       trace.Tracer
}

// Deps are the collaborators NewEngineWithDeps wires together. Nil fields
// get defaults built from Store, Fetcher and MetadataSink.
type Deps struct {
	MetadataSink metadata.MetadataSink
	Store        store.Store
	Fetcher      fetcher.Fetcher
	Snippets     *snippet.Snippets
	Prober       *probe.Prober
	Sampler      *color.Sampler
	Videos       *video.Resolver
	Attachments  attachment.Resolver
	Extension    Extension
	Tracer       trace.Tracer
}

// NewEngine wires the default collaborators around s and f.
func NewEngine(metadataSink metadata.MetadataSink, s store.Store, f fetcher.Fetcher) *Engine {
	return NewEngineWithDeps(Deps{
		MetadataSink: metadataSink,
		Store:        s,
		Fetcher:      f,
	})
}

func NewEngineWithDeps(deps Deps) *Engine {
	sink := deps.MetadataSink
	if sink == nil {
		sink = &metadata.NoopSink{}
	}
	s := deps.Store
	if s == nil {
		s = store.NewMemoryStore()
	}
	e := &Engine{
		metadataSink: sink,
		cache:        cache.NewFragmentCache(s, sink),
		snippets:     deps.Snippets,
		fetcher:      deps.Fetcher,
		prober:       deps.Prober,
		sampler:      deps.Sampler,
		videos:       deps.Videos,
		attachments:  deps.Attachments,
		extension:    deps.Extension,
		tracer:       deps.Tracer,
	}
	if e.snippets == nil {
		e.snippets = snippet.NewSnippets(snippet.NewLRUStore(0))
	}
	if e.prober == nil {
		e.prober = probe.NewProber(sink, deps.Fetcher)
	}
	if e.sampler == nil {
		e.sampler = color.NewSampler(sink, color.StdCodec{}, deps.Fetcher)
	}
	if e.videos == nil {
		e.videos = video.NewResolver(sink, deps.Fetcher)
	}
	if e.attachments == nil {
		e.attachments = attachment.None{}
	}
	if e.extension == nil {
		e.extension = NopExtension{}
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer("github.com/rohmanhakim/lazyload")
	}
	return e
}

// WithEnvironment sets the environment Process uses. Call before first use.
func (e *Engine) WithEnvironment(env Environment) *Engine {
	e.env = env
	return e
}

// run is the state of one Process call.
type run struct {
	cfg       config.Config
	cfgFP     string
	names     names
	ownerID   string
	env       Environment
	policy    fetcher.Policy
	caching   bool
	table     *cache.Table
	images    int
	iframes   int
	rewritten int
}

// Process rewrites content under cfg for ownerID. An empty ownerID
// disables caching for the call.
func (e *Engine) Process(ctx context.Context, content string, cfg config.Config, ownerID string) string {
	return e.ProcessWithEnvironment(ctx, content, cfg, ownerID, e.env)
}

func (e *Engine) ProcessWithEnvironment(
	ctx context.Context,
	content string,
	cfg config.Config,
	ownerID string,
	env Environment,
) string {
	if content == "" || (!cfg.EnableOnImages() && !cfg.EnableOnIframes()) {
		return content
	}

	ctx, span := e.tracer.Start(ctx, "lazyload.Process")
	defer span.End()

	r := &run{
		cfg:     cfg,
		cfgFP:   cfg.Fingerprint(),
		names:   names{prefix: cfg.Prefix()},
		ownerID: ownerID,
		env:     env,
		policy:  fetcher.PolicyFromConfig(cfg),
		caching: cfg.CacheEnable() && ownerID != "" && !env.Preview,
	}
	if r.caching {
		r.table = e.cache.Load(ctx, ownerID)
	} else {
		r.table = cache.NewTable("")
	}

	opaque := r.names.opaque()
	if cfg.EnableOnImages() {
		content = markup.NewScanner(atom.Img, opaque).Rewrite(content, func(tag markup.Tag) string {
			r.images++
			return e.transformImage(ctx, r, tag)
		})
	}
	if cfg.EnableOnIframes() {
		content = markup.NewScanner(atom.Iframe, opaque).Rewrite(content, func(tag markup.Tag) string {
			r.iframes++
			return e.transformIframe(ctx, r, tag)
		})
	}

	if r.caching {
		e.cache.Flush(ctx, r.table)
	}

	span.SetAttributes(
		attribute.String("lazyload.owner", ownerID),
		attribute.Bool("lazyload.cache", r.caching),
		attribute.Int("lazyload.images", r.images),
		attribute.Int("lazyload.iframes", r.iframes),
		attribute.Int("lazyload.rewritten", r.rewritten),
	)
	return content
}

// InvalidateOwner drops the cached fragments of ownerID. Hosts call it
// whenever the owner's content changes.
func (e *Engine) InvalidateOwner(ctx context.Context, ownerID string) {
	e.cache.Invalidate(ctx, ownerID)
}

// Deactivate clears every derived artifact: all fragment tables and both
// global snippets.
func (e *Engine) Deactivate(ctx context.Context) {
	e.cache.InvalidateAll(ctx)
	e.snippets.Invalidate()
}

func (e *Engine) Stylesheet(cfg config.Config) string {
	return e.snippets.Stylesheet(cfg)
}

func (e *Engine) Script(cfg config.Config) string {
	return e.snippets.Script(cfg)
}

// lookup consults the table for raw. done is true when the tag needs no
// further work and out holds its replacement.
func (e *Engine) lookup(r *run, kind Kind, raw string) (fingerprint string, out string, done bool) {
	fingerprint = hashutil.FingerprintString(raw)
	if !r.caching {
		return fingerprint, "", false
	}
	res := e.cache.Lookup(r.table, fingerprint, r.cfgFP, build.EngineVersion)
	switch res.Kind {
	case cache.Hit:
		e.metadataSink.RecordTransform(string(kind), metadata.OutcomeCached)
		return fingerprint, res.HTML, true
	case cache.Tombstone:
		e.metadataSink.RecordTransform(string(kind), metadata.OutcomeSkipped)
		return fingerprint, raw, true
	}
	return fingerprint, "", false
}

// reject tombstones the tag and hands back its original text.
func (e *Engine) reject(r *run, kind Kind, fingerprint, raw string, outcome metadata.TransformOutcome) string {
	if r.caching {
		e.cache.RecordTombstone(r.table, fingerprint, r.cfgFP, build.EngineVersion)
	}
	e.metadataSink.RecordTransform(string(kind), outcome)
	return raw
}

func (e *Engine) accept(r *run, kind Kind, fingerprint, html string) string {
	if r.caching {
		e.cache.Record(r.table, fingerprint, html, r.cfgFP, build.EngineVersion)
	}
	r.rewritten++
	e.metadataSink.RecordTransform(string(kind), metadata.OutcomeTransformed)
	return html
}

// deferSources moves each eager source attribute under its deferred name,
// appending the deferred copies after the remaining attributes, and
// prefixes the lazy marker classes.
func deferSources(n names, attrs markup.Attributes, sources ...string) markup.Attributes {
	out := attrs.Clone()
	for _, name := range sources {
		if v, ok := attrs.Get(name); ok {
			out.Set(n.deferred(name), v)
		}
	}
	out.Remove(sources...)

	if class := attrs.Value("class"); class != "" {
		out.Set("class", n.itemClasses()+" "+class)
	} else {
		out.Set("class", n.itemClasses())
	}
	return out
}

func wrap(n names, kind Kind, style Style, inner string) string {
	container := markup.NewAttributes(markup.Attribute{Name: "class", Value: n.containerClasses(kind)})
	if style.Len() > 0 {
		container.Set("style", style.String())
	}
	return "<div " + container.String() + ">" + inner + "</div>"
}
