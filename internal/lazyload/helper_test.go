package lazyload_test

import (
	"bytes"
	"context"
	"fmt"
	"image"
	stdcolor "image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/lazyload/internal/attachment"
	"github.com/rohmanhakim/lazyload/internal/cache/store"
	"github.com/rohmanhakim/lazyload/internal/config"
	"github.com/rohmanhakim/lazyload/internal/fetcher"
	"github.com/rohmanhakim/lazyload/internal/lazyload"
	"github.com/rohmanhakim/lazyload/internal/metadata"
	"github.com/rohmanhakim/lazyload/internal/video"
	"github.com/stretchr/testify/require"
)

// imageServer serves generated images and counts requests per path.
type imageServer struct {
	*httptest.Server
	mu   sync.Mutex
	hits map[string]int
}

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	c := stdcolor.RGBA{R: 200, G: 40, B: 40, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func newImageServer(t *testing.T) *imageServer {
	t.Helper()

	var jpg, png800, png1000, lqip bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, solid(800, 400), nil))
	require.NoError(t, png.Encode(&png800, solid(800, 400)))
	require.NoError(t, png.Encode(&png1000, solid(1000, 333)))
	require.NoError(t, jpeg.Encode(&lqip, solid(33, 16), nil))

	s := &imageServer{hits: map[string]int{}}
	mux := http.NewServeMux()
	serve := func(path, contentType string, body []byte) {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", contentType)
			_, _ = w.Write(body)
		})
	}
	serve("/img/800x400.jpg", "image/jpeg", jpg.Bytes())
	serve("/img/800x400.png", "image/png", png800.Bytes())
	serve("/img/1000x333.png", "image/png", png1000.Bytes())
	serve("/lqip/a.jpg", "image/jpeg", lqip.Bytes())
	serve("/thumb/v.jpg", "image/jpeg", lqip.Bytes())
	mux.HandleFunc("/vimeo/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `[{"id":123456789,"thumbnail_small":"%s/thumb/v.jpg"}]`, s.URL)
	})
	mux.HandleFunc("/slow.jpg", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(3 * time.Second):
		}
	})

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *imageServer) count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *imageServer) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.hits {
		n += v
	}
	return n
}

// baseConfig points relative sources at srv and keeps timeouts short.
func baseConfig(t *testing.T, srv *imageServer) *config.Config {
	t.Helper()
	c := config.WithDefault().
		WithFetchTimeout(300 * time.Millisecond).
		WithRandomSeed(1)
	require.NoError(t, c.WithBaseURLString(srv.URL))
	return c
}

func build(t *testing.T, c *config.Config) config.Config {
	t.Helper()
	cfg, err := c.Build()
	require.NoError(t, err)
	return cfg
}

type fixture struct {
	srv    *imageServer
	store  *store.MemoryStore
	engine *lazyload.Engine
}

func newFixture(t *testing.T, mutate func(*lazyload.Deps)) fixture {
	t.Helper()
	srv := newImageServer(t)
	mem := store.NewMemoryStore()
	sink := &metadata.NoopSink{}
	f := fetcher.NewHTTPFetcher(sink, nil)

	deps := lazyload.Deps{
		MetadataSink: sink,
		Store:        mem,
		Fetcher:      f,
		Videos:       video.NewResolver(sink, f).WithVimeoAPI(srv.URL + "/vimeo/"),
		Attachments: attachment.NewStatic(
			map[string]int{"post-1": 5},
			map[int]attachment.Asset{5: {URL: "/lqip/a.jpg", Width: 33, Height: 16}},
		),
	}
	if mutate != nil {
		mutate(&deps)
	}
	return fixture{srv: srv, store: mem, engine: lazyload.NewEngineWithDeps(deps)}
}

func (f fixture) process(t *testing.T, content string, cfg config.Config, owner string) string {
	t.Helper()
	return f.engine.Process(context.Background(), content, cfg, owner)
}

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}
