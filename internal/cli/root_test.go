package cmd_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	cmd "github.com/rohmanhakim/lazyload/internal/cli"
	"github.com/rohmanhakim/lazyload/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInitConfigNoFlags tests that InitConfigWithError returns the stock defaults when no flag is set
func TestInitConfigNoFlags(t *testing.T) {
	cmd.ResetFlags()

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	defaultCfg, err := config.WithDefault().Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}
	if cfg.Prefix() != defaultCfg.Prefix() {
		t.Errorf("Expected Prefix %s, got %s", defaultCfg.Prefix(), cfg.Prefix())
	}
	if cfg.NoscriptEnable() != defaultCfg.NoscriptEnable() {
		t.Errorf("Expected NoscriptEnable %t, got %t", defaultCfg.NoscriptEnable(), cfg.NoscriptEnable())
	}
	if cfg.CacheEnable() != defaultCfg.CacheEnable() {
		t.Errorf("Expected CacheEnable %t, got %t", defaultCfg.CacheEnable(), cfg.CacheEnable())
	}
	if cfg.PlaceholdersDisable() != defaultCfg.PlaceholdersDisable() {
		t.Errorf("Expected PlaceholdersDisable %t, got %t", defaultCfg.PlaceholdersDisable(), cfg.PlaceholdersDisable())
	}
	if cfg.FetchTimeout() != defaultCfg.FetchTimeout() {
		t.Errorf("Expected FetchTimeout %v, got %v", defaultCfg.FetchTimeout(), cfg.FetchTimeout())
	}
	if cfg.BaseURL() != nil {
		t.Errorf("Expected no BaseURL, got %v", cfg.BaseURL())
	}
}

// TestInitConfigWithFlags tests that every CLI override lands in the config
func TestInitConfigWithFlags(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetPrefixForTest("px")
	cmd.SetBaseURLForTest("https://example.com/blog/")
	cmd.SetTimeoutForTest(2 * time.Second)
	cmd.SetRandomSeedForTest(7)
	cmd.SetPlaceholdersDisableForTest(true)
	cmd.SetNoscriptDisableForTest(true)
	cmd.SetCacheDisableForTest(true)

	cfg, err := cmd.InitConfigWithError()
	require.NoError(t, err)

	assert.Equal(t, "px", cfg.Prefix())
	assert.Equal(t, "https://example.com/blog/", cfg.BaseURL().String())
	assert.Equal(t, 2*time.Second, cfg.FetchTimeout())
	assert.True(t, cfg.PlaceholdersDisable())
	assert.False(t, cfg.NoscriptEnable())
	assert.False(t, cfg.CacheEnable())
}

func TestInitConfigWithInvalidBaseURL(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetBaseURLForTest("/relative/only")

	_, err := cmd.InitConfigWithError()
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got: %v", err)
	}
}

// TestInitConfigFromFile tests that a config file wins over CLI flags
func TestInitConfigFromFile(t *testing.T) {
	cmd.ResetFlags()

	path := filepath.Join(t.TempDir(), "lazyload.json")
	content := `{"prefix": "filepx", "noscriptEnable": false, "fetchTimeout": "750ms"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cmd.SetConfigFileForTest(path)
	cmd.SetPrefixForTest("ignored")

	cfg, err := cmd.InitConfigWithError()
	require.NoError(t, err)
	assert.Equal(t, "filepx", cfg.Prefix())
	assert.False(t, cfg.NoscriptEnable())
	assert.Equal(t, 750*time.Millisecond, cfg.FetchTimeout())
}

func TestInitConfigMissingFile(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetConfigFileForTest(filepath.Join(t.TempDir(), "absent.json"))

	_, err := cmd.InitConfigWithError()
	if !errors.Is(err, config.ErrFileDoesNotExist) {
		t.Errorf("Expected ErrFileDoesNotExist, got: %v", err)
	}
}

// TestInitConfigEnvOverlay tests that LAZYLOAD_* variables override flags
func TestInitConfigEnvOverlay(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetPrefixForTest("flagpx")
	t.Setenv("LAZYLOAD_PREFIX", "envpx")
	t.Setenv("LAZYLOAD_CACHE_ENABLE", "false")

	cfg, err := cmd.InitConfigWithError()
	require.NoError(t, err)
	assert.Equal(t, "envpx", cfg.Prefix())
	assert.False(t, cfg.CacheEnable())
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := cmd.ExecuteWithIO(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestProcessCommand_Stdin(t *testing.T) {
	cmd.ResetFlags()

	out, _, err := execute(t, `<p><img src="https://example.com/a.jpg" alt="a"></p>`,
		"process", "--no-placeholders")
	require.NoError(t, err)

	expected := `<p><img alt="a" data-sarvarov-src="https://example.com/a.jpg" class="sarvarov-lazyitem sarvarov-not-lazyloaded" />` +
		`<noscript><img src="https://example.com/a.jpg" alt="a" loading="lazy" /></noscript></p>`
	assert.Equal(t, expected, out)
}

func TestProcessCommand_FileInAndOut(t *testing.T) {
	cmd.ResetFlags()
	dir := t.TempDir()
	in := filepath.Join(dir, "post.html")
	outPath := filepath.Join(dir, "out", "post.html")
	require.NoError(t, os.WriteFile(in, []byte(`<iframe src="https://maps.example.com/e"></iframe>`), 0o644))

	stdout, _, err := execute(t, "", "process", in, "-o", outPath, "--no-noscript", "--prefix", "x")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	written, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t,
		`<div class="x-lazy-iframe x-not-lazyloaded" style="position: relative;">`+
			`<iframe data-x-src="https://maps.example.com/e" class="x-lazyitem x-not-lazyloaded"></iframe></div>`,
		string(written),
	)
}

func TestProcessCommand_MissingFile(t *testing.T) {
	cmd.ResetFlags()
	_, _, err := execute(t, "", "process", filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)
}

// pngServer serves one 400x200 PNG and counts requests.
func pngServer(t *testing.T) (*httptest.Server, *int64) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 400, 200))))

	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		if r.URL.Path != "/a.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestProcessCommand_PersistentStores(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name string
		args func(dir string) []string
	}{
		{name: "file", args: func(dir string) []string { return []string{"--store", "file", "--dsn", filepath.Join(dir, "fragments")} }},
		{name: "sqlite", args: func(dir string) []string { return []string{"--store", "sqlite", "--dsn", filepath.Join(dir, "cache.db")} }},
		{name: "redis", args: func(dir string) []string { return []string{"--store", "redis", "--dsn", "redis://" + mr.Addr()} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, hits := pngServer(t)
			storeArgs := tt.args(t.TempDir())
			content := `<img src="/a.png">`

			run := func(args ...string) string {
				cmd.ResetFlags()
				out, _, err := execute(t, content, append(append(args, storeArgs...), "--base-url", srv.URL)...)
				require.NoError(t, err)
				return out
			}

			first := run("process", "--owner", "post-"+tt.name)
			assert.Contains(t, first, `style="padding-bottom: 50%;"`)
			require.Equal(t, int64(1), atomic.LoadInt64(hits))

			assert.Equal(t, first, run("process", "--owner", "post-"+tt.name))
			assert.Equal(t, int64(1), atomic.LoadInt64(hits), "second run is served from the store")

			run("invalidate", "--owner", "post-"+tt.name)
			assert.Equal(t, first, run("process", "--owner", "post-"+tt.name))
			assert.Equal(t, int64(2), atomic.LoadInt64(hits))

			run("purge")
			run("process", "--owner", "post-"+tt.name)
			assert.Equal(t, int64(3), atomic.LoadInt64(hits))
		})
	}
}

func TestProcessCommand_PreviewWritesNothing(t *testing.T) {
	srv, hits := pngServer(t)
	dir := filepath.Join(t.TempDir(), "fragments")

	for i := 0; i < 2; i++ {
		cmd.ResetFlags()
		_, _, err := execute(t, `<img src="/a.png">`,
			"process", "--owner", "post-1", "--preview", "--store", "file", "--dsn", dir, "--base-url", srv.URL)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(2), atomic.LoadInt64(hits))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProcessCommand_Attachments(t *testing.T) {
	cmd.ResetFlags()
	srv, _ := pngServer(t)

	manifest := filepath.Join(t.TempDir(), "attachments.json")
	require.NoError(t, os.WriteFile(manifest, []byte(`{"featured": {}, "lqip": {"9": {"url": "/lqip.jpg"}}}`), 0o644))

	out, _, err := execute(t, `<img src="/a.png" class="wp-image-9">`,
		"process", "--attachments", manifest, "--base-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, `<div class="sarvarov-lazylqip"><img src="/lqip.jpg" /></div>`)
}

func TestProcessCommand_Metrics(t *testing.T) {
	cmd.ResetFlags()

	_, stderr, err := execute(t, `<img src="https://example.com/a.jpg"><img alt="none">`,
		"process", "--no-placeholders", "--metrics")
	require.NoError(t, err)
	assert.Contains(t, stderr, "lazyload_transforms_total{outcome=transformed,tag=img} 1")
	assert.Contains(t, stderr, "lazyload_transforms_total{outcome=skipped,tag=img} 1")
}

func TestProcessCommand_StoreErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown backend", args: []string{"process", "--store", "etcd"}},
		{name: "file without dsn", args: []string{"process", "--store", "file"}},
		{name: "sqlite without dsn", args: []string{"process", "--store", "sqlite"}},
		{name: "redis without dsn", args: []string{"process", "--store", "redis"}},
		{name: "redis bad url", args: []string{"process", "--store", "redis", "--dsn", "http://nope"}},
		{name: "bad log level", args: []string{"process", "--log-level", "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd.ResetFlags()
			_, _, err := execute(t, "<p></p>", tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestInvalidateCommand_RequiresOwner(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetInvalidateOwnerForTest("")
	_, _, err := execute(t, "", "invalidate")
	assert.ErrorContains(t, err, "--owner")
}

func TestSnippetsCommand(t *testing.T) {
	cmd.ResetFlags()

	out, _, err := execute(t, "", "snippets", "--prefix", "px")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<style>.px-lazy-image,.px-lazy-iframe{"))
	assert.NotContains(t, out, "<script>")

	cmd.ResetFlags()
	t.Setenv("LAZYLOAD_PRELOAD_ENABLE", "true")
	out, _, err = execute(t, "", "snippets")
	require.NoError(t, err)
	assert.Contains(t, out, "<script>window.lazySizesConfig = window.lazySizesConfig || {}; \nwindow.lazySizesConfig.preloadAfterLoad = true;</script>\n")

	cmd.ResetFlags()
	out, _, err = execute(t, "", "snippets", "--no-placeholders")
	require.NoError(t, err)
	assert.NotContains(t, out, "<style>")
}

func TestVersionCommand(t *testing.T) {
	cmd.ResetFlags()
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "lazyload dev+none (engine 1.1.0, built unknown)\n", out)
}
