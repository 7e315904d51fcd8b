package urlutil_test

import (
	"net/url"
	"testing"

	"github.com/rohmanhakim/lazyload/pkg/urlutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	base, err := url.Parse("https://example.com/blog/post/")
	require.NoError(t, err)

	tests := []struct {
		name     string
		raw      string
		base     *url.URL
		expected string
		wantErr  bool
	}{
		{name: "absolute stays", raw: "http://cdn.example.com/a.jpg", base: base, expected: "http://cdn.example.com/a.jpg"},
		{name: "root relative", raw: "/wp-content/a.jpg", base: base, expected: "https://example.com/wp-content/a.jpg"},
		{name: "path relative", raw: "img/a.jpg", base: base, expected: "https://example.com/blog/post/img/a.jpg"},
		{name: "protocol relative with base", raw: "//cdn.example.com/a.jpg", base: base, expected: "https://cdn.example.com/a.jpg"},
		{name: "protocol relative without base", raw: "//cdn.example.com/a.jpg", base: nil, expected: "https://cdn.example.com/a.jpg"},
		{name: "surrounding whitespace", raw: "  https://example.com/a.jpg ", base: nil, expected: "https://example.com/a.jpg"},
		{name: "relative without base", raw: "a.jpg", base: nil, wantErr: true},
		{name: "unparseable", raw: "http://[::1", base: base, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := urlutil.Resolve(tt.raw, tt.base)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got.String())
		})
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{raw: "https://example.com/a.jpg", expected: "jpg"},
		{raw: "https://example.com/a.JPEG", expected: "jpeg"},
		{raw: "https://example.com/a.jpg?ver=2#x", expected: "jpg"},
		{raw: "https://example.com/a.png", expected: "png"},
		{raw: "https://example.com/dir/", expected: ""},
		{raw: "https://example.com/noext", expected: ""},
		{raw: "data:image/jpeg;base64,AAAA", expected: ""},
		{raw: "/relative/b.webp", expected: "webp"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, urlutil.Extension(tt.raw))
		})
	}
}
