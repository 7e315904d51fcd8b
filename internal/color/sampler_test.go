package color_test

import (
	"bytes"
	"context"
	"image"
	stdcolor "image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rohmanhakim/lazyload/internal/color"
	"github.com/rohmanhakim/lazyload/internal/fetcher"
	"github.com/rohmanhakim/lazyload/internal/metadata"
	"github.com/rohmanhakim/lazyload/pkg/retry"
	"github.com/rohmanhakim/lazyload/pkg/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c stdcolor.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testPolicy() fetcher.Policy {
	return fetcher.Policy{
		UserAgent: "lazyload-test",
		Timeout:   time.Second,
		MaxBytes:  1 << 20,
		Retry: retry.NewRetryParam(
			10*time.Millisecond, 0, 1, 1,
			timeutil.NewBackoffParam(10*time.Millisecond, 2, 20*time.Millisecond),
		),
	}
}

func TestSampler_Sample_SolidColor(t *testing.T) {
	sampler := color.NewSampler(&metadata.NoopSink{}, color.StdCodec{}, nil)

	hex, err := sampler.Sample(encodePNG(t, solid(8, 8, stdcolor.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xff})))
	require.Nil(t, err)
	assert.Equal(t, "#336699", hex)
}

func TestSampler_Sample_AveragesPixels(t *testing.T) {
	img := solid(2, 2, stdcolor.RGBA{A: 0xff})
	img.Set(0, 0, stdcolor.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	img.Set(1, 1, stdcolor.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})

	sampler := color.NewSampler(&metadata.NoopSink{}, color.StdCodec{}, nil)

	hex, err := sampler.Sample(encodePNG(t, img))
	require.Nil(t, err)
	require.Len(t, hex, 7)
	assert.Equal(t, "#", hex[:1])
	// a grey: all three channels equal and roughly half way
	assert.Equal(t, hex[1:3], hex[3:5])
	assert.Equal(t, hex[3:5], hex[5:7])
	assert.Contains(t, []string{"7F", "80"}, hex[1:3])
}

func TestSampler_Sample_Uppercase(t *testing.T) {
	sampler := color.NewSampler(&metadata.NoopSink{}, color.StdCodec{}, nil)

	hex, err := sampler.Sample(encodePNG(t, solid(1, 1, stdcolor.RGBA{R: 0xab, G: 0xcd, B: 0xef, A: 0xff})))
	require.Nil(t, err)
	assert.Equal(t, "#ABCDEF", hex)
}

func TestSampler_Sample_Errors(t *testing.T) {
	t.Run("codec unavailable", func(t *testing.T) {
		sampler := color.NewSampler(&metadata.NoopSink{}, color.NoCodec{}, nil)
		_, err := sampler.Sample([]byte("whatever"))
		var serr *color.SampleError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, color.SampleErrorCause(color.ErrCauseCodecUnavailable), serr.Cause)
	})

	t.Run("undecodable", func(t *testing.T) {
		sampler := color.NewSampler(&metadata.NoopSink{}, color.StdCodec{}, nil)
		_, err := sampler.Sample([]byte("not an image"))
		var serr *color.SampleError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, color.SampleErrorCause(color.ErrCauseDecodeFailed), serr.Cause)
	})

	t.Run("transparent", func(t *testing.T) {
		sampler := color.NewSampler(&metadata.NoopSink{}, color.StdCodec{}, nil)
		_, err := sampler.Sample(encodePNG(t, solid(2, 2, stdcolor.RGBA{})))
		var serr *color.SampleError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, color.SampleErrorCause(color.ErrCauseTransparent), serr.Cause)
	})
}

func TestIsSampleable(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.org/a.jpg", true},
		{"https://example.org/a.JPEG", true},
		{"https://example.org/a.jpg?w=300", true},
		{"/relative/a.jpeg#frag", true},
		{"https://example.org/a.png", false},
		{"https://example.org/a.webp", false},
		{"https://example.org/jpg", false},
		{"data:image/jpeg;base64,AAAA", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, color.IsSampleable(tt.url))
		})
	}
}

func TestSampler_SampleURL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solid(16, 16, stdcolor.RGBA{R: 200, G: 100, B: 50, A: 255}), &jpeg.Options{Quality: 100}))

	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(buf.Bytes())
	}))
	defer server.Close()

	sink := &metadata.NoopSink{}
	sampler := color.NewSampler(sink, color.StdCodec{}, fetcher.NewHTTPFetcher(sink, nil))

	hex, err := sampler.SampleURL(context.Background(), server.URL+"/photo.jpg", nil, testPolicy())
	require.Nil(t, err)
	require.Len(t, hex, 7)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	// png never reaches the network
	_, err = sampler.SampleURL(context.Background(), server.URL+"/photo.png", nil, testPolicy())
	var serr *color.SampleError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, color.SampleErrorCause(color.ErrCauseNotSampleable), serr.Cause)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestSampler_SampleURL_FetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	sink := &metadata.NoopSink{}
	sampler := color.NewSampler(sink, color.StdCodec{}, fetcher.NewHTTPFetcher(sink, nil))

	_, err := sampler.SampleURL(context.Background(), server.URL+"/missing.jpg", nil, testPolicy())
	var serr *color.SampleError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, color.SampleErrorCause(color.ErrCauseFetchFailed), serr.Cause)
}
