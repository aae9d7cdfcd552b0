package imagesearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchQuery(t *testing.T) {
	got := SearchQuery("The Last Supper", "Leonardo da Vinci")
	assert.Equal(t, "The Last Supper Leonardo da Vinci painting historical art", got)
}

func TestSearchURL(t *testing.T) {
	cfg := DefaultConfig()
	got := cfg.SearchURL("Starry Night", "van Gogh")
	assert.Contains(t, got, "https://www.google.com/search?q=")
	assert.Contains(t, got, "tbm=isch")
	assert.Contains(t, got, "Starry+Night+van+Gogh+painting+historical+art")
}

func TestPickResult(t *testing.T) {
	tests := []struct {
		name    string
		urls    []string
		index   int
		want    string
		wantErr bool
	}{
		{
			name:  "preferred index",
			urls:  []string{"http://a/logo.png", "http://a/1.jpg", "http://a/2.jpg"},
			index: 1,
			want:  "http://a/1.jpg",
		},
		{
			name:  "index beyond results falls back to first",
			urls:  []string{"http://a/only.jpg"},
			index: 1,
			want:  "http://a/only.jpg",
		},
		{
			name:  "negative index clamps to first",
			urls:  []string{"http://a/1.jpg", "http://a/2.jpg"},
			index: -3,
			want:  "http://a/1.jpg",
		},
		{
			name:  "blank entries are skipped",
			urls:  []string{"", "  ", "http://a/real.jpg"},
			index: 0,
			want:  "http://a/real.jpg",
		},
		{
			name:    "no candidates",
			urls:    nil,
			index:   1,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pickResult(tt.urls, tt.index)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractImageURLs(t *testing.T) {
	page := []byte(`
	<html><body>
		<img src="https://cdn.example.com/logo.png" width="64" height="64">
		<img src="https://cdn.example.com/painting1.jpg" width="600" height="400">
		<img src="data:image/gif;base64,R0lGOD">
		<img src="https://cdn.example.com/painting2.jpg">
		<img src="/relative/path.jpg" width="500" height="500">
	</body></html>`)

	urls := extractImageURLs(page, 100, 100)
	assert.Equal(t, []string{
		"https://cdn.example.com/painting1.jpg",
		"https://cdn.example.com/painting2.jpg",
	}, urls)
}

func TestStaticFinderFindImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "tbm=isch")
		w.Write([]byte(`
		<html><body>
			<img src="https://cdn.example.com/provider-logo.png" width="272" height="92">
			<img src="https://cdn.example.com/the-real-one.jpg" width="600" height="400">
		</body></html>`))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.SearchBaseURL = srv.URL

	finder := NewStaticFinder(cfg)
	url, err := finder.FindImage(context.Background(), "The Crucifixion", "Goya")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/the-real-one.jpg", url)
}

func TestStaticFinderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.SearchBaseURL = srv.URL

	finder := NewStaticFinder(cfg)
	_, err := finder.FindImage(context.Background(), "x", "y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestStaticFinderNoImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>no results</p></body></html>`))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.SearchBaseURL = srv.URL

	finder := NewStaticFinder(cfg)
	_, err := finder.FindImage(context.Background(), "x", "y")
	require.Error(t, err)
}
