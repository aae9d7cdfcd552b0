package imagesearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"iconograph/internal/logging"
)

// StaticFinder resolves artwork images with a plain HTTP fetch and HTML
// parse. It is the fallback when no Chrome binary is available; it cannot
// see script-rendered results, so it inspects whatever markup the provider
// serves to non-JS clients.
type StaticFinder struct {
	cfg    Config
	client *http.Client
}

// NewStaticFinder creates a static HTML image finder.
func NewStaticFinder(cfg Config) *StaticFinder {
	return &StaticFinder{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.navigationTimeout(),
		},
	}
}

// Close satisfies the session contract. Nothing to release.
func (f *StaticFinder) Close() error { return nil }

// FindImage fetches the search page and returns the preferred image URL.
func (f *StaticFinder) FindImage(ctx context.Context, title, artist string) (string, error) {
	searchURL := f.cfg.SearchURL(title, artist)
	logging.BrowserDebug("static finder: fetching %s", searchURL)

	req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; iconograph/1.0)")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch search page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read search page: %w", err)
	}

	urls := extractImageURLs(body, f.cfg.MinImageWidth, f.cfg.MinImageHeight)
	return pickResult(urls, f.cfg.ResultIndex)
}

// extractImageURLs walks the document and collects http(s) img sources,
// dropping any with declared dimensions at or below the minimums. Images
// with no declared size pass; the static path cannot measure them.
func extractImageURLs(page []byte, minW, minH int) []string {
	doc, err := html.Parse(strings.NewReader(string(page)))
	if err != nil {
		return nil
	}

	var urls []string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "img" {
			var src string
			width, height := -1, -1
			for _, attr := range n.Attr {
				switch attr.Key {
				case "src":
					src = attr.Val
				case "width":
					if v, err := strconv.Atoi(attr.Val); err == nil {
						width = v
					}
				case "height":
					if v, err := strconv.Atoi(attr.Val); err == nil {
						height = v
					}
				}
			}
			if strings.HasPrefix(src, "http") &&
				(width < 0 || width > minW) &&
				(height < 0 || height > minH) {
				urls = append(urls, src)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return urls
}
