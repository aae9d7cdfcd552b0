// Package imagesearch locates representative images for artworks by driving
// a headless browser against an image search provider, with a static HTTP
// fallback for environments without Chrome.
package imagesearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"

	"iconograph/internal/logging"
)

// ErrNoImage reports that the search page loaded but held no image of
// acceptable size. Distinct from transport or automation failures.
var ErrNoImage = errors.New("no suitable images found")

// Config holds image discovery settings.
type Config struct {
	DebuggerURL       string
	Launch            []string // binary path plus extra flags
	Headless          bool
	NavigationTimeout time.Duration
	MinImageWidth     int
	MinImageHeight    int
	// ResultIndex selects which size-filtered image to use. Index 1 skips
	// the provider logo that commonly occupies the first slot.
	ResultIndex   int
	SearchBaseURL string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Headless:          true,
		NavigationTimeout: 30 * time.Second,
		MinImageWidth:     100,
		MinImageHeight:    100,
		ResultIndex:       1,
		SearchBaseURL:     "https://www.google.com/search",
	}
}

func (c Config) navigationTimeout() time.Duration {
	if c.NavigationTimeout <= 0 {
		return 30 * time.Second
	}
	return c.NavigationTimeout
}

// SearchQuery builds the image search terms for an artwork.
func SearchQuery(title, artist string) string {
	return fmt.Sprintf("%s %s painting historical art", title, artist)
}

// SearchURL builds the image search URL for an artwork.
func (c Config) SearchURL(title, artist string) string {
	base := c.SearchBaseURL
	if base == "" {
		base = "https://www.google.com/search"
	}
	return fmt.Sprintf("%s?q=%s&tbm=isch", base, url.QueryEscape(SearchQuery(title, artist)))
}

// Manager opens browser sessions on demand. One session serves one batch of
// artwork lookups and is closed when the batch completes.
type Manager struct {
	cfg Config
}

// NewManager creates a session manager.
func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg}
}

// OpenSession launches (or attaches to) a browser and returns a session
// ready to resolve images. The caller must Close it.
func (m *Manager) OpenSession(ctx context.Context) (*Session, error) {
	controlURL := m.cfg.DebuggerURL

	if controlURL == "" && len(m.cfg.Launch) > 0 {
		bin := m.cfg.Launch[0]
		launch := launcher.New().Bin(bin).Headless(m.cfg.Headless)
		url, err := launch.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = url
	}

	if controlURL == "" {
		url, err := launcher.New().Headless(m.cfg.Headless).Launch()
		if err != nil {
			return nil, fmt.Errorf("no debugger_url and failed to launch: %w", err)
		}
		controlURL = url
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	s := &Session{
		ID:      uuid.NewString(),
		cfg:     m.cfg,
		browser: browser,
	}
	logging.Browser("session %s opened (control=%s)", s.ID, controlURL)
	return s, nil
}

// Session is a live browser connection scoped to one lookup batch.
type Session struct {
	ID  string
	cfg Config

	browser *rod.Browser

	closeOnce sync.Once
	closeErr  error
}

// Close releases the browser. Safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.browser != nil {
			s.closeErr = s.browser.Close()
		}
		logging.Browser("session %s closed", s.ID)
	})
	return s.closeErr
}

// FindImage opens a search page for the artwork and returns the URL of the
// first acceptably sized result.
func (s *Session) FindImage(ctx context.Context, title, artist string) (string, error) {
	searchURL := s.cfg.SearchURL(title, artist)
	logging.BrowserDebug("session %s: searching %q", s.ID, SearchQuery(title, artist))

	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("create page: %w", err)
	}
	defer func() { _ = page.Close() }()

	page = page.Context(ctx)
	if err := page.Timeout(s.cfg.navigationTimeout()).Navigate(searchURL); err != nil {
		return "", fmt.Errorf("navigate: %w", err)
	}
	if err := page.Timeout(s.cfg.navigationTimeout()).WaitLoad(); err != nil {
		logging.BrowserWarn("session %s: page load wait: %v", s.ID, err)
	}

	res, err := page.Evaluate(&rod.EvalOptions{
		JS: `
		(minW, minH) => {
			const urls = [];
			for (const img of document.querySelectorAll('img')) {
				if (!img.src || !img.src.startsWith('http')) continue;
				const w = img.naturalWidth || img.width;
				const h = img.naturalHeight || img.height;
				if (w > minW && h > minH) {
					urls.push(img.src);
				}
			}
			return urls;
		}
		`,
		JSArgs:       []interface{}{s.cfg.MinImageWidth, s.cfg.MinImageHeight},
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return "", fmt.Errorf("evaluate image scan: %w", err)
	}

	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("decode image scan: %w", err)
	}
	var urls []string
	if err := json.Unmarshal(raw, &urls); err != nil {
		return "", fmt.Errorf("decode image scan: %w", err)
	}

	picked, err := pickResult(urls, s.cfg.ResultIndex)
	if err != nil {
		return "", err
	}
	logging.BrowserDebug("session %s: found %d candidates, using %s", s.ID, len(urls), picked)
	return picked, nil
}

// pickResult selects the preferred index from the filtered candidates,
// falling back to the first one when fewer results are available.
func pickResult(urls []string, index int) (string, error) {
	cleaned := urls[:0:0]
	for _, u := range urls {
		if strings.TrimSpace(u) != "" {
			cleaned = append(cleaned, u)
		}
	}
	if len(cleaned) == 0 {
		return "", ErrNoImage
	}
	if index < 0 {
		index = 0
	}
	if index >= len(cleaned) {
		index = 0
	}
	return cleaned[index], nil
}
