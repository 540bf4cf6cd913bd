package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fbgrab/models"
)

const (
	embedURLBase = "https://www.facebook.com/plugins/video.php?href="

	// Pages larger than this carry no useful script blobs.
	maxPageBytes = 10 * 1024 * 1024
)

// ErrUnavailable is returned when every fetch strategy has been exhausted
// without finding a single candidate. The upstream page gives no reliable
// signal to tell a private video from a deleted or login-gated one, so the
// causes are deliberately not distinguished.
var ErrUnavailable = errors.New("video unavailable: it might be private, deleted, or require login")

// Config carries the request identities and fetch bounds for the resolver.
// Passing these explicitly (rather than reading ambient globals) keeps the
// service deterministic under fake transports in tests.
type Config struct {
	Timeout          time.Duration
	MaxRedirects     int
	DesktopUserAgent string
	MobileUserAgent  string
}

// Service resolves a Facebook video page URL into download candidates by
// walking an ordered chain of fetch strategies.
type Service struct {
	cfg   Config
	httpc *http.Client
}

// NewService constructs a resolver. A nil client gets a default with the
// configured timeout and redirect cap; tests inject a fake transport instead.
func NewService(cfg Config, client *http.Client) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = 5
	}
	if client == nil {
		maxRedirects := cfg.MaxRedirects
		client = &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		}
	}
	return &Service{cfg: cfg, httpc: client}
}

// Resolve normalizes the input URL and runs the strategy chain in order,
// returning at the first strategy that yields at least one candidate.
// Individual strategy failures are logged and swallowed; only total
// exhaustion surfaces as ErrUnavailable.
func (s *Service) Resolve(ctx context.Context, rawURL string) (*models.VideoDetails, error) {
	addr := Normalize(rawURL)
	log.Printf("[resolver] resolving %s (canonical=%s id=%q)", rawURL, addr.URL, addr.VideoID)

	strategies := []struct {
		name string
		run  func(context.Context, PageAddress) (*models.VideoDetails, error)
	}{
		{"direct", s.resolveDirect},
		{"mobile", s.resolveMobile},
		{"embedded", s.resolveEmbedded},
	}

	for _, strategy := range strategies {
		details, err := strategy.run(ctx, addr)
		if err != nil {
			log.Printf("[resolver] %s strategy failed: %v", strategy.name, err)
			continue
		}
		if details == nil || len(details.DownloadLinks) == 0 {
			log.Printf("[resolver] %s strategy found no candidates", strategy.name)
			continue
		}
		log.Printf("[resolver] %s strategy found %d candidate(s) for %q", strategy.name, len(details.DownloadLinks), details.Title)
		return details, nil
	}

	return nil, ErrUnavailable
}

// resolveDirect fetches the canonical page with a desktop browser identity.
func (s *Service) resolveDirect(ctx context.Context, addr PageAddress) (*models.VideoDetails, error) {
	return s.fetchAndExtract(ctx, addr.URL, s.cfg.DesktopUserAgent)
}

// resolveMobile fetches the mobile page variant with a phone identity. The
// mobile site often serves plain progressive sources that the desktop page
// hides behind the player.
func (s *Service) resolveMobile(ctx context.Context, addr PageAddress) (*models.VideoDetails, error) {
	mobileURL := strings.Replace(addr.URL, canonicalHost, mobileHost, 1)
	return s.fetchAndExtract(ctx, mobileURL, s.cfg.MobileUserAgent)
}

// resolveEmbedded fetches the embeddable player page built from the canonical
// address. Skipped entirely when no video identifier was extracted.
func (s *Service) resolveEmbedded(ctx context.Context, addr PageAddress) (*models.VideoDetails, error) {
	if addr.VideoID == "" {
		return nil, nil
	}
	embedURL := embedURLBase + url.QueryEscape(addr.URL)
	return s.fetchAndExtract(ctx, embedURL, s.cfg.DesktopUserAgent)
}

func (s *Service) fetchAndExtract(ctx context.Context, pageURL, userAgent string) (*models.VideoDetails, error) {
	markup, err := s.fetchPage(ctx, pageURL, userAgent)
	if err != nil {
		return nil, err
	}

	links := ExtractCandidates(markup)
	if len(links) == 0 {
		return nil, nil
	}

	meta := parsePageMeta(markup)
	return &models.VideoDetails{
		Success:       true,
		Title:         meta.title,
		Thumbnail:     meta.thumbnail,
		Duration:      meta.duration,
		DownloadLinks: links,
	}, nil
}

// fetchPage performs one bounded page fetch with a browser-like header set.
func (s *Service) fetchPage(ctx context.Context, pageURL, userAgent string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Cache-Control", "max-age=0")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", pageURL, err)
	}
	return string(body), nil
}
