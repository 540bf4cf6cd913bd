package resolver

import (
	"regexp"
	"strings"
)

const (
	canonicalHost = "www.facebook.com"
	mobileHost    = "m.facebook.com"
	watchURLBase  = "https://www.facebook.com/watch/?v="
)

// PageAddress is the canonical form of an input page URL plus the video
// identifier when one is derivable from the URL shape.
type PageAddress struct {
	URL     string
	VideoID string
}

// videoIDPatterns covers the URL shapes Facebook uses for videos. Order
// matters: the first capturing match wins.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`facebook\.com/.*/videos/(\d+)`),
	regexp.MustCompile(`fb\.watch/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`facebook\.com/watch/\?v=(\d+)`),
	regexp.MustCompile(`facebook\.com/.*/posts/(\d+)`),
	regexp.MustCompile(`facebook\.com/video\.php\?v=(\d+)`),
	regexp.MustCompile(`facebook\.com/.*/videos/vb\.\d+/(\d+)`),
	regexp.MustCompile(`facebook\.com/reel/(\d+)`),
}

// ExtractVideoID returns the video identifier embedded in a Facebook URL, or
// an empty string when no known shape matches. Absence is not an error.
func ExtractVideoID(rawURL string) string {
	for _, pattern := range videoIDPatterns {
		if match := pattern.FindStringSubmatch(rawURL); match != nil {
			return match[1]
		}
	}
	return ""
}

// Normalize canonicalizes the supported shortened, mobile and reel URL forms
// into the standard watch address. Unrecognized inputs pass through unchanged;
// the handler's site-shape check is the validity gate, not this function.
func Normalize(rawURL string) PageAddress {
	id := ExtractVideoID(rawURL)

	if strings.Contains(rawURL, "fb.watch") && id != "" {
		return PageAddress{URL: watchURLBase + id, VideoID: id}
	}
	if strings.Contains(rawURL, mobileHost) {
		return PageAddress{URL: strings.Replace(rawURL, mobileHost, canonicalHost, 1), VideoID: id}
	}
	if strings.Contains(rawURL, "/reel/") && id != "" {
		return PageAddress{URL: watchURLBase + id, VideoID: id}
	}
	return PageAddress{URL: rawURL, VideoID: id}
}
