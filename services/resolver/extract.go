package resolver

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"fbgrab/models"
)

// extractionRule pairs a markup search pattern with the quality label and size
// estimate assigned to URLs it discovers. Rules run in declaration order; new
// patterns are added to the table, not as new branches.
type extractionRule struct {
	name    string
	pattern *regexp.Regexp
	quality string
	size    string
	generic bool // bare src attribute match; downgraded when the URL itself gives no quality hint
}

var extractionRules = []extractionRule{
	{name: "hd_src", pattern: regexp.MustCompile(`"hd_src":"([^"]+)"`), quality: "HD (1080p)", size: "~50MB"},
	{name: "hd_src_no_ratelimit", pattern: regexp.MustCompile(`"hd_src_no_ratelimit":"([^"]+)"`), quality: "HD (1080p)", size: "~50MB"},
	{name: "browser_native_hd_url", pattern: regexp.MustCompile(`"browser_native_hd_url":"([^"]+)"`), quality: "HD (720p)", size: "~50MB"},
	{name: "sd_src", pattern: regexp.MustCompile(`"sd_src":"([^"]+)"`), quality: "SD (480p)", size: "~25MB"},
	{name: "sd_src_no_ratelimit", pattern: regexp.MustCompile(`"sd_src_no_ratelimit":"([^"]+)"`), quality: "SD (480p)", size: "~25MB"},
	{name: "browser_native_sd_url", pattern: regexp.MustCompile(`"browser_native_sd_url":"([^"]+)"`), quality: "SD (360p)", size: "~25MB"},
	{name: "playable_url", pattern: regexp.MustCompile(`"playable_url":"([^"]+)"`), quality: "Standard", size: "~30MB"},
	{name: "playable_url_quality_hd", pattern: regexp.MustCompile(`"playable_url_quality_hd":"([^"]+)"`), quality: "HD (720p)", size: "~50MB"},
	{name: "video_url", pattern: regexp.MustCompile(`"video_url":"([^"]+)"`), quality: "Standard", size: "~30MB"},
	{name: "src", pattern: regexp.MustCompile(`"src":"([^"]*\.mp4[^"]*)"`), quality: "Mobile", size: "~15MB", generic: true},
	{name: "dash_manifest", pattern: regexp.MustCompile(`"dash_manifest":"([^"]+)"`), quality: "Standard", size: "~30MB"},
	{name: "progressive_url", pattern: regexp.MustCompile(`"progressive_url":"([^"]+)"`), quality: "Standard", size: "~30MB"},
}

// videoObjectPattern matches inline JSON objects carrying an explicit
// video_id/video_url pair.
var videoObjectPattern = regexp.MustCompile(`\{"video_id":"[^"]+","video_url":"([^"]+)"`)

// escapeCleaner reverses the escape encodings Facebook applies to URLs inside
// script blobs. The unicode escapes must be replaced before the bare
// backslash strip.
var escapeCleaner = strings.NewReplacer(
	`\u0025`, "%",
	`\u0026`, "&",
	`\/`, "/",
	`\`, "",
)

// mediaHostFragments is the allow-list of CDN host markers a candidate URL
// must carry.
var mediaHostFragments = []string{
	"video.xx.fbcdn.net",
	"scontent.xx.fbcdn.net",
	"video.fxx",
	"scontent-",
	"fbcdn.net",
}

// ExtractCandidates scans raw page markup for playable media URLs. It is a
// pure function: identical markup always yields the identical ordered list.
// Every returned URL is cleaned, validated and unique.
func ExtractCandidates(markup string) []models.MediaCandidate {
	seen := make(map[string]struct{})
	var candidates []models.MediaCandidate

	for _, rule := range extractionRules {
		for _, match := range rule.pattern.FindAllStringSubmatch(markup, -1) {
			cleaned := cleanMediaURL(match[1])
			if !isValidMediaURL(cleaned) {
				continue
			}
			if _, dup := seen[cleaned]; dup {
				continue
			}
			seen[cleaned] = struct{}{}

			quality, size := refineQuality(rule, cleaned)
			candidates = append(candidates, models.MediaCandidate{
				Quality: quality,
				Format:  "MP4",
				Size:    size,
				URL:     cleaned,
			})
		}
	}

	for _, match := range videoObjectPattern.FindAllStringSubmatch(markup, -1) {
		cleaned := cleanMediaURL(match[1])
		if !isValidMediaURL(cleaned) {
			continue
		}
		if _, dup := seen[cleaned]; dup {
			continue
		}
		seen[cleaned] = struct{}{}
		candidates = append(candidates, models.MediaCandidate{
			Quality: "Standard",
			Format:  "MP4",
			Size:    "~30MB",
			URL:     cleaned,
		})
	}

	// Highest quality tier first; ties keep discovery order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return qualityTier(candidates[i].Quality) > qualityTier(candidates[j].Quality)
	})

	return candidates
}

// cleanMediaURL reverses escape encodings and applies one best-effort
// percent-decode pass. A failed decode keeps the escape-cleaned form.
func cleanMediaURL(raw string) string {
	cleaned := escapeCleaner.Replace(raw)
	if decoded, err := url.PathUnescape(cleaned); err == nil {
		cleaned = decoded
	}
	return cleaned
}

// isValidMediaURL reports whether a cleaned URL is an absolute http(s) URL on
// an allow-listed CDN host with at least one video content indicator.
func isValidMediaURL(raw string) bool {
	if len(raw) < 10 {
		return false
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return false
	}

	hostOK := false
	for _, fragment := range mediaHostFragments {
		if strings.Contains(raw, fragment) {
			hostOK = true
			break
		}
	}
	if !hostOK {
		return false
	}

	return strings.Contains(raw, ".mp4") ||
		strings.Contains(raw, "video") ||
		strings.Contains(raw, "type=video")
}

// refineQuality adjusts a rule's default label using hints in the URL itself.
func refineQuality(rule extractionRule, mediaURL string) (quality, size string) {
	switch {
	case strings.Contains(mediaURL, "hd"):
		return "HD (720p)", "~50MB"
	case strings.Contains(mediaURL, "sd"):
		return "SD (480p)", "~25MB"
	case rule.generic:
		return "Mobile (360p)", "~15MB"
	default:
		return rule.quality, rule.size
	}
}

// qualityTier maps a quality label to its ranking ordinal by first word:
// HD > SD > Mobile > everything else.
func qualityTier(quality string) int {
	tier, _, _ := strings.Cut(quality, " ")
	switch tier {
	case "HD":
		return 3
	case "SD":
		return 2
	case "Mobile":
		return 1
	default:
		return 0
	}
}
