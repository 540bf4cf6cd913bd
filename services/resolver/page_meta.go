package resolver

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const defaultTitle = "Facebook Video"

var siteSuffixPattern = regexp.MustCompile(`\s*\|\s*Facebook\s*$`)

// pageMeta carries the best-effort presentation metadata scraped from a page
// variant. Every field has a usable default; extraction never fails.
type pageMeta struct {
	title     string
	thumbnail string
	duration  string
}

// parsePageMeta pulls title, preview image and duration out of the page head.
func parsePageMeta(markup string) pageMeta {
	meta := pageMeta{title: defaultTitle, duration: "0:00"}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return meta
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title, _ = doc.Find(`meta[property="og:title"]`).Attr("content")
	}
	title = strings.TrimSpace(siteSuffixPattern.ReplaceAllString(title, ""))
	if title != "" {
		meta.title = title
	}

	if thumb, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok && thumb != "" {
		meta.thumbnail = thumb
	} else if thumb, ok := doc.Find(`meta[name="twitter:image"]`).Attr("content"); ok {
		meta.thumbnail = thumb
	}

	if duration, ok := doc.Find(`meta[property="video:duration"]`).Attr("content"); ok {
		meta.duration = FormatDuration(duration)
	}

	return meta
}

// FormatDuration renders a whole-second count as H:MM:SS when hours are
// present, M:SS otherwise. Absent or unparseable input renders as "0:00".
func FormatDuration(seconds string) string {
	total, err := strconv.Atoi(strings.TrimSpace(seconds))
	if err != nil || total <= 0 {
		return "0:00"
	}

	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	if hours > 0 {
		return strconv.Itoa(hours) + ":" + pad2(minutes) + ":" + pad2(secs)
	}
	return strconv.Itoa(minutes) + ":" + pad2(secs)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
