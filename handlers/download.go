package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"fbgrab/config"
)

const (
	relayUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	relayReferer     = "https://www.facebook.com/"
	relayOrigin      = "https://www.facebook.com"
	defaultFilename  = "facebook_video.mp4"
	relayFailMessage = "Failed to download video. The link might be expired or invalid."
)

// DownloadHandler relays a resolved media URL to the client, preserving
// byte-range semantics from the upstream CDN.
type DownloadHandler struct {
	httpc   *http.Client
	timeout time.Duration
}

// NewDownloadHandler constructs the relay. A nil client gets a default bound
// by the configured redirect cap; the timeout bounds connecting and waiting
// for upstream headers, never an open stream.
func NewDownloadHandler(cfg config.RelaySettings, client *http.Client) *DownloadHandler {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 5
	}
	if client == nil {
		client = &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		}
	}
	return &DownloadHandler{httpc: client, timeout: timeout}
}

// Proxy streams the media at ?url= back to the client as an attachment.
func (h *DownloadHandler) Proxy(w http.ResponseWriter, r *http.Request) {
	mediaURL := r.URL.Query().Get("url")
	if mediaURL == "" {
		writeError(w, http.StatusBadRequest, "URL parameter is required")
		return
	}
	filename := r.URL.Query().Get("filename")

	log.Printf("[download] proxying %s", mediaURL)

	// The deadline covers connect and time-to-headers only. Once the stream is
	// open, the transfer runs until it finishes or the client disconnects.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	headerTimer := time.AfterFunc(h.timeout, cancel)

	upstreamReq, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		headerTimer.Stop()
		writeError(w, http.StatusBadRequest, "URL parameter is not a valid URL")
		return
	}
	upstreamReq.Header.Set("User-Agent", relayUserAgent)
	upstreamReq.Header.Set("Accept", "video/webm,video/ogg,video/*;q=0.9,application/ogg;q=0.7,audio/*;q=0.6,*/*;q=0.5")
	upstreamReq.Header.Set("Accept-Language", "en-US,en;q=0.9")
	upstreamReq.Header.Set("Accept-Encoding", "identity")
	upstreamReq.Header.Set("Referer", relayReferer)
	upstreamReq.Header.Set("Origin", relayOrigin)

	clientRange := r.Header.Get("Range")
	if clientRange != "" {
		upstreamReq.Header.Set("Range", clientRange)
	} else {
		upstreamReq.Header.Set("Range", "bytes=0-")
	}

	resp, err := h.httpc.Do(upstreamReq)
	headerTimer.Stop()
	if err != nil {
		log.Printf("[download] upstream fetch failed: %v", err)
		writeError(w, http.StatusInternalServerError, relayFailMessage)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Printf("[download] upstream returned %d for %s", resp.StatusCode, mediaURL)
		writeError(w, http.StatusInternalServerError, relayFailMessage)
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachmentFilename(filename, contentType)))
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if v := resp.Header.Get("Content-Length"); v != "" {
		w.Header().Set("Content-Length", v)
	}
	if v := resp.Header.Get("Accept-Ranges"); v != "" {
		w.Header().Set("Accept-Ranges", v)
	}

	// Partial content only when the client actually asked for a range and the
	// upstream honored it.
	status := http.StatusOK
	if clientRange != "" {
		if contentRange := resp.Header.Get("Content-Range"); contentRange != "" {
			w.Header().Set("Content-Range", contentRange)
			status = http.StatusPartialContent
		}
	}
	w.WriteHeader(status)

	if r.Method == http.MethodHead {
		return
	}

	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 256*1024)
	var total int64

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			written, writeErr := w.Write(buf[:n])
			total += int64(written)
			if writeErr != nil {
				log.Printf("[download] client gone after %d bytes: %v", total, writeErr)
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			// Headers are already out; the transfer just ends here.
			log.Printf("[download] upstream stream error after %d bytes: %v", total, readErr)
			return
		}
	}

	log.Printf("[download] completed %s (%d bytes)", mediaURL, total)
}

// Options handles CORS preflight
func (h *DownloadHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// attachmentFilename fills in the default name and appends an extension
// matching the upstream content type when the caller supplied none.
func attachmentFilename(name, contentType string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return defaultFilename
	}
	if path.Ext(name) != "" {
		return name
	}
	mediaType, _, _ := strings.Cut(contentType, ";")
	if mt := mimetype.Lookup(strings.TrimSpace(mediaType)); mt != nil && mt.Extension() != "" {
		return name + mt.Extension()
	}
	return name + ".mp4"
}
