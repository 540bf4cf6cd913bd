package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"
	"strings"

	"fbgrab/models"
	"fbgrab/services/resolver"
)

// videoResolver is the narrow surface this handler needs from the resolver
// service; tests substitute a fake.
type videoResolver interface {
	Resolve(ctx context.Context, rawURL string) (*models.VideoDetails, error)
}

var _ videoResolver = (*resolver.Service)(nil)

// facebookURLPattern is the server-side site-shape gate. The page client
// performs the same check before calling, but only as a UX shortcut.
var facebookURLPattern = regexp.MustCompile(`(?i)^https?://(www\.|m\.)?(facebook\.com|fb\.watch)`)

// VideoDetailsHandler resolves a Facebook page URL into ranked download
// candidates.
type VideoDetailsHandler struct {
	Service videoResolver
}

func NewVideoDetailsHandler(s videoResolver) *VideoDetailsHandler {
	return &VideoDetailsHandler{Service: s}
}

// Resolve accepts {"videoUrl": ...} and responds with the ranked candidate
// list or a failure envelope. Validation failures never reach upstream.
func (h *VideoDetailsHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var request struct {
		VideoURL string `json:"videoUrl"`
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "Video URL is required")
		return
	}

	videoURL := strings.TrimSpace(request.VideoURL)
	if videoURL == "" {
		writeError(w, http.StatusBadRequest, "Video URL is required")
		return
	}
	if !facebookURLPattern.MatchString(videoURL) {
		writeError(w, http.StatusBadRequest, "Please provide a valid Facebook video URL")
		return
	}

	log.Printf("[video-details] processing request for %s", videoURL)

	details, err := h.Service.Resolve(r.Context(), videoURL)
	if err != nil {
		if errors.Is(err, resolver.ErrUnavailable) {
			log.Printf("[video-details] resolution exhausted for %s", videoURL)
			writeError(w, http.StatusBadRequest, "Unable to extract video. The video might be private, deleted, or require login.")
			return
		}
		log.Printf("[video-details] resolution error for %s: %v", videoURL, err)
		writeError(w, http.StatusInternalServerError, "Failed to process the video URL. Please check if the URL is valid and the video is public.")
		return
	}

	log.Printf("[video-details] resolved %q with %d link(s)", details.Title, len(details.DownloadLinks))
	writeJSON(w, http.StatusOK, details)
}

// Options handles CORS preflight
func (h *VideoDetailsHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
