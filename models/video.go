package models

// MediaCandidate is one discovered playable URL with heuristic quality and
// size labels. The size is a fixed per-tier estimate, never a measurement.
type MediaCandidate struct {
	Quality string `json:"quality"`
	Format  string `json:"format"`
	Size    string `json:"size"`
	URL     string `json:"url"`
}

// VideoDetails is the success payload of a resolution request. Candidates are
// ordered highest quality first.
type VideoDetails struct {
	Success       bool             `json:"success"`
	Title         string           `json:"title"`
	Thumbnail     string           `json:"thumbnail,omitempty"`
	Duration      string           `json:"duration"`
	DownloadLinks []MediaCandidate `json:"downloadLinks"`
}

// ErrorResponse is the failure envelope shared by all API endpoints.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
