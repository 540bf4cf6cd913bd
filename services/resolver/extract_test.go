package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCandidatesKeepsRuleQualityWithoutURLHint(t *testing.T) {
	markup := `{"hd_src":"https://video.xx.fbcdn.net/v/one.mp4","sd_src":"https://video.xx.fbcdn.net/v/two.mp4"}`

	candidates := ExtractCandidates(markup)
	require.Len(t, candidates, 2)

	assert.Equal(t, "HD (1080p)", candidates[0].Quality)
	assert.Equal(t, "~50MB", candidates[0].Size)
	assert.Equal(t, "https://video.xx.fbcdn.net/v/one.mp4", candidates[0].URL)
	assert.Equal(t, "SD (480p)", candidates[1].Quality)
	assert.Equal(t, "~25MB", candidates[1].Size)
}

func TestExtractCandidatesSortsByTier(t *testing.T) {
	// The sd_src rule runs before playable_url, but the playable URL carries
	// an hd hint and must still rank first.
	markup := `{"sd_src":"https://video.xx.fbcdn.net/v/clip-a.mp4","playable_url":"https://video.xx.fbcdn.net/v/hd/clip-b.mp4"}`

	candidates := ExtractCandidates(markup)
	require.Len(t, candidates, 2)

	assert.Equal(t, "HD (720p)", candidates[0].Quality)
	assert.Equal(t, "https://video.xx.fbcdn.net/v/hd/clip-b.mp4", candidates[0].URL)
	assert.Equal(t, "SD (480p)", candidates[1].Quality)
}

func TestExtractCandidatesDeduplicates(t *testing.T) {
	markup := `{"hd_src":"https://video.xx.fbcdn.net/v/same.mp4","hd_src_no_ratelimit":"https://video.xx.fbcdn.net/v/same.mp4"}`

	candidates := ExtractCandidates(markup)
	require.Len(t, candidates, 1)
	assert.Equal(t, "https://video.xx.fbcdn.net/v/same.mp4", candidates[0].URL)
}

func TestExtractCandidatesRejectsInvalidURLs(t *testing.T) {
	cases := []struct {
		name   string
		markup string
	}{
		{"foreign host", `{"hd_src":"https://example.com/clip.mp4"}`},
		{"no content indicator", `{"hd_src":"https://scontent-lax3-1.xx.fbcdn.net/t39/photo.jpg"}`},
		{"relative url", `{"hd_src":"/v/clip.mp4"}`},
		{"too short", `{"hd_src":"http://a"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Empty(t, ExtractCandidates(tc.markup))
		})
	}
}

func TestExtractCandidatesCleansEscapes(t *testing.T) {
	markup := `{"playable_url":"https:\/\/video.xx.fbcdn.net\/v\/clip.mp4?efg=abc\u0026oh=00\u00253D"}`

	candidates := ExtractCandidates(markup)
	require.Len(t, candidates, 1)
	assert.Equal(t, "https://video.xx.fbcdn.net/v/clip.mp4?efg=abc&oh=00=", candidates[0].URL)
	assert.Equal(t, "Standard", candidates[0].Quality)
}

func TestExtractCandidatesPercentDecodes(t *testing.T) {
	markup := `{"playable_url":"https://video.xx.fbcdn.net/v%2Fclip.mp4"}`

	candidates := ExtractCandidates(markup)
	require.Len(t, candidates, 1)
	assert.Equal(t, "https://video.xx.fbcdn.net/v/clip.mp4", candidates[0].URL)
}

func TestExtractCandidatesGenericSrcIsMobile(t *testing.T) {
	markup := `{"src":"https://scontent-lax3-1.xx.fbcdn.net/v/t42/clip.mp4"}`

	candidates := ExtractCandidates(markup)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Mobile (360p)", candidates[0].Quality)
	assert.Equal(t, "~15MB", candidates[0].Size)
	assert.Equal(t, "MP4", candidates[0].Format)
}

func TestExtractCandidatesVideoObjectLiteral(t *testing.T) {
	markup := `[{"video_id":"123","video_url":"https://video.xx.fbcdn.net/v/obj.mp4"}]`

	candidates := ExtractCandidates(markup)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Standard", candidates[0].Quality)
	assert.Equal(t, "https://video.xx.fbcdn.net/v/obj.mp4", candidates[0].URL)
}

func TestExtractCandidatesDeterministic(t *testing.T) {
	markup := `{"hd_src":"https://video.xx.fbcdn.net/v/a.mp4","sd_src":"https://video.xx.fbcdn.net/v/b.mp4","playable_url":"https://video.xx.fbcdn.net/v/c.mp4"}`

	first := ExtractCandidates(markup)
	second := ExtractCandidates(markup)
	assert.Equal(t, first, second)
}

func TestExtractCandidatesEmptyMarkup(t *testing.T) {
	assert.Empty(t, ExtractCandidates(""))
	assert.Empty(t, ExtractCandidates("<html><body>no media here</body></html>"))
}
