package youtube

import (
	"net/url"
	"strings"
	"testing"
)

func TestBuildEmbedURL(t *testing.T) {
	tests := []struct {
		name     string
		params   EmbedParams
		expected map[string]string
		absent   []string
	}{
		{
			name:   "Player Defaults",
			params: PlayerParams(),
			expected: map[string]string{
				"autoplay":       "0",
				"controls":       "0",
				"modestbranding": "1",
				"rel":            "0",
				"enablejsapi":    "1",
				"playsinline":    "1",
			},
			absent: []string{"mute", "loop", "playlist", "_r"},
		},
		{
			name: "Muted Autoplay",
			params: func() EmbedParams {
				p := PlayerParams()
				p.Autoplay = true
				p.Mute = true
				return p
			}(),
			expected: map[string]string{"autoplay": "1", "mute": "1"},
		},
		{
			name:     "Loop Sets Playlist",
			params:   EmbedParams{Loop: true},
			expected: map[string]string{"loop": "1", "playlist": "abc123"},
		},
		{
			name:     "Extras",
			params:   EmbedParams{DisableKeyboard: true, NoFullscreen: true, Quality: "small", CacheBust: "2"},
			expected: map[string]string{"disablekb": "1", "fs": "0", "vq": "small", "_r": "2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := BuildEmbedURL("", "abc123", tt.params)
			if !strings.HasPrefix(raw, "https://www.youtube.com/embed/abc123?") {
				t.Fatalf("unexpected URL prefix: %s", raw)
			}
			u, err := url.Parse(raw)
			if err != nil {
				t.Fatalf("invalid URL: %v", err)
			}
			q := u.Query()
			for k, v := range tt.expected {
				if q.Get(k) != v {
					t.Errorf("%s: expected '%s', got '%s'", k, v, q.Get(k))
				}
			}
			for _, k := range tt.absent {
				if q.Has(k) {
					t.Errorf("%s should not be set", k)
				}
			}
		})
	}
}
