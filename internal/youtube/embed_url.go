package youtube

import (
	"net/url"
)

// DefaultHost is the host serving the embeddable player
const DefaultHost = "www.youtube.com"

// EmbedParams are the query parameters understood by the embedded player
type EmbedParams struct {
	Autoplay        bool
	Mute            bool
	Controls        bool
	ModestBranding  bool
	Related         bool
	JSAPI           bool
	PlaysInline     bool
	Loop            bool
	DisableKeyboard bool
	NoFullscreen    bool
	// Quality is the suggested playback quality (vq), e.g. "small"
	Quality string
	// CacheBust forces the browser to treat the URL as new
	CacheBust string
}

// PlayerParams returns the parameters used for the mini player: no controls,
// minimal branding, no related videos, JS API and inline playback enabled.
func PlayerParams() EmbedParams {
	return EmbedParams{
		ModestBranding: true,
		JSAPI:          true,
		PlaysInline:    true,
	}
}

// BuildEmbedURL returns https://<host>/embed/<id>?<params>
func BuildEmbedURL(host, videoID string, p EmbedParams) string {
	if host == "" {
		host = DefaultHost
	}
	q := url.Values{}
	q.Set("autoplay", flag(p.Autoplay))
	if p.Mute {
		q.Set("mute", "1")
	}
	q.Set("controls", flag(p.Controls))
	if p.ModestBranding {
		q.Set("modestbranding", "1")
	}
	q.Set("rel", flag(p.Related))
	if p.JSAPI {
		q.Set("enablejsapi", "1")
	}
	if p.PlaysInline {
		q.Set("playsinline", "1")
	}
	if p.Loop {
		// looping a single video only works when it is its own playlist
		q.Set("loop", "1")
		q.Set("playlist", videoID)
	}
	if p.DisableKeyboard {
		q.Set("disablekb", "1")
	}
	if p.NoFullscreen {
		q.Set("fs", "0")
	}
	if p.Quality != "" {
		q.Set("vq", p.Quality)
	}
	if p.CacheBust != "" {
		q.Set("_r", p.CacheBust)
	}

	u := url.URL{
		Scheme:   "https",
		Host:     host,
		Path:     "/embed/" + videoID,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// WatchURL returns the watch page URL for a video identifier
func WatchURL(host, videoID string) string {
	if host == "" {
		host = DefaultHost
	}
	return "https://" + host + "/watch?v=" + url.QueryEscape(videoID)
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
