package domain

// DefaultSection is the section tag used when playback is started without one
// and the section the store falls back to when stopped.
const DefaultSection = "main"

// Section tags used by the surfaces shipped with the site
const (
	SectionMain    = DefaultSection
	SectionAlbums  = "albums"
	SectionSingles = "singles"
	SectionLatest  = "latest"
)

// ReleaseType distinguishes singles from albums
type ReleaseType string

const (
	// ReleaseSingle is a single track release
	ReleaseSingle ReleaseType = "single"
	// ReleaseAlbum is a multi-track release
	ReleaseAlbum ReleaseType = "album"
)

// ContentRecord describes a release or media item together with its
// streaming links. Records are owned by the content store and treated as
// read-only by everything else.
type ContentRecord struct {
	ID              string            `json:"id,omitempty"`
	Title           string            `json:"title"`
	Artist          string            `json:"artist,omitempty"`
	FeaturedArtists []string          `json:"featuredArtists,omitempty"`
	CoverArt        string            `json:"coverArt,omitempty"`
	HeroImage       string            `json:"heroImage,omitempty"`
	Links           map[string]string `json:"links,omitempty"`
	PreSaveLinks    map[string]string `json:"preSaveLinks,omitempty"`
	ReleaseDate     string            `json:"releaseDate,omitempty"`
	Type            ReleaseType       `json:"type,omitempty"`
}

// Key returns the identity used to deduplicate records across lists
func (c *ContentRecord) Key() string {
	if c == nil {
		return ""
	}
	if c.ID != "" {
		return c.ID
	}
	return c.Title
}

// Cover returns the cover art, falling back to the hero image
func (c *ContentRecord) Cover() string {
	if c == nil {
		return ""
	}
	if c.CoverArt != "" {
		return c.CoverArt
	}
	return c.HeroImage
}

// PlaybackState is the process-wide record of what is playing.
// It is always replaced as a whole, never mutated in place.
type PlaybackState struct {
	Content   *ContentRecord `json:"content"`
	Section   string         `json:"section"`
	VideoID   string         `json:"videoId,omitempty"`
	IsPlaying bool           `json:"isPlaying"`
}

// EmptyPlaybackState is the state of a stopped store
func EmptyPlaybackState() PlaybackState {
	return PlaybackState{Section: DefaultSection}
}

// Capabilities is the outcome of device classification. The embed
// controller branches on SupportsUnmutedAutoplay only.
type Capabilities struct {
	Mobile                  bool
	Touch                   bool
	SupportsUnmutedAutoplay bool
}

// SessionView is the read model of one embed surface
type SessionView struct {
	Visible          bool   `json:"isVisible"`
	VideoID          string `json:"videoId,omitempty"`
	EmbedURL         string `json:"embedUrl,omitempty"`
	Created          bool   `json:"created"`
	Ready            bool   `json:"ready"`
	FailedToLoad     bool   `json:"failedToLoad"`
	WarningShown     bool   `json:"warningShown"`
	ShowUnmuteButton bool   `json:"showUnmuteButton"`
	Muted            bool   `json:"muted"`
	RetryCount       int    `json:"retryCount"`
	AutoRetryCount   int    `json:"autoRetryCount"`
}
