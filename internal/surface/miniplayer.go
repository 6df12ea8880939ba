package surface

import (
	"github.com/samber/lo"
	"github.com/solowitluv/miniplayer/internal/domain"
	"go.uber.org/zap"
)

const unknownTrack = "Unknown Track"

// MiniPlayerView is everything the persistent player bar renders
type MiniPlayerView struct {
	Visible         bool               `json:"visible"`
	Title           string             `json:"title"`
	Artist          string             `json:"artist"`
	FeaturedArtists []string           `json:"featuredArtists,omitempty"`
	Cover           string             `json:"cover,omitempty"`
	Section         string             `json:"section"`
	IsPlaying       bool               `json:"isPlaying"`
	Links           map[string]string  `json:"links,omitempty"`
	Session         domain.SessionView `json:"session"`
}

// MiniPlayer is the singleton surface bound to the playback store
type MiniPlayer struct {
	logger  *zap.Logger
	store   Playback
	session EmbedSession
}

// NewMiniPlayer creates the mini player surface
func NewMiniPlayer(logger *zap.Logger, store Playback, session EmbedSession) *MiniPlayer {
	return &MiniPlayer{
		logger:  logger,
		store:   store,
		session: session,
	}
}

// View derives the player bar from the current state
func (m *MiniPlayer) View() MiniPlayerView {
	state := m.store.CurrentState()
	view := MiniPlayerView{
		Visible:   state.VideoID != "",
		Title:     unknownTrack,
		Section:   state.Section,
		IsPlaying: state.IsPlaying,
		Session:   m.session.Session(),
	}
	if c := state.Content; c != nil {
		if c.Title != "" {
			view.Title = c.Title
		}
		view.Artist = c.Artist
		view.FeaturedArtists = c.FeaturedArtists
		view.Cover = c.Cover()
		view.Links = streamingLinks(c)
	}
	return view
}

// StreamingLink returns the link for platform, preferring released links
// over pre-save links
func (m *MiniPlayer) StreamingLink(platform string) string {
	c := m.store.CurrentState().Content
	if c == nil {
		return ""
	}
	return streamingLinks(c)[platform]
}

// Close stops playback and hides the player
func (m *MiniPlayer) Close() {
	m.store.Stop()
}

// Toggle pauses a playing track or resumes the paused one
func (m *MiniPlayer) Toggle() {
	state := m.store.CurrentState()
	if state.IsPlaying {
		m.store.Pause()
		return
	}
	if state.Content != nil {
		m.store.Play(state.Content, state.Section)
	}
}

// Retry reloads a failed embed
func (m *MiniPlayer) Retry() bool {
	ok := m.session.Retry()
	if !ok {
		m.logger.Debug("Retry refused")
	}
	return ok
}

// Unmute restores audio after a muted autoplay
func (m *MiniPlayer) Unmute() {
	m.session.OnUnmuteClick()
}

// DismissWarning hides the blocked-playback warning
func (m *MiniPlayer) DismissWarning() {
	m.session.DismissWarning()
}

func streamingLinks(c *domain.ContentRecord) map[string]string {
	return lo.Assign(c.PreSaveLinks, c.Links)
}
