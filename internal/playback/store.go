// Package playback holds the single source of truth for what is playing.
package playback

import (
	"sync"

	"github.com/solowitluv/miniplayer/internal/domain"
	"github.com/solowitluv/miniplayer/internal/youtube"
	"go.uber.org/zap"
)

// Listener observes every state replacement
type Listener func(domain.PlaybackState)

type subscriber struct {
	id uint64
	fn Listener
}

// Store is the process-wide playback state. State is only ever replaced as a
// whole, so a snapshot taken at any time is consistent. Listeners are called
// synchronously, in subscription order, before the mutating call returns.
type Store struct {
	logger *zap.Logger

	mu     sync.RWMutex
	state  domain.PlaybackState
	subs   []subscriber
	nextID uint64
}

// NewStore creates an empty store
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		logger: logger,
		state:  domain.EmptyPlaybackState(),
	}
}

// Subscribe registers fn for future state changes. It does not replay the
// current state; use CurrentState for an initial value.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// CurrentState returns a snapshot of the current state
func (s *Store) CurrentState() domain.PlaybackState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Play targets content from the given section. Content without a resolvable
// video identifier leaves the state untouched.
func (s *Store) Play(content *domain.ContentRecord, section string) {
	videoID := youtube.ResolveContent(content)
	if videoID == "" {
		s.logger.Debug("Ignoring play request without video link",
			zap.String("title", titleOf(content)))
		return
	}
	s.replace(playingState(content, section, videoID))
}

// Pause keeps the current target but stops transport
func (s *Store) Pause() {
	s.update(pausedState)
}

// Stop resets to the empty state
func (s *Store) Stop() {
	s.replace(domain.EmptyPlaybackState())
}

// Toggle pauses when content is the active, playing video and plays it
// otherwise, so repeated clicks on the same item alternate.
func (s *Store) Toggle(content *domain.ContentRecord, section string) {
	videoID := youtube.ResolveContent(content)
	if videoID == "" {
		s.logger.Debug("Ignoring toggle request without video link",
			zap.String("title", titleOf(content)))
		return
	}
	s.update(func(current domain.PlaybackState) domain.PlaybackState {
		if current.VideoID == videoID && current.IsPlaying {
			return pausedState(current)
		}
		return playingState(content, section, videoID)
	})
}

// IsPlaying reports whether content is playing in exactly this section
func (s *Store) IsPlaying(content *domain.ContentRecord, section string) bool {
	videoID := youtube.ResolveContent(content)
	if videoID == "" {
		return false
	}
	current := s.CurrentState()
	return current.VideoID == videoID &&
		current.Section == sectionOrDefault(section) &&
		current.IsPlaying
}

func (s *Store) replace(next domain.PlaybackState) {
	s.update(func(domain.PlaybackState) domain.PlaybackState { return next })
}

// update computes and stores the next state under one lock, then notifies
// outside of it so listeners may call back into the store
func (s *Store) update(fn func(current domain.PlaybackState) domain.PlaybackState) {
	s.mu.Lock()
	next := fn(s.state)
	s.state = next
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	s.logger.Debug("Playback state replaced",
		zap.String("videoId", next.VideoID),
		zap.String("section", next.Section),
		zap.Bool("playing", next.IsPlaying))

	for _, sub := range subs {
		sub.fn(next)
	}
}

func playingState(content *domain.ContentRecord, section, videoID string) domain.PlaybackState {
	return domain.PlaybackState{
		Content:   content,
		Section:   sectionOrDefault(section),
		VideoID:   videoID,
		IsPlaying: true,
	}
}

func pausedState(current domain.PlaybackState) domain.PlaybackState {
	if current.VideoID == "" {
		return domain.EmptyPlaybackState()
	}
	current.IsPlaying = false
	return current
}

func sectionOrDefault(section string) string {
	if section == "" {
		return domain.DefaultSection
	}
	return section
}

func titleOf(c *domain.ContentRecord) string {
	if c == nil {
		return ""
	}
	return c.Title
}
