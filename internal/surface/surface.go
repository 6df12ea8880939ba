// Package surface holds the UI-facing adapters over the playback store: the
// mini player and the inline release lists. Like the embed controller they
// are meant to be driven from the engine loop.
package surface

import (
	"github.com/solowitluv/miniplayer/internal/domain"
)

// Playback is the slice of the playback store surfaces act on
type Playback interface {
	CurrentState() domain.PlaybackState
	Play(content *domain.ContentRecord, section string)
	Pause()
	Stop()
	Toggle(content *domain.ContentRecord, section string)
	IsPlaying(content *domain.ContentRecord, section string) bool
}

// EmbedSession is the embed surface backing the mini player
type EmbedSession interface {
	Session() domain.SessionView
	Retry() bool
	OnUnmuteClick()
	DismissWarning()
}
