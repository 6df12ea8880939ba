package domain

import (
	"context"
	"time"
)

// Frame is the page element hosting the cross-origin video player.
// The embedded document is opaque: it can only be (re)mounted with a URL,
// sent messages, and removed.
//
//go:generate mockgen -destination=mocks/frame_mock.go -package=mocks github.com/solowitluv/miniplayer/internal/domain Frame
type Frame interface {
	// Mount creates the embed element, or replaces its source, with embedURL
	Mount(embedURL string) error

	// Post delivers a message to the embedded document's message channel
	Post(message []byte) error

	// Unmount removes the embed element from the page
	Unmount() error
}

// Scheduler runs fn after d on the caller's logical thread.
// The returned stop function cancels fn if it has not run yet.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

// ContentSource yields the release records a list surface renders
//
//go:generate mockgen -destination=mocks/content_source_mock.go -package=mocks github.com/solowitluv/miniplayer/internal/domain ContentSource
type ContentSource interface {
	// Releases returns all known release records or an error
	Releases(ctx context.Context) ([]ContentRecord, error)
}

// Config defines the interface for application configuration
type Config interface {
	// GetListenAddr returns the address the bridge listens on
	GetListenAddr() string

	// GetEmbedHost returns the video platform host used in embed URLs
	GetEmbedHost() string

	// GetContentDir returns the directory holding static content documents
	GetContentDir() string

	// GetReleaseAPI returns the release API base URL; empty disables the API
	GetReleaseAPI() string

	// GetLatestCount returns how many releases the latest strip shows
	GetLatestCount() int
}
