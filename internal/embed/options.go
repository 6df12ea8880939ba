package embed

import (
	"time"

	"github.com/solowitluv/miniplayer/internal/youtube"
)

// Options tune the controller's timing and retry policy
type Options struct {
	// Host serves the embeddable player
	Host string
	// FrameID identifies the frame in the listening handshake
	FrameID string
	// ReuseSession swaps videos inside a ready player instead of rebuilding it
	ReuseSession bool

	// SettleDelay lets the remote player API initialize after load
	SettleDelay time.Duration
	// CommandRetryDelay spaces attempts of commands issued before readiness
	CommandRetryDelay time.Duration
	MaxDeferrals      int
	// DesktopPlayDelay delays the single play command on desktop
	DesktopPlayDelay time.Duration
	// MobilePlaySchedule lists the escalating play attempts on touch devices
	MobilePlaySchedule []time.Duration
	AutoRetryDelay     time.Duration
	// ReplayDelay separates a manual reload from replaying the play intent
	ReplayDelay    time.Duration
	WarningTimeout time.Duration
	MaxRetries     int
	MaxAutoRetries int
}

// DefaultOptions returns the production policy
func DefaultOptions() Options {
	return Options{
		Host:              youtube.DefaultHost,
		FrameID:           "mini-player",
		ReuseSession:      true,
		SettleDelay:       600 * time.Millisecond,
		CommandRetryDelay: 250 * time.Millisecond,
		MaxDeferrals:      20,
		DesktopPlayDelay:  time.Second,
		MobilePlaySchedule: []time.Duration{
			100 * time.Millisecond,
			500 * time.Millisecond,
			time.Second,
			2 * time.Second,
			3 * time.Second,
		},
		AutoRetryDelay: 500 * time.Millisecond,
		ReplayDelay:    100 * time.Millisecond,
		WarningTimeout: 10 * time.Second,
		MaxRetries:     3,
		MaxAutoRetries: 2,
	}
}
