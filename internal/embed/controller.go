// Package embed drives the embedded video player of one page surface from
// the playback state.
package embed

import (
	"strconv"

	"github.com/solowitluv/miniplayer/internal/domain"
	"github.com/solowitluv/miniplayer/internal/youtube"
	"go.uber.org/zap"
)

// Stopper collapses playback when the embedded video ends
type Stopper interface {
	Stop()
}

// session is the bookkeeping of the embed currently mounted in the frame
type session struct {
	videoID        string
	embedURL       string
	created        bool
	ready          bool
	failed         bool
	warning        bool
	muted          bool
	awaitingUnmute bool
	retryCount     int
	autoRetryCount int
}

// Controller translates playback state changes into embed mutations and
// remote commands. It is not safe for concurrent use: every method must run
// on the engine loop, which is also where its scheduler fires.
type Controller struct {
	logger  *zap.Logger
	frame   domain.Frame
	stopper Stopper
	caps    domain.Capabilities
	opts    Options
	timers  *timerGroup

	// nextCaps waits for the next created embed
	nextCaps *domain.Capabilities

	state domain.PlaybackState
	sess  session
	// rebuilds counts recreations so each rebuilt embed gets a fresh URL
	rebuilds int
}

// NewController creates a controller for one embed surface
func NewController(
	logger *zap.Logger,
	frame domain.Frame,
	sched domain.Scheduler,
	stopper Stopper,
	caps domain.Capabilities,
	opts Options,
) *Controller {
	return &Controller{
		logger:  logger,
		frame:   frame,
		stopper: stopper,
		caps:    caps,
		opts:    opts,
		timers:  newTimerGroup(sched),
		state:   domain.EmptyPlaybackState(),
	}
}

// Sync reacts to a new playback state
func (c *Controller) Sync(next domain.PlaybackState) {
	prev := c.state
	c.state = next

	switch {
	case next.VideoID == "":
		if c.sess.created {
			c.teardown()
		}
	case !c.sess.created || next.VideoID != c.sess.videoID:
		c.switchTo(next.VideoID)
	case prev.IsPlaying != next.IsPlaying:
		c.applyIntent()
	}
}

// OnLoad handles the frame's load-completion signal
func (c *Controller) OnLoad() {
	if !c.sess.created {
		return
	}
	c.logger.Debug("Embed loaded, waiting for player API",
		zap.String("videoId", c.sess.videoID),
		zap.Duration("settle", c.opts.SettleDelay))
	c.timers.after(c.opts.SettleDelay, c.becomeReady)
}

// OnError handles the frame's load-error signal. The first failures are
// retried silently; once the budget is spent the warning is raised.
func (c *Controller) OnError() {
	if !c.sess.created {
		return
	}
	c.sess.failed = true
	c.sess.ready = false

	if c.sess.autoRetryCount >= c.opts.MaxAutoRetries {
		c.logger.Warn("Embed keeps failing, giving up until the user retries",
			zap.String("videoId", c.sess.videoID),
			zap.Int("autoRetries", c.sess.autoRetryCount))
		c.timers.cancelAll()
		c.showWarning()
		return
	}

	c.sess.autoRetryCount++
	c.logger.Info("Embed failed to load, retrying silently",
		zap.String("videoId", c.sess.videoID),
		zap.Int("attempt", c.sess.autoRetryCount))
	c.timers.after(c.opts.AutoRetryDelay, c.silentRetry)

	if c.sess.autoRetryCount >= c.opts.MaxAutoRetries {
		c.showWarning()
	}
}

// OnMessage handles a notification posted by the embedded player. Only
// session-reusing controllers listen to the player.
func (c *Controller) OnMessage(data []byte) {
	if !c.opts.ReuseSession || !c.sess.created {
		return
	}
	msg, err := youtube.ParseMessage(data)
	if err != nil {
		c.logger.Debug("Ignoring player message", zap.Error(err))
		return
	}

	switch {
	case msg.Event == "onReady":
		c.becomeReady()
	case msg.Event == "onError":
		c.OnError()
	case msg.Ended():
		c.logger.Info("Video ended, collapsing player", zap.String("videoId", c.sess.videoID))
		c.stopper.Stop()
	}
}

// Retry reloads the embed with a fresh URL and replays the last play intent.
// It returns false once the manual retry budget is spent.
func (c *Controller) Retry() bool {
	if !c.sess.created {
		return false
	}
	if c.sess.retryCount >= c.opts.MaxRetries {
		c.logger.Info("Manual retry limit reached", zap.Int("retries", c.sess.retryCount))
		c.showWarning()
		return false
	}

	retries := c.sess.retryCount + 1
	c.logger.Info("Retrying embed",
		zap.String("videoId", c.sess.videoID),
		zap.Int("attempt", retries))

	c.create(c.sess.videoID, "retry-"+strconv.Itoa(retries))
	c.sess.retryCount = retries
	c.timers.after(c.opts.ReplayDelay, func() {
		if c.state.IsPlaying {
			c.command(youtube.PlayVideo())
		}
	})
	return true
}

// OnUnmuteClick restores audio after a muted autoplay
func (c *Controller) OnUnmuteClick() {
	if !c.sess.awaitingUnmute {
		return
	}
	c.command(youtube.UnMute())
	c.sess.muted = false
	c.sess.awaitingUnmute = false
}

// DismissWarning hides the blocked-playback warning
func (c *Controller) DismissWarning() {
	c.sess.warning = false
}

// Close tears the embed down when the owning surface goes away
func (c *Controller) Close() {
	if c.sess.created {
		c.teardown()
	}
}

// SetCapabilities installs the classification of the visiting device. It
// applies at once while no embed exists, otherwise from the next created
// embed so a live session never switches autoplay policy.
func (c *Controller) SetCapabilities(caps domain.Capabilities) {
	c.nextCaps = &caps
	if !c.sess.created {
		c.applyCapabilities()
	}
}

func (c *Controller) applyCapabilities() {
	if c.nextCaps == nil {
		return
	}
	c.caps = *c.nextCaps
	c.nextCaps = nil
	c.logger.Debug("Device capabilities applied",
		zap.Bool("mobile", c.caps.Mobile),
		zap.Bool("unmutedAutoplay", c.caps.SupportsUnmutedAutoplay))
}

// Session returns the read model of the surface
func (c *Controller) Session() domain.SessionView {
	return domain.SessionView{
		Visible:          c.state.VideoID != "",
		VideoID:          c.sess.videoID,
		EmbedURL:         c.sess.embedURL,
		Created:          c.sess.created,
		Ready:            c.sess.ready,
		FailedToLoad:     c.sess.failed,
		WarningShown:     c.sess.warning,
		ShowUnmuteButton: c.sess.awaitingUnmute,
		Muted:            c.sess.muted,
		RetryCount:       c.sess.retryCount,
		AutoRetryCount:   c.sess.autoRetryCount,
	}
}

func (c *Controller) mutedAutoplay() bool {
	return !c.caps.SupportsUnmutedAutoplay
}

func (c *Controller) switchTo(videoID string) {
	if c.opts.ReuseSession && c.sess.created && c.sess.ready && !c.sess.failed {
		c.timers.cancelAll()
		c.logger.Info("Loading new video into existing player",
			zap.String("from", c.sess.videoID),
			zap.String("to", videoID))

		c.sess.videoID = videoID
		c.sess.embedURL = c.buildURL(videoID, "")
		c.sess.retryCount = 0
		c.sess.autoRetryCount = 0
		c.sess.warning = false
		c.send(youtube.LoadVideoByID(videoID))
		if !c.state.IsPlaying {
			// loadVideoById starts playback on its own
			c.timers.after(c.opts.SettleDelay, func() {
				if !c.state.IsPlaying {
					c.send(youtube.PauseVideo())
				}
			})
		}
		return
	}

	c.create(videoID, "")
}

// create mounts a fresh embed for videoID and resets the session
func (c *Controller) create(videoID, bust string) {
	c.timers.cancelAll()
	c.applyCapabilities()
	if c.sess.created {
		c.rebuilds++
		if bust == "" {
			bust = strconv.Itoa(c.rebuilds)
		}
	}

	url := c.buildURL(videoID, bust)
	c.sess = session{
		videoID:  videoID,
		embedURL: url,
		created:  true,
		muted:    c.mutedAutoplay(),
	}

	c.logger.Info("Creating embed",
		zap.String("videoId", videoID),
		zap.Bool("mutedAutoplay", c.mutedAutoplay()))

	if err := c.frame.Mount(url); err != nil {
		c.logger.Warn("Failed to mount embed", zap.String("videoId", videoID), zap.Error(err))
		c.OnError()
	}
}

func (c *Controller) buildURL(videoID, bust string) string {
	params := youtube.PlayerParams()
	params.Autoplay = c.mutedAutoplay()
	params.Mute = c.mutedAutoplay()
	params.CacheBust = bust
	return youtube.BuildEmbedURL(c.opts.Host, videoID, params)
}

func (c *Controller) becomeReady() {
	if !c.sess.created || c.sess.ready {
		return
	}
	c.sess.ready = true
	c.sess.failed = false
	c.logger.Debug("Embed ready", zap.String("videoId", c.sess.videoID))

	if c.opts.ReuseSession {
		c.listen()
	}

	if !c.state.IsPlaying {
		if c.mutedAutoplay() {
			// the embed autoplays muted on touch devices
			c.send(youtube.PauseVideo())
		}
		return
	}

	if c.mutedAutoplay() {
		if c.sess.muted {
			c.sess.awaitingUnmute = true
		}
		for _, d := range c.opts.MobilePlaySchedule {
			c.timers.after(d, c.replayIntent)
		}
		return
	}
	c.timers.after(c.opts.DesktopPlayDelay, c.replayIntent)
}

func (c *Controller) replayIntent() {
	if c.state.IsPlaying && c.state.VideoID == c.sess.videoID {
		c.send(youtube.PlayVideo())
	}
}

// silentRetry pauses whatever is left of the player, reloads it and
// re-issues play shortly after. The play command waits for the reloaded
// embed to become ready.
func (c *Controller) silentRetry() {
	c.send(youtube.PauseVideo())

	bust := "auto-" + strconv.Itoa(c.sess.autoRetryCount)
	c.sess.embedURL = c.buildURL(c.sess.videoID, bust)
	c.sess.failed = false
	c.sess.ready = false
	if err := c.frame.Mount(c.sess.embedURL); err != nil {
		c.logger.Warn("Failed to remount embed", zap.Error(err))
	}
	c.timers.after(c.opts.ReplayDelay, func() {
		if c.state.IsPlaying && c.state.VideoID == c.sess.videoID {
			c.command(youtube.PlayVideo())
		}
	})
}

func (c *Controller) applyIntent() {
	if c.state.IsPlaying {
		c.command(youtube.PlayVideo())
		return
	}
	c.command(youtube.PauseVideo())
}

// command sends cmd once the player is ready, deferring it until then
func (c *Controller) command(cmd youtube.Command) {
	c.commandAttempt(cmd, 0)
}

func (c *Controller) commandAttempt(cmd youtube.Command, attempt int) {
	if !c.sess.created {
		return
	}
	if c.sess.ready {
		c.send(cmd)
		return
	}
	if attempt >= c.opts.MaxDeferrals {
		c.logger.Debug("Dropping command, player never became ready", zap.String("func", cmd.Func))
		return
	}
	c.timers.after(c.opts.CommandRetryDelay, func() {
		c.commandAttempt(cmd, attempt+1)
	})
}

// send posts cmd to the frame. Delivery is best effort.
func (c *Controller) send(cmd youtube.Command) {
	data, err := cmd.Encode()
	if err != nil {
		c.logger.Debug("Failed to encode command", zap.Error(err))
		return
	}
	if err := c.frame.Post(data); err != nil {
		c.logger.Debug("Command not delivered",
			zap.String("func", cmd.Func),
			zap.Error(err))
	}
}

func (c *Controller) listen() {
	data, err := youtube.Listening(c.opts.FrameID)
	if err != nil {
		c.logger.Debug("Failed to build listening handshake", zap.Error(err))
		return
	}
	if err := c.frame.Post(data); err != nil {
		c.logger.Debug("Listening handshake not delivered", zap.Error(err))
	}
}

func (c *Controller) showWarning() {
	c.sess.warning = true
	c.timers.after(c.opts.WarningTimeout, func() {
		c.sess.warning = false
	})
}

func (c *Controller) teardown() {
	c.timers.cancelAll()
	c.logger.Info("Tearing down embed", zap.String("videoId", c.sess.videoID))
	if err := c.frame.Unmount(); err != nil {
		c.logger.Debug("Failed to unmount embed", zap.Error(err))
	}
	c.sess = session{}
}
