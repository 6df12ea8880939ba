// Package platform classifies the visiting device once, so the rest of the
// system can branch on a single capability flag.
package platform

import (
	"regexp"
	"strings"

	"github.com/mssola/useragent"
	"github.com/solowitluv/miniplayer/internal/domain"
	"go.uber.org/zap"
)

var mobilePattern = regexp.MustCompile(`(?i)android|webos|iphone|ipad|ipod|blackberry|iemobile|opera mini`)

// Device is what the page reports about the browser it runs in
type Device struct {
	UserAgent      string `json:"userAgent" mapstructure:"user_agent"`
	MaxTouchPoints int    `json:"maxTouchPoints" mapstructure:"max_touch_points"`
	// Platform is navigator.platform, e.g. "MacIntel"
	Platform string `json:"platform" mapstructure:"platform"`
}

// Detect classifies the device. Touch platforms only allow muted autoplay,
// everything else is assumed to accept an unmuted play command.
func Detect(logger *zap.Logger, d Device) domain.Capabilities {
	touch := d.MaxTouchPoints > 0
	mobile := mobilePattern.MatchString(d.UserAgent) ||
		isTabletInDisguise(d) ||
		(d.UserAgent != "" && useragent.New(d.UserAgent).Mobile())

	caps := domain.Capabilities{
		Mobile:                  mobile,
		Touch:                   touch || mobile,
		SupportsUnmutedAutoplay: !mobile,
	}

	logger.Info("Device classified",
		zap.Bool("mobile", caps.Mobile),
		zap.Bool("touch", caps.Touch),
		zap.Bool("unmutedAutoplay", caps.SupportsUnmutedAutoplay))

	return caps
}

// isTabletInDisguise catches iPads that report a desktop Safari user agent
func isTabletInDisguise(d Device) bool {
	return strings.EqualFold(d.Platform, "MacIntel") && d.MaxTouchPoints > 1
}

// Merge fills the page report with any field set in override. Operators use
// the override to pin a device class regardless of what the page says.
func Merge(page, override Device) Device {
	if override.UserAgent != "" {
		page.UserAgent = override.UserAgent
	}
	if override.MaxTouchPoints != 0 {
		page.MaxTouchPoints = override.MaxTouchPoints
	}
	if override.Platform != "" {
		page.Platform = override.Platform
	}
	return page
}
