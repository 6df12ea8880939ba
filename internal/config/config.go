package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	envPrefix          = "MINIPLAYER"
	configName         = "miniplayer"
	defaultListenAddr  = "127.0.0.1:8080"
	defaultContentDir  = "./content"
	defaultLatestCount = 4
	defaultEmbedHost   = "www.youtube.com"
)

// PlayerConfig tunes the embed controller
type PlayerConfig struct {
	Host               string          `mapstructure:"host"`
	FrameID            string          `mapstructure:"frame_id"`
	ReuseSession       bool            `mapstructure:"reuse_session"`
	SettleDelay        time.Duration   `mapstructure:"settle_delay"`
	CommandRetryDelay  time.Duration   `mapstructure:"command_retry_delay"`
	MaxDeferrals       int             `mapstructure:"max_deferrals"`
	DesktopPlayDelay   time.Duration   `mapstructure:"desktop_play_delay"`
	MobilePlaySchedule []time.Duration `mapstructure:"mobile_play_schedule"`
	AutoRetryDelay     time.Duration   `mapstructure:"auto_retry_delay"`
	ReplayDelay        time.Duration   `mapstructure:"replay_delay"`
	WarningTimeout     time.Duration   `mapstructure:"warning_timeout"`
	MaxRetries         int             `mapstructure:"max_retries"`
	MaxAutoRetries     int             `mapstructure:"max_auto_retries"`
}

// ContentConfig locates the content store
type ContentConfig struct {
	Dir        string        `mapstructure:"dir"`
	ReleaseAPI string        `mapstructure:"release_api"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// DeviceConfig describes the browser the bridge serves
type DeviceConfig struct {
	UserAgent      string `mapstructure:"user_agent"`
	MaxTouchPoints int    `mapstructure:"max_touch_points"`
	Platform       string `mapstructure:"platform"`
}

type settings struct {
	ListenAddr  string        `mapstructure:"listen_addr"`
	LatestCount int           `mapstructure:"latest_count"`
	Player      PlayerConfig  `mapstructure:"player"`
	Content     ContentConfig `mapstructure:"content"`
	Device      DeviceConfig  `mapstructure:"device"`
}

// AppConfig holds application configuration
type AppConfig struct {
	logger *zap.Logger
	s      settings
}

// NewAppConfig loads configuration: defaults, then an optional
// miniplayer.{yaml,toml,json} file, then MINIPLAYER_* environment variables
// (MINIPLAYER_PLAYER_SETTLE_DELAY=800ms overrides player.settle_delay).
func NewAppConfig(logger *zap.Logger, fs afero.Fs) (*AppConfig, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigName(configName)
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/miniplayer")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		logger.Debug("No config file found, using defaults and environment")
	}

	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	s.Content.Dir = expandPath(s.Content.Dir)

	logger.Info("Configuration loaded",
		zap.String("configFile", v.ConfigFileUsed()),
		zap.String("listenAddr", s.ListenAddr),
		zap.String("contentDir", s.Content.Dir),
		zap.Bool("releaseApi", s.Content.ReleaseAPI != ""),
		zap.Bool("reuseSession", s.Player.ReuseSession))

	return &AppConfig{logger: logger, s: s}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", defaultListenAddr)
	v.SetDefault("latest_count", defaultLatestCount)

	v.SetDefault("player.host", defaultEmbedHost)
	v.SetDefault("player.frame_id", "mini-player")
	v.SetDefault("player.reuse_session", true)
	v.SetDefault("player.settle_delay", 600*time.Millisecond)
	v.SetDefault("player.command_retry_delay", 250*time.Millisecond)
	v.SetDefault("player.max_deferrals", 20)
	v.SetDefault("player.desktop_play_delay", time.Second)
	v.SetDefault("player.mobile_play_schedule", []string{"100ms", "500ms", "1s", "2s", "3s"})
	v.SetDefault("player.auto_retry_delay", 500*time.Millisecond)
	v.SetDefault("player.replay_delay", 100*time.Millisecond)
	v.SetDefault("player.warning_timeout", 10*time.Second)
	v.SetDefault("player.max_retries", 3)
	v.SetDefault("player.max_auto_retries", 2)

	v.SetDefault("content.dir", defaultContentDir)
	v.SetDefault("content.release_api", "")
	v.SetDefault("content.timeout", 10*time.Second)

	v.SetDefault("device.user_agent", "")
	v.SetDefault("device.max_touch_points", 0)
	v.SetDefault("device.platform", "")
}

func (s settings) validate() error {
	switch {
	case s.Player.MaxRetries < 0 || s.Player.MaxAutoRetries < 0:
		return fmt.Errorf("retry limits must not be negative")
	case s.Player.SettleDelay < 0 || s.Player.WarningTimeout <= 0:
		return fmt.Errorf("invalid player delays")
	case s.LatestCount <= 0:
		return fmt.Errorf("latest_count must be positive, got %d", s.LatestCount)
	}
	return nil
}

// expandPath resolves environment variables and a leading ~
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if len(p) > 0 && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return p
}

// GetListenAddr returns the address the bridge listens on
func (c *AppConfig) GetListenAddr() string {
	return c.s.ListenAddr
}

// GetEmbedHost returns the video platform host used in embed URLs
func (c *AppConfig) GetEmbedHost() string {
	return c.s.Player.Host
}

// GetContentDir returns the directory holding static content documents
func (c *AppConfig) GetContentDir() string {
	return c.s.Content.Dir
}

// GetReleaseAPI returns the release API base URL; empty disables the API
func (c *AppConfig) GetReleaseAPI() string {
	return c.s.Content.ReleaseAPI
}

// GetLatestCount returns how many releases the latest strip shows
func (c *AppConfig) GetLatestCount() int {
	return c.s.LatestCount
}

// GetContentTimeout returns the HTTP timeout for content requests
func (c *AppConfig) GetContentTimeout() time.Duration {
	return c.s.Content.Timeout
}

// Player returns the embed controller settings
func (c *AppConfig) Player() PlayerConfig {
	return c.s.Player
}

// Device returns the configured browser description
func (c *AppConfig) Device() DeviceConfig {
	return c.s.Device
}
