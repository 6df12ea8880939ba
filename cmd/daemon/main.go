package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/solowitluv/miniplayer/internal/bridge"
	"github.com/solowitluv/miniplayer/internal/config"
	"github.com/solowitluv/miniplayer/internal/content"
	"github.com/solowitluv/miniplayer/internal/domain"
	"github.com/solowitluv/miniplayer/internal/embed"
	"github.com/solowitluv/miniplayer/internal/engine"
	"github.com/solowitluv/miniplayer/internal/platform"
	"github.com/solowitluv/miniplayer/internal/playback"
	"github.com/solowitluv/miniplayer/internal/surface"
	"github.com/spf13/afero"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const outboxSize = 64

// AppOptions is the dependency graph shared by main and its tests
var AppOptions = fx.Options(
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log}
	}),

	fx.Provide(
		newLogger,
		newFs,
		config.NewAppConfig,
		asConfig,
		clockwork.NewRealClock,
		engine.NewEngine,
		asScheduler,
		playback.NewStore,
		newCapabilities,
		newClassifier,
		newEmbedOptions,
		newOutbox,
		newController,
		newFetcher,
		content.NewStore,
		newMiniPlayer,
		newReleases,
		newBridge,
	),

	fx.Invoke(registerHooks),
)

func main() {
	app := fx.New(AppOptions)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		panic(err)
	}

	<-ctx.Done()

	if err := app.Stop(context.Background()); err != nil {
		panic(err)
	}
}

// newLogger creates a new zap logger instance
func newLogger() (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return logger, nil
}

func newFs() afero.Fs {
	return afero.NewOsFs()
}

func asConfig(cfg *config.AppConfig) domain.Config {
	return cfg
}

func asScheduler(e *engine.Engine) domain.Scheduler {
	return e
}

// newCapabilities is the classification used until the page reports its
// device. Without a configured override it describes a desktop browser.
func newCapabilities(logger *zap.Logger, cfg *config.AppConfig) domain.Capabilities {
	return platform.Detect(logger.Named("platform"), deviceOverride(cfg))
}

// newClassifier classifies page reports, letting configured fields win
func newClassifier(logger *zap.Logger, cfg *config.AppConfig) bridge.Classifier {
	override := deviceOverride(cfg)
	return func(page platform.Device) domain.Capabilities {
		return platform.Detect(logger.Named("platform"), platform.Merge(page, override))
	}
}

func deviceOverride(cfg *config.AppConfig) platform.Device {
	d := cfg.Device()
	return platform.Device{
		UserAgent:      d.UserAgent,
		MaxTouchPoints: d.MaxTouchPoints,
		Platform:       d.Platform,
	}
}

// newEmbedOptions maps the player settings onto the controller policy
func newEmbedOptions(cfg *config.AppConfig) embed.Options {
	p := cfg.Player()
	opts := embed.Options{
		Host:               cfg.GetEmbedHost(),
		FrameID:            p.FrameID,
		ReuseSession:       p.ReuseSession,
		SettleDelay:        p.SettleDelay,
		CommandRetryDelay:  p.CommandRetryDelay,
		MaxDeferrals:       p.MaxDeferrals,
		DesktopPlayDelay:   p.DesktopPlayDelay,
		MobilePlaySchedule: p.MobilePlaySchedule,
		AutoRetryDelay:     p.AutoRetryDelay,
		ReplayDelay:        p.ReplayDelay,
		WarningTimeout:     p.WarningTimeout,
		MaxRetries:         p.MaxRetries,
		MaxAutoRetries:     p.MaxAutoRetries,
	}
	if len(opts.MobilePlaySchedule) == 0 {
		opts.MobilePlaySchedule = embed.DefaultOptions().MobilePlaySchedule
	}
	return opts
}

func newOutbox(logger *zap.Logger) *bridge.Outbox {
	return bridge.NewOutbox(logger.Named("outbox"), outboxSize)
}

func newController(
	logger *zap.Logger,
	outbox *bridge.Outbox,
	sched domain.Scheduler,
	store *playback.Store,
	caps domain.Capabilities,
	opts embed.Options,
) *embed.Controller {
	return embed.NewController(logger.Named("embed"), outbox, sched, store, caps, opts)
}

func newFetcher(logger *zap.Logger, cfg *config.AppConfig) content.Fetcher {
	return content.NewHTTPFetcher(logger.Named("fetcher"), cfg.GetContentTimeout())
}

func newMiniPlayer(logger *zap.Logger, store *playback.Store, ctrl *embed.Controller) *surface.MiniPlayer {
	return surface.NewMiniPlayer(logger.Named("player"), store, ctrl)
}

func newReleases(logger *zap.Logger, store *playback.Store, cfg domain.Config) *surface.Releases {
	return surface.NewReleases(logger.Named("releases"), store, cfg.GetLatestCount())
}

type bridgeParams struct {
	fx.In

	Logger   *zap.Logger
	Config   domain.Config
	Engine   *engine.Engine
	Store    *playback.Store
	Player   *surface.MiniPlayer
	Releases *surface.Releases
	Content  *content.Store
	Ctrl     *embed.Controller
	Outbox   *bridge.Outbox
	Classify bridge.Classifier
}

func newBridge(p bridgeParams) *bridge.Server {
	return bridge.New(p.Logger.Named("bridge"), p.Config, bridge.Deps{
		Runner:   p.Engine,
		Store:    p.Store,
		Player:   p.Player,
		Releases: p.Releases,
		Content:  p.Content,
		Embed:    p.Ctrl,
		Outbox:   p.Outbox,
		Classify: p.Classify,
	})
}

type hookParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Logger    *zap.Logger
	Engine    *engine.Engine
	Store     *playback.Store
	Ctrl      *embed.Controller
	Content   *content.Store
	Releases  *surface.Releases
	Bridge    *bridge.Server
}

// registerHooks sets up application lifecycle hooks
func registerHooks(p hookParams) {
	var (
		unsubscribe func()
		cancelLoad  context.CancelFunc = func() {}
	)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := p.Engine.Start(ctx); err != nil {
				return err
			}
			if err := p.Engine.Call(ctx, func() {
				unsubscribe = p.Store.Subscribe(p.Ctrl.Sync)
			}); err != nil {
				return err
			}

			var loadCtx context.Context
			loadCtx, cancelLoad = context.WithCancel(context.Background())
			go loadContent(loadCtx, p)

			if err := p.Bridge.Start(ctx); err != nil {
				return err
			}
			p.Logger.Info("Mini player daemon started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Logger.Info("Shutting down")
			cancelLoad()

			err := p.Bridge.Shutdown(ctx)
			callErr := p.Engine.Call(ctx, func() {
				p.Ctrl.Close()
				if unsubscribe != nil {
					unsubscribe()
				}
			})
			if !errors.Is(callErr, engine.ErrStopped) {
				err = multierr.Append(err, callErr)
			}
			return multierr.Append(err, p.Engine.Stop(ctx))
		},
	})
}

// loadContent fills the release lists and checks the static documents
func loadContent(ctx context.Context, p hookParams) {
	if err := p.Releases.Load(ctx, p.Content, p.Engine.Do); err != nil {
		p.Logger.Warn("Release lists unavailable", zap.Error(err))
	}
	if err := p.Content.Preload(ctx); err != nil {
		p.Logger.Warn("Content preload failed", zap.Error(err))
	}
}
