// Package bridge exposes the player to the browser page hosting the iframe.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/solowitluv/miniplayer/internal/domain"
	"github.com/solowitluv/miniplayer/internal/platform"
	"github.com/solowitluv/miniplayer/internal/surface"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const readHeaderTimeout = 5 * time.Second

// Runner executes work on the engine loop. Call waits for fn, Do only
// queues it.
type Runner interface {
	Call(ctx context.Context, fn func()) error
	Do(fn func())
}

// EmbedEvents receives what the page observes on the iframe
type EmbedEvents interface {
	OnLoad()
	OnError()
	OnMessage(data []byte)
	SetCapabilities(caps domain.Capabilities)
}

// Classifier turns a device report into capabilities
type Classifier func(platform.Device) domain.Capabilities

// Deps are the collaborators the bridge routes to
type Deps struct {
	Runner   Runner
	Store    surface.Playback
	Player   *surface.MiniPlayer
	Releases *surface.Releases
	Content  domain.ContentSource
	Embed    EmbedEvents
	Outbox   *Outbox
	Classify Classifier
}

// Server is the HTTP bridge
type Server struct {
	logger *zap.Logger
	router chi.Router
	deps   Deps
	addr   string
	srv    *http.Server

	// deviceKnown is set once the device was classified from the page
	deviceKnown atomic.Bool
}

// New creates the bridge listening on addr
func New(logger *zap.Logger, cfg domain.Config, deps Deps) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	if deps.Classify == nil {
		deps.Classify = func(d platform.Device) domain.Capabilities {
			return platform.Detect(logger.Named("platform"), d)
		}
	}
	s := &Server{
		logger: logger,
		router: r,
		deps:   deps,
		addr:   cfg.GetListenAddr(),
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Route("/api/playback", func(r chi.Router) {
		r.Get("/", s.handlePlaybackState)
		r.Post("/play", s.handlePlay)
		r.Post("/toggle", s.handleToggle)
		r.Post("/pause", s.handlePause)
		r.Post("/stop", s.handleStop)
	})
	s.router.Route("/api/player", func(r chi.Router) {
		r.Get("/", s.handlePlayerView)
		r.Post("/toggle", s.handlePlayerToggle)
		r.Post("/close", s.handlePlayerClose)
		r.Post("/retry", s.handlePlayerRetry)
		r.Post("/unmute", s.handlePlayerUnmute)
		r.Post("/dismiss", s.handlePlayerDismiss)
	})
	s.router.Route("/api/lists/{section}", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/retry", s.handleListReload)
		r.Post("/{key}/toggle", s.handleListToggle)
		r.Post("/{key}/expand", s.handleListExpand)
		r.Post("/{key}/collapse", s.handleListCollapse)
		r.Post("/{key}/retry", s.handleListRetry)
	})
	s.router.Get("/api/embed/commands", s.handleEmbedCommands)
	s.router.Post("/api/embed/events", s.handleEmbedEvent)
	s.router.Get("/api/health", s.handleHealth)
}

// Start listens on the configured address and serves in the background
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.srv = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s.logger.Info("Bridge listening", zap.String("addr", ln.Addr().String()))
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Bridge server failed", zap.Error(err))
		}
	}()
	return nil
}

// Shutdown stops the server and closes the outbox
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.srv != nil {
		err = s.srv.Shutdown(ctx)
	}
	if s.deps.Outbox != nil {
		err = multierr.Append(err, s.deps.Outbox.Close())
	}
	return err
}

// call runs fn on the engine loop, answering 503 when the loop is gone
func (s *Server) call(w http.ResponseWriter, r *http.Request, fn func()) bool {
	if err := s.deps.Runner.Call(r.Context(), fn); err != nil {
		s.logger.Warn("Engine call failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "player unavailable")
		return false
	}
	return true
}

// requestDevice classifies the request's User-Agent when the page has not
// reported its device yet. The returned func applies the result on the loop
// and is nil when there is nothing to apply.
func (s *Server) requestDevice(r *http.Request) func() {
	ua := r.UserAgent()
	if ua == "" || s.deps.Embed == nil || !s.deviceKnown.CompareAndSwap(false, true) {
		return nil
	}
	caps := s.deps.Classify(platform.Device{UserAgent: ua})
	return func() { s.deps.Embed.SetCapabilities(caps) }
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
