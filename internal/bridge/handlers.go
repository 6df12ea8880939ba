package bridge

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/solowitluv/miniplayer/internal/domain"
	"github.com/solowitluv/miniplayer/internal/platform"
	"github.com/solowitluv/miniplayer/internal/surface"
	"go.uber.org/zap"
)

const maxEventBody = 64 << 10

type playRequest struct {
	Section string `json:"section"`
	Key     string `json:"key"`
}

// Event types reported by the page
const (
	EventLoad    = "load"
	EventError   = "error"
	EventMessage = "message"
	EventDevice  = "device"
)

var (
	errUnknownItem  = errors.New("unknown or unplayable item")
	errNotActive    = errors.New("item is not playing in this section")
	errRetryRefused = errors.New("retry refused")
)

type embedEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (s *Server) handlePlaybackState(w http.ResponseWriter, r *http.Request) {
	var state domain.PlaybackState
	if !s.call(w, r, func() { state = s.deps.Store.CurrentState() }) {
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	s.handleRecordOp(w, r, s.deps.Store.Play)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	s.handleRecordOp(w, r, s.deps.Store.Toggle)
}

// handleRecordOp resolves {section, key} against the catalog and applies op
func (s *Server) handleRecordOp(w http.ResponseWriter, r *http.Request, op func(*domain.ContentRecord, string)) {
	var req playRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}

	var (
		found  bool
		state  domain.PlaybackState
		device = s.requestDevice(r)
	)
	if !s.call(w, r, func() {
		if device != nil {
			device()
		}
		var record *domain.ContentRecord
		record, found = s.deps.Releases.Find(req.Key)
		if found {
			op(record, req.Section)
		}
		state = s.deps.Store.CurrentState()
	}) {
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "unknown content")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.handleStoreOp(w, r, s.deps.Store.Pause)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.handleStoreOp(w, r, s.deps.Store.Stop)
}

func (s *Server) handleStoreOp(w http.ResponseWriter, r *http.Request, op func()) {
	var state domain.PlaybackState
	if !s.call(w, r, func() {
		op()
		state = s.deps.Store.CurrentState()
	}) {
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handlePlayerView(w http.ResponseWriter, r *http.Request) {
	s.playerAction(w, r, nil)
}

func (s *Server) handlePlayerToggle(w http.ResponseWriter, r *http.Request) {
	s.playerAction(w, r, s.deps.Player.Toggle)
}

func (s *Server) handlePlayerClose(w http.ResponseWriter, r *http.Request) {
	s.playerAction(w, r, s.deps.Player.Close)
}

func (s *Server) handlePlayerRetry(w http.ResponseWriter, r *http.Request) {
	var accepted bool
	var view surface.MiniPlayerView
	if !s.call(w, r, func() {
		accepted = s.deps.Player.Retry()
		view = s.deps.Player.View()
	}) {
		return
	}
	if !accepted {
		writeError(w, http.StatusConflict, "retry limit reached")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handlePlayerUnmute(w http.ResponseWriter, r *http.Request) {
	s.playerAction(w, r, s.deps.Player.Unmute)
}

func (s *Server) handlePlayerDismiss(w http.ResponseWriter, r *http.Request) {
	s.playerAction(w, r, s.deps.Player.DismissWarning)
}

// playerAction runs action, if any, and answers with the resulting view
func (s *Server) playerAction(w http.ResponseWriter, r *http.Request, action func()) {
	var view surface.MiniPlayerView
	if !s.call(w, r, func() {
		if action != nil {
			action()
		}
		view = s.deps.Player.View()
	}) {
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.listAction(w, r, chi.URLParam(r, "section"), nil)
}

// handleListReload fetches the releases again after a failed load
func (s *Server) handleListReload(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")

	var known bool
	if !s.call(w, r, func() { _, known = s.deps.Releases.List(section) }) {
		return
	}
	if !known {
		writeError(w, http.StatusNotFound, "unknown section")
		return
	}
	if s.deps.Content == nil {
		writeError(w, http.StatusServiceUnavailable, "content source unavailable")
		return
	}

	if err := s.deps.Releases.Load(r.Context(), s.deps.Content, s.deps.Runner.Do); err != nil {
		s.logger.Warn("Release reload failed", zap.String("section", section), zap.Error(err))
		writeError(w, http.StatusBadGateway, "content unavailable")
		return
	}
	s.listAction(w, r, section, nil)
}

func (s *Server) handleListToggle(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	device := s.requestDevice(r)
	s.listAction(w, r, chi.URLParam(r, "section"), func(l *surface.List) error {
		if device != nil {
			device()
		}
		if !l.Toggle(key) {
			return errUnknownItem
		}
		return nil
	})
}

func (s *Server) handleListExpand(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	s.listAction(w, r, chi.URLParam(r, "section"), func(l *surface.List) error {
		if !l.ToggleExpanded(key) {
			return errUnknownItem
		}
		return nil
	})
}

func (s *Server) handleListCollapse(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	s.listAction(w, r, chi.URLParam(r, "section"), func(l *surface.List) error {
		if !l.Collapse(key) {
			return errUnknownItem
		}
		return nil
	})
}

// handleListRetry rebuilds the embed of the row playing in this section
func (s *Server) handleListRetry(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	s.listAction(w, r, chi.URLParam(r, "section"), func(l *surface.List) error {
		if !l.Active(key) {
			return errNotActive
		}
		if !s.deps.Player.Retry() {
			return errRetryRefused
		}
		return nil
	})
}

// listAction runs action on the section's list and answers with its view
func (s *Server) listAction(w http.ResponseWriter, r *http.Request, section string, action func(*surface.List) error) {
	var (
		known = true
		err   error
		view  surface.ListView
	)
	if !s.call(w, r, func() {
		list, found := s.deps.Releases.List(section)
		if !found {
			known = false
			return
		}
		if action != nil {
			err = action(list)
		}
		view = list.View()
	}) {
		return
	}
	switch {
	case !known:
		writeError(w, http.StatusNotFound, "unknown section")
	case errors.Is(err, errUnknownItem):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeJSON(w, http.StatusOK, view)
	}
}

func (s *Server) handleEmbedCommands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Outbox.Drain())
}

func (s *Server) handleEmbedEvent(w http.ResponseWriter, r *http.Request) {
	var ev embedEvent
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBody)).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid event body")
		return
	}

	var dispatch func()
	switch ev.Type {
	case EventLoad:
		dispatch = s.deps.Embed.OnLoad
	case EventError:
		dispatch = s.deps.Embed.OnError
	case EventMessage:
		data := messageData(ev.Data)
		dispatch = func() { s.deps.Embed.OnMessage(data) }
	case EventDevice:
		var d platform.Device
		if len(ev.Data) > 0 {
			if err := json.Unmarshal(ev.Data, &d); err != nil {
				writeError(w, http.StatusBadRequest, "invalid device report")
				return
			}
		}
		if d.UserAgent == "" {
			d.UserAgent = r.UserAgent()
		}
		caps := s.deps.Classify(d)
		s.deviceKnown.Store(true)
		dispatch = func() { s.deps.Embed.SetCapabilities(caps) }
	default:
		writeError(w, http.StatusBadRequest, "unknown event type")
		return
	}

	if !s.call(w, r, dispatch) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// messageData unwraps postMessage payloads the page forwards as strings
func messageData(raw json.RawMessage) []byte {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return []byte(text)
	}
	return raw
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}
