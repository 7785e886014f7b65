// Package api exposes the wiggle engine over HTTP so the CLI, the terminal
// UI and scripts can drive a running instance.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/stigoleg/wiggler/internal/config"
	"github.com/stigoleg/wiggler/internal/events"
	"github.com/stigoleg/wiggler/internal/logger"
	"github.com/stigoleg/wiggler/internal/util"
	"github.com/stigoleg/wiggler/internal/wiggle"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Engine is the part of the wiggler the server drives.
type Engine interface {
	IsReady() bool
	IsWiggling() bool
	StartTimed(d time.Duration) error
	StopWiggle() error
	SetConfig(move, wait float64) error
	GetConfig() config.Wiggle
	GetMoveSpeed() float64
	GetWaitTime() float64
	Settings() config.Settings
	TimeRemaining() time.Duration
	Health() wiggle.Health
	Cycles() int64
	Window() wiggle.Window
	SetWindowSmall()
	SetWindowLarge()
	Events() *events.Bus
}

// State is the snapshot returned by GET /api/state.
type State struct {
	Ready            bool          `json:"ready"`
	Wiggling         bool          `json:"wiggling"`
	Config           config.Wiggle `json:"config"`
	Mode             config.Mode   `json:"mode"`
	Health           wiggle.Health `json:"health"`
	Cycles           int64         `json:"cycles"`
	RemainingSeconds float64       `json:"remainingSeconds,omitempty"`
	Window           wiggle.Window `json:"window"`
}

// StartRequest is the optional body of POST /api/wiggle/start.
type StartRequest struct {
	Duration string `json:"duration,omitempty"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server represents the HTTP API server
type Server struct {
	router   *mux.Router
	engine   Engine
	upgrader websocket.Upgrader
	log      *zerolog.Logger

	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a new API server
func NewServer(engine Engine) *Server {
	s := &Server{
		router: mux.NewRouter(),
		engine: engine,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return isLocalOrigin(r)
			},
		},
		log: logger.WithComponent("api"),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)

	api.HandleFunc("/wiggle", s.handleIsWiggling).Methods(http.MethodGet)
	api.HandleFunc("/wiggle/start", s.handleStart).Methods(http.MethodPost)
	api.HandleFunc("/wiggle/stop", s.handleStop).Methods(http.MethodPost)

	api.HandleFunc("/config", s.handleGetConfig).Methods(http.MethodGet)
	api.HandleFunc("/config", s.handleSetConfig).Methods(http.MethodPut)
	api.HandleFunc("/config/move-speed", s.handleMoveSpeed).Methods(http.MethodGet)
	api.HandleFunc("/config/wait-time", s.handleWaitTime).Methods(http.MethodGet)

	api.HandleFunc("/window", s.handleGetWindow).Methods(http.MethodGet)
	api.HandleFunc("/window/small", s.handleWindowSmall).Methods(http.MethodPost)
	api.HandleFunc("/window/large", s.handleWindowLarge).Methods(http.MethodPost)

	api.HandleFunc("/events", s.handleEvents)

	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

// Handler returns the routed handler with request logging applied.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.router)
}

// Start listens on addr and serves in the background. It returns once the
// listener is bound so callers can report the real address.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info().Str("addr", ln.Addr().String()).Msg("api listening")
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("api server stopped")
		}
	}()
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting requests and waits for in-flight ones.
// Websocket streams end when the engine closes its event bus.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"ready":  s.engine.IsReady(),
		"health": s.engine.Health(),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) state() State {
	st := State{
		Ready:    s.engine.IsReady(),
		Wiggling: s.engine.IsWiggling(),
		Config:   s.engine.GetConfig(),
		Mode:     s.engine.Settings().Mode,
		Health:   s.engine.Health(),
		Cycles:   s.engine.Cycles(),
		Window:   s.engine.Window(),
	}
	if rem := s.engine.TimeRemaining(); rem > 0 {
		st.RemainingSeconds = rem.Seconds()
	}
	return st
}

func (s *Server) handleIsWiggling(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"wiggling": s.engine.IsWiggling()})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	var d time.Duration
	if req.Duration != "" {
		parsed, err := util.ParseDuration(req.Duration)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		d = parsed
	}

	if err := s.engine.StartTimed(d); err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.StopWiggle(); err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.GetConfig())
}

func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MoveSeconds *float64 `json:"moveSeconds"`
		WaitSeconds *float64 `json:"waitSeconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.MoveSeconds == nil || req.WaitSeconds == nil {
		writeError(w, http.StatusBadRequest, "moveSeconds and waitSeconds are required")
		return
	}

	if err := s.engine.SetConfig(*req.MoveSeconds, *req.WaitSeconds); err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.GetConfig())
}

func (s *Server) handleMoveSpeed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]float64{"moveSeconds": s.engine.GetMoveSpeed()})
}

func (s *Server) handleWaitTime(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]float64{"waitSeconds": s.engine.GetWaitTime()})
}

func (s *Server) handleGetWindow(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Window())
}

func (s *Server) handleWindowSmall(w http.ResponseWriter, r *http.Request) {
	if !s.engine.IsReady() {
		s.writeEngineError(w, wiggle.ErrNotReady)
		return
	}
	s.engine.SetWindowSmall()
	writeJSON(w, http.StatusOK, s.engine.Window())
}

func (s *Server) handleWindowLarge(w http.ResponseWriter, r *http.Request) {
	if !s.engine.IsReady() {
		s.writeEngineError(w, wiggle.ErrNotReady)
		return
	}
	s.engine.SetWindowLarge()
	writeJSON(w, http.StatusOK, s.engine.Window())
}

// handleEvents streams bus events as JSON text frames until the client
// goes away or the engine shuts down.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	updates, unsubscribe := s.engine.Events().Subscribe()
	defer unsubscribe()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	// The reader only exists to notice the client closing and to handle pongs.
	closed := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
				return
			}
			if err := conn.WriteJSON(e); err != nil {
				s.log.Debug().Err(err).Msg("websocket write failed")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, config.ErrInvalidConfig):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, wiggle.ErrNotReady):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.log.Error().Err(err).Msg("engine call failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// isLocalOrigin accepts non-browser clients (no Origin header) and pages
// served from the same host.
func isLocalOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1" || host == "::1" || u.Host == r.Host
}
