package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/thruflo/sortviz/internal/auth"
	"github.com/thruflo/sortviz/internal/logging"
	"github.com/thruflo/sortviz/internal/run"
	"github.com/thruflo/sortviz/internal/tone"
)

// Config holds server configuration options.
type Config struct {
	Host string
	Port int
	// PasswordHash enables authentication when set.
	PasswordHash string

	Controller *run.Controller
	Hub        *Hub
	Mute       *tone.Mute
	// Assets is served at /. Nil serves a placeholder page.
	Assets fs.FS

	AuthRateLimit    RateLimitConfig
	ControlRateLimit RateLimitConfig
	Logger           *logging.Logger
}

// Server is the HTTP front end of `sortviz serve`.
type Server struct {
	cfg    Config
	ctrl   *run.Controller
	hub    *Hub
	mute   *tone.Mute
	tokens *auth.Tokens
	log    *logging.Logger

	authLimiter    *rateLimiter
	controlLimiter *rateLimiter
	handler        http.Handler

	mu       sync.RWMutex
	server   *http.Server
	listener net.Listener
	started  bool
}

// NewServer creates a new Server instance.
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.Controller == nil {
		return nil, errors.New("controller is required")
	}
	if cfg.PasswordHash != "" {
		if err := auth.ValidateHash(cfg.PasswordHash); err != nil {
			return nil, fmt.Errorf("server password: %w", err)
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.With("component", "server")

	hub := cfg.Hub
	if hub == nil {
		hub = NewHub(cfg.Controller, cfg.Logger)
	}
	mute := cfg.Mute
	if mute == nil {
		mute = tone.NewMute(false)
	}
	authRL := cfg.AuthRateLimit
	if authRL == (RateLimitConfig{}) {
		authRL = DefaultRateLimitConfig()
	}
	controlRL := cfg.ControlRateLimit
	if controlRL == (RateLimitConfig{}) {
		controlRL = DefaultControlRateLimitConfig()
	}

	s := &Server{
		cfg:            *cfg,
		ctrl:           cfg.Controller,
		hub:            hub,
		mute:           mute,
		tokens:         auth.NewTokens(0),
		log:            logger,
		authLimiter:    newRateLimiter(authRL, logger),
		controlLimiter: newRateLimiter(controlRL, logger),
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux)
	s.handler = mux
	return s, nil
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// AuthEnabled reports whether control endpoints require a token.
func (s *Server) AuthEnabled() bool {
	return s.cfg.PasswordHash != ""
}

// Start listens and serves until Stop is called or ctx is done.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("server already started")
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.started = true
	srv := s.server
	s.mu.Unlock()

	s.log.Info("listening", "addr", listener.Addr().String(), "auth", s.AuthEnabled())
	go s.housekeeping(ctx)
	stopOnDone := context.AfterFunc(ctx, func() {
		if err := s.Stop(); err != nil {
			s.log.Warn("shutdown failed", "error", err)
		}
	})
	defer stopOnDone()

	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server and disconnects websocket clients.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown does not wait for hijacked websocket connections.
	s.hub.Close()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	s.started = false
	return nil
}

// ListenAddr returns the address the server is listening on, or "" before
// Start.
func (s *Server) ListenAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) setupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/auth", s.authLimiter.limit(s.handleAuth))

	mux.HandleFunc("/api/state", s.withAuth(s.handleState))
	mux.HandleFunc("/api/start", s.controlLimiter.limit(s.withAuth(s.handleStart)))
	mux.HandleFunc("/api/stop", s.controlLimiter.limit(s.withAuth(s.handleStop)))
	mux.HandleFunc("/api/reset", s.controlLimiter.limit(s.withAuth(s.handleReset)))
	mux.HandleFunc("/api/algorithm", s.controlLimiter.limit(s.withAuth(s.handleAlgorithm)))
	mux.HandleFunc("/api/mute", s.controlLimiter.limit(s.withAuth(s.handleMute)))
	mux.HandleFunc("/ws", s.withAuth(s.hub.ServeWS))

	mux.Handle("/", s.staticHandler())
}

// withAuth requires a valid bearer token when a password is configured.
// Browsers cannot set headers on websocket requests, so a token query
// parameter is accepted too.
func (s *Server) withAuth(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.AuthEnabled() {
			handler(w, r)
			return
		}

		token := r.URL.Query().Get("token")
		if authHeader := r.Header.Get("Authorization"); authHeader != "" {
			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				http.Error(w, "invalid authorization format", http.StatusUnauthorized)
				return
			}
			token = strings.TrimPrefix(authHeader, bearerPrefix)
		}
		if token == "" {
			http.Error(w, "authorization required", http.StatusUnauthorized)
			return
		}
		if !s.tokens.Valid(token) {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		handler(w, r)
	}
}

// handleAuth handles POST /auth for password authentication.
func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.AuthEnabled() {
		http.Error(w, "authentication is not enabled", http.StatusNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	password := r.FormValue("password")
	if password == "" {
		http.Error(w, "password required", http.StatusBadRequest)
		return
	}

	ip := extractIP(r)
	valid, err := auth.VerifyPassword(password, s.cfg.PasswordHash)
	if err != nil {
		s.log.Error("password verification failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !valid {
		s.authLimiter.recordFailure(ip)
		s.log.Warn("authentication failed", "ip", ip)
		http.Error(w, "invalid password", http.StatusUnauthorized)
		return
	}
	s.authLimiter.recordSuccess(ip)

	token, err := s.tokens.Issue()
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// staticHandler serves the embedded web client.
func (s *Server) staticHandler() http.Handler {
	if s.cfg.Assets == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/" {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>sortviz</title></head>
<body><p>Web client assets are not available.</p></body>
</html>`))
		})
	}
	return http.FileServerFS(s.cfg.Assets)
}

// housekeeping prunes expired tokens and rate limiter entries.
func (s *Server) housekeeping(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.tokens.Prune(); n > 0 {
				s.log.Debug("pruned expired tokens", "count", n)
			}
			s.authLimiter.cleanup()
			s.controlLimiter.cleanup()
		}
	}
}
