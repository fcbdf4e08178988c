// ABOUTME: HTTP server assembly for liftlog
// ABOUTME: Composes the auth pipeline (validation, policy) around the API routes

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/liftlog/liftlog/internal/auth"
	"github.com/liftlog/liftlog/internal/config"
	"github.com/liftlog/liftlog/internal/store"
)

// Server hosts the liftlog HTTP API.
type Server struct {
	config     *config.Config
	store      store.Store
	codec      *auth.TokenCodec
	policy     *auth.Policy
	hasher     auth.PasswordHasher
	logger     *slog.Logger
	httpServer *http.Server
	handler    http.Handler
}

// New creates a Server wired against the given store and configuration.
// If no JWT secret is configured, a random per-process key is generated;
// tokens then stop verifying after a restart.
func New(cfg *config.Config, st store.Store, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	secret := []byte(cfg.Auth.JWTSecret)
	if len(secret) == 0 {
		generated, err := auth.GenerateSecret()
		if err != nil {
			return nil, err
		}
		secret = generated
		logger.Warn("no jwt_secret configured, generated a random per-process signing key")
	}

	codec, err := auth.NewTokenCodec(secret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("creating token codec: %w", err)
	}

	policy, err := loadPolicy(cfg, logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config: cfg,
		store:  st,
		codec:  codec,
		policy: policy,
		hasher: auth.BcryptHasher{},
		logger: logger.With("component", "server"),
	}
	s.handler = s.routes()

	s.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// loadPolicy reads the configured policy file, falling back to the built-in
// default table when none is configured.
func loadPolicy(cfg *config.Config, logger *slog.Logger) (*auth.Policy, error) {
	if cfg.Auth.PolicyPath == "" {
		return defaultPolicy()
	}
	policy, err := auth.LoadPolicy(cfg.Auth.PolicyPath)
	if err != nil {
		return nil, fmt.Errorf("loading policy from %s: %w", cfg.Auth.PolicyPath, err)
	}
	logger.Info("route policy loaded", "path", cfg.Auth.PolicyPath)
	return policy, nil
}

// defaultPolicy is the built-in route table: exercise catalog writes and all
// user management need ADMIN; everything else under /api needs any
// authenticated principal.
func defaultPolicy() (*auth.Policy, error) {
	return auth.NewPolicy([]auth.Rule{
		{Path: "/health", Public: true},
		{Path: "/api/login", Methods: []string{http.MethodPost}, Public: true},
		{Path: "/api/exercises", Methods: []string{http.MethodPost}, Roles: []string{"ADMIN"}},
		{Path: "/api/exercises/", Methods: []string{http.MethodPut, http.MethodDelete}, Roles: []string{"ADMIN"}},
		{Path: "/api/users", Roles: []string{"ADMIN"}},
		{Path: "/api/users/", Roles: []string{"ADMIN"}},
	})
}

// routes assembles the request pipeline:
//
//	login, health            (outside the chain)
//	everything else          TokenValidation -> Policy.Enforce -> API mux
func (s *Server) routes() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/api/me", s.handleMe)
	api.HandleFunc("/api/exercises", s.handleExercises)
	api.HandleFunc("/api/exercises/", s.handleExerciseByID)
	api.HandleFunc("/api/workouts", s.handleWorkouts)
	api.HandleFunc("/api/workouts/", s.handleWorkoutByID)
	api.HandleFunc("/api/users", s.handleUsers)
	api.HandleFunc("/api/users/", s.handleUserByName)

	validate := auth.TokenValidation(s.codec, s.logger)
	authorize := s.policy.Enforce(s.logger)
	protected := validate(authorize(api))

	authenticator := auth.NewAuthenticator(s.store, s.hasher, s.logger)
	login := auth.NewLoginHandler(authenticator, s.codec, s.logger)

	root := http.NewServeMux()
	root.HandleFunc("/health", s.handleHealth)
	// The login endpoint creates tokens rather than consuming them, so it
	// sits outside the validation filter.
	root.Handle("/api/login", login)
	root.Handle("/", protected)

	return root
}

// Handler returns the assembled request pipeline. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails. Shutdown is graceful with a 10 second drain.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.config.Server.HTTPAddr, err)
	}

	s.logger.Info("starting liftlog server", "http_addr", s.config.Server.HTTPAddr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// handleHealth reports liveness. No auth required.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
