// Package server serves the fitness backend HTTP API. It wires the auth,
// storage, and report layers behind a net/http mux and manages the server
// lifecycle including graceful shutdown.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fitpulse-dev/fitpulse/pkg/api"
	"github.com/fitpulse-dev/fitpulse/pkg/auth"
	"github.com/fitpulse-dev/fitpulse/pkg/auth/password"
	"github.com/fitpulse-dev/fitpulse/pkg/auth/token"
	"github.com/fitpulse-dev/fitpulse/pkg/observability"
	"github.com/fitpulse-dev/fitpulse/pkg/report"
	"github.com/fitpulse-dev/fitpulse/pkg/storage"
)

// defaultRecordLimit caps GET /api/v1/records when no limit is given.
// Five entries cover the current state plus recent trend without paging.
const defaultRecordLimit = 5

// Config holds configuration for the HTTP server.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxBodySize     int64
	MetricsEnabled  bool
	MetricsPath     string
	Logger          *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8000",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    180 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		MaxBodySize:     1 << 20, // 1 MB
		MetricsEnabled:  true,
		MetricsPath:     "/metrics",
	}
}

// Server serves the fitness backend API.
type Server struct {
	config     Config
	store      Store
	tokens     *token.Service
	passwords  *password.Hasher
	reports    *report.Service
	logger     *slog.Logger
	mux        *http.ServeMux
	httpServer *http.Server
}

// New creates a server from its collaborators and registers all routes.
func New(cfg Config, store Store, tokens *token.Service, passwords *password.Hasher, reports *report.Service) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		config:    cfg,
		store:     store,
		tokens:    tokens,
		passwords: passwords,
		reports:   reports,
		logger:    cfg.Logger,
		mux:       http.NewServeMux(),
	}

	resolver := auth.NewResolver(tokens, store.GetUserByUsername)
	authed := auth.Middleware(resolver)

	s.mux.HandleFunc("POST /register", s.handleRegister)
	s.mux.HandleFunc("POST /login/access-token", s.handleLogin)
	s.mux.Handle("POST /api/v1/records", authed(http.HandlerFunc(s.handleCreateRecord)))
	s.mux.Handle("GET /api/v1/records", authed(http.HandlerFunc(s.handleListRecords)))
	s.mux.Handle("POST /api/v1/reports/generate", authed(http.HandlerFunc(s.handleGenerateReport)))
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)

	if cfg.MetricsEnabled {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.mux.Handle("GET "+path, promhttp.Handler())
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// Handler returns the fully assembled http.Handler including middleware.
// Use this to integrate with an http.Server or test with httptest.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = observability.MetricsMiddleware(h)
	h = loggingMiddleware(s.logger)(h)
	h = recoveryMiddleware(s.logger)(h)
	h = requestIDMiddleware(h)
	return h
}

// ListenAndServe starts the server and blocks until a shutdown signal
// (SIGINT or SIGTERM) is received. It then gracefully shuts down,
// waiting for in-flight requests to complete within the configured timeout.
func (s *Server) ListenAndServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return s.listenAndServeWithContext(ctx)
}

func (s *Server) listenAndServeWithContext(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("server starting", slog.String("addr", s.config.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	return s.shutdown()
}

// ServeOn starts the server on the given listener. Used for testing.
func (s *Server) ServeOn(ln net.Listener) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	return s.shutdown()
}

func (s *Server) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down gracefully", slog.Duration("timeout", s.config.ShutdownTimeout))
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("shutdown error", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// Shutdown gracefully shuts down the server with the given context.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleRegister handles POST /register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if apiErr := api.ValidateRegister(&req); apiErr != nil {
		observability.RegistrationsTotal.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, apiErr)
		return
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		s.logger.Error("hashing password", slog.String("error", err.Error()))
		writeServerError(w)
		return
	}

	user := &storage.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			observability.RegistrationsTotal.WithLabelValues("conflict").Inc()
			writeError(w, http.StatusConflict,
				api.NewConflictError("username or email already registered"))
			return
		}
		s.logger.Error("creating user", slog.String("error", err.Error()))
		writeServerError(w)
		return
	}

	observability.RegistrationsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusCreated, userResponse(user))
}

// handleLogin handles POST /login/access-token. Credentials arrive
// form-encoded as username and password fields.
//
// An unknown username and a wrong password produce the same 401 so the
// endpoint cannot be used to probe which usernames exist.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest,
			api.NewInvalidRequestError("body", "request body must be form-encoded"))
		return
	}

	username := r.PostFormValue("username")
	pass := r.PostFormValue("password")
	if username == "" || pass == "" {
		writeError(w, http.StatusBadRequest,
			api.NewInvalidRequestError("username", "username and password are required"))
		return
	}

	user, err := s.store.GetUserByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.loginFailed(w, username)
			return
		}
		s.logger.Error("looking up user", slog.String("error", err.Error()))
		writeServerError(w)
		return
	}

	if !s.passwords.Verify(pass, user.PasswordHash) {
		s.loginFailed(w, username)
		return
	}

	if !user.IsActive {
		observability.LoginsTotal.WithLabelValues("inactive").Inc()
		writeError(w, http.StatusBadRequest,
			api.NewInvalidRequestError("username", "inactive user"))
		return
	}

	tok, err := s.tokens.Issue(user.Username)
	if err != nil {
		s.logger.Error("issuing token", slog.String("error", err.Error()))
		writeServerError(w)
		return
	}

	observability.LoginsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, api.TokenResponse{
		AccessToken: tok,
		TokenType:   "bearer",
	})
}

func (s *Server) loginFailed(w http.ResponseWriter, username string) {
	s.logger.Warn("login failed", slog.String("username", username))
	observability.LoginsTotal.WithLabelValues("failed").Inc()
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, &api.APIError{
		Type:    api.ErrorTypeUnauthorized,
		Message: "incorrect username or password",
	})
}

// handleCreateRecord handles POST /api/v1/records.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	user := auth.PrincipalFromContext(r.Context())

	var req api.RecordRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if apiErr := api.ValidateRecord(&req); apiErr != nil {
		writeError(w, http.StatusBadRequest, apiErr)
		return
	}

	rec := &storage.FitnessRecord{
		ID:            uuid.NewString(),
		UserID:        user.ID,
		Age:           req.Age,
		Gender:        req.Gender,
		HeightIn:      req.HeightIn,
		WeightLbs:     req.WeightLbs,
		ActivityLevel: req.ActivityLevel,
		FitnessGoal:   req.FitnessGoal,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.store.CreateRecord(r.Context(), rec); err != nil {
		s.logger.Error("creating record", slog.String("error", err.Error()))
		writeServerError(w)
		return
	}

	writeJSON(w, http.StatusCreated, recordResponse(rec))
}

// handleListRecords handles GET /api/v1/records. Records are returned
// newest first and always scoped to the authenticated user.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	user := auth.PrincipalFromContext(r.Context())

	limit := defaultRecordLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest,
				api.NewInvalidRequestError("limit", "limit must be a positive integer"))
			return
		}
		limit = n
	}

	records, err := s.store.ListRecords(r.Context(), user.ID, limit)
	if err != nil {
		s.logger.Error("listing records", slog.String("error", err.Error()))
		writeServerError(w)
		return
	}

	out := make([]api.RecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, recordResponse(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGenerateReport handles POST /api/v1/reports/generate.
func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	user := auth.PrincipalFromContext(r.Context())

	rep, err := s.reports.Generate(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, report.ErrNoRecords) {
			writeError(w, http.StatusBadRequest,
				api.NewInvalidRequestError("", "no fitness records found, submit a record first"))
			return
		}
		s.logger.Error("generating report", slog.String("error", err.Error()))
		writeServerError(w)
		return
	}

	writeJSON(w, http.StatusCreated, api.ReportResponse{
		ReportID:  rep.ID,
		ModelUsed: rep.ModelUsed,
		Content:   rep.Content,
		CreatedAt: rep.CreatedAt,
	})
}

// handleHealthz handles GET /healthz. The endpoint reports degraded LLM
// availability without failing: report generation falls back to the mock
// generator, so only a storage failure makes the service unhealthy.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	llmStatus := "ok"
	if err := s.reports.Ready(r.Context()); err != nil {
		llmStatus = "unavailable"
	}

	if err := s.store.HealthCheck(r.Context()); err != nil {
		s.logger.Error("storage health check failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, api.HealthResponse{
			Status: "unhealthy",
			LLM:    llmStatus,
		})
		return
	}

	writeJSON(w, http.StatusOK, api.HealthResponse{
		Status: "ok",
		LLM:    llmStatus,
	})
}

// decodeJSON decodes a JSON request body into dst, writing an error
// response and returning false on failure.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct != "" && !isJSONContentType(ct) {
		writeError(w, http.StatusUnsupportedMediaType,
			api.NewInvalidRequestError("content_type", "Content-Type must be application/json"))
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodySize)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge,
				api.NewInvalidRequestError("body",
					fmt.Sprintf("request body too large (max %d bytes)", s.config.MaxBodySize)))
			return false
		}
		writeError(w, http.StatusBadRequest,
			api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()))
		return false
	}
	return true
}

func isJSONContentType(ct string) bool {
	return strings.HasPrefix(ct, "application/json")
}

func userResponse(u *storage.User) api.UserResponse {
	return api.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func recordResponse(rec *storage.FitnessRecord) api.RecordResponse {
	return api.RecordResponse{
		ID:            rec.ID,
		UserID:        rec.UserID,
		Age:           rec.Age,
		Gender:        rec.Gender,
		HeightIn:      rec.HeightIn,
		WeightLbs:     rec.WeightLbs,
		ActivityLevel: rec.ActivityLevel,
		FitnessGoal:   rec.FitnessGoal,
		CreatedAt:     rec.CreatedAt,
	}
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a structured API error response.
func writeError(w http.ResponseWriter, status int, apiErr *api.APIError) {
	writeJSON(w, status, api.ErrorResponse{Error: apiErr})
}

// writeServerError writes a generic 500 without leaking internals.
func writeServerError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError,
		api.NewServerError("internal server error"))
}
