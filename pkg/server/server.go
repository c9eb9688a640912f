// Package server serves stored runs and accepts new checks over HTTP.
//
// # Routes
//
//	GET    /healthz             liveness and build version
//	GET    /runs                run headers, newest first (?limit=N)
//	POST   /runs                upload a Gemfile or gemspec and check it
//	GET    /runs/{id}           full run as JSON
//	GET    /runs/{id}/{format}  run rendered as json, dot, svg, html, edges or txt
//	DELETE /runs/{id}           remove a run
//
// Errors are JSON objects with "code" and "error" fields; the code is the
// [errors.Code] of the failure.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/debgems/pkg/buildinfo"
	errs "github.com/matzehuels/debgems/pkg/errors"
	"github.com/matzehuels/debgems/pkg/pipeline"
	"github.com/matzehuels/debgems/pkg/store"
)

const (
	// MaxUploadSize caps uploaded manifests.
	MaxUploadSize = 1 << 20

	// DefaultCheckTimeout bounds one POST /runs resolution.
	DefaultCheckTimeout = 10 * time.Minute

	shutdownTimeout = 10 * time.Second
)

// Server exposes a runner and a store over HTTP.
type Server struct {
	runner  *pipeline.Runner
	store   store.Store
	logger  *log.Logger
	router  chi.Router
	timeout time.Duration
}

// New creates a server. A nil logger uses the default logger.
func New(runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner:  runner,
		store:   st,
		logger:  logger,
		timeout: DefaultCheckTimeout,
	}
	s.router = s.routes()
	return s
}

// WithTimeout overrides the per-check timeout and returns s.
func (s *Server) WithTimeout(d time.Duration) *Server {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/runs", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCheck)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(validateID)
			r.Get("/", s.handleGet)
			r.Get("/{format}", s.handleRender)
			r.Delete("/", s.handleDelete)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func validateID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := store.ValidateID(chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

type errorBody struct {
	Code  errs.Code `json:"code,omitempty"`
	Error string    `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	code := errs.GetCode(err)
	if code == "" && status == http.StatusInternalServerError {
		code = errs.ErrCodeInternal
	}
	writeJSON(w, status, errorBody{
		Code:  code,
		Error: errs.UserMessage(err),
	})
}

// statusOf maps an error code to an HTTP status.
func statusOf(err error) int {
	switch errs.GetCode(err) {
	case errs.ErrCodeRunNotFound, errs.ErrCodeNotFound, errs.ErrCodeFileNotFound,
		errs.ErrCodePackageNotFound:
		return http.StatusNotFound
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidManifest, errs.ErrCodeInvalidFormat,
		errs.ErrCodeInvalidPackage, errs.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errs.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errs.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
