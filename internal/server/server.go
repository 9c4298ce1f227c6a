// Package server exposes the analysis pipeline over HTTP.
//
// Routes:
//
//	POST /v1/analyze        node-link network JSON -> report
//	POST /v1/classify       {"influence","dependence"} -> class
//	POST /v1/triage         ratings -> routes
//	GET  /v1/reports/{id}   a previously computed report
//	GET  /healthz           liveness and build info
//	GET  /metrics           Prometheus exposition
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/stratum/pkg/buildinfo"
	stratumerrors "github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/observability"
	"github.com/matzehuels/stratum/pkg/pipeline"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 8 << 20

// ShutdownTimeout bounds how long Run waits for in-flight requests.
const ShutdownTimeout = 15 * time.Second

// unmatchedRoute labels requests no route matched, keeping the metric
// route label bounded.
const unmatchedRoute = "unmatched"

// Server serves the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	metrics  *observability.Prometheus
	defaults pipeline.Options
	logger   *log.Logger
	router   chi.Router
	started  time.Time
}

// Options configures a Server.
type Options struct {
	// Defaults are applied to analyze requests that leave a field unset.
	Defaults pipeline.Options

	// Metrics backs GET /metrics. Nil disables the endpoint.
	Metrics *observability.Prometheus

	Logger *log.Logger
}

// New builds a server around runner.
func New(runner *pipeline.Runner, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{
		runner:   runner,
		metrics:  opts.Metrics,
		defaults: opts.Defaults,
		logger:   opts.Logger,
		started:  time.Now(),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/classify", s.handleClassify)
		r.Post("/triage", s.handleTriage)
		r.Get("/reports/{id}", s.handleReport)
	})
	return r
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return stratumerrors.Wrap(stratumerrors.ErrCodeInvalidConfig, err, "listen on %s", addr)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// observe records request metrics through the HTTP hooks and logs each
// request at debug level.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)
		defer func() {
			route := unmatchedRoute
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			d := time.Since(start)
			hooks.OnResponse(r.Context(), r.Method, route, status, d)
			s.logger.Debug("request",
				"id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"route", route,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", d)
		}()
		next.ServeHTTP(ww, r)
	})
}

// =============================================================================
// Responses
// =============================================================================

// errorResponse is the body of every non-2xx answer.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// respondJSON encodes v before writing the status. An unencodable value
// answers a coded 500.
func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		if _, isErr := v.(errorResponse); isErr {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.respondError(w, stratumerrors.Wrap(stratumerrors.ErrCodeInternal, err, "encode response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		s.logger.Warn("write response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := stratumerrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.respondJSON(w, status, errorResponse{
		Error:   http.StatusText(status),
		Message: stratumerrors.UserMessage(err),
		Code:    string(stratumerrors.GetCode(err)),
	})
}

// decode reads a JSON body into v, rejecting unknown fields and oversized
// bodies.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return stratumerrors.Wrap(stratumerrors.ErrCodeInvalidFormat, err, "invalid request body: %v", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}
