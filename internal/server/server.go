// Package server exposes generated TypeScript over HTTP.
//
// Routes:
//
//	GET /healthz           → "ok" once the catalog connection answers
//	GET /schema.ts         → interfaces for every table
//	GET /tables/{table}.ts → interfaces for one table
//
// Every request introspects the database again, so responses always
// reflect the live schema.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/koustreak/mysqlts/internal/errs"
	"github.com/koustreak/mysqlts/internal/logger"
)

const contentTypeTS = "application/typescript; charset=utf-8"

// Source produces the TypeScript served by the routes.
// *tsgen.Generator satisfies it.
type Source interface {
	Table(ctx context.Context, name string) (string, error)
	Schema(ctx context.Context) (string, error)
}

// Pinger reports whether the catalog connection is alive.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config controls server startup.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server serves generated interfaces.
type Server struct {
	cfg    Config
	src    Source
	pinger Pinger
	log    *logger.Logger
	router chi.Router
}

// New builds a Server with its routes. pinger may be nil, in which case
// /healthz always answers ok.
func New(cfg Config, src Source, pinger Pinger, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		cfg:    cfg,
		src:    src,
		pinger: pinger,
		log:    log,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return errs.Wrap(errs.ErrKindConnectionFailed, "cannot listen on "+s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ln)
	}()
	s.log.With().Str("addr", ln.Addr().String()).Logger().Info("serving typescript interfaces")

	select {
	case err := <-done:
		return errs.Wrap(errs.ErrKindConnectionFailed, "server stopped", err)
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errs.Wrap(errs.ErrKindTimeout, "graceful shutdown failed", err)
	}
	if err := <-done; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errs.Wrap(errs.ErrKindConnectionFailed, "server stopped", err)
	}
	s.log.Info("server stopped")
	return nil
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.logRequests)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/schema.ts", s.handleSchema)
	s.router.Get("/tables/{table}.ts", s.handleTable)
}

// logRequests stores a request-scoped logger in the request context and
// logs each request once it completes.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := s.log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
		r = r.WithContext(log.WithContext(r.Context()))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Request(r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			writeError(w, r, err)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	out, err := s.src.Schema(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeTS(w, out)
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	if table == "" {
		writeError(w, r, errs.New(errs.ErrKindInvalidInput, "table name is empty"))
		return
	}
	out, err := s.src.Table(r.Context(), table)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeTS(w, out)
}

func writeTS(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", contentTypeTS)
	_, _ = w.Write([]byte(body))
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).ErrorWith("request failed", err, map[string]interface{}{"status": status})
	}
	http.Error(w, err.Error(), status)
}

// statusFor maps an error kind to the HTTP status returned to clients.
func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.ErrKindNotFound:
		return http.StatusNotFound
	case errs.ErrKindInvalidInput:
		return http.StatusBadRequest
	case errs.ErrKindPermissionDenied:
		return http.StatusForbidden
	case errs.ErrKindTimeout:
		return http.StatusGatewayTimeout
	case errs.ErrKindConnectionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
