// Package server exposes the cleaner over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/OmarSalvatierra99/cleandoc/clean"
	"github.com/OmarSalvatierra99/cleandoc/internal/config"
	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/net/netutil"
)

// Options configures a Server.
type Options struct {
	Server  config.ServerConfig
	Upload  config.UploadConfig
	Cleaner *clean.Cleaner
	Logger  *log.Logger
	Version string
}

// Server serves the upload form, the health check and the cleaning
// endpoint.
type Server struct {
	cfg     config.ServerConfig
	upload  config.UploadConfig
	cleaner *clean.Cleaner
	logger  *log.Logger
	version string
	index   *template.Template
	router  chi.Router
}

// New builds a Server. Zero-valued options fall back to defaults.
func New(opts Options) *Server {
	def := config.DefaultConfig()
	if opts.Server.MaxContentLength <= 0 {
		opts.Server.MaxContentLength = def.Server.MaxContentLength
	}
	if opts.Server.Workers < 1 {
		opts.Server.Workers = def.Server.Workers
	}
	if len(opts.Upload.AllowedExtensions) == 0 {
		opts.Upload.AllowedExtensions = def.Upload.AllowedExtensions
	}
	if opts.Cleaner == nil {
		opts.Cleaner = clean.Default()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	s := &Server{
		cfg:     opts.Server,
		upload:  opts.Upload,
		cleaner: opts.Cleaner,
		logger:  opts.Logger,
		version: opts.Version,
		index:   indexTemplate,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(recoverer(s.logger))
	r.Use(securityHeaders(!s.cfg.Debug))

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Post("/limpiar_cedula", s.handleClean)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error:   "Not Found",
			Message: "El recurso solicitado no existe",
			Status:  http.StatusNotFound,
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
			Error:   "Method Not Allowed",
			Message: "Método no permitido para este recurso",
			Status:  http.StatusMethodNotAllowed,
		})
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe listens on the configured address and serves until ctx
// is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.upload.Folder != "" {
		if err := os.MkdirAll(s.upload.Folder, 0o750); err != nil {
			return fmt.Errorf("creating upload folder: %w", err)
		}
	}

	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured timeout. ln is closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConnections)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("server listening", "addr", ln.Addr().String(), "max_connections", s.cfg.MaxConnections, "workers", s.cfg.Workers)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.cfg.ShutdownTimeout)
	if s.cfg.ShutdownTimeout <= 0 {
		return srv.Close()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
