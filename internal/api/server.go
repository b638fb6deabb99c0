package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Iron-Ham/adaptui/internal/history"
	"github.com/Iron-Ham/adaptui/internal/logging"
	"github.com/Iron-Ham/adaptui/internal/trigger"
)

// DefaultListLimit caps history listings without an explicit limit.
const DefaultListLimit = 50

const shutdownTimeout = 5 * time.Second

// Triggers is the trigger registry the server reads and controls.
type Triggers interface {
	Statuses() []trigger.Status
	Status(id string) (trigger.Status, error)
	Disable(id string) error
	SetActive(id string, active bool) error
}

// Server is the adaptui HTTP control surface.
type Server struct {
	router    chi.Router
	logger    *logging.Logger
	triggers  Triggers
	history   history.Store
	startTime time.Time
}

// New creates a server with all routes registered. store may be nil, in
// which case the adaptations endpoint returns an empty list.
func New(triggers Triggers, store history.Store, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NopLogger()
	}
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.WithComponent("api"),
		triggers:  triggers,
		history:   store,
		startTime: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/triggers", func(r chi.Router) {
			r.Get("/", s.handleListTriggers)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetTrigger)
				r.Post("/disable", s.handleDisableTrigger)
				r.Post("/pause", s.handleSetActive(false))
				r.Post("/resume", s.handleSetActive(true))
			})
		})

		r.Get("/adaptations", s.handleListAdaptations)
	})
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("api listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}
