package server

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/shahar-caura/plantid/internal/app"
	"github.com/shahar-caura/plantid/internal/banner"
	"github.com/shahar-caura/plantid/internal/view"
	"github.com/shahar-caura/plantid/web"
)

var pageTemplate = template.Must(template.ParseFS(web.TemplatesFS, "index.html"))

// Server is the plantid web front-end.
type Server struct {
	port       int
	version    string
	startTime  time.Time
	controller *app.Controller
	panes      *view.Panes
	banner     *banner.Banner
	sseHub     *SSEHub
	logger     *slog.Logger
}

// New creates a Server. hub must be the notifier panes were created with.
func New(port int, version string, controller *app.Controller, panes *view.Panes, b *banner.Banner, hub *SSEHub, logger *slog.Logger) *Server {
	return &Server{
		port:       port,
		version:    version,
		startTime:  time.Now(),
		controller: controller,
		panes:      panes,
		banner:     b,
		sseHub:     hub,
		logger:     logger,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("POST /select", s.handleSelect)
	mux.HandleFunc("POST /remove", s.handleRemove)
	mux.HandleFunc("POST /identify", s.handleIdentify)
	mux.HandleFunc("POST /test-local", s.handleTestLocal)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/state", s.handleState)

	// SSE endpoint: pushes pane snapshots so open pages refresh.
	mux.Handle("GET /events", s.sseHub)

	mux.Handle("GET /static/", http.StripPrefix("/static", StaticHandler(web.StaticFS)))

	return mux
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		// SSE streams end when ctx does, so Shutdown is not held open by them.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	// Start listener so we can log the actual port.
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	s.logger.Info("web server started", "addr", ln.Addr().String())

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
