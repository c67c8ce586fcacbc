// Package server exposes grid views over HTTP.
//
// Every view is a [grid.Grid] mounted on its own node tree and addressed by
// a uuid. Clients create a view at a container width, then resize it, page
// through it and move focus with keys; each response carries the view's
// summary and a JSON snapshot of its tree. When a [viewstate.Store] is
// configured the pagination depth, width and render options survive server
// restarts: an unknown ID is looked up in the store and restored.
//
// Routes:
//
//	GET    /health
//	POST   /api/v1/views
//	GET    /api/v1/views/{viewID}
//	DELETE /api/v1/views/{viewID}
//	POST   /api/v1/views/{viewID}/resize
//	POST   /api/v1/views/{viewID}/more
//	POST   /api/v1/views/{viewID}/keys
//	PUT    /api/v1/views/{viewID}/options
//	GET    /api/v1/views/{viewID}/export?format=json|dot|svg
//	GET    /api/v1/thumbnails?url=...
package server

import (
	"context"
	"io"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/cardgrid/pkg/card"
	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/viewstate"
)

// ThumbnailSource serves cached thumbnails.
type ThumbnailSource interface {
	Thumbnail(ctx context.Context, url string) ([]byte, bool, error)
}

// Options configures a Server.
type Options struct {
	Config     grid.Config
	Render     grid.RenderOptions
	Factory    grid.NodeFactory
	Prefetcher grid.Prefetcher

	// Store persists views. Nil keeps views in memory only.
	Store viewstate.Store

	// Thumbnails backs the thumbnail route. Nil disables it.
	Thumbnails ThumbnailSource

	Logger         *log.Logger
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// Server holds the mounted views.
type Server struct {
	opts   Options
	logger *log.Logger
	router *chi.Mux

	mu    sync.RWMutex
	items []card.Item
	views map[string]*view
}

type view struct {
	mu   sync.Mutex
	id   string
	grid *grid.Grid
}

// New creates a server showing items.
func New(items []card.Item, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Config.InitialVisibleRows == 0 {
		opts.Config = grid.DefaultConfig()
	}
	if opts.Render.LayoutMode == "" {
		opts.Render.LayoutMode = grid.ModeAuto
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	s := &Server{
		opts:   opts,
		logger: opts.Logger,
		router: chi.NewRouter(),
		items:  slices.Clone(items),
		views:  make(map[string]*view),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.opts.RequestTimeout))
	if len(s.opts.AllowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.health)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/thumbnails", s.thumbnail)
		r.Route("/views", func(r chi.Router) {
			r.Post("/", s.createView)
			r.Route("/{viewID}", func(r chi.Router) {
				r.Get("/", s.getView)
				r.Delete("/", s.deleteView)
				r.Post("/resize", s.resizeView)
				r.Post("/more", s.loadMore)
				r.Post("/keys", s.pressKey)
				r.Put("/options", s.setOptions)
				r.Get("/export", s.exportView)
			})
		})
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
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

// SetItems replaces the items and re-renders every view at its last width,
// keeping its pagination depth.
func (s *Server) SetItems(items []card.Item) {
	s.mu.Lock()
	s.items = slices.Clone(items)
	views := make([]*view, 0, len(s.views))
	for _, v := range s.views {
		views = append(views, v)
	}
	items = s.items
	s.mu.Unlock()

	for _, v := range views {
		v.mu.Lock()
		v.grid.Render(items, v.grid.State().LastContainerWidth)
		v.mu.Unlock()
	}
	s.logger.Info("items updated", "items", len(items), "views", len(views))
}

// Close unmounts every view and closes the store.
func (s *Server) Close() error {
	s.mu.Lock()
	for id, v := range s.views {
		v.grid.Unmount()
		delete(s.views, id)
	}
	s.mu.Unlock()
	if s.opts.Store != nil {
		return s.opts.Store.Close()
	}
	return nil
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      s.opts.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
