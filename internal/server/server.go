// Package server exposes the page builder over HTTP: page CRUD, editor
// commands, AI generation, read-only previews, the public page, and a
// WebSocket live-preview feed.
package server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	agentpages "github.com/agentpages/agentpages"
	"github.com/agentpages/agentpages/internal/canvas"
	"github.com/agentpages/agentpages/internal/config"
	"github.com/agentpages/agentpages/internal/generate"
	"github.com/agentpages/agentpages/internal/render"
	"github.com/agentpages/agentpages/internal/store"
)

// Server is the AgentPages HTTP server.
type Server struct {
	store     store.Store
	registry  *render.Registry
	generator *generate.Client
	config    *config.Config
	logger    *zap.Logger
	validate  *validator.Validate

	sessions *sessions
	hub      *hub
	watcher  *templateWatcher

	httpServer *http.Server
	cancel     context.CancelFunc
}

// New wires a server from its collaborators.
func New(cfg *config.Config, st store.Store, registry *render.Registry, generator *generate.Client, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		store:     st,
		registry:  registry,
		generator: generator,
		config:    cfg,
		logger:    logger,
		validate:  validator.New(),
	}
	s.hub = newHub(logger)
	s.sessions = newSessions(st, logger, s.pushPreview)
	return s
}

// pushPreview re-renders the document read-only and broadcasts it to the
// page's live-preview connections.
func (s *Server) pushPreview(pageID string, doc agentpages.Document) {
	var buf bytes.Buffer
	if err := s.registry.RenderDocument(&buf, doc, render.DocumentOptions{Editing: false}); err != nil {
		s.logger.Warn("preview render failed", zap.String("page", pageID), zap.Error(err))
		return
	}
	s.hub.broadcast(pageID, previewMessage{Event: "preview", HTML: buf.String()})
}

// Router builds the HTTP handler.
func (s *Server) Router(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(securityHeadersMiddleware())
	r.Use(corsMiddleware(s.config.API.GetCORSOrigins()))

	// Public surface: page rendering and live preview.
	r.Get("/health", s.handleHealth)
	r.Get("/assets/agentpages.css", s.handlePageCSS)
	r.Get("/p/{id}", s.handlePublicPage)
	r.Get("/ws/{id}", s.handleWebSocket)

	// Authenticated API surface.
	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(60 * time.Second))
		api.Use(rateLimitMiddleware(ctx,
			s.config.API.GetRateLimitRPS(),
			s.config.API.GetRateLimitBurst(),
			0, s.logger))
		if s.config.API.IsAuthEnabled() {
			api.Use(authMiddleware(s.config.API.Auth))
		}

		api.Get("/pages", s.handleListPages)
		api.Post("/pages", s.handleCreatePage)
		api.Get("/pages/{id}", s.handleGetPage)
		api.Put("/pages/{id}", s.handleSavePage)
		api.Delete("/pages/{id}", s.handleDeletePage)
		api.Post("/pages/{id}/generate", s.handleGenerate)
		api.Post("/pages/{id}/commands", s.handleCommand)
		api.Get("/pages/{id}/canvas", s.handleCanvas)
		api.Get("/pages/{id}/preview", s.handlePreview)
		api.Get("/palette", s.handlePalette)
	})

	return r
}

// Start runs the HTTP server until Shutdown or a listen error.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	if s.config.Templates.Dir != "" && s.config.Templates.Watch {
		w, err := newTemplateWatcher(s.config.Templates.Dir, func() error {
			if err := s.registry.Reload(); err != nil {
				return err
			}
			s.hub.broadcastAll(previewMessage{Event: "reload"})
			return nil
		}, s.logger)
		if err != nil {
			s.logger.Warn("template watcher unavailable", zap.Error(err))
		} else {
			s.watcher = w
			w.start()
		}
	}

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Router(ctx),
	}

	s.logger.Info("server listening", zap.String("addr", addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.watcher != nil {
		if err := s.watcher.stop(); err != nil {
			s.logger.Warn("template watcher stop failed", zap.Error(err))
		}
	}
	s.hub.closeAll()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// session fetches the editing session for a page, for handlers.
func (s *Server) session(ctx context.Context, pageID string) (*canvas.Session, error) {
	return s.sessions.get(ctx, pageID)
}
