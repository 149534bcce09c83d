package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	agentpages "github.com/agentpages/agentpages"
	"github.com/agentpages/agentpages/internal/assets"
	"github.com/agentpages/agentpages/internal/canvas"
	"github.com/agentpages/agentpages/internal/generate"
	"github.com/agentpages/agentpages/internal/render"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePageCSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(assets.PageCSS())
}

// createPageRequest is the payload for POST /api/v1/pages.
type createPageRequest struct {
	Title    string                  `json:"title" validate:"required"`
	Property agentpages.PropertyMeta `json:"property" validate:"required"`
}

func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	var req createPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	page := agentpages.NewPage(req.Title, req.Property)
	if err := s.store.CreatePage(r.Context(), page); err != nil {
		s.logger.Error("create page failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to create page")
		return
	}

	s.logger.Info("page created", zap.String("id", page.ID), zap.String("title", page.Title))
	s.respondJSON(w, http.StatusCreated, page)
}

func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := s.store.ListPages(r.Context())
	if err != nil {
		s.logger.Error("list pages failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to list pages")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"pages": pages})
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	page, err := s.store.GetPage(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, page)
}

// savePageRequest is the payload for PUT /api/v1/pages/{id}. An empty
// body persists the open session's current snapshot instead.
type savePageRequest struct {
	Document *agentpages.Document `json:"document,omitempty"`
}

func (s *Server) handleSavePage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req savePageRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	var err error
	switch {
	case req.Document != nil:
		doc := *req.Document
		doc.Normalize()
		err = s.store.SaveDocument(r.Context(), id, doc)
	default:
		if _, ok := s.sessions.peek(id); ok {
			err = s.sessions.save(r.Context(), id)
		} else {
			// No open session means no unsaved edits; still confirm the
			// page exists.
			var exists bool
			exists, err = s.store.HasPage(r.Context(), id)
			if err == nil && !exists {
				err = agentpages.ErrPageNotFound
			}
		}
	}
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.logger.Debug("page saved", zap.String("id", id))
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) handleDeletePage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeletePage(r.Context(), id); err != nil {
		s.respondStoreError(w, err)
		return
	}
	s.sessions.drop(id)
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// generateRequest is the payload for POST /api/v1/pages/{id}/generate.
type generateRequest struct {
	Preferences agentpages.DesignPreferences `json:"preferences"`
}

// generateResponse reports whether the fallback document was used.
type generateResponse struct {
	State    canvas.State `json:"state"`
	Fallback bool         `json:"fallback"`
	Warning  string       `json:"warning,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req generateRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	sess, err := s.session(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	resp := generateResponse{}
	doc, err := s.generator.Generate(r.Context(), sess.Property(), req.Preferences)
	if err != nil {
		// Generation failure falls back to a minimal valid document;
		// editing is never blocked.
		s.logger.Warn("generation failed, using fallback document",
			zap.String("page", id), zap.Error(err))
		doc = generate.FallbackDocument(sess.Property())
		resp.Fallback = true
		resp.Warning = "AI generation failed; starting from a basic layout"
	}

	sess.Replace(doc)
	resp.State = sess.State()
	s.respondJSON(w, http.StatusOK, resp)
}

// commandResponse is returned by the editor command endpoint.
type commandResponse struct {
	State canvas.State `json:"state"`
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var cmd canvas.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := s.session(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	state, err := sess.Apply(cmd)
	if err != nil {
		// Guard rejections are expected user-input conditions, not
		// faults: surface a warning, mutate nothing.
		switch {
		case errors.Is(err, agentpages.ErrRequiredSection),
			errors.Is(err, agentpages.ErrRequiredTypeDrop):
			s.respondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, agentpages.ErrSectionNotFound):
			s.respondError(w, http.StatusNotFound, err.Error())
		default:
			s.respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	s.respondJSON(w, http.StatusOK, commandResponse{State: state})
}

// handleCanvas serves the editing surface for a page: sections with
// editor chrome, the selection marked, and the blank-canvas affordance
// when the document has no sections.
func (s *Server) handleCanvas(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sess, err := s.session(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	state := sess.State()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = s.registry.RenderDocument(w, state.Document, render.DocumentOptions{
		Editing:    true,
		SelectedID: state.SelectedID,
	})
	if err != nil {
		s.logger.Error("canvas render failed", zap.String("page", id), zap.Error(err))
	}
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sess, err := s.session(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	doc := sess.Current()
	if err := s.registry.RenderDocument(w, doc, render.DocumentOptions{Editing: false}); err != nil {
		s.logger.Error("preview render failed", zap.String("page", id), zap.Error(err))
	}
}

// handlePublicPage serves the persisted document as a complete read-only
// HTML page.
func (s *Server) handlePublicPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	page, err := s.store.GetPage(r.Context(), id)
	if err != nil {
		if errors.Is(err, agentpages.ErrPageNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("load public page failed", zap.String("page", id), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.registry.RenderPage(w, page.Title, page.Document); err != nil {
		s.logger.Error("public page render failed", zap.String("page", id), zap.Error(err))
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	s.hub.add(id, conn)

	// Push the current preview immediately when a session is open.
	if sess, ok := s.sessions.peek(id); ok {
		s.pushPreview(id, sess.Current())
	}
}

// paletteResponse describes the section types the tool palette offers.
type paletteResponse struct {
	Required []string `json:"required"`
	Optional []string `json:"optional"`
}

func (s *Server) handlePalette(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, paletteResponse{
		Required: agentpages.RequiredTypes,
		Optional: agentpages.OptionalTypes,
	})
}

func (s *Server) respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, agentpages.ErrPageNotFound) {
		s.respondError(w, http.StatusNotFound, "page not found")
		return
	}
	s.logger.Error("store operation failed", zap.Error(err))
	s.respondError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encoding failed", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
