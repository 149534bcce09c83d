package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	agentpages "github.com/agentpages/agentpages"
	"github.com/agentpages/agentpages/internal/canvas"
	"github.com/agentpages/agentpages/internal/config"
	"github.com/agentpages/agentpages/internal/generate"
	"github.com/agentpages/agentpages/internal/render"
	"github.com/agentpages/agentpages/internal/store"
)

type testEnv struct {
	server  *Server
	handler http.Handler
	store   store.Store
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cfg.Storage = config.StorageConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "api.db"),
	}

	st, err := store.Open(cfg.Storage)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	generator := generate.NewClient(cfg.Generator, zap.NewNop())
	srv := New(cfg, st, render.New(), generator, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return &testEnv{
		server:  srv,
		handler: srv.Router(ctx),
		store:   st,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) createPage(t *testing.T) *agentpages.Page {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/pages", map[string]any{
		"title": "12 Oak Lane",
		"property": map[string]any{
			"title":    "12 Oak Lane",
			"price":    "$450,000",
			"bedrooms": "3",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var page agentpages.Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.NotEmpty(t, page.ID)
	return &page
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) canvas.State {
	t.Helper()
	var resp struct {
		State canvas.State `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.State
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestPageCSS(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/assets/agentpages.css", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
	assert.Contains(t, rec.Body.String(), ".ap-section")
}

func TestCreatePageValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/pages", map[string]any{
		"property": map[string]any{"title": "No page title"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/pages", map[string]any{
		"title":    "Has title",
		"property": map[string]any{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAndGetPage(t *testing.T) {
	env := newTestEnv(t, nil)
	page := env.createPage(t)

	rec := env.do(t, http.MethodGet, "/api/v1/pages/"+page.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got agentpages.Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, page.ID, got.ID)
	assert.Equal(t, "12 Oak Lane", got.Title)
	assert.Empty(t, got.Document.Sections)
}

func TestGetPageNotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/api/v1/pages/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListPages(t *testing.T) {
	env := newTestEnv(t, nil)
	env.createPage(t)
	env.createPage(t)

	rec := env.do(t, http.MethodGet, "/api/v1/pages", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Pages []store.PageSummary `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Pages, 2)
}

func TestDeletePage(t *testing.T) {
	env := newTestEnv(t, nil)
	page := env.createPage(t)

	rec := env.do(t, http.MethodDelete, "/api/v1/pages/"+page.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/pages/"+page.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/pages/"+page.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func commandURL(pageID string) string {
	return fmt.Sprintf("/api/v1/pages/%s/commands", pageID)
}

func TestCommandFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	page := env.createPage(t)

	// init seeds the five required sections.
	rec := env.do(t, http.MethodPost, commandURL(page.ID), canvas.Command{Op: canvas.OpInit})
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec)
	require.Len(t, state.Document.Sections, 5)

	// Palette insert appends an optional section.
	rec = env.do(t, http.MethodPost, commandURL(page.ID), canvas.Command{
		Op: canvas.OpInsert, Type: agentpages.TypeTestimonials,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	state = decodeState(t, rec)
	require.Len(t, state.Document.Sections, 6)
	assert.True(t, state.CanUndo)

	// Undo steps back.
	rec = env.do(t, http.MethodPost, commandURL(page.ID), canvas.Command{Op: canvas.OpUndo})
	require.Equal(t, http.StatusOK, rec.Code)
	state = decodeState(t, rec)
	assert.Len(t, state.Document.Sections, 5)
	assert.True(t, state.CanRedo)
}

func TestCommandGuards(t *testing.T) {
	env := newTestEnv(t, nil)
	page := env.createPage(t)

	rec := env.do(t, http.MethodPost, commandURL(page.ID), canvas.Command{Op: canvas.OpInit})
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec)
	heroID := state.Document.Sections[0].ID

	// Deleting a required section is a conflict, not a server fault.
	rec = env.do(t, http.MethodPost, commandURL(page.ID), canvas.Command{
		Op: canvas.OpDelete, SectionID: heroID,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Palette drops of required types are refused the same way.
	rec = env.do(t, http.MethodPost, commandURL(page.ID), canvas.Command{
		Op: canvas.OpInsert, Type: agentpages.TypeHero,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, commandURL(page.ID), canvas.Command{
		Op: canvas.OpDelete, SectionID: "missing",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, commandURL(page.ID), canvas.Command{Op: "explode"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Nothing mutated along the way.
	rec = env.do(t, http.MethodPost, commandURL(page.ID), canvas.Command{Op: canvas.OpSelect})
	state = decodeState(t, rec)
	assert.Len(t, state.Document.Sections, 5)
	assert.False(t, state.CanRedo)
}

func TestCommandUnknownPage(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodPost, commandURL("missing"), canvas.Command{Op: canvas.OpInit})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveAndReload(t *testing.T) {
	env := newTestEnv(t, nil)
	page := env.createPage(t)

	rec := env.do(t, http.MethodPost, commandURL(page.ID), canvas.Command{Op: canvas.OpInit})
	require.Equal(t, http.StatusOK, rec.Code)

	// Empty body persists the session snapshot.
	rec = env.do(t, http.MethodPut, "/api/v1/pages/"+page.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := env.store.GetPage(context.Background(), page.ID)
	require.NoError(t, err)
	assert.Len(t, got.Document.Sections, 5)
}

func TestSaveExplicitDocument(t *testing.T) {
	env := newTestEnv(t, nil)
	page := env.createPage(t)

	rec := env.do(t, http.MethodPut, "/api/v1/pages/"+page.ID, map[string]any{
		"document": map[string]any{
			"sections": []map[string]any{
				{"type": "hero", "content": map[string]any{"title": "Saved"}},
			},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := env.store.GetPage(context.Background(), page.ID)
	require.NoError(t, err)
	require.Len(t, got.Document.Sections, 1)
	assert.Equal(t, "Saved", got.Document.Sections[0].Content["title"])
	assert.NotEmpty(t, got.Document.Sections[0].ID)
}

func TestSaveNoSessionIsNoOp(t *testing.T) {
	env := newTestEnv(t, nil)
	page := env.createPage(t)

	rec := env.do(t, http.MethodPut, "/api/v1/pages/"+page.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/v1/pages/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateFallsBack(t *testing.T) {
	// No generator endpoint configured: generation fails and the fallback
	// document is installed instead of an error.
	env := newTestEnv(t, nil)
	page := env.createPage(t)

	rec := env.do(t, http.MethodPost, "/api/v1/pages/"+page.ID+"/generate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		State    canvas.State `json:"state"`
		Fallback bool         `json:"fallback"`
		Warning  string       `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Fallback)
	assert.NotEmpty(t, resp.Warning)
	require.Len(t, resp.State.Document.Sections, 5)
	assert.False(t, resp.State.CanUndo)
}

func TestCanvasEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	page := env.createPage(t)

	// A fresh page has no sections: the canvas shows the blank-canvas
	// affordance, distinct from rendering nothing.
	rec := env.do(t, http.MethodGet, "/api/v1/pages/"+page.ID+"/canvas", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Start with a blank canvas")

	// After initialization the canvas shows sections with editor chrome.
	rec = env.do(t, http.MethodPost, commandURL(page.ID), canvas.Command{Op: canvas.OpInit})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/pages/"+page.ID+"/canvas", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	html := rec.Body.String()
	assert.NotContains(t, html, "ap-empty")
	assert.Contains(t, html, "ap-hero")
	assert.Contains(t, html, "ap-drag-handle")

	rec = env.do(t, http.MethodGet, "/api/v1/pages/missing/canvas", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCanvasMarksSelection(t *testing.T) {
	env := newTestEnv(t, nil)
	page := env.createPage(t)

	rec := env.do(t, http.MethodPost, commandURL(page.ID), canvas.Command{Op: canvas.OpInit})
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec)
	heroID := state.Document.Sections[0].ID

	rec = env.do(t, http.MethodPost, commandURL(page.ID), canvas.Command{
		Op: canvas.OpSelect, SectionID: heroID,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/pages/"+page.ID+"/canvas", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ap-selected")
}

func TestPreviewEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	page := env.createPage(t)

	rec := env.do(t, http.MethodPost, commandURL(page.ID), canvas.Command{Op: canvas.OpInit})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/pages/"+page.ID+"/preview", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	html := rec.Body.String()
	assert.Contains(t, html, "ap-hero")
	// The preview side carries no editing chrome.
	assert.NotContains(t, html, "ap-drag-handle")
	assert.NotContains(t, html, "ap-delete")
}

func TestPublicPage(t *testing.T) {
	env := newTestEnv(t, nil)
	page := env.createPage(t)

	doc := agentpages.Document{Sections: []agentpages.Section{
		{ID: "s1", Type: agentpages.TypeHero, Content: map[string]any{"title": "12 Oak Lane"}, Required: true},
		{ID: "s2", Type: "hologram"},
	}}
	require.NoError(t, env.store.SaveDocument(context.Background(), page.ID, doc))

	rec := env.do(t, http.MethodGet, "/p/"+page.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	html := rec.Body.String()
	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "<title>12 Oak Lane</title>")
	// Unknown types are skipped without a trace on the public page.
	assert.NotContains(t, html, "hologram")
	assert.NotContains(t, html, "Unknown section type")
}

func TestPublicPageNotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/p/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPaletteEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/palette", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Required []string `json:"required"`
		Optional []string `json:"optional"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, agentpages.RequiredTypes, resp.Required)
	assert.Equal(t, agentpages.OptionalTypes, resp.Optional)
}

func TestAuthMiddleware(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.API = &config.APIConfig{
		Auth: &config.AuthConfig{APIKey: "sekrit"},
	}
	env := newTestEnv(t, cfg)

	rec := env.do(t, http.MethodGet, "/api/v1/pages", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pages", nil)
	req.Header.Set("X-API-Key", "wrong")
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/pages", nil)
	req.Header.Set("X-API-Key", "sekrit")
	rr = httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	// Health stays public.
	rec = env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.API = &config.APIConfig{
		RateLimit: &config.RateLimitConfig{RequestsPerSecond: 1, Burst: 2},
	}
	env := newTestEnv(t, cfg)

	var limited bool
	for i := 0; i < 10; i++ {
		rec := env.do(t, http.MethodGet, "/api/v1/pages", nil)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			assert.NotEmpty(t, rec.Header().Get("Retry-After"))
			break
		}
	}
	assert.True(t, limited)
}

func TestBadRequestBodies(t *testing.T) {
	env := newTestEnv(t, nil)
	page := env.createPage(t)

	for _, path := range []string{
		"/api/v1/pages",
		commandURL(page.ID),
	} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader("{broken"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}
