package server

import (
	"context"
	"sync"

	"go.uber.org/zap"

	agentpages "github.com/agentpages/agentpages"
	"github.com/agentpages/agentpages/internal/canvas"
	"github.com/agentpages/agentpages/internal/store"
)

// sessions holds the open editing sessions, one per page. A page's
// document/history pair is owned by exactly one session at a time.
type sessions struct {
	mu      sync.Mutex
	open    map[string]*canvas.Session
	store   store.Store
	logger  *zap.Logger
	changed func(pageID string, doc agentpages.Document)
}

func newSessions(st store.Store, logger *zap.Logger, changed func(string, agentpages.Document)) *sessions {
	return &sessions{
		open:    make(map[string]*canvas.Session),
		store:   st,
		logger:  logger,
		changed: changed,
	}
}

// get returns the open session for a page, loading the page from the
// store and opening one if needed.
func (s *sessions) get(ctx context.Context, pageID string) (*canvas.Session, error) {
	s.mu.Lock()
	if sess, ok := s.open[pageID]; ok {
		s.mu.Unlock()
		return sess, nil
	}
	s.mu.Unlock()

	page, err := s.store.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another request may have opened the session while we were loading.
	if sess, ok := s.open[pageID]; ok {
		return sess, nil
	}

	sess := canvas.NewSession(pageID, page.Property, page.Document, s.logger)
	if s.changed != nil {
		id := pageID
		sess.OnChange(func(doc agentpages.Document) {
			s.changed(id, doc)
		})
	}
	s.open[pageID] = sess
	s.logger.Debug("opened editing session", zap.String("page", pageID))
	return sess, nil
}

// peek returns the open session without loading anything.
func (s *sessions) peek(pageID string) (*canvas.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.open[pageID]
	return sess, ok
}

// save persists the session's current snapshot. The snapshot is captured
// before the store call, so edits made while the save is in flight land
// in the next save, never in this one.
func (s *sessions) save(ctx context.Context, pageID string) error {
	sess, ok := s.peek(pageID)
	if !ok {
		return agentpages.ErrPageNotFound
	}
	snapshot := sess.Current()
	return s.store.SaveDocument(ctx, pageID, snapshot)
}

// drop closes the session for a deleted page.
func (s *sessions) drop(pageID string) {
	s.mu.Lock()
	delete(s.open, pageID)
	s.mu.Unlock()
}
