// Package canvas implements the editor surface: one editing session per
// open page, owning selection state and the undo/redo history. Every
// committed mutation funnels through the history's single Set entry point.
package canvas

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	agentpages "github.com/agentpages/agentpages"
	"github.com/agentpages/agentpages/internal/render"
)

// Session is the editing state for one open page. A page has at most one
// session at a time; mutations are applied one gesture at a time under the
// session lock.
type Session struct {
	mu          sync.Mutex
	pageID      string
	meta        agentpages.PropertyMeta
	history     *agentpages.History[agentpages.Document]
	selectedID  string
	initialized bool
	logger      *zap.Logger
	onChange    func(doc agentpages.Document)
}

// State is the externally visible session snapshot.
type State struct {
	Document   agentpages.Document `json:"document"`
	SelectedID string              `json:"selectedId,omitempty"`
	CanUndo    bool                `json:"canUndo"`
	CanRedo    bool                `json:"canRedo"`
}

// NewSession opens an editing session over the given document.
func NewSession(pageID string, meta agentpages.PropertyMeta, doc agentpages.Document, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	doc.Normalize()
	return &Session{
		pageID:  pageID,
		meta:    meta,
		history: agentpages.NewDocumentHistory(doc),
		logger:  logger,
	}
}

// OnChange registers a callback invoked after every committed mutation
// (and after undo/redo) with the then-current document. The callback runs
// outside the session lock and may call back into the session.
func (s *Session) OnChange(fn func(doc agentpages.Document)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// PageID returns the page this session edits.
func (s *Session) PageID() string {
	return s.pageID
}

// Property returns the property metadata seeding default section content.
func (s *Session) Property() agentpages.PropertyMeta {
	return s.meta
}

// State returns the current document plus selection and history
// capabilities.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	return State{
		Document:   s.history.Current(),
		SelectedID: s.selectedID,
		CanUndo:    s.history.CanUndo(),
		CanRedo:    s.history.CanRedo(),
	}
}

// InitializeIfEmpty seeds an empty document with one section per required
// type, in canonical order, each marked required. Runs once per session
// lifetime and never touches a non-empty document.
func (s *Session) InitializeIfEmpty() {
	s.mu.Lock()

	if s.initialized {
		s.mu.Unlock()
		return
	}
	s.initialized = true

	doc := s.history.Current()
	if !doc.IsEmpty() {
		s.mu.Unlock()
		return
	}

	sections := make([]agentpages.Section, 0, len(agentpages.RequiredTypes))
	for _, t := range agentpages.RequiredTypes {
		sections = append(sections, agentpages.NewSection(t, render.DefaultContent(t, s.meta), true))
	}
	doc.Sections = sections
	notify := s.commitLocked(doc)
	s.mu.Unlock()

	s.logger.Debug("seeded required sections",
		zap.String("page", s.pageID),
		zap.Int("sections", len(sections)))
	notify()
}

// Select marks a section as selected. An empty id clears the selection.
// Returns the selected section for the editing panel.
func (s *Session) Select(id string) (agentpages.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		s.selectedID = ""
		return agentpages.Section{}, nil
	}

	doc := s.history.Current()
	idx := doc.Find(id)
	if idx < 0 {
		return agentpages.Section{}, agentpages.ErrSectionNotFound
	}
	s.selectedID = id
	return doc.Sections[idx], nil
}

// MoveSection removes the section at from and reinserts it at to,
// preserving the relative order of everything else.
func (s *Session) MoveSection(from, to int) error {
	s.mu.Lock()

	doc := s.history.Current()
	n := len(doc.Sections)
	if from < 0 || from >= n || to < 0 || to >= n {
		s.mu.Unlock()
		return fmt.Errorf("move section: index out of range (from=%d, to=%d, len=%d)", from, to, n)
	}
	if from == to {
		s.mu.Unlock()
		return nil
	}

	moved := doc.Sections[from]
	doc.Sections = append(doc.Sections[:from], doc.Sections[from+1:]...)
	doc.Sections = append(doc.Sections[:to], append([]agentpages.Section{moved}, doc.Sections[to:]...)...)

	notify := s.commitLocked(doc)
	s.mu.Unlock()
	notify()
	return nil
}

// InsertFromPalette appends a new section of the given type, built from
// the default content for this property. Required types are rejected:
// those sections are singletons and already exist.
func (s *Session) InsertFromPalette(sectionType string) (agentpages.Section, error) {
	s.mu.Lock()

	if agentpages.IsRequiredType(sectionType) {
		s.mu.Unlock()
		return agentpages.Section{}, agentpages.ErrRequiredTypeDrop
	}

	section := agentpages.NewSection(sectionType, render.DefaultContent(sectionType, s.meta), false)
	doc := s.history.Current()
	doc.Sections = append(doc.Sections, section)
	notify := s.commitLocked(doc)
	s.mu.Unlock()

	s.logger.Debug("inserted section",
		zap.String("page", s.pageID),
		zap.String("type", sectionType),
		zap.String("id", section.ID))
	notify()
	return section, nil
}

// Delete removes a section. Required sections refuse deletion and leave
// both the document and the history cursor untouched. Deleting the
// selected section clears the selection.
func (s *Session) Delete(id string) error {
	s.mu.Lock()

	doc := s.history.Current()
	idx := doc.Find(id)
	if idx < 0 {
		s.mu.Unlock()
		return agentpages.ErrSectionNotFound
	}
	if doc.Sections[idx].Required {
		s.mu.Unlock()
		return agentpages.ErrRequiredSection
	}

	doc.Sections = append(doc.Sections[:idx], doc.Sections[idx+1:]...)
	if s.selectedID == id {
		s.selectedID = ""
	}
	notify := s.commitLocked(doc)
	s.mu.Unlock()
	notify()
	return nil
}

// UpdateSection replaces a section's content and/or style from the editing
// panel. A nil map leaves the corresponding field unchanged.
func (s *Session) UpdateSection(id string, content map[string]any, style map[string]string) error {
	s.mu.Lock()

	doc := s.history.Current()
	idx := doc.Find(id)
	if idx < 0 {
		s.mu.Unlock()
		return agentpages.ErrSectionNotFound
	}

	if content != nil {
		doc.Sections[idx].Content = content
	}
	if style != nil {
		doc.Sections[idx].Style = style
	}
	notify := s.commitLocked(doc)
	s.mu.Unlock()
	notify()
	return nil
}

// Replace swaps in a whole new document (for example from the AI
// generator) and resets the history to a single snapshot.
func (s *Session) Replace(doc agentpages.Document) {
	s.mu.Lock()

	doc.Normalize()
	s.history = agentpages.NewDocumentHistory(doc)
	s.selectedID = ""
	notify := s.notifyFuncLocked(doc)
	s.mu.Unlock()
	notify()
}

// Undo steps the history back one snapshot; a no-op at the bound.
func (s *Session) Undo() {
	s.mu.Lock()
	s.history.Undo()
	s.clearDanglingSelectionLocked()
	notify := s.notifyFuncLocked(s.history.Current())
	s.mu.Unlock()
	notify()
}

// Redo steps the history forward one snapshot; a no-op at the bound.
func (s *Session) Redo() {
	s.mu.Lock()
	s.history.Redo()
	s.clearDanglingSelectionLocked()
	notify := s.notifyFuncLocked(s.history.Current())
	s.mu.Unlock()
	notify()
}

// Current returns the document at the history cursor.
func (s *Session) Current() agentpages.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Current()
}

// commitLocked pushes a new snapshot and returns the pending listener
// notification. Callers hold the session lock and must invoke the
// returned func after releasing it, so a slow listener never stalls
// other editor commands.
func (s *Session) commitLocked(doc agentpages.Document) func() {
	s.history.Set(doc)
	return s.notifyFuncLocked(doc)
}

func (s *Session) notifyFuncLocked(doc agentpages.Document) func() {
	fn := s.onChange
	if fn == nil {
		return func() {}
	}
	snapshot := doc.Clone()
	return func() { fn(snapshot) }
}

// clearDanglingSelectionLocked drops the selection if undo/redo removed
// the selected section from the current snapshot.
func (s *Session) clearDanglingSelectionLocked() {
	if s.selectedID == "" {
		return
	}
	if s.history.Current().Find(s.selectedID) < 0 {
		s.selectedID = ""
	}
}
