package canvas

import (
	"fmt"
	"strings"
)

// Command is one discrete editor gesture. Every gesture maps to exactly
// one history snapshot when it succeeds; rejected commands leave the
// document and the cursor untouched.
type Command struct {
	Op        string            `json:"op"`
	SectionID string            `json:"sectionId,omitempty"`
	Type      string            `json:"type,omitempty"`
	From      int               `json:"from,omitempty"`
	To        int               `json:"to,omitempty"`
	Content   map[string]any    `json:"content,omitempty"`
	Style     map[string]string `json:"style,omitempty"`
}

// Command operations.
const (
	OpInit   = "init"
	OpSelect = "select"
	OpMove   = "move"
	OpInsert = "insert"
	OpDelete = "delete"
	OpUpdate = "update"
	OpUndo   = "undo"
	OpRedo   = "redo"
)

// Apply dispatches a command against the session and returns the
// resulting state.
func (s *Session) Apply(cmd Command) (State, error) {
	var err error

	switch strings.ToLower(cmd.Op) {
	case OpInit:
		s.InitializeIfEmpty()
	case OpSelect:
		_, err = s.Select(cmd.SectionID)
	case OpMove:
		err = s.MoveSection(cmd.From, cmd.To)
	case OpInsert:
		_, err = s.InsertFromPalette(cmd.Type)
	case OpDelete:
		err = s.Delete(cmd.SectionID)
	case OpUpdate:
		err = s.UpdateSection(cmd.SectionID, cmd.Content, cmd.Style)
	case OpUndo:
		s.Undo()
	case OpRedo:
		s.Redo()
	default:
		err = fmt.Errorf("unknown command: %s", cmd.Op)
	}

	if err != nil {
		return State{}, err
	}
	return s.State(), nil
}
