package agentpages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistorySetAdvancesCursor(t *testing.T) {
	h := NewHistory(0, nil)

	h.Set(1)
	h.Set(2)

	assert.Equal(t, 2, h.Current())
	assert.Equal(t, 3, h.Len())
	assert.True(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}

func TestHistoryUndoRedo(t *testing.T) {
	h := NewHistory("a", nil)
	h.Set("b")
	h.Set("c")

	h.Undo()
	assert.Equal(t, "b", h.Current())
	assert.True(t, h.CanRedo())

	h.Undo()
	assert.Equal(t, "a", h.Current())
	assert.False(t, h.CanUndo())

	h.Redo()
	h.Redo()
	assert.Equal(t, "c", h.Current())
	assert.False(t, h.CanRedo())
}

func TestHistoryBoundsAreSilentNoOps(t *testing.T) {
	h := NewHistory(42, nil)

	h.Undo()
	h.Undo()
	assert.Equal(t, 42, h.Current())

	h.Redo()
	h.Redo()
	assert.Equal(t, 42, h.Current())
	assert.Equal(t, 1, h.Len())
}

func TestHistorySetAfterUndoDiscardsRedoBranch(t *testing.T) {
	h := NewHistory("a", nil)
	h.Set("b")
	h.Set("c")
	h.Undo()
	h.Undo()

	h.Set("x")

	assert.Equal(t, "x", h.Current())
	assert.False(t, h.CanRedo())
	assert.Equal(t, 2, h.Len())

	h.Undo()
	assert.Equal(t, "a", h.Current())
}

func TestHistoryUpdate(t *testing.T) {
	h := NewHistory(10, nil)

	h.Update(func(prev int) int { return prev * 2 })
	h.Update(func(prev int) int { return prev + 1 })

	assert.Equal(t, 21, h.Current())
	h.Undo()
	assert.Equal(t, 20, h.Current())
}

func TestDocumentHistorySnapshotIsolation(t *testing.T) {
	doc := Document{
		Sections: []Section{
			{ID: "s1", Type: TypeHero, Content: map[string]any{"title": "Original"}},
		},
	}
	h := NewDocumentHistory(doc)

	// Mutating the document handed to Set must not reach the stored
	// snapshot.
	next := h.Current()
	next.Sections[0].Content["title"] = "Changed"
	h.Set(next)
	next.Sections[0].Content["title"] = "Mutated after commit"

	assert.Equal(t, "Changed", h.Current().Sections[0].Content["title"])

	// Mutating what Current returns must not reach the snapshot either.
	cur := h.Current()
	cur.Sections[0].Content["title"] = "Mutated via read"
	assert.Equal(t, "Changed", h.Current().Sections[0].Content["title"])

	h.Undo()
	require.Equal(t, "Original", h.Current().Sections[0].Content["title"])
}
