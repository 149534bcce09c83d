package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	agentpages "github.com/agentpages/agentpages"
	"github.com/agentpages/agentpages/internal/config"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func testPage() *agentpages.Page {
	page := agentpages.NewPage("12 Oak Lane", agentpages.PropertyMeta{
		Title:    "12 Oak Lane",
		Price:    "$450,000",
		Bedrooms: "3",
		Features: []string{"Garage"},
		Agent:    &agentpages.AgentContact{Name: "Dana Reeves", Email: "dana@example.com"},
	})
	page.Document = agentpages.Document{
		Sections: []agentpages.Section{
			{
				ID:       "s1",
				Type:     agentpages.TypeHero,
				Content:  map[string]any{"title": "12 Oak Lane", "price": "$450,000"},
				Style:    map[string]string{"min-height": "500px"},
				Required: true,
			},
			{
				ID:      "s2",
				Type:    agentpages.TypeGallery,
				Content: map[string]any{"images": []any{"/a.jpg"}},
			},
		},
		GlobalStyles: map[string]any{"accent": "#1f6feb"},
	}
	return page
}

func TestSQLiteRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	page := testPage()
	require.NoError(t, st.CreatePage(ctx, page))

	got, err := st.GetPage(ctx, page.ID)
	require.NoError(t, err)

	assert.Equal(t, page.ID, got.ID)
	assert.Equal(t, page.Title, got.Title)
	assert.Equal(t, page.Slug, got.Slug)
	assert.Equal(t, page.Property, got.Property)
	assert.Equal(t, page.Document, got.Document)
}

func TestSQLiteGetMissing(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetPage(context.Background(), "missing")
	assert.ErrorIs(t, err, agentpages.ErrPageNotFound)
}

func TestSQLiteSaveDocument(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	page := testPage()
	require.NoError(t, st.CreatePage(ctx, page))

	next := page.Document.Clone()
	next.Sections = append(next.Sections, agentpages.Section{
		ID:   "s3",
		Type: agentpages.TypeLocation,
		Content: map[string]any{
			"address": "12 Oak Lane, Springfield",
		},
	})
	require.NoError(t, st.SaveDocument(ctx, page.ID, next))

	got, err := st.GetPage(ctx, page.ID)
	require.NoError(t, err)
	require.Len(t, got.Document.Sections, 3)
	assert.Equal(t, agentpages.TypeLocation, got.Document.Sections[2].Type)

	// Order, flags and styles survive the trip.
	assert.True(t, got.Document.Sections[0].Required)
	assert.Equal(t, "500px", got.Document.Sections[0].Style["min-height"])
}

func TestSQLiteSaveDocumentMissingPage(t *testing.T) {
	st := newTestStore(t)

	err := st.SaveDocument(context.Background(), "missing", agentpages.Document{})
	assert.ErrorIs(t, err, agentpages.ErrPageNotFound)
}

func TestSQLiteListPages(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	pages, err := st.ListPages(ctx)
	require.NoError(t, err)
	assert.Empty(t, pages)

	a := agentpages.NewPage("First", agentpages.PropertyMeta{Title: "First"})
	b := agentpages.NewPage("Second", agentpages.PropertyMeta{Title: "Second"})
	require.NoError(t, st.CreatePage(ctx, a))
	require.NoError(t, st.CreatePage(ctx, b))

	pages, err = st.ListPages(ctx)
	require.NoError(t, err)
	require.Len(t, pages, 2)

	titles := []string{pages[0].Title, pages[1].Title}
	assert.ElementsMatch(t, []string{"First", "Second"}, titles)
}

func TestSQLiteHasPage(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	ok, err := st.HasPage(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	page := testPage()
	require.NoError(t, st.CreatePage(ctx, page))

	ok, err = st.HasPage(ctx, page.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLiteDeletePage(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	page := testPage()
	require.NoError(t, st.CreatePage(ctx, page))
	require.NoError(t, st.DeletePage(ctx, page.ID))

	_, err := st.GetPage(ctx, page.ID)
	assert.ErrorIs(t, err, agentpages.ErrPageNotFound)

	err = st.DeletePage(ctx, page.ID)
	assert.ErrorIs(t, err, agentpages.ErrPageNotFound)
}

func TestSQLiteNormalizesOnLoad(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	page := agentpages.NewPage("Fixer", agentpages.PropertyMeta{Title: "Fixer"})
	require.NoError(t, st.CreatePage(ctx, page))

	// A hand-written document can lack section ids and content maps.
	_, err := st.db.ExecContext(ctx,
		`UPDATE pages SET document = ? WHERE id = ?`,
		`{"sections":[{"type":"hero"}]}`, page.ID)
	require.NoError(t, err)

	got, err := st.GetPage(ctx, page.ID)
	require.NoError(t, err)
	require.Len(t, got.Document.Sections, 1)
	assert.NotEmpty(t, got.Document.Sections[0].ID)
	assert.NotNil(t, got.Document.Sections[0].Content)
}

func TestSQLiteCorruptDocument(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	page := agentpages.NewPage("Broken", agentpages.PropertyMeta{Title: "Broken"})
	require.NoError(t, st.CreatePage(ctx, page))

	_, err := st.db.ExecContext(ctx,
		`UPDATE pages SET document = ? WHERE id = ?`, `{not json`, page.ID)
	require.NoError(t, err)

	_, err = st.GetPage(ctx, page.ID)
	require.Error(t, err)
	var docErr *agentpages.DocumentError
	require.ErrorAs(t, err, &docErr)
	assert.Equal(t, "store", docErr.Source)
}

func TestOpenSelectsDriver(t *testing.T) {
	st, err := Open(config.StorageConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "open.db"),
	})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, err = Open(config.StorageConfig{Driver: "oracle"})
	assert.Error(t, err)
}
