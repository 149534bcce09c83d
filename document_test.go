package agentpages

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredTypes(t *testing.T) {
	assert.Equal(t, []string{TypeHero, TypeFeatures, TypeGallery, TypeDescription, TypeContact}, RequiredTypes)

	for _, typ := range RequiredTypes {
		assert.True(t, IsRequiredType(typ), typ)
	}
	for _, typ := range OptionalTypes {
		assert.False(t, IsRequiredType(typ), typ)
	}
	assert.False(t, IsRequiredType("video"))
	assert.False(t, IsRequiredType(""))
}

func TestNewSection(t *testing.T) {
	s := NewSection(TypeTestimonials, nil, false)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, TypeTestimonials, s.Type)
	assert.NotNil(t, s.Content)
	assert.False(t, s.Required)

	other := NewSection(TypeTestimonials, nil, false)
	assert.NotEqual(t, s.ID, other.ID)
}

func TestDocumentFind(t *testing.T) {
	doc := Document{Sections: []Section{
		{ID: "a", Type: TypeHero},
		{ID: "b", Type: TypeFeatures},
	}}

	assert.Equal(t, 0, doc.Find("a"))
	assert.Equal(t, 1, doc.Find("b"))
	assert.Equal(t, -1, doc.Find("missing"))
	assert.Equal(t, -1, doc.Find(""))
}

func TestDocumentCloneIsolation(t *testing.T) {
	doc := Document{
		Sections: []Section{
			{
				ID:   "s1",
				Type: TypeGallery,
				Content: map[string]any{
					"images": []any{"/a.jpg", "/b.jpg"},
					"agent":  map[string]any{"name": "Dana"},
				},
				Style: map[string]string{"background-color": "#fff"},
			},
		},
		GlobalStyles: map[string]any{"fontFamily": "serif"},
	}

	clone := doc.Clone()
	clone.Sections[0].Content["images"].([]any)[0] = "/changed.jpg"
	clone.Sections[0].Content["agent"].(map[string]any)["name"] = "Rex"
	clone.Sections[0].Style["background-color"] = "#000"
	clone.GlobalStyles["fontFamily"] = "sans-serif"
	clone.Sections = append(clone.Sections, Section{ID: "s2"})

	assert.Equal(t, "/a.jpg", doc.Sections[0].Content["images"].([]any)[0])
	assert.Equal(t, "Dana", doc.Sections[0].Content["agent"].(map[string]any)["name"])
	assert.Equal(t, "#fff", doc.Sections[0].Style["background-color"])
	assert.Equal(t, "serif", doc.GlobalStyles["fontFamily"])
	assert.Len(t, doc.Sections, 1)
}

func TestNormalize(t *testing.T) {
	doc := Document{Sections: []Section{
		{Type: TypeHero},
		{ID: "keep", Type: TypeFeatures, Content: map[string]any{"bedrooms": "3"}},
	}}

	doc.Normalize()

	assert.NotEmpty(t, doc.Sections[0].ID)
	assert.NotNil(t, doc.Sections[0].Content)
	assert.Equal(t, "keep", doc.Sections[1].ID)
	assert.Equal(t, "3", doc.Sections[1].Content["bedrooms"])
}

func TestNormalizeDoesNotInjectRequiredSections(t *testing.T) {
	doc := Document{Sections: []Section{{ID: "only", Type: TypeGallery}}}
	doc.Normalize()
	assert.Len(t, doc.Sections, 1)

	empty := Document{}
	empty.Normalize()
	assert.True(t, empty.IsEmpty())
}

func TestDocumentJSONRoundTrip(t *testing.T) {
	doc := Document{
		Sections: []Section{
			{
				ID:       "s1",
				Type:     TypeHero,
				Content:  map[string]any{"title": "12 Oak Lane", "price": "$450,000"},
				Style:    map[string]string{"color": "#333"},
				Required: true,
			},
		},
		GlobalStyles: map[string]any{"accent": "#1f6feb"},
	}

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var got Document
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, doc, got)
}
