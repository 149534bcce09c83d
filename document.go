// Package agentpages provides the core document model for the AgentPages
// landing-page builder: ordered typed sections, undo/redo history, and the
// property metadata that seeds newly created sections.
package agentpages

import "github.com/google/uuid"

// Section is one visually distinct block of a landing page.
type Section struct {
	ID       string            `json:"id"`
	Type     string            `json:"type"`
	Content  map[string]any    `json:"content"`
	Style    map[string]string `json:"style,omitempty"`
	Required bool              `json:"required"`
}

// Document is the full content of one landing page. Section order is the
// rendered page order.
type Document struct {
	Sections     []Section      `json:"sections"`
	GlobalStyles map[string]any `json:"globalStyles,omitempty"`
}

// Known section types. The set is open: unknown types are rendered as a
// placeholder in the editor and skipped on the public page.
const (
	TypeHero         = "hero"
	TypeFeatures     = "features"
	TypeGallery      = "gallery"
	TypeDescription  = "description"
	TypeContact      = "contact"
	TypeAmenities    = "amenities"
	TypeLocation     = "location"
	TypeNeighborhood = "neighborhood"
	TypeFloorPlan    = "floorplan"
	TypeTestimonials = "testimonials"
	TypeSimilar      = "similar"
)

// RequiredTypes lists the section types every property page starts with,
// in canonical order. These sections are singletons and cannot be deleted.
var RequiredTypes = []string{
	TypeHero,
	TypeFeatures,
	TypeGallery,
	TypeDescription,
	TypeContact,
}

// OptionalTypes lists the non-required property sections offered by the
// palette.
var OptionalTypes = []string{
	TypeAmenities,
	TypeLocation,
	TypeNeighborhood,
	TypeFloorPlan,
	TypeTestimonials,
	TypeSimilar,
}

// DecorativeTypes lists purely presentational section types the AI
// generator may emit.
var DecorativeTypes = []string{
	"showcase",
	"stats",
	"timeline",
	"panorama",
	"highlights",
	"video",
	"comparison",
	"calculator",
}

// IsRequiredType reports whether t is in the required set.
func IsRequiredType(t string) bool {
	for _, rt := range RequiredTypes {
		if rt == t {
			return true
		}
	}
	return false
}

// NewSectionID returns a fresh process-unique section identifier.
func NewSectionID() string {
	return uuid.NewString()
}

// NewSection builds a section of the given type with a fresh ID.
func NewSection(sectionType string, content map[string]any, required bool) Section {
	if content == nil {
		content = map[string]any{}
	}
	return Section{
		ID:       NewSectionID(),
		Type:     sectionType,
		Content:  content,
		Required: required,
	}
}

// Find returns the index of the section with the given ID, or -1.
func (d Document) Find(id string) int {
	for i, s := range d.Sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the document has no sections.
func (d Document) IsEmpty() bool {
	return len(d.Sections) == 0
}

// Clone returns a deep copy of the document. History snapshots rely on
// clones being fully isolated from later edits.
func (d Document) Clone() Document {
	out := Document{}
	if d.Sections != nil {
		out.Sections = make([]Section, len(d.Sections))
		for i, s := range d.Sections {
			out.Sections[i] = s.Clone()
		}
	}
	if d.GlobalStyles != nil {
		out.GlobalStyles = cloneValueMap(d.GlobalStyles)
	}
	return out
}

// Clone returns a deep copy of the section.
func (s Section) Clone() Section {
	out := s
	out.Content = cloneValueMap(s.Content)
	if s.Style != nil {
		out.Style = make(map[string]string, len(s.Style))
		for k, v := range s.Style {
			out.Style[k] = v
		}
	}
	return out
}

// Normalize repairs a document arriving from the AI generator or from
// persistence: missing section IDs are filled in and nil payload maps are
// replaced with empty ones. It does not inject missing required sections;
// that invariant belongs to the editor (Canvas.InitializeIfEmpty).
func (d *Document) Normalize() {
	for i := range d.Sections {
		if d.Sections[i].ID == "" {
			d.Sections[i].ID = NewSectionID()
		}
		if d.Sections[i].Content == nil {
			d.Sections[i].Content = map[string]any{}
		}
	}
}

func cloneValueMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneValueMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return v
	}
}
