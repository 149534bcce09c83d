package agentpages

import "strings"

// PropertyMeta is the listing data a page is built from. The builder only
// reads it as a default-content seed when sections are created; it does not
// validate or own the listing itself.
type PropertyMeta struct {
	Title         string        `json:"title" validate:"required"`
	Price         string        `json:"price"`
	Bedrooms      string        `json:"bedrooms"`
	Bathrooms     string        `json:"bathrooms"`
	SquareFootage string        `json:"squareFootage"`
	Address       string        `json:"address"`
	Description   string        `json:"description"`
	Features      []string      `json:"features,omitempty"`
	Images        []string      `json:"images,omitempty"`
	Agent         *AgentContact `json:"agent,omitempty"`
}

// AgentContact is the listing agent's contact block.
type AgentContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email" validate:"omitempty,email"`
	Photo string `json:"photo,omitempty"`
	Hours string `json:"hours,omitempty"`
}

// DesignPreferences are the free-form styling hints passed to the AI
// generator alongside the property metadata.
type DesignPreferences struct {
	Industry            string   `json:"industry,omitempty"`
	TargetAudience      string   `json:"target_audience,omitempty"`
	ToneOfVoice         string   `json:"tone_of_voice,omitempty"`
	KeyFeatures         []string `json:"key_features,omitempty"`
	UniqueSellingPoints []string `json:"unique_selling_points,omitempty"`
}

// Page is one stored landing page: the listing it markets plus its
// section document.
type Page struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Slug     string       `json:"slug"`
	Property PropertyMeta `json:"property"`
	Document Document     `json:"document"`
}

// NewPage creates a page with a fresh ID, a slug derived from the title,
// and an empty document.
func NewPage(title string, property PropertyMeta) *Page {
	return &Page{
		ID:       NewSectionID(),
		Title:    title,
		Slug:     Slugify(title),
		Property: property,
		Document: Document{Sections: []Section{}},
	}
}

// Slugify turns a title into a URL-safe slug: lowercase, runs of
// non-alphanumerics collapsed to single hyphens.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
