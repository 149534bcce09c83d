package generate

import (
	agentpages "github.com/agentpages/agentpages"
	"github.com/agentpages/agentpages/internal/render"
)

// FallbackDocument builds the minimal valid document used when generation
// fails: one section per required type with placeholder content seeded
// from the property metadata. The user is notified but editing proceeds.
func FallbackDocument(meta agentpages.PropertyMeta) agentpages.Document {
	sections := make([]agentpages.Section, 0, len(agentpages.RequiredTypes))
	for _, t := range agentpages.RequiredTypes {
		sections = append(sections, agentpages.NewSection(t, render.DefaultContent(t, meta), true))
	}
	return agentpages.Document{Sections: sections}
}
