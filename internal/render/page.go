package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	agentpages "github.com/agentpages/agentpages"
)

// DocumentOptions controls whole-document rendering.
type DocumentOptions struct {
	// Editing selects canvas rendering. Off renders the read-only page.
	Editing bool
	// SelectedID marks the selected section when editing.
	SelectedID string
}

// emptyCanvas is shown in the editor when the document has no sections.
// It is an affordance, not a loading state: the document is loaded and
// genuinely empty.
const emptyCanvas = `<div class="ap-empty">
<p class="ap-empty-title">Start with a blank canvas</p>
<p class="ap-empty-hint">Generate a unique design with AI or drag sections from the menu</p>
</div>`

// RenderDocument writes every section of the document, in order, through
// the registry. An empty document renders the blank-canvas affordance
// when editing and nothing otherwise; neither is an error.
func (r *Registry) RenderDocument(w io.Writer, doc agentpages.Document, opts DocumentOptions) error {
	if opts.Editing && doc.IsEmpty() {
		_, err := io.WriteString(w, emptyCanvas)
		return err
	}
	for _, s := range doc.Sections {
		err := r.Render(w, s, Options{
			Editing:  opts.Editing,
			Selected: opts.Editing && opts.SelectedID == s.ID,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// pageShell wraps rendered sections into a complete HTML document for the
// public page and the preview endpoint.
var pageShell = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="/assets/agentpages.css">
</head>
<body class="ap-page">
{{.Body}}
</body>
</html>
`))

// RenderPage writes a complete public HTML page for the document. Editing
// chrome never appears and unknown section types are skipped silently.
func (r *Registry) RenderPage(w io.Writer, title string, doc agentpages.Document) error {
	var body bytes.Buffer
	if err := r.RenderDocument(&body, doc, DocumentOptions{Editing: false}); err != nil {
		return fmt.Errorf("render page body: %w", err)
	}
	return pageShell.Execute(w, struct {
		Title string
		Body  template.HTML
	}{Title: title, Body: template.HTML(body.String())})
}
