// Package render maps section types to HTML output. The same registry
// renders the editable canvas and the read-only public page; editing chrome
// is the only difference between the two.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	agentpages "github.com/agentpages/agentpages"
)

// Options controls how a section is rendered.
type Options struct {
	// Editing enables editor chrome: section wrapper, drag handle, delete
	// button, selection outline, and the visible unknown-type placeholder.
	Editing bool
	// Selected marks the section currently selected in the editor. Only
	// meaningful when Editing is set.
	Selected bool
}

// sectionView is the data every section template executes against.
type sectionView struct {
	ID       string
	Type     string
	Content  map[string]any
	Style    template.CSS
	Editing  bool
	Selected bool
	Required bool
}

// Registry maps section types to templates and default-content builders.
type Registry struct {
	mu          sync.RWMutex
	templates   *template.Template
	overrideDir string
	markdown    goldmark.Markdown
}

// New creates a registry with the built-in section templates.
func New() *Registry {
	r := &Registry{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
	}
	r.templates = template.Must(r.parseBuiltins())
	return r
}

// NewWithOverrides creates a registry that layers per-type template
// overrides from dir/sections/<type>.html over the built-ins.
func NewWithOverrides(dir string) (*Registry, error) {
	r := New()
	r.overrideDir = dir
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-parses built-ins and any override files. Used by the template
// watcher in debug mode.
func (r *Registry) Reload() error {
	tmpl, err := r.parseBuiltins()
	if err != nil {
		return err
	}

	if r.overrideDir != "" {
		pattern := filepath.Join(r.overrideDir, "sections", "*.html")
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return err
		}
		for _, path := range matches {
			name := strings.TrimSuffix(filepath.Base(path), ".html")
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("template override %s: %w", path, err)
			}
			// Redefining a template name replaces the built-in.
			if _, err := tmpl.New(sectionTemplateName(name)).Parse(string(data)); err != nil {
				return fmt.Errorf("template override %s: %w", path, err)
			}
		}
	}

	r.mu.Lock()
	r.templates = tmpl
	r.mu.Unlock()
	return nil
}

func (r *Registry) parseBuiltins() (*template.Template, error) {
	tmpl := template.New("sections").Funcs(template.FuncMap{
		"markdown": r.renderMarkdown,
	})
	for name, text := range builtinTemplates {
		var err error
		tmpl, err = tmpl.New(sectionTemplateName(name)).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("builtin template %q: %w", name, err)
		}
	}
	var err error
	tmpl, err = tmpl.New("chrome").Parse(chromeTemplate)
	if err != nil {
		return nil, err
	}
	return tmpl, nil
}

func sectionTemplateName(sectionType string) string {
	return "section/" + sectionType
}

// Known reports whether the registry has a template for the given type.
func (r *Registry) Known(sectionType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.templates.Lookup(sectionTemplateName(sectionType)) != nil
}

// Render writes one section as HTML. The output depends only on the
// section and options. Unknown types render a visible placeholder when
// editing and nothing otherwise; neither case is an error.
func (r *Registry) Render(w io.Writer, s agentpages.Section, opts Options) error {
	r.mu.RLock()
	tmpl := r.templates
	r.mu.RUnlock()

	body := tmpl.Lookup(sectionTemplateName(s.Type))
	if body == nil {
		if !opts.Editing {
			return nil
		}
		_, err := fmt.Fprintf(w,
			`<div class="ap-section ap-unknown" data-section-id="%s"><p>Unknown section type: %s</p></div>`,
			template.HTMLEscapeString(s.ID), template.HTMLEscapeString(s.Type))
		return err
	}

	view := sectionView{
		ID:       s.ID,
		Type:     s.Type,
		Content:  s.Content,
		Style:    mergeStyle(s.Type, s.Style),
		Editing:  opts.Editing,
		Selected: opts.Selected,
		Required: s.Required,
	}
	if view.Content == nil {
		view.Content = map[string]any{}
	}

	var inner bytes.Buffer
	if err := body.Execute(&inner, view); err != nil {
		return fmt.Errorf("render section %s (%s): %w", s.ID, s.Type, err)
	}

	if !opts.Editing {
		_, err := w.Write(inner.Bytes())
		return err
	}

	return tmpl.ExecuteTemplate(w, "chrome", struct {
		sectionView
		Inner template.HTML
	}{view, template.HTML(inner.String())})
}

func (r *Registry) renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(text), &buf); err != nil {
		// Fall back to the escaped raw text.
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String())
}

// mergeStyle merges the per-type style defaults under the section's own
// overrides and produces a deterministic inline style value.
func mergeStyle(sectionType string, overrides map[string]string) template.CSS {
	merged := map[string]string{}
	for k, v := range styleDefaults[sectionType] {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	if len(merged) == 0 {
		return ""
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(merged[k])
	}
	return template.CSS(b.String())
}

// styleDefaults are the presentational baselines merged under each
// section's style map.
var styleDefaults = map[string]map[string]string{
	agentpages.TypeHero:        {"min-height": "600px"},
	agentpages.TypeGallery:     {"background": "#f9fafb"},
	agentpages.TypeFeatures:    {"padding": "4rem 1rem"},
	agentpages.TypeDescription: {"padding": "4rem 1rem"},
	agentpages.TypeContact:     {"padding": "4rem 1rem"},
}
