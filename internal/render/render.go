// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the studio pages.
// Templates are embedded in the binary; each page template is paired with
// the base layout at parse time.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
)

//go:embed templates/*.html
var pageFS embed.FS

// Defaults seeds the generator form controls.
type Defaults struct {
	NegativePrompt string
	Steps          int
	MinSteps       int
	MaxSteps       int
	GuidanceScale  float64
	MinGuidance    float64
	MaxGuidance    float64
}

// PageData holds all data passed to page templates.
type PageData struct {
	Title    string   // Page title for the <title> tag and header
	Subtitle string   // Header subtitle
	Examples []string // Canned example prompts, in display order
	Defaults Defaults // Initial form control values
}

// Renderer handles template parsing and execution for the studio pages.
type Renderer struct {
	templates map[string]*template.Template
}

// New creates a Renderer by parsing all page templates from the embedded
// filesystem. Each page template is paired with the base layout.
func New() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template)}

	entries, err := pageFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if name == "base.html" {
			continue
		}

		tmpl, err := template.New("base.html").ParseFS(
			pageFS, "templates/base.html", "templates/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}

		// Strip .html extension for the template name.
		r.templates[name[:len(name)-len(filepath.Ext(name))]] = tmpl
	}

	return r, nil
}

// Page renders a full page by name into the response.
func (rn *Renderer) Page(w http.ResponseWriter, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}
