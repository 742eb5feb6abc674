package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
)

const layoutTemplate = "layout.tmpl"

// TemplateRenderer renders HTML pages. Each page template is parsed on top of
// its own copy of the layout so every page can define "content".
type TemplateRenderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// TemplateRendererConfig holds configuration for creating a TemplateRenderer.
type TemplateRendererConfig struct {
	TemplateFS fs.FS        // must contain layout.tmpl and one *.tmpl per page
	Logger     *slog.Logger // optional
}

// NewTemplateRenderer parses the layout and every page in cfg.TemplateFS.
func NewTemplateRenderer(cfg TemplateRendererConfig) (*TemplateRenderer, error) {
	if cfg.TemplateFS == nil {
		return nil, errors.New("TemplateFS is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	layout, err := template.New(layoutTemplate).ParseFS(cfg.TemplateFS, layoutTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	names, err := fs.Glob(cfg.TemplateFS, "*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		if name == layoutTemplate {
			continue
		}
		t, cloneErr := layout.Clone()
		if cloneErr != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, cloneErr)
		}
		if _, parseErr := t.ParseFS(cfg.TemplateFS, name); parseErr != nil {
			return nil, fmt.Errorf("parse %s: %w", name, parseErr)
		}
		pages[strings.TrimSuffix(path.Base(name), ".tmpl")] = t
	}
	return &TemplateRenderer{pages: pages, logger: logger}, nil
}

// Has reports whether page was parsed.
func (r *TemplateRenderer) Has(page string) bool {
	_, ok := r.pages[page]
	return ok
}

// Render executes the layout for page into a buffer and writes it with status.
// Nothing is written when execution fails.
func (r *TemplateRenderer) Render(w http.ResponseWriter, status int, page string, data PageData) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	if data.CurrentPage == "" {
		data.CurrentPage = page
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error("template execution failed", slog.String("page", page), slog.Any("error", err))
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Debug("failed to write rendered template", slog.String("page", page), slog.Any("error", err))
		return err
	}
	return nil
}
