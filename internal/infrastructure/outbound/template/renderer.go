package template

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/flosch/pongo2/v6"

	"github.com/sophialabs/xraydash/internal/infrastructure/ports"
)

var _ ports.Renderer = (*Renderer)(nil)

// Pages lists the page templates every template set must provide.
var Pages = []string{"browser", "demo"}

// Renderer renders dashboard pages with pongo2 (Django/Jinja2-style).
// Compiled templates are cached until Reload.
type Renderer struct {
	set    *pongo2.TemplateSet
	logger ports.Logger
}

// NewRenderer creates a renderer over templates, which holds base.html and
// one <page>.html per entry of Pages.
func NewRenderer(templates fs.FS, logger ports.Logger) *Renderer {
	return &Renderer{
		set:    pongo2.NewSet("dashboard", pongo2.NewFSLoader(templates)),
		logger: logger,
	}
}

// Preload compiles every page so broken templates fail at startup.
func (r *Renderer) Preload() error {
	for _, page := range Pages {
		if _, err := r.set.FromCache(page + ".html"); err != nil {
			return fmt.Errorf("failed to compile %s template: %w", page, err)
		}
	}
	return nil
}

// Render executes page with data. Nothing is written when rendering fails.
func (r *Renderer) Render(w io.Writer, page string, data map[string]any) error {
	tpl, err := r.set.FromCache(page + ".html")
	if err != nil {
		return fmt.Errorf("failed to compile %s template: %w", page, err)
	}
	if err := tpl.ExecuteWriter(pongo2.Context(data), w); err != nil {
		return fmt.Errorf("%s template render failed: %w", page, err)
	}
	return nil
}

// Reload drops the compiled templates; the next render reads them again.
func (r *Renderer) Reload() {
	r.set.CleanCache()
	r.logger.Info("template cache cleared")
}
